package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/avast/retry-go"
	"github.com/guonaihong/gout"
	"github.com/wx-shi/rosetta-utxo/internal/address"
	"github.com/wx-shi/rosetta-utxo/internal/apierr"
	"github.com/wx-shi/rosetta-utxo/internal/config"
	"github.com/wx-shi/rosetta-utxo/internal/ledger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const apiPrefix = "/api/v1"

// maximum number of output lookups in flight for one address
const outputFetchLimit = 8

// HTTPClient implements Client against the node REST API.
type HTTPClient struct {
	conf   *config.NodeConfig
	base   string
	client *http.Client
	logger *zap.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(conf *config.NodeConfig, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		conf:   conf,
		base:   strings.TrimRight(conf.URL, "/") + apiPrefix,
		client: &http.Client{Timeout: conf.Timeout},
		logger: logger,
	}
}

func (c *HTTPClient) Info(ctx context.Context) (*Info, error) {
	var dto infoDto
	if err := c.get(ctx, "/info", &dto); err != nil {
		return nil, err
	}
	return &Info{
		Name:                    dto.Name,
		Version:                 dto.Version,
		IsHealthy:               dto.IsHealthy,
		NetworkID:               dto.NetworkID,
		Bech32HRP:               dto.Bech32HRP,
		LatestMilestoneIndex:    dto.LatestMilestoneIndex,
		ConfirmedMilestoneIndex: dto.ConfirmedMilestoneIndex,
		PruningIndex:            dto.PruningIndex,
	}, nil
}

// ConfirmedMilestone reads the confirmed milestone index from the node info
// and resolves it to the milestone itself.
func (c *HTTPClient) ConfirmedMilestone(ctx context.Context) (*Milestone, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return nil, err
	}
	return c.Milestone(ctx, info.ConfirmedMilestoneIndex)
}

func (c *HTTPClient) Milestone(ctx context.Context, index uint32) (*Milestone, error) {
	var dto milestoneDto
	if err := c.get(ctx, fmt.Sprintf("/milestones/%d", index), &dto); err != nil {
		return nil, err
	}
	return &Milestone{Index: dto.Index, MessageID: dto.MessageID, Timestamp: dto.Timestamp}, nil
}

func (c *HTTPClient) Balance(ctx context.Context, addr address.Ed25519) (uint64, error) {
	var dto balanceDto
	if err := c.get(ctx, "/addresses/ed25519/"+addr.String(), &dto); err != nil {
		return 0, err
	}
	return dto.Balance, nil
}

func (c *HTTPClient) UnspentOutputs(ctx context.Context, addr address.Ed25519) ([]*Output, error) {
	var dto outputIdsDto
	if err := c.get(ctx, "/addresses/ed25519/"+addr.String()+"/outputs", &dto); err != nil {
		return nil, err
	}

	ids := make([]ledger.OutputID, len(dto.OutputIDs))
	for i, s := range dto.OutputIDs {
		id, err := outputIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("node returned output id %q: %w", s, err)
		}
		ids[i] = id
	}

	outputs := make([]*Output, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(outputFetchLimit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			out, err := c.Output(gctx, id)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	unspent := outputs[:0]
	for _, out := range outputs {
		if !out.IsSpent {
			unspent = append(unspent, out)
		}
	}
	return unspent, nil
}

func (c *HTTPClient) Output(ctx context.Context, id ledger.OutputID) (*Output, error) {
	var dto outputResponseDto
	if err := c.get(ctx, "/outputs/"+outputIDToHex(id), &dto); err != nil {
		return nil, err
	}
	return dto.toOutput()
}

func (c *HTTPClient) Peers(ctx context.Context) ([]*Peer, error) {
	var dtos []*peerDto
	if err := c.get(ctx, "/peers", &dtos); err != nil {
		return nil, err
	}
	peers := make([]*Peer, 0, len(dtos))
	for _, p := range dtos {
		peers = append(peers, &Peer{ID: p.ID, Alias: p.Alias, Connected: p.Connected})
	}
	return peers, nil
}

func (c *HTTPClient) Submit(ctx context.Context, tx *ledger.Transaction) (string, error) {
	payload, err := newTransactionDto(tx)
	if err != nil {
		return "", err
	}
	var dto messageIDDto
	if err := c.do(ctx, http.MethodPost, "/messages", &messageDto{Payload: payload}, &dto); err != nil {
		return "", err
	}
	return dto.MessageID, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// do performs one API call, retrying transport failures and 5xx answers.
func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	err := retry.Do(
		func() error {
			return c.call(ctx, method, path, body, out)
		},
		retry.Context(ctx),
		retry.Attempts(c.conf.RetryAttempts),
		retry.Delay(c.conf.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetriable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retry node call", zap.String("path", path), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil && isRetriable(err) {
		c.logger.Warn("node call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
	}
	return err
}

func (c *HTTPClient) call(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var (
		code int
		raw  string
	)

	g := gout.New(c.client)
	df := g.GET(c.base + path)
	if method == http.MethodPost {
		df = g.POST(c.base + path).SetJSON(body)
	}
	df = df.WithContext(ctx)
	if err := df.Code(&code).BindBody(&raw).Do(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apierr.Retriable("unable to reach node: %v", err)
	}

	var env envelope
	decodeErr := json.Unmarshal([]byte(raw), &env)

	switch {
	case code >= http.StatusInternalServerError:
		return apierr.Retriable("node error %d: %s", code, env.message())
	case code == http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	case code == http.StatusBadRequest:
		return &RejectedError{Reason: env.message()}
	case code < http.StatusOK || code >= http.StatusMultipleChoices:
		return fmt.Errorf("unexpected node status %d: %s", code, env.message())
	}

	if decodeErr != nil {
		return fmt.Errorf("decode node response %s: %w", path, decodeErr)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode node response %s: %w", path, err)
	}
	return nil
}

func (e *envelope) message() string {
	if e.Error == nil {
		return ""
	}
	return e.Error.Message
}

func isRetriable(err error) bool {
	var apiErr *apierr.Error
	return errors.As(err, &apiErr) && apiErr.Retriable
}
