// Package network serves the network list, options and status endpoints.
package network

import (
	"context"
	"errors"

	"github.com/wx-shi/rosetta-utxo/internal/apierr"
	"github.com/wx-shi/rosetta-utxo/internal/config"
	"github.com/wx-shi/rosetta-utxo/internal/guard"
	"github.com/wx-shi/rosetta-utxo/internal/model"
	"github.com/wx-shi/rosetta-utxo/internal/node"
	"github.com/wx-shi/rosetta-utxo/internal/operations"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	RosettaVersion    = "1.4.10"
	MiddlewareVersion = "0.1.0"

	GenesisIndex = 1
)

type Service struct {
	conf   *config.Config
	client node.Client
	logger *zap.Logger
}

func NewService(conf *config.Config, client node.Client, logger *zap.Logger) *Service {
	return &Service{conf: conf, client: client, logger: logger}
}

func (s *Service) identifier() *model.NetworkIdentifier {
	return &model.NetworkIdentifier{
		Blockchain: s.conf.Network.Blockchain,
		Network:    s.conf.Network.Network,
	}
}

// List returns the single network this instance serves.
func (s *Service) List(_ context.Context, _ *model.MetadataRequest) (*model.NetworkListResponse, error) {
	s.logger.Debug("/network/list")
	return &model.NetworkListResponse{NetworkIdentifiers: []*model.NetworkIdentifier{s.identifier()}}, nil
}

// Options works offline; the node version is only filled in when a node is
// configured.
func (s *Service) Options(ctx context.Context, req *model.NetworkRequest) (*model.NetworkOptionsResponse, error) {
	s.logger.Debug("/network/options")

	if err := guard.Check(s.conf, req.NetworkIdentifier, false); err != nil {
		return nil, err
	}

	version := &model.Version{RosettaVersion: RosettaVersion, MiddlewareVersion: MiddlewareVersion}
	if !s.conf.IsOffline() {
		info, err := s.client.Info(ctx)
		if err != nil {
			s.logger.Warn("fetch node info", zap.Error(err))
			return nil, apierr.From(err)
		}
		version.NodeVersion = info.Version
	}

	return &model.NetworkOptionsResponse{
		Version: version,
		Allow: &model.Allow{
			OperationStatuses:       []*model.OperationStatus{{Status: operations.StatusSuccess, Successful: true}},
			OperationTypes:          operations.Types(),
			Errors:                  apierr.Catalog(),
			HistoricalBalanceLookup: false,
		},
	}, nil
}

// Status reports the confirmed milestone as the current block. The four node
// reads run concurrently.
func (s *Service) Status(ctx context.Context, req *model.NetworkRequest) (*model.NetworkStatusResponse, error) {
	s.logger.Debug("/network/status")

	if err := guard.Check(s.conf, req.NetworkIdentifier, true); err != nil {
		return nil, err
	}

	var (
		info    *node.Info
		current *node.Milestone
		genesis *model.BlockIdentifier
		peers   []*node.Peer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		info, err = s.client.Info(gctx)
		return err
	})
	g.Go(func() (err error) {
		current, err = s.client.ConfirmedMilestone(gctx)
		return err
	})
	g.Go(func() error {
		ms, err := s.client.Milestone(gctx, GenesisIndex)
		if errors.Is(err, node.ErrNotFound) {
			// pruned node, the hash of the first milestone is gone
			genesis = &model.BlockIdentifier{Index: GenesisIndex}
			return nil
		}
		if err != nil {
			return err
		}
		genesis = ms.BlockIdentifier()
		return nil
	})
	g.Go(func() (err error) {
		peers, err = s.client.Peers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("fetch network status", zap.Error(err))
		return nil, apierr.From(err)
	}

	resp := &model.NetworkStatusResponse{
		CurrentBlockIdentifier: current.BlockIdentifier(),
		CurrentBlockTimestamp:  current.Timestamp * 1000,
		GenesisBlockIdentifier: genesis,
		SyncStatus: &model.SyncStatus{
			CurrentIndex: int64(info.ConfirmedMilestoneIndex),
			TargetIndex:  int64(info.LatestMilestoneIndex),
			Synced:       info.IsHealthy && info.ConfirmedMilestoneIndex == info.LatestMilestoneIndex,
		},
		Peers: make([]*model.Peer, 0, len(peers)),
	}
	for _, p := range peers {
		if !p.Connected {
			continue
		}
		resp.Peers = append(resp.Peers, &model.Peer{PeerID: p.ID})
	}
	return resp, nil
}
