// Package query answers account queries against the node, pairing every
// answer with the confirmed milestone it belongs to.
package query

import (
	"context"
	"time"

	"github.com/wx-shi/rosetta-utxo/internal/address"
	"github.com/wx-shi/rosetta-utxo/internal/apierr"
	"github.com/wx-shi/rosetta-utxo/internal/config"
	"github.com/wx-shi/rosetta-utxo/internal/guard"
	"github.com/wx-shi/rosetta-utxo/internal/ledger"
	"github.com/wx-shi/rosetta-utxo/internal/model"
	"github.com/wx-shi/rosetta-utxo/internal/node"
	"go.uber.org/zap"
)

type Service struct {
	conf   *config.Config
	client node.Client
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewService(conf *config.Config, client node.Client, logger *zap.Logger) *Service {
	return &Service{
		conf:   conf,
		client: client,
		logger: logger,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// BalanceOf returns the balance of addr together with the milestone it was
// observed at. A balance read while the confirmed milestone moved is
// discarded and the whole read is repeated.
func (s *Service) BalanceOf(ctx context.Context, addr address.Ed25519) (uint64, *node.Milestone, error) {
	for attempt := 1; ; attempt++ {
		before, err := s.client.ConfirmedMilestone(ctx)
		if err != nil {
			return 0, nil, err
		}
		balance, err := s.client.Balance(ctx, addr)
		if err != nil {
			return 0, nil, err
		}
		after, err := s.client.ConfirmedMilestone(ctx)
		if err != nil {
			return 0, nil, err
		}
		if before.Index == after.Index {
			return balance, before, nil
		}

		s.logger.Debug("confirmed milestone moved during balance read",
			zap.String("address", addr.String()),
			zap.Uint32("before", before.Index),
			zap.Uint32("after", after.Index),
			zap.Int("attempt", attempt))

		if limit := s.conf.Balance.MaxAttempts; limit > 0 && attempt >= limit {
			return 0, nil, apierr.Retriable("confirmed milestone did not settle after %d attempts", attempt)
		}
		if err := s.sleep(ctx, s.conf.Balance.CheckpointDelay); err != nil {
			return 0, nil, err
		}
	}
}

// CoinsOf lists the unspent outputs of addr. The milestone is read once,
// before the outputs.
func (s *Service) CoinsOf(ctx context.Context, addr address.Ed25519) ([]*model.Coin, *node.Milestone, error) {
	milestone, err := s.client.ConfirmedMilestone(ctx)
	if err != nil {
		return nil, nil, err
	}
	outputs, err := s.client.UnspentOutputs(ctx, addr)
	if err != nil {
		return nil, nil, err
	}

	coins := make([]*model.Coin, 0, len(outputs))
	for _, out := range outputs {
		if _, ok := out.Output.(*ledger.TreasuryOutput); ok {
			continue
		}
		coins = append(coins, &model.Coin{
			CoinIdentifier: &model.CoinIdentifier{Identifier: out.ID.String()},
			Amount:         model.NewAmount(out.Output.Deposit()),
		})
	}
	return coins, milestone, nil
}

func (s *Service) AccountBalance(ctx context.Context, req *model.AccountBalanceRequest) (*model.AccountBalanceResponse, error) {
	s.logger.Debug("/account/balance")

	if err := guard.Check(s.conf, req.NetworkIdentifier, true); err != nil {
		return nil, err
	}
	if req.BlockIdentifier != nil {
		return nil, apierr.NonRetriable("historical balance lookup not supported")
	}
	addr, err := s.account(req.AccountIdentifier)
	if err != nil {
		return nil, err
	}

	balance, milestone, err := s.BalanceOf(ctx, addr)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &model.AccountBalanceResponse{
		BlockIdentifier: milestone.BlockIdentifier(),
		Balances:        []*model.Amount{model.NewAmount(balance)},
	}, nil
}

func (s *Service) AccountCoins(ctx context.Context, req *model.AccountCoinsRequest) (*model.AccountCoinsResponse, error) {
	s.logger.Debug("/account/coins")

	if err := guard.Check(s.conf, req.NetworkIdentifier, true); err != nil {
		return nil, err
	}
	addr, err := s.account(req.AccountIdentifier)
	if err != nil {
		return nil, err
	}

	coins, milestone, err := s.CoinsOf(ctx, addr)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &model.AccountCoinsResponse{
		BlockIdentifier: milestone.BlockIdentifier(),
		Coins:           coins,
	}, nil
}

func (s *Service) account(id *model.AccountIdentifier) (address.Ed25519, error) {
	if id == nil {
		return address.Ed25519{}, apierr.NonRetriable("account identifier missing")
	}
	addr, err := address.Decode(id.Address, s.conf.Network.Bech32HRP)
	if err != nil {
		return address.Ed25519{}, apierr.NonRetriable("%s", err.Error())
	}
	return addr, nil
}
