package construction

import (
	"context"
	"errors"

	"github.com/wx-shi/rosetta-utxo/internal/apierr"
	"github.com/wx-shi/rosetta-utxo/internal/guard"
	"github.com/wx-shi/rosetta-utxo/internal/ledger"
	"github.com/wx-shi/rosetta-utxo/internal/model"
	"github.com/wx-shi/rosetta-utxo/internal/node"
	"github.com/wx-shi/rosetta-utxo/internal/txcodec"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Metadata fetches every output named in the options from the node. The
// lookups run concurrently; the first failure cancels the rest.
func (s *Service) Metadata(ctx context.Context, req *model.ConstructionMetadataRequest) (*model.ConstructionMetadataResponse, error) {
	s.logger.Debug("/construction/metadata")

	if err := guard.Check(s.conf, req.NetworkIdentifier, true); err != nil {
		return nil, err
	}
	if req.Options == nil || len(req.Options.UTXOInputs) == 0 {
		return nil, apierr.NonRetriable("no utxo inputs given")
	}

	ids := make([]ledger.OutputID, len(req.Options.UTXOInputs))
	for i, coin := range req.Options.UTXOInputs {
		id, err := ledger.ParseOutputID(coin)
		if err != nil {
			return nil, invalid(err)
		}
		ids[i] = id
	}

	var info *node.Info
	outputs := make([]*node.Output, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = s.client.Info(gctx)
		return err
	})
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			out, err := s.client.Output(gctx, id)
			if errors.Is(err, node.ErrNotFound) {
				return apierr.NonRetriable("unable to find output %s", id)
			}
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("fetch input metadata", zap.Error(err))
		return nil, apierr.From(err)
	}

	meta := make(txcodec.InputsMetadata, len(outputs))
	for i, out := range outputs {
		meta[ids[i].String()] = &txcodec.InputMetadata{
			TransactionID: out.ID.TransactionID,
			OutputIndex:   out.ID.Index,
			IsSpent:       out.IsSpent,
			Output:        out.Output,
		}
	}

	return &model.ConstructionMetadataResponse{
		Metadata: &model.ConstructionMetadata{
			UTXOInputsMetadata: meta,
			NetworkID:          info.NetworkID,
		},
		SuggestedFee: []*model.Amount{model.NewAmount(0)},
	}, nil
}
