package construction

import (
	"context"
	"errors"

	"github.com/wx-shi/rosetta-utxo/internal/apierr"
	"github.com/wx-shi/rosetta-utxo/internal/guard"
	"github.com/wx-shi/rosetta-utxo/internal/model"
	"github.com/wx-shi/rosetta-utxo/internal/node"
	"github.com/wx-shi/rosetta-utxo/internal/txcodec"
	"go.uber.org/zap"
)

// Submit broadcasts the signed transaction through the node.
func (s *Service) Submit(ctx context.Context, req *model.ConstructionSubmitRequest) (*model.TransactionIdentifierResponse, error) {
	s.logger.Debug("/construction/submit")

	if err := guard.Check(s.conf, req.NetworkIdentifier, true); err != nil {
		return nil, err
	}

	signed, err := txcodec.DeserializeSigned(req.SignedTransaction)
	if err != nil {
		return nil, invalid(err)
	}
	if err := signed.Transaction.Validate(); err != nil {
		return nil, invalid(err)
	}
	id, err := signed.Transaction.ID()
	if err != nil {
		return nil, invalid(err)
	}

	messageID, err := s.client.Submit(ctx, signed.Transaction)
	if err != nil {
		var rejected *node.RejectedError
		if errors.As(err, &rejected) {
			s.logger.Warn("transaction rejected", zap.String("transaction_id", id.String()), zap.String("reason", rejected.Reason))
			return nil, apierr.NonRetriable("transaction rejected").WithDetails("reason", rejected.Reason)
		}
		s.logger.Error("submit transaction", zap.String("transaction_id", id.String()), zap.Error(err))
		return nil, apierr.From(err)
	}

	s.logger.Info("transaction submitted", zap.String("transaction_id", id.String()), zap.String("message_id", messageID))
	return &model.TransactionIdentifierResponse{
		TransactionIdentifier: &model.TransactionIdentifier{Hash: id.String()},
	}, nil
}
