package construction

import (
	"context"

	"github.com/wx-shi/rosetta-utxo/internal/guard"
	"github.com/wx-shi/rosetta-utxo/internal/model"
	"github.com/wx-shi/rosetta-utxo/internal/txcodec"
)

// Hash returns the id the ledger will assign to the signed transaction.
func (s *Service) Hash(_ context.Context, req *model.ConstructionHashRequest) (*model.TransactionIdentifierResponse, error) {
	s.logger.Debug("/construction/hash")

	if err := guard.Check(s.conf, req.NetworkIdentifier, false); err != nil {
		return nil, err
	}

	signed, err := txcodec.DeserializeSigned(req.SignedTransaction)
	if err != nil {
		return nil, invalid(err)
	}
	id, err := signed.Transaction.ID()
	if err != nil {
		return nil, invalid(err)
	}
	return &model.TransactionIdentifierResponse{
		TransactionIdentifier: &model.TransactionIdentifier{Hash: id.String()},
	}, nil
}
