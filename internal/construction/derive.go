package construction

import (
	"context"

	"github.com/wx-shi/rosetta-utxo/internal/address"
	"github.com/wx-shi/rosetta-utxo/internal/apierr"
	"github.com/wx-shi/rosetta-utxo/internal/guard"
	"github.com/wx-shi/rosetta-utxo/internal/model"
)

// Derive returns the account controlled by an ed25519 public key. It needs
// no node and works offline.
func (s *Service) Derive(_ context.Context, req *model.ConstructionDeriveRequest) (*model.ConstructionDeriveResponse, error) {
	s.logger.Debug("/construction/derive")

	if err := guard.Check(s.conf, req.NetworkIdentifier, false); err != nil {
		return nil, err
	}
	if req.PublicKey == nil {
		return nil, apierr.NonRetriable("public key missing")
	}
	if req.PublicKey.CurveType != model.CurveEdwards25519 {
		return nil, apierr.NonRetriable("unsupported curve type %q", req.PublicKey.CurveType)
	}

	addr, err := address.DeriveHex(req.PublicKey.HexBytes)
	if err != nil {
		return nil, invalid(err)
	}
	return &model.ConstructionDeriveResponse{
		AccountIdentifier: &model.AccountIdentifier{Address: addr.Bech32(s.hrp())},
	}, nil
}
