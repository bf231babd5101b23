package construction

import (
	"context"
	"fmt"

	"github.com/scylladb/go-set/strset"
	"github.com/wx-shi/rosetta-utxo/internal/address"
	"github.com/wx-shi/rosetta-utxo/internal/guard"
	"github.com/wx-shi/rosetta-utxo/internal/ledger"
	"github.com/wx-shi/rosetta-utxo/internal/model"
	"github.com/wx-shi/rosetta-utxo/internal/operations"
	"github.com/wx-shi/rosetta-utxo/internal/txcodec"
)

// Parse decodes an unsigned or signed transaction back into operations.
// Signed transactions also report their signers, one per signature unlock
// block.
func (s *Service) Parse(_ context.Context, req *model.ConstructionParseRequest) (*model.ConstructionParseResponse, error) {
	s.logger.Debug("/construction/parse")

	if err := guard.Check(s.conf, req.NetworkIdentifier, false); err != nil {
		return nil, err
	}

	if !req.Signed {
		unsigned, err := txcodec.DeserializeUnsigned(req.Transaction)
		if err != nil {
			return nil, invalid(err)
		}
		ops, err := operations.EssenceToOperations(unsigned.Essence, unsigned.InputsMetadata, s.hrp())
		if err != nil {
			return nil, invalid(err)
		}
		return &model.ConstructionParseResponse{Operations: ops}, nil
	}

	signed, err := txcodec.DeserializeSigned(req.Transaction)
	if err != nil {
		return nil, invalid(err)
	}
	ops, err := operations.EssenceToOperations(signed.Transaction.Essence, signed.InputsMetadata, s.hrp())
	if err != nil {
		return nil, invalid(err)
	}
	signers, err := s.signers(signed.Transaction.UnlockBlocks)
	if err != nil {
		return nil, invalid(err)
	}
	return &model.ConstructionParseResponse{Operations: ops, AccountIdentifierSigners: signers}, nil
}

// signers derives the account of every signature unlock block. Reference
// blocks reuse an earlier signature and add nobody.
func (s *Service) signers(blocks []ledger.UnlockBlock) ([]*model.AccountIdentifier, error) {
	seen := strset.New()
	signers := make([]*model.AccountIdentifier, 0)
	for _, block := range blocks {
		switch b := block.(type) {
		case *ledger.SignatureUnlockBlock:
			sig, ok := b.Signature.(*ledger.Ed25519Signature)
			if !ok {
				return nil, ledger.ErrUnsupportedSignature
			}
			addr, err := address.Derive(sig.PublicKey[:])
			if err != nil {
				return nil, err
			}
			account := addr.Bech32(s.hrp())
			if seen.Has(account) {
				continue
			}
			seen.Add(account)
			signers = append(signers, &model.AccountIdentifier{Address: account})
		case *ledger.ReferenceUnlockBlock:
		default:
			return nil, fmt.Errorf("%w: %T", ledger.ErrUnsupportedUnlockBlock, block)
		}
	}
	return signers, nil
}
