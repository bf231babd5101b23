package construction

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"

	"github.com/wx-shi/rosetta-utxo/internal/address"
	"github.com/wx-shi/rosetta-utxo/internal/apierr"
	"github.com/wx-shi/rosetta-utxo/internal/guard"
	"github.com/wx-shi/rosetta-utxo/internal/ledger"
	"github.com/wx-shi/rosetta-utxo/internal/model"
	"github.com/wx-shi/rosetta-utxo/internal/operations"
	"github.com/wx-shi/rosetta-utxo/internal/txcodec"
)

// Combine attaches the signatures to the unsigned transaction. The first
// input of each owner gets a signature unlock block, later inputs of the
// same owner reference it.
func (s *Service) Combine(_ context.Context, req *model.ConstructionCombineRequest) (*model.ConstructionCombineResponse, error) {
	s.logger.Debug("/construction/combine")

	if err := guard.Check(s.conf, req.NetworkIdentifier, true); err != nil {
		return nil, err
	}

	unsigned, err := txcodec.DeserializeUnsigned(req.UnsignedTransaction)
	if err != nil {
		return nil, invalid(err)
	}
	essence, ok := unsigned.Essence.(*ledger.RegularEssence)
	if !ok {
		return nil, invalid(ledger.ErrUnsupportedEssence)
	}
	hash, err := ledger.EssenceHash(essence)
	if err != nil {
		return nil, invalid(err)
	}

	signatures := make(map[string]*ledger.Ed25519Signature, len(req.Signatures))
	for _, sig := range req.Signatures {
		account, parsed, err := s.verify(sig, hash[:])
		if err != nil {
			return nil, err
		}
		signatures[account] = parsed
	}

	blocks := make([]ledger.UnlockBlock, 0, len(essence.Inputs))
	first := make(map[string]uint16)
	for i, in := range essence.Inputs {
		utxo, ok := in.(*ledger.UTXOInput)
		if !ok {
			return nil, invalid(ledger.ErrUnsupportedInput)
		}
		md, ok := unsigned.InputsMetadata.Lookup(utxo.ID())
		if !ok || md == nil {
			return nil, invalid(operations.ErrMissingInputMetadata)
		}
		owner, err := ledger.OutputAddress(md.Output)
		if err != nil {
			return nil, invalid(err)
		}
		account := owner.Bech32(s.hrp())

		if ref, seen := first[account]; seen {
			blocks = append(blocks, &ledger.ReferenceUnlockBlock{Reference: ref})
			continue
		}
		sig, ok := signatures[account]
		if !ok {
			return nil, apierr.NonRetriable("missing signature for %s", account)
		}
		first[account] = uint16(i)
		blocks = append(blocks, &ledger.SignatureUnlockBlock{Signature: sig})
	}

	tx := &ledger.Transaction{Essence: essence, UnlockBlocks: blocks}
	if err := tx.Validate(); err != nil {
		return nil, invalid(err)
	}
	signed, err := txcodec.SerializeSigned(&txcodec.SignedTransaction{Transaction: tx, InputsMetadata: unsigned.InputsMetadata})
	if err != nil {
		return nil, invalid(err)
	}
	return &model.ConstructionCombineResponse{SignedTransaction: signed}, nil
}

// verify checks one signature against the essence hash and returns the
// account its public key controls.
func (s *Service) verify(sig *model.Signature, message []byte) (string, *ledger.Ed25519Signature, error) {
	if sig == nil || sig.PublicKey == nil {
		return "", nil, apierr.NonRetriable("signature without public key")
	}
	if sig.SignatureType != model.SignatureTypeEd25519 || sig.PublicKey.CurveType != model.CurveEdwards25519 {
		return "", nil, invalid(ledger.ErrUnsupportedSignature)
	}

	publicKey, err := hex.DecodeString(sig.PublicKey.HexBytes)
	if err != nil {
		return "", nil, apierr.NonRetriable("invalid public key: %v", err)
	}
	addr, err := address.Derive(publicKey)
	if err != nil {
		return "", nil, invalid(err)
	}
	account := addr.Bech32(s.hrp())
	if sig.SigningPayload != nil && sig.SigningPayload.AccountIdentifier != nil &&
		sig.SigningPayload.AccountIdentifier.Address != account {
		return "", nil, apierr.NonRetriable("public key does not match signer %s", sig.SigningPayload.AccountIdentifier.Address)
	}

	raw, err := hex.DecodeString(sig.HexBytes)
	if err != nil || len(raw) != ed25519.SignatureSize {
		return "", nil, apierr.NonRetriable("invalid signature bytes")
	}
	parsed := &ledger.Ed25519Signature{}
	copy(parsed.PublicKey[:], publicKey)
	copy(parsed.Signature[:], raw)
	if !parsed.Valid(message) {
		return "", nil, apierr.NonRetriable("invalid signature for %s", account)
	}
	return account, parsed, nil
}
