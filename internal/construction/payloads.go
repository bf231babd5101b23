package construction

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/scylladb/go-set/strset"
	"github.com/wx-shi/rosetta-utxo/internal/apierr"
	"github.com/wx-shi/rosetta-utxo/internal/guard"
	"github.com/wx-shi/rosetta-utxo/internal/ledger"
	"github.com/wx-shi/rosetta-utxo/internal/model"
	"github.com/wx-shi/rosetta-utxo/internal/operations"
	"github.com/wx-shi/rosetta-utxo/internal/txcodec"
)

// Payloads builds the unsigned transaction and one signing payload per
// distinct input owner. Every payload carries the essence hash, which is
// what the ledger verifies signatures against.
func (s *Service) Payloads(_ context.Context, req *model.ConstructionPayloadsRequest) (*model.ConstructionPayloadsResponse, error) {
	s.logger.Debug("/construction/payloads")

	if err := guard.Check(s.conf, req.NetworkIdentifier, true); err != nil {
		return nil, err
	}
	if req.Metadata == nil {
		return nil, apierr.NonRetriable("construction metadata missing")
	}

	essence, err := operations.OperationsToEssence(req.Operations, s.hrp())
	if err != nil {
		return nil, invalid(err)
	}
	meta, err := s.inputsMetadata(req.Operations, req.Metadata.UTXOInputsMetadata)
	if err != nil {
		return nil, err
	}
	total, err := operations.Sum(req.Operations)
	if err != nil {
		return nil, invalid(err)
	}
	if !total.IsZero() {
		return nil, apierr.NonRetriable("operations do not balance: %s", total)
	}

	if tag := s.conf.Network.TxTag; tag != "" {
		essence.Payload = &ledger.Indexation{Index: ledger.HexBytes(tag)}
	}
	if err := essence.Sort(); err != nil {
		return nil, invalid(err)
	}
	if err := essence.Validate(); err != nil {
		return nil, invalid(err)
	}

	hash, err := ledger.EssenceHash(essence)
	if err != nil {
		return nil, invalid(err)
	}
	unsigned, err := txcodec.SerializeUnsigned(&txcodec.UnsignedTransaction{Essence: essence, InputsMetadata: meta})
	if err != nil {
		return nil, invalid(err)
	}

	payloads := make([]*model.SigningPayload, 0)
	signers := strset.New()
	for _, in := range essence.Inputs {
		md, _ := meta.Lookup(in.(*ledger.UTXOInput).ID())
		owner, _ := ledger.OutputAddress(md.Output)
		account := owner.Bech32(s.hrp())
		if signers.Has(account) {
			continue
		}
		signers.Add(account)
		payloads = append(payloads, &model.SigningPayload{
			AccountIdentifier: &model.AccountIdentifier{Address: account},
			HexBytes:          hex.EncodeToString(hash[:]),
			SignatureType:     model.SignatureTypeEd25519,
		})
	}

	return &model.ConstructionPayloadsResponse{
		UnsignedTransaction: unsigned,
		Payloads:            payloads,
	}, nil
}

// inputsMetadata picks the metadata of every INPUT operation and checks it
// against the operation's account and amount.
func (s *Service) inputsMetadata(ops []*model.Operation, all txcodec.InputsMetadata) (txcodec.InputsMetadata, error) {
	meta := make(txcodec.InputsMetadata)
	for _, op := range ops {
		if op.Type != operations.TypeInput {
			continue
		}
		id, err := ledger.ParseOutputID(op.CoinChange.CoinIdentifier.Identifier)
		if err != nil {
			return nil, invalid(err)
		}
		md, ok := all.Lookup(id)
		if !ok || md == nil {
			return nil, invalid(fmt.Errorf("%w: %s", operations.ErrMissingInputMetadata, id))
		}
		owner, err := ledger.OutputAddress(md.Output)
		if err != nil {
			return nil, invalid(err)
		}
		if owner.Bech32(s.hrp()) != op.Account.Address {
			return nil, apierr.NonRetriable("input %s is not owned by %s", id, op.Account.Address)
		}
		if model.NewDebitAmount(md.Output.Deposit()).Value != op.Amount.Value {
			return nil, apierr.NonRetriable("amount of input %s does not match its output", id)
		}
		meta[id.String()] = md
	}
	return meta, nil
}
