package node

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/wx-shi/rosetta-utxo/internal/address"
	"github.com/wx-shi/rosetta-utxo/internal/ledger"
	"github.com/wx-shi/rosetta-utxo/pkg"
)

// wire shapes of the node REST API (v1)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *errorDto       `json:"error"`
}

type errorDto struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type infoDto struct {
	Name                    string `json:"name"`
	Version                 string `json:"version"`
	IsHealthy               bool   `json:"isHealthy"`
	NetworkID               string `json:"networkId"`
	Bech32HRP               string `json:"bech32HRP"`
	LatestMilestoneIndex    uint32 `json:"latestMilestoneIndex"`
	ConfirmedMilestoneIndex uint32 `json:"confirmedMilestoneIndex"`
	PruningIndex            uint32 `json:"pruningIndex"`
}

type milestoneDto struct {
	Index     uint32 `json:"index"`
	MessageID string `json:"messageId"`
	Timestamp int64  `json:"timestamp"`
}

type balanceDto struct {
	AddressType byte   `json:"addressType"`
	Address     string `json:"address"`
	Balance     uint64 `json:"balance"`
	LedgerIndex uint32 `json:"ledgerIndex"`
}

type outputIdsDto struct {
	Address   string   `json:"address"`
	OutputIDs []string `json:"outputIds"`
}

type addressDto struct {
	Type    byte   `json:"type"`
	Address string `json:"address"`
}

type outputDto struct {
	Type    byte        `json:"type"`
	Address *addressDto `json:"address,omitempty"`
	Amount  uint64      `json:"amount"`
}

type outputResponseDto struct {
	TransactionID string     `json:"transactionId"`
	OutputIndex   uint16     `json:"outputIndex"`
	IsSpent       bool       `json:"isSpent"`
	LedgerIndex   uint32     `json:"ledgerIndex"`
	Output        *outputDto `json:"output"`
}

type peerDto struct {
	ID        string `json:"id"`
	Alias     string `json:"alias"`
	Connected bool   `json:"connected"`
}

type inputDto struct {
	Type                   byte   `json:"type"`
	TransactionID          string `json:"transactionId"`
	TransactionOutputIndex uint16 `json:"transactionOutputIndex"`
}

type indexationDto struct {
	Type  uint32 `json:"type"`
	Index string `json:"index"`
	Data  string `json:"data"`
}

type essenceDto struct {
	Type    byte           `json:"type"`
	Inputs  []*inputDto    `json:"inputs"`
	Outputs []*outputDto   `json:"outputs"`
	Payload *indexationDto `json:"payload,omitempty"`
}

type signatureDto struct {
	Type      byte   `json:"type"`
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
}

type unlockBlockDto struct {
	Type      byte          `json:"type"`
	Signature *signatureDto `json:"signature,omitempty"`
	Reference *uint16       `json:"reference,omitempty"`
}

type transactionDto struct {
	Type         uint32            `json:"type"`
	Essence      *essenceDto       `json:"essence"`
	UnlockBlocks []*unlockBlockDto `json:"unlockBlocks"`
}

// messageDto leaves parents and nonce to the node.
type messageDto struct {
	Payload *transactionDto `json:"payload"`
}

type messageIDDto struct {
	MessageID string `json:"messageId"`
}

func (d *outputDto) toLedger() (ledger.Output, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: missing output", ledger.ErrUnsupportedOutput)
	}
	kind := ledger.OutputKind(d.Type)
	if kind == ledger.TreasuryOutputKind {
		return &ledger.TreasuryOutput{Amount: d.Amount}, nil
	}
	if d.Address == nil || d.Address.Type != address.Ed25519Kind {
		return nil, fmt.Errorf("%w: output without ed25519 address", ledger.ErrUnsupportedOutput)
	}
	addr, err := address.ParseHex(d.Address.Address)
	if err != nil {
		return nil, err
	}
	switch kind {
	case ledger.BasicOutputKind:
		return &ledger.BasicOutput{Address: addr, Amount: d.Amount}, nil
	case ledger.DustAllowanceOutputKind:
		return &ledger.DustAllowanceOutput{Address: addr, Amount: d.Amount}, nil
	default:
		return nil, fmt.Errorf("%w: kind %d", ledger.ErrUnsupportedOutput, d.Type)
	}
}

func (d *outputResponseDto) toOutput() (*Output, error) {
	txID, err := ledger.ParseTransactionID(d.TransactionID)
	if err != nil {
		return nil, err
	}
	out, err := d.Output.toLedger()
	if err != nil {
		return nil, err
	}
	return &Output{
		ID:          ledger.OutputID{TransactionID: txID, Index: d.OutputIndex},
		IsSpent:     d.IsSpent,
		LedgerIndex: d.LedgerIndex,
		Output:      out,
	}, nil
}

// outputIDFromHex reads the node's 34 byte form: transaction id followed by
// the little endian output index.
func outputIDFromHex(s string) (ledger.OutputID, error) {
	var id ledger.OutputID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != ledger.TransactionIDLength+2 {
		return id, fmt.Errorf("invalid output id length %d", len(b))
	}
	copy(id.TransactionID[:], b[:ledger.TransactionIDLength])
	id.Index = pkg.BytesToUint16(b[ledger.TransactionIDLength:])
	return id, nil
}

func outputIDToHex(id ledger.OutputID) string {
	return id.TransactionID.String() + hex.EncodeToString(pkg.Uint16ToBytes(id.Index))
}

func addressOutputDto(kind ledger.OutputKind, addr address.Ed25519, amount uint64) *outputDto {
	return &outputDto{
		Type:    byte(kind),
		Address: &addressDto{Type: address.Ed25519Kind, Address: addr.String()},
		Amount:  amount,
	}
}

func newTransactionDto(tx *ledger.Transaction) (*transactionDto, error) {
	essence, ok := tx.Essence.(*ledger.RegularEssence)
	if !ok {
		return nil, ledger.ErrUnsupportedEssence
	}

	ed := &essenceDto{Type: byte(ledger.RegularEssenceKind)}
	for _, input := range essence.Inputs {
		utxo, ok := input.(*ledger.UTXOInput)
		if !ok {
			return nil, ledger.ErrUnsupportedInput
		}
		ed.Inputs = append(ed.Inputs, &inputDto{
			Type:                   byte(ledger.UTXOInputKind),
			TransactionID:          utxo.TransactionID.String(),
			TransactionOutputIndex: utxo.OutputIndex,
		})
	}
	for _, output := range essence.Outputs {
		switch out := output.(type) {
		case *ledger.BasicOutput:
			ed.Outputs = append(ed.Outputs, addressOutputDto(ledger.BasicOutputKind, out.Address, out.Amount))
		case *ledger.DustAllowanceOutput:
			ed.Outputs = append(ed.Outputs, addressOutputDto(ledger.DustAllowanceOutputKind, out.Address, out.Amount))
		default:
			return nil, fmt.Errorf("%w: %T", ledger.ErrUnsupportedOutput, output)
		}
	}
	if essence.Payload != nil {
		ed.Payload = &indexationDto{
			Type:  ledger.IndexationPayloadKind,
			Index: hex.EncodeToString(essence.Payload.Index),
			Data:  hex.EncodeToString(essence.Payload.Data),
		}
	}

	td := &transactionDto{Type: ledger.TransactionPayloadKind, Essence: ed}
	for _, block := range tx.UnlockBlocks {
		switch b := block.(type) {
		case *ledger.SignatureUnlockBlock:
			sig, ok := b.Signature.(*ledger.Ed25519Signature)
			if !ok {
				return nil, ledger.ErrUnsupportedSignature
			}
			td.UnlockBlocks = append(td.UnlockBlocks, &unlockBlockDto{
				Type: byte(ledger.SignatureUnlockBlockKind),
				Signature: &signatureDto{
					Type:      byte(ledger.Ed25519SignatureKind),
					PublicKey: hex.EncodeToString(sig.PublicKey[:]),
					Signature: hex.EncodeToString(sig.Signature[:]),
				},
			})
		case *ledger.ReferenceUnlockBlock:
			ref := b.Reference
			td.UnlockBlocks = append(td.UnlockBlocks, &unlockBlockDto{
				Type:      byte(ledger.ReferenceUnlockBlockKind),
				Reference: &ref,
			})
		default:
			return nil, fmt.Errorf("%w: %T", ledger.ErrUnsupportedUnlockBlock, block)
		}
	}
	return td, nil
}
