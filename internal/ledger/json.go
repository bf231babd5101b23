package ledger

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"github.com/wx-shi/rosetta-utxo/internal/address"
)

// variant tags used in the JSON form of the ledger types
const (
	tagUTXO          = "utxo"
	tagBasic         = "basic"
	tagDustAllowance = "dust_allowance"
	tagTreasury      = "treasury"
	tagRegular       = "regular"
	tagSignature     = "signature"
	tagReference     = "reference"
	tagEd25519       = "ed25519"
)

type variant struct {
	Type string `json:"type"`
}

func peekType(data []byte) (string, error) {
	var v variant
	if err := json.Unmarshal(data, &v); err != nil {
		return "", err
	}
	if v.Type == "" {
		return "", fmt.Errorf("missing type tag")
	}
	return v.Type, nil
}

type utxoInputJSON struct {
	Type          string        `json:"type"`
	TransactionID TransactionID `json:"transaction_id"`
	OutputIndex   uint16        `json:"output_index"`
}

func (i *UTXOInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(utxoInputJSON{Type: tagUTXO, TransactionID: i.TransactionID, OutputIndex: i.OutputIndex})
}

func UnmarshalInput(data []byte) (Input, error) {
	tag, err := peekType(data)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagUTXO:
		var aux utxoInputJSON
		if err := json.Unmarshal(data, &aux); err != nil {
			return nil, err
		}
		return &UTXOInput{TransactionID: aux.TransactionID, OutputIndex: aux.OutputIndex}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInput, tag)
	}
}

type addressOutputJSON struct {
	Type    string          `json:"type"`
	Address address.Ed25519 `json:"address"`
	Amount  uint64          `json:"amount,string"`
}

type treasuryOutputJSON struct {
	Type   string `json:"type"`
	Amount uint64 `json:"amount,string"`
}

func (o *BasicOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressOutputJSON{Type: tagBasic, Address: o.Address, Amount: o.Amount})
}

func (o *DustAllowanceOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressOutputJSON{Type: tagDustAllowance, Address: o.Address, Amount: o.Amount})
}

func (o *TreasuryOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(treasuryOutputJSON{Type: tagTreasury, Amount: o.Amount})
}

func UnmarshalOutput(data []byte) (Output, error) {
	tag, err := peekType(data)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagBasic, tagDustAllowance:
		var aux addressOutputJSON
		if err := json.Unmarshal(data, &aux); err != nil {
			return nil, err
		}
		if tag == tagBasic {
			return &BasicOutput{Address: aux.Address, Amount: aux.Amount}, nil
		}
		return &DustAllowanceOutput{Address: aux.Address, Amount: aux.Amount}, nil
	case tagTreasury:
		var aux treasuryOutputJSON
		if err := json.Unmarshal(data, &aux); err != nil {
			return nil, err
		}
		return &TreasuryOutput{Amount: aux.Amount}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOutput, tag)
	}
}

type regularEssenceJSON struct {
	Type    string            `json:"type"`
	Inputs  []json.RawMessage `json:"inputs"`
	Outputs []json.RawMessage `json:"outputs"`
	Payload *Indexation       `json:"payload,omitempty"`
}

func (e *RegularEssence) MarshalJSON() ([]byte, error) {
	aux := regularEssenceJSON{
		Type:    tagRegular,
		Inputs:  make([]json.RawMessage, 0, len(e.Inputs)),
		Outputs: make([]json.RawMessage, 0, len(e.Outputs)),
		Payload: e.Payload,
	}
	for _, in := range e.Inputs {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		aux.Inputs = append(aux.Inputs, b)
	}
	for _, out := range e.Outputs {
		b, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		aux.Outputs = append(aux.Outputs, b)
	}
	return json.Marshal(aux)
}

func UnmarshalEssence(data []byte) (Essence, error) {
	tag, err := peekType(data)
	if err != nil {
		return nil, err
	}
	if tag != tagRegular {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEssence, tag)
	}

	var aux regularEssenceJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, err
	}
	if aux.Inputs == nil || aux.Outputs == nil {
		return nil, fmt.Errorf("essence is missing inputs or outputs")
	}
	essence := &RegularEssence{
		Inputs:  make([]Input, 0, len(aux.Inputs)),
		Outputs: make([]Output, 0, len(aux.Outputs)),
		Payload: aux.Payload,
	}
	for _, raw := range aux.Inputs {
		in, err := UnmarshalInput(raw)
		if err != nil {
			return nil, err
		}
		essence.Inputs = append(essence.Inputs, in)
	}
	for _, raw := range aux.Outputs {
		out, err := UnmarshalOutput(raw)
		if err != nil {
			return nil, err
		}
		essence.Outputs = append(essence.Outputs, out)
	}
	return essence, nil
}

type ed25519SignatureJSON struct {
	Type      string   `json:"type"`
	PublicKey HexBytes `json:"public_key"`
	Signature HexBytes `json:"signature"`
}

func (s *Ed25519Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(ed25519SignatureJSON{Type: tagEd25519, PublicKey: s.PublicKey[:], Signature: s.Signature[:]})
}

func UnmarshalSignature(data []byte) (Signature, error) {
	tag, err := peekType(data)
	if err != nil {
		return nil, err
	}
	if tag != tagEd25519 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSignature, tag)
	}
	var aux ed25519SignatureJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, err
	}
	if len(aux.PublicKey) != ed25519.PublicKeySize || len(aux.Signature) != ed25519.SignatureSize {
		return nil, fmt.Errorf("invalid ed25519 signature lengths %d/%d", len(aux.PublicKey), len(aux.Signature))
	}
	sig := &Ed25519Signature{}
	copy(sig.PublicKey[:], aux.PublicKey)
	copy(sig.Signature[:], aux.Signature)
	return sig, nil
}

type signatureUnlockBlockJSON struct {
	Type      string          `json:"type"`
	Signature json.RawMessage `json:"signature"`
}

type referenceUnlockBlockJSON struct {
	Type      string `json:"type"`
	Reference uint16 `json:"reference"`
}

func (b *SignatureUnlockBlock) MarshalJSON() ([]byte, error) {
	sig, err := json.Marshal(b.Signature)
	if err != nil {
		return nil, err
	}
	return json.Marshal(signatureUnlockBlockJSON{Type: tagSignature, Signature: sig})
}

func (b *ReferenceUnlockBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(referenceUnlockBlockJSON{Type: tagReference, Reference: b.Reference})
}

func UnmarshalUnlockBlock(data []byte) (UnlockBlock, error) {
	tag, err := peekType(data)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagSignature:
		var aux signatureUnlockBlockJSON
		if err := json.Unmarshal(data, &aux); err != nil {
			return nil, err
		}
		sig, err := UnmarshalSignature(aux.Signature)
		if err != nil {
			return nil, err
		}
		return &SignatureUnlockBlock{Signature: sig}, nil
	case tagReference:
		var aux referenceUnlockBlockJSON
		if err := json.Unmarshal(data, &aux); err != nil {
			return nil, err
		}
		return &ReferenceUnlockBlock{Reference: aux.Reference}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedUnlockBlock, tag)
	}
}

type transactionJSON struct {
	Essence      json.RawMessage   `json:"essence"`
	UnlockBlocks []json.RawMessage `json:"unlock_blocks"`
}

func (t *Transaction) MarshalJSON() ([]byte, error) {
	essence, err := json.Marshal(t.Essence)
	if err != nil {
		return nil, err
	}
	aux := transactionJSON{Essence: essence, UnlockBlocks: make([]json.RawMessage, 0, len(t.UnlockBlocks))}
	for _, block := range t.UnlockBlocks {
		b, err := json.Marshal(block)
		if err != nil {
			return nil, err
		}
		aux.UnlockBlocks = append(aux.UnlockBlocks, b)
	}
	return json.Marshal(aux)
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var aux transactionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Essence) == 0 || string(aux.Essence) == "null" {
		return fmt.Errorf("transaction is missing essence")
	}
	if aux.UnlockBlocks == nil {
		return fmt.Errorf("transaction is missing unlock blocks")
	}
	essence, err := UnmarshalEssence(aux.Essence)
	if err != nil {
		return err
	}
	blocks := make([]UnlockBlock, 0, len(aux.UnlockBlocks))
	for _, raw := range aux.UnlockBlocks {
		block, err := UnmarshalUnlockBlock(raw)
		if err != nil {
			return err
		}
		blocks = append(blocks, block)
	}
	t.Essence = essence
	t.UnlockBlocks = blocks
	return nil
}
