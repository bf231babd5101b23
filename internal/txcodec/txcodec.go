// Package txcodec carries unsigned and signed transactions between the
// construction steps as opaque strings: the hex encoding of their JSON form.
//
// Both envelopes embed the metadata of every output the essence consumes so
// that later steps never have to query the node again.
package txcodec

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wx-shi/rosetta-utxo/internal/ledger"
)

var ErrMalformedTransaction = errors.New("malformed transaction")

// InputMetadata describes the output an input consumes, as reported by the node.
type InputMetadata struct {
	TransactionID ledger.TransactionID
	OutputIndex   uint16
	IsSpent       bool
	Output        ledger.Output
}

func (m *InputMetadata) OutputID() ledger.OutputID {
	return ledger.OutputID{TransactionID: m.TransactionID, Index: m.OutputIndex}
}

type inputMetadataJSON struct {
	TransactionID ledger.TransactionID `json:"transaction_id"`
	OutputIndex   uint16               `json:"output_index"`
	IsSpent       bool                 `json:"is_spent"`
	Output        json.RawMessage      `json:"output"`
}

func (m *InputMetadata) MarshalJSON() ([]byte, error) {
	out, err := json.Marshal(m.Output)
	if err != nil {
		return nil, err
	}
	return json.Marshal(inputMetadataJSON{
		TransactionID: m.TransactionID,
		OutputIndex:   m.OutputIndex,
		IsSpent:       m.IsSpent,
		Output:        out,
	})
}

func (m *InputMetadata) UnmarshalJSON(data []byte) error {
	var aux inputMetadataJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Output) == 0 || string(aux.Output) == "null" {
		return fmt.Errorf("input metadata is missing output")
	}
	out, err := ledger.UnmarshalOutput(aux.Output)
	if err != nil {
		return err
	}
	m.TransactionID = aux.TransactionID
	m.OutputIndex = aux.OutputIndex
	m.IsSpent = aux.IsSpent
	m.Output = out
	return nil
}

// InputsMetadata is keyed by the "{transaction_id}:{output_index}" form of the output id.
type InputsMetadata map[string]*InputMetadata

func (m InputsMetadata) Lookup(id ledger.OutputID) (*InputMetadata, bool) {
	md, ok := m[id.String()]
	return md, ok
}

type UnsignedTransaction struct {
	Essence        ledger.Essence
	InputsMetadata InputsMetadata
}

type unsignedJSON struct {
	Essence        json.RawMessage `json:"essence"`
	InputsMetadata InputsMetadata  `json:"inputs_metadata"`
}

func (u *UnsignedTransaction) MarshalJSON() ([]byte, error) {
	essence, err := json.Marshal(u.Essence)
	if err != nil {
		return nil, err
	}
	return json.Marshal(unsignedJSON{Essence: essence, InputsMetadata: u.InputsMetadata})
}

func (u *UnsignedTransaction) UnmarshalJSON(data []byte) error {
	var aux unsignedJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Essence) == 0 || string(aux.Essence) == "null" {
		return fmt.Errorf("missing essence")
	}
	if aux.InputsMetadata == nil {
		return fmt.Errorf("missing inputs metadata")
	}
	essence, err := ledger.UnmarshalEssence(aux.Essence)
	if err != nil {
		return err
	}
	u.Essence = essence
	u.InputsMetadata = aux.InputsMetadata
	return nil
}

type SignedTransaction struct {
	Transaction    *ledger.Transaction `json:"transaction"`
	InputsMetadata InputsMetadata      `json:"inputs_metadata"`
}

func (s *SignedTransaction) UnmarshalJSON(data []byte) error {
	// alias drops the method set so the default decoder can be reused
	type signed SignedTransaction
	var aux signed
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Transaction == nil {
		return fmt.Errorf("missing transaction")
	}
	if aux.InputsMetadata == nil {
		return fmt.Errorf("missing inputs metadata")
	}
	*s = SignedTransaction(aux)
	return nil
}

func SerializeUnsigned(tx *UnsignedTransaction) (string, error) {
	return serialize(tx)
}

func SerializeSigned(tx *SignedTransaction) (string, error) {
	return serialize(tx)
}

func DeserializeUnsigned(s string) (*UnsignedTransaction, error) {
	tx := &UnsignedTransaction{}
	if err := deserialize(s, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func DeserializeSigned(s string) (*SignedTransaction, error) {
	tx := &SignedTransaction{}
	if err := deserialize(s, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func serialize(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func deserialize(s string, v interface{}) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedTransaction, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedTransaction, err)
	}
	return nil
}
