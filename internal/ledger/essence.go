package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/wx-shi/rosetta-utxo/pkg"
	"golang.org/x/crypto/blake2b"
)

type EssenceKind byte

const RegularEssenceKind EssenceKind = 0

const (
	TransactionPayloadKind uint32 = 0
	IndexationPayloadKind  uint32 = 2

	MaxIndexLength = 64
)

var (
	ErrUnsupportedEssence = errors.New("essence type not supported")
	ErrInvalidEssence     = errors.New("invalid essence")
)

// Essence is the signed part of a transaction. RegularEssence is the only
// kind this ledger accepts.
type Essence interface {
	Kind() EssenceKind
	Pack() ([]byte, error)
}

// Indexation is the optional tagged payload embedded in an essence.
type Indexation struct {
	Index HexBytes `json:"index"`
	Data  HexBytes `json:"data,omitempty"`
}

func (p *Indexation) pack() ([]byte, error) {
	if len(p.Index) == 0 || len(p.Index) > MaxIndexLength {
		return nil, fmt.Errorf("%w: indexation index length %d", ErrInvalidEssence, len(p.Index))
	}
	var buf bytes.Buffer
	buf.Write(pkg.Uint32ToBytes(IndexationPayloadKind))
	buf.Write(pkg.Uint16ToBytes(uint16(len(p.Index))))
	buf.Write(p.Index)
	buf.Write(pkg.Uint32ToBytes(uint32(len(p.Data))))
	buf.Write(p.Data)
	return buf.Bytes(), nil
}

type RegularEssence struct {
	Inputs  []Input
	Outputs []Output
	Payload *Indexation
}

func (e *RegularEssence) Kind() EssenceKind { return RegularEssenceKind }

// Pack returns the canonical binary form of the essence.
func (e *RegularEssence) Pack() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(RegularEssenceKind))

	buf.Write(pkg.Uint16ToBytes(uint16(len(e.Inputs))))
	for i, in := range e.Inputs {
		if in == nil {
			return nil, fmt.Errorf("%w: input %d is empty", ErrInvalidEssence, i)
		}
		in.pack(&buf)
	}

	buf.Write(pkg.Uint16ToBytes(uint16(len(e.Outputs))))
	for i, out := range e.Outputs {
		if out == nil {
			return nil, fmt.Errorf("%w: output %d is empty", ErrInvalidEssence, i)
		}
		if err := out.pack(&buf); err != nil {
			return nil, err
		}
	}

	if e.Payload == nil {
		buf.Write(pkg.Uint32ToBytes(0))
		return buf.Bytes(), nil
	}
	payload, err := e.Payload.pack()
	if err != nil {
		return nil, err
	}
	buf.Write(pkg.Uint32ToBytes(uint32(len(payload))))
	buf.Write(payload)
	return buf.Bytes(), nil
}

// Sort orders inputs and outputs lexicographically by their packed form,
// which the ledger requires of every regular essence.
func (e *RegularEssence) Sort() error {
	inputKeys := make(map[Input][]byte, len(e.Inputs))
	for _, in := range e.Inputs {
		var buf bytes.Buffer
		in.pack(&buf)
		inputKeys[in] = buf.Bytes()
	}
	sort.SliceStable(e.Inputs, func(i, j int) bool {
		return bytes.Compare(inputKeys[e.Inputs[i]], inputKeys[e.Inputs[j]]) < 0
	})

	outputKeys := make(map[Output][]byte, len(e.Outputs))
	for _, out := range e.Outputs {
		var buf bytes.Buffer
		if err := out.pack(&buf); err != nil {
			return err
		}
		outputKeys[out] = buf.Bytes()
	}
	sort.SliceStable(e.Outputs, func(i, j int) bool {
		return bytes.Compare(outputKeys[e.Outputs[i]], outputKeys[e.Outputs[j]]) < 0
	})
	return nil
}

// Validate applies the syntactic rules the node enforces on a regular essence.
func (e *RegularEssence) Validate() error {
	if len(e.Inputs) == 0 || len(e.Inputs) > MaxInputsCount {
		return fmt.Errorf("%w: %d inputs", ErrInvalidEssence, len(e.Inputs))
	}
	if len(e.Outputs) == 0 || len(e.Outputs) > MaxOutputsCount {
		return fmt.Errorf("%w: %d outputs", ErrInvalidEssence, len(e.Outputs))
	}

	seen := make(map[OutputID]struct{}, len(e.Inputs))
	for _, in := range e.Inputs {
		utxo, ok := in.(*UTXOInput)
		if !ok {
			return fmt.Errorf("%w: %T", ErrUnsupportedInput, in)
		}
		if utxo.OutputIndex >= MaxOutputsCount {
			return fmt.Errorf("%w: output index %d", ErrInvalidEssence, utxo.OutputIndex)
		}
		if _, dup := seen[utxo.ID()]; dup {
			return fmt.Errorf("%w: duplicate input %s", ErrInvalidEssence, utxo.ID())
		}
		seen[utxo.ID()] = struct{}{}
	}

	var total uint64
	for _, out := range e.Outputs {
		switch o := out.(type) {
		case *BasicOutput:
		case *DustAllowanceOutput:
			if o.Amount < DustThreshold {
				return fmt.Errorf("%w: dust allowance %d below threshold %d", ErrInvalidEssence, o.Amount, DustThreshold)
			}
		default:
			return fmt.Errorf("%w: %T", ErrUnsupportedOutput, out)
		}
		amount := out.Deposit()
		if amount == 0 || amount > TotalSupply-total {
			return fmt.Errorf("%w: output amount %d", ErrInvalidEssence, amount)
		}
		total += amount
	}

	if e.Payload != nil {
		if _, err := e.Payload.pack(); err != nil {
			return err
		}
	}
	return nil
}

// EssenceHash is the digest every ed25519 signature of the transaction signs.
func EssenceHash(e Essence) ([blake2b.Size256]byte, error) {
	packed, err := e.Pack()
	if err != nil {
		return [blake2b.Size256]byte{}, err
	}
	return blake2b.Sum256(packed), nil
}
