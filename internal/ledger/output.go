package ledger

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wx-shi/rosetta-utxo/internal/address"
	"github.com/wx-shi/rosetta-utxo/pkg"
)

type InputKind byte

const UTXOInputKind InputKind = 0

type OutputKind byte

const (
	BasicOutputKind         OutputKind = 0
	DustAllowanceOutputKind OutputKind = 1
	TreasuryOutputKind      OutputKind = 2
)

const (
	MaxInputsCount  = 127
	MaxOutputsCount = 127

	// DustThreshold is the smallest deposit a dust allowance output may carry.
	DustThreshold uint64 = 1_000_000

	TotalSupply uint64 = 2_779_530_283_277_761
)

var (
	ErrUnsupportedInput  = errors.New("input type not supported")
	ErrUnsupportedOutput = errors.New("output type not supported")
)

// Input is a closed set: only UTXOInput implements it.
type Input interface {
	Kind() InputKind
	pack(buf *bytes.Buffer)
}

type UTXOInput struct {
	TransactionID TransactionID
	OutputIndex   uint16
}

func NewUTXOInput(id OutputID) *UTXOInput {
	return &UTXOInput{TransactionID: id.TransactionID, OutputIndex: id.Index}
}

func (i *UTXOInput) Kind() InputKind { return UTXOInputKind }

func (i *UTXOInput) ID() OutputID {
	return OutputID{TransactionID: i.TransactionID, Index: i.OutputIndex}
}

func (i *UTXOInput) pack(buf *bytes.Buffer) {
	buf.WriteByte(byte(UTXOInputKind))
	buf.Write(i.TransactionID[:])
	buf.Write(pkg.Uint16ToBytes(i.OutputIndex))
}

// Output is a closed set of BasicOutput, DustAllowanceOutput and
// TreasuryOutput. Treasury outputs are reported by the node but can never
// be spent or created by a regular essence.
type Output interface {
	Kind() OutputKind
	Deposit() uint64
	pack(buf *bytes.Buffer) error
}

type BasicOutput struct {
	Address address.Ed25519
	Amount  uint64
}

func (o *BasicOutput) Kind() OutputKind { return BasicOutputKind }
func (o *BasicOutput) Deposit() uint64  { return o.Amount }

func (o *BasicOutput) pack(buf *bytes.Buffer) error {
	packAddressOutput(buf, BasicOutputKind, o.Address, o.Amount)
	return nil
}

type DustAllowanceOutput struct {
	Address address.Ed25519
	Amount  uint64
}

func (o *DustAllowanceOutput) Kind() OutputKind { return DustAllowanceOutputKind }
func (o *DustAllowanceOutput) Deposit() uint64  { return o.Amount }

func (o *DustAllowanceOutput) pack(buf *bytes.Buffer) error {
	packAddressOutput(buf, DustAllowanceOutputKind, o.Address, o.Amount)
	return nil
}

type TreasuryOutput struct {
	Amount uint64
}

func (o *TreasuryOutput) Kind() OutputKind { return TreasuryOutputKind }
func (o *TreasuryOutput) Deposit() uint64  { return o.Amount }

func (o *TreasuryOutput) pack(*bytes.Buffer) error {
	return fmt.Errorf("%w: treasury output in regular essence", ErrUnsupportedOutput)
}

func packAddressOutput(buf *bytes.Buffer, kind OutputKind, addr address.Ed25519, amount uint64) {
	buf.WriteByte(byte(kind))
	buf.WriteByte(address.Ed25519Kind)
	buf.Write(addr[:])
	buf.Write(pkg.Uint64ToBytes(amount))
}

// OutputAddress returns the single owner of a spendable output.
func OutputAddress(o Output) (address.Ed25519, error) {
	switch out := o.(type) {
	case *BasicOutput:
		return out.Address, nil
	case *DustAllowanceOutput:
		return out.Address, nil
	default:
		return address.Ed25519{}, fmt.Errorf("%w: %T has no owner", ErrUnsupportedOutput, o)
	}
}
