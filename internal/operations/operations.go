// Package operations maps ledger essences to the standardized operation list
// and back.
//
// Inputs are enumerated before outputs, both in essence order, and every
// operation index equals its position in the list.
package operations

import (
	"errors"
	"fmt"

	"github.com/scylladb/go-set/strset"
	"github.com/shopspring/decimal"
	"github.com/wx-shi/rosetta-utxo/internal/address"
	"github.com/wx-shi/rosetta-utxo/internal/ledger"
	"github.com/wx-shi/rosetta-utxo/internal/model"
	"github.com/wx-shi/rosetta-utxo/internal/txcodec"
)

const (
	TypeInput               = "INPUT"
	TypeOutput              = "OUTPUT"
	TypeDustAllowanceOutput = "DUST_ALLOWANCE_OUTPUT"

	StatusSuccess = "Success"

	CoinSpent = "coin_spent"
)

var (
	ErrMissingInputMetadata = errors.New("metadata for input missing")
	ErrUnsupportedType      = errors.New("unsupported input/output type")
	ErrUnsupportedOperation = errors.New("unsupported operation type")
	ErrInvalidOperation     = errors.New("invalid operation")
	ErrInvalidAmount        = errors.New("invalid amount")
)

// Types lists the operation types in the order they are advertised.
func Types() []string {
	return []string{TypeInput, TypeOutput, TypeDustAllowanceOutput}
}

func InputOperation(index int, id ledger.OutputID, account string, amount uint64, isSpent bool) *model.Operation {
	return &model.Operation{
		OperationIdentifier: &model.OperationIdentifier{Index: int64(index)},
		Type:                TypeInput,
		Account:             &model.AccountIdentifier{Address: account},
		Amount:              model.NewDebitAmount(amount),
		CoinChange: &model.CoinChange{
			CoinIdentifier: &model.CoinIdentifier{Identifier: id.String()},
			CoinAction:     CoinSpent,
		},
		Metadata: &model.OperationMetadata{IsSpent: isSpent},
	}
}

func OutputOperation(index int, account string, amount uint64) *model.Operation {
	return creditOperation(index, TypeOutput, account, amount)
}

func DustAllowanceOutputOperation(index int, account string, amount uint64) *model.Operation {
	return creditOperation(index, TypeDustAllowanceOutput, account, amount)
}

func creditOperation(index int, opType string, account string, amount uint64) *model.Operation {
	return &model.Operation{
		OperationIdentifier: &model.OperationIdentifier{Index: int64(index)},
		Type:                opType,
		Account:             &model.AccountIdentifier{Address: account},
		Amount:              model.NewAmount(amount),
	}
}

// EssenceToOperations lists one INPUT per consumed output, looked up in
// meta, followed by one OUTPUT or DUST_ALLOWANCE_OUTPUT per created output.
func EssenceToOperations(essence ledger.Essence, meta txcodec.InputsMetadata, hrp string) ([]*model.Operation, error) {
	regular, ok := essence.(*ledger.RegularEssence)
	if !ok {
		return nil, ledger.ErrUnsupportedEssence
	}

	operations := make([]*model.Operation, 0, len(regular.Inputs)+len(regular.Outputs))
	for _, input := range regular.Inputs {
		utxo, ok := input.(*ledger.UTXOInput)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, input)
		}
		md, ok := meta.Lookup(utxo.ID())
		if !ok || md == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingInputMetadata, utxo.ID())
		}

		var owner address.Ed25519
		switch out := md.Output.(type) {
		case *ledger.BasicOutput:
			owner = out.Address
		case *ledger.DustAllowanceOutput:
			owner = out.Address
		default:
			return nil, fmt.Errorf("%w: %T referenced by %s", ErrUnsupportedType, md.Output, utxo.ID())
		}

		operations = append(operations, InputOperation(len(operations), utxo.ID(), owner.Bech32(hrp), md.Output.Deposit(), md.IsSpent))
	}

	for _, output := range regular.Outputs {
		switch out := output.(type) {
		case *ledger.BasicOutput:
			operations = append(operations, OutputOperation(len(operations), out.Address.Bech32(hrp), out.Amount))
		case *ledger.DustAllowanceOutput:
			operations = append(operations, DustAllowanceOutputOperation(len(operations), out.Address.Bech32(hrp), out.Amount))
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, output)
		}
	}

	return operations, nil
}

// OperationsToEssence builds the regular essence the operations describe,
// keeping their relative order. Input amounts are not checked against the
// ledger here.
func OperationsToEssence(operations []*model.Operation, hrp string) (*ledger.RegularEssence, error) {
	essence := &ledger.RegularEssence{}

	for i, op := range operations {
		if op == nil || op.OperationIdentifier == nil {
			return nil, fmt.Errorf("%w: operation %d has no identifier", ErrInvalidOperation, i)
		}
		if op.OperationIdentifier.Index != int64(i) {
			return nil, fmt.Errorf("%w: operation %d has index %d", ErrInvalidOperation, i, op.OperationIdentifier.Index)
		}
		if op.Account == nil {
			return nil, fmt.Errorf("%w: operation %d has no account", ErrInvalidOperation, i)
		}
		addr, err := address.Decode(op.Account.Address, hrp)
		if err != nil {
			return nil, fmt.Errorf("%w: operation %d: %w", ErrInvalidOperation, i, err)
		}
		amount, err := ParseAmount(op.Amount)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}

		switch op.Type {
		case TypeInput:
			if op.CoinChange == nil || op.CoinChange.CoinIdentifier == nil {
				return nil, fmt.Errorf("%w: input %d has no coin identifier", ErrInvalidOperation, i)
			}
			id, err := ledger.ParseOutputID(op.CoinChange.CoinIdentifier.Identifier)
			if err != nil {
				return nil, fmt.Errorf("%w: input %d: %w", ErrInvalidOperation, i, err)
			}
			if !amount.IsNegative() {
				return nil, fmt.Errorf("%w: input %d must debit", ErrInvalidAmount, i)
			}
			essence.Inputs = append(essence.Inputs, ledger.NewUTXOInput(id))

		case TypeOutput, TypeDustAllowanceOutput:
			if !amount.IsPositive() {
				return nil, fmt.Errorf("%w: output %d must credit", ErrInvalidAmount, i)
			}
			value, err := toUint64(amount)
			if err != nil {
				return nil, fmt.Errorf("operation %d: %w", i, err)
			}
			if op.Type == TypeOutput {
				essence.Outputs = append(essence.Outputs, &ledger.BasicOutput{Address: addr, Amount: value})
			} else {
				essence.Outputs = append(essence.Outputs, &ledger.DustAllowanceOutput{Address: addr, Amount: value})
			}

		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, op.Type)
		}
	}

	return essence, nil
}

// ParseAmount reads a signed amount in the native currency. Only the
// canonical base-10 integer form is accepted.
func ParseAmount(amount *model.Amount) (decimal.Decimal, error) {
	if amount == nil || amount.Currency == nil {
		return decimal.Zero, fmt.Errorf("%w: missing amount", ErrInvalidAmount)
	}
	if amount.Currency.Symbol != model.CurrencySymbol || amount.Currency.Decimals != model.CurrencyDecimals {
		return decimal.Zero, fmt.Errorf("%w: unsupported currency %s", ErrInvalidAmount, amount.Currency.Symbol)
	}
	d, err := decimal.NewFromString(amount.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if d.String() != amount.Value || !d.Equal(d.Truncate(0)) {
		return decimal.Zero, fmt.Errorf("%w: %q is not an integer", ErrInvalidAmount, amount.Value)
	}
	if _, err := toUint64(d.Abs()); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func toUint64(d decimal.Decimal) (uint64, error) {
	b := d.BigInt()
	if b.Sign() < 0 || !b.IsUint64() {
		return 0, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, d)
	}
	return b.Uint64(), nil
}

// Sum adds up the signed amounts of all operations.
func Sum(operations []*model.Operation) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, op := range operations {
		amount, err := ParseAmount(op.Amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("operation %d: %w", i, err)
		}
		total = total.Add(amount)
	}
	return total, nil
}

// Signers returns the accounts of the INPUT operations, each once, in
// order of first appearance.
func Signers(operations []*model.Operation) []*model.AccountIdentifier {
	seen := strset.New()
	signers := make([]*model.AccountIdentifier, 0)
	for _, op := range operations {
		if op == nil || op.Type != TypeInput || op.Account == nil {
			continue
		}
		if seen.Has(op.Account.Address) {
			continue
		}
		seen.Add(op.Account.Address)
		signers = append(signers, &model.AccountIdentifier{Address: op.Account.Address})
	}
	return signers
}
