package ledger

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const TransactionIDLength = 32

var ErrInvalidOutputID = errors.New("invalid output identifier")

// TransactionID is the BLAKE2b-256 digest of a packed transaction payload.
type TransactionID [TransactionIDLength]byte

func (id TransactionID) String() string {
	return hex.EncodeToString(id[:])
}

func (id TransactionID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *TransactionID) UnmarshalText(text []byte) error {
	parsed, err := ParseTransactionID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func ParseTransactionID(s string) (TransactionID, error) {
	var id TransactionID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid transaction id: %w", err)
	}
	if len(b) != TransactionIDLength {
		return id, fmt.Errorf("invalid transaction id length %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// OutputID references one output of a transaction. Its string form
// "{transaction_id}:{output_index}" is used as coin identifier and as the
// key of the input metadata carried in transaction envelopes.
type OutputID struct {
	TransactionID TransactionID
	Index         uint16
}

func (o OutputID) String() string {
	return o.TransactionID.String() + ":" + strconv.FormatUint(uint64(o.Index), 10)
}

func ParseOutputID(s string) (OutputID, error) {
	var o OutputID
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return o, fmt.Errorf("%w: %q", ErrInvalidOutputID, s)
	}
	txID, err := ParseTransactionID(parts[0])
	if err != nil {
		return o, fmt.Errorf("%w: %v", ErrInvalidOutputID, err)
	}
	index, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return o, fmt.Errorf("%w: %v", ErrInvalidOutputID, err)
	}
	if index >= MaxOutputsCount {
		return o, fmt.Errorf("%w: output index %d out of range", ErrInvalidOutputID, index)
	}
	o.TransactionID = txID
	o.Index = uint16(index)
	return o, nil
}

// HexBytes is a byte slice carried as a hex string in JSON.
type HexBytes []byte

func (b HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}

func (b *HexBytes) UnmarshalText(text []byte) error {
	decoded, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
