// Package address derives ledger addresses from ed25519 public keys and
// converts them to and from their bech32 human readable form.
package address

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

const (
	// Ed25519Kind is the address kind byte prefixed to the payload before bech32 encoding.
	Ed25519Kind byte = 0

	// Size is the length of an ed25519 address payload.
	Size = blake2b.Size256
)

var (
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrAddressFormat    = errors.New("invalid address format")
	ErrHRPMismatch      = errors.New("address prefix does not match network")
)

// Ed25519 is the BLAKE2b-256 digest of an ed25519 public key.
type Ed25519 [Size]byte

// Derive hashes the raw public key into an address.
func Derive(publicKey []byte) (Ed25519, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return Ed25519{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, ed25519.PublicKeySize, len(publicKey))
	}
	return blake2b.Sum256(publicKey), nil
}

// DeriveHex is Derive for a hex encoded public key.
func DeriveHex(publicKey string) (Ed25519, error) {
	b, err := hex.DecodeString(publicKey)
	if err != nil {
		return Ed25519{}, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return Derive(b)
}

func (a Ed25519) String() string {
	return hex.EncodeToString(a[:])
}

func (a Ed25519) Bytes() []byte {
	return a[:]
}

// Bech32 encodes the kind byte and payload with the given human readable prefix.
func (a Ed25519) Bech32(hrp string) string {
	data := make([]byte, 0, Size+1)
	data = append(data, Ed25519Kind)
	data = append(data, a[:]...)

	// Convert data to base32 and encode as bech32
	conv, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		panic(fmt.Sprintf("unexpected error converting data to base32: %s", err))
	}
	encoded, err := bech32.Encode(hrp, conv)
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding data as bech32: %s", err))
	}
	return encoded
}

func (a Ed25519) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Ed25519) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseHex reads the hex form used by the node API and the transaction envelopes.
func ParseHex(s string) (Ed25519, error) {
	var a Ed25519
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrAddressFormat, err)
	}
	if len(b) != Size {
		return a, fmt.Errorf("%w: expected %d bytes, got %d", ErrAddressFormat, Size, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// ParseBech32 decodes a human readable address and returns it with its prefix.
func ParseBech32(s string) (Ed25519, string, error) {
	var a Ed25519
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return a, "", fmt.Errorf("%w: %v", ErrAddressFormat, err)
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return a, "", fmt.Errorf("%w: %v", ErrAddressFormat, err)
	}
	if len(decoded) != Size+1 {
		return a, "", fmt.Errorf("%w: unexpected payload length %d", ErrAddressFormat, len(decoded))
	}
	if decoded[0] != Ed25519Kind {
		return a, "", fmt.Errorf("%w: unsupported address kind %d", ErrAddressFormat, decoded[0])
	}
	copy(a[:], decoded[1:])
	return a, hrp, nil
}

// Decode parses a bech32 address and rejects it unless the prefix equals hrp.
func Decode(s string, hrp string) (Ed25519, error) {
	a, got, err := ParseBech32(s)
	if err != nil {
		return a, err
	}
	if got != hrp {
		return a, fmt.Errorf("%w: got %q, want %q", ErrHRPMismatch, got, hrp)
	}
	return a, nil
}
