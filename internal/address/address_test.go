package address

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func testPublicKey(seed byte) ed25519.PublicKey {
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed
	}
	return ed25519.NewKeyFromSeed(s).Public().(ed25519.PublicKey)
}

func TestDerive(t *testing.T) {
	pk := testPublicKey(1)

	addr, err := Derive(pk)
	require.NoError(t, err)
	assert.Equal(t, Ed25519(blake2b.Sum256(pk)), addr)

	fromHex, err := DeriveHex(hex.EncodeToString(pk))
	require.NoError(t, err)
	assert.Equal(t, addr, fromHex)
}

func TestDeriveInvalidPublicKey(t *testing.T) {
	testDefs := []struct {
		name string
		key  string
	}{
		{name: "short", key: "aabbcc"},
		{name: "long", key: strings.Repeat("00", 33)},
		{name: "not hex", key: "zz"},
		{name: "empty", key: ""},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := DeriveHex(testDef.key)
			assert.ErrorIs(t, err, ErrInvalidPublicKey)
		})
	}
}

func TestBech32RoundTrip(t *testing.T) {
	addr, err := Derive(testPublicKey(7))
	require.NoError(t, err)

	for _, hrp := range []string{"iota", "atoi"} {
		encoded := addr.Bech32(hrp)
		assert.True(t, strings.HasPrefix(encoded, hrp+"1"))

		decoded, gotHRP, err := ParseBech32(encoded)
		require.NoError(t, err)
		assert.Equal(t, hrp, gotHRP)
		assert.Equal(t, addr, decoded)
	}
}

func TestDecodeRejectsChecksumAndPrefix(t *testing.T) {
	addr, err := Derive(testPublicKey(3))
	require.NoError(t, err)
	encoded := addr.Bech32("atoi")

	// flip the last checksum character
	last := encoded[len(encoded)-1]
	replacement := byte('q')
	if last == 'q' {
		replacement = 'p'
	}
	corrupted := encoded[:len(encoded)-1] + string(replacement)
	_, err = Decode(corrupted, "atoi")
	assert.ErrorIs(t, err, ErrAddressFormat)

	_, err = Decode(encoded, "iota")
	assert.ErrorIs(t, err, ErrHRPMismatch)

	decoded, err := Decode(encoded, "atoi")
	require.NoError(t, err)
	assert.Equal(t, addr, decoded)
}

func TestHexText(t *testing.T) {
	addr, err := Derive(testPublicKey(9))
	require.NoError(t, err)

	text, err := addr.MarshalText()
	require.NoError(t, err)
	assert.Len(t, text, Size*2)

	var parsed Ed25519
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, addr, parsed)

	assert.ErrorIs(t, parsed.UnmarshalText([]byte("abcd")), ErrAddressFormat)
}
