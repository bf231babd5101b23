package ledger

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/wx-shi/rosetta-utxo/pkg"
	"golang.org/x/crypto/blake2b"
)

type UnlockBlockKind byte

const (
	SignatureUnlockBlockKind UnlockBlockKind = 0
	ReferenceUnlockBlockKind UnlockBlockKind = 1
)

type SignatureKind byte

const Ed25519SignatureKind SignatureKind = 0

var (
	ErrUnsupportedSignature   = errors.New("signature type not supported")
	ErrUnsupportedUnlockBlock = errors.New("unlock block type not supported")
	ErrInvalidTransaction     = errors.New("invalid transaction")
)

// Signature is a closed set: only Ed25519Signature implements it.
type Signature interface {
	Kind() SignatureKind
	pack(buf *bytes.Buffer)
}

type Ed25519Signature struct {
	PublicKey [ed25519.PublicKeySize]byte
	Signature [ed25519.SignatureSize]byte
}

func (s *Ed25519Signature) Kind() SignatureKind { return Ed25519SignatureKind }

func (s *Ed25519Signature) pack(buf *bytes.Buffer) {
	buf.WriteByte(byte(Ed25519SignatureKind))
	buf.Write(s.PublicKey[:])
	buf.Write(s.Signature[:])
}

// Valid reports whether the signature signs message under its public key.
func (s *Ed25519Signature) Valid(message []byte) bool {
	return ed25519.Verify(s.PublicKey[:], message, s.Signature[:])
}

// UnlockBlock is a closed set of SignatureUnlockBlock and ReferenceUnlockBlock.
type UnlockBlock interface {
	Kind() UnlockBlockKind
	pack(buf *bytes.Buffer) error
}

type SignatureUnlockBlock struct {
	Signature Signature
}

func (b *SignatureUnlockBlock) Kind() UnlockBlockKind { return SignatureUnlockBlockKind }

func (b *SignatureUnlockBlock) pack(buf *bytes.Buffer) error {
	if b.Signature == nil {
		return fmt.Errorf("%w: signature unlock block without signature", ErrInvalidTransaction)
	}
	buf.WriteByte(byte(SignatureUnlockBlockKind))
	b.Signature.pack(buf)
	return nil
}

// ReferenceUnlockBlock reuses the signature unlock block at index Reference.
type ReferenceUnlockBlock struct {
	Reference uint16
}

func (b *ReferenceUnlockBlock) Kind() UnlockBlockKind { return ReferenceUnlockBlockKind }

func (b *ReferenceUnlockBlock) pack(buf *bytes.Buffer) error {
	buf.WriteByte(byte(ReferenceUnlockBlockKind))
	buf.Write(pkg.Uint16ToBytes(b.Reference))
	return nil
}

type Transaction struct {
	Essence      Essence
	UnlockBlocks []UnlockBlock
}

// Pack returns the transaction payload bytes, payload kind included.
func (t *Transaction) Pack() ([]byte, error) {
	if t.Essence == nil {
		return nil, fmt.Errorf("%w: missing essence", ErrInvalidTransaction)
	}
	essence, err := t.Essence.Pack()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(pkg.Uint32ToBytes(TransactionPayloadKind))
	buf.Write(essence)
	buf.Write(pkg.Uint16ToBytes(uint16(len(t.UnlockBlocks))))
	for i, block := range t.UnlockBlocks {
		if block == nil {
			return nil, fmt.Errorf("%w: unlock block %d is empty", ErrInvalidTransaction, i)
		}
		if err := block.pack(&buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// ID derives the transaction identifier the node reports for this payload.
func (t *Transaction) ID() (TransactionID, error) {
	packed, err := t.Pack()
	if err != nil {
		return TransactionID{}, err
	}
	return blake2b.Sum256(packed), nil
}

// Validate checks the essence and the unlock block layout: one block per
// input, references only point backwards at signature blocks, and no public
// key signs twice.
func (t *Transaction) Validate() error {
	regular, ok := t.Essence.(*RegularEssence)
	if !ok {
		return ErrUnsupportedEssence
	}
	if err := regular.Validate(); err != nil {
		return err
	}
	if len(t.UnlockBlocks) != len(regular.Inputs) {
		return fmt.Errorf("%w: %d unlock blocks for %d inputs", ErrInvalidTransaction, len(t.UnlockBlocks), len(regular.Inputs))
	}

	keys := make(map[[ed25519.PublicKeySize]byte]struct{}, len(t.UnlockBlocks))
	for i, block := range t.UnlockBlocks {
		switch b := block.(type) {
		case *SignatureUnlockBlock:
			sig, ok := b.Signature.(*Ed25519Signature)
			if !ok {
				return ErrUnsupportedSignature
			}
			if _, dup := keys[sig.PublicKey]; dup {
				return fmt.Errorf("%w: duplicate signature unlock block at %d", ErrInvalidTransaction, i)
			}
			keys[sig.PublicKey] = struct{}{}
		case *ReferenceUnlockBlock:
			if int(b.Reference) >= i {
				return fmt.Errorf("%w: unlock block %d references %d", ErrInvalidTransaction, i, b.Reference)
			}
			if _, ok := t.UnlockBlocks[b.Reference].(*SignatureUnlockBlock); !ok {
				return fmt.Errorf("%w: unlock block %d references a non signature block", ErrInvalidTransaction, i)
			}
		default:
			return fmt.Errorf("%w: %T", ErrUnsupportedUnlockBlock, block)
		}
	}
	return nil
}
