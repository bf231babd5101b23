package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	CurrencySymbol   = "IOTA"
	CurrencyDecimals = 0

	CurveEdwards25519    = "edwards25519"
	SignatureTypeEd25519 = "ed25519"
)

type NetworkIdentifier struct {
	Blockchain           string                `json:"blockchain" binding:"required"`
	Network              string                `json:"network" binding:"required"`
	SubNetworkIdentifier *SubNetworkIdentifier `json:"sub_network_identifier,omitempty"`
}

type SubNetworkIdentifier struct {
	Network string `json:"network"`
}

type AccountIdentifier struct {
	Address    string                `json:"address" binding:"required"`
	SubAccount *SubAccountIdentifier `json:"sub_account,omitempty"`
}

type SubAccountIdentifier struct {
	Address string `json:"address"`
}

type BlockIdentifier struct {
	Index int64  `json:"index"`
	Hash  string `json:"hash"`
}

type PartialBlockIdentifier struct {
	Index *int64  `json:"index,omitempty"`
	Hash  *string `json:"hash,omitempty"`
}

type TransactionIdentifier struct {
	Hash string `json:"hash"`
}

type Currency struct {
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

// Amount values are base-10 integers in the smallest unit, signed for operations.
type Amount struct {
	Value    string    `json:"value" binding:"required"`
	Currency *Currency `json:"currency" binding:"required"`
}

func NativeCurrency() *Currency {
	return &Currency{Symbol: CurrencySymbol, Decimals: CurrencyDecimals}
}

func NewAmount(value uint64) *Amount {
	return &Amount{Value: uintDecimal(value).String(), Currency: NativeCurrency()}
}

// NewDebitAmount is the negated amount an INPUT operation carries.
func NewDebitAmount(value uint64) *Amount {
	return &Amount{Value: uintDecimal(value).Neg().String(), Currency: NativeCurrency()}
}

func uintDecimal(value uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(value), 0)
}

type OperationIdentifier struct {
	Index        int64  `json:"index"`
	NetworkIndex *int64 `json:"network_index,omitempty"`
}

type CoinIdentifier struct {
	Identifier string `json:"identifier" binding:"required"`
}

type CoinChange struct {
	CoinIdentifier *CoinIdentifier `json:"coin_identifier" binding:"required"`
	CoinAction     string          `json:"coin_action"`
}

type Coin struct {
	CoinIdentifier *CoinIdentifier `json:"coin_identifier"`
	Amount         *Amount         `json:"amount"`
}

type OperationMetadata struct {
	IsSpent bool `json:"is_spent"`
}

type Operation struct {
	OperationIdentifier *OperationIdentifier   `json:"operation_identifier" binding:"required"`
	RelatedOperations   []*OperationIdentifier `json:"related_operations,omitempty"`
	Type                string                 `json:"type" binding:"required"`
	Status              string                 `json:"status,omitempty"`
	Account             *AccountIdentifier     `json:"account,omitempty"`
	Amount              *Amount                `json:"amount,omitempty"`
	CoinChange          *CoinChange            `json:"coin_change,omitempty"`
	Metadata            *OperationMetadata     `json:"metadata,omitempty"`
}

type PublicKey struct {
	HexBytes  string `json:"hex_bytes" binding:"required,hexbytes"`
	CurveType string `json:"curve_type" binding:"required"`
}

type SigningPayload struct {
	AccountIdentifier *AccountIdentifier `json:"account_identifier,omitempty"`
	HexBytes          string             `json:"hex_bytes" binding:"required,hexbytes"`
	SignatureType     string             `json:"signature_type,omitempty"`
}

type Signature struct {
	SigningPayload *SigningPayload `json:"signing_payload" binding:"required"`
	PublicKey      *PublicKey      `json:"public_key" binding:"required"`
	SignatureType  string          `json:"signature_type" binding:"required"`
	HexBytes       string          `json:"hex_bytes" binding:"required,hexbytes"`
}
