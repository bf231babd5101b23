package model

import "github.com/wx-shi/rosetta-utxo/internal/txcodec"

type ConstructionDeriveRequest struct {
	NetworkIdentifier *NetworkIdentifier `json:"network_identifier" binding:"required"`
	PublicKey         *PublicKey         `json:"public_key" binding:"required"`
}

type ConstructionDeriveResponse struct {
	AccountIdentifier *AccountIdentifier `json:"account_identifier"`
}

// PreprocessOptions is passed unchanged from preprocess to metadata.
type PreprocessOptions struct {
	UTXOInputs []string `json:"utxo_inputs"`
}

type ConstructionPreprocessRequest struct {
	NetworkIdentifier *NetworkIdentifier `json:"network_identifier" binding:"required"`
	Operations        []*Operation       `json:"operations" binding:"required,min=1,dive"`
}

type ConstructionPreprocessResponse struct {
	Options            *PreprocessOptions   `json:"options"`
	RequiredPublicKeys []*AccountIdentifier `json:"required_public_keys"`
}

// ConstructionMetadata is passed unchanged from metadata to payloads.
type ConstructionMetadata struct {
	UTXOInputsMetadata txcodec.InputsMetadata `json:"utxo_inputs_metadata"`
	NetworkID          string                 `json:"network_id,omitempty"`
}

type ConstructionMetadataRequest struct {
	NetworkIdentifier *NetworkIdentifier `json:"network_identifier" binding:"required"`
	Options           *PreprocessOptions `json:"options" binding:"required"`
	PublicKeys        []*PublicKey       `json:"public_keys,omitempty"`
}

type ConstructionMetadataResponse struct {
	Metadata     *ConstructionMetadata `json:"metadata"`
	SuggestedFee []*Amount             `json:"suggested_fee,omitempty"`
}

type ConstructionPayloadsRequest struct {
	NetworkIdentifier *NetworkIdentifier    `json:"network_identifier" binding:"required"`
	Operations        []*Operation          `json:"operations" binding:"required,min=1,dive"`
	Metadata          *ConstructionMetadata `json:"metadata" binding:"required"`
	PublicKeys        []*PublicKey          `json:"public_keys,omitempty"`
}

type ConstructionPayloadsResponse struct {
	UnsignedTransaction string            `json:"unsigned_transaction"`
	Payloads            []*SigningPayload `json:"payloads"`
}

type ConstructionCombineRequest struct {
	NetworkIdentifier   *NetworkIdentifier `json:"network_identifier" binding:"required"`
	UnsignedTransaction string             `json:"unsigned_transaction" binding:"required,hexbytes"`
	Signatures          []*Signature       `json:"signatures" binding:"required,dive"`
}

type ConstructionCombineResponse struct {
	SignedTransaction string `json:"signed_transaction"`
}

type ConstructionHashRequest struct {
	NetworkIdentifier *NetworkIdentifier `json:"network_identifier" binding:"required"`
	SignedTransaction string             `json:"signed_transaction" binding:"required,hexbytes"`
}

type TransactionIdentifierResponse struct {
	TransactionIdentifier *TransactionIdentifier `json:"transaction_identifier"`
}

type ConstructionSubmitRequest struct {
	NetworkIdentifier *NetworkIdentifier `json:"network_identifier" binding:"required"`
	SignedTransaction string             `json:"signed_transaction" binding:"required,hexbytes"`
}

type ConstructionParseRequest struct {
	NetworkIdentifier *NetworkIdentifier `json:"network_identifier" binding:"required"`
	Signed            bool               `json:"signed"`
	Transaction       string             `json:"transaction" binding:"required,hexbytes"`
}

type ConstructionParseResponse struct {
	Operations               []*Operation         `json:"operations"`
	AccountIdentifierSigners []*AccountIdentifier `json:"account_identifier_signers,omitempty"`
}
