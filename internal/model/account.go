package model

type AccountBalanceRequest struct {
	NetworkIdentifier *NetworkIdentifier      `json:"network_identifier" binding:"required"`
	AccountIdentifier *AccountIdentifier      `json:"account_identifier" binding:"required"`
	BlockIdentifier   *PartialBlockIdentifier `json:"block_identifier,omitempty"`
	Currencies        []*Currency             `json:"currencies,omitempty"`
}

type AccountBalanceResponse struct {
	BlockIdentifier *BlockIdentifier `json:"block_identifier"`
	Balances        []*Amount        `json:"balances"`
}

type AccountCoinsRequest struct {
	NetworkIdentifier *NetworkIdentifier `json:"network_identifier" binding:"required"`
	AccountIdentifier *AccountIdentifier `json:"account_identifier" binding:"required"`
	IncludeMempool    bool               `json:"include_mempool"`
	Currencies        []*Currency        `json:"currencies,omitempty"`
}

type AccountCoinsResponse struct {
	BlockIdentifier *BlockIdentifier `json:"block_identifier"`
	Coins           []*Coin          `json:"coins"`
}
