package model

import "github.com/wx-shi/rosetta-utxo/internal/apierr"

type MetadataRequest struct{}

type NetworkRequest struct {
	NetworkIdentifier *NetworkIdentifier `json:"network_identifier" binding:"required"`
}

type NetworkListResponse struct {
	NetworkIdentifiers []*NetworkIdentifier `json:"network_identifiers"`
}

type Version struct {
	RosettaVersion    string `json:"rosetta_version"`
	NodeVersion       string `json:"node_version"`
	MiddlewareVersion string `json:"middleware_version,omitempty"`
}

type OperationStatus struct {
	Status     string `json:"status"`
	Successful bool   `json:"successful"`
}

type Allow struct {
	OperationStatuses       []*OperationStatus `json:"operation_statuses"`
	OperationTypes          []string           `json:"operation_types"`
	Errors                  []*apierr.Error    `json:"errors"`
	HistoricalBalanceLookup bool               `json:"historical_balance_lookup"`
	MempoolCoins            bool               `json:"mempool_coins"`
}

type NetworkOptionsResponse struct {
	Version *Version `json:"version"`
	Allow   *Allow   `json:"allow"`
}

type SyncStatus struct {
	CurrentIndex int64 `json:"current_index"`
	TargetIndex  int64 `json:"target_index"`
	Synced       bool  `json:"synced"`
}

type Peer struct {
	PeerID string `json:"peer_id"`
}

type NetworkStatusResponse struct {
	CurrentBlockIdentifier *BlockIdentifier `json:"current_block_identifier"`
	CurrentBlockTimestamp  int64            `json:"current_block_timestamp"`
	GenesisBlockIdentifier *BlockIdentifier `json:"genesis_block_identifier"`
	SyncStatus             *SyncStatus      `json:"sync_status,omitempty"`
	Peers                  []*Peer          `json:"peers"`
}
