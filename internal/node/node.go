// Package node talks to the ledger node REST API.
package node

//go:generate mockgen -destination=mock_node/mock_node.go -package=mock_node github.com/wx-shi/rosetta-utxo/internal/node Client

import (
	"context"
	"errors"
	"fmt"

	"github.com/wx-shi/rosetta-utxo/internal/address"
	"github.com/wx-shi/rosetta-utxo/internal/ledger"
	"github.com/wx-shi/rosetta-utxo/internal/model"
)

var ErrNotFound = errors.New("not found")

// RejectedError is returned when the node refuses a request as invalid.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected by node: %s", e.Reason)
}

type Info struct {
	Name                    string
	Version                 string
	IsHealthy               bool
	NetworkID               string
	Bech32HRP               string
	LatestMilestoneIndex    uint32
	ConfirmedMilestoneIndex uint32
	PruningIndex            uint32
}

// Milestone is a confirmation checkpoint.
type Milestone struct {
	Index     uint32
	MessageID string
	Timestamp int64 //unix 秒
}

// BlockIdentifier names the milestone the way block identifiers are reported.
func (m *Milestone) BlockIdentifier() *model.BlockIdentifier {
	return &model.BlockIdentifier{Index: int64(m.Index), Hash: m.MessageID}
}

type Output struct {
	ID          ledger.OutputID
	IsSpent     bool
	LedgerIndex uint32
	Output      ledger.Output
}

type Peer struct {
	ID        string
	Alias     string
	Connected bool
}

// Client is the set of node calls the service relies on.
type Client interface {
	Info(ctx context.Context) (*Info, error)
	ConfirmedMilestone(ctx context.Context) (*Milestone, error)
	Milestone(ctx context.Context, index uint32) (*Milestone, error)
	Balance(ctx context.Context, addr address.Ed25519) (uint64, error)
	UnspentOutputs(ctx context.Context, addr address.Ed25519) ([]*Output, error)
	Output(ctx context.Context, id ledger.OutputID) (*Output, error)
	Peers(ctx context.Context) ([]*Peer, error)
	// Submit broadcasts the transaction and returns the id of the message carrying it.
	Submit(ctx context.Context, tx *ledger.Transaction) (string, error)
}
