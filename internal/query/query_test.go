package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wx-shi/rosetta-utxo/internal/address"
	"github.com/wx-shi/rosetta-utxo/internal/apierr"
	"github.com/wx-shi/rosetta-utxo/internal/config"
	"github.com/wx-shi/rosetta-utxo/internal/ledger"
	"github.com/wx-shi/rosetta-utxo/internal/model"
	"github.com/wx-shi/rosetta-utxo/internal/node"
	"github.com/wx-shi/rosetta-utxo/internal/node/mock_node"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var owner = address.Ed25519{0x42}

func testConfig(mode config.Mode) *config.Config {
	return &config.Config{
		Network: &config.NetworkConfig{Blockchain: "iota", Network: "testnet7", Bech32HRP: "atoi", Mode: mode},
		Balance: &config.BalanceConfig{CheckpointDelay: time.Millisecond},
	}
}

func testNetwork() *model.NetworkIdentifier {
	return &model.NetworkIdentifier{Blockchain: "iota", Network: "testnet7"}
}

func newTestService(t *testing.T, conf *config.Config) (*Service, *mock_node.MockClient, *[]time.Duration) {
	ctl := gomock.NewController(t)
	client := mock_node.NewMockClient(ctl)
	s := NewService(conf, client, zap.NewNop())

	var slept []time.Duration
	s.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return s, client, &slept
}

func milestone(index uint32) *node.Milestone {
	return &node.Milestone{Index: index, MessageID: "ms"}
}

func TestBalanceOfStable(t *testing.T) {
	s, client, slept := newTestService(t, testConfig(config.Online))
	ctx := context.Background()

	gomock.InOrder(
		client.EXPECT().ConfirmedMilestone(ctx).Return(milestone(10), nil),
		client.EXPECT().Balance(ctx, owner).Return(uint64(5_000_000), nil),
		client.EXPECT().ConfirmedMilestone(ctx).Return(milestone(10), nil),
	)

	balance, ms, err := s.BalanceOf(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000), balance)
	assert.Equal(t, uint32(10), ms.Index)
	assert.Empty(t, *slept)
}

func TestBalanceOfRetriesWhenMilestoneMoves(t *testing.T) {
	s, client, slept := newTestService(t, testConfig(config.Online))
	ctx := context.Background()

	gomock.InOrder(
		client.EXPECT().ConfirmedMilestone(ctx).Return(milestone(10), nil),
		client.EXPECT().Balance(ctx, owner).Return(uint64(1), nil),
		client.EXPECT().ConfirmedMilestone(ctx).Return(milestone(11), nil),
		client.EXPECT().ConfirmedMilestone(ctx).Return(milestone(11), nil),
		client.EXPECT().Balance(ctx, owner).Return(uint64(2), nil),
		client.EXPECT().ConfirmedMilestone(ctx).Return(milestone(11), nil),
	)

	balance, ms, err := s.BalanceOf(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), balance)
	assert.Equal(t, uint32(11), ms.Index)
	assert.Equal(t, []time.Duration{time.Millisecond}, *slept)
}

func TestBalanceOfPropagatesNodeErrors(t *testing.T) {
	s, client, _ := newTestService(t, testConfig(config.Online))
	ctx := context.Background()
	nodeErr := apierr.Retriable("unable to reach node")

	gomock.InOrder(
		client.EXPECT().ConfirmedMilestone(ctx).Return(milestone(10), nil),
		client.EXPECT().Balance(ctx, owner).Return(uint64(0), nodeErr),
	)

	_, _, err := s.BalanceOf(ctx, owner)
	assert.Same(t, nodeErr, err)
}

func TestBalanceOfAttemptLimit(t *testing.T) {
	conf := testConfig(config.Online)
	conf.Balance.MaxAttempts = 2
	s, client, _ := newTestService(t, conf)
	ctx := context.Background()

	index := uint32(0)
	client.EXPECT().ConfirmedMilestone(ctx).DoAndReturn(func(context.Context) (*node.Milestone, error) {
		index++
		return milestone(index), nil
	}).Times(4)
	client.EXPECT().Balance(ctx, owner).Return(uint64(1), nil).Times(2)

	_, _, err := s.BalanceOf(ctx, owner)
	var apiErr *apierr.Error
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Retriable)
}

func TestAccountBalance(t *testing.T) {
	s, client, _ := newTestService(t, testConfig(config.Online))
	ctx := context.Background()

	client.EXPECT().ConfirmedMilestone(ctx).Return(&node.Milestone{Index: 7, MessageID: "aa"}, nil).Times(2)
	client.EXPECT().Balance(ctx, owner).Return(uint64(1_500_000), nil)

	resp, err := s.AccountBalance(ctx, &model.AccountBalanceRequest{
		NetworkIdentifier: testNetwork(),
		AccountIdentifier: &model.AccountIdentifier{Address: owner.Bech32("atoi")},
	})
	require.NoError(t, err)
	assert.Equal(t, &model.BlockIdentifier{Index: 7, Hash: "aa"}, resp.BlockIdentifier)
	require.Len(t, resp.Balances, 1)
	assert.Equal(t, "1500000", resp.Balances[0].Value)
	assert.Equal(t, model.NativeCurrency(), resp.Balances[0].Currency)
}

func TestAccountBalanceRejects(t *testing.T) {
	index := int64(3)
	testDefs := []struct {
		name    string
		mode    config.Mode
		req     *model.AccountBalanceRequest
		message string
	}{
		{
			name: "historical",
			mode: config.Online,
			req: &model.AccountBalanceRequest{
				NetworkIdentifier: testNetwork(),
				AccountIdentifier: &model.AccountIdentifier{Address: owner.Bech32("atoi")},
				BlockIdentifier:   &model.PartialBlockIdentifier{Index: &index},
			},
			message: "historical balance lookup not supported",
		},
		{
			name: "offline",
			mode: config.Offline,
			req: &model.AccountBalanceRequest{
				NetworkIdentifier: testNetwork(),
				AccountIdentifier: &model.AccountIdentifier{Address: owner.Bech32("atoi")},
			},
			message: "endpoint does not support offline mode",
		},
		{
			name: "wrong network",
			mode: config.Online,
			req: &model.AccountBalanceRequest{
				NetworkIdentifier: &model.NetworkIdentifier{Blockchain: "iota", Network: "mainnet"},
				AccountIdentifier: &model.AccountIdentifier{Address: owner.Bech32("atoi")},
			},
			message: "wrong network",
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			s, _, _ := newTestService(t, testConfig(testDef.mode))
			_, err := s.AccountBalance(context.Background(), testDef.req)
			var apiErr *apierr.Error
			require.True(t, errors.As(err, &apiErr))
			assert.False(t, apiErr.Retriable)
			assert.Equal(t, testDef.message, apiErr.Message)
		})
	}

	s, _, _ := newTestService(t, testConfig(config.Online))
	_, err := s.AccountBalance(context.Background(), &model.AccountBalanceRequest{
		NetworkIdentifier: testNetwork(),
		AccountIdentifier: &model.AccountIdentifier{Address: owner.Bech32("iota")},
	})
	var apiErr *apierr.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Message, address.ErrHRPMismatch.Error())
}

func TestAccountCoins(t *testing.T) {
	s, client, _ := newTestService(t, testConfig(config.Online))
	ctx := context.Background()
	id := ledger.OutputID{TransactionID: ledger.TransactionID{0x0f}, Index: 3}

	gomock.InOrder(
		client.EXPECT().ConfirmedMilestone(ctx).Return(&node.Milestone{Index: 9, MessageID: "bb"}, nil),
		client.EXPECT().UnspentOutputs(ctx, owner).Return([]*node.Output{
			{ID: id, Output: &ledger.BasicOutput{Address: owner, Amount: 2_000_000}},
		}, nil),
	)

	resp, err := s.AccountCoins(ctx, &model.AccountCoinsRequest{
		NetworkIdentifier: testNetwork(),
		AccountIdentifier: &model.AccountIdentifier{Address: owner.Bech32("atoi")},
	})
	require.NoError(t, err)
	assert.Equal(t, &model.BlockIdentifier{Index: 9, Hash: "bb"}, resp.BlockIdentifier)
	require.Len(t, resp.Coins, 1)
	assert.Equal(t, id.String(), resp.Coins[0].CoinIdentifier.Identifier)
	assert.Equal(t, "2000000", resp.Coins[0].Amount.Value)
}
