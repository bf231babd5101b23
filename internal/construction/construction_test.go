package construction

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

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
	"github.com/wx-shi/rosetta-utxo/internal/operations"
	"github.com/wx-shi/rosetta-utxo/internal/txcodec"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

const hrp = "atoi"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(mode config.Mode) *config.Config {
	return &config.Config{
		Network: &config.NetworkConfig{Blockchain: "iota", Network: "testnet7", Bech32HRP: hrp, Mode: mode, TxTag: "rosetta"},
	}
}

func testNetwork() *model.NetworkIdentifier {
	return &model.NetworkIdentifier{Blockchain: "iota", Network: "testnet7"}
}

func newTestService(t *testing.T, mode config.Mode) (*Service, *mock_node.MockClient) {
	ctl := gomock.NewController(t)
	client := mock_node.NewMockClient(ctl)
	return NewService(testConfig(mode), client, zap.NewNop()), client
}

type wallet struct {
	key     ed25519.PrivateKey
	address address.Ed25519
}

func newWallet(t *testing.T, seed byte) *wallet {
	key := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{seed}, ed25519.SeedSize))
	addr, err := address.Derive(key.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	return &wallet{key: key, address: addr}
}

func (w *wallet) account() string {
	return w.address.Bech32(hrp)
}

func (w *wallet) publicKey() *model.PublicKey {
	return &model.PublicKey{
		HexBytes:  hex.EncodeToString(w.key.Public().(ed25519.PublicKey)),
		CurveType: model.CurveEdwards25519,
	}
}

func (w *wallet) sign(t *testing.T, payload *model.SigningPayload) *model.Signature {
	msg, err := hex.DecodeString(payload.HexBytes)
	require.NoError(t, err)
	return &model.Signature{
		SigningPayload: payload,
		PublicKey:      w.publicKey(),
		SignatureType:  model.SignatureTypeEd25519,
		HexBytes:       hex.EncodeToString(ed25519.Sign(w.key, msg)),
	}
}

type fixture struct {
	alice, bob, carol *wallet
	ids               []ledger.OutputID
	owners            []*wallet
	amounts           []uint64
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{alice: newWallet(t, 1), bob: newWallet(t, 2), carol: newWallet(t, 3)}
	f.ids = []ledger.OutputID{
		{TransactionID: ledger.TransactionID{0x01}, Index: 0},
		{TransactionID: ledger.TransactionID{0x01}, Index: 1},
		{TransactionID: ledger.TransactionID{0x02}, Index: 0},
	}
	f.owners = []*wallet{f.alice, f.alice, f.bob}
	f.amounts = []uint64{1_000_000, 2_000_000, 1_000_000}
	return f
}

// operations spends all three outputs into one output owned by carol.
func (f *fixture) operations() []*model.Operation {
	ops := make([]*model.Operation, 0, len(f.ids)+1)
	var total uint64
	for i, id := range f.ids {
		ops = append(ops, operations.InputOperation(i, id, f.owners[i].account(), f.amounts[i], false))
		total += f.amounts[i]
	}
	return append(ops, operations.OutputOperation(len(ops), f.carol.account(), total))
}

func (f *fixture) expectOutputs(client *mock_node.MockClient) {
	for i, id := range f.ids {
		client.EXPECT().Output(gomock.Any(), id).Return(&node.Output{
			ID:     id,
			Output: &ledger.BasicOutput{Address: f.owners[i].address, Amount: f.amounts[i]},
		}, nil)
	}
}

func requireAPIError(t *testing.T, err error) *apierr.Error {
	t.Helper()
	var apiErr *apierr.Error
	require.True(t, errors.As(err, &apiErr), "expected *apierr.Error, got %v", err)
	return apiErr
}

func TestPipeline(t *testing.T) {
	f := newFixture(t)
	s, client := newTestService(t, config.Online)
	ctx := context.Background()
	ops := f.operations()

	preprocess, err := s.Preprocess(ctx, &model.ConstructionPreprocessRequest{NetworkIdentifier: testNetwork(), Operations: ops})
	require.NoError(t, err)
	assert.Equal(t, []string{f.ids[0].String(), f.ids[1].String(), f.ids[2].String()}, preprocess.Options.UTXOInputs)
	assert.Equal(t, []*model.AccountIdentifier{{Address: f.alice.account()}, {Address: f.bob.account()}}, preprocess.RequiredPublicKeys)

	client.EXPECT().Info(gomock.Any()).Return(&node.Info{NetworkID: "testnet7"}, nil)
	f.expectOutputs(client)
	metadata, err := s.Metadata(ctx, &model.ConstructionMetadataRequest{NetworkIdentifier: testNetwork(), Options: preprocess.Options})
	require.NoError(t, err)
	assert.Equal(t, "testnet7", metadata.Metadata.NetworkID)
	assert.Len(t, metadata.Metadata.UTXOInputsMetadata, 3)
	assert.Equal(t, "0", metadata.SuggestedFee[0].Value)

	payloads, err := s.Payloads(ctx, &model.ConstructionPayloadsRequest{
		NetworkIdentifier: testNetwork(),
		Operations:        ops,
		Metadata:          metadata.Metadata,
	})
	require.NoError(t, err)
	require.Len(t, payloads.Payloads, 2)
	assert.Equal(t, f.alice.account(), payloads.Payloads[0].AccountIdentifier.Address)
	assert.Equal(t, f.bob.account(), payloads.Payloads[1].AccountIdentifier.Address)

	unsigned, err := txcodec.DeserializeUnsigned(payloads.UnsignedTransaction)
	require.NoError(t, err)
	essence := unsigned.Essence.(*ledger.RegularEssence)
	assert.Equal(t, ledger.HexBytes("rosetta"), essence.Payload.Index)
	hash, err := ledger.EssenceHash(essence)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(hash[:]), payloads.Payloads[0].HexBytes)

	unsignedParse, err := s.Parse(ctx, &model.ConstructionParseRequest{
		NetworkIdentifier: testNetwork(),
		Transaction:       payloads.UnsignedTransaction,
	})
	require.NoError(t, err)
	assert.Equal(t, ops, unsignedParse.Operations)
	assert.Nil(t, unsignedParse.AccountIdentifierSigners)

	combined, err := s.Combine(ctx, &model.ConstructionCombineRequest{
		NetworkIdentifier:   testNetwork(),
		UnsignedTransaction: payloads.UnsignedTransaction,
		Signatures: []*model.Signature{
			f.bob.sign(t, payloads.Payloads[1]),
			f.alice.sign(t, payloads.Payloads[0]),
		},
	})
	require.NoError(t, err)

	signed, err := txcodec.DeserializeSigned(combined.SignedTransaction)
	require.NoError(t, err)
	blocks := signed.Transaction.UnlockBlocks
	require.Len(t, blocks, 3)
	assert.IsType(t, &ledger.SignatureUnlockBlock{}, blocks[0])
	assert.Equal(t, &ledger.ReferenceUnlockBlock{Reference: 0}, blocks[1])
	assert.IsType(t, &ledger.SignatureUnlockBlock{}, blocks[2])

	signedParse, err := s.Parse(ctx, &model.ConstructionParseRequest{
		NetworkIdentifier: testNetwork(),
		Signed:            true,
		Transaction:       combined.SignedTransaction,
	})
	require.NoError(t, err)
	assert.Equal(t, ops, signedParse.Operations)
	assert.Equal(t, []*model.AccountIdentifier{{Address: f.alice.account()}, {Address: f.bob.account()}}, signedParse.AccountIdentifierSigners)

	hashed, err := s.Hash(ctx, &model.ConstructionHashRequest{NetworkIdentifier: testNetwork(), SignedTransaction: combined.SignedTransaction})
	require.NoError(t, err)
	txID, err := signed.Transaction.ID()
	require.NoError(t, err)
	assert.Equal(t, txID.String(), hashed.TransactionIdentifier.Hash)

	client.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *ledger.Transaction) (string, error) {
		id, err := tx.ID()
		require.NoError(t, err)
		assert.Equal(t, txID, id)
		return "message", nil
	})
	submitted, err := s.Submit(ctx, &model.ConstructionSubmitRequest{NetworkIdentifier: testNetwork(), SignedTransaction: combined.SignedTransaction})
	require.NoError(t, err)
	assert.Equal(t, hashed.TransactionIdentifier, submitted.TransactionIdentifier)
}

// unsignedFixture runs payloads for the fixture and returns its response.
func unsignedFixture(t *testing.T, s *Service, f *fixture) *model.ConstructionPayloadsResponse {
	meta := txcodec.InputsMetadata{}
	for i, id := range f.ids {
		meta[id.String()] = &txcodec.InputMetadata{
			TransactionID: id.TransactionID,
			OutputIndex:   id.Index,
			Output:        &ledger.BasicOutput{Address: f.owners[i].address, Amount: f.amounts[i]},
		}
	}
	payloads, err := s.Payloads(context.Background(), &model.ConstructionPayloadsRequest{
		NetworkIdentifier: testNetwork(),
		Operations:        f.operations(),
		Metadata:          &model.ConstructionMetadata{UTXOInputsMetadata: meta},
	})
	require.NoError(t, err)
	return payloads
}

func TestCombineRejects(t *testing.T) {
	f := newFixture(t)
	s, _ := newTestService(t, config.Online)
	payloads := unsignedFixture(t, s, f)

	combine := func(sigs ...*model.Signature) error {
		_, err := s.Combine(context.Background(), &model.ConstructionCombineRequest{
			NetworkIdentifier:   testNetwork(),
			UnsignedTransaction: payloads.UnsignedTransaction,
			Signatures:          sigs,
		})
		return err
	}

	apiErr := requireAPIError(t, combine(f.alice.sign(t, payloads.Payloads[0])))
	assert.Equal(t, "missing signature for "+f.bob.account(), apiErr.Message)

	// bob signs the payload addressed to alice
	apiErr = requireAPIError(t, combine(f.bob.sign(t, payloads.Payloads[0]), f.bob.sign(t, payloads.Payloads[1])))
	assert.Contains(t, apiErr.Message, "public key does not match signer")

	forged := f.bob.sign(t, payloads.Payloads[1])
	forged.HexBytes = hex.EncodeToString(ed25519.Sign(f.bob.key, []byte("something else")))
	apiErr = requireAPIError(t, combine(f.alice.sign(t, payloads.Payloads[0]), forged))
	assert.Equal(t, "invalid signature for "+f.bob.account(), apiErr.Message)

	wrongType := f.bob.sign(t, payloads.Payloads[1])
	wrongType.SignatureType = "ecdsa"
	apiErr = requireAPIError(t, combine(f.alice.sign(t, payloads.Payloads[0]), wrongType))
	assert.Equal(t, "signature type not supported", apiErr.Message)
	assert.False(t, apiErr.Retriable)

	_, err := s.Combine(context.Background(), &model.ConstructionCombineRequest{
		NetworkIdentifier:   testNetwork(),
		UnsignedTransaction: "zz",
	})
	apiErr = requireAPIError(t, err)
	assert.Contains(t, apiErr.Message, txcodec.ErrMalformedTransaction.Error())
}

func TestPayloadsRejects(t *testing.T) {
	f := newFixture(t)
	s, _ := newTestService(t, config.Online)

	meta := txcodec.InputsMetadata{}
	for i, id := range f.ids {
		meta[id.String()] = &txcodec.InputMetadata{
			TransactionID: id.TransactionID,
			OutputIndex:   id.Index,
			Output:        &ledger.BasicOutput{Address: f.owners[i].address, Amount: f.amounts[i]},
		}
	}
	payloads := func(ops []*model.Operation, meta txcodec.InputsMetadata) error {
		_, err := s.Payloads(context.Background(), &model.ConstructionPayloadsRequest{
			NetworkIdentifier: testNetwork(),
			Operations:        ops,
			Metadata:          &model.ConstructionMetadata{UTXOInputsMetadata: meta},
		})
		return err
	}

	unbalanced := f.operations()
	unbalanced[3].Amount = model.NewAmount(1_000_000)
	apiErr := requireAPIError(t, payloads(unbalanced, meta))
	assert.Contains(t, apiErr.Message, "operations do not balance")

	apiErr = requireAPIError(t, payloads(f.operations(), txcodec.InputsMetadata{}))
	assert.Equal(t, "metadata for input missing", apiErr.Message)

	wrongAmount := f.operations()
	wrongAmount[0].Amount = model.NewDebitAmount(999_999)
	wrongAmount[3].Amount = model.NewAmount(3_999_999)
	apiErr = requireAPIError(t, payloads(wrongAmount, meta))
	assert.Contains(t, apiErr.Message, "does not match its output")

	dust := f.operations()
	dust[3] = operations.DustAllowanceOutputOperation(3, f.carol.account(), 999_999)
	dust = append(dust, operations.OutputOperation(4, f.carol.account(), 3_000_001))
	apiErr = requireAPIError(t, payloads(dust, meta))
	assert.Contains(t, apiErr.Message, ledger.ErrInvalidEssence.Error())
}

func TestDerive(t *testing.T) {
	w := newWallet(t, 9)
	s, _ := newTestService(t, config.Offline)

	resp, err := s.Derive(context.Background(), &model.ConstructionDeriveRequest{
		NetworkIdentifier: testNetwork(),
		PublicKey:         w.publicKey(),
	})
	require.NoError(t, err)
	assert.Equal(t, w.account(), resp.AccountIdentifier.Address)
	assert.True(t, strings.HasPrefix(resp.AccountIdentifier.Address, hrp+"1"))

	_, err = s.Derive(context.Background(), &model.ConstructionDeriveRequest{
		NetworkIdentifier: testNetwork(),
		PublicKey:         &model.PublicKey{HexBytes: "abcd", CurveType: model.CurveEdwards25519},
	})
	assert.Contains(t, requireAPIError(t, err).Message, address.ErrInvalidPublicKey.Error())

	_, err = s.Derive(context.Background(), &model.ConstructionDeriveRequest{
		NetworkIdentifier: testNetwork(),
		PublicKey:         &model.PublicKey{HexBytes: w.publicKey().HexBytes, CurveType: "secp256k1"},
	})
	assert.Error(t, err)
}

func TestModeGuard(t *testing.T) {
	f := newFixture(t)
	online, _ := newTestService(t, config.Online)
	payloads := unsignedFixture(t, online, f)

	s, _ := newTestService(t, config.Offline)
	ctx := context.Background()
	ops := f.operations()

	_, err := s.Preprocess(ctx, &model.ConstructionPreprocessRequest{NetworkIdentifier: testNetwork(), Operations: ops})
	assert.Equal(t, "endpoint does not support offline mode", requireAPIError(t, err).Message)
	_, err = s.Metadata(ctx, &model.ConstructionMetadataRequest{NetworkIdentifier: testNetwork(), Options: &model.PreprocessOptions{}})
	requireAPIError(t, err)
	_, err = s.Payloads(ctx, &model.ConstructionPayloadsRequest{NetworkIdentifier: testNetwork(), Operations: ops})
	requireAPIError(t, err)
	_, err = s.Combine(ctx, &model.ConstructionCombineRequest{NetworkIdentifier: testNetwork(), UnsignedTransaction: payloads.UnsignedTransaction})
	requireAPIError(t, err)
	_, err = s.Submit(ctx, &model.ConstructionSubmitRequest{NetworkIdentifier: testNetwork(), SignedTransaction: "00"})
	requireAPIError(t, err)

	parsed, err := s.Parse(ctx, &model.ConstructionParseRequest{NetworkIdentifier: testNetwork(), Transaction: payloads.UnsignedTransaction})
	require.NoError(t, err)
	assert.Len(t, parsed.Operations, 4)
}

func TestWrongNetwork(t *testing.T) {
	s, _ := newTestService(t, config.Offline)
	w := newWallet(t, 4)

	_, err := s.Derive(context.Background(), &model.ConstructionDeriveRequest{
		NetworkIdentifier: &model.NetworkIdentifier{Blockchain: "iota", Network: "mainnet"},
		PublicKey:         w.publicKey(),
	})
	assert.Equal(t, "wrong network", requireAPIError(t, err).Message)

	_, err = s.Parse(context.Background(), &model.ConstructionParseRequest{
		NetworkIdentifier: &model.NetworkIdentifier{Blockchain: "bitcoin", Network: "testnet7"},
		Transaction:       "00",
	})
	assert.Equal(t, "wrong network", requireAPIError(t, err).Message)
}

// signedFixture builds a fully signed transaction string for the fixture.
func signedFixture(t *testing.T, s *Service, f *fixture) string {
	payloads := unsignedFixture(t, s, f)
	combined, err := s.Combine(context.Background(), &model.ConstructionCombineRequest{
		NetworkIdentifier:   testNetwork(),
		UnsignedTransaction: payloads.UnsignedTransaction,
		Signatures:          []*model.Signature{f.alice.sign(t, payloads.Payloads[0]), f.bob.sign(t, payloads.Payloads[1])},
	})
	require.NoError(t, err)
	return combined.SignedTransaction
}

func TestParseUnsupportedSignature(t *testing.T) {
	f := newFixture(t)
	s, _ := newTestService(t, config.Online)
	signed := signedFixture(t, s, f)

	raw, err := hex.DecodeString(signed)
	require.NoError(t, err)
	tampered := strings.Replace(string(raw), `"type":"ed25519"`, `"type":"secp256k1"`, 1)
	require.NotEqual(t, string(raw), tampered)

	_, err = s.Parse(context.Background(), &model.ConstructionParseRequest{
		NetworkIdentifier: testNetwork(),
		Signed:            true,
		Transaction:       hex.EncodeToString([]byte(tampered)),
	})
	apiErr := requireAPIError(t, err)
	assert.Equal(t, "signature type not supported", apiErr.Message)
	assert.False(t, apiErr.Retriable)
}

func TestSubmitRejected(t *testing.T) {
	f := newFixture(t)
	s, client := newTestService(t, config.Online)
	signed := signedFixture(t, s, f)

	client.EXPECT().Submit(gomock.Any(), gomock.Any()).Return("", &node.RejectedError{Reason: "input already spent"})
	_, err := s.Submit(context.Background(), &model.ConstructionSubmitRequest{NetworkIdentifier: testNetwork(), SignedTransaction: signed})
	apiErr := requireAPIError(t, err)
	assert.Equal(t, "transaction rejected", apiErr.Message)
	assert.False(t, apiErr.Retriable)
	assert.Equal(t, "input already spent", apiErr.Details["reason"])

	nodeDown := apierr.Retriable("unable to reach node")
	client.EXPECT().Submit(gomock.Any(), gomock.Any()).Return("", nodeDown)
	_, err = s.Submit(context.Background(), &model.ConstructionSubmitRequest{NetworkIdentifier: testNetwork(), SignedTransaction: signed})
	assert.True(t, requireAPIError(t, err).Retriable)
}

func TestMetadataMissingOutput(t *testing.T) {
	s, client := newTestService(t, config.Online)
	id := ledger.OutputID{TransactionID: ledger.TransactionID{0x09}, Index: 2}

	client.EXPECT().Info(gomock.Any()).Return(&node.Info{NetworkID: "testnet7"}, nil).AnyTimes()
	client.EXPECT().Output(gomock.Any(), id).Return(nil, node.ErrNotFound)

	_, err := s.Metadata(context.Background(), &model.ConstructionMetadataRequest{
		NetworkIdentifier: testNetwork(),
		Options:           &model.PreprocessOptions{UTXOInputs: []string{id.String()}},
	})
	apiErr := requireAPIError(t, err)
	assert.Equal(t, "unable to find output "+id.String(), apiErr.Message)
}
