package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/paylink/chains"
	"github.com/vitwit/paylink/types"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestEmbeddedProvisionsKey(t *testing.T) {
	e := NewEmbedded(EmbeddedConfig{Networks: []types.ChainDescriptor{chains.BaseSepolia}})
	ctx := context.Background()

	assert.False(t, e.IsConnected())
	_, err := e.Signer(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)

	outcome, err := e.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, Provisioned, outcome)
	assert.True(t, e.IsConnected())

	s, err := e.Signer(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "0x0000000000000000000000000000000000000000", s.Address().Hex())

	id, err := e.CurrentNetwork(ctx)
	require.NoError(t, err)
	assert.Equal(t, chains.BaseSepoliaID, id)
}

func TestEmbeddedConfiguredKey(t *testing.T) {
	e := NewEmbedded(EmbeddedConfig{PrivateKey: "0x" + testKey})

	_, err := e.Connect(context.Background())
	require.NoError(t, err)

	s, err := e.Signer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", s.Address().Hex())
}

func TestEmbeddedBadKey(t *testing.T) {
	e := NewEmbedded(EmbeddedConfig{PrivateKey: "zz"})

	_, err := e.Connect(context.Background())
	assert.ErrorIs(t, err, ErrConnectionRejected)
	assert.False(t, e.IsConnected())
}

func TestEmbeddedNegotiation(t *testing.T) {
	e := NewEmbedded(EmbeddedConfig{Networks: []types.ChainDescriptor{chains.StarknetSepolia}})
	ctx := context.Background()

	err := e.RequestNetworkSwitch(ctx, chains.BaseSepoliaID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownToWallet))

	require.NoError(t, e.RequestNetworkRegistration(ctx, chains.BaseSepolia))

	id, _ := e.CurrentNetwork(ctx)
	assert.Equal(t, chains.StarknetSepoliaID, id, "registration must not select the chain")

	require.NoError(t, e.RequestNetworkSwitch(ctx, chains.BaseSepoliaID))
	id, _ = e.CurrentNetwork(ctx)
	assert.Equal(t, chains.BaseSepoliaID, id)
}

func TestEmbeddedRegistrationNeedsRPC(t *testing.T) {
	e := NewEmbedded(EmbeddedConfig{})

	broken := chains.BaseSepolia
	broken.RPCURLs = nil
	err := e.RequestNetworkRegistration(context.Background(), broken)
	assert.ErrorIs(t, err, ErrRegistrationRejected)
}

func TestEmbeddedDialFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	e := NewEmbedded(
		EmbeddedConfig{PrivateKey: testKey, Networks: []types.ChainDescriptor{chains.BaseSepolia}},
		WithDialer(func(ctx context.Context, url string) (Backend, error) {
			assert.Equal(t, "https://sepolia.base.org", url)
			return nil, dialErr
		}),
	)
	ctx := context.Background()

	_, err := e.Connect(ctx)
	require.NoError(t, err)
	s, err := e.Signer(ctx)
	require.NoError(t, err)

	_, err = s.Transfer(ctx, usdc, payee, nil)
	assert.ErrorIs(t, err, dialErr)

	_, err = e.SuggestGasPrice(ctx)
	assert.ErrorIs(t, err, dialErr)
}

func TestEmbeddedDialDoesNotBlockState(t *testing.T) {
	dialing := make(chan struct{})
	release := make(chan struct{})
	dialErr := errors.New("node unreachable")
	e := NewEmbedded(
		EmbeddedConfig{PrivateKey: testKey, Networks: []types.ChainDescriptor{chains.BaseSepolia}},
		WithDialer(func(ctx context.Context, url string) (Backend, error) {
			close(dialing)
			<-release
			return nil, dialErr
		}),
	)
	ctx := context.Background()
	_, err := e.Connect(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := e.SuggestGasPrice(ctx)
		done <- err
	}()
	<-dialing

	answered := make(chan struct{})
	go func() {
		defer close(answered)
		assert.True(t, e.IsConnected())
		id, err := e.CurrentNetwork(ctx)
		assert.NoError(t, err)
		assert.Equal(t, chains.BaseSepoliaID, id)
	}()

	select {
	case <-answered:
	case <-time.After(time.Second):
		t.Fatal("wallet state blocked behind a pending dial")
	}

	close(release)
	assert.ErrorIs(t, <-done, dialErr)
}
