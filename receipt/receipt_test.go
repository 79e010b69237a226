package receipt

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/vitwit/paylink/chains"
	"github.com/vitwit/paylink/executor"
	"github.com/vitwit/paylink/types"
	"github.com/vitwit/paylink/wallet"
)

func TestPresentOnChain(t *testing.T) {
	chain := chains.BaseSepolia
	hash := common.HexToHash("0xfeed")
	a := &executor.Attempt{
		LinkID: "link-1",
		Rail:   types.RailOnChain,
		Status: executor.Succeeded,
		Submission: types.FormSubmission{
			Amount:       "5",
			PayerName:    "Bob",
			CustomFields: map[string]string{"table": "7", "note": "hi"},
		},
		Chain: &chain,
		OnChain: &types.OnChainOutcome{
			TxHash:      hash,
			From:        common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"),
			Network:     chain.Name,
			MinorAmount: big.NewInt(5_000_000),
		},
	}

	v := Present(a)
	assert.True(t, v.Success)
	assert.Equal(t, HeadlineOnChain, v.Headline)
	assert.Equal(t, hash.Hex(), v.Reference)
	assert.Equal(t, "https://sepolia.basescan.org/tx/"+hash.Hex(), v.ExplorerURL)
	assert.Equal(t, "USDC", v.Token)
	assert.Equal(t, "0x2c75...5c23", v.From)
	assert.Equal(t, "5", v.Amount)
	assert.Equal(t, []Field{{"note", "hi"}, {"table", "7"}}, v.CustomFields)
	assert.Empty(t, v.Code)
}

func TestPresentBackend(t *testing.T) {
	a := &executor.Attempt{
		LinkID: "link-2",
		Rail:   types.RailBackend,
		Status: executor.Succeeded,
		Submission: types.FormSubmission{
			Amount:    "10",
			PayerName: "Alice",
		},
		Receipt: &types.BackendReceipt{ID: "rcpt-9", Amount: "10.00", PayerName: "Alice", PayerEmail: "a@x.com"},
	}

	v := Present(a)
	assert.Equal(t, HeadlineBackend, v.Headline)
	assert.Equal(t, "rcpt-9", v.Reference)
	assert.Equal(t, "10.00", v.Amount)
	assert.Equal(t, "a@x.com", v.PayerEmail)
	assert.Empty(t, v.ExplorerURL)
	assert.Nil(t, v.CustomFields)
}

func TestPresentFailure(t *testing.T) {
	a := &executor.Attempt{
		LinkID:     "link-3",
		Rail:       types.RailOnChain,
		Status:     executor.Failed,
		Submission: types.FormSubmission{Amount: "5"},
		Err:        types.NewError(types.ErrSubmission, "transfer was not submitted", wallet.ErrUserRejected),
	}

	v := Present(a)
	assert.False(t, v.Success)
	assert.Equal(t, HeadlineFailed, v.Headline)
	assert.Equal(t, types.ErrSubmission, v.Code)
	assert.Equal(t, "transfer was not submitted", v.Message)
	assert.True(t, v.Retryable)
	assert.Empty(t, v.Reference)
}

func TestPresentNil(t *testing.T) {
	assert.Equal(t, View{}, Present(nil))
}
