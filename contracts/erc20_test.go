package contracts

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferCalldata(t *testing.T) {
	to := common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")

	data, err := ERC20().Pack("transfer", to, big.NewInt(5_000_000))
	require.NoError(t, err)

	// selector + two words
	require.Len(t, data, 4+32+32)
	assert.Equal(t, "a9059cbb", common.Bytes2Hex(data[:4]))
	assert.Equal(t, to.Bytes(), data[4+12:4+32])
	assert.Equal(t, int64(5_000_000), new(big.Int).SetBytes(data[36:]).Int64())
}

func TestTransferEventID(t *testing.T) {
	assert.Equal(t, ERC20().Events["Transfer"].ID, TransferEventID)
	assert.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		TransferEventID.Hex())
}
