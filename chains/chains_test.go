package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/paylink/types"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	base, err := r.Describe(BaseSepoliaID)
	require.NoError(t, err)
	assert.Equal(t, "Base Sepolia", base.Name)
	assert.Equal(t, 18, base.NativeCurrency.Decimals)
	require.NotNil(t, base.Token)
	assert.Equal(t, 6, base.Token.Decimals)
	assert.Equal(t, "https://sepolia.basescan.org", base.Explorer())

	stark, err := r.Describe(StarknetSepoliaID)
	require.NoError(t, err)
	assert.Equal(t, uint64(23448594291968334), stark.ChainID)
	assert.Nil(t, stark.Token)

	ids := []uint64{}
	for _, d := range r.Supported() {
		ids = append(ids, d.ChainID)
	}
	assert.Equal(t, []uint64{BaseSepoliaID, StarknetSepoliaID}, ids)
}

func TestDescribeUnsupported(t *testing.T) {
	r := Default()

	for _, id := range []uint64{0, 1, 137, 84531} {
		_, err := r.Describe(id)
		require.Error(t, err)
		assert.Equal(t, types.ErrChainUnsupported, types.CodeOf(err))
		assert.False(t, r.IsSupported(id))
	}

	// Lookups never mutate the table.
	assert.Len(t, r.Supported(), 2)
}

func TestNewRegistryRejectsBadEntries(t *testing.T) {
	_, err := NewRegistry(BaseSepolia, BaseSepolia)
	require.Error(t, err)
	assert.Equal(t, types.ErrConfigError, types.CodeOf(err))

	broken := BaseSepolia
	broken.RPCURLs = nil
	_, err = NewRegistry(broken)
	assert.Error(t, err)

	badToken := BaseSepolia
	badToken.Token = &types.TokenInfo{Address: "nope", Symbol: "USDC", Decimals: 6}
	_, err = NewRegistry(badToken)
	assert.Error(t, err)
}
