// Package chains holds the static table of networks a payer can settle on.
package chains

import (
	"fmt"

	"github.com/vitwit/paylink/types"
	"github.com/vitwit/paylink/utils"
)

const (
	BaseSepoliaID     uint64 = 84532
	StarknetSepoliaID uint64 = 23448594291968334
)

// BaseSepolia is the Base testnet with Circle's USDC as settlement token.
var BaseSepolia = types.ChainDescriptor{
	ChainID: BaseSepoliaID,
	Name:    "Base Sepolia",
	NativeCurrency: types.NativeCurrency{
		Name:     "Ethereum",
		Symbol:   "ETH",
		Decimals: 18,
	},
	RPCURLs:      []string{"https://sepolia.base.org"},
	ExplorerURLs: []string{"https://sepolia.basescan.org"},
	Token: &types.TokenInfo{
		Address:  "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		Symbol:   "USDC",
		Decimals: 6,
	},
}

// StarknetSepolia is kept exactly as the link frontend ships it. The id is
// not addressable through the EVM wallet RPCs and no settlement token is
// configured, so the on-chain rail reports it as unsupported.
var StarknetSepolia = types.ChainDescriptor{
	ChainID: StarknetSepoliaID,
	Name:    "Starknet Sepolia",
	NativeCurrency: types.NativeCurrency{
		Name:     "Ethereum",
		Symbol:   "ETH",
		Decimals: 18,
	},
	RPCURLs:      []string{"https://starknet-sepolia.public.blastapi.io"},
	ExplorerURLs: []string{"https://sepolia.starkscan.co"},
}

// Registry is an immutable chain id -> descriptor lookup.
type Registry struct {
	order []uint64
	byID  map[uint64]types.ChainDescriptor
}

// NewRegistry validates every descriptor and builds a registry. Duplicate ids
// are a configuration error.
func NewRegistry(descs ...types.ChainDescriptor) (*Registry, error) {
	r := &Registry{
		order: make([]uint64, 0, len(descs)),
		byID:  make(map[uint64]types.ChainDescriptor, len(descs)),
	}

	for _, d := range descs {
		if err := utils.ValidateStruct(&d); err != nil {
			return nil, types.NewError(types.ErrConfigError, fmt.Sprintf("invalid chain %q", d.Name), err)
		}
		if _, dup := r.byID[d.ChainID]; dup {
			return nil, types.Errorf(types.ErrConfigError, "chain %d registered twice", d.ChainID)
		}
		r.order = append(r.order, d.ChainID)
		r.byID[d.ChainID] = d
	}

	return r, nil
}

// Default returns the registry of networks supported at this revision.
func Default() *Registry {
	r, err := NewRegistry(BaseSepolia, StarknetSepolia)
	if err != nil {
		panic(err)
	}
	return r
}

// Describe looks up a chain. Unknown ids are always reported, never defaulted.
func (r *Registry) Describe(chainID uint64) (types.ChainDescriptor, error) {
	d, ok := r.byID[chainID]
	if !ok {
		return types.ChainDescriptor{}, types.Errorf(types.ErrChainUnsupported, "chain %d is not supported", chainID).
			WithData(map[string]interface{}{"chainId": chainID})
	}
	return d, nil
}

// IsSupported reports whether chainID is registered.
func (r *Registry) IsSupported(chainID uint64) bool {
	_, ok := r.byID[chainID]
	return ok
}

// Supported lists descriptors in registration order.
func (r *Registry) Supported() []types.ChainDescriptor {
	out := make([]types.ChainDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
