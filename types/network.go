package types

import (
	"strconv"
)

// NativeCurrency describes the gas currency of a network.
type NativeCurrency struct {
	Name     string `json:"name" validate:"required"`
	Symbol   string `json:"symbol" validate:"required"`
	Decimals int    `json:"decimals" validate:"gte=0,lte=36"`
}

// TokenInfo contains information about the settlement token on a network.
type TokenInfo struct {
	Address  string `json:"address" validate:"required,eth_addr"`
	Symbol   string `json:"symbol" validate:"required"`
	Decimals int    `json:"decimals" validate:"gte=0,lte=36"`
}

// ChainDescriptor holds what is needed to identify a network and, if the
// wallet does not know it, register it.
type ChainDescriptor struct {
	ChainID        uint64         `json:"chainId" validate:"required"`
	Name           string         `json:"name" validate:"required"`
	NativeCurrency NativeCurrency `json:"nativeCurrency"`
	RPCURLs        []string       `json:"rpcUrls" validate:"min=1,dive,url"`
	ExplorerURLs   []string       `json:"explorerUrls" validate:"dive,url"`

	// Token is the fungible token transferred on the on-chain rail. Nil
	// when the network has no settlement token configured.
	Token *TokenInfo `json:"token,omitempty" validate:"omitempty"`
}

// HexChainID renders the chain id the way wallet RPCs expect it.
func (c ChainDescriptor) HexChainID() string {
	return "0x" + strconv.FormatUint(c.ChainID, 16)
}

// Explorer returns the first explorer URL, or "" if none is set.
func (c ChainDescriptor) Explorer() string {
	if len(c.ExplorerURLs) == 0 {
		return ""
	}
	return c.ExplorerURLs[0]
}

func (c ChainDescriptor) String() string {
	return c.Name
}
