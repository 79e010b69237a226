package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// OnChainOutcome captures a confirmed token transfer.
type OnChainOutcome struct {
	TxHash      common.Hash
	From        common.Address
	To          common.Address
	Token       common.Address
	ChainID     uint64
	Network     string
	MinorAmount *big.Int
	BlockNumber uint64
	GasUsed     uint64
	GasPrice    *big.Int
}

// GasPriceString returns the effective gas price in wei, or "" if unknown.
func (o *OnChainOutcome) GasPriceString() string {
	if o.GasPrice == nil {
		return ""
	}
	return o.GasPrice.String()
}
