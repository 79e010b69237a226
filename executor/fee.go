package executor

import (
	"context"
	"math/big"

	"github.com/vitwit/paylink/chains"
	"github.com/vitwit/paylink/utils"
	"github.com/vitwit/paylink/wallet"
)

// transferGasLimit covers a plain ERC-20 transfer with headroom.
const transferGasLimit uint64 = 65_000

// FeeEstimate is a rough network fee for one token transfer.
type FeeEstimate struct {
	ChainID  uint64
	GasLimit uint64
	GasPrice *big.Int
	// Fee is GasLimit*GasPrice in the native currency, as a decimal string.
	Fee    string
	Symbol string
	// Quoted is true when the gas price came from the wallet rather than
	// the per-network default.
	Quoted bool
}

// EstimateFee quotes the fee for paying on the selected network. It never
// prompts the user and never blocks Pay.
func (e *Executor) EstimateFee(ctx context.Context) (*FeeEstimate, error) {
	sub := e.form.Snapshot()
	chain, err := e.chains.Describe(sub.ChainID)
	if err != nil {
		return nil, err
	}

	est := &FeeEstimate{
		ChainID:  chain.ChainID,
		GasLimit: transferGasLimit,
		GasPrice: defaultGasPrice(chain.ChainID),
		Symbol:   chain.NativeCurrency.Symbol,
	}

	if fe, ok := e.wallet.(wallet.FeeEstimator); ok && e.wallet.IsConnected() {
		if current, err := e.wallet.CurrentNetwork(ctx); err == nil && current == chain.ChainID {
			price, err := fe.SuggestGasPrice(ctx)
			if err == nil && price != nil && price.Sign() > 0 {
				est.GasPrice = price
				est.Quoted = true
			} else if err != nil {
				e.log.Debug("gas price quote failed, using default", map[string]any{"chainId": chain.ChainID, "error": err})
			}
		}
	}

	fee := new(big.Int).Mul(new(big.Int).SetUint64(est.GasLimit), est.GasPrice)
	est.Fee = utils.FormatMinorUnits(fee, chain.NativeCurrency.Decimals)
	return est, nil
}

func defaultGasPrice(chainID uint64) *big.Int {
	switch chainID {
	case chains.BaseSepoliaID:
		return big.NewInt(1_000_000_000) // 1 gwei
	default:
		return big.NewInt(20_000_000_000) // 20 gwei
	}
}
