package executor

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vitwit/paylink/metrics"
	"github.com/vitwit/paylink/types"
	"github.com/vitwit/paylink/utils"
	"github.com/vitwit/paylink/verification"
	"github.com/vitwit/paylink/wallet"
)

func (e *Executor) payee() (common.Address, error) {
	addr := e.desc.PayTo
	if addr == "" {
		addr = e.defaultPayee
	}
	to, err := utils.NormalizeAddress(addr)
	if err != nil {
		return common.Address{}, types.NewError(types.ErrInvalidPayeeAddress, "payee address is missing or malformed", err)
	}
	return to, nil
}

func (e *Executor) payOnChain(ctx context.Context, a *Attempt) error {
	to, err := e.payee()
	if err != nil {
		return err
	}

	if e.wallet == nil || !e.wallet.IsConnected() {
		return types.NewError(types.ErrWalletUnavailable, "connect a wallet first", wallet.ErrNotConnected)
	}

	chain, err := e.chains.Describe(a.Submission.ChainID)
	if err != nil {
		return err
	}
	a.Chain = &chain
	if chain.Token == nil {
		return types.Errorf(types.ErrChainUnsupported, "%s has no settlement token", chain.Name).
			WithData(map[string]any{"chainId": chain.ChainID})
	}

	if err := e.negotiate(ctx, chain); err != nil {
		return err
	}

	amount, err := utils.ToMinorUnits(a.Submission.Amount, chain.Token.Decimals)
	if err != nil {
		return types.NewError(types.ErrValidation, "amount cannot be expressed in token units", err)
	}
	token := common.HexToAddress(chain.Token.Address)

	signer, err := e.wallet.Signer(ctx)
	if err != nil {
		return types.NewError(types.ErrSubmission, "wallet signer unavailable", err)
	}
	from := signer.Address()

	e.log.Info("submitting token transfer", map[string]any{
		"linkId":    a.LinkID,
		"attemptId": a.ID,
		"network":   chain.Name,
		"token":     token.Hex(),
		"to":        to.Hex(),
		"amount":    amount.String(),
	})

	hash, err := signer.Transfer(ctx, token, to, amount)
	if err != nil {
		return types.NewError(types.ErrSubmission, "transfer was not submitted", err)
	}

	receipt, err := signer.WaitConfirmed(ctx, hash)
	if err != nil {
		return types.NewError(types.ErrSubmission, "transfer was not confirmed", err).
			WithData(map[string]any{"txHash": hash.Hex()})
	}

	err = verification.VerifyTransfer(receipt, verification.Expected{
		Token:  token,
		From:   from,
		To:     to,
		Amount: amount,
	})
	if err != nil {
		return types.NewError(types.ErrSubmission, "transfer did not settle", err).
			WithData(map[string]any{"txHash": hash.Hex()})
	}

	out := &types.OnChainOutcome{
		TxHash:      hash,
		From:        from,
		To:          to,
		Token:       token,
		ChainID:     chain.ChainID,
		Network:     chain.Name,
		MinorAmount: amount,
		GasUsed:     receipt.GasUsed,
		GasPrice:    receipt.EffectiveGasPrice,
	}
	if receipt.BlockNumber != nil {
		out.BlockNumber = receipt.BlockNumber.Uint64()
	}
	a.OnChain = out
	return nil
}

// negotiate makes chain the wallet's active network. A chain the wallet does
// not know is registered and the switch is retried exactly once.
func (e *Executor) negotiate(ctx context.Context, chain types.ChainDescriptor) error {
	labels := map[string]string{"rail": string(types.RailOnChain)}

	current, err := e.wallet.CurrentNetwork(ctx)
	if err == nil && current == chain.ChainID {
		return nil
	}

	err = e.wallet.RequestNetworkSwitch(ctx, chain.ChainID)
	if errors.Is(err, wallet.ErrUnknownToWallet) {
		e.log.Info("registering network with wallet", map[string]any{"chainId": chain.ChainID, "network": chain.Name})
		if err = e.wallet.RequestNetworkRegistration(ctx, chain); err == nil {
			err = e.wallet.RequestNetworkSwitch(ctx, chain.ChainID)
		}
	}
	if err != nil {
		labels["outcome"] = "failed"
		e.metrics.IncCounter(metrics.EventNegotiation, labels)
		return types.NewError(types.ErrChainNegotiationFailed, "could not switch wallet to "+chain.Name, err).
			WithData(map[string]any{"chainId": chain.ChainID})
	}

	labels["outcome"] = "switched"
	e.metrics.IncCounter(metrics.EventNegotiation, labels)
	return nil
}
