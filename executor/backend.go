package executor

import (
	"context"
	"errors"

	"github.com/vitwit/paylink/settlement"
	"github.com/vitwit/paylink/types"
)

func (e *Executor) payBackend(ctx context.Context, a *Attempt) error {
	if e.settler == nil {
		return types.Errorf(types.ErrBackendSettlement, "backend settlement is not configured")
	}

	token, err := e.authToken(ctx)
	if err != nil {
		return err
	}

	sub := a.Submission
	receipt, err := e.settler.Settle(ctx, &types.SettleRequest{
		LinkID:       a.LinkID,
		Amount:       sub.Amount,
		CustomFields: sub.CustomFields,
		PayerName:    sub.PayerName,
		PayerEmail:   sub.PayerEmail,
		AuthToken:    token,
	})
	if err != nil {
		var pe *types.PaylinkError
		if errors.As(err, &pe) {
			return err
		}
		return types.NewError(types.ErrBackendSettlement, "backend settlement failed", err)
	}

	a.Receipt = receipt
	return nil
}

func (e *Executor) authToken(ctx context.Context) (string, error) {
	if e.tokens == nil {
		return "", types.NewError(types.ErrAuthenticationRequired, "no auth token found", settlement.ErrNoToken)
	}
	token, err := e.tokens.Token(ctx)
	if err != nil {
		return "", types.NewError(types.ErrAuthenticationRequired, "no auth token found", err)
	}
	if token == "" {
		return "", types.NewError(types.ErrAuthenticationRequired, "no auth token found", settlement.ErrNoToken)
	}
	return token, nil
}
