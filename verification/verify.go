// Package verification checks that a mined receipt actually moved the
// expected tokens.
package verification

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/vitwit/paylink/contracts"
)

var (
	ErrNoReceipt       = errors.New("verification: no receipt")
	ErrReverted        = errors.New("verification: transaction reverted")
	ErrTransferMissing = errors.New("verification: no matching Transfer event")
)

// Expected describes the transfer a receipt must contain.
type Expected struct {
	Token  common.Address
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// VerifyTransfer requires a successful receipt with a Transfer event emitted
// by the token for exactly the expected parties and amount.
func VerifyTransfer(receipt *ethtypes.Receipt, want Expected) error {
	if receipt == nil {
		return ErrNoReceipt
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: %s", ErrReverted, receipt.TxHash.Hex())
	}

	for _, l := range receipt.Logs {
		if matches(l, want) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s for %s", ErrTransferMissing, want.From.Hex(), want.To.Hex(), want.Amount)
}

func matches(l *ethtypes.Log, want Expected) bool {
	if l == nil || l.Removed || l.Address != want.Token {
		return false
	}
	if len(l.Topics) != 3 || l.Topics[0] != contracts.TransferEventID {
		return false
	}
	if common.BytesToAddress(l.Topics[1].Bytes()) != want.From {
		return false
	}
	if common.BytesToAddress(l.Topics[2].Bytes()) != want.To {
		return false
	}
	if len(l.Data) != 32 {
		return false
	}
	return new(big.Int).SetBytes(l.Data).Cmp(want.Amount) == 0
}

// TransferLog builds the log a compliant token emits for a transfer.
func TransferLog(token, from, to common.Address, amount *big.Int) *ethtypes.Log {
	return &ethtypes.Log{
		Address: token,
		Topics: []common.Hash{
			contracts.TransferEventID,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: common.LeftPadBytes(amount.Bytes(), 32),
	}
}
