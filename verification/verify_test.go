package verification

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
)

var (
	token = common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e")
	from  = common.HexToAddress("0x384Aa214be0B279cbf211e9b2C992d8633F77848")
	to    = common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
)

func TestVerifyTransfer(t *testing.T) {
	want := Expected{Token: token, From: from, To: to, Amount: big.NewInt(5_000_000)}

	tests := []struct {
		name    string
		receipt *ethtypes.Receipt
		wantErr error
	}{
		{
			name: "matching transfer",
			receipt: &ethtypes.Receipt{
				Status: ethtypes.ReceiptStatusSuccessful,
				Logs:   []*ethtypes.Log{TransferLog(token, from, to, big.NewInt(5_000_000))},
			},
		},
		{name: "nil receipt", wantErr: ErrNoReceipt},
		{
			name:    "reverted",
			receipt: &ethtypes.Receipt{Status: ethtypes.ReceiptStatusFailed},
			wantErr: ErrReverted,
		},
		{
			name: "wrong amount",
			receipt: &ethtypes.Receipt{
				Status: ethtypes.ReceiptStatusSuccessful,
				Logs:   []*ethtypes.Log{TransferLog(token, from, to, big.NewInt(4_999_999))},
			},
			wantErr: ErrTransferMissing,
		},
		{
			name: "wrong token",
			receipt: &ethtypes.Receipt{
				Status: ethtypes.ReceiptStatusSuccessful,
				Logs:   []*ethtypes.Log{TransferLog(to, from, to, big.NewInt(5_000_000))},
			},
			wantErr: ErrTransferMissing,
		},
		{
			name: "wrong recipient",
			receipt: &ethtypes.Receipt{
				Status: ethtypes.ReceiptStatusSuccessful,
				Logs:   []*ethtypes.Log{TransferLog(token, from, from, big.NewInt(5_000_000))},
			},
			wantErr: ErrTransferMissing,
		},
		{
			name:    "no logs",
			receipt: &ethtypes.Receipt{Status: ethtypes.ReceiptStatusSuccessful},
			wantErr: ErrTransferMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyTransfer(tt.receipt, want)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRemovedLogIgnored(t *testing.T) {
	l := TransferLog(token, from, to, big.NewInt(1))
	l.Removed = true

	err := VerifyTransfer(&ethtypes.Receipt{Status: ethtypes.ReceiptStatusSuccessful, Logs: []*ethtypes.Log{l}},
		Expected{Token: token, From: from, To: to, Amount: big.NewInt(1)})
	assert.ErrorIs(t, err, ErrTransferMissing)
}
