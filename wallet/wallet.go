// Package wallet abstracts the user-gated signing capability used by the
// on-chain rail: connection, network negotiation and token transfers.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/vitwit/paylink/types"
)

var (
	ErrNoProviderAvailable  = errors.New("wallet: no provider available")
	ErrConnectionRejected   = errors.New("wallet: connection rejected")
	ErrSwitchRejected       = errors.New("wallet: network switch rejected")
	ErrRegistrationRejected = errors.New("wallet: network registration rejected")
	ErrUserRejected         = errors.New("wallet: request rejected by user")
	ErrNotConnected         = errors.New("wallet: not connected")

	// ErrUnknownToWallet is matched by every *UnknownChainError.
	ErrUnknownToWallet = errors.New("wallet: network unknown to wallet")
)

// UnknownChainError is returned by a network switch when the wallet has no
// record of the requested chain. The caller may register it and retry.
type UnknownChainError struct {
	ChainID uint64
}

func (e *UnknownChainError) Error() string {
	return fmt.Sprintf("wallet: chain %d unknown to wallet", e.ChainID)
}

func (e *UnknownChainError) Is(target error) bool {
	return target == ErrUnknownToWallet
}

// ConnectOutcome tells how a connection was satisfied.
type ConnectOutcome int

const (
	// Provisioned means an embedded wallet was created or unlocked.
	Provisioned ConnectOutcome = iota + 1
	// Linked means an externally held wallet was attached.
	Linked
)

func (o ConnectOutcome) String() string {
	switch o {
	case Provisioned:
		return "provisioned"
	case Linked:
		return "linked"
	default:
		return "unknown"
	}
}

// Capability is the wallet as seen by the payment executor. Every blocking
// call may wait on the user; there is no timeout beyond ctx.
type Capability interface {
	IsConnected() bool
	Connect(ctx context.Context) (ConnectOutcome, error)
	CurrentNetwork(ctx context.Context) (uint64, error)
	RequestNetworkSwitch(ctx context.Context, chainID uint64) error
	// RequestNetworkRegistration makes the chain known to the wallet but
	// leaves it unselected.
	RequestNetworkRegistration(ctx context.Context, chain types.ChainDescriptor) error
	Signer(ctx context.Context) (Signer, error)
}

// Signer submits token transfers from the connected account.
type Signer interface {
	Address() common.Address
	Transfer(ctx context.Context, token, to common.Address, amount *big.Int) (common.Hash, error)
	// WaitConfirmed blocks until the transaction is included in a block.
	WaitConfirmed(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error)
}

// FeeEstimator is implemented by wallets that can quote a gas price.
type FeeEstimator interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}
