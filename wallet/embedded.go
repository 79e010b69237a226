package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/vitwit/paylink/contracts"
	"github.com/vitwit/paylink/logger"
	"github.com/vitwit/paylink/types"
	"github.com/vitwit/paylink/utils"
)

// Backend is the node access an embedded wallet signs against.
type Backend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error)
}

// Dialer opens a Backend for an RPC URL.
type Dialer func(ctx context.Context, url string) (Backend, error)

func dialEthclient(ctx context.Context, url string) (Backend, error) {
	return ethclient.DialContext(ctx, url)
}

// EmbeddedConfig configures a key-holding wallet.
type EmbeddedConfig struct {
	// PrivateKey is a hex key. When empty a fresh key is provisioned on
	// Connect.
	PrivateKey string

	// Networks are the chains the wallet knows before any registration.
	Networks []types.ChainDescriptor

	// Initial is the selected chain after Connect. Zero selects the first
	// entry of Networks.
	Initial uint64
}

// Embedded is a wallet whose key lives in-process. It never prompts, so
// connection and switches only fail on configuration problems.
type Embedded struct {
	log      logger.Logger
	dial     Dialer
	interval time.Duration
	keyHex   string

	mu       sync.Mutex
	key      *ecdsa.PrivateKey
	known    map[uint64]types.ChainDescriptor
	current  uint64
	backends map[uint64]Backend
}

// EmbeddedOption configures an Embedded wallet.
type EmbeddedOption func(*Embedded)

func WithEmbeddedLogger(l logger.Logger) EmbeddedOption {
	return func(e *Embedded) {
		e.log = l
	}
}

// WithDialer replaces the node dialer, mainly for tests.
func WithDialer(d Dialer) EmbeddedOption {
	return func(e *Embedded) {
		e.dial = d
	}
}

func WithEmbeddedPollInterval(d time.Duration) EmbeddedOption {
	return func(e *Embedded) {
		e.interval = d
	}
}

// NewEmbedded builds an unconnected embedded wallet.
func NewEmbedded(cfg EmbeddedConfig, opts ...EmbeddedOption) *Embedded {
	e := &Embedded{
		log:      logger.NoopLogger{},
		dial:     dialEthclient,
		interval: defaultPollInterval,
		keyHex:   cfg.PrivateKey,
		known:    make(map[uint64]types.ChainDescriptor, len(cfg.Networks)),
		backends: make(map[uint64]Backend),
		current:  cfg.Initial,
	}
	for _, n := range cfg.Networks {
		e.known[n.ChainID] = n
	}
	if e.current == 0 && len(cfg.Networks) > 0 {
		e.current = cfg.Networks[0].ChainID
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Embedded) IsConnected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.key != nil
}

func (e *Embedded) Connect(ctx context.Context) (ConnectOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.key != nil {
		return Provisioned, nil
	}

	var (
		key *ecdsa.PrivateKey
		err error
	)
	if e.keyHex != "" {
		key, err = utils.PrivateKeyFromHex(e.keyHex)
	} else {
		key, err = crypto.GenerateKey()
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConnectionRejected, err)
	}

	e.key = key
	e.log.Info("embedded wallet provisioned", map[string]any{
		"address": utils.AddressFromPrivateKey(key).Hex(),
	})
	return Provisioned, nil
}

func (e *Embedded) CurrentNetwork(ctx context.Context) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current, nil
}

func (e *Embedded) RequestNetworkSwitch(ctx context.Context, chainID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.known[chainID]; !ok {
		return &UnknownChainError{ChainID: chainID}
	}
	e.current = chainID
	return nil
}

func (e *Embedded) RequestNetworkRegistration(ctx context.Context, chain types.ChainDescriptor) error {
	if len(chain.RPCURLs) == 0 {
		return fmt.Errorf("%w: chain %d has no rpc url", ErrRegistrationRejected, chain.ChainID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.known[chain.ChainID] = chain
	return nil
}

func (e *Embedded) Signer(ctx context.Context) (Signer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.key == nil {
		return nil, ErrNotConnected
	}
	return &embeddedSigner{wallet: e, key: e.key, chainID: e.current}, nil
}

// SuggestGasPrice quotes the gas price of the selected network.
func (e *Embedded) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	e.mu.Lock()
	current := e.current
	e.mu.Unlock()

	b, err := e.backend(ctx, current)
	if err != nil {
		return nil, err
	}
	return b.SuggestGasPrice(ctx)
}

// backend returns the cached node client for chainID, dialing on first use.
// The dial runs without e.mu held; if two callers race, the first stored
// client wins.
func (e *Embedded) backend(ctx context.Context, chainID uint64) (Backend, error) {
	e.mu.Lock()
	if b, ok := e.backends[chainID]; ok {
		e.mu.Unlock()
		return b, nil
	}
	chain, ok := e.known[chainID]
	e.mu.Unlock()

	if !ok {
		return nil, &UnknownChainError{ChainID: chainID}
	}
	if len(chain.RPCURLs) == 0 {
		return nil, fmt.Errorf("wallet: chain %d has no rpc url", chainID)
	}

	b, err := e.dial(ctx, chain.RPCURLs[0])
	if err != nil {
		return nil, fmt.Errorf("wallet: dial %s: %w", chain.Name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.backends[chainID]; ok {
		return existing, nil
	}
	e.backends[chainID] = b
	return b, nil
}

type embeddedSigner struct {
	wallet  *Embedded
	key     *ecdsa.PrivateKey
	chainID uint64
}

func (s *embeddedSigner) Address() common.Address {
	return utils.AddressFromPrivateKey(s.key)
}

func (s *embeddedSigner) Transfer(ctx context.Context, token, to common.Address, amount *big.Int) (common.Hash, error) {
	backend, err := s.wallet.backend(ctx, s.chainID)
	if err != nil {
		return common.Hash{}, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(s.key, new(big.Int).SetUint64(s.chainID))
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: transactor: %w", err)
	}
	opts.Context = ctx

	contract := bind.NewBoundContract(token, contracts.ERC20(), backend, backend, backend)
	tx, err := contract.Transact(opts, "transfer", to, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: transfer: %w", err)
	}

	s.wallet.log.Debug("transfer submitted", map[string]any{
		"txHash":  tx.Hash().Hex(),
		"chainId": s.chainID,
	})
	return tx.Hash(), nil
}

func (s *embeddedSigner) WaitConfirmed(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	backend, err := s.wallet.backend(ctx, s.chainID)
	if err != nil {
		return nil, err
	}
	return waitForReceipt(ctx, backend, hash, s.wallet.interval)
}
