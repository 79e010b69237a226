package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/vitwit/paylink/contracts"
	"github.com/vitwit/paylink/logger"
	"github.com/vitwit/paylink/types"
)

// Provider error codes defined by EIP-1193 and EIP-3085.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnrecognizedChain = 4902
)

// Provider is an externally held wallet reached through an EIP-1193 style
// JSON-RPC endpoint. Account access and network changes are approved by the
// user inside the wallet.
type Provider struct {
	client   *rpc.Client
	log      logger.Logger
	interval time.Duration

	mu      sync.Mutex
	account *common.Address
	chainID uint64
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithProviderLogger sets the logger.
func WithProviderLogger(l logger.Logger) ProviderOption {
	return func(p *Provider) {
		p.log = l
	}
}

// WithPollInterval sets how often the receipt is polled while waiting for
// confirmation.
func WithPollInterval(d time.Duration) ProviderOption {
	return func(p *Provider) {
		p.interval = d
	}
}

// DialProvider connects to the wallet endpoint at url. An empty url means no
// wallet is installed.
func DialProvider(ctx context.Context, url string, opts ...ProviderOption) (*Provider, error) {
	if url == "" {
		return nil, ErrNoProviderAvailable
	}
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoProviderAvailable, err)
	}
	return NewProvider(c, opts...), nil
}

// NewProvider wraps an already dialed RPC client.
func NewProvider(c *rpc.Client, opts ...ProviderOption) *Provider {
	p := &Provider{
		client:   c,
		log:      logger.NoopLogger{},
		interval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.account != nil
}

func (p *Provider) Connect(ctx context.Context) (ConnectOutcome, error) {
	if p.client == nil {
		return 0, ErrNoProviderAvailable
	}

	var accounts []common.Address
	if err := p.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		if code, ok := providerCode(err); ok && (code == CodeUserRejected || code == CodeUnauthorized) {
			return 0, ErrConnectionRejected
		}
		return 0, fmt.Errorf("wallet: request accounts: %w", err)
	}
	if len(accounts) == 0 {
		return 0, ErrConnectionRejected
	}

	p.mu.Lock()
	acct := accounts[0]
	p.account = &acct
	p.mu.Unlock()

	p.log.Info("wallet linked", map[string]any{"address": acct.Hex()})
	return Linked, nil
}

func (p *Provider) CurrentNetwork(ctx context.Context) (uint64, error) {
	var id hexutil.Uint64
	if err := p.client.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return 0, fmt.Errorf("wallet: chain id: %w", err)
	}

	p.mu.Lock()
	p.chainID = uint64(id)
	p.mu.Unlock()

	return uint64(id), nil
}

type switchChainParams struct {
	ChainID string `json:"chainId"`
}

func (p *Provider) RequestNetworkSwitch(ctx context.Context, chainID uint64) error {
	params := switchChainParams{ChainID: hexutil.EncodeUint64(chainID)}

	if err := p.client.CallContext(ctx, nil, "wallet_switchEthereumChain", params); err != nil {
		code, _ := providerCode(err)
		switch code {
		case CodeUnrecognizedChain:
			return &UnknownChainError{ChainID: chainID}
		case CodeUserRejected:
			return ErrSwitchRejected
		default:
			return fmt.Errorf("wallet: switch to chain %d: %w", chainID, err)
		}
	}

	p.mu.Lock()
	p.chainID = chainID
	p.mu.Unlock()

	p.log.Debug("wallet switched network", map[string]any{"chainId": chainID})
	return nil
}

type nativeCurrencyParams struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type addChainParams struct {
	ChainID           string               `json:"chainId"`
	ChainName         string               `json:"chainName"`
	NativeCurrency    nativeCurrencyParams `json:"nativeCurrency"`
	RPCURLs           []string             `json:"rpcUrls"`
	BlockExplorerURLs []string             `json:"blockExplorerUrls,omitempty"`
}

func (p *Provider) RequestNetworkRegistration(ctx context.Context, chain types.ChainDescriptor) error {
	params := addChainParams{
		ChainID:   chain.HexChainID(),
		ChainName: chain.Name,
		NativeCurrency: nativeCurrencyParams{
			Name:     chain.NativeCurrency.Name,
			Symbol:   chain.NativeCurrency.Symbol,
			Decimals: chain.NativeCurrency.Decimals,
		},
		RPCURLs:           chain.RPCURLs,
		BlockExplorerURLs: chain.ExplorerURLs,
	}

	if err := p.client.CallContext(ctx, nil, "wallet_addEthereumChain", params); err != nil {
		if code, ok := providerCode(err); ok && code == CodeUserRejected {
			return ErrRegistrationRejected
		}
		return fmt.Errorf("wallet: add chain %d: %w", chain.ChainID, err)
	}

	p.log.Debug("wallet registered network", map[string]any{"chainId": chain.ChainID, "name": chain.Name})
	return nil
}

func (p *Provider) Signer(ctx context.Context) (Signer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.account == nil {
		return nil, ErrNotConnected
	}
	return &providerSigner{
		provider: p,
		from:     *p.account,
		eth:      ethclient.NewClient(p.client),
	}, nil
}

// SuggestGasPrice asks the wallet's node for the current gas price.
func (p *Provider) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var price hexutil.Big
	if err := p.client.CallContext(ctx, &price, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return (*big.Int)(&price), nil
}

// Close releases the RPC connection.
func (p *Provider) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

type sendTxParams struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

type providerSigner struct {
	provider *Provider
	from     common.Address
	eth      *ethclient.Client
}

func (s *providerSigner) Address() common.Address {
	return s.from
}

func (s *providerSigner) Transfer(ctx context.Context, token, to common.Address, amount *big.Int) (common.Hash, error) {
	data, err := contracts.ERC20().Pack("transfer", to, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: pack transfer: %w", err)
	}

	var hash common.Hash
	err = s.provider.client.CallContext(ctx, &hash, "eth_sendTransaction", sendTxParams{
		From: s.from,
		To:   token,
		Data: data,
	})
	if err != nil {
		if code, ok := providerCode(err); ok && code == CodeUserRejected {
			return common.Hash{}, ErrUserRejected
		}
		return common.Hash{}, fmt.Errorf("wallet: send transaction: %w", err)
	}

	return hash, nil
}

func (s *providerSigner) WaitConfirmed(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	return waitForReceipt(ctx, s.eth, hash, s.provider.interval)
}

// providerCode extracts the JSON-RPC error code of a provider response.
func providerCode(err error) (int, bool) {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode(), true
	}
	return 0, false
}
