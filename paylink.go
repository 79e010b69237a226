// Package paylink wires the payer side of payment links: it loads a link,
// and hands back an executor bound to the configured wallet, settlement
// backend and transaction recorder.
package paylink

import (
	"context"
	"net/http"
	"time"

	"github.com/vitwit/paylink/chains"
	"github.com/vitwit/paylink/config"
	"github.com/vitwit/paylink/executor"
	"github.com/vitwit/paylink/form"
	"github.com/vitwit/paylink/loader"
	"github.com/vitwit/paylink/logger"
	"github.com/vitwit/paylink/metrics"
	"github.com/vitwit/paylink/recorder"
	"github.com/vitwit/paylink/settlement"
	"github.com/vitwit/paylink/types"
	"github.com/vitwit/paylink/wallet"
)

// AppIDHeader carries config.AppID on every API call.
const AppIDHeader = "X-App-Id"

// Paylink is the main entry point. One instance serves any number of links.
type Paylink struct {
	cfg *config.Config

	logger     logger.Logger
	metrics    metrics.Recorder
	timeout    time.Duration
	httpClient *http.Client

	chains   *chains.Registry
	loader   loader.Loader
	settler  settlement.Settler
	tokens   settlement.TokenSource
	recorder recorder.Recorder
	wallet   wallet.Capability

	closers []func()
}

// New validates cfg and builds every collaborator it describes. Options
// override individual collaborators; anything not overridden is derived from
// cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Paylink, error) {
	if cfg == nil {
		return nil, types.Errorf(types.ErrConfigError, "config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Paylink{
		cfg:     cfg,
		logger:  logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
		timeout: cfg.HTTPTimeout(),
		chains:  chains.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if !p.chains.IsSupported(cfg.DefaultChainID) {
		return nil, types.Errorf(types.ErrConfigError, "default chain %d is not supported", cfg.DefaultChainID)
	}

	if p.loader == nil {
		c := loader.NewClient(cfg.APIBaseURL, p.timeout,
			loader.WithLogger(p.logger),
			loader.WithMetrics(p.metrics),
			loader.WithHTTPClient(p.client()),
		)
		if cfg.AppID != "" {
			c.SetHeader(AppIDHeader, cfg.AppID)
		}
		p.loader = c
	}

	if p.settler == nil {
		c := settlement.NewClient(cfg.APIBaseURL, p.timeout,
			settlement.WithLogger(p.logger),
			settlement.WithHTTPClient(p.client()),
		)
		if cfg.AppID != "" {
			c.SetHeader(AppIDHeader, cfg.AppID)
		}
		p.settler = c
	}

	if p.tokens == nil && cfg.AuthToken != "" {
		p.tokens = settlement.StaticToken(cfg.AuthToken)
	}

	if p.recorder == nil {
		rec, err := p.newRecorder(ctx)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.recorder = rec
	}

	if p.wallet == nil {
		w, err := p.newWallet(ctx)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.wallet = w
	}

	return p, nil
}

func (p *Paylink) client() *http.Client {
	if p.httpClient != nil {
		return p.httpClient
	}
	return &http.Client{Timeout: p.timeout}
}

func (p *Paylink) newRecorder(ctx context.Context) (recorder.Recorder, error) {
	if p.cfg.RecorderDSN != "" {
		pg, err := recorder.NewPostgresRecorder(ctx, p.cfg.RecorderDSN)
		if err != nil {
			return nil, types.NewError(types.ErrConfigError, "connect transaction store", err)
		}
		p.closers = append(p.closers, pg.Close)
		return pg, nil
	}

	rec := recorder.NewHTTPRecorder(p.cfg.APIBaseURL, p.cfg.RecordTimeout())
	rec.SetHTTPClient(p.client())
	if p.cfg.AppID != "" {
		rec.SetHeader(AppIDHeader, p.cfg.AppID)
	}
	return rec, nil
}

// newWallet picks the embedded wallet when a key is configured, otherwise a
// wallet endpoint. With neither, payments can still use the backend rail.
func (p *Paylink) newWallet(ctx context.Context) (wallet.Capability, error) {
	switch {
	case p.cfg.WalletPrivateKey != "":
		return wallet.NewEmbedded(wallet.EmbeddedConfig{
			PrivateKey: p.cfg.WalletPrivateKey,
			Networks:   p.chains.Supported(),
			Initial:    p.cfg.DefaultChainID,
		}, wallet.WithEmbeddedLogger(p.logger)), nil
	case p.cfg.WalletRPCURL != "":
		w, err := wallet.DialProvider(ctx, p.cfg.WalletRPCURL, wallet.WithProviderLogger(p.logger))
		if err != nil {
			return nil, types.NewError(types.ErrWalletUnavailable, "dial wallet", err)
		}
		p.closers = append(p.closers, w.Close)
		return w, nil
	default:
		p.logger.Info("no wallet configured, on-chain rail unavailable", nil)
		return nil, nil
	}
}

// Load fetches a link descriptor without starting a payment.
func (p *Paylink) Load(ctx context.Context, linkID string) (*types.PaymentLinkDescriptor, error) {
	return p.loader.Load(ctx, linkID)
}

// Open loads linkID and returns an executor in the Collecting state.
func (p *Paylink) Open(ctx context.Context, linkID string) (*executor.Executor, error) {
	desc, err := p.loader.Load(ctx, linkID)
	if err != nil {
		return nil, err
	}

	opts := []executor.Option{
		executor.WithChains(p.chains),
		executor.WithSettler(p.settler),
		executor.WithRecorder(p.recorder),
		executor.WithLogger(p.logger),
		executor.WithMetrics(p.metrics),
		executor.WithDefaultPayee(p.cfg.DefaultPayee),
		executor.WithRecordTimeout(p.cfg.RecordTimeout()),
	}
	if p.wallet != nil {
		opts = append(opts, executor.WithWallet(p.wallet))
	}
	if p.tokens != nil {
		opts = append(opts, executor.WithTokenSource(p.tokens))
	}

	return executor.New(desc, form.New(desc, p.cfg.DefaultChainID), opts...), nil
}

func (p *Paylink) Chains() *chains.Registry {
	return p.chains
}

// Wallet returns the configured wallet, or nil when none is available.
func (p *Paylink) Wallet() wallet.Capability {
	return p.wallet
}

// Close releases wallet and database connections.
func (p *Paylink) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
	p.closers = nil
}

// Version information
const Version = "0.1.0"

// GetVersion returns version information
func GetVersion() map[string]interface{} {
	supported := chains.Default().Supported()
	names := make([]string, 0, len(supported))
	for _, c := range supported {
		names = append(names, c.Name)
	}
	return map[string]interface{}{
		"library_version":    Version,
		"supported_networks": names,
		"supported_rails":    []string{string(types.RailOnChain), string(types.RailBackend)},
	}
}
