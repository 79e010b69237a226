package paylink

import (
	"net/http"
	"time"

	"github.com/vitwit/paylink/chains"
	"github.com/vitwit/paylink/loader"
	"github.com/vitwit/paylink/logger"
	"github.com/vitwit/paylink/metrics"
	"github.com/vitwit/paylink/recorder"
	"github.com/vitwit/paylink/settlement"
	"github.com/vitwit/paylink/wallet"
)

type Option func(*Paylink)

func WithLogger(l logger.Logger) Option {
	return func(p *Paylink) {
		p.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(p *Paylink) {
		p.metrics = r
	}
}

func WithTimeout(t time.Duration) Option {
	return func(p *Paylink) {
		p.timeout = t
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(p *Paylink) {
		p.httpClient = h
	}
}

func WithChains(r *chains.Registry) Option {
	return func(p *Paylink) {
		p.chains = r
	}
}

func WithLoader(l loader.Loader) Option {
	return func(p *Paylink) {
		p.loader = l
	}
}

func WithSettler(s settlement.Settler) Option {
	return func(p *Paylink) {
		p.settler = s
	}
}

func WithTokenSource(t settlement.TokenSource) Option {
	return func(p *Paylink) {
		p.tokens = t
	}
}

func WithRecorder(r recorder.Recorder) Option {
	return func(p *Paylink) {
		p.recorder = r
	}
}

func WithWallet(w wallet.Capability) Option {
	return func(p *Paylink) {
		p.wallet = w
	}
}
