// Package settlement reaches the backend settlement endpoint used by the
// backend rail.
package settlement

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vitwit/paylink/internal/httpjson"
	"github.com/vitwit/paylink/logger"
	"github.com/vitwit/paylink/types"
)

// ErrNoToken is returned by a TokenSource that has no credential for the payer.
var ErrNoToken = errors.New("settlement: no auth token found")

// Settler interface defines the contract for backend payment settlement
type Settler interface {
	Settle(ctx context.Context, req *types.SettleRequest) (*types.BackendReceipt, error)
}

// TokenSource yields the payer's access token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource backed by a fixed string. An empty value
// reports ErrNoToken.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if strings.TrimSpace(string(t)) == "" {
		return "", ErrNoToken
	}
	return string(t), nil
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Client calls POST /payments/backend-settle.
type Client struct {
	http *httpjson.Client
	log  logger.Logger
}

type Option func(*Client)

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http.HTTP = h
	}
}

// NewClient creates a settlement client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http: httpjson.New(baseURL, timeout),
		log:  logger.NoopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetHeader adds a header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.http.Header.Set(key, value)
}

// Settle submits one settlement request. It never retries; any non-2xx
// response or a receipt without an id is BACKEND_SETTLEMENT_ERROR.
func (c *Client) Settle(ctx context.Context, req *types.SettleRequest) (*types.BackendReceipt, error) {
	if req.AuthToken == "" {
		return nil, types.Errorf(types.ErrAuthenticationRequired, "no auth token found")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+req.AuthToken)

	var receipt types.BackendReceipt
	if err := c.http.Do(ctx, http.MethodPost, "/payments/backend-settle", req, &receipt, header); err != nil {
		c.log.Warn("backend settlement failed", map[string]any{"linkId": req.LinkID, "error": err})
		return nil, types.NewError(types.ErrBackendSettlement, "backend settlement failed", err)
	}

	if receipt.ID == "" {
		return nil, types.Errorf(types.ErrBackendSettlement, "settlement receipt has no id")
	}

	// Echo submitted fields the server left out.
	if receipt.Amount == "" {
		receipt.Amount = req.Amount
	}
	if receipt.PayerName == "" {
		receipt.PayerName = req.PayerName
	}
	if receipt.PayerEmail == "" {
		receipt.PayerEmail = req.PayerEmail
	}
	if receipt.CustomFields == nil {
		receipt.CustomFields = req.CustomFields
	}

	c.log.Info("backend settlement accepted", map[string]any{"linkId": req.LinkID, "receiptId": receipt.ID})
	return &receipt, nil
}
