// Package loader fetches payment link descriptors from the links API.
package loader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/vitwit/paylink/internal/httpjson"
	"github.com/vitwit/paylink/logger"
	"github.com/vitwit/paylink/metrics"
	"github.com/vitwit/paylink/types"
	"github.com/vitwit/paylink/utils"
)

// Loader resolves a link id to its descriptor.
type Loader interface {
	Load(ctx context.Context, id string) (*types.PaymentLinkDescriptor, error)
}

// Client loads links over HTTP.
type Client struct {
	http    *httpjson.Client
	log     logger.Logger
	metrics metrics.Recorder
}

type Option func(*Client)

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http.HTTP = h
	}
}

// NewClient returns a loader for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http:    httpjson.New(baseURL, timeout),
		log:     logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
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

// wireLink mirrors the API payload. customFields is kept raw because some
// producers store it as a JSON-encoded string.
type wireLink struct {
	ID           string          `json:"id"`
	Amount       json.RawMessage `json:"amount"`
	Description  string          `json:"description"`
	PayTo        string          `json:"payTo"`
	CustomFields json.RawMessage `json:"customFields"`
}

// Load fetches the descriptor for id. A missing link is LINK_NOT_FOUND.
func (c *Client) Load(ctx context.Context, id string) (*types.PaymentLinkDescriptor, error) {
	if id == "" {
		return nil, types.Errorf(types.ErrValidation, "link id is required")
	}

	start := time.Now()
	var wire wireLink
	err := c.http.Do(ctx, http.MethodGet, "/links/"+url.PathEscape(id), nil, &wire, nil)
	c.metrics.ObserveLatency(metrics.OpLoad, time.Since(start), nil)
	if err != nil {
		c.metrics.IncCounter(metrics.EventLoad, map[string]string{"outcome": "failed"})
		if httpjson.IsStatus(err, http.StatusNotFound) {
			return nil, types.NewError(types.ErrLinkNotFound, "payment link "+id+" not found", err)
		}
		return nil, types.NewError(types.ErrNetworkError, "load payment link", err)
	}
	c.metrics.IncCounter(metrics.EventLoad, map[string]string{"outcome": "succeeded"})

	desc, err := c.decode(id, &wire)
	if err != nil {
		return nil, err
	}

	c.log.Debug("payment link loaded", map[string]any{
		"linkId":       desc.ID,
		"fixedAmount":  desc.FixedAmount,
		"customFields": len(desc.CustomFields),
	})
	return desc, nil
}

func (c *Client) decode(id string, wire *wireLink) (*types.PaymentLinkDescriptor, error) {
	desc := &types.PaymentLinkDescriptor{
		ID:          wire.ID,
		Description: wire.Description,
		PayTo:       wire.PayTo,
	}
	if desc.ID == "" {
		desc.ID = id
	}

	amount, err := decodeAmount(wire.Amount)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidDescriptor, "link amount is not a decimal", err)
	}
	if amount != "" {
		if _, err := utils.ValidateAmount(amount); err != nil {
			return nil, types.NewError(types.ErrInvalidDescriptor, "link amount is invalid", err)
		}
	}
	desc.FixedAmount = amount

	fields, err := utils.ParseCustomFields(wire.CustomFields)
	if err != nil {
		c.log.Warn("ignoring malformed custom fields", map[string]any{
			"linkId": desc.ID,
			"error":  err,
		})
	}
	desc.CustomFields = fields

	return desc, nil
}

// decodeAmount accepts the amount as a JSON string or number. null, "" and
// absence all mean the payer chooses the amount.
func decodeAmount(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
