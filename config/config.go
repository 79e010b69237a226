// Package config builds the explicit configuration passed to every paylink
// component. It is constructed once at process start.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vitwit/paylink/chains"
	"github.com/vitwit/paylink/types"
	"github.com/vitwit/paylink/utils"
)

// Config holds everything the payer flow needs from its environment.
type Config struct {
	// APIBaseURL is the root of the links, settlement and transactions API.
	APIBaseURL string `json:"apiBaseUrl" validate:"required,url"`

	// AppID identifies this client to the API. Sent as X-App-Id when set.
	AppID string `json:"appId,omitempty"`

	LogLevel string `json:"logLevel" validate:"omitempty,oneof=debug info warn error"`

	HTTPTimeoutSeconds   int `json:"httpTimeoutSeconds" validate:"gte=1"`
	RecordTimeoutSeconds int `json:"recordTimeoutSeconds" validate:"gte=1"`

	DefaultChainID uint64 `json:"defaultChainId" validate:"required"`

	// DefaultPayee receives on-chain payments for links that carry no payee.
	DefaultPayee string `json:"defaultPayee,omitempty" validate:"omitempty,eth_addr"`

	// WalletRPCURL is an EIP-1193 style wallet endpoint.
	WalletRPCURL string `json:"walletRpcUrl,omitempty" validate:"omitempty,url"`

	// WalletPrivateKey selects the embedded wallet when set.
	WalletPrivateKey string `json:"-"`

	AuthToken string `json:"-"`

	// RecorderDSN, when set, records transactions to Postgres instead of
	// the transactions endpoint.
	RecorderDSN string `json:"recorderDsn,omitempty"`

	MetricsAddr string `json:"metricsAddr,omitempty" validate:"omitempty,hostname_port"`
}

// Defaults returns a config pointing at a local API and Base Sepolia.
func Defaults() *Config {
	return &Config{
		APIBaseURL:           "http://localhost:8080",
		LogLevel:             "info",
		HTTPTimeoutSeconds:   30,
		RecordTimeoutSeconds: 10,
		DefaultChainID:       chains.BaseSepoliaID,
	}
}

// Load reads configuration from PAYLINK_* environment variables on top of
// the defaults.
func Load() (*Config, error) {
	cfg := Defaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a JSON config file, then applies environment overrides.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Defaults()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, types.NewError(types.ErrConfigError, "parse config file", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags.
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return types.NewError(types.ErrConfigError, "invalid configuration", err)
	}
	return nil
}

// HTTPTimeout is the per-request timeout for API calls.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// RecordTimeout bounds the background transaction record call.
func (c *Config) RecordTimeout() time.Duration {
	return time.Duration(c.RecordTimeoutSeconds) * time.Second
}

func (c *Config) applyEnv() error {
	c.APIBaseURL = envOr("PAYLINK_API_URL", c.APIBaseURL)
	c.AppID = envOr("PAYLINK_APP_ID", c.AppID)
	c.LogLevel = envOr("PAYLINK_LOG_LEVEL", c.LogLevel)
	c.HTTPTimeoutSeconds = envOrInt("PAYLINK_HTTP_TIMEOUT_SECONDS", c.HTTPTimeoutSeconds)
	c.RecordTimeoutSeconds = envOrInt("PAYLINK_RECORD_TIMEOUT_SECONDS", c.RecordTimeoutSeconds)
	c.DefaultPayee = envOr("PAYLINK_DEFAULT_PAYEE", c.DefaultPayee)
	c.WalletRPCURL = envOr("PAYLINK_WALLET_RPC_URL", c.WalletRPCURL)
	c.WalletPrivateKey = envOr("PAYLINK_WALLET_PRIVATE_KEY", c.WalletPrivateKey)
	c.AuthToken = envOr("PAYLINK_AUTH_TOKEN", c.AuthToken)
	c.RecorderDSN = envOr("PAYLINK_RECORDER_DSN", c.RecorderDSN)
	c.MetricsAddr = envOr("PAYLINK_METRICS_ADDR", c.MetricsAddr)

	if v, ok := os.LookupEnv("PAYLINK_DEFAULT_CHAIN_ID"); ok && v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return types.NewError(types.ErrConfigError, "PAYLINK_DEFAULT_CHAIN_ID must be an integer", err)
		}
		c.DefaultChainID = id
	}
	return nil
}

func envOr(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
