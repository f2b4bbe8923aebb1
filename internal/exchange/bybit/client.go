package bybit

import (
	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"go.uber.org/zap"
)

// Client wraps the Bybit API client for market data access. Kline endpoints
// are public, so the key pair may be left empty.
type Client struct {
	httpClient *bybit_api.Client
	testnet    bool
	demo       bool
	retry      RetryConfig
	logger     *zap.Logger
}

// Config holds the configuration for the Bybit client
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Demo      bool // Demo trading environment
	Retry     *RetryConfig
}

// NewClient creates a new Bybit client
func NewClient(config Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	retry := DefaultRetryConfig()
	if config.Retry != nil {
		retry = *config.Retry
	}

	httpClient := bybit_api.NewBybitHttpClient(
		config.APIKey,
		config.APISecret,
		bybit_api.WithBaseURL(baseURL(config)),
	)

	return &Client{
		httpClient: httpClient,
		testnet:    config.Testnet,
		demo:       config.Demo,
		retry:      retry,
		logger:     logger.With(zap.String("exchange", "bybit")),
	}
}

func baseURL(config Config) string {
	switch {
	case config.Demo:
		return "https://api-demo.bybit.com"
	case config.Testnet:
		return bybit_api.TESTNET
	default:
		return bybit_api.MAINNET
	}
}

// GetEnvironment returns a string describing the current environment
func (c *Client) GetEnvironment() string {
	if c.demo {
		return "demo"
	} else if c.testnet {
		return "testnet"
	}
	return "mainnet"
}
