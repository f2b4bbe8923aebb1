package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
)

// Config is the process environment: where logs and data live, exchange
// access and the defaults the CLI falls back to when flags are not set
type Config struct {
	Environment string
	LogLevel    string
	LogFile     string
	LogDir      string
	LogFormat   string

	InitialCapital   float64
	OptimizerWorkers int
	DataRoot         string
	RequestTimeout   time.Duration

	Bybit struct {
		APIKey   string
		Secret   string
		Testnet  bool
		Demo     bool
		Category string
	}

	Monitoring struct {
		MetricsPort int
	}
}

// Load reads the configuration from the environment
func Load() *Config {
	cfg := &Config{
		Environment:      getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", ""),
		LogDir:           getEnv("LOG_DIR", ""),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		InitialCapital:   getEnvFloat("INITIAL_CAPITAL", 10000),
		OptimizerWorkers: getEnvInt("OPTIMIZER_WORKERS", 0),
		DataRoot:         getEnv("DATA_ROOT", "data"),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 2*time.Minute),
	}

	cfg.Bybit.APIKey = getEnv("BYBIT_API_KEY", "")
	cfg.Bybit.Secret = getEnv("BYBIT_API_SECRET", "")
	cfg.Bybit.Testnet = getEnvBool("BYBIT_TESTNET", false)
	cfg.Bybit.Demo = getEnvBool("BYBIT_DEMO", false)
	cfg.Bybit.Category = getEnv("BYBIT_CATEGORY", "spot")

	cfg.Monitoring.MetricsPort = getEnvInt("METRICS_PORT", 0)

	return cfg
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.InitialCapital <= 0 {
		return engerrors.NewConfigurationError("config", "Validate", "INITIAL_CAPITAL must be positive")
	}
	if c.OptimizerWorkers < 0 {
		return engerrors.NewConfigurationError("config", "Validate", "OPTIMIZER_WORKERS must not be negative")
	}
	if c.Monitoring.MetricsPort < 0 || c.Monitoring.MetricsPort > 65535 {
		return engerrors.NewConfigurationError("config", "Validate", "METRICS_PORT out of range")
	}
	switch c.Bybit.Category {
	case "spot", "linear", "inverse":
	default:
		return engerrors.NewConfigurationError("config", "Validate", "BYBIT_CATEGORY must be spot, linear or inverse")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
