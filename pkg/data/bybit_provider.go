package data

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
	"github.com/ducminhle1904/token-strategy-lab/internal/exchange/bybit"
	"github.com/ducminhle1904/token-strategy-lab/internal/monitoring"
	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

// KlineSource is the part of the Bybit client the provider needs
type KlineSource interface {
	GetKlineHistory(ctx context.Context, params bybit.KlineParams, total int) ([]bybit.Kline, error)
}

// BybitProviderConfig selects which klines to download
type BybitProviderConfig struct {
	Category string
	Interval bybit.KlineInterval
	Limit    int
	Start    *time.Time
	End      *time.Time
}

// BybitProvider loads candles from the Bybit kline endpoint. The source
// passed to LoadData is the symbol.
type BybitProvider struct {
	source KlineSource
	config BybitProviderConfig
	logger *zap.Logger
}

// NewBybitProvider creates a provider on top of a kline source
func NewBybitProvider(source KlineSource, config BybitProviderConfig, logger *zap.Logger) *BybitProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Interval == "" {
		config.Interval = bybit.Interval1h
	}
	if config.Limit <= 0 {
		config.Limit = 1000
	}
	return &BybitProvider{
		source: source,
		config: config,
		logger: logger.With(zap.String("provider", "bybit")),
	}
}

// GetName returns the name of the data provider
func (p *BybitProvider) GetName() string {
	return "Bybit Provider"
}

// LoadData downloads up to Limit klines for symbol, oldest first
func (p *BybitProvider) LoadData(ctx context.Context, symbol string) ([]types.OHLCV, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, engerrors.NewValidationError("bybit_provider", "LoadData", "symbol is required")
	}

	started := time.Now()
	klines, err := p.source.GetKlineHistory(ctx, bybit.KlineParams{
		Category: p.config.Category,
		Symbol:   symbol,
		Interval: p.config.Interval,
		Start:    p.config.Start,
		End:      p.config.End,
	}, p.config.Limit)
	if err != nil {
		monitoring.RecordError("exchange")
		return nil, engerrors.NewExchangeError("bybit_provider", "LoadData", err).
			WithContext("symbol", symbol).
			WithRetryable(bybit.IsRetryableError(err))
	}

	data := make([]types.OHLCV, 0, len(klines))
	for _, k := range klines {
		data = append(data, types.OHLCV{
			Timestamp: k.StartTime,
			Open:      k.OpenPrice,
			High:      k.HighPrice,
			Low:       k.LowPrice,
			Close:     k.ClosePrice,
			Volume:    k.Volume,
		})
	}
	filter := NewDefaultDataFilter()
	data = filter.RemoveDuplicates(filter.SortByTimestamp(data))

	monitoring.RecordCandles("bybit", symbol, len(data))
	p.logger.Info("Downloaded candles",
		zap.String("symbol", symbol),
		zap.String("interval", string(p.config.Interval)),
		zap.Int("candles", len(data)),
		zap.Duration("elapsed", time.Since(started)))
	return data, nil
}

// ValidateData validates the integrity of loaded data
func (p *BybitProvider) ValidateData(data []types.OHLCV) error {
	return ValidateCandles(data)
}
