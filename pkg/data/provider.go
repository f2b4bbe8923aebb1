package data

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

// DataManager combines a provider with the filters every run needs: sort,
// de-duplicate, optional trailing period, validation
type DataManager struct {
	provider DataProvider
	filter   *DefaultDataFilter
	locator  *DefaultFileLocator
	logger   *zap.Logger
}

// NewDataManager creates a data manager over cached CSV files
func NewDataManager(logger *zap.Logger) *DataManager {
	return NewDataManagerWithProvider(NewCachedProvider(NewCSVProvider(logger), logger), logger)
}

// NewDataManagerWithProvider creates a data manager with a custom provider
func NewDataManagerWithProvider(provider DataProvider, logger *zap.Logger) *DataManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataManager{
		provider: provider,
		filter:   NewDefaultDataFilter(),
		locator:  NewDefaultFileLocator(logger),
		logger:   logger,
	}
}

// Load fetches source, restores ascending unique order, trims to the
// trailing period when period > 0 and validates the result
func (dm *DataManager) Load(ctx context.Context, source string, period time.Duration) ([]types.OHLCV, error) {
	data, err := dm.provider.LoadData(ctx, source)
	if err != nil {
		return nil, err
	}

	data = dm.filter.RemoveDuplicates(dm.filter.SortByTimestamp(data))
	if period > 0 {
		before := len(data)
		data = dm.filter.FilterByPeriod(data, period)
		dm.logger.Debug("Applied trailing period",
			zap.Duration("period", period),
			zap.Int("before", before),
			zap.Int("after", len(data)))
	}

	if err := dm.provider.ValidateData(data); err != nil {
		return nil, err
	}
	return data, nil
}

// FindDataFile locates a candle file under dataRoot
func (dm *DataManager) FindDataFile(dataRoot, exchange, symbol, interval string) string {
	return dm.locator.FindDataFile(dataRoot, exchange, symbol, interval)
}

// GetProvider returns the underlying data provider
func (dm *DataManager) GetProvider() DataProvider {
	return dm.provider
}

// ParseTrailingPeriod parses period strings like "7d", "30days" or any
// time.ParseDuration value
func ParseTrailingPeriod(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasSuffix(s, "days") {
		s = strings.TrimSuffix(s, "days") + "d"
	}
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || n <= 0 {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}
