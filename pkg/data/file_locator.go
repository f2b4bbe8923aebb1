package data

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DefaultFileLocator looks for candles under
// {dataRoot}/{exchange}/{category}/{SYMBOL}/{intervalMinutes}/candles.csv
type DefaultFileLocator struct {
	logger *zap.Logger
}

// NewDefaultFileLocator creates a new default file locator
func NewDefaultFileLocator(logger *zap.Logger) *DefaultFileLocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultFileLocator{logger: logger}
}

// ConvertIntervalToMinutes converts interval strings like "5m", "1h", "4h" to minute numbers
func (f *DefaultFileLocator) ConvertIntervalToMinutes(interval string) string {
	if _, err := strconv.Atoi(interval); err == nil {
		return interval
	}

	interval = strings.ToLower(strings.TrimSpace(interval))
	if len(interval) < 2 {
		return interval
	}

	num, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil {
		return interval
	}

	switch interval[len(interval)-1:] {
	case "m":
		return strconv.Itoa(num)
	case "h":
		return strconv.Itoa(num * 60)
	case "d":
		return strconv.Itoa(num * 24 * 60)
	case "w":
		return strconv.Itoa(num * 7 * 24 * 60)
	default:
		return interval
	}
}

// CandlePath is the canonical location of a category's candle file
func (f *DefaultFileLocator) CandlePath(dataRoot, exchange, category, symbol, interval string) string {
	return filepath.Join(dataRoot, strings.ToLower(exchange), category, strings.ToUpper(symbol),
		f.ConvertIntervalToMinutes(interval), "candles.csv")
}

// FindDataFile returns the first existing candle file across the exchange's
// categories, or "" if none exists
func (f *DefaultFileLocator) FindDataFile(dataRoot, exchange, symbol, interval string) string {
	var categories []string
	switch strings.ToLower(exchange) {
	case "bybit":
		categories = []string{"spot", "linear", "inverse"}
	case "binance":
		categories = []string{"spot", "futures"}
	default:
		categories = []string{"spot", "futures", "linear", "inverse"}
	}

	attempted := make([]string, 0, len(categories))
	for _, category := range categories {
		path := f.CandlePath(dataRoot, exchange, category, symbol, interval)
		attempted = append(attempted, path)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	f.logger.Warn("No data file found",
		zap.String("exchange", exchange),
		zap.String("symbol", symbol),
		zap.String("interval", interval),
		zap.Strings("attempted", attempted))
	return ""
}
