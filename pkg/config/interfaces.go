// Package config holds the JSON run file the backtest CLI reads
package config

// Common configuration constants
const (
	DefaultInitialCapital = 10000.0
	DefaultInterval       = "1h"
	DefaultLimit          = 1000

	SourceCSV   = "csv"
	SourceBybit = "bybit"

	// File and directory constants
	DefaultDataRoot = "data"
	DefaultExchange = "bybit"
	ResultsDir      = "results"
)
