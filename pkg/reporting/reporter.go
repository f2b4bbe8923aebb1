package reporting

import (
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ducminhle1904/token-strategy-lab/internal/backtest"
)

// Output file names inside the run directory
const (
	ResultJSONFile       = "result.json"
	OptimizationJSONFile = "optimization.json"
	BestConfigFile       = "best.json"
	TradesCSVFile        = "trades.csv"
	WorkbookFile         = "trades.xlsx"
	WalkForwardJSONFile  = "walk_forward.json"
)

// ReportingManager writes every enabled report for a run
type ReportingManager struct {
	config  ReportingConfig
	console *ConsoleReporter
	logger  *zap.Logger
}

// NewReportingManager creates a manager printing console tables to out
func NewReportingManager(config ReportingConfig, out io.Writer, logger *zap.Logger) *ReportingManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportingManager{
		config:  config,
		console: NewConsoleReporter(out),
		logger:  logger,
	}
}

// Console returns the console reporter
func (m *ReportingManager) Console() *ConsoleReporter {
	return m.console
}

// ReportResults prints and writes the outputs for one result. opt may be
// nil; bestConfig is written as best.json when not nil and JSON is enabled.
// It returns the files written.
func (m *ReportingManager) ReportResults(result *backtest.BacktestResult, opt *backtest.OptimizationResult, bestConfig interface{}, symbol, interval string) ([]string, error) {
	if m.config.EnableConsole {
		if opt != nil {
			m.console.PrintOptimization(opt, 10)
		}
		m.console.PrintResult(result, symbol, interval)
		m.console.PrintTrades(result, 20)
	}

	dir := DefaultOutputDir(m.config.OutputDirectory, symbol, interval)
	var written []string
	write := func(name string, fn func(path string) error) error {
		path := filepath.Join(dir, name)
		if err := fn(path); err != nil {
			m.logger.Error("Failed to write report", zap.String("path", path), zap.Error(err))
			return err
		}
		written = append(written, path)
		m.logger.Info("Wrote report", zap.String("path", path))
		return nil
	}

	if m.config.CSVEnabled {
		if err := write(TradesCSVFile, func(p string) error { return WriteTradesCSV(result, p) }); err != nil {
			return written, err
		}
	}
	if m.config.ExcelEnabled {
		if err := write(WorkbookFile, func(p string) error { return WriteWorkbook(result, opt, p) }); err != nil {
			return written, err
		}
	}
	if m.config.JSONEnabled {
		if err := write(ResultJSONFile, func(p string) error { return WriteResultJSON(result, p) }); err != nil {
			return written, err
		}
		if opt != nil {
			if err := write(OptimizationJSONFile, func(p string) error { return WriteOptimizationJSON(opt, p) }); err != nil {
				return written, err
			}
		}
		if bestConfig != nil {
			if err := write(BestConfigFile, func(p string) error { return WriteBestConfigJSON(bestConfig, p) }); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}
