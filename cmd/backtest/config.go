package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	appconfig "github.com/ducminhle1904/token-strategy-lab/internal/config"
	"github.com/ducminhle1904/token-strategy-lab/internal/strategy"
	"github.com/ducminhle1904/token-strategy-lab/pkg/config"
	"github.com/ducminhle1904/token-strategy-lab/pkg/validation"
)

// cliOptions holds the parsed command line
type cliOptions struct {
	ConfigFile  string
	DataFile    string
	Source      string
	Symbol      string
	Interval    string
	Period      string
	Limit       int
	Capital     float64
	Optimize    bool
	Workers     int
	OutputDir   string
	ConsoleOnly bool
	Excel       bool
	CSV         bool
	SaveData    bool
	EnvFile     string
	LogLevel    string
	MetricsPort int
	Version     bool

	WalkForward bool
	WFRolling   bool
	WFSplit     float64
	WFTrainDays int
	WFTestDays  int
	WFRollDays  int

	// set records which flags were given explicitly
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	opts := &cliOptions{}
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.ConfigFile, "config", "", "Path to a JSON run config")
	fs.StringVar(&opts.DataFile, "data", "", "CSV candle file (implies -source csv)")
	fs.StringVar(&opts.Source, "source", config.SourceCSV, "Candle source: csv or bybit")
	fs.StringVar(&opts.Symbol, "symbol", "BTCUSDT", "Trading symbol")
	fs.StringVar(&opts.Interval, "interval", config.DefaultInterval, "Candle interval (e.g. 5m, 1h, 4h, 1d)")
	fs.StringVar(&opts.Period, "period", "", "Trailing window to test, e.g. 7d, 30d, 720h")
	fs.IntVar(&opts.Limit, "limit", config.DefaultLimit, "Candles to download from Bybit")
	fs.Float64Var(&opts.Capital, "capital", config.DefaultInitialCapital, "Initial capital")
	fs.BoolVar(&opts.Optimize, "optimize", false, "Grid-search RSI threshold, take profit and stop loss")
	fs.IntVar(&opts.Workers, "workers", 0, "Optimizer workers (0 = number of CPUs)")
	fs.StringVar(&opts.OutputDir, "output", "", "Report root; files go to <output>/<SYMBOL>_<interval>")
	fs.BoolVar(&opts.ConsoleOnly, "console-only", false, "Print results without writing report files")
	fs.BoolVar(&opts.Excel, "excel", false, "Write an Excel workbook")
	fs.BoolVar(&opts.CSV, "csv", false, "Write the trade list as CSV")
	fs.BoolVar(&opts.SaveData, "save-data", false, "Store downloaded Bybit candles under the data root")
	fs.StringVar(&opts.EnvFile, "env", ".env", "Environment file")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.IntVar(&opts.MetricsPort, "metrics-port", 0, "Serve /metrics and /health on this port")
	fs.BoolVar(&opts.Version, "version", false, "Show version information")

	wf := validation.DefaultWalkForwardConfig()
	fs.BoolVar(&opts.WalkForward, "walk-forward", false, "Validate optimized parameters out of sample (implies -optimize)")
	fs.BoolVar(&opts.WFRolling, "wf-rolling", false, "Use rolling windows instead of a single holdout split")
	fs.Float64Var(&opts.WFSplit, "wf-split", wf.SplitRatio, "Holdout train share")
	fs.IntVar(&opts.WFTrainDays, "wf-train-days", wf.TrainDays, "Rolling train window in days")
	fs.IntVar(&opts.WFTestDays, "wf-test-days", wf.TestDays, "Rolling test window in days")
	fs.IntVar(&opts.WFRollDays, "wf-roll-days", wf.RollDays, "Rolling step in days")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// buildRunConfig layers the run config: defaults, then environment, then the
// -config file, then explicit flags. A run file with optimization ranges
// optimizes unless -optimize=false is given.
func buildRunConfig(opts *cliOptions, env *appconfig.Config) (*config.RunConfig, error) {
	var cfg *config.RunConfig
	if opts.ConfigFile != "" {
		loaded, err := config.LoadRunConfig(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultRunConfig()
		if env != nil {
			cfg.InitialCapital = env.InitialCapital
			cfg.Workers = env.OptimizerWorkers
		}
	}

	if opts.set["data"] {
		cfg.DataFile = opts.DataFile
		cfg.Source = config.SourceCSV
	}
	if opts.set["source"] {
		cfg.Source = strings.ToLower(opts.Source)
	}
	if opts.set["symbol"] {
		cfg.Symbol = strings.ToUpper(opts.Symbol)
	}
	if opts.set["interval"] {
		cfg.Interval = opts.Interval
	}
	if opts.set["period"] {
		cfg.Period = opts.Period
	}
	if opts.set["limit"] {
		cfg.Limit = opts.Limit
	}
	if opts.set["capital"] {
		cfg.InitialCapital = opts.Capital
	}
	if opts.set["workers"] {
		cfg.Workers = opts.Workers
	}
	if opts.set["output"] {
		cfg.Output.Dir = opts.OutputDir
	}
	if opts.set["excel"] {
		cfg.Output.Excel = opts.Excel
	}
	if opts.set["csv"] {
		cfg.Output.CSV = opts.CSV
	}
	if opts.ConsoleOnly {
		cfg.Output.Console = true
		cfg.Output.Excel = false
		cfg.Output.CSV = false
		cfg.Output.JSON = false
	}

	applyWalkForwardFlags(opts, cfg)
	if (opts.Optimize || cfg.WalkForward != nil) && cfg.Optimization == nil {
		cfg.Optimization = config.DefaultOptimizationRanges()
	}
	if opts.set["optimize"] && !opts.Optimize {
		cfg.Optimization = nil
		cfg.WalkForward = nil
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyWalkForwardFlags enables walk-forward for -walk-forward and lets the
// -wf-* flags adjust a walk_forward block from the run file
func applyWalkForwardFlags(opts *cliOptions, cfg *config.RunConfig) {
	if opts.set["walk-forward"] {
		if !opts.WalkForward {
			cfg.WalkForward = nil
			return
		}
		if cfg.WalkForward == nil {
			wf := validation.DefaultWalkForwardConfig()
			cfg.WalkForward = &wf
		}
	}
	if cfg.WalkForward == nil {
		return
	}
	if opts.set["wf-rolling"] {
		cfg.WalkForward.Rolling = opts.WFRolling
	}
	if opts.set["wf-split"] {
		cfg.WalkForward.SplitRatio = opts.WFSplit
	}
	if opts.set["wf-train-days"] {
		cfg.WalkForward.TrainDays = opts.WFTrainDays
	}
	if opts.set["wf-test-days"] {
		cfg.WalkForward.TestDays = opts.WFTestDays
	}
	if opts.set["wf-roll-days"] {
		cfg.WalkForward.RollDays = opts.WFRollDays
	}
}

// bestRunConfig turns the winning candidate into a run file that reproduces it
func bestRunConfig(cfg *config.RunConfig, best strategy.Strategy) *config.RunConfig {
	out := *cfg
	out.Strategy = best.Clone()
	out.Optimization = nil
	out.WalkForward = nil
	return &out
}
