package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ducminhle1904/token-strategy-lab/cmd/common"
	"github.com/ducminhle1904/token-strategy-lab/internal/backtest"
	appconfig "github.com/ducminhle1904/token-strategy-lab/internal/config"
	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
	"github.com/ducminhle1904/token-strategy-lab/internal/exchange/bybit"
	"github.com/ducminhle1904/token-strategy-lab/internal/logger"
	"github.com/ducminhle1904/token-strategy-lab/internal/monitoring"
	"github.com/ducminhle1904/token-strategy-lab/pkg/config"
	"github.com/ducminhle1904/token-strategy-lab/pkg/data"
	"github.com/ducminhle1904/token-strategy-lab/pkg/reporting"
	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
	"github.com/ducminhle1904/token-strategy-lab/pkg/validation"
)

// Logging functions for console progress lines
func logInfo(format string, args ...interface{}) {
	log.Printf("ℹ️  "+format, args...)
}

func logWarning(format string, args ...interface{}) {
	log.Printf("⚠️  "+format, args...)
}

func logError(format string, args ...interface{}) {
	log.Printf("❌ "+format, args...)
}

func logSuccess(format string, args ...interface{}) {
	log.Printf("✅ "+format, args...)
}

func logProgress(format string, args ...interface{}) {
	log.Printf("🔄 "+format, args...)
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if opts.Version {
		fmt.Print(common.VersionString("backtest"))
		return
	}

	if err := loadEnvFile(opts.EnvFile); err != nil && opts.set["env"] {
		logWarning("Could not load env file: %v", err)
	}

	env := appconfig.Load()
	if err := env.Validate(); err != nil {
		logError("Invalid environment: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, opts, env, os.Stdout)
	stop()
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *cliOptions, env *appconfig.Config, out io.Writer) error {
	cfg, err := buildRunConfig(opts, env)
	if err != nil {
		return err
	}

	zl, err := newLogger(opts, env, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	health := monitoring.NewHealthChecker()
	port := env.Monitoring.MetricsPort
	if opts.set["metrics-port"] {
		port = opts.MetricsPort
	}
	if port > 0 {
		srv := startMonitoringServer(port, health, zl)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logInfo("Serving /metrics and /health on :%d", port)
	}

	logProgress("Loading %s %s candles from %s", cfg.Symbol, cfg.Interval, cfg.Source)
	loadCtx, cancel := ctx, context.CancelFunc(func() {})
	if env.RequestTimeout > 0 {
		loadCtx, cancel = context.WithTimeout(ctx, env.RequestTimeout)
	}
	candles, err := loadCandles(loadCtx, cfg, env, opts.SaveData, zl)
	cancel()
	if err != nil {
		health.RecordError(err)
		return err
	}
	logSuccess("Loaded %d candles (%s to %s)", len(candles),
		candles[0].Timestamp.Format("2006-01-02 15:04"),
		candles[len(candles)-1].Timestamp.Format("2006-01-02 15:04"))

	if cfg.Optimization != nil {
		logProgress("Optimizing %s on %d candles", cfg.Strategy.ID, len(candles))
	} else {
		logProgress("Running %s on %d candles", cfg.Strategy.ID, len(candles))
	}
	outcome, err := execute(ctx, cfg, candles, zl)
	if err != nil {
		health.RecordError(err)
		return err
	}
	health.RecordRun(outcome.Result.TotalReturnPercent)

	manager := reporting.NewReportingManager(reporting.ReportingConfig{
		EnableConsole:   cfg.Output.Console,
		OutputDirectory: cfg.Output.Dir,
		ExcelEnabled:    cfg.Output.Excel,
		CSVEnabled:      cfg.Output.CSV,
		JSONEnabled:     cfg.Output.JSON,
	}, out, zl)

	var best interface{}
	if outcome.Best != nil {
		best = outcome.Best
	}
	written, err := manager.ReportResults(outcome.Result, outcome.Optimization, best, cfg.Symbol, cfg.Interval)
	for _, path := range written {
		logSuccess("Saved %s", path)
	}
	if err != nil {
		return err
	}
	if len(written) == 0 {
		logInfo("Console-only mode: Skipping file output")
	}

	if cfg.WalkForward == nil {
		return nil
	}
	logProgress("Running walk-forward validation")
	summary, err := walkForward(ctx, cfg, candles, zl)
	if err != nil {
		health.RecordError(err)
		return err
	}
	written, err = manager.ReportWalkForward(summary, cfg.Symbol, cfg.Interval)
	for _, path := range written {
		logSuccess("Saved %s", path)
	}
	return err
}

// walkForward re-optimizes cfg on each train window and replays the winner
// on the window after it
func walkForward(ctx context.Context, cfg *config.RunConfig, candles []types.OHLCV, zl *zap.Logger) (*validation.WalkForwardSummary, error) {
	engine := backtest.NewEngine(cfg.InitialCapital, backtest.WithLogger(zl))
	optimizer := backtest.NewParameterOptimizer(engine,
		backtest.WithWorkers(cfg.Workers),
		backtest.WithOptimizerLogger(zl))
	return validation.NewWalkForwardValidator(engine, optimizer, zl).
		Validate(ctx, candles, cfg.Strategy, *cfg.Optimization, *cfg.WalkForward)
}

// runOutcome is what gets reported for one CLI invocation
type runOutcome struct {
	Result       *backtest.BacktestResult
	Optimization *backtest.OptimizationResult
	Best         *config.RunConfig
}

// execute runs the configured strategy, or grid-searches it when the run
// config carries optimization ranges. The reported result of an
// optimization is the best candidate's run.
func execute(ctx context.Context, cfg *config.RunConfig, candles []types.OHLCV, zl *zap.Logger) (*runOutcome, error) {
	engine := backtest.NewEngine(cfg.InitialCapital, backtest.WithLogger(zl))

	if cfg.Optimization == nil {
		result, err := engine.Run(candles, cfg.Strategy)
		if err != nil {
			return nil, err
		}
		return &runOutcome{Result: result}, nil
	}

	optimizer := backtest.NewParameterOptimizer(engine,
		backtest.WithWorkers(cfg.Workers),
		backtest.WithOptimizerLogger(zl))
	opt, err := optimizer.Optimize(ctx, candles, cfg.Strategy, *cfg.Optimization)
	if err != nil {
		return nil, err
	}
	return &runOutcome{
		Result:       opt.Best.Result,
		Optimization: opt,
		Best:         bestRunConfig(cfg, opt.Best.Strategy),
	}, nil
}

// loadCandles reads the run's candles from a CSV file or from Bybit
func loadCandles(ctx context.Context, cfg *config.RunConfig, env *appconfig.Config, save bool, zl *zap.Logger) ([]types.OHLCV, error) {
	var period time.Duration
	if cfg.Period != "" {
		period, _ = data.ParseTrailingPeriod(cfg.Period)
	}

	if cfg.Source == config.SourceBybit {
		return loadBybitCandles(ctx, cfg, env, period, save, zl)
	}

	dm := data.NewDataManager(zl)
	path := cfg.DataFile
	if path == "" {
		path = dm.FindDataFile(env.DataRoot, config.DefaultExchange, cfg.Symbol, cfg.Interval)
		if path == "" {
			return nil, engerrors.NewDataError("backtest", "loadCandles",
				fmt.Errorf("no candle file for %s %s under %s: %w", cfg.Symbol, cfg.Interval, env.DataRoot, engerrors.ErrNoData))
		}
		logInfo("Using data file %s", path)
	}
	return dm.Load(ctx, path, period)
}

func loadBybitCandles(ctx context.Context, cfg *config.RunConfig, env *appconfig.Config, period time.Duration, save bool, zl *zap.Logger) ([]types.OHLCV, error) {
	interval, err := bybit.ParseInterval(cfg.Interval)
	if err != nil {
		return nil, engerrors.NewConfigurationError("backtest", "loadCandles", err.Error())
	}

	client := bybit.NewClient(bybit.Config{
		APIKey:    env.Bybit.APIKey,
		APISecret: env.Bybit.Secret,
		Testnet:   env.Bybit.Testnet,
		Demo:      env.Bybit.Demo,
	}, zl)
	logInfo("Downloading from Bybit %s (%s)", client.GetEnvironment(), env.Bybit.Category)

	provider := data.NewBybitProvider(client, data.BybitProviderConfig{
		Category: env.Bybit.Category,
		Interval: interval,
		Limit:    cfg.Limit,
	}, zl)
	candles, err := data.NewDataManagerWithProvider(provider, zl).Load(ctx, cfg.Symbol, 0)
	if err != nil {
		return nil, err
	}

	if save {
		path := data.NewDefaultFileLocator(zl).CandlePath(env.DataRoot, config.DefaultExchange, env.Bybit.Category, cfg.Symbol, cfg.Interval)
		if err := data.WriteCSV(path, candles); err != nil {
			logWarning("Could not save candles to %s: %v", path, err)
		} else {
			logSuccess("Saved %d candles to %s", len(candles), path)
		}
	}

	if period > 0 {
		candles = data.NewDefaultDataFilter().FilterByPeriod(candles, period)
		if err := data.ValidateCandles(candles); err != nil {
			return nil, err
		}
	}
	return candles, nil
}

func newLogger(opts *cliOptions, env *appconfig.Config, cfg *config.RunConfig) (*zap.Logger, error) {
	level := env.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	file := env.LogFile
	if file == "" && env.LogDir != "" {
		file = logger.RunLogPath(env.LogDir, cfg.Symbol, cfg.Interval, time.Now())
	}
	return logger.NewWithOptions(logger.Options{
		Level:  level,
		File:   file,
		Format: env.LogFormat,
	})
}

func startMonitoringServer(port int, health *monitoring.HealthChecker, zl *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/health", health)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("Monitoring server stopped", zap.Error(err))
		}
	}()
	return srv
}

func loadEnvFile(envFile string) error {
	// Load .env file if it exists
	if _, err := os.Stat(envFile); err == nil {
		return godotenv.Load(envFile)
	}
	return fmt.Errorf("env file %s not found", envFile)
}
