package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ducminhle1904/token-strategy-lab/cmd/common"
	appconfig "github.com/ducminhle1904/token-strategy-lab/internal/config"
	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
	"github.com/ducminhle1904/token-strategy-lab/internal/exchange/bybit"
	"github.com/ducminhle1904/token-strategy-lab/internal/logger"
	"github.com/ducminhle1904/token-strategy-lab/pkg/config"
	"github.com/ducminhle1904/token-strategy-lab/pkg/data"
)

// downloadJob is one symbol/interval/category combination
type downloadJob struct {
	Category string
	Symbol   string
	Interval string
}

func main() {
	var (
		symbols    = flag.String("symbols", "BTCUSDT", "Comma-separated list of symbols")
		intervals  = flag.String("intervals", config.DefaultInterval, "Comma-separated list of intervals (5m, 1h, 4h, 1d or Bybit codes)")
		categories = flag.String("categories", "", "Comma-separated list of categories (default BYBIT_CATEGORY)")
		startDate  = flag.String("start", "", "Start date (YYYY-MM-DD)")
		endDate    = flag.String("end", "", "End date (YYYY-MM-DD)")
		limit      = flag.Int("limit", 5000, "Maximum candles per file")
		dataRoot   = flag.String("data-root", "", "Data root (default DATA_ROOT)")
		envFile    = flag.String("env", ".env", "Environment file")
		logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error")
		version    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Print(common.VersionString("download"))
		return
	}

	if _, err := os.Stat(*envFile); err == nil {
		if err := godotenv.Load(*envFile); err != nil {
			log.Printf("⚠️  Could not load env file: %v", err)
		}
	}
	env := appconfig.Load()
	if *categories == "" {
		*categories = env.Bybit.Category
	}
	if *dataRoot == "" {
		*dataRoot = env.DataRoot
	}
	level := env.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}

	zl, err := logger.NewWithOptions(logger.Options{Level: level, File: env.LogFile, Format: env.LogFormat})
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer func() { _ = zl.Sync() }()

	jobs, err := buildJobs(*symbols, *intervals, *categories)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	start, end, err := parseDateRange(*startDate, *endDate)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := bybit.NewClient(bybit.Config{
		APIKey:    env.Bybit.APIKey,
		APISecret: env.Bybit.Secret,
		Testnet:   env.Bybit.Testnet,
		Demo:      env.Bybit.Demo,
	}, zl)

	fmt.Println("🚀 Bybit Historical Data Downloader")
	fmt.Println("====================================")
	fmt.Printf("🌐 Environment: %s\n", client.GetEnvironment())
	fmt.Printf("🎯 Jobs: %d\n", len(jobs))
	if start != nil {
		fmt.Printf("📅 From: %s\n", start.Format("2006-01-02"))
	}
	if end != nil {
		fmt.Printf("📅 To:   %s\n", end.Format("2006-01-02"))
	}
	fmt.Println()

	failed := 0
	for _, job := range jobs {
		fmt.Printf("🔄 Downloading %s %s %s\n", job.Category, job.Symbol, job.Interval)
		path, n, err := download(ctx, client, job, start, end, *limit, *dataRoot, zl)
		if err != nil {
			failed++
			log.Printf("❌ Failed to download %s %s %s: %v", job.Category, job.Symbol, job.Interval, err)
			continue
		}
		fmt.Printf("✅ Saved %d candles to %s\n", n, path)
	}

	if failed > 0 {
		log.Printf("⚠️  %d of %d downloads failed", failed, len(jobs))
		os.Exit(1)
	}
	fmt.Println("\n🎉 All downloads completed!")
}

// buildJobs expands the comma-separated flag values into every combination
func buildJobs(symbols, intervals, categories string) ([]downloadJob, error) {
	symList := splitList(symbols, strings.ToUpper)
	intList := splitList(intervals, strings.TrimSpace)
	catList := splitList(categories, strings.ToLower)
	if len(symList) == 0 || len(intList) == 0 || len(catList) == 0 {
		return nil, engerrors.NewValidationError("download", "buildJobs", "symbols, intervals and categories must not be empty")
	}

	for _, iv := range intList {
		if _, err := bybit.ParseInterval(iv); err != nil {
			return nil, engerrors.NewValidationError("download", "buildJobs", err.Error())
		}
	}
	for _, cat := range catList {
		switch cat {
		case "spot", "linear", "inverse":
		default:
			return nil, engerrors.NewValidationError("download", "buildJobs", fmt.Sprintf("unknown category %q", cat))
		}
	}

	jobs := make([]downloadJob, 0, len(symList)*len(intList)*len(catList))
	for _, cat := range catList {
		for _, sym := range symList {
			for _, iv := range intList {
				jobs = append(jobs, downloadJob{Category: cat, Symbol: sym, Interval: iv})
			}
		}
	}
	return jobs, nil
}

func splitList(s string, normalize func(string) string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := normalize(strings.TrimSpace(part)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseDateRange parses optional YYYY-MM-DD bounds; the end date is
// inclusive
func parseDateRange(startDate, endDate string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startDate != "" {
		t, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start date format: %w", err)
		}
		start = &t
	}
	if endDate != "" {
		t, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end date format: %w", err)
		}
		t = t.Add(24*time.Hour - time.Millisecond)
		end = &t
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, fmt.Errorf("start date must be before end date")
	}
	return start, end, nil
}

// download fetches one job and stores it where the backtest CLI looks for
// candle files. It returns the file path and the number of candles.
func download(ctx context.Context, source data.KlineSource, job downloadJob, start, end *time.Time, limit int, dataRoot string, zl *zap.Logger) (string, int, error) {
	interval, err := bybit.ParseInterval(job.Interval)
	if err != nil {
		return "", 0, err
	}

	provider := data.NewBybitProvider(source, data.BybitProviderConfig{
		Category: job.Category,
		Interval: interval,
		Limit:    limit,
		Start:    start,
		End:      end,
	}, zl)
	candles, err := provider.LoadData(ctx, job.Symbol)
	if err != nil {
		return "", 0, err
	}
	if len(candles) == 0 {
		return "", 0, engerrors.NewDataError("download", "download",
			fmt.Errorf("no candles for %s %s: %w", job.Symbol, job.Interval, engerrors.ErrNoData))
	}

	path := data.NewDefaultFileLocator(zl).CandlePath(dataRoot, config.DefaultExchange, job.Category, job.Symbol, job.Interval)
	if err := data.WriteCSV(path, candles); err != nil {
		return "", 0, engerrors.WrapError(err, engerrors.ErrorCategoryData, "download", "download").
			WithContext("path", path)
	}
	return path, len(candles), nil
}
