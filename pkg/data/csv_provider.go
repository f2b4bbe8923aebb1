package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
	"github.com/ducminhle1904/token-strategy-lab/internal/monitoring"
	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

// CSVProvider implements DataProvider for CSV files with a header row
type CSVProvider struct {
	format CSVColumnMapping
	logger *zap.Logger
}

// NewCSVProvider creates a new CSV data provider with default format
func NewCSVProvider(logger *zap.Logger) *CSVProvider {
	return NewCSVProviderWithFormat(DefaultCSVFormat, logger)
}

// NewCSVProviderWithFormat creates a new CSV data provider with custom format
func NewCSVProviderWithFormat(format CSVColumnMapping, logger *zap.Logger) *CSVProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVProvider{
		format: format,
		logger: logger.With(zap.String("provider", "csv")),
	}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads historical data from a CSV file. Rows that cannot be parsed
// or that break OHLC consistency are skipped with a warning.
func (p *CSVProvider) LoadData(ctx context.Context, source string) ([]types.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, engerrors.NewDataError("csv_provider", "LoadData",
				fmt.Errorf("%w: %s", engerrors.ErrNoData, source))
		}
		return nil, engerrors.NewDataError("csv_provider", "LoadData", err)
	}
	defer file.Close()

	data, err := p.read(file)
	if err != nil {
		return nil, engerrors.NewDataError("csv_provider", "LoadData", err).
			WithContext("file", source)
	}

	monitoring.RecordCandles("csv", filepath.Base(source), len(data))
	p.logger.Info("Loaded candles",
		zap.String("file", source),
		zap.Int("candles", len(data)))
	return data, nil
}

func (p *CSVProvider) read(r io.Reader) ([]types.OHLCV, error) {
	format := p.format
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []types.OHLCV{}, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	data := []types.OHLCV{}
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}

		if len(record) < format.MinColumns {
			p.logger.Warn("Insufficient columns, skipping row",
				zap.Int("line", lineNum),
				zap.Int("expected", format.MinColumns),
				zap.Int("got", len(record)))
			continue
		}

		candle, err := p.parseRecord(record)
		if err != nil {
			p.logger.Warn("Invalid row, skipping", zap.Int("line", lineNum), zap.Error(err))
			continue
		}
		if err := validateCandle(candle); err != nil {
			p.logger.Warn("Inconsistent candle, skipping", zap.Int("line", lineNum), zap.Error(err))
			continue
		}
		data = append(data, candle)
	}
	return data, nil
}

func (p *CSVProvider) parseRecord(record []string) (types.OHLCV, error) {
	format := p.format
	timestamp, err := parseTimestamp(record[format.TimestampCol], format.DateFormat)
	if err != nil {
		return types.OHLCV{}, err
	}

	cols := []int{format.OpenCol, format.HighCol, format.LowCol, format.CloseCol, format.VolumeCol}
	values := make([]float64, len(cols))
	for i, col := range cols {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("column %d: %w", col, err)
		}
		values[i] = v
	}

	return types.OHLCV{
		Timestamp: timestamp,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

// parseTimestamp accepts the configured layout or unix milliseconds
func parseTimestamp(raw, layout string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if ts, err := time.Parse(layout, raw); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func validateCandle(c types.OHLCV) error {
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return fmt.Errorf("prices must be positive")
	}
	if c.Volume < 0 {
		return fmt.Errorf("volume must not be negative")
	}
	if c.High < c.Low {
		return fmt.Errorf("high (%.4f) cannot be less than low (%.4f)", c.High, c.Low)
	}
	if c.High < c.Open || c.High < c.Close {
		return fmt.Errorf("high (%.4f) must be >= open (%.4f) and close (%.4f)", c.High, c.Open, c.Close)
	}
	if c.Low > c.Open || c.Low > c.Close {
		return fmt.Errorf("low (%.4f) must be <= open (%.4f) and close (%.4f)", c.Low, c.Open, c.Close)
	}
	return nil
}

// ValidateData validates the integrity of loaded data
func (p *CSVProvider) ValidateData(data []types.OHLCV) error {
	return ValidateCandles(data)
}

// ValidateCandles checks every candle for OHLC consistency and the series
// for strictly ascending timestamps
func ValidateCandles(data []types.OHLCV) error {
	if len(data) == 0 {
		return engerrors.ErrNoData
	}
	for i, candle := range data {
		if err := validateCandle(candle); err != nil {
			return engerrors.NewValidationError("data", "ValidateCandles",
				fmt.Sprintf("invalid candle at index %d: %v", i, err))
		}
	}
	if err := NewDefaultDataFilter().ValidateTimeSequence(data); err != nil {
		return engerrors.NewValidationError("data", "ValidateCandles", err.Error())
	}
	return nil
}

// WriteCSV stores candles in the default format so they can be reloaded
// with CSVProvider
func WriteCSV(path string, data []types.OHLCV) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, c := range data {
		row := []string{
			c.Timestamp.UTC().Format(DefaultCSVFormat.DateFormat),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
