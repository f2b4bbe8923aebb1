package data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
	"github.com/ducminhle1904/token-strategy-lab/internal/exchange/bybit"
	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

type countingProvider struct {
	data  []types.OHLCV
	err   error
	calls int
}

func (p *countingProvider) LoadData(ctx context.Context, source string) ([]types.OHLCV, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.data, nil
}

func (p *countingProvider) ValidateData(data []types.OHLCV) error { return ValidateCandles(data) }
func (p *countingProvider) GetName() string                       { return "Counting" }

func TestCachedProvider(t *testing.T) {
	inner := &countingProvider{data: hourly(3)}
	p := NewCachedProvider(inner, zaptest.NewLogger(t))
	ctx := context.Background()

	first, err := p.LoadData(ctx, "a")
	require.NoError(t, err)
	first[0].Close = -1

	second, err := p.LoadData(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 100.0, second[0].Close, "cached copy is isolated from callers")
	assert.Equal(t, 1, p.GetCacheSize())
	assert.Equal(t, "Cached Counting", p.GetName())

	p.ClearCache()
	_, err = p.LoadData(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProvider_DoesNotCacheErrors(t *testing.T) {
	inner := &countingProvider{err: errors.New("down")}
	p := NewCachedProvider(inner, nil)

	_, err := p.LoadData(context.Background(), "a")
	require.Error(t, err)
	assert.Equal(t, 0, p.GetCacheSize())
}

func TestDataManager_Load(t *testing.T) {
	data := hourly(48)
	shuffled := append([]types.OHLCV{data[47], data[0]}, data[1:47]...)
	shuffled = append(shuffled, data[10])

	dm := NewDataManagerWithProvider(&countingProvider{data: shuffled}, zaptest.NewLogger(t))

	got, err := dm.Load(context.Background(), "x", 0)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	got, err = dm.Load(context.Background(), "x", 12*time.Hour)
	require.NoError(t, err)
	assert.Len(t, got, 13)
}

func TestDataManager_LoadEmpty(t *testing.T) {
	dm := NewDataManagerWithProvider(&countingProvider{data: []types.OHLCV{}}, nil)
	_, err := dm.Load(context.Background(), "x", 0)
	assert.ErrorIs(t, err, engerrors.ErrNoData)
}

func TestFileLocator(t *testing.T) {
	root := t.TempDir()
	l := NewDefaultFileLocator(zaptest.NewLogger(t))

	assert.Equal(t, "5", l.ConvertIntervalToMinutes("5m"))
	assert.Equal(t, "60", l.ConvertIntervalToMinutes("1h"))
	assert.Equal(t, "240", l.ConvertIntervalToMinutes("4h"))
	assert.Equal(t, "1440", l.ConvertIntervalToMinutes("1d"))
	assert.Equal(t, "15", l.ConvertIntervalToMinutes("15"))
	assert.Equal(t, "x", l.ConvertIntervalToMinutes("x"))

	assert.Empty(t, l.FindDataFile(root, "bybit", "btcusdt", "1h"))

	path := l.CandlePath(root, "bybit", "linear", "btcusdt", "1h")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("timestamp\n"), 0o644))

	assert.Equal(t, filepath.Join(root, "bybit", "linear", "BTCUSDT", "60", "candles.csv"),
		l.FindDataFile(root, "bybit", "btcusdt", "1h"))
}

type fakeKlineSource struct {
	klines []bybit.Kline
	err    error
	params bybit.KlineParams
	total  int
}

func (f *fakeKlineSource) GetKlineHistory(ctx context.Context, params bybit.KlineParams, total int) ([]bybit.Kline, error) {
	f.params = params
	f.total = total
	return f.klines, f.err
}

func TestBybitProvider_LoadData(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeKlineSource{klines: []bybit.Kline{
		{StartTime: start.Add(time.Hour), OpenPrice: 101, HighPrice: 103, LowPrice: 100, ClosePrice: 102, Volume: 5},
		{StartTime: start, OpenPrice: 100, HighPrice: 102, LowPrice: 99, ClosePrice: 101, Volume: 4},
		{StartTime: start.Add(time.Hour), OpenPrice: 101, HighPrice: 103, LowPrice: 100, ClosePrice: 102, Volume: 5},
	}}
	p := NewBybitProvider(src, BybitProviderConfig{Category: "linear", Limit: 500}, zaptest.NewLogger(t))

	data, err := p.LoadData(context.Background(), " btcusdt ")
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, start, data[0].Timestamp)
	assert.Equal(t, 102.0, data[1].Close)
	assert.NoError(t, p.ValidateData(data))

	assert.Equal(t, "BTCUSDT", src.params.Symbol)
	assert.Equal(t, "linear", src.params.Category)
	assert.Equal(t, bybit.Interval1h, src.params.Interval)
	assert.Equal(t, 500, src.total)
}

func TestBybitProvider_Errors(t *testing.T) {
	p := NewBybitProvider(&fakeKlineSource{}, BybitProviderConfig{}, nil)
	_, err := p.LoadData(context.Background(), "")
	assert.Error(t, err)

	src := &fakeKlineSource{err: bybit.NewBybitError(bybit.ErrCodeRateLimitExceeded, "slow down")}
	p = NewBybitProvider(src, BybitProviderConfig{}, nil)
	_, err = p.LoadData(context.Background(), "ETHUSDT")
	require.Error(t, err)

	var engErr *engerrors.EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, engerrors.ErrorCategoryExchange, engErr.Category)
	assert.True(t, engErr.IsRetryable())
	assert.True(t, bybit.IsRateLimitError(err))
}
