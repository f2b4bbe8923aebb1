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
	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVProvider_LoadData(t *testing.T) {
	path := writeFile(t, "candles.csv", `timestamp,open,high,low,close,volume
2024-01-01 00:00:00,100,105,99,104,1000
2024-01-01 01:00:00,104,106,103,105,1100
bad-time,1,1,1,1,1
2024-01-01 02:00:00,105,abc,104,106,1200
2024-01-01 03:00:00,105,104,100,106,1200
2024-01-01 04:00:00,106,108
1704081600000,106,109,105,108,1300
`)

	p := NewCSVProvider(zaptest.NewLogger(t))
	data, err := p.LoadData(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, data, 3)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), data[0].Timestamp)
	assert.Equal(t, 104.0, data[0].Close)
	assert.Equal(t, 1100.0, data[1].Volume)
	assert.Equal(t, time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC), data[2].Timestamp, "unix millisecond timestamps are accepted")
	assert.NoError(t, p.ValidateData(data))
}

func TestCSVProvider_MissingFile(t *testing.T) {
	p := NewCSVProvider(zaptest.NewLogger(t))
	_, err := p.LoadData(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, engerrors.ErrNoData))

	var engErr *engerrors.EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, engerrors.ErrorCategoryData, engErr.Category)
}

func TestCSVProvider_HeaderOnly(t *testing.T) {
	path := writeFile(t, "empty.csv", "timestamp,open,high,low,close,volume\n")
	data, err := NewCSVProvider(nil).LoadData(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestCSVProvider_AcceptsRFC3339Timestamps(t *testing.T) {
	path := writeFile(t, "iso.csv", "time,o,h,l,c,v\n2024-03-01T12:00:00Z,10,11,9,10.5,7\n2024-03-01T14:00:00+01:00,10.5,12,10,11,8\n")
	data, err := NewCSVProvider(nil).LoadData(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, 10.5, data[0].Close)
	assert.True(t, data[1].Timestamp.Equal(time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, data[1].Timestamp.Location())
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	data := []types.OHLCV{
		{Timestamp: start, Open: 1.5, High: 2, Low: 1, Close: 1.75, Volume: 10},
		{Timestamp: start.Add(time.Hour), Open: 1.75, High: 2.25, Low: 1.5, Close: 2, Volume: 12.5},
	}
	path := filepath.Join(t.TempDir(), "bybit", "spot", "BTCUSDT", "60", "candles.csv")
	require.NoError(t, WriteCSV(path, data))

	loaded, err := NewCSVProvider(nil).LoadData(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, data, loaded)
}

func TestValidateCandles(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	good := types.OHLCV{Timestamp: start, Open: 10, High: 11, Low: 9, Close: 10}

	assert.ErrorIs(t, ValidateCandles(nil), engerrors.ErrNoData)
	assert.NoError(t, ValidateCandles([]types.OHLCV{good}))

	bad := good
	bad.High = 8
	assert.Error(t, ValidateCandles([]types.OHLCV{bad}))

	dup := []types.OHLCV{good, good}
	assert.Error(t, ValidateCandles(dup))
}
