package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"go.uber.org/zap"
)

// KlineInterval represents the time interval for kline data
type KlineInterval string

const (
	Interval1m  KlineInterval = "1"
	Interval3m  KlineInterval = "3"
	Interval5m  KlineInterval = "5"
	Interval15m KlineInterval = "15"
	Interval30m KlineInterval = "30"
	Interval1h  KlineInterval = "60"
	Interval2h  KlineInterval = "120"
	Interval4h  KlineInterval = "240"
	Interval6h  KlineInterval = "360"
	Interval12h KlineInterval = "720"
	Interval1d  KlineInterval = "D"
	Interval1w  KlineInterval = "W"
	Interval1M  KlineInterval = "M"
)

// MaxKlineLimit is the largest page the kline endpoint serves
const MaxKlineLimit = 1000

var intervalAliases = map[string]KlineInterval{
	"1m": Interval1m, "3m": Interval3m, "5m": Interval5m, "15m": Interval15m, "30m": Interval30m,
	"1h": Interval1h, "2h": Interval2h, "4h": Interval4h, "6h": Interval6h, "12h": Interval12h,
	"1d": Interval1d, "1w": Interval1w, "1mo": Interval1M,
}

// ParseInterval accepts either the exchange code ("60", "D") or the usual
// shorthand ("1h", "1d").
func ParseInterval(s string) (KlineInterval, error) {
	s = strings.TrimSpace(s)
	for _, iv := range intervalAliases {
		if string(iv) == s {
			return iv, nil
		}
	}
	if iv, ok := intervalAliases[strings.ToLower(s)]; ok {
		return iv, nil
	}
	return "", fmt.Errorf("unsupported kline interval %q", s)
}

// Kline represents a single kline/candlestick data point
type Kline struct {
	StartTime  time.Time
	OpenPrice  float64
	HighPrice  float64
	LowPrice   float64
	ClosePrice float64
	Volume     float64
	Turnover   float64
}

// KlineParams holds parameters for fetching kline data
type KlineParams struct {
	Category string        // "spot", "linear", "inverse"
	Symbol   string        // Trading pair symbol (e.g., "BTCUSDT")
	Interval KlineInterval // Time interval
	Start    *time.Time    // Start time (optional)
	End      *time.Time    // End time (optional)
	Limit    int           // Number of records to return (max 1000, default 200)
}

func (p KlineParams) withDefaults() KlineParams {
	if p.Category == "" {
		p.Category = "spot"
	}
	if p.Limit <= 0 {
		p.Limit = 200
	}
	if p.Limit > MaxKlineLimit {
		p.Limit = MaxKlineLimit
	}
	return p
}

func (p KlineParams) request() map[string]interface{} {
	req := map[string]interface{}{
		"category": p.Category,
		"symbol":   p.Symbol,
		"interval": string(p.Interval),
		"limit":    p.Limit,
	}
	if p.Start != nil {
		req["start"] = p.Start.UnixMilli()
	}
	if p.End != nil {
		req["end"] = p.End.UnixMilli()
	}
	return req
}

// GetKlines fetches one page of klines, oldest first
func (c *Client) GetKlines(ctx context.Context, params KlineParams) ([]Kline, error) {
	params = params.withDefaults()
	if params.Symbol == "" {
		return nil, NewBybitError(ErrCodeInvalidParameter, "symbol is required")
	}

	var klines []Kline
	err := c.Retry(ctx, "GetKlines", func() error {
		resp, err := c.httpClient.NewUtaBybitServiceWithParams(params.request()).GetMarketKline(ctx)
		if err != nil {
			return WrapTransportError("GetKlines", err)
		}
		klines, err = parseKlineResponse(resp)
		return err
	})
	if err != nil {
		return nil, err
	}

	sortKlines(klines)
	return klines, nil
}

// GetKlineHistory pages backwards from params.End (or now) until total
// klines are collected, the start bound is reached or the exchange runs out
// of history. The result is oldest first without duplicates.
func (c *Client) GetKlineHistory(ctx context.Context, params KlineParams, total int) ([]Kline, error) {
	params = params.withDefaults()
	if total <= 0 {
		total = params.Limit
	}

	seen := make(map[int64]struct{}, total)
	var all []Kline
	page := params

	for len(all) < total {
		page.Limit = min(MaxKlineLimit, total-len(all))
		klines, err := c.GetKlines(ctx, page)
		if err != nil {
			return nil, err
		}

		added := 0
		for _, k := range klines {
			key := k.StartTime.UnixMilli()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			all = append(all, k)
			added++
		}
		c.logger.Debug("Fetched kline page",
			zap.String("symbol", params.Symbol),
			zap.Int("page_size", len(klines)),
			zap.Int("collected", len(all)))

		if added == 0 || len(klines) < page.Limit {
			break
		}
		oldest := klines[0].StartTime.Add(-time.Millisecond)
		if params.Start != nil && oldest.Before(*params.Start) {
			break
		}
		page.End = &oldest
	}

	sortKlines(all)
	if len(all) > total {
		all = all[len(all)-total:]
	}
	return all, nil
}

func sortKlines(klines []Kline) {
	sort.SliceStable(klines, func(i, j int) bool {
		return klines[i].StartTime.Before(klines[j].StartTime)
	})
}

// parseKlineResponse parses the API response into Kline structs
func parseKlineResponse(resp *bybit_api.ServerResponse) ([]Kline, error) {
	if resp == nil {
		return nil, fmt.Errorf("empty kline response")
	}
	if err := ParseAPIError(resp.RetCode, resp.RetMsg); err != nil {
		return nil, err
	}

	resultBytes, err := json.Marshal(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kline result: %w", err)
	}

	return parseKlineList(klineResult.List)
}

// parseKlineList converts rows of [startTime, open, high, low, close, volume, turnover]
func parseKlineList(list [][]string) ([]Kline, error) {
	klines := make([]Kline, 0, len(list))
	for i, item := range list {
		if len(item) < 7 {
			continue
		}

		start, err := strconv.ParseInt(item[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid start time %q: %w", i, item[0], err)
		}
		var fields [6]float64
		for j := range fields {
			v, err := strconv.ParseFloat(item[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid number %q: %w", i, item[j+1], err)
			}
			fields[j] = v
		}

		klines = append(klines, Kline{
			StartTime:  time.UnixMilli(start).UTC(),
			OpenPrice:  fields[0],
			HighPrice:  fields[1],
			LowPrice:   fields[2],
			ClosePrice: fields[3],
			Volume:     fields[4],
			Turnover:   fields[5],
		})
	}
	return klines, nil
}
