package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ducminhle1904/token-strategy-lab/internal/backtest"
)

var tradeCSVHeader = []string{
	"ID", "Type", "Status", "Entry_Time", "Entry_Price", "Exit_Time", "Exit_Price",
	"Amount", "Notional", "Profit", "Profit_%", "Reason",
}

// WriteTradesCSV writes one row per trade followed by a summary row
func WriteTradesCSV(result *backtest.BacktestResult, path string) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tradeCSVHeader); err != nil {
		return err
	}

	for _, t := range result.Trades {
		row := []string{
			t.ID,
			string(t.Type),
			string(t.Status),
			t.EntryTime.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(t.EntryPrice, 'f', 8, 64),
			t.ExitTime.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(t.ExitPrice, 'f', 8, 64),
			strconv.FormatFloat(t.Amount, 'f', 8, 64),
			strconv.FormatFloat(t.Notional, 'f', 2, 64),
			strconv.FormatFloat(t.Profit, 'f', 2, 64),
			strconv.FormatFloat(t.ProfitPercent, 'f', 2, 64),
			t.Reason,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	summary := make([]string, len(tradeCSVHeader))
	summary[0] = "SUMMARY"
	summary[len(summary)-1] = fmt.Sprintf("total_return=%.2f; total_return_pct=%.2f%%; trades=%d; win_rate=%.1f%%; profit_factor=%s",
		result.TotalReturn, result.TotalReturnPercent, result.TotalTrades, result.WinRate, FormatRatio(result.ProfitFactor))
	if err := w.Write(summary); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
