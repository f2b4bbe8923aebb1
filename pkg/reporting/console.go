package reporting

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/token-strategy-lab/internal/backtest"
)

// ConsoleReporter prints results as rounded tables
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter writes to out, or stdout when out is nil
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

// PrintResult prints the summary metrics of one run
func (r *ConsoleReporter) PrintResult(result *backtest.BacktestResult, symbol, interval string) {
	t := r.newTable("📊 BACKTEST RESULTS")

	t.AppendRows([]table.Row{
		{"📊 Symbol", symbol},
		{"⏰ Interval", interval},
		{"🧠 Strategy", strategyLabel(result)},
		{"📅 Period", fmt.Sprintf("%s → %s", result.StartDate.Format("2006-01-02 15:04"), result.EndDate.Format("2006-01-02 15:04"))},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"💰 Initial Capital", fmt.Sprintf("$%.2f", result.InitialCapital)},
		{"💰 Final Capital", fmt.Sprintf("$%.2f", result.FinalCapital)},
		{"📈 Total Return", fmt.Sprintf("$%.2f (%.2f%%)", result.TotalReturn, result.TotalReturnPercent)},
		{"📉 Max Drawdown", fmt.Sprintf("$%.2f (%.2f%%)", result.MaxDrawdown, result.MaxDrawdownPercent)},
		{"📊 Sharpe Ratio", fmt.Sprintf("%.2f", result.SharpeRatio)},
		{"💹 Profit Factor", FormatRatio(result.ProfitFactor)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🔄 Total Trades", result.TotalTrades},
		{"✅ Winning Trades", result.WinningTrades},
		{"❌ Losing Trades", result.LosingTrades},
		{"🎯 Win Rate", fmt.Sprintf("%.1f%%", result.WinRate)},
		{"💵 Average Profit", fmt.Sprintf("$%.2f", result.AverageProfit)},
		{"💸 Average Loss", fmt.Sprintf("$%.2f", result.AverageLoss)},
	})
	if m := result.FinalMarket; m != nil {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"🧭 Last Signal", fmt.Sprintf("%s (buy %.0f / sell %.0f)", m.Signal.Action, m.Signal.BuyScore, m.Signal.SellScore)},
			{"📍 Trend", fmt.Sprintf("%s (%.0f)", m.Trend, m.Strength)},
			{"📐 RSI / %B", fmt.Sprintf("%.1f / %.1f", m.RSI, m.PercentB)},
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 45, Align: text.AlignLeft},
	})
	t.Render()
	fmt.Fprintln(r.out)
}

// PrintTrades prints up to limit trades; limit <= 0 prints all
func (r *ConsoleReporter) PrintTrades(result *backtest.BacktestResult, limit int) {
	trades := result.Trades
	if limit > 0 && len(trades) > limit {
		trades = trades[:limit]
	}

	t := r.newTable(fmt.Sprintf("🧾 TRADES (%d of %d)", len(trades), len(result.Trades)))
	t.AppendHeader(table.Row{"ID", "Type", "Entry", "Entry Price", "Exit", "Exit Price", "Profit", "Profit %", "Reason"})
	for _, tr := range trades {
		t.AppendRow(table.Row{
			tr.ID,
			tr.Type,
			tr.EntryTime.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.4f", tr.EntryPrice),
			tr.ExitTime.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.4f", tr.ExitPrice),
			fmt.Sprintf("%.2f", tr.Profit),
			fmt.Sprintf("%.2f%%", tr.ProfitPercent),
			tr.Reason,
		})
	}
	t.Render()
	fmt.Fprintln(r.out)
}

// PrintOptimization prints the top candidates by return
func (r *ConsoleReporter) PrintOptimization(opt *backtest.OptimizationResult, top int) {
	ranked := opt.Ranked()
	if top > 0 && len(ranked) > top {
		ranked = ranked[:top]
	}

	t := r.newTable(fmt.Sprintf("🏆 OPTIMIZATION (%d candidates, %d failed, %s)",
		len(opt.Candidates), opt.Failed, opt.Duration.Round(time.Millisecond)))
	t.AppendHeader(table.Row{"#", "RSI <", "TP %", "SL %", "Return %", "Trades", "Win %", "PF", "Max DD %", "Sharpe"})
	for i, c := range ranked {
		res := c.Result
		t.AppendRow(table.Row{
			i + 1,
			formatOptional(c.RSIThreshold),
			formatOptional(c.TakeProfit),
			formatOptional(c.StopLoss),
			fmt.Sprintf("%.2f", res.TotalReturnPercent),
			res.TotalTrades,
			fmt.Sprintf("%.1f", res.WinRate),
			FormatRatio(res.ProfitFactor),
			fmt.Sprintf("%.2f", res.MaxDrawdownPercent),
			fmt.Sprintf("%.2f", res.SharpeRatio),
		})
	}
	t.Render()
	fmt.Fprintln(r.out)
}

// FormatRatio renders a ratio that may be infinite
func FormatRatio(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "∞"
	case math.IsNaN(v):
		return "n/a"
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func strategyLabel(result *backtest.BacktestResult) string {
	if result.Strategy.Name != "" {
		return result.Strategy.Name
	}
	if result.Strategy.ID != "" {
		return result.Strategy.ID
	}
	return "unnamed"
}
