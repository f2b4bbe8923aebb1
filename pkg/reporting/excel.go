package reporting

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/token-strategy-lab/internal/backtest"
)

const (
	summarySheet      = "Summary"
	tradesSheet       = "Trades"
	equitySheet       = "Equity"
	optimizationSheet = "Optimization"
)

// WriteWorkbook writes a workbook with Summary, Trades and Equity sheets,
// plus an Optimization sheet when opt is not nil
func WriteWorkbook(result *backtest.BacktestResult, opt *backtest.OptimizationResult, path string) error {
	if err := EnsureParentDir(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), summarySheet); err != nil {
		return err
	}
	sheets := []string{tradesSheet, equitySheet}
	if opt != nil {
		sheets = append(sheets, optimizationSheet)
	}
	for _, s := range sheets {
		if _, err := fx.NewSheet(s); err != nil {
			return err
		}
	}

	styles, err := createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := writeSummarySheet(fx, result, styles); err != nil {
		return err
	}
	if err := writeTradesSheet(fx, result, styles); err != nil {
		return err
	}
	if err := writeEquitySheet(fx, result, styles); err != nil {
		return err
	}
	if opt != nil {
		if err := writeOptimizationSheet(fx, opt, styles); err != nil {
			return err
		}
	}

	return fx.SaveAs(path)
}

func createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}
	right := &excelize.Alignment{Horizontal: "right"}

	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// $ format
	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{NumFmt: 7, Alignment: right, Border: border})
	if err != nil {
		return styles, err
	}

	// 0.00%; cells hold fractions
	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{NumFmt: 10, Alignment: right, Border: border})
	if err != nil {
		return styles, err
	}

	styles.RedPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 10, Font: &excelize.Font{Color: "FF0000"}, Alignment: right, Border: border,
	})
	if err != nil {
		return styles, err
	}

	styles.GreenPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 10, Font: &excelize.Font{Color: "008000"}, Alignment: right, Border: border,
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return styles, err
	}

	styles.SummaryStyle, err = fx.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
		Border: border,
	})
	return styles, err
}

func writeHeader(fx *excelize.File, sheet string, headers []string, styles ExcelStyles) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle); err != nil {
			return err
		}
	}
	return fx.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// writeRow writes values starting at column A; style[i] applies to column i+1
// when non-zero
func writeRow(fx *excelize.File, sheet string, row int, values []interface{}, style []int) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
		if i < len(style) && style[i] != 0 {
			if err := fx.SetCellStyle(sheet, cell, cell, style[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func signedPercentStyle(v float64, styles ExcelStyles) int {
	if v < 0 {
		return styles.RedPercentStyle
	}
	return styles.GreenPercentStyle
}

// excelRatio keeps infinite ratios readable; excelize cannot store +Inf
func excelRatio(v float64) interface{} {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return FormatRatio(v)
	}
	return v
}

func writeSummarySheet(fx *excelize.File, result *backtest.BacktestResult, styles ExcelStyles) error {
	if err := writeHeader(fx, summarySheet, []string{"Metric", "Value"}, styles); err != nil {
		return err
	}
	_ = fx.SetColWidth(summarySheet, "A", "A", 24)
	_ = fx.SetColWidth(summarySheet, "B", "B", 28)

	rows := []struct {
		name  string
		value interface{}
		style int
	}{
		{"Strategy", strategyLabel(result), styles.BaseStyle},
		{"Start", result.StartDate.Format("2006-01-02 15:04:05"), styles.BaseStyle},
		{"End", result.EndDate.Format("2006-01-02 15:04:05"), styles.BaseStyle},
		{"Initial Capital", result.InitialCapital, styles.CurrencyStyle},
		{"Final Capital", result.FinalCapital, styles.CurrencyStyle},
		{"Total Return", result.TotalReturn, styles.CurrencyStyle},
		{"Total Return %", result.TotalReturnPercent / 100, signedPercentStyle(result.TotalReturnPercent, styles)},
		{"Total Trades", result.TotalTrades, styles.BaseStyle},
		{"Winning Trades", result.WinningTrades, styles.BaseStyle},
		{"Losing Trades", result.LosingTrades, styles.BaseStyle},
		{"Win Rate", result.WinRate / 100, styles.PercentStyle},
		{"Average Profit", result.AverageProfit, styles.CurrencyStyle},
		{"Average Loss", result.AverageLoss, styles.CurrencyStyle},
		{"Profit Factor", excelRatio(result.ProfitFactor), styles.BaseStyle},
		{"Max Drawdown", result.MaxDrawdown, styles.CurrencyStyle},
		{"Max Drawdown %", result.MaxDrawdownPercent / 100, styles.RedPercentStyle},
		{"Sharpe Ratio", result.SharpeRatio, styles.BaseStyle},
	}
	for i, r := range rows {
		if err := writeRow(fx, summarySheet, i+2, []interface{}{r.name, r.value}, []int{styles.SummaryStyle, r.style}); err != nil {
			return err
		}
	}
	return nil
}

func writeTradesSheet(fx *excelize.File, result *backtest.BacktestResult, styles ExcelStyles) error {
	headers := []string{"ID", "Type", "Status", "Entry Time", "Entry Price", "Exit Time", "Exit Price", "Amount", "Notional", "Profit", "Profit %", "Reason"}
	if err := writeHeader(fx, tradesSheet, headers, styles); err != nil {
		return err
	}
	_ = fx.SetColWidth(tradesSheet, "A", "A", 40)
	_ = fx.SetColWidth(tradesSheet, "D", "D", 18)
	_ = fx.SetColWidth(tradesSheet, "F", "F", 18)
	_ = fx.SetColWidth(tradesSheet, "L", "L", 26)

	for i, t := range result.Trades {
		values := []interface{}{
			t.ID, string(t.Type), string(t.Status),
			t.EntryTime.Format("2006-01-02 15:04:05"), t.EntryPrice,
			t.ExitTime.Format("2006-01-02 15:04:05"), t.ExitPrice,
			t.Amount, t.Notional, t.Profit, t.ProfitPercent / 100, t.Reason,
		}
		style := []int{
			styles.BaseStyle, styles.BaseStyle, styles.BaseStyle,
			styles.BaseStyle, styles.CurrencyStyle,
			styles.BaseStyle, styles.CurrencyStyle,
			styles.BaseStyle, styles.CurrencyStyle, styles.CurrencyStyle,
			signedPercentStyle(t.ProfitPercent, styles), styles.BaseStyle,
		}
		if err := writeRow(fx, tradesSheet, i+2, values, style); err != nil {
			return err
		}
	}
	return nil
}

func writeEquitySheet(fx *excelize.File, result *backtest.BacktestResult, styles ExcelStyles) error {
	if err := writeHeader(fx, equitySheet, []string{"Time", "Equity", "Cash", "Open Positions"}, styles); err != nil {
		return err
	}
	_ = fx.SetColWidth(equitySheet, "A", "A", 18)
	_ = fx.SetColWidth(equitySheet, "B", "C", 14)

	style := []int{styles.BaseStyle, styles.CurrencyStyle, styles.CurrencyStyle, styles.BaseStyle}
	for i, p := range result.EquityCurve {
		values := []interface{}{p.Timestamp.Format("2006-01-02 15:04:05"), p.Equity, p.Cash, p.OpenPositions}
		if err := writeRow(fx, equitySheet, i+2, values, style); err != nil {
			return err
		}
	}
	return nil
}

func writeOptimizationSheet(fx *excelize.File, opt *backtest.OptimizationResult, styles ExcelStyles) error {
	headers := []string{"Rank", "Strategy ID", "RSI <", "TP %", "SL %", "Return %", "Trades", "Win Rate", "Profit Factor", "Max DD %", "Sharpe"}
	if err := writeHeader(fx, optimizationSheet, headers, styles); err != nil {
		return err
	}
	_ = fx.SetColWidth(optimizationSheet, "B", "B", 40)

	for i, c := range opt.Ranked() {
		r := c.Result
		values := []interface{}{
			i + 1, c.Strategy.ID,
			formatOptional(c.RSIThreshold), formatOptional(c.TakeProfit), formatOptional(c.StopLoss),
			r.TotalReturnPercent / 100, r.TotalTrades, r.WinRate / 100,
			excelRatio(r.ProfitFactor), r.MaxDrawdownPercent / 100, r.SharpeRatio,
		}
		style := []int{
			styles.BaseStyle, styles.BaseStyle, styles.BaseStyle, styles.BaseStyle, styles.BaseStyle,
			signedPercentStyle(r.TotalReturnPercent, styles), styles.BaseStyle, styles.PercentStyle,
			styles.BaseStyle, styles.RedPercentStyle, styles.BaseStyle,
		}
		if err := writeRow(fx, optimizationSheet, i+2, values, style); err != nil {
			return err
		}
	}
	return nil
}
