// Package reporting renders backtest and optimization results to the
// console and to CSV, Excel and JSON files
package reporting

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle       int
	CurrencyStyle     int
	PercentStyle      int
	BaseStyle         int
	RedPercentStyle   int
	GreenPercentStyle int
	SummaryStyle      int
}

// ReportingConfig holds configuration for reporting
type ReportingConfig struct {
	EnableConsole   bool
	OutputDirectory string
	ExcelEnabled    bool
	CSVEnabled      bool
	JSONEnabled     bool
}
