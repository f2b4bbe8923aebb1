package reporting

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/ducminhle1904/token-strategy-lab/pkg/validation"
)

// PrintWalkForward prints one row per fold and the overfitting verdict
func (r *ConsoleReporter) PrintWalkForward(summary *validation.WalkForwardSummary) {
	t := r.newTable(fmt.Sprintf("🔄 WALK-FORWARD VALIDATION (%s, %d folds)", summary.Mode, len(summary.Results)))
	t.AppendHeader(table.Row{"Fold", "Train", "Test", "Strategy", "Train %", "Test %", "Train DD %", "Test DD %"})
	for _, f := range summary.Results {
		t.AppendRow(table.Row{
			f.Fold,
			fmt.Sprintf("%s → %s", f.TrainStart.Format("2006-01-02"), f.TrainEnd.Format("2006-01-02")),
			fmt.Sprintf("%s → %s", f.TestStart.Format("2006-01-02"), f.TestEnd.Format("2006-01-02")),
			f.Strategy.Name,
			fmt.Sprintf("%.2f", f.TrainReturn),
			fmt.Sprintf("%.2f", f.TestReturn),
			fmt.Sprintf("%.2f", f.TrainDD),
			fmt.Sprintf("%.2f", f.TestDD),
		})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{
		"Avg", "", "", "",
		fmt.Sprintf("%.2f ± %.2f", summary.AverageTrainReturn, summary.TrainReturnStdDev),
		fmt.Sprintf("%.2f ± %.2f", summary.AverageTestReturn, summary.TestReturnStdDev),
		fmt.Sprintf("%.2f", summary.AverageTrainDrawdown),
		fmt.Sprintf("%.2f", summary.AverageTestDrawdown),
	})
	t.Render()

	verdict := "✅ ROBUST STRATEGY - Good generalization across time periods"
	switch summary.OverfittingRisk {
	case validation.RiskHigh:
		verdict = "⚠️  HIGH OVERFITTING RISK - Strategy may not generalize well"
	case validation.RiskModerate:
		verdict = "⚠️  MODERATE OVERFITTING - Some performance degradation"
	}
	fmt.Fprintf(r.out, "Return degradation: %.1f%%\n%s\n\n", summary.ReturnDegradation, verdict)
}

// WriteWalkForwardJSON writes the walk-forward summary as indented JSON
func WriteWalkForwardJSON(summary *validation.WalkForwardSummary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// ReportWalkForward prints the summary and writes walk_forward.json when
// JSON output is enabled. It returns the files written.
func (m *ReportingManager) ReportWalkForward(summary *validation.WalkForwardSummary, symbol, interval string) ([]string, error) {
	if m.config.EnableConsole {
		m.console.PrintWalkForward(summary)
	}
	if !m.config.JSONEnabled {
		return nil, nil
	}

	path := filepath.Join(DefaultOutputDir(m.config.OutputDirectory, symbol, interval), WalkForwardJSONFile)
	if err := WriteWalkForwardJSON(summary, path); err != nil {
		m.logger.Error("Failed to write report", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	m.logger.Info("Wrote report", zap.String("path", path))
	return []string{path}, nil
}
