// internal/runner/summary.go
package runner

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/hujiayu1223/knowledge-editing/internal/metrics"
)

var (
	goodMetric = color.New(color.FgGreen).SprintFunc()
	badMetric  = color.New(color.FgRed).SprintFunc()
)

// printSummary renders the confusion matrix and derived metrics for a
// completed run.
func printSummary(out io.Writer, rec metrics.RunRecord) {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s / %s / %s (seed %d, run %s)", rec.Model, rec.Dataset, rec.PopeType, rec.Seed, rec.RunID)))
	fmt.Fprintln(out, labelStyle.Render("TP\tFP\tTN\tFN"))
	fmt.Fprintf(out, "%d\t%d\t%d\t%d\n", rec.Report.TP, rec.Report.FP, rec.Report.TN, rec.Report.FN)

	for _, m := range []struct {
		name  string
		value float64
	}{
		{"Accuracy", rec.Report.Accuracy},
		{"Precision", rec.Report.Precision},
		{"Recall", rec.Report.Recall},
		{"F1 score", rec.Report.F1},
		{"Yes ratio", rec.Report.YesRatio},
	} {
		rendered := goodMetric(fmt.Sprintf("%.4f", m.value))
		if m.value < 0.5 {
			rendered = badMetric(fmt.Sprintf("%.4f", m.value))
		}
		fmt.Fprintf(out, "%s: %s\n", m.name, rendered)
	}
}
