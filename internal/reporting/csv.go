package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
)

// ExportHeader is the column order of the results export.
var ExportHeader = []string{
	"Period", "Demand", "Responsiveness", "Efficiency", "Cost", "Lead Time",
	"Environmental Impact", "Customer Satisfaction", "Profit Margin", "Score",
}

// NotAvailable is written in place of undefined numeric values.
const NotAvailable = "N/A"

// RenderCSV writes the per-period results table as CSV.
func RenderCSV(w io.Writer, periods []*domain.PeriodMetrics) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, m := range periods {
		record := []string{
			strconv.Itoa(m.Period),
			formatNumber(m.Demand),
			formatNumber(m.Responsiveness),
			formatNumber(m.Efficiency),
			formatNumber(m.Cost),
			formatNumber(m.LeadTime),
			formatNumber(m.EnvironmentalImpact),
			formatNumber(m.CustomerSatisfaction),
			formatNumber(m.ProfitMargin),
			formatNumber(m.Score),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ExportFileName returns the download name for a student's results.
// Path separators in either part are replaced.
func ExportFileName(studentName, studentNumber string) string {
	clean := strings.NewReplacer("/", "_", `\`, "_", `"`, "_")
	return fmt.Sprintf("%s_%s_simulation_results.csv",
		clean.Replace(studentName), clean.Replace(studentNumber))
}

// formatNumber prints the shortest exact representation, or N/A.
func formatNumber(v float64) string {
	if domain.IsUndefined(v) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
