package reporting

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
)

// RenderTable writes the results table aligned for a terminal, with an
// extra column naming the period's event.
func RenderTable(w io.Writer, periods []*domain.PeriodMetrics) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := append(append([]string(nil), ExportHeader...), "Event")
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for _, m := range periods {
		event := "-"
		if m.Event.Occurred {
			event = m.Event.Name
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%.2f\t%s\t\n",
			m.Period, m.Demand, m.Responsiveness, m.Efficiency, m.Cost, m.LeadTime,
			m.EnvironmentalImpact, m.CustomerSatisfaction, formatPercent(m.ProfitMargin),
			m.Score, event)
	}

	return tw.Flush()
}

func formatPercent(v float64) string {
	if domain.IsUndefined(v) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", v)
}
