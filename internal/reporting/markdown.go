package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RenderMarkdown renders a run report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	run := r.Run

	// Header
	sb.WriteString("# Supply Chain Simulation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Student | %s |\n", orDash(run.StudentName)))
	sb.WriteString(fmt.Sprintf("| Student Number | %s |\n", orDash(run.StudentNumber)))
	sb.WriteString(fmt.Sprintf("| Scenario | %s |\n", run.Scenario))
	sb.WriteString(fmt.Sprintf("| Run ID | %s |\n", orDash(run.RunID)))
	if !run.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("| Created | %s |\n", run.CreatedAt.Format(time.RFC3339)))
	}
	sb.WriteString("\n")

	// Decisions
	sb.WriteString("## Decisions\n\n")
	if len(run.Decisions) > 0 {
		sb.WriteString("| Period | Capacity Change % | Inventory | Transport | Suppliers | Discount % |\n")
		sb.WriteString("|--------|-------------------|-----------|-----------|-----------|------------|\n")
		for _, d := range run.Decisions {
			sb.WriteString(fmt.Sprintf("| %d | %d | %d | %s | %d | %d |\n",
				d.Period, d.ProductionCapacityChange, d.InventoryLevel,
				d.TransportationMode, d.NumberOfSuppliers, d.PricingDiscount))
		}
	} else {
		sb.WriteString("No decisions recorded.\n")
	}
	sb.WriteString("\n")

	// Results
	sb.WriteString("## Results\n\n")
	if len(run.Periods) > 0 {
		sb.WriteString("| Period | Demand | Responsiveness | Efficiency | Cost | Lead Time | Env. Impact | Cust. Satisfaction | Profit Margin % | Score |\n")
		sb.WriteString("|--------|--------|----------------|------------|------|-----------|-------------|--------------------|-----------------|-------|\n")
		for _, m := range run.Periods {
			sb.WriteString(fmt.Sprintf("| %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %s | %.2f |\n",
				m.Period, m.Demand, m.Responsiveness, m.Efficiency, m.Cost, m.LeadTime,
				m.EnvironmentalImpact, m.CustomerSatisfaction, formatPercent(m.ProfitMargin), m.Score))
		}
	} else {
		sb.WriteString("No periods simulated.\n")
	}
	sb.WriteString("\n")

	// Events
	sb.WriteString("## Events\n\n")
	events := 0
	for _, m := range run.Periods {
		if m.Disrupted {
			sb.WriteString(fmt.Sprintf("- Period %d: scheduled supply disruption\n", m.Period))
			events++
		}
		if m.Event.Occurred {
			sb.WriteString(fmt.Sprintf("- Period %d: **%s**. %s\n", m.Period, m.Event.Name, m.Event.Description))
			events++
		}
	}
	if events == 0 {
		sb.WriteString("No events occurred.\n")
	}
	sb.WriteString("\n")

	// Summary
	if s := r.Summary; s != nil && s.Periods > 0 {
		sb.WriteString("## Summary\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Periods | %d |\n", s.Periods))
		sb.WriteString(fmt.Sprintf("| Final Score | %.2f |\n", s.LastScore))
		sb.WriteString(fmt.Sprintf("| Mean Score | %.2f |\n", s.MeanScore))
		sb.WriteString(fmt.Sprintf("| Score StdDev | %.2f |\n", s.StdDevScore))
		sb.WriteString(fmt.Sprintf("| Min / Max Score | %.2f / %.2f |\n", s.MinScore, s.MaxScore))
		sb.WriteString(fmt.Sprintf("| Improvement | %+.2f |\n", s.Improvement))
		sb.WriteString(fmt.Sprintf("| Max Score Drop | %.2f |\n", s.MaxScoreDrop))
		sb.WriteString(fmt.Sprintf("| Events Triggered | %d |\n", s.EventsTriggered))
		sb.WriteString(fmt.Sprintf("| Disrupted Periods | %d |\n", s.DisruptedPeriods))
		margin := NotAvailable
		if s.MeanProfitMargin != nil {
			margin = fmt.Sprintf("%.2f", *s.MeanProfitMargin)
		}
		sb.WriteString(fmt.Sprintf("| Mean Profit Margin %% | %s |\n", margin))
		sb.WriteString("\n")

		if len(s.EventCounts) > 0 {
			names := make([]string, 0, len(s.EventCounts))
			for name := range s.EventCounts {
				names = append(names, name)
			}
			sort.Strings(names)
			sb.WriteString("| Event | Count |\n")
			sb.WriteString("|-------|-------|\n")
			for _, name := range names {
				sb.WriteString(fmt.Sprintf("| %s | %d |\n", name, s.EventCounts[name]))
			}
			sb.WriteString("\n")
		}
	}

	// Performance profile
	if len(r.Profile) > 0 {
		sb.WriteString("## Performance Profile (final period)\n\n")
		sb.WriteString("| Axis | Value |\n")
		sb.WriteString("|------|-------|\n")
		for _, a := range r.Profile {
			sb.WriteString(fmt.Sprintf("| %s | %.2f |\n", a.Name, a.Value))
		}
		sb.WriteString("\n")
	}

	// Benchmark
	if len(r.Benchmark) > 0 {
		sb.WriteString("## Scenario Benchmark\n\n")
		sb.WriteString("| Period | Runs | Mean Score | StdDev | Best |\n")
		sb.WriteString("|--------|------|------------|--------|------|\n")
		for _, b := range r.Benchmark {
			sb.WriteString(fmt.Sprintf("| %d | %d | %.2f | %.2f | %.2f |\n",
				b.Period, b.Runs, b.MeanScore, b.StdDevScore, b.BestScore))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderComparison renders saved runs side by side as Markdown string.
func RenderComparison(c *ComparisonReport) string {
	var sb strings.Builder

	sb.WriteString("# Saved Simulation Runs\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", c.GeneratedAt.Format(time.RFC3339)))
	if c.StudentNumber != "" {
		sb.WriteString(fmt.Sprintf("Student Number: %s\n\n", c.StudentNumber))
	}

	if len(c.Rows) == 0 {
		sb.WriteString("No saved runs available.\n")
		return sb.String()
	}

	sb.WriteString("| # | Run ID | Student | Scenario | Created | Periods | Final Score | Mean Score |\n")
	sb.WriteString("|---|--------|---------|----------|---------|---------|-------------|------------|\n")
	for i, row := range c.Rows {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %d | %.2f | %.2f |\n",
			i+1, row.RunID, orDash(row.StudentName), row.Scenario,
			row.CreatedAt.Format(time.RFC3339), row.Periods, row.FinalScore, row.MeanScore))
	}
	sb.WriteString("\n")

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
