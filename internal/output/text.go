package output

import (
	"fmt"
	"io"

	"github.com/jacobarthurs/schemabench/internal/analyzer"
	"github.com/jacobarthurs/schemabench/internal/comparator"
	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/simulation"
	"github.com/jacobarthurs/schemabench/internal/timing"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func RenderOLTPText(w io.Writer, r simulation.OLTPReport) error {
	tw := &textWriter{w: w}

	tw.printf("%s%sOLTP: place order%s\n\n", colorBold, colorCyan, colorReset)
	if r.Request != nil {
		tw.renderRequest(*r.Request)
	}
	renderRunLine(tw, orders.Normalized, r.Normalized, func(p orders.Placement) string {
		return fmt.Sprintf("order %s, total %.2f", p.OrderID, p.TotalAmount)
	})
	renderRunLine(tw, orders.Denormalized, r.Denormalized, func(p orders.Placement) string {
		return fmt.Sprintf("order %s, total %.2f", p.OrderID, p.TotalAmount)
	})
	tw.printf("\n")
	tw.renderOutcome(r.Comparison)

	return tw.err
}

func RenderOLAPText(w io.Writer, r simulation.OLAPReport) error {
	tw := &textWriter{w: w}

	tw.printf("%s%sOLAP: sales by store%s\n\n", colorBold, colorCyan, colorReset)
	storeCount := func(rows []orders.StoreSales) string {
		return fmt.Sprintf("%d stores", len(rows))
	}
	renderRunLine(tw, orders.Normalized, r.Normalized, storeCount)
	renderRunLine(tw, orders.Denormalized, r.Denormalized, storeCount)
	tw.printf("\n")

	if r.Normalized.Succeeded && len(r.Normalized.Data) > 0 {
		tw.renderSales(r.Normalized.Data)
	}

	if len(r.Plans) > 0 {
		tw.printf("%s%sPlans%s\n\n", colorBold, colorCyan, colorReset)
		for _, s := range orders.Schemas {
			if p, ok := r.Plans[s]; ok {
				tw.renderPlan(s, p)
			}
		}
		tw.printf("\n")
	}

	tw.renderOutcome(r.Comparison)
	return tw.err
}

func RenderBenchmarkText(w io.Writer, r simulation.BenchmarkReport) error {
	tw := &textWriter{w: w}

	tw.printf("%s%sBenchmark: %s, %d runs%s\n\n", colorBold, colorCyan, r.Workload, r.Runs, colorReset)
	tw.printf("  %-14s %9s %9s %9s %9s %9s %7s %5s %5s\n", "Schema", "Median", "Mean", "StdDev", "P95", "Max", "CV%", "Wins", "Fail")
	tw.renderStatsRow(orders.Normalized, r.Normalized)
	tw.renderStatsRow(orders.Denormalized, r.Denormalized)
	if r.Undecided > 0 {
		tw.printf("  %s%d runs undecided%s\n", colorDim, r.Undecided, colorReset)
	}
	tw.printf("\n")
	tw.renderOutcome(r.Comparison)

	return tw.err
}

func (tw *textWriter) renderRequest(req orders.OrderRequest) {
	if req.Customer != nil && req.Store != nil && req.Employee != nil {
		tw.printf("  %s%s %s at %s, served by %s (%s)%s\n", colorDim,
			req.Customer.FirstName, req.Customer.LastName, req.Store.Name,
			req.Employee.FirstName, req.Employee.Position, colorReset)
	}
	for _, item := range req.Items {
		tw.printf("  %s%d x %s%s\n", colorDim, item.Quantity, itemLabel(item), colorReset)
	}
	tw.printf("\n")
}

func itemLabel(item orders.Item) string {
	if item.Name != "" {
		return item.Name
	}
	return fmt.Sprintf("menu item %d", item.MenuItemID)
}

func renderRunLine[T any](tw *textWriter, schema orders.Schema, r timing.Result[T], describe func(T) string) {
	if !r.Succeeded {
		tw.printf("  %-14s %s%10.2f ms%s  %sfailed: %s%s\n", schema, colorRed, r.ElapsedMs, colorReset, colorRed, r.ErrorMessage, colorReset)
		return
	}
	tw.printf("  %-14s %10.2f ms  %s%s%s\n", schema, r.ElapsedMs, colorDim, describe(r.Data), colorReset)
}

func (tw *textWriter) renderSales(rows []orders.StoreSales) {
	tw.printf("  %-20s %7s %11s %9s %9s\n", "Store", "Orders", "Revenue", "Avg", "Customers")
	for _, s := range rows {
		tw.printf("  %-20s %7d %11.2f %9.2f %9d\n", s.StoreName, s.TotalOrders, s.TotalRevenue, s.AvgOrderValue, s.UniqueCustomers)
	}
	tw.printf("\n")
}

func (tw *textWriter) renderPlan(schema orders.Schema, p simulation.PlanReport) {
	tw.printf("  %-14s %s, %d joins, %d seq scans, %d index scans, exec %.3f ms\n",
		schema, p.RootNode, p.Joins, p.SeqScans, p.IndexScans, p.ExecutionTime)
	if p.SharedHit > 0 || p.SharedRead > 0 {
		tw.printf("  %-14s %sbuffers hit %d, read %d%s\n", "", colorDim, p.SharedHit, p.SharedRead, colorReset)
	}
	for _, f := range p.Findings {
		label, color := severityFormat(f.Severity)
		tw.printf("  %-14s %s%-8s%s %s\n", "", color, label, colorReset, f.Description)
		tw.printf("  %-14s %s→ %s%s\n", "", colorDim, f.Suggestion, colorReset)
	}
}

func severityFormat(s analyzer.Severity) (string, string) {
	switch s {
	case analyzer.Critical:
		return "CRITICAL", colorRed
	case analyzer.Warning:
		return "WARNING", colorYellow
	default:
		return "INFO", colorCyan
	}
}

func (tw *textWriter) renderStatsRow(schema orders.Schema, s simulation.SchemaSummary) {
	l := s.Latency
	if l.N == 0 {
		tw.printf("  %-14s %s%9s%s%48s %5d %5d\n", schema, colorRed, "n/a", colorReset, "", s.Wins, s.Failures)
		return
	}
	tw.printf("  %-14s %9.2f %9.2f %9.2f %9.2f %9.2f %7.1f %5d %5d\n", schema, l.Median, l.Mean, l.StdDev, l.P95, l.Max, l.CV, s.Wins, s.Failures)
}

func (tw *textWriter) renderOutcome(o comparator.Outcome) {
	if !o.Decided {
		tw.printf("%s%sNo winner:%s %s\n", colorBold, colorRed, colorReset, o.Margin)
		return
	}

	color := colorGreen
	if !o.Significant {
		color = colorYellow
	}
	tw.printf("%s%sWinner: %s%s %s(%s)%s\n", colorBold, color, o.Winner, colorReset, colorDim, o.Margin, colorReset)
	if o.Explanation != "" {
		tw.printf("  %s→ %s%s\n", colorDim, o.Explanation, colorReset)
	}
}
