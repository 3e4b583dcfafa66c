package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/simulation"
	"github.com/jacobarthurs/schemabench/internal/timing"
)

var (
	reportHeader    = []string{"Workload", "Schema", "ElapsedMs", "Success", "Error", "Winner", "MarginPercent"}
	benchmarkHeader = []string{"Workload", "Schema", "Runs", "Median", "Mean", "StdDev", "Min", "Max", "P95", "CV_Percent", "Wins", "Failures"}
)

// RenderReportCSV writes one row per schema for a single simulation.
func RenderReportCSV[T any](w io.Writer, r simulation.Report[T]) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(reportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	winner, margin := "", ""
	if r.Comparison.Decided {
		winner = string(r.Comparison.Winner)
		margin = fmt.Sprintf("%.1f", r.Comparison.MarginPercent)
	}

	for _, row := range []struct {
		schema orders.Schema
		result timing.Result[T]
	}{
		{orders.Normalized, r.Normalized},
		{orders.Denormalized, r.Denormalized},
	} {
		record := []string{
			string(r.Workload),
			string(row.schema),
			fmt.Sprintf("%.2f", row.result.ElapsedMs),
			strconv.FormatBool(row.result.Succeeded),
			row.result.ErrorMessage,
			winner,
			margin,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// RenderBenchmarkCSV writes the latency statistics per schema for plotting.
func RenderBenchmarkCSV(w io.Writer, r simulation.BenchmarkReport) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(benchmarkHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range []struct {
		schema  orders.Schema
		summary simulation.SchemaSummary
	}{
		{orders.Normalized, r.Normalized},
		{orders.Denormalized, r.Denormalized},
	} {
		s := row.summary.Latency
		record := []string{
			string(r.Workload),
			string(row.schema),
			strconv.Itoa(r.Runs),
			fmt.Sprintf("%.2f", s.Median),
			fmt.Sprintf("%.2f", s.Mean),
			fmt.Sprintf("%.2f", s.StdDev),
			fmt.Sprintf("%.2f", s.Min),
			fmt.Sprintf("%.2f", s.Max),
			fmt.Sprintf("%.2f", s.P95),
			fmt.Sprintf("%.2f", s.CV),
			strconv.Itoa(row.summary.Wins),
			strconv.Itoa(row.summary.Failures),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
