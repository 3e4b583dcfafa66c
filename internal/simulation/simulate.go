package simulation

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jacobarthurs/schemabench/internal/analyzer"
	"github.com/jacobarthurs/schemabench/internal/comparator"
	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/plan"
	"github.com/jacobarthurs/schemabench/internal/timing"
)

// Report is one side-by-side run of both layouts.
type Report[T any] struct {
	Workload     comparator.Workload          `json:"workload"`
	Request      *orders.OrderRequest         `json:"request,omitempty"`
	Normalized   timing.Result[T]             `json:"normalized"`
	Denormalized timing.Result[T]             `json:"denormalized"`
	Comparison   comparator.Outcome           `json:"comparison"`
	Plans        map[orders.Schema]PlanReport `json:"plans,omitempty"`
}

// Partial reports whether either layout failed, which leaves the comparison
// undecided.
func (r Report[T]) Partial() bool {
	return !r.Normalized.Succeeded || !r.Denormalized.Succeeded
}

// PlanReport is the captured plan of one layout's aggregation.
type PlanReport struct {
	plan.Summary
	Findings []analyzer.Finding `json:"findings,omitempty"`
}

type (
	OLTPReport = Report[orders.Placement]
	OLAPReport = Report[[]orders.StoreSales]
)

// SimulateOLTP places the same order on both layouts concurrently. A nil req
// asks for a random order built from sample data; otherwise req is completed
// from sample data, plus any referenced rows the sample lacks, so both layouts
// receive what they need.
func (e *Engine) SimulateOLTP(ctx context.Context, req *orders.OrderRequest) (OLTPReport, error) {
	data, err := e.SampleData(ctx)
	if err != nil {
		return OLTPReport{}, err
	}
	order, err := e.prepareOrder(ctx, data, req)
	if err != nil {
		return OLTPReport{}, err
	}
	return e.simulateOrder(ctx, order), nil
}

func (e *Engine) prepareOrder(ctx context.Context, data orders.SampleData, req *orders.OrderRequest) (orders.OrderRequest, error) {
	if req == nil {
		return e.randomOrder(data)
	}
	if e.references != nil {
		var err error
		if data, err = e.references(ctx, data, *req); err != nil {
			return orders.OrderRequest{}, fmt.Errorf("resolving order references: %w", err)
		}
	}
	return data.Complete(*req)
}

func (e *Engine) simulateOrder(ctx context.Context, order orders.OrderRequest) OLTPReport {
	n, d := runBoth(ctx, comparator.OLTP,
		func(ctx context.Context) (orders.Placement, error) { return e.normalized.PlaceOrder(ctx, order) },
		func(ctx context.Context) (orders.Placement, error) { return e.denormalized.PlaceOrder(ctx, order) },
	)
	return buildReport(e, comparator.OLTP, &order, n, d)
}

// SimulateOLAP runs the sales-by-store aggregation on both layouts
// concurrently. With explain set, each statement's plan is captured after
// timing so plan capture never skews the measurement.
func (e *Engine) SimulateOLAP(ctx context.Context, explain bool) (OLAPReport, error) {
	n, d := runBoth(ctx, comparator.OLAP, e.normalized.SalesByStore, e.denormalized.SalesByStore)
	report := buildReport(e, comparator.OLAP, nil, n, d)

	if explain {
		plans, err := e.explainSales(ctx)
		if err != nil {
			return report, err
		}
		report.Plans = plans
	}
	return report, nil
}

func (e *Engine) explainSales(ctx context.Context) (map[orders.Schema]PlanReport, error) {
	if e.explain == nil {
		return nil, ErrNoExplainer
	}

	plans := make(map[orders.Schema]PlanReport, 2)
	for _, v := range []orders.Variant{e.normalized, e.denormalized} {
		sql, args := v.SalesByStoreQuery()
		out, err := e.explain(ctx, sql, args...)
		if err != nil {
			return nil, fmt.Errorf("explaining %s sales query: %w", v.Schema(), err)
		}
		plans[v.Schema()] = PlanReport{
			Summary:  plan.Summarize(out),
			Findings: analyzer.Analyze(out),
		}
	}
	return plans, nil
}

func buildReport[T any](e *Engine, workload comparator.Workload, req *orders.OrderRequest, n, d timing.Result[T]) Report[T] {
	e.observer.ObserveRun(workload, orders.Normalized, n.ElapsedMs, n.Succeeded)
	e.observer.ObserveRun(workload, orders.Denormalized, d.ElapsedMs, d.Succeeded)

	outcome := comparator.Compare(e.comparator, workload, n, d)
	e.observer.ObserveOutcome(outcome)

	return Report[T]{
		Workload:     workload,
		Request:      req,
		Normalized:   n,
		Denormalized: d,
		Comparison:   outcome,
	}
}

var tracer = otel.Tracer("github.com/jacobarthurs/schemabench/internal/simulation")

// runBoth measures n and d in their own goroutines and waits for both.
func runBoth[T any](ctx context.Context, workload comparator.Workload, n, d func(context.Context) (T, error)) (timing.Result[T], timing.Result[T]) {
	var nr, dr timing.Result[T]
	var wg sync.WaitGroup
	wg.Go(func() { nr = measureTraced(ctx, workload, orders.Normalized, n) })
	wg.Go(func() { dr = measureTraced(ctx, workload, orders.Denormalized, d) })
	wg.Wait()
	return nr, dr
}

func measureTraced[T any](ctx context.Context, workload comparator.Workload, schema orders.Schema, fn func(context.Context) (T, error)) timing.Result[T] {
	ctx, span := tracer.Start(ctx, string(workload)+" "+string(schema))
	defer span.End()

	r := timing.Measure(ctx, fn)
	span.SetAttributes(
		attribute.String("schemabench.workload", string(workload)),
		attribute.String("schemabench.schema", string(schema)),
		attribute.Float64("schemabench.elapsed_ms", r.ElapsedMs),
	)
	if !r.Succeeded {
		span.RecordError(r.Err)
		span.SetStatus(codes.Error, r.ErrorMessage)
	}
	return r
}
