// Package simulation runs the same business operation against both layouts
// and compares the timings.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jacobarthurs/schemabench/internal/comparator"
	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/plan"
	"github.com/jacobarthurs/schemabench/internal/store"
	"github.com/jacobarthurs/schemabench/internal/timing"
)

var (
	ErrUnknownSchema = errors.New("unknown schema")
	ErrNoSampleData  = errors.New("no sample data source configured")
	ErrNoExplainer   = errors.New("no plan explainer configured")
)

// SampleLoader returns the reference data used to complete or generate orders.
type SampleLoader func(ctx context.Context) (orders.SampleData, error)

// ReferenceLoader extends data with the reference rows req names that the
// sample lacks.
type ReferenceLoader func(ctx context.Context, data orders.SampleData, req orders.OrderRequest) (orders.SampleData, error)

// Explainer captures the execution plan of a statement.
type Explainer func(ctx context.Context, sql string, args ...any) (plan.ExplainOutput, error)

// Observer is notified of every measured run and every comparison.
type Observer interface {
	ObserveRun(workload comparator.Workload, schema orders.Schema, elapsedMs float64, succeeded bool)
	ObserveOutcome(outcome comparator.Outcome)
}

type nopObserver struct{}

func (nopObserver) ObserveRun(comparator.Workload, orders.Schema, float64, bool) {}
func (nopObserver) ObserveOutcome(comparator.Outcome)                            {}

type Engine struct {
	normalized   orders.Variant
	denormalized orders.Variant

	sample     SampleLoader
	references ReferenceLoader
	explain    Explainer
	comparator *comparator.Comparator
	observer   Observer

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Engine)

func WithSampleLoader(fn SampleLoader) Option {
	return func(e *Engine) { e.sample = fn }
}

func WithReferenceLoader(fn ReferenceLoader) Option {
	return func(e *Engine) { e.references = fn }
}

func WithExplainer(fn Explainer) Option {
	return func(e *Engine) { e.explain = fn }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

func WithComparator(c *comparator.Comparator) Option {
	return func(e *Engine) {
		if c != nil {
			e.comparator = c
		}
	}
}

// WithRand fixes the source used to generate random orders.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// New pairs a normalized and a denormalized variant into an engine.
func New(normalized, denormalized orders.Variant, opts ...Option) (*Engine, error) {
	if normalized == nil || normalized.Schema() != orders.Normalized {
		return nil, fmt.Errorf("%w: first variant must be normalized", ErrUnknownSchema)
	}
	if denormalized == nil || denormalized.Schema() != orders.Denormalized {
		return nil, fmt.Errorf("%w: second variant must be denormalized", ErrUnknownSchema)
	}

	seed := uint64(time.Now().UnixNano())
	e := &Engine{
		normalized:   normalized,
		denormalized: denormalized,
		comparator:   comparator.Default(),
		observer:     nopObserver{},
		rng:          rand.New(rand.NewPCG(seed, seed>>1)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewFromDB builds both variants over db and wires sample loading and plan
// capture to the same database.
func NewFromDB(db store.DB, orderOpts []orders.Option, opts ...Option) (*Engine, error) {
	normalized, err := orders.New(orders.Normalized, db, orderOpts...)
	if err != nil {
		return nil, err
	}
	denormalized, err := orders.New(orders.Denormalized, db, orderOpts...)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithSampleLoader(func(ctx context.Context) (orders.SampleData, error) {
			return orders.LoadSampleData(ctx, db)
		}),
		WithReferenceLoader(func(ctx context.Context, data orders.SampleData, req orders.OrderRequest) (orders.SampleData, error) {
			return data.WithReferences(ctx, db, req)
		}),
		WithExplainer(func(ctx context.Context, sql string, args ...any) (plan.ExplainOutput, error) {
			return plan.Explain(ctx, db, sql, args...)
		}),
	}
	return New(normalized, denormalized, append(base, opts...)...)
}

func (e *Engine) variant(schema orders.Schema) (orders.Variant, error) {
	switch schema {
	case orders.Normalized:
		return e.normalized, nil
	case orders.Denormalized:
		return e.denormalized, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownSchema, schema)
	}
}

func (e *Engine) SampleData(ctx context.Context) (orders.SampleData, error) {
	if e.sample == nil {
		return orders.SampleData{}, ErrNoSampleData
	}
	data, err := e.sample(ctx)
	if err != nil {
		return orders.SampleData{}, fmt.Errorf("loading sample data: %w", err)
	}
	return data, nil
}

// PlaceOrder times one order placement against schema. The request is passed
// through as given.
func (e *Engine) PlaceOrder(ctx context.Context, schema orders.Schema, req orders.OrderRequest) (timing.Result[orders.Placement], error) {
	v, err := e.variant(schema)
	if err != nil {
		return timing.Result[orders.Placement]{}, err
	}
	r := timing.Measure(ctx, func(ctx context.Context) (orders.Placement, error) {
		return v.PlaceOrder(ctx, req)
	})
	e.observer.ObserveRun(comparator.OLTP, schema, r.ElapsedMs, r.Succeeded)
	return r, nil
}

func (e *Engine) SalesByStore(ctx context.Context, schema orders.Schema) (timing.Result[[]orders.StoreSales], error) {
	v, err := e.variant(schema)
	if err != nil {
		return timing.Result[[]orders.StoreSales]{}, err
	}
	r := timing.Measure(ctx, v.SalesByStore)
	e.observer.ObserveRun(comparator.OLAP, schema, r.ElapsedMs, r.Succeeded)
	return r, nil
}

func (e *Engine) BestSellingItems(ctx context.Context, schema orders.Schema, limit int) (timing.Result[[]orders.ItemSales], error) {
	v, err := e.variant(schema)
	if err != nil {
		return timing.Result[[]orders.ItemSales]{}, err
	}
	r := timing.Measure(ctx, func(ctx context.Context) ([]orders.ItemSales, error) {
		return v.BestSellingItems(ctx, limit)
	})
	e.observer.ObserveRun(comparator.OLAP, schema, r.ElapsedMs, r.Succeeded)
	return r, nil
}

func (e *Engine) randomOrder(data orders.SampleData) (orders.OrderRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return data.RandomOrder(e.rng)
}
