// Package orders implements the business operations once per data layout.
//
// Both layouts satisfy the same Variant interface so callers pick an
// implementation by Schema and never branch on layout themselves.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jacobarthurs/schemabench/internal/store"
)

const (
	DefaultWindowDays = 30
	DefaultItemsLimit = 10
)

type OrderPlacer interface {
	Schema() Schema
	PlaceOrder(ctx context.Context, req OrderRequest) (Placement, error)
}

type SalesAggregator interface {
	Schema() Schema
	SalesByStore(ctx context.Context) ([]StoreSales, error)
	BestSellingItems(ctx context.Context, limit int) ([]ItemSales, error)
	// SalesByStoreQuery returns the statement and arguments SalesByStore runs,
	// so it can be explained without being duplicated.
	SalesByStoreQuery() (string, []any)
}

type Variant interface {
	OrderPlacer
	SalesAggregator
}

type options struct {
	windowDays int
	now        func() time.Time
	newRef     func() string
}

type Option func(*options)

// WithWindowDays sets how many days back the aggregations look.
func WithWindowDays(days int) Option {
	return func(o *options) {
		if days > 0 {
			o.windowDays = days
		}
	}
}

// WithClock overrides the execution timestamp source used for order dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRefGenerator overrides how denormalized order references are minted.
func WithRefGenerator(fn func() string) Option {
	return func(o *options) { o.newRef = fn }
}

func newOptions(opts []Option) options {
	o := options{
		windowDays: DefaultWindowDays,
		now:        time.Now,
		newRef:     newOrderRef,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the implementation for schema backed by db.
func New(schema Schema, db store.DB, opts ...Option) (Variant, error) {
	switch schema {
	case Normalized:
		return NewNormalized(db, opts...), nil
	case Denormalized:
		return NewDenormalized(db, opts...), nil
	default:
		return nil, fmt.Errorf("unknown schema %q", schema)
	}
}

// newOrderRef mints the time-ordered order_ref stored on flat rows.
func newOrderRef() string {
	return "D-" + uuid.Must(uuid.NewV7()).String()
}

func itemsLimit(limit int) int {
	if limit <= 0 {
		return DefaultItemsLimit
	}
	return limit
}
