package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jacobarthurs/schemabench/internal/store"
)

// Reads run on the pool directly; pgx hands the connection back once the rows
// are collected.

func collectStoreSales(ctx context.Context, q store.Querier, sql string, args ...any) ([]StoreSales, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sales by store: %w", err)
	}
	sales, err := pgx.CollectRows(rows, pgx.RowToStructByName[StoreSales])
	if err != nil {
		return nil, fmt.Errorf("reading sales by store: %w", err)
	}
	return sales, nil
}

func collectItemSales(ctx context.Context, q store.Querier, sql string, args ...any) ([]ItemSales, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying best selling items: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[ItemSales])
	if err != nil {
		return nil, fmt.Errorf("reading best selling items: %w", err)
	}
	return items, nil
}
