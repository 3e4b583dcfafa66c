package store

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

const dropSQL = `DROP TABLE IF EXISTS
	denormalized_orders, order_items, orders, menu_items, employees, stores, customers
	CASCADE`

// CreateSchema creates both layouts. It is idempotent.
func CreateSchema(ctx context.Context, q Querier) error {
	// No arguments, so pgx sends this over the simple protocol and the
	// multi-statement script is accepted.
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func DropSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, dropSQL); err != nil {
		return fmt.Errorf("dropping schema: %w", err)
	}
	return nil
}
