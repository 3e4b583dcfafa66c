package plan

import (
	"context"
	"fmt"

	"github.com/jacobarthurs/schemabench/internal/store"
)

// Explain runs EXPLAIN ANALYZE on query inside a transaction that is always
// rolled back, so explaining never leaves side effects.
func Explain(ctx context.Context, db store.DB, query string, args ...any) (ExplainOutput, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return ExplainOutput{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	var jsonStr string
	err = tx.QueryRow(ctx, "EXPLAIN (ANALYZE, BUFFERS, FORMAT JSON) "+query, args...).Scan(&jsonStr)
	if err != nil {
		return ExplainOutput{}, fmt.Errorf("executing EXPLAIN: %w", err)
	}

	plans, err := ParseJSONPlan([]byte(jsonStr))
	if err != nil {
		return ExplainOutput{}, err
	}
	return plans[0], nil
}
