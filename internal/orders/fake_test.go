package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jacobarthurs/schemabench/internal/store"
)

type statement struct {
	sql  string
	args []any
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: got %d targets for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *float64:
			*p = r.values[i].(float64)
		case *int64:
			*p = r.values[i].(int64)
		default:
			return fmt.Errorf("scan: unsupported target %T", d)
		}
	}
	return nil
}

// fakeDB is an in-memory stand-in for the pool. Statements issued inside a
// transaction only become visible once it commits.
type fakeDB struct {
	prices      map[int]float64
	nextOrderID int64

	// failExec, when set, is consulted before every Exec inside a transaction.
	failExec func(sql string, lineInserts int) error

	committed []statement
	begins    int
	commits   int
	rollbacks int
}

func newFakeDB(prices map[int]float64) *fakeDB {
	return &fakeDB{prices: prices, nextOrderID: 100}
}

func (db *fakeDB) Begin(context.Context) (store.Tx, error) {
	db.begins++
	return &fakeTx{db: db}, nil
}

func (db *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("fakeDB: Exec outside a transaction")
}

func (db *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeDB: Query not supported")
}

func (db *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return fakeRow{err: errors.New("fakeDB: QueryRow outside a transaction")}
}

func (db *fakeDB) visible(sql string) []statement {
	var out []statement
	for _, s := range db.committed {
		if s.sql == sql {
			out = append(out, s)
		}
	}
	return out
}

type fakeTx struct {
	db          *fakeDB
	pending     []statement
	lineInserts int
	done        bool
}

func (tx *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx.db.failExec != nil {
		if err := tx.db.failExec(sql, tx.lineInserts); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	if sql == insertOrderItemSQL {
		tx.lineInserts++
	}
	tx.pending = append(tx.pending, statement{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (tx *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeTx: Query not supported")
}

func (tx *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	switch sql {
	case selectPriceSQL:
		price, ok := tx.db.prices[args[0].(int)]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{values: []any{price}}
	case insertOrderSQL:
		tx.db.nextOrderID++
		tx.pending = append(tx.pending, statement{sql: sql, args: args})
		return fakeRow{values: []any{tx.db.nextOrderID}}
	default:
		return fakeRow{err: fmt.Errorf("fakeTx: unexpected query %q", sql)}
	}
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.commits++
	tx.db.committed = append(tx.db.committed, tx.pending...)
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.rollbacks++
	tx.pending = nil
	return nil
}
