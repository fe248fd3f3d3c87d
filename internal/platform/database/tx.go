// Package database holds the pgx helpers shared by all repositories,
// in particular the transaction runner with its capability probe.
package database

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the query surface shared by *pgxpool.Pool and pgx.Tx, so a
// repository method runs the same against either.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// FromContext returns the transaction attached to ctx by a TxRunner, or the
// pool when the work is running outside one.
func FromContext(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// TxRunner wraps a unit of work in a transaction when the backing store
// supports them and runs it bare when it does not.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
	Supported() bool
}

type pgxTxRunner struct {
	pool       *pgxpool.Pool
	supportsTx bool
}

// NewTxRunner probes transaction capability once at startup. A failed probe
// is a deployment-capability signal, not an error: callers keep working on
// the non-transactional path.
func NewTxRunner(ctx context.Context, pool *pgxpool.Pool) TxRunner {
	r := &pgxTxRunner{pool: pool, supportsTx: true}
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Printf("database: transactions unavailable, falling back to non-transactional writes: %v", err)
		r.supportsTx = false
		return r
	}
	_ = tx.Rollback(ctx)
	return r
}

func (r *pgxTxRunner) Supported() bool { return r.supportsTx }

func (r *pgxTxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.supportsTx {
		return fn(ctx)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		// Capability regressed after the probe (e.g. single-node restart);
		// degrade the same way rather than failing the request.
		log.Printf("database: begin failed, retrying without transaction: %v", err)
		return fn(ctx)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// PassthroughRunner runs the work directly. Used by tests and by callers
// that already hold a transaction.
type PassthroughRunner struct{}

func (PassthroughRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (PassthroughRunner) Supported() bool { return false }
