package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parkfind/backend/internal/event"
)

// PostgresRepository implements the domain repositories and registries over
// PostgreSQL.
type PostgresRepository struct {
	db  DB
	bus *event.Bus
}

// DB is the slice of pgxpool.Pool the repository needs.
type DB interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ DB = (*pgxpool.Pool)(nil)

// NewPostgresRepository creates a new PostgreSQL repository. The bus receives
// deferred domain events after each successful commit.
func NewPostgresRepository(db DB, bus *event.Bus) *PostgresRepository {
	return &PostgresRepository{db: db, bus: bus}
}

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// conn returns the transaction bound to the context, or the pool.
func (r *PostgresRepository) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.db
}

// RunInTx runs fn inside a transaction with a deferred-event queue attached
// to the context. Events raised through the bus during fn are published only
// after COMMIT succeeds; a rollback discards them. This is what keeps the
// notification pipeline ordered strictly after the originating write.
func (r *PostgresRepository) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		// Already transactional; the outer call owns commit and drain.
		return fn(ctx)
	}

	ctx, queue := event.WithQueue(ctx)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)

	if err := fn(txCtx); err != nil {
		queue.Discard()
		_ = tx.Rollback(txCtx)
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		queue.Discard()
		return err
	}

	// Drain on the pre-transaction context: subscribers run after the commit
	// and their repository calls must hit the pool, not the closed tx.
	queue.Drain(ctx, r.bus)
	return nil
}

// isUniqueViolation reports a PostgreSQL unique_violation error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
