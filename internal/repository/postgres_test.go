package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/event"
)

// fakeRow answers a QueryRow scan with a canned result.
type fakeRow struct {
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for _, d := range dest {
		if p, ok := d.(*int64); ok {
			*p = 0
		}
	}
	return nil
}

// fakeTx implements pgx.Tx and rejects queries after Commit or Rollback, the
// way a real transaction does.
type fakeTx struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) closed() bool { return t.committed || t.rolledBack }

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.closed() {
		return pgx.ErrTxClosed
	}
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.closed() {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.closed() {
		return pgconn.CommandTag{}, pgx.ErrTxClosed
	}
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if t.closed() {
		return nil, pgx.ErrTxClosed
	}
	return nil, nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if t.closed() {
		return fakeRow{err: pgx.ErrTxClosed}
	}
	return fakeRow{}
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *fakeTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *fakeTx) Conn() *pgx.Conn { return nil }

// fakeDB stands in for the pool.
type fakeDB struct {
	tx     *fakeTx
	begins int
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	d.begins++
	d.tx = &fakeTx{}
	return d.tx, nil
}

func (d *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (d *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{}
}

func TestRunInTx_SubscribersRunOnPoolAfterCommit(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	db := &fakeDB{}
	repo := NewPostgresRepository(db, bus)

	var (
		handlerRuns      int
		committedAtDrain bool
		drainConn        querier
		queryErr         error
	)
	bus.Subscribe("follow.created", func(ctx context.Context, e event.Event) {
		handlerRuns++
		committedAtDrain = db.tx.committed
		drainConn = repo.conn(ctx)
		// A real repository read, the way the dispatcher makes one.
		_, queryErr = repo.CountUnreadNotifications(ctx, uuid.New())
	})

	err := repo.RunInTx(context.Background(), func(ctx context.Context) error {
		// Inside the transaction, repository calls go through the tx.
		require.Same(t, db.tx, repo.conn(ctx))
		bus.Raise(ctx, event.FollowCreated{FollowID: uuid.New()})
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 1, handlerRuns)
	assert.True(t, committedAtDrain, "subscribers run strictly after commit")
	assert.Same(t, db, drainConn, "post-commit context must resolve to the pool, not the closed tx")
	assert.NoError(t, queryErr)
}

func TestRunInTx_ErrorDiscardsEventsAndRollsBack(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	db := &fakeDB{}
	repo := NewPostgresRepository(db, bus)

	var handlerRuns int
	bus.Subscribe("follow.created", func(ctx context.Context, e event.Event) {
		handlerRuns++
	})

	boom := errors.New("constraint violated")
	err := repo.RunInTx(context.Background(), func(ctx context.Context) error {
		bus.Raise(ctx, event.FollowCreated{FollowID: uuid.New()})
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, handlerRuns, "rolled-back events never publish")
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
}

func TestRunInTx_CommitFailureDiscardsEvents(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	db := &fakeDB{}
	repo := NewPostgresRepository(db, bus)

	var handlerRuns int
	bus.Subscribe("follow.created", func(ctx context.Context, e event.Event) {
		handlerRuns++
	})

	commitErr := errors.New("connection lost")
	err := repo.RunInTx(context.Background(), func(ctx context.Context) error {
		db.tx.commitErr = commitErr
		bus.Raise(ctx, event.FollowCreated{FollowID: uuid.New()})
		return nil
	})

	assert.ErrorIs(t, err, commitErr)
	assert.Zero(t, handlerRuns)
}

func TestRunInTx_NestedCallJoinsTheOuterTransaction(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	db := &fakeDB{}
	repo := NewPostgresRepository(db, bus)

	var handlerRuns int
	bus.Subscribe("follow.created", func(ctx context.Context, e event.Event) {
		handlerRuns++
	})

	err := repo.RunInTx(context.Background(), func(outer context.Context) error {
		return repo.RunInTx(outer, func(inner context.Context) error {
			require.Same(t, db.tx, repo.conn(inner))
			bus.Raise(inner, event.FollowCreated{FollowID: uuid.New()})
			// The inner call must not publish: the outer call owns the drain.
			require.Zero(t, handlerRuns)
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 1, db.begins)
	assert.Equal(t, 1, handlerRuns)
}
