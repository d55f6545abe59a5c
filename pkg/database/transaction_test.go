package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx embeds pgx.Tx so only the methods used here need bodies.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTransaction_Commit(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	err := WithTransaction(context.Background(), db, func(pgx.Tx) error { return nil })

	require.NoError(t, err)
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("duplicate event")
	err := WithTransaction(context.Background(), db, func(pgx.Tx) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.False(t, db.tx.committed)
	assert.True(t, db.tx.rolledBack)
}

func TestWithTransaction_RollbackOnCommitFailure(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{commitErr: errors.New("serialization failure")}}
	err := WithTransaction(context.Background(), db, func(pgx.Tx) error { return nil })

	assert.ErrorContains(t, err, "failed to commit")
	assert.True(t, db.tx.rolledBack)
}

func TestWithTransaction_RollbackAndRepanic(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	assert.PanicsWithValue(t, "bad state", func() {
		_ = WithTransaction(context.Background(), db, func(pgx.Tx) error { panic("bad state") })
	})
	assert.True(t, db.tx.rolledBack)
}

func TestWithTransaction_BeginError(t *testing.T) {
	db := &fakeBeginner{err: errors.New("pool closed")}
	called := false
	err := WithTransaction(context.Background(), db, func(pgx.Tx) error { called = true; return nil })

	assert.ErrorContains(t, err, "pool closed")
	assert.False(t, called)
}
