package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeStarter struct {
	tx   *fakeTx
	err  error
	opts pgx.TxOptions
}

func (f *fakeStarter) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestWithTxCommits(t *testing.T) {
	starter := &fakeStarter{tx: &fakeTx{}}
	err := WithTx(context.Background(), starter, func(context.Context, pgx.Tx) error { return nil })

	require.NoError(t, err)
	assert.True(t, starter.tx.committed)
	assert.False(t, starter.tx.rolledBack)
	assert.Equal(t, pgx.ReadCommitted, starter.opts.IsoLevel)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	starter := &fakeStarter{tx: &fakeTx{}}
	boom := errors.New("schema inválido")
	err := WithTx(context.Background(), starter, func(context.Context, pgx.Tx) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.True(t, starter.tx.rolledBack)
	assert.False(t, starter.tx.committed)
}

func TestWithTxWrapsBeginAndCommitFailures(t *testing.T) {
	down := errors.New("conexão recusada")
	err := WithTx(context.Background(), &fakeStarter{err: down}, func(context.Context, pgx.Tx) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})
	assert.ErrorIs(t, err, down)

	starter := &fakeStarter{tx: &fakeTx{commitErr: down}}
	err = WithTx(context.Background(), starter, func(context.Context, pgx.Tx) error { return nil })
	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "commit tx")
}
