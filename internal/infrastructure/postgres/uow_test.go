package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/communet/internal/domain/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestTransactorCommits(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE channel_members").
		WithArgs("c1", "p1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	var left bool
	err := NewTransactor(mock, nil).Do(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		left, err = uow.Channels().Disconnect(ctx, "c1", "p1")
		return err
	})
	require.NoError(t, err)
	assert.True(t, left)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactorRollsBackOnError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := NewTransactor(mock, nil).Do(context.Background(), func(context.Context, repository.UnitOfWork) error {
		return boom
	})
	assert.Same(t, boom, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactorRollsBackOnPanic(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = NewTransactor(mock, nil).Do(context.Background(), func(context.Context, repository.UnitOfWork) error {
			panic("kaboom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactorBeginAndCommitErrors(t *testing.T) {
	t.Run("begin", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin().WillReturnError(errors.New("no conn"))

		called := false
		err := NewTransactor(mock, nil).Do(context.Background(), func(context.Context, repository.UnitOfWork) error {
			called = true
			return nil
		})
		assert.ErrorContains(t, err, "begin tx")
		assert.False(t, called)
	})

	t.Run("commit", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("serialization"))

		err := NewTransactor(mock, nil).Do(context.Background(), func(context.Context, repository.UnitOfWork) error {
			return nil
		})
		assert.ErrorContains(t, err, "commit tx")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23505"}), repository.ErrConflict)
	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, other, mapErr(other))
}
