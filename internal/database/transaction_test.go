package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactorWithinTx(t *testing.T) {
	t.Run("Commit", func(t *testing.T) {
		db, mock := newMockDB(t)
		tx := NewTransactor(db)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE users SET is_active`).
			WithArgs(false, int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
			assert.True(t, InTx(ctx))
			return repo.SetActive(ctx, 4, false)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		db, mock := newMockDB(t)
		tx := NewTransactor(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NestedJoinsOuter", func(t *testing.T) {
		db, mock := newMockDB(t)
		tx := NewTransactor(db)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
			return tx.WithinTx(ctx, func(ctx context.Context) error { return nil })
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
