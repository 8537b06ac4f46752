package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typevault/typevault/pkg/repository"
)

func TestWithTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		got, err := repository.WithTx(context.Background(), db, func(tx *sql.Tx) (int, error) {
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		_, err = repository.WithTx(context.Background(), db, func(tx *sql.Tx) (int, error) {
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestExecExpectOne(t *testing.T) {
	t.Run("zero rows affected maps to no rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("DELETE FROM things").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repository.ExecExpectOne(context.Background(), db, "DELETE FROM things WHERE id = $1", 1)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("one row affected succeeds", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("DELETE FROM things").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repository.ExecExpectOne(context.Background(), db, "DELETE FROM things WHERE id = $1", 1)
		assert.NoError(t, err)
	})
}

func TestMapError(t *testing.T) {
	notFound := errors.New("not found")
	duplicate := errors.New("duplicate")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows maps to not found", sql.ErrNoRows, notFound},
		{"unique violation maps to duplicate", &pgconn.PgError{Code: "23505"}, duplicate},
		{"other pg errors pass through", &pgconn.PgError{Code: "23503"}, &pgconn.PgError{Code: "23503"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.in, notFound, duplicate)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.want.Error(), got.Error())
		})
	}
}
