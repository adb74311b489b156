package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestRunInTx_CommitsOnSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE work_orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m := NewTxManager(db)
	err := m.RunInTx(context.Background(), func(ctx context.Context) error {
		_, err := QuerierFrom(ctx, db).ExecContext(ctx, "UPDATE work_orders SET status = 'COMPLETED'")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	m := NewTxManager(db)
	boom := errors.New("cascade step failed")
	err := m.RunInTx(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTx_JoinsEnclosingTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	// One begin and one commit regardless of nesting depth.
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := NewTxManager(db)
	err := m.RunInTx(context.Background(), func(ctx context.Context) error {
		return m.RunInTx(ctx, func(ctx context.Context) error {
			return nil
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuerierFrom_FallsBackWithoutTransaction(t *testing.T) {
	db, _ := newMockDB(t)
	q := QuerierFrom(context.Background(), db)
	assert.Equal(t, Querier(db), q)
}
