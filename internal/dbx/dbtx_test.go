package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openAccounts(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE accounts (id TEXT PRIMARY KEY, username TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)
	return db
}

func accountCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&n))
	return n
}

func insertAccount(ctx context.Context, tx DBTX, id, name string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO accounts (id, username) VALUES (?, ?)`, id, name)
	return err
}

func TestWithTx_Commit(t *testing.T) {
	db := openAccounts(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		if err := insertAccount(ctx, tx, "1", "alice"); err != nil {
			return err
		}
		return insertAccount(ctx, tx, "2", "bob")
	})

	require.NoError(t, err)
	assert.Equal(t, 2, accountCount(t, db))
}

func TestWithTx_ErrorRollsBackEveryStatement(t *testing.T) {
	db := openAccounts(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insertAccount(ctx, tx, "1", "alice"))
		// duplicate username
		return insertAccount(ctx, tx, "2", "alice")
	})

	require.Error(t, err)
	assert.Equal(t, 0, accountCount(t, db))
}

func TestWithTx_PanicRollsBackAndPropagates(t *testing.T) {
	db := openAccounts(t)

	assert.PanicsWithValue(t, "handler crashed", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, insertAccount(ctx, tx, "1", "alice"))
			panic("handler crashed")
		})
	})
	assert.Equal(t, 0, accountCount(t, db))
}

func TestWithTx_BeginFails(t *testing.T) {
	db := openAccounts(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(context.Context, DBTX) error {
		called = true
		return nil
	})

	require.ErrorContains(t, err, "begin tx")
	assert.False(t, called)
}

func TestWithTx_CommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	err = WithTx(context.Background(), db, nil, func(context.Context, DBTX) error { return nil })

	require.ErrorContains(t, err, "commit: connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackFailureIsJoined(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	fnErr := errors.New("user not found")
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("connection reset"))

	err = WithTx(context.Background(), db, nil, func(context.Context, DBTX) error { return fnErr })

	assert.ErrorIs(t, err, fnErr)
	assert.ErrorContains(t, err, "rollback: connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}
