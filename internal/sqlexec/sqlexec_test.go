package sqlexec

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/ideaboard/internal/common"
	"github.com/dmitrijs2005/ideaboard/internal/dbx"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, "file:sqlexec_"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	require.ErrorIs(t, err, common.ErrConfiguration)

	_, err = Open(context.Background(), DriverSQLite, "")
	require.ErrorIs(t, err, common.ErrConfiguration)
}

func TestExecute_SQLiteRoundTrip(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	_, err := db.Execute(ctx, `CREATE TABLE items (id TEXT PRIMARY KEY, n INTEGER, f REAL, note TEXT)`, nil)
	require.NoError(t, err)

	res, err := db.Execute(ctx, `INSERT INTO items (id, n, f, note) VALUES (?, ?, ?, ?)`, []any{"a", 3, 0.5, nil})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.AffectedRows)
	assert.Empty(t, res.Rows)

	res, err = db.Execute(ctx, `SELECT id, n, f, note FROM items WHERE id = ?`, []any{"a"})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, dbx.Row{"id": "a", "n": int64(3), "f": 0.5, "note": nil}, res.First())

	res, err = db.Execute(ctx, `SELECT id FROM items WHERE id = ?`, []any{"missing"})
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestExecute_RebindsForPgx(t *testing.T) {
	mdb, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer mdb.Close()

	db := New(sqlx.NewDb(mdb, DriverPgx))

	mock.ExpectQuery(`SELECT id FROM users WHERE username = $1 AND id <> $2`).
		WithArgs("ann", "x").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow([]byte("u1")))

	res, err := db.Execute(context.Background(), `SELECT id FROM users WHERE username = ? AND id <> ?`, []any{"ann", "x"})
	require.NoError(t, err)
	assert.Equal(t, "u1", res.First().String("id"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_DriverErrors(t *testing.T) {
	mdb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mdb.Close()

	db := New(sqlx.NewDb(mdb, "sqlmock"))
	boom := errors.New("boom")

	mock.ExpectExec(`DELETE FROM sessions`).WillReturnError(boom)
	_, err = db.Execute(context.Background(), `DELETE FROM sessions WHERE token = ?`, []any{"t"})
	require.ErrorIs(t, err, boom)

	mock.ExpectQuery(`SELECT`).WillReturnError(boom)
	_, err = db.Execute(context.Background(), `SELECT 1`, nil)
	require.ErrorIs(t, err, boom)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalize(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Nil(t, normalize(nil))
	assert.Equal(t, int64(5), normalize(int32(5)))
	assert.Equal(t, int64(5), normalize(5))
	assert.Equal(t, float64(1.5), normalize(float32(1.5)))
	assert.Equal(t, "txt", normalize([]byte("txt")))
	assert.Equal(t, true, normalize(true))
	assert.Equal(t, "2024-01-02T03:04:05.000Z", normalize(ts))
}
