// Package sqlexec runs statements directly through database/sql. It is the
// alternative to the libsql HTTP client for self-hosted Postgres or a local
// SQLite file, and produces the same dbx.Result values.
package sqlexec

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dmitrijs2005/ideaboard/internal/common"
	"github.com/dmitrijs2005/ideaboard/internal/dbx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported driver names.
const (
	DriverPgx    = "pgx"
	DriverSQLite = "sqlite"
)

type DB struct {
	db *sqlx.DB
}

var _ dbx.Executor = (*DB)(nil)

// Open connects to dsn with the given driver and checks the connection.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case DriverPgx, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: unsupported sql driver %q", common.ErrConfiguration, driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%w: sql dsn is not set", common.ErrConfiguration)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %w", common.ErrNetwork, driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return &DB{db: db}, nil
}

// New wraps an existing connection pool.
func New(db *sqlx.DB) *DB {
	return &DB{db: db}
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Execute rebinds '?' placeholders for the driver and runs sql. SELECT
// statements are queried, everything else is executed.
func (d *DB) Execute(ctx context.Context, sql string, params []any) (*dbx.Result, error) {
	query := d.db.Rebind(sql)

	if !dbx.WantsRows(sql) {
		res, err := d.db.ExecContext(ctx, query, params...)
		if err != nil {
			return nil, fmt.Errorf("exec: %w", err)
		}
		out := &dbx.Result{Rows: []dbx.Row{}}
		out.AffectedRows, _ = res.RowsAffected()
		if id, err := res.LastInsertId(); err == nil {
			out.LastInsertRowID = &id
		}
		return out, nil
	}

	rows, err := d.db.QueryxContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := &dbx.Result{Rows: []dbx.Row{}}
	for rows.Next() {
		m := map[string]any{}
		if err := rows.MapScan(m); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(dbx.Row, len(m))
		for k, v := range m {
			row[k] = normalize(v)
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// normalize narrows driver values to the set the libsql client produces.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, int64, float64, string, bool:
		return x
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return dbx.FormatTime(x)
	default:
		return fmt.Sprint(x)
	}
}
