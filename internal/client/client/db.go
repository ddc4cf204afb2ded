package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/ideaboard/internal/client/migrations"
	"github.com/dmitrijs2005/ideaboard/internal/filex"

	_ "modernc.org/sqlite"
)

// RunMigrations applies the embedded goose migrations of the local store.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the local SQLite store at path and
// migrates it. Missing parent directories are created.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	path, err := filex.EnsureParentDir(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return db, nil
}
