// Package schema bootstraps the remote database tables.
package schema

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ideaboard/internal/dbx"
)

// Statements is the ordered, idempotent DDL applied by Apply. Column types
// are kept to TEXT/INTEGER so the same list runs on libSQL, SQLite and
// Postgres.
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id            TEXT PRIMARY KEY,
  username      TEXT UNIQUE NOT NULL,
  password_algo TEXT NOT NULL DEFAULT 'scrypt',
  password_salt TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at    TEXT NOT NULL,
  updated_at    TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS sessions (
  token        TEXT PRIMARY KEY,
  user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at   TEXT NOT NULL,
  expires_at   TEXT NOT NULL,
  device_label TEXT
)`,
	`CREATE TABLE IF NOT EXISTS posts (
  id         TEXT PRIMARY KEY,
  author_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  content    TEXT NOT NULL,
  created_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS post_marks (
  post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
  user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  mark_type  TEXT NOT NULL,
  created_at TEXT NOT NULL,
  PRIMARY KEY (post_id, user_id, mark_type)
)`,
	`CREATE INDEX IF NOT EXISTS post_marks_user_created ON post_marks (user_id, created_at)`,
}

// Apply runs every statement in order. It is safe to call repeatedly.
func Apply(ctx context.Context, exec dbx.Executor) error {
	for i, stmt := range Statements {
		if _, err := exec.Execute(ctx, stmt, nil); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
