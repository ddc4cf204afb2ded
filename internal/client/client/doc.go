// Package client wires the IdeaBoard client together.
//
// # Overview
//
// Open prepares the local SQLite store (InitDatabase, RunMigrations with
// embedded goose migrations), builds the remote executor chosen by the
// configuration and connects the services on top:
//
//   - libsql: accounts, sessions and the board go through the libSQL HTTP API.
//   - sql: the same tables are reached directly through database/sql (pgx or
//     sqlite).
//   - local: accounts still use libSQL, the board lives in the local store.
//
// Close releases the local store and any SQL connection pool.
package client
