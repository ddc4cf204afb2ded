// Package config loads runtime configuration for the IdeaBoard CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment, after loading ./.env if it exists (github.com/joho/godotenv).
//  4. Command-line flags.
//
// # Environment
//
//	IDEABOARD_DB_URL     database URL; falls back to TURSO_URL
//	IDEABOARD_DB_TOKEN   bearer token; falls back to TURSO_TOKEN
//	IDEABOARD_BACKEND    libsql | sql | local
//	IDEABOARD_SQL_DRIVER pgx | sqlite
//	IDEABOARD_SQL_DSN    DSN for the sql backend
//	IDEABOARD_STORE      local store file
//	IDEABOARD_DEBUG      boolean
//
// # JSON schema
//
// Durations accept "30s" or integer nanoseconds (timex.Duration):
//
//	{
//	  "database_url": "libsql://ideas-org.turso.io",
//	  "database_token": "...",
//	  "backend": "libsql",
//	  "store_path": "ideaboard.db",
//	  "request_timeout": "15s",
//	  "debug": false
//	}
//
// A missing URL or token is not rejected here; the database client fails
// closed with common.ErrConfiguration on first use.
package config
