package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables, in lookup order where several are listed.
var (
	envURL     = []string{"IDEABOARD_DB_URL", "TURSO_URL", "EXPO_PUBLIC_TURSO_URL"}
	envToken   = []string{"IDEABOARD_DB_TOKEN", "TURSO_TOKEN", "EXPO_PUBLIC_TURSO_TOKEN"}
	envBackend = "IDEABOARD_BACKEND"
	envDriver  = "IDEABOARD_SQL_DRIVER"
	envDSN     = "IDEABOARD_SQL_DSN"
	envStore   = "IDEABOARD_STORE"
	envDebug   = "IDEABOARD_DEBUG"
)

type lookupFunc func(key string) (string, bool)

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// loadDotEnv reads .env from the working directory when present. Variables
// already set in the process environment win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		panic(err)
	}
}

// parseEnv overlays cfg with non-empty environment values.
func parseEnv(cfg *Config, lookup lookupFunc) {
	first := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}

	if v, ok := first(envURL...); ok {
		cfg.DatabaseURL = v
	}
	if v, ok := first(envToken...); ok {
		cfg.DatabaseToken = v
	}
	if v, ok := first(envBackend); ok {
		cfg.Backend = strings.ToLower(v)
	}
	if v, ok := first(envDriver); ok {
		cfg.SQLDriver = v
	}
	if v, ok := first(envDSN); ok {
		cfg.SQLDSN = v
	}
	if v, ok := first(envStore); ok {
		cfg.StorePath = v
	}
	if v, ok := first(envDebug); ok {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		cfg.Debug = debug
	}
}
