package config

import (
	"time"
)

// Backend names accepted by Config.Backend.
const (
	BackendLibSQL = "libsql"
	BackendSQL    = "sql"
	BackendLocal  = "local"
)

// Config holds runtime settings for the IdeaBoard CLI.
//
// DatabaseURL/DatabaseToken address the libSQL HTTP endpoint used for
// accounts and sessions (and the board unless Backend is "local").
// SQLDriver/SQLDSN are used instead when Backend is "sql".
type Config struct {
	DatabaseURL    string
	DatabaseToken  string
	Backend        string
	SQLDriver      string
	SQLDSN         string
	StorePath      string
	RequestTimeout time.Duration
	Debug          bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Backend = BackendLibSQL
	c.SQLDriver = "sqlite"
	c.StorePath = "ideaboard.db"
	c.RequestTimeout = 0
	c.Debug = false
}

// LoadConfig constructs a Config from defaults, then overlays the JSON file,
// the environment and command-line flags. Later sources take precedence.
// Invalid input panics, like the flag and JSON loaders do.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	loadDotEnv()
	parseEnv(cfg, lookupEnv)
	parseFlags(cfg, args)
	cfg.validate()
	return cfg
}

func (c *Config) validate() {
	switch c.Backend {
	case BackendLibSQL, BackendSQL, BackendLocal:
	default:
		panic("unknown backend " + c.Backend)
	}
	if c.RequestTimeout < 0 {
		panic("request timeout must not be negative")
	}
}
