package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/ideaboard/internal/flagx"
)

// parseFlags populates Config from command-line flags. Only the flags below
// are picked out of args, so other components may define their own.
//
//	-u string   database URL (libsql://, http(s):// or bare host)
//	-k string   database bearer token
//	-b string   backend: libsql, sql or local
//	-d string   DSN for the sql backend
//	-r string   driver for the sql backend: pgx or sqlite
//	-s string   local store file
//	-t int      request timeout in seconds (0 = none)
//	-debug      verbose logging and write verification
func parseFlags(cfg *Config, args []string) {
	filtered := flagx.FilterArgs(args,
		[]string{"-u", "-k", "-b", "-d", "-r", "-s", "-t"},
		"-debug", "--debug")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseURL, "u", cfg.DatabaseURL, "database url")
	fs.StringVar(&cfg.DatabaseToken, "k", cfg.DatabaseToken, "database token")
	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "backend: libsql, sql or local")
	fs.StringVar(&cfg.SQLDSN, "d", cfg.SQLDSN, "sql backend dsn")
	fs.StringVar(&cfg.SQLDriver, "r", cfg.SQLDriver, "sql backend driver: pgx or sqlite")
	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "local store file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "debug mode")

	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
