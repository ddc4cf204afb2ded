package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/ideaboard/internal/flagx"
	"github.com/dmitrijs2005/ideaboard/internal/timex"
)

// JsonConfig is the on-disk form of Config. Pointer fields distinguish
// "absent" from zero values so a file can set only some keys.
type JsonConfig struct {
	DatabaseURL    *string         `json:"database_url"`
	DatabaseToken  *string         `json:"database_token"`
	Backend        *string         `json:"backend"`
	SQLDriver      *string         `json:"sql_driver"`
	SQLDSN         *string         `json:"sql_dsn"`
	StorePath      *string         `json:"store_path"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	Debug          *bool           `json:"debug"`
}

// parseJson overlays cfg with the JSON file named by -c/-config, if any.
// Read and decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DatabaseURL, jc.DatabaseURL)
	setString(&cfg.DatabaseToken, jc.DatabaseToken)
	setString(&cfg.Backend, jc.Backend)
	setString(&cfg.SQLDriver, jc.SQLDriver)
	setString(&cfg.SQLDSN, jc.SQLDSN)
	setString(&cfg.StorePath, jc.StorePath)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.Debug != nil {
		cfg.Debug = *jc.Debug
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
