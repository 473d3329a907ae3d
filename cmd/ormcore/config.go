package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// config is the optional TOML file named by the root command's --config
// flag. kvdump and migrate-sequence load it when they run and fall back to
// kv_file_prefix and sequence_shards only when their --prefix or --shards
// flag is left unset; gen does not read it, and no subcommand reads
// sql_dsn, sql_dialect or max_fossil_age.
type config struct {
	KVFilePrefix  string        `toml:"kv_file_prefix"`
	SQLDSN        string        `toml:"sql_dsn"`
	SQLDialect    string        `toml:"sql_dialect"`
	MaxFossilAge  time.Duration `toml:"max_fossil_age"`
	SequenceShard int           `toml:"sequence_shards"`
}

func defaultConfig() config {
	return config{MaxFossilAge: 5 * time.Minute, SequenceShard: 1}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return config{}, fmt.Errorf("ormcore: loading config %q: %w", path, err)
	}
	return cfg, nil
}
