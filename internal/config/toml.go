// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Environment variables consulted between the config file and CLI flags.
const (
	EnvAPIURL   = "COMPQUIZ_API_URL"
	EnvLogLevel = "COMPQUIZ_LOG_LEVEL"
	EnvLogFile  = "COMPQUIZ_LOG_FILE"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Client ClientConfig `toml:"client"`
	Timed  TimedConfig  `toml:"timed"`
	Log    LogConfig    `toml:"log"`
}

// ClientConfig maps service connection settings.
type ClientConfig struct {
	APIURL         *string `toml:"api-url"`
	TimeoutSeconds *int    `toml:"timeout"`
	Retries        *int    `toml:"retries"`
}

// TimedConfig maps the default timed mode setup.
type TimedConfig struct {
	TimeLimit *int  `toml:"time-limit"`
	Levels    []int `toml:"levels"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// LookupEnv returns a pointer to a non-empty environment value, or nil.
func LookupEnv(name string) *string {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	return &v
}
