package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Client.APIURL != nil || cfg.Timed.TimeLimit != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[client]
api-url = "http://localhost:5000"
timeout = 10
retries = 3

[timed]
time-limit = 90
levels = [1, 3]

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Client.APIURL == nil || *cfg.Client.APIURL != "http://localhost:5000" {
		t.Fatalf("unexpected api url %v", cfg.Client.APIURL)
	}
	if cfg.Client.TimeoutSeconds == nil || *cfg.Client.TimeoutSeconds != 10 {
		t.Fatalf("unexpected timeout %v", cfg.Client.TimeoutSeconds)
	}
	if cfg.Client.Retries == nil || *cfg.Client.Retries != 3 {
		t.Fatalf("unexpected retries %v", cfg.Client.Retries)
	}
	if cfg.Timed.TimeLimit == nil || *cfg.Timed.TimeLimit != 90 {
		t.Fatalf("unexpected time limit %v", cfg.Timed.TimeLimit)
	}
	if len(cfg.Timed.Levels) != 2 || cfg.Timed.Levels[0] != 1 || cfg.Timed.Levels[1] != 3 {
		t.Fatalf("unexpected levels %v", cfg.Timed.Levels)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" || cfg.Log.File != nil {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[client]\napi_url = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestLookupEnv(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://example.test")
	if v := LookupEnv(EnvAPIURL); v == nil || *v != "http://example.test" {
		t.Fatalf("unexpected env value %v", v)
	}
	t.Setenv(EnvLogLevel, "")
	if v := LookupEnv(EnvLogLevel); v != nil {
		t.Fatalf("expected nil for empty env, got %q", *v)
	}
}

func TestDefaultPathsHonorXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)
	if got := DefaultConfigPath(); got != filepath.Join(dir, "compquiz", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join(dir, "compquiz", "compquiz.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
