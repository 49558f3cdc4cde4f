package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/compquiz/internal/config"
	"github.com/verte-zerg/compquiz/internal/levels"
	"github.com/verte-zerg/compquiz/internal/model"
)

func ptr[T any](v T) *T {
	return &v
}

func TestResolveConfigPrecedence(t *testing.T) {
	t.Setenv(config.EnvAPIURL, "http://env:5000")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvLogFile, "")

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--retries", "5"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	fileCfg := config.FileConfig{
		Client: config.ClientConfig{
			APIURL:         ptr("http://file:5000"),
			TimeoutSeconds: ptr(3),
			Retries:        ptr(1),
		},
		Timed: config.TimedConfig{TimeLimit: ptr(60), Levels: []int{2, 4}},
		Log:   config.LogConfig{Level: ptr("debug")},
	}
	cfg, err := resolveConfig(cmd, fileCfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.APIURL != "http://env:5000" {
		t.Fatalf("expected env api url, got %q", cfg.APIURL)
	}
	if cfg.Retries != 5 {
		t.Fatalf("expected flag retries, got %d", cfg.Retries)
	}
	if cfg.Timeout != 3*time.Second || cfg.TimeLimit != 60 || cfg.LogLevel != "debug" {
		t.Fatalf("expected file values, got %+v", cfg)
	}
	if cfg.Levels != levels.Of(2, 4) {
		t.Fatalf("expected levels 2,4, got %s", cfg.Levels)
	}
}

func TestResolveConfigFlagBeatsEnv(t *testing.T) {
	t.Setenv(config.EnvAPIURL, "http://env:5000")
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--api-url", "http://flag:5000", "--levels", "6"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := resolveConfig(cmd, config.FileConfig{Timed: config.TimedConfig{Levels: []int{1}}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.APIURL != "http://flag:5000" {
		t.Fatalf("expected flag api url, got %q", cfg.APIURL)
	}
	if cfg.Levels != levels.Of(6) {
		t.Fatalf("expected level 6, got %s", cfg.Levels)
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvLogFile, "")
	cmd := newRootCmd()
	cfg, err := resolveConfig(cmd, config.FileConfig{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.APIURL != defaultAPIURL || cfg.TimeLimit != model.DefaultTimeLimit || cfg.Levels != levels.All() {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Timeout != defaultTimeout*time.Second || cfg.Retries != defaultRetries {
		t.Fatalf("unexpected client defaults %+v", cfg)
	}
}

func TestResolveConfigRejectsBadLevels(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--levels", "1,9"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := resolveConfig(cmd, config.FileConfig{}); err == nil || !strings.Contains(err.Error(), "--levels") {
		t.Fatalf("expected levels error, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{
		APIURL:    defaultAPIURL,
		TimeLimit: 120,
		Levels:    levels.All(),
		Timeout:   time.Second,
	}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*model.Config)
	}{
		{"empty url", func(c *model.Config) { c.APIURL = " " }},
		{"short limit", func(c *model.Config) { c.TimeLimit = 5 }},
		{"long limit", func(c *model.Config) { c.TimeLimit = 601 }},
		{"no levels", func(c *model.Config) { c.Levels = levels.None() }},
		{"zero timeout", func(c *model.Config) { c.Timeout = 0 }},
		{"negative retries", func(c *model.Config) { c.Retries = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := validateConfig(cfg); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Client.APIURL != nil || cfg.Timed.TimeLimit != nil {
		t.Fatalf("expected commented template, got %+v", cfg)
	}
}

func TestPrintQuestion(t *testing.T) {
	var buf bytes.Buffer
	q := model.Question{
		ID:      "abc",
		Level:   2,
		Prompt:  "Create a list of the square of each number from 'nums'",
		Context: []model.ContextEntry{{Name: "nums", Value: "[1, 2, 3]"}},
	}
	if err := printQuestion(&buf, q, 30); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Level 2  (id abc)", "Context:", "  nums = [1, 2, 3]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasSuffix(line, " ") {
			t.Fatalf("unexpected trailing space in %q", line)
		}
	}
}

func TestPrintVerdict(t *testing.T) {
	tests := []struct {
		verdict model.Verdict
		want    string
	}{
		{model.Verdict{Correct: true}, "Correct!\n"},
		{model.Verdict{Expected: "[1, 4]", UserResult: "[1]"}, "Incorrect\nExpected: [1, 4]\nGot:      [1]\n"},
		{model.Verdict{Error: "invalid syntax"}, "Error\ninvalid syntax\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := printVerdict(&buf, tt.verdict, 80); err != nil {
			t.Fatalf("print: %v", err)
		}
		if buf.String() != tt.want {
			t.Fatalf("got %q want %q", buf.String(), tt.want)
		}
	}
}
