package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "compquiz.log")
	logger, closer, err := Setup("info", path)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	logger.Debug().Msg("hidden")
	logger.Info().Str("mode", "play").Msg("visible")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if entry["message"] != "visible" || entry["mode"] != "play" || entry["level"] != "info" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if _, _, err := Setup("loud", ""); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestSetupOff(t *testing.T) {
	logger, closer, err := Setup("debug", "off")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	logger.Info().Msg("dropped")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
