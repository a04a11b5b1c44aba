package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestLogger_LevelAndFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log := New(Config{Level: "WARN", Format: "json", OutputPath: path})

	log.Info("dropped")
	log.WithFields(map[string]interface{}{"branch": "kandy"}).With("kind", "units").Warn("kept")

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0]["message"] != "kept" || lines[0]["branch"] != "kandy" || lines[0]["kind"] != "units" || lines[0]["level"] != "warn" {
		t.Errorf("unexpected entry %v", lines[0])
	}
}

func TestLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log := New(Config{Level: "verbose", OutputPath: path})

	log.Debug("dropped")
	log.Info("kept")

	if lines := readLines(t, path); len(lines) != 1 || lines[0]["message"] != "kept" {
		t.Errorf("unexpected lines %v", lines)
	}
}
