package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "info", expected: slog.LevelInfo},
		{input: "warn", expected: slog.LevelWarn},
		{input: "warning", expected: slog.LevelWarn},
		{input: "ERROR", expected: slog.LevelError},
		{input: "Info", expected: slog.LevelInfo},
		{input: "", expected: slog.LevelInfo},
		{input: "xyzzy", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInitLoggerJSON(t *testing.T) {
	var buf bytes.Buffer

	logger := InitLogger(LogConfig{
		Output:  &buf,
		Level:   "info",
		Format:  "json",
		Service: "card-lifecycle",
	})

	logger.Debug("hidden")
	logger.Info("card activated", slog.String("card_id", "abc"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one record above debug level, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", lines[0], err)
	}
	if record["msg"] != "card activated" {
		t.Errorf("unexpected msg: %v", record["msg"])
	}
	if record["service"] != "card-lifecycle" {
		t.Errorf("expected service attribute, got %v", record["service"])
	}
	if record["card_id"] != "abc" {
		t.Errorf("expected card_id attribute, got %v", record["card_id"])
	}
}

func TestInitLoggerText(t *testing.T) {
	var buf bytes.Buffer

	logger := InitLogger(LogConfig{Output: &buf, Level: "warn"})
	logger.Info("suppressed")
	logger.Warn("card deleted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Errorf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=\"card deleted\"") {
		t.Errorf("expected text formatted warn record, got %q", out)
	}
}

func TestInitLoggerSetsDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Output: &buf, Format: "json"})

	if logger.Handler() != slog.Default().Handler() {
		t.Error("InitLogger did not set the default logger")
	}
}
