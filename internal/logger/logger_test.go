package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer: &buf,
		Format: "json",
		Level:  slog.LevelInfo,
	})

	log.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("expected JSON output with msg, got: %s", out)
	}
	if !strings.Contains(out, `"key":"value"`) {
		t.Errorf("expected JSON output with attr, got: %s", out)
	}
}

func TestNew_ProductionDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer:      &buf,
		Environment: "production",
	})

	log.Info("prod message")

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected JSON in production, got: %s", buf.String())
	}
}

func TestPrettyHandler_IncludesMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer: &buf,
		Format: "pretty",
	})

	log.Info("sync finished", "user_id", "usr-1", "count", 42)

	out := buf.String()
	if !strings.Contains(out, "sync finished") {
		t.Errorf("missing message: %s", out)
	}
	if !strings.Contains(out, "user_id=usr-1") {
		t.Errorf("missing attr: %s", out)
	}
	if !strings.Contains(out, "count=42") {
		t.Errorf("missing attr: %s", out)
	}
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer: &buf,
		Format: "pretty",
		Level:  slog.LevelWarn,
	})

	log.Debug("hidden")
	log.Info("also hidden")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug/info should be filtered: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn should pass: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json"})

	log.WithError(errTest).Error("operation failed")

	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected error attr, got: %s", buf.String())
	}
}

var errTest = &testError{}

type testError struct{}

func (e *testError) Error() string { return "boom" }
