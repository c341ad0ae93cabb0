package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cleanup, err := Init("", tt.level)
			if err != nil {
				t.Fatalf("Init() failed: %v", err)
			}
			defer cleanup()
			if zerolog.GlobalLevel() != tt.want {
				t.Errorf("expected level %v, got %v", tt.want, zerolog.GlobalLevel())
			}
		})
	}
}

func TestRotatedFileInNestedDir(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "var", "log", "notifyd.log")
	cleanup, err := InitWithRotation(logPath, "debug", Rotation{MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1})
	if err != nil {
		t.Fatalf("InitWithRotation() failed: %v", err)
	}
	Get().Info().Str("event", "order_confirmation").Msg("dispatched")
	cleanup()

	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(b), "order_confirmation") || !strings.Contains(string(b), `"service":"notifyd"`) {
		t.Fatalf("expected tagged log line in file, got %q", string(b))
	}
}

func TestDispatchLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	old := Log
	Log = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { Log = old })

	l := Dispatch("order_note", "staff-1")
	l.Warn().Str("channel", "sms").Msg("sms notification failed")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	if line["event"] != "order_note" || line["recipient"] != "staff-1" || line["channel"] != "sms" {
		t.Fatalf("unexpected fields: %v", line)
	}
}
