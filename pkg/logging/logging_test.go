package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		enabled  slog.Level
		disabled slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug, slog.Level(-8)},
		{"warn level", "warn", slog.LevelWarn, slog.LevelInfo},
		{"error level", "ERROR", slog.LevelError, slog.LevelWarn},
		{"default info", "", slog.LevelInfo, slog.LevelDebug},
		{"garbage falls back to info", "loud", slog.LevelInfo, slog.LevelDebug},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level)
			if !logger.Enabled(ctx, tt.enabled) {
				t.Fatalf("expected level %s to be enabled", tt.enabled)
			}
			if logger.Enabled(ctx, tt.disabled) {
				t.Fatalf("expected level %s to be disabled", tt.disabled)
			}
		})
	}
}

func TestWithKeepsLevel(t *testing.T) {
	logger := New("warn").With("component", "test")
	if logger.Logger == nil {
		t.Fatal("With returned logger without slog backing")
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("With should preserve the configured level")
	}
}
