package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo)
	defer Init(slog.LevelInfo)

	slog.Debug("hidden")
	slog.Info("scan complete", "contests", 3)
	slog.With("contest", "Boston - Tampa").Warn("skipped")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "] scan complete contests=3\n") {
		t.Errorf("missing info line: %q", out)
	}
	if !strings.Contains(out, "] WARN: skipped contest=Boston - Tampa\n") {
		t.Errorf("missing warn line: %q", out)
	}
}

func TestLazyLoggerIsShared(t *testing.T) {
	prev := logger.Load()
	prevDefault := slog.Default()
	t.Cleanup(func() {
		logger.Store(prev)
		slog.SetDefault(prevDefault)
	})
	logger.Store(nil)

	var wg sync.WaitGroup
	got := make([]*slog.Logger, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = L()
		}()
	}
	wg.Wait()

	for i, l := range got {
		if l == nil || l != got[0] {
			t.Fatalf("goroutine %d got logger %p, want %p", i, l, got[0])
		}
	}
	if slog.Default() != got[0] {
		t.Error("lazy logger was not installed as the slog default")
	}
}
