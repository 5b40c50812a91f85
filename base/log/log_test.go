package log

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want Severity
	}{
		{"trace", TraceLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warning", WarningLevel},
		{"error", ErrorLevel},
		{"critical", CriticalLevel},
		{"nope", 0},
		{"", 0},
		{"0", 0},
		{"-2", 0},
		{"1", DebugLevel},
		{"2", TraceLevel},
		{"99", TraceLevel},
	}
	for _, tc := range testCases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSeverityMapping(t *testing.T) {
	t.Parallel()

	if TraceLevel.toSLogLevel() != slog.LevelDebug {
		t.Error("trace should map to slog debug")
	}
	if CriticalLevel.toSLogLevel() != slog.LevelError {
		t.Error("critical should map to slog error")
	}
	if InfoLevel.Name() != "info" {
		t.Errorf("unexpected level name: %s", InfoLevel.Name())
	}
}

func TestStart(t *testing.T) { //nolint:paralleltest
	if err := Start(DebugLevel, true); err != nil {
		t.Fatal(err)
	}
	// Second start is a no-op.
	if err := Start(ErrorLevel, true); err != nil {
		t.Fatal(err)
	}
	slog.Debug("logging test message")
}
