// Package log bootstraps the process-wide logger.
//
// The daemon logs either to stdout or to the kernel log (/dev/kmsg),
// as it usually runs long before syslog is available. All packages log
// through log/slog; this package only configures the default handler.
package log

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/tevino/abool"
)

// Severity describes a log level.
type Severity uint32

// Log Levels.
const (
	TraceLevel    Severity = 1
	DebugLevel    Severity = 2
	InfoLevel     Severity = 3
	WarningLevel  Severity = 4
	ErrorLevel    Severity = 5
	CriticalLevel Severity = 6
)

const timeFormat = "060102 15:04:05.000"

var started = abool.NewBool(false)

func (s Severity) toSLogLevel() slog.Level {
	switch s {
	case TraceLevel, DebugLevel:
		return slog.LevelDebug
	case InfoLevel:
		return slog.LevelInfo
	case WarningLevel:
		return slog.LevelWarn
	case ErrorLevel, CriticalLevel:
		return slog.LevelError
	}
	return slog.LevelWarn
}

// Name returns the name of the log level.
func (s Severity) Name() string {
	switch s {
	case TraceLevel:
		return "trace"
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarningLevel:
		return "warning"
	case ErrorLevel:
		return "error"
	case CriticalLevel:
		return "critical"
	default:
		return "none"
	}
}

// ParseLevel returns the level severity of a log level name or numeric
// verbosity. Returns 0 for unknown values.
func ParseLevel(level string) Severity {
	switch strings.ToLower(level) {
	case "trace":
		return TraceLevel
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warning":
		return WarningLevel
	case "error":
		return ErrorLevel
	case "critical":
		return CriticalLevel
	}

	// Numeric verbosity as used by -d: higher means chattier.
	if n, err := strconv.Atoi(level); err == nil && n > 0 {
		if n == 1 {
			return DebugLevel
		}
		return TraceLevel
	}

	return 0
}

// Start configures the default slog logger. Must be called before any
// module is created, so that all managers inherit the right handler.
func Start(level Severity, logToStdout bool) error {
	if !started.SetToIf(false, true) {
		return nil
	}

	writer := newWriter(logToStdout)

	handler := tint.NewHandler(writer, &tint.Options{
		Level:      level.toSLogLevel(),
		TimeFormat: timeFormat,
		NoColor:    !writer.IsStdout(),
	})

	slog.SetDefault(slog.New(handler))
	slog.SetLogLoggerLevel(level.toSLogLevel())
	return nil
}
