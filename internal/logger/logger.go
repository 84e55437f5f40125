// Package logger provides the process-wide structured logger.
//
// It is a thin wrapper over log/slog: commands configure it once at startup
// and the rest of the code logs through the package-level helpers, so the
// pipeline never carries a logger handle around.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

var (
	mu      sync.RWMutex
	slogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	level   = slog.LevelInfo
)

// ParseLevel maps a level name to a slog.Level, defaulting to Info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init configures the package logger. Output goes to stderr so reports on
// stdout stay machine-readable.
func Init(cfg Config) {
	InitWithWriter(os.Stderr, cfg)
}

// InitWithWriter is Init with an explicit sink, used by tests.
func InitWithWriter(w io.Writer, cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	level = ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slogger = slog.New(handler)
}

// DebugEnabled reports whether debug-level events will be emitted. Callers
// use it to skip building expensive group dumps.
func DebugEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return level <= slog.LevelDebug
}

// Debug logs at debug level
func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

// Info logs at info level
func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

// Error logs at error level
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}
