package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
)

// Option configures the application logger.
type Option func(*options)

type options struct {
	console io.Writer
	audit   io.Writer
}

// WithConsole replaces Stderr as the human-readable destination.
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
	}
}

// WithAudit adds a JSON destination that receives every record at Info level
// or above, regardless of the console level.
func WithAudit(w io.Writer) Option {
	return func(o *options) {
		o.audit = w
	}
}

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout operator console/JSON-RPC).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level, opts ...Option) *slog.Logger {
	o := &options{console: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	console := slog.NewTextHandler(o.console, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: standardizeKeys,
	})
	if o.audit == nil {
		return slog.New(console)
	}

	audit := slog.NewJSONHandler(o.audit, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: standardizeKeys,
	})
	return slog.New(slogmulti.Fanout(console, audit))
}

// OpenAudit opens (appending) the JSON audit log file, creating parent directories.
func OpenAudit(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return f, nil
}

// ParseLevel maps a config string onto a slog level. Unknown values mean Info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func standardizeKeys(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}
