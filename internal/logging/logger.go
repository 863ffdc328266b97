package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/homewire/homewire-go/internal/config"
)

// ServiceName is attached to every record.
const ServiceName = "homewire-switch"

// New creates a logger writing to the configured output.
func New(cfg config.LoggingConfig, version string) *slog.Logger {
	return NewWithWriter(cfg, version, Output(cfg))
}

// Output returns the configured destination: stdout, or stderr otherwise.
func Output(cfg config.LoggingConfig) io.Writer {
	if strings.ToLower(cfg.Output) == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(cfg config.LoggingConfig, version string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", ServiceName),
		slog.String("version", version),
	})
	return slog.New(handler)
}

// ParseLevel converts a level name to slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
