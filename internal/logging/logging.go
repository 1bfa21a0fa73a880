// Package logging builds the command-line logger: human-readable records on
// stderr and, optionally, JSON records in a rotated log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EnvLogFile names the environment variable holding a log file path.
const EnvLogFile = "EDIST_LOG_FILE"

// Options controls where and how much is logged.
type Options struct {
	Stderr  io.Writer
	Verbose bool
	// File enables JSON logging to a rotated file. Falls back to
	// EDIST_LOG_FILE when empty.
	File string
}

// Logger is a slog logger that owns its log file.
type Logger struct {
	*slog.Logger
	LogFile string
	file    *lumberjack.Logger
}

// New creates a logger. Stderr receives warnings unless Verbose is set.
func New(opts Options) *Logger {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlers := []slog.Handler{slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})}

	l := &Logger{}
	path := strings.TrimSpace(opts.File)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvLogFile))
	}
	if path != "" {
		l.file = &lumberjack.Logger{
			Filename:   filepath.Clean(path),
			MaxSize:    8, // MB
			MaxBackups: 2,
			MaxAge:     28,
		}
		l.LogFile = l.file.Filename
		handlers = append(handlers, slog.NewJSONHandler(l.file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	l.Logger = slog.New(slog.NewMultiHandler(handlers...))

	if l.file != nil {
		attrs := []any{
			slog.String("GOARCH", runtime.GOARCH),
			slog.String("GOOS", runtime.GOOS),
		}
		if bi, ok := debug.ReadBuildInfo(); ok {
			attrs = append(attrs, slog.String("go_version", bi.GoVersion), slog.String("module", bi.Main.Path))
		}
		l.Debug("logging started", attrs...)
	}
	return l
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
