// Package logger holds the process-wide structured logger. Library packages
// log through L at Debug level; the CLI decides where, if anywhere, it goes.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is the global logger instance. It discards all output until Init is called.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	logPrefix     = "leocfg-"
	logSuffix     = ".log"
	retentionDays = 30
	dateLayout    = "2006-01-02"
)

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Writer  io.Writer  // Destination when LogDir is empty. Default: os.Stderr
	LogDir  string     // If set, log to a dated file in this directory instead of Writer
	Level   slog.Level // Minimum log level
	JSON    bool       // Emit JSON records instead of key=value text
}

// Init configures logging and returns a close function for any file it opened.
func Init(opts Options) (func() error, error) {
	noop := func() error { return nil }
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return noop, nil
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	closeFn := noop

	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
			return noop, err
		}

		// Best effort; a stale log never blocks a run.
		cleanOldLogs(opts.LogDir, time.Now())

		name := filepath.Join(opts.LogDir, logPrefix+time.Now().Format(dateLayout)+logSuffix)
		f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return noop, err
		}
		w = f
		closeFn = f.Close
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(w, hopts))
	} else {
		L = slog.New(slog.NewTextHandler(w, hopts))
	}
	return closeFn, nil
}

// cleanOldLogs removes log files older than retentionDays.
func cleanOldLogs(logDir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}

		// leocfg-2024-01-05.log
		dateStr := strings.TrimPrefix(strings.TrimSuffix(name, logSuffix), logPrefix)
		logDate, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			continue
		}

		if logDate.Before(cutoff) {
			os.Remove(filepath.Join(logDir, name))
		}
	}
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }
