// Package log provides category-tagged structured logging for geosynth.
//
// Messages go through a process-wide log/slog logger that writes text
// records to stderr at warn level until Init is called. Every record
// carries a category attribute so that download, archive and codec chatter
// can be filtered apart.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Category groups related log messages.
type Category string

const (
	CatRegistry Category = "registry" // kind registration and lookup
	CatCodec    Category = "codec"    // file encode/decode
	CatDownload Category = "download" // archive retrieval
	CatArchive  Category = "archive"  // archive extraction
	CatDataset  Category = "dataset"  // dataset and scene listing
	CatConfig   Category = "config"   // configuration loading
	CatCLI      Category = "cli"      // command line front end
)

var (
	level   = new(slog.LevelVar)
	current atomic.Pointer[slog.Logger]
)

func init() {
	level.Set(slog.LevelWarn)
	current.Store(newLogger(os.Stderr))
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Init redirects logging to w at the given minimum level.
func Init(w io.Writer, minLevel slog.Level) {
	level.Set(minLevel)
	current.Store(newLogger(w))
}

// SetLevel changes the minimum level without touching the destination.
func SetLevel(minLevel slog.Level) {
	level.Set(minLevel)
}

// Level returns the current minimum level.
func Level() slog.Level {
	return level.Level()
}

// Logger returns the underlying slog logger.
func Logger() *slog.Logger {
	return current.Load()
}

// LevelFromFlags maps command line verbosity to a level: one --verbose
// gives info, two or more give debug, --quiet gives error and nothing
// gives warn. Verbosity wins over quiet.
func LevelFromFlags(verbose int, quiet bool) slog.Level {
	switch {
	case verbose >= 2:
		return slog.LevelDebug
	case verbose == 1:
		return slog.LevelInfo
	case quiet:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// ParseLevel parses debug, info, warn or error (case insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q", s)
	}

	return l, nil
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(slog.LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(slog.LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(slog.LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(slog.LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value attached.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(slog.LevelError, cat, msg, fields...)
}

// Enabled reports whether messages at l would be written.
func Enabled(l slog.Level) bool {
	return l >= level.Level()
}

func write(l slog.Level, cat Category, msg string, fields ...any) {
	if !Enabled(l) {
		return
	}
	args := make([]any, 0, len(fields)+2)
	args = append(args, "category", string(cat))
	args = append(args, fields...)
	current.Load().Log(context.Background(), l, msg, args...)
}
