// Package logging builds the slog handlers used by the morpho command.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelCritical sits above slog.LevelError
const LevelCritical = slog.LevelError + 4

// ParseLevel accepts DEBUG, INFO, WARNING (or WARN), ERROR and CRITICAL, in any case
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown verbosity %q (DEBUG, INFO, WARNING, ERROR or CRITICAL)", name)
}

// Options configures New
type Options struct {
	Verbosity       slog.Level
	StderrVerbosity slog.Level
	Format          string // "text" (default) or "json"
	Stdout          io.Writer
	Stderr          io.Writer
}

// New returns a logger that writes records at or above Verbosity and below
// StderrVerbosity to Stdout, and records at or above both levels to Stderr.
func New(opts Options) *slog.Logger {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	stderrLevel := opts.StderrVerbosity
	if stderrLevel < opts.Verbosity {
		stderrLevel = opts.Verbosity
	}
	return slog.New(&splitHandler{
		low:       newHandler(opts.Format, opts.Stdout, opts.Verbosity),
		high:      newHandler(opts.Format, opts.Stderr, stderrLevel),
		threshold: stderrLevel,
	})
}

// Component returns logger annotated with a component attribute
func Component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With(slog.String("component", name))
}

func newHandler(format string, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: renameLevels}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func renameLevels(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level >= LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}

// splitHandler routes a record to low or high depending on its level
type splitHandler struct {
	low       slog.Handler
	high      slog.Handler
	threshold slog.Level
}

func (h *splitHandler) target(level slog.Level) slog.Handler {
	if level >= h.threshold {
		return h.high
	}
	return h.low
}

func (h *splitHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.target(level).Enabled(ctx, level)
}

func (h *splitHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.target(r.Level).Handle(ctx, r)
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &splitHandler{low: h.low.WithAttrs(attrs), high: h.high.WithAttrs(attrs), threshold: h.threshold}
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	return &splitHandler{low: h.low.WithGroup(name), high: h.high.WithGroup(name), threshold: h.threshold}
}
