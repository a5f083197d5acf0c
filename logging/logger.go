// Package logging provides the line format used by every ventas component.
//
// Format: 2026-01-06T14:05:52Z [ventas] LEVEL message key=value...
//
// Usage:
//
//	// Initialize once at startup
//	logging.Init("ventas", logging.ParseLevel(cfg.LogLevel))
//
//	// Then use slog directly throughout the codebase
//	slog.Info("Month aggregated", "month", "Enero", "approved", 42)
//	slog.Error("Error processing month", "month", "Marzo", "error", err)
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const timeFormat = "2006-01-02T15:04:05Z"

// LineHandler implements slog.Handler writing one plain text line per record
type LineHandler struct {
	source string
	level  slog.Leveler
	mu     *sync.Mutex
	writer io.Writer
	attrs  []slog.Attr
	prefix string // dotted group path applied to record attrs
}

// NewHandler creates a handler writing to w for records at or above level
func NewHandler(source string, w io.Writer, level slog.Leveler) *LineHandler {
	return &LineHandler{
		source: source,
		level:  level,
		mu:     &sync.Mutex{},
		writer: w,
	}
}

// Enabled reports whether the handler handles records at the given level
func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the log record
func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder
	buf.WriteString(r.Time.UTC().Format(timeFormat))
	buf.WriteString(" [")
	buf.WriteString(h.source)
	buf.WriteString("] ")
	buf.WriteString(r.Level.String())
	buf.WriteString(" ")
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, buf.String())
	return err
}

// WithAttrs returns a new handler with the given attributes
func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

// WithGroup returns a new handler qualifying later attribute keys with name
func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func writeAttr(buf *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(buf, group, ga)
		}
		return
	}

	buf.WriteString(" ")
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteString("=")
	buf.WriteString(formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().UTC().Format(timeFormat)
	case slog.KindDuration:
		s = v.Duration().String()
	default:
		s = fmt.Sprintf("%v", v.Any())
	}
	if s == "" || strings.ContainsAny(s, " =\"\n") {
		return strconv.Quote(s)
	}
	return s
}

// ParseLevel maps DEBUG, INFO, WARN/WARNING and ERROR (any case) to a
// slog level; anything else is INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger at the level named by LOG_LEVEL
func NewLogger(source string, w io.Writer) *slog.Logger {
	return NewLoggerWithLevel(source, w, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// NewLoggerWithLevel creates a logger with the given level
func NewLoggerWithLevel(source string, w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(NewHandler(source, w, level))
}

// Init installs a stdout logger for source as the slog default
func Init(source string, level slog.Leveler) {
	InitWithWriter(source, os.Stdout, level)
}

// InitWithWriter installs a logger writing to w as the slog default (for testing)
func InitWithWriter(source string, w io.Writer, level slog.Leveler) {
	slog.SetDefault(NewLoggerWithLevel(source, w, level))
}

// Since is a convenience attribute for elapsed time
func Since(start time.Time) slog.Attr {
	return slog.Duration("duration", time.Since(start).Round(time.Millisecond))
}
