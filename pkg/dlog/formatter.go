package dlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogEntry holds the data one console log line needs: slog already parses
// the record into these pieces, formatters only decide how to render them.
type LogEntry struct {
	Timestamp time.Time
	Level     slog.Level
	Message   string
	Fields    map[string]any
}

// LogFormatter renders a LogEntry into a single printable line.
type LogFormatter interface {
	Format(entry LogEntry) string
}

// levelName pads a slog level name to 5 characters so columns line up
// (DEBUG/INFO /WARN /ERROR).
func levelName(l slog.Level) string {
	return fmt.Sprintf("%-5s", l.String())
}

// ---------------------------------------------------------------------------
// TextFormatter
// ---------------------------------------------------------------------------

// TextFormatter renders log entries as plain text, for redirection to a file
// or a non-interactive CI log where ANSI escapes would just be noise:
//
//	[2026-07-31 12:00:00] INFO  dassim: run complete tta=42 stalled=false
type TextFormatter struct {
	// TimeFormat controls the timestamp layout. Defaults to
	// "2006-01-02 15:04:05" when empty.
	TimeFormat string
}

// Format produces a plain-text line for the given entry.
func (f *TextFormatter) Format(entry LogEntry) string {
	tf := f.TimeFormat
	if tf == "" {
		tf = "2006-01-02 15:04:05"
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(entry.Timestamp.Format(tf))
	b.WriteString("] ")
	b.WriteString(levelName(entry.Level))
	b.WriteString(" ")
	b.WriteString(entry.Message)
	writeFields(&b, entry.Fields)
	return b.String()
}

// ---------------------------------------------------------------------------
// ColorFormatter
// ---------------------------------------------------------------------------

// ANSI color escape codes used by ColorFormatter.
const (
	ansiReset  = "\033[0m"
	ansiGray   = "\033[37m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiBold   = "\033[1m"
)

// ColorFormatter renders log entries as ANSI-colored text for an operator
// watching a run or sweep at a terminal. Each level gets a distinct color:
//
//	DEBUG -> gray, INFO -> green, WARN -> yellow, ERROR -> bold red
type ColorFormatter struct {
	// TimeFormat controls the timestamp layout. Defaults to
	// "2006-01-02 15:04:05" when empty.
	TimeFormat string
}

// colorForLevel returns the ANSI escape sequence for the given level.
func colorForLevel(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return ansiGray
	case level < slog.LevelWarn:
		return ansiGreen
	case level < slog.LevelError:
		return ansiYellow
	default:
		return ansiBold + ansiRed
	}
}

// Format produces a colored text line for the given entry.
func (f *ColorFormatter) Format(entry LogEntry) string {
	tf := f.TimeFormat
	if tf == "" {
		tf = "2006-01-02 15:04:05"
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(entry.Timestamp.Format(tf))
	b.WriteString("] ")
	b.WriteString(colorForLevel(entry.Level))
	b.WriteString(levelName(entry.Level))
	b.WriteString(ansiReset)
	b.WriteString(" ")
	b.WriteString(entry.Message)
	writeFields(&b, entry.Fields)
	return b.String()
}

func writeFields(b *strings.Builder, fields map[string]any) {
	if len(fields) == 0 {
		return
	}
	keys := sortedFieldKeys(fields)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(fmt.Sprintf("%v", fields[k]))
	}
}

func sortedFieldKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ---------------------------------------------------------------------------
// consoleHandler: a slog.Handler that delegates rendering to a LogFormatter
// ---------------------------------------------------------------------------

// consoleHandler adapts a LogFormatter into an slog.Handler, so cmd/dassim
// can give an operator watching a run human-readable (optionally colored)
// lines instead of the one-JSON-object-per-line output New's JSON handler
// produces for long-running/scraped contexts.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	formatter LogFormatter
	attrs     []slog.Attr
}

func newConsoleHandler(w io.Writer, level slog.Leveler, formatter LogFormatter) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, formatter: formatter}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	line := h.formatter.Format(LogEntry{
		Timestamp: r.Time,
		Level:     r.Level,
		Message:   r.Message,
		Fields:    fields,
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, line)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &consoleHandler{mu: h.mu, w: h.w, level: h.level, formatter: h.formatter}
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return next
}

func (h *consoleHandler) WithGroup(_ string) slog.Handler {
	// Groups would nest Fields under a key; the CLI's log call sites never
	// use slog groups, so this is a no-op rather than unreachable code.
	return h
}

// NewConsole builds a Logger that renders through formatter instead of
// JSON-encoding each record, for the CLI's interactive run/sweep/serve
// output. color selects ColorFormatter over TextFormatter.
func NewConsole(level slog.Level, w io.Writer, color bool) *Logger {
	var formatter LogFormatter = &TextFormatter{}
	if color {
		formatter = &ColorFormatter{}
	}
	return &Logger{inner: slog.New(newConsoleHandler(w, level, formatter))}
}
