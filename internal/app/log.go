package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LogFileName is the log file inside the configured log directory.
const LogFileName = "ciid.log"

// ciidHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<runID>\t<message>\t<key=value ...>
type ciidHandler struct {
	w     io.Writer
	runID string
	min   slog.Level
	attrs []slog.Attr
}

func (h *ciidHandler) Enabled(_ context.Context, level slog.Level) bool { return level >= h.min }

func (h *ciidHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\t%s\t%s\t%s",
		r.Time.UTC().Format("2006-01-02T15:04:05.000Z"), r.Level, h.runID, r.Message)

	for _, a := range h.attrs {
		writeAttr(&sb, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, a)
		return true
	})
	sb.WriteByte('\n')

	// One write per record so concurrent writers never interleave a line.
	_, err := io.WriteString(h.w, sb.String())
	return err
}

// writeAttr appends "\tkey=value", quoting values that would break the line format.
func writeAttr(sb *strings.Builder, a slog.Attr) {
	v := a.Value.Resolve().String()
	if strings.ContainsAny(v, "\t\n\r\"") || v == "" {
		v = strconv.Quote(v)
	}
	fmt.Fprintf(sb, "\t%s=%s", a.Key, v)
}

func (h *ciidHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ciidHandler{
		w:     h.w,
		runID: h.runID,
		min:   h.min,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *ciidHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a structured logger that writes to logDir/ciid.log.
// Records are mirrored to stderr, and debug records enabled, only when verbose
// is set: a normal run leaves stderr to errors alone.
// It returns the slog.Logger, the open log file (for cleanup), and any error.
func newLogger(logDir, runID string, verbose bool, stderr io.Writer) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, LogFileName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	handler := &ciidHandler{w: f, runID: runID, min: slog.LevelInfo}
	if verbose {
		handler.w = io.MultiWriter(f, stderr)
		handler.min = slog.LevelDebug
	}
	return slog.New(handler), f, nil
}

// slogAdapter wraps *slog.Logger to satisfy the ciid.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
