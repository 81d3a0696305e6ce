package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// lineHandler is a slog.Handler that writes one plain "time level msg
// attrs..." line per record, grounded on the S370 util/logger package's
// LogHandler: same timestamp format, same space-joined attribute
// rendering, same mutex-guarded single writer.
type lineHandler struct {
	out   io.Writer
	inner slog.Handler
	mu    *sync.Mutex
}

func newLineHandler(out io.Writer, level slog.Level) *lineHandler {
	return &lineHandler{
		out:   out,
		inner: slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}),
		mu:    &sync.Mutex{},
	}
}

func (h *lineHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &lineHandler{out: h.out, inner: h.inner.WithAttrs(attrs), mu: h.mu}
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	return &lineHandler{out: h.out, inner: h.inner.WithGroup(name), mu: h.mu}
}

func (h *lineHandler) Handle(ctx context.Context, r slog.Record) error {
	parts := []string{r.Time.Format("2006/01/02 15:04:05"), r.Level.String() + ":", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.Key+"="+a.Value.String())
		return true
	})
	line := strings.Join(parts, " ") + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write([]byte(line))
	return err
}

// newLogger builds the process-wide structured logger from the
// configuration's log_level/log_format fields. "json" selects slog's own
// JSON handler for machine-readable output; anything else uses the
// line-oriented handler above.
func newLogger(cfg Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(newLineHandler(os.Stderr, level))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
