package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// plainHandler renders records as plain text lines, with the component
// group (and its name attribute, when present) as a prefix.
type plainHandler struct {
	handler slog.Handler
	w       io.Writer
	group   string
	attrs   []slog.Attr
}

func newPlainHandler(opts *slog.HandlerOptions) slog.Handler {
	return &plainHandler{
		handler: slog.NewTextHandler(os.Stderr, opts),
		w:       os.Stderr,
	}
}

func (h *plainHandler) Handle(ctx context.Context, r slog.Record) error {
	var prefix string
	if h.group != "" {
		names := []string{}
		for _, a := range h.attrs {
			if a.Key == "name" {
				names = append(names, a.Value.String())
			}
		}
		prefix = h.group
		if len(names) > 0 {
			prefix = fmt.Sprintf("%s(%s)", h.group, strings.Join(names, ","))
		}
		prefix += ": "
	}

	line := fmt.Sprintf("%s %s %s%s\n",
		r.Time.Format(time.RFC3339),
		strings.ToUpper(r.Level.String()),
		prefix,
		r.Message,
	)

	_, err := h.w.Write([]byte(line))
	return err
}

func (h *plainHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *plainHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &plainHandler{
		handler: h.handler,
		w:       h.w,
		group:   h.group,
		attrs:   append(h.attrs, attrs...),
	}
}

func (h *plainHandler) WithGroup(name string) slog.Handler {
	return &plainHandler{
		handler: h.handler,
		w:       h.w,
		group:   name,
		attrs:   []slog.Attr{},
	}
}
