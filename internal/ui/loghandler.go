package ui

import (
	"context"
	"errors"
	"log/slog"
)

// MultiHandler fans each record out to several slog handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler returns a handler writing to every h.
func NewMultiHandler(h ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: h}
}

// Enabled reports whether any handler accepts level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes r to every handler that accepts its level.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: out}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: out}
}

// LogEvents writes every event from in to logger as a "twins.event"
// record at DEBUG and forwards it on the returned channel, which closes
// after in does.
func LogEvents(logger *slog.Logger, in <-chan Event) <-chan Event {
	out := make(chan Event, cap(in))
	go func() {
		defer close(out)
		for ev := range in {
			attrs := []slog.Attr{slog.String("type", ev.Type.String())}
			if ev.Path != "" {
				attrs = append(attrs, slog.String("path", ev.Path))
			}
			if ev.Original != "" {
				attrs = append(attrs, slog.String("original", ev.Original))
			}
			if ev.Size != 0 {
				attrs = append(attrs, slog.Int64("size", ev.Size))
			}
			if ev.Total != 0 {
				attrs = append(attrs, slog.Int64("total", ev.Total))
			}
			if ev.Error != nil {
				attrs = append(attrs, slog.String("error", ev.Error.Error()))
			}
			logger.LogAttrs(context.Background(), slog.LevelDebug, "twins.event", attrs...)
			out <- ev
		}
	}()
	return out
}
