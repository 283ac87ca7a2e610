package logging

import (
	"context"
	"log/slog"
)

// EventSink receives log records that should be forwarded onto the activity
// log stream. The Kafka producer implements this interface; keeping it narrow
// here avoids a dependency from logging onto the messaging layer.
type EventSink interface {
	SendLogEvent(ctx context.Context, level, message string, attrs map[string]string) error
}

// StreamHandler is a slog.Handler that mirrors records at or above its level
// to an EventSink. A sink failure is swallowed: the log stream is best-effort
// and must never break the caller.
type StreamHandler struct {
	sink  EventSink
	level slog.Level
	attrs map[string]string
}

// NewStreamHandler forwards records at or above level to sink.
func NewStreamHandler(sink EventSink, level slog.Level) *StreamHandler {
	return &StreamHandler{sink: sink, level: level, attrs: map[string]string{}}
}

func (h *StreamHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *StreamHandler) Handle(ctx context.Context, record slog.Record) error {
	attrs := make(map[string]string, len(h.attrs)+record.NumAttrs())
	for k, v := range h.attrs {
		attrs[k] = v
	}
	record.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})

	_ = h.sink.SendLogEvent(ctx, record.Level.String(), record.Message, attrs)
	return nil
}

func (h *StreamHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make(map[string]string, len(h.attrs)+len(attrs))
	for k, v := range h.attrs {
		merged[k] = v
	}
	for _, a := range attrs {
		merged[a.Key] = a.Value.String()
	}
	return &StreamHandler{sink: h.sink, level: h.level, attrs: merged}
}

func (h *StreamHandler) WithGroup(name string) slog.Handler {
	// Groups are flattened; the log stream payload is a flat string map.
	return h
}

// TeeHandler fans a record out to several handlers. It is used to keep
// console logging while mirroring records onto the log stream.
type TeeHandler struct {
	handlers []slog.Handler
}

// NewTeeHandler combines the given handlers into one.
func NewTeeHandler(handlers ...slog.Handler) *TeeHandler {
	return &TeeHandler{handlers: handlers}
}

func (t *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *TeeHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range t.handlers {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &TeeHandler{handlers: next}
}

func (t *TeeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return &TeeHandler{handlers: next}
}
