package clog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
)

type TextHandlerConfig struct {
	Color bool
	Level slog.Leveler
}

type TextHandlerOption func(*TextHandlerConfig)

func WithColor(c bool) TextHandlerOption {
	return func(cfg *TextHandlerConfig) {
		cfg.Color = c
	}
}

func WithLevel(level slog.Leveler) TextHandlerOption {
	return func(cfg *TextHandlerConfig) {
		cfg.Level = level
	}
}

// leadingColumns are printed unlabeled before the message, in this order.
var leadingColumns = []string{"procedure", "route", TaskIDAttributeKey, WorkerIDAttributeKey}

var levelColors = map[slog.Level]color.Attribute{
	slog.LevelDebug: color.FgCyan,
	slog.LevelInfo:  color.FgBlue,
	slog.LevelWarn:  color.FgYellow,
	slog.LevelError: color.FgRed,
}

// ConnectTextHandler renders one line per record for a terminal: time,
// level, the request columns, then the message. Every other attribute
// follows on its own indented line, sorted by key.
type ConnectTextHandler struct {
	cfg    TextHandlerConfig
	prefix string
	attrs  []slog.Attr
	mu     *sync.Mutex
	w      io.Writer
}

func NewConnectTextHandler(w io.Writer, opts ...TextHandlerOption) *ConnectTextHandler {
	cfg := TextHandlerConfig{Color: true, Level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ConnectTextHandler{cfg: cfg, mu: &sync.Mutex{}, w: w}
}

func (h *ConnectTextHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.cfg.Level.Level()
}

func (h *ConnectTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."
	return &nh
}

func (h *ConnectTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr(nil), h.attrs...), h.qualify(attrs)...)
	return &nh
}

func (h *ConnectTextHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.prefix == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.prefix + a.Key, Value: a.Value}
	}
	return out
}

func (h *ConnectTextHandler) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if h.cfg.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (h *ConnectTextHandler) Handle(_ context.Context, record slog.Record) error {
	kv := make(map[string]slog.Value, len(h.attrs)+record.NumAttrs())
	for _, a := range h.attrs {
		flatten(kv, "", a)
	}
	record.Attrs(func(a slog.Attr) bool {
		flatten(kv, h.prefix, a)
		return true
	})

	var buf bytes.Buffer
	plain := h.paint()
	plain.Fprintf(&buf, "%s ", record.Time.Format(time.RFC3339))
	h.paint(levelColors[record.Level]).Fprintf(&buf, "%s ", record.Level)
	for _, key := range leadingColumns {
		if v, ok := kv[key]; ok {
			plain.Fprintf(&buf, "%s ", v)
			delete(kv, key)
		}
	}

	msg := record.Message
	if v, ok := kv["code"]; ok {
		delete(kv, "code")
		msg = fmt.Sprintf("[%s] %s", v, msg)
	}
	h.paint(color.FgGreen).Fprintf(&buf, "%q", msg)
	if e, ok := kv[ErrorAttributeKey]; ok {
		delete(kv, ErrorAttributeKey)
		h.paint(color.FgRed).Fprintf(&buf, " %q", e.String())
	}
	buf.WriteByte('\n')

	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, "    %s=%s\n", k, kv[k])
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// flatten expands groups into dotted keys.
func flatten(kv map[string]slog.Value, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		kv[prefix+a.Key] = v
		return
	}
	if a.Key != "" {
		prefix += a.Key + "."
	}
	for _, ga := range v.Group() {
		flatten(kv, prefix, ga)
	}
}
