package log

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// pathKeys contains attribute keys whose string values are file paths.
var pathKeys = map[string]bool{
	"path":         true,
	"file":         true,
	"output":       true,
	"dir":          true,
	"config":       true,
	"template_dir": true,
	"database":     true,
}

// PathHandler wraps an slog.Handler and shortens absolute file paths found
// in path-like attributes to paths relative to a base directory.
// Paths outside the base directory are passed through unchanged.
type PathHandler struct {
	handler slog.Handler
	base    string
}

// NewPathHandler creates a PathHandler relative to base.
// If base is empty, the current working directory is used.
// If handler is nil, slog.Default().Handler() is used.
func NewPathHandler(handler slog.Handler, base string) *PathHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if base == "" {
		if wd, err := os.Getwd(); err == nil {
			base = wd
		}
	}
	return &PathHandler{handler: handler, base: base}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PathHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's path attributes and passes it on.
func (h *PathHandler) Handle(ctx context.Context, r slog.Record) error {
	rewritten := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(h.rewriteAttr(a))
		return true
	})
	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *PathHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewritten[i] = h.rewriteAttr(a)
	}
	return &PathHandler{handler: h.handler.WithAttrs(rewritten), base: h.base}
}

// WithGroup returns a new handler with the given group name.
func (h *PathHandler) WithGroup(name string) slog.Handler {
	return &PathHandler{handler: h.handler.WithGroup(name), base: h.base}
}

func (h *PathHandler) rewriteAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		rewritten := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			rewritten[i] = h.rewriteAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewritten...)}
	}

	if a.Value.Kind() != slog.KindString || !pathKeys[strings.ToLower(a.Key)] {
		return a
	}
	return slog.String(a.Key, h.shorten(a.Value.String()))
}

// shorten returns p relative to the base directory when p lies below it.
func (h *PathHandler) shorten(p string) string {
	if h.base == "" || !filepath.IsAbs(p) {
		return p
	}
	rel, err := filepath.Rel(h.base, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return rel
}
