package provider

import (
	"context"
	"log/slog"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// tflogHandler forwards slog records from the core packages to the Terraform
// log of the calling request. Records logged without a request context are dropped
// by tflog itself.
type tflogHandler struct {
	attrs []slog.Attr
	group string
}

func newTFLogger() *slog.Logger {
	return slog.New(&tflogHandler{})
}

func (h *tflogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *tflogHandler) Handle(ctx context.Context, r slog.Record) error {
	fields := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.key(a.Key)] = a.Value.Resolve().Any()
		return true
	})

	switch {
	case r.Level >= slog.LevelError:
		tflog.Error(ctx, r.Message, fields)
	case r.Level >= slog.LevelWarn:
		tflog.Warn(ctx, r.Message, fields)
	case r.Level >= slog.LevelInfo:
		tflog.Info(ctx, r.Message, fields)
	default:
		tflog.Debug(ctx, r.Message, fields)
	}
	return nil
}

func (h *tflogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &tflogHandler{group: h.group}
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.key(a.Key), Value: a.Value})
	}
	return next
}

func (h *tflogHandler) WithGroup(name string) slog.Handler {
	return &tflogHandler{attrs: h.attrs, group: h.key(name)}
}

func (h *tflogHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}
