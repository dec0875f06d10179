package tconsole

import (
	"context"
	"log/slog"
	"slices"
	"time"

	slogformatter "github.com/samber/slog-formatter"
	slogmulti "github.com/samber/slog-multi"

	"github.com/dianlight/tconsole/config"
	"github.com/dianlight/tconsole/format"
	"github.com/dianlight/tconsole/redact"
)

// piiKeys hold personal data that is partially masked when redaction is on.
// Secrets are masked in full by the redact package.
var piiKeys = []string{"address", "email", "name", "phone", "user"}

var ipKeys = []string{"ip", "addr", "remote_addr", "client_ip"}

// Handler returns a slog.Handler that writes records as lines of a logger
// named name. Attributes are merged into one object argument. Records are
// also passed to every handler given with WithSlogHandlers.
//
// The formatters run before any handler sees a record: errors become
// {message, type, stacktrace} groups, time values use the configured
// layout and, when redaction is on, secrets are masked and personal data
// and IP addresses are obfuscated.
func (c *Console) Handler(name string) slog.Handler {
	cfg := c.Config()

	var h slog.Handler = &recordHandler{logger: c.Logger(name)}
	if len(c.handlers) > 0 {
		h = slogmulti.Fanout(append([]slog.Handler{h}, c.handlers...)...)
	}

	layout := time.RFC3339
	if cfg.ShowTimestamp && cfg.TimestampFormat == config.TimestampClock {
		layout = time.TimeOnly
	}
	formatters := []slogformatter.Formatter{
		TozdErrorFormatter(cfg.Colors && !cfg.JSON),
		ErrorFormatter("error", cfg.Colors && !cfg.JSON),
		ErrorFormatter("err", cfg.Colors && !cfg.JSON),
		slogformatter.TimeFormatter(layout, time.Local),
	}
	for _, key := range unixTimestampKeys {
		formatters = append(formatters, UnixTimestampFormatter(key, layout))
	}
	if cfg.Redact {
		for _, k := range piiKeys {
			formatters = append(formatters, slogformatter.PIIFormatter(k))
		}
		for _, k := range ipKeys {
			formatters = append(formatters, slogformatter.IPAddressFormatter(k))
		}
	}
	h = slogformatter.NewFormatterHandler(formatters...)(h)

	if cfg.Redact {
		h = &redact.Handler{Next: h}
	}
	return h
}

// recordHandler turns slog records into logger lines.
type recordHandler struct {
	logger *Logger
	groups []string
	attrs  []groupedAttr
}

type groupedAttr struct {
	groups []string
	attr   slog.Attr
}

func (h *recordHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.console.Config().Enabled(level)
}

func (h *recordHandler) Handle(ctx context.Context, r slog.Record) error {
	fields := map[string]any{}
	for _, ga := range h.attrs {
		put(fields, ga.groups, ga.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		put(fields, h.groups, a)
		return true
	})
	if ctx != nil {
		for _, key := range h.logger.console.ctxKeys {
			if val := ctx.Value(key); val != nil {
				fields[key] = val
			}
		}
	}

	var args []any
	if len(fields) > 0 {
		args = []any{fields}
	}
	h.logger.emit(format.KindForLevel(r.Level), r.Message, args, r.Time)
	return nil
}

func (h *recordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := h.clone()
	for _, a := range attrs {
		next.attrs = append(next.attrs, groupedAttr{groups: h.groups, attr: a})
	}
	return next
}

func (h *recordHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(slices.Clone(h.groups), name)
	return next
}

func (h *recordHandler) clone() *recordHandler {
	return &recordHandler{
		logger: h.logger,
		groups: h.groups,
		attrs:  slices.Clone(h.attrs),
	}
}

// put stores a under the nested maps named by groups.
func put(fields map[string]any, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	target := fields
	for _, g := range groups {
		sub, ok := target[g].(map[string]any)
		if !ok {
			sub = map[string]any{}
			target[g] = sub
		}
		target = sub
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key == "" {
			for _, ga := range a.Value.Group() {
				put(target, nil, ga)
			}
			return
		}
		sub, ok := target[a.Key].(map[string]any)
		if !ok {
			sub = map[string]any{}
			target[a.Key] = sub
		}
		for _, ga := range a.Value.Group() {
			put(sub, nil, ga)
		}
		return
	}
	target[a.Key] = a.Value.Any()
}
