// Package log provides structured logging for LinkGate. Every log line
// can name URLs from an untrusted page, and those URLs routinely carry
// credentials, session tokens, and tracking identifiers in userinfo or
// query parameters. RedactHandler scrubs them before records reach the
// underlying handler, so no component has to remember to sanitize at
// the call site.
package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// MaskValue is the string used to replace redacted values. It is
// plain alphanumeric on purpose: URL re-encoding must leave it intact
// wherever it lands, userinfo or query string.
const MaskValue = "REDACTED"

// sensitiveParams contains query parameter names whose values are
// always masked. Matching is case-insensitive on the full name.
var sensitiveParams = map[string]bool{
	"token":         true,
	"access_token":  true,
	"refresh_token": true,
	"id_token":      true,
	"api_key":       true,
	"apikey":        true,
	"key":           true,
	"secret":        true,
	"password":      true,
	"passwd":        true,
	"auth":          true,
	"session":       true,
	"session_id":    true,
	"sessionid":     true,
	"sid":           true,
	"code":          true,
	"signature":     true,
	"sig":           true,
}

// sensitiveKeys contains attribute keys whose whole value is masked
// regardless of content.
var sensitiveKeys = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
	"password":      true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"credential":    true,
	"credentials":   true,
}

// RedactHandler wraps an slog.Handler and sanitizes attribute values
// before passing records on.
//
// Design decision: We use a handler wrapper rather than a custom
// logger because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Components keep accepting a plain *slog.Logger
type RedactHandler struct {
	// handler is the underlying slog handler receiving clean records.
	handler slog.Handler
}

// NewRedactHandler creates a RedactHandler wrapping the given handler.
// If handler is nil, slog.Default()'s handler is used.
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given
// level. It delegates to the underlying handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it on.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added,
// sanitized first.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes one attribute, recursively handling groups.
func (h *RedactHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		if cleaned, changed := RedactURL(a.Value.String()); changed {
			return slog.String(a.Key, cleaned)
		}
	}

	return a
}

// RedactURL scrubs credentials and sensitive query parameters from a
// URL string. Non-URL strings come back unchanged. The second return
// reports whether anything was masked.
func RedactURL(raw string) (string, bool) {
	if !strings.Contains(raw, "://") {
		return raw, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw, false
	}

	changed := false
	if u.User != nil {
		u.User = url.User(MaskValue)
		changed = true
	}

	q := u.Query()
	for name := range q {
		if sensitiveParams[strings.ToLower(name)] {
			q.Set(name, MaskValue)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
		return u.String(), true
	}
	return raw, false
}

// NewLogger creates the application logger: a text handler wrapped in
// redaction, at Debug level when verbose and Warn otherwise. When
// logFile is non-empty, output is rotated there via lumberjack instead
// of going to w.
func NewLogger(w io.Writer, verbose bool, logFile string) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	out := w
	if logFile != "" {
		out = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}

	textHandler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactHandler(textHandler))
}
