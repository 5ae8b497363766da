// Package logging provides structured logging for the wallet core.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	// TraceIDKey is the context key holding the current request's trace id.
	TraceIDKey contextKey = "trace_id"
	// UserIDKey is the context key holding the UI-authenticated user id.
	UserIDKey contextKey = "user_id"
	// RoleKey is the context key holding the UI-authenticated user's role.
	RoleKey contextKey = "role"
	// OriginKey is the context key holding the dApp origin of a request.
	OriginKey contextKey = "origin"
)

// Logger wraps a logrus entry so callers get a consistent, chainable API
// across the core without depending on logrus directly.
type Logger struct {
	entry *logrus.Entry
}

// New builds a root Logger. level is parsed with logrus.ParseLevel; an
// unrecognised level falls back to info. format selects "json" or "text".
func New(level, format string) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)

	if format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	return &Logger{entry: logrus.NewEntry(base)}
}

// NewWithWriter builds a Logger writing to an arbitrary sink, useful for
// tests that want to capture output.
func NewWithWriter(w io.Writer, level string) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)
	return &Logger{entry: logrus.NewEntry(base)}
}

// WithContext attaches trace/user/role/origin fields recovered from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := logrus.Fields{}
	if v := GetTraceID(ctx); v != "" {
		fields["trace_id"] = v
	}
	if v := GetUserID(ctx); v != "" {
		fields["user_id"] = v
	}
	if v := GetRole(ctx); v != "" {
		fields["role"] = v
	}
	if v := GetOrigin(ctx); v != "" {
		fields["origin"] = v
	}
	if len(fields) == 0 {
		return l
	}
	return &Logger{entry: l.entry.WithFields(fields)}
}

// WithError attaches an error field.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{entry: l.entry.WithError(err)}
}

// WithFields attaches arbitrary structured fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

// WithField attaches a single structured field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *Logger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...interface{}) { l.entry.Error(args...) }
func (l *Logger) Fatal(args ...interface{}) { l.entry.Fatal(args...) }

// Entry returns the underlying logrus.Entry, for packages that take a
// *logrus.Entry directly instead of depending on this wrapper.
func (l *Logger) Entry() *logrus.Entry { return l.entry }

// WithTraceID returns a copy of ctx carrying traceID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID extracts the trace id stashed by WithTraceID, or "".
func GetTraceID(ctx context.Context) string {
	v, _ := ctx.Value(TraceIDKey).(string)
	return v
}

// WithUserID returns a copy of ctx carrying the authenticated UI user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the user id stashed by WithUserID, or "".
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(UserIDKey).(string)
	return v
}

// WithRole returns a copy of ctx carrying the authenticated UI user's role.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, RoleKey, role)
}

// GetRole extracts the role stashed by WithRole, or "".
func GetRole(ctx context.Context) string {
	v, _ := ctx.Value(RoleKey).(string)
	return v
}

// WithOrigin returns a copy of ctx carrying the requesting dApp origin.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, OriginKey, origin)
}

// GetOrigin extracts the origin stashed by WithOrigin, or "".
func GetOrigin(ctx context.Context) string {
	v, _ := ctx.Value(OriginKey).(string)
	return v
}
