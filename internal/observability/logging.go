// Package observability carries log correlation context (file, document,
// section) through context.Context so every warning emitted deep inside the
// builders identifies the document and section being processed.
package observability

import (
	"context"
	"log/slog"

	"github.com/chriserikbarnes/medrecpro/internal/logfields"
)

// LogContext holds the correlation fields for one ingestion scope.
type LogContext struct {
	FileName     string
	DocumentGUID string
	SectionCode  string
}

type logContextKeyType struct{}

var logContextKey logContextKeyType

// WithFile attaches the source file name to the context.
func WithFile(ctx context.Context, name string) context.Context {
	lc := extract(ctx)
	lc.FileName = name
	return context.WithValue(ctx, logContextKey, lc)
}

// WithDocument attaches the document GUID to the context.
func WithDocument(ctx context.Context, guid string) context.Context {
	lc := extract(ctx)
	lc.DocumentGUID = guid
	return context.WithValue(ctx, logContextKey, lc)
}

// WithSection attaches the section code to the context.
func WithSection(ctx context.Context, code string) context.Context {
	lc := extract(ctx)
	lc.SectionCode = code
	return context.WithValue(ctx, logContextKey, lc)
}

func extract(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func contextAttrs(ctx context.Context) []slog.Attr {
	lc := extract(ctx)
	var attrs []slog.Attr
	if lc.FileName != "" {
		attrs = append(attrs, logfields.File(lc.FileName))
	}
	if lc.DocumentGUID != "" {
		attrs = append(attrs, logfields.Document(lc.DocumentGUID))
	}
	if lc.SectionCode != "" {
		attrs = append(attrs, logfields.Section(lc.SectionCode))
	}
	return attrs
}

// Info logs at info level with the context's correlation fields.
func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelInfo, msg, attrs)
}

// Warn logs at warning level with the context's correlation fields.
func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelWarn, msg, attrs)
}

// Error logs at error level with the context's correlation fields.
func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelError, msg, attrs)
}

// Debug logs at debug level with the context's correlation fields.
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelDebug, msg, attrs)
}

func log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	all := append(contextAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, level, msg, all...)
}
