// Package logfields defines canonical log field names so keys do not drift
// across packages.
package logfields

import "log/slog"

const (
	KeyFile       = "file"
	KeyDocument   = "document_guid"
	KeySection    = "section_code"
	KeyEntity     = "entity"
	KeyToken      = "media_token"
	KeyRefKind    = "ref_kind"
	KeyNaturalKey = "natural_key"
	KeyCreated    = "created"
	KeyWarnings   = "warnings"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Helpers return slog.Attr values; keeping each granular lets callers compose.
func File(name string) slog.Attr      { return slog.String(KeyFile, name) }
func Document(guid string) slog.Attr  { return slog.String(KeyDocument, guid) }
func Section(code string) slog.Attr   { return slog.String(KeySection, code) }
func Entity(name string) slog.Attr    { return slog.String(KeyEntity, name) }
func Token(tok string) slog.Attr      { return slog.String(KeyToken, tok) }
func RefKind(kind string) slog.Attr   { return slog.String(KeyRefKind, kind) }
func NaturalKey(key string) slog.Attr { return slog.String(KeyNaturalKey, key) }
func Created(n int) slog.Attr         { return slog.Int(KeyCreated, n) }
func Warnings(n int) slog.Attr        { return slog.Int(KeyWarnings, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
