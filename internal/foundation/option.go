// Package foundation provides small generic utilities shared across the
// ingestion core.
package foundation

// Option represents a value that may be absent. The store façade returns
// Option values from natural-key lookups so a miss is explicit rather than a
// zero value or a sentinel error.
type Option[T any] struct {
	value   T
	present bool
}

// Some wraps a present value.
func Some[T any](value T) Option[T] {
	return Option[T]{value: value, present: true}
}

// None returns the absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool { return o.present }

// IsNone reports whether the Option is empty.
func (o Option[T]) IsNone() bool { return !o.present }

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.present
}

// MustGet returns the value, panicking when absent. Reserve for call sites
// that have already checked IsSome.
func (o Option[T]) MustGet() T {
	if !o.present {
		panic("foundation: MustGet on empty Option")
	}
	return o.value
}

// OrElse returns the value when present, otherwise the fallback.
func (o Option[T]) OrElse(fallback T) T {
	if o.present {
		return o.value
	}
	return fallback
}
