package shared

import "errors"

// Result is the outcome of a call to an external collaborator: either a value
// or the reason the call failed. Callers must inspect it before using the value.
type Result[T any] struct {
	value T
	err   error
	Meta  AgentMeta
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err wraps a failure. A nil reason is replaced with a generic error so that
// an Err result is never mistaken for success.
func Err[T any](reason error) Result[T] {
	if reason == nil {
		reason = errors.New("unknown collaborator failure")
	}
	return Result[T]{err: reason}
}

// WithMeta returns a copy of r carrying the given execution metadata.
func (r Result[T]) WithMeta(meta AgentMeta) Result[T] {
	r.Meta = meta
	return r
}

// OK reports whether the result holds a value.
func (r Result[T]) OK() bool {
	return r.err == nil
}

// Unwrap returns the value and the failure reason.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// Failure returns the failure reason, or nil for a successful result.
func (r Result[T]) Failure() error {
	return r.err
}

// ValueOr returns the value, or fallback if the result is a failure.
func (r Result[T]) ValueOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}
