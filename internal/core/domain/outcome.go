package domain

import (
	"context"
	"errors"
	"fmt"
)

// UnavailableReason classifies why a collaborator returned no data.
type UnavailableReason string

// Reasons a collaborator can be unavailable.
const (
	ReasonNoCredential UnavailableReason = "no_credential"
	ReasonNotFound     UnavailableReason = "not_found"
	ReasonEmpty        UnavailableReason = "empty"
	ReasonFailed       UnavailableReason = "failed"
	ReasonTimeout      UnavailableReason = "timeout"
	ReasonGated        UnavailableReason = "gated"
)

// Unavailable describes a collaborator that could not supply data.
// It is a normal value, not an error: callers degrade to "no signal".
type Unavailable struct {
	// Provider names the collaborator, e.g. "sec", "gdelt".
	Provider string

	// Reason classifies the failure.
	Reason UnavailableReason

	// Err is the underlying cause, if any.
	Err error
}

// String returns a human-readable description.
func (u Unavailable) String() string {
	if u.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", u.Provider, u.Reason, u.Err)
	}
	return fmt.Sprintf("%s: %s", u.Provider, u.Reason)
}

// Outcome is the result of a collaborator call: either a value or an
// Unavailable description. The zero Outcome is unavailable with an empty reason.
type Outcome[T any] struct {
	value   T
	ok      bool
	missing Unavailable
}

// Available wraps a value.
func Available[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, ok: true}
}

// Missing builds an unavailable outcome.
func Missing[T any](provider string, reason UnavailableReason, err error) Outcome[T] {
	return Outcome[T]{missing: Unavailable{Provider: provider, Reason: reason, Err: err}}
}

// MissingFrom converts an Unavailable description into an outcome of another type.
func MissingFrom[T any](u Unavailable) Outcome[T] {
	return Outcome[T]{missing: u}
}

// Get returns the value and whether it is available.
func (o Outcome[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsAvailable returns true if the outcome carries a value.
func (o Outcome[T]) IsAvailable() bool {
	return o.ok
}

// Unavailable returns the failure description. It is the zero value when available.
func (o Outcome[T]) Unavailable() Unavailable {
	return o.missing
}

// Reason returns the unavailability reason, or "" when available.
func (o Outcome[T]) Reason() UnavailableReason {
	if o.ok {
		return ""
	}
	return o.missing.Reason
}

// Err converts the outcome to an error for error-returning boundaries.
// Returns nil when available.
func (o Outcome[T]) Err() error {
	if o.ok {
		return nil
	}
	if o.missing.Err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, o.missing.Provider, o.missing.Err)
	}
	return fmt.Errorf("%w: %s: %s", ErrUnavailable, o.missing.Provider, o.missing.Reason)
}

// ReasonFor maps an error to an UnavailableReason.
func ReasonFor(err error) UnavailableReason {
	switch {
	case err == nil:
		return ReasonEmpty
	case errors.Is(err, ErrNoCredential):
		return ReasonNoCredential
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), isTimeout(err):
		return ReasonTimeout
	default:
		return ReasonFailed
	}
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	var t timeout
	return errors.As(err, &t) && t.Timeout()
}
