package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"metalquotes/internal/httpx"
)

// Kind classifies an adapter failure for the resolver's skip decision.
type Kind int

const (
	Unavailable Kind = iota + 1
	Malformed
	RateLimited
)

func (k Kind) String() string {
	switch k {
	case Unavailable:
		return "unavailable"
	case Malformed:
		return "malformed"
	case RateLimited:
		return "rate_limited"
	}
	return "unknown"
}

// Error is the typed failure every adapter returns.
type Error struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a provider error of the given kind.
func Errorf(name string, kind Kind, format string, args ...any) *Error {
	return &Error{Provider: name, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind carried by err, or 0 if err is not a provider error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

// Classify wraps an arbitrary transport/decoding error into a provider
// Error. Errors that already carry a Kind are returned unchanged.
//   - context deadline/cancel, network failure -> Unavailable
//   - HTTP 429 -> RateLimited, other non-2xx -> Unavailable
func Classify(name string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	var se *httpx.StatusError
	if errors.As(err, &se) {
		if se.Code == http.StatusTooManyRequests {
			return &Error{Provider: name, Kind: RateLimited, Err: err}
		}
		return &Error{Provider: name, Kind: Unavailable, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Provider: name, Kind: Unavailable, Err: fmt.Errorf("timeout: %w", err)}
	}
	return &Error{Provider: name, Kind: Unavailable, Err: err}
}
