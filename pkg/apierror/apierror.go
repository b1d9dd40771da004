// Package apierror maps raw backend failures onto the closed taxonomy the rest
// of the client consumes. Callers pattern-match on Kind; they never inspect
// transport errors or response bodies themselves.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind is the classification of a backend failure.
type Kind string

const (
	// KindValidation is a recoverable, field-level rejection (422).
	KindValidation Kind = "validation"
	// KindSessionExpired means the authenticated session is gone (401).
	KindSessionExpired Kind = "session_expired"
	// KindCsrfExpired means the CSRF token was rejected (419).
	KindCsrfExpired Kind = "csrf_expired"
	// KindConcurrencyConflict means the cart version token was stale (409).
	KindConcurrencyConflict Kind = "concurrency_conflict"
	// KindRateLimited means the backend throttled the caller (429).
	KindRateLimited Kind = "rate_limited"
	// KindNotFound means the resource does not exist (404).
	KindNotFound Kind = "not_found"
	// KindUnknown covers every other failure, including network-level ones.
	KindUnknown Kind = "unknown"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// Error is a fully classified backend failure. It is only ever produced by
// Classify and ClassifyTransport, never constructed at call sites.
type Error struct {
	// Kind is the taxonomy bucket.
	Kind Kind `json:"kind"`
	// Status is the HTTP status the classification derives from. Network-level
	// failures are reported as 500.
	Status int `json:"status"`
	// Message is a human-readable summary, safe to surface.
	Message string `json:"message"`
	// FieldErrors carries per-field messages for validation failures.
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
	// RetryAfter is the wait the backend asked for on rate limiting, zero otherwise.
	RetryAfter time.Duration `json:"retryAfter,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

// Is reports whether target is an *Error of the same Kind, letting callers use
// errors.Is with a bare kind sentinel.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Kind == other.Kind
}

// Terminal reports whether the error should be surfaced to the caller as-is,
// with no retry handling left to do inside the client core.
func (e *Error) Terminal() bool {
	switch e.Kind {
	case KindCsrfExpired, KindConcurrencyConflict:
		return false
	default:
		return true
	}
}

// From extracts the classified error from an error chain. ok is false only
// for errors that did not originate in the client core.
func From(err error) (*Error, bool) {
	var clsErr *Error
	if errors.As(err, &clsErr) {
		return clsErr, true
	}

	return nil, false
}

// statusText falls back to the standard status text when the backend supplied
// no message.
func statusText(status int) string {
	text := http.StatusText(status)
	if text == "" {
		text = "request failed"
	}

	return text
}
