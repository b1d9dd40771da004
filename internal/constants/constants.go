// Package constants defines the wire-level names and default configuration values
// shared by the storefront client core: header names fixed by the backend API
// contract, the fallback locale and currency, and the retry bounds applied to
// cart mutations.
package constants

import "time"

const (
	// APIPrefix is the namespace all backend API paths live under.
	APIPrefix = "/api/v1"

	// CartPathPrefix identifies cart endpoints relative to APIPrefix. Non-read
	// requests under this prefix are treated as cart mutations.
	CartPathPrefix = "/cart"

	// CSRFPrimePath is the dedicated token-priming endpoint, relative to APIPrefix.
	CSRFPrimePath = "/csrf"

	// DefaultLocale is the fallback locale when no preference has been negotiated.
	DefaultLocale = "en-US"

	// DefaultCurrency is the fallback currency when no preference has been negotiated.
	DefaultCurrency = "USD"

	// CSRFCookieName is the protected cookie the backend issues the CSRF token in.
	CSRFCookieName = "csrf_token"

	// MaxConflictAttempts bounds replays of a cart mutation after a version conflict.
	MaxConflictAttempts = 3

	// MaxCSRFAttempts bounds replays after a CSRF token expiry.
	MaxCSRFAttempts = 1

	// DefaultRequestTimeout is the transport-level timeout for backend calls.
	DefaultRequestTimeout = 10 * time.Second

	// MaxResponseBytes caps how much of a backend response body is read.
	MaxResponseBytes = 8 << 20

	// MaxErrorBodyBytes caps how much of an error response body is retained.
	MaxErrorBodyBytes = 64 << 10
)

// Header names fixed by the backend API contract.
const (
	// HeaderLocale carries the negotiated locale preference.
	HeaderLocale = "Accept-Language"
	// HeaderCurrency carries the negotiated display currency.
	HeaderCurrency = "X-Currency"
	// HeaderCartToken carries the guest cart identity token.
	HeaderCartToken = "X-Cart-Token"
	// HeaderGuestToken carries the guest favorites identity token.
	HeaderGuestToken = "X-Guest-Token"
	// HeaderComparisonToken carries the comparison-list identity token.
	HeaderComparisonToken = "X-Comparison-Token"
	// HeaderCSRFToken carries the server-issued CSRF token on state-changing calls.
	HeaderCSRFToken = "X-CSRF-Token"
	// HeaderIfMatch carries the optimistic-concurrency token on cart mutations.
	HeaderIfMatch = "If-Match"
	// HeaderIdempotencyKey carries the per-operation idempotency key on cart mutations.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderRetryAfter is read from rate-limited responses.
	HeaderRetryAfter = "Retry-After"
	// HeaderContentType is set on requests carrying a JSON body.
	HeaderContentType = "Content-Type"
	// ContentTypeJSON is the media type for JSON payloads.
	ContentTypeJSON = "application/json"
)
