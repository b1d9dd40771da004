// Package retry decides whether a classified backend failure is replayed.
// Only two failure kinds are ever retried: cart version conflicts (after
// refreshing the authoritative version, bounded by the conflict attempt
// budget) and CSRF expiry (after re-priming the token, once). Everything else
// propagates immediately. The policy is pure decision logic; the dispatcher
// owns the side effects each decision asks for.
package retry

import (
	"github.com/hyp3rd/storefront/internal/constants"
	"github.com/hyp3rd/storefront/pkg/apierror"
)

// Attempts tracks replay counters for one logical call chain. A fresh value
// is created per user-initiated operation and never shared between chains.
type Attempts struct {
	// Conflict counts version-conflict replays already performed.
	Conflict int
	// CSRF counts CSRF-refresh replays already performed.
	CSRF int
}

// Decision tells the dispatcher what to do with a failed request.
type Decision struct {
	// Retry is true when the request should be replayed.
	Retry bool
	// RefreshCartVersion asks the dispatcher to fetch the authoritative cart
	// version before replaying.
	RefreshCartVersion bool
	// RefreshCSRF asks the dispatcher to re-prime the CSRF token before replaying.
	RefreshCSRF bool
}

// Policy bounds the replay behavior.
type Policy struct {
	// MaxConflictAttempts is the total number of sends allowed for a request
	// that keeps hitting version conflicts.
	MaxConflictAttempts int
	// MaxCSRFRetries is the number of replays allowed after CSRF expiry.
	MaxCSRFRetries int
}

// NewPolicy returns the default policy: three conflict attempts, one CSRF retry.
func NewPolicy() Policy {
	return Policy{
		MaxConflictAttempts: constants.MaxConflictAttempts,
		MaxCSRFRetries:      constants.MaxCSRFAttempts,
	}
}

// ShouldRetry decides whether the failure may be replayed. hasIdempotencyKey
// reflects the original request: conflict replays are only safe when the
// operation carries a replay key, so the server can deduplicate. replayable is
// false for streamed bodies, which are never retried regardless of kind.
//
// ShouldRetry does not mutate counters; the dispatcher advances them when it
// acts on the decision.
func (p Policy) ShouldRetry(clsErr *apierror.Error, attempts Attempts, hasIdempotencyKey, replayable bool) Decision {
	if clsErr == nil || !replayable {
		return Decision{}
	}

	switch clsErr.Kind {
	case apierror.KindConcurrencyConflict:
		if !hasIdempotencyKey {
			return Decision{}
		}

		// attempts.Conflict counts completed sends beyond the first.
		if attempts.Conflict+1 >= p.MaxConflictAttempts {
			return Decision{}
		}

		return Decision{Retry: true, RefreshCartVersion: true}
	case apierror.KindCsrfExpired:
		if attempts.CSRF >= p.MaxCSRFRetries {
			return Decision{}
		}

		return Decision{Retry: true, RefreshCSRF: true}
	default:
		return Decision{}
	}
}
