package storefront

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/hyp3rd/storefront/pkg/dispatch"
	"github.com/hyp3rd/storefront/pkg/headers"
	"github.com/hyp3rd/storefront/pkg/retry"
	"github.com/hyp3rd/storefront/pkg/token"
)

// Option is a function type that can be used to configure the Client.
type Option func(*Config)

// WithHTTPClient sets the HTTP client used for backend calls. A cookie jar is
// attached during construction if the client has none.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *Config) {
		cfg.HTTPClient = client
	}
}

// WithTokenStore sets the identity-token store.
func WithTokenStore(store token.Store) Option {
	return func(cfg *Config) {
		cfg.TokenStore = store
	}
}

// WithPreferences sets the locale/currency preference source. Unset values
// fall back to the documented defaults.
func WithPreferences(prefs headers.Preferences) Option {
	return func(cfg *Config) {
		cfg.Preferences = prefs
	}
}

// WithStaticPreferences is a convenience for a fixed locale/currency pair.
func WithStaticPreferences(locale, currency string) Option {
	return func(cfg *Config) {
		cfg.Preferences = headers.StaticPreferences{LocaleTag: locale, CurrencyCode: currency}
	}
}

// WithRetryPolicy overrides the retry bounds.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(cfg *Config) {
		cfg.Policy = policy
	}
}

// WithOptimisticCart toggles the cart transaction log. Disabled means every
// mutating call is synchronous from the caller's perspective; the algorithms
// are unchanged.
func WithOptimisticCart(enabled bool) Option {
	return func(cfg *Config) {
		cfg.OptimisticCart = enabled
	}
}

// WithSessionExpiredHandler registers the session-teardown notification.
func WithSessionExpiredHandler(handler func(ctx context.Context)) Option {
	return func(cfg *Config) {
		cfg.OnSessionExpired = handler
	}
}

// WithLogger sets the logger.
func WithLogger(logger dispatch.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(cfg *Config) {
		cfg.Tracer = tracer
	}
}
