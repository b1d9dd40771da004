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

// Config wraps all the configuration options to set up a Client.
type Config struct {
	// BaseURL is the backend origin, e.g. "https://api.shop.example". Required.
	BaseURL string
	// HTTPClient overrides the transport. When nil a client with a fresh cookie
	// jar and the default timeout is created; when set without a jar, a jar is
	// attached so session and CSRF cookies round-trip.
	HTTPClient *http.Client
	// TokenStore persists guest identity tokens. Defaults to an in-memory store
	// scoped to this client.
	TokenStore token.Store
	// Preferences supplies the negotiated locale/currency. Nil falls back to
	// the documented defaults.
	Preferences headers.Preferences
	// Policy bounds conflict/CSRF retries. Zero value means defaults.
	Policy retry.Policy
	// OptimisticCart enables the cart transaction log. When false every cart
	// mutation is synchronous and no pending queue exists.
	OptimisticCart bool
	// OnSessionExpired is called when a non-auth endpoint reports an expired
	// session. Redirecting is the application's job, not the client's.
	OnSessionExpired func(ctx context.Context)
	// Logger receives client log lines. Optional.
	Logger dispatch.Logger
	// Tracer records dispatch spans. Optional.
	Tracer trace.Tracer
}

// NewConfig returns a Config with default values:
//   - in-memory token store
//   - fallback locale/currency preferences
//   - default retry policy (3 conflict attempts, 1 CSRF retry)
//   - optimistic cart enabled
//
// Each default can be overridden with the corresponding option.
func NewConfig(baseURL string, options ...Option) *Config {
	cfg := &Config{
		BaseURL:        baseURL,
		TokenStore:     token.NewInMemory(),
		Policy:         retry.NewPolicy(),
		OptimisticCart: true,
	}

	for _, option := range options {
		option(cfg)
	}

	return cfg
}
