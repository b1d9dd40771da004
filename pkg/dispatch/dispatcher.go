// Package dispatch performs the HTTP calls to the backend: it composes
// headers, sends the request with credentials included, classifies failures,
// and drives the retry policy. Callers receive either the raw response
// payload or a fully classified error; raw transport failures never escape.
package dispatch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/hyp3rd/ewrap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyp3rd/storefront/internal/constants"
	"github.com/hyp3rd/storefront/pkg/apierror"
	"github.com/hyp3rd/storefront/pkg/headers"
	"github.com/hyp3rd/storefront/pkg/request"
	"github.com/hyp3rd/storefront/pkg/retry"
)

// VersionSource supplies the confirmed cart version for the If-Match header
// and refreshes it between conflict retries. Implemented by the client facade
// on top of the transaction log.
type VersionSource interface {
	// CartVersion returns the latest confirmed version, known=false before the
	// first cart fetch.
	CartVersion(ctx context.Context) (version uint64, known bool)
	// RefreshCartVersion fetches the authoritative cart state and returns the
	// current version.
	RefreshCartVersion(ctx context.Context) (uint64, error)
}

// CSRFRefresher re-primes the CSRF token via the dedicated priming call.
type CSRFRefresher interface {
	PrimeCSRF(ctx context.Context) error
}

// Logger matches the minimal logging surface used across this codebase.
type Logger interface {
	Printf(format string, v ...any)
}

// Dispatcher sends composed requests and applies the retry policy.
type Dispatcher struct {
	client           *http.Client
	baseURL          string
	composer         *headers.Composer
	policy           retry.Policy
	versions         VersionSource
	csrf             CSRFRefresher
	onSessionExpired func(ctx context.Context)
	logger           Logger
	tracer           trace.Tracer
}

// Config wires a dispatcher.
type Config struct {
	// Client is the HTTP client; its cookie jar carries session credentials.
	Client *http.Client
	// BaseURL is the backend origin, without the API prefix.
	BaseURL string
	// Composer builds per-request header sets.
	Composer *headers.Composer
	// Policy bounds retries; zero value means defaults.
	Policy retry.Policy
	// Versions supplies and refreshes the cart version. Optional for clients
	// that never mutate the cart.
	Versions VersionSource
	// CSRF re-primes the CSRF token on expiry. Optional.
	CSRF CSRFRefresher
	// OnSessionExpired is invoked once per call chain when a non-auth endpoint
	// reports an expired session. The surrounding application owns redirects.
	OnSessionExpired func(ctx context.Context)
	// Logger receives retry decisions. Optional. Token values are never logged.
	Logger Logger
	// Tracer records one span per attempt. Optional.
	Tracer trace.Tracer
}

// New creates a dispatcher.
func New(cfg Config) (*Dispatcher, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ewrap.New("dispatch: base url is required")
	}

	if cfg.Composer == nil {
		return nil, ewrap.New("dispatch: composer is required")
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: constants.DefaultRequestTimeout}
	}

	policy := cfg.Policy
	if policy.MaxConflictAttempts == 0 {
		policy = retry.NewPolicy()
	}

	return &Dispatcher{
		client:           client,
		baseURL:          cfg.BaseURL,
		composer:         cfg.Composer,
		policy:           policy,
		versions:         cfg.Versions,
		csrf:             cfg.CSRF,
		onSessionExpired: cfg.OnSessionExpired,
		logger:           cfg.Logger,
		tracer:           cfg.Tracer,
	}, nil
}

// Send dispatches the descriptor and returns the raw response payload. On
// failure the returned error is always an *apierror.Error; retryable failures
// (version conflict, CSRF expiry) are replayed within policy bounds before
// being surfaced. The idempotency key minted on the first attempt of a cart
// mutation is reused verbatim on every replay.
func (d *Dispatcher) Send(ctx context.Context, desc request.Descriptor) ([]byte, error) {
	err := desc.Validate()
	if err != nil {
		return nil, apierror.ClassifyTransport(err)
	}

	var attempts retry.Attempts

	sessionTornDown := false

	for {
		var (
			version uint64
			known   bool
		)

		if desc.IsCartMutation() && d.versions != nil {
			version, known = d.versions.CartVersion(ctx)
		}

		hdr, sendDesc, composeErr := d.composer.Compose(ctx, desc, version, known)
		if composeErr != nil {
			return nil, apierror.ClassifyTransport(composeErr)
		}

		// Retain the minted idempotency key so replays reuse it.
		desc = sendDesc

		payload, clsErr := d.do(ctx, sendDesc, hdr)
		if clsErr == nil {
			return payload, nil
		}

		if clsErr.Kind == apierror.KindSessionExpired && !sessionTornDown && !isAuthFlow(desc.Path) {
			sessionTornDown = true

			if d.onSessionExpired != nil {
				d.onSessionExpired(ctx)
			}
		}

		decision := d.policy.ShouldRetry(clsErr, attempts, desc.IdempotencyKey != "", desc.Replayable())
		if !decision.Retry {
			return nil, clsErr
		}

		if decision.RefreshCartVersion {
			attempts.Conflict++

			if d.versions != nil {
				_, refreshErr := d.versions.RefreshCartVersion(ctx)
				if refreshErr != nil {
					return nil, clsErr
				}
			}

			d.logf("retrying after version conflict: %s %s attempt=%d", desc.Method, desc.Path, attempts.Conflict+1)
		}

		if decision.RefreshCSRF {
			attempts.CSRF++

			if d.csrf != nil {
				primeErr := d.csrf.PrimeCSRF(ctx)
				if primeErr != nil {
					return nil, clsErr
				}
			}

			d.logf("retrying after csrf refresh: %s %s", desc.Method, desc.Path)
		}
	}
}

// do performs one attempt: build, send, classify.
func (d *Dispatcher) do(ctx context.Context, desc request.Descriptor, hdr http.Header) ([]byte, *apierror.Error) {
	if d.tracer != nil {
		var span trace.Span

		ctx, span = d.tracer.Start(ctx, "storefront.dispatch",
			trace.WithAttributes(
				attribute.String("http.method", desc.Method),
				attribute.String("http.path", desc.Path),
				attribute.Int64("request.fingerprint", int64(desc.Fingerprint())),
			))
		defer span.End()
	}

	var bodyReader io.Reader
	if len(desc.Body) > 0 {
		bodyReader = bytes.NewReader(desc.Body)
	}

	hreq, err := http.NewRequestWithContext(ctx, desc.Method, desc.URL(d.baseURL), bodyReader)
	if err != nil {
		return nil, apierror.ClassifyTransport(err)
	}

	for name, values := range hdr {
		for _, v := range values {
			hreq.Header.Add(name, v)
		}
	}

	resp, err := d.client.Do(hreq)
	if err != nil {
		return nil, apierror.ClassifyTransport(err)
	}

	defer func() {
		_ = resp.Body.Close() //nolint:errcheck // best-effort
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, constants.MaxErrorBodyBytes))
		if readErr != nil {
			body = nil
		}

		return nil, apierror.Classify(resp.StatusCode, resp.Header, body)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes))
	if err != nil {
		return nil, apierror.ClassifyTransport(err)
	}

	return payload, nil
}

// isAuthFlow reports whether the path belongs to the sign-in/sign-out flow,
// where a 401 is part of normal operation rather than a session teardown.
func isAuthFlow(path string) bool {
	return strings.HasPrefix(path, "/auth")
}

func (d *Dispatcher) logf(format string, v ...any) {
	if d.logger != nil {
		d.logger.Printf(format, v...)
	}
}
