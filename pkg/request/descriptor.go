// Package request defines the descriptor handed to the dispatcher for every
// backend call: target path and method, optional body, query parameters, and
// the capability flags that drive header composition. A descriptor is built
// once per call and treated as immutable after dispatch; retries work on
// copies produced by With* methods.
package request

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/storefront/internal/constants"
)

// Descriptor describes a single backend API call.
type Descriptor struct {
	// Method is the HTTP method.
	Method string
	// Path is the endpoint path relative to the API prefix, e.g. "/cart/items".
	Path string
	// Query holds optional query parameters.
	Query url.Values
	// Body is the serialized request payload, nil for body-less requests.
	Body []byte

	// NeedsCartToken requests the guest cart identity header.
	NeedsCartToken bool
	// NeedsGuestToken requests the guest favorites identity header.
	NeedsGuestToken bool
	// NeedsComparisonToken requests the comparison-list identity header.
	NeedsComparisonToken bool
	// Idempotent marks the request as safe to replay. Forced to true for cart
	// mutations during header composition.
	Idempotent bool

	// IdempotencyKey is the per-logical-operation replay key. Empty until the
	// composer mints one; constant across retries of the same operation.
	IdempotencyKey string

	// streamed marks a body that cannot be replayed. Set by WithRawBody when the
	// payload was drained from a reader the caller does not own.
	streamed bool

	// marshalErr carries a body-encoding failure from construction to Validate.
	marshalErr error
}

// Option configures a Descriptor at construction time.
type Option func(*Descriptor)

// WithQuery sets the query parameters.
func WithQuery(q url.Values) Option {
	return func(d *Descriptor) { d.Query = q }
}

// WithJSONBody marshals v and attaches it as the request body. The encoded
// bytes are retained, so the request is replayable.
func WithJSONBody(v any) Option {
	return func(d *Descriptor) {
		data, err := json.Marshal(v)
		if err != nil {
			// Surface at dispatch time through Validate; a descriptor with a nil
			// body and marshalErr set never reaches the wire.
			d.marshalErr = ewrap.Wrap(err, "marshal request body")

			return
		}

		d.Body = data
	}
}

// WithRawBody attaches pre-encoded bytes. When replayable is false the
// descriptor is excluded from every retry path.
func WithRawBody(body []byte, replayable bool) Option {
	return func(d *Descriptor) {
		d.Body = body
		d.streamed = !replayable
	}
}

// WithCartToken flags the request as needing the guest cart identity token.
func WithCartToken() Option {
	return func(d *Descriptor) { d.NeedsCartToken = true }
}

// WithGuestToken flags the request as needing the guest favorites identity token.
func WithGuestToken() Option {
	return func(d *Descriptor) { d.NeedsGuestToken = true }
}

// WithComparisonToken flags the request as needing the comparison identity token.
func WithComparisonToken() Option {
	return func(d *Descriptor) { d.NeedsComparisonToken = true }
}

// WithIdempotent marks the request as safe to replay.
func WithIdempotent() Option {
	return func(d *Descriptor) { d.Idempotent = true }
}

// New builds a descriptor for the given method and path.
func New(method, path string, opts ...Option) Descriptor {
	d := Descriptor{
		Method: method,
		Path:   path,
	}
	for _, opt := range opts {
		opt(&d)
	}

	return d
}

// Validate reports construction-time failures (currently body marshaling).
func (d Descriptor) Validate() error {
	return d.marshalErr
}

// IsCartMutation reports whether the request is a non-read operation under the
// cart path. Such requests carry the optimistic-concurrency token and an
// idempotency key.
func (d Descriptor) IsCartMutation() bool {
	if d.Method == http.MethodGet || d.Method == http.MethodHead {
		return false
	}

	return strings.HasPrefix(d.Path, constants.CartPathPrefix)
}

// Replayable reports whether the body can be sent again on a retry.
func (d Descriptor) Replayable() bool {
	return !d.streamed
}

// WithKey returns a copy carrying the given idempotency key. The receiver is
// unchanged; dispatched descriptors are never mutated.
func (d Descriptor) WithKey(key string) Descriptor {
	d.IdempotencyKey = key

	return d
}

// URL resolves the absolute target against the given base, which already
// carries the API prefix.
func (d Descriptor) URL(base string) string {
	target := strings.TrimSuffix(base, "/") + constants.APIPrefix + d.Path
	if len(d.Query) > 0 {
		target += "?" + d.Query.Encode()
	}

	return target
}

// Fingerprint returns a stable hash of the request identity (method, path,
// body). Used to associate idempotency records with the payload they were
// minted for, and as a low-cardinality log attribute that never leaks tokens.
func (d Descriptor) Fingerprint() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(d.Method)
	_, _ = h.WriteString(" ")
	_, _ = h.WriteString(d.Path)

	if len(d.Body) > 0 {
		_, _ = h.WriteString(" ")
		_, _ = h.Write(d.Body)
	}

	return h.Sum64()
}
