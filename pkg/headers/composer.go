// Package headers assembles the per-request header set for backend calls:
// locale and currency preferences, lazily created guest identity tokens, the
// CSRF token sourced from its protected cookie, and — for cart mutations —
// the optimistic-concurrency token and idempotency key.
package headers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/hyp3rd/storefront/internal/constants"
	"github.com/hyp3rd/storefront/internal/sentinel"
	"github.com/hyp3rd/storefront/pkg/request"
	"github.com/hyp3rd/storefront/pkg/token"
)

// Preferences supplies the locale/currency negotiated for the session.
// Implementations are read-only to this package.
type Preferences interface {
	// Locale returns the negotiated locale, empty when none was negotiated.
	Locale() string
	// Currency returns the negotiated currency, empty when none was negotiated.
	Currency() string
}

// StaticPreferences is a fixed locale/currency pair.
type StaticPreferences struct {
	// LocaleTag is the BCP 47 locale, e.g. "de-DE".
	LocaleTag string
	// CurrencyCode is the ISO 4217 currency, e.g. "EUR".
	CurrencyCode string
}

// Locale implements Preferences.
func (p StaticPreferences) Locale() string { return p.LocaleTag }

// Currency implements Preferences.
func (p StaticPreferences) Currency() string { return p.CurrencyCode }

// CSRFSource yields the current CSRF token, if one has been primed.
type CSRFSource interface {
	// Token returns the CSRF token and whether one is available.
	Token(ctx context.Context) (string, bool)
}

// CookieCSRFSource reads the CSRF token from the protected cookie held in a
// cookie jar — the storage location the backend issues it into.
type CookieCSRFSource struct {
	// Jar is the cookie jar shared with the HTTP client.
	Jar http.CookieJar
	// BaseURL is the backend origin the cookie is scoped to.
	BaseURL string
}

// Token implements CSRFSource.
func (s CookieCSRFSource) Token(_ context.Context) (string, bool) {
	if s.Jar == nil {
		return "", false
	}

	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", false
	}

	for _, cookie := range s.Jar.Cookies(u) {
		if cookie.Name == constants.CSRFCookieName && cookie.Value != "" {
			return cookie.Value, true
		}
	}

	return "", false
}

// Composer builds header sets. Its only side effect is the lazy creation of
// identity tokens in the store; it is pure otherwise.
type Composer struct {
	prefs  Preferences
	tokens token.Store
	csrf   CSRFSource
}

// NewComposer creates a composer. The token store is required; preferences
// and CSRF source may be nil, in which case fallbacks apply and the CSRF
// header is omitted.
func NewComposer(prefs Preferences, tokens token.Store, csrf CSRFSource) (*Composer, error) {
	if tokens == nil {
		return nil, sentinel.ErrNilTokenStore
	}

	return &Composer{prefs: prefs, tokens: tokens, csrf: csrf}, nil
}

// Compose returns the complete header set for the descriptor, plus the
// descriptor that must actually be dispatched: for cart mutations the returned
// copy is forced idempotent and carries the operation's idempotency key (newly
// minted only when the descriptor did not already hold one, so retries reuse
// the original key).
//
// cartVersion is the most recently confirmed cart version known to the caller;
// versionKnown=false omits the If-Match header.
func (c *Composer) Compose(ctx context.Context, desc request.Descriptor, cartVersion uint64, versionKnown bool) (http.Header, request.Descriptor, error) {
	hdr := http.Header{}

	locale := constants.DefaultLocale
	currency := constants.DefaultCurrency

	if c.prefs != nil {
		if l := c.prefs.Locale(); l != "" {
			locale = l
		}

		if cur := c.prefs.Currency(); cur != "" {
			currency = cur
		}
	}

	hdr.Set(constants.HeaderLocale, locale)
	hdr.Set(constants.HeaderCurrency, currency)

	if len(desc.Body) > 0 {
		hdr.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	if c.csrf != nil {
		if tok, ok := c.csrf.Token(ctx); ok {
			hdr.Set(constants.HeaderCSRFToken, tok)
		}
	}

	err := c.identityHeaders(ctx, hdr, desc)
	if err != nil {
		return nil, desc, err
	}

	if desc.IsCartMutation() {
		desc.Idempotent = true

		if versionKnown {
			hdr.Set(constants.HeaderIfMatch, strconv.FormatUint(cartVersion, 10))
		}

		if desc.IdempotencyKey == "" {
			desc = desc.WithKey(uuid.NewString())
		}

		hdr.Set(constants.HeaderIdempotencyKey, desc.IdempotencyKey)
	}

	return hdr, desc, nil
}

// identityHeaders adds one header per requested capability flag, creating the
// backing token on first use.
func (c *Composer) identityHeaders(ctx context.Context, hdr http.Header, desc request.Descriptor) error {
	type want struct {
		flag   bool
		kind   token.Kind
		header string
	}

	wants := []want{
		{desc.NeedsCartToken, token.KindCart, constants.HeaderCartToken},
		{desc.NeedsGuestToken, token.KindGuest, constants.HeaderGuestToken},
		{desc.NeedsComparisonToken, token.KindComparison, constants.HeaderComparisonToken},
	}

	for _, w := range wants {
		if !w.flag {
			continue
		}

		tok, err := c.tokens.GetOrCreate(ctx, w.kind)
		if err != nil {
			return err
		}

		hdr.Set(w.header, tok)
	}

	return nil
}
