// Package storefront is the client for the storefront backend API. It owns
// the network/concurrency core of the storefront: per-request header
// composition (locale, guest identity, CSRF, optimistic-concurrency token,
// idempotency key), narrow retry on version conflicts and CSRF expiry, a
// closed error taxonomy, and an optimistic transaction log for cart edits.
//
// The application layer supplies requests and receives classified errors and
// derived cart views; redirects, notifications, and rendering stay out of
// this package.
package storefront

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/storefront/internal/constants"
	"github.com/hyp3rd/storefront/internal/sentinel"
	"github.com/hyp3rd/storefront/pkg/cartlog"
	"github.com/hyp3rd/storefront/pkg/dispatch"
	"github.com/hyp3rd/storefront/pkg/headers"
	"github.com/hyp3rd/storefront/pkg/request"
)

// Client talks to the storefront backend. It implements Service.
type Client struct {
	dispatcher *dispatch.Dispatcher
	log        *cartlog.Log
	optimistic bool
}

// New creates a Client from the given configuration.
func New(cfg *Config) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, sentinel.ErrMissingBaseURL
	}

	if cfg.TokenStore == nil {
		return nil, sentinel.ErrNilTokenStore
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.DefaultRequestTimeout}
	}

	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, ewrap.Wrap(err, "create cookie jar")
		}

		httpClient.Jar = jar
	}

	composer, err := headers.NewComposer(
		cfg.Preferences,
		cfg.TokenStore,
		headers.CookieCSRFSource{Jar: httpClient.Jar, BaseURL: cfg.BaseURL},
	)
	if err != nil {
		return nil, err
	}

	client := &Client{
		log:        cartlog.NewLog(),
		optimistic: cfg.OptimisticCart,
	}

	dispatcher, err := dispatch.New(dispatch.Config{
		Client:           httpClient,
		BaseURL:          cfg.BaseURL,
		Composer:         composer,
		Policy:           cfg.Policy,
		Versions:         client,
		CSRF:             client,
		OnSessionExpired: cfg.OnSessionExpired,
		Logger:           cfg.Logger,
		Tracer:           cfg.Tracer,
	})
	if err != nil {
		return nil, err
	}

	client.dispatcher = dispatcher

	return client, nil
}

// NewService creates a Client wrapped in the given middlewares.
func NewService(cfg *Config, mw ...Middleware) (Service, error) {
	client, err := New(cfg)
	if err != nil {
		return nil, err
	}

	return ApplyMiddleware(client, mw...), nil
}

// send dispatches and decodes a JSON payload into target (nil target skips
// decoding). Errors are always classified.
func (c *Client) send(ctx context.Context, desc request.Descriptor, target any) error {
	payload, err := c.dispatcher.Send(ctx, desc)
	if err != nil {
		return err
	}

	if target == nil || len(payload) == 0 {
		return nil
	}

	err = json.Unmarshal(payload, target)
	if err != nil {
		return ewrap.Wrap(err, "decode response")
	}

	return nil
}

// Product fetches one catalog entry by slug.
func (c *Client) Product(ctx context.Context, slug string) (*Product, error) {
	var product Product

	desc := request.New(http.MethodGet, "/catalog/products/"+slug, request.WithGuestToken())

	err := c.send(ctx, desc, &product)
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// Products lists catalog entries matching the query.
func (c *Client) Products(ctx context.Context, query ListQuery) ([]Product, error) {
	var products []Product

	desc := request.New(http.MethodGet, "/catalog/products",
		request.WithQuery(query.values()),
		request.WithGuestToken(),
	)

	err := c.send(ctx, desc, &products)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// Favorites lists the guest favorites.
func (c *Client) Favorites(ctx context.Context) ([]Product, error) {
	var products []Product

	desc := request.New(http.MethodGet, "/favorites", request.WithGuestToken())

	err := c.send(ctx, desc, &products)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// AddFavorite adds a product to the guest favorites.
func (c *Client) AddFavorite(ctx context.Context, productID string) error {
	desc := request.New(http.MethodPost, "/favorites",
		request.WithJSONBody(map[string]string{"productId": productID}),
		request.WithGuestToken(),
		request.WithIdempotent(),
	)

	return c.send(ctx, desc, nil)
}

// Comparison lists the comparison set.
func (c *Client) Comparison(ctx context.Context) ([]Product, error) {
	var products []Product

	desc := request.New(http.MethodGet, "/comparison", request.WithComparisonToken())

	err := c.send(ctx, desc, &products)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// AddToComparison adds a product to the comparison set.
func (c *Client) AddToComparison(ctx context.Context, productID string) error {
	desc := request.New(http.MethodPost, "/comparison",
		request.WithJSONBody(map[string]string{"productId": productID}),
		request.WithComparisonToken(),
		request.WithIdempotent(),
	)

	return c.send(ctx, desc, nil)
}

// Orders lists the order history. Identity is the session cookie; an expired
// session surfaces as a classified SessionExpired after the teardown callback.
func (c *Client) Orders(ctx context.Context) ([]OrderSummary, error) {
	var orders []OrderSummary

	desc := request.New(http.MethodGet, "/orders")

	err := c.send(ctx, desc, &orders)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

// Order fetches one order by number.
func (c *Client) Order(ctx context.Context, number string) (*Order, error) {
	var order Order

	desc := request.New(http.MethodGet, "/orders/"+number)

	err := c.send(ctx, desc, &order)
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// InitiatePayment starts a payment through the unified payments contract.
func (c *Client) InitiatePayment(ctx context.Context, orderNumber, method string) (*PaymentIntent, error) {
	var intent PaymentIntent

	desc := request.New(http.MethodPost, "/payments/initiate",
		request.WithJSONBody(map[string]string{
			"orderNumber": orderNumber,
			"method":      method,
		}),
		request.WithIdempotent(),
	)

	err := c.send(ctx, desc, &intent)
	if err != nil {
		return nil, err
	}

	return &intent, nil
}

// PrimeCSRF performs the dedicated CSRF priming call. The backend answers by
// setting the protected CSRF cookie on the shared jar; the composer picks it
// up from there. Also used by the dispatcher's CSRF-expiry retry path.
func (c *Client) PrimeCSRF(ctx context.Context) error {
	desc := request.New(http.MethodGet, constants.CSRFPrimePath)

	return c.send(ctx, desc, nil)
}
