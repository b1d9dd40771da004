package storefront

import (
	"context"

	"github.com/hyp3rd/storefront/pkg/cartlog"
)

// Service is the storefront client surface the application layer consumes.
// It enables middleware to be added around the client.
type Service interface {
	cart
	catalog

	// Favorites lists the guest favorites.
	Favorites(ctx context.Context) ([]Product, error)
	// AddFavorite adds a product to the guest favorites.
	AddFavorite(ctx context.Context, productID string) error
	// Comparison lists the comparison set.
	Comparison(ctx context.Context) ([]Product, error)
	// AddToComparison adds a product to the comparison set.
	AddToComparison(ctx context.Context, productID string) error
	// Orders lists the order history of the signed-in customer.
	Orders(ctx context.Context) ([]OrderSummary, error)
	// Order fetches one order by number.
	Order(ctx context.Context, number string) (*Order, error)
	// InitiatePayment starts a payment for an order via the unified contract.
	InitiatePayment(ctx context.Context, orderNumber, method string) (*PaymentIntent, error)
	// PrimeCSRF performs the dedicated CSRF token-priming call. Must be invoked
	// before the first state-changing request of a session.
	PrimeCSRF(ctx context.Context) error
}

type cart interface {
	// Cart fetches the authoritative cart and returns the derived view.
	Cart(ctx context.Context) (cartlog.Snapshot, error)
	// CartView returns the current derived view without a network call.
	CartView(ctx context.Context) (cartlog.Snapshot, error)
	// AddItem adds a product to the cart.
	AddItem(ctx context.Context, params AddItemParams) (cartlog.Snapshot, error)
	// UpdateQuantity sets the quantity of a cart line.
	UpdateQuantity(ctx context.Context, itemID string, quantity int) (cartlog.Snapshot, error)
	// RemoveItem removes a cart line.
	RemoveItem(ctx context.Context, itemID string) (cartlog.Snapshot, error)
	// ApplyPromoCode applies a promotion code to the cart.
	ApplyPromoCode(ctx context.Context, code string) (cartlog.Snapshot, error)
}

type catalog interface {
	// Product fetches one catalog entry by slug.
	Product(ctx context.Context, slug string) (*Product, error)
	// Products lists catalog entries matching the query.
	Products(ctx context.Context, query ListQuery) ([]Product, error)
}

// Middleware describes a service middleware.
type Middleware func(Service) Service

// ApplyMiddleware applies middlewares to a service.
func ApplyMiddleware(svc Service, mw ...Middleware) Service {
	// Apply each middleware in the chain
	for _, m := range mw {
		svc = m(svc)
	}
	// Return the decorated service
	return svc
}
