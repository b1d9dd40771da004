// Package middleware provides service middlewares for the storefront client.
// This package includes logging middleware that wraps the storefront service to
// provide execution time logging and method call tracing for debugging and
// monitoring purposes.
package middleware

import (
	"context"
	"time"

	"github.com/hyp3rd/storefront"
	"github.com/hyp3rd/storefront/pkg/cartlog"
)

// Logger describes a logging interface allowing to implement different external, or custom logger.
// Tested with logrus, and Uber's Zap (high-performance), but should work with any other logger that matches the interface.
type Logger interface {
	Printf(format string, v ...any)
}

// LoggingMiddleware is a middleware that logs the time it takes to execute the next middleware.
// Must implement the storefront.Service interface.
type LoggingMiddleware struct {
	next   storefront.Service
	logger Logger
}

// NewLoggingMiddleware returns a new LoggingMiddleware.
func NewLoggingMiddleware(next storefront.Service, logger Logger) storefront.Service {
	return &LoggingMiddleware{next: next, logger: logger}
}

// Cart logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) Cart(ctx context.Context) (cartlog.Snapshot, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method Cart took: %s", time.Since(begin))
	}(time.Now())

	return mw.next.Cart(ctx)
}

// CartView is a pure read of local state; not worth a log line.
func (mw LoggingMiddleware) CartView(ctx context.Context) (cartlog.Snapshot, error) {
	return mw.next.CartView(ctx)
}

// AddItem logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) AddItem(ctx context.Context, params storefront.AddItemParams) (cartlog.Snapshot, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method AddItem took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("AddItem method invoked with sku: %s quantity: %d", params.SKU, params.Quantity)

	return mw.next.AddItem(ctx, params)
}

// UpdateQuantity logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) UpdateQuantity(ctx context.Context, itemID string, quantity int) (cartlog.Snapshot, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method UpdateQuantity took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("UpdateQuantity method invoked with item: %s quantity: %d", itemID, quantity)

	return mw.next.UpdateQuantity(ctx, itemID, quantity)
}

// RemoveItem logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) RemoveItem(ctx context.Context, itemID string) (cartlog.Snapshot, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method RemoveItem took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("RemoveItem method invoked with item: %s", itemID)

	return mw.next.RemoveItem(ctx, itemID)
}

// ApplyPromoCode logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) ApplyPromoCode(ctx context.Context, code string) (cartlog.Snapshot, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method ApplyPromoCode took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("ApplyPromoCode method invoked with code: %s", code)

	return mw.next.ApplyPromoCode(ctx, code)
}

// Product logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) Product(ctx context.Context, slug string) (*storefront.Product, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method Product took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("Product method invoked with slug: %s", slug)

	return mw.next.Product(ctx, slug)
}

// Products logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) Products(ctx context.Context, query storefront.ListQuery) ([]storefront.Product, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method Products took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("Products method invoked with search: %s category: %s", query.Search, query.Category)

	return mw.next.Products(ctx, query)
}

// Favorites logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) Favorites(ctx context.Context) ([]storefront.Product, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method Favorites took: %s", time.Since(begin))
	}(time.Now())

	return mw.next.Favorites(ctx)
}

// AddFavorite logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) AddFavorite(ctx context.Context, productID string) error {
	defer func(begin time.Time) {
		mw.logger.Printf("method AddFavorite took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("AddFavorite method invoked with product: %s", productID)

	return mw.next.AddFavorite(ctx, productID)
}

// Comparison logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) Comparison(ctx context.Context) ([]storefront.Product, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method Comparison took: %s", time.Since(begin))
	}(time.Now())

	return mw.next.Comparison(ctx)
}

// AddToComparison logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) AddToComparison(ctx context.Context, productID string) error {
	defer func(begin time.Time) {
		mw.logger.Printf("method AddToComparison took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("AddToComparison method invoked with product: %s", productID)

	return mw.next.AddToComparison(ctx, productID)
}

// Orders logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) Orders(ctx context.Context) ([]storefront.OrderSummary, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method Orders took: %s", time.Since(begin))
	}(time.Now())

	return mw.next.Orders(ctx)
}

// Order logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) Order(ctx context.Context, number string) (*storefront.Order, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method Order took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("Order method invoked with number: %s", number)

	return mw.next.Order(ctx, number)
}

// InitiatePayment logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) InitiatePayment(ctx context.Context, orderNumber, method string) (*storefront.PaymentIntent, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method InitiatePayment took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("InitiatePayment method invoked with order: %s method: %s", orderNumber, method)

	return mw.next.InitiatePayment(ctx, orderNumber, method)
}

// PrimeCSRF logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) PrimeCSRF(ctx context.Context) error {
	defer func(begin time.Time) {
		mw.logger.Printf("method PrimeCSRF took: %s", time.Since(begin))
	}(time.Now())

	return mw.next.PrimeCSRF(ctx)
}
