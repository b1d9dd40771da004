package middleware

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyp3rd/storefront"
	"github.com/hyp3rd/storefront/pkg/cartlog"
)

// OTelMetricsMiddleware emits OpenTelemetry metrics for service methods.
type OTelMetricsMiddleware struct {
	next  storefront.Service
	meter metric.Meter

	// instruments
	calls     metric.Int64Counter
	durations metric.Float64Histogram
}

// NewOTelMetricsMiddleware constructs a metrics middleware using the provided meter.
func NewOTelMetricsMiddleware(next storefront.Service, meter metric.Meter) (storefront.Service, error) {
	calls, err := meter.Int64Counter("storefront.calls")
	if err != nil {
		return nil, fmt.Errorf("create counter: %w", err)
	}

	durations, err := meter.Float64Histogram("storefront.duration.ms")
	if err != nil {
		return nil, fmt.Errorf("create histogram: %w", err)
	}

	return &OTelMetricsMiddleware{next: next, meter: meter, calls: calls, durations: durations}, nil
}

// Cart implements Service.Cart with metrics.
func (mw *OTelMetricsMiddleware) Cart(ctx context.Context) (cartlog.Snapshot, error) {
	start := time.Now()
	snap, err := mw.next.Cart(ctx)
	mw.rec(ctx, "Cart", start, err, attribute.Int("items.count", len(snap.Items)))

	return snap, err
}

// CartView implements Service.CartView with metrics.
func (mw *OTelMetricsMiddleware) CartView(ctx context.Context) (cartlog.Snapshot, error) {
	start := time.Now()
	snap, err := mw.next.CartView(ctx)
	mw.rec(ctx, "CartView", start, err, attribute.Int("items.count", len(snap.Items)))

	return snap, err
}

// AddItem implements Service.AddItem with metrics.
func (mw *OTelMetricsMiddleware) AddItem(ctx context.Context, params storefront.AddItemParams) (cartlog.Snapshot, error) {
	start := time.Now()
	snap, err := mw.next.AddItem(ctx, params)
	mw.rec(ctx, "AddItem", start, err, attribute.Int("quantity", params.Quantity))

	return snap, err
}

// UpdateQuantity implements Service.UpdateQuantity with metrics.
func (mw *OTelMetricsMiddleware) UpdateQuantity(ctx context.Context, itemID string, quantity int) (cartlog.Snapshot, error) {
	start := time.Now()
	snap, err := mw.next.UpdateQuantity(ctx, itemID, quantity)
	mw.rec(ctx, "UpdateQuantity", start, err, attribute.Int("quantity", quantity))

	return snap, err
}

// RemoveItem implements Service.RemoveItem with metrics.
func (mw *OTelMetricsMiddleware) RemoveItem(ctx context.Context, itemID string) (cartlog.Snapshot, error) {
	start := time.Now()
	snap, err := mw.next.RemoveItem(ctx, itemID)
	mw.rec(ctx, "RemoveItem", start, err)

	return snap, err
}

// ApplyPromoCode implements Service.ApplyPromoCode with metrics.
func (mw *OTelMetricsMiddleware) ApplyPromoCode(ctx context.Context, code string) (cartlog.Snapshot, error) {
	start := time.Now()
	snap, err := mw.next.ApplyPromoCode(ctx, code)
	mw.rec(ctx, "ApplyPromoCode", start, err)

	return snap, err
}

// Product implements Service.Product with metrics.
func (mw *OTelMetricsMiddleware) Product(ctx context.Context, slug string) (*storefront.Product, error) {
	start := time.Now()
	product, err := mw.next.Product(ctx, slug)
	mw.rec(ctx, "Product", start, err)

	return product, err
}

// Products implements Service.Products with metrics.
func (mw *OTelMetricsMiddleware) Products(ctx context.Context, query storefront.ListQuery) ([]storefront.Product, error) {
	start := time.Now()
	products, err := mw.next.Products(ctx, query)
	mw.rec(ctx, "Products", start, err, attribute.Int("result.count", len(products)))

	return products, err
}

// Favorites implements Service.Favorites with metrics.
func (mw *OTelMetricsMiddleware) Favorites(ctx context.Context) ([]storefront.Product, error) {
	start := time.Now()
	products, err := mw.next.Favorites(ctx)
	mw.rec(ctx, "Favorites", start, err, attribute.Int("result.count", len(products)))

	return products, err
}

// AddFavorite implements Service.AddFavorite with metrics.
func (mw *OTelMetricsMiddleware) AddFavorite(ctx context.Context, productID string) error {
	start := time.Now()
	err := mw.next.AddFavorite(ctx, productID)
	mw.rec(ctx, "AddFavorite", start, err)

	return err
}

// Comparison implements Service.Comparison with metrics.
func (mw *OTelMetricsMiddleware) Comparison(ctx context.Context) ([]storefront.Product, error) {
	start := time.Now()
	products, err := mw.next.Comparison(ctx)
	mw.rec(ctx, "Comparison", start, err, attribute.Int("result.count", len(products)))

	return products, err
}

// AddToComparison implements Service.AddToComparison with metrics.
func (mw *OTelMetricsMiddleware) AddToComparison(ctx context.Context, productID string) error {
	start := time.Now()
	err := mw.next.AddToComparison(ctx, productID)
	mw.rec(ctx, "AddToComparison", start, err)

	return err
}

// Orders implements Service.Orders with metrics.
func (mw *OTelMetricsMiddleware) Orders(ctx context.Context) ([]storefront.OrderSummary, error) {
	start := time.Now()
	orders, err := mw.next.Orders(ctx)
	mw.rec(ctx, "Orders", start, err, attribute.Int("result.count", len(orders)))

	return orders, err
}

// Order implements Service.Order with metrics.
func (mw *OTelMetricsMiddleware) Order(ctx context.Context, number string) (*storefront.Order, error) {
	start := time.Now()
	order, err := mw.next.Order(ctx, number)
	mw.rec(ctx, "Order", start, err)

	return order, err
}

// InitiatePayment implements Service.InitiatePayment with metrics.
func (mw *OTelMetricsMiddleware) InitiatePayment(ctx context.Context, orderNumber, method string) (*storefront.PaymentIntent, error) {
	start := time.Now()
	intent, err := mw.next.InitiatePayment(ctx, orderNumber, method)
	mw.rec(ctx, "InitiatePayment", start, err, attribute.String("payment.method", method))

	return intent, err
}

// PrimeCSRF implements Service.PrimeCSRF with metrics.
func (mw *OTelMetricsMiddleware) PrimeCSRF(ctx context.Context) error {
	start := time.Now()
	err := mw.next.PrimeCSRF(ctx)
	mw.rec(ctx, "PrimeCSRF", start, err)

	return err
}

// rec records call count and duration with attributes.
func (mw *OTelMetricsMiddleware) rec(ctx context.Context, method string, start time.Time, err error, attrs ...attribute.KeyValue) {
	base := []attribute.KeyValue{attribute.String("method", method), attribute.Bool("error", err != nil)}
	if len(attrs) > 0 {
		base = append(base, attrs...)
	}

	mw.calls.Add(ctx, 1, metric.WithAttributes(base...))
	mw.durations.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(base...))
}
