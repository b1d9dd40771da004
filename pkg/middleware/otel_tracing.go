package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyp3rd/storefront"
	"github.com/hyp3rd/storefront/pkg/cartlog"
)

// OTelTracingMiddleware wraps storefront.Service methods with OpenTelemetry spans.
type OTelTracingMiddleware struct {
	next   storefront.Service
	tracer trace.Tracer
	// static attributes applied to all spans
	commonAttrs []attribute.KeyValue
}

// OTelTracingOption allows configuring the tracing middleware.
type OTelTracingOption func(*OTelTracingMiddleware)

// WithCommonAttributes sets attributes applied to all spans.
func WithCommonAttributes(attributes ...attribute.KeyValue) OTelTracingOption {
	return func(m *OTelTracingMiddleware) { m.commonAttrs = append(m.commonAttrs, attributes...) }
}

// NewOTelTracingMiddleware creates a tracing middleware.
func NewOTelTracingMiddleware(next storefront.Service, tracer trace.Tracer, opts ...OTelTracingOption) storefront.Service {
	mw := &OTelTracingMiddleware{next: next, tracer: tracer}
	for _, o := range opts {
		o(mw)
	}

	return mw
}

// Cart implements Service.Cart with tracing.
func (mw OTelTracingMiddleware) Cart(ctx context.Context) (cartlog.Snapshot, error) {
	ctx, span := mw.startSpan(ctx, "storefront.Cart")
	defer span.End()

	snap, err := mw.next.Cart(ctx)
	if err != nil {
		span.RecordError(err)
	}

	span.SetAttributes(attribute.Int("items.count", len(snap.Items)))

	return snap, err
}

// CartView implements Service.CartView with tracing.
func (mw OTelTracingMiddleware) CartView(ctx context.Context) (cartlog.Snapshot, error) {
	ctx, span := mw.startSpan(ctx, "storefront.CartView")
	defer span.End()

	return mw.next.CartView(ctx)
}

// AddItem implements Service.AddItem with tracing.
func (mw OTelTracingMiddleware) AddItem(ctx context.Context, params storefront.AddItemParams) (cartlog.Snapshot, error) {
	ctx, span := mw.startSpan(ctx, "storefront.AddItem",
		attribute.String("item.sku", params.SKU),
		attribute.Int("item.quantity", params.Quantity))
	defer span.End()

	snap, err := mw.next.AddItem(ctx, params)
	if err != nil {
		span.RecordError(err)
	}

	return snap, err
}

// UpdateQuantity implements Service.UpdateQuantity with tracing.
func (mw OTelTracingMiddleware) UpdateQuantity(ctx context.Context, itemID string, quantity int) (cartlog.Snapshot, error) {
	ctx, span := mw.startSpan(ctx, "storefront.UpdateQuantity",
		attribute.String("item.id", itemID),
		attribute.Int("item.quantity", quantity))
	defer span.End()

	snap, err := mw.next.UpdateQuantity(ctx, itemID, quantity)
	if err != nil {
		span.RecordError(err)
	}

	return snap, err
}

// RemoveItem implements Service.RemoveItem with tracing.
func (mw OTelTracingMiddleware) RemoveItem(ctx context.Context, itemID string) (cartlog.Snapshot, error) {
	ctx, span := mw.startSpan(ctx, "storefront.RemoveItem", attribute.String("item.id", itemID))
	defer span.End()

	snap, err := mw.next.RemoveItem(ctx, itemID)
	if err != nil {
		span.RecordError(err)
	}

	return snap, err
}

// ApplyPromoCode implements Service.ApplyPromoCode with tracing.
func (mw OTelTracingMiddleware) ApplyPromoCode(ctx context.Context, code string) (cartlog.Snapshot, error) {
	ctx, span := mw.startSpan(ctx, "storefront.ApplyPromoCode")
	defer span.End()

	snap, err := mw.next.ApplyPromoCode(ctx, code)
	if err != nil {
		span.RecordError(err)
	}

	return snap, err
}

// Product implements Service.Product with tracing.
func (mw OTelTracingMiddleware) Product(ctx context.Context, slug string) (*storefront.Product, error) {
	ctx, span := mw.startSpan(ctx, "storefront.Product", attribute.String("product.slug", slug))
	defer span.End()

	product, err := mw.next.Product(ctx, slug)
	if err != nil {
		span.RecordError(err)
	}

	return product, err
}

// Products implements Service.Products with tracing.
func (mw OTelTracingMiddleware) Products(ctx context.Context, query storefront.ListQuery) ([]storefront.Product, error) {
	ctx, span := mw.startSpan(ctx, "storefront.Products",
		attribute.String("query.search", query.Search),
		attribute.String("query.category", query.Category))
	defer span.End()

	products, err := mw.next.Products(ctx, query)
	if err != nil {
		span.RecordError(err)
	}

	span.SetAttributes(attribute.Int("result.count", len(products)))

	return products, err
}

// Favorites implements Service.Favorites with tracing.
func (mw OTelTracingMiddleware) Favorites(ctx context.Context) ([]storefront.Product, error) {
	ctx, span := mw.startSpan(ctx, "storefront.Favorites")
	defer span.End()

	products, err := mw.next.Favorites(ctx)
	if err != nil {
		span.RecordError(err)
	}

	return products, err
}

// AddFavorite implements Service.AddFavorite with tracing.
func (mw OTelTracingMiddleware) AddFavorite(ctx context.Context, productID string) error {
	ctx, span := mw.startSpan(ctx, "storefront.AddFavorite", attribute.String("product.id", productID))
	defer span.End()

	err := mw.next.AddFavorite(ctx, productID)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

// Comparison implements Service.Comparison with tracing.
func (mw OTelTracingMiddleware) Comparison(ctx context.Context) ([]storefront.Product, error) {
	ctx, span := mw.startSpan(ctx, "storefront.Comparison")
	defer span.End()

	products, err := mw.next.Comparison(ctx)
	if err != nil {
		span.RecordError(err)
	}

	return products, err
}

// AddToComparison implements Service.AddToComparison with tracing.
func (mw OTelTracingMiddleware) AddToComparison(ctx context.Context, productID string) error {
	ctx, span := mw.startSpan(ctx, "storefront.AddToComparison", attribute.String("product.id", productID))
	defer span.End()

	err := mw.next.AddToComparison(ctx, productID)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

// Orders implements Service.Orders with tracing.
func (mw OTelTracingMiddleware) Orders(ctx context.Context) ([]storefront.OrderSummary, error) {
	ctx, span := mw.startSpan(ctx, "storefront.Orders")
	defer span.End()

	orders, err := mw.next.Orders(ctx)
	if err != nil {
		span.RecordError(err)
	}

	return orders, err
}

// Order implements Service.Order with tracing.
func (mw OTelTracingMiddleware) Order(ctx context.Context, number string) (*storefront.Order, error) {
	ctx, span := mw.startSpan(ctx, "storefront.Order", attribute.String("order.number", number))
	defer span.End()

	order, err := mw.next.Order(ctx, number)
	if err != nil {
		span.RecordError(err)
	}

	return order, err
}

// InitiatePayment implements Service.InitiatePayment with tracing.
func (mw OTelTracingMiddleware) InitiatePayment(ctx context.Context, orderNumber, method string) (*storefront.PaymentIntent, error) {
	ctx, span := mw.startSpan(ctx, "storefront.InitiatePayment",
		attribute.String("order.number", orderNumber),
		attribute.String("payment.method", method))
	defer span.End()

	intent, err := mw.next.InitiatePayment(ctx, orderNumber, method)
	if err != nil {
		span.RecordError(err)
	}

	return intent, err
}

// PrimeCSRF implements Service.PrimeCSRF with tracing.
func (mw OTelTracingMiddleware) PrimeCSRF(ctx context.Context) error {
	ctx, span := mw.startSpan(ctx, "storefront.PrimeCSRF")
	defer span.End()

	err := mw.next.PrimeCSRF(ctx)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

// startSpan starts a span with common and provided attributes.
func (mw OTelTracingMiddleware) startSpan(ctx context.Context, name string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := mw.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	if len(mw.commonAttrs) > 0 {
		span.SetAttributes(mw.commonAttrs...)
	}

	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}

	return ctx, span
}
