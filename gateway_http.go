package storefront

import (
	"context"
	"net"
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v3"
	"github.com/goccy/go-json"
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/storefront/internal/sentinel"
	"github.com/hyp3rd/storefront/pkg/apierror"
)

// GatewayOption configures the gateway HTTP server.
type GatewayOption func(*Gateway)

// Gateway exposes the thin proxy routes the storefront server mounts under
// /api: cart and catalog operations forwarded through the client. Page
// rendering and routing live elsewhere; this is only the JSON edge.
type Gateway struct {
	addr         string
	app          *fiber.App
	svc          Service
	readTimeout  time.Duration
	writeTimeout time.Duration
	authFunc     func(fiber.Ctx) error
	ln           net.Listener
	started      bool
}

// WithGatewayAuth sets an auth function (return error to block).
func WithGatewayAuth(fn func(fiber.Ctx) error) GatewayOption {
	return func(g *Gateway) { g.authFunc = fn }
}

// WithGatewayReadTimeout sets read timeout.
func WithGatewayReadTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.readTimeout = d }
}

// WithGatewayWriteTimeout sets write timeout.
func WithGatewayWriteTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.writeTimeout = d }
}

const (
	defaultGatewayReadTimeout  = 5 * time.Second
	defaultGatewayWriteTimeout = 5 * time.Second
)

// NewGateway builds a gateway holder (lazy start).
func NewGateway(addr string, svc Service, opts ...GatewayOption) *Gateway {
	gw := &Gateway{
		addr:         addr,
		svc:          svc,
		readTimeout:  defaultGatewayReadTimeout,
		writeTimeout: defaultGatewayWriteTimeout,
	}
	for _, opt := range opts { // apply options
		opt(gw)
	}

	return gw
}

// Start launches the listener (idempotent). The given context is the request
// base context for every proxied call and bounds the listen itself.
func (g *Gateway) Start(ctx context.Context) error {
	if g.started { // idempotent
		return nil
	}

	g.app = fiber.New(fiber.Config{
		ReadTimeout:  g.readTimeout,
		WriteTimeout: g.writeTimeout,
	})
	g.mountRoutes(ctx)

	lc := net.ListenConfig{}

	ln, err := lc.Listen(ctx, "tcp", g.addr)
	if err != nil {
		return ewrap.Wrap(err, "gateway listen")
	}

	g.ln = ln

	go func() {
		serveErr := g.app.Listener(ln)
		if serveErr != nil {
			return
		}
	}()

	g.started = true

	return nil
}

// Address returns the bound address (useful when passing ":0" for an
// ephemeral port). Empty if not started yet.
func (g *Gateway) Address() string {
	if g.ln == nil {
		return ""
	}

	return g.ln.Addr().String()
}

// Shutdown stops the server.
func (g *Gateway) Shutdown(ctx context.Context) error {
	if !g.started {
		return nil
	}

	ch := make(chan error, 1)

	go func() {
		ch <- g.app.Shutdown()
	}()

	select {
	case <-ctx.Done():
		return sentinel.ErrGatewayShutdownTimeout
	case err := <-ch:
		return err
	}
}

// mountRoutes registers the proxy endpoints onto the fiber app.
func (g *Gateway) mountRoutes(ctx context.Context) {
	useAuth := g.wrapAuth
	g.registerHealth(ctx, useAuth)
	g.registerCart(ctx, useAuth)
	g.registerCatalog(ctx, useAuth)
}

// wrapAuth returns an auth-wrapped handler if authFunc is provided.
func (g *Gateway) wrapAuth(handler fiber.Handler) fiber.Handler {
	if g.authFunc == nil {
		return handler
	}

	return func(fiberCtx fiber.Ctx) error {
		authErr := g.authFunc(fiberCtx)
		if authErr != nil {
			return authErr
		}

		return handler(fiberCtx)
	}
}

func (g *Gateway) registerHealth(ctx context.Context, useAuth func(fiber.Handler) fiber.Handler) {
	g.app.Get("/healthz", useAuth(func(fiberCtx fiber.Ctx) error { return fiberCtx.SendString("ok") }))
	g.app.Get("/api/csrf", useAuth(func(fiberCtx fiber.Ctx) error {
		err := g.svc.PrimeCSRF(ctx)
		if err != nil {
			return respondClassified(fiberCtx, err)
		}

		return fiberCtx.SendStatus(fiber.StatusNoContent)
	}))
}

func (g *Gateway) registerCart(ctx context.Context, useAuth func(fiber.Handler) fiber.Handler) {
	g.app.Get("/api/cart", useAuth(func(fiberCtx fiber.Ctx) error {
		view, err := g.svc.Cart(ctx)
		if err != nil {
			return respondClassified(fiberCtx, err)
		}

		return fiberCtx.JSON(view)
	}))
	g.app.Post("/api/cart/items", useAuth(func(fiberCtx fiber.Ctx) error {
		var params AddItemParams

		err := json.Unmarshal(fiberCtx.Body(), &params)
		if err != nil {
			return fiberCtx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
		}

		view, err := g.svc.AddItem(ctx, params)
		if err != nil {
			return respondClassified(fiberCtx, err)
		}

		return fiberCtx.JSON(view)
	}))
	g.app.Patch("/api/cart/items/:id", useAuth(func(fiberCtx fiber.Ctx) error {
		var body struct {
			Quantity int `json:"quantity"`
		}

		err := json.Unmarshal(fiberCtx.Body(), &body)
		if err != nil {
			return fiberCtx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
		}

		view, err := g.svc.UpdateQuantity(ctx, fiberCtx.Params("id"), body.Quantity)
		if err != nil {
			return respondClassified(fiberCtx, err)
		}

		return fiberCtx.JSON(view)
	}))
	g.app.Delete("/api/cart/items/:id", useAuth(func(fiberCtx fiber.Ctx) error {
		view, err := g.svc.RemoveItem(ctx, fiberCtx.Params("id"))
		if err != nil {
			return respondClassified(fiberCtx, err)
		}

		return fiberCtx.JSON(view)
	}))
	g.app.Post("/api/cart/promotions", useAuth(func(fiberCtx fiber.Ctx) error {
		var body struct {
			Code string `json:"code"`
		}

		err := json.Unmarshal(fiberCtx.Body(), &body)
		if err != nil {
			return fiberCtx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
		}

		view, err := g.svc.ApplyPromoCode(ctx, body.Code)
		if err != nil {
			return respondClassified(fiberCtx, err)
		}

		return fiberCtx.JSON(view)
	}))
}

func (g *Gateway) registerCatalog(ctx context.Context, useAuth func(fiber.Handler) fiber.Handler) {
	g.app.Get("/api/catalog/products", useAuth(func(fiberCtx fiber.Ctx) error {
		query := ListQuery{
			Search:   fiberCtx.Query("q"),
			Category: fiberCtx.Query("category"),
			Page:     intQuery(fiberCtx, "page"),
			PerPage:  intQuery(fiberCtx, "perPage"),
		}

		products, err := g.svc.Products(ctx, query)
		if err != nil {
			return respondClassified(fiberCtx, err)
		}

		return fiberCtx.JSON(products)
	}))
	g.app.Get("/api/catalog/products/:slug", useAuth(func(fiberCtx fiber.Ctx) error {
		product, err := g.svc.Product(ctx, fiberCtx.Params("slug"))
		if err != nil {
			return respondClassified(fiberCtx, err)
		}

		return fiberCtx.JSON(product)
	}))
}

// intQuery parses an integer query parameter, zero when absent or malformed.
func intQuery(fiberCtx fiber.Ctx, key string) int {
	raw := fiberCtx.Query(key)
	if raw == "" {
		return 0
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}

	return n
}

// respondClassified renders a classified error with its original status; the
// taxonomy kind travels in the payload so the page layer can pattern-match.
func respondClassified(fiberCtx fiber.Ctx, err error) error {
	clsErr, ok := apierror.From(err)
	if !ok {
		return fiberCtx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"kind": apierror.KindUnknown, "message": "internal error"})
	}

	return fiberCtx.Status(clsErr.Status).JSON(clsErr)
}
