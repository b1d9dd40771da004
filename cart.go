package storefront

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/storefront/pkg/apierror"
	"github.com/hyp3rd/storefront/pkg/cartlog"
	"github.com/hyp3rd/storefront/pkg/request"
)

// Cart fetches the authoritative cart state and returns the derived view
// (confirmed snapshot replayed with whatever is still pending).
func (c *Client) Cart(ctx context.Context) (cartlog.Snapshot, error) {
	desc := request.New(http.MethodGet, "/cart", request.WithCartToken())

	payload, err := c.dispatcher.Send(ctx, desc)
	if err != nil {
		return cartlog.Snapshot{}, err
	}

	snap, err := decodeSnapshot(payload)
	if err != nil {
		return cartlog.Snapshot{}, err
	}

	return c.log.Replace(snap)
}

// CartView returns the current derived view without touching the network.
func (c *Client) CartView(_ context.Context) (cartlog.Snapshot, error) {
	return c.log.View()
}

// AddItem adds a product to the cart.
func (c *Client) AddItem(ctx context.Context, params AddItemParams) (cartlog.Snapshot, error) {
	op := cartlog.NewAdd(params.SKU, params.Name, params.Price, params.Quantity)

	desc := request.New(http.MethodPost, "/cart/items",
		request.WithJSONBody(params),
		request.WithCartToken(),
	)

	return c.mutate(ctx, op, desc)
}

// UpdateQuantity sets the quantity of a cart line.
func (c *Client) UpdateQuantity(ctx context.Context, itemID string, quantity int) (cartlog.Snapshot, error) {
	op := cartlog.NewUpdateQty(itemID, quantity)

	desc := request.New(http.MethodPatch, "/cart/items/"+itemID,
		request.WithJSONBody(map[string]int{"quantity": quantity}),
		request.WithCartToken(),
	)

	return c.mutate(ctx, op, desc)
}

// RemoveItem removes a cart line.
func (c *Client) RemoveItem(ctx context.Context, itemID string) (cartlog.Snapshot, error) {
	op := cartlog.NewRemove(itemID)

	desc := request.New(http.MethodDelete, "/cart/items/"+itemID,
		request.WithCartToken(),
	)

	return c.mutate(ctx, op, desc)
}

// ApplyPromoCode applies a promotion code. Promotions bypass the pending
// queue — the optimistic view cannot predict the discount the backend will
// compute, so the call is synchronous in both modes.
func (c *Client) ApplyPromoCode(ctx context.Context, code string) (cartlog.Snapshot, error) {
	desc := request.New(http.MethodPost, "/cart/promotions",
		request.WithJSONBody(map[string]string{"code": code}),
		request.WithCartToken(),
	)

	return c.mutateSync(ctx, desc)
}

// mutate runs one cart mutation. With the optimistic gate on, the operation
// is queued first so concurrent readers see the derived view immediately; the
// operation id doubles as the idempotency key, which is how the backend's
// response is matched back to the queue entry. With the gate off the call is
// plainly synchronous and no queue exists.
func (c *Client) mutate(ctx context.Context, op cartlog.Op, desc request.Descriptor) (cartlog.Snapshot, error) {
	if !c.optimistic {
		return c.mutateSync(ctx, desc)
	}

	_, err := c.log.Enqueue(op)
	if err != nil {
		return cartlog.Snapshot{}, err
	}

	payload, err := c.dispatcher.Send(ctx, desc.WithKey(op.ID))
	if err != nil {
		return c.settleFailure(op.ID, err)
	}

	snap, err := decodeSnapshot(payload)
	if err != nil {
		// The mutation may have been applied server-side; keep the op pending
		// until the next authoritative fetch settles it.
		view, _ := c.log.View()

		return view, err
	}

	return c.log.Confirm(op.ID, snap)
}

// settleFailure applies the rollback policy: authoritative rejections
// (validation, terminal version conflict) remove the one operation they
// reject; everything else — transient failures, rate limiting — leaves the
// operation pending for an explicit retry.
func (c *Client) settleFailure(opID string, err error) (cartlog.Snapshot, error) {
	clsErr, ok := apierror.From(err)
	if ok {
		switch clsErr.Kind {
		case apierror.KindValidation, apierror.KindConcurrencyConflict:
			view, _ := c.log.Rollback(opID)

			return view, err
		}
	}

	view, _ := c.log.View()

	return view, err
}

// mutateSync sends the mutation and swaps the authoritative result straight in.
func (c *Client) mutateSync(ctx context.Context, desc request.Descriptor) (cartlog.Snapshot, error) {
	payload, err := c.dispatcher.Send(ctx, desc)
	if err != nil {
		return cartlog.Snapshot{}, err
	}

	snap, err := decodeSnapshot(payload)
	if err != nil {
		return cartlog.Snapshot{}, err
	}

	return c.log.Replace(snap)
}

// CartVersion implements dispatch.VersionSource.
func (c *Client) CartVersion(_ context.Context) (uint64, bool) {
	return c.log.Version()
}

// RefreshCartVersion implements dispatch.VersionSource: it fetches the
// authoritative cart so the next If-Match reflects the current version.
func (c *Client) RefreshCartVersion(ctx context.Context) (uint64, error) {
	snap, err := c.Cart(ctx)
	if err != nil {
		return 0, err
	}

	return snap.Version, nil
}

// decodeSnapshot decodes a cart payload.
func decodeSnapshot(payload []byte) (cartlog.Snapshot, error) {
	var snap cartlog.Snapshot

	err := json.Unmarshal(payload, &snap)
	if err != nil {
		return cartlog.Snapshot{}, ewrap.Wrap(err, "decode cart payload")
	}

	return snap, nil
}
