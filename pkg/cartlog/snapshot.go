// Package cartlog maintains the optimistic transaction log for the cart: the
// last confirmed server snapshot, the queue of pending operations, and the
// derived view obtained by replaying the queue over a deep copy of the
// snapshot. The confirmed snapshot is owned exclusively by this package and
// replaced wholesale on every confirmation.
package cartlog

import (
	"bytes"

	"github.com/hyp3rd/ewrap"
	"github.com/ugorji/go/codec"
)

// Item is a cart line. Amounts are integer cents to keep arithmetic exact.
type Item struct {
	ID        string `json:"id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPriceCents"`
	LineTotal int64  `json:"lineTotalCents"`
}

// Promotion is an applied cart-level promotion.
type Promotion struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Discount int64  `json:"discountCents"`
}

// Snapshot is the authoritative cart state as last confirmed by the backend,
// or a derived view computed from one. Version is the optimistic-concurrency
// marker mirrored back on mutations; AppliedOperations lists the idempotency
// keys the backend has folded into this state.
type Snapshot struct {
	Items             []Item      `json:"items"`
	Promotions        []Promotion `json:"promotions,omitempty"`
	Subtotal          int64       `json:"subtotalCents"`
	Discount          int64       `json:"discountCents"`
	Total             int64       `json:"totalCents"`
	Currency          string      `json:"currency"`
	Version           uint64      `json:"version"`
	AppliedOperations []string    `json:"appliedOperations,omitempty"`
}

// cborHandle is shared across clones; the handle itself is stateless.
//
//nolint:gochecknoglobals
var cborHandle = &codec.CborHandle{}

// Clone deep-copies the snapshot through a CBOR round-trip so that replaying
// pending operations can never corrupt the last-known-good state.
func (s Snapshot) Clone() (Snapshot, error) {
	var buf bytes.Buffer

	err := codec.NewEncoder(&buf, cborHandle).Encode(s)
	if err != nil {
		return Snapshot{}, ewrap.Wrap(err, "encode snapshot")
	}

	var out Snapshot

	err = codec.NewDecoder(&buf, cborHandle).Decode(&out)
	if err != nil {
		return Snapshot{}, ewrap.Wrap(err, "decode snapshot")
	}

	return out, nil
}

// item returns the index of the line with the given id, or -1.
func (s *Snapshot) item(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}

	return -1
}

// recalc recomputes line totals and cart totals from items and promotions.
func (s *Snapshot) recalc() {
	var subtotal int64

	for i := range s.Items {
		s.Items[i].LineTotal = s.Items[i].UnitPrice * int64(s.Items[i].Quantity)
		subtotal += s.Items[i].LineTotal
	}

	var discount int64
	for i := range s.Promotions {
		discount += s.Promotions[i].Discount
	}

	if discount > subtotal {
		discount = subtotal
	}

	s.Subtotal = subtotal
	s.Discount = discount
	s.Total = subtotal - discount
}
