package cartlog

import (
	"time"

	"github.com/google/uuid"
)

// OpKind is the kind of a pending cart operation.
type OpKind string

const (
	// OpAdd adds a line (or raises the quantity of an existing one).
	OpAdd OpKind = "add"
	// OpUpdateQty sets the quantity of an existing line.
	OpUpdateQty OpKind = "update_qty"
	// OpRemove removes a line.
	OpRemove OpKind = "remove"
)

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	return string(k)
}

// Op is a pending cart operation. ID doubles as the idempotency key of the
// request that carries the operation to the backend, which is how server
// responses are matched back to queue entries.
type Op struct {
	// ID is the stable operation identifier, minted once per logical operation.
	ID string
	// Kind selects the mutation.
	Kind OpKind
	// ItemID targets an existing line for update/remove. For adds it is the
	// line id the optimistic view uses until the server assigns one.
	ItemID string
	// SKU, Name, UnitPrice describe the added product (OpAdd only).
	SKU       string
	Name      string
	UnitPrice int64
	// Quantity is the added amount (OpAdd) or the new absolute quantity (OpUpdateQty).
	Quantity int
	// EnqueuedAt records when the user action happened.
	EnqueuedAt time.Time
}

// NewAdd builds an add operation.
func NewAdd(sku, name string, unitPrice int64, quantity int) Op {
	id := uuid.NewString()

	return Op{
		ID:         id,
		Kind:       OpAdd,
		ItemID:     id,
		SKU:        sku,
		Name:       name,
		UnitPrice:  unitPrice,
		Quantity:   quantity,
		EnqueuedAt: time.Now(),
	}
}

// NewUpdateQty builds a quantity-change operation for an existing line.
func NewUpdateQty(itemID string, quantity int) Op {
	return Op{
		ID:         uuid.NewString(),
		Kind:       OpUpdateQty,
		ItemID:     itemID,
		Quantity:   quantity,
		EnqueuedAt: time.Now(),
	}
}

// NewRemove builds a line-removal operation.
func NewRemove(itemID string) Op {
	return Op{
		ID:         uuid.NewString(),
		Kind:       OpRemove,
		ItemID:     itemID,
		EnqueuedAt: time.Now(),
	}
}

// apply folds the operation into the snapshot in place. The caller passes a
// deep copy; the confirmed snapshot is never handed to apply directly.
func (op Op) apply(s *Snapshot) {
	switch op.Kind {
	case OpAdd:
		for i := range s.Items {
			if s.Items[i].SKU == op.SKU {
				s.Items[i].Quantity += op.Quantity
				s.recalc()

				return
			}
		}

		s.Items = append(s.Items, Item{
			ID:        op.ItemID,
			SKU:       op.SKU,
			Name:      op.Name,
			Quantity:  op.Quantity,
			UnitPrice: op.UnitPrice,
		})
	case OpUpdateQty:
		if i := s.item(op.ItemID); i >= 0 {
			s.Items[i].Quantity = op.Quantity
		}
	case OpRemove:
		if i := s.item(op.ItemID); i >= 0 {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
		}
	}

	s.recalc()
}
