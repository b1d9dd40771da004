package token

import "context"

// Dual layers two stores the way the storefront layers cookie and local
// persistence in the browser: reads prefer the primary, fall back to the
// secondary, and every token found or created is written through to both so
// the stores converge.
type Dual struct {
	primary   Store
	secondary Store
}

// NewDual creates a dual store. Both stores must be non-nil.
func NewDual(primary, secondary Store) *Dual {
	return &Dual{primary: primary, secondary: secondary}
}

// Get checks the primary store first, then the secondary. A token found only
// in the secondary is replicated into the primary.
func (d *Dual) Get(ctx context.Context, kind Kind) (string, bool, error) {
	tok, ok, err := d.primary.Get(ctx, kind)
	if err != nil {
		return "", false, err
	}

	if ok {
		return tok, true, nil
	}

	tok, ok, err = d.secondary.Get(ctx, kind)
	if err != nil || !ok {
		return "", false, err
	}

	// Heal the primary; ignore a lost race, GetOrCreate keeps the stored value.
	if mem, isMem := d.primary.(*InMemory); isMem {
		mem.mu.Lock()
		if _, exists := mem.tokens[kind]; !exists {
			mem.tokens[kind] = tok
		}
		mem.mu.Unlock()
	}

	return tok, true, nil
}

// GetOrCreate resolves the token through Get semantics and creates it in the
// primary when both stores miss. The created token is visible to subsequent
// Gets on either path.
func (d *Dual) GetOrCreate(ctx context.Context, kind Kind) (string, error) {
	tok, ok, err := d.Get(ctx, kind)
	if err != nil {
		return "", err
	}

	if ok {
		return tok, nil
	}

	return d.primary.GetOrCreate(ctx, kind)
}
