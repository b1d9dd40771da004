// Package token persists the client-generated identity tokens that convey
// guest identity to the backend: one token each for the cart, favorites, and
// comparison subsystems. Tokens are created lazily on first need and are
// stable for the life of the browsing session; a store never regenerates a
// token while a value already exists.
package token

import "context"

// Kind identifies the subsystem an identity token belongs to.
type Kind string

const (
	// KindCart identifies the guest cart token.
	KindCart Kind = "cart"
	// KindGuest identifies the guest favorites token.
	KindGuest Kind = "guest"
	// KindComparison identifies the comparison-list token.
	KindComparison Kind = "comparison"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// Store is the identity-token persistence contract. Implementations must be
// safe for interleaved reads and must honor create-if-absent semantics: two
// concurrent GetOrCreate calls for the same kind yield the same token.
type Store interface {
	// Get returns the token for the kind, with ok=false when none exists yet.
	Get(ctx context.Context, kind Kind) (token string, ok bool, err error)
	// GetOrCreate returns the existing token for the kind, creating and
	// persisting a new one only when absent.
	GetOrCreate(ctx context.Context, kind Kind) (token string, err error)
}

// Generator produces new token values. The default is a random UUID.
type Generator func() string
