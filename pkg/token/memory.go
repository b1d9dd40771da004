package token

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemory is a process-local token store scoped to a single session. It backs
// server-side rendering contexts where the session state lives with the
// request, and every test.
type InMemory struct {
	mu       sync.RWMutex
	tokens   map[Kind]string
	generate Generator
}

// NewInMemory creates an in-memory token store.
func NewInMemory(opts ...Option[InMemory]) *InMemory {
	store := &InMemory{
		tokens:   make(map[Kind]string),
		generate: uuid.NewString,
	}
	ApplyOptions(store, opts...)

	return store
}

// Get returns the token for the kind if one exists.
func (s *InMemory) Get(_ context.Context, kind Kind) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tok, ok := s.tokens[kind]

	return tok, ok, nil
}

// GetOrCreate returns the existing token or mints and stores a new one.
func (s *InMemory) GetOrCreate(_ context.Context, kind Kind) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok, ok := s.tokens[kind]; ok {
		return tok, nil
	}

	tok := s.generate()
	s.tokens[kind] = tok

	return tok, nil
}
