package token

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestInMemory_LazyCreation(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	if _, ok, err := store.Get(ctx, KindGuest); err != nil || ok {
		t.Fatalf("expected no token before first use, got ok=%v err=%v", ok, err)
	}

	tok, err := store.GetOrCreate(ctx, KindGuest)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}

	if tok == "" {
		t.Fatal("expected a non-empty token")
	}

	again, err := store.GetOrCreate(ctx, KindGuest)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}

	if again != tok {
		t.Fatalf("expected token reuse, got %q then %q", tok, again)
	}
}

func TestInMemory_KindsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	cart, _ := store.GetOrCreate(ctx, KindCart)
	guest, _ := store.GetOrCreate(ctx, KindGuest)
	comparison, _ := store.GetOrCreate(ctx, KindComparison)

	if cart == guest || guest == comparison || cart == comparison {
		t.Fatal("expected distinct tokens per kind")
	}
}

func TestInMemory_WithGenerator(t *testing.T) {
	ctx := context.Background()

	n := 0
	store := NewInMemory(WithGenerator[InMemory](func() string {
		n++

		return fmt.Sprintf("tok-%d", n)
	}))

	tok, err := store.GetOrCreate(ctx, KindCart)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}

	if tok != "tok-1" {
		t.Fatalf("expected generated token, got %q", tok)
	}
}

func TestInMemory_ConcurrentGetOrCreate(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	const goroutines = 16

	tokens := make([]string, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			tok, err := store.GetOrCreate(ctx, KindCart)
			if err != nil {
				t.Errorf("GetOrCreate error: %v", err)
			}

			tokens[i] = tok
		}(i)
	}

	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if tokens[i] != tokens[0] {
			t.Fatalf("expected a single token across racers, got %q and %q", tokens[0], tokens[i])
		}
	}
}

func TestDual_ReadThroughAndHealing(t *testing.T) {
	ctx := context.Background()

	primary := NewInMemory()
	secondary := NewInMemory()

	seeded, err := secondary.GetOrCreate(ctx, KindGuest)
	if err != nil {
		t.Fatalf("seed error: %v", err)
	}

	dual := NewDual(primary, secondary)

	tok, ok, err := dual.Get(ctx, KindGuest)
	if err != nil || !ok || tok != seeded {
		t.Fatalf("expected fallback to secondary, got %q ok=%v err=%v", tok, ok, err)
	}

	// The primary must now hold the healed token.
	healed, ok, err := primary.Get(ctx, KindGuest)
	if err != nil || !ok || healed != seeded {
		t.Fatalf("expected healed primary, got %q ok=%v err=%v", healed, ok, err)
	}
}

func TestDual_CreateInPrimaryOnDoubleMiss(t *testing.T) {
	ctx := context.Background()

	primary := NewInMemory()
	secondary := NewInMemory()
	dual := NewDual(primary, secondary)

	tok, err := dual.GetOrCreate(ctx, KindComparison)
	if err != nil || tok == "" {
		t.Fatalf("GetOrCreate error: %v tok=%q", err, tok)
	}

	fromPrimary, ok, err := primary.Get(ctx, KindComparison)
	if err != nil || !ok || fromPrimary != tok {
		t.Fatalf("expected primary to own the created token, got %q ok=%v err=%v", fromPrimary, ok, err)
	}
}
