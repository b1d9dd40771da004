package cartlog

import (
	"errors"
	"testing"

	"github.com/hyp3rd/storefront/internal/sentinel"
)

func confirmedLog(t *testing.T, snap Snapshot) *Log {
	t.Helper()

	l := NewLog()

	_, err := l.Replace(snap)
	if err != nil {
		t.Fatalf("Replace error: %v", err)
	}

	return l
}

func baseSnapshot() Snapshot {
	s := Snapshot{
		Items: []Item{
			{ID: "line-1", SKU: "sku-1", Name: "Mug", Quantity: 1, UnitPrice: 1200},
		},
		Currency: "USD",
		Version:  5,
	}
	s.recalc()

	return s
}

func TestLog_EnqueueProducesOptimisticView(t *testing.T) {
	l := confirmedLog(t, baseSnapshot())

	op := NewAdd("sku-2", "Poster", 900, 2)

	view, err := l.Enqueue(op)
	if err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}

	if len(view.Items) != 2 {
		t.Fatalf("expected 2 items in view, got %d", len(view.Items))
	}

	if view.Total != 1200+2*900 {
		t.Fatalf("unexpected view total: %d", view.Total)
	}

	// The confirmed snapshot must be untouched by the replay.
	confirmed, err := l.Confirmed()
	if err != nil {
		t.Fatalf("Confirmed error: %v", err)
	}

	if len(confirmed.Items) != 1 {
		t.Fatalf("confirmed snapshot mutated: %d items", len(confirmed.Items))
	}
}

func TestLog_RollbackRemovesOnlyTargetOperation(t *testing.T) {
	l := confirmedLog(t, baseSnapshot())

	opA := NewAdd("sku-a", "A", 100, 1)
	opB := NewAdd("sku-b", "B", 200, 1)
	opC := NewAdd("sku-c", "C", 300, 1)

	for _, op := range []Op{opA, opB, opC} {
		if _, err := l.Enqueue(op); err != nil {
			t.Fatalf("Enqueue error: %v", err)
		}
	}

	view, err := l.Rollback(opB.ID)
	if err != nil {
		t.Fatalf("Rollback error: %v", err)
	}

	if l.IsPending(opB.ID) {
		t.Fatal("expected rolled back operation to be gone")
	}

	if !l.IsPending(opA.ID) || !l.IsPending(opC.ID) {
		t.Fatal("expected other pending operations to survive the rollback")
	}

	// View keeps A and C applied: base line plus two optimistic lines.
	if len(view.Items) != 3 {
		t.Fatalf("expected 3 items in view, got %d", len(view.Items))
	}
}

func TestLog_RollbackUnknownOperation(t *testing.T) {
	l := confirmedLog(t, baseSnapshot())

	_, err := l.Rollback("nope")
	if !errors.Is(err, sentinel.ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
}

func TestLog_ConfirmDropsAppliedOperations(t *testing.T) {
	l := confirmedLog(t, baseSnapshot())

	first := NewAdd("sku-a", "A", 100, 1)
	second := NewAdd("sku-b", "B", 200, 1)

	for _, op := range []Op{first, second} {
		if _, err := l.Enqueue(op); err != nil {
			t.Fatalf("Enqueue error: %v", err)
		}
	}

	// The response for the second operation arrives first and demonstrates the
	// backend already folded in the first as well.
	snap := baseSnapshot()
	snap.Version = 7
	snap.AppliedOperations = []string{first.ID}

	if _, err := l.Confirm(second.ID, snap); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}

	if len(l.PendingIDs()) != 0 {
		t.Fatalf("expected empty queue, got %v", l.PendingIDs())
	}

	version, known := l.Version()
	if !known || version != 7 {
		t.Fatalf("expected confirmed version 7, got %d known=%v", version, known)
	}
}

func TestLog_ConfirmIsIdempotent(t *testing.T) {
	l := confirmedLog(t, baseSnapshot())

	op := NewAdd("sku-a", "A", 100, 1)

	if _, err := l.Enqueue(op); err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}

	snap := baseSnapshot()
	snap.Version = 6

	if _, err := l.Confirm(op.ID, snap); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}

	// Confirming the same operation again must not disturb the queue or the
	// confirmed state.
	if _, err := l.Confirm(op.ID, snap); err != nil {
		t.Fatalf("second Confirm error: %v", err)
	}

	if len(l.PendingIDs()) != 0 {
		t.Fatalf("expected empty queue, got %v", l.PendingIDs())
	}
}

func TestLog_ConfirmDiscardsStaleSnapshot(t *testing.T) {
	l := confirmedLog(t, baseSnapshot())

	fresh := baseSnapshot()
	fresh.Version = 9
	fresh.Items = append(fresh.Items, Item{ID: "line-2", SKU: "sku-9", Name: "New", Quantity: 1, UnitPrice: 500})
	fresh.recalc()

	if _, err := l.Replace(fresh); err != nil {
		t.Fatalf("Replace error: %v", err)
	}

	op := NewRemove("line-2")

	if _, err := l.Enqueue(op); err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}

	// A delayed response carrying an older version settles the operation but
	// must not regress the confirmed state.
	stale := baseSnapshot()
	stale.Version = 6

	if _, err := l.Confirm(op.ID, stale); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}

	if l.IsPending(op.ID) {
		t.Fatal("expected stale confirmation to still settle the operation")
	}

	version, _ := l.Version()
	if version != 9 {
		t.Fatalf("expected confirmed version to stay 9, got %d", version)
	}
}

func TestLog_ViewBeforeFirstConfirm(t *testing.T) {
	l := NewLog()

	op := NewAdd("sku-a", "A", 250, 2)

	view, err := l.Enqueue(op)
	if err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}

	if len(view.Items) != 1 || view.Total != 500 {
		t.Fatalf("unexpected view before first confirm: %+v", view)
	}

	if _, known := l.Version(); known {
		t.Fatal("version must be unknown before the first confirmation")
	}
}
