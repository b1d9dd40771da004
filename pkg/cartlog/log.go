package cartlog

import (
	"sync"

	"github.com/hyp3rd/storefront/internal/sentinel"
)

// Log is the optimistic transaction log. It owns the confirmed snapshot and
// the pending queue; no other component mutates either. All methods are safe
// for concurrent use — multiple logical operations may be in flight at once
// and their confirmations may arrive in any order.
type Log struct {
	mu        sync.Mutex
	confirmed Snapshot
	primed    bool
	pending   []Op
}

// NewLog creates an empty log. The zero confirmed snapshot stands in until
// the first authoritative cart state arrives via Confirm or Replace.
func NewLog() *Log {
	return &Log{}
}

// Enqueue appends the operation and returns the recomputed derived view, so
// the caller can render optimistically before the backend answers.
func (l *Log) Enqueue(op Op) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending = append(l.pending, op)

	return l.viewLocked()
}

// Confirm folds an authoritative snapshot in after the request for opID
// succeeded. It removes opID and every other pending operation the snapshot
// demonstrably reflects (listed in AppliedOperations), then replaces the
// confirmed snapshot wholesale — unless the snapshot is older than the one
// already confirmed, in which case the stale payload is discarded and only
// the operation bookkeeping happens. Confirm is idempotent: confirming an
// operation that was already confirmed or rolled back is a no-op for the
// queue.
func (l *Log) Confirm(opID string, snap Snapshot) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	accounted := make(map[string]struct{}, len(snap.AppliedOperations)+1)
	if opID != "" {
		accounted[opID] = struct{}{}
	}

	for _, id := range snap.AppliedOperations {
		accounted[id] = struct{}{}
	}

	l.dropLocked(accounted)

	if !l.primed || snap.Version >= l.confirmed.Version {
		l.confirmed = snap
		l.primed = true
	}

	return l.viewLocked()
}

// Replace swaps in an authoritative snapshot from a plain read (GET cart).
// Pending operations are kept unless the snapshot accounts for them.
func (l *Log) Replace(snap Snapshot) (Snapshot, error) {
	return l.Confirm("", snap)
}

// Rollback removes exactly one pending operation after an authoritative
// rejection (validation failure or terminal version conflict) and returns the
// derived view recomputed from the untouched confirmed snapshot plus the
// remaining queue. Transient failures must not be rolled back; the operation
// stays pending for an explicit user retry.
func (l *Log) Rollback(opID string) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	found := false

	kept := l.pending[:0]

	for _, op := range l.pending {
		if op.ID == opID {
			found = true

			continue
		}

		kept = append(kept, op)
	}

	l.pending = kept

	if !found {
		view, _ := l.viewLocked()

		return view, sentinel.ErrOperationNotFound
	}

	return l.viewLocked()
}

// View returns the current derived view: replay(confirmed, pending).
func (l *Log) View() (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.viewLocked()
}

// Confirmed returns a deep copy of the last confirmed snapshot.
func (l *Log) Confirmed() (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.confirmed.Clone()
}

// Version returns the confirmed cart version and whether one is known yet.
func (l *Log) Version() (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.confirmed.Version, l.primed
}

// PendingIDs returns the ids of queued operations in insertion order.
func (l *Log) PendingIDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.pending))
	for _, op := range l.pending {
		ids = append(ids, op.ID)
	}

	return ids
}

// IsPending reports whether the operation is still queued.
func (l *Log) IsPending(opID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, op := range l.pending {
		if op.ID == opID {
			return true
		}
	}

	return false
}

// dropLocked removes every pending operation whose id is accounted for.
func (l *Log) dropLocked(accounted map[string]struct{}) {
	if len(accounted) == 0 || len(l.pending) == 0 {
		return
	}

	kept := l.pending[:0]

	for _, op := range l.pending {
		if _, ok := accounted[op.ID]; ok {
			continue
		}

		kept = append(kept, op)
	}

	l.pending = kept
}

// viewLocked recomputes the derived view. Pure with respect to the confirmed
// snapshot: the replay always starts from a deep copy.
func (l *Log) viewLocked() (Snapshot, error) {
	view, err := l.confirmed.Clone()
	if err != nil {
		return Snapshot{}, err
	}

	for _, op := range l.pending {
		op.apply(&view)
	}

	return view, nil
}
