// Package reconcile models the client side of the mutation pipeline: a
// local change applied optimistically before the server responds, and the
// bookkeeping needed to confirm or roll it back once the pipeline's
// terminal state is known. This is deliberately separate from the server
// pipeline's own atomicity.
package reconcile

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State tracks one optimistic mutation through its lifecycle.
type State string

const (
	// StatePending: applied locally, server outcome unknown.
	StatePending State = "pending"
	// StateConfirmed: server reported success; undoable within the window.
	StateConfirmed State = "confirmed"
	// StateRolledBack: server reported failure, or the user undid the
	// change within the undo window. Terminal.
	StateRolledBack State = "rolled_back"
)

var (
	// ErrUnknownMutation is returned for ids the ledger never issued.
	ErrUnknownMutation = errors.New("unknown mutation")
	// ErrNotPending is returned when confirm/rollback hits a terminal entry.
	ErrNotPending = errors.New("mutation already reconciled")
	// ErrUndoExpired is returned when the undo window has closed.
	ErrUndoExpired = errors.New("undo window expired")
)

// Entry is the ledger's record of one optimistic mutation.
type Entry struct {
	ID          string
	TaskID      int64
	State       State
	AppliedAt   time.Time
	ConfirmedAt time.Time
}

// Ledger tracks optimistic local mutations awaiting server confirmation.
// Safe for concurrent use.
type Ledger struct {
	mu         sync.Mutex
	entries    map[string]*Entry
	undoWindow time.Duration
	now        func() time.Time
}

// NewLedger constructs a ledger whose confirmed entries stay undoable for
// undoWindow after confirmation.
func NewLedger(undoWindow time.Duration) *Ledger {
	return &Ledger{
		entries:    make(map[string]*Entry),
		undoWindow: undoWindow,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Apply records a locally-applied change and returns its ledger entry.
func (l *Ledger) Apply(taskID int64) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := &Entry{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		State:     StatePending,
		AppliedAt: l.now(),
	}
	l.entries[entry.ID] = entry
	return *entry
}

// Confirm marks a pending mutation as accepted by the server and starts
// the undo window.
func (l *Ledger) Confirm(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[id]
	if !ok {
		return ErrUnknownMutation
	}
	if entry.State != StatePending {
		return ErrNotPending
	}
	entry.State = StateConfirmed
	entry.ConfirmedAt = l.now()
	return nil
}

// Rollback marks a pending mutation as rejected by the server; the local
// change must be reverted.
func (l *Ledger) Rollback(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[id]
	if !ok {
		return ErrUnknownMutation
	}
	if entry.State != StatePending {
		return ErrNotPending
	}
	entry.State = StateRolledBack
	return nil
}

// Undo reverts a confirmed mutation. Allowed only within the undo window;
// after that the change is final.
func (l *Ledger) Undo(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[id]
	if !ok {
		return ErrUnknownMutation
	}
	if entry.State != StateConfirmed {
		return ErrNotPending
	}
	if l.now().Sub(entry.ConfirmedAt) > l.undoWindow {
		return ErrUndoExpired
	}
	entry.State = StateRolledBack
	return nil
}

// Get returns a copy of the entry for id.
func (l *Ledger) Get(id string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Pending lists entries still awaiting a server outcome.
func (l *Ledger) Pending() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0)
	for _, entry := range l.entries {
		if entry.State == StatePending {
			out = append(out, *entry)
		}
	}
	return out
}
