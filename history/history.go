// Package history provides the linear undo/redo log for preference changes.
//
// The log is a single ordered sequence of changes with a cursor. Everything
// before the cursor is applied and undoable; everything at or after it has
// been undone and is redoable. Recording a fresh change truncates the redo
// tail, which is the classic linear-history behavior.
//
// Recording has an arm/disarm switch. Bulk loads and undo/redo replay run
// with recording disarmed; otherwise replay writes would append their own
// reversals and corrupt the log. Only the aggregating model and the replay
// paths in this package may toggle the switch.
package history

import (
	"errors"
	"sync"
	"time"

	"github.com/prefdeck/prefdeck/value"
)

// Common errors for history operations. Callers should treat both as benign
// boundary signals rather than failures.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Target is the value cell a recorded change applies to. Restore must set
// the value directly, without validation and without recording; the
// implementing setting still emits its change notification so observers
// stay in sync during replay.
type Target interface {
	// Breadcrumb returns the target's path, used for change listings.
	Breadcrumb() string

	// Restore sets the target's value for undo/redo replay.
	Restore(v *value.Value) error
}

// Change is one recorded value transition.
type Change struct {
	Target    Target
	Old       *value.Value
	New       *value.Value
	Timestamp time.Time
}

// NewChange creates a change with snapshots of both values.
func NewChange(target Target, old, new *value.Value) *Change {
	return &Change{
		Target:    target,
		Old:       old.Clone(),
		New:       new.Clone(),
		Timestamp: time.Now(),
	}
}

// ChangeInfo is a read-only description of a recorded change, used for
// history debug listings.
type ChangeInfo struct {
	Breadcrumb string
	OldValue   string
	NewValue   string
	Timestamp  time.Time
}

// DefaultMaxEntries caps the log when no explicit limit is configured.
const DefaultMaxEntries = 1000

// History manages the undo/redo log. A new History starts disarmed; the
// owning model arms it once construction and the initial load are done.
type History struct {
	mu sync.Mutex

	changes  []*Change
	position int

	armed      bool
	maxEntries int
}

// New creates a history log with the given capacity.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Arm enables recording.
func (h *History) Arm() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.armed = true
}

// Disarm disables recording. Changes offered while disarmed are dropped.
func (h *History) Disarm() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.armed = false
}

// Armed reports whether recording is enabled.
func (h *History) Armed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.armed
}

// Record appends a change at the cursor, discarding any undone tail first.
// A change recorded while disarmed is silently dropped; this is what keeps
// load-time writes and replay writes out of the log.
func (h *History) Record(ch *Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.armed {
		return
	}

	// Truncate the redo tail: a fresh edit forks the timeline and the
	// abandoned branch is never resurrected.
	h.changes = append(h.changes[:h.position], ch)
	h.position = len(h.changes)

	if len(h.changes) > h.maxEntries {
		excess := len(h.changes) - h.maxEntries
		h.changes = h.changes[excess:]
		h.position -= excess
	}
}

// Undo steps the cursor back one change and re-applies its old value.
// Returns ErrNothingToUndo at the log's start.
//
// The lock is released and recording suppressed while the target value is
// restored, since Restore triggers the same notification path that feeds
// Record.
func (h *History) Undo() error {
	h.mu.Lock()
	if h.position == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}
	h.position--
	ch := h.changes[h.position]
	wasArmed := h.armed
	h.armed = false
	h.mu.Unlock()

	err := ch.Target.Restore(ch.Old.Clone())

	h.mu.Lock()
	h.armed = wasArmed
	if err != nil {
		// Put the cursor back so the failed change stays undoable.
		h.position++
	}
	h.mu.Unlock()
	return err
}

// Redo re-applies the change at the cursor and advances it.
// Returns ErrNothingToRedo at the log's end.
func (h *History) Redo() error {
	h.mu.Lock()
	if h.position == len(h.changes) {
		h.mu.Unlock()
		return ErrNothingToRedo
	}
	ch := h.changes[h.position]
	h.position++
	wasArmed := h.armed
	h.armed = false
	h.mu.Unlock()

	err := ch.Target.Restore(ch.New.Clone())

	h.mu.Lock()
	h.armed = wasArmed
	if err != nil {
		h.position--
	}
	h.mu.Unlock()
	return err
}

// UndoAll undoes every applied change and returns how many were undone.
func (h *History) UndoAll() int {
	count := 0
	for {
		if err := h.Undo(); err != nil {
			return count
		}
		count++
	}
}

// RedoAll redoes every undone change and returns how many were redone.
func (h *History) RedoAll() int {
	count := 0
	for {
		if err := h.Redo(); err != nil {
			return count
		}
		count++
	}
}

// CanUndo returns true if at least one change can be undone.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position > 0
}

// CanRedo returns true if at least one change can be redone.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position < len(h.changes)
}

// Len returns the total number of recorded changes, applied and undone.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.changes)
}

// Position returns the cursor: the count of currently applied changes.
func (h *History) Position() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position
}

// Clear empties the log and resets the cursor. Used when settings
// persistence is disabled entirely.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.changes = nil
	h.position = 0
}

// UndoInfo lists the applied changes, oldest first.
func (h *History) UndoInfo() []ChangeInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]ChangeInfo, h.position)
	for i := 0; i < h.position; i++ {
		result[i] = infoFor(h.changes[i])
	}
	return result
}

// RedoInfo lists the undone changes, next-to-redo first.
func (h *History) RedoInfo() []ChangeInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]ChangeInfo, 0, len(h.changes)-h.position)
	for i := h.position; i < len(h.changes); i++ {
		result = append(result, infoFor(h.changes[i]))
	}
	return result
}

func infoFor(ch *Change) ChangeInfo {
	return ChangeInfo{
		Breadcrumb: ch.Target.Breadcrumb(),
		OldValue:   ch.Old.String(),
		NewValue:   ch.New.String(),
		Timestamp:  ch.Timestamp,
	}
}
