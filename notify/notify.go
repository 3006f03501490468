// Package notify provides change notification for the preferences model.
//
// The package implements an observer pattern that lets a presentation layer
// subscribe to model changes (value edits, search marks, visibility flips,
// category selection) and react without the model knowing anything about
// widgets. Delivery is synchronous: when Notify returns, every observer has
// seen the change, so an observer reading model state always sees a
// consistent snapshot.
package notify

import (
	"strings"
	"sync"
)

// ChangeType represents the type of model change.
type ChangeType int

const (
	// ChangeValueSet indicates a setting's value was changed.
	ChangeValueSet ChangeType = iota

	// ChangeMarked indicates a setting was marked as a search match.
	ChangeMarked

	// ChangeUnmarked indicates a setting's search mark was removed.
	ChangeUnmarked

	// ChangeVisibility indicates a category's visibility flag flipped.
	ChangeVisibility

	// ChangeCategorySelected indicates the displayed category changed.
	ChangeCategorySelected

	// ChangeCategoryMatched indicates the best search match changed.
	ChangeCategoryMatched

	// ChangeSaved indicates all setting values were persisted.
	ChangeSaved

	// ChangeDiscarded indicates the session's changes were rolled back.
	ChangeDiscarded
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeValueSet:
		return "valueSet"
	case ChangeMarked:
		return "marked"
	case ChangeUnmarked:
		return "unmarked"
	case ChangeVisibility:
		return "visibility"
	case ChangeCategorySelected:
		return "categorySelected"
	case ChangeCategoryMatched:
		return "categoryMatched"
	case ChangeSaved:
		return "saved"
	case ChangeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Change represents a single model change event.
type Change struct {
	// Breadcrumb is the path of the setting or category the change applies
	// to. Empty for model-wide events such as ChangeSaved.
	Breadcrumb string

	// Type is the type of change.
	Type ChangeType

	// OldValue is the previous value where applicable.
	OldValue any

	// NewValue is the new value where applicable.
	NewValue any

	// Source identifies what triggered the change: "user", "load",
	// "replay", or "search".
	Source string
}

// Observer is called when a model change occurs.
type Observer func(change Change)

// Subscription represents an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages change subscriptions and delivers events.
type Notifier struct {
	mu sync.RWMutex

	// delimiter joins breadcrumb segments; used for prefix-scoped observers.
	delimiter string

	// Observers that receive every change.
	globalObservers map[uint64]Observer

	// Observers scoped to a breadcrumb and everything beneath it.
	crumbObservers map[string]map[uint64]Observer

	nextID uint64
}

// New creates a Notifier using the given breadcrumb delimiter.
func New(delimiter string) *Notifier {
	return &Notifier{
		delimiter:       delimiter,
		globalObservers: make(map[uint64]Observer),
		crumbObservers:  make(map[string]map[uint64]Observer),
	}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.globalObservers[id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribeBreadcrumb registers an observer for changes at the given
// breadcrumb or anywhere beneath it. Subscribing to "General" receives
// changes to "General#Dark Mode".
func (n *Notifier) SubscribeBreadcrumb(breadcrumb string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	if n.crumbObservers[breadcrumb] == nil {
		n.crumbObservers[breadcrumb] = make(map[uint64]Observer)
	}
	n.crumbObservers[breadcrumb][id] = observer

	return &Subscription{id: id, notifier: n}
}

// Notify delivers a change to every matching observer before returning.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()

	observers := make([]Observer, 0, len(n.globalObservers))
	for _, obs := range n.globalObservers {
		observers = append(observers, obs)
	}

	if change.Breadcrumb != "" {
		for crumb, crumbObs := range n.crumbObservers {
			if crumb == change.Breadcrumb || n.isAncestor(crumb, change.Breadcrumb) {
				for _, obs := range crumbObs {
					observers = append(observers, obs)
				}
			}
		}
	}

	n.mu.RUnlock()

	// Observers run outside the lock so they may subscribe or unsubscribe.
	for _, obs := range observers {
		obs(change)
	}
}

// NotifyValueSet is a convenience method for value changes.
func (n *Notifier) NotifyValueSet(breadcrumb string, oldValue, newValue any, source string) {
	n.Notify(Change{
		Breadcrumb: breadcrumb,
		Type:       ChangeValueSet,
		OldValue:   oldValue,
		NewValue:   newValue,
		Source:     source,
	})
}

// unsubscribe removes an observer by ID.
func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.globalObservers, id)

	for crumb, observers := range n.crumbObservers {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.crumbObservers, crumb)
		}
	}
}

// isAncestor checks if ancestor is a proper breadcrumb prefix of child.
func (n *Notifier) isAncestor(ancestor, child string) bool {
	if ancestor == "" {
		return true
	}
	return strings.HasPrefix(child, ancestor+n.delimiter)
}

// Batch collects changes and delivers them together on Commit. Used for
// bulk operations such as load, so observers see one burst in order.
type Batch struct {
	mu       sync.Mutex
	notifier *Notifier
	changes  []Change
}

// NewBatch creates a batch bound to this notifier.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{notifier: n}
}

// Add appends a change to the batch.
func (b *Batch) Add(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, change)
}

// Commit delivers all batched changes in order and empties the batch.
func (b *Batch) Commit() {
	b.mu.Lock()
	changes := b.changes
	b.changes = nil
	b.mu.Unlock()

	for _, change := range changes {
		b.notifier.Notify(change)
	}
}

// Discard empties the batch without delivering anything.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = nil
}

// Len returns the number of pending changes.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}
