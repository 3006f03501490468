package prefdeck

import (
	"fmt"

	"github.com/prefdeck/prefdeck/history"
	"github.com/prefdeck/prefdeck/model"
	"github.com/prefdeck/prefdeck/notify"
	"github.com/prefdeck/prefdeck/search"
	"github.com/prefdeck/prefdeck/storage"
)

// Preferences is the library entry point: a configured model plus its
// search handler, with fluent configuration and pass-through operations
// for the surrounding application.
type Preferences struct {
	model  *model.Model
	search *search.Handler
}

// New builds a preferences instance over the category tree and loads the
// persisted setting values. Settings whose keys were never saved keep
// their declared defaults; history recording stays clean across the load.
//
// Defaults: saving enabled, instant persistence enabled, window-state
// persistence disabled.
func New(handler storage.Handler, categories ...*model.Category) (*Preferences, error) {
	m, err := model.New(handler, categories)
	if err != nil {
		return nil, fmt.Errorf("build preferences model: %w", err)
	}
	if err := m.LoadSettingValues(); err != nil {
		return nil, fmt.Errorf("load setting values: %w", err)
	}
	return &Preferences{
		model:  m,
		search: search.New(m),
	}, nil
}

// SaveSettings toggles setting persistence. Disabling it wipes stored
// preferences and the undo log. Returns the receiver for chaining.
func (p *Preferences) SaveSettings(enabled bool) *Preferences {
	_ = p.model.SetSaveEnabled(enabled)
	return p
}

// PersistWindowState toggles persistence of window geometry and the
// displayed category. When enabling, the previously displayed category is
// restored from storage.
func (p *Preferences) PersistWindowState(enabled bool) *Preferences {
	p.model.SetPersistWindowState(enabled)
	if enabled {
		_ = p.model.LoadDisplayedCategory()
	}
	return p
}

// PersistApplicationState toggles both setting persistence and
// window-state persistence at once.
func (p *Preferences) PersistApplicationState(enabled bool) *Preferences {
	return p.SaveSettings(enabled).PersistWindowState(enabled)
}

// InstantPersistent toggles write-through persistence of applied changes.
func (p *Preferences) InstantPersistent(enabled bool) *Preferences {
	p.model.SetInstantPersistent(enabled)
	return p
}

// Model returns the underlying preferences model.
func (p *Preferences) Model() *model.Model {
	return p.model
}

// Search returns the search handler over the category tree.
func (p *Preferences) Search() *search.Handler {
	return p.search
}

// Setting looks up a setting by breadcrumb.
func (p *Preferences) Setting(breadcrumb string) (*model.Setting, bool) {
	return p.model.Setting(breadcrumb)
}

// Category looks up a category by breadcrumb.
func (p *Preferences) Category(breadcrumb string) (*model.Category, bool) {
	return p.model.Category(breadcrumb)
}

// Save persists every setting value.
func (p *Preferences) Save() error {
	return p.model.SaveSettings()
}

// DiscardChanges rolls back every change made this session and returns
// how many were undone. Persisted storage is untouched.
func (p *Preferences) DiscardChanges() int {
	return p.model.DiscardChanges()
}

// Undo rolls back the most recent change. history.ErrNothingToUndo marks
// the log boundary and is benign.
func (p *Preferences) Undo() error {
	return p.model.Undo()
}

// Redo re-applies the most recently undone change.
func (p *Preferences) Redo() error {
	return p.model.Redo()
}

// ContainsChanges reports whether any change is pending undo.
func (p *Preferences) ContainsChanges() bool {
	return p.model.ContainsChanges()
}

// UndoInfo lists the applied changes, oldest first.
func (p *Preferences) UndoInfo() []history.ChangeInfo {
	return p.model.History().UndoInfo()
}

// RedoInfo lists the undone changes, next-to-redo first.
func (p *Preferences) RedoInfo() []history.ChangeInfo {
	return p.model.History().RedoInfo()
}

// Subscribe registers an observer for every model change.
func (p *Preferences) Subscribe(observer notify.Observer) *notify.Subscription {
	return p.model.Notifier().Subscribe(observer)
}

// SubscribeBreadcrumb registers an observer scoped to a breadcrumb and
// everything beneath it.
func (p *Preferences) SubscribeBreadcrumb(breadcrumb string, observer notify.Observer) *notify.Subscription {
	return p.model.Notifier().SubscribeBreadcrumb(breadcrumb, observer)
}

// ClearPreferences wipes every stored key, setting values and application
// state alike. Declared defaults apply on the next load.
func (p *Preferences) ClearPreferences() error {
	return p.model.Handler().ClearPreferences()
}
