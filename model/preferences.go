// Package model implements the preferences data model: typed settings, the
// category tree with computed breadcrumbs, and the aggregating Model that
// owns history, notification, and the storage handler.
package model

import (
	"fmt"

	"github.com/prefdeck/prefdeck/history"
	"github.com/prefdeck/prefdeck/notify"
	"github.com/prefdeck/prefdeck/storage"
)

// DefaultDelimiter joins breadcrumb segments. It must stay stable across
// save/load cycles; changing it invalidates previously stored keys unless
// settings pin explicit key overrides.
const DefaultDelimiter = "#"

// Reserved storage keys for application state the model persists alongside
// setting values.
const (
	WindowWidthKey      = "WINDOW_WIDTH"
	WindowHeightKey     = "WINDOW_HEIGHT"
	WindowPosXKey       = "WINDOW_POS_X"
	WindowPosYKey       = "WINDOW_POS_Y"
	DividerPositionKey  = "DIVIDER_POSITION"
	SelectedCategoryKey = "SELECTED_CATEGORY"
)

// WindowState is the editing surface geometry the model can persist for
// applications that restore their preferences window between sessions.
type WindowState struct {
	Width           float64
	Height          float64
	PosX            float64
	PosY            float64
	DividerPosition float64
}

// Option configures a Model.
type Option func(*Model)

// WithDelimiter overrides the breadcrumb delimiter.
func WithDelimiter(delimiter string) Option {
	return func(m *Model) { m.delimiter = delimiter }
}

// WithMaxHistory caps the undo/redo log.
func WithMaxHistory(n int) Option {
	return func(m *Model) { m.maxHistory = n }
}

// Model aggregates the category tree, history, notification, and storage.
// It exclusively owns the tree root and the history log; the storage
// handler is injected, not owned.
//
// All mutations run on one logical thread in response to presentation-layer
// callbacks; operations are synchronous and return with the model in a
// consistent state.
type Model struct {
	delimiter  string
	maxHistory int

	categories []*Category
	handler    storage.Handler
	hist       *history.History
	notifier   *notify.Notifier

	settingByCrumb  map[string]*Setting
	categoryByCrumb map[string]*Category

	saveEnabled        bool
	persistWindowState bool
	instantPersistent  bool

	// suppressInstant pauses write-through while a discard rolls the
	// session back; discard must leave persisted storage untouched.
	suppressInstant bool

	displayedCategory *Category
}

// New builds a Model over the given category tree. Breadcrumbs are computed
// for the whole tree, lookup tables are built, and the tree is wired to the
// model's notifier and history. Construction fails on duplicate breadcrumbs.
//
// Recording starts armed; callers performing an initial load go through
// LoadSettingValues, which disarms recording for the duration.
func New(handler storage.Handler, categories []*Category, opts ...Option) (*Model, error) {
	m := &Model{
		delimiter:         DefaultDelimiter,
		categories:        categories,
		handler:           handler,
		settingByCrumb:    make(map[string]*Setting),
		categoryByCrumb:   make(map[string]*Category),
		saveEnabled:       true,
		instantPersistent: true,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.hist = history.New(m.maxHistory)
	m.notifier = notify.New(m.delimiter)

	for _, c := range categories {
		c.computeBreadcrumbs("", m.delimiter)
		c.attach(m.notifier, m.hist)
	}
	for _, c := range categories {
		for _, fc := range c.FlatCategories() {
			if _, exists := m.categoryByCrumb[fc.breadcrumb]; exists {
				return nil, fmt.Errorf("category %q: %w", fc.breadcrumb, ErrDuplicateBreadcrumb)
			}
			m.categoryByCrumb[fc.breadcrumb] = fc
		}
		for _, s := range c.FlatSettings() {
			if !s.HasDescription() {
				continue
			}
			if _, exists := m.settingByCrumb[s.breadcrumb]; exists {
				return nil, fmt.Errorf("setting %q: %w", s.breadcrumb, ErrDuplicateBreadcrumb)
			}
			m.settingByCrumb[s.breadcrumb] = s
		}
	}

	// Instant persistence: applied value changes are written through as
	// they happen. Load-time writes are excluded; they came from storage.
	m.notifier.Subscribe(func(ch notify.Change) {
		if ch.Type != notify.ChangeValueSet || ch.Source == "load" {
			return
		}
		if m.suppressInstant || !m.instantPersistent || !m.saveEnabled {
			return
		}
		if s, ok := m.settingByCrumb[ch.Breadcrumb]; ok {
			_ = s.Save(m.handler)
		}
	})

	m.hist.Arm()
	return m, nil
}

// Categories returns the root categories in declaration order.
func (m *Model) Categories() []*Category {
	return m.categories
}

// Setting looks up a setting by breadcrumb.
func (m *Model) Setting(breadcrumb string) (*Setting, bool) {
	s, ok := m.settingByCrumb[breadcrumb]
	return s, ok
}

// Category looks up a category by breadcrumb.
func (m *Model) Category(breadcrumb string) (*Category, bool) {
	c, ok := m.categoryByCrumb[breadcrumb]
	return c, ok
}

// FlatCategories returns every category in pre-order across all roots.
func (m *Model) FlatCategories() []*Category {
	var flat []*Category
	for _, c := range m.categories {
		flat = append(flat, c.FlatCategories()...)
	}
	return flat
}

// FlatSettings returns every setting in pre-order across all roots.
func (m *Model) FlatSettings() []*Setting {
	var flat []*Setting
	for _, c := range m.categories {
		flat = append(flat, c.FlatSettings()...)
	}
	return flat
}

// History returns the model's undo/redo log.
func (m *Model) History() *history.History {
	return m.hist
}

// Notifier returns the model's change notifier for subscriptions.
func (m *Model) Notifier() *notify.Notifier {
	return m.notifier
}

// Handler returns the injected storage handler.
func (m *Model) Handler() storage.Handler {
	return m.handler
}

// Delimiter returns the breadcrumb delimiter in use.
func (m *Model) Delimiter() string {
	return m.delimiter
}

// LoadSettingValues loads every setting from storage in pre-order.
// Recording is disarmed for the duration so load-time writes never pollute
// the history log; this is the single most safety-critical invariant in
// the model. Settings whose keys were never saved keep their defaults.
func (m *Model) LoadSettingValues() error {
	wasArmed := m.hist.Armed()
	m.hist.Disarm()
	defer func() {
		if wasArmed {
			m.hist.Arm()
		}
	}()

	for _, s := range m.FlatSettings() {
		if err := s.Load(m.handler); err != nil {
			return err
		}
	}
	return nil
}

// SaveSettings writes every setting to storage in pre-order, then the
// displayed category when window-state persistence is on. A no-op when
// saving is disabled.
func (m *Model) SaveSettings() error {
	if !m.saveEnabled {
		return nil
	}
	for _, s := range m.FlatSettings() {
		if err := s.Save(m.handler); err != nil {
			return err
		}
	}
	if m.persistWindowState {
		if err := m.SaveDisplayedCategory(); err != nil {
			return err
		}
	}
	m.notifier.Notify(notify.Change{Type: notify.ChangeSaved, Source: "user"})
	return nil
}

// DiscardChanges undoes every change in the log, restoring each setting to
// its pre-session value, and returns how many changes were rolled back.
// Persisted storage is untouched: instant persistence is paused for the
// duration, the same way recording is disarmed around loads.
func (m *Model) DiscardChanges() int {
	m.suppressInstant = true
	n := m.hist.UndoAll()
	m.suppressInstant = false
	m.notifier.Notify(notify.Change{Type: notify.ChangeDiscarded, Source: "user"})
	return n
}

// Undo rolls back the most recent change. history.ErrNothingToUndo at the
// boundary is benign; callers typically disable the undo affordance.
func (m *Model) Undo() error {
	return m.hist.Undo()
}

// Redo re-applies the most recently undone change.
func (m *Model) Redo() error {
	return m.hist.Redo()
}

// ContainsChanges reports whether any applied change is pending undo.
func (m *Model) ContainsChanges() bool {
	return m.hist.CanUndo()
}

// SaveEnabled reports whether setting persistence is on.
func (m *Model) SaveEnabled() bool {
	return m.saveEnabled
}

// SetSaveEnabled toggles setting persistence. Disabling it wipes stored
// preferences and clears the history log, so a later re-enable starts from
// a clean slate.
func (m *Model) SetSaveEnabled(enabled bool) error {
	m.saveEnabled = enabled
	if !enabled {
		m.hist.Clear()
		return m.handler.ClearPreferences()
	}
	return nil
}

// InstantPersistent reports whether changes are written through as they
// are applied.
func (m *Model) InstantPersistent() bool {
	return m.instantPersistent
}

// SetInstantPersistent toggles write-through persistence.
func (m *Model) SetInstantPersistent(enabled bool) {
	m.instantPersistent = enabled
}

// PersistWindowState reports whether window geometry and the displayed
// category are persisted.
func (m *Model) PersistWindowState() bool {
	return m.persistWindowState
}

// SetPersistWindowState toggles window-state persistence.
func (m *Model) SetPersistWindowState(enabled bool) {
	m.persistWindowState = enabled
}

// DisplayedCategory returns the category currently shown, defaulting to
// the first root when none has been selected.
func (m *Model) DisplayedCategory() *Category {
	if m.displayedCategory == nil && len(m.categories) > 0 {
		return m.categories[0]
	}
	return m.displayedCategory
}

// SetDisplayedCategory records the category the presentation layer shows
// and notifies observers on an actual change.
func (m *Model) SetDisplayedCategory(c *Category) {
	if m.displayedCategory == c {
		return
	}
	var old string
	if m.displayedCategory != nil {
		old = m.displayedCategory.breadcrumb
	}
	m.displayedCategory = c
	m.notifier.Notify(notify.Change{
		Breadcrumb: c.breadcrumb,
		Type:       notify.ChangeCategorySelected,
		OldValue:   old,
		NewValue:   c.breadcrumb,
		Source:     "user",
	})
}

// SaveDisplayedCategory persists the displayed category's breadcrumb under
// the reserved key.
func (m *Model) SaveDisplayedCategory() error {
	return m.handler.SaveObject(SelectedCategoryKey, m.DisplayedCategory().Breadcrumb())
}

// LoadDisplayedCategory restores the displayed category from storage. The
// current displayed category is kept when nothing was stored or the stored
// breadcrumb no longer names a category.
func (m *Model) LoadDisplayedCategory() error {
	stored, err := m.handler.LoadObject(SelectedCategoryKey, "")
	if err != nil {
		return err
	}
	crumb, ok := stored.(string)
	if !ok || crumb == "" {
		return nil
	}
	if c, found := m.categoryByCrumb[crumb]; found {
		m.displayedCategory = c
	}
	return nil
}

// SaveWindowState persists window geometry under the reserved keys. A
// no-op when window-state persistence is off.
func (m *Model) SaveWindowState(ws WindowState) error {
	if !m.persistWindowState {
		return nil
	}
	pairs := []struct {
		key string
		val float64
	}{
		{WindowWidthKey, ws.Width},
		{WindowHeightKey, ws.Height},
		{WindowPosXKey, ws.PosX},
		{WindowPosYKey, ws.PosY},
		{DividerPositionKey, ws.DividerPosition},
	}
	for _, p := range pairs {
		if err := m.handler.SaveObject(p.key, p.val); err != nil {
			return err
		}
	}
	return nil
}

// LoadWindowState restores window geometry, falling back to the given
// defaults for keys that were never saved. Like SaveWindowState, a no-op
// returning the defaults when window-state persistence is off.
func (m *Model) LoadWindowState(defaults WindowState) (WindowState, error) {
	if !m.persistWindowState {
		return defaults, nil
	}

	load := func(key string, def float64) (float64, error) {
		raw, err := m.handler.LoadObject(key, def)
		if err != nil {
			return 0, err
		}
		switch n := raw.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		default:
			return def, nil
		}
	}

	ws := defaults
	var err error
	if ws.Width, err = load(WindowWidthKey, defaults.Width); err != nil {
		return defaults, err
	}
	if ws.Height, err = load(WindowHeightKey, defaults.Height); err != nil {
		return defaults, err
	}
	if ws.PosX, err = load(WindowPosXKey, defaults.PosX); err != nil {
		return defaults, err
	}
	if ws.PosY, err = load(WindowPosYKey, defaults.PosY); err != nil {
		return defaults, err
	}
	if ws.DividerPosition, err = load(DividerPositionKey, defaults.DividerPosition); err != nil {
		return defaults, err
	}
	return ws, nil
}
