package model

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/prefdeck/prefdeck/history"
	"github.com/prefdeck/prefdeck/notify"
	"github.com/prefdeck/prefdeck/storage"
	"github.com/prefdeck/prefdeck/validate"
	"github.com/prefdeck/prefdeck/value"
)

// Setting is one editable, persistable, typed value plus metadata. Settings
// are declared with the New* constructors, attached to a Category, and
// gain their breadcrumb when the category tree is handed to a Model.
//
// A node setting (NewNode) has neither description nor value; it exists to
// occupy a slot in a category's setting list. Value and mark operations on
// node settings are integrator errors.
type Setting struct {
	description string
	val         *value.Value
	breadcrumb  string
	key         string
	marked      bool
	validators  []validate.Validator

	notifier *notify.Notifier
	hist     *history.History
}

// NewBool declares a boolean setting.
func NewBool(description string, defaultValue bool) *Setting {
	return &Setting{description: description, val: value.OfBool(defaultValue)}
}

// NewInt declares an integer setting.
func NewInt(description string, defaultValue int) *Setting {
	return &Setting{description: description, val: value.OfInt(defaultValue)}
}

// NewFloat declares a floating-point setting.
func NewFloat(description string, defaultValue float64) *Setting {
	return &Setting{description: description, val: value.OfFloat(defaultValue)}
}

// NewText declares a free-form text setting.
func NewText(description, defaultValue string) *Setting {
	return &Setting{description: description, val: value.OfString(defaultValue)}
}

// NewStringList declares an ordered list setting.
func NewStringList(description string, defaultValue []string) *Setting {
	return &Setting{description: description, val: value.OfStringList(defaultValue)}
}

// NewSelection declares a single-choice setting over the given items.
func NewSelection(description string, items []string, selected string) *Setting {
	return &Setting{description: description, val: value.OfSelection(items, selected)}
}

// NewMultiSelection declares a multi-choice setting over the given items.
func NewMultiSelection(description string, items, selected []string) *Setting {
	return &Setting{description: description, val: value.OfMultiSelection(items, selected)}
}

// NewColor declares a color setting.
func NewColor(description string, defaultValue colorful.Color) *Setting {
	return &Setting{description: description, val: value.OfColor(defaultValue)}
}

// NewColorHex declares a color setting from a hex string such as "#1e90ff".
func NewColorHex(description, hex string) (*Setting, error) {
	v, err := value.OfColorHex(hex)
	if err != nil {
		return nil, err
	}
	return &Setting{description: description, val: v}, nil
}

// NewFile declares a file path setting.
func NewFile(description, defaultPath string) *Setting {
	return &Setting{description: description, val: value.OfFile(defaultPath)}
}

// NewNode declares a value-less placeholder setting.
func NewNode() *Setting {
	return &Setting{}
}

// WithKey overrides the persistence key. Without an override the setting
// persists under its breadcrumb; an explicit key survives tree reshuffles
// that would change the breadcrumb.
func (s *Setting) WithKey(key string) *Setting {
	s.key = key
	return s
}

// WithValidators attaches validation rules to the setting.
func (s *Setting) WithValidators(validators ...validate.Validator) *Setting {
	s.validators = append(s.validators, validators...)
	return s
}

// Description returns the setting's human label.
func (s *Setting) Description() string {
	return s.description
}

// HasDescription reports whether the setting carries a human label.
func (s *Setting) HasDescription() bool {
	return s.description != ""
}

// HasValue reports whether the setting wraps an editable value.
func (s *Setting) HasValue() bool {
	return s.val != nil
}

// Breadcrumb returns the setting's path, computed when the tree is built.
func (s *Setting) Breadcrumb() string {
	return s.breadcrumb
}

// StorageKey returns the persistence key: the explicit override if set,
// otherwise the breadcrumb.
func (s *Setting) StorageKey() string {
	if s.key != "" {
		return s.key
	}
	return s.breadcrumb
}

// Marked reports whether the setting is currently search-highlighted.
func (s *Setting) Marked() bool {
	return s.marked
}

// Value returns the setting's value cell, or nil for node settings. The
// cell must only be mutated through SetValue so validation, history, and
// notification stay in force.
func (s *Setting) Value() *value.Value {
	return s.val
}

// SetValue validates the candidate against the setting's rules, applies it
// on success, records the transition in history when recording is armed,
// and notifies observers. The value is left untouched when any rule is
// violated; the returned ValidationError lists every violated rule.
//
// Setting the current value again is a no-op: nothing is recorded and no
// notification fires.
func (s *Setting) SetValue(raw any) error {
	return s.setValue(raw, "user")
}

func (s *Setting) setValue(raw any, source string) error {
	if !s.HasValue() {
		return fmt.Errorf("%s: %w", s.breadcrumb, ErrNoValue)
	}

	candidate, err := s.val.Candidate(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", s.breadcrumb, err)
	}
	if verr := validate.Apply(candidate, s.validators); verr != nil {
		verr.Breadcrumb = s.breadcrumb
		return verr
	}
	if s.val.Equal(candidate) {
		return nil
	}

	old := s.val.Clone()
	if err := s.val.Assign(candidate); err != nil {
		return fmt.Errorf("%s: %w", s.breadcrumb, err)
	}

	if s.hist != nil {
		s.hist.Record(history.NewChange(s, old, s.val))
	}
	if s.notifier != nil {
		s.notifier.NotifyValueSet(s.breadcrumb, old.String(), s.val.String(), source)
	}
	return nil
}

// Restore sets the value directly for undo/redo replay. Validation is
// skipped; the value passed validation when it was first applied. Observers
// are still notified so an editing surface tracks the replayed value.
func (s *Setting) Restore(v *value.Value) error {
	if !s.HasValue() {
		return fmt.Errorf("%s: %w", s.breadcrumb, ErrNoValue)
	}
	old := s.val.Clone()
	if err := s.val.Assign(v); err != nil {
		return fmt.Errorf("%s: %w", s.breadcrumb, err)
	}
	if s.notifier != nil {
		s.notifier.NotifyValueSet(s.breadcrumb, old.String(), s.val.String(), "replay")
	}
	return nil
}

// Save writes the value through the handler under StorageKey. List-valued
// settings go through the handler's list operations; routing them through
// the scalar path would corrupt order and element count. Node settings
// save nothing.
func (s *Setting) Save(h storage.Handler) error {
	if !s.HasValue() {
		return nil
	}
	if s.val.Kind().IsList() {
		return h.SaveList(s.StorageKey(), s.val.Elements())
	}
	scalar, err := s.val.Scalar()
	if err != nil {
		return fmt.Errorf("%s: %w", s.breadcrumb, err)
	}
	return h.SaveObject(s.StorageKey(), scalar)
}

// Load reads the value from the handler under StorageKey. A key that has
// never been saved leaves the current default untouched; a miss is not an
// error. Loading never records history; callers disarm recording around
// bulk loads.
func (s *Setting) Load(h storage.Handler) error {
	if !s.HasValue() {
		return nil
	}

	old := s.val.Clone()

	if s.val.Kind().IsList() {
		elems, err := h.LoadList(s.StorageKey(), s.val.Elements())
		if err != nil {
			return fmt.Errorf("%s: %w", s.breadcrumb, err)
		}
		if err := s.val.ApplyElements(elems); err != nil {
			return fmt.Errorf("%s: %w", s.breadcrumb, err)
		}
	} else {
		scalar, err := s.val.Scalar()
		if err != nil {
			return fmt.Errorf("%s: %w", s.breadcrumb, err)
		}
		stored, err := h.LoadObject(s.StorageKey(), scalar)
		if err != nil {
			return fmt.Errorf("%s: %w", s.breadcrumb, err)
		}
		if err := s.val.ApplyScalar(stored); err != nil {
			return fmt.Errorf("%s: %w", s.breadcrumb, err)
		}
	}

	if s.notifier != nil && !old.Equal(s.val) {
		s.notifier.NotifyValueSet(s.breadcrumb, old.String(), s.val.String(), "load")
	}
	return nil
}

// Mark flags the setting as a search match. Idempotent; marking an already
// marked setting does nothing. Marking a description-less setting is an
// integrator error.
func (s *Setting) Mark() error {
	if !s.HasDescription() {
		return fmt.Errorf("mark %s: %w", s.breadcrumb, ErrInvalidState)
	}
	if s.marked {
		return nil
	}
	s.marked = true
	if s.notifier != nil {
		s.notifier.Notify(notify.Change{
			Breadcrumb: s.breadcrumb,
			Type:       notify.ChangeMarked,
			Source:     "search",
		})
	}
	return nil
}

// Unmark removes the search-match flag. Idempotent.
func (s *Setting) Unmark() error {
	if !s.HasDescription() {
		return fmt.Errorf("unmark %s: %w", s.breadcrumb, ErrInvalidState)
	}
	if !s.marked {
		return nil
	}
	s.marked = false
	if s.notifier != nil {
		s.notifier.Notify(notify.Change{
			Breadcrumb: s.breadcrumb,
			Type:       notify.ChangeUnmarked,
			Source:     "search",
		})
	}
	return nil
}

// Equal reports setting identity, which is breadcrumb-only. Two settings
// with the same path are interchangeable even when built independently,
// because the breadcrumb is the persistence key.
func (s *Setting) Equal(other *Setting) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.breadcrumb == other.breadcrumb
}

// applyBreadcrumb sets the setting's path during tree construction.
func (s *Setting) applyBreadcrumb(parent, delimiter string) {
	if s.description == "" {
		s.breadcrumb = parent
		return
	}
	s.breadcrumb = parent + delimiter + s.description
}

// attach wires the setting to the model's notifier and history.
func (s *Setting) attach(n *notify.Notifier, h *history.History) {
	s.notifier = n
	s.hist = h
}
