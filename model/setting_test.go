package model

import (
	"errors"
	"testing"

	"github.com/prefdeck/prefdeck/storage"
	"github.com/prefdeck/prefdeck/validate"
	"github.com/prefdeck/prefdeck/value"
)

func TestSetting_SetValueValidates(t *testing.T) {
	s := NewInt("Font Size", 12).WithValidators(validate.Between(6, 40))
	s.applyBreadcrumb("General", "#")

	if err := s.SetValue(14); err != nil {
		t.Fatalf("SetValue(14) failed: %v", err)
	}
	if s.Value().Int() != 14 {
		t.Errorf("value = %d, want 14", s.Value().Int())
	}

	err := s.SetValue(99)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *validate.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *validate.ValidationError", err)
	}
	if verr.Breadcrumb != "General#Font Size" {
		t.Errorf("Breadcrumb = %q", verr.Breadcrumb)
	}
	if s.Value().Int() != 14 {
		t.Errorf("rejected value mutated the cell: %d", s.Value().Int())
	}
}

func TestSetting_SetValueOnNode(t *testing.T) {
	s := NewNode()
	if err := s.SetValue(true); !errors.Is(err, ErrNoValue) {
		t.Errorf("SetValue on node = %v, want ErrNoValue", err)
	}
}

func TestSetting_MarkUnmark(t *testing.T) {
	s := NewBool("Dark Mode", false)

	if err := s.Mark(); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	if !s.Marked() {
		t.Error("Marked = false after Mark")
	}
	// Idempotent.
	if err := s.Mark(); err != nil {
		t.Fatalf("second Mark failed: %v", err)
	}

	if err := s.Unmark(); err != nil {
		t.Fatalf("Unmark failed: %v", err)
	}
	if s.Marked() {
		t.Error("Marked = true after Unmark")
	}
	if err := s.Unmark(); err != nil {
		t.Fatalf("second Unmark failed: %v", err)
	}
}

func TestSetting_MarkOnNode(t *testing.T) {
	s := NewNode()
	if err := s.Mark(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Mark on node = %v, want ErrInvalidState", err)
	}
	if err := s.Unmark(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Unmark on node = %v, want ErrInvalidState", err)
	}
}

func TestSetting_SaveLoadRoundTrip(t *testing.T) {
	colored, err := NewColorHex("Accent", "#1e90ff")
	if err != nil {
		t.Fatalf("NewColorHex: %v", err)
	}

	tests := []struct {
		name    string
		setting *Setting
		edit    any
	}{
		{"bool", NewBool("Dark Mode", false), true},
		{"int", NewInt("Font Size", 12), 18},
		{"float", NewFloat("Scale", 1.0), 1.5},
		{"text", NewText("Name", ""), "ada"},
		{"stringList", NewStringList("Days", []string{"Mon"}), []string{"Tue", "Wed"}},
		{"selection", NewSelection("Theme", []string{"light", "dark"}, "light"), "dark"},
		{"multiSelection", NewMultiSelection("Features", []string{"a", "b", "c"}, nil), []string{"c", "a"}},
		{"color", colored, "#ff0000"},
		{"file", NewFile("Log Path", "/tmp/a.log"), "/var/log/app.log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := storage.NewMemory()
			tt.setting.applyBreadcrumb("General", "#")

			if err := tt.setting.SetValue(tt.edit); err != nil {
				t.Fatalf("SetValue: %v", err)
			}
			if err := tt.setting.Save(h); err != nil {
				t.Fatalf("Save: %v", err)
			}

			// A fresh setting with the same breadcrumb and defaults loads
			// back the edited value.
			fresh := cloneDeclaration(t, tt.name)
			fresh.applyBreadcrumb("General", "#")
			if err := fresh.Load(h); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !fresh.Value().Equal(tt.setting.Value()) {
				t.Errorf("round trip: got %v, want %v", fresh.Value(), tt.setting.Value())
			}
		})
	}
}

// cloneDeclaration rebuilds the default declaration for a round-trip case.
func cloneDeclaration(t *testing.T, name string) *Setting {
	t.Helper()
	switch name {
	case "bool":
		return NewBool("Dark Mode", false)
	case "int":
		return NewInt("Font Size", 12)
	case "float":
		return NewFloat("Scale", 1.0)
	case "text":
		return NewText("Name", "")
	case "stringList":
		return NewStringList("Days", []string{"Mon"})
	case "selection":
		return NewSelection("Theme", []string{"light", "dark"}, "light")
	case "multiSelection":
		return NewMultiSelection("Features", []string{"a", "b", "c"}, nil)
	case "color":
		s, err := NewColorHex("Accent", "#1e90ff")
		if err != nil {
			t.Fatalf("NewColorHex: %v", err)
		}
		return s
	case "file":
		return NewFile("Log Path", "/tmp/a.log")
	default:
		t.Fatalf("unknown declaration %q", name)
		return nil
	}
}

func TestSetting_LoadMissKeepsDefault(t *testing.T) {
	h := storage.NewMemory()
	s := NewInt("Font Size", 12)
	s.applyBreadcrumb("General", "#")

	if err := s.Load(h); err != nil {
		t.Fatalf("Load on miss failed: %v", err)
	}
	if s.Value().Int() != 12 {
		t.Errorf("value = %d after miss, want default 12", s.Value().Int())
	}
}

func TestSetting_StorageKeyOverride(t *testing.T) {
	h := storage.NewMemory()
	s := NewBool("Dark Mode", false).WithKey("ui.dark")
	s.applyBreadcrumb("General", "#")

	if s.StorageKey() != "ui.dark" {
		t.Fatalf("StorageKey = %q, want override", s.StorageKey())
	}
	if err := s.SetValue(true); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := s.Save(h); err != nil {
		t.Fatalf("Save: %v", err)
	}

	v, err := h.LoadObject("ui.dark", false)
	if err != nil {
		t.Fatalf("LoadObject: %v", err)
	}
	if v != true {
		t.Error("value was not stored under the explicit key")
	}
}

func TestSetting_EqualByBreadcrumb(t *testing.T) {
	a := NewBool("Dark Mode", false)
	b := NewInt("Dark Mode", 3)
	a.applyBreadcrumb("General", "#")
	b.applyBreadcrumb("General", "#")

	if !a.Equal(b) {
		t.Error("settings with identical breadcrumbs must be equal")
	}

	c := NewBool("Dark Mode", false)
	c.applyBreadcrumb("Advanced", "#")
	if a.Equal(c) {
		t.Error("settings with different breadcrumbs must not be equal")
	}
}

func TestSetting_SetValueNoOpOnEqual(t *testing.T) {
	h, m := newDarkModeModel(t)
	_ = h

	s, ok := m.Setting("General#Dark Mode")
	if !ok {
		t.Fatal("setting not found")
	}
	if err := s.SetValue(false); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if m.History().Len() != 0 {
		t.Errorf("history Len = %d after same-value set, want 0", m.History().Len())
	}
}

func TestSetting_SelectionRejectsNonItem(t *testing.T) {
	s := NewSelection("Theme", []string{"light", "dark"}, "light")
	s.applyBreadcrumb("General", "#")

	if err := s.SetValue("solarized"); err == nil {
		t.Fatal("expected rejection of a non-item choice")
	}
	if s.Value().Text() != "light" {
		t.Errorf("choice = %q after rejection, want light", s.Value().Text())
	}
}

func TestSetting_RestoreSkipsValidation(t *testing.T) {
	// Replay re-applies values that were valid when recorded; rules added
	// later or rules over transient state must not block undo.
	s := NewInt("Font Size", 12).WithValidators(validate.Min(10))
	s.applyBreadcrumb("General", "#")

	if err := s.Restore(value.OfInt(4)); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if s.Value().Int() != 4 {
		t.Errorf("value = %d, want 4", s.Value().Int())
	}
}
