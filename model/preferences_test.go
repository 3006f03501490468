package model

import (
	"errors"
	"testing"

	"github.com/prefdeck/prefdeck/history"
	"github.com/prefdeck/prefdeck/notify"
	"github.com/prefdeck/prefdeck/storage"
)

// newDarkModeModel builds the scenario used throughout: one "General"
// category holding a boolean "Dark Mode" setting, default false.
func newDarkModeModel(t *testing.T, opts ...Option) (*storage.Memory, *Model) {
	t.Helper()
	h := storage.NewMemory()
	m, err := New(h, []*Category{
		NewCategory("General", NewBool("Dark Mode", false)),
	}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h, m
}

func TestModel_DarkModeScenario(t *testing.T) {
	h, m := newDarkModeModel(t)
	m.SetInstantPersistent(false)

	s, ok := m.Setting("General#Dark Mode")
	if !ok {
		t.Fatal("setting not found by breadcrumb")
	}

	if err := s.SetValue(true); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if m.History().Len() != 1 || m.History().Position() != 1 {
		t.Errorf("history Len,Position = %d,%d, want 1,1", m.History().Len(), m.History().Position())
	}

	if err := m.SaveSettings(); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	// A fresh model over the same storage loads the saved value.
	m2, err := New(h, []*Category{
		NewCategory("General", NewBool("Dark Mode", false)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m2.LoadSettingValues(); err != nil {
		t.Fatalf("LoadSettingValues: %v", err)
	}
	s2, _ := m2.Setting("General#Dark Mode")
	if s2.Value().Bool() != true {
		t.Error("fresh load did not yield the saved value")
	}

	// Undo on the original model restores false and hits the boundary.
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if s.Value().Bool() != false {
		t.Error("undo did not restore the default")
	}
	if m.History().Position() != 0 {
		t.Errorf("Position = %d, want 0", m.History().Position())
	}
	if err := m.Undo(); !errors.Is(err, history.ErrNothingToUndo) {
		t.Errorf("second Undo = %v, want ErrNothingToUndo", err)
	}
}

func TestModel_DuplicateBreadcrumbRefused(t *testing.T) {
	h := storage.NewMemory()
	_, err := New(h, []*Category{
		NewCategory("General",
			NewBool("Dark Mode", false),
			NewInt("Dark Mode", 1),
		),
	})
	if !errors.Is(err, ErrDuplicateBreadcrumb) {
		t.Errorf("New = %v, want ErrDuplicateBreadcrumb", err)
	}
}

func TestModel_LoadDoesNotRecord(t *testing.T) {
	h := storage.NewMemory()
	if err := h.SaveObject("General#Dark Mode", true); err != nil {
		t.Fatalf("seed: %v", err)
	}

	m, err := New(h, []*Category{
		NewCategory("General", NewBool("Dark Mode", false)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := m.LoadSettingValues(); err != nil {
		t.Fatalf("LoadSettingValues: %v", err)
	}
	if m.History().Len() != 0 {
		t.Errorf("history Len = %d after load, want 0", m.History().Len())
	}
	if !m.History().Armed() {
		t.Error("recording left disarmed after load")
	}

	s, _ := m.Setting("General#Dark Mode")
	if s.Value().Bool() != true {
		t.Error("load did not apply the stored value")
	}
}

func TestModel_DiscardChanges(t *testing.T) {
	h, m := newDarkModeModel(t)
	m.SetInstantPersistent(false)

	s, _ := m.Setting("General#Dark Mode")
	if err := s.SetValue(true); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	if n := m.DiscardChanges(); n != 1 {
		t.Errorf("DiscardChanges = %d, want 1", n)
	}
	if s.Value().Bool() != false {
		t.Error("discard did not restore the pre-session value")
	}
	if m.ContainsChanges() {
		t.Error("ContainsChanges = true after discard")
	}
	// Discard never touches persisted storage.
	if h.Len() != 0 {
		t.Errorf("storage keys = %d after discard, want 0", h.Len())
	}
}

func TestModel_DiscardLeavesStorageUntouched(t *testing.T) {
	// Default flags: instant persistence on. The write-through from the
	// original edit stays in storage; the rollback itself must not write.
	h, m := newDarkModeModel(t)

	s, _ := m.Setting("General#Dark Mode")
	if err := s.SetValue(true); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	if n := m.DiscardChanges(); n != 1 {
		t.Errorf("DiscardChanges = %d, want 1", n)
	}
	if s.Value().Bool() != false {
		t.Error("discard did not restore the pre-session value")
	}

	stored, err := h.LoadObject("General#Dark Mode", nil)
	if err != nil {
		t.Fatalf("LoadObject: %v", err)
	}
	if stored != true {
		t.Errorf("stored = %v after discard, want the pre-discard true", stored)
	}

	// Write-through resumes after the discard.
	if err := s.SetValue(true); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	stored, _ = h.LoadObject("General#Dark Mode", nil)
	if stored != true {
		t.Error("instant persistence stayed suppressed after discard")
	}
}

func TestModel_InstantPersistent(t *testing.T) {
	h, m := newDarkModeModel(t)

	s, _ := m.Setting("General#Dark Mode")
	if err := s.SetValue(true); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	v, err := h.LoadObject("General#Dark Mode", false)
	if err != nil {
		t.Fatalf("LoadObject: %v", err)
	}
	if v != true {
		t.Error("instant persistence did not write the change through")
	}

	m.SetInstantPersistent(false)
	if err := s.SetValue(false); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	v, _ = h.LoadObject("General#Dark Mode", true)
	if v != true {
		t.Error("disabled instant persistence still wrote through")
	}
}

func TestModel_SetSaveEnabledFalseClears(t *testing.T) {
	h, m := newDarkModeModel(t)

	s, _ := m.Setting("General#Dark Mode")
	if err := s.SetValue(true); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if h.Len() == 0 {
		t.Fatal("expected an instant-persisted key")
	}

	if err := m.SetSaveEnabled(false); err != nil {
		t.Fatalf("SetSaveEnabled: %v", err)
	}
	if h.Len() != 0 {
		t.Error("disabling save did not clear stored preferences")
	}
	if m.History().Len() != 0 {
		t.Error("disabling save did not clear history")
	}
	if err := m.SaveSettings(); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if h.Len() != 0 {
		t.Error("SaveSettings wrote while saving is disabled")
	}
}

func TestModel_DisplayedCategoryRoundTrip(t *testing.T) {
	h := storage.NewMemory()
	build := func() []*Category {
		return []*Category{
			NewCategory("General", NewBool("Dark Mode", false)).Subcategories(
				NewCategory("Screen", NewFloat("Scale", 1.0)),
			),
		}
	}

	m, err := New(h, build())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	screen, ok := m.Category("General#Screen")
	if !ok {
		t.Fatal("category not found")
	}
	m.SetDisplayedCategory(screen)
	if err := m.SaveDisplayedCategory(); err != nil {
		t.Fatalf("SaveDisplayedCategory: %v", err)
	}

	m2, err := New(h, build())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m2.LoadDisplayedCategory(); err != nil {
		t.Fatalf("LoadDisplayedCategory: %v", err)
	}
	if m2.DisplayedCategory().Breadcrumb() != "General#Screen" {
		t.Errorf("displayed = %q, want General#Screen", m2.DisplayedCategory().Breadcrumb())
	}
}

func TestModel_WindowStateRoundTrip(t *testing.T) {
	h, m := newDarkModeModel(t)
	_ = h
	m.SetPersistWindowState(true)

	ws := WindowState{Width: 1000, Height: 700, PosX: 40, PosY: 60, DividerPosition: 0.3}
	if err := m.SaveWindowState(ws); err != nil {
		t.Fatalf("SaveWindowState: %v", err)
	}

	got, err := m.LoadWindowState(WindowState{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("LoadWindowState: %v", err)
	}
	if got != ws {
		t.Errorf("window state = %+v, want %+v", got, ws)
	}
}

func TestModel_WindowStateDefaultsOnMiss(t *testing.T) {
	_, m := newDarkModeModel(t)
	m.SetPersistWindowState(true)

	defaults := WindowState{Width: 800, Height: 600, DividerPosition: 0.25}
	got, err := m.LoadWindowState(defaults)
	if err != nil {
		t.Fatalf("LoadWindowState: %v", err)
	}
	if got != defaults {
		t.Errorf("window state = %+v, want defaults", got)
	}
}

func TestModel_WindowStateDisabledIsNoOp(t *testing.T) {
	_, m := newDarkModeModel(t)
	m.SetPersistWindowState(true)

	stored := WindowState{Width: 1000, Height: 700}
	if err := m.SaveWindowState(stored); err != nil {
		t.Fatalf("SaveWindowState: %v", err)
	}

	// With the flag off, both halves of the pair are no-ops: saves write
	// nothing and loads return the defaults even when keys exist.
	m.SetPersistWindowState(false)

	defaults := WindowState{Width: 800, Height: 600}
	got, err := m.LoadWindowState(defaults)
	if err != nil {
		t.Fatalf("LoadWindowState: %v", err)
	}
	if got != defaults {
		t.Errorf("window state = %+v with persistence off, want defaults", got)
	}
}

func TestModel_ValueChangeNotification(t *testing.T) {
	_, m := newDarkModeModel(t)

	var events []notify.Change
	m.Notifier().SubscribeBreadcrumb("General", func(ch notify.Change) {
		if ch.Type == notify.ChangeValueSet {
			events = append(events, ch)
		}
	})

	s, _ := m.Setting("General#Dark Mode")
	if err := s.SetValue(true); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Source != "user" || events[1].Source != "replay" {
		t.Errorf("sources = %q, %q", events[0].Source, events[1].Source)
	}
}
