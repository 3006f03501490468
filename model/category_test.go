package model

import (
	"testing"

	"github.com/prefdeck/prefdeck/notify"
)

func buildTree() *Category {
	return NewCategory("General",
		NewBool("Dark Mode", false),
		NewInt("Font Size", 12),
	).Subcategories(
		NewCategory("Screen",
			NewFloat("Scale", 1.0),
		).Subcategories(
			NewCategory("Resolution",
				NewText("Mode", "1920x1080"),
			),
		),
		NewCategory("Network",
			NewText("Proxy", ""),
		),
	)
}

func TestCategory_BreadcrumbDeterminism(t *testing.T) {
	a := buildTree()
	b := buildTree()
	a.computeBreadcrumbs("", "#")
	b.computeBreadcrumbs("", "#")

	flatA := a.FlatCategories()
	flatB := b.FlatCategories()
	if len(flatA) != len(flatB) {
		t.Fatalf("tree sizes differ: %d vs %d", len(flatA), len(flatB))
	}
	for i := range flatA {
		if flatA[i].Breadcrumb() != flatB[i].Breadcrumb() {
			t.Errorf("category %d: %q vs %q", i, flatA[i].Breadcrumb(), flatB[i].Breadcrumb())
		}
	}

	setA := a.FlatSettings()
	setB := b.FlatSettings()
	for i := range setA {
		if setA[i].Breadcrumb() != setB[i].Breadcrumb() {
			t.Errorf("setting %d: %q vs %q", i, setA[i].Breadcrumb(), setB[i].Breadcrumb())
		}
	}
}

func TestCategory_BreadcrumbCascade(t *testing.T) {
	root := buildTree()
	root.computeBreadcrumbs("", "#")

	want := map[string]string{
		"General":                   "",
		"General#Screen":            "",
		"General#Screen#Resolution": "",
		"General#Network":           "",
	}
	for _, c := range root.FlatCategories() {
		if _, ok := want[c.Breadcrumb()]; !ok {
			t.Errorf("unexpected category breadcrumb %q", c.Breadcrumb())
		}
		delete(want, c.Breadcrumb())
	}
	if len(want) != 0 {
		t.Errorf("missing category breadcrumbs: %v", want)
	}

	deep, found := "", false
	for _, s := range root.FlatSettings() {
		if s.Description() == "Mode" {
			deep, found = s.Breadcrumb(), true
		}
	}
	if !found || deep != "General#Screen#Resolution#Mode" {
		t.Errorf("deep setting breadcrumb = %q", deep)
	}
}

func TestCategory_FlatSettingsPreOrder(t *testing.T) {
	root := buildTree()
	root.computeBreadcrumbs("", "#")

	var got []string
	for _, s := range root.FlatSettings() {
		got = append(got, s.Description())
	}
	want := []string{"Dark Mode", "Font Size", "Scale", "Mode", "Proxy"}
	if len(got) != len(want) {
		t.Fatalf("settings = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCategory_SetVisibleNotifiesOnFlip(t *testing.T) {
	root := buildTree()
	root.computeBreadcrumbs("", "#")
	n := notify.New("#")
	root.attach(n, nil)

	var events []notify.Change
	n.Subscribe(func(ch notify.Change) {
		events = append(events, ch)
	})

	root.SetVisible(false)
	root.SetVisible(false) // no flip, no event
	root.SetVisible(true)

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	for _, ev := range events {
		if ev.Type != notify.ChangeVisibility {
			t.Errorf("event type = %v", ev.Type)
		}
		if ev.Breadcrumb != "General" {
			t.Errorf("event breadcrumb = %q", ev.Breadcrumb)
		}
	}
	if events[0].NewValue != false || events[1].NewValue != true {
		t.Error("visibility transitions out of order")
	}
}
