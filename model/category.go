package model

import (
	"github.com/prefdeck/prefdeck/history"
	"github.com/prefdeck/prefdeck/notify"
)

// Category is a node in the preferences tree: a description, child
// categories, and the settings shown on its panel. The tree structure is
// fixed once it is handed to a Model; only setting values mutate afterwards.
type Category struct {
	description string
	children    []*Category
	settings    []*Setting
	expand      bool
	visible     bool
	breadcrumb  string

	notifier *notify.Notifier
}

// NewCategory declares a category holding the given settings.
func NewCategory(description string, settings ...*Setting) *Category {
	return &Category{
		description: description,
		settings:    settings,
		visible:     true,
	}
}

// Subcategories attaches child categories.
func (c *Category) Subcategories(children ...*Category) *Category {
	c.children = append(c.children, children...)
	return c
}

// Expand hints the presentation layer to show this category expanded.
func (c *Category) Expand() *Category {
	c.expand = true
	return c
}

// Description returns the category's label.
func (c *Category) Description() string {
	return c.description
}

// Breadcrumb returns the category's path, computed when the tree is built.
func (c *Category) Breadcrumb() string {
	return c.breadcrumb
}

// Children returns the child categories in declaration order.
func (c *Category) Children() []*Category {
	return c.children
}

// Settings returns the category's settings in declaration order.
func (c *Category) Settings() []*Setting {
	return c.settings
}

// Expanded reports the initial expansion hint.
func (c *Category) Expanded() bool {
	return c.expand
}

// Visible reports whether the category is shown in the filtered view.
func (c *Category) Visible() bool {
	return c.visible
}

// SetVisible flips the category's visibility and notifies observers on an
// actual change. The presentation layer hides the node rather than removing
// it, so restoring visibility is not a re-insertion.
func (c *Category) SetVisible(visible bool) {
	if c.visible == visible {
		return
	}
	c.visible = visible
	if c.notifier != nil {
		c.notifier.Notify(notify.Change{
			Breadcrumb: c.breadcrumb,
			Type:       notify.ChangeVisibility,
			OldValue:   !visible,
			NewValue:   visible,
			Source:     "search",
		})
	}
}

// FlatCategories returns this category and every descendant in pre-order.
func (c *Category) FlatCategories() []*Category {
	flat := []*Category{c}
	for _, child := range c.children {
		flat = append(flat, child.FlatCategories()...)
	}
	return flat
}

// FlatSettings returns every setting in this subtree in pre-order: own
// settings first, then each child subtree in declaration order.
func (c *Category) FlatSettings() []*Setting {
	flat := append([]*Setting{}, c.settings...)
	for _, child := range c.children {
		flat = append(flat, child.FlatSettings()...)
	}
	return flat
}

// computeBreadcrumbs assigns paths top-down. A root category's breadcrumb
// is its description; descendants join the parent path with the delimiter.
// Paths cascade into every contained setting. Given the same structure and
// delimiter, two independently built trees produce identical breadcrumbs.
func (c *Category) computeBreadcrumbs(parent, delimiter string) {
	if parent == "" {
		c.breadcrumb = c.description
	} else {
		c.breadcrumb = parent + delimiter + c.description
	}
	for _, s := range c.settings {
		s.applyBreadcrumb(c.breadcrumb, delimiter)
	}
	for _, child := range c.children {
		child.computeBreadcrumbs(c.breadcrumb, delimiter)
	}
}

// attach wires the subtree to the model's notifier and history.
func (c *Category) attach(n *notify.Notifier, h *history.History) {
	c.notifier = n
	for _, s := range c.settings {
		s.attach(n, h)
	}
	for _, child := range c.children {
		child.attach(n, h)
	}
}
