// Package search implements query matching over the preferences tree.
//
// Matching is a case-insensitive substring test over category and setting
// descriptions. A category matches transitively: through its own
// description, through any of its settings, or through any descendant
// category. Transitivity keeps every ancestor of a deep match visible,
// while subtrees with no match anywhere are hidden.
package search

import (
	"strings"

	"github.com/prefdeck/prefdeck/model"
	"github.com/prefdeck/prefdeck/notify"
)

// Handler maintains the live filter state for one preferences model. All
// re-evaluation is synchronous: when SetQuery returns, visibility flags,
// setting marks, and the category match are fully resolved, so an observer
// reacting to the match notification sees a consistent tree.
type Handler struct {
	model *model.Model

	query         string
	categoryMatch *model.Category
	marked        map[string]*model.Setting
}

// New creates a search handler over the model's category tree.
func New(m *model.Model) *Handler {
	return &Handler{
		model:  m,
		marked: make(map[string]*model.Setting),
	}
}

// Query returns the current search text.
func (h *Handler) Query() string {
	return h.query
}

// CategoryMatch returns the best-matching category for the current query,
// or nil when the query is empty or matches nothing. When several
// categories match directly, the first in pre-order wins, so repeated
// identical queries resolve to the same category.
func (h *Handler) CategoryMatch() *model.Category {
	return h.categoryMatch
}

// MatchedSettings returns the settings currently marked as matches.
func (h *Handler) MatchedSettings() []*model.Setting {
	var settings []*model.Setting
	for _, s := range h.model.FlatSettings() {
		if _, ok := h.marked[s.Breadcrumb()]; ok {
			settings = append(settings, s)
		}
	}
	return settings
}

// SetQuery replaces the search text and re-evaluates the filter before
// returning. An empty query restores full visibility and clears all marks.
func (h *Handler) SetQuery(query string) {
	h.query = query

	if strings.TrimSpace(query) == "" {
		h.reset()
		return
	}

	needle := strings.ToLower(query)

	// Mark matching settings; unmark the stale ones from the last query.
	nowMarked := make(map[string]*model.Setting)
	for _, s := range h.model.FlatSettings() {
		if s.HasDescription() && contains(s.Description(), needle) {
			nowMarked[s.Breadcrumb()] = s
		}
	}
	for crumb, s := range h.marked {
		if _, still := nowMarked[crumb]; !still {
			_ = s.Unmark()
		}
	}
	for _, s := range nowMarked {
		_ = s.Mark()
	}
	h.marked = nowMarked

	// Visibility: a category stays visible when anything in its subtree
	// matches. Ancestors of a deep match match transitively themselves.
	for _, c := range h.model.FlatCategories() {
		c.SetVisible(h.transitiveMatch(c, needle))
	}

	h.updateCategoryMatch(h.firstDirectMatch(needle))
}

// reset restores the unfiltered view.
func (h *Handler) reset() {
	for _, s := range h.marked {
		_ = s.Unmark()
	}
	h.marked = make(map[string]*model.Setting)

	for _, c := range h.model.FlatCategories() {
		c.SetVisible(true)
	}
	h.updateCategoryMatch(nil)
}

// directMatch reports whether the category itself matches: through its own
// description or one of its settings.
func (h *Handler) directMatch(c *model.Category, needle string) bool {
	if contains(c.Description(), needle) {
		return true
	}
	for _, s := range c.Settings() {
		if s.HasDescription() && contains(s.Description(), needle) {
			return true
		}
	}
	return false
}

// transitiveMatch reports whether the category or any descendant matches.
func (h *Handler) transitiveMatch(c *model.Category, needle string) bool {
	if h.directMatch(c, needle) {
		return true
	}
	for _, child := range c.Children() {
		if h.transitiveMatch(child, needle) {
			return true
		}
	}
	return false
}

// firstDirectMatch returns the first category in pre-order whose own
// description or settings match. Transitive-only matches (ancestors kept
// visible by a deep match) do not win the match slot; the deep category
// that actually matched does.
func (h *Handler) firstDirectMatch(needle string) *model.Category {
	for _, c := range h.model.FlatCategories() {
		if h.directMatch(c, needle) {
			return c
		}
	}
	return nil
}

// updateCategoryMatch swaps the match and notifies on identity change.
func (h *Handler) updateCategoryMatch(match *model.Category) {
	if h.categoryMatch == match {
		return
	}
	var oldCrumb, newCrumb string
	if h.categoryMatch != nil {
		oldCrumb = h.categoryMatch.Breadcrumb()
	}
	if match != nil {
		newCrumb = match.Breadcrumb()
	}
	h.categoryMatch = match

	h.model.Notifier().Notify(notify.Change{
		Breadcrumb: newCrumb,
		Type:       notify.ChangeCategoryMatched,
		OldValue:   oldCrumb,
		NewValue:   newCrumb,
		Source:     "search",
	})
}

func contains(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}
