package model

import "errors"

// Integrator errors. These indicate a mistake in how the preferences tree
// was declared, not a runtime condition, and callers should fail fast.
var (
	// ErrInvalidState is returned when mark or unmark is invoked on a
	// setting without a description.
	ErrInvalidState = errors.New("setting has no description")

	// ErrNoValue is returned when a value operation is invoked on a
	// node-only setting.
	ErrNoValue = errors.New("setting has no value")

	// ErrDuplicateBreadcrumb is returned when two settings in a tree
	// resolve to the same breadcrumb. Breadcrumbs are identity and
	// persistence keys; duplicates would silently shadow each other.
	ErrDuplicateBreadcrumb = errors.New("duplicate breadcrumb")
)
