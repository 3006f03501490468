// Package storage defines the key-value persistence contract for preference
// values and provides several backends: an in-memory store, a single-document
// JSON file, a YAML file, a diskv directory, and a SQLite database.
//
// Keys are setting breadcrumbs unless a setting carries an explicit key
// override. The key format must stay stable across save/load cycles;
// changing the breadcrumb delimiter invalidates previously stored keys.
package storage

// Handler is the persistence collaborator for the preferences model.
//
// Scalar values round-trip through SaveObject/LoadObject as bool, int,
// float64, or string. Collection-valued settings round-trip through
// SaveList/LoadList as ordered string sequences; routing them through the
// scalar path would corrupt order and element identity, so the model
// special-cases them.
//
// A load for a key that has never been saved returns the supplied default
// and no error. I/O failures are the handler's concern; retry and fallback
// policy lives behind this interface.
type Handler interface {
	// SaveObject stores a scalar value under key.
	SaveObject(key string, value any) error

	// LoadObject returns the value stored under key, or defaultValue if
	// the key has never been saved.
	LoadObject(key string, defaultValue any) (any, error)

	// SaveList stores an ordered string sequence under key.
	SaveList(key string, elements []string) error

	// LoadList returns the sequence stored under key, or defaultElements
	// if the key has never been saved.
	LoadList(key string, defaultElements []string) ([]string, error)

	// ClearPreferences removes every stored key.
	ClearPreferences() error
}
