package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.yaml.in/yaml/v3"
)

// YAMLFile is a Handler backed by a single YAML document, for users who keep
// preferences under dotfile-style version control and want readable diffs.
type YAMLFile struct {
	mu   sync.Mutex
	path string
	doc  map[string]any
}

// NewYAMLFile opens or creates the YAML document at path.
func NewYAMLFile(path string) (*YAMLFile, error) {
	y := &YAMLFile{path: path, doc: make(map[string]any)}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, &y.doc); err != nil {
				return nil, fmt.Errorf("parse preferences file %s: %w", path, err)
			}
			if y.doc == nil {
				y.doc = make(map[string]any)
			}
		}
	case errors.Is(err, os.ErrNotExist):
		// First run; start from an empty document.
	default:
		return nil, fmt.Errorf("read preferences file: %w", err)
	}

	return y, nil
}

// Path returns the backing file path.
func (y *YAMLFile) Path() string {
	return y.path
}

// SaveObject stores a scalar value under key.
func (y *YAMLFile) SaveObject(key string, value any) error {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.doc[key] = value
	return y.persist()
}

// LoadObject returns the stored value or the default on a miss.
func (y *YAMLFile) LoadObject(key string, defaultValue any) (any, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	v, ok := y.doc[key]
	if !ok {
		return defaultValue, nil
	}
	// YAML integers decode as int; the model normalizes JSON-style, so
	// widen to float64 the way encoding/json would.
	if n, isInt := v.(int); isInt {
		return float64(n), nil
	}
	return v, nil
}

// SaveList stores an ordered sequence under key.
func (y *YAMLFile) SaveList(key string, elements []string) error {
	y.mu.Lock()
	defer y.mu.Unlock()

	cp := make([]string, len(elements))
	copy(cp, elements)
	y.doc[key] = cp
	return y.persist()
}

// LoadList returns the stored sequence or the default on a miss.
func (y *YAMLFile) LoadList(key string, defaultElements []string) ([]string, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	v, ok := y.doc[key]
	if !ok {
		return defaultElements, nil
	}

	switch list := v.(type) {
	case []string:
		cp := make([]string, len(list))
		copy(cp, list)
		return cp, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, e := range list {
			out = append(out, fmt.Sprint(e))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("stored value for %q is not a list", key)
	}
}

// Delete removes a stored key. Deleting an absent key is a no-op.
func (y *YAMLFile) Delete(key string) error {
	y.mu.Lock()
	defer y.mu.Unlock()
	delete(y.doc, key)
	return y.persist()
}

// Keys lists every stored key, sorted.
func (y *YAMLFile) Keys() []string {
	y.mu.Lock()
	defer y.mu.Unlock()

	keys := make([]string, 0, len(y.doc))
	for k := range y.doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ClearPreferences resets the document and rewrites the file.
func (y *YAMLFile) ClearPreferences() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.doc = make(map[string]any)
	return y.persist()
}

// persist writes the document atomically. Caller holds the lock.
func (y *YAMLFile) persist() error {
	if err := os.MkdirAll(filepath.Dir(y.path), 0o755); err != nil {
		return fmt.Errorf("ensure preferences directory: %w", err)
	}
	data, err := yaml.Marshal(y.doc)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	tmp := y.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}
	return os.Rename(tmp, y.path)
}
