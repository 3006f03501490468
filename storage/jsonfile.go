package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSONFile is a Handler backed by a single JSON document on disk. Every
// mutation rewrites the file atomically (tmp + rename), so a crash never
// leaves a half-written preferences file behind.
type JSONFile struct {
	mu   sync.Mutex
	path string
	doc  []byte
}

// NewJSONFile opens or creates the JSON document at path.
func NewJSONFile(path string) (*JSONFile, error) {
	j := &JSONFile{path: path, doc: []byte("{}")}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(data) > 0 {
			if !gjson.ValidBytes(data) {
				return nil, fmt.Errorf("preferences file %s is not valid JSON", path)
			}
			j.doc = data
		}
	case errors.Is(err, os.ErrNotExist):
		// First run; start from an empty document.
	default:
		return nil, fmt.Errorf("read preferences file: %w", err)
	}

	return j, nil
}

// Path returns the backing file path.
func (j *JSONFile) Path() string {
	return j.path
}

// SaveObject stores a scalar value under key.
func (j *JSONFile) SaveObject(key string, value any) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	doc, err := sjson.SetBytes(j.doc, escapeKey(key), value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	j.doc = doc
	return j.persist()
}

// LoadObject returns the stored value or the default on a miss.
func (j *JSONFile) LoadObject(key string, defaultValue any) (any, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	r := gjson.GetBytes(j.doc, escapeKey(key))
	if !r.Exists() {
		return defaultValue, nil
	}
	switch r.Type {
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	case gjson.Number:
		return r.Num, nil
	case gjson.String:
		return r.Str, nil
	default:
		return nil, fmt.Errorf("stored value for %q is not a scalar", key)
	}
}

// SaveList stores an ordered sequence under key.
func (j *JSONFile) SaveList(key string, elements []string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if elements == nil {
		elements = []string{}
	}
	doc, err := sjson.SetBytes(j.doc, escapeKey(key), elements)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	j.doc = doc
	return j.persist()
}

// LoadList returns the stored sequence or the default on a miss.
func (j *JSONFile) LoadList(key string, defaultElements []string) ([]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	r := gjson.GetBytes(j.doc, escapeKey(key))
	if !r.Exists() {
		return defaultElements, nil
	}
	if !r.IsArray() {
		return nil, fmt.Errorf("stored value for %q is not a list", key)
	}

	var out []string
	for _, e := range r.Array() {
		out = append(out, e.String())
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// ClearPreferences resets the document to empty and rewrites the file.
func (j *JSONFile) ClearPreferences() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.doc = []byte("{}")
	return j.persist()
}

// Delete removes a stored key. Deleting an absent key is a no-op.
func (j *JSONFile) Delete(key string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	doc, err := sjson.DeleteBytes(j.doc, escapeKey(key))
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	j.doc = doc
	return j.persist()
}

// Keys lists every stored key in document order.
func (j *JSONFile) Keys() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	var keys []string
	gjson.ParseBytes(j.doc).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.Str)
		return true
	})
	return keys
}

// Reload re-reads the document from disk, discarding in-memory state.
// Intended for use with a file watcher when the file changes externally.
func (j *JSONFile) Reload() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			j.doc = []byte("{}")
			return nil
		}
		return fmt.Errorf("reload preferences file: %w", err)
	}
	if len(data) == 0 {
		j.doc = []byte("{}")
		return nil
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("preferences file %s is not valid JSON", j.path)
	}
	j.doc = data
	return nil
}

// persist writes the document atomically. Caller holds the lock.
func (j *JSONFile) persist() error {
	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure preferences directory: %w", err)
	}
	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, j.doc, 0o644); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}
	return os.Rename(tmp, j.path)
}

// keyEscaper neutralizes gjson/sjson path syntax so breadcrumb keys are
// treated as flat document keys. The breadcrumb delimiter '#' and any
// dots inside descriptions must not act as path operators.
var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`*`, `\*`,
	`?`, `\?`,
)

func escapeKey(key string) string {
	return keyEscaper.Replace(key)
}
