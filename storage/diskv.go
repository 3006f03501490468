package storage

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// Diskv is a Handler that keeps one file per preference key under a base
// directory. Breadcrumb segments become directory levels, base64-encoded so
// arbitrary descriptions are filesystem-safe. Values are stored as JSON.
type Diskv struct {
	d         *diskv.Diskv
	delimiter string
}

// NewDiskv creates a diskv-backed store rooted at basePath. The delimiter
// splits keys into directory levels; it must match the model's breadcrumb
// delimiter for breadcrumb keys to nest by category.
func NewDiskv(basePath, delimiter string) *Diskv {
	if delimiter == "" {
		delimiter = "#"
	}
	return &Diskv{
		delimiter: delimiter,
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: segmentTransform(delimiter),
			InverseTransform:  segmentInverse(delimiter),
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
	}
}

// BasePath returns the store's root directory.
func (s *Diskv) BasePath() string {
	return s.d.BasePath
}

// SaveObject stores a scalar value under key.
func (s *Diskv) SaveObject(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	return s.d.Write(key, data)
}

// LoadObject returns the stored value or the default on a miss.
func (s *Diskv) LoadObject(key string, defaultValue any) (any, error) {
	data, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultValue, nil
		}
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal %q: %w", key, err)
	}
	return v, nil
}

// SaveList stores an ordered sequence under key.
func (s *Diskv) SaveList(key string, elements []string) error {
	if elements == nil {
		elements = []string{}
	}
	data, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	return s.d.Write(key, data)
}

// LoadList returns the stored sequence or the default on a miss.
func (s *Diskv) LoadList(key string, defaultElements []string) ([]string, error) {
	data, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultElements, nil
		}
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	var elements []string
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("unmarshal %q: %w", key, err)
	}
	if elements == nil {
		elements = []string{}
	}
	return elements, nil
}

// Delete removes a stored key.
func (s *Diskv) Delete(key string) error {
	err := s.d.Erase(key)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ClearPreferences erases every stored key.
func (s *Diskv) ClearPreferences() error {
	return s.d.EraseAll()
}

// Keys lists every stored key.
func (s *Diskv) Keys() []string {
	var keys []string
	for key := range s.d.Keys(nil) {
		keys = append(keys, key)
	}
	return keys
}

func segmentTransform(delimiter string) diskv.AdvancedTransformFunction {
	return func(key string) *diskv.PathKey {
		parts := strings.Split(key, delimiter)
		encoded := make([]string, len(parts))
		for i, part := range parts {
			encoded[i] = base64.URLEncoding.EncodeToString([]byte(part))
		}
		return &diskv.PathKey{
			Path:     encoded[:len(encoded)-1],
			FileName: encoded[len(encoded)-1],
		}
	}
}

func segmentInverse(delimiter string) diskv.InverseTransformFunction {
	return func(pathKey *diskv.PathKey) string {
		segments := append(append([]string{}, pathKey.Path...), pathKey.FileName)
		decoded := make([]string, len(segments))
		for i, seg := range segments {
			b, err := base64.URLEncoding.DecodeString(seg)
			if err != nil {
				decoded[i] = seg
				continue
			}
			decoded[i] = string(b)
		}
		return strings.Join(decoded, delimiter)
	}
}
