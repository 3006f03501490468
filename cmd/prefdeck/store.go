package main

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"github.com/prefdeck/prefdeck/storage"
)

// storeOptions selects the storage backend and location shared by every
// subcommand.
type storeOptions struct {
	Kind      string
	Path      string
	Delimiter string
}

// mutableStore is the maintenance surface over a backend: the Handler
// contract plus key listing and single-key removal.
type mutableStore interface {
	storage.Handler
	Delete(key string) error
}

// open resolves the backend named by --store at --path. Relative and
// unset paths land under ~/.prefdeck.
func (o *storeOptions) open() (mutableStore, func() []string, error) {
	path, err := o.resolvePath()
	if err != nil {
		return nil, nil, err
	}

	switch o.Kind {
	case "json":
		s, err := storage.NewJSONFile(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Keys, nil
	case "yaml":
		s, err := storage.NewYAMLFile(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Keys, nil
	case "diskv":
		s := storage.NewDiskv(path, o.Delimiter)
		return s, s.Keys, nil
	case "sqlite":
		s, err := storage.NewSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		keys := func() []string {
			ks, err := s.Keys()
			if err != nil {
				return nil
			}
			return ks
		}
		return s, keys, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (json, yaml, diskv, sqlite)", o.Kind)
	}
}

func (o *storeOptions) resolvePath() (string, error) {
	if o.Path != "" {
		return homedir.Expand(o.Path)
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	base := filepath.Join(home, ".prefdeck")

	switch o.Kind {
	case "json":
		return filepath.Join(base, "prefs.json"), nil
	case "yaml":
		return filepath.Join(base, "prefs.yaml"), nil
	case "diskv":
		return filepath.Join(base, "prefs.d"), nil
	case "sqlite":
		return filepath.Join(base, "prefs.db"), nil
	default:
		return "", fmt.Errorf("unknown store %q (json, yaml, diskv, sqlite)", o.Kind)
	}
}
