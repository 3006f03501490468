package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreOptions_DiskvUsesConfiguredDelimiter(t *testing.T) {
	so := &storeOptions{
		Kind:      "diskv",
		Path:      filepath.Join(t.TempDir(), "prefs.d"),
		Delimiter: "/",
	}

	store, keys, err := so.open()
	require.NoError(t, err)
	require.NoError(t, store.SaveObject("General/Dark Mode", true))

	// Keys written with the configured delimiter round-trip through the
	// same directory-level transform the application used.
	assert.Equal(t, []string{"General/Dark Mode"}, keys())

	v, err := store.LoadObject("General/Dark Mode", false)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestStoreOptions_UnknownKind(t *testing.T) {
	so := &storeOptions{Kind: "registry", Path: t.TempDir()}
	_, _, err := so.open()
	assert.Error(t, err)
}
