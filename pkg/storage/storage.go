package storage

import (
	"fmt"

	"github.com/canonical/go-snapctl/env"
)

var ErrorNotFound = fmt.Errorf("not found")

// storage is a tree of values addressed by dot-separated keys.
// Get returns the subtree at key, or {key: value} when key holds a primitive.
type storage interface {
	Set(key string, value string) error
	SetDocument(key string, value any) error
	Get(key string) (map[string]any, error)
	Unset(key string) error
}

// defaultStorage keeps settings in the snap when running as one, and in a
// YAML file otherwise
func defaultStorage() (storage, error) {
	if env.Snap() != "" {
		return NewSnapctlStorage(), nil
	}

	path, err := DefaultFilePath()
	if err != nil {
		return nil, err
	}
	return NewFileStorage(path), nil
}
