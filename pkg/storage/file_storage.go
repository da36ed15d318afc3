package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv overrides the location of the configuration file
const ConfigFileEnv = "FMIO_CONFIG"

// DefaultFilePath returns $FMIO_CONFIG, or fmio/config.yaml under the user
// configuration directory
func DefaultFilePath() (string, error) {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error locating user config directory: %v", err)
	}
	return filepath.Join(dir, "fmio", "config.yaml"), nil
}

// FileStorage keeps the value tree in a YAML document. The file is read on
// every access and rewritten on every change.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	tree := make(map[string]any)
	err = yaml.Unmarshal(data, &tree)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %v", s.path, err)
	}
	return tree, nil
}

func (s *FileStorage) save(tree map[string]any) error {
	data, err := yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("error serializing config: %v", err)
	}

	err = os.MkdirAll(filepath.Dir(s.path), 0755)
	if err != nil {
		return fmt.Errorf("error creating config directory: %v", err)
	}

	tmp := s.path + ".tmp"
	err = os.WriteFile(tmp, data, 0644)
	if err != nil {
		return fmt.Errorf("error writing config file: %v", err)
	}
	return os.Rename(tmp, s.path)
}

// parent walks to the map holding the last element of key, creating
// intermediate maps when create is set
func parent(tree map[string]any, key string, create bool) (map[string]any, string) {
	parts := strings.Split(key, ".")
	m := tree
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			if !create {
				return nil, ""
			}
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	return m, parts[len(parts)-1]
}

func (s *FileStorage) Set(key, value string) error {
	return s.SetDocument(key, value)
}

func (s *FileStorage) SetDocument(key string, value any) error {
	tree, err := s.load()
	if err != nil {
		return err
	}

	m, last := parent(tree, key, true)
	m[last] = value

	return s.save(tree)
}

func (s *FileStorage) Get(key string) (map[string]any, error) {
	tree, err := s.load()
	if err != nil {
		return nil, err
	}

	m, last := parent(tree, key, false)
	if m == nil {
		return nil, ErrorNotFound
	}
	v, found := m[last]
	if !found {
		return nil, ErrorNotFound
	}

	if sub, ok := v.(map[string]any); ok {
		return sub, nil
	}
	return map[string]any{key: v}, nil
}

func (s *FileStorage) Unset(key string) error {
	tree, err := s.load()
	if err != nil {
		return err
	}

	m, last := parent(tree, key, false)
	if m == nil {
		return nil
	}
	delete(m, last)

	return s.save(tree)
}
