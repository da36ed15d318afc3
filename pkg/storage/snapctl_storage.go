package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/canonical/go-snapctl"
)

// SnapctlStorage keeps values in the snap configuration
type SnapctlStorage struct{}

func NewSnapctlStorage() *SnapctlStorage {
	return &SnapctlStorage{}
}

func (s *SnapctlStorage) Set(key, value string) error {
	return snapctl.Set(key, value).Run()
}

func (s *SnapctlStorage) SetDocument(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error encoding %q: %v", key, err)
	}

	return snapctl.Set(key, string(b)).Document().Run()
}

func (s *SnapctlStorage) Get(key string) (map[string]any, error) {
	out, err := snapctl.Get(key).Run()
	if err != nil {
		return nil, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, ErrorNotFound
	}

	// Objects come back as JSON, primitives as plain text
	if !strings.HasPrefix(out, "{") {
		return map[string]any{key: out}, nil
	}

	var valMap map[string]any
	err = json.Unmarshal([]byte(out), &valMap)
	if err != nil {
		return nil, fmt.Errorf("error decoding %q: %v", key, err)
	}
	return valMap, nil
}

func (s *SnapctlStorage) Unset(key string) error {
	return snapctl.Unset(key).Run()
}
