package storage

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

type Config interface {
	Set(key, value string, confType configType) error
	SetDocument(key string, value any, confType configType) error
	Get(key string) (map[string]any, error)
	GetAll() (map[string]any, error)
	Unset(key string, confType configType) error
}

type config struct {
	storage  storage
	defaults map[string]any
}

// NewConfig returns the configuration kept in the snap, or in the YAML file
// when not running as a snap
func NewConfig() (Config, error) {
	s, err := defaultStorage()
	if err != nil {
		return nil, err
	}
	return newConfig(s), nil
}

// NewFileConfig returns a configuration kept in the YAML file at path
func NewFileConfig(path string) Config {
	return newConfig(NewFileStorage(path))
}

func newConfig(s storage) *config {
	return &config{
		storage:  s,
		defaults: Defaults(),
	}
}

const configKeyPrefix = "config"

// Configuration keys
const (
	KeyDriver     = "driver"
	KeyFrequency  = "frequency"
	KeyScanCycles = "scan.cycles"
	KeyLogFile    = "log.file"
	KeyLogMaxSize = "log.max-size"
)

// Defaults returns the built-in values, below every stored layer
func Defaults() map[string]any {
	return map[string]any{
		KeyDriver:     "",
		KeyFrequency:  "",
		KeyScanCycles: 1,
		KeyLogFile:    "",
		KeyLogMaxSize: 1,
	}
}

type configType string

// config precedence, from lowest to highest
var confPrecedence = []configType{
	PackageConfig, // values set by the package
	UserConfig,    // values set by the user, overriding all others
}

// config types
const (
	PackageConfig configType = "package"
	UserConfig    configType = "user"
)

// Set sets a configuration value
func (c *config) Set(key, value string, confType configType) error {
	// User configs are overrides, reject unknown keys
	if confType == UserConfig {
		valMap, err := c.Get(key)
		if err != nil {
			return fmt.Errorf("error checking existing keys: %s", err)
		}
		if len(valMap) == 0 {
			return fmt.Errorf("unknown key %q", key)
		}
	}

	return c.storage.Set(c.nestKeys(confType, key), value)
}

// SetDocument sets a configuration value that is primitive or an object
func (c *config) SetDocument(key string, value any, confType configType) error {
	return c.storage.SetDocument(c.nestKeys(confType, key), value)
}

// Get returns one or more configuration fields in as a flat map, after applying precedence rules
// If the value is a single primitive value, the map will have one entry with the full key
func (c *config) Get(key string) (map[string]any, error) {
	configs, err := c.loadConfigs()
	if err != nil {
		return nil, err
	}

	// Only keep exact key matches for both primitives and objects
	// e.g. scan and scan.cycles
	for k := range configs {
		if k != key && !strings.HasPrefix(k, key+".") {
			delete(configs, k)
		}
	}

	return configs, nil
}

// GetAll returns all configurations as a flattened map
func (c *config) GetAll() (map[string]any, error) {
	return c.loadConfigs()
}

func (c *config) Unset(key string, confType configType) error {
	return c.storage.Unset(c.nestKeys(confType, key))
}

// loadConfigs loads all configurations as a flattened map, after applying precedence rules
func (c *config) loadConfigs() (map[string]any, error) {
	finalMap := maps.Clone(c.defaults)

	values, err := c.storage.Get(configKeyPrefix)
	if errors.Is(err, ErrorNotFound) {
		return finalMap, nil
	}
	if err != nil {
		return nil, err
	}

	for _, k := range confPrecedence {
		if v, found := values[string(k)]; found {
			layer, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid %s configuration: expected a map, got %T", k, v)
			}
			maps.Copy(finalMap, flattenMap(layer))
		}
	}

	return finalMap, nil
}

// flattenMap creates a single-level map with dot-separated keys
func flattenMap(input map[string]any) map[string]any {
	flatMap := make(map[string]any)

	var recurse func(map[string]any, string)
	recurse = func(m map[string]any, prefix string) {
		for k, v := range m {
			fullKey := k
			if prefix != "" {
				fullKey = prefix + "." + k
			}
			switch val := v.(type) {
			case map[string]any:
				recurse(val, fullKey)
			default:
				flatMap[fullKey] = val
			}
		}
	}
	recurse(input, "")

	return flatMap
}

// nestKeys creates a dot-separated key with the expected prefix
func (c *config) nestKeys(confType configType, key string) string {
	if key == "." { // special case, referencing the parent
		return strings.Join([]string{configKeyPrefix, string(confType)}, ".")
	}
	return strings.Join([]string{configKeyPrefix, string(confType), key}, ".")
}
