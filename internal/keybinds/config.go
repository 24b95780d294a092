package keybinds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// FileName is the keybinding override file looked up in the config directory
const FileName = "keybinds.json"

// Config is a user override file: context -> action -> comma-separated keys
type Config map[Context]map[Action]string

// LoadConfig loads a keybinding override file. Comments and trailing commas are accepted.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", filepath.Base(path), err)
	}
	return config, nil
}

// ApplyConfig applies user overrides to a registry.
// Keys listed for an action replace that action's default keys in the context.
func ApplyConfig(registry *Registry, config Config) error {
	result := NewValidator().ValidateConfig(config)
	if result.HasErrors() {
		return errors.New(strings.TrimSpace(result.String()))
	}

	for context, actions := range config {
		for action, keyList := range actions {
			registry.Unbind(context, action)
			registry.RegisterMultiple(context, splitKeys(keyList), action)
		}
	}
	return nil
}

// LoadOrDefault returns the default registry with the overrides at path applied.
// A missing file yields the defaults.
func LoadOrDefault(path string) (*Registry, error) {
	registry := NewDefaultRegistry()
	if path == "" {
		return registry, nil
	}

	config, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return registry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", FileName, err)
	}

	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", FileName, err)
	}
	return registry, nil
}

func splitKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		// A lone space is the space key; anything else is trimmed
		if k != " " {
			k = strings.TrimSpace(k)
		}
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
