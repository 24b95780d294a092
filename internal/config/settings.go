package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the settings file
const (
	EnvBaseURL  = "DFSPANEL_BASE_URL"
	EnvLogLevel = "DFSPANEL_LOG_LEVEL"
	EnvMode     = "DFSPANEL_MODE"
	EnvTimeout  = "DFSPANEL_TIMEOUT"
)

// Settings configures how dfspanel reaches the generation service
type Settings struct {
	BaseURL          string `json:"baseURL" yaml:"baseURL" validate:"required,url"`
	TimeoutSeconds   int    `json:"timeoutSeconds" yaml:"timeoutSeconds" validate:"min=1,max=600"`
	Retries          int    `json:"retries" yaml:"retries" validate:"min=0,max=10"`
	CircuitBreaker   *bool  `json:"circuitBreaker,omitempty" yaml:"circuitBreaker,omitempty"`
	CircuitThreshold uint32 `json:"circuitThreshold" yaml:"circuitThreshold" validate:"min=1"`
	Concurrency      int    `json:"concurrency" yaml:"concurrency" validate:"min=1,max=64"`
	DefaultMode      string `json:"defaultMode" yaml:"defaultMode" validate:"omitempty,oneof=sqlmodel tortoise tortoise-orm"`
	LogLevel         string `json:"logLevel" yaml:"logLevel" validate:"omitempty,oneof=debug info warn error"`
	LogFormat        string `json:"logFormat" yaml:"logFormat" validate:"omitempty,oneof=text json"`
	MessageTimeout   int    `json:"messageTimeout" yaml:"messageTimeout" validate:"min=0"` // Seconds before footer notices clear, 0 keeps them
}

// DefaultSettings returns the settings used when no file is present
func DefaultSettings() Settings {
	enabled := true
	return Settings{
		BaseURL:          "http://127.0.0.1:8080",
		TimeoutSeconds:   30,
		Retries:          2,
		CircuitBreaker:   &enabled,
		CircuitThreshold: 5,
		Concurrency:      4,
		DefaultMode:      "sqlmodel",
		LogLevel:         "info",
		LogFormat:        "text",
		MessageTimeout:   5,
	}
}

// Timeout returns the request timeout as a duration
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// BreakerEnabled reports whether the circuit breaker should wrap the transport
func (s Settings) BreakerEnabled() bool {
	return s.CircuitBreaker == nil || *s.CircuitBreaker
}

// LoadSettings reads settings from path, falling back to defaults for omitted fields
// An empty path loads the first file found by FindSettingsFile, or defaults only
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	if path == "" {
		path = FindSettingsFile()
	}
	if path != "" {
		if err := decodeSettingsFile(path, &settings); err != nil {
			return Settings{}, err
		}
	}

	applyEnv(&settings)

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// LoadEnvFile loads KEY=value pairs from a .env file into the process environment
// Existing variables are not overwritten
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Validate checks field ranges and formats
func (s Settings) Validate() error {
	v := validator.New()
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// SaveSettings writes settings to path in the format given by its extension
func SaveSettings(settings Settings, path string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	case ".json", ".jsonc":
		data, err = json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported settings file format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

func decodeSettingsFile(path string, settings *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, settings); err != nil {
			return fmt.Errorf("failed to parse YAML settings: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), settings); err != nil {
			return fmt.Errorf("failed to parse JSON settings: %w", err)
		}
	default:
		return fmt.Errorf("unsupported settings file format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}
	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		settings.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		settings.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvMode); v != "" {
		settings.DefaultMode = strings.ToLower(v)
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			settings.TimeoutSeconds = secs
		}
	}
}
