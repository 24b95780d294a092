package keybinds

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a keybinding validation problem
type ValidationError struct {
	Type    string // "conflict", "invalid", "warning"
	Context Context
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s in context '%s': %s", e.Type, e.Key, e.Context, e.Message)
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// String returns a human-readable summary of validation results
func (r *ValidationResult) String() string {
	var sb strings.Builder

	if len(r.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("Errors (%d):\n", len(r.Errors)))
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("Warnings (%d):\n", len(r.Warnings)))
		for _, warn := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn.Error()))
		}
	}
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		sb.WriteString("No issues found")
	}

	return sb.String()
}

// Validator checks user keybinding overrides
type Validator struct {
	// reservedKeys cannot be bound to anything but their default action
	reservedKeys map[string]Action
}

// NewValidator creates a new keybinding validator
func NewValidator() *Validator {
	return &Validator{
		reservedKeys: map[string]Action{
			"ctrl+c": ActionQuitForce,
		},
	}
}

// ValidateConfig reports unknown contexts and actions, invalid keys,
// reserved keys, and keys bound to two actions in one context.
func (v *Validator) ValidateConfig(config Config) *ValidationResult {
	result := &ValidationResult{}

	for _, context := range sortedContexts(config) {
		if !IsContext(context) {
			result.Errors = append(result.Errors, ValidationError{
				Type:    "invalid",
				Context: context,
				Message: "unknown context",
			})
			continue
		}

		owner := make(map[string]Action)
		for _, action := range sortedActions(config[context]) {
			if !IsKnown(action) {
				result.Errors = append(result.Errors, ValidationError{
					Type:    "invalid",
					Context: context,
					Message: fmt.Sprintf("unknown action %q", action),
				})
				continue
			}

			keys := splitKeys(config[context][action])
			if len(keys) == 0 {
				result.Warnings = append(result.Warnings, ValidationError{
					Type:    "warning",
					Context: context,
					Message: fmt.Sprintf("%s has no keys and will be unbound", action),
				})
			}

			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					result.Errors = append(result.Errors, ValidationError{
						Type:    "invalid",
						Context: context,
						Key:     key,
						Message: err.Error(),
					})
					continue
				}
				if reserved, ok := v.reservedKeys[key]; ok && reserved != action {
					result.Errors = append(result.Errors, ValidationError{
						Type:    "conflict",
						Context: context,
						Key:     key,
						Message: fmt.Sprintf("key is reserved for %s", reserved),
					})
					continue
				}
				if prev, ok := owner[key]; ok {
					result.Errors = append(result.Errors, ValidationError{
						Type:    "conflict",
						Context: context,
						Key:     key,
						Message: fmt.Sprintf("bound to both %s and %s", prev, action),
					})
					continue
				}
				owner[key] = action
			}
		}
	}

	return result
}

// ValidateKey checks if a key string is valid
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	for _, mod := range []string{"ctrl+", "alt+", "shift+", "super+"} {
		if key == mod {
			return fmt.Errorf("modifier without key: %s", key)
		}
	}
	return nil
}

func sortedContexts(config Config) []Context {
	out := make([]Context, 0, len(config))
	for c := range config {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedActions(actions map[Action]string) []Action {
	out := make([]Action, 0, len(actions))
	for a := range actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
