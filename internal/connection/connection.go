// Package connection holds the single active database connection descriptor
// and persists it to a named local slot.
package connection

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/studiowebux/dfspanel/internal/logging"
	"github.com/studiowebux/dfspanel/internal/store"
	"github.com/studiowebux/dfspanel/internal/types"
)

// SlotStore persists JSON documents under names
type SlotStore interface {
	GetSlot(name string, v any) (bool, error)
	PutSlot(name string, v any) error
}

// Holder owns the active ConnectionConfig
type Holder struct {
	mu      sync.RWMutex
	slots   SlotStore
	current *types.ConnectionConfig
	logger  *slog.Logger
}

// NewHolder creates a holder backed by slots. A nil slots keeps the
// configuration in memory only.
func NewHolder(slots SlotStore, logger *slog.Logger) *Holder {
	return &Holder{
		slots:  slots,
		logger: logging.OrDiscard(logger),
	}
}

// Load restores the persisted configuration. A stored configuration that no
// longer validates is reported as absent.
func (h *Holder) Load() (types.ConnectionConfig, bool, error) {
	if h.slots == nil {
		cfg, ok := h.Current()
		return cfg, ok, nil
	}

	var cfg types.ConnectionConfig
	found, err := h.slots.GetSlot(store.ConnectionSlot, &cfg)
	if err != nil {
		return types.ConnectionConfig{}, false, fmt.Errorf("failed to load connection: %w", err)
	}
	if !found {
		return types.ConnectionConfig{}, false, nil
	}

	cfg = cfg.WithDefaults()
	if err := Validate(cfg); err != nil {
		h.logger.Warn("ignoring stored connection", "error", err)
		return types.ConnectionConfig{}, false, nil
	}

	h.mu.Lock()
	h.current = &cfg
	h.mu.Unlock()

	h.logger.Debug("connection restored", "host", cfg.Host, "db", cfg.Database)
	return cfg, true, nil
}

// Set validates cfg, persists it and makes it active. On a validation error
// nothing changes.
func (h *Holder) Set(cfg types.ConnectionConfig) error {
	cfg = cfg.WithDefaults()
	if err := Validate(cfg); err != nil {
		return err
	}

	if h.slots != nil {
		if err := h.slots.PutSlot(store.ConnectionSlot, cfg); err != nil {
			return fmt.Errorf("failed to persist connection: %w", err)
		}
	}

	h.mu.Lock()
	h.current = &cfg
	h.mu.Unlock()

	h.logger.Info("connection set", "address", cfg.Address(), "db", cfg.Database, "user", cfg.User)
	return nil
}

// Current returns the active configuration
func (h *Holder) Current() (types.ConnectionConfig, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return types.ConnectionConfig{}, false
	}
	return *h.current, true
}

// Configured reports whether a configuration is active
func (h *Holder) Configured() bool {
	_, ok := h.Current()
	return ok
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the required fields of cfg. The returned error is a
// *types.ValidationError naming every offending field by its wire name.
func Validate(cfg types.ConnectionConfig) error {
	trimmed := cfg
	trimmed.Host = strings.TrimSpace(cfg.Host)
	trimmed.User = strings.TrimSpace(cfg.User)
	trimmed.Database = strings.TrimSpace(cfg.Database)

	err := validate.Struct(trimmed)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate connection: %w", err)
	}

	verr := &types.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, fe.Field())
	}
	return verr
}
