package types

import (
	"fmt"
	"strings"
)

// GenerationMode identifies the artifact style requested from the service
type GenerationMode string

const (
	ModeSQLModel GenerationMode = "sqlmodel"
	ModeTortoise GenerationMode = "tortoise"
)

// DefaultMode is active until the user picks another one
const DefaultMode = ModeSQLModel

// AllModes lists the supported modes in display order
var AllModes = []GenerationMode{ModeSQLModel, ModeTortoise}

// ParseMode parses a mode name case-insensitively
func ParseMode(s string) (GenerationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlmodel":
		return ModeSQLModel, nil
	case "tortoise", "tortoise-orm", "tortoiseorm":
		return ModeTortoise, nil
	case "":
		return DefaultMode, nil
	}
	return "", fmt.Errorf("unknown generation mode %q (use sqlmodel or tortoise)", s)
}

// DisplayName returns the human label for the mode
func (m GenerationMode) DisplayName() string {
	switch m {
	case ModeSQLModel:
		return "SQLModel"
	case ModeTortoise:
		return "Tortoise ORM"
	}
	return string(m)
}

// Valid reports whether m is one of AllModes
func (m GenerationMode) Valid() bool {
	for _, known := range AllModes {
		if m == known {
			return true
		}
	}
	return false
}
