package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/dfspanel/internal/types"
)

// LoadFixture loads a fixture from a YAML, JSON or JSONC file
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var fixture Fixture

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fixture); err != nil {
			return nil, fmt.Errorf("failed to parse YAML fixture: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &fixture); err != nil {
			return nil, fmt.Errorf("failed to parse JSON fixture: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported fixture file format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}

	if err := validateFixture(&fixture); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}

	return &fixture, nil
}

// validateFixture validates the fixture
func validateFixture(fixture *Fixture) error {
	seen := make(map[string]bool, len(fixture.Tables))
	for i, table := range fixture.Tables {
		if table.Name == "" {
			return fmt.Errorf("table %d: name is required", i)
		}
		if seen[table.Name] {
			return fmt.Errorf("table %d: duplicate name %q", i, table.Name)
		}
		seen[table.Name] = true

		if table.Delay < 0 {
			return fmt.Errorf("table %s: delay must not be negative", table.Name)
		}
		for mode, artifacts := range table.Artifacts {
			if _, err := types.ParseMode(mode); err != nil {
				return fmt.Errorf("table %s: %w", table.Name, err)
			}
			for j, a := range artifacts {
				if a.Name == "" {
					return fmt.Errorf("table %s: artifact %d for %s: name is required", table.Name, j, mode)
				}
				if a.Code != "" && a.CodeFile != "" {
					return fmt.Errorf("table %s: artifact %s: set code or codeFile, not both", table.Name, a.Name)
				}
			}
		}
	}
	return nil
}

// SaveFixture saves a fixture to a file
func SaveFixture(fixture *Fixture, path string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(fixture)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	case ".json":
		data, err = json.MarshalIndent(fixture, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported fixture file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write fixture file: %w", err)
	}

	return nil
}

// DefaultFixture returns a small shop catalog for trying the panel without a backend
func DefaultFixture() *Fixture {
	return &Fixture{
		Tables: []Table{
			{
				Name:    "orders",
				Comment: "customer orders",
				Artifacts: map[string][]Artifact{
					string(types.ModeSQLModel): {
						{Name: "orders.py", Key: "orders", Code: "from sqlmodel import Field, SQLModel\n\n\nclass Orders(SQLModel, table=True):\n    __tablename__ = \"orders\"\n\n    id: int = Field(primary_key=True)\n    user_id: int\n    total: float\n"},
					},
					string(types.ModeTortoise): {
						{Name: "orders.py", Key: "orders", Code: "from tortoise import fields\nfrom tortoise.models import Model\n\n\nclass Orders(Model):\n    id = fields.IntField(pk=True)\n    user_id = fields.IntField()\n    total = fields.FloatField()\n\n    class Meta:\n        table = \"orders\"\n"},
						{Name: "schema.py", Key: "schema", Code: "from tortoise.contrib.pydantic import pydantic_model_creator\n\nfrom .orders import Orders\n\nOrdersSchema = pydantic_model_creator(Orders, name=\"OrdersSchema\")\n"},
					},
				},
			},
			{
				Name:    "users",
				Comment: "accounts",
				Delay:   300,
				Artifacts: map[string][]Artifact{
					string(types.ModeSQLModel): {
						{Name: "users.py", Key: "users", Code: "from sqlmodel import Field, SQLModel\n\n\nclass Users(SQLModel, table=True):\n    __tablename__ = \"users\"\n\n    id: int = Field(primary_key=True)\n    email: str\n"},
					},
					string(types.ModeTortoise): {
						{Name: "users.py", Key: "users", Code: "from tortoise import fields\nfrom tortoise.models import Model\n\n\nclass Users(Model):\n    id = fields.IntField(pk=True)\n    email = fields.CharField(max_length=255)\n\n    class Meta:\n        table = \"users\"\n"},
					},
				},
			},
			{
				Name:    "audit_log",
				Comment: "write-only audit trail",
				Fail:    "(1142, \"SELECT command denied to user for table 'audit_log'\")",
			},
		},
	}
}
