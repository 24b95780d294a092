package mock

import (
	"time"

	"github.com/studiowebux/dfspanel/internal/types"
)

// Fixture describes what the mock service answers
type Fixture struct {
	Port       int                     `json:"port" yaml:"port"`                                 // Server port (default: 8080)
	Host       string                  `json:"host" yaml:"host"`                                 // Server host (default: localhost)
	Logging    *bool                   `json:"logging,omitempty" yaml:"logging,omitempty"`       // Keep a request log (default: true)
	Connection *types.ConnectionConfig `json:"connection,omitempty" yaml:"connection,omitempty"` // Connection reported by /con before any /conf
	Databases  []string                `json:"databases,omitempty" yaml:"databases,omitempty"`   // Accepted database names, empty accepts any
	Tables     []Table                 `json:"tables" yaml:"tables"`
}

// Table is one table of the fixture catalog
type Table struct {
	Name      string                `json:"name" yaml:"name"`
	Comment   string                `json:"comment,omitempty" yaml:"comment,omitempty"`
	Delay     int                   `json:"delay,omitempty" yaml:"delay,omitempty"` // Codegen delay in milliseconds
	Fail      string                `json:"fail,omitempty" yaml:"fail,omitempty"`   // Codegen answers 40000 with this message
	Artifacts map[string][]Artifact `json:"artifacts,omitempty" yaml:"artifacts,omitempty"` // Keyed by mode
}

// Artifact is one generated file replayed by /codegen
type Artifact struct {
	Name     string `json:"name" yaml:"name"`
	Key      string `json:"key,omitempty" yaml:"key,omitempty"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	CodeFile string `json:"codeFile,omitempty" yaml:"codeFile,omitempty"` // Read relative to the fixture directory
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Query     string        `json:"query"`
	Body      string        `json:"body"`
	Status    int           `json:"status"`
	Code      int           `json:"code"` // Envelope code of the answer
	Duration  time.Duration `json:"duration"`
}
