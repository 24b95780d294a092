package types

import (
	"net"
	"strconv"
	"time"
)

// DefaultPort is the MySQL port used when a connection omits one
const DefaultPort = 3306

// DefaultCharset is the connection charset used when a connection omits one
const DefaultCharset = "utf8"

// ConnectionConfig describes the database the generation service should introspect
type ConnectionConfig struct {
	Host     string `json:"host" yaml:"host" validate:"required"`
	Port     int    `json:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
	User     string `json:"user" yaml:"user" validate:"required"`
	Password string `json:"password" yaml:"password" validate:"required"`
	Database string `json:"db" yaml:"db" validate:"required"`
	Charset  string `json:"charset,omitempty" yaml:"charset,omitempty"`
}

// WithDefaults returns a copy with the optional fields filled in
func (c ConnectionConfig) WithDefaults() ConnectionConfig {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Charset == "" {
		c.Charset = DefaultCharset
	}
	return c
}

// Address returns host:port for display
func (c ConnectionConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TableDescriptor is one row of the table catalog
type TableDescriptor struct {
	Name    string `json:"tableName" yaml:"name"`
	Comment string `json:"tableComment" yaml:"comment"`
}

// GeneratedArtifact is one generated source file for a table
type GeneratedArtifact struct {
	Table       string `json:"table" yaml:"-"`
	Key         string `json:"key" yaml:"key"`
	DisplayName string `json:"name" yaml:"name"`
	Source      string `json:"code" yaml:"code"`
}

// CacheKey identifies one generation result
type CacheKey struct {
	Table string
	Mode  GenerationMode
}

func (k CacheKey) String() string {
	return k.Table + "@" + string(k.Mode)
}

// TableFailure pairs a table with the error its generation request produced
type TableFailure struct {
	Table string
	Mode  GenerationMode
	Err   error
}

// HistoryEntry is one recorded generation fetch
type HistoryEntry struct {
	ID            int64         `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Table         string        `json:"table"`
	Mode          string        `json:"mode"`
	BaseURL       string        `json:"baseURL,omitempty"`
	ArtifactCount int           `json:"artifactCount"`
	Duration      time.Duration `json:"duration"`
	Error         string        `json:"error,omitempty"`
}
