package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorSentinel is the response code the service uses for every failure
const ErrorSentinel = 40000

// ErrNotConfigured is returned when an operation needs an active connection
var ErrNotConfigured = errors.New("no database connection configured")

// ValidationError lists the connection fields that are missing or malformed
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("connection field %q is required", e.Fields[0])
	}
	return fmt.Sprintf("connection fields are required: %s", strings.Join(e.Fields, ", "))
}

// Has reports whether field is among the invalid fields
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// RemoteError is a failure reported by, or on the way to, the generation service
type RemoteError struct {
	Endpoint string
	Message  string // Service-provided reason, empty for transport failures
	Err      error  // Transport or decoding cause, nil for sentinel responses
}

func (e *RemoteError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
	return e.Endpoint + ": remote error"
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether the request never produced a service answer
func (e *RemoteError) IsTransport() bool {
	return e.Message == "" && e.Err != nil
}

// AsRemote unwraps err into a RemoteError if it is one
func AsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// AsValidation unwraps err into a ValidationError if it is one
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
