package ripe

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/polarityio/ripe/internal/apperr"
	"github.com/polarityio/ripe/internal/services"
)

// Kind classifies a failed registry request.
type Kind int

// The fixed error taxonomy. Every failed request maps to exactly one Kind.
const (
	TransportError Kind = iota
	BadRequest
	Forbidden
	NotFound
	MethodNotAllowed
	Conflict
	UnsupportedMediaType
	InternalServerError
	UnexpectedError
)

// Fixed details for the kinds that do not carry the registry's query_status.
const (
	detailTransport  = "HTTP Request Error"
	detailUnexpected = "An unexpected error occurred"
)

var kindNames = [...]string{
	TransportError:       "HTTP Request Error",
	BadRequest:           "Bad Request",
	Forbidden:            "Forbidden",
	NotFound:             "Not Found",
	MethodNotAllowed:     "Method Not Allowed",
	Conflict:             "Conflict",
	UnsupportedMediaType: "Unsupported Media Type",
	InternalServerError:  "Internal Server Error",
	UnexpectedError:      "Unexpected Error",
}

// String returns the human-readable name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes k by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ClassifiedError describes why a registry request failed. It aborts the
// whole batch that produced it.
type ClassifiedError struct {
	Kind Kind `json:"kind"`
	// Detail is "HTTP Request Error" for transport failures, the registry's
	// query_status for mapped statuses (empty when the body has none), and
	// "An unexpected error occurred" otherwise.
	Detail string `json:"detail,omitempty"`
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int `json:"status_code,omitempty"`
	// Entity is the entity whose request failed.
	Entity *services.Entity `json:"entity,omitempty"`
	// Body is the raw response body, kept for unexpected responses.
	Body json.RawMessage `json:"body,omitempty"`
	// Err is the underlying transport error, if any.
	Err error `json:"-"`
}

// Error implements error.
func (e *ClassifiedError) Error() string {
	var b strings.Builder
	b.WriteString("ripe")
	if e.Entity != nil {
		fmt.Fprintf(&b, " lookup %q", e.Entity.Value)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	switch {
	case e.StatusCode != 0:
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	case e.Kind == UnexpectedError:
		b.WriteString(" (HTTP status Unknown)")
	}
	if e.Detail != "" && e.Detail != e.Kind.String() {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes apperr.ErrRequestFailed and the transport cause to errors.Is / errors.As.
func (e *ClassifiedError) Unwrap() []error {
	if e.Err == nil {
		return []error{apperr.ErrRequestFailed}
	}
	return []error{apperr.ErrRequestFailed, e.Err}
}
