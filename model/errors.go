package model

import (
	"errors"
	"strings"
)

// Error kinds. Use errors.Is to test the kind of an *Error.
var (
	// ErrMalformedInput signals a node that is not a value element or a
	// compound node without its required nested structure.
	ErrMalformedInput = errors.New("Malformed XML-RPC value")
	// ErrFormat signals scalar text that can not be parsed.
	ErrFormat = errors.New("Invalid XML-RPC value format")
	// ErrTypeMismatch signals a wire value incompatible with the target type.
	ErrTypeMismatch = errors.New("XML-RPC type mismatch")
	// ErrUnknownType signals an unrecognized data type tag.
	ErrUnknownType = errors.New("Unknown XML-RPC data type")
	// ErrUnsupportedType signals a Go value that has no XML-RPC
	// representation.
	ErrUnsupportedType = errors.New("Unsupported data type")
)

// Error describes a failed conversion.
type Error struct {
	// Kind is one of the Err* variables.
	Kind error
	// Path locates the failing value, e.g. "Person.Tags[2]". Empty for the
	// root value.
	Path string
	// Tag is the offending XML tag, if any.
	Tag string
	// Msg describes the failure.
	Msg string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Path != "" {
		sb.WriteString(" at ")
		sb.WriteString(e.Path)
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

// newError creates an *Error without path.
func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}
