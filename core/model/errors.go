package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotObject is returned when an instance is imported from a value that is
	// not key/value shaped.
	ErrNotObject = errors.New("model: value is not an object")
	// ErrUnknownField is returned by Set for a field the schema does not declare.
	ErrUnknownField = errors.New("model: unknown field")
)

// DefinitionError reports a problem with a class definition. It is returned
// synchronously by registration and is meant to be fixed during development.
type DefinitionError struct {
	// Class is the identity (or alias) of the class being registered.
	Class string
	// Field is the offending field, if the problem is field specific.
	Field string
	// Decl is the declaration string that failed to parse.
	Decl string
	// Offset is the byte offset within Decl where parsing failed, or -1.
	Offset int
	// Reason describes the problem.
	Reason string
}

func (e *DefinitionError) Error() string {
	b := &strings.Builder{}
	b.WriteString("model: ")
	if e.Class != "" {
		fmt.Fprintf(b, "class %s: ", e.Class)
	}
	if e.Field != "" {
		fmt.Fprintf(b, "field %s: ", e.Field)
	}
	b.WriteString(e.Reason)
	if e.Decl != "" {
		fmt.Fprintf(b, " in %q", e.Decl)
		if e.Offset >= 0 {
			fmt.Fprintf(b, " at offset %d", e.Offset)
		}
	}
	return b.String()
}

// UnknownModelError reports a model reference that does not resolve to a
// registered class.
type UnknownModelError struct {
	Ref string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("model: undefined model of type %s", e.Ref)
}

// IsDefinitionError reports whether err is, or wraps, a DefinitionError.
func IsDefinitionError(err error) bool {
	var de *DefinitionError
	return errors.As(err, &de)
}

// IsUnknownModel reports whether err is, or wraps, an UnknownModelError.
func IsUnknownModel(err error) bool {
	var ue *UnknownModelError
	return errors.As(err, &ue)
}
