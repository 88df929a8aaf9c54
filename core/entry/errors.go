package entry

import (
	"errors"
	"fmt"
	"strings"
)

// Build-time and marshalling sentinels.
var (
	ErrUnresolvedTag    = errors.New("unresolved type tag")
	ErrRegistryFrozen   = errors.New("type registry is frozen")
	ErrDuplicateTag     = errors.New("type tag already registered")
	ErrInvalidObject    = errors.New("invalid object type")
	ErrCannotRepresent  = errors.New("cannot represent value")
	ErrAmbiguousPayload = errors.New("more than one alternative matches")
)

// MissingArgumentsError lists required fields absent from a document. Each
// alternative is a set of field names; supplying any one set completely
// would satisfy the entry.
type MissingArgumentsError struct {
	Alternatives [][]string
}

func (e *MissingArgumentsError) Error() string {
	return "missing arguments: " + formatSets(e.Alternatives)
}

// Names returns every missing field name once, in order.
func (e *MissingArgumentsError) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range e.Alternatives {
		for _, name := range set {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// ValidationError reports a present value that fails its type check.
type ValidationError struct {
	Name  string
	Tag   string
	Value any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Name, e.Tag, describeValue(e.Value))
}

// TooManyArgumentsError reports a union whose alternatives are satisfied
// by more than one field set at once.
type TooManyArgumentsError struct {
	Name         string
	Alternatives [][]string
}

func (e *TooManyArgumentsError) Error() string {
	return fmt.Sprintf("%s: ambiguous arguments, supply only one of: %s", e.Name, formatSets(e.Alternatives))
}

func (e *TooManyArgumentsError) Unwrap() error { return ErrAmbiguousPayload }

// ConstructError wraps a failure of an object constructor.
type ConstructError struct {
	Tag string
	Err error
}

func (e *ConstructError) Error() string {
	return fmt.Sprintf("construct %s: %v", e.Tag, e.Err)
}

func (e *ConstructError) Unwrap() error { return e.Err }

// RepresentationError reports a native value that cannot be marshalled.
type RepresentationError struct {
	Tag    string
	Reason string
}

func (e *RepresentationError) Error() string {
	return fmt.Sprintf("%s %s: %s", ErrCannotRepresent, e.Tag, e.Reason)
}

func (e *RepresentationError) Unwrap() error { return ErrCannotRepresent }

func formatSets(sets [][]string) string {
	parts := make([]string, 0, len(sets))
	for _, set := range sets {
		parts = append(parts, strings.Join(set, ", "))
	}
	return strings.Join(parts, " or ")
}

func describeValue(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		if isFloat(v) {
			return "number"
		}
		return fmt.Sprintf("%T", v)
	}
}
