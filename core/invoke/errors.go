package invoke

import (
	"errors"
	"fmt"
	"reflect"
)

// Invocation sentinels.
var (
	ErrPanic            = errors.New("method panicked")
	ErrReceiverMismatch = errors.New("receiver does not implement the method")
)

// MalformedJSONError reports a request body that is not a JSON object.
type MalformedJSONError struct {
	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed JSON: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// InvocationError wraps a failure raised while running the target: an
// object constructor, the method itself or a recovered panic.
type InvocationError struct {
	Method string
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// ValueError reports a validated value that cannot be bound to the Go type
// of its parameter.
type ValueError struct {
	Name string
	Type reflect.Type
	Err  error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("argument %s: cannot use value as %s: %v", e.Name, e.Type, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }
