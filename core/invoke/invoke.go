// Package invoke runs methods described by a method schema against JSON
// request documents.
//
// A call parses the body, validates the positional entries in order and then
// the named ones, binds native arguments, calls the method (or the
// constructor) and marshals the result through the result entry. Errors are
// returned unclassified; the caller maps them with package apierror.
package invoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/artpar/cloudrest/core/entry"
	"github.com/artpar/cloudrest/core/method"
)

// ParseBody decodes a request body. An empty body is an empty document.
func ParseBody(body []byte) (entry.Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return entry.Document{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &MalformedJSONError{Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &MalformedJSONError{Err: errors.New("unexpected data after the JSON object")}
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, &MalformedJSONError{Err: fmt.Errorf("expected a JSON object, got %s", jsonKind(v))}
	}
	return doc, nil
}

// Invoke runs s against the JSON body and returns the JSON encoded result.
func Invoke(ctx context.Context, s *method.Schema, receiver any, body []byte) ([]byte, error) {
	doc, err := ParseBody(body)
	if err != nil {
		return nil, err
	}
	wire, err := InvokeDocument(ctx, s, receiver, doc)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(wire)
	if err != nil {
		return nil, &InvocationError{Method: s.Name, Err: err}
	}
	return out, nil
}

// InvokeDocument runs s against doc and returns the wire form of the result.
// A constructed object has no wire form; use Call to obtain it.
func InvokeDocument(ctx context.Context, s *method.Schema, receiver any, doc entry.Document) (any, error) {
	native, err := Call(ctx, s, receiver, doc)
	if err != nil {
		return nil, err
	}
	if s.Signature.Constructor {
		native = nil
	}
	return s.Result.ToWire(native)
}

// Call validates doc, runs s and returns the native result. For the
// constructor the result is the new object and receiver is ignored.
func Call(ctx context.Context, s *method.Schema, receiver any, doc entry.Document) (any, error) {
	skipped, err := validate(s, doc)
	if err != nil {
		return nil, err
	}
	args, err := bind(ctx, s, receiver, doc, skipped)
	if err != nil {
		return nil, err
	}
	return call(s, args)
}

// validate checks positional entries, then named ones. Optional named
// entries that are missing are reported as skipped.
func validate(s *method.Schema, doc entry.Document) (map[string]bool, error) {
	for _, e := range s.Positional {
		if err := e.Validate(doc); err != nil {
			return nil, err
		}
	}
	skipped := make(map[string]bool)
	for _, e := range s.Named {
		err := e.Validate(doc)
		if err == nil {
			continue
		}
		var missing *entry.MissingArgumentsError
		if errors.As(err, &missing) && !e.Required() {
			skipped[e.Name()] = true
			continue
		}
		return nil, err
	}
	return skipped, nil
}

func bind(ctx context.Context, s *method.Schema, receiver any, doc entry.Document, skipped map[string]bool) ([]reflect.Value, error) {
	sig := s.Signature
	var args []reflect.Value
	if ctx == nil {
		ctx = context.Background()
	}

	var driver any
	if !sig.Constructor {
		rv := reflect.ValueOf(receiver)
		if !rv.IsValid() || !rv.Type().AssignableTo(sig.Receiver) {
			return nil, &InvocationError{Method: s.Name, Err: fmt.Errorf("%w: %T is not %s", ErrReceiverMismatch, receiver, sig.Receiver)}
		}
		args = append(args, rv)
		driver = receiver
	}
	if sig.Context {
		args = append(args, reflect.ValueOf(&ctx).Elem())
	}

	for i, e := range s.Positional {
		p := sig.Params[i]
		v, err := e.FromWire(ctx, doc, driver)
		if err != nil {
			return nil, fromWireError(s.Name, err)
		}
		bv, err := bindValue(v, p.Type)
		if err != nil {
			return nil, &ValueError{Name: p.Name, Type: p.Type, Err: err}
		}
		args = append(args, bv)
	}

	if sig.Keywords {
		kwargs := make(map[string]any, len(s.Named))
		for _, e := range s.Named {
			if skipped[e.Name()] {
				continue
			}
			v, err := e.FromWire(ctx, doc, driver)
			if err != nil {
				return nil, fromWireError(s.Name, err)
			}
			if v != nil {
				kwargs[e.Name()] = v
			}
		}
		args = append(args, reflect.ValueOf(kwargs))
	}
	return args, nil
}

// fromWireError keeps request errors as they are and reports everything
// else, notably constructor failures, as invocation errors.
func fromWireError(name string, err error) error {
	var (
		missing  *entry.MissingArgumentsError
		invalid  *entry.ValidationError
		tooMany  *entry.TooManyArgumentsError
		internal *InvocationError
	)
	if errors.As(err, &missing) || errors.As(err, &invalid) || errors.As(err, &tooMany) || errors.As(err, &internal) {
		return err
	}
	return &InvocationError{Method: name, Err: err}
}

func call(s *method.Schema, args []reflect.Value) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &InvocationError{Method: s.Name, Err: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()

	out := s.Signature.Func.Call(args)
	if errv := out[len(out)-1]; !errv.IsNil() {
		return nil, &InvocationError{Method: s.Name, Err: errv.Interface().(error)}
	}
	if len(out) == 2 {
		return out[0].Interface(), nil
	}
	return nil, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case json.Number:
		return "a number"
	}
	return fmt.Sprintf("%T", v)
}
