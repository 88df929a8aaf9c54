// Package signature checks a method declaration against the reflected type
// of its implementing function and reports its formal parameters.
package signature

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/artpar/cloudrest/core/target"
)

// ErrSignatureMismatch is returned when a declaration does not fit its function.
var ErrSignatureMismatch = errors.New("signature mismatch")

var (
	contextType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	keywordsType = reflect.TypeOf(map[string]any(nil))
)

// Param is a formal parameter with its reflected type.
type Param struct {
	Name       string
	Required   bool
	Default    any
	HasDefault bool
	Type       reflect.Type
}

// Signature is the inspected form of a method.
type Signature struct {
	Method      string
	Params      []Param
	Keywords    bool
	Context     bool
	Constructor bool

	// Receiver is nil for constructors.
	Receiver reflect.Type
	// Result is nil when the function only returns an error.
	Result reflect.Type
	Func   reflect.Value
}

// Param returns the parameter called name.
func (s *Signature) Param(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Inspect reflects m.Func and matches it with the declared parameters.
func Inspect(m *target.Method) (*Signature, error) {
	fn := reflect.ValueOf(m.Func)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s: no function", ErrSignatureMismatch, m.Name)
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: %s: variadic functions are not supported", ErrSignatureMismatch, m.Name)
	}

	sig := &Signature{
		Method:      m.Name,
		Keywords:    m.Keywords,
		Constructor: m.IsConstructor(),
		Func:        fn,
	}

	in := 0
	if !sig.Constructor {
		if ft.NumIn() == 0 {
			return nil, fmt.Errorf("%w: %s: missing receiver", ErrSignatureMismatch, m.Name)
		}
		sig.Receiver = ft.In(0)
		in++
	}
	if in < ft.NumIn() && ft.In(in) == contextType {
		sig.Context = true
		in++
	}

	want := in + len(m.Params)
	if m.Keywords {
		want++
	}
	if ft.NumIn() != want {
		return nil, fmt.Errorf("%w: %s: function takes %d arguments, declaration needs %d",
			ErrSignatureMismatch, m.Name, ft.NumIn(), want)
	}

	seen := make(map[string]bool, len(m.Params))
	for i, p := range m.Params {
		if p.Name == "" || seen[p.Name] {
			return nil, fmt.Errorf("%w: %s: parameter %d has an empty or duplicate name", ErrSignatureMismatch, m.Name, i)
		}
		seen[p.Name] = true

		pt := ft.In(in + i)
		if p.HasDefault && p.Default != nil {
			dt := reflect.TypeOf(p.Default)
			if !dt.AssignableTo(pt) && !dt.ConvertibleTo(pt) {
				return nil, fmt.Errorf("%w: %s: default %v of %s does not fit %s",
					ErrSignatureMismatch, m.Name, p.Default, p.Name, pt)
			}
		}
		sig.Params = append(sig.Params, Param{
			Name:       p.Name,
			Required:   !p.HasDefault,
			Default:    p.Default,
			HasDefault: p.HasDefault,
			Type:       pt,
		})
	}

	if m.Keywords && ft.In(ft.NumIn()-1) != keywordsType {
		return nil, fmt.Errorf("%w: %s: keyword arguments need a final map[string]any", ErrSignatureMismatch, m.Name)
	}

	switch {
	case ft.NumOut() == 1 && ft.Out(0) == errorType:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
		sig.Result = ft.Out(0)
	default:
		return nil, fmt.Errorf("%w: %s: must return (T, error) or error", ErrSignatureMismatch, m.Name)
	}

	return sig, nil
}
