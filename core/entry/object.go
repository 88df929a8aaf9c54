package entry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Field declares one sub-field of an object type.
type Field struct {
	Name        string
	Tag         string
	Description string
	Required    bool
	Default     any
	HasDefault  bool
}

// ConstructFunc builds a native object from validated sub-field values.
// driver is the receiver of the invoked method, nil for constructors.
type ConstructFunc func(ctx context.Context, fields map[string]any, driver any) (any, error)

// ObjectType declares a named object reference. Sub-fields are read from
// the request document; RenderAttributes name the native attributes emitted
// when a native value is marshalled.
type ObjectType struct {
	Name             string
	Fields           []Field
	RenderAttributes []string
	// Native is the Go type of constructed values. Pointers to it are
	// accepted when marshalling.
	Native    reflect.Type
	Construct ConstructFunc
}

// NewObjectType builds an ObjectType for native type T.
func NewObjectType[T any](name string, render []string, construct ConstructFunc, fields ...Field) ObjectType {
	return ObjectType{
		Name:             name,
		Fields:           fields,
		RenderAttributes: render,
		Native:           reflect.TypeOf((*T)(nil)).Elem(),
		Construct:        construct,
	}
}

// SingleField builds the object type of a one-field record: the native
// value is the field value converted to T and marshals as {field: value}.
func SingleField[T any](name string, field Field) ObjectType {
	return NewObjectType[T](name, []string{field.Name}, func(_ context.Context, fields map[string]any, _ any) (any, error) {
		var out T
		if err := convertJSON(fields[field.Name], &out); err != nil {
			return nil, err
		}
		return out, nil
	}, field)
}

// objectType is a validated ObjectType with resolved attribute indexes.
type objectType struct {
	ObjectType
	attrIndex map[string][]int
}

func compileObjectType(t ObjectType) (*objectType, error) {
	if t.Name == "" || t.Construct == nil || t.Native == nil {
		return nil, fmt.Errorf("%w: %q needs a name, a native type and a constructor", ErrInvalidObject, t.Name)
	}
	if len(t.Fields) == 0 {
		return nil, fmt.Errorf("%w: %s has no fields", ErrInvalidObject, t.Name)
	}
	native := t.Native
	for native.Kind() == reflect.Pointer {
		native = native.Elem()
	}
	t.Native = native

	ot := &objectType{ObjectType: t, attrIndex: make(map[string][]int)}
	if native.Kind() != reflect.Struct {
		if len(t.RenderAttributes) != 1 {
			return nil, fmt.Errorf("%w: %s: non-struct natives render exactly one attribute", ErrInvalidObject, t.Name)
		}
		return ot, nil
	}
	for _, attr := range t.RenderAttributes {
		idx, ok := fieldByAttribute(native, attr)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no attribute %q", ErrInvalidObject, native, attr)
		}
		ot.attrIndex[attr] = idx
	}
	return ot, nil
}

// fieldByAttribute finds the struct field whose json name is attr.
func fieldByAttribute(t reflect.Type, attr string) ([]int, bool) {
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			if n, _, _ := strings.Cut(tag, ","); n != "" && n != "-" {
				name = n
			}
		}
		if name == attr || strings.EqualFold(f.Name, attr) {
			return f.Index, true
		}
	}
	return nil, false
}

// Object is an entry for a registered object reference.
type Object struct {
	base
	typ    *objectType
	fields []Entry
}

func (o *Object) Validate(doc Document) error {
	var missing []string
	for _, f := range o.fields {
		err := f.Validate(doc)
		if err == nil {
			continue
		}
		if m, ok := err.(*MissingArgumentsError); ok {
			missing = append(missing, m.Names()...)
			continue
		}
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	if !o.spec.Required && !o.supplied(doc) {
		return nil
	}
	return &MissingArgumentsError{Alternatives: [][]string{missing}}
}

func (o *Object) supplied(doc Document) bool {
	for _, f := range o.fields {
		if _, ok := doc.lookup(f.Name()); ok {
			return true
		}
	}
	return false
}

func (o *Object) FromWire(ctx context.Context, doc Document, driver any) (any, error) {
	if !o.supplied(doc) && !o.spec.Required {
		return o.spec.Default, nil
	}
	values := make(map[string]any, len(o.fields))
	for _, f := range o.fields {
		v, err := f.FromWire(ctx, doc, driver)
		if err != nil {
			return nil, err
		}
		values[f.Name()] = v
	}
	native, err := o.typ.Construct(ctx, values, driver)
	if err != nil {
		return nil, &ConstructError{Tag: o.tag, Err: err}
	}
	return native, nil
}

func (o *Object) ToWire(native any) (any, error) {
	v := reflect.ValueOf(native)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, &RepresentationError{Tag: o.tag, Reason: "nil value"}
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.Type() != o.typ.Native {
		return nil, &RepresentationError{Tag: o.tag, Reason: fmt.Sprintf("expected %s, got %T", o.typ.Native, native)}
	}

	out := make(map[string]any, len(o.typ.RenderAttributes))
	if v.Kind() != reflect.Struct {
		out[o.typ.RenderAttributes[0]] = v.Interface()
		return out, nil
	}
	for _, attr := range o.typ.RenderAttributes {
		out[attr] = v.FieldByIndex(o.typ.attrIndex[attr]).Interface()
	}
	return out, nil
}

func (o *Object) Arguments() []Argument {
	var out []Argument
	for _, f := range o.fields {
		for _, a := range f.Arguments() {
			a.Required = a.Required && o.spec.Required
			out = append(out, a)
		}
	}
	return out
}

// FieldNames returns the names of the sub-fields.
func (o *Object) FieldNames() []string {
	names := make([]string, len(o.fields))
	for i, f := range o.fields {
		names[i] = f.Name()
	}
	return names
}

// convertJSON converts v into out by way of its JSON form.
func convertJSON(v any, out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	return dec.Decode(out)
}
