// Package entry implements the type tag system used to validate request
// documents and to convert values between their JSON and native forms.
//
// A type tag resolves to one of four entry variants: Scalar, Object, Union
// or List. All entries read from the same flat request document: scalars and
// lists read the value stored under their own name, objects read each of
// their sub-fields by the sub-field name.
package entry

import "context"

// Document is a decoded request body.
type Document map[string]any

// lookup returns the value stored under name. JSON null counts as absent.
func (d Document) lookup(name string) (any, bool) {
	v, ok := d[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Spec describes the argument an entry is built for.
type Spec struct {
	Name        string
	Description string
	Required    bool
	Default     any
	HasDefault  bool
}

// Argument is the introspection form of one request field.
type Argument struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
}

// Entry validates and converts the value of one argument or result.
type Entry interface {
	// Name is the argument name the entry was built for.
	Name() string
	// Tag is the canonical type tag.
	Tag() string
	Description() string
	Required() bool
	Default() (any, bool)

	// Validate checks doc and returns nil, *MissingArgumentsError,
	// *ValidationError or *TooManyArgumentsError.
	Validate(doc Document) error
	// FromWire converts a validated document into the native value. ctx and
	// driver are handed to object constructors.
	FromWire(ctx context.Context, doc Document, driver any) (any, error)
	// ToWire converts a native value into its JSON form.
	ToWire(native any) (any, error)

	Arguments() []Argument
}

// base holds the argument data shared by all variants.
type base struct {
	spec Spec
	tag  string
}

func newBase(spec Spec, tag string) base {
	if spec.HasDefault {
		spec.Required = false
	}
	return base{spec: spec, tag: tag}
}

func (b *base) Name() string        { return b.spec.Name }
func (b *base) Tag() string         { return b.tag }
func (b *base) Description() string { return b.spec.Description }
func (b *base) Required() bool      { return b.spec.Required }

func (b *base) Default() (any, bool) {
	return b.spec.Default, b.spec.HasDefault
}

// absent reports the outcome for a document that does not carry the entry.
func (b *base) absent(names ...string) error {
	if b.spec.Required {
		if len(names) == 0 {
			names = []string{b.spec.Name}
		}
		return &MissingArgumentsError{Alternatives: [][]string{names}}
	}
	return nil
}

func (b *base) argument(typ string) Argument {
	a := Argument{
		Name:        b.spec.Name,
		Type:        typ,
		Description: b.spec.Description,
		Required:    b.spec.Required,
	}
	if b.spec.HasDefault {
		a.Default = b.spec.Default
	}
	return a
}
