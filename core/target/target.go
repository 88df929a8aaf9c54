// Package target describes the native driver types whose methods are exposed.
// Go keeps neither parameter names nor default values at runtime, so every
// exposed method is declared once with its documentation block, its ordered
// formal parameters and the function value implementing it.
package target

import (
	"fmt"
	"sort"
	"strings"
)

// Constructor is the method name that routes an invocation to object
// construction instead of a method call.
const Constructor = "__init__"

// Param is a formal parameter of a method.
type Param struct {
	Name       string
	Default    any
	HasDefault bool
}

// Required declares a parameter without a default value.
func Required(name string) Param {
	return Param{Name: name}
}

// Optional declares a parameter with a default value.
func Optional(name string, def any) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// Method describes one exposed method.
//
// Func is either a method expression whose first argument is the receiver,
// or, for Constructor, a plain function returning the new object. A
// context.Context may follow the receiver. When Keywords is set the final
// argument is a map[string]any that receives documented arguments which are
// not formal parameters.
type Method struct {
	Name     string
	Doc      string
	Params   []Param
	Keywords bool
	Func     any
}

// IsConstructor reports whether m constructs an object.
func (m *Method) IsConstructor() bool {
	return m.Name == Constructor
}

// Type is a native type with an optional parent. Methods are inherited from
// ancestors unless redeclared.
type Type struct {
	Name   string
	Parent *Type

	methods map[string]*Method
}

// NewType creates a type descending from parent (which may be nil).
func NewType(name string, parent *Type) *Type {
	return &Type{
		Name:    name,
		Parent:  parent,
		methods: make(map[string]*Method),
	}
}

// Define declares a method on t. Types are assembled once at startup, so a
// duplicate declaration panics.
func (t *Type) Define(m Method) *Type {
	if m.Name == "" {
		panic(fmt.Sprintf("target: type %s: method without name", t.Name))
	}
	if _, exists := t.methods[m.Name]; exists {
		panic(fmt.Sprintf("target: type %s: method %q already defined", t.Name, m.Name))
	}
	t.methods[m.Name] = &m
	return t
}

// Lookup finds the nearest declaration of name, starting at t and walking
// the ancestor chain. It also returns the declaring type.
func (t *Type) Lookup(name string) (*Method, *Type, bool) {
	for cur := t; cur != nil; cur = cur.Parent {
		if m, ok := cur.methods[name]; ok {
			return m, cur, true
		}
	}
	return nil, nil, false
}

// Ancestor returns the type named name in t's ancestor chain (t included).
func (t *Type) Ancestor(name string) (*Type, bool) {
	for cur := t; cur != nil; cur = cur.Parent {
		if cur.Name == name {
			return cur, true
		}
	}
	return nil, false
}

// Is reports whether t is other or descends from it.
func (t *Type) Is(other *Type) bool {
	for cur := t; cur != nil; cur = cur.Parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Methods returns the public method names visible on t, sorted. The
// constructor and names starting with an underscore are excluded.
func (t *Type) Methods() []string {
	seen := make(map[string]bool)
	var names []string
	for cur := t; cur != nil; cur = cur.Parent {
		for name := range cur.methods {
			if seen[name] || strings.HasPrefix(name, "_") {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ResolveDoc returns the documentation of method as seen from the type named
// typeName, which must be t or one of its ancestors.
func (t *Type) ResolveDoc(typeName, method string) (string, error) {
	anc, ok := t.Ancestor(typeName)
	if !ok {
		return "", fmt.Errorf("type %s is not an ancestor of %s", typeName, t.Name)
	}
	m, _, ok := anc.Lookup(method)
	if !ok {
		return "", fmt.Errorf("type %s has no method %s", typeName, method)
	}
	return m.Doc, nil
}
