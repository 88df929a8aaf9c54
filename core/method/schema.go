// Package method builds method schemas from a method's signature and its
// documentation, and caches them for the lifetime of the process.
package method

import (
	"errors"
	"fmt"
	"sort"

	"github.com/artpar/cloudrest/core/docstring"
	"github.com/artpar/cloudrest/core/entry"
	"github.com/artpar/cloudrest/core/signature"
	"github.com/artpar/cloudrest/core/target"
)

// Build-time failures.
var (
	ErrUnknownMethod         = errors.New("unknown method")
	ErrUndocumentedParameter = errors.New("parameter is not described")
	ErrNoKeywordArguments    = errors.New("documented argument is not a parameter and the method takes no keyword arguments")
)

// resultName is the entry name of a method result.
const resultName = "result"

// BuildError reports why a method schema could not be built.
type BuildError struct {
	Type   string
	Method string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build schema %s.%s: %v", e.Type, e.Method, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Schema is the immutable description of a method's arguments and result.
type Schema struct {
	Name        string
	Description string
	Positional  []entry.Entry
	Named       []entry.Entry
	Result      entry.Entry

	Signature *signature.Signature
	Doc       *docstring.Doc
}

// Entries returns the positional entries followed by the named ones.
func (s *Schema) Entries() []entry.Entry {
	out := make([]entry.Entry, 0, len(s.Positional)+len(s.Named))
	out = append(out, s.Positional...)
	return append(out, s.Named...)
}

// Build derives the schema of method name as seen from type t.
func Build(reg *entry.Registry, t *target.Type, name string) (*Schema, error) {
	s, err := build(reg, t, name)
	if err != nil {
		return nil, &BuildError{Type: t.Name, Method: name, Err: err}
	}
	return s, nil
}

func build(reg *entry.Registry, t *target.Type, name string) (*Schema, error) {
	m, declaring, ok := t.Lookup(name)
	if !ok {
		return nil, ErrUnknownMethod
	}

	sig, err := signature.Inspect(m)
	if err != nil {
		return nil, err
	}
	// @inherits is resolved along the declaring type's ancestor chain.
	doc, err := docstring.Parse(m.Doc, declaring)
	if err != nil {
		return nil, err
	}

	s := &Schema{
		Name:        name,
		Description: doc.Description,
		Signature:   sig,
		Doc:         doc,
	}

	params := make(map[string]bool, len(sig.Params))
	for _, p := range sig.Params {
		params[p.Name] = true
		arg, ok := doc.Argument(p.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUndocumentedParameter, p.Name)
		}
		spec := entry.Spec{
			Name:        p.Name,
			Description: arg.Description,
			Required:    p.Required || arg.Required,
		}
		if !spec.Required {
			spec.Default, spec.HasDefault = p.Default, p.HasDefault
		}
		e, err := reg.Resolve(arg.Type, spec)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", p.Name, err)
		}
		s.Positional = append(s.Positional, e)
	}

	var extra []string
	for _, argName := range doc.Order {
		if !params[argName] {
			extra = append(extra, argName)
		}
	}
	sort.Strings(extra)
	if len(extra) > 0 && !sig.Keywords {
		return nil, fmt.Errorf("%w: %v", ErrNoKeywordArguments, extra)
	}
	for _, argName := range extra {
		arg := doc.Arguments[argName]
		e, err := reg.Resolve(arg.Type, entry.Spec{
			Name:        argName,
			Description: arg.Description,
			Required:    arg.Required,
		})
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", argName, err)
		}
		s.Named = append(s.Named, e)
	}

	result, err := reg.Resolve(doc.Return.Type, entry.Spec{
		Name:        resultName,
		Description: doc.Return.Description,
		Required:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("return: %w", err)
	}
	s.Result = result

	return s, nil
}

// Description is the introspection form of a schema.
type Description struct {
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	Arguments   []entry.Argument `json:"arguments" yaml:"arguments"`
	Return      ReturnInfo       `json:"return" yaml:"return"`
}

// ReturnInfo describes a method result.
type ReturnInfo struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

// Describe returns the introspection form of s.
func (s *Schema) Describe() Description {
	d := Description{
		Name:        s.Name,
		Description: s.Description,
		Arguments:   []entry.Argument{},
		Return: ReturnInfo{
			Type:        s.Result.Tag(),
			Description: s.Result.Description(),
		},
	}
	for _, e := range s.Entries() {
		d.Arguments = append(d.Arguments, e.Arguments()...)
	}
	return d
}
