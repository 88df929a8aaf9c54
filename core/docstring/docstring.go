// Package docstring parses structured method documentation.
//
// A documentation block starts with free-form description lines followed by
// tagged fields:
//
//	@param name: text       describes an argument, "(required)" marks it required
//	@keyword name: text     same as @param
//	@type name: tag         type tag of an argument
//	@return: text           description of the result
//	@rtype: tag             type tag of the result
//	@inherits: Type.method  take the fields of another method as defaults
//
// A field continues on the following lines until the next line starting
// with "@". Unknown tags are skipped.
package docstring

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Build-time failures.
var (
	ErrMissingType        = errors.New("argument type is not documented")
	ErrMissingDescription = errors.New("argument description is not documented")
	ErrMissingReturn      = errors.New("return type is not documented")
	ErrUnresolvedInherits = errors.New("unresolved @inherits reference")
	ErrInheritanceCycle   = errors.New("@inherits cycle")
)

const requiredMarker = "(required)"

// ParseError reports a documentation problem.
type ParseError struct {
	Argument string
	Ref      string
	Err      error
}

func (e *ParseError) Error() string {
	switch {
	case e.Argument != "":
		return fmt.Sprintf("%s: %q", e.Err, e.Argument)
	case e.Ref != "":
		return fmt.Sprintf("%s: %s", e.Err, e.Ref)
	default:
		return e.Err.Error()
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// Argument is a documented argument.
type Argument struct {
	Type        string
	Description string
	Required    bool
}

// Return is the documented result.
type Return struct {
	Type        string
	Description string
}

// Doc is a parsed documentation block.
type Doc struct {
	Description string
	Arguments   map[string]Argument
	// Order lists argument names in declaration order.
	Order  []string
	Return Return
}

// Argument returns the documented argument name.
func (d *Doc) Argument(name string) (Argument, bool) {
	a, ok := d.Arguments[name]
	return a, ok
}

// Resolver finds the documentation referenced by @inherits.
type Resolver interface {
	ResolveDoc(typeName, method string) (string, error)
}

// Parse parses text and resolves its @inherits references through r, which
// may be nil when inheritance is not used.
func Parse(text string, r Resolver) (*Doc, error) {
	doc, err := parse(text, r, map[string]bool{})
	if err != nil {
		return nil, err
	}
	if err := doc.check(); err != nil {
		return nil, err
	}
	return doc, nil
}

var fieldPattern = regexp.MustCompile(`^@(\w+)\s*([^:]*?)\s*:\s*(.*)$`)

// raw accumulates the fields of one block before inheritance is applied.
type raw struct {
	description []string
	args        map[string]*rawArg
	order       []string
	rtype       *string
	ret         *string
	inherits    string
}

type rawArg struct {
	typ      *string
	desc     *string
	required bool
}

func (r *raw) arg(name string) *rawArg {
	if a, ok := r.args[name]; ok {
		return a
	}
	a := &rawArg{}
	r.args[name] = a
	r.order = append(r.order, name)
	return a
}

func parse(text string, resolver Resolver, visiting map[string]bool) (*Doc, error) {
	blk := scan(text)

	doc := &Doc{Arguments: make(map[string]Argument)}
	if blk.inherits != "" {
		ref := trimWrapper(blk.inherits)
		if visiting[ref] {
			return nil, &ParseError{Ref: ref, Err: ErrInheritanceCycle}
		}
		typeName, method, ok := splitRef(ref)
		if !ok || resolver == nil {
			return nil, &ParseError{Ref: ref, Err: ErrUnresolvedInherits}
		}
		inheritedText, err := resolver.ResolveDoc(typeName, method)
		if err != nil {
			return nil, &ParseError{Ref: ref, Err: fmt.Errorf("%w: %v", ErrUnresolvedInherits, err)}
		}
		visiting[ref] = true
		inherited, err := parse(inheritedText, resolver, visiting)
		delete(visiting, ref)
		if err != nil {
			return nil, err
		}
		doc = inherited
	}

	if len(blk.description) > 0 {
		doc.Description = strings.Join(blk.description, " ")
	}
	if blk.rtype != nil {
		doc.Return.Type = *blk.rtype
	}
	if blk.ret != nil {
		doc.Return.Description = *blk.ret
	}
	for _, name := range blk.order {
		a := blk.args[name]
		cur, exists := doc.Arguments[name]
		if !exists {
			doc.Order = append(doc.Order, name)
		}
		if a.typ != nil {
			cur.Type = *a.typ
		}
		if a.desc != nil {
			cur.Description = *a.desc
			cur.Required = a.required
		}
		doc.Arguments[name] = cur
	}
	return doc, nil
}

// scan splits text into description lines and tagged fields.
func scan(text string) *raw {
	blk := &raw{args: make(map[string]*rawArg)}

	var (
		tagged bool
		// cur points at the field receiving continuation lines.
		cur *string
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "@") {
			switch {
			case line == "":
			case !tagged:
				blk.description = append(blk.description, line)
			case cur != nil:
				*cur = strings.TrimSpace(*cur + " " + line)
			}
			continue
		}

		tagged = true
		cur = nil
		m := fieldPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		tag, name, value := m[1], m[2], strings.TrimSpace(m[3])
		switch tag {
		case "param", "keyword":
			if name == "" {
				continue
			}
			a := blk.arg(name)
			a.desc = &value
			cur = a.desc
		case "type":
			if name == "" {
				continue
			}
			a := blk.arg(name)
			a.typ = &value
			cur = a.typ
		case "rtype":
			blk.rtype = &value
			cur = blk.rtype
		case "return":
			blk.ret = &value
			cur = blk.ret
		case "inherits":
			blk.inherits = value
		}
	}

	for _, a := range blk.args {
		if a.desc != nil {
			a.required = strings.Contains(*a.desc, requiredMarker)
		}
	}
	return blk
}

func (d *Doc) check() error {
	for _, name := range d.Order {
		a := d.Arguments[name]
		if a.Type == "" {
			return &ParseError{Argument: name, Err: ErrMissingType}
		}
		if a.Description == "" {
			return &ParseError{Argument: name, Err: ErrMissingDescription}
		}
	}
	if d.Return.Type == "" {
		return &ParseError{Err: ErrMissingReturn}
	}
	return nil
}

// trimWrapper removes an L{...} or C{...} link wrapper.
func trimWrapper(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 3 && s[1] == '{' && strings.HasSuffix(s, "}") {
		return strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

func splitRef(ref string) (typeName, method string, ok bool) {
	i := strings.LastIndex(ref, ".")
	if i <= 0 || i == len(ref)-1 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}
