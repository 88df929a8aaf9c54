package entry

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

const (
	unionSeparator = " or "
	// ListContainer is the container keyword registered by New.
	ListContainer = "list"
)

type scalarKind struct {
	tag   string
	check Predicate
}

// Registry maps type tags to entries. It is populated once at startup and
// frozen before it serves requests.
type Registry struct {
	mu sync.RWMutex

	scalars    map[string]scalarKind
	objects    map[string]*objectType
	containers map[string]bool
	frozen     bool
}

// New creates a registry holding the builtin scalar keywords and the list
// container.
func New() *Registry {
	r := &Registry{
		scalars:    make(map[string]scalarKind),
		objects:    make(map[string]*objectType),
		containers: make(map[string]bool),
	}
	builtins := []struct {
		keywords []string
		tag      string
		check    Predicate
	}{
		{[]string{"string", "str", "unicode"}, TagString, isString},
		{[]string{"integer", "int", "long"}, TagInteger, isInteger},
		{[]string{"float"}, TagFloat, isFloat},
		{[]string{"boolean", "bool"}, TagBoolean, isBoolean},
		{[]string{"mapping", "dict"}, TagMapping, isMapping},
		{[]string{"none", "None"}, TagNone, isNone},
	}
	for _, b := range builtins {
		for _, kw := range b.keywords {
			r.scalars[kw] = scalarKind{tag: b.tag, check: b.check}
		}
	}
	r.containers[ListContainer] = true
	return r
}

// RegisterScalar adds a scalar keyword resolving to the canonical tag.
func (r *Registry) RegisterScalar(keyword, tag string, check Predicate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	if r.taken(keyword) {
		return fmt.Errorf("%w: %s", ErrDuplicateTag, keyword)
	}
	r.scalars[keyword] = scalarKind{tag: tag, check: check}
	return nil
}

// RegisterObject adds an object reference type.
func (r *Registry) RegisterObject(t ObjectType) error {
	ot, err := compileObjectType(t)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	if r.taken(t.Name) {
		return fmt.Errorf("%w: %s", ErrDuplicateTag, t.Name)
	}
	r.objects[t.Name] = ot
	return nil
}

// MustRegisterObject is RegisterObject that panics on error, for startup code.
func (r *Registry) MustRegisterObject(types ...ObjectType) {
	for _, t := range types {
		if err := r.RegisterObject(t); err != nil {
			panic(err)
		}
	}
}

// RegisterContainer adds a container keyword usable as "<keyword> of <tag>".
func (r *Registry) RegisterContainer(keyword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	if r.containers[keyword] {
		return fmt.Errorf("%w: %s", ErrDuplicateTag, keyword)
	}
	r.containers[keyword] = true
	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Objects returns the registered object type names, sorted.
func (r *Registry) Objects() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.objects))
	for name := range r.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) taken(name string) bool {
	_, scalar := r.scalars[name]
	_, object := r.objects[name]
	return scalar || object
}

// Resolve builds the entry for tag and the argument described by spec.
func (r *Registry) Resolve(tag string, spec Spec) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolve(Normalize(tag), spec)
}

func (r *Registry) resolve(tag string, spec Spec) (Entry, error) {
	if sk, ok := r.scalars[tag]; ok {
		return NewScalar(sk.tag, sk.check, spec), nil
	}

	if ot, ok := r.objects[tag]; ok {
		obj := &Object{base: newBase(spec, ot.Name), typ: ot}
		for _, f := range ot.Fields {
			fe, err := r.resolve(Normalize(f.Tag), Spec{
				Name:        f.Name,
				Description: f.Description,
				Required:    f.Required,
				Default:     f.Default,
				HasDefault:  f.HasDefault,
			})
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", ot.Name, f.Name, err)
			}
			obj.fields = append(obj.fields, fe)
		}
		return obj, nil
	}

	if strings.Contains(tag, unionSeparator) {
		parts := strings.Split(tag, unionSeparator)
		u := &Union{}
		canonical := make([]string, 0, len(parts))
		for _, part := range parts {
			alt, err := r.resolve(strings.TrimSpace(part), alternativeSpec(spec))
			if err != nil {
				return nil, err
			}
			u.alts = append(u.alts, alt)
			canonical = append(canonical, alt.Tag())
		}
		u.base = newBase(spec, strings.Join(canonical, unionSeparator))
		return u, nil
	}

	if m := containerPattern.FindStringSubmatch(tag); m != nil && r.containers[m[1]] {
		elem, err := r.resolve(strings.TrimSpace(m[2]), alternativeSpec(spec))
		if err != nil {
			return nil, err
		}
		return &List{base: newBase(spec, m[1]+" of "+elem.Tag()), elem: elem}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnresolvedTag, tag)
}

// alternativeSpec is the spec of a union alternative or list element: it
// carries the enclosing name and must be supplied in full to match.
func alternativeSpec(spec Spec) Spec {
	return Spec{Name: spec.Name, Description: spec.Description, Required: true}
}

var (
	containerPattern = regexp.MustCompile(`^(\w+)\s+of\s+(.+)$`)
	wrapperPattern   = regexp.MustCompile(`[A-Z]\{([^{}]*)\}`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// Normalize strips documentation link wrappers such as C{str} and L{Node}
// and collapses whitespace.
func Normalize(tag string) string {
	tag = wrapperPattern.ReplaceAllString(tag, "$1")
	tag = spacePattern.ReplaceAllString(strings.TrimSpace(tag), " ")
	return tag
}
