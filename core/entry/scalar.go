package entry

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"reflect"
)

// Canonical scalar tags.
const (
	TagString  = "string"
	TagInteger = "integer"
	TagFloat   = "float"
	TagBoolean = "boolean"
	TagMapping = "mapping"
	TagNone    = "none"
)

// Predicate reports whether a decoded JSON value belongs to a scalar kind.
type Predicate func(v any) bool

// Scalar is an entry for a JSON scalar or mapping.
type Scalar struct {
	base
	check Predicate
}

// NewScalar creates a scalar entry for the canonical tag.
func NewScalar(tag string, check Predicate, spec Spec) *Scalar {
	return &Scalar{base: newBase(spec, tag), check: check}
}

func (s *Scalar) Validate(doc Document) error {
	v, ok := doc.lookup(s.spec.Name)
	if s.tag == TagNone {
		if ok {
			return &ValidationError{Name: s.spec.Name, Tag: s.tag, Value: v}
		}
		return nil
	}
	if !ok {
		if s.spec.HasDefault {
			return nil
		}
		return s.absent()
	}
	if !s.check(v) {
		return &ValidationError{Name: s.spec.Name, Tag: s.tag, Value: v}
	}
	return nil
}

func (s *Scalar) FromWire(_ context.Context, doc Document, _ any) (any, error) {
	v, ok := doc.lookup(s.spec.Name)
	if !ok {
		return s.spec.Default, nil
	}
	switch s.tag {
	case TagInteger:
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	case TagFloat:
		if f, ok := toFloat64(v); ok {
			return f, nil
		}
	}
	return v, nil
}

// ToWire returns native unchanged once its JSON form passes the predicate.
func (s *Scalar) ToWire(native any) (any, error) {
	data, err := json.Marshal(native)
	if err != nil {
		return nil, &RepresentationError{Tag: s.tag, Reason: err.Error()}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, &RepresentationError{Tag: s.tag, Reason: err.Error()}
	}
	if err := s.Validate(Document{s.spec.Name: decoded}); err != nil {
		if s.tag == TagNone || decoded != nil {
			return nil, &RepresentationError{Tag: s.tag, Reason: err.Error()}
		}
	}
	return native, nil
}

func (s *Scalar) Arguments() []Argument {
	return []Argument{s.argument(s.tag)}
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isBoolean(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isMapping(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func isNone(v any) bool {
	return v == nil
}

func isInteger(v any) bool {
	_, ok := toInt64(v)
	return ok
}

func isFloat(v any) bool {
	_, ok := toFloat64(v)
	return ok
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != math.Trunc(n) || n < -(1<<63) || n >= 1<<63 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return toInt64(float64(n))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return 0, false
		}
		return int64(rv.Uint()), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
