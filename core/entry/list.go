package entry

import (
	"context"
	"fmt"
	"reflect"
)

// List is an entry for a homogeneous JSON array.
type List struct {
	base
	elem Entry
}

// Element returns the element entry.
func (l *List) Element() Entry {
	return l.elem
}

// elementDocument builds the document an element is validated against:
// the element under the list name, plus its own keys when it is an object.
func (l *List) elementDocument(elem any) Document {
	doc := Document{l.spec.Name: elem}
	if m, ok := elem.(map[string]any); ok {
		for k, v := range m {
			doc[k] = v
		}
	}
	return doc
}

func (l *List) items(doc Document) ([]any, bool, error) {
	v, ok := doc.lookup(l.spec.Name)
	if !ok {
		return nil, false, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, true, &ValidationError{Name: l.spec.Name, Tag: l.tag, Value: v}
	}
	return items, true, nil
}

func (l *List) Validate(doc Document) error {
	items, present, err := l.items(doc)
	if err != nil {
		return err
	}
	if !present {
		if l.spec.HasDefault {
			return nil
		}
		return l.absent()
	}
	for _, item := range items {
		if err := l.elem.Validate(l.elementDocument(item)); err != nil {
			return err
		}
	}
	return nil
}

func (l *List) FromWire(ctx context.Context, doc Document, driver any) (any, error) {
	items, present, err := l.items(doc)
	if err != nil {
		return nil, err
	}
	if !present {
		return l.spec.Default, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		v, err := l.elem.FromWire(ctx, l.elementDocument(item), driver)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (l *List) ToWire(native any) (any, error) {
	v := reflect.ValueOf(native)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, &RepresentationError{Tag: l.tag, Reason: fmt.Sprintf("expected a sequence, got %T", native)}
	}
	out := make([]any, v.Len())
	for i := range out {
		w, err := l.elem.ToWire(v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func (l *List) Arguments() []Argument {
	return []Argument{l.argument(l.tag)}
}
