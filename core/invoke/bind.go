package invoke

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// bindValue converts a value produced by an entry into t. Native values are
// used as they are; decoded JSON values are converted the way json.Unmarshal
// would fill t.
func bindValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	}
	if t.Kind() == reflect.Pointer && rv.Type().AssignableTo(t.Elem()) {
		out := reflect.New(t.Elem())
		out.Elem().Set(rv)
		return out, nil
	}
	if sameClass(rv.Kind(), t.Kind()) && rv.Type().ConvertibleTo(t) {
		if !fits(rv, t) {
			return reflect.Value{}, fmt.Errorf("%v does not fit in %s", v, t)
		}
		return rv.Convert(t), nil
	}
	if items, ok := v.([]any); ok && t.Kind() == reflect.Slice {
		out := reflect.MakeSlice(t, len(items), len(items))
		for i, item := range items {
			ev, err := bindValue(item, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(t)
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(out.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return out.Elem(), nil
}

// fits reports whether the number rv converts to t without overflow or,
// for floats converted to integers, without dropping a fraction.
func fits(rv reflect.Value, t reflect.Type) bool {
	target := reflect.Zero(t)
	switch {
	case rv.CanInt():
		n := rv.Int()
		switch {
		case target.CanInt():
			return !target.OverflowInt(n)
		case target.CanUint():
			return n >= 0 && !target.OverflowUint(uint64(n))
		}
	case rv.CanUint():
		n := rv.Uint()
		switch {
		case target.CanInt():
			return n <= math.MaxInt64 && !target.OverflowInt(int64(n))
		case target.CanUint():
			return !target.OverflowUint(n)
		}
	case rv.CanFloat():
		f := rv.Float()
		switch {
		case target.CanInt():
			return f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63 && !target.OverflowInt(int64(f))
		case target.CanUint():
			return f == math.Trunc(f) && f >= 0 && f < 1<<64 && !target.OverflowUint(uint64(f))
		case target.CanFloat():
			return !target.OverflowFloat(f)
		}
	}
	return true
}

type kindClass int

const (
	classOther kindClass = iota
	classInt
	classFloat
	classString
	classBool
)

func classOf(k reflect.Kind) kindClass {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return classInt
	case reflect.Float32, reflect.Float64:
		return classFloat
	case reflect.String:
		return classString
	case reflect.Bool:
		return classBool
	}
	return classOther
}

// sameClass limits reflect conversions to those that keep the value's
// meaning: numbers to numbers, strings to named string types.
func sameClass(from, to reflect.Kind) bool {
	a, b := classOf(from), classOf(to)
	if a == classOther || b == classOther {
		return false
	}
	if a == b {
		return true
	}
	return (a == classInt && b == classFloat) || (a == classFloat && b == classInt)
}
