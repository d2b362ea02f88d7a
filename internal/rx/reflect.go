// Package rx holds the small reflection helpers shared by path,
// condition and modification for walking lists, sets and maps without
// requiring every participating Go type to be []any/map[string]any.
package rx

import "reflect"

// AsSlice returns v's elements as []any if v is a slice or array,
// regardless of its concrete element type.
func AsSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// SliceOfSameType builds a new slice of v's element type from items,
// so the result can be assigned back into a strongly-typed field.
func SliceOfSameType(v any, items []any) any {
	rv := reflect.ValueOf(v)
	var elemType reflect.Type
	if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		elemType = rv.Type().Elem()
	} else {
		elemType = reflect.TypeOf((*any)(nil)).Elem()
	}
	out := reflect.MakeSlice(reflect.SliceOf(elemType), 0, len(items))
	for _, it := range items {
		iv := reflect.ValueOf(it)
		if !iv.IsValid() {
			iv = reflect.Zero(elemType)
		}
		out = reflect.Append(out, iv)
	}
	return out.Interface()
}

// AsStringMap returns v's entries as map[string]any if v is a
// string-keyed map of any value type.
func AsStringMap(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// MapOfSameType rebuilds a string-keyed map with v's original value
// type from a plain map[string]any.
func MapOfSameType(v any, items map[string]any) any {
	rv := reflect.ValueOf(v)
	var valType reflect.Type
	if rv.IsValid() && rv.Kind() == reflect.Map {
		valType = rv.Type().Elem()
	} else {
		valType = reflect.TypeOf((*any)(nil)).Elem()
	}
	out := reflect.MakeMapWithSize(reflect.MapOf(reflect.TypeOf(""), valType), len(items))
	for k, val := range items {
		vv := reflect.ValueOf(val)
		if !vv.IsValid() {
			vv = reflect.Zero(valType)
		}
		out.SetMapIndex(reflect.ValueOf(k), vv)
	}
	return out.Interface()
}

// DeepEqual is a thin re-export point so callers of this package don't
// need a second import for equality checks.
func DeepEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// Compare orders two comparable scalars. It supports every numeric
// kind plus strings, and returns 0 with ok=false when the values are
// not ordered relative to each other.
func Compare(a, b any) (cmp int, ok bool) {
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if !av.IsValid() || !bv.IsValid() {
		return 0, false
	}
	kindClass := func(k reflect.Kind) int {
		switch k {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return 1
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return 2
		case reflect.Float32, reflect.Float64:
			return 3
		case reflect.String:
			return 4
		default:
			return 0
		}
	}
	if kindClass(av.Kind()) != kindClass(bv.Kind()) {
		return 0, false
	}
	switch av.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		x, y := av.Int(), bv.Int()
		return sign(x, y), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		x, y := av.Uint(), bv.Uint()
		return sign(x, y), true
	case reflect.Float32, reflect.Float64:
		x, y := av.Float(), bv.Float()
		return sign(x, y), true
	case reflect.String:
		x, y := av.String(), bv.String()
		return sign(x, y), true
	default:
		return 0, false
	}
}

type ordered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~string
}

func sign[T ordered](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}
