// Package codec implements the canonical wire encoding for Condition,
// Modification and FieldPath values: a self-describing, single-key
// tagged object per spec §4.5/§6. Encoding never depends on a running
// registry process; decoding needs only the leaf Descriptor the value
// was built against, mirroring zoobzio/cereal's "ask the value, not a
// global table" encode path and cayley's descriptor-driven decode.
package codec

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/oxhq/queryalgebra/dberr"
	"github.com/oxhq/queryalgebra/descriptor"
)

// Wire is the JSON-compatible shape every encoded value takes: exactly
// one key naming the variant, whose value is either `true` (payload-less
// variant) or the variant's inner payload.
type Wire = map[string]any

// singleKey extracts the lone (tag, inner) pair from a decoded wire
// object, per spec §6: "decoders MUST reject zero or >=2 keys".
func singleKey(raw Wire) (string, any, error) {
	if len(raw) != 1 {
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", nil, dberr.New(dberr.SerializationError, "",
			fmt.Sprintf("tagged object must carry exactly one key, got %d: %v", len(raw), keys))
	}
	for k, v := range raw {
		return k, v, nil
	}
	panic("unreachable")
}

// asWire coerces a decoded inner payload into a Wire object, for
// variants whose inner value is itself another tagged object.
func asWire(tag string, v any) (Wire, error) {
	w, ok := v.(Wire)
	if ok {
		return w, nil
	}
	if m, ok := v.(map[string]any); ok {
		return Wire(m), nil
	}
	return nil, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("expected an object payload for %q, got %T", tag, v))
}

// asObject coerces an inner payload into a plain field map, for
// variants whose payload is a flat record of scalar fields rather than
// a nested tagged value.
func asObject(tag string, v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	return nil, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("expected a field object for %q, got %T", tag, v))
}

func fieldString(tag string, obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", dberr.New(dberr.SerializationError, tag, fmt.Sprintf("%q missing field %q", tag, key))
	}
	s, ok := v.(string)
	if !ok {
		return "", dberr.New(dberr.SerializationError, tag, fmt.Sprintf("%q.%q must be a string, got %T", tag, key, v))
	}
	return s, nil
}

func fieldBool(obj map[string]any, key string, def bool) bool {
	v, ok := obj[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func fieldInt(tag string, obj map[string]any, key string) (int, error) {
	v, ok := obj[key]
	if !ok {
		return 0, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("%q missing field %q", tag, key))
	}
	return toInt(v)
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	default:
		return 0, dberr.New(dberr.SerializationError, "", fmt.Sprintf("expected a number, got %T", v))
	}
}

func toUint32(v any) (uint32, error) {
	n, err := toInt(v)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func fieldAny(tag string, obj map[string]any, key string) (any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("%q missing field %q", tag, key))
	}
	return v, nil
}

func fieldAnySlice(tag string, obj map[string]any, key string) ([]any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("%q missing field %q", tag, key))
	}
	s, ok := v.([]any)
	if !ok {
		return nil, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("%q.%q must be an array, got %T", tag, key, v))
	}
	return s, nil
}

// resolveTag maps a legacy alias to its current canonical tag; a tag
// absent from the table is already canonical.
func resolveTag(aliases map[string]string, tag string) string {
	if canon, ok := aliases[tag]; ok {
		return canon
	}
	return tag
}

// elementLeaf returns a container descriptor's single parameter, the
// element/value type list/set/map variants recurse into.
func elementLeaf(d *descriptor.Descriptor) *descriptor.Descriptor {
	if len(d.Parameters) == 0 {
		return d
	}
	return d.Parameters[0]
}

// coerceScalar converts a decoded scalar back to leaf's Go type when it
// round-tripped through a numeric representation that lost precision or
// width (JSON decodes every number as float64; store persists via
// encoding/json). A literal whose type already matches, or whose leaf
// carries no concrete Go type (virtual descriptors), passes through
// unchanged.
func coerceScalar(leaf *descriptor.Descriptor, v any) any {
	if leaf == nil || v == nil {
		return v
	}
	gt := leaf.GoType()
	if gt == nil {
		return v
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == gt {
		return v
	}
	switch rv.Kind() {
	case reflect.Float64, reflect.Float32,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch gt.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return rv.Convert(gt).Interface()
		}
	}
	return v
}

// coerceScalarSlice applies coerceScalar to every element of a decoded
// array payload.
func coerceScalarSlice(leaf *descriptor.Descriptor, vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = coerceScalar(leaf, v)
	}
	return out
}
