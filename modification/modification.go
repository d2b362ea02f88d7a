// Package modification implements the Modification algebra: a closed,
// serializable, composable sum of total transformations T -> T (spec
// §3, §4.4). Like condition.Condition, dispatch is a type switch over
// concrete variant types, not virtual methods (spec §9).
package modification

import (
	"fmt"
	"reflect"

	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/dberr"
	"github.com/oxhq/queryalgebra/descriptor"
	"github.com/oxhq/queryalgebra/internal/rx"
)

// Modification is the sum type every variant implements.
type Modification interface {
	Tag() string
	// Apply is the pure, total transformation from spec §4.4.
	Apply(on any) (any, error)
}

type Nothing struct{}

func (Nothing) Tag() string              { return "Nothing" }
func (Nothing) Apply(on any) (any, error) { return on, nil }

type Chain struct{ Modifications []Modification }

func (Chain) Tag() string { return "Chain" }
func (c Chain) Apply(on any) (any, error) {
	cur := on
	for _, m := range c.Modifications {
		next, err := m.Apply(cur)
		if err != nil {
			return on, err
		}
		cur = next
	}
	return cur, nil
}

type Assign struct{ Value any }

func (Assign) Tag() string              { return "Assign" }
func (a Assign) Apply(any) (any, error) { return a.Value, nil }

// IfNotNull applies Modification only when on is non-nil.
type IfNotNull struct{ Modification Modification }

func (IfNotNull) Tag() string { return "IfNotNull" }
func (n IfNotNull) Apply(on any) (any, error) {
	if isNil(on) {
		return on, nil
	}
	return n.Modification.Apply(on)
}

// isNil reports whether on is nil, including a typed nil pointer/map/
// slice/chan/func boxed in the any interface.
func isNil(on any) bool {
	if on == nil {
		return true
	}
	rv := reflect.ValueOf(on)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

type CoerceAtMost struct{ Value any }

func (CoerceAtMost) Tag() string { return "CoerceAtMost" }
func (c CoerceAtMost) Apply(on any) (any, error) {
	cmp, ok := rx.Compare(on, c.Value)
	if !ok {
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("CoerceAtMost: %T not ordered against %T", on, c.Value))
	}
	if cmp > 0 {
		return c.Value, nil
	}
	return on, nil
}

type CoerceAtLeast struct{ Value any }

func (CoerceAtLeast) Tag() string { return "CoerceAtLeast" }
func (c CoerceAtLeast) Apply(on any) (any, error) {
	cmp, ok := rx.Compare(on, c.Value)
	if !ok {
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("CoerceAtLeast: %T not ordered against %T", on, c.Value))
	}
	if cmp < 0 {
		return c.Value, nil
	}
	return on, nil
}

// Increment adds a numeric delta, following two's-complement wrapping
// for fixed-width signed integers and IEEE-754 semantics for floats
// (spec §4.4).
type Increment struct{ Delta any }

func (Increment) Tag() string { return "Increment" }
func (i Increment) Apply(on any) (any, error) { return numericOp(on, i.Delta, opAdd) }

type Multiply struct{ Factor any }

func (Multiply) Tag() string { return "Multiply" }
func (m Multiply) Apply(on any) (any, error) { return numericOp(on, m.Factor, opMul) }

type numOp int

const (
	opAdd numOp = iota
	opMul
)

func numericOp(on, operand any, op numOp) (any, error) {
	switch v := on.(type) {
	case int:
		o, err := toInt(operand)
		if err != nil {
			return on, err
		}
		if op == opAdd {
			return v + o, nil
		}
		return v * o, nil
	case int32:
		o, err := toInt(operand)
		if err != nil {
			return on, err
		}
		if op == opAdd {
			return v + int32(o), nil
		}
		return v * int32(o), nil
	case int64:
		o, err := toInt(operand)
		if err != nil {
			return on, err
		}
		if op == opAdd {
			return v + int64(o), nil
		}
		return v * int64(o), nil
	case float32:
		o, err := toFloat(operand)
		if err != nil {
			return on, err
		}
		if op == opAdd {
			return v + float32(o), nil
		}
		return v * float32(o), nil
	case float64:
		o, err := toFloat(operand)
		if err != nil {
			return on, err
		}
		if op == opAdd {
			return v + o, nil
		}
		return v * o, nil
	default:
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("numeric modification requires a numeric leaf, got %T", on))
	}
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	default:
		return 0, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("expected an int operand, got %T", v))
	}
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float32:
		return float64(t), nil
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	default:
		return 0, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("expected a float operand, got %T", v))
	}
}

// --- strings -----------------------------------------------------------------

type AppendString struct{ Value string }

func (AppendString) Tag() string { return "AppendString" }
func (a AppendString) Apply(on any) (any, error) {
	s, ok := on.(string)
	if !ok {
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("AppendString requires a string, got %T", on))
	}
	return s + a.Value, nil
}

// AppendRawString appends to the underlying string of a single-field
// wrapper, returning a value of the same wrapper type.
type AppendRawString struct {
	Value string
	Wrap  func(string) any
}

func (AppendRawString) Tag() string { return "AppendRawString" }
func (a AppendRawString) Apply(on any) (any, error) {
	s, err := underlyingString(on)
	if err != nil {
		return on, err
	}
	if a.Wrap == nil {
		return s + a.Value, nil
	}
	return a.Wrap(s + a.Value), nil
}

func underlyingString(on any) (string, error) {
	if s, ok := on.(string); ok {
		return s, nil
	}
	if w, ok := on.(interface{ RawString() string }); ok {
		return w.RawString(), nil
	}
	return "", dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("%T does not carry a raw string", on))
}

// --- list / set --------------------------------------------------------------

type ListAppend struct{ Items []any }

func (ListAppend) Tag() string { return "ListAppend" }
func (l ListAppend) Apply(on any) (any, error) {
	elems, ok := rx.AsSlice(on)
	if !ok {
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("ListAppend requires a list, got %T", on))
	}
	return rx.SliceOfSameType(on, append(append([]any{}, elems...), l.Items...)), nil
}

// SetAppend unions Items into the set, skipping values already present.
type SetAppend struct{ Items []any }

func (SetAppend) Tag() string { return "SetAppend" }
func (s SetAppend) Apply(on any) (any, error) {
	elems, ok := rx.AsSlice(on)
	if !ok {
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("SetAppend requires a set, got %T", on))
	}
	out := append([]any{}, elems...)
	for _, item := range s.Items {
		if !containsDeep(out, item) {
			out = append(out, item)
		}
	}
	return rx.SliceOfSameType(on, out), nil
}

func containsDeep(haystack []any, v any) bool {
	for _, h := range haystack {
		if rx.DeepEqual(h, v) {
			return true
		}
	}
	return false
}

type ListRemove struct{ Condition condition.Condition }

func (ListRemove) Tag() string { return "ListRemove" }
func (l ListRemove) Apply(on any) (any, error) { return filterSlice(on, l.Condition, false) }

type SetRemove struct{ Condition condition.Condition }

func (SetRemove) Tag() string { return "SetRemove" }
func (l SetRemove) Apply(on any) (any, error) { return filterSlice(on, l.Condition, false) }

func filterSlice(on any, cond condition.Condition, keepIfMatch bool) (any, error) {
	elems, ok := rx.AsSlice(on)
	if !ok {
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("expected a list/set, got %T", on))
	}
	var out []any
	for _, e := range elems {
		matched, err := cond.Apply(e)
		if err != nil {
			return on, err
		}
		if matched == keepIfMatch {
			out = append(out, e)
		}
	}
	return rx.SliceOfSameType(on, out), nil
}

type ListRemoveInstances struct{ Items []any }

func (ListRemoveInstances) Tag() string { return "ListRemoveInstances" }
func (l ListRemoveInstances) Apply(on any) (any, error) { return removeInstances(on, l.Items) }

type SetRemoveInstances struct{ Items []any }

func (SetRemoveInstances) Tag() string { return "SetRemoveInstances" }
func (l SetRemoveInstances) Apply(on any) (any, error) { return removeInstances(on, l.Items) }

func removeInstances(on any, items []any) (any, error) {
	elems, ok := rx.AsSlice(on)
	if !ok {
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("expected a list/set, got %T", on))
	}
	var out []any
	for _, e := range elems {
		if !containsDeep(items, e) {
			out = append(out, e)
		}
	}
	return rx.SliceOfSameType(on, out), nil
}

type ListDropFirst struct{}

func (ListDropFirst) Tag() string { return "ListDropFirst" }
func (ListDropFirst) Apply(on any) (any, error) { return dropEnd(on, true) }

type ListDropLast struct{}

func (ListDropLast) Tag() string { return "ListDropLast" }
func (ListDropLast) Apply(on any) (any, error) { return dropEnd(on, false) }

type SetDropFirst struct{}

func (SetDropFirst) Tag() string { return "SetDropFirst" }
func (SetDropFirst) Apply(on any) (any, error) { return dropEnd(on, true) }

type SetDropLast struct{}

func (SetDropLast) Tag() string { return "SetDropLast" }
func (SetDropLast) Apply(on any) (any, error) { return dropEnd(on, false) }

func dropEnd(on any, first bool) (any, error) {
	elems, ok := rx.AsSlice(on)
	if !ok {
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("expected a list/set, got %T", on))
	}
	if len(elems) == 0 {
		return on, nil
	}
	var out []any
	if first {
		out = elems[1:]
	} else {
		out = elems[:len(elems)-1]
	}
	return rx.SliceOfSameType(on, out), nil
}

// ListPerElement conditionally maps elements in place: Modification is
// applied where Condition holds, otherwise the element is kept as-is.
type ListPerElement struct {
	Condition    condition.Condition
	Modification Modification
}

func (ListPerElement) Tag() string { return "ListPerElement" }
func (l ListPerElement) Apply(on any) (any, error) { return perElement(on, l.Condition, l.Modification) }

type SetPerElement struct {
	Condition    condition.Condition
	Modification Modification
}

func (SetPerElement) Tag() string { return "SetPerElement" }
func (s SetPerElement) Apply(on any) (any, error) { return perElement(on, s.Condition, s.Modification) }

func perElement(on any, cond condition.Condition, mod Modification) (any, error) {
	elems, ok := rx.AsSlice(on)
	if !ok {
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("expected a list/set, got %T", on))
	}
	out := make([]any, len(elems))
	for i, e := range elems {
		matched, err := cond.Apply(e)
		if err != nil {
			return on, err
		}
		if !matched {
			out[i] = e
			continue
		}
		nv, err := mod.Apply(e)
		if err != nil {
			return on, err
		}
		out[i] = nv
	}
	return rx.SliceOfSameType(on, out), nil
}

// --- maps -----------------------------------------------------------------

type Combine struct{ Values map[string]any }

func (Combine) Tag() string { return "Combine" }
func (c Combine) Apply(on any) (any, error) {
	m, ok := rx.AsStringMap(on)
	if !ok {
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("Combine requires a string-keyed map, got %T", on))
	}
	out := make(map[string]any, len(m)+len(c.Values))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range c.Values {
		out[k] = v
	}
	return rx.MapOfSameType(on, out), nil
}

// ModifyByKey requires every key to already exist in the map (spec
// §4.4); missing keys fail fast with dberr.MissingKey.
type ModifyByKey struct{ ByKey map[string]Modification }

func (ModifyByKey) Tag() string { return "ModifyByKey" }
func (m ModifyByKey) Apply(on any) (any, error) {
	src, ok := rx.AsStringMap(on)
	if !ok {
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("ModifyByKey requires a string-keyed map, got %T", on))
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	for k, sub := range m.ByKey {
		v, present := src[k]
		if !present {
			return on, dberr.New(dberr.MissingKey, k, "ModifyByKey referenced a key absent from the map")
		}
		nv, err := sub.Apply(v)
		if err != nil {
			return on, err
		}
		out[k] = nv
	}
	return rx.MapOfSameType(on, out), nil
}

// RemoveKeys removes every present key; absent keys are ignored.
type RemoveKeys struct{ Keys []string }

func (RemoveKeys) Tag() string { return "RemoveKeys" }
func (r RemoveKeys) Apply(on any) (any, error) {
	src, ok := rx.AsStringMap(on)
	if !ok {
		return on, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("RemoveKeys requires a string-keyed map, got %T", on))
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	for _, k := range r.Keys {
		delete(out, k)
	}
	return rx.MapOfSameType(on, out), nil
}

// --- struct field projection -------------------------------------------------

// OnField applies Modification to a field and returns a functional copy
// with the new value, per spec's p.set(x, m(p.get(x))).
type OnField struct {
	Property     *descriptor.Property
	Modification Modification
}

func (OnField) Tag() string { return "OnField" }
func (f OnField) Apply(on any) (any, error) {
	v, err := f.Property.Get(on)
	if err != nil {
		return on, err
	}
	nv, err := f.Modification.Apply(v)
	if err != nil {
		return on, err
	}
	return f.Property.Set(on, nv)
}

// IsNothing reports whether m is Nothing, or a Chain made up entirely
// of Nothing (spec §4.4).
func IsNothing(m Modification) bool {
	switch v := m.(type) {
	case Nothing:
		return true
	case Chain:
		for _, sub := range v.Modifications {
			if !IsNothing(sub) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
