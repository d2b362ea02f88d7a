// Package condition implements the Condition algebra: a closed,
// serializable, composable sum of boolean predicates over a record type
// (spec §3, §4.3). Each variant is a distinct Go type implementing
// Condition; dispatch for Apply is a type switch, not virtual methods,
// so backends can consume these values as plain data (spec §9).
package condition

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/oxhq/queryalgebra/dberr"
	"github.com/oxhq/queryalgebra/descriptor"
	"github.com/oxhq/queryalgebra/internal/rx"
)

// Condition is the sum type every variant below implements. Tag
// returns the wire variant name used by the canonical codec (spec
// §4.5); it is never exposed to backends as a dispatch mechanism, only
// as a label for the codec.
type Condition interface {
	Tag() string
	// Apply is the in-process, backend-neutral evaluation semantics
	// from spec §4.3. It is deterministic, side-effect-free and total
	// on a well-formed record.
	Apply(on any) (bool, error)
}

// --- constants and boolean combinators -------------------------------------

type Never struct{}

func (Never) Tag() string            { return "Never" }
func (Never) Apply(any) (bool, error) { return false, nil }

type Always struct{}

func (Always) Tag() string            { return "Always" }
func (Always) Apply(any) (bool, error) { return true, nil }

type And struct{ Conditions []Condition }

func (And) Tag() string { return "And" }
func (a And) Apply(on any) (bool, error) {
	for _, c := range a.Conditions {
		ok, err := c.Apply(on)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

type Or struct{ Conditions []Condition }

func (Or) Tag() string { return "Or" }
func (o Or) Apply(on any) (bool, error) {
	for _, c := range o.Conditions {
		ok, err := c.Apply(on)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

type Not struct{ Condition Condition }

func (Not) Tag() string { return "Not" }
func (n Not) Apply(on any) (bool, error) {
	ok, err := n.Condition.Apply(on)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// --- equality / membership / ordering --------------------------------------

type Equal struct{ Value any }

func (Equal) Tag() string { return "Equal" }
func (e Equal) Apply(on any) (bool, error) { return rx.DeepEqual(on, e.Value), nil }

type NotEqual struct{ Value any }

func (NotEqual) Tag() string { return "NotEqual" }
func (e NotEqual) Apply(on any) (bool, error) { return !rx.DeepEqual(on, e.Value), nil }

type Inside struct{ Values []any }

func (Inside) Tag() string { return "Inside" }
func (i Inside) Apply(on any) (bool, error) {
	for _, v := range i.Values {
		if rx.DeepEqual(on, v) {
			return true, nil
		}
	}
	return false, nil
}

type NotInside struct{ Values []any }

func (NotInside) Tag() string { return "NotInside" }
func (i NotInside) Apply(on any) (bool, error) {
	ok, err := Inside(i).Apply(on)
	return !ok, err
}

type GreaterThan struct{ Value any }

func (GreaterThan) Tag() string { return "GreaterThan" }
func (g GreaterThan) Apply(on any) (bool, error) { return compareOk(on, g.Value, func(c int) bool { return c > 0 }) }

type LessThan struct{ Value any }

func (LessThan) Tag() string { return "LessThan" }
func (g LessThan) Apply(on any) (bool, error) { return compareOk(on, g.Value, func(c int) bool { return c < 0 }) }

type GTE struct{ Value any }

func (GTE) Tag() string { return "GreaterThanOrEqual" }
func (g GTE) Apply(on any) (bool, error) { return compareOk(on, g.Value, func(c int) bool { return c >= 0 }) }

type LTE struct{ Value any }

func (LTE) Tag() string { return "LessThanOrEqual" }
func (g LTE) Apply(on any) (bool, error) { return compareOk(on, g.Value, func(c int) bool { return c <= 0 }) }

func compareOk(on, value any, pred func(int) bool) (bool, error) {
	c, ok := rx.Compare(on, value)
	if !ok {
		return false, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("%T is not ordered against %T", on, value))
	}
	return pred(c), nil
}

// --- strings ----------------------------------------------------------------

type StringContains struct {
	Value      string
	IgnoreCase bool
}

func (StringContains) Tag() string { return "StringContains" }
func (s StringContains) Apply(on any) (bool, error) {
	str, ok := on.(string)
	if !ok {
		return false, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("StringContains requires a string, got %T", on))
	}
	return containsCase(str, s.Value, s.IgnoreCase), nil
}

// RawStringContains applies substring matching to the underlying string
// of a single-field inline wrapper (spec §3 "raw-string wrapper").
type RawStringContains struct {
	Value      string
	IgnoreCase bool
}

func (RawStringContains) Tag() string { return "RawStringContains" }
func (s RawStringContains) Apply(on any) (bool, error) {
	str, err := underlyingString(on)
	if err != nil {
		return false, err
	}
	return containsCase(str, s.Value, s.IgnoreCase), nil
}

func containsCase(haystack, needle string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}
	return strings.Contains(haystack, needle)
}

// underlyingString extracts the single string field from a raw-string
// wrapper, or accepts a bare string directly.
func underlyingString(on any) (string, error) {
	if s, ok := on.(string); ok {
		return s, nil
	}
	if w, ok := on.(interface{ RawString() string }); ok {
		return w.RawString(), nil
	}
	return "", dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("%T does not carry a raw string", on))
}

type RegexMatches struct {
	Pattern    string
	IgnoreCase bool
}

func (RegexMatches) Tag() string { return "RegexMatches" }
func (r RegexMatches) Apply(on any) (bool, error) {
	str, ok := on.(string)
	if !ok {
		return false, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("RegexMatches requires a string, got %T", on))
	}
	pattern := r.Pattern
	if r.IgnoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return false, dberr.Wrap(dberr.IncompatibleRecord, "", "invalid regex pattern", err)
	}
	return re.MatchString(str), nil
}

// --- bitwise (32-bit) --------------------------------------------------------

type IntBitsClear struct{ Mask uint32 }

func (IntBitsClear) Tag() string { return "IntBitsClear" }
func (b IntBitsClear) Apply(on any) (bool, error) {
	v, err := asUint32(on)
	if err != nil {
		return false, err
	}
	return v&b.Mask == 0, nil
}

type IntBitsSet struct{ Mask uint32 }

func (IntBitsSet) Tag() string { return "IntBitsSet" }
func (b IntBitsSet) Apply(on any) (bool, error) {
	v, err := asUint32(on)
	if err != nil {
		return false, err
	}
	return v&b.Mask == b.Mask, nil
}

type IntBitsAnyClear struct{ Mask uint32 }

func (IntBitsAnyClear) Tag() string { return "IntBitsAnyClear" }
func (b IntBitsAnyClear) Apply(on any) (bool, error) {
	v, err := asUint32(on)
	if err != nil {
		return false, err
	}
	return v&b.Mask != b.Mask, nil
}

type IntBitsAnySet struct{ Mask uint32 }

func (IntBitsAnySet) Tag() string { return "IntBitsAnySet" }
func (b IntBitsAnySet) Apply(on any) (bool, error) {
	v, err := asUint32(on)
	if err != nil {
		return false, err
	}
	return v&b.Mask != 0, nil
}

func asUint32(on any) (uint32, error) {
	switch v := on.(type) {
	case uint32:
		return v, nil
	case int32:
		return uint32(v), nil
	case int:
		return uint32(v), nil
	case int64:
		return uint32(v), nil
	default:
		return 0, dberr.New(dberr.IncompatibleRecord, "", fmt.Sprintf("bitwise condition requires a 32-bit int, got %T", on))
	}
}

// --- collections --------------------------------------------------------------

type ListAllElements struct{ Condition Condition }

func (ListAllElements) Tag() string { return "ListAllElements" }
func (l ListAllElements) Apply(on any) (bool, error) {
	elems, _ := rx.AsSlice(on)
	for _, e := range elems {
		ok, err := l.Condition.Apply(e)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil // vacuously true on empty, per spec §8
}

type ListAnyElements struct{ Condition Condition }

func (ListAnyElements) Tag() string { return "ListAnyElements" }
func (l ListAnyElements) Apply(on any) (bool, error) {
	elems, _ := rx.AsSlice(on)
	for _, e := range elems {
		ok, err := l.Condition.Apply(e)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

type SetAllElements struct{ Condition Condition }

func (SetAllElements) Tag() string             { return "SetAllElements" }
func (l SetAllElements) Apply(on any) (bool, error) { return ListAllElements(l).Apply(on) }

type SetAnyElements struct{ Condition Condition }

func (SetAnyElements) Tag() string             { return "SetAnyElements" }
func (l SetAnyElements) Apply(on any) (bool, error) { return ListAnyElements(l).Apply(on) }

// ListSizesEquals and SetSizesEquals are deprecated exact-size checks,
// kept for wire compatibility only (spec §3).
type ListSizesEquals struct{ Size int }

func (ListSizesEquals) Tag() string { return "ListSizesEquals" }
func (l ListSizesEquals) Apply(on any) (bool, error) {
	elems, _ := rx.AsSlice(on)
	return len(elems) == l.Size, nil
}

type SetSizesEquals struct{ Size int }

func (SetSizesEquals) Tag() string { return "SetSizesEquals" }
func (l SetSizesEquals) Apply(on any) (bool, error) {
	elems, _ := rx.AsSlice(on)
	return len(elems) == l.Size, nil
}

// --- maps -----------------------------------------------------------------

type Exists struct{ Key string }

func (Exists) Tag() string { return "Exists" }
func (e Exists) Apply(on any) (bool, error) {
	m, ok := rx.AsStringMap(on)
	if !ok {
		return false, dberr.New(dberr.IncompatibleRecord, e.Key, fmt.Sprintf("Exists requires a string-keyed map, got %T", on))
	}
	_, present := m[e.Key]
	return present, nil
}

// OnKey holds iff the map has Key AND Condition holds on its value
// (spec §4.3 — note this is false on a missing key, not vacuous).
type OnKey struct {
	Key       string
	Condition Condition
}

func (OnKey) Tag() string { return "OnKey" }
func (o OnKey) Apply(on any) (bool, error) {
	m, ok := rx.AsStringMap(on)
	if !ok {
		return false, dberr.New(dberr.IncompatibleRecord, o.Key, fmt.Sprintf("OnKey requires a string-keyed map, got %T", on))
	}
	v, present := m[o.Key]
	if !present {
		return false, nil
	}
	return o.Condition.Apply(v)
}

// --- struct field projection ------------------------------------------------

// OnField narrows to a struct field and applies Condition to it. On the
// wire this is projected by field name rather than a generic wrapper
// (spec §4.5/§6); in Go it stays a typed variant so Apply can dispatch
// without a registry lookup.
type OnField struct {
	Property  *descriptor.Property
	Condition Condition
}

func (OnField) Tag() string { return "OnField" }
func (f OnField) Apply(on any) (bool, error) {
	v, err := f.Property.Get(on)
	if err != nil {
		return false, err
	}
	return f.Condition.Apply(v)
}

// IfNotNull holds iff on is non-nil and Condition holds on it.
type IfNotNull struct{ Condition Condition }

func (IfNotNull) Tag() string { return "IfNotNull" }
func (n IfNotNull) Apply(on any) (bool, error) {
	if isNil(on) {
		return false, nil
	}
	return n.Condition.Apply(on)
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
