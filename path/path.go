// Package path implements FieldPath: a composable, serializable typed
// lens from a root record into a leaf value, through nested records,
// nullability, lists and sets (spec §3, §4.2).
package path

import (
	"reflect"
	"strings"

	"github.com/oxhq/queryalgebra/dberr"
	"github.com/oxhq/queryalgebra/descriptor"
	"github.com/oxhq/queryalgebra/internal/rx"
)

type stepKind int

const (
	stepSelf stepKind = iota
	stepAccess
	stepNotNull
	stepListElements
	stepSetElements
)

type step struct {
	kind stepKind
	prop *descriptor.Property
}

// Path is one of Self, Access, NotNull, ListElements or SetElements,
// composed left to right from the root. Paths never own the records
// they traverse and are immutable once built.
type Path struct {
	root  *descriptor.Descriptor
	steps []step
	leaf  *descriptor.Descriptor
}

// Self builds the identity lens over root.
func Self(root *descriptor.Descriptor) *Path {
	return &Path{root: root, leaf: root}
}

// Access extends prev by a struct field. prop.Parent must equal prev's
// leaf descriptor.
func Access(prev *Path, prop *descriptor.Property) (*Path, error) {
	if !prev.leaf.Equal(prop.Parent) {
		return nil, dberr.New(dberr.IncompatibleRecord, prop.Name,
			"field's parent descriptor does not match path's leaf")
	}
	next := prev.clone()
	next.steps = append(next.steps, step{kind: stepAccess, prop: prop})
	next.leaf = prop.Serializer
	return next, nil
}

// NotNull narrows a nullable leaf. Constructing it over a non-nullable
// leaf is a construction-time error (spec §4.2).
func NotNull(prev *Path) (*Path, error) {
	if !prev.leaf.Nullable {
		return nil, dberr.New(dberr.IncompatibleRecord, prev.String(),
			"NotNull requires a nullable leaf")
	}
	next := prev.clone()
	next.steps = append(next.steps, step{kind: stepNotNull})
	next.leaf = prev.leaf.WithNullable(false)
	return next, nil
}

// ListElements navigates from a List<E> leaf into its element type E.
// Get through this step reads only the first element, and Set replaces
// the whole list with a singleton holding the new value (see Path.Set).
func ListElements(prev *Path) (*Path, error) {
	if prev.leaf.Container != descriptor.ListContainer {
		return nil, dberr.New(dberr.IncompatibleRecord, prev.String(), "ListElements requires a List leaf")
	}
	next := prev.clone()
	next.steps = append(next.steps, step{kind: stepListElements})
	next.leaf = prev.leaf.Parameters[0]
	return next, nil
}

// SetElements navigates from a Set<E> leaf into its element type E.
func SetElements(prev *Path) (*Path, error) {
	if prev.leaf.Container != descriptor.SetContainer {
		return nil, dberr.New(dberr.IncompatibleRecord, prev.String(), "SetElements requires a Set leaf")
	}
	next := prev.clone()
	next.steps = append(next.steps, step{kind: stepSetElements})
	next.leaf = prev.leaf.Parameters[0]
	return next, nil
}

func (p *Path) clone() *Path {
	cp := &Path{root: p.root, leaf: p.leaf}
	cp.steps = make([]step, len(p.steps))
	copy(cp.steps, p.steps)
	return cp
}

// Leaf returns the descriptor of the value this path resolves to.
func (p *Path) Leaf() *descriptor.Descriptor { return p.leaf }

// Root returns the descriptor this path starts from.
func (p *Path) Root() *descriptor.Descriptor { return p.root }

// Properties is the ordered traversal of struct fields this path walks
// through (skipping NotNull/collection steps, which carry no Property).
func (p *Path) Properties() []*descriptor.Property {
	var props []*descriptor.Property
	for _, s := range p.steps {
		if s.kind == stepAccess {
			props = append(props, s.prop)
		}
	}
	return props
}

// String renders the path: "this" for Self, "a.b" for nested
// access, "p?" for not-null narrowing, "p.*" for collection elements.
func (p *Path) String() string {
	if len(p.steps) == 0 {
		return "this"
	}
	var sb strings.Builder
	first := true
	for _, s := range p.steps {
		switch s.kind {
		case stepAccess:
			if !first {
				sb.WriteByte('.')
			}
			sb.WriteString(s.prop.Name)
		case stepNotNull:
			sb.WriteByte('?')
		case stepListElements, stepSetElements:
			sb.WriteString(".*")
		}
		first = false
	}
	return sb.String()
}

// Equal ignores intermediate identity: two paths are equal iff their
// property sequence and terminal wrapper shape match (spec §4.2).
func (p *Path) Equal(other *Path) bool {
	if len(p.steps) != len(other.steps) {
		return false
	}
	for i := range p.steps {
		if p.steps[i].kind != other.steps[i].kind {
			return false
		}
		if p.steps[i].kind == stepAccess && p.steps[i].prop.Name != other.steps[i].prop.Name {
			return false
		}
	}
	return true
}

// Get resolves root down to the leaf value. It returns ok=false (not an
// error) if any intermediate collection is empty or a NotNull step
// finds a nil value, per spec §4.2.
func (p *Path) Get(root any) (value any, ok bool, err error) {
	cur := root
	for _, s := range p.steps {
		switch s.kind {
		case stepAccess:
			v, gerr := s.prop.Get(cur)
			if gerr != nil {
				return nil, false, gerr
			}
			cur = v
		case stepNotNull:
			if isNil(cur) {
				return nil, false, nil
			}
		case stepListElements, stepSetElements:
			elems, isSlice := rx.AsSlice(cur)
			if !isSlice || len(elems) == 0 {
				return nil, false, nil
			}
			cur = elems[0]
		}
	}
	return cur, true, nil
}

// Set returns a copy of root with the leaf replaced by value. root is
// returned unchanged if any intermediate step is absent (spec §4.2).
// ListElements/SetElements replace the whole collection with a
// singleton; this lens shape exists to support map_modification, not as
// a user-facing collection mutator (spec §9 open question).
func (p *Path) Set(root any, value any) (any, error) {
	if len(p.steps) == 0 {
		return value, nil
	}
	return p.setAt(root, 0, value)
}

func (p *Path) setAt(cur any, i int, value any) (any, error) {
	if i == len(p.steps) {
		return value, nil
	}
	s := p.steps[i]
	switch s.kind {
	case stepAccess:
		child, err := s.prop.Get(cur)
		if err != nil {
			return cur, err
		}
		newChild, err := p.setAt(child, i+1, value)
		if err != nil {
			return cur, err
		}
		return s.prop.Set(cur, newChild)
	case stepNotNull:
		if isNil(cur) {
			return cur, nil
		}
		return p.setAt(cur, i+1, value)
	case stepListElements, stepSetElements:
		newElem, err := p.setAt(nil, i+1, value)
		if err != nil {
			return cur, err
		}
		return rx.SliceOfSameType(cur, []any{newElem}), nil
	}
	return cur, nil
}

// isNil reports whether v is nil, including a typed nil pointer/map/
// slice/chan/func boxed in the any interface (a bare `v == nil` check
// misses those: the interface's type word is non-nil even though the
// value it points to is).
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
