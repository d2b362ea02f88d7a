// Package descriptor implements the record-reflection layer: structural
// type information for a record (Descriptor), one field of a record
// (Property), and the double-instantiation heuristic used to detect
// static and dynamic field defaults.
//
// Field access is reflection-driven in the style of cayley's schema
// package and ygot's protomap: no compile-time-generated accessors are
// required, only a Descriptor built once per Go type.
package descriptor

import (
	"fmt"
	"reflect"

	"github.com/oxhq/queryalgebra/dberr"
)

// Kind is the structural shape of a descriptor, per spec §3.
type Kind int

const (
	Struct Kind = iota
	Enum
	Alias
	Primitive
)

func (k Kind) String() string {
	switch k {
	case Struct:
		return "Struct"
	case Enum:
		return "Enum"
	case Alias:
		return "Alias"
	case Primitive:
		return "Primitive"
	default:
		return "Unknown"
	}
}

// Container marks a descriptor as a collection wrapper around its first
// Parameter. Maps in this system are always string-keyed (spec §3/§4.5).
type Container int

const (
	NoContainer Container = iota
	ListContainer
	SetContainer
	MapContainer
)

// Descriptor carries the structural metadata for a participating record
// type: a stable serial name, a kind, nullability, an ordered field list
// for structs, and parameterization for generics/containers.
//
// Two descriptors are equal iff SerialName, Nullable and the ordered
// Parameters list are equal (spec §3).
type Descriptor struct {
	SerialName string
	Kind       Kind
	Nullable   bool
	Container  Container
	Parameters []*Descriptor // element type for List/Set, value type for Map; generic args otherwise
	EnumValues []string      // Kind == Enum

	fields     []*Property
	fieldIndex map[string]*Property

	// goType is the underlying Go type this descriptor reflects over.
	// Nil for virtual descriptors (see virtual.go), whose records are
	// accessed through the SlotRecord interface instead of reflection.
	goType reflect.Type

	// newDefault, when set, produces a fresh zero-ish instance of this
	// struct used by the double-instantiation default heuristic.
	newDefault func() any
}

// GoType exposes the reflected Go type backing this descriptor, or nil
// for a virtual descriptor.
func (d *Descriptor) GoType() reflect.Type { return d.goType }

// IsVirtual reports whether this descriptor has no backing Go type.
func (d *Descriptor) IsVirtual() bool { return d.goType == nil && d.Kind == Struct }

// Equal implements the structural equality rule from spec §3.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}
	if d.SerialName != other.SerialName || d.Nullable != other.Nullable || d.Container != other.Container {
		return false
	}
	if len(d.Parameters) != len(other.Parameters) {
		return false
	}
	for i := range d.Parameters {
		if !d.Parameters[i].Equal(other.Parameters[i]) {
			return false
		}
	}
	return true
}

// WithNullable returns a copy of d with Nullable set to nullable, used
// to build the "Leaf?" descriptor a NotNull path step narrows away from
// (true) and the non-null leaf it narrows to (false).
func (d *Descriptor) WithNullable(nullable bool) *Descriptor {
	cp := *d
	cp.Nullable = nullable
	return &cp
}

// Fields returns the ordered field list; empty for non-struct kinds.
// This is fields_of(descriptor) from spec §4.1.
func (d *Descriptor) Fields() []*Property {
	return d.fields
}

// FieldByName is field_by_name(descriptor, name): an O(1) lookup by the
// struct's unique field name.
func (d *Descriptor) FieldByName(name string) (*Property, bool) {
	p, ok := d.fieldIndex[name]
	return p, ok
}

// StructBuilder incrementally assembles a Descriptor for a Go struct
// type, backed by reflection rather than generated accessors.
type StructBuilder struct {
	d       *Descriptor
	sample  any
	goIndex []int // parallels d.fields
}

// NewStruct starts a Descriptor for a Go struct type, identified by a
// zero-value (or any) sample of that type.
func NewStruct(serialName string, sample any) *StructBuilder {
	t := reflect.TypeOf(sample)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return &StructBuilder{
		d: &Descriptor{
			SerialName: serialName,
			Kind:       Struct,
			fieldIndex: make(map[string]*Property),
			goType:     t,
		},
		sample: sample,
	}
}

// WithDefault installs the default-record factory used by the
// double-instantiation heuristic (spec §4.1).
func (b *StructBuilder) WithDefault(factory func() any) *StructBuilder {
	b.d.newDefault = factory
	return b
}

// Field declares the struct's goName field as a logical property named
// name, serialized with the given child descriptor. optional marks the
// field as having a declarable default.
func (b *StructBuilder) Field(name, goName string, serializer *Descriptor, optional bool, annotations map[string]string) *StructBuilder {
	sf, ok := b.d.goType.FieldByName(goName)
	if !ok {
		panic(fmt.Sprintf("descriptor: struct %s has no field %q", b.d.goType, goName))
	}
	idx := len(b.d.fields)
	p := &Property{
		Index:       idx,
		Name:        name,
		Parent:      b.d,
		Serializer:  serializer,
		Optional:    optional,
		Annotations: annotations,
		goIndex:     sf.Index,
		access:      accessReflect,
	}
	b.d.fields = append(b.d.fields, p)
	b.d.fieldIndex[name] = p
	return b
}

// Build finalizes the descriptor. Default detection (static vs dynamic)
// is computed lazily on first access via Property.Default/DefaultCode.
func (b *StructBuilder) Build() *Descriptor {
	return b.d
}

// NewPrimitive describes a leaf serializer with no fields: bool, the
// integer widths, float/double, char, string, and raw-string wrappers.
func NewPrimitive(serialName string, goType reflect.Type) *Descriptor {
	return &Descriptor{SerialName: serialName, Kind: Primitive, goType: goType}
}

// NewEnum describes a closed string-backed enumeration.
func NewEnum(serialName string, values []string, goType reflect.Type) *Descriptor {
	return &Descriptor{SerialName: serialName, Kind: Enum, EnumValues: values, goType: goType}
}

// NewAlias describes a single-field inline wrapper around another
// serializer (e.g. a "raw string" carrier per spec §4.5).
func NewAlias(serialName string, inner *Descriptor, goType reflect.Type) *Descriptor {
	return &Descriptor{SerialName: serialName, Kind: Alias, Parameters: []*Descriptor{inner}, goType: goType}
}

// NewList wraps an element descriptor as a list container.
func NewList(element *Descriptor) *Descriptor {
	return &Descriptor{
		SerialName: "List<" + element.SerialName + ">",
		Kind:       Alias,
		Container:  ListContainer,
		Parameters: []*Descriptor{element},
	}
}

// NewSet wraps an element descriptor as a set container.
func NewSet(element *Descriptor) *Descriptor {
	return &Descriptor{
		SerialName: "Set<" + element.SerialName + ">",
		Kind:       Alias,
		Container:  SetContainer,
		Parameters: []*Descriptor{element},
	}
}

// NewMap wraps a value descriptor as a string-keyed map container.
func NewMap(value *Descriptor) *Descriptor {
	return &Descriptor{
		SerialName: "Map<String," + value.SerialName + ">",
		Kind:       Alias,
		Container:  MapContainer,
		Parameters: []*Descriptor{value},
	}
}

// getReflect performs a total reflective read of record's field for p. Returns
// IncompatibleRecord if record's runtime type doesn't match p.Parent.
func (p *Property) getReflect(record any) (any, error) {
	rv := reflect.ValueOf(record)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Type() != p.Parent.goType {
		return nil, dberr.New(dberr.IncompatibleRecord, p.Name, fmt.Sprintf("expected %s, got %T", p.Parent.goType, record))
	}
	return rv.FieldByIndex(p.goIndex).Interface(), nil
}

// setReflect performs a functional copy-with-new-value: the returned
// value is a new top-level struct; record is never mutated.
func (p *Property) setReflect(record any, value any) (any, error) {
	rv := reflect.ValueOf(record)
	ptrInput := rv.Kind() == reflect.Pointer
	if ptrInput {
		rv = rv.Elem()
	}
	if rv.Type() != p.Parent.goType {
		return nil, dberr.New(dberr.IncompatibleRecord, p.Name, fmt.Sprintf("expected %s, got %T", p.Parent.goType, record))
	}
	nv := reflect.New(rv.Type()).Elem()
	nv.Set(rv)
	fv := nv.FieldByIndex(p.goIndex)
	vv := reflect.ValueOf(value)
	if !vv.IsValid() {
		vv = reflect.Zero(fv.Type())
	}
	fv.Set(vv)
	if ptrInput {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(nv)
		return ptr.Interface(), nil
	}
	return nv.Interface(), nil
}
