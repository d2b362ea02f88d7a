package descriptor

import "github.com/oxhq/queryalgebra/dberr"

// SlotRecord is implemented by record values that are not backed by a
// concrete Go struct type: their fields are addressed by index into an
// ordered slot vector instead of reflection. VirtualRecord is the
// built-in implementation; the registry uses it to reconstruct a
// serializer from a RecordDescription at runtime (spec §4.1, §4.6).
type SlotRecord interface {
	Slot(i int) any
	WithSlot(i int, v any) SlotRecord
}

// FieldDescription is the runtime description of one field of a virtual
// record: name, reference-to-type, nullability, optionality, an
// annotation list, and the default markers spec §4.1 requires a virtual
// descriptor to carry (static default encoded as canonical-codec text,
// or a dynamic-default marker string).
type FieldDescription struct {
	Name           string
	Type           *Descriptor
	Optional       bool
	Annotations    map[string]string
	StaticDefault  string // canonical-codec text, empty if none
	HasStaticDefault bool
	DynamicDefault DefaultCode
}

// RecordDescription is the runtime description from which
// NewVirtualStruct reconstructs a Descriptor with no compiled Go type
// behind it.
type RecordDescription struct {
	SerialName  string
	Nullable    bool
	Fields      []FieldDescription
	Annotations map[string]string
}

// NewVirtualStruct installs a Descriptor constructed purely from data,
// per spec §4.1 "Virtual records". Its Properties are SlotRecord-backed
// rather than reflection-backed.
func NewVirtualStruct(desc RecordDescription) *Descriptor {
	d := &Descriptor{
		SerialName: desc.SerialName,
		Kind:       Struct,
		Nullable:   desc.Nullable,
		fieldIndex: make(map[string]*Property),
	}
	for i, fd := range desc.Fields {
		p := &Property{
			Index:       i,
			Name:        fd.Name,
			Parent:      d,
			Serializer:  fd.Type,
			Optional:    fd.Optional,
			Annotations: fd.Annotations,
			access:      accessSlot,
		}
		if fd.HasStaticDefault {
			p.defaultComputed = true
			p.defaultHas = true
			p.defaultValue = fd.StaticDefault
			p.defaultCode = NoDefault
		} else if fd.DynamicDefault != NoDefault {
			p.defaultComputed = true
			p.defaultHas = false
			p.defaultCode = fd.DynamicDefault
		}
		d.fields = append(d.fields, p)
		d.fieldIndex[fd.Name] = p
	}
	return d
}

// VirtualRecord is an ordered vector of slot values sharing a single
// virtual Descriptor (spec §4.1).
type VirtualRecord struct {
	Desc  *Descriptor
	slots []any
}

// NewVirtualRecord builds a record for d with the given slot values, in
// field-declaration order.
func NewVirtualRecord(d *Descriptor, slots ...any) (*VirtualRecord, error) {
	if len(slots) != len(d.fields) {
		return nil, dberr.New(dberr.IncompatibleRecord, d.SerialName, "slot count does not match field count")
	}
	cp := make([]any, len(slots))
	copy(cp, slots)
	return &VirtualRecord{Desc: d, slots: cp}, nil
}

func (v *VirtualRecord) Slot(i int) any { return v.slots[i] }

// WithSlot returns a new VirtualRecord with slot i replaced; v is
// unchanged, matching the functional-set contract every Property.Set
// honors.
func (v *VirtualRecord) WithSlot(i int, val any) SlotRecord {
	cp := make([]any, len(v.slots))
	copy(cp, v.slots)
	cp[i] = val
	return &VirtualRecord{Desc: v.Desc, slots: cp}
}
