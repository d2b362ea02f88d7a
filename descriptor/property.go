package descriptor

import (
	"fmt"
	"reflect"
)

// DefaultCode is the closed set of symbolic markers for a dynamic field
// default that cannot be materialized as a single static value (spec
// §4.1). The zero value means "no default detected at all".
type DefaultCode string

const (
	NoDefault        DefaultCode = ""
	FreshIdentifier  DefaultCode = "FreshIdentifier"
	CurrentInstant   DefaultCode = "CurrentInstant"
	CurrentLocalDate DefaultCode = "CurrentLocalDate"
	CurrentLocalTime DefaultCode = "CurrentLocalTime"
)

// access selects how a Property reaches into a record: reflection over
// a concrete Go struct field, or slot indexing into a VirtualRecord.
type access int

const (
	accessReflect access = iota
	accessSlot
)

// Property is one field of a record: the pair (parent descriptor, field
// index) plus the child serializer, an accessor and a functional
// setter (spec §3).
type Property struct {
	Index       int
	Name        string
	Parent      *Descriptor
	Serializer  *Descriptor
	Optional    bool
	Annotations map[string]string

	goIndex []int // reflect field path, accessReflect only
	access  access

	defaultComputed bool
	defaultValue    any
	defaultHas      bool
	defaultCode     DefaultCode
}

// Get is pure; it never mutates record.
func (p *Property) Get(record any) (any, error) {
	switch p.access {
	case accessSlot:
		sr, ok := record.(SlotRecord)
		if !ok {
			return nil, fmt.Errorf("descriptor: %s.Get: record does not implement SlotRecord", p.Parent.SerialName)
		}
		return sr.Slot(p.Index), nil
	default:
		return p.getReflect(record)
	}
}

// Set returns a new record with this field replaced; record is
// unchanged. This is the functional set() from spec §3/§4.1.
func (p *Property) Set(record any, value any) (any, error) {
	switch p.access {
	case accessSlot:
		sr, ok := record.(SlotRecord)
		if !ok {
			return nil, fmt.Errorf("descriptor: %s.Set: record does not implement SlotRecord", p.Parent.SerialName)
		}
		return sr.WithSlot(p.Index, value), nil
	default:
		return p.setReflect(record, value)
	}
}

// Default returns the field's static default, if one was detected.
func (p *Property) Default() (value any, ok bool) {
	p.ensureDefault()
	return p.defaultValue, p.defaultHas
}

// DefaultCodeOf returns the symbolic marker for a dynamic default, or
// NoDefault if the field has a static default (or none at all).
func (p *Property) DefaultCodeOf() DefaultCode {
	p.ensureDefault()
	return p.defaultCode
}

// ensureDefault runs the double-instantiation heuristic from spec §4.1
// exactly once, lazily, and caches the result:
//
//  1. Build the parent's default record twice, independently.
//  2. Read this field from each sample.
//  3. Equal samples -> static default. Unequal -> classify the runtime
//     types of the two samples into one of the closed dynamic markers.
func (p *Property) ensureDefault() {
	if p.defaultComputed {
		return
	}
	p.defaultComputed = true
	if p.Parent.newDefault == nil {
		return
	}
	a := p.Parent.newDefault()
	b := p.Parent.newDefault()
	av, err := p.Get(a)
	if err != nil {
		return
	}
	bv, err := p.Get(b)
	if err != nil {
		return
	}
	if reflect.DeepEqual(av, bv) {
		p.defaultValue = av
		p.defaultHas = true
		p.defaultCode = NoDefault
		return
	}
	p.defaultHas = false
	p.defaultCode = classifyDynamic(av, bv)
}

// classifyDynamic inspects the runtime types of two unequal default
// samples and assigns the closed tag set a conforming implementation
// must use (spec §4.1, §9 "dynamic defaults").
func classifyDynamic(a, b any) DefaultCode {
	if a == nil || b == nil {
		return FreshIdentifier
	}
	switch a.(type) {
	case timeInstant:
		return CurrentInstant
	case localDate:
		return CurrentLocalDate
	case localTime:
		return CurrentLocalTime
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok && looksLikeIdentifier(as) && looksLikeIdentifier(bs) {
			return FreshIdentifier
		}
	}
	return FreshIdentifier
}

// timeInstant, localDate and localTime let callers register their own
// date/time representations for classifyDynamic without this package
// importing a specific calendar library.
type timeInstant interface{ IsDynamicInstant() }
type localDate interface{ IsDynamicLocalDate() }
type localTime interface{ IsDynamicLocalTime() }

func looksLikeIdentifier(s string) bool {
	if len(s) < 8 {
		return false
	}
	hasDash := false
	for _, r := range s {
		if r == '-' {
			hasDash = true
			continue
		}
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F') {
			return false
		}
	}
	return hasDash
}
