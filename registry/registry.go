// Package registry implements the name -> descriptor/factory table from
// spec §4.6: idempotent registration, parameterized lookup, virtual
// struct installation, and registry-scoped virtualization for crossing
// process boundaries without code-generated serializers.
//
// The concurrency shape (RWMutex guarding plain maps, idempotent
// register, read-mostly lookup) mirrors the teacher's
// internal/registry/registry.go provider table.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oxhq/queryalgebra/descriptor"
)

// Factory produces a concrete Descriptor for a serial name, optionally
// parameterized by typeArgs (e.g. the element type of a registered
// "List" factory). Factories are pure: calling one twice for the same
// arguments must yield structurally Equal descriptors.
type Factory func(typeArgs []*descriptor.Descriptor) (*descriptor.Descriptor, error)

// Registry is a process-wide or scoped serial_name -> Factory table
// (spec §4.6). The zero value is not usable; construct with New or
// NewWithBuiltins.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// New returns an empty registry with no pre-populated entries.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register installs factory under name. Re-registering an
// already-present name is a silent no-op (spec §4.6): "idempotent;
// silently ignores re-registration of an already-present name."
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return
	}
	r.factories[name] = factory
}

// RegisterDescriptor is a convenience wrapper for factories with no
// type parameters, the common case for leaf primitives and concrete
// struct/enum serializers.
func (r *Registry) RegisterDescriptor(d *descriptor.Descriptor) {
	r.Register(d.SerialName, func([]*descriptor.Descriptor) (*descriptor.Descriptor, error) {
		return d, nil
	})
}

// Lookup resolves the concrete serializer for name, parameterized by
// typeArgs. Returns ok=false if no factory is registered under name.
func (r *Registry) Lookup(name string, typeArgs []*descriptor.Descriptor) (*descriptor.Descriptor, bool, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()
	if !exists {
		return nil, false, nil
	}
	d, err := factory(typeArgs)
	if err != nil {
		return nil, true, err
	}
	return d, true, nil
}

// RegisterVirtual installs a virtual record description (spec §4.6),
// built by descriptor.NewVirtualStruct, under its own serial name.
func (r *Registry) RegisterVirtual(rd descriptor.RecordDescription) {
	d := descriptor.NewVirtualStruct(rd)
	r.RegisterDescriptor(d)
}

// Names returns every serial name currently registered, for
// introspection and the demo CLI's `registry` subcommand.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	return out
}

// Virtualize produces a derived registry in which every serializer
// whose name matches filter has been replaced by a virtual equivalent
// reconstructed from its descriptor (spec §4.6), used to bridge across
// process boundaries where code-generated serializers are unavailable.
// Entries that don't match filter, or whose descriptor is not a
// reflectable struct, are copied through unchanged.
func (r *Registry) Virtualize(filter func(name string) bool) *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := New()
	for name, factory := range r.factories {
		factory := factory
		if !filter(name) {
			out.factories[name] = factory
			continue
		}
		out.factories[name] = func(typeArgs []*descriptor.Descriptor) (*descriptor.Descriptor, error) {
			d, err := factory(typeArgs)
			if err != nil {
				return nil, err
			}
			if d.Kind != descriptor.Struct || d.IsVirtual() {
				return d, nil
			}
			return virtualizeStruct(d), nil
		}
	}
	return out
}

// virtualizeStruct reconstructs a reflectable struct descriptor as a
// virtual one carrying the same serial name and field shape, so a
// SlotRecord stands in for code without the original Go type.
func virtualizeStruct(d *descriptor.Descriptor) *descriptor.Descriptor {
	fields := make([]descriptor.FieldDescription, len(d.Fields()))
	for i, f := range d.Fields() {
		fields[i] = descriptor.FieldDescription{
			Name:        f.Name,
			Type:        f.Serializer,
			Optional:    f.Optional,
			Annotations: f.Annotations,
		}
	}
	return descriptor.NewVirtualStruct(descriptor.RecordDescription{
		SerialName: d.SerialName,
		Nullable:   d.Nullable,
		Fields:     fields,
	})
}

// QualifiedName joins a container kind and element serial name the way
// List/Set/Map descriptors format themselves (e.g. "List<Int32>"),
// matching descriptor.NewList/NewSet/NewMap's SerialName convention.
func QualifiedName(container string, element string) string {
	var sb strings.Builder
	sb.WriteString(container)
	sb.WriteByte('<')
	sb.WriteString(element)
	sb.WriteByte('>')
	return sb.String()
}

// MustLookup panics if name isn't registered; used only for the
// built-in seed table where absence is a programmer error, never for
// caller-supplied names.
func (r *Registry) MustLookup(name string, typeArgs []*descriptor.Descriptor) *descriptor.Descriptor {
	d, ok, err := r.Lookup(name, typeArgs)
	if err != nil {
		panic(fmt.Sprintf("registry: %s: %v", name, err))
	}
	if !ok {
		panic(fmt.Sprintf("registry: no factory registered for %q", name))
	}
	return d
}
