package registry

import (
	"fmt"
	"reflect"

	"github.com/oxhq/queryalgebra/descriptor"
)

// NewWithBuiltins returns a registry pre-populated with the standard
// primitives and containers spec §4.6 requires: "bool, all integer
// widths, float, double, char, string, nullable, list, set, map, pair,
// triple, closed-range, plus the core's own sum types under their
// canonical names."
func NewWithBuiltins() *Registry {
	r := New()
	seedPrimitives(r)
	seedContainers(r)
	seedSumTypes(r)
	return r
}

func seedPrimitives(r *Registry) {
	prims := []struct {
		name string
		t    reflect.Type
	}{
		{"Boolean", reflect.TypeOf(false)},
		{"Int8", reflect.TypeOf(int8(0))},
		{"Int16", reflect.TypeOf(int16(0))},
		{"Int32", reflect.TypeOf(int32(0))},
		{"Int64", reflect.TypeOf(int64(0))},
		{"Float", reflect.TypeOf(float32(0))},
		{"Double", reflect.TypeOf(float64(0))},
		{"Char", reflect.TypeOf(rune(0))},
		{"String", reflect.TypeOf("")},
	}
	for _, p := range prims {
		r.RegisterDescriptor(descriptor.NewPrimitive(p.name, p.t))
	}
}

func seedContainers(r *Registry) {
	r.Register("Nullable", func(args []*descriptor.Descriptor) (*descriptor.Descriptor, error) {
		if len(args) != 1 {
			return nil, missingTypeArg("Nullable", 1, len(args))
		}
		return args[0].WithNullable(true), nil
	})
	r.Register("List", func(args []*descriptor.Descriptor) (*descriptor.Descriptor, error) {
		if len(args) != 1 {
			return nil, missingTypeArg("List", 1, len(args))
		}
		return descriptor.NewList(args[0]), nil
	})
	r.Register("Set", func(args []*descriptor.Descriptor) (*descriptor.Descriptor, error) {
		if len(args) != 1 {
			return nil, missingTypeArg("Set", 1, len(args))
		}
		return descriptor.NewSet(args[0]), nil
	})
	r.Register("Map", func(args []*descriptor.Descriptor) (*descriptor.Descriptor, error) {
		if len(args) != 1 {
			return nil, missingTypeArg("Map", 1, len(args))
		}
		return descriptor.NewMap(args[0]), nil
	})
	r.Register("Pair", func(args []*descriptor.Descriptor) (*descriptor.Descriptor, error) {
		if len(args) != 2 {
			return nil, missingTypeArg("Pair", 2, len(args))
		}
		return &descriptor.Descriptor{
			SerialName: "Pair<" + args[0].SerialName + "," + args[1].SerialName + ">",
			Kind:       descriptor.Alias,
			Parameters: args,
		}, nil
	})
	r.Register("Triple", func(args []*descriptor.Descriptor) (*descriptor.Descriptor, error) {
		if len(args) != 3 {
			return nil, missingTypeArg("Triple", 3, len(args))
		}
		return &descriptor.Descriptor{
			SerialName: "Triple<" + args[0].SerialName + "," + args[1].SerialName + "," + args[2].SerialName + ">",
			Kind:       descriptor.Alias,
			Parameters: args,
		}, nil
	})
	r.Register("ClosedRange", func(args []*descriptor.Descriptor) (*descriptor.Descriptor, error) {
		if len(args) != 1 {
			return nil, missingTypeArg("ClosedRange", 1, len(args))
		}
		return &descriptor.Descriptor{
			SerialName: "ClosedRange<" + args[0].SerialName + ">",
			Kind:       descriptor.Alias,
			Parameters: args,
		}, nil
	})
}

// seedSumTypes registers the core's own sum-type wrappers: the
// condition wrappers "Condition.And", "Condition.Or", "Condition.Not" and
// "Condition.IfNotNull", and the modification wrappers
// "Modification.Chain", "Modification.Assign" and
// "Modification.IfNotNull". Each factory requires exactly one type
// argument, T, and names its descriptor e.g. "Condition.And<T>".
func seedSumTypes(r *Registry) {
	conditionWrappers := []string{"And", "Or", "Not", "IfNotNull"}
	for _, name := range conditionWrappers {
		name := name
		r.Register("Condition."+name, func(args []*descriptor.Descriptor) (*descriptor.Descriptor, error) {
			if len(args) != 1 {
				return nil, missingTypeArg("Condition."+name, 1, len(args))
			}
			return &descriptor.Descriptor{
				SerialName: "Condition." + name + "<" + args[0].SerialName + ">",
				Kind:       descriptor.Alias,
				Parameters: args,
			}, nil
		})
	}
	modificationWrappers := []string{"Chain", "Assign", "IfNotNull"}
	for _, name := range modificationWrappers {
		name := name
		r.Register("Modification."+name, func(args []*descriptor.Descriptor) (*descriptor.Descriptor, error) {
			if len(args) != 1 {
				return nil, missingTypeArg("Modification."+name, 1, len(args))
			}
			return &descriptor.Descriptor{
				SerialName: "Modification." + name + "<" + args[0].SerialName + ">",
				Kind:       descriptor.Alias,
				Parameters: args,
			}, nil
		})
	}
}

func missingTypeArg(name string, want, got int) error {
	return fmt.Errorf("%s requires %d type argument(s), got %d", name, want, got)
}
