package registry_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/queryalgebra/descriptor"
	"github.com/oxhq/queryalgebra/registry"
)

type widget struct {
	Name string
}

func TestRegisterAndLookup(t *testing.T) {
	r := registry.New()
	d := descriptor.NewPrimitive("Widget", reflect.TypeOf(widget{}))
	r.RegisterDescriptor(d)

	got, ok, err := r.Lookup("Widget", nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, d.Equal(got))

	_, ok, err = r.Lookup("Missing", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := registry.New()
	calls := 0
	factory := func([]*descriptor.Descriptor) (*descriptor.Descriptor, error) {
		calls++
		return descriptor.NewPrimitive("Thing", reflect.TypeOf(0)), nil
	}
	r.Register("Thing", factory)
	r.Register("Thing", func([]*descriptor.Descriptor) (*descriptor.Descriptor, error) {
		t.Fatal("second registration under the same name must never be invoked")
		return nil, nil
	})

	_, ok, err := r.Lookup("Thing", nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, calls)
}

func TestBuiltinsPrimitivesAndContainers(t *testing.T) {
	r := registry.NewWithBuiltins()

	stringD, ok, err := r.Lookup("String", nil)
	require.NoError(t, err)
	require.True(t, ok)

	listD, ok, err := r.Lookup("List", []*descriptor.Descriptor{stringD})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "List<String>", listD.SerialName)
	assert.Equal(t, descriptor.ListContainer, listD.Container)

	_, _, err = r.Lookup("List", nil)
	assert.Error(t, err, "List requires exactly one type argument")
}

func TestBuiltinsSumTypes(t *testing.T) {
	r := registry.NewWithBuiltins()
	int32D, _, _ := r.Lookup("Int32", nil)

	d, ok, err := r.Lookup("Condition.And", []*descriptor.Descriptor{int32D})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Condition.And<Int32>", d.SerialName)
}

func TestRegisterVirtual(t *testing.T) {
	r := registry.New()
	stringD := descriptor.NewPrimitive("String", reflect.TypeOf(""))
	r.RegisterVirtual(descriptor.RecordDescription{
		SerialName: "VirtualWidget",
		Fields: []descriptor.FieldDescription{
			{Name: "name", Type: stringD},
		},
	})

	d, ok, err := r.Lookup("VirtualWidget", nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, d.IsVirtual())

	_, fieldOk := d.FieldByName("name")
	assert.True(t, fieldOk)
}

func TestVirtualizeReplacesStructs(t *testing.T) {
	r := registry.New()
	stringD := descriptor.NewPrimitive("String", reflect.TypeOf(""))
	concrete := descriptor.NewStruct("Widget", widget{}).
		Field("name", "Name", stringD, false, nil).
		Build()
	r.RegisterDescriptor(concrete)
	r.RegisterDescriptor(stringD)

	virtualized := r.Virtualize(func(name string) bool { return name == "Widget" })

	widgetD, ok, err := virtualized.Lookup("Widget", nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, widgetD.IsVirtual())
	assert.Equal(t, "Widget", widgetD.SerialName)

	nameField, ok := widgetD.FieldByName("name")
	require.True(t, ok)
	assert.Equal(t, "name", nameField.Name)

	unaffected, ok, err := virtualized.Lookup("String", nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, unaffected.IsVirtual())
}

func TestNames(t *testing.T) {
	r := registry.New()
	r.RegisterDescriptor(descriptor.NewPrimitive("A", reflect.TypeOf(0)))
	r.RegisterDescriptor(descriptor.NewPrimitive("B", reflect.TypeOf(0)))

	names := r.Names()
	assert.ElementsMatch(t, []string{"A", "B"}, names)
}
