package descriptor_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/queryalgebra/descriptor"
)

type widget struct {
	Name  string
	Count int32
	ID    string
}

func buildWidgetDescriptor(factory func() any) *descriptor.Descriptor {
	stringD := descriptor.NewPrimitive("String", reflect.TypeOf(""))
	int32D := descriptor.NewPrimitive("Int32", reflect.TypeOf(int32(0)))
	b := descriptor.NewStruct("Widget", widget{})
	if factory != nil {
		b = b.WithDefault(factory)
	}
	return b.
		Field("name", "Name", stringD, false, nil).
		Field("count", "Count", int32D, true, nil).
		Field("id", "ID", stringD, true, nil).
		Build()
}

func TestFieldByNameAndGetSet(t *testing.T) {
	d := buildWidgetDescriptor(nil)

	nameField, ok := d.FieldByName("name")
	require.True(t, ok)

	w := widget{Name: "gizmo", Count: 3}
	v, err := nameField.Get(w)
	require.NoError(t, err)
	assert.Equal(t, "gizmo", v)

	updated, err := nameField.Set(w, "gadget")
	require.NoError(t, err)
	uw, ok := updated.(widget)
	require.True(t, ok)
	assert.Equal(t, "gadget", uw.Name)
	assert.Equal(t, "gizmo", w.Name, "Set must not mutate the original record")
}

func TestEqual(t *testing.T) {
	a := buildWidgetDescriptor(nil)
	b := buildWidgetDescriptor(nil)
	assert.True(t, a.Equal(b))

	nullableA := a.WithNullable(true)
	assert.False(t, a.Equal(nullableA))
}

func TestStaticDefaultDetected(t *testing.T) {
	d := buildWidgetDescriptor(func() any { return widget{Count: 42} })
	countField, ok := d.FieldByName("count")
	require.True(t, ok)

	val, has := countField.Default()
	assert.True(t, has)
	assert.Equal(t, int32(42), val)
	assert.Equal(t, descriptor.NoDefault, countField.DefaultCodeOf())
}

func TestDynamicDefaultClassifiedAsFreshIdentifier(t *testing.T) {
	counter := 0
	d := buildWidgetDescriptor(func() any {
		counter++
		return widget{ID: "deadbeef-0000-0000-0000-00000000000" + string(rune('0'+counter%10))}
	})
	idField, ok := d.FieldByName("id")
	require.True(t, ok)

	_, has := idField.Default()
	assert.False(t, has)
	assert.Equal(t, descriptor.FreshIdentifier, idField.DefaultCodeOf())
}

func TestVirtualRecordRoundTrip(t *testing.T) {
	stringD := descriptor.NewPrimitive("String", reflect.TypeOf(""))
	vd := descriptor.NewVirtualStruct(descriptor.RecordDescription{
		SerialName: "VirtualWidget",
		Fields: []descriptor.FieldDescription{
			{Name: "name", Type: stringD},
		},
	})

	rec, err := descriptor.NewVirtualRecord(vd, "gizmo")
	require.NoError(t, err)

	nameField, ok := vd.FieldByName("name")
	require.True(t, ok)

	v, err := nameField.Get(rec)
	require.NoError(t, err)
	assert.Equal(t, "gizmo", v)

	updated, err := nameField.Set(rec, "gadget")
	require.NoError(t, err)
	v2, err := nameField.Get(updated)
	require.NoError(t, err)
	assert.Equal(t, "gadget", v2)

	v3, err := nameField.Get(rec)
	require.NoError(t, err)
	assert.Equal(t, "gizmo", v3, "Set must not mutate the original virtual record")
}
