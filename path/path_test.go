package path_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/descriptor"
	"github.com/oxhq/queryalgebra/modification"
	"github.com/oxhq/queryalgebra/path"
)

type address struct {
	City string
}

type person struct {
	Name    string
	Address *address
	Tags    []string
}

func buildDescriptors() (personD *descriptor.Descriptor, addressD *descriptor.Descriptor) {
	stringD := descriptor.NewPrimitive("String", reflect.TypeOf(""))
	tagsD := descriptor.NewList(stringD)

	addressD = descriptor.NewStruct("Address", address{}).
		Field("city", "City", stringD, false, nil).
		Build()
	nullableAddressD := addressD.WithNullable(true)

	personD = descriptor.NewStruct("Person", person{}).
		Field("name", "Name", stringD, false, nil).
		Field("address", "Address", nullableAddressD, true, nil).
		Field("tags", "Tags", tagsD, true, nil).
		Build()
	return personD, addressD
}

func TestSelfGetSet(t *testing.T) {
	personD, _ := buildDescriptors()
	self := path.Self(personD)

	p := person{Name: "Ada"}
	v, ok, err := self.Get(p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p, v)

	replaced, err := self.Set(p, person{Name: "Grace"})
	require.NoError(t, err)
	assert.Equal(t, "Grace", replaced.(person).Name)
}

func TestAccessNestedField(t *testing.T) {
	personD, _ := buildDescriptors()
	nameProp, ok := personD.FieldByName("name")
	require.True(t, ok)

	namePath, err := path.Access(path.Self(personD), nameProp)
	require.NoError(t, err)
	assert.Equal(t, "name", namePath.String())

	p := person{Name: "Ada"}
	v, ok, err := namePath.Get(p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ada", v)

	updated, err := namePath.Set(p, "Grace")
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.(person).Name)
	assert.Equal(t, "Ada", p.Name)
}

func TestNotNullOnNilShortCircuits(t *testing.T) {
	personD, _ := buildDescriptors()
	addressProp, ok := personD.FieldByName("address")
	require.True(t, ok)

	addrPath, err := path.Access(path.Self(personD), addressProp)
	require.NoError(t, err)
	notNullPath, err := path.NotNull(addrPath)
	require.NoError(t, err)
	assert.Equal(t, "address?", notNullPath.String())

	p := person{Name: "Ada", Address: nil}
	_, ok, err = notNullPath.Get(p)
	require.NoError(t, err)
	assert.False(t, ok)

	result, err := notNullPath.Set(p, &address{City: "London"})
	require.NoError(t, err)
	assert.Nil(t, result.(person).Address, "Set through NotNull on a nil value is a no-op")
}

func TestListElementsString(t *testing.T) {
	personD, _ := buildDescriptors()
	tagsProp, ok := personD.FieldByName("tags")
	require.True(t, ok)

	tagsPath, err := path.Access(path.Self(personD), tagsProp)
	require.NoError(t, err)
	elemPath, err := path.ListElements(tagsPath)
	require.NoError(t, err)
	assert.Equal(t, "tags.*", elemPath.String())
}

func TestEqualIgnoresIdentity(t *testing.T) {
	personD, _ := buildDescriptors()
	nameProp, _ := personD.FieldByName("name")

	a, err := path.Access(path.Self(personD), nameProp)
	require.NoError(t, err)
	b, err := path.Access(path.Self(personD), nameProp)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestMapConditionWrapsOnField(t *testing.T) {
	personD, _ := buildDescriptors()
	nameProp, _ := personD.FieldByName("name")
	namePath, err := path.Access(path.Self(personD), nameProp)
	require.NoError(t, err)

	cond := namePath.MapCondition(condition.StringContains{Value: "Ada"})
	onField, ok := cond.(condition.OnField)
	require.True(t, ok)
	assert.Equal(t, "name", onField.Property.Name)

	ok2, err := cond.Apply(person{Name: "Ada Lovelace"})
	require.NoError(t, err)
	assert.True(t, ok2)
}

func TestMapModificationWrapsOnField(t *testing.T) {
	personD, _ := buildDescriptors()
	nameProp, _ := personD.FieldByName("name")
	namePath, err := path.Access(path.Self(personD), nameProp)
	require.NoError(t, err)

	mod := namePath.MapModification(modification.AppendString{Value: " Jr."})
	result, err := mod.Apply(person{Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Jr.", result.(person).Name)
}
