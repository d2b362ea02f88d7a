package store_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/descriptor"
	"github.com/oxhq/queryalgebra/modification"
	"github.com/oxhq/queryalgebra/store"
)

type customer struct {
	Name    string
	Balance int32
}

func buildCustomerDescriptor() *descriptor.Descriptor {
	stringD := descriptor.NewPrimitive("String", reflect.TypeOf(""))
	int32D := descriptor.NewPrimitive("Int32", reflect.TypeOf(int32(0)))
	return descriptor.NewStruct("Customer", customer{}).
		Field("name", "Name", stringD, false, nil).
		Field("balance", "Balance", int32D, false, nil).
		Build()
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	d := buildCustomerDescriptor()
	balanceProp, _ := d.FieldByName("balance")

	cond := condition.OnField{Property: balanceProp, Condition: condition.GTE{Value: int32(100)}}
	mod := modification.OnField{Property: balanceProp, Modification: modification.Increment{Delta: int32(10)}}

	require.NoError(t, s.Save("big-spenders", "Customer", d, cond, mod))

	gotCond, gotMod, err := s.Load("big-spenders", d)
	require.NoError(t, err)
	assert.Equal(t, cond, gotCond)
	assert.Equal(t, mod, gotMod)
}

func TestSaveWithoutModification(t *testing.T) {
	s := openTestStore(t)
	d := buildCustomerDescriptor()
	nameProp, _ := d.FieldByName("name")

	cond := condition.OnField{Property: nameProp, Condition: condition.StringContains{Value: "Ada"}}
	require.NoError(t, s.Save("ada-customers", "Customer", d, cond, nil))

	gotCond, gotMod, err := s.Load("ada-customers", d)
	require.NoError(t, err)
	assert.Equal(t, cond, gotCond)
	assert.Nil(t, gotMod)
}

func TestSaveUpsertsOnNameConflict(t *testing.T) {
	s := openTestStore(t)
	d := buildCustomerDescriptor()
	balanceProp, _ := d.FieldByName("balance")

	first := condition.OnField{Property: balanceProp, Condition: condition.GTE{Value: int32(1)}}
	second := condition.OnField{Property: balanceProp, Condition: condition.GTE{Value: int32(999)}}

	require.NoError(t, s.Save("threshold", "Customer", d, first, nil))
	require.NoError(t, s.Save("threshold", "Customer", d, second, nil))

	gotCond, _, err := s.Load("threshold", d)
	require.NoError(t, err)
	assert.Equal(t, second, gotCond)

	names, err := s.List("Customer")
	require.NoError(t, err)
	assert.Equal(t, []string{"threshold"}, names)
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)
	d := buildCustomerDescriptor()
	nameProp, _ := d.FieldByName("name")
	always := condition.OnField{Property: nameProp, Condition: condition.Always{}}

	require.NoError(t, s.Save("q1", "Customer", d, always, nil))
	require.NoError(t, s.Save("q2", "Customer", d, always, nil))

	names, err := s.List("Customer")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q2"}, names)

	require.NoError(t, s.Delete("q1"))

	names, err = s.List("Customer")
	require.NoError(t, err)
	assert.Equal(t, []string{"q2"}, names)

	_, _, err = s.Load("q1", d)
	assert.Error(t, err)
}
