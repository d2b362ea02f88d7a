package condition_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/descriptor"
)

type product struct {
	Name  string
	Price int32
	Tags  []string
	Specs map[string]string
}

func TestBooleanCombinators(t *testing.T) {
	always := condition.Always{}
	never := condition.Never{}

	ok, err := condition.And{Conditions: []condition.Condition{always, always}}.Apply(nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.And{Conditions: []condition.Condition{always, never}}.Apply(nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = condition.Or{Conditions: []condition.Condition{never, always}}.Apply(nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.Not{Condition: never}.Apply(nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEqualityAndOrdering(t *testing.T) {
	ok, err := condition.Equal{Value: 5}.Apply(5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.NotEqual{Value: 5}.Apply(6)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.Inside{Values: []any{1, 2, 3}}.Apply(2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.GreaterThan{Value: 10}.Apply(11)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.LTE{Value: 10}.Apply(10)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = condition.GreaterThan{Value: "x"}.Apply(5)
	assert.Error(t, err)
}

func TestStringConditions(t *testing.T) {
	ok, err := condition.StringContains{Value: "ADA", IgnoreCase: true}.Apply("team ada lovelace")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.RegexMatches{Pattern: `[a-z]+@[a-z]+\.com`}.Apply("grace@navy.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBitwise(t *testing.T) {
	ok, err := condition.IntBitsSet{Mask: 0b0110}.Apply(uint32(0b1110))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.IntBitsClear{Mask: 0b0001}.Apply(uint32(0b1110))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListSetConditionsOverSlice(t *testing.T) {
	tags := []string{"go", "rust", "zig"}

	ok, err := condition.ListAllElements{Condition: condition.RegexMatches{Pattern: `[a-z]+`}}.Apply(tags)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.ListAnyElements{Condition: condition.Equal{Value: "rust"}}.Apply(tags)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.ListAllElements{Condition: condition.Never{}}.Apply([]string{})
	require.NoError(t, err)
	assert.True(t, ok, "ListAllElements is vacuously true on an empty collection")
}

func TestMapConditions(t *testing.T) {
	specs := map[string]string{"cpu": "arm64"}

	ok, err := condition.Exists{Key: "cpu"}.Apply(specs)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.Exists{Key: "gpu"}.Apply(specs)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = condition.OnKey{Key: "cpu", Condition: condition.Equal{Value: "arm64"}}.Apply(specs)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = condition.OnKey{Key: "missing", Condition: condition.Always{}}.Apply(specs)
	require.NoError(t, err)
	assert.False(t, ok, "OnKey is false (not vacuous) on a missing key")
}

func TestOnFieldAndIfNotNull(t *testing.T) {
	stringD := descriptor.NewPrimitive("String", reflect.TypeOf(""))
	int32D := descriptor.NewPrimitive("Int32", reflect.TypeOf(int32(0)))
	d := descriptor.NewStruct("Product", product{}).
		Field("name", "Name", stringD, false, nil).
		Field("price", "Price", int32D, false, nil).
		Build()

	nameProp, ok := d.FieldByName("name")
	require.True(t, ok)

	cond := condition.OnField{Property: nameProp, Condition: condition.StringContains{Value: "phone"}}
	matched, err := cond.Apply(product{Name: "smartphone"})
	require.NoError(t, err)
	assert.True(t, matched)

	var nilProduct *product
	ifNotNull := condition.IfNotNull{Condition: condition.Always{}}
	matched, err = ifNotNull.Apply(nilProduct)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestFullTextSearchAnyVsAll(t *testing.T) {
	text := "The Quick Brown Fox"

	anyMatch := condition.FullTextSearch{Query: "quick slow", RequireAll: false, LevDistance: 0}
	ok, err := anyMatch.Apply(text)
	require.NoError(t, err)
	assert.True(t, ok)

	allMatch := condition.FullTextSearch{Query: "quick slow", RequireAll: true, LevDistance: 0}
	ok, err = allMatch.Apply(text)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFullTextSearchFuzzyTerm(t *testing.T) {
	// "quikc" is two substitutions away from "quick" (k<->c swapped), not one.
	search := condition.FullTextSearch{Query: "quikc", RequireAll: true, LevDistance: 2}
	ok, err := search.Apply("the quick fox")
	require.NoError(t, err)
	assert.True(t, ok)

	tooStrict := condition.FullTextSearch{Query: "quikc", RequireAll: true, LevDistance: 1}
	ok, err = tooStrict.Apply("the quick fox")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGeoDistance(t *testing.T) {
	london := condition.LatLng{Lat: 51.5074, Lng: -0.1278}
	paris := condition.LatLng{Lat: 48.8566, Lng: 2.3522}

	cond := condition.GeoDistance{Center: london, MinKm: 0, MaxKm: 400}
	ok, err := cond.Apply(paris)
	require.NoError(t, err)
	assert.True(t, ok)

	tooFar := condition.GeoDistance{Center: london, MinKm: 0, MaxKm: 10}
	ok, err = tooFar.Apply(paris)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuilderHelpers(t *testing.T) {
	a, b := condition.Always{}, condition.Never{}

	assert.Equal(t, condition.Always{}, condition.AndNotNull())
	assert.Equal(t, a, condition.AndNotNull(a))
	assert.Equal(t, condition.And{Conditions: []condition.Condition{a, b}}, condition.AndNotNull(a, b))

	built := condition.NewBuilder().Add(a).Add(b).Build()
	assert.Equal(t, condition.And{Conditions: []condition.Condition{a, b}}, built)

	ifThen := condition.IfThen(a, b)
	ok, err := ifThen.Apply(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
