package codec_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/queryalgebra/codec"
	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/descriptor"
	"github.com/oxhq/queryalgebra/modification"
	"github.com/oxhq/queryalgebra/path"
)

// requireJSONEqual compares want against got and, on mismatch, fails
// with a unified diff rather than a wall of raw JSON.
func requireJSONEqual(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		t.Fatalf("wire JSON mismatch (diff error: %v)\nwant:\n%s\ngot:\n%s", err, want, got)
	}
	t.Fatalf("wire JSON mismatch:\n%s", text)
}

type invoice struct {
	Total int32
	Memo  string
	Tags  []string
}

func buildInvoiceDescriptor() *descriptor.Descriptor {
	int32D := descriptor.NewPrimitive("Int32", reflect.TypeOf(int32(0)))
	stringD := descriptor.NewPrimitive("String", reflect.TypeOf(""))
	tagsD := descriptor.NewList(stringD)
	return descriptor.NewStruct("Invoice", invoice{}).
		Field("total", "Total", int32D, false, nil).
		Field("memo", "Memo", stringD, true, nil).
		Field("tags", "Tags", tagsD, true, nil).
		Build()
}

func TestEncodeDecodeConditionRoundTrip(t *testing.T) {
	leaf := buildInvoiceDescriptor()
	totalProp, ok := leaf.FieldByName("total")
	require.True(t, ok)

	cond := condition.And{Conditions: []condition.Condition{
		condition.OnField{Property: totalProp, Condition: condition.GTE{Value: int32(100)}},
		condition.Not{Condition: condition.Always{}},
	}}

	wire, err := codec.EncodeCondition(leaf, cond)
	require.NoError(t, err)

	decoded, err := codec.DecodeCondition(leaf, wire)
	require.NoError(t, err)
	assert.Equal(t, cond, decoded)
}

func TestEncodeConditionGoldenJSON(t *testing.T) {
	leaf := buildInvoiceDescriptor()
	totalProp, ok := leaf.FieldByName("total")
	require.True(t, ok)

	cond := condition.And{Conditions: []condition.Condition{
		condition.OnField{Property: totalProp, Condition: condition.GTE{Value: int32(100)}},
		condition.Not{Condition: condition.Always{}},
	}}

	wire, err := codec.EncodeCondition(leaf, cond)
	require.NoError(t, err)

	got, err := json.MarshalIndent(wire, "", "  ")
	require.NoError(t, err)

	want := `{
  "And": [
    {
      "total": {
        "GreaterThanOrEqual": {
          "value": 100
        }
      }
    },
    {
      "Not": {
        "Always": true
      }
    }
  ]
}`
	requireJSONEqual(t, want, string(got))
}

func TestDecodeConditionAcceptsLegacyAlias(t *testing.T) {
	leaf := buildInvoiceDescriptor()
	wire := codec.Wire{"GTE": map[string]any{"value": int32(100)}}

	decoded, err := codec.DecodeCondition(leaf, wire)
	require.NoError(t, err)
	assert.Equal(t, condition.GTE{Value: int32(100)}, decoded)
}

func TestEncodeConditionNeverEmitsLegacyAlias(t *testing.T) {
	leaf := buildInvoiceDescriptor()
	wire, err := codec.EncodeCondition(leaf, condition.GTE{Value: int32(5)})
	require.NoError(t, err)
	_, hasCanonical := wire["GreaterThanOrEqual"]
	assert.True(t, hasCanonical)
	_, hasAlias := wire["GTE"]
	assert.False(t, hasAlias)
}

func TestOnFieldProjectsByFieldName(t *testing.T) {
	leaf := buildInvoiceDescriptor()
	memoProp, ok := leaf.FieldByName("memo")
	require.True(t, ok)

	cond := condition.OnField{Property: memoProp, Condition: condition.StringContains{Value: "refund"}}
	wire, err := codec.EncodeCondition(leaf, cond)
	require.NoError(t, err)

	_, hasOnFieldWrapper := wire["OnField"]
	assert.False(t, hasOnFieldWrapper, "OnField must project by field name, not a generic wrapper")
	_, hasFieldKey := wire["memo"]
	assert.True(t, hasFieldKey)

	decoded, err := codec.DecodeCondition(leaf, wire)
	require.NoError(t, err)
	assert.Equal(t, cond, decoded)
}

func TestEncodeDecodeModificationRoundTrip(t *testing.T) {
	leaf := buildInvoiceDescriptor()
	totalProp, _ := leaf.FieldByName("total")

	mod := modification.Chain{Modifications: []modification.Modification{
		modification.OnField{Property: totalProp, Modification: modification.Increment{Delta: int32(10)}},
		modification.AppendString{Value: "!"},
	}}

	wire, err := codec.EncodeModification(leaf, mod)
	require.NoError(t, err)

	decoded, err := codec.DecodeModification(leaf, wire)
	require.NoError(t, err)
	assert.Equal(t, mod, decoded)
}

func TestDecodeModificationAcceptsLegacyAlias(t *testing.T) {
	leaf := buildInvoiceDescriptor()
	wire := codec.Wire{"Inc": map[string]any{"delta": int32(7)}}
	decoded, err := codec.DecodeModification(leaf, wire)
	require.NoError(t, err)
	assert.Equal(t, modification.Increment{Delta: int32(7)}, decoded)
}

func TestListPerElementRoundTrip(t *testing.T) {
	leaf := buildInvoiceDescriptor()
	tagsProp, _ := leaf.FieldByName("tags")

	mod := modification.OnField{
		Property: tagsProp,
		Modification: modification.ListPerElement{
			Condition:    condition.Always{},
			Modification: modification.AppendString{Value: "-x"},
		},
	}
	wire, err := codec.EncodeModification(leaf, mod)
	require.NoError(t, err)
	decoded, err := codec.DecodeModification(leaf, wire)
	require.NoError(t, err)
	assert.Equal(t, mod, decoded)
}

func TestCodecRejectsMultiKeyObject(t *testing.T) {
	leaf := buildInvoiceDescriptor()
	wire := codec.Wire{"Always": true, "Never": true}
	_, err := codec.DecodeCondition(leaf, wire)
	assert.Error(t, err)
}

func TestPathEncodeDecodeRoundTrip(t *testing.T) {
	leaf := buildInvoiceDescriptor()
	totalProp, _ := leaf.FieldByName("total")

	p, err := path.Access(path.Self(leaf), totalProp)
	require.NoError(t, err)

	wire := codec.EncodePath(p)
	assert.Equal(t, "total", wire)

	decoded, err := codec.DecodePath(leaf, wire)
	require.NoError(t, err)
	assert.True(t, p.Equal(decoded))
}

func TestPathEncodeDecodeSelf(t *testing.T) {
	leaf := buildInvoiceDescriptor()
	self := path.Self(leaf)

	wire := codec.EncodePath(self)
	assert.Equal(t, "", wire)

	decoded, err := codec.DecodePath(leaf, wire)
	require.NoError(t, err)
	assert.True(t, self.Equal(decoded))
}

func TestPathEncodeDecodeListElements(t *testing.T) {
	leaf := buildInvoiceDescriptor()
	tagsProp, _ := leaf.FieldByName("tags")
	tagsPath, err := path.Access(path.Self(leaf), tagsProp)
	require.NoError(t, err)
	elemPath, err := path.ListElements(tagsPath)
	require.NoError(t, err)

	wire := codec.EncodePath(elemPath)
	assert.Equal(t, "tags.*", wire)

	decoded, err := codec.DecodePath(leaf, wire)
	require.NoError(t, err)
	assert.True(t, elemPath.Equal(decoded))
}
