package codec

import (
	"fmt"

	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/dberr"
	"github.com/oxhq/queryalgebra/descriptor"
)

// conditionAliases maps legacy wire tags readers must still accept to
// their current canonical tag (spec §4.5 "alternative names"). Writers
// never emit a key on the left-hand side.
var conditionAliases = map[string]string{
	"Eq":           "Equal",
	"Neq":          "NotEqual",
	"In":           "Inside",
	"NotIn":        "NotInside",
	"GT":           "GreaterThan",
	"LT":           "LessThan",
	"GTE":          "GreaterThanOrEqual",
	"LTE":          "LessThanOrEqual",
	"Contains":     "StringContains",
	"RawContains":  "RawStringContains",
	"Matches":      "RegexMatches",
	"BitsClear":    "IntBitsClear",
	"BitsSet":      "IntBitsSet",
	"ListAll":      "ListAllElements",
	"ListAny":      "ListAnyElements",
	"SetAll":       "SetAllElements",
	"SetAny":       "SetAnyElements",
	"MapExists":    "Exists",
	"MapOnKey":     "OnKey",
}

// EncodeCondition renders c as a canonical single-key tagged object
// against leaf, the descriptor c was built to evaluate (spec §4.5/§6).
// A struct-field condition (condition.OnField) projects the field name
// itself as the tag rather than emitting a generic "OnField" wrapper.
func EncodeCondition(leaf *descriptor.Descriptor, c condition.Condition) (Wire, error) {
	switch v := c.(type) {
	case condition.Never:
		return Wire{"Never": true}, nil
	case condition.Always:
		return Wire{"Always": true}, nil
	case condition.And:
		inner, err := encodeConditionList(leaf, v.Conditions)
		if err != nil {
			return nil, err
		}
		return Wire{"And": inner}, nil
	case condition.Or:
		inner, err := encodeConditionList(leaf, v.Conditions)
		if err != nil {
			return nil, err
		}
		return Wire{"Or": inner}, nil
	case condition.Not:
		inner, err := EncodeCondition(leaf, v.Condition)
		if err != nil {
			return nil, err
		}
		return Wire{"Not": inner}, nil
	case condition.Equal:
		return Wire{"Equal": map[string]any{"value": v.Value}}, nil
	case condition.NotEqual:
		return Wire{"NotEqual": map[string]any{"value": v.Value}}, nil
	case condition.Inside:
		return Wire{"Inside": map[string]any{"values": v.Values}}, nil
	case condition.NotInside:
		return Wire{"NotInside": map[string]any{"values": v.Values}}, nil
	case condition.GreaterThan:
		return Wire{"GreaterThan": map[string]any{"value": v.Value}}, nil
	case condition.LessThan:
		return Wire{"LessThan": map[string]any{"value": v.Value}}, nil
	case condition.GTE:
		return Wire{"GreaterThanOrEqual": map[string]any{"value": v.Value}}, nil
	case condition.LTE:
		return Wire{"LessThanOrEqual": map[string]any{"value": v.Value}}, nil
	case condition.StringContains:
		return Wire{"StringContains": map[string]any{"value": v.Value, "ignoreCase": v.IgnoreCase}}, nil
	case condition.RawStringContains:
		return Wire{"RawStringContains": map[string]any{"value": v.Value, "ignoreCase": v.IgnoreCase}}, nil
	case condition.RegexMatches:
		return Wire{"RegexMatches": map[string]any{"pattern": v.Pattern, "ignoreCase": v.IgnoreCase}}, nil
	case condition.IntBitsClear:
		return Wire{"IntBitsClear": map[string]any{"mask": v.Mask}}, nil
	case condition.IntBitsSet:
		return Wire{"IntBitsSet": map[string]any{"mask": v.Mask}}, nil
	case condition.IntBitsAnyClear:
		return Wire{"IntBitsAnyClear": map[string]any{"mask": v.Mask}}, nil
	case condition.IntBitsAnySet:
		return Wire{"IntBitsAnySet": map[string]any{"mask": v.Mask}}, nil
	case condition.ListAllElements:
		return encodeElementCondition("ListAllElements", leaf, v.Condition)
	case condition.ListAnyElements:
		return encodeElementCondition("ListAnyElements", leaf, v.Condition)
	case condition.SetAllElements:
		return encodeElementCondition("SetAllElements", leaf, v.Condition)
	case condition.SetAnyElements:
		return encodeElementCondition("SetAnyElements", leaf, v.Condition)
	case condition.ListSizesEquals:
		return Wire{"ListSizesEquals": map[string]any{"size": v.Size}}, nil
	case condition.SetSizesEquals:
		return Wire{"SetSizesEquals": map[string]any{"size": v.Size}}, nil
	case condition.Exists:
		return Wire{"Exists": map[string]any{"key": v.Key}}, nil
	case condition.OnKey:
		innerEnc, err := EncodeCondition(elementLeaf(leaf), v.Condition)
		if err != nil {
			return nil, err
		}
		return Wire{"OnKey": map[string]any{"key": v.Key, "condition": innerEnc}}, nil
	case condition.OnField:
		child, err := EncodeCondition(v.Property.Serializer, v.Condition)
		if err != nil {
			return nil, err
		}
		return Wire{v.Property.Name: child}, nil
	case condition.IfNotNull:
		inner, err := EncodeCondition(leaf.WithNullable(false), v.Condition)
		if err != nil {
			return nil, err
		}
		return Wire{"IfNotNull": inner}, nil
	case condition.FullTextSearch:
		return Wire{"FullTextSearch": map[string]any{
			"query":       v.Query,
			"requireAll":  v.RequireAll,
			"levDistance": v.LevDistance,
		}}, nil
	case condition.GeoDistance:
		lat, lng := v.Center.Coordinates()
		return Wire{"GeoDistance": map[string]any{
			"center": map[string]any{"lat": lat, "lng": lng},
			"minKm":  v.MinKm,
			"maxKm":  v.MaxKm,
		}}, nil
	default:
		return nil, dberr.New(dberr.SerializationError, c.Tag(), fmt.Sprintf("no canonical encoding registered for %T", c))
	}
}

func encodeConditionList(leaf *descriptor.Descriptor, conds []condition.Condition) ([]any, error) {
	out := make([]any, len(conds))
	for i, c := range conds {
		enc, err := EncodeCondition(leaf, c)
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

func encodeElementCondition(tag string, leaf *descriptor.Descriptor, inner condition.Condition) (Wire, error) {
	enc, err := EncodeCondition(elementLeaf(leaf), inner)
	if err != nil {
		return nil, err
	}
	return Wire{tag: enc}, nil
}

// DecodeCondition parses a canonical single-key tagged object into a
// Condition, resolving legacy aliases and projecting an unrecognized
// tag as an OnField access against leaf's struct field of that name
// (spec §6 "polymorphic OnField projection").
func DecodeCondition(leaf *descriptor.Descriptor, raw Wire) (condition.Condition, error) {
	tag, payload, err := singleKey(raw)
	if err != nil {
		return nil, err
	}
	tag = resolveTag(conditionAliases, tag)

	switch tag {
	case "Never":
		return condition.Never{}, nil
	case "Always":
		return condition.Always{}, nil
	case "And":
		conds, err := decodeConditionArray(leaf, tag, payload)
		if err != nil {
			return nil, err
		}
		return condition.And{Conditions: conds}, nil
	case "Or":
		conds, err := decodeConditionArray(leaf, tag, payload)
		if err != nil {
			return nil, err
		}
		return condition.Or{Conditions: conds}, nil
	case "Not":
		inner, err := decodeConditionInner(leaf, tag, payload)
		if err != nil {
			return nil, err
		}
		return condition.Not{Condition: inner}, nil
	case "Equal", "NotEqual", "GreaterThan", "LessThan", "GreaterThanOrEqual", "LessThanOrEqual":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		val, err := fieldAny(tag, obj, "value")
		if err != nil {
			return nil, err
		}
		val = coerceScalar(leaf, val)
		switch tag {
		case "Equal":
			return condition.Equal{Value: val}, nil
		case "NotEqual":
			return condition.NotEqual{Value: val}, nil
		case "GreaterThan":
			return condition.GreaterThan{Value: val}, nil
		case "LessThan":
			return condition.LessThan{Value: val}, nil
		case "GreaterThanOrEqual":
			return condition.GTE{Value: val}, nil
		default:
			return condition.LTE{Value: val}, nil
		}
	case "Inside", "NotInside":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		values, err := fieldAnySlice(tag, obj, "values")
		if err != nil {
			return nil, err
		}
		values = coerceScalarSlice(leaf, values)
		if tag == "Inside" {
			return condition.Inside{Values: values}, nil
		}
		return condition.NotInside{Values: values}, nil
	case "StringContains", "RawStringContains":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		s, err := fieldString(tag, obj, "value")
		if err != nil {
			return nil, err
		}
		ic := fieldBool(obj, "ignoreCase", false)
		if tag == "StringContains" {
			return condition.StringContains{Value: s, IgnoreCase: ic}, nil
		}
		return condition.RawStringContains{Value: s, IgnoreCase: ic}, nil
	case "RegexMatches":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		p, err := fieldString(tag, obj, "pattern")
		if err != nil {
			return nil, err
		}
		return condition.RegexMatches{Pattern: p, IgnoreCase: fieldBool(obj, "ignoreCase", false)}, nil
	case "IntBitsClear", "IntBitsSet", "IntBitsAnyClear", "IntBitsAnySet":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		maskV, err := fieldAny(tag, obj, "mask")
		if err != nil {
			return nil, err
		}
		mask, err := toUint32(maskV)
		if err != nil {
			return nil, err
		}
		switch tag {
		case "IntBitsClear":
			return condition.IntBitsClear{Mask: mask}, nil
		case "IntBitsSet":
			return condition.IntBitsSet{Mask: mask}, nil
		case "IntBitsAnyClear":
			return condition.IntBitsAnyClear{Mask: mask}, nil
		default:
			return condition.IntBitsAnySet{Mask: mask}, nil
		}
	case "ListAllElements", "ListAnyElements", "SetAllElements", "SetAnyElements":
		inner, err := decodeConditionInner(elementLeaf(leaf), tag, payload)
		if err != nil {
			return nil, err
		}
		switch tag {
		case "ListAllElements":
			return condition.ListAllElements{Condition: inner}, nil
		case "ListAnyElements":
			return condition.ListAnyElements{Condition: inner}, nil
		case "SetAllElements":
			return condition.SetAllElements{Condition: inner}, nil
		default:
			return condition.SetAnyElements{Condition: inner}, nil
		}
	case "ListSizesEquals", "SetSizesEquals":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		size, err := fieldInt(tag, obj, "size")
		if err != nil {
			return nil, err
		}
		if tag == "ListSizesEquals" {
			return condition.ListSizesEquals{Size: size}, nil
		}
		return condition.SetSizesEquals{Size: size}, nil
	case "Exists":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		key, err := fieldString(tag, obj, "key")
		if err != nil {
			return nil, err
		}
		return condition.Exists{Key: key}, nil
	case "OnKey":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		key, err := fieldString(tag, obj, "key")
		if err != nil {
			return nil, err
		}
		condRaw, err := fieldAny(tag, obj, "condition")
		if err != nil {
			return nil, err
		}
		condWire, err := asWire(tag, condRaw)
		if err != nil {
			return nil, err
		}
		inner, err := DecodeCondition(elementLeaf(leaf), condWire)
		if err != nil {
			return nil, err
		}
		return condition.OnKey{Key: key, Condition: inner}, nil
	case "IfNotNull":
		inner, err := decodeConditionInner(leaf.WithNullable(false), tag, payload)
		if err != nil {
			return nil, err
		}
		return condition.IfNotNull{Condition: inner}, nil
	case "FullTextSearch":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		q, err := fieldString(tag, obj, "query")
		if err != nil {
			return nil, err
		}
		lev, err := fieldInt(tag, obj, "levDistance")
		if err != nil {
			return nil, err
		}
		return condition.FullTextSearch{Query: q, RequireAll: fieldBool(obj, "requireAll", false), LevDistance: lev}, nil
	case "GeoDistance":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		centerRaw, err := fieldAny(tag, obj, "center")
		if err != nil {
			return nil, err
		}
		centerObj, err := asObject(tag, centerRaw)
		if err != nil {
			return nil, err
		}
		latV, err := fieldAny(tag, centerObj, "lat")
		if err != nil {
			return nil, err
		}
		lngV, err := fieldAny(tag, centerObj, "lng")
		if err != nil {
			return nil, err
		}
		lat, err := toFloat(latV)
		if err != nil {
			return nil, err
		}
		lng, err := toFloat(lngV)
		if err != nil {
			return nil, err
		}
		minKm, _ := toFloat(obj["minKm"])
		maxKm, _ := toFloat(obj["maxKm"])
		return condition.GeoDistance{Center: condition.LatLng{Lat: lat, Lng: lng}, MinKm: minKm, MaxKm: maxKm}, nil
	default:
		prop, ok := leaf.FieldByName(tag)
		if !ok {
			return nil, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("unrecognized condition tag %q for %s", tag, leaf.SerialName))
		}
		childWire, err := asWire(tag, payload)
		if err != nil {
			return nil, err
		}
		inner, err := DecodeCondition(prop.Serializer, childWire)
		if err != nil {
			return nil, err
		}
		return condition.OnField{Property: prop, Condition: inner}, nil
	}
}

func decodeConditionInner(leaf *descriptor.Descriptor, tag string, payload any) (condition.Condition, error) {
	w, err := asWire(tag, payload)
	if err != nil {
		return nil, err
	}
	return DecodeCondition(leaf, w)
}

func decodeConditionArray(leaf *descriptor.Descriptor, tag string, payload any) ([]condition.Condition, error) {
	arr, ok := payload.([]any)
	if !ok {
		return nil, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("%q expects an array payload, got %T", tag, payload))
	}
	out := make([]condition.Condition, len(arr))
	for i, item := range arr {
		w, err := asWire(tag, item)
		if err != nil {
			return nil, err
		}
		c, err := DecodeCondition(leaf, w)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	default:
		return 0, dberr.New(dberr.SerializationError, "", fmt.Sprintf("expected a number, got %T", v))
	}
}
