package codec

import (
	"fmt"

	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/dberr"
	"github.com/oxhq/queryalgebra/descriptor"
	"github.com/oxhq/queryalgebra/modification"
)

var modificationAliases = map[string]string{
	"Set":        "Assign",
	"Inc":        "Increment",
	"Mul":        "Multiply",
	"AtMost":     "CoerceAtMost",
	"AtLeast":    "CoerceAtLeast",
	"AppendList": "ListAppend",
	"AppendSet":  "SetAppend",
	"RemoveList": "ListRemove",
	"RemoveSet":  "SetRemove",
	"DropFirst":  "ListDropFirst",
	"DropLast":   "ListDropLast",
	"MapModify":  "ModifyByKey",
	"MapRemove":  "RemoveKeys",
}

// EncodeModification renders m as a canonical single-key tagged object
// against leaf, mirroring EncodeCondition's shape (spec §4.5/§6).
func EncodeModification(leaf *descriptor.Descriptor, m modification.Modification) (Wire, error) {
	switch v := m.(type) {
	case modification.Nothing:
		return Wire{"Nothing": true}, nil
	case modification.Chain:
		inner := make([]any, len(v.Modifications))
		for i, sub := range v.Modifications {
			enc, err := EncodeModification(leaf, sub)
			if err != nil {
				return nil, err
			}
			inner[i] = enc
		}
		return Wire{"Chain": inner}, nil
	case modification.Assign:
		return Wire{"Assign": map[string]any{"value": v.Value}}, nil
	case modification.IfNotNull:
		inner, err := EncodeModification(leaf.WithNullable(false), v.Modification)
		if err != nil {
			return nil, err
		}
		return Wire{"IfNotNull": inner}, nil
	case modification.CoerceAtMost:
		return Wire{"CoerceAtMost": map[string]any{"value": v.Value}}, nil
	case modification.CoerceAtLeast:
		return Wire{"CoerceAtLeast": map[string]any{"value": v.Value}}, nil
	case modification.Increment:
		return Wire{"Increment": map[string]any{"delta": v.Delta}}, nil
	case modification.Multiply:
		return Wire{"Multiply": map[string]any{"factor": v.Factor}}, nil
	case modification.AppendString:
		return Wire{"AppendString": map[string]any{"value": v.Value}}, nil
	case modification.AppendRawString:
		return Wire{"AppendRawString": map[string]any{"value": v.Value}}, nil
	case modification.ListAppend:
		return Wire{"ListAppend": map[string]any{"items": v.Items}}, nil
	case modification.SetAppend:
		return Wire{"SetAppend": map[string]any{"items": v.Items}}, nil
	case modification.ListRemove:
		inner, err := EncodeCondition(elementLeaf(leaf), v.Condition)
		if err != nil {
			return nil, err
		}
		return Wire{"ListRemove": map[string]any{"condition": inner}}, nil
	case modification.SetRemove:
		inner, err := EncodeCondition(elementLeaf(leaf), v.Condition)
		if err != nil {
			return nil, err
		}
		return Wire{"SetRemove": map[string]any{"condition": inner}}, nil
	case modification.ListRemoveInstances:
		return Wire{"ListRemoveInstances": map[string]any{"items": v.Items}}, nil
	case modification.SetRemoveInstances:
		return Wire{"SetRemoveInstances": map[string]any{"items": v.Items}}, nil
	case modification.ListDropFirst:
		return Wire{"ListDropFirst": true}, nil
	case modification.ListDropLast:
		return Wire{"ListDropLast": true}, nil
	case modification.SetDropFirst:
		return Wire{"SetDropFirst": true}, nil
	case modification.SetDropLast:
		return Wire{"SetDropLast": true}, nil
	case modification.ListPerElement:
		return encodePerElement("ListPerElement", leaf, v.Condition, v.Modification)
	case modification.SetPerElement:
		return encodePerElement("SetPerElement", leaf, v.Condition, v.Modification)
	case modification.Combine:
		return Wire{"Combine": map[string]any{"values": v.Values}}, nil
	case modification.ModifyByKey:
		byKey := make(map[string]any, len(v.ByKey))
		for k, sub := range v.ByKey {
			enc, err := EncodeModification(elementLeaf(leaf), sub)
			if err != nil {
				return nil, err
			}
			byKey[k] = enc
		}
		return Wire{"ModifyByKey": map[string]any{"byKey": byKey}}, nil
	case modification.RemoveKeys:
		return Wire{"RemoveKeys": map[string]any{"keys": toAnySlice(v.Keys)}}, nil
	case modification.OnField:
		child, err := EncodeModification(v.Property.Serializer, v.Modification)
		if err != nil {
			return nil, err
		}
		return Wire{v.Property.Name: child}, nil
	default:
		return nil, dberr.New(dberr.SerializationError, m.Tag(), fmt.Sprintf("no canonical encoding registered for %T", m))
	}
}

func encodePerElement(tag string, leaf *descriptor.Descriptor, cond condition.Condition, mod modification.Modification) (Wire, error) {
	elemLeaf := elementLeaf(leaf)
	encCond, err := EncodeCondition(elemLeaf, cond)
	if err != nil {
		return nil, err
	}
	encMod, err := EncodeModification(elemLeaf, mod)
	if err != nil {
		return nil, err
	}
	return Wire{tag: map[string]any{"condition": encCond, "modification": encMod}}, nil
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// DecodeModification parses a canonical single-key tagged object into
// a Modification, resolving aliases and projecting unrecognized tags
// as OnField against leaf's matching struct field.
func DecodeModification(leaf *descriptor.Descriptor, raw Wire) (modification.Modification, error) {
	tag, payload, err := singleKey(raw)
	if err != nil {
		return nil, err
	}
	tag = resolveTag(modificationAliases, tag)

	switch tag {
	case "Nothing":
		return modification.Nothing{}, nil
	case "Chain":
		arr, ok := payload.([]any)
		if !ok {
			return nil, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("%q expects an array payload, got %T", tag, payload))
		}
		ops := make([]modification.Modification, len(arr))
		for i, item := range arr {
			w, err := asWire(tag, item)
			if err != nil {
				return nil, err
			}
			op, err := DecodeModification(leaf, w)
			if err != nil {
				return nil, err
			}
			ops[i] = op
		}
		return modification.Chain{Modifications: ops}, nil
	case "Assign":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		v, err := fieldAny(tag, obj, "value")
		if err != nil {
			return nil, err
		}
		return modification.Assign{Value: coerceScalar(leaf, v)}, nil
	case "IfNotNull":
		w, err := asWire(tag, payload)
		if err != nil {
			return nil, err
		}
		inner, err := DecodeModification(leaf.WithNullable(false), w)
		if err != nil {
			return nil, err
		}
		return modification.IfNotNull{Modification: inner}, nil
	case "CoerceAtMost", "CoerceAtLeast":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		v, err := fieldAny(tag, obj, "value")
		if err != nil {
			return nil, err
		}
		v = coerceScalar(leaf, v)
		if tag == "CoerceAtMost" {
			return modification.CoerceAtMost{Value: v}, nil
		}
		return modification.CoerceAtLeast{Value: v}, nil
	case "Increment":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		v, err := fieldAny(tag, obj, "delta")
		if err != nil {
			return nil, err
		}
		return modification.Increment{Delta: coerceScalar(leaf, v)}, nil
	case "Multiply":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		v, err := fieldAny(tag, obj, "factor")
		if err != nil {
			return nil, err
		}
		return modification.Multiply{Factor: coerceScalar(leaf, v)}, nil
	case "AppendString":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		s, err := fieldString(tag, obj, "value")
		if err != nil {
			return nil, err
		}
		return modification.AppendString{Value: s}, nil
	case "AppendRawString":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		s, err := fieldString(tag, obj, "value")
		if err != nil {
			return nil, err
		}
		return modification.AppendRawString{Value: s}, nil
	case "ListAppend", "SetAppend":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		items, err := fieldAnySlice(tag, obj, "items")
		if err != nil {
			return nil, err
		}
		items = coerceScalarSlice(elementLeaf(leaf), items)
		if tag == "ListAppend" {
			return modification.ListAppend{Items: items}, nil
		}
		return modification.SetAppend{Items: items}, nil
	case "ListRemove", "SetRemove":
		obj, err := asObject(tag, payload)
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
		if tag == "ListRemove" {
			return modification.ListRemove{Condition: inner}, nil
		}
		return modification.SetRemove{Condition: inner}, nil
	case "ListRemoveInstances", "SetRemoveInstances":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		items, err := fieldAnySlice(tag, obj, "items")
		if err != nil {
			return nil, err
		}
		items = coerceScalarSlice(elementLeaf(leaf), items)
		if tag == "ListRemoveInstances" {
			return modification.ListRemoveInstances{Items: items}, nil
		}
		return modification.SetRemoveInstances{Items: items}, nil
	case "ListDropFirst":
		return modification.ListDropFirst{}, nil
	case "ListDropLast":
		return modification.ListDropLast{}, nil
	case "SetDropFirst":
		return modification.SetDropFirst{}, nil
	case "SetDropLast":
		return modification.SetDropLast{}, nil
	case "ListPerElement", "SetPerElement":
		elemLeaf := elementLeaf(leaf)
		obj, err := asObject(tag, payload)
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
		cond, err := DecodeCondition(elemLeaf, condWire)
		if err != nil {
			return nil, err
		}
		modRaw, err := fieldAny(tag, obj, "modification")
		if err != nil {
			return nil, err
		}
		modWire, err := asWire(tag, modRaw)
		if err != nil {
			return nil, err
		}
		mod, err := DecodeModification(elemLeaf, modWire)
		if err != nil {
			return nil, err
		}
		if tag == "ListPerElement" {
			return modification.ListPerElement{Condition: cond, Modification: mod}, nil
		}
		return modification.SetPerElement{Condition: cond, Modification: mod}, nil
	case "Combine":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		values, err := fieldAny(tag, obj, "values")
		if err != nil {
			return nil, err
		}
		valuesMap, ok := values.(map[string]any)
		if !ok {
			return nil, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("%q.values must be an object, got %T", tag, values))
		}
		return modification.Combine{Values: valuesMap}, nil
	case "ModifyByKey":
		elemLeaf := elementLeaf(leaf)
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		byKeyRaw, err := fieldAny(tag, obj, "byKey")
		if err != nil {
			return nil, err
		}
		byKeyMap, ok := byKeyRaw.(map[string]any)
		if !ok {
			return nil, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("%q.byKey must be an object, got %T", tag, byKeyRaw))
		}
		out := make(map[string]modification.Modification, len(byKeyMap))
		for k, v := range byKeyMap {
			w, err := asWire(tag, v)
			if err != nil {
				return nil, err
			}
			sub, err := DecodeModification(elemLeaf, w)
			if err != nil {
				return nil, err
			}
			out[k] = sub
		}
		return modification.ModifyByKey{ByKey: out}, nil
	case "RemoveKeys":
		obj, err := asObject(tag, payload)
		if err != nil {
			return nil, err
		}
		keysRaw, err := fieldAnySlice(tag, obj, "keys")
		if err != nil {
			return nil, err
		}
		keys := make([]string, len(keysRaw))
		for i, k := range keysRaw {
			s, ok := k.(string)
			if !ok {
				return nil, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("%q.keys[%d] must be a string, got %T", tag, i, k))
			}
			keys[i] = s
		}
		return modification.RemoveKeys{Keys: keys}, nil
	default:
		prop, ok := leaf.FieldByName(tag)
		if !ok {
			return nil, dberr.New(dberr.SerializationError, tag, fmt.Sprintf("unrecognized modification tag %q for %s", tag, leaf.SerialName))
		}
		w, err := asWire(tag, payload)
		if err != nil {
			return nil, err
		}
		inner, err := DecodeModification(prop.Serializer, w)
		if err != nil {
			return nil, err
		}
		return modification.OnField{Property: prop, Modification: inner}, nil
	}
}
