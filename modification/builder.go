package modification

import "github.com/oxhq/queryalgebra/condition"

// Builder accumulates operations with the infix-style chaining spec
// §4.4 describes (assign, numeric +=/*=, string +=, list/set +=/-=,
// coerce_at_most/coerce_at_least, for_each/for_each_if, map
// modify_by_key/remove_keys). Build() emits Nothing when empty, a
// singleton element directly, or a Chain otherwise.
type Builder struct {
	ops []Modification
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Append(m Modification) *Builder {
	b.ops = append(b.ops, m)
	return b
}

func (b *Builder) Assign(v any) *Builder { return b.Append(Assign{Value: v}) }

func (b *Builder) Increment(delta any) *Builder { return b.Append(Increment{Delta: delta}) }

func (b *Builder) Multiply(factor any) *Builder { return b.Append(Multiply{Factor: factor}) }

func (b *Builder) CoerceAtMost(v any) *Builder { return b.Append(CoerceAtMost{Value: v}) }

func (b *Builder) CoerceAtLeast(v any) *Builder { return b.Append(CoerceAtLeast{Value: v}) }

func (b *Builder) AppendString(s string) *Builder { return b.Append(AppendString{Value: s}) }

func (b *Builder) ListAppend(items ...any) *Builder { return b.Append(ListAppend{Items: items}) }

func (b *Builder) SetAppend(items ...any) *Builder { return b.Append(SetAppend{Items: items}) }

func (b *Builder) ListRemoveInstances(items ...any) *Builder {
	return b.Append(ListRemoveInstances{Items: items})
}

func (b *Builder) SetRemoveInstances(items ...any) *Builder {
	return b.Append(SetRemoveInstances{Items: items})
}

// ForEach is spec's "for_each": map every element via m.
func (b *Builder) ForEach(m Modification) *Builder {
	return b.Append(ListPerElement{Condition: condition.Always{}, Modification: m})
}

// ForEachIf is spec's "for_each_if": map only elements matching cond.
func (b *Builder) ForEachIf(cond condition.Condition, m Modification) *Builder {
	return b.Append(ListPerElement{Condition: cond, Modification: m})
}

func (b *Builder) ModifyByKey(byKey map[string]Modification) *Builder {
	return b.Append(ModifyByKey{ByKey: byKey})
}

func (b *Builder) RemoveKeys(keys ...string) *Builder {
	return b.Append(RemoveKeys{Keys: keys})
}

// Build folds the accumulated operations: an empty builder returns
// Nothing, a singleton returns its sole element directly; otherwise a
// Chain (spec §4.4).
func (b *Builder) Build() Modification {
	switch len(b.ops) {
	case 0:
		return Nothing{}
	case 1:
		return b.ops[0]
	default:
		return Chain{Modifications: append([]Modification(nil), b.ops...)}
	}
}
