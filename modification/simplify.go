package modification

import "github.com/oxhq/queryalgebra/condition"

// Simplify normalizes a Modification by bottom-up rewriting (spec
// §4.4, §9 "Assign-dominance"). It is semantics-preserving:
// Simplify(m).Apply(x) == m.Apply(x) for every x.
func Simplify(m Modification) Modification {
	switch v := m.(type) {
	case Chain:
		return simplifyChain(v.Modifications)
	case OnField:
		return OnField{Property: v.Property, Modification: Simplify(v.Modification)}
	case IfNotNull:
		return IfNotNull{Modification: Simplify(v.Modification)}
	case ListPerElement:
		return ListPerElement{Condition: v.Condition, Modification: Simplify(v.Modification)}
	case SetPerElement:
		return SetPerElement{Condition: v.Condition, Modification: Simplify(v.Modification)}
	case ModifyByKey:
		out := make(map[string]Modification, len(v.ByKey))
		for k, sub := range v.ByKey {
			out[k] = Simplify(sub)
		}
		return ModifyByKey{ByKey: out}
	default:
		return m
	}
}

// simplifyChain implements the four Chain rules from spec §4.4:
// flatten nested Chains, discard Nothing, fold everything after the
// last Assign into that Assign, otherwise group sibling OnField
// operations by property and recurse.
func simplifyChain(ops []Modification) Modification {
	flat := flattenAndDropNothing(ops)
	if len(flat) == 0 {
		return Nothing{}
	}

	if lastAssign, idx := lastAssignIndex(flat); idx >= 0 {
		value := lastAssign.Value
		for _, after := range flat[idx+1:] {
			nv, err := after.Apply(value)
			if err != nil {
				// A failing fold means the tail cannot be eagerly
				// applied to the literal; keep the chain as-is rather
				// than silently dropping a step that errors.
				return rebuildChain(flat)
			}
			value = nv
		}
		return Assign{Value: value}
	}

	grouped := groupOnFieldSiblings(flat)
	return rebuildChain(grouped)
}

func flattenAndDropNothing(ops []Modification) []Modification {
	var out []Modification
	for _, op := range ops {
		switch v := op.(type) {
		case Nothing:
			continue
		case Chain:
			out = append(out, flattenAndDropNothing(v.Modifications)...)
		default:
			out = append(out, op)
		}
	}
	return out
}

func lastAssignIndex(ops []Modification) (Assign, int) {
	for i := len(ops) - 1; i >= 0; i-- {
		if a, ok := ops[i].(Assign); ok {
			return a, i
		}
	}
	return Assign{}, -1
}

// groupOnFieldSiblings merges consecutive OnField operations that
// target the same property into one OnField wrapping their combined,
// recursively-simplified inner Chain, preserving relative order
// otherwise.
func groupOnFieldSiblings(ops []Modification) []Modification {
	var out []Modification
	i := 0
	for i < len(ops) {
		of, ok := ops[i].(OnField)
		if !ok {
			out = append(out, Simplify(ops[i]))
			i++
			continue
		}
		inner := []Modification{of.Modification}
		j := i + 1
		for j < len(ops) {
			next, ok := ops[j].(OnField)
			if !ok || next.Property.Name != of.Property.Name {
				break
			}
			inner = append(inner, next.Modification)
			j++
		}
		out = append(out, OnField{Property: of.Property, Modification: simplifyChain(inner)})
		i = j
	}
	return out
}

func rebuildChain(ops []Modification) Modification {
	switch len(ops) {
	case 0:
		return Nothing{}
	case 1:
		return ops[0]
	default:
		return Chain{Modifications: ops}
	}
}

// Affects reports whether m potentially writes the sub-record under
// the property chain path (spec §4.4), where path is the ordered field
// names from root to the sub-record under question. True if m touches
// any ancestor of, equal to, or descendant of path.
func Affects(m Modification, path []string) bool {
	return affects(m, path)
}

func affects(m Modification, path []string) bool {
	switch v := m.(type) {
	case Nothing:
		return false
	case Assign:
		return true // replaces the whole value: touches everything under it
	case Chain:
		for _, sub := range v.Modifications {
			if affects(sub, path) {
				return true
			}
		}
		return false
	case IfNotNull:
		return affects(v.Modification, path)
	case OnField:
		if len(path) == 0 {
			return true // an ancestor write touches this sub-record
		}
		if path[0] != v.Property.Name {
			return false
		}
		return affects(v.Modification, path[1:])
	case ListPerElement:
		return affects(v.Modification, path)
	case SetPerElement:
		return affects(v.Modification, path)
	case ModifyByKey:
		for _, sub := range v.ByKey {
			if affects(sub, path) {
				return true
			}
		}
		return false
	case Combine, RemoveKeys, ListAppend, SetAppend, ListRemove, SetRemove,
		ListRemoveInstances, SetRemoveInstances, ListDropFirst, ListDropLast,
		SetDropFirst, SetDropLast, Increment, Multiply, CoerceAtMost,
		CoerceAtLeast, AppendString, AppendRawString:
		return len(path) == 0
	default:
		return len(path) == 0
	}
}

// GuaranteedAfter is a best-effort static check: does cond hold on
// m.Apply(x) regardless of x? Only Assign-dominated modifications, and
// OnField modifications paired with an OnField condition on the same
// property, can answer affirmatively; everything else is conservatively
// false (spec §4.4).
func GuaranteedAfter(m Modification, cond condition.Condition) bool {
	switch v := m.(type) {
	case Assign:
		ok, err := cond.Apply(v.Value)
		return err == nil && ok
	case Chain:
		simplified := Simplify(v)
		if a, ok := simplified.(Assign); ok {
			ok2, err := cond.Apply(a.Value)
			return err == nil && ok2
		}
		return false
	case OnField:
		c, ok := cond.(condition.OnField)
		if !ok || c.Property.Name != v.Property.Name {
			return false
		}
		return GuaranteedAfter(v.Modification, c.Condition)
	default:
		return false
	}
}
