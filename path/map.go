package path

import (
	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/modification"
)

// MapCondition wraps inner so it evaluates against the leaf this path
// resolves to, by folding the path's steps from the leaf back to the
// root (spec §4.2): Access becomes OnField, NotNull becomes
// IfNotNull, and ListElements/SetElements becomes a
// universal (all-elements) quantifier.
func (p *Path) MapCondition(inner condition.Condition) condition.Condition {
	cur := inner
	for i := len(p.steps) - 1; i >= 0; i-- {
		s := p.steps[i]
		switch s.kind {
		case stepAccess:
			cur = condition.OnField{Property: s.prop, Condition: cur}
		case stepNotNull:
			cur = condition.IfNotNull{Condition: cur}
		case stepListElements:
			cur = condition.ListAllElements{Condition: cur}
		case stepSetElements:
			cur = condition.SetAllElements{Condition: cur}
		}
	}
	return cur
}

// MapModification wraps inner so it transforms only the leaf this path
// resolves to, leaving the rest of the record untouched, by folding the
// path's steps from the leaf back to the root (spec §4.2): Access
// becomes OnField, NotNull becomes IfNotNull, and ListElements/
// SetElements becomes a per-element map guarded by Always.
func (p *Path) MapModification(inner modification.Modification) modification.Modification {
	cur := inner
	for i := len(p.steps) - 1; i >= 0; i-- {
		s := p.steps[i]
		switch s.kind {
		case stepAccess:
			cur = modification.OnField{Property: s.prop, Modification: cur}
		case stepNotNull:
			cur = modification.IfNotNull{Modification: cur}
		case stepListElements:
			cur = modification.ListPerElement{Condition: condition.Always{}, Modification: cur}
		case stepSetElements:
			cur = modification.SetPerElement{Condition: condition.Always{}, Modification: cur}
		}
	}
	return cur
}
