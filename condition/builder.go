package condition

// IfThen is material implication: (if_ and then_) or not if_.
func IfThen(if_, then_ Condition) Condition {
	return Or{Conditions: []Condition{
		And{Conditions: []Condition{if_, then_}},
		Not{Condition: if_},
	}}
}

// IfThenElse dispatches to then_ or else_ depending on if_.
func IfThenElse(if_, then_, else_ Condition) Condition {
	return Or{Conditions: []Condition{
		And{Conditions: []Condition{if_, then_}},
		And{Conditions: []Condition{Not{Condition: if_}, else_}},
	}}
}

// AndNotNull flattens the non-nil conditions and conjoins them. An
// empty result is Always (vacuous truth); a singleton is returned
// unwrapped.
func AndNotNull(conds ...Condition) Condition {
	filtered := filterNotNull(conds)
	switch len(filtered) {
	case 0:
		return Always{}
	case 1:
		return filtered[0]
	default:
		return And{Conditions: filtered}
	}
}

// OrNotNull flattens the non-nil conditions and disjoins them. An empty
// result is Never.
func OrNotNull(conds ...Condition) Condition {
	filtered := filterNotNull(conds)
	switch len(filtered) {
	case 0:
		return Never{}
	case 1:
		return filtered[0]
	default:
		return Or{Conditions: filtered}
	}
}

func filterNotNull(conds []Condition) []Condition {
	var out []Condition
	for _, c := range conds {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Builder accumulates leaf/path-scoped conditions with infix-style
// method chaining, mirroring the teacher's rule-config builder shape
// (model.ModificationConfig accumulating flags before Apply). Build()
// folds the accumulated conditions into a single And (or Always if
// empty, the singleton unwrapped otherwise).
type Builder struct {
	conds []Condition
}

// NewBuilder starts an empty condition builder.
func NewBuilder() *Builder { return &Builder{} }

// Add appends a condition to the conjunction under construction.
func (b *Builder) Add(c Condition) *Builder {
	b.conds = append(b.conds, c)
	return b
}

// Build folds the accumulated conditions per spec §4.3's "and" rule.
func (b *Builder) Build() Condition {
	switch len(b.conds) {
	case 0:
		return Always{}
	case 1:
		return b.conds[0]
	default:
		return And{Conditions: append([]Condition(nil), b.conds...)}
	}
}
