// Package memcollection is a minimal in-memory store exercising
// Condition.Apply and Modification.Apply end to end over a plain Go
// slice, distinct from a backend translator (out of scope per
// spec's Non-goals): every operation here runs the algebra directly,
// the way a unit test would, never compiling it to a foreign query
// language.
package memcollection

import (
	"fmt"

	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/modification"
)

// Collection is an ordered, in-memory sequence of records of type T.
// It never stores a Descriptor of its own: callers pass whatever
// Condition/Modification they built against T's descriptor.
type Collection[T any] struct {
	items []T
}

// New wraps records in a Collection, copying the slice so later
// mutation of the caller's backing array cannot surface through it.
func New[T any](records []T) *Collection[T] {
	cp := make([]T, len(records))
	copy(cp, records)
	return &Collection[T]{items: cp}
}

// Len reports the current record count.
func (c *Collection[T]) Len() int { return len(c.items) }

// All returns a defensive copy of the full record set in insertion
// order.
func (c *Collection[T]) All() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns every record for which cond.Apply holds, preserving
// insertion order.
func (c *Collection[T]) Find(cond condition.Condition) ([]T, error) {
	var out []T
	for _, item := range c.items {
		ok, err := cond.Apply(item)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// Count returns the number of records matching cond, without
// allocating a result slice.
func (c *Collection[T]) Count(cond condition.Condition) (int, error) {
	n := 0
	for _, item := range c.items {
		ok, err := cond.Apply(item)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Insert appends records to the collection and returns the new total
// count.
func (c *Collection[T]) Insert(records ...T) int {
	c.items = append(c.items, records...)
	return len(c.items)
}

// UpdateWhere applies mod.Apply to every record matching cond,
// replacing it in place, and returns how many records were touched.
// Non-matching records are left untouched and unallocated.
func (c *Collection[T]) UpdateWhere(cond condition.Condition, mod modification.Modification) (int, error) {
	touched := 0
	for i, item := range c.items {
		ok, err := cond.Apply(item)
		if err != nil {
			return touched, err
		}
		if !ok {
			continue
		}
		nv, err := mod.Apply(item)
		if err != nil {
			return touched, err
		}
		typed, ok := nv.(T)
		if !ok {
			return touched, errNotSameType(nv)
		}
		c.items[i] = typed
		touched++
	}
	return touched, nil
}

// DeleteWhere removes every record matching cond and returns how many
// were removed. Relative order of the surviving records is preserved.
func (c *Collection[T]) DeleteWhere(cond condition.Condition) (int, error) {
	out := c.items[:0:0]
	removed := 0
	for _, item := range c.items {
		ok, err := cond.Apply(item)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
			continue
		}
		out = append(out, item)
	}
	c.items = out
	return removed, nil
}

func errNotSameType(v any) error {
	return typeMismatchError{got: v}
}

type typeMismatchError struct{ got any }

func (e typeMismatchError) Error() string {
	return fmt.Sprintf("memcollection: modification produced a %T, expected the collection's record type", e.got)
}
