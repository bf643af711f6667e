// Package predicate is the external collaborator the spec excludes from its
// core: a pure expression evaluator over a record and the schema it was
// read with. The record store only depends on the Predicate function type
// below, never on how a predicate was built.
package predicate

import (
	"github.com/arcdb/arcdb/internal/record"
	"github.com/arcdb/arcdb/internal/value"
)

// Predicate evaluates to true or false for one record under its schema. It
// must be pure: no I/O, no mutation.
type Predicate func(s record.Schema, r record.Record) bool

// True matches every record; used for full-table scans.
func True(record.Schema, record.Record) bool { return true }

// Equals builds a predicate matching records whose attribute attrIdx
// equals want.
func Equals(attrIdx int, want value.Value) Predicate {
	return func(_ record.Schema, r record.Record) bool {
		return r.Values[attrIdx].Equal(want)
	}
}

// And combines predicates with logical conjunction, short-circuiting left
// to right.
func And(preds ...Predicate) Predicate {
	return func(s record.Schema, r record.Record) bool {
		for _, p := range preds {
			if !p(s, r) {
				return false
			}
		}
		return true
	}
}
