// Package filter builds the role-scoped predicates that decide which
// proposals a caller sees in a panel.
package filter

import (
	"strings"

	"fdpg_backend/internal/proposals/document"
)

// Op is a predicate operator.
type Op string

const (
	OpEq        Op = "eq"
	OpIn        Op = "in"
	OpContains  Op = "contains"
	OpElemMatch Op = "elemMatch"
	OpAnd       Op = "and"
	OpOr        Op = "or"
)

// Predicate is a storage-independent boolean expression over a proposal
// document. Field and Inner are dotted paths.
type Predicate struct {
	Op       Op
	Field    string
	Inner    string
	Value    string
	Values   []string
	Children []Predicate
}

// Eq matches documents whose field equals value.
func Eq(field, value string) Predicate {
	return Predicate{Op: OpEq, Field: field, Value: value}
}

// In matches documents whose field is one of values.
func In(field string, values ...string) Predicate {
	return Predicate{Op: OpIn, Field: field, Values: values}
}

// Contains matches documents whose array field holds value.
func Contains(field, value string) Predicate {
	return Predicate{Op: OpContains, Field: field, Value: value}
}

// ElemMatch matches documents with an element of the array field whose inner
// path equals value.
func ElemMatch(field, inner, value string) Predicate {
	return Predicate{Op: OpElemMatch, Field: field, Inner: inner, Value: value}
}

// And is the conjunction of children.
func And(children ...Predicate) Predicate {
	return Predicate{Op: OpAnd, Children: children}
}

// Or is the disjunction of children.
func Or(children ...Predicate) Predicate {
	return Predicate{Op: OpOr, Children: children}
}

// Path splits a dotted field into its segments.
func Path(field string) []string {
	return strings.Split(field, ".")
}

// Match evaluates pred against doc.
func Match(pred Predicate, doc document.Document) bool {
	switch pred.Op {
	case OpEq:
		v, ok := lookupString(doc, pred.Field)
		return ok && v == pred.Value
	case OpIn:
		v, ok := lookupString(doc, pred.Field)
		if !ok {
			return false
		}
		for _, candidate := range pred.Values {
			if v == candidate {
				return true
			}
		}
		return false
	case OpContains:
		raw, _ := document.Lookup(doc, Path(pred.Field)...)
		items, _ := raw.([]any)
		for _, item := range items {
			if s, ok := item.(string); ok && s == pred.Value {
				return true
			}
		}
		return false
	case OpElemMatch:
		raw, _ := document.Lookup(doc, Path(pred.Field)...)
		items, _ := raw.([]any)
		for _, item := range items {
			obj, ok := document.AsObject(item)
			if !ok {
				continue
			}
			if v, ok := lookupString(obj, pred.Inner); ok && v == pred.Value {
				return true
			}
		}
		return false
	case OpAnd:
		for _, child := range pred.Children {
			if !Match(child, doc) {
				return false
			}
		}
		return true
	case OpOr:
		for _, child := range pred.Children {
			if Match(child, doc) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func lookupString(doc document.Document, field string) (string, bool) {
	raw, ok := document.Lookup(doc, Path(field)...)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
