// Package filter implements the restricted metadata predicate language used
// to narrow search results. Caller input is parsed into an expression tree
// over a fixed set of note fields and evaluated in-process; it is never
// interpolated into SQL.
//
// The language supports comparisons on status, priority, due, tags, title,
// folder, and path, combined with AND, OR, NOT, and parentheses:
//
//	status='active' AND priority<=2
//	due<'2026-03-01' OR tags HAS 'urgent'
//	NOT (folder='archive' OR status='done')
//
// Comparison operators are = != < <= > >= plus HAS for tag membership.
// Values may be quoted with single or double quotes; bare words and numbers
// need no quotes. Evaluation follows SQL three-valued logic: a comparison on
// a field the note does not carry is unknown, and a predicate that is unknown
// at the top level does not match.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/loupe-search/loupe/internal/models"
)

// Fields lists the note fields a predicate may reference.
var Fields = []string{"status", "priority", "due", "tags", "title", "folder", "path"}

// Expression is a parsed metadata predicate, safe to evaluate against
// arbitrary note metadata.
type Expression struct {
	root node
}

// Eval reports whether the note satisfies the predicate. A nil note stands
// for a chunk with no metadata row; every field comparison on it is unknown,
// so only vacuous predicates match.
func (e *Expression) Eval(note *models.Note) bool {
	return e.root.eval(note) == ternTrue
}

// String returns a normalized form of the predicate.
func (e *Expression) String() string {
	return e.root.String()
}

// ternary is a three-valued truth value with SQL NULL semantics.
type ternary int8

const (
	ternFalse ternary = iota
	ternTrue
	ternUnknown
)

type node interface {
	eval(n *models.Note) ternary
	String() string
}

type andNode struct {
	left, right node
}

func (a *andNode) eval(n *models.Note) ternary {
	l, r := a.left.eval(n), a.right.eval(n)
	switch {
	case l == ternFalse || r == ternFalse:
		return ternFalse
	case l == ternUnknown || r == ternUnknown:
		return ternUnknown
	}
	return ternTrue
}

func (a *andNode) String() string {
	return fmt.Sprintf("(%s AND %s)", a.left, a.right)
}

type orNode struct {
	left, right node
}

func (o *orNode) eval(n *models.Note) ternary {
	l, r := o.left.eval(n), o.right.eval(n)
	switch {
	case l == ternTrue || r == ternTrue:
		return ternTrue
	case l == ternUnknown || r == ternUnknown:
		return ternUnknown
	}
	return ternFalse
}

func (o *orNode) String() string {
	return fmt.Sprintf("(%s OR %s)", o.left, o.right)
}

type notNode struct {
	inner node
}

func (nn *notNode) eval(n *models.Note) ternary {
	switch nn.inner.eval(n) {
	case ternTrue:
		return ternFalse
	case ternFalse:
		return ternTrue
	}
	return ternUnknown
}

func (nn *notNode) String() string {
	return fmt.Sprintf("NOT %s", nn.inner)
}

// condNode is a single field comparison.
type condNode struct {
	field string
	op    string
	value string
}

func (c *condNode) eval(n *models.Note) ternary {
	if n == nil {
		return ternUnknown
	}
	if c.op == opHas {
		for _, tag := range n.Tags {
			if strings.EqualFold(tag, c.value) {
				return ternTrue
			}
		}
		return ternFalse
	}
	have, ok := noteField(n, c.field)
	if !ok {
		return ternUnknown
	}
	var match bool
	switch c.field {
	case "due":
		match = compareDates(have, c.op, c.value)
	case "priority":
		match = compareNumericAware(have, c.op, c.value)
	default:
		match = compareStrings(have, c.op, c.value)
	}
	if match {
		return ternTrue
	}
	return ternFalse
}

func (c *condNode) String() string {
	if c.op == opHas {
		return fmt.Sprintf("%s HAS '%s'", c.field, c.value)
	}
	return fmt.Sprintf("%s%s'%s'", c.field, c.op, c.value)
}

// noteField returns the named scalar field. Empty means the indexer had no
// front-matter value, which is treated as absent.
func noteField(n *models.Note, field string) (string, bool) {
	var v string
	switch field {
	case "status":
		v = n.Status
	case "priority":
		v = n.Priority
	case "due":
		v = n.Due
	case "title":
		v = n.Title
	case "folder":
		v = n.Folder
	case "path":
		v = n.Path
	}
	return v, v != ""
}

func compareStrings(have, op, want string) bool {
	switch op {
	case "=":
		return have == want
	case "!=":
		return have != want
	case "<":
		return have < want
	case "<=":
		return have <= want
	case ">":
		return have > want
	case ">=":
		return have >= want
	}
	return false
}

// compareNumericAware compares numerically when both sides parse as numbers,
// so priority<=2 works whether priorities are "1"/"2" or "high"/"low".
func compareNumericAware(have, op, want string) bool {
	hf, herr := strconv.ParseFloat(have, 64)
	wf, werr := strconv.ParseFloat(want, 64)
	if herr != nil || werr != nil {
		return compareStrings(have, op, want)
	}
	switch op {
	case "=":
		return hf == wf
	case "!=":
		return hf != wf
	case "<":
		return hf < wf
	case "<=":
		return hf <= wf
	case ">":
		return hf > wf
	case ">=":
		return hf >= wf
	}
	return false
}

// compareDates compares as instants when both sides parse as dates, falling
// back to string comparison otherwise. ISO dates compare correctly either way;
// parsing lets "Mar 1 2026" style literals work too.
func compareDates(have, op, want string) bool {
	ht, herr := dateparse.ParseAny(have)
	wt, werr := dateparse.ParseAny(want)
	if herr != nil || werr != nil {
		return compareStrings(have, op, want)
	}
	switch op {
	case "=":
		return ht.Equal(wt)
	case "!=":
		return !ht.Equal(wt)
	case "<":
		return ht.Before(wt)
	case "<=":
		return !ht.After(wt)
	case ">":
		return ht.After(wt)
	case ">=":
		return !ht.Before(wt)
	}
	return false
}
