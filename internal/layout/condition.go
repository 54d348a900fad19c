// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package layout

// CompareOp identifies a leaf comparison operator.
type CompareOp string

// Comparison operators. The *var forms of the wire format (eqvar, gtvar, ...)
// are folded into these at parse time; the variable-operand flag lives on the
// Operand instead.
const (
	OpEq CompareOp = "eq"
	OpNe CompareOp = "ne"
	OpGt CompareOp = "gt"
	OpLt CompareOp = "lt"
)

// String returns the string representation of the operator.
func (op CompareOp) String() string {
	return string(op)
}

// Condition is a boolean rule tree evaluated against a variable snapshot.
// Evaluation is total and deterministic: no node ever fails, and anything
// malformed was replaced by Never at load time so bad data gates exits
// closed, never open.
type Condition interface {
	Eval(vars Vars) bool
}

// Operand is the right-hand side of a leaf comparison: either a literal
// integer or a reference to another variable resolved at evaluation time.
type Operand struct {
	Literal int
	Var     string // when non-empty, resolved against the variable map
}

// Resolve returns the operand's value under the given variable snapshot.
func (o Operand) Resolve(vars Vars) int {
	if o.Var != "" {
		return vars.GetOrZero(o.Var)
	}
	return o.Literal
}

// Leaf compares a variable against an operand.
type Leaf struct {
	Op      CompareOp
	Var     string
	Operand Operand
}

// Eval compares the variable's value against the resolved operand.
// Unknown operators evaluate to false.
func (l Leaf) Eval(vars Vars) bool {
	left := vars.GetOrZero(l.Var)
	right := l.Operand.Resolve(vars)

	switch l.Op {
	case OpEq:
		return left == right
	case OpNe:
		return left != right
	case OpGt:
		return left > right
	case OpLt:
		return left < right
	default:
		return false
	}
}

// And is true iff every child is true. An empty child list is false.
type And struct {
	Children []Condition
}

// Eval evaluates the conjunction.
func (a And) Eval(vars Vars) bool {
	if len(a.Children) == 0 {
		return false
	}
	for _, c := range a.Children {
		if !c.Eval(vars) {
			return false
		}
	}
	return true
}

// Or is true iff at least one child is true.
type Or struct {
	Children []Condition
}

// Eval evaluates the disjunction.
func (o Or) Eval(vars Vars) bool {
	for _, c := range o.Children {
		if c.Eval(vars) {
			return true
		}
	}
	return false
}

// Never is the fail-safe replacement for a malformed condition node.
type Never struct{}

// Eval always returns false.
func (Never) Eval(Vars) bool {
	return false
}
