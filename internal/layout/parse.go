// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package layout

import (
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/unidavemeyer/web-adventure/internal/layout/dsl"
)

// roomDoc is the wire shape of a single room document. Exits, changes and
// conditions are polymorphic on the wire, so they stay as raw nodes and are
// turned into closed variants by the parse functions below.
type roomDoc struct {
	Name    string    `yaml:"name"`
	Desc    string    `yaml:"desc"`
	Exits   yaml.Node `yaml:"exits"`
	Changes yaml.Node `yaml:"changes"`
}

type exitDoc struct {
	Name string    `yaml:"name"`
	Verb string    `yaml:"verb"`
	Cond yaml.Node `yaml:"cond"`
}

// parseRoom turns one YAML document into a Room. A document failing
// validation (missing name or desc, exits or changes present but not a
// list) is rejected: the returned room is nil and the errors say why.
// Malformed exits, changes and conditions inside an otherwise valid room
// are reported and degraded without rejecting the room.
func parseRoom(doc *yaml.Node) (*Room, []error) {
	var rd roomDoc
	if err := doc.Decode(&rd); err != nil {
		return nil, []error{oops.Code("LAYOUT_INVALID_ROOM").
			With("line", doc.Line).
			Wrapf(err, "room document does not decode")}
	}

	var errs []error
	reject := false

	if rd.Name == "" {
		errs = append(errs, oops.Code("LAYOUT_INVALID_ROOM").
			With("line", doc.Line).
			Errorf("room is missing a name"))
		reject = true
	}
	if rd.Desc == "" {
		errs = append(errs, oops.Code("LAYOUT_INVALID_ROOM").
			With("room", rd.Name).
			Errorf("room %q is missing desc", rd.Name))
		reject = true
	}
	if present(&rd.Exits) && rd.Exits.Kind != yaml.SequenceNode {
		errs = append(errs, oops.Code("LAYOUT_INVALID_ROOM").
			With("room", rd.Name).
			Errorf("room %q exits is not a list", rd.Name))
		reject = true
	}
	if present(&rd.Changes) && rd.Changes.Kind != yaml.SequenceNode {
		errs = append(errs, oops.Code("LAYOUT_INVALID_ROOM").
			With("room", rd.Name).
			Errorf("room %q changes is not a list", rd.Name))
		reject = true
	}
	if reject {
		return nil, errs
	}

	room := &Room{Name: rd.Name, Desc: rd.Desc}

	if present(&rd.Exits) {
		for _, item := range rd.Exits.Content {
			exit, exitErrs := parseExit(item, rd.Name)
			errs = append(errs, exitErrs...)
			if exit != nil {
				room.Exits = append(room.Exits, *exit)
			}
		}
	}
	if present(&rd.Changes) {
		for _, item := range rd.Changes.Content {
			op, opErrs := parseChange(item, rd.Name)
			errs = append(errs, opErrs...)
			if op != nil {
				room.Changes = append(room.Changes, op)
			}
		}
	}

	return room, errs
}

// parseExit decodes one exit entry. Exits lacking a target name or a verb
// are never offered, so they are dropped here with a report.
func parseExit(node *yaml.Node, roomName string) (*Exit, []error) {
	var ed exitDoc
	if err := node.Decode(&ed); err != nil {
		return nil, []error{oops.Code("LAYOUT_INVALID_EXIT").
			With("room", roomName).
			With("line", node.Line).
			Wrapf(err, "exit in room %q does not decode", roomName)}
	}

	if ed.Name == "" || ed.Verb == "" {
		return nil, []error{oops.Code("LAYOUT_INVALID_EXIT").
			With("room", roomName).
			With("line", node.Line).
			Errorf("exit in room %q is missing name or verb", roomName)}
	}

	exit := &Exit{Target: ed.Name, Verb: ed.Verb}
	if present(&ed.Cond) {
		cond, condErrs := parseCondition(&ed.Cond, roomName)
		exit.Cond = cond
		return exit, condErrs
	}
	return exit, nil
}

// parseCondition builds the closed condition variant from a wire node.
// Every malformed shape becomes Never with a reported error, so bad rules
// gate exits closed instead of failing at evaluation time.
func parseCondition(node *yaml.Node, roomName string) (Condition, []error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return parseCondString(node, roomName)
	case yaml.SequenceNode:
		return parseCondLeaf(node, roomName)
	case yaml.MappingNode:
		return parseCondCombinator(node, roomName)
	default:
		return Never{}, []error{condError(node, roomName, "condition is neither a triple, a combinator, nor a string")}
	}
}

// parseCondString parses the compact DSL form into the same variants.
func parseCondString(node *yaml.Node, roomName string) (Condition, []error) {
	var text string
	if err := node.Decode(&text); err != nil {
		return Never{}, []error{condError(node, roomName, "condition string does not decode")}
	}
	expr, err := dsl.Parse(text)
	if err != nil {
		return Never{}, []error{oops.Code("LAYOUT_INVALID_COND").
			With("room", roomName).
			With("line", node.Line).
			Wrapf(err, "condition in room %q", roomName)}
	}
	return condFromExpr(expr), nil
}

// dslOps maps DSL comparison operators onto the leaf operators.
var dslOps = map[string]CompareOp{
	"==": OpEq,
	"!=": OpNe,
	">":  OpGt,
	"<":  OpLt,
}

func condFromExpr(e *dsl.Expr) Condition {
	children := make([]Condition, 0, len(e.Or))
	for _, and := range e.Or {
		children = append(children, condFromAnd(and))
	}
	if len(children) == 1 {
		return children[0]
	}
	return Or{Children: children}
}

func condFromAnd(a *dsl.AndExpr) Condition {
	children := make([]Condition, 0, len(a.Terms))
	for _, term := range a.Terms {
		children = append(children, condFromTerm(term))
	}
	if len(children) == 1 {
		return children[0]
	}
	return And{Children: children}
}

func condFromTerm(t *dsl.Term) Condition {
	if t.Group != nil {
		return condFromExpr(t.Group)
	}
	cmp := t.Cmp
	op, ok := dslOps[cmp.Op]
	if !ok {
		return Never{}
	}
	leaf := Leaf{Op: op, Var: cmp.Var}
	if cmp.RHS.Var != nil {
		leaf.Operand = Operand{Var: *cmp.RHS.Var}
	} else if cmp.RHS.Int != nil {
		leaf.Operand = Operand{Literal: *cmp.RHS.Int}
	}
	return leaf
}

// leafOps maps wire operator tags onto leaf operators; the bool marks the
// *var forms whose operand is a variable name.
var leafOps = map[string]struct {
	op       CompareOp
	varValue bool
}{
	"eq":    {OpEq, false},
	"ne":    {OpNe, false},
	"gt":    {OpGt, false},
	"lt":    {OpLt, false},
	"eqvar": {OpEq, true},
	"nevar": {OpNe, true},
	"gtvar": {OpGt, true},
	"ltvar": {OpLt, true},
}

// parseCondLeaf parses the [op, var, operand] triple form.
func parseCondLeaf(node *yaml.Node, roomName string) (Condition, []error) {
	if len(node.Content) != 3 {
		return Never{}, []error{condError(node, roomName, "condition triple must have exactly three elements")}
	}

	var opTag, varName string
	if err := node.Content[0].Decode(&opTag); err != nil {
		return Never{}, []error{condError(node, roomName, "condition operator is not a string")}
	}
	spec, ok := leafOps[opTag]
	if !ok {
		return Never{}, []error{condError(node, roomName, "unknown condition operator "+opTag)}
	}
	if err := node.Content[1].Decode(&varName); err != nil || varName == "" {
		return Never{}, []error{condError(node, roomName, "condition variable name is not a string")}
	}

	leaf := Leaf{Op: spec.op, Var: varName}
	if spec.varValue {
		var operandVar string
		if err := node.Content[2].Decode(&operandVar); err != nil || operandVar == "" {
			return Never{}, []error{condError(node, roomName, "condition operand is not a variable name")}
		}
		leaf.Operand = Operand{Var: operandVar}
	} else {
		var literal int
		if err := node.Content[2].Decode(&literal); err != nil {
			return Never{}, []error{condError(node, roomName, "condition operand is not an integer")}
		}
		leaf.Operand = Operand{Literal: literal}
	}
	return leaf, nil
}

// parseCondCombinator parses the {and: [...]} / {or: [...]} form. The
// mapping must have exactly the one recognized key and a non-empty child
// list; a malformed child degrades to Never so the combinator stays
// fail-closed without dropping its siblings.
func parseCondCombinator(node *yaml.Node, roomName string) (Condition, []error) {
	if len(node.Content) != 2 {
		return Never{}, []error{condError(node, roomName, "condition combinator must have exactly one key")}
	}

	var key string
	if err := node.Content[0].Decode(&key); err != nil || (key != "and" && key != "or") {
		return Never{}, []error{condError(node, roomName, "condition combinator key must be and or or")}
	}

	childList := node.Content[1]
	if childList.Kind != yaml.SequenceNode || len(childList.Content) == 0 {
		return Never{}, []error{condError(node, roomName, "condition combinator needs a non-empty child list")}
	}

	var errs []error
	children := make([]Condition, 0, len(childList.Content))
	for _, childNode := range childList.Content {
		child, childErrs := parseCondition(childNode, roomName)
		errs = append(errs, childErrs...)
		children = append(children, child)
	}

	if key == "and" {
		return And{Children: children}, errs
	}
	return Or{Children: children}, errs
}

// changeArity gives the required tuple length per change op tag.
var changeArity = map[string]int{
	"set":     3,
	"add":     3,
	"setrand": 4,
	"addrand": 4,
}

// parseChange parses one [tag, var, ...] change tuple. A malformed tuple is
// reported and skipped; the remaining ops still apply.
func parseChange(node *yaml.Node, roomName string) (ChangeOp, []error) {
	if node.Kind != yaml.SequenceNode || len(node.Content) == 0 {
		return nil, []error{changeError(node, roomName, "change is not a tuple")}
	}

	var tag string
	if err := node.Content[0].Decode(&tag); err != nil {
		return nil, []error{changeError(node, roomName, "change op tag is not a string")}
	}
	arity, ok := changeArity[tag]
	if !ok {
		return nil, []error{changeError(node, roomName, "unknown change op "+tag)}
	}
	if len(node.Content) != arity {
		return nil, []error{changeError(node, roomName, "wrong number of elements for "+tag)}
	}

	var varName string
	if err := node.Content[1].Decode(&varName); err != nil || varName == "" {
		return nil, []error{changeError(node, roomName, "change variable name is not a string")}
	}

	ints := make([]int, 0, 2)
	for _, valueNode := range node.Content[2:] {
		var n int
		if err := valueNode.Decode(&n); err != nil {
			return nil, []error{changeError(node, roomName, "change value is not an integer")}
		}
		ints = append(ints, n)
	}

	switch tag {
	case "set":
		return Set{Var: varName, Value: ints[0]}, nil
	case "add":
		return Add{Var: varName, Delta: ints[0]}, nil
	case "setrand", "addrand":
		if ints[1] < ints[0] {
			return nil, []error{changeError(node, roomName, "random range is inverted")}
		}
		if tag == "setrand" {
			return SetRandom{Var: varName, Low: ints[0], High: ints[1]}, nil
		}
		return AddRandom{Var: varName, Low: ints[0], High: ints[1]}, nil
	}
	return nil, nil // unreachable; tags are exhausted above
}

func present(n *yaml.Node) bool {
	return n.Kind != 0 && n.Tag != "!!null"
}

func condError(node *yaml.Node, roomName, msg string) error {
	return oops.Code("LAYOUT_INVALID_COND").
		With("room", roomName).
		With("line", node.Line).
		Errorf("condition in room %q: %s", roomName, msg)
}

func changeError(node *yaml.Node, roomName, msg string) error {
	return oops.Code("LAYOUT_INVALID_CHANGE").
		With("room", roomName).
		With("line", node.Line).
		Errorf("change in room %q: %s", roomName, msg)
}
