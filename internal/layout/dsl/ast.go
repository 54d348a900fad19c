// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

// Package dsl defines the AST and parser for the compact string form of
// exit conditions, e.g. "gold > 10 && (key == 1 || luck > skill)".
//
// The grammar maps one-to-one onto the layout condition variants: a
// comparison whose right-hand side is an identifier is a variable
// comparison, "&&" groups are conjunctions, "||" groups are disjunctions.
// The package deliberately knows nothing about the layout types; callers
// compile the AST into their own condition representation.
package dsl

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// condLexer tokenizes the condition DSL. Multi-character operators need
// explicit rules so the default scanner does not split them.
var condLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "OpEq", Pattern: `==`},
	{Name: "OpNe", Pattern: `!=`},
	{Name: "OpAnd", Pattern: `&&`},
	{Name: "OpOr", Pattern: `\|\|`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Punct", Pattern: `[()<>]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Expr is a disjunction of conjunctions.
//
// Grammar: expr ← and ("||" and)*
type Expr struct {
	Pos lexer.Position `parser:""`
	Or  []*AndExpr     `parser:"@@ ('||' @@)*"`
}

// AndExpr is a conjunction of terms.
//
// Grammar: and ← term ("&&" term)*
type AndExpr struct {
	Pos   lexer.Position `parser:""`
	Terms []*Term        `parser:"@@ ('&&' @@)*"`
}

// Term is either a parenthesized sub-expression or a single comparison.
type Term struct {
	Pos   lexer.Position `parser:""`
	Group *Expr          `parser:"  '(' @@ ')'"`
	Cmp   *Comparison    `parser:"| @@"`
}

// Comparison is var op rhs, with rhs a literal integer or another variable.
type Comparison struct {
	Pos lexer.Position `parser:""`
	Var string         `parser:"@Ident"`
	Op  string         `parser:"@('==' | '!=' | '>' | '<')"`
	RHS *Value         `parser:"@@"`
}

// Value is the right-hand side of a comparison.
type Value struct {
	Int *int    `parser:"  @Int"`
	Var *string `parser:"| @Ident"`
}
