// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package dsl

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/samber/oops"
)

// MaxNestingDepth is the maximum allowed parenthesis nesting depth.
const MaxNestingDepth = 32

// parser is the singleton participle parser instance.
var parser *participle.Parser[Expr]

func init() {
	var err error
	parser, err = NewParser()
	if err != nil {
		panic(fmt.Sprintf("failed to build condition DSL parser: %v", err))
	}
}

// NewParser builds a participle parser for the condition grammar.
func NewParser() (*participle.Parser[Expr], error) {
	return participle.Build[Expr](
		participle.Lexer(condLexer),
	)
}

// Parse parses a condition string into an AST. Returns a descriptive error
// with position info on failure.
func Parse(text string) (*Expr, error) {
	expr, err := parser.ParseString("", text)
	if err != nil {
		return nil, oops.Code("DSL_PARSE_FAILED").Wrapf(err, "parsing condition %q", text)
	}
	if err := validateExpr(expr, 0); err != nil {
		return nil, err
	}
	return expr, nil
}

// validateExpr enforces the nesting depth cap.
func validateExpr(e *Expr, depth int) error {
	if depth > MaxNestingDepth {
		return oops.Code("DSL_TOO_DEEP").
			Errorf("condition nesting depth exceeds maximum of %d", MaxNestingDepth)
	}
	for _, and := range e.Or {
		for _, term := range and.Terms {
			if term.Group != nil {
				if err := validateExpr(term.Group, depth+1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
