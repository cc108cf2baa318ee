package compiler

import "github.com/estevaofon/loxvm/internal/token"

// Precedence orders the binary/unary operators from loosest to tightest
// binding, exactly spec.md §4.4's ladder.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

// ParseRule pairs a token type with its prefix/infix parse functions and the
// precedence at which it binds as an infix operator. Grounded on
// original_source/c/compile.c's designated-initializer `rules[]` array;
// reproduced here as a Go array literal indexed by token.Type, the same
// technique chunk.go uses for opcodeNames.
type ParseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules = [...]ParseRule{
	token.LeftParen:    {prefix: (*Compiler).grouping},
	token.Minus:        {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm},
	token.Plus:         {infix: (*Compiler).binary, precedence: PrecTerm},
	token.Slash:        {infix: (*Compiler).binary, precedence: PrecFactor},
	token.Star:         {infix: (*Compiler).binary, precedence: PrecFactor},
	token.StarStar:     {infix: (*Compiler).binary, precedence: PrecFactor},
	token.Bang:         {prefix: (*Compiler).unary},
	token.BangEqual:    {infix: (*Compiler).binary, precedence: PrecEquality},
	token.EqualEqual:   {infix: (*Compiler).binary, precedence: PrecEquality},
	token.Greater:      {infix: (*Compiler).binary, precedence: PrecComparison},
	token.GreaterEqual: {infix: (*Compiler).binary, precedence: PrecComparison},
	token.Less:         {infix: (*Compiler).binary, precedence: PrecComparison},
	token.LessEqual:    {infix: (*Compiler).binary, precedence: PrecComparison},
	token.Identifier:   {prefix: (*Compiler).variable},
	token.String:       {prefix: (*Compiler).stringLiteral},
	token.Number:       {prefix: (*Compiler).number},
	token.False:        {prefix: (*Compiler).literal},
	token.True:         {prefix: (*Compiler).literal},
	token.Nil:          {prefix: (*Compiler).literal},
	token.And:          {infix: (*Compiler).and_, precedence: PrecAnd},
	token.Or:           {infix: (*Compiler).or_, precedence: PrecOr},
	token.Input:        {prefix: (*Compiler).inputExpr},
}

func getRule(t token.Type) *ParseRule {
	if int(t) < len(rules) {
		return &rules[t]
	}
	return &ParseRule{}
}
