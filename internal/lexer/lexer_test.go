package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estevaofon/loxvm/internal/token"
)

func collect(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.ScanToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := collect(`( ) { } ; , . - + * / ** ! != = == < <= > >=`)
	want := []token.Type{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Semicolon, token.Comma, token.Dot, token.Minus, token.Plus,
		token.Star, token.Slash, token.StarStar, token.Bang, token.BangEqual,
		token.Equal, token.EqualEqual, token.Less, token.LessEqual,
		token.Greater, token.GreaterEqual, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w, toks[i].Type, "token %d", i)
	}
}

func TestScanKeywords(t *testing.T) {
	toks := collect("var const print input if else while and or nil true false")
	want := []token.Type{
		token.Var, token.Const, token.Print, token.Input, token.If, token.Else,
		token.While, token.And, token.Or, token.Nil, token.True, token.False,
	}
	for i, w := range want {
		assert.Equal(t, w, toks[i].Type)
	}
}

func TestScanIdentifierNotKeyword(t *testing.T) {
	toks := collect("variable")
	require.Equal(t, token.Identifier, toks[0].Type)
	assert.Equal(t, "variable", toks[0].Lexeme)
}

func TestScanNumbers(t *testing.T) {
	toks := collect("42 3.14")
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, token.Number, toks[0].Type)
	assert.Equal(t, "3.14", toks[1].Lexeme)
}

func TestScanString(t *testing.T) {
	toks := collect(`"hello world"`)
	require.Equal(t, token.String, toks[0].Type)
	assert.Equal(t, "hello world", toks[0].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := collect(`"unterminated`)
	assert.Equal(t, token.Error, toks[0].Type)
}

func TestScanSkipsLineComments(t *testing.T) {
	toks := collect("// a comment\nvar")
	assert.Equal(t, token.Var, toks[0].Type)
	assert.Equal(t, 2, toks[0].Line)
}

func TestScanTracksLines(t *testing.T) {
	toks := collect("var\nconst\nprint")
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 3, toks[2].Line)
}

func TestScanUnexpectedCharacter(t *testing.T) {
	toks := collect("@")
	assert.Equal(t, token.Error, toks[0].Type)
}
