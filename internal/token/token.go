// Package token defines the lexeme types produced by the lexer. The lexer
// and its token interface are "external" per spec.md §1/§6 — deliberately
// thin, since the hard engineering lives in the compiler and VM.
package token

type Type int

const (
	// Special
	Error Type = iota
	EOF

	// Single-character punctuation
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	Semicolon
	Comma
	Dot
	Minus
	Plus
	Slash
	Star
	Bang
	Equal
	Less
	Greater

	// Two-character operators
	BangEqual
	EqualEqual
	LessEqual
	GreaterEqual
	StarStar // **

	// Literals
	Identifier
	String
	Number

	// Keywords
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Input
	Return
	Super
	This
	True
	Var
	Const
	While
)

var names = [...]string{
	Error: "ERROR", EOF: "EOF",
	LeftParen: "(", RightParen: ")", LeftBrace: "{", RightBrace: "}",
	Semicolon: ";", Comma: ",", Dot: ".",
	Minus: "-", Plus: "+", Slash: "/", Star: "*",
	Bang: "!", Equal: "=", Less: "<", Greater: ">",
	BangEqual: "!=", EqualEqual: "==", LessEqual: "<=", GreaterEqual: ">=",
	StarStar: "**",
	Identifier: "IDENTIFIER", String: "STRING", Number: "NUMBER",
	And: "and", Class: "class", Else: "else", False: "false", For: "for",
	Fun: "fun", If: "if", Nil: "nil", Or: "or", Print: "print", Input: "input",
	Return: "return", Super: "super", This: "this", True: "true", Var: "var",
	Const: "const", While: "while",
}

func (t Type) String() string {
	if int(t) < len(names) && names[t] != "" {
		return names[t]
	}
	return "UNKNOWN"
}

var keywords = map[string]Type{
	"and": And, "class": Class, "else": Else, "false": False, "for": For,
	"fun": Fun, "if": If, "nil": Nil, "or": Or, "print": Print, "input": Input,
	"return": Return, "super": Super, "this": This, "true": True, "var": Var,
	"const": Const, "while": While,
}

// LookupIdent maps an identifier's text to its keyword type, or Identifier
// if it isn't a keyword.
func LookupIdent(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return Identifier
}

// Token is a single lexeme: its type, its source text, and its line number.
// The spec names no span/column information beyond the line.
type Token struct {
	Type    Type
	Lexeme  string
	Line    int
}
