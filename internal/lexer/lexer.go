// Package lexer scans source bytes into a token stream. It is the "external
// collaborator" spec.md §1 treats as interface-only — its job is to expose
// scan_token() returning a typed lexeme; none of the hard engineering this
// spec covers lives here.
//
// Grounded on the teacher's internal/lexer/lexer.go (read/peek-char, line
// tracking) and retargeted at this language's smaller grammar (no f-strings,
// bytes literals or bitwise operators — those are teacher-only extensions).
package lexer

import (
	"github.com/josharian/intern"

	"github.com/estevaofon/loxvm/internal/token"
)

// Lexer scans one token at a time from an in-memory source buffer.
type Lexer struct {
	src  string
	pos  int // index of the next unread byte
	line int
}

// New returns a lexer over source.
func New(source string) *Lexer {
	return &Lexer{src: source, line: 1}
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.atEnd() || l.src[l.pos] != expected {
		return false
	}
	l.pos++
	return true
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\r', '\t':
			l.pos++
		case '\n':
			l.line++
			l.pos++
		case '/':
			if l.peekNext() == '/' {
				for !l.atEnd() && l.peek() != '\n' {
					l.pos++
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ScanToken returns the next token in the stream, including a trailing EOF
// token once the source is exhausted. Unterminated strings and unrecognized
// characters produce an Error token whose Lexeme is a human-readable
// message, matching the scan_token() contract spec.md §6 describes.
func (l *Lexer) ScanToken() token.Token {
	l.skipWhitespaceAndComments()

	if l.atEnd() {
		return l.make(token.EOF, "")
	}

	start := l.pos
	line := l.line
	c := l.advance()

	if isAlpha(c) {
		return l.identifier(start, line)
	}
	if isDigit(c) {
		return l.number(start, line)
	}

	switch c {
	case '(':
		return l.makeAt(token.LeftParen, start, line)
	case ')':
		return l.makeAt(token.RightParen, start, line)
	case '{':
		return l.makeAt(token.LeftBrace, start, line)
	case '}':
		return l.makeAt(token.RightBrace, start, line)
	case ';':
		return l.makeAt(token.Semicolon, start, line)
	case ',':
		return l.makeAt(token.Comma, start, line)
	case '.':
		return l.makeAt(token.Dot, start, line)
	case '-':
		return l.makeAt(token.Minus, start, line)
	case '+':
		return l.makeAt(token.Plus, start, line)
	case '/':
		return l.makeAt(token.Slash, start, line)
	case '*':
		if l.match('*') {
			return l.makeAt(token.StarStar, start, line)
		}
		return l.makeAt(token.Star, start, line)
	case '!':
		if l.match('=') {
			return l.makeAt(token.BangEqual, start, line)
		}
		return l.makeAt(token.Bang, start, line)
	case '=':
		if l.match('=') {
			return l.makeAt(token.EqualEqual, start, line)
		}
		return l.makeAt(token.Equal, start, line)
	case '<':
		if l.match('=') {
			return l.makeAt(token.LessEqual, start, line)
		}
		return l.makeAt(token.Less, start, line)
	case '>':
		if l.match('=') {
			return l.makeAt(token.GreaterEqual, start, line)
		}
		return l.makeAt(token.Greater, start, line)
	case '"':
		return l.string(line)
	}

	return token.Token{Type: token.Error, Lexeme: "Unexpected character.", Line: line}
}

func (l *Lexer) identifier(start, line int) token.Token {
	for !l.atEnd() && (isAlpha(l.peek()) || isDigit(l.peek())) {
		l.pos++
	}
	text := intern.String(l.src[start:l.pos])
	return token.Token{Type: token.LookupIdent(text), Lexeme: text, Line: line}
}

func (l *Lexer) number(start, line int) token.Token {
	for !l.atEnd() && isDigit(l.peek()) {
		l.pos++
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.pos++
		for !l.atEnd() && isDigit(l.peek()) {
			l.pos++
		}
	}
	return token.Token{Type: token.Number, Lexeme: l.src[start:l.pos], Line: line}
}

// string scans a quoted literal. No escape sequences are specified
// (spec.md §6); a newline inside a string still advances the line counter so
// downstream error messages stay accurate.
func (l *Lexer) string(line int) token.Token {
	start := l.pos
	for !l.atEnd() && l.peek() != '"' {
		if l.peek() == '\n' {
			l.line++
		}
		l.pos++
	}
	if l.atEnd() {
		return token.Token{Type: token.Error, Lexeme: "Unterminated string.", Line: line}
	}
	contents := l.src[start:l.pos]
	l.pos++ // closing quote
	return token.Token{Type: token.String, Lexeme: intern.String(contents), Line: line}
}

func (l *Lexer) make(t token.Type, lexeme string) token.Token {
	return token.Token{Type: t, Lexeme: lexeme, Line: l.line}
}

func (l *Lexer) makeAt(t token.Type, start, line int) token.Token {
	return token.Token{Type: t, Lexeme: l.src[start:l.pos], Line: line}
}
