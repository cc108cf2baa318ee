// Package compiler implements the language's core subsystem: a single-pass
// Pratt parser that emits directly into a chunk.Chunk, with no intermediate
// AST. This is a deliberate architectural break from the teacher, whose
// internal/compiler walks an internal/ast tree built by a separate
// internal/parser — spec.md §1 mandates the fused design instead, so this
// package is grounded on original_source/c/compile.c line for line rather
// than on the teacher's parser/compiler split.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/dolthub/swiss"
	"github.com/hashicorp/go-multierror"

	"github.com/estevaofon/loxvm/internal/chunk"
	"github.com/estevaofon/loxvm/internal/lexer"
	"github.com/estevaofon/loxvm/internal/strtable"
	"github.com/estevaofon/loxvm/internal/token"
	"github.com/estevaofon/loxvm/internal/value"
)

// maxLocals is the local-variable stack's hard ceiling (spec.md §3): slot
// indices are 16-bit operands, but the spec's boundary property pins the
// usable count one below that, matching UINT16_MAX in the original source.
const maxLocals = 65535

// local tracks one in-scope local variable. depth == -1 means "declared but
// not yet initialized" — resolveLocal uses that to reject self-referencing
// initializers.
type local struct {
	name    string
	depth   int
	isConst bool
}

// Compiler is single-use: construct one per Compile call.
type Compiler struct {
	lex     *lexer.Lexer
	chunk   *chunk.Chunk
	interns *strtable.InternTable

	previous token.Token
	current  token.Token

	hadError  bool
	panicMode bool
	errs      *multierror.Error

	locals     []local
	scopeDepth int
	// scopeNames mirrors locals but scoped: one swiss.Map per nesting level,
	// name -> slot index, used only for the "already declared in this scope"
	// check. A compiler-convenience structure, not one of the spec-tested
	// runtime tables, so an off-the-shelf map is the right tool here (see
	// DESIGN.md).
	scopeNames []*swiss.Map[string, int]
}

// Compile translates source into a chunk in one left-to-right pass. It
// returns the chunk and a nil error on success, or a nil chunk and a non-nil
// error (aggregating every diagnostic from the pass) on failure. interns is
// the same table the VM will run with — string constants baked into the
// chunk are interned through it so they are already part of the VM's object
// list by the time Interpret hands off to the VM.
func Compile(source string, interns *strtable.InternTable) (*chunk.Chunk, error) {
	c := &Compiler{
		lex:     lexer.New(source),
		chunk:   chunk.New(),
		interns: interns,
	}
	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.endCompiler()
	if c.hadError {
		return nil, c.errs.ErrorOrNil()
	}
	return c.chunk, nil
}

// --- token stream -----------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lex.ScanToken()
		if c.current.Type != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) consume(t token.Type, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) check(t token.Type) bool { return c.current.Type == t }

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

// --- error reporting ----------------------------------------------------

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	where := ""
	switch tok.Type {
	case token.EOF:
		where = " at end"
	case token.Error:
		// no location suffix
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	c.errs = multierror.Append(c.errs, fmt.Errorf("[line %d] Error%s: %s", tok.Line, where, msg))
	c.hadError = true
}

func (c *Compiler) error(msg string)        { c.errorAt(c.previous, msg) }
func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }

// synchronize skips tokens until it finds a likely statement boundary, so
// one compile pass can surface more than one error. Grounded on
// original_source/c/compile.c's synchronize(); the statement-starter set is
// reproduced exactly (input is deliberately absent, per spec.md §4.4).
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != token.EOF {
		if c.previous.Type == token.Semicolon {
			return
		}
		switch c.current.Type {
		case token.Class, token.Fun, token.Var, token.Const,
			token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}

// --- emit helpers --------------------------------------------------------

func (c *Compiler) emitByte(b byte) { c.chunk.Write(b, c.previous.Line) }

func (c *Compiler) emitOp(op chunk.OpCode) { c.emitByte(byte(op)) }

func (c *Compiler) emitUint16(op chunk.OpCode, n int) {
	c.emitByte(byte(op))
	c.emitByte(byte(n >> 8))
	c.emitByte(byte(n & 0xff))
}

func (c *Compiler) addConstant(v value.Value) int {
	idx := c.chunk.AddConstant(v)
	if idx >= chunk.MaxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

func (c *Compiler) emitConstant(v value.Value) {
	idx := c.addConstant(v)
	c.emitUint16(chunk.OpConstant, idx)
}

// emitJump writes op followed by a 16-bit placeholder and returns the
// placeholder's offset, for a later patchJump call.
func (c *Compiler) emitJump(op chunk.OpCode) int {
	c.emitByte(byte(op))
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk.Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk.Code) - offset - 2
	if jump > chunk.MaxJump {
		c.error("Too much code to jump over.")
		return
	}
	c.chunk.Code[offset] = byte(jump >> 8)
	c.chunk.Code[offset+1] = byte(jump & 0xff)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitByte(byte(chunk.OpLoop))
	offset := len(c.chunk.Code) - loopStart + 2
	if offset > chunk.MaxJump {
		c.error("Loop body too large.")
		return
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset & 0xff))
}

func (c *Compiler) endCompiler() {
	c.emitOp(chunk.OpReturn)
}

// --- scope / locals ------------------------------------------------------

func (c *Compiler) beginScope() {
	c.scopeDepth++
	c.scopeNames = append(c.scopeNames, swiss.NewMap[string, int](8))
}

func (c *Compiler) endScope() {
	c.scopeDepth--
	c.scopeNames = c.scopeNames[:len(c.scopeNames)-1]
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitOp(chunk.OpPop)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) addLocal(name string, isConst bool) {
	if len(c.locals) >= maxLocals {
		c.error("Too many local variables in this scope.")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1, isConst: isConst})
	top := c.scopeNames[len(c.scopeNames)-1]
	top.Put(name, len(c.locals)-1)
}

// declareVariable checks for redeclaration within the current scope only —
// the spec's addition over the original source, which never checked this.
func (c *Compiler) declareVariable(name token.Token, isConst bool) {
	if c.scopeDepth == 0 {
		return
	}
	top := c.scopeNames[len(c.scopeNames)-1]
	if _, exists := top.Get(name.Lexeme); exists {
		c.error("Already a variable with this name in this scope.")
		return
	}
	c.addLocal(name.Lexeme, isConst)
}

func (c *Compiler) markInitialized() {
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal walks the local stack top-down by name. Grounded on
// original_source/c/compile.c's resolveLocal: an initializer that
// self-references its own name is an error, but the slot index is still
// returned (the pass has already failed; the emitted bytecode is discarded).
func (c *Compiler) resolveLocal(name token.Token) (slot int, isConst bool, found bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.name == name.Lexeme {
			if l.depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i, l.isConst, true
		}
	}
	return 0, false, false
}

// --- grammar: declarations and statements --------------------------------

func (c *Compiler) declaration() {
	switch {
	case c.match(token.Var):
		c.variableDeclaration(false)
	case c.match(token.Const):
		c.variableDeclaration(true)
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

// variableDeclaration handles both var and const: `var|const name [= expr] ;`.
// A missing initializer pushes Nil (OP_NV), per spec.md §4.4.
func (c *Compiler) variableDeclaration(isConst bool) {
	c.consume(token.Identifier, "Expect variable name.")
	name := c.previous
	if c.scopeDepth > 0 {
		c.declareVariable(name, isConst)
	}

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(chunk.OpNV)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")

	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}

	global := c.identifierConstant(name)
	if isConst {
		c.emitUint16(chunk.OpDefineGlobalConst, global)
	} else {
		c.emitUint16(chunk.OpDefineGlobal, global)
	}
}

func (c *Compiler) identifierConstant(name token.Token) int {
	s := c.interns.CopyString(name.Lexeme)
	return c.addConstant(s.Value())
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

// printStatement resolves Open Question #1 (spec.md §9.1): `print` always
// takes a parenthesized expression argument, the richer of the two forms the
// original source carries.
func (c *Compiler) printStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'print'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(chunk.OpPrint)
}

// ifStatement implements the symmetric if/else pop discipline Open Question
// #3 calls for: the condition is always popped exactly once, on whichever
// branch runs.
func (c *Compiler) ifStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()

	elseJump := c.emitJump(chunk.OpJump)
	c.patchJump(thenJump)
	c.emitOp(chunk.OpPop)

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk.Code)
	c.consume(token.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(chunk.OpPop)
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

// expressionStatement resolves Open Question #2 (spec.md §9.2): a bare
// expression followed by `;` is a legal statement and pops its own result.
func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitOp(chunk.OpPop)
}

// --- grammar: expressions --------------------------------------------------

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Type).precedence {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(_ bool) {
	opType := c.previous.Type
	c.parsePrecedence(PrecUnary)
	switch opType {
	case token.Bang:
		c.emitOp(chunk.OpNot)
	case token.Minus:
		c.emitOp(chunk.OpNegate)
	}
}

// binary emits the opcode for a binary operator once both operands are on
// the stack. `!=` has no dedicated opcode in this language's opcode table
// (spec.md §4.5 lists EE/LESS/GREATER/LTE/GTE only, no NE, unlike the
// original source's OP_NE) so it is synthesized as OP_EE followed by OP_NOT.
func (c *Compiler) binary(_ bool) {
	opType := c.previous.Type
	rule := getRule(opType)
	c.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.Plus:
		c.emitOp(chunk.OpAdd)
	case token.Minus:
		c.emitOp(chunk.OpSubtract)
	case token.Star:
		c.emitOp(chunk.OpMultiply)
	case token.Slash:
		c.emitOp(chunk.OpDivide)
	case token.StarStar:
		c.emitOp(chunk.OpPow)
	case token.BangEqual:
		c.emitOp(chunk.OpEqual)
		c.emitOp(chunk.OpNot)
	case token.EqualEqual:
		c.emitOp(chunk.OpEqual)
	case token.Greater:
		c.emitOp(chunk.OpGreater)
	case token.GreaterEqual:
		c.emitOp(chunk.OpGreaterEqual)
	case token.Less:
		c.emitOp(chunk.OpLess)
	case token.LessEqual:
		c.emitOp(chunk.OpLessEqual)
	}
}

func (c *Compiler) and_(_ bool) {
	endJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(_ bool) {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	endJump := c.emitJump(chunk.OpJump)
	c.patchJump(elseJump)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) literal(_ bool) {
	switch c.previous.Type {
	case token.False:
		c.emitOp(chunk.OpFalse)
	case token.True:
		c.emitOp(chunk.OpTrue)
	case token.Nil:
		c.emitOp(chunk.OpNil)
	}
}

func (c *Compiler) number(_ bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.NewNumber(n))
}

func (c *Compiler) stringLiteral(_ bool) {
	s := c.interns.CopyString(c.previous.Lexeme)
	c.emitConstant(s.Value())
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

// inputExpr: `input ( [expr] )`, a primary expression that leaves a String on
// the stack (spec.md §4.5's OP_INPUT: `— → String`). It must be a prefix rule
// rather than a statement — `var name = input();` calls expression(), which
// only ever descends into prefix/infix parse functions, never statement()
// — so a statement-only `input` can never bind its result to anything.
// The optional parenthesized argument (spec.md §4.4's grammar) has nowhere to
// flow into the single no-operand opcode, so it is evaluated for side effects
// only and then discarded before OP_INPUT runs.
func (c *Compiler) inputExpr(_ bool) {
	c.consume(token.LeftParen, "Expect '(' after 'input'.")
	if !c.check(token.RightParen) {
		c.expression()
		c.emitOp(chunk.OpPop)
	}
	c.consume(token.RightParen, "Expect ')' after input arguments.")
	c.emitOp(chunk.OpInput)
}

// namedVariable resolves name as a local, then falls back to a global.
// Assignment to a local const is rejected here at compile time; assignment
// to a global is always compiled to OP_SET_GLOBAL (the spec's fix for the
// original source's namedVariable bug — REDESIGN FLAG #4 — which erroneously
// emitted OP_DEFINE_GLOBAL for assignment and so bypassed the const check).
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	slot, isConst, isLocal := c.resolveLocal(name)

	if isLocal {
		if canAssign && c.match(token.Equal) {
			if isConst {
				c.error("Can't assign to a constant variable.")
			}
			c.expression()
			c.emitUint16(chunk.OpSetLocal, slot)
		} else {
			c.emitUint16(chunk.OpGetLocal, slot)
		}
		return
	}

	global := c.identifierConstant(name)
	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitUint16(chunk.OpSetGlobal, global)
	} else {
		c.emitUint16(chunk.OpGetGlobal, global)
	}
}
