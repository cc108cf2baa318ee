// Package chunk implements the compiled code unit the compiler writes and
// the VM reads: a byte-addressable instruction stream, an append-only
// constant pool, and a parallel source-line map. Grounded on the teacher's
// internal/chunk/chunk.go (Write/AddConstant shape), trimmed to the opcode
// set spec.md names.
package chunk

import "github.com/estevaofon/loxvm/internal/value"

// OpCode is a single bytecode instruction tag.
type OpCode byte

const (
	OpConstant OpCode = iota
	OpNil
	OpNV // alias for "no initializer" — identical semantics to OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetGlobal
	OpDefineGlobal
	OpDefineGlobalConst
	OpSetGlobal
	OpGetLocal
	OpSetLocal
	OpNot
	OpEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpPow
	OpNegate
	OpPrint
	OpInput
	OpJumpIfFalse
	OpJump
	OpLoop
	OpReturn
)

var opcodeNames = [...]string{
	OpConstant:          "OP_CONSTANT",
	OpNil:                "OP_NIL",
	OpNV:                 "OP_NV",
	OpTrue:               "OP_TRUE",
	OpFalse:              "OP_FALSE",
	OpPop:                "OP_POP",
	OpGetGlobal:          "OP_GET_GLOBAL",
	OpDefineGlobal:       "OP_DEFINE_GLOBAL",
	OpDefineGlobalConst:  "OP_DEFINE_GLOBAL_CONST",
	OpSetGlobal:          "OP_SET_GLOBAL",
	OpGetLocal:           "OP_GET_LOCAL",
	OpSetLocal:           "OP_SET_LOCAL",
	OpNot:                "OP_NOT",
	OpEqual:              "OP_EE",
	OpLess:               "OP_LESS",
	OpGreater:            "OP_GREATER",
	OpLessEqual:          "OP_LTE",
	OpGreaterEqual:       "OP_GTE",
	OpAdd:                "OP_ADD",
	OpSubtract:           "OP_SUBTRACT",
	OpMultiply:           "OP_MULTIPLY",
	OpDivide:             "OP_DIVIDE",
	OpPow:                "OP_POW",
	OpNegate:             "OP_NEGATE",
	OpPrint:              "OP_PRINT",
	OpInput:              "OP_INPUT",
	OpJumpIfFalse:        "OP_JUMP_IF_FALSE",
	OpJump:               "OP_JUMP",
	OpLoop:               "OP_LOOP",
	OpReturn:             "OP_RETURN",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return "OP_UNKNOWN"
}

// MaxConstants is the constant pool's hard ceiling (spec.md §3).
const MaxConstants = 65536

// MaxJump is the largest forward/backward offset a 16-bit jump operand can
// encode (spec.md §8 boundary property).
const MaxJump = 65535

// Chunk is a compiled unit: bytecode, constants and a parallel line map.
// Written only by the compiler, read-only during VM execution.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	Lines     []int
}

// New returns an empty chunk.
func New() *Chunk {
	return &Chunk{}
}

// Write appends a byte and the source line that produced it.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends v to the constant pool and returns its index. The
// caller is responsible for rejecting an index that would exceed
// MaxConstants-1 (the compiler reports that as a compile error; the chunk
// itself has no notion of "too many").
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// ReadShort big-endian decodes the two bytes at offset.
func (c *Chunk) ReadShort(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}
