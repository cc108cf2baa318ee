// Package disasm renders a compiled chunk.Chunk as a human-readable
// instruction listing, the same debug view original_source/c/debug.c
// produces and the teacher's Chunk.Disassemble/disassembleInstruction
// methods implement over the teacher's larger opcode set. Unlike the
// original C debugger's bytesInstruction (which reads a single operand
// byte), every multi-byte operand here is read as the 16-bit big-endian
// value the compiler actually emits — REDESIGN FLAG #5 fixed at the only
// other place operand width matters.
package disasm

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/estevaofon/loxvm/internal/chunk"
)

// Disassemble writes a full listing of c to w under the given name header,
// followed by a sorted constant-pool summary so a reader can look up a
// constant's value without hunting back through the instruction listing for
// its first use.
func Disassemble(w io.Writer, c *chunk.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = Instruction(w, c, offset)
	}
	if len(c.Constants) == 0 {
		return
	}
	fmt.Fprintf(w, "-- constants --\n")
	for _, line := range ConstantPoolSummary(c) {
		fmt.Fprintln(w, line)
	}
}

// Instruction writes one decoded instruction at offset and returns the
// offset of the next one.
func Instruction(w io.Writer, c *chunk.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := chunk.OpCode(c.Code[offset])
	switch op {
	case chunk.OpConstant, chunk.OpGetGlobal, chunk.OpDefineGlobal,
		chunk.OpDefineGlobalConst, chunk.OpSetGlobal:
		return constantInstruction(w, c, offset)
	case chunk.OpGetLocal, chunk.OpSetLocal:
		return shortInstruction(w, c, offset)
	case chunk.OpJump, chunk.OpJumpIfFalse:
		return jumpInstruction(w, c, offset, 1)
	case chunk.OpLoop:
		return jumpInstruction(w, c, offset, -1)
	default:
		return simpleInstruction(w, op, offset)
	}
}

func simpleInstruction(w io.Writer, op chunk.OpCode, offset int) int {
	fmt.Fprintf(w, "%s\n", op)
	return offset + 1
}

// shortInstruction prints a 16-bit slot operand (OP_GET_LOCAL/OP_SET_LOCAL).
func shortInstruction(w io.Writer, c *chunk.Chunk, offset int) int {
	slot := c.ReadShort(offset + 1)
	fmt.Fprintf(w, "%-22s %4d\n", chunk.OpCode(c.Code[offset]), slot)
	return offset + 3
}

func constantInstruction(w io.Writer, c *chunk.Chunk, offset int) int {
	idx := c.ReadShort(offset + 1)
	fmt.Fprintf(w, "%-22s %4d '%s'\n", chunk.OpCode(c.Code[offset]), idx, c.Constants[idx])
	return offset + 3
}

func jumpInstruction(w io.Writer, c *chunk.Chunk, offset, sign int) int {
	jump := int(c.ReadShort(offset + 1))
	fmt.Fprintf(w, "%-22s %4d -> %d\n", chunk.OpCode(c.Code[offset]), offset, offset+3+sign*jump)
	return offset + 3
}

// ConstantPoolSummary returns a deterministic, sorted "index: value" listing
// of c's constant pool. Disassemble appends it as every listing's trailer;
// it is also exported so a caller can render just the summary on its own.
// Grounded on the teacher's DisassembleAll, which likewise walks a chunk's
// constant pool when rendering a listing; golang.org/x/exp/maps collects the
// indices (in no particular order) and sort.Ints puts them in index order.
func ConstantPoolSummary(c *chunk.Chunk) []string {
	byIndex := make(map[int]string, len(c.Constants))
	for i, v := range c.Constants {
		byIndex[i] = fmt.Sprintf("%d: %s", i, v)
	}
	indices := maps.Keys(byIndex)
	sort.Ints(indices)
	lines := make([]string, 0, len(indices))
	for _, i := range indices {
		lines = append(lines, byIndex[i])
	}
	return lines
}
