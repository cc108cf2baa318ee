// Package vm implements the stack-based bytecode interpreter: fetch-decode-
// execute over a compiled chunk.Chunk, a fixed-depth value stack, and the
// globals/intern tables shared with the compiler. Grounded line for line on
// original_source/c/vm.c's run() and runtimeError() — the teacher's own
// internal/vm/vm.go targets a much larger opcode set (closures, arrays,
// native calls, a SQL plugin loader) that has no home in this spec, so the
// dispatch loop here is rebuilt from the original C source rather than
// trimmed from the teacher's.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/estevaofon/loxvm/internal/chunk"
	"github.com/estevaofon/loxvm/internal/compiler"
	"github.com/estevaofon/loxvm/internal/strtable"
	"github.com/estevaofon/loxvm/internal/value"
)

// Result mirrors interpretResult from the original source.
type Result int

const (
	OK Result = iota
	CompileError
	RuntimeError
)

// DefaultStackSize is the VM's value stack depth (spec.md §5) absent a
// driver override (SPEC_FULL.md §2's RunnerConfig stack-size knob).
const DefaultStackSize = 256

// VM executes one chunk at a time. It owns the intern and globals tables for
// its whole lifetime, so string constants the compiler bakes into a chunk
// stay valid objects across repeated Interpret calls (a REPL's successive
// inputs share one VM).
type VM struct {
	chunk *chunk.Chunk
	ip    int

	stack    []value.Value
	stackTop int
	err      error

	globals *strtable.GlobalTable
	interns *strtable.InternTable

	stdout io.Writer
	stdin  *bufio.Reader
}

// New returns a VM with fresh globals/intern tables and the default stack
// depth, ready to Interpret.
func New(stdout io.Writer, stdin io.Reader) *VM {
	return NewWithStackSize(stdout, stdin, DefaultStackSize)
}

// NewWithStackSize is New with an explicit value-stack depth, for a driver
// whose RunnerConfig overrides SPEC_FULL.md §2's default.
func NewWithStackSize(stdout io.Writer, stdin io.Reader, stackSize int) *VM {
	return &VM{
		stack:   make([]value.Value, stackSize),
		globals: strtable.NewGlobalTable(),
		interns: strtable.NewInternTable(),
		stdout:  stdout,
		stdin:   bufio.NewReader(stdin),
	}
}

// Interns exposes the VM's intern table so a driver can share it with the
// compiler explicitly, or inspect it in tests.
func (vm *VM) Interns() *strtable.InternTable { return vm.interns }

// Chunk exposes the chunk most recently passed to Run (directly or through
// Interpret). Nil until the first Run.
func (vm *VM) Chunk() *chunk.Chunk { return vm.chunk }

// Interpret compiles source and, on success, runs it on this VM. A compile
// error returns (CompileError, err) without touching the stack; a runtime
// error returns (RuntimeError, err) with the stack already reset.
func (vm *VM) Interpret(source string) (Result, error) {
	c, err := compiler.Compile(source, vm.interns)
	if err != nil {
		return CompileError, err
	}
	return vm.Run(c)
}

// Run executes an already-compiled chunk, letting a driver disassemble it
// between compiling and running (the order original_source/c's main takes
// under DEBUG_PRINT_CODE).
func (vm *VM) Run(c *chunk.Chunk) (Result, error) {
	vm.chunk = c
	vm.ip = 0
	vm.resetStack()
	return vm.run()
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.err = nil
}

// push guards against writing past the fixed value stack. spec.md §5 leaves
// stack overflow undefined, but §7's error taxonomy has room for it, so it is
// reported as a runtime error (recorded on vm.err and checked once per
// dispatch loop iteration in run()) rather than left to panic on an
// out-of-bounds array write.
func (vm *VM) push(v value.Value) {
	if vm.stackTop >= len(vm.stack) {
		if vm.err == nil {
			vm.err = vm.runtimeError("Stack overflow.")
		}
		return
	}
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readShort() int {
	hi, lo := vm.chunk.Code[vm.ip], vm.chunk.Code[vm.ip+1]
	vm.ip += 2
	return int(hi)<<8 | int(lo)
}

func (vm *VM) readConstant() value.Value {
	return vm.chunk.Constants[vm.readShort()]
}

func (vm *VM) readString() *strtable.String {
	return vm.readConstant().AsObject().(*strtable.String)
}

// runtimeError formats the two-line diagnostic spec.md §7 pins down and
// resets the stack, mirroring original_source/c/vm.c's runtimeError(). The
// instruction that faulted is the one just read, so the reported line comes
// from ip-1.
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	line := vm.chunk.Lines[vm.ip-1]
	vm.resetStack()
	return fmt.Errorf("%s\n[line %d] in script", msg, line)
}

func (vm *VM) concatenate() {
	b := vm.pop().AsObject().(*strtable.String)
	a := vm.pop().AsObject().(*strtable.String)
	s := vm.interns.TakeString(a.Bytes + b.Bytes)
	vm.push(s.Value())
}

// run is the fetch-decode-execute loop, translated case for case from
// original_source/c/vm.c's run().
func (vm *VM) run() (Result, error) {
	for {
		op := chunk.OpCode(vm.readByte())
		switch op {
		case chunk.OpConstant:
			vm.push(vm.readConstant())

		case chunk.OpAdd:
			if vm.bothStrings() {
				vm.concatenate()
				break
			}
			if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
				b := vm.pop().AsNumber()
				a := vm.pop().AsNumber()
				vm.push(value.NewNumber(a + b))
			} else {
				return RuntimeError, vm.runtimeError("You can only add string(concat) or numbers(binary)")
			}

		case chunk.OpSubtract:
			a, b, ok := vm.numericOperands()
			if !ok {
				return RuntimeError, vm.runtimeError("Operands must be numbers.")
			}
			vm.push(value.NewNumber(a - b))

		case chunk.OpMultiply:
			a, b, ok := vm.numericOperands()
			if !ok {
				return RuntimeError, vm.runtimeError("Operands must be numbers.")
			}
			vm.push(value.NewNumber(a * b))

		case chunk.OpDivide:
			a, b, ok := vm.numericOperands()
			if !ok {
				return RuntimeError, vm.runtimeError("Operands must be numbers.")
			}
			vm.push(value.NewNumber(a / b))

		case chunk.OpPow:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return RuntimeError, vm.runtimeError("Operands must be numbers.")
			}
			exponent := vm.pop().AsNumber()
			base := vm.pop().AsNumber()
			vm.push(value.NewNumber(math.Pow(base, exponent)))

		case chunk.OpNil, chunk.OpNV:
			vm.push(value.NilValue)

		case chunk.OpTrue:
			vm.push(value.NewBool(true))

		case chunk.OpFalse:
			vm.push(value.NewBool(false))

		case chunk.OpPop:
			vm.pop()

		case chunk.OpGetGlobal:
			name := vm.readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return RuntimeError, vm.runtimeError("Undefined variable '%s'.", name.Bytes)
			}
			vm.push(v)

		case chunk.OpDefineGlobal:
			name := vm.readString()
			vm.globals.Define(name, vm.peek(0), false)
			vm.pop()

		case chunk.OpDefineGlobalConst:
			name := vm.readString()
			vm.globals.Define(name, vm.peek(0), true)
			vm.pop()

		case chunk.OpSetGlobal:
			name := vm.readString()
			existed, constViolation := vm.globals.Set(name, vm.peek(0))
			if constViolation {
				return RuntimeError, vm.runtimeError("Can't assign to constant variable '%s'.", name.Bytes)
			}
			if !existed {
				return RuntimeError, vm.runtimeError("Undefined variable '%s'.", name.Bytes)
			}

		case chunk.OpGetLocal:
			slot := vm.readShort()
			vm.push(vm.stack[slot])

		case chunk.OpSetLocal:
			slot := vm.readShort()
			vm.stack[slot] = vm.peek(0)

		case chunk.OpNot:
			vm.push(value.NewBool(value.IsFalsey(vm.pop())))

		case chunk.OpEqual:
			a := vm.pop()
			b := vm.pop()
			vm.push(value.NewBool(value.Equal(a, b)))

		case chunk.OpLess:
			a, b, ok := vm.numericOperands()
			if !ok {
				return RuntimeError, vm.runtimeError("Operands must be numbers.")
			}
			vm.push(value.NewBool(a < b))

		case chunk.OpGreater:
			a, b, ok := vm.numericOperands()
			if !ok {
				return RuntimeError, vm.runtimeError("Operands must be numbers.")
			}
			vm.push(value.NewBool(a > b))

		case chunk.OpLessEqual:
			a, b, ok := vm.numericOperands()
			if !ok {
				return RuntimeError, vm.runtimeError("Operands must be numbers.")
			}
			vm.push(value.NewBool(a <= b))

		case chunk.OpGreaterEqual:
			a, b, ok := vm.numericOperands()
			if !ok {
				return RuntimeError, vm.runtimeError("Operands must be numbers.")
			}
			vm.push(value.NewBool(a >= b))

		case chunk.OpNegate:
			if !vm.peek(0).IsNumber() {
				return RuntimeError, vm.runtimeError("Operand must be a number.")
			}
			vm.push(value.NewNumber(-vm.pop().AsNumber()))

		case chunk.OpPrint:
			fmt.Fprintf(vm.stdout, "%s\n", vm.pop().String())

		case chunk.OpInput:
			line, _ := vm.stdin.ReadString('\n')
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			vm.push(vm.interns.TakeString(line).Value())

		case chunk.OpJumpIfFalse:
			offset := vm.readShort()
			if value.IsFalsey(vm.peek(0)) {
				vm.ip += offset
			}

		case chunk.OpJump:
			offset := vm.readShort()
			vm.ip += offset

		case chunk.OpLoop:
			offset := vm.readShort()
			vm.ip -= offset

		case chunk.OpReturn:
			return OK, nil
		}

		if vm.err != nil {
			return RuntimeError, vm.err
		}
	}
}

func (vm *VM) bothStrings() bool {
	if !vm.peek(0).IsObject() || !vm.peek(1).IsObject() {
		return false
	}
	_, aOK := vm.peek(0).AsObject().(*strtable.String)
	_, bOK := vm.peek(1).AsObject().(*strtable.String)
	return aOK && bOK
}

// numericOperands pops the top two stack slots, in subtrahend/minuend order
// (b is the right-hand, more-recently-pushed operand), after checking both
// are numbers. Grounded on the BINARY_OP macro in original_source/c/vm.c.
func (vm *VM) numericOperands() (a, b float64, ok bool) {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return 0, 0, false
	}
	b = vm.pop().AsNumber()
	a = vm.pop().AsNumber()
	return a, b, true
}
