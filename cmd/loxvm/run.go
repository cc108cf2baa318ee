package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/estevaofon/loxvm/internal/compiler"
	"github.com/estevaofon/loxvm/internal/disasm"
	"github.com/estevaofon/loxvm/internal/vm"
)

// Exit codes per spec.md §6: 0 OK, 65 compile error, 70 runtime error, 74 I/O
// error.
const (
	exitOK           = 0
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOError      = 74
)

func runFile(path string, cfg RunnerConfig) int {
	source, err := os.ReadFile(path)
	if err != nil {
		logrus.WithError(err).Error("could not read script")
		return exitIOError
	}

	machine := vm.NewWithStackSize(os.Stdout, os.Stdin, cfg.StackSize)

	c, cerr := compiler.Compile(string(source), machine.Interns())
	if cerr != nil {
		fmt.Fprintln(os.Stderr, cerr)
		return exitCompileError
	}

	if cfg.Disassemble {
		disasm.Disassemble(os.Stderr, c, path)
	}

	result, err := machine.Run(c)
	switch result {
	case vm.RuntimeError:
		fmt.Fprintln(os.Stderr, err)
		return exitRuntimeError
	default:
		return exitOK
	}
}
