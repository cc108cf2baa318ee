package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"

	"github.com/estevaofon/loxvm/internal/compiler"
	"github.com/estevaofon/loxvm/internal/disasm"
	"github.com/estevaofon/loxvm/internal/vm"
)

// runREPL drives an interactive session on one long-lived VM, so `var`/
// `const` declarations and their values persist across lines — matching the
// teacher's "shared VM for persistence" REPL design, with chzyer/readline
// standing in for the teacher's bufio.Scanner loop.
func runREPL(cfg RunnerConfig) int {
	rl, err := readline.New(">>> ")
	if err != nil {
		logrus.WithError(err).Error("could not start REPL")
		return exitIOError
	}
	defer rl.Close()

	logrus.Info("loxvm REPL — Ctrl-D to exit")

	machine := vm.NewWithStackSize(os.Stdout, os.Stdin, cfg.StackSize)

	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return exitOK
		}
		if err != nil {
			logrus.WithError(err).Error("REPL read failed")
			return exitIOError
		}
		if line == "" {
			continue
		}

		c, cerr := compiler.Compile(line, machine.Interns())
		if cerr != nil {
			fmt.Fprintln(os.Stderr, cerr)
			continue
		}

		if cfg.Disassemble {
			disasm.Disassemble(os.Stderr, c, "repl")
		}

		if _, rerr := machine.Run(c); rerr != nil {
			fmt.Fprintln(os.Stderr, rerr)
		}
	}
}
