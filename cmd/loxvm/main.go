// Command loxvm is the external driver spec.md §1 treats as interface-only:
// it reads source, invokes the compiler, prints results and exits with a
// status code. Grounded on the teacher's cmd/noxy/main.go (file-vs-REPL
// split, panic recovery) restructured around spf13/cobra (rami3l-golox's
// go.mod stack) instead of the teacher's bare flag package.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	easy "github.com/t-tomalak/logrus-easy-formatter"
)

const version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() (exitCode int) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "loxvm: invalid configuration:", err)
		return exitIOError
	}

	configureLogging()

	defer func() {
		if r := recover(); r != nil {
			if cfg.PrintStackTrace {
				fmt.Fprintln(os.Stderr, r)
				debug.PrintStack()
			} else {
				fmt.Fprintln(os.Stderr, "loxvm: internal error:", r)
			}
			exitCode = exitRuntimeError
		}
	}()

	root := &cobra.Command{
		Use:     "loxvm [script]",
		Short:   "Compile and run loxvm scripts",
		Version: version,
		Long: heredoc.Doc(`
			loxvm compiles and runs programs written in the language this VM
			implements: a small, dynamically typed, expression-oriented
			scripting language with var/const bindings, if/while control flow
			and string/number values.

			With a script path argument, loxvm compiles and runs that file.
			With no arguments, it starts an interactive REPL.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				exitCode = runREPL(cfg)
				return nil
			}
			exitCode = runFile(args[0], cfg)
			return nil
		},
	}
	root.Flags().BoolVar(&cfg.Disassemble, "disassemble", cfg.Disassemble,
		"print a bytecode listing before executing")
	root.Flags().IntVar(&cfg.StackSize, "stack-size", cfg.StackSize,
		"override the VM's value-stack depth")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIOError
	}
	return exitCode
}

// configureLogging sets up logrus for driver-level diagnostics only — never
// for the compiler/runtime error text spec.md §7 pins to an exact format,
// which is written straight to stderr elsewhere in this package.
func configureLogging() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "15:04:05",
		LogFormat:       "[%lvl%] %msg%\n",
	})
	logrus.SetOutput(os.Stderr)
}
