package main

import "github.com/caarlos0/env/v6"

// RunnerConfig holds the driver's environment-variable knobs, parsed with
// caarlos0/env (grounded on mna-nenuphar's go.mod) rather than hard-coding
// them as flags only. Flags still win when both are set — see main.go.
type RunnerConfig struct {
	// Disassemble prints a bytecode listing before executing a script.
	Disassemble bool `env:"LOXVM_DISASSEMBLE" envDefault:"false"`
	// PrintStackTrace dumps a Go stack trace to stderr on an internal panic,
	// instead of the default one-line recovery message.
	PrintStackTrace bool `env:"LOXVM_STACKTRACE" envDefault:"false"`
	// StackSize overrides the VM's value-stack depth (vm.DefaultStackSize).
	StackSize int `env:"LOXVM_STACK_SIZE" envDefault:"256"`
}

func loadConfig() (RunnerConfig, error) {
	var cfg RunnerConfig
	if err := env.Parse(&cfg); err != nil {
		return RunnerConfig{}, err
	}
	return cfg, nil
}
