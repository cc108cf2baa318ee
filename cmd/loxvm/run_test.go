package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estevaofon/loxvm/internal/vm"
)

func writeScript(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.lox")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

// testConfig is a zero-value RunnerConfig{} with StackSize filled in, since
// envDefault tags only apply through env.Parse (loadConfig), not a literal
// struct build.
func testConfig() RunnerConfig {
	return RunnerConfig{StackSize: vm.DefaultStackSize}
}

func TestRunFileExitCodes(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code int
	}{
		{"ok", `print(1 + 1);`, exitOK},
		{"compile error", `var ;`, exitCompileError},
		{"runtime error", `1 + "a";`, exitRuntimeError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeScript(t, tc.src)
			code := runFile(path, testConfig())
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestRunFileMissingScriptIsIOError(t *testing.T) {
	code := runFile(filepath.Join(t.TempDir(), "missing.lox"), testConfig())
	assert.Equal(t, exitIOError, code)
}

func TestRunFileStackSizeOverrideIsHonored(t *testing.T) {
	path := writeScript(t, `{ var a = 1; var b = 2; var c = 3; }`)
	code := runFile(path, RunnerConfig{StackSize: 2})
	assert.Equal(t, exitRuntimeError, code)
}
