package vm

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (stdout string, result Result, err error) {
	t.Helper()
	var out bytes.Buffer
	v := New(&out, strings.NewReader(""))
	result, err = v.Interpret(src)
	return out.String(), result, err
}

func runWithStdin(t *testing.T, src, stdin string) (stdout string, result Result, err error) {
	t.Helper()
	var out bytes.Buffer
	v := New(&out, strings.NewReader(stdin))
	result, err = v.Interpret(src)
	return out.String(), result, err
}

func TestInterpretArithmetic(t *testing.T) {
	cases := map[string]string{
		"print(1 + 2);":           "3\n",
		"print(50 / 2 * 2 + 10);": "60\n",
		"print(2 * (5 + 10));":    "30\n",
		"print(3 * 3 * 3 + 10);":  "37\n",
		"print(2 ** 3);":          "8\n",
		"print((5 + 10 * 2 + 15 / 3) * 2 + -10);": "50\n",
	}
	for src, want := range cases {
		out, result, err := run(t, src)
		require.NoError(t, err, src)
		assert.Equal(t, OK, result, src)
		assert.Equal(t, want, out, src)
	}
}

func TestInterpretStringConcat(t *testing.T) {
	out, result, err := run(t, `print("foo" + "bar");`)
	require.NoError(t, err)
	assert.Equal(t, OK, result)
	assert.Equal(t, "foobar\n", out)
}

func TestInterpretAddTypeMismatchIsRuntimeError(t *testing.T) {
	_, result, err := run(t, `1 + "a";`)
	require.Error(t, err)
	assert.Equal(t, RuntimeError, result)
	assert.Contains(t, err.Error(), "You can only add string(concat) or numbers(binary)")
	assert.Contains(t, err.Error(), "[line 1] in script")
}

func TestInterpretComparisons(t *testing.T) {
	cases := map[string]string{
		"print(1 < 2);":  "true\n",
		"print(1 > 2);":  "false\n",
		"print(1 == 1);": "true\n",
		"print(1 != 1);": "false\n",
		"print(1 <= 1);": "true\n",
		"print(1 >= 2);": "false\n",
	}
	for src, want := range cases {
		out, _, err := run(t, src)
		require.NoError(t, err, src)
		assert.Equal(t, want, out, src)
	}
}

func TestInterpretGlobalVariables(t *testing.T) {
	out, result, err := run(t, "var x = 1; x = x + 1; print(x);")
	require.NoError(t, err)
	assert.Equal(t, OK, result)
	assert.Equal(t, "2\n", out)
}

func TestInterpretGlobalConstAssignmentIsRuntimeError(t *testing.T) {
	_, result, err := run(t, "const x = 1; x = 2;")
	require.Error(t, err)
	assert.Equal(t, RuntimeError, result)
	assert.Contains(t, err.Error(), "Can't assign to constant variable 'x'.")
}

func TestInterpretUndefinedGlobalReadIsRuntimeError(t *testing.T) {
	_, result, err := run(t, "print(missing);")
	require.Error(t, err)
	assert.Equal(t, RuntimeError, result)
	assert.Contains(t, err.Error(), "Undefined variable 'missing'.")
}

func TestInterpretLocalScoping(t *testing.T) {
	out, _, err := run(t, `
{
  var x = "outer";
  {
    var x = "inner";
    print(x);
  }
  print(x);
}`)
	require.NoError(t, err)
	assert.Equal(t, "inner\nouter\n", out)
}

func TestInterpretIfElse(t *testing.T) {
	out, _, err := run(t, `if (1 < 2) { print("yes"); } else { print("no"); }`)
	require.NoError(t, err)
	assert.Equal(t, "yes\n", out)
}

func TestInterpretWhileLoop(t *testing.T) {
	out, _, err := run(t, `
var i = 0;
while (i < 3) {
  print(i);
  i = i + 1;
}`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestInterpretAndOrShortCircuit(t *testing.T) {
	out, _, err := run(t, `print(false and (1/0 == 0)); print(true or (1/0 == 0));`)
	require.NoError(t, err)
	assert.Equal(t, "false\ntrue\n", out)
}

func TestInterpretInputReadsLineAndStripsNewline(t *testing.T) {
	out, result, err := runWithStdin(t, `var name = input(); print(name);`, "Ada\n")
	require.NoError(t, err)
	assert.Equal(t, OK, result)
	assert.Equal(t, "Ada\n", out)
}

func TestInterpretNegateTypeMismatchIsRuntimeError(t *testing.T) {
	_, result, err := run(t, `-"a";`)
	require.Error(t, err)
	assert.Equal(t, RuntimeError, result)
	assert.Contains(t, err.Error(), "Operand must be a number.")
}

func TestInterpretStackResetsAfterRuntimeError(t *testing.T) {
	v := New(&bytes.Buffer{}, strings.NewReader(""))
	_, err := v.Interpret(`1 + "a";`)
	require.Error(t, err)
	assert.Equal(t, 0, v.stackTop)
}

func TestInterpretStackOverflowIsRuntimeError(t *testing.T) {
	// Each local occupies its own stack slot for the rest of its scope, so a
	// block declaring more locals than DefaultStackSize overflows the value
	// stack before the block ever exits.
	var src strings.Builder
	src.WriteString("{")
	for i := 0; i < DefaultStackSize+10; i++ {
		fmt.Fprintf(&src, "var x%d = %d;", i, i)
	}
	src.WriteString("}")

	_, result, err := run(t, src.String())
	require.Error(t, err)
	assert.Equal(t, RuntimeError, result)
	assert.Contains(t, err.Error(), "Stack overflow.")
}

func TestNewWithStackSizeOverridesDefault(t *testing.T) {
	var src strings.Builder
	src.WriteString("{")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&src, "var x%d = %d;", i, i)
	}
	src.WriteString("}")

	v := NewWithStackSize(&bytes.Buffer{}, strings.NewReader(""), 10)
	_, err := v.Interpret(src.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Stack overflow.")
}

func TestInterpretCompileErrorReportedWithoutRunning(t *testing.T) {
	var out bytes.Buffer
	v := New(&out, strings.NewReader(""))
	result, err := v.Interpret(`var ;`)
	require.Error(t, err)
	assert.Equal(t, CompileError, result)
	assert.Empty(t, out.String())
}

func TestInterpretRepeatedCallsShareInterns(t *testing.T) {
	v := New(&bytes.Buffer{}, strings.NewReader(""))
	_, err := v.Interpret(`var a = "shared";`)
	require.NoError(t, err)
	before := v.Interns().Count()
	_, err = v.Interpret(`var b = "shared";`)
	require.NoError(t, err)
	assert.Equal(t, before+1, v.Interns().Count(), "only the new name 'b' is added; \"shared\" is reused across Interpret calls")
}

func TestInterpretWideJumpExecutesCorrectly(t *testing.T) {
	var b strings.Builder
	b.WriteString("if (true) {")
	for i := 0; i < 5000; i++ {
		b.WriteString("1;")
	}
	b.WriteString("print(1);")
	b.WriteString("}")
	out, result, err := run(t, b.String())
	require.NoError(t, err)
	assert.Equal(t, OK, result)
	assert.Equal(t, "1\n", out)
}
