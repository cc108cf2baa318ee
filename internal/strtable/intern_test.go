package strtable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estevaofon/loxvm/internal/value"
)

func TestCopyStringInterns(t *testing.T) {
	tbl := NewInternTable()

	a := tbl.CopyString("hello")
	b := tbl.CopyString("hello")

	require.Same(t, a, b, "equal byte content must yield pointer-identical strings")
	assert.Equal(t, 1, tbl.Count())
}

func TestCopyStringDistinguishesContent(t *testing.T) {
	tbl := NewInternTable()

	a := tbl.CopyString("foo")
	b := tbl.CopyString("bar")

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, tbl.Count())
}

func TestTakeStringReusesInternedCopy(t *testing.T) {
	tbl := NewInternTable()

	a := tbl.CopyString("concat")
	b := tbl.TakeString("concat")

	require.Same(t, a, b)
}

func TestInternTableGrowsAndPreservesEntries(t *testing.T) {
	tbl := NewInternTable()

	var strs []*String
	for i := 0; i < 200; i++ {
		strs = append(strs, tbl.CopyString(fmt.Sprintf("s%d", i)))
	}

	// After growth every previously interned string must still resolve to
	// the exact same pointer, and to itself when copied again.
	for i, s := range strs {
		again := tbl.CopyString(fmt.Sprintf("s%d", i))
		assert.Same(t, s, again)
	}
	assert.Equal(t, 200, tbl.Count())
}

func TestInternTableTracksObjectList(t *testing.T) {
	tbl := NewInternTable()
	tbl.CopyString("a")
	tbl.CopyString("b")
	tbl.CopyString("a") // duplicate, should not grow the object list

	assert.Len(t, tbl.Objects(), 2)
}

func TestGlobalTableDefineGetSet(t *testing.T) {
	interns := NewInternTable()
	globals := NewGlobalTable()

	name := interns.CopyString("x")
	globals.Define(name, value.NewNumber(1), false)

	got, ok := globals.Get(name)
	require.True(t, ok)
	assert.Equal(t, float64(1), got.AsNumber())

	existed, constViolation := globals.Set(name, value.NewNumber(2))
	assert.True(t, existed)
	assert.False(t, constViolation)

	got, _ = globals.Get(name)
	assert.Equal(t, float64(2), got.AsNumber())
}

func TestGlobalTableRejectsConstAssignment(t *testing.T) {
	interns := NewInternTable()
	globals := NewGlobalTable()

	name := interns.CopyString("k")
	globals.Define(name, value.NewNumber(10), true)

	_, constViolation := globals.Set(name, value.NewNumber(11))
	assert.True(t, constViolation)

	got, _ := globals.Get(name)
	assert.Equal(t, float64(10), got.AsNumber(), "const value must be unchanged")
}

func TestGlobalTableGetUndefined(t *testing.T) {
	interns := NewInternTable()
	globals := NewGlobalTable()

	_, ok := globals.Get(interns.CopyString("missing"))
	assert.False(t, ok)
}
