package strtable

import "github.com/estevaofon/loxvm/internal/value"

type globalEntry struct {
	name    *String
	val     value.Value
	isConst bool
}

type globalSlot struct {
	entry     *globalEntry
	tombstone bool
}

// GlobalTable is the VM's global variable table: same open-addressed shape
// as InternTable, keyed by interned *String identity, storing a Value and a
// const flag. Entries are never deleted by the language (spec.md §3), so
// this table never produces tombstones itself, but keeps the same probe
// machinery as InternTable for a uniform "hand-coded hash table" design.
type GlobalTable struct {
	entries []globalSlot
	count   int
}

func NewGlobalTable() *GlobalTable {
	return &GlobalTable{entries: make([]globalSlot, initialCapacity)}
}

func (g *GlobalTable) capacity() int { return len(g.entries) }

func findGlobal(entries []globalSlot, capacity int, name *String) int {
	index := int(name.Hash) % capacity
	tombstone := -1
	for {
		slot := &entries[index]
		if slot.entry == nil {
			if slot.tombstone {
				if tombstone == -1 {
					tombstone = index
				}
			} else {
				if tombstone != -1 {
					return tombstone
				}
				return index
			}
		} else if slot.entry.name == name {
			return index
		}
		index = (index + 1) % capacity
	}
}

func (g *GlobalTable) grow(newCapacity int) {
	newEntries := make([]globalSlot, newCapacity)
	for _, slot := range g.entries {
		if slot.entry == nil {
			continue
		}
		idx := findGlobal(newEntries, newCapacity, slot.entry.name)
		newEntries[idx] = globalSlot{entry: slot.entry}
	}
	g.entries = newEntries
}

func (g *GlobalTable) maybeGrow() {
	if float64(g.count+1) > float64(g.capacity())*maxLoadFactor {
		g.grow(g.capacity() * 2)
	}
}

// Define inserts or overwrites name -> (val, isConst). Matches
// tableSet/DEFINE_GLOBAL(_CONST) in original_source/c/vm.c: redefinition is
// legal at this layer (the compiler is what disallows redeclaration within
// a single compile pass for locals; globals may be freely redefined, as in
// the reference VM).
func (g *GlobalTable) Define(name *String, val value.Value, isConst bool) {
	g.maybeGrow()
	idx := findGlobal(g.entries, g.capacity(), name)
	if g.entries[idx].entry == nil {
		g.count++
	}
	g.entries[idx] = globalSlot{entry: &globalEntry{name: name, val: val, isConst: isConst}}
}

// Get implements OP_GET_GLOBAL's lookup.
func (g *GlobalTable) Get(name *String) (value.Value, bool) {
	if g.count == 0 {
		return value.NilValue, false
	}
	idx := findGlobal(g.entries, g.capacity(), name)
	entry := g.entries[idx].entry
	if entry == nil {
		return value.NilValue, false
	}
	return entry.val, true
}

// Set implements tableUpdate: it only succeeds if the global already exists
// and is not const. Returns (existed, isConstViolation).
func (g *GlobalTable) Set(name *String, val value.Value) (existed bool, constViolation bool) {
	idx := findGlobal(g.entries, g.capacity(), name)
	entry := g.entries[idx].entry
	if entry == nil {
		return false, false
	}
	if entry.isConst {
		return true, true
	}
	entry.val = val
	return true, false
}
