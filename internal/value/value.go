// Package value defines the tagged runtime value representation shared by the
// compiler and the VM.
package value

import "fmt"

// Type tags the variant held by a Value.
type Type int

const (
	Nil Type = iota
	Bool
	Number
	Object
)

func (t Type) String() string {
	switch t {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Obj is the interface implemented by every heap-allocated object variant.
// The only variant the language specifies is *strtable.String, but Value
// keeps Obj generic so this package has no import cycle on strtable.
type Obj interface {
	ObjMarker()
}

// Value is a tagged union: Nil, Bool(bool), Number(float64) or Object(Obj).
type Value struct {
	typ Type
	b   bool
	n   float64
	obj Obj
}

// NilValue is the single Nil value.
var NilValue = Value{typ: Nil}

func NewBool(b bool) Value {
	return Value{typ: Bool, b: b}
}

func NewNumber(n float64) Value {
	return Value{typ: Number, n: n}
}

func NewObject(o Obj) Value {
	return Value{typ: Object, obj: o}
}

func (v Value) Type() Type     { return v.typ }
func (v Value) IsNil() bool    { return v.typ == Nil }
func (v Value) IsBool() bool   { return v.typ == Bool }
func (v Value) IsNumber() bool { return v.typ == Number }
func (v Value) IsObject() bool { return v.typ == Object }

func (v Value) AsBool() bool      { return v.b }
func (v Value) AsNumber() float64 { return v.n }
func (v Value) AsObject() Obj     { return v.obj }

// IsFalsey reports whether v is Nil or Bool(false). Every other value
// (including Number(0) and the empty string) is truthy.
func IsFalsey(v Value) bool {
	return v.typ == Nil || (v.typ == Bool && !v.b)
}

// Equal implements values_equal: false on tag mismatch, otherwise compares by
// variant. Strings compare by pointer identity — the intern table guarantees
// that equal content means equal pointer, so a plain interface comparison on
// Obj is sufficient.
func Equal(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case Nil:
		return true
	case Bool:
		return a.b == b.b
	case Number:
		return a.n == b.n
	case Object:
		return a.obj == b.obj
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.typ {
	case Nil:
		return "nil"
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Number:
		return formatNumber(v.n)
	case Object:
		return fmt.Sprintf("%v", v.obj)
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}
