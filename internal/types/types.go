// Package types implements the five-primitive-plus-array-plus-procedure
// type lattice and the hint-driven coercion rules of spec §4.3.2.
package types

import "fmt"

// Kind identifies one of the value kinds spec §3 enumerates, plus the
// Procedure and Void/Undefined sentinels the symbol table needs.
type Kind int

const (
	Undefined Kind = iota
	Integer
	Float
	Bool
	Character
	String
	Array
	Procedure
	Void // the "return" type of a procedure, which yields no value
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Character:
		return "char"
	case String:
		return "string"
	case Array:
		return "array"
	case Procedure:
		return "procedure"
	case Void:
		return "void"
	default:
		return "undefined"
	}
}

// Direction is a parameter's passing mode (spec §4.3.4).
type Direction int

const (
	DirNone Direction = iota
	DirIn
	DirOut
	DirInout
)

func (d Direction) String() string {
	switch d {
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirInout:
		return "inout"
	default:
		return ""
	}
}

// Type is a value type: a primitive kind, or an array of a primitive kind
// with static bounds. Spec §1's Non-goals exclude nested array types, so
// Array.Element is always a primitive, never itself an Array.
type Type struct {
	Kind Kind

	// Array-only fields. Lower/Upper are inclusive declared bounds; Count
	// is the element count as the original computes it: Upper - Lower
	// (see spec §9 — intentionally not inclusive; preserved as a quirk).
	Element *Type
	Lower   int
	Upper   int
	Count   int
}

// Primitive constructs a scalar Type for one of the five value kinds.
func Primitive(k Kind) Type { return Type{Kind: k} }

// NewArray builds an array Type with the spec's off-by-one element count.
func NewArray(elem Kind, lower, upper int) Type {
	return Type{
		Kind:    Array,
		Element: &Type{Kind: elem},
		Lower:   lower,
		Upper:   upper,
		Count:   upper - lower,
	}
}

var (
	TInteger = Primitive(Integer)
	TFloat   = Primitive(Float)
	TBool    = Primitive(Bool)
	TChar    = Primitive(Character)
	TString  = Primitive(String)
	TVoid    = Primitive(Void)
)

// Equals reports structural equality: same kind, and for arrays the same
// element kind and the same declared bounds.
func (t Type) Equals(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind != Array {
		return true
	}
	return t.Element.Kind == o.Element.Kind && t.Lower == o.Lower && t.Upper == o.Upper
}

func (t Type) IsNumeric() bool { return t.Kind == Integer || t.Kind == Float }

func (t Type) String() string {
	if t.Kind == Array {
		return fmt.Sprintf("array[%d:%d] of %s", t.Lower, t.Upper, t.Element.Kind)
	}
	return t.Kind.String()
}

// Param describes one formal parameter: its declared type and passing
// direction.
type Param struct {
	Name      string
	Type      Type
	Direction Direction
}

// Signature describes a procedure's parameter list. Spec's grammar has no
// return-value syntax for procedures (§4.3.1's grammar has no function
// form), so every procedure's return type is Void.
type Signature struct {
	Params []Param
}

// CoercionError describes a hint/natural type pair that CanCoerce rejects.
// No function in this package returns it; its message has the same form as
// the parser's own "cannot coerce" diagnostic (§4.3.2:
// "Any coercion request outside this table is an error").
type CoercionError struct {
	From, To Type
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %s to %s", e.From, e.To)
}

// CanCoerce reports whether a value of type from may be implicitly
// coerced to type to, per spec §4.3.2's lattice:
//   - integer <-> float
//   - integer <-> bool
//   - array element to array element when lengths match (assignment only)
//
// String and character coerce to nothing else, matching themselves only.
func CanCoerce(from, to Type) bool {
	if from.Equals(to) {
		return true
	}
	switch {
	case from.Kind == Integer && to.Kind == Float:
		return true
	case from.Kind == Float && to.Kind == Integer:
		return true
	case from.Kind == Integer && to.Kind == Bool:
		return true
	case from.Kind == Bool && to.Kind == Integer:
		return true
	case from.Kind == Array && to.Kind == Array:
		return from.Element.Kind == to.Element.Kind && from.Count == to.Count
	default:
		return false
	}
}
