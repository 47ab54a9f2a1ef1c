package ir

import "fmt"

// ValueKind distinguishes the handful of things a Value can be: the result
// of an instruction, a constant, a function argument, or a global.
type ValueKind int

const (
	ValInstr ValueKind = iota
	ValConstInt
	ValConstFloat
	ValConstBool
	ValArg
	ValGlobal
)

// Value is one SSA-style value flowing through emitted IR: a typed,
// named reference, either to an instruction's result, a constant, a
// function parameter, or a global variable. The parser holds onto Values
// returned by Builder methods and feeds them back in as operands,
// exactly as original_source/src/parser.cpp threads llvm::Value* through
// its expression grammar.
type Value struct {
	Kind ValueKind
	Typ  Type
	name string

	ConstInt   int64
	ConstFloat float64
	ConstBool  bool

	global *Global // set when Kind == ValGlobal
}

func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case ValConstInt:
		return fmt.Sprintf("%d", v.ConstInt)
	case ValConstFloat:
		return fmt.Sprintf("%g", v.ConstFloat)
	case ValConstBool:
		if v.ConstBool {
			return "true"
		}
		return "false"
	default:
		return v.name
	}
}

// Type returns the value's façade-level type.
func (v *Value) Type() Type { return v.Typ }

// GlobalData returns the backing byte content of the global this value
// refers to (non-nil only for ConstString's literal backing), or nil for
// every other kind of value. Exposed so a consumer like a tree-walking
// interpreter can recover a string literal's actual text — the façade
// itself never interprets it.
func (v *Value) GlobalData() []byte {
	if v.Kind != ValGlobal || v.global == nil {
		return nil
	}
	return v.global.Data
}

// Global is a module-level storage location: either a user `global`
// variable or the backing store for a string literal. User globals are
// zero-initialized and 16-byte aligned, matching
// original_source/src/parser.cpp's GlobalVariable construction; a string
// literal's backing store holds its bytes in Data and is 1-byte aligned.
type Global struct {
	Name      string
	Typ       Type
	Init      *Value
	Data      []byte // literal content, set only by ConstString
	Alignment int
}
