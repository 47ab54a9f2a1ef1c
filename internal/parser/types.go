package parser

import (
	"github.com/cwbudde/dwslang/internal/ir"
	"github.com/cwbudde/dwslang/internal/token"
	"github.com/cwbudde/dwslang/internal/types"
)

// irScalarType maps one of the five value kinds to its façade-level
// storage type. Strings are represented as a pointer to bytes (i8*) —
// the string "value" a variable holds is itself already a pointer, per
// original_source/src/parser.cpp's Type::getInt8PtrTy allocation for
// S_STRING entries.
func irScalarType(k types.Kind) ir.Type {
	switch k {
	case types.Integer:
		return ir.TypeI32
	case types.Float:
		return ir.TypeF32
	case types.Bool:
		return ir.TypeI1
	case types.Character:
		return ir.TypeI8
	case types.String:
		return ir.PointerTo(ir.TypeI8)
	default:
		return ir.TypeVoid
	}
}

// irAllocType returns the type a var_decl should allocate storage for:
// the scalar storage type, or a fixed-size array of it.
func irAllocType(t types.Type) ir.Type {
	if t.Kind == types.Array {
		return ir.ArrayOf(irScalarType(t.Element.Kind), t.Count)
	}
	return irScalarType(t.Kind)
}

// paramIRType maps a formal parameter's declared type and direction to
// its façade-level type, per spec §4.3.4's parameter-passing table:
//
//   - array, any direction       -> pointer to a fixed-size array
//   - string, in                 -> pointer to bytes (passed by value)
//   - string, out/inout          -> pointer to a pointer to bytes
//   - scalar, in                 -> the scalar type (passed by value)
//   - scalar, out/inout          -> pointer to the scalar type
func paramIRType(t types.Type, dir types.Direction) ir.Type {
	if t.Kind == types.Array {
		return ir.PointerTo(ir.ArrayOf(irScalarType(t.Element.Kind), t.Count))
	}
	base := irScalarType(t.Kind)
	if t.Kind == types.String {
		if dir == types.DirIn {
			return base
		}
		return ir.PointerTo(base)
	}
	if dir == types.DirIn {
		return base
	}
	return ir.PointerTo(base)
}

// typemarkKind maps one of the five typemark reserved words to its
// types.Kind, per spec §4.3.1's `typemark` production.
func typemarkKind(k token.Kind) (types.Kind, bool) {
	switch k {
	case token.RS_INTEGER:
		return types.Integer, true
	case token.RS_FLOAT:
		return types.Float, true
	case token.RS_BOOL:
		return types.Bool, true
	case token.RS_CHAR:
		return types.Character, true
	case token.RS_STRING:
		return types.String, true
	default:
		return types.Undefined, false
	}
}
