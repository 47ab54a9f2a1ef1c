package parser

import (
	"fmt"

	"github.com/cwbudde/dwslang/internal/ir"
	"github.com/cwbudde/dwslang/internal/semantic"
	"github.com/cwbudde/dwslang/internal/token"
	"github.com/cwbudde/dwslang/internal/types"
)

// typedValue pairs an emitted façade Value with its source-level type.
// Addr, when non-nil, is the storage address the value was just loaded
// from — factor/name set it so a by-reference call argument can reuse
// the same address instead of materializing a fresh temporary (spec
// §4.3.4's "reuse an existing addressable value's storage" rule).
// Coercion (CreateSIToFP etc.) always clears Addr: the coerced value no
// longer lives at that address.
type typedValue struct {
	V    *ir.Value
	T    types.Type
	Addr *ir.Value
}

// expr implements spec §4.3.1's top production:
//
//	expr := [ "not" ] arith { ( "&" | "|" ) arith }
//
// hint drives the single coercion applied once the full expression has
// been reduced, per §4.3.2's "coercion happens at the boundary, not at
// every intermediate step" rule.
func (p *Parser) expr(hint types.Type) typedValue {
	var v typedValue
	if p.token() == token.RS_NOT {
		line := p.cur.Line
		p.advance()
		v = p.notExpr(p.arith(types.Type{}), line)
	} else {
		v = p.arith(hint)
	}
	for p.token() == token.AND || p.token() == token.OR {
		op := p.token()
		line := p.cur.Line
		p.advance()
		rhs := p.arith(types.Type{})
		v = p.logicalBinary(op, v, rhs, line)
	}
	return p.coerce(v, hint, p.cur.Line)
}

// notExpr applies unary `not`: bitwise complement on an integer, logical
// complement on a bool. Unlike original_source/src/parser.cpp's
// expression(), which computes the XOR correctly and then immediately
// overwrites it with the un-negated operand before returning, this
// implementation actually returns the negated value.
func (p *Parser) notExpr(v typedValue, line int) typedValue {
	switch v.T.Kind {
	case types.Integer:
		v.V = p.b.CreateXor(v.V, p.b.ConstInt(-1))
	case types.Bool:
		v.V = p.b.CreateXor(v.V, p.b.ConstBool(true))
	default:
		p.sink.ReportError("not may only be applied to integer or bool values", line)
	}
	v.Addr = nil
	return v
}

// logicalBinary implements the "&"/"|" production: bitwise on integers,
// logical on bools, with the same widen-the-weaker-operand rule relation
// and arith use when the two sides disagree.
func (p *Parser) logicalBinary(op token.Kind, lhs, rhs typedValue, line int) typedValue {
	lhs, rhs, resT := p.alignLogical(lhs, rhs, line)
	var v *ir.Value
	if op == token.AND {
		v = p.b.CreateAnd(lhs.V, rhs.V)
	} else {
		v = p.b.CreateOr(lhs.V, rhs.V)
	}
	return typedValue{V: v, T: resT}
}

func (p *Parser) alignLogical(lhs, rhs typedValue, line int) (typedValue, typedValue, types.Type) {
	if lhs.T.Kind == rhs.T.Kind {
		return lhs, rhs, lhs.T
	}
	switch {
	case lhs.T.Kind == types.Bool && rhs.T.Kind == types.Integer:
		lhs.V, lhs.T = p.b.CreateBoolToInt(lhs.V), types.TInteger
		return lhs, rhs, types.TInteger
	case lhs.T.Kind == types.Integer && rhs.T.Kind == types.Bool:
		rhs.V, rhs.T = p.b.CreateBoolToInt(rhs.V), types.TInteger
		return lhs, rhs, types.TInteger
	default:
		p.sink.ReportError("& and | are only defined on integer and bool operands", line)
		return lhs, rhs, lhs.T
	}
}

// arith implements:
//
//	arith := relation { ( "+" | "-" ) relation }
func (p *Parser) arith(hint types.Type) typedValue {
	v := p.relation(hint)
	for p.token() == token.PLUS || p.token() == token.MINUS {
		op := p.token()
		line := p.cur.Line
		p.advance()
		rhs := p.relation(types.Type{})
		v = p.arithBinary(op, v, rhs, line)
	}
	return v
}

// relation implements:
//
//	relation := term { ( "<" | ">" | "<=" | ">=" | "==" | "!=" ) term }
func (p *Parser) relation(hint types.Type) typedValue {
	v := p.term(hint)
	for isRelationalOp(p.token()) {
		op := p.token()
		line := p.cur.Line
		p.advance()
		rhs := p.term(types.Type{})
		v = p.relationBinary(op, v, rhs, hint, line)
	}
	return v
}

func isRelationalOp(k token.Kind) bool {
	switch k {
	case token.LT, token.GT, token.LT_EQ, token.GT_EQ, token.EQUALS, token.NOTEQUAL:
		return true
	default:
		return false
	}
}

// term implements:
//
//	term := factor { ( "*" | "/" ) factor }
func (p *Parser) term(hint types.Type) typedValue {
	v := p.factor(hint)
	for p.token() == token.MULTIPLICATION || p.token() == token.DIVISION {
		op := p.token()
		line := p.cur.Line
		p.advance()
		rhs := p.factor(types.Type{})
		v = p.arithBinary(op, v, rhs, line)
	}
	return v
}

// factor implements:
//
//	factor := "(" expr ")" | "-" factor | name | INTEGER | FLOAT
//	        | STRING | CHAR | "true" | "false"
func (p *Parser) factor(hint types.Type) typedValue {
	switch p.token() {
	case token.L_PAREN:
		p.advance()
		v := p.expr(hint)
		p.require(token.R_PAREN)
		return v
	case token.MINUS:
		line := p.cur.Line
		p.advance()
		return p.negate(p.factor(hint), line)
	case token.IDENTIFIER:
		return p.name()
	case token.INTEGER:
		tok := p.advance()
		return typedValue{V: p.b.ConstInt(tok.Int), T: types.TInteger}
	case token.FLOAT:
		tok := p.advance()
		return typedValue{V: p.b.ConstFloat(tok.Float), T: types.TFloat}
	case token.STRING:
		tok := p.advance()
		return typedValue{V: p.b.ConstString(tok.Text), T: types.TString}
	case token.CHAR:
		tok := p.advance()
		return typedValue{V: p.b.ConstChar(tok.Char), T: types.TChar}
	case token.RS_TRUE:
		p.advance()
		return typedValue{V: p.b.ConstBool(true), T: types.TBool}
	case token.RS_FALSE:
		p.advance()
		return typedValue{V: p.b.ConstBool(false), T: types.TBool}
	default:
		tok := p.advance()
		p.sink.ReportError(fmt.Sprintf("unexpected token %s in expression", tok.Kind), tok.Line)
		return typedValue{V: p.b.ConstInt(0), T: types.TInteger}
	}
}

func (p *Parser) negate(v typedValue, line int) typedValue {
	switch v.T.Kind {
	case types.Integer:
		if v.V.Kind == ir.ValConstInt {
			v.V = p.b.ConstInt(-v.V.ConstInt)
		} else {
			v.V = p.b.CreateNeg(v.V)
		}
	case types.Float:
		if v.V.Kind == ir.ValConstFloat {
			v.V = p.b.ConstFloat(-v.V.ConstFloat)
		} else {
			v.V = p.b.CreateFNeg(v.V)
		}
	default:
		p.sink.ReportError("unary - may only be applied to integer or float values", line)
	}
	v.Addr = nil
	return v
}

// name implements the identifier-led alternative of factor:
//
//	name := IDENT [ "[" expr "]" ]
//
// An array-typed identifier with no index yields the array's own pointer
// (used only as a whole-array argument or whole-array assignment source/
// target — arithmetic never applies to an unindexed array).
func (p *Parser) name() typedValue {
	idTok := p.require(token.IDENTIFIER)
	sym, ok := p.table.Resolve(idTok.Text, true)
	if !ok || sym.Kind == semantic.Undefined {
		p.sink.ReportError(fmt.Sprintf("undeclared identifier: %s", idTok.Text), idTok.Line)
		return typedValue{V: p.b.ConstInt(0), T: types.TInteger}
	}
	addr, _ := sym.IRValue.(*ir.Value)

	if p.token() == token.L_BRACKET {
		p.advance()
		idx := p.expr(types.TInteger)
		p.require(token.R_BRACKET)
		if sym.Type.Kind != types.Array {
			p.sink.ReportError(fmt.Sprintf("%s is not an array", idTok.Text), idTok.Line)
			return typedValue{V: p.b.ConstInt(0), T: types.TInteger}
		}
		norm := p.b.CreateSub(idx.V, p.b.ConstInt(int64(sym.Type.Lower)))
		elemAddr := p.b.CreateGEP(addr, norm)
		loaded := p.b.CreateLoad(elemAddr)
		return typedValue{V: loaded, T: *sym.Type.Element, Addr: elemAddr}
	}

	if sym.Type.Kind == types.Array {
		return typedValue{V: addr, T: sym.Type, Addr: addr}
	}
	loaded := p.b.CreateLoad(addr)
	return typedValue{V: loaded, T: sym.Type, Addr: addr}
}

// arithBinary implements "+"/"-"/"*"/"/": integer if both operands are
// integer, float if either operand is float (the other is widened),
// error otherwise.
func (p *Parser) arithBinary(op token.Kind, lhs, rhs typedValue, line int) typedValue {
	lhs, rhs, isFloat, ok := p.alignNumeric(lhs, rhs, line)
	if !ok {
		return lhs
	}
	var v *ir.Value
	switch op {
	case token.PLUS:
		if isFloat {
			v = p.b.CreateFAdd(lhs.V, rhs.V)
		} else {
			v = p.b.CreateAdd(lhs.V, rhs.V)
		}
	case token.MINUS:
		if isFloat {
			v = p.b.CreateFSub(lhs.V, rhs.V)
		} else {
			v = p.b.CreateSub(lhs.V, rhs.V)
		}
	case token.MULTIPLICATION:
		if isFloat {
			v = p.b.CreateFMul(lhs.V, rhs.V)
		} else {
			v = p.b.CreateMul(lhs.V, rhs.V)
		}
	case token.DIVISION:
		if isFloat {
			v = p.b.CreateFDiv(lhs.V, rhs.V)
		} else {
			v = p.b.CreateSDiv(lhs.V, rhs.V)
		}
	}
	resT := types.TInteger
	if isFloat {
		resT = types.TFloat
	}
	return typedValue{V: v, T: resT}
}

// relationBinary implements the six comparison operators. A mismatched
// int/float pair is always widened to float (matching
// original_source/src/parser.cpp's relation_pr, which converts whichever
// side is integer up to float rather than favoring a side). The float
// "<" case uses a strict ordered-less-than predicate — the original
// emits FCmpOLE here, a bug this implementation does not reproduce: it
// emits the correct FCmpOLT.
func (p *Parser) relationBinary(op token.Kind, lhs, rhs typedValue, hint types.Type, line int) typedValue {
	lhs, rhs, isFloat, ok := p.alignRelational(lhs, rhs, hint, line)
	if !ok {
		return typedValue{V: p.b.ConstBool(false), T: types.TBool}
	}
	var v *ir.Value
	if isFloat {
		v = p.b.CreateFCmp(floatPredFor(op), lhs.V, rhs.V)
	} else {
		v = p.b.CreateICmp(intPredFor(op), lhs.V, rhs.V)
	}
	return typedValue{V: v, T: types.TBool}
}

func floatPredFor(op token.Kind) ir.FloatPred {
	switch op {
	case token.LT:
		return ir.FCmpOLT
	case token.GT:
		return ir.FCmpOGT
	case token.LT_EQ:
		return ir.FCmpOLE
	case token.GT_EQ:
		return ir.FCmpOGE
	case token.EQUALS:
		return ir.FCmpOEQ
	default:
		return ir.FCmpONE
	}
}

func intPredFor(op token.Kind) ir.IntPred {
	switch op {
	case token.LT:
		return ir.ICmpSLT
	case token.GT:
		return ir.ICmpSGT
	case token.LT_EQ:
		return ir.ICmpSLE
	case token.GT_EQ:
		return ir.ICmpSGE
	case token.EQUALS:
		return ir.ICmpEQ
	default:
		return ir.ICmpNE
	}
}

// alignNumeric widens whichever side is integer up to float if the two
// operand types disagree, reporting an error (and returning ok=false)
// if either operand is not integer or float. Arithmetic is never defined
// on bool, string, procedure, or array operands, even when both sides
// share a kind.
func (p *Parser) alignNumeric(lhs, rhs typedValue, line int) (typedValue, typedValue, bool, bool) {
	if !lhs.T.IsNumeric() || !rhs.T.IsNumeric() {
		p.sink.ReportError("arithmetic operators are only defined on integer and float operands", line)
		return lhs, rhs, false, false
	}
	if lhs.T.Kind == rhs.T.Kind {
		return lhs, rhs, lhs.T.Kind == types.Float, true
	}
	if lhs.T.Kind == types.Integer {
		lhs.V, lhs.T, lhs.Addr = p.b.CreateSIToFP(lhs.V), types.TFloat, nil
	} else {
		rhs.V, rhs.T, rhs.Addr = p.b.CreateSIToFP(rhs.V), types.TFloat, nil
	}
	return lhs, rhs, true, true
}

// alignRelational aligns the two operands of a relational comparison per
// spec §4.3.2: integer/integer and float/float compare directly, a mixed
// integer/float pair widens the integer side to float (same rule as
// alignNumeric), and bool/bool widens to integer unless the surrounding
// hint is itself bool, in which case the comparison stays over bool
// operands directly. Any other pairing — string, array, procedure, or a
// bool mismatched with a non-bool — is rejected.
func (p *Parser) alignRelational(lhs, rhs typedValue, hint types.Type, line int) (typedValue, typedValue, bool, bool) {
	if lhs.T.Kind == types.Bool && rhs.T.Kind == types.Bool {
		if hint.Kind != types.Bool {
			lhs.V, lhs.T, lhs.Addr = p.b.CreateBoolToInt(lhs.V), types.TInteger, nil
			rhs.V, rhs.T, rhs.Addr = p.b.CreateBoolToInt(rhs.V), types.TInteger, nil
		}
		return lhs, rhs, false, true
	}
	if lhs.T.IsNumeric() && rhs.T.IsNumeric() {
		if lhs.T.Kind == rhs.T.Kind {
			return lhs, rhs, lhs.T.Kind == types.Float, true
		}
		if lhs.T.Kind == types.Integer {
			lhs.V, lhs.T, lhs.Addr = p.b.CreateSIToFP(lhs.V), types.TFloat, nil
		} else {
			rhs.V, rhs.T, rhs.Addr = p.b.CreateSIToFP(rhs.V), types.TFloat, nil
		}
		return lhs, rhs, true, true
	}
	p.sink.ReportError("relational operators are only defined on integer, float, and bool operands", line)
	return lhs, rhs, false, false
}

// coerce applies spec §4.3.2's hint-driven coercion once, at an
// expression's outer boundary. A zero-value hint (types.Undefined) means
// "no hint in effect" and is a no-op.
func (p *Parser) coerce(v typedValue, hint types.Type, line int) typedValue {
	if hint.Kind == types.Undefined || v.T.Equals(hint) {
		return v
	}
	if !types.CanCoerce(v.T, hint) {
		p.sink.ReportError(fmt.Sprintf("cannot coerce %s to %s", v.T, hint), line)
		return v
	}
	switch {
	case v.T.Kind == types.Integer && hint.Kind == types.Float:
		v.V = p.b.CreateSIToFP(v.V)
	case v.T.Kind == types.Float && hint.Kind == types.Integer:
		v.V = p.b.CreateFPToSI(v.V)
	case v.T.Kind == types.Integer && hint.Kind == types.Bool:
		v.V = p.b.CreateIntToBool(v.V)
	case v.T.Kind == types.Bool && hint.Kind == types.Integer:
		v.V = p.b.CreateBoolToInt(v.V)
	default:
		return v
	}
	v.T = hint
	v.Addr = nil
	return v
}
