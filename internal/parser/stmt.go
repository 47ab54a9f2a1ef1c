package parser

import (
	"fmt"

	"github.com/cwbudde/dwslang/internal/ir"
	"github.com/cwbudde/dwslang/internal/semantic"
	"github.com/cwbudde/dwslang/internal/token"
	"github.com/cwbudde/dwslang/internal/types"
)

// statement implements spec §4.3.1's statement dispatch:
//
//	statement := assignment | if_statement | for_statement
//	           | return_statement | proc_call
//
// It reports whether it recognized and parsed a statement at all, so
// body() can tell "no statement here" apart from "a statement that
// failed partway through" (the latter already reported its own error).
func (p *Parser) statement() bool {
	switch p.token() {
	case token.IDENTIFIER:
		p.identifierStatement()
	case token.RS_IF:
		p.ifStatement()
	case token.RS_FOR:
		p.forStatement()
	case token.RS_RETURN:
		p.returnStatement()
	default:
		return false
	}
	return true
}

// identifierStatement disambiguates the two statement forms that start
// with an identifier: a procedure call (identifier followed by "(") and
// an assignment (everything else).
func (p *Parser) identifierStatement() {
	idTok := p.advance()
	if p.token() == token.L_PAREN {
		p.procCall(idTok)
	} else {
		p.assignmentStatement(idTok)
	}
}

// assignmentStatement implements:
//
//	assignment := IDENT [ "[" expr "]" ] ":=" expr
//
// An array-typed target with no index is a whole-array assignment
// (spec's supplemented feature: copies every element, rather than the
// original's unimplemented TODO for this case).
func (p *Parser) assignmentStatement(idTok token.Token) {
	sym, ok := p.table.Resolve(idTok.Text, true)
	if !ok || sym.Kind == semantic.Undefined {
		p.sink.ReportError(fmt.Sprintf("undeclared identifier: %s", idTok.Text), idTok.Line)
		sym = &semantic.Symbol{Name: idTok.Text, Kind: semantic.Variable, Type: types.TInteger}
	}
	addr, _ := sym.IRValue.(*ir.Value)

	var elemAddr *ir.Value
	indexed := false
	if p.token() == token.L_BRACKET {
		p.advance()
		idx := p.expr(types.TInteger)
		p.require(token.R_BRACKET)
		if sym.Type.Kind == types.Array {
			norm := p.b.CreateSub(idx.V, p.b.ConstInt(int64(sym.Type.Lower)))
			elemAddr = p.b.CreateGEP(addr, norm)
		}
		indexed = true
	}

	p.require(token.ASSIGNMENT)

	if sym.Type.Kind == types.Array && !indexed {
		rhs := p.expr(sym.Type)
		if rhs.T.Kind != types.Array || !types.CanCoerce(rhs.T, sym.Type) {
			p.sink.ReportError("array assignment requires matching element type and length", idTok.Line)
			return
		}
		p.emitArrayCopy(rhs.Addr, addr, sym.Type)
		return
	}

	target := addr
	elemType := sym.Type
	if indexed {
		target = elemAddr
		if sym.Type.Kind == types.Array {
			elemType = *sym.Type.Element
		}
	}
	rhs := p.expr(elemType)
	if target != nil {
		p.b.CreateStore(rhs.V, target)
	}
}

// emitArrayCopy unrolls an element-by-element copy from src to dst, both
// pointers to the same fixed-size array type. The count is a compile-time
// constant, so a static unrolled sequence of GEP/load/store triples needs
// no loop control of its own.
func (p *Parser) emitArrayCopy(src, dst *ir.Value, t types.Type) {
	if src == nil || dst == nil {
		return
	}
	for i := 0; i < t.Count; i++ {
		idx := p.b.ConstInt(int64(i))
		s := p.b.CreateGEP(src, idx)
		d := p.b.CreateGEP(dst, idx)
		p.b.CreateStore(p.b.CreateLoad(s), d)
	}
}

// procCall implements:
//
//	proc_call := IDENT "(" [ expr { "," expr } ] ")"
func (p *Parser) procCall(idTok token.Token) {
	sym, ok := p.table.Resolve(idTok.Text, true)
	if !ok || sym.Kind != semantic.Procedure {
		p.sink.ReportError(fmt.Sprintf("%s is not a procedure", idTok.Text), idTok.Line)
		p.skipArgumentList()
		return
	}
	fn, _ := sym.IRFunction.(*ir.Function)
	args := p.argumentList(sym)
	if fn != nil {
		p.b.CreateCall(fn, args)
	}
}

// argumentList evaluates each formal parameter's actual argument in turn,
// implementing spec §4.3.4's by-value/by-reference materialization.
func (p *Parser) argumentList(proc *semantic.Symbol) []*ir.Value {
	p.require(token.L_PAREN)
	var args []*ir.Value
	if p.token() != token.R_PAREN {
		for i, formal := range proc.Params {
			args = append(args, p.callArgument(formal))
			if i < len(proc.Params)-1 {
				p.require(token.COMMA)
			}
		}
	}
	p.require(token.R_PAREN)
	return args
}

// skipArgumentList discards a parenthesized argument list without
// evaluating it, used when the call target did not resolve to a
// procedure at all (there is no parameter list to type-check against).
func (p *Parser) skipArgumentList() {
	p.require(token.L_PAREN)
	depth := 1
	for depth > 0 {
		switch p.token() {
		case token.L_PAREN:
			depth++
		case token.R_PAREN:
			depth--
		case token.FILE_END:
			return
		}
		p.advance()
	}
}

// callArgument evaluates one actual argument against one formal
// parameter. Array arguments are always passed as the address of the
// whole array (spec §4.3.4 normalizes this regardless of direction);
// by-value scalars pass the computed value; by-reference scalars and
// strings pass an address, reusing the argument's own storage address
// when it already has one of the right type, and materializing a fresh
// temporary otherwise.
func (p *Parser) callArgument(formal *semantic.Symbol) *ir.Value {
	if formal.Type.Kind == types.Array {
		idTok := p.require(token.IDENTIFIER)
		sym, ok := p.table.Resolve(idTok.Text, true)
		if !ok || sym.Type.Kind != types.Array {
			p.sink.ReportError(fmt.Sprintf("%s is not an array", idTok.Text), idTok.Line)
			return p.b.ConstInt(0)
		}
		addr, _ := sym.IRValue.(*ir.Value)
		return addr
	}

	arg := p.expr(formal.Type)
	if formal.Direction == types.DirIn {
		return arg.V
	}
	if arg.Addr != nil {
		return arg.Addr
	}
	tmp := p.b.CreateAlloca(irScalarType(formal.Type.Kind))
	p.b.CreateStore(arg.V, tmp)
	return tmp
}

// ifStatement implements:
//
//	if_statement := "if" "(" expr ")" "then" { statement ";" }
//	                [ "else" { statement ";" } ] "end" "if"
//
// then/else/after are created detached and spliced into the function's
// block list only once control actually reaches each one, the same
// "create now, append later" idiom the IR façade itself uses for
// if/for (see internal/ir's CreateBlock/AppendBlock).
func (p *Parser) ifStatement() {
	p.require(token.RS_IF)
	p.require(token.L_PAREN)
	cond := p.expr(types.TBool)
	p.require(token.R_PAREN)
	p.require(token.RS_THEN)

	fn := p.b.CurrentFunction()
	thenBB := p.b.CreateBlock(fn, "then")
	elseBB := p.b.CreateBlock(fn, "else")
	afterBB := p.b.CreateBlock(fn, "after")

	p.b.CreateCondBr(cond.V, thenBB, elseBB)
	p.b.AppendBlock(fn, thenBB)
	p.b.SetInsertPoint(fn, thenBB)

	firstStmt := true
	explicitElse := false
	for {
		if p.token() == token.FILE_END {
			p.sink.ReportError("unexpected end of file inside if statement", p.cur.Line)
			return
		}
		valid := p.statement()
		switch {
		case valid:
			p.require(token.SEMICOLON)
		case firstStmt:
			p.sink.ReportError("no statement in if body", p.cur.Line)
		case p.token() == token.RS_END || p.token() == token.RS_ELSE:
			// an else body may legitimately be empty
		default:
			p.sink.ReportError(fmt.Sprintf("unexpected token %s in statement position", p.token()), p.cur.Line)
			p.synchronize()
		}
		firstStmt = false

		if p.token() == token.RS_END {
			if !currentBlockTerminated(p.b) {
				p.b.CreateBr(afterBB)
			}
			if !explicitElse {
				p.b.AppendBlock(fn, elseBB)
				p.b.SetInsertPoint(fn, elseBB)
				p.b.CreateBr(afterBB)
			}
			break
		}
		if p.token() == token.RS_ELSE {
			explicitElse = true
			if !currentBlockTerminated(p.b) {
				p.b.CreateBr(afterBB)
			}
			p.b.AppendBlock(fn, elseBB)
			p.b.SetInsertPoint(fn, elseBB)
			p.advance()
		}
	}

	p.require(token.RS_END)
	p.requireWarn(token.RS_IF)
	p.b.AppendBlock(fn, afterBB)
	p.b.SetInsertPoint(fn, afterBB)
}

// forStatement implements:
//
//	for_statement := "for" "(" IDENT ":=" expr ";" expr ")"
//	                 { statement ";" } "end" "for"
//
// The loop header re-evaluates the condition every iteration from a
// dedicated header block, so the backend sees a standard
// header/body/after three-block loop shape.
func (p *Parser) forStatement() {
	p.require(token.RS_FOR)
	p.require(token.L_PAREN)
	idTok := p.require(token.IDENTIFIER)
	p.assignmentStatement(idTok)
	p.require(token.SEMICOLON)

	fn := p.b.CurrentFunction()
	headerBB := p.b.CreateBlock(fn, "header")
	bodyBB := p.b.CreateBlock(fn, "body")
	afterBB := p.b.CreateBlock(fn, "after")

	p.b.CreateBr(headerBB)
	p.b.AppendBlock(fn, headerBB)
	p.b.SetInsertPoint(fn, headerBB)

	cond := p.expr(types.TBool)
	p.require(token.R_PAREN)
	p.b.CreateCondBr(cond.V, bodyBB, afterBB)

	p.b.AppendBlock(fn, bodyBB)
	p.b.SetInsertPoint(fn, bodyBB)
	for p.token() != token.RS_END {
		if p.token() == token.FILE_END {
			p.sink.ReportError("unexpected end of file inside for statement", p.cur.Line)
			return
		}
		if !p.statement() {
			p.sink.ReportError(fmt.Sprintf("unexpected token %s in statement position", p.token()), p.cur.Line)
			p.synchronize()
		}
		p.require(token.SEMICOLON)
	}
	p.advance() // consume "end"
	if !currentBlockTerminated(p.b) {
		p.b.CreateBr(headerBB)
	}
	p.requireWarn(token.RS_FOR)

	p.b.AppendBlock(fn, afterBB)
	p.b.SetInsertPoint(fn, afterBB)
}

// returnStatement implements:
//
//	return_statement := "return"
//
// Every procedure (and the program's own main body) returns void or, for
// main, the constant success code — see program() and procDeclaration()
// for the two respective terminators. A block opened after an explicit
// return is unreachable but still needs its own terminator once control
// "falls off the end" of the enclosing body, which program()/
// procDeclaration()/ifStatement()/forStatement() each supply.
func (p *Parser) returnStatement() {
	p.require(token.RS_RETURN)
	if fn := p.b.CurrentFunction(); fn != nil && fn.ReturnType.Kind == ir.I32 {
		p.b.CreateRet(p.b.ConstInt(0))
	} else {
		p.b.CreateRetVoid()
	}

	fn := p.b.CurrentFunction()
	unreachable := p.b.CreateBlock(fn, "unreachable")
	p.b.AppendBlock(fn, unreachable)
	p.b.SetInsertPoint(fn, unreachable)
}
