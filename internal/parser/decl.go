package parser

import (
	"fmt"

	"github.com/cwbudde/dwslang/internal/ir"
	"github.com/cwbudde/dwslang/internal/semantic"
	"github.com/cwbudde/dwslang/internal/token"
	"github.com/cwbudde/dwslang/internal/types"
)

// declBuiltins gives each of the ten pre-declared I/O procedures its IR
// function, so calls to them resolve to a real Function the first time
// program() runs. The symbols themselves were already seeded into the
// global scope by semantic.NewTable.
func (p *Parser) declBuiltins() {
	for _, name := range semantic.BuiltinNames() {
		sym, ok := p.table.Resolve(name, true)
		if !ok {
			continue
		}
		param := sym.Params[0]
		fn := p.b.CreateFunction(name, ir.TypeVoid, []ir.Param{
			{Name: "value", Typ: paramIRType(param.Type, param.Direction)},
		})
		sym.IRFunction = fn
	}
}

// varDeclaration implements:
//
//	var_decl := typemark IDENT [ "[" bound ":" bound "]" ]
//
// needAlloc is false while parsing a parameter (the caller allocates
// storage itself, from the argument value rather than from scratch).
func (p *Parser) varDeclaration(isGlobal, needAlloc bool) *semantic.Symbol {
	typeTok := p.advance()
	kind, ok := typemarkKind(typeTok.Kind)
	if !ok {
		p.sink.ReportError(fmt.Sprintf("expected a typemark, found %s", typeTok.Kind), typeTok.Line)
		kind = types.Integer
	}

	idTok := p.require(token.IDENTIFIER)
	sym, _ := p.table.Resolve(idTok.Text, false)
	if sym.Kind != semantic.Undefined {
		p.sink.ReportError(fmt.Sprintf("%s has already been declared", idTok.Text), idTok.Line)
	}
	sym.Kind = semantic.Variable
	sym.Type = types.Primitive(kind)

	if isGlobal {
		p.table.PromoteToGlobal(idTok.Text)
	}

	if p.token() == token.L_BRACKET {
		p.advance()
		lower := p.bound()
		p.require(token.COLON)
		upper := p.bound()
		p.require(token.R_BRACKET)
		sym.Type = types.NewArray(kind, lower, upper)
	}

	if needAlloc {
		allocType := irAllocType(sym.Type)
		if isGlobal {
			sym.IRValue = p.b.GlobalVariable(idTok.Text, allocType)
		} else {
			sym.IRValue = p.b.CreateAlloca(allocType)
		}
	}
	return sym
}

// bound implements the signed integer literal `bound` production used by
// array index ranges.
func (p *Parser) bound() int {
	neg := false
	if p.token() == token.MINUS {
		neg = true
		p.advance()
	}
	tok := p.require(token.INTEGER)
	v := int(tok.Int)
	if neg {
		v = -v
	}
	return v
}

// procDeclaration implements:
//
//	proc_decl := "procedure" IDENT "(" [ param { "," param } ] ")" body
//
// Nested procedure declarations are rejected with a diagnostic: this
// language has exactly one level of scoping (spec §4.2), so a procedure
// header encountered while already inside another procedure body can
// never be compiled correctly.
func (p *Parser) procDeclaration(isGlobal bool) {
	if p.table.InLocalScope() {
		p.sink.ReportError("procedures may not be nested", p.cur.Line)
	}

	// procedures are always declared into the global scope; a "global"
	// prefix is accepted (and harmless) for grammatical symmetry with
	// var_decl, since there is nowhere else a procedure could live.
	p.procHeader()
	p.body(token.RS_PROCEDURE)
	if !currentBlockTerminated(p.b) {
		p.b.CreateRetVoid()
	}

	p.table.LeaveProcedureScope()
	if raw := p.table.RestoreInsertPoint(); raw != nil {
		if ip, ok := raw.(ir.InsertPoint); ok {
			p.b.RestoreInsertPoint(ip)
		}
	}
}

// currentBlockTerminated reports whether the block the builder is
// currently positioned at already ends in a terminator, so
// procDeclaration does not emit a second, unreachable "ret void" after a
// body that ended in an explicit return statement.
func currentBlockTerminated(b ir.Builder) bool {
	fn := b.CurrentFunction()
	if fn == nil || len(fn.Blocks) == 0 {
		return false
	}
	return fn.Blocks[len(fn.Blocks)-1].Terminated()
}

// procHeader implements the signature-and-entry-block half of proc_decl:
// it defines the procedure's own symbol in the enclosing (global) scope,
// opens its local scope, parses its parameter list, declares the backend
// Function, and positions the builder at a fresh entry block.
func (p *Parser) procHeader() (*semantic.Symbol, *ir.Function) {
	p.require(token.RS_PROCEDURE)
	idTok := p.require(token.IDENTIFIER)

	ip := p.b.SaveInsertPoint()
	p.table.SaveInsertPoint(ip)

	sym, _ := p.table.Resolve(idTok.Text, false)
	if sym.Kind != semantic.Undefined {
		p.sink.ReportError(fmt.Sprintf("%s has already been declared", idTok.Text), idTok.Line)
	}
	sym.Kind = semantic.Procedure
	sym.Type = types.TVoid

	p.table.EnterProcedureScope(sym)

	p.require(token.L_PAREN)
	if p.token() != token.R_PAREN {
		p.parameterList(sym)
	}
	p.require(token.R_PAREN)

	params := make([]ir.Param, len(sym.Params))
	for i, formal := range sym.Params {
		params[i] = ir.Param{Name: formal.Name, Typ: paramIRType(formal.Type, formal.Direction)}
	}
	fn := p.b.CreateFunction(idTok.Text, ir.TypeVoid, params)
	sym.IRFunction = fn
	p.table.SetCurrentProcedureFn(fn)

	entry := p.b.CreateBlock(fn, "entry")
	p.b.AppendBlock(fn, entry)
	p.b.SetInsertPoint(fn, entry)

	for i, formal := range sym.Params {
		arg := fn.Args[i]
		if formal.Type.Kind == types.Array {
			formal.IRValue = arg
			continue
		}
		if formal.Direction == types.DirIn {
			local := p.b.CreateAlloca(irScalarType(formal.Type.Kind))
			p.b.CreateStore(arg, local)
			formal.IRValue = local
		} else {
			formal.IRValue = arg
		}
	}

	return sym, fn
}

// parameterList implements:
//
//	param_list := param { "," param }
func (p *Parser) parameterList(proc *semantic.Symbol) {
	for {
		p.parameter(proc)
		if p.token() == token.COMMA {
			p.advance()
			continue
		}
		return
	}
}

// parameter implements:
//
//	param := var_decl ( "in" | "out" | "inout" )
func (p *Parser) parameter(proc *semantic.Symbol) {
	sym := p.varDeclaration(false, false)
	var dir types.Direction
	switch p.token() {
	case token.RS_IN:
		dir = types.DirIn
	case token.RS_OUT:
		dir = types.DirOut
	case token.RS_INOUT:
		dir = types.DirInout
	default:
		p.sink.ReportError("a parameter must specify in, out, or inout", p.cur.Line)
	}
	p.advance()
	sym.Direction = dir
	p.table.AddParameter(sym)
}
