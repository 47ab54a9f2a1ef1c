// Package parser implements the fused recursive-descent parser / semantic
// analyzer / IR emitter: a predictive, one-token-lookahead recognizer for
// the source grammar that consults a symbol table on every name-binding
// reduction and emits IR through a narrow backend façade on every
// value-producing reduction. There is no separate AST stage; productions
// reduce straight into IR.
package parser

import (
	"fmt"

	"github.com/cwbudde/dwslang/internal/diag"
	"github.com/cwbudde/dwslang/internal/ir"
	"github.com/cwbudde/dwslang/internal/lexer"
	"github.com/cwbudde/dwslang/internal/semantic"
	"github.com/cwbudde/dwslang/internal/token"
)

// Parser drives a lexer.Lexer token-by-token, consults a semantic.Table,
// and builds a module through an ir.Builder. The builder is held as the
// ir.Builder interface and every emission goes through it; the concrete
// *ir.Module type is named only where New creates the module and Parse
// returns it.
type Parser struct {
	lex   *lexer.Lexer
	sink  diag.Sink
	table *semantic.Table
	b     ir.Builder

	cur      token.Token
	curValid bool
}

// New creates a Parser over lex, reporting diagnostics to sink and
// emitting into a fresh module named moduleName.
func New(lex *lexer.Lexer, sink diag.Sink, moduleName string) *Parser {
	return &Parser{
		lex:   lex,
		sink:  sink,
		table: semantic.NewTable(),
		b:     ir.NewModule(moduleName),
	}
}

// Parse runs the parser to completion and returns the finished IR module.
// Compilation continues past errors (panic-mode resynchronization, per
// spec §7); callers should check the diagnostic sink's error count before
// trusting the result.
func (p *Parser) Parse() *ir.Module {
	p.program()
	mod, _ := p.b.(*ir.Module)
	return mod
}

// token returns the kind of the current lookahead token, pulling a fresh
// one from the lexer if the buffer is empty. Every IDENTIFIER token is
// pre-inserted into the active scope as an undefined symbol the moment it
// is first seen, mirroring spec §4.1's scanner-side pre-insertion even
// though this implementation performs the insertion here instead of
// inside internal/lexer (see DESIGN.md's internal/lexer ledger entry).
func (p *Parser) token() token.Kind {
	if !p.curValid {
		p.cur = p.lex.NextToken()
		p.curValid = true
		if p.cur.Kind == token.IDENTIFIER {
			p.table.Resolve(p.cur.Text, false)
		}
	}
	return p.cur.Kind
}

// advance marks the current token consumed and returns it.
func (p *Parser) advance() token.Token {
	p.curValid = false
	return p.cur
}

// require consumes the current token, reporting an error at its line if
// it is not of the expected kind (the mismatched token is still
// consumed, so parsing can continue).
func (p *Parser) require(expected token.Kind) token.Token {
	return p.requireSeverity(expected, diag.SeverityError)
}

// requireWarn is require's softer sibling, used at grammar positions spec
// §7 calls "required but warned-on-mismatch" (a closing keyword that the
// implementer may diagnose leniently rather than reject outright).
func (p *Parser) requireWarn(expected token.Kind) token.Token {
	return p.requireSeverity(expected, diag.SeverityWarning)
}

func (p *Parser) requireSeverity(expected token.Kind, sev diag.Severity) token.Token {
	kind := p.token()
	tok := p.advance()
	if kind != expected {
		msg := fmt.Sprintf("unexpected token %s, expected %s", kind, expected)
		if sev == diag.SeverityWarning {
			p.sink.ReportWarning(msg, tok.Line)
		} else {
			p.sink.ReportError(msg, tok.Line)
		}
	}
	return tok
}

// synchronize discards tokens until it finds one of the recovery points
// spec §7 names (the next `;`, `)`, `end`, or end of file), implementing
// the "no stack unwinding, resync and continue" propagation policy.
func (p *Parser) synchronize() {
	for {
		switch p.token() {
		case token.SEMICOLON, token.R_PAREN, token.RS_END, token.FILE_END:
			return
		}
		p.advance()
	}
}

// program implements the outermost grammar production:
//
//	program := "program" IDENT "is" body "."
func (p *Parser) program() {
	p.declBuiltins()

	p.require(token.RS_PROGRAM)
	p.require(token.IDENTIFIER)
	p.require(token.RS_IS)

	mainFn := p.b.CreateFunction("main", ir.TypeI32, nil)
	p.table.SetCurrentProcedureFn(mainFn)
	entry := p.b.CreateBlock(mainFn, "entry")
	p.b.AppendBlock(mainFn, entry)
	p.b.SetInsertPoint(mainFn, entry)

	p.body(token.RS_PROGRAM)
	p.requireWarn(token.PERIOD)

	p.b.CreateRet(p.b.ConstInt(0))
}

// body implements the shared declarations-then-statements production used
// by both the outermost program and every procedure:
//
//	body := { declaration ";" } "begin" { statement ";" } "end" K
//
// closer is the reserved word K this body must end with ("program" or
// "procedure"); a mismatch is diagnosed as a warning, not an error, per
// the unbalanced-closer supplement in SPEC_FULL.md.
func (p *Parser) body(closer token.Kind) {
	declarations := true
	for {
		switch p.token() {
		case token.RS_BEGIN:
			p.advance()
			declarations = false
			continue
		case token.RS_END:
			p.advance()
			p.requireWarn(closer)
			return
		case token.FILE_END:
			p.sink.ReportError("unexpected end of file inside body", p.cur.Line)
			return
		}

		if declarations {
			p.declaration()
		} else {
			if !p.statement() {
				p.sink.ReportError(fmt.Sprintf("unexpected token %s in statement position", p.token()), p.cur.Line)
				p.synchronize()
			}
		}
		p.require(token.SEMICOLON)
	}
}

// declaration implements:
//
//	declaration := [ "global" ] ( var_decl | proc_decl )
func (p *Parser) declaration() {
	isGlobal := false
	if p.token() == token.RS_GLOBAL {
		isGlobal = true
		p.advance()
	}
	if p.token() == token.RS_PROCEDURE {
		p.procDeclaration(isGlobal)
	} else {
		p.varDeclaration(isGlobal, true)
	}
}
