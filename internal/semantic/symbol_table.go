// Package semantic implements the scope-aware symbol table manager: the
// global scope, the single active local scope, and the bookkeeping a
// procedure boundary needs (saved insertion point, parameter list,
// current IR function handle).
package semantic

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cwbudde/dwslang/internal/token"
	"github.com/cwbudde/dwslang/internal/types"
)

// upper is the case-folding transform used for every identifier key, so
// "forEach" and "FOREACH" collide the same way they would in the source
// language's case-insensitive identifier space.
var upper = cases.Upper(language.Und)

func fold(name string) string { return upper.String(name) }

// Kind is the symbol's semantic category, per spec §3's "symbol kind"
// enumeration. Undefined is the pre-declaration placeholder the scanner's
// identifier pre-insertion relies on.
type Kind int

const (
	Undefined Kind = iota
	Variable
	Procedure
)

// Symbol is one entry in a Scope: canonical text, kind, its resolved
// value type once known, an opaque back-reference to its IR storage or
// function handle, and the parameter-only/procedure-only fields spec §3
// calls out.
//
// IRValue and IRFunction are deliberately untyped (interface{}), mirroring
// the teacher's Symbol.Value field: the symbol table never interprets the
// backend handle, only stores and returns it, keeping this package free
// of any dependency on the IR façade's concrete types.
type Symbol struct {
	Name string // canonical (upper-cased) identifier text
	Kind Kind
	Type types.Type

	IRValue    interface{} // backend storage handle, for variables/params
	IRFunction interface{} // backend function handle, for procedures

	Direction types.Direction // meaningful only for parameters

	// Procedure-only fields.
	Params     []*Symbol // ordered, append-only during header parse
	LocalScope *Scope    // this procedure's private local scope
}

// Scope is a flat mapping from canonical identifier to Symbol.
type Scope struct {
	symbols map[string]*Symbol
}

func newScope() *Scope {
	return &Scope{symbols: make(map[string]*Symbol)}
}

func (s *Scope) get(name string) (*Symbol, bool) {
	sym, ok := s.symbols[fold(name)]
	return sym, ok
}

func (s *Scope) put(sym *Symbol) {
	s.symbols[fold(sym.Name)] = sym
}

func (s *Scope) delete(name string) {
	delete(s.symbols, fold(name))
}

// Table is the symbol table manager of spec §4.2: it owns the global
// scope and the single currently active local scope, and remembers the
// enclosing procedure's insertion point and parameter list while a
// (non-nested) procedure body is being compiled.
type Table struct {
	global *Scope
	local  *Scope // nil outside any procedure body

	savedLocal *Scope          // one-deep save for enter/leave_procedure_scope
	savedPoint interface{}     // saved IR insertion point
	point      interface{}     // current IR insertion point, set by the parser
	currentFn  interface{}     // IR function handle currently being emitted into
	building   *Symbol         // procedure symbol whose Params list is open
}

// NewTable creates a fresh Table with an empty global scope and the ten
// built-in I/O procedures seeded in, per spec §4.3.6 and
// original_source/src/scanner.cpp's builtin table.
func NewTable() *Table {
	t := &Table{global: newScope()}
	t.seedBuiltins()
	t.seedReservedWords()
	return t
}

// seedReservedWords inserts every reserved word into the global scope as
// a Symbol carrying no type, so Resolve never mistakes a reserved word
// for an undeclared identifier and so identifier declarations can never
// shadow one (spec §4.2's "reserved words ... are never shadowed").
func (t *Table) seedReservedWords() {
	for word := range token.ReservedWords {
		t.global.put(&Symbol{Name: word, Kind: Undefined})
	}
}

// builtinSpec names one of the ten pre-declared I/O procedures and its
// single by-reference parameter's type.
type builtinSpec struct {
	name      string
	paramType types.Type
}

var builtins = []builtinSpec{
	{"PUTINTEGER", types.TInteger},
	{"PUTFLOAT", types.TFloat},
	{"PUTCHAR", types.TChar},
	{"PUTSTRING", types.TString},
	{"PUTBOOL", types.TBool},
	{"GETINTEGER", types.TInteger},
	{"GETFLOAT", types.TFloat},
	{"GETCHAR", types.TChar},
	{"GETSTRING", types.TString},
	{"GETBOOL", types.TBool},
}

func (t *Table) seedBuiltins() {
	for _, b := range builtins {
		param := &Symbol{
			Name:      "VALUE",
			Kind:      Variable,
			Type:      b.paramType,
			Direction: types.DirInout,
		}
		t.global.put(&Symbol{
			Name:       b.name,
			Kind:       Procedure,
			Type:       types.TVoid,
			Params:     []*Symbol{param},
			LocalScope: newScope(),
		})
	}
}

// IsBuiltin reports whether name is one of the ten pre-declared I/O
// procedures.
func IsBuiltin(name string) bool {
	for _, b := range builtins {
		if fold(b.name) == fold(name) {
			return true
		}
	}
	return false
}

// BuiltinNames returns the canonical names of the ten pre-declared I/O
// procedures, in the fixed order they were seeded — used by the parser
// to give each one a backend Function once, at compilation start-up.
func BuiltinNames() []string {
	names := make([]string, len(builtins))
	for i, b := range builtins {
		names[i] = b.name
	}
	return names
}

// Resolve implements spec §4.2's resolve(name, must_exist, access?). It
// searches the local scope (if any) then the global scope. On a miss: if
// mustExist, it returns (nil, false) and leaves diagnosis to the caller
// (the parser, which knows the current line); otherwise it inserts a
// fresh undefined entry into the current scope (local if one is active,
// else global) and returns it.
//
// Resolve takes no access argument and records no access mode; this
// package does not diagnose misuse of out/inout targets.
func (t *Table) Resolve(name string, mustExist bool) (*Symbol, bool) {
	if t.local != nil {
		if sym, ok := t.local.get(name); ok {
			return sym, true
		}
	}
	if sym, ok := t.global.get(name); ok {
		return sym, true
	}
	if mustExist {
		return nil, false
	}
	sym := &Symbol{Name: strings.ToUpper(name), Kind: Undefined}
	t.currentScope().put(sym)
	return sym, true
}

// currentScope returns the local scope if a procedure body is active,
// else the global scope.
func (t *Table) currentScope() *Scope {
	if t.local != nil {
		return t.local
	}
	return t.global
}

// Define installs sym into the current scope under its own Name,
// overwriting any undefined placeholder left there by a prior Resolve.
func (t *Table) Define(sym *Symbol) {
	t.currentScope().put(sym)
}

// DefineGlobal installs sym directly into the global scope, regardless of
// whether a local scope is active. Used for `global`-prefixed
// declarations made inside a procedure body.
func (t *Table) DefineGlobal(sym *Symbol) {
	t.global.put(sym)
}

// PromoteToGlobal implements spec §4.2's promote_to_global: it moves an
// entry already sitting in the local scope into the global scope,
// preserving the same *Symbol so other holders of the pointer observe
// the move.
func (t *Table) PromoteToGlobal(name string) *Symbol {
	if t.local == nil {
		return nil
	}
	sym, ok := t.local.get(name)
	if !ok {
		return nil
	}
	t.local.delete(name)
	t.global.put(sym)
	return sym
}

// EnterProcedureScope implements enter_procedure_scope: it creates a
// fresh local scope for the named procedure and pushes whatever local
// scope was active (there is at most one, since procedures never nest)
// onto a one-deep save slot.
func (t *Table) EnterProcedureScope(proc *Symbol) {
	t.savedLocal = t.local
	t.local = proc.LocalScope
	if t.local == nil {
		t.local = newScope()
		proc.LocalScope = t.local
	}
	t.building = proc
}

// LeaveProcedureScope implements leave_procedure_scope: it restores
// whatever local scope (normally nil) was active before the matching
// EnterProcedureScope.
func (t *Table) LeaveProcedureScope() {
	t.local = t.savedLocal
	t.savedLocal = nil
	t.building = nil
}

// InLocalScope reports whether a procedure body is currently active.
func (t *Table) InLocalScope() bool { return t.local != nil }

// SaveInsertPoint and RestoreInsertPoint implement
// save_insert_point/restore_insert_point: a one-deep stash of the
// backend's current insertion-point cursor, opaque to this package.
func (t *Table) SaveInsertPoint(ip interface{}) {
	t.savedPoint = ip
}

func (t *Table) RestoreInsertPoint() interface{} {
	ip := t.savedPoint
	t.savedPoint = nil
	return ip
}

// SetCurrentProcedureFn and CurrentProcedureFn implement
// set_current_procedure_fn/current_procedure_fn.
func (t *Table) SetCurrentProcedureFn(fn interface{}) { t.currentFn = fn }
func (t *Table) CurrentProcedureFn() interface{}      { return t.currentFn }

// AddParameter implements add_parameter: it appends entry to the
// parameter list of the procedure symbol currently under construction
// (the one most recently passed to EnterProcedureScope whose header is
// still being parsed) and also defines it in the new local scope so it
// resolves like any other local.
func (t *Table) AddParameter(entry *Symbol) {
	if t.building != nil {
		t.building.Params = append(t.building.Params, entry)
	}
	t.currentScope().put(entry)
}
