package semantic

import (
	"testing"

	"github.com/cwbudde/dwslang/internal/types"
)

func TestNewTableSeedsTheTenBuiltinProcedures(t *testing.T) {
	tbl := NewTable()
	for _, name := range BuiltinNames() {
		sym, ok := tbl.Resolve(name, true)
		if !ok {
			t.Fatalf("expected builtin %s to resolve", name)
		}
		if sym.Kind != Procedure {
			t.Errorf("expected %s to be a Procedure symbol, got kind %d", name, sym.Kind)
		}
		if len(sym.Params) != 1 || sym.Params[0].Direction != types.DirInout {
			t.Errorf("expected %s to have one inout parameter, got %+v", name, sym.Params)
		}
	}
}

func TestIsBuiltinIsCaseInsensitive(t *testing.T) {
	if !IsBuiltin("putinteger") || !IsBuiltin("PutInteger") || !IsBuiltin("PUTINTEGER") {
		t.Fatal("expected IsBuiltin to ignore case")
	}
	if IsBuiltin("NotARealBuiltin") {
		t.Fatal("expected an unknown name to report false")
	}
}

func TestResolveFindsLocalBeforeGlobal(t *testing.T) {
	tbl := NewTable()
	global := &Symbol{Name: "X", Kind: Variable, Type: types.TInteger}
	tbl.DefineGlobal(global)

	proc := &Symbol{Name: "P", Kind: Procedure}
	tbl.EnterProcedureScope(proc)
	local := &Symbol{Name: "X", Kind: Variable, Type: types.TFloat}
	tbl.Define(local)

	sym, ok := tbl.Resolve("x", true)
	if !ok || sym != local {
		t.Fatalf("expected the local X to shadow the global one")
	}

	tbl.LeaveProcedureScope()
	sym, ok = tbl.Resolve("x", true)
	if !ok || sym != global {
		t.Fatalf("expected the global X to resolve once the local scope is gone")
	}
}

func TestResolveWithMustExistFalseInsertsAnUndefinedPlaceholder(t *testing.T) {
	tbl := NewTable()
	sym, ok := tbl.Resolve("newvar", false)
	if !ok {
		t.Fatal("expected Resolve(mustExist=false) to always succeed")
	}
	if sym.Kind != Undefined || sym.Name != "NEWVAR" {
		t.Fatalf("expected an undefined placeholder named NEWVAR, got %+v", sym)
	}

	again, ok := tbl.Resolve("newvar", true)
	if !ok || again != sym {
		t.Fatal("expected a second resolve to find the same placeholder, not insert another")
	}
}

func TestResolveWithMustExistTrueFailsOnAnUnknownName(t *testing.T) {
	tbl := NewTable()
	if _, ok := tbl.Resolve("doesnotexist", true); ok {
		t.Fatal("expected Resolve(mustExist=true) to fail for an unknown identifier")
	}
}

func TestReservedWordsAreNeverTreatedAsUndeclared(t *testing.T) {
	tbl := NewTable()
	sym, ok := tbl.Resolve("begin", true)
	if !ok {
		t.Fatal("expected a reserved word to already be present in the global scope")
	}
	if sym.Kind != Undefined {
		t.Fatalf("expected a reserved word's placeholder symbol to carry no kind, got %d", sym.Kind)
	}
}

func TestPromoteToGlobalMovesTheSamePointer(t *testing.T) {
	tbl := NewTable()
	proc := &Symbol{Name: "P", Kind: Procedure}
	tbl.EnterProcedureScope(proc)

	local := &Symbol{Name: "COUNTER", Kind: Variable, Type: types.TInteger}
	tbl.Define(local)

	moved := tbl.PromoteToGlobal("counter")
	if moved != local {
		t.Fatal("expected PromoteToGlobal to return the same *Symbol it moved")
	}

	tbl.LeaveProcedureScope()
	sym, ok := tbl.Resolve("counter", true)
	if !ok || sym != local {
		t.Fatal("expected the promoted symbol to resolve from the global scope afterward")
	}
}

func TestEnterAndLeaveProcedureScopeRestoresTheOuterScope(t *testing.T) {
	tbl := NewTable()
	if tbl.InLocalScope() {
		t.Fatal("expected no local scope before entering a procedure")
	}

	outer := &Symbol{Name: "OUTER", Kind: Procedure}
	tbl.EnterProcedureScope(outer)
	if !tbl.InLocalScope() {
		t.Fatal("expected a local scope once inside a procedure")
	}

	tbl.LeaveProcedureScope()
	if tbl.InLocalScope() {
		t.Fatal("expected the local scope to be gone after leaving the procedure")
	}
}

func TestAddParameterAppendsToTheProcedureUnderConstructionAndDefinesItLocally(t *testing.T) {
	tbl := NewTable()
	proc := &Symbol{Name: "ADD", Kind: Procedure}
	tbl.EnterProcedureScope(proc)

	p := &Symbol{Name: "N", Kind: Variable, Type: types.TInteger, Direction: types.DirIn}
	tbl.AddParameter(p)

	if len(proc.Params) != 1 || proc.Params[0] != p {
		t.Fatalf("expected AddParameter to append to proc.Params, got %+v", proc.Params)
	}
	sym, ok := tbl.Resolve("n", true)
	if !ok || sym != p {
		t.Fatal("expected the parameter to also resolve from the local scope")
	}
}

func TestSaveAndRestoreInsertPointIsOneDeep(t *testing.T) {
	tbl := NewTable()
	tbl.SaveInsertPoint("block-a")
	got := tbl.RestoreInsertPoint()
	if got != "block-a" {
		t.Fatalf("got %v, want %q", got, "block-a")
	}
	if again := tbl.RestoreInsertPoint(); again != nil {
		t.Fatalf("expected a second restore with nothing saved to return nil, got %v", again)
	}
}

func TestCurrentProcedureFnRoundTrips(t *testing.T) {
	tbl := NewTable()
	tbl.SetCurrentProcedureFn("fn-handle")
	if got := tbl.CurrentProcedureFn(); got != "fn-handle" {
		t.Fatalf("got %v, want %q", got, "fn-handle")
	}
}
