package ir

import (
	"strings"
	"testing"
)

func TestAllocaLoadStoreRoundTrip(t *testing.T) {
	m := NewModule("t")
	fn := m.CreateFunction("main", TypeVoid, nil)
	entry := m.CreateBlock(fn, "entry")
	m.AppendBlock(fn, entry)
	m.SetInsertPoint(fn, entry)

	ptr := m.CreateAlloca(TypeI32)
	m.CreateStore(m.ConstInt(42), ptr)
	loaded := m.CreateLoad(ptr)
	if loaded.Type().Kind != I32 {
		t.Fatalf("expected loaded value to be i32, got %s", loaded.Type())
	}
	m.CreateRetVoid()

	if !entry.Terminated() {
		t.Fatal("expected entry block to be terminated after CreateRetVoid")
	}
	dump := m.String()
	if !strings.Contains(dump, "alloca i32") || !strings.Contains(dump, "ret void") {
		t.Fatalf("unexpected dump:\n%s", dump)
	}
}

func TestIfEmitsThreeBlocksAndBranches(t *testing.T) {
	m := NewModule("t")
	fn := m.CreateFunction("main", TypeVoid, nil)
	entry := m.CreateBlock(fn, "entry")
	m.AppendBlock(fn, entry)
	m.SetInsertPoint(fn, entry)

	thenBB := m.CreateBlock(fn, "then")
	elseBB := m.CreateBlock(fn, "else")
	afterBB := m.CreateBlock(fn, "after")

	cond := m.ConstBool(true)
	m.CreateCondBr(cond, thenBB, elseBB)

	m.AppendBlock(fn, thenBB)
	m.SetInsertPoint(fn, thenBB)
	m.CreateBr(afterBB)

	m.AppendBlock(fn, elseBB)
	m.SetInsertPoint(fn, elseBB)
	m.CreateBr(afterBB)

	m.AppendBlock(fn, afterBB)
	m.SetInsertPoint(fn, afterBB)
	m.CreateRetVoid()

	if len(fn.Blocks) != 4 {
		t.Fatalf("expected 4 blocks (entry, then, else, after), got %d", len(fn.Blocks))
	}
	for _, bb := range fn.Blocks {
		if !bb.Terminated() {
			t.Fatalf("block %s is not terminated", bb.Name)
		}
	}
}

func TestMarshalBinaryRoundTripsName(t *testing.T) {
	m := NewModule("roundtrip")
	data, err := m.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var out Module
	if err := out.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if out.Name != "roundtrip" {
		t.Fatalf("expected name %q, got %q", "roundtrip", out.Name)
	}
}

func TestConstStringRoundTripsEveryLegalBodyCharacterPlusTrailingNUL(t *testing.T) {
	m := NewModule("t")
	s := "aZ9_ ;:.,'"

	v := m.ConstString(s)
	if v.Kind != ValGlobal {
		t.Fatalf("expected ConstString to return a global value, got kind %v", v.Kind)
	}
	if v.Type().Kind != Pointer || v.Type().Elem.Kind != ArrayT {
		t.Fatalf("expected a pointer-to-array type, got %s", v.Type())
	}
	if v.Type().Elem.Count != len(s)+1 {
		t.Fatalf("expected array length %d (body + NUL), got %d", len(s)+1, v.Type().Elem.Count)
	}

	want := append([]byte(s), 0)
	got := v.GlobalData()
	if len(got) != len(want) {
		t.Fatalf("expected %d backing bytes including the trailing NUL, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if got[len(got)-1] != 0 {
		t.Fatalf("expected the backing data to end in a trailing NUL, got %q", got[len(got)-1])
	}
}

func TestGEPAndConvert(t *testing.T) {
	m := NewModule("t")
	fn := m.CreateFunction("main", TypeVoid, nil)
	entry := m.CreateBlock(fn, "entry")
	m.AppendBlock(fn, entry)
	m.SetInsertPoint(fn, entry)

	arrPtr := m.CreateAlloca(ArrayOf(TypeI32, 5))
	elem := m.CreateGEP(arrPtr, m.ConstInt(2))
	if elem.Type().Kind != Pointer || elem.Type().Elem.Kind != I32 {
		t.Fatalf("expected pointer-to-i32 from GEP, got %s", elem.Type())
	}

	f := m.CreateSIToFP(m.ConstInt(3))
	if f.Type().Kind != F32 {
		t.Fatalf("expected float from CreateSIToFP, got %s", f.Type())
	}
	b := m.CreateIntToBool(m.ConstInt(0))
	if b.Type().Kind != I1 {
		t.Fatalf("expected i1 from CreateIntToBool, got %s", b.Type())
	}
	m.CreateRetVoid()
}
