package parser

import (
	"strings"
	"testing"

	"github.com/cwbudde/dwslang/internal/diag"
	"github.com/cwbudde/dwslang/internal/lexer"
)

// compile is the test helper every case below shares: lex+parse+emit a
// full program and return its IR dump alongside the diagnostic collector
// so a test can assert on either.
func compile(t *testing.T, src string) (string, *diag.Collector) {
	t.Helper()
	col := diag.NewCollector(src, false, nil)
	lx := lexer.New(src, lexer.WithSink(col))
	mod := New(lx, col, "test").Parse()
	if mod == nil {
		t.Fatal("Parse returned a nil module")
	}
	return mod.String(), col
}

func TestEmptyProgram(t *testing.T) {
	dump, col := compile(t, "program Empty is begin end program.")
	if col.HasErrors() {
		t.Fatalf("unexpected errors: %s", col.FormatAll())
	}
	if !strings.Contains(dump, "define external i32 @main()") {
		t.Fatalf("expected a main function, got:\n%s", dump)
	}
	if !strings.Contains(dump, "ret i32 0") {
		t.Fatalf("expected main to return 0, got:\n%s", dump)
	}
}

func TestGlobalAndLocalVariableDeclarations(t *testing.T) {
	dump, col := compile(t, `
		program Vars is
			integer x;
			global float y;
		begin
			x := 1;
			y := 2.5;
		end program.
	`)
	if col.HasErrors() {
		t.Fatalf("unexpected errors: %s", col.FormatAll())
	}
	if !strings.Contains(dump, "@Y = global float") {
		t.Fatalf("expected global Y, got:\n%s", dump)
	}
	if !strings.Contains(dump, "alloca i32") {
		t.Fatalf("expected local X to be stack-allocated, got:\n%s", dump)
	}
}

func TestArrayIndexingUsesLowerBoundNormalization(t *testing.T) {
	dump, col := compile(t, `
		program Arr is
			integer a[2:5];
		begin
			a[3] := 9;
		end program.
	`)
	if col.HasErrors() {
		t.Fatalf("unexpected errors: %s", col.FormatAll())
	}
	if !strings.Contains(dump, "sub i32") {
		t.Fatalf("expected the index to be normalized against the lower bound, got:\n%s", dump)
	}
	if !strings.Contains(dump, "[3 x i32]") {
		t.Fatalf("expected a 3-element array (upper-lower, not upper-lower+1), got:\n%s", dump)
	}
}

func TestArrayWithNegativeLowerBoundAcceptsItsFullIndexRange(t *testing.T) {
	dump, col := compile(t, `
		program NegBounds is
			integer a[-5:5];
		begin
			a[-5] := 1;
			a[4] := 2;
		end program.
	`)
	if col.HasErrors() {
		t.Fatalf("unexpected errors: %s", col.FormatAll())
	}
	if !strings.Contains(dump, "[10 x i32]") {
		t.Fatalf("expected a 10-element array (5 - -5, not 5 - -5 + 1), got:\n%s", dump)
	}
	if !strings.Contains(dump, "sub i32") {
		t.Fatalf("expected both indices to normalize against the lower bound, got:\n%s", dump)
	}
}

func TestWholeArrayAssignmentCopiesEveryElement(t *testing.T) {
	dump, col := compile(t, `
		program Copy is
			integer a[0:3];
			integer b[0:3];
		begin
			a := b;
		end program.
	`)
	if col.HasErrors() {
		t.Fatalf("unexpected errors: %s", col.FormatAll())
	}
	if strings.Count(dump, "= load i32") < 3 {
		t.Fatalf("expected an unrolled element-by-element copy, got:\n%s", dump)
	}
}

func TestMismatchedArrayAssignmentIsAnError(t *testing.T) {
	_, col := compile(t, `
		program Mismatch is
			integer a[0:3];
			integer b[0:2];
		begin
			a := b;
		end program.
	`)
	if !col.HasErrors() {
		t.Fatal("expected an error for mismatched array lengths")
	}
}

func TestIfStatementEmitsBalancedBlocks(t *testing.T) {
	dump, col := compile(t, `
		program Cond is
			integer x;
		begin
			if (x == 0) then
				x := 1;
			else
				x := 2;
			end if;
		end program.
	`)
	if col.HasErrors() {
		t.Fatalf("unexpected errors: %s", col.FormatAll())
	}
	for _, label := range []string{"then.", "else.", "after."} {
		if !strings.Contains(dump, label) {
			t.Fatalf("expected a block named like %q, got:\n%s", label, dump)
		}
	}
}

func TestForLoopReevaluatesConditionEachIteration(t *testing.T) {
	dump, col := compile(t, `
		program Loop is
			integer i;
		begin
			for (i := 0; i < 10)
				i := i + 1;
			end for;
		end program.
	`)
	if col.HasErrors() {
		t.Fatalf("unexpected errors: %s", col.FormatAll())
	}
	if !strings.Contains(dump, "icmp slt") {
		t.Fatalf("expected a signed less-than comparison, got:\n%s", dump)
	}
}

func TestFloatLessThanUsesStrictOrderedPredicate(t *testing.T) {
	dump, col := compile(t, `
		program FloatCmp is
			float x;
			bool b;
		begin
			b := x < 1.0;
		end program.
	`)
	if col.HasErrors() {
		t.Fatalf("unexpected errors: %s", col.FormatAll())
	}
	if !strings.Contains(dump, "fcmp olt") {
		t.Fatalf("expected fcmp olt (not the original's olе bug), got:\n%s", dump)
	}
}

func TestNotOperatorReturnsTheNegatedValue(t *testing.T) {
	dump, col := compile(t, `
		program NotOp is
			bool b;
		begin
			b := not true;
		end program.
	`)
	if col.HasErrors() {
		t.Fatalf("unexpected errors: %s", col.FormatAll())
	}
	if !strings.Contains(dump, "xor") {
		t.Fatalf("expected the negation to actually be stored, got:\n%s", dump)
	}
}

func TestProcedureCallPassesByValueAndByReference(t *testing.T) {
	dump, col := compile(t, `
		program Calls is
			integer total;

			procedure Add(integer a in, integer b in, integer result out)
			begin
				result := a + b;
			end procedure;
		begin
			Add(1, 2, total);
		end program.
	`)
	if col.HasErrors() {
		t.Fatalf("unexpected errors: %s", col.FormatAll())
	}
	if !strings.Contains(dump, "call void ADD(") {
		t.Fatalf("expected a call to Add, got:\n%s", dump)
	}
}

func TestNestedProcedureIsRejected(t *testing.T) {
	_, col := compile(t, `
		program Nested is
			procedure Outer()
			begin
				procedure Inner()
				begin
				end procedure;
			end procedure;
		begin
		end program.
	`)
	if !col.HasErrors() {
		t.Fatal("expected an error for a nested procedure declaration")
	}
}

func TestBuiltinProceduresAreCallable(t *testing.T) {
	dump, col := compile(t, `
		program IO is
			integer x;
		begin
			GetInteger(x);
			PutInteger(x);
		end program.
	`)
	if col.HasErrors() {
		t.Fatalf("unexpected errors: %s", col.FormatAll())
	}
	if !strings.Contains(dump, "call void GETINTEGER(") || !strings.Contains(dump, "call void PUTINTEGER(") {
		t.Fatalf("expected calls to both built-ins, got:\n%s", dump)
	}
}

func TestUnbalancedClosingKeywordIsOnlyAWarning(t *testing.T) {
	_, col := compile(t, `
		program Loose is
			integer i;
		begin
			for (i := 0; i < 1)
				i := i + 1;
			end if;
		end program.
	`)
	if col.HasErrors() {
		t.Fatalf("expected no hard error for a mismatched closer, got: %s", col.FormatAll())
	}
	if col.WarningCount() == 0 {
		t.Fatal("expected a warning for the mismatched closer")
	}
}

func TestUndeclaredIdentifierIsReported(t *testing.T) {
	_, col := compile(t, `
		program Undeclared is
		begin
			y := 1;
		end program.
	`)
	if !col.HasErrors() {
		t.Fatal("expected an error for an undeclared assignment target")
	}
}
