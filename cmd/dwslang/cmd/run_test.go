package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/dwslang/internal/config"
)

// captureOutput runs fn with os.Stdout and os.Stderr redirected to pipes and
// returns whatever each stream collected.
func captureOutput(t *testing.T, fn func() error) (stdout, stderr string, err error) {
	t.Helper()

	oldStdout, oldStderr := os.Stdout, os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout, os.Stderr = wOut, wErr

	err = fn()

	wOut.Close()
	wErr.Close()
	os.Stdout, os.Stderr = oldStdout, oldStderr

	var bufOut, bufErr bytes.Buffer
	bufOut.ReadFrom(rOut)
	bufErr.ReadFrom(rErr)
	return bufOut.String(), bufErr.String(), err
}

// withConfig sets the package-level cfg for the duration of one test, since
// these tests call a subcommand's RunE directly rather than going through
// rootCmd.Execute (which would populate cfg via PersistentPreRunE).
func withConfig(t *testing.T, c config.Config) {
	t.Helper()
	old := cfg
	cfg = c
	t.Cleanup(func() { cfg = old })
}

func TestRunLexPrintsOneLinePerToken(t *testing.T) {
	withConfig(t, config.Default())

	lexEval = `program P is integer x; begin x := 1; end program.`
	defer func() { lexEval = "" }()

	stdout, _, err := captureOutput(t, func() error {
		return runLex(lexCmd, nil)
	})
	if err != nil {
		t.Fatalf("runLex failed: %v\nstdout: %s", err, stdout)
	}
	if !strings.Contains(stdout, "RS_INTEGER") {
		t.Errorf("expected an RS_INTEGER token line, got:\n%s", stdout)
	}
}

func TestRunLexReportsLexErrors(t *testing.T) {
	withConfig(t, config.Default())

	lexEval = "integer x; $"
	defer func() { lexEval = "" }()

	_, stderr, err := captureOutput(t, func() error {
		return runLex(lexCmd, nil)
	})
	if err == nil {
		t.Fatalf("expected an error for illegal input, stderr: %s", stderr)
	}
}

func TestRunParseSucceedsOnAWellFormedProgram(t *testing.T) {
	withConfig(t, config.Default())

	parseEval = `program P is begin end program.`
	parseDumpIR = false
	defer func() { parseEval = ""; parseDumpIR = false }()

	_, stderr, err := captureOutput(t, func() error {
		return runParse(parseCmd, nil)
	})
	if err != nil {
		t.Fatalf("runParse failed: %v\nstderr: %s", err, stderr)
	}
}

func TestRunParseDumpIRPrintsTheModule(t *testing.T) {
	withConfig(t, config.Default())

	parseEval = `program P is begin end program.`
	parseDumpIR = true
	defer func() { parseEval = ""; parseDumpIR = false }()

	stdout, _, err := captureOutput(t, func() error {
		return runParse(parseCmd, nil)
	})
	if err != nil {
		t.Fatalf("runParse failed: %v", err)
	}
	if stdout == "" {
		t.Error("expected --dump-ir to print the module's IR dump to stdout")
	}
}

func TestRunCompileWritesAModuleFileNextToTheSource(t *testing.T) {
	withConfig(t, config.Default())

	tempDir := t.TempDir()
	src := "program P is begin end program."
	srcPath := filepath.Join(tempDir, "main.dws")
	if err := os.WriteFile(srcPath, []byte(src), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	compileOutput = ""
	compileDumpIR = false
	defer func() { compileOutput = ""; compileDumpIR = false }()

	stdout, stderr, err := captureOutput(t, func() error {
		return runCompile(compileCmd, []string{srcPath})
	})
	if err != nil {
		t.Fatalf("runCompile failed: %v\nstderr: %s", err, stderr)
	}

	wantOut := filepath.Join(tempDir, "main.dwm")
	if _, statErr := os.Stat(wantOut); statErr != nil {
		t.Fatalf("expected %s to exist: %v\nstdout: %s", wantOut, statErr, stdout)
	}
}

func TestRunCompileHonorsExplicitOutputFlag(t *testing.T) {
	withConfig(t, config.Default())

	tempDir := t.TempDir()
	srcPath := filepath.Join(tempDir, "main.dws")
	if err := os.WriteFile(srcPath, []byte("program P is begin end program."), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	wantOut := filepath.Join(tempDir, "custom.out")
	compileOutput = wantOut
	compileDumpIR = false
	defer func() { compileOutput = ""; compileDumpIR = false }()

	if _, stderr, err := captureOutput(t, func() error {
		return runCompile(compileCmd, []string{srcPath})
	}); err != nil {
		t.Fatalf("runCompile failed: %v\nstderr: %s", err, stderr)
	}

	if _, statErr := os.Stat(wantOut); statErr != nil {
		t.Fatalf("expected %s to exist: %v", wantOut, statErr)
	}
}

func TestRunCompileFailsOnASemanticError(t *testing.T) {
	withConfig(t, config.Default())

	tempDir := t.TempDir()
	srcPath := filepath.Join(tempDir, "bad.dws")
	if err := os.WriteFile(srcPath, []byte("program P is begin undeclaredvar := 1; end program."), 0o644); err != nil { // deliberately references an unresolvable identifier
		t.Fatalf("writing source: %v", err)
	}

	compileOutput = ""
	compileDumpIR = false
	defer func() { compileOutput = ""; compileDumpIR = false }()

	_, stderr, err := captureOutput(t, func() error {
		return runCompile(compileCmd, []string{srcPath})
	})
	if err == nil {
		t.Fatalf("expected a compilation error, stderr: %s", stderr)
	}
}

func TestRunRunExecutesAProgramEndToEnd(t *testing.T) {
	withConfig(t, config.Default())

	runEval = `
		program P is
			integer x;
		begin
			x := 40;
			x := x + 2;
			PutInteger(x);
		end program.
	`
	runDumpIR = false
	defer func() { runEval = ""; runDumpIR = false }()

	stdout, stderr, err := captureOutput(t, func() error {
		return runRun(runCmd, nil)
	})
	if err != nil {
		t.Fatalf("runRun failed: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "42") {
		t.Errorf("expected \"42\" in stdout, got: %q", stdout)
	}
}

func TestRunRunReportsARuntimeError(t *testing.T) {
	withConfig(t, config.Default())

	runEval = `
		program P is
			integer x;
			integer y;
		begin
			x := 1;
			y := 0;
			x := x / y;
		end program.
	`
	runDumpIR = false
	defer func() { runEval = ""; runDumpIR = false }()

	_, stderr, err := captureOutput(t, func() error {
		return runRun(runCmd, nil)
	})
	if err == nil {
		t.Fatalf("expected a division-by-zero runtime error, stderr: %s", stderr)
	}
}

func TestReadSourcePrefersEvalOverArgs(t *testing.T) {
	input, name, err := readSource("inline source", []string{"ignored.dws"})
	if err != nil {
		t.Fatalf("readSource failed: %v", err)
	}
	if input != "inline source" || name != "<eval>" {
		t.Errorf("expected eval to win, got input=%q name=%q", input, name)
	}
}

func TestReadSourceReadsTheNamedFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "prog.dws")
	if err := os.WriteFile(path, []byte("program P is begin end program."), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	input, name, err := readSource("", []string{path})
	if err != nil {
		t.Fatalf("readSource failed: %v", err)
	}
	if name != path || !strings.Contains(input, "program P") {
		t.Errorf("expected the file's own contents, got input=%q name=%q", input, name)
	}
}
