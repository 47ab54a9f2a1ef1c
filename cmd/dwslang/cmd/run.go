package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/dwslang/internal/interp"
	"github.com/spf13/cobra"
)

var (
	runEval   string
	runDumpIR bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Compile and interpret a program",
	Long: `Run a program end to end: lex, parse, type-check, emit IR, and execute it
with a minimal tree-walking interpreter over the emitted IR graph. There
is no real code-generation backend behind this command — built-in
GetX/PutX procedures read from and write to this process's own stdin and
stdout.

Examples:
  dwslang run program.dws
  echo "7" | dwslang run program.dws`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runEval, "eval", "e", "", "run inline source instead of reading a file")
	runCmd.Flags().BoolVar(&runDumpIR, "dump-ir", false, "print the emitted module's IR dump before executing it")
}

func runRun(cmd *cobra.Command, args []string) error {
	input, name, err := readSource(runEval, args)
	if err != nil {
		return err
	}

	mod, col := compileModule(input, name)
	if col.HasErrors() {
		fmt.Fprint(os.Stderr, col.FormatAll())
		return fmt.Errorf("compilation failed with %d error(s)", col.ErrorCount())
	}
	if col.WarningCount() > 0 && !cfg.Quiet {
		fmt.Fprint(os.Stderr, col.FormatAll())
	}

	if runDumpIR {
		fmt.Fprintln(os.Stderr, mod.String())
	}

	if err := interp.New(mod, os.Stdin, os.Stdout).Run(cfg.EntryProcess); err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}
	return nil
}
