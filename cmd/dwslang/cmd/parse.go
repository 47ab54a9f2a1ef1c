package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	parseEval   string
	parseDumpIR bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse and type-check a program, reporting diagnostics",
	Long: `Run the fused parser/semantic-analyzer/IR-emitter over a program and
report any diagnostics it produces. Pass --dump-ir to also print the
emitted module's textual IR.

Examples:
  dwslang parse program.dws
  dwslang parse --dump-ir -e "program P is begin end program."`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline source instead of reading a file")
	parseCmd.Flags().BoolVar(&parseDumpIR, "dump-ir", false, "print the emitted module's textual IR dump")
}

func runParse(cmd *cobra.Command, args []string) error {
	input, name, err := readSource(parseEval, args)
	if err != nil {
		return err
	}

	mod, col := compileModule(input, name)

	if parseDumpIR {
		fmt.Println(mod.String())
	}
	if len(col.Entries()) > 0 {
		fmt.Fprint(os.Stderr, col.FormatAll())
	}
	if col.HasErrors() {
		return fmt.Errorf("parsing failed with %d error(s)", col.ErrorCount())
	}
	return nil
}
