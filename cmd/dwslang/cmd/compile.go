package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/dwslang/internal/config"
	"github.com/spf13/cobra"
)

var (
	compileOutput string
	compileDumpIR bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a program to a serialized IR module",
	Long: `Compile a program through the full lex -> parse -> type-check -> IR-emit
pipeline and write the resulting module to a binary-framed file.

Examples:
  dwslang compile program.dws
  dwslang compile program.dws -o out.dwm --dump-ir`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file (default: <input>.dwm)")
	compileCmd.Flags().BoolVar(&compileDumpIR, "dump-ir", false, "print the module's IR dump after a successful compile")
}

func runCompile(cmd *cobra.Command, args []string) error {
	filename := args[0]
	input, _, err := readSource("", args)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "compiling %s...\n", filename)
	}

	mod, col := compileModule(input, filename)
	if col.HasErrors() {
		fmt.Fprint(os.Stderr, col.FormatAll())
		return fmt.Errorf("compilation failed with %d error(s)", col.ErrorCount())
	}
	if col.WarningCount() > 0 && !cfg.Quiet {
		fmt.Fprint(os.Stderr, col.FormatAll())
	}

	data, err := mod.MarshalBinary()
	if err != nil {
		return fmt.Errorf("serializing module: %w", err)
	}

	if compileDumpIR {
		if cfg.DumpFormat == config.DumpBinary {
			fmt.Fprintf(os.Stderr, "%x\n", data)
		} else {
			fmt.Fprintln(os.Stderr, mod.String())
		}
	}

	out := compileOutput
	if out == "" {
		ext := filepath.Ext(filename)
		if ext != "" {
			out = strings.TrimSuffix(filename, ext) + ".dwm"
		} else {
			out = filename + ".dwm"
		}
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", out, len(data))
	} else {
		fmt.Printf("compiled %s -> %s\n", filename, out)
	}
	return nil
}
