// Package cmd implements the dwslang CLI: a root command plus lex/parse/
// compile/run subcommands, each running one prefix of the lex -> parse ->
// type-check -> IR-emit -> interpret pipeline.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/dwslang/internal/config"
	"github.com/cwbudde/dwslang/internal/diag"
	"github.com/cwbudde/dwslang/internal/ir"
	"github.com/cwbudde/dwslang/internal/lexer"
	"github.com/cwbudde/dwslang/internal/parser"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// projectConfigFile is the optional per-directory settings file config.LoadFile
// merges over the compiled-in defaults, below whatever flags the user passes.
const projectConfigFile = ".dwsconfig.yaml"

// cfg is the fully merged configuration (defaults -> project file -> flags),
// populated once per invocation by rootCmd's PersistentPreRunE, after cobra
// has parsed the command line but before any subcommand's RunE runs.
var cfg config.Config

// readFlags reads the parsed flag values back into a Config; it closes over
// the flag pointers config.BindFlags registered in init.
var readFlags func() config.Config

var rootCmd = &cobra.Command{
	Use:   "dwslang",
	Short: "A compiler front end for a small imperative language",
	Long: `dwslang lexes, parses, type-checks, and emits a typed low-level IR for
programs written in a small Pascal-flavored imperative language: integer,
float, bool, char, and string scalars, fixed-size arrays, and procedures
with by-value and by-reference parameters.

There is no real code-generation backend here: "compile" emits through a
narrow IR façade and "run" interprets that IR directly with a minimal
tree-walker.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = readFlags()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	fileCfg, err := config.LoadFile(config.Default(), projectConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: reading %s: %v\n", projectConfigFile, err)
		fileCfg = config.Default()
	}
	readFlags = config.BindFlags(rootCmd.PersistentFlags(), fileCfg)
}

// readSource resolves one subcommand's input: inline source via eval if
// non-empty, the named file if args supplies one, or stdin otherwise.
func readSource(eval string, args []string) (input, name string, err error) {
	if eval != "" {
		return eval, "<eval>", nil
	}
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), "<stdin>", nil
}

// compileModule runs the fused lex/parse/emit pipeline over input, named
// name for diagnostic and module-naming purposes.
func compileModule(input, name string) (*ir.Module, *diag.Collector) {
	col := diag.NewCollector(input, !cfg.NoColor, nil)
	l := lexer.New(input, lexer.WithSink(col), lexer.WithTracing(cfg.Verbose))
	mod := parser.New(l, col, name).Parse()
	return mod, col
}
