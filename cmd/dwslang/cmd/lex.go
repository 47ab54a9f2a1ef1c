package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/dwslang/internal/diag"
	"github.com/cwbudde/dwslang/internal/lexer"
	"github.com/cwbudde/dwslang/internal/token"
	"github.com/spf13/cobra"
)

var lexEval string

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a program and print the resulting tokens",
	Long: `Tokenize a program and print one line per token: its source line and its
kind, with identifiers and literals showing their decoded value.

Examples:
  dwslang lex program.dws
  dwslang lex -e "integer x;"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline source instead of reading a file")
}

func runLex(cmd *cobra.Command, args []string) error {
	input, _, err := readSource(lexEval, args)
	if err != nil {
		return err
	}

	col := diag.NewCollector(input, !cfg.NoColor, nil)
	l := lexer.New(input, lexer.WithSink(col))

	count := 0
	for {
		tok := l.NextToken()
		fmt.Printf("%4d | %s\n", tok.Line, tok)
		count++
		if tok.Kind == token.FILE_END {
			break
		}
	}

	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "%d token(s), %d error(s)\n", count, col.ErrorCount())
	}
	if col.HasErrors() {
		fmt.Fprint(os.Stderr, col.FormatAll())
		return fmt.Errorf("lexing produced %d error(s)", col.ErrorCount())
	}
	return nil
}
