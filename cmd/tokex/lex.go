package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nihei9/tokex/lex"
	"github.com/nihei9/tokex/tokexerr"
)

var lexFlags = struct {
	grammar *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "lex",
		Short:   "Print the grammar token stream produced by the grammar lexer",
		Example: `  tokex lex -g grammar.tokex`,
		Args:    cobra.NoArgs,
		RunE:    runLex,
	}
	lexFlags.grammar = cmd.Flags().StringP("grammar", "g", "", "grammar file path (default stdin)")
	rootCmd.AddCommand(cmd)
}

func runLex(cmd *cobra.Command, args []string) error {
	src, err := readGrammarSource(*lexFlags.grammar)
	if err != nil {
		return err
	}

	tokens, err := lex.Lex(src)
	if err != nil {
		if gerr, ok := err.(*tokexerr.GrammarError); ok {
			fmt.Fprint(os.Stderr, gerr.Format())
		}
		return err
	}

	for _, tok := range tokens {
		fmt.Fprintf(os.Stdout, "%-24v %4v-%-4v %q\n", tok.Kind, tok.Span.Start, tok.Span.End, tok.Text)
	}
	return nil
}
