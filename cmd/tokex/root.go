package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tokex",
	Short: "Lex, parse and match a token-stream grammar",
	Long: `tokex provides three debugging views into a grammar plus the match
itself:
- lex prints the grammar token stream produced by the grammar lexer.
- parse prints the compiled element tree.
- match tokenizes an input and matches it against a compiled grammar,
  printing the capture tree.
- describe prints a readable walk of a compiled grammar's element tree.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command; main's only caller.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
