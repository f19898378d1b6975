package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nihei9/tokex/element"
	"github.com/nihei9/tokex/lex"
	"github.com/nihei9/tokex/parse"
	"github.com/nihei9/tokex/tokexerr"
)

var parseFlags = struct {
	grammar *string
	noSub   *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse",
		Short:   "Print the compiled element tree for a grammar",
		Example: `  tokex parse -g grammar.tokex`,
		Args:    cobra.NoArgs,
		RunE:    runParse,
	}
	parseFlags.grammar = cmd.Flags().StringP("grammar", "g", "", "grammar file path (default stdin)")
	parseFlags.noSub = cmd.Flags().Bool("no-sub-grammars", false, "disable sub-grammar definitions")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	src, err := readGrammarSource(*parseFlags.grammar)
	if err != nil {
		return err
	}

	tokens, err := lex.Lex(src)
	if err != nil {
		printGrammarError(err)
		return err
	}

	root, err := parse.Parse(tokens, src, !*parseFlags.noSub, element.DefaultFlags())
	if err != nil {
		printGrammarError(err)
		return err
	}

	printElementTree(os.Stdout, root, 0)
	return nil
}

func printGrammarError(err error) {
	if gerr, ok := err.(*tokexerr.GrammarError); ok {
		fmt.Fprint(os.Stderr, gerr.Format())
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func printElementTree(w *os.File, el *element.Element, depth int) {
	indent := strings.Repeat("  ", depth)
	label := el.Kind.String()
	if el.Name != "" {
		label += "(" + el.Name + ")"
	}
	fmt.Fprintf(w, "%v%v\n", indent, label)
	if el.Delimiter != nil {
		fmt.Fprintf(w, "%v  sep {\n", indent)
		for _, c := range el.Delimiter.Children {
			printElementTree(w, c, depth+2)
		}
		fmt.Fprintf(w, "%v  }\n", indent)
	}
	for _, c := range el.Children {
		printElementTree(w, c, depth+1)
	}
}
