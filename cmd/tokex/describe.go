package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nihei9/tokex"
	"github.com/nihei9/tokex/element"
)

var describeFlags = struct {
	grammar *string
	format  *string
	stats   *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "describe",
		Short:   "Print a readable walk of a compiled grammar's element tree",
		Example: `  tokex describe -g grammar.tokex --format yaml`,
		Args:    cobra.NoArgs,
		RunE:    runDescribe,
	}
	describeFlags.grammar = cmd.Flags().StringP("grammar", "g", "", "grammar file path (default stdin)")
	describeFlags.format = cmd.Flags().StringP("format", "f", "tree", "output format: tree|yaml")
	describeFlags.stats = cmd.Flags().Bool("stats", false, "print element/source size statistics")
	rootCmd.AddCommand(cmd)
}

// describeNode is the YAML-friendly mirror of an element.Element that
// tokex describe --format yaml marshals, since element.Element itself
// carries compiled regexes and other non-serialisable fields.
type describeNode struct {
	Kind      string          `yaml:"kind"`
	Name      string          `yaml:"name,omitempty"`
	Flags     []string        `yaml:"flags,omitempty"`
	Span      [2]int          `yaml:"span"`
	Delimiter *describeNode   `yaml:"delimiter,omitempty"`
	Children  []*describeNode `yaml:"children,omitempty"`
}

func toDescribeNode(el *element.Element) *describeNode {
	n := &describeNode{
		Kind: el.Kind.String(),
		Name: el.Name,
		Span: [2]int{el.Span.Start, el.Span.End},
	}
	for _, f := range []element.Flag{
		element.FlagCaseSensitive, element.FlagCaseInsensitive,
		element.FlagQuotedOnly, element.FlagUnquotedOnly, element.FlagNegate,
	} {
		if el.EffectiveFlags.Has(f) {
			n.Flags = append(n.Flags, string(f))
		}
	}
	if el.Delimiter != nil {
		n.Delimiter = toDescribeNode(el.Delimiter)
	}
	for _, c := range el.Children {
		n.Children = append(n.Children, toDescribeNode(c))
	}
	return n
}

func runDescribe(cmd *cobra.Command, args []string) error {
	grammarSrc, err := readGrammarSource(*describeFlags.grammar)
	if err != nil {
		return err
	}

	g, err := tokex.Compile(grammarSrc)
	if err != nil {
		printGrammarError(err)
		return err
	}

	runID := uuid.NewString()

	switch *describeFlags.format {
	case "yaml":
		out, err := yaml.Marshal(toDescribeNode(g.Root()))
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, string(out))
	case "tree":
		fmt.Fprintf(os.Stdout, "# describe run %s\n", runID)
		printElementTree(os.Stdout, g.Root(), 0)
	default:
		return fmt.Errorf("unknown format %q", *describeFlags.format)
	}

	if *describeFlags.stats {
		count := countElements(g.Root())
		fmt.Fprintf(os.Stdout, "\n%s elements, %s bytes of grammar source\n",
			humanize.Comma(int64(count)), humanize.Comma(int64(len(grammarSrc))))
	}

	return nil
}

func countElements(el *element.Element) int {
	count := 1
	if el.Delimiter != nil {
		count += countElements(el.Delimiter)
	}
	for _, c := range el.Children {
		count += countElements(c)
	}
	return count
}
