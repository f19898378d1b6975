package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nihei9/tokex"
	"github.com/nihei9/tokex/tokenizer"
)

var matchFlags = struct {
	grammar    *string
	input      *string
	config     *string
	tokenizer  *string
	noEntirety *bool
	debug      *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Tokenize an input and match it against a compiled grammar",
		Example: `  tokex match -g grammar.tokex -i input.txt
  tokex match -g grammar.tokex -i input.txt --config match.yaml`,
		Args: cobra.NoArgs,
		RunE: runMatch,
	}
	matchFlags.grammar = cmd.Flags().StringP("grammar", "g", "", "grammar file path (default stdin)")
	matchFlags.input = cmd.Flags().StringP("input", "i", "", "input file path (default stdin, after grammar)")
	matchFlags.config = cmd.Flags().String("config", "", "YAML config file with tokenizer/entirety defaults")
	matchFlags.tokenizer = cmd.Flags().String("tokenizer", "default", "tokenizer: default|sql|numeric")
	matchFlags.noEntirety = cmd.Flags().Bool("no-entirety", false, "allow trailing unmatched tokens")
	matchFlags.debug = cmd.Flags().Bool("debug", false, "enable the debug log sink for this call")
	rootCmd.AddCommand(cmd)
}

// matchSettings mirrors the shape a tokex match --config file may supply;
// explicit CLI flags win over it, following the teacher's viper-over-
// cobra precedence idiom.
type matchSettings struct {
	Tokenizer string `mapstructure:"tokenizer"`
	Entirety  bool   `mapstructure:"entirety"`
	Debug     bool   `mapstructure:"debug"`
}

func loadMatchSettings(path string) (matchSettings, error) {
	settings := matchSettings{Entirety: true}
	if path == "" {
		return settings, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	if err := v.ReadInConfig(); err != nil {
		return settings, fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	if err := v.Unmarshal(&settings); err != nil {
		return settings, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	return settings, nil
}

func resolveTokenizer(name string) (tokenizer.Tokenizer, error) {
	switch name {
	case "", "default":
		return tokenizer.Default(), nil
	case "sql":
		return tokenizer.SQL(), nil
	case "numeric":
		return tokenizer.Numeric(), nil
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", name)
	}
}

func runMatch(cmd *cobra.Command, args []string) error {
	settings, err := loadMatchSettings(*matchFlags.config)
	if err != nil {
		return err
	}

	entirety := settings.Entirety
	if cmd.Flags().Changed("no-entirety") {
		entirety = !*matchFlags.noEntirety
	}
	debug := settings.Debug
	if cmd.Flags().Changed("debug") {
		debug = *matchFlags.debug
	}

	tokenizerName := *matchFlags.tokenizer
	if !cmd.Flags().Changed("tokenizer") && settings.Tokenizer != "" {
		tokenizerName = settings.Tokenizer
	}
	tok, err := resolveTokenizer(tokenizerName)
	if err != nil {
		return err
	}

	grammarSrc, err := readGrammarSource(*matchFlags.grammar)
	if err != nil {
		return err
	}

	g, err := tokex.Compile(grammarSrc, tokex.WithTokenizer(tok))
	if err != nil {
		printGrammarError(err)
		return err
	}

	input, err := readInput(*matchFlags.input)
	if err != nil {
		return err
	}

	capture, matched, err := tokex.Match(g, input, tokex.WithEntirety(entirety), tokex.WithDebug(debug))
	if err != nil {
		return err
	}
	if !matched {
		fmt.Fprintln(os.Stdout, "no match")
		return nil
	}

	out, err := yaml.Marshal(capture.Interface())
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, string(out))
	return nil
}
