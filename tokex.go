// Package tokex wires the lexer, element factory, grammar parser, match
// engine and tokenizer packages together behind the two public entry
// points spec.md §1 calls "trivial glue": Compile and Match. Nothing in
// this file implements grammar or matching semantics itself; it only
// threads options through to the packages that do, the same shape as the
// teacher's cmd/vartan/compile.go readGrammar/grammar.Compile call.
package tokex

import (
	"github.com/google/uuid"

	"github.com/nihei9/tokex/element"
	"github.com/nihei9/tokex/lex"
	"github.com/nihei9/tokex/match"
	"github.com/nihei9/tokex/parse"
	"github.com/nihei9/tokex/tokenizer"
	"github.com/nihei9/tokex/tokexlog"
)

// Grammar is a compiled grammar, reusable across many Match calls against
// different inputs (spec.md §1's "the same compiled grammar can be
// reused").
type Grammar struct {
	root      *element.Element
	tokenizer tokenizer.Tokenizer
}

// Root exposes the compiled element tree for callers that want to walk
// it directly (the cmd/tokex describe subcommand does this).
func (g *Grammar) Root() *element.Element {
	return g.root
}

type compileConfig struct {
	allowSubGrammarDefinitions bool
	tokenizer                  tokenizer.Tokenizer
	defaultFlags               element.FlagSet
}

// CompileOption configures Compile.
type CompileOption func(*compileConfig)

// WithTokenizer overrides the tokenizer a Grammar uses when Match is
// called without an explicit tokenizer of its own.
func WithTokenizer(t tokenizer.Tokenizer) CompileOption {
	return func(c *compileConfig) { c.tokenizer = t }
}

// WithSubGrammarsAllowed toggles whether `def name { ... }` is legal in
// this grammar source (spec.md §4.3's allow_sub_grammar_definitions).
func WithSubGrammarsAllowed(allowed bool) CompileOption {
	return func(c *compileConfig) { c.allowSubGrammarDefinitions = allowed }
}

// WithDefaultFlags overrides spec.md §6's default flag set ({i}).
func WithDefaultFlags(flags element.FlagSet) CompileOption {
	return func(c *compileConfig) { c.defaultFlags = flags }
}

// Compile lexes and parses a grammar string into a reusable Grammar, per
// spec.md §6's `compile(grammar, allow_sub_grammar_definitions=true,
// tokenizer=default, default_flags={i})`.
func Compile(grammar string, opts ...CompileOption) (*Grammar, error) {
	cfg := &compileConfig{
		allowSubGrammarDefinitions: true,
		tokenizer:                  tokenizer.Default(),
		defaultFlags:               element.DefaultFlags(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tokens, err := lex.Lex(grammar)
	if err != nil {
		return nil, err
	}

	root, err := parse.Parse(tokens, grammar, cfg.allowSubGrammarDefinitions, cfg.defaultFlags)
	if err != nil {
		return nil, err
	}

	return &Grammar{root: root, tokenizer: cfg.tokenizer}, nil
}

type matchConfig struct {
	matchEntirety bool
	debug         bool
	tokenizer     tokenizer.Tokenizer
}

// MatchOption configures Match.
type MatchOption func(*matchConfig)

// WithEntirety toggles spec.md §4.4's match_entirety requirement that the
// whole input token sequence be consumed. Default true.
func WithEntirety(entire bool) MatchOption {
	return func(c *matchConfig) { c.matchEntirety = entire }
}

// WithDebug raises the process-wide debug sink (tokexlog) for the
// duration of this one Match call (spec.md §5's "scoped acquisition").
func WithDebug(enabled bool) MatchOption {
	return func(c *matchConfig) { c.debug = enabled }
}

// WithMatchTokenizer overrides the Grammar's tokenizer for a single Match
// call, without changing what Compile bound.
func WithMatchTokenizer(t tokenizer.Tokenizer) MatchOption {
	return func(c *matchConfig) { c.tokenizer = t }
}

// Match tokenizes input with the grammar's tokenizer and matches the
// resulting token sequence against the compiled grammar, per spec.md §6's
// `match(grammar, input, match_entirety=true, ...)`. It returns a null
// Value and false on any match failure, including a match_entirety violation
// (spec.md §7); the engine itself never raises, so the returned error is
// non-nil only when the tokenizer fails.
func Match(g *Grammar, input string, opts ...MatchOption) (match.Value, bool, error) {
	cfg := &matchConfig{matchEntirety: true, tokenizer: g.tokenizer}
	for _, opt := range opts {
		opt(cfg)
	}

	restore := tokexlog.WithDebug(cfg.debug, nil)
	defer restore()
	traceID := ""
	if cfg.debug {
		traceID = uuid.NewString()
		tokexlog.Debug("trace", traceID, "event", "match-start")
	}

	tokens, err := cfg.tokenizer.Tokenize(input)
	if err != nil {
		return match.Null(), false, err
	}

	capture, matched := match.Run(g.root, tokens, cfg.matchEntirety)
	if cfg.debug {
		tokexlog.Debug("trace", traceID, "event", "match-end", "matched", matched)
	}
	return capture, matched, nil
}
