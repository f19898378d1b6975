package element

import (
	"testing"

	"github.com/nihei9/tokex/lex"
	"github.com/nihei9/tokex/tokexerr"
)

func lexOne(t *testing.T, src string) lex.Token {
	t.Helper()
	toks, err := lex.Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q) returned an unexpected error: %v", src, err)
	}
	if len(toks) != 1 {
		t.Fatalf("Lex(%q) produced %v tokens, want 1", src, len(toks))
	}
	return toks[0]
}

func TestMakeDefaultFlags(t *testing.T) {
	tok := lexOne(t, `'a'`)
	el, err := Make(tok, DefaultFlags(), `'a'`)
	if err != nil {
		t.Fatalf("Make returned an unexpected error: %v", err)
	}
	if el.Kind != KindStringLiteral {
		t.Fatalf("got kind %v, want %v", el.Kind, KindStringLiteral)
	}
	if !el.EffectiveFlags.Has(FlagCaseInsensitive) {
		t.Error("expected the default 'i' flag to be effective")
	}
	if el.EffectiveFlags.Has(FlagCaseSensitive) {
		t.Error("'s' must not be effective alongside the default 'i'")
	}
}

func TestMakeExplicitFlagOverridesDefault(t *testing.T) {
	tok := lexOne(t, `s'a'`)
	el, err := Make(tok, DefaultFlags(), `s'a'`)
	if err != nil {
		t.Fatalf("Make returned an unexpected error: %v", err)
	}
	if !el.EffectiveFlags.Has(FlagCaseSensitive) {
		t.Error("expected explicit 's' to be effective")
	}
	if el.EffectiveFlags.Has(FlagCaseInsensitive) {
		t.Error("the default 'i' must be discarded once 's' is explicit, since they are mutually exclusive")
	}
}

func TestMakeMutuallyExclusiveFlagsRejected(t *testing.T) {
	toks, err := lex.Lex(`qu.`)
	if err != nil {
		t.Fatalf("Lex returned an unexpected error: %v", err)
	}
	_, err = Make(toks[0], DefaultFlags(), `qu.`)
	if err == nil {
		t.Fatal("expected an error for the mutually exclusive 'q'/'u' pair")
	}
	gerr, ok := err.(*tokexerr.GrammarError)
	if !ok {
		t.Fatalf("expected a *tokexerr.GrammarError, got %T", err)
	}
	if gerr.Kind != tokexerr.KindMutuallyExclusiveGrammarTokenFlags {
		t.Errorf("got kind %v, want %v", gerr.Kind, tokexerr.KindMutuallyExclusiveGrammarTokenFlags)
	}
}

func TestMakeRegexCompilesCaseInsensitiveByDefault(t *testing.T) {
	tok := lexOne(t, `~abc~`)
	el, err := Make(tok, DefaultFlags(), `~abc~`)
	if err != nil {
		t.Fatalf("Make returned an unexpected error: %v", err)
	}
	if el.Regex == nil {
		t.Fatal("expected a compiled regex")
	}
	if !el.Regex.MatchString("ABC") {
		t.Error("expected the default case-insensitive regex to match ABC")
	}
}

func TestMakeRegexCaseSensitive(t *testing.T) {
	tok := lexOne(t, `s~abc~`)
	el, err := Make(tok, DefaultFlags(), `s~abc~`)
	if err != nil {
		t.Fatalf("Make returned an unexpected error: %v", err)
	}
	if el.Regex.MatchString("ABC") {
		t.Error("a case-sensitive regex must not match ABC against pattern abc")
	}
}

func TestMakeInvalidRegex(t *testing.T) {
	tok := lexOne(t, `~(~`)
	_, err := Make(tok, DefaultFlags(), `~(~`)
	if err == nil {
		t.Fatal("expected an error for an unparsable regex body")
	}
	gerr, ok := err.(*tokexerr.GrammarError)
	if !ok {
		t.Fatalf("expected a *tokexerr.GrammarError, got %T", err)
	}
	if gerr.Kind != tokexerr.KindInvalidRegex {
		t.Errorf("got kind %v, want %v", gerr.Kind, tokexerr.KindInvalidRegex)
	}
}

func TestMakeNamedElementName(t *testing.T) {
	tok := lexOne(t, `<x:`)
	el, err := Make(tok, DefaultFlags(), `<x:`)
	if err != nil {
		t.Fatalf("Make returned an unexpected error: %v", err)
	}
	if el.Kind != KindNamedElement || el.Name != "x" {
		t.Errorf("got kind=%v name=%q, want kind=%v name=%q", el.Kind, el.Name, KindNamedElement, "x")
	}
}

func TestMakeMissingNamedElementNameRejected(t *testing.T) {
	tok := lexOne(t, `<:`)
	_, err := Make(tok, DefaultFlags(), `<:`)
	if err == nil {
		t.Fatal("expected an error for a named-element open with no name")
	}
	gerr, ok := err.(*tokexerr.GrammarError)
	if !ok {
		t.Fatalf("expected a *tokexerr.GrammarError, got %T", err)
	}
	if gerr.Kind != tokexerr.KindMissingElementName {
		t.Errorf("got kind %v, want %v", gerr.Kind, tokexerr.KindMissingElementName)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	child := &Element{Kind: KindStringLiteral, Literal: "a"}
	delim := &Element{Kind: KindIteratorDelimiter, Children: []*Element{{Kind: KindStringLiteral, Literal: "b"}}}
	parent := &Element{Kind: KindZeroOrMore, Name: "xs", Children: []*Element{child}, Delimiter: delim}

	clone := parent.Clone()
	clone.Children[0].Literal = "mutated"
	clone.Delimiter.Children[0].Literal = "mutated"

	if child.Literal != "a" {
		t.Error("mutating the clone's child must not affect the original")
	}
	if delim.Children[0].Literal != "b" {
		t.Error("mutating the clone's delimiter must not affect the original")
	}
}
