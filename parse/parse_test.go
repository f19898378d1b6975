package parse

import (
	"testing"

	"github.com/nihei9/tokex/element"
	"github.com/nihei9/tokex/lex"
	"github.com/nihei9/tokex/tokexerr"
)

func parseSrc(t *testing.T, src string, allowSub bool) (*element.Element, error) {
	t.Helper()
	toks, err := lex.Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q) returned an unexpected error: %v", src, err)
	}
	return Parse(toks, src, allowSub, element.DefaultFlags())
}

func TestParseSimpleSequence(t *testing.T) {
	root, err := parseSrc(t, `'a' "b" s'c'`, true)
	if err != nil {
		t.Fatalf("Parse returned an unexpected error: %v", err)
	}
	if root.Kind != element.KindGrammar {
		t.Fatalf("root kind = %v, want %v", root.Kind, element.KindGrammar)
	}
	if len(root.Children) != 3 {
		t.Fatalf("root has %v children, want 3", len(root.Children))
	}
}

func TestParseNamedElements(t *testing.T) {
	root, err := parseSrc(t, `<a1:'a'> <a2:.> <a3:'>'>`, true)
	if err != nil {
		t.Fatalf("Parse returned an unexpected error: %v", err)
	}
	if len(root.Children) != 3 {
		t.Fatalf("root has %v children, want 3", len(root.Children))
	}
	for i, name := range []string{"a1", "a2", "a3"} {
		c := root.Children[i]
		if c.Kind != element.KindNamedElement || c.Name != name {
			t.Errorf("child %v: got kind=%v name=%q, want kind=NamedElement name=%q", i, c.Kind, c.Name, name)
		}
	}
	if root.Children[2].Children[0].Kind != element.KindStringLiteral || root.Children[2].Children[0].Literal != ">" {
		t.Errorf("a3's child should be the literal '>'; got %+v", root.Children[2].Children[0])
	}
}

func TestParseMissingNamedElementName(t *testing.T) {
	_, err := parseSrc(t, `<: 'a'>`, true)
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

func TestParseIteratorWithDelimiter(t *testing.T) {
	root, err := parseSrc(t, `(root: <x:'a'> *(xs: <v:.> sep { 'b' }))`, true)
	if err != nil {
		t.Fatalf("Parse returned an unexpected error: %v", err)
	}
	if len(root.Children) != 1 || root.Children[0].Name != "root" {
		t.Fatalf("expected a single 'root' child, got %+v", root.Children)
	}
	inner := root.Children[0]
	if len(inner.Children) != 2 {
		t.Fatalf("'root' has %v children, want 2", len(inner.Children))
	}
	xs := inner.Children[1]
	if xs.Kind != element.KindZeroOrMore || xs.Name != "xs" {
		t.Fatalf("got kind=%v name=%q, want ZeroOrMore(xs)", xs.Kind, xs.Name)
	}
	if xs.Delimiter == nil || xs.Delimiter.Kind != element.KindIteratorDelimiter {
		t.Fatalf("expected xs to carry an IteratorDelimiter, got %+v", xs.Delimiter)
	}
	if len(xs.Delimiter.Children) != 1 || xs.Delimiter.Children[0].Literal != "b" {
		t.Errorf("delimiter children = %+v, want a single literal 'b'", xs.Delimiter.Children)
	}
}

func TestParseDuplicateDelimiter(t *testing.T) {
	_, err := parseSrc(t, `*(xs: 'a' sep { . } sep { . })`, true)
	if err == nil {
		t.Fatal("expected an error for a duplicate delimiter")
	}
	gerr := mustGrammarError(t, err)
	if gerr.Kind != tokexerr.KindDuplicateDelimiter {
		t.Errorf("got kind %v, want %v", gerr.Kind, tokexerr.KindDuplicateDelimiter)
	}
}

func TestParseInvalidDelimiterTarget(t *testing.T) {
	_, err := parseSrc(t, `<name: . sep { . }>`, true)
	if err == nil {
		t.Fatal("expected an error attaching a delimiter to a NamedElement")
	}
	gerr := mustGrammarError(t, err)
	if gerr.Kind != tokexerr.KindInvalidDelimiter {
		t.Errorf("got kind %v, want %v", gerr.Kind, tokexerr.KindInvalidDelimiter)
	}
}

func TestParseSubGrammarDefinitionAndUsage(t *testing.T) {
	root, err := parseSrc(t, `def g { 'x' } g() g()`, true)
	if err != nil {
		t.Fatalf("Parse returned an unexpected error: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected the usage to expand to 2 inlined children, got %v", len(root.Children))
	}
	for i, c := range root.Children {
		if c.Kind != element.KindStringLiteral || c.Literal != "x" {
			t.Errorf("child %v = %+v, want literal 'x'", i, c)
		}
	}
	// The two usages must not share the same element pointer.
	if root.Children[0] == root.Children[1] {
		t.Error("each usage must inline its own copy of the definition's children")
	}
}

func TestParseSubGrammarsDisabled(t *testing.T) {
	_, err := parseSrc(t, `def g { 'x' } g()`, false)
	if err == nil {
		t.Fatal("expected an error when sub-grammar definitions are disabled")
	}
	gerr := mustGrammarError(t, err)
	if gerr.Kind != tokexerr.KindSubGrammarsDisabled {
		t.Errorf("got kind %v, want %v", gerr.Kind, tokexerr.KindSubGrammarsDisabled)
	}
}

func TestParseUndefinedSubGrammar(t *testing.T) {
	_, err := parseSrc(t, `g()`, true)
	if err == nil {
		t.Fatal("expected an error for an undefined sub-grammar usage")
	}
	gerr := mustGrammarError(t, err)
	if gerr.Kind != tokexerr.KindUndefinedSubGrammar {
		t.Errorf("got kind %v, want %v", gerr.Kind, tokexerr.KindUndefinedSubGrammar)
	}
}

func TestParseSubGrammarScopeViolation(t *testing.T) {
	_, err := parseSrc(t, `(outer: def g { 'x' } )`, true)
	if err == nil {
		t.Fatal("expected an error defining a sub-grammar inside a non-root, non-def scope")
	}
	gerr := mustGrammarError(t, err)
	if gerr.Kind != tokexerr.KindSubGrammarScope {
		t.Errorf("got kind %v, want %v", gerr.Kind, tokexerr.KindSubGrammarScope)
	}
}

func TestParseExtraClosingBrackets(t *testing.T) {
	_, err := parseSrc(t, `'a' )`, true)
	if err == nil {
		t.Fatal("expected an error for an extra closing bracket")
	}
	gerr := mustGrammarError(t, err)
	if gerr.Kind != tokexerr.KindExtraClosingBrackets {
		t.Errorf("got kind %v, want %v", gerr.Kind, tokexerr.KindExtraClosingBrackets)
	}
}

func TestParseExtraOpeningBrackets(t *testing.T) {
	_, err := parseSrc(t, `(a: 'x'`, true)
	if err == nil {
		t.Fatal("expected an error for an unclosed scoped element")
	}
	gerr := mustGrammarError(t, err)
	if gerr.Kind != tokexerr.KindExtraOpeningBrackets {
		t.Errorf("got kind %v, want %v", gerr.Kind, tokexerr.KindExtraOpeningBrackets)
	}
}

func TestParseMismatchedBrackets(t *testing.T) {
	_, err := parseSrc(t, `(a: 'x' }`, true)
	if err == nil {
		t.Fatal("expected an error for a mismatched closing bracket")
	}
	gerr := mustGrammarError(t, err)
	if gerr.Kind != tokexerr.KindMismatchedBrackets {
		t.Errorf("got kind %v, want %v", gerr.Kind, tokexerr.KindMismatchedBrackets)
	}
}

func TestParseNamedElementContents(t *testing.T) {
	_, err := parseSrc(t, `<a: 'x' 'y'>`, true)
	if err == nil {
		t.Fatal("expected an error for a named element with more than one singular child")
	}
	gerr := mustGrammarError(t, err)
	if gerr.Kind != tokexerr.KindNamedElementContents {
		t.Errorf("got kind %v, want %v", gerr.Kind, tokexerr.KindNamedElementContents)
	}
}

func mustGrammarError(t *testing.T, err error) *tokexerr.GrammarError {
	t.Helper()
	gerr, ok := err.(*tokexerr.GrammarError)
	if !ok {
		t.Fatalf("expected a *tokexerr.GrammarError, got %T (%v)", err, err)
	}
	return gerr
}
