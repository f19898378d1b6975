// Package element implements the grammar element factory and flag
// validator described in spec.md §3 and §4.2: it maps a lexed grammar
// token to an element kind, resolves the element's effective flag set
// against caller-supplied defaults, and compiles embedded regular
// expressions. Elements are modelled as a single tagged struct — a
// variant field plus kind-specific payload fields — rather than an open
// interface hierarchy, per spec.md §9's design note.
package element

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/nihei9/tokex/lex"
	"github.com/nihei9/tokex/span"
	"github.com/nihei9/tokex/tokexerr"
)

// Kind identifies which of the variants in spec.md §3's element table a
// given Element is.
type Kind int

const (
	KindAnyString Kind = iota
	KindNewline
	KindStringLiteral
	KindRegexString
	KindGrammar
	KindNamedElement
	KindZeroOrOne
	KindZeroOrMore
	KindOneOrMore
	KindOneOfSet
	KindIteratorDelimiter
	KindSubGrammarDefinition
	KindSubGrammarUsage
)

func (k Kind) String() string {
	switch k {
	case KindAnyString:
		return "AnyString"
	case KindNewline:
		return "Newline"
	case KindStringLiteral:
		return "StringLiteral"
	case KindRegexString:
		return "RegexString"
	case KindGrammar:
		return "Grammar"
	case KindNamedElement:
		return "NamedElement"
	case KindZeroOrOne:
		return "ZeroOrOne"
	case KindZeroOrMore:
		return "ZeroOrMore"
	case KindOneOrMore:
		return "OneOrMore"
	case KindOneOfSet:
		return "OneOfSet"
	case KindIteratorDelimiter:
		return "IteratorDelimiter"
	case KindSubGrammarDefinition:
		return "SubGrammarDefinition"
	case KindSubGrammarUsage:
		return "SubGrammarUsage"
	default:
		return "Unknown"
	}
}

// Flag is one of the flag characters in spec.md §6's flag table.
type Flag byte

const (
	FlagCaseSensitive   Flag = 's'
	FlagCaseInsensitive Flag = 'i'
	FlagQuotedOnly      Flag = 'q'
	FlagUnquotedOnly    Flag = 'u'
	FlagNegate          Flag = '!'
)

// FlagSet is a small, order-independent set of flags.
type FlagSet map[Flag]bool

// NewFlagSet builds a FlagSet from raw flag characters, e.g. those split
// off by the lexer.
func NewFlagSet(raw []byte) FlagSet {
	fs := FlagSet{}
	for _, b := range raw {
		fs[Flag(b)] = true
	}
	return fs
}

func (fs FlagSet) Has(f Flag) bool {
	return fs != nil && fs[f]
}

// exclusionGroups are spec.md §6's two mutually-exclusive flag groups.
var exclusionGroups = [][]Flag{
	{FlagCaseSensitive, FlagCaseInsensitive},
	{FlagQuotedOnly, FlagUnquotedOnly},
}

// validFlags enumerates, per kind, the flags spec.md §6's table allows.
func validFlags(k Kind) FlagSet {
	switch k {
	case KindAnyString:
		return FlagSet{FlagQuotedOnly: true, FlagUnquotedOnly: true}
	case KindStringLiteral, KindRegexString:
		return FlagSet{
			FlagCaseSensitive:   true,
			FlagCaseInsensitive: true,
			FlagQuotedOnly:      true,
			FlagUnquotedOnly:    true,
			FlagNegate:          true,
		}
	default:
		return FlagSet{}
	}
}

// Element is a node of the compiled grammar tree (spec.md §3).
type Element struct {
	Kind Kind
	Name string

	TokenText      string
	GrammarFlags   FlagSet
	EffectiveFlags FlagSet
	Span           span.Span

	// Literal holds the StringLiteral body (escapes already resolved).
	Literal string

	// RegexSource and Regex hold the RegexString body, compiled
	// case-insensitively exactly when the 'i' flag is effective.
	RegexSource string
	Regex       *regexp.Regexp

	// Children holds ordered sub-elements for every scoped kind except
	// the implicit single child of a NamedElement, which is also stored
	// here (always len 1) to keep a uniform traversal shape.
	Children []*Element

	// Delimiter holds the `sep { ... }` attached to a ZeroOrMore/OneOrMore,
	// per invariant 3/4: never a member of Children.
	Delimiter *Element
}

// Make builds a single element shell (no Children/Delimiter wiring — that
// is the grammar parser's job) from a lexed token, resolving its effective
// flags against the caller's defaults.
func Make(tok lex.Token, defaults FlagSet, source string) (*Element, error) {
	kind, name, err := kindAndName(tok)
	if err != nil {
		return nil, err
	}
	if name == "" && requiresName(tok.Kind) {
		return nil, tokexerr.New(tokexerr.KindMissingElementName,
			"element name is required here", source, tok.Span, nil, nil)
	}

	el := &Element{
		Kind:      kind,
		Name:      name,
		TokenText: tok.Text,
		Span:      tok.Span,
	}

	grammarFlags := NewFlagSet(tok.Flags)
	el.GrammarFlags = grammarFlags

	if err := checkExclusive(grammarFlags, tok.Span, source); err != nil {
		return nil, err
	}

	el.EffectiveFlags = resolveEffective(kind, grammarFlags, defaults)

	switch kind {
	case KindStringLiteral:
		el.Literal = tok.Body
	case KindRegexString:
		el.RegexSource = tok.Body
		pattern := tok.Body
		if el.EffectiveFlags.Has(FlagCaseInsensitive) {
			pattern = "(?i)" + pattern
		}
		// Anchored at position 0 (spec.md §4.4): the regex need only
		// match a prefix of the token, not the whole thing.
		re, err := regexp.Compile("^(?:" + pattern + ")")
		if err != nil {
			return nil, tokexerr.New(tokexerr.KindInvalidRegex,
				errors.Wrap(err, "invalid regex").Error(), source, tok.Span, nil, nil)
		}
		el.Regex = re
	}

	return el, nil
}

func kindAndName(tok lex.Token) (Kind, string, error) {
	switch tok.Kind {
	case lex.TokenAnyString:
		return KindAnyString, "", nil
	case lex.TokenNewline:
		return KindNewline, "", nil
	case lex.TokenSingleQuote, lex.TokenDoubleQuote:
		return KindStringLiteral, "", nil
	case lex.TokenRegex:
		return KindRegexString, "", nil
	case lex.TokenScopedOpen:
		switch tok.Sigil {
		case '*':
			return KindZeroOrMore, tok.Name, nil
		case '+':
			return KindOneOrMore, tok.Name, nil
		case '?':
			return KindZeroOrOne, tok.Name, nil
		default:
			return KindGrammar, tok.Name, nil
		}
	case lex.TokenZeroOrOneUnnamedOpen:
		return KindZeroOrOne, "", nil
	case lex.TokenNamedOpen:
		return KindNamedElement, tok.Name, nil
	case lex.TokenBraceOpen:
		return KindOneOfSet, "", nil
	case lex.TokenSepOpen:
		return KindIteratorDelimiter, "", nil
	case lex.TokenDefOpen:
		return KindSubGrammarDefinition, tok.Name, nil
	case lex.TokenUsage:
		return KindSubGrammarUsage, tok.Name, nil
	default:
		return 0, "", errors.Errorf("element: no element kind for lex token kind %v", tok.Kind)
	}
}

// requiresName reports whether spec.md §9's mandatory-name rule applies to
// a token kind: every scoped `(name:…)` open (regardless of repetition
// sigil) and every `<name:…>` named-element open require a non-empty name.
// The unnamed `?( )` open (a distinct token kind) and the root Grammar
// (built directly by the parser, never through Make) are exempt.
func requiresName(k lex.TokenKind) bool {
	switch k {
	case lex.TokenScopedOpen, lex.TokenNamedOpen:
		return true
	default:
		return false
	}
}

func checkExclusive(fs FlagSet, sp span.Span, source string) error {
	for _, group := range exclusionGroups {
		seen := 0
		for _, f := range group {
			if fs.Has(f) {
				seen++
			}
		}
		if seen > 1 {
			return tokexerr.New(tokexerr.KindMutuallyExclusiveGrammarTokenFlags,
				"flags "+flagGroupString(group)+" are mutually exclusive", source, sp, nil, nil)
		}
	}
	return nil
}

func flagGroupString(group []Flag) string {
	s := ""
	for i, f := range group {
		if i > 0 {
			s += ","
		}
		s += string(f)
	}
	return s
}

// resolveEffective unions grammarFlags with defaults filtered to this
// kind's valid set, discarding any default that would conflict with an
// explicit flag from the same exclusion group (spec.md §4.2).
func resolveEffective(k Kind, grammarFlags, defaults FlagSet) FlagSet {
	valid := validFlags(k)
	eff := FlagSet{}
	for f := range grammarFlags {
		if valid[f] {
			eff[f] = true
		}
	}
	for f := range defaults {
		if !valid[f] {
			continue
		}
		if conflicts(f, eff) {
			continue
		}
		eff[f] = true
	}
	return eff
}

func conflicts(f Flag, eff FlagSet) bool {
	for _, group := range exclusionGroups {
		inGroup := false
		for _, g := range group {
			if g == f {
				inGroup = true
			}
		}
		if !inGroup {
			continue
		}
		for _, g := range group {
			if g != f && eff[g] {
				return true
			}
		}
	}
	return false
}

// DefaultFlags returns spec.md §6's default flag set: 'i' unless the
// caller overrides it.
func DefaultFlags() FlagSet {
	return FlagSet{FlagCaseInsensitive: true}
}
