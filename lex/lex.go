// Package lex implements the grammar lexer from spec.md §4.1: a single
// combined, ordered, case-insensitive regular expression turns a grammar
// string into a flat sequence of grammar tokens. The token-kind/struct
// shape follows the teacher's spec/lexer.go; the single-regex-alternation
// technique itself is grounded on the retrieved alecthomas/chroma
// RegexLexer (one compiled pattern tried in rule order against the
// remaining input).
package lex

import (
	"regexp"
	"strings"

	"github.com/nihei9/tokex/span"
	"github.com/nihei9/tokex/tokexerr"
	"github.com/nihei9/tokex/tokexlog"
)

// TokenKind identifies the shape a grammar token matched.
type TokenKind int

const (
	TokenDefOpen TokenKind = iota
	TokenUsage
	TokenSepOpen
	TokenScopedOpen
	TokenZeroOrOneUnnamedOpen
	TokenNamedOpen
	TokenBraceOpen
	TokenAnyString
	TokenRegex
	TokenSingleQuote
	TokenDoubleQuote
	TokenNewline
	TokenNamedClose
	TokenParenClose
	TokenBraceClose
)

var tokenKindNames = map[TokenKind]string{
	TokenDefOpen:              "DefOpen",
	TokenUsage:                "Usage",
	TokenSepOpen:              "SepOpen",
	TokenScopedOpen:           "ScopedOpen",
	TokenZeroOrOneUnnamedOpen: "ZeroOrOneUnnamedOpen",
	TokenNamedOpen:            "NamedOpen",
	TokenBraceOpen:            "BraceOpen",
	TokenAnyString:            "AnyString",
	TokenRegex:                "Regex",
	TokenSingleQuote:          "SingleQuote",
	TokenDoubleQuote:          "DoubleQuote",
	TokenNewline:              "Newline",
	TokenNamedClose:           "NamedClose",
	TokenParenClose:           "ParenClose",
	TokenBraceClose:           "BraceClose",
}

func (k TokenKind) String() string {
	if s, ok := tokenKindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Token is the intermediate lex output of spec.md §3.
type Token struct {
	Kind TokenKind
	Text string
	Span span.Span

	// Name is populated for openers/usages that carry a name (def, usage,
	// scoped-open, named-open).
	Name string
	// Sigil is '*', '+', '?' or 0 for a plain "(name:" scoped-open.
	Sigil byte
	// Flags holds the raw flag characters split off a flag-bearing
	// singular token, in source order.
	Flags []byte
	// Body holds the escape-resolved body of a quoted/regex token.
	Body string
}

const namePattern = `[A-Za-z0-9_-]+`

// combined is spec.md §4.1's single combined pattern: every grammar-token
// shape as one alternative, tried left to right, case-insensitively. Each
// alternative gets its own named group(s) so Lex can identify which of
// them matched without re-parsing the matched text.
var combined = regexp.MustCompile(`(?i)` + strings.Join([]string{
	`\bdef\s+(?P<defName>` + namePattern + `)\s*\{`,
	`(?P<usageName>` + namePattern + `)\s*\(\s*\)`,
	`(?P<sepOpen>\bsep\s*\{)`,
	`(?P<sigil>[*+?])?\(\s*(?P<scopedName>` + namePattern + `)\s*:`,
	`(?P<zeroOrOneUnnamed>\?\()`,
	`<\s*(?P<namedName>` + namePattern + `)?\s*(?P<namedColon>:)`,
	`(?P<braceOpen>\{)`,
	`(?P<anyFlags>[!qusi]*)(?P<anyDot>\.)`,
	`(?P<regexFlags>[!qusi]*)~(?P<regexBody>(?:\\.|[^~\\])*)~`,
	`(?P<sqFlags>[!qusi]*)'(?P<sqBody>(?:\\.|[^'\\])*)'`,
	`(?P<dqFlags>[!qusi]*)"(?P<dqBody>(?:\\.|[^"\\])*)"`,
	`(?P<newline>\$)`,
	`(?P<namedClose>>)`,
	`(?P<parenClose>\))`,
	`(?P<braceClose>\})`,
	`(?P<comment>#[^\n]*)`,
	`(?P<fallback>\S+)`,
}, "|"))

var groupIndex = func() map[string]int {
	m := map[string]int{}
	for i, name := range combined.SubexpNames() {
		if name != "" {
			m[name] = i
		}
	}
	return m
}()

func matched(m []int, name string) bool {
	idx, ok := groupIndex[name]
	if !ok {
		return false
	}
	return m[2*idx] != -1
}

func submatch(src string, m []int, name string) string {
	idx, ok := groupIndex[name]
	if !ok {
		return ""
	}
	s, e := m[2*idx], m[2*idx+1]
	if s == -1 {
		return ""
	}
	return src[s:e]
}

// Lex turns a grammar string into a sequence of grammar tokens, per
// spec.md §4.1.
func Lex(src string) ([]Token, error) {
	matches := combined.FindAllStringSubmatchIndex(src, -1)

	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		start, end := m[0], m[1]
		text := src[start:end]
		sp := span.Span{Start: start, End: end}

		if matched(m, "comment") {
			continue
		}
		if matched(m, "fallback") {
			tokexlog.Debug("stage", "lex", "event", "unknown-token", "text", text)
			return nil, tokexerr.New(tokexerr.KindUnknownGrammarToken,
				"unknown grammar token "+quote(text), src, sp, nil, nil)
		}

		tok := Token{Text: text, Span: sp}

		switch {
		case matched(m, "defName"):
			tok.Kind = TokenDefOpen
			tok.Name = submatch(src, m, "defName")
		case matched(m, "usageName"):
			tok.Kind = TokenUsage
			tok.Name = submatch(src, m, "usageName")
		case matched(m, "sepOpen"):
			tok.Kind = TokenSepOpen
		case matched(m, "scopedName"):
			tok.Kind = TokenScopedOpen
			tok.Name = submatch(src, m, "scopedName")
			if s := submatch(src, m, "sigil"); s != "" {
				tok.Sigil = s[0]
			}
		case matched(m, "zeroOrOneUnnamed"):
			tok.Kind = TokenZeroOrOneUnnamedOpen
		case matched(m, "namedColon"):
			tok.Kind = TokenNamedOpen
			tok.Name = submatch(src, m, "namedName")
		case matched(m, "braceOpen"):
			tok.Kind = TokenBraceOpen
		case matched(m, "anyDot"):
			flags := []byte(submatch(src, m, "anyFlags"))
			if err := validateFlags(flags, flagsAnyString, src, sp); err != nil {
				return nil, err
			}
			tok.Kind = TokenAnyString
			tok.Flags = flags
		case matched(m, "regexBody"):
			flags := []byte(submatch(src, m, "regexFlags"))
			if err := validateFlags(flags, flagsLiteral, src, sp); err != nil {
				return nil, err
			}
			tok.Kind = TokenRegex
			tok.Flags = flags
			tok.Body = resolveEscape(submatch(src, m, "regexBody"), '~')
		case matched(m, "sqBody"):
			flags := []byte(submatch(src, m, "sqFlags"))
			if err := validateFlags(flags, flagsLiteral, src, sp); err != nil {
				return nil, err
			}
			tok.Kind = TokenSingleQuote
			tok.Flags = flags
			tok.Body = resolveEscape(submatch(src, m, "sqBody"), '\'')
		case matched(m, "dqBody"):
			flags := []byte(submatch(src, m, "dqFlags"))
			if err := validateFlags(flags, flagsLiteral, src, sp); err != nil {
				return nil, err
			}
			tok.Kind = TokenDoubleQuote
			tok.Flags = flags
			tok.Body = resolveEscape(submatch(src, m, "dqBody"), '"')
		case matched(m, "newline"):
			tok.Kind = TokenNewline
		case matched(m, "namedClose"):
			tok.Kind = TokenNamedClose
		case matched(m, "parenClose"):
			tok.Kind = TokenParenClose
		case matched(m, "braceClose"):
			tok.Kind = TokenBraceClose
		default:
			return nil, tokexerr.New(tokexerr.KindUnknownGrammarToken,
				"unknown grammar token "+quote(text), src, sp, nil, nil)
		}

		tokens = append(tokens, tok)
	}

	tokexlog.Debug("stage", "lex", "event", "complete", "tokens", len(tokens))
	return tokens, nil
}

// flagsAnyString/flagsLiteral are the flag characters the lexer accepts
// as legal *members* for a given token shape (spec.md §6). Mutual
// exclusivity among legal members is checked later, by the element
// factory (spec.md §4.2).
var (
	flagsAnyString = map[byte]bool{'q': true, 'u': true}
	flagsLiteral   = map[byte]bool{'s': true, 'i': true, 'q': true, 'u': true, '!': true}
)

func validateFlags(flags []byte, valid map[byte]bool, src string, sp span.Span) error {
	for _, f := range flags {
		if !valid[f] {
			return tokexerr.New(tokexerr.KindInvalidGrammarTokenFlags,
				"flag '"+string(f)+"' is not valid here", src, sp, nil, nil)
		}
	}
	return nil
}

// resolveEscape removes a single backslash immediately preceding delim
// inside body, leaving every other backslash untouched (spec.md §4.1
// step 4, testable property 7).
func resolveEscape(body string, delim byte) string {
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && body[i+1] == delim {
			b.WriteByte(delim)
			i++
			continue
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

func quote(s string) string {
	return "`" + s + "`"
}
