// Package tokenizer implements the external collaborator from
// spec.md §6: something that turns an input string into a flat sequence
// of string tokens for the match engine to walk. Tokex ships a default
// tokenizer plus two specialised variants (SQL, numeric) that, per
// spec.md §1, "differ only in their regex set" from the default.
package tokenizer

import "regexp"

// Tokenizer is spec.md §6's external collaborator interface.
type Tokenizer interface {
	Tokenize(input string) ([]string, error)
}

// Option configures a regex-based Tokenizer built by New.
type Option func(*config)

type config struct {
	extra           []string
	fallback        []string
	newline         bool
	suppressEmptyNL bool
}

// WithNewlineTokens requests that `\n` be appended to the alternation as
// its own token kind (spec.md §6 step 1's "optionally append").
func WithNewlineTokens(suppressEmpty bool) Option {
	return func(c *config) {
		c.newline = true
		c.suppressEmptyNL = suppressEmpty
	}
}

// withExtraPatterns inserts additional alternatives ahead of the generic
// word pattern, used by the SQL variant below.
func withExtraPatterns(patterns ...string) Option {
	return func(c *config) {
		c.extra = append(c.extra, patterns...)
	}
}

// withFallback replaces the default word/punctuation-run pair
// (`\w+`, `[^A-Za-z0-9_\s]+`) with the given alternatives, used by the
// numeric variant below to keep every non-whitespace run as one token.
func withFallback(patterns ...string) Option {
	return func(c *config) {
		c.fallback = patterns
	}
}

// regexTokenizer implements Tokenizer with a single combined alternation,
// the same "one combined regex, applied once" shape spec.md §4.1 uses for
// the grammar lexer itself.
type regexTokenizer struct {
	re              *regexp.Regexp
	suppressEmptyNL bool
	newline         bool
}

// New builds the default tokenizer described in spec.md §6: an ordered
// alternation of double-quoted string, single-quoted string, word, and
// punctuation-run patterns, with any extra patterns (SQL variant)
// spliced in ahead of the generic word pattern so they win
// leftmost-first against it, and the word/punctuation pair replaced by
// a fallback set when one is given (SQL and numeric variants).
func New(opts ...Option) Tokenizer {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}

	alts := []string{`"[^"]*"`, `'[^']*'`}
	alts = append(alts, c.extra...)
	if c.fallback != nil {
		alts = append(alts, c.fallback...)
	} else {
		alts = append(alts, `\w+`, `[^A-Za-z0-9_\s]+`)
	}
	if c.newline {
		alts = append(alts, `\n`)
	}

	pattern := "(?:" + join(alts, "|") + ")"
	return &regexTokenizer{
		re:              regexp.MustCompile(pattern),
		suppressEmptyNL: c.suppressEmptyNL,
		newline:         c.newline,
	}
}

func join(ss []string, sep string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}

// Tokenize implements Tokenizer (spec.md §6 steps 1-2).
func (t *regexTokenizer) Tokenize(input string) ([]string, error) {
	matches := t.re.FindAllString(input, -1)
	if !t.newline || !t.suppressEmptyNL {
		return matches, nil
	}

	out := make([]string, 0, len(matches))
	prevNewline := true // the first token is treated as "preceded by a newline"
	for _, m := range matches {
		if m == "\n" {
			if prevNewline {
				continue
			}
			prevNewline = true
			out = append(out, m)
			continue
		}
		prevNewline = false
		out = append(out, m)
	}
	return out, nil
}

// Default is the zero-configuration tokenizer used by Compile when no
// WithTokenizer option is supplied (spec.md §6's "tokenizer=default").
func Default() Tokenizer {
	return New()
}
