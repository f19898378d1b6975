// Package tokexerr implements the error model in spec.md §4.5: a closed
// taxonomy of grammar-compile-time error kinds, each carrying the grammar
// source, a match span, and a snapshot of the element/sub-grammar stacks
// at the point of failure, plus a renderer that produces a caret-annotated
// snippet and a tree listing of those stacks. It generalises the
// teacher's error.SpecError{Cause, Row} from a bare row number to a byte
// span, because spec.md's rendering needs both line and column.
package tokexerr

import (
	"fmt"
	"strings"

	"github.com/nihei9/tokex/span"
)

// Kind is one member of spec.md §4.5's closed error taxonomy.
type Kind string

const (
	KindUnknownGrammarToken                Kind = "UnknownGrammarToken"
	KindInvalidGrammarTokenFlags           Kind = "InvalidGrammarTokenFlags"
	KindMutuallyExclusiveGrammarTokenFlags Kind = "MutuallyExclusiveGrammarTokenFlags"
	KindInvalidRegex                       Kind = "InvalidRegex"
	KindInvalidDelimiter                   Kind = "InvalidDelimiter"
	KindDuplicateDelimiter                 Kind = "DuplicateDelimiter"
	KindExtraClosingBrackets               Kind = "ExtraClosingBrackets"
	KindExtraOpeningBrackets               Kind = "ExtraOpeningBrackets"
	KindMismatchedBrackets                 Kind = "MismatchedBrackets"
	KindNamedElementContents               Kind = "NamedElementContents"
	KindSubGrammarsDisabled                Kind = "SubGrammarsDisabled"
	KindSubGrammarScope                    Kind = "SubGrammarScope"
	KindUndefinedSubGrammar                Kind = "UndefinedSubGrammar"
	KindMissingElementName                 Kind = "MissingElementName"
)

// Frame is a rendered snapshot of one entry of the element stack or the
// sub-grammar stack at the time an error was raised. Errors carry frames
// rather than live *element.Element pointers so this package never needs
// to import the element package (which itself raises tokexerr errors).
type Frame struct {
	// Label is a short description, e.g. "Grammar(root)" or
	// "ZeroOrMore(xs)".
	Label string
	// Depth is the frame's distance from the stack's root (0 = root).
	Depth int
}

// GrammarError is the single exported error type for every kind in the
// taxonomy above.
type GrammarError struct {
	Kind    Kind
	Message string

	Source string
	Span   span.Span

	ElementStack    []Frame
	SubGrammarStack []Frame

	cause error
}

// New builds a GrammarError. elementStack/subGrammarStack may be nil when
// unavailable (e.g. lex-time errors, which predate any stack).
func New(kind Kind, message, source string, sp span.Span, elementStack, subGrammarStack []Frame) *GrammarError {
	return &GrammarError{
		Kind:            kind,
		Message:         message,
		Source:          source,
		Span:            sp,
		ElementStack:    elementStack,
		SubGrammarStack: subGrammarStack,
	}
}

// Wrap is like New but records cause for Unwrap.
func Wrap(kind Kind, cause error, message, source string, sp span.Span, elementStack, subGrammarStack []Frame) *GrammarError {
	e := New(kind, message, source, sp, elementStack, subGrammarStack)
	e.cause = cause
	return e
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GrammarError) Unwrap() error {
	return e.cause
}

const contextChars = 50

// Format renders the three-part text spec.md §4.5 describes: a message
// line, a "Line L Column C" caret snippet, and an indented stack listing.
func (e *GrammarError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s\n", e.Kind, e.Message)

	if e.Source != "" {
		pos := span.Resolve(e.Source, e.Span.Start)
		line := span.Line(e.Source, e.Span.Start)

		clipStart := pos.Column - 1 - contextChars
		prefix := ""
		if clipStart < 0 {
			clipStart = 0
		} else {
			prefix = "..."
		}
		clipEnd := pos.Column - 1 + contextChars
		suffix := ""
		if clipEnd > len(line) {
			clipEnd = len(line)
		} else {
			suffix = "..."
		}

		snippet := prefix + line[clipStart:clipEnd] + suffix
		caretCol := (pos.Column - 1 - clipStart) + len(prefix)

		fmt.Fprintf(&b, "Line %d Column %d\n", pos.Line, pos.Column)
		fmt.Fprintf(&b, "%s\n", snippet)
		fmt.Fprintf(&b, "%s^\n", strings.Repeat(" ", caretCol))
	}

	if len(e.ElementStack) > 0 {
		b.WriteString("element stack:\n")
		writeStack(&b, e.ElementStack)
	}
	if len(e.SubGrammarStack) > 0 {
		b.WriteString("sub-grammar stack:\n")
		writeStack(&b, e.SubGrammarStack)
	}

	return b.String()
}

func writeStack(b *strings.Builder, frames []Frame) {
	for _, f := range frames {
		fmt.Fprintf(b, "%s%s\n", strings.Repeat("  ", f.Depth), f.Label)
	}
}
