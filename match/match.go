// Package match implements the match engine from spec.md §4.4: a
// recursive tree-walk over the compiled element tree against a flat
// input token sequence, threading an explicit token index rather than a
// mutable cursor object — the same idiom as the teacher's
// driver/parser.go, which threads token-stream position explicitly
// through its own Parse calls instead of storing it on a shared struct.
package match

import (
	"strings"

	"github.com/nihei9/tokex/element"
	"github.com/nihei9/tokex/tokexlog"
)

// Apply matches el against tokens starting at idx and returns whether it
// matched, the index just past the consumed tokens, and its capture.
func Apply(el *element.Element, tokens []string, idx int) (bool, int, Value) {
	switch el.Kind {
	case element.KindAnyString:
		return applyAnyString(el, tokens, idx)
	case element.KindNewline:
		return applyNewline(tokens, idx)
	case element.KindStringLiteral:
		return applyStringLiteral(el, tokens, idx)
	case element.KindRegexString:
		return applyRegexString(el, tokens, idx)
	case element.KindGrammar:
		return applyGrammar(el, tokens, idx)
	case element.KindNamedElement:
		return applyNamedElement(el, tokens, idx)
	case element.KindZeroOrOne:
		return applyZeroOrOne(el, tokens, idx)
	case element.KindZeroOrMore:
		return applyRepeat(el, tokens, idx, false)
	case element.KindOneOrMore:
		return applyRepeat(el, tokens, idx, true)
	case element.KindOneOfSet:
		return applyOneOfSet(el, tokens, idx)
	case element.KindIteratorDelimiter:
		matched, next, local := applyChildren(el.Children, tokens, idx)
		if !matched {
			return false, idx, Null()
		}
		return true, next, Map(local)
	default:
		return false, idx, Null()
	}
}

// Run is the top-level driver: it applies root and, if matchEntirety is
// set, additionally requires the whole token stream to be consumed
// (spec.md §4.4's "top-level driver" paragraph).
func Run(root *element.Element, tokens []string, matchEntirety bool) (Value, bool) {
	matched, next, capture := Apply(root, tokens, 0)
	if !matched {
		tokexlog.Debug("stage", "match", "event", "no-match")
		return Null(), false
	}
	if matchEntirety && next != len(tokens) {
		tokexlog.Debug("stage", "match", "event", "trailing-tokens", "consumed", next, "total", len(tokens))
		return Null(), false
	}
	tokexlog.Debug("stage", "match", "event", "matched", "consumed", next)
	return capture, true
}

func stripQuotes(tok string) (stripped string, quoted bool) {
	if len(tok) >= 2 {
		if tok[0] == '\'' && tok[len(tok)-1] == '\'' {
			return tok[1 : len(tok)-1], true
		}
		if tok[0] == '"' && tok[len(tok)-1] == '"' {
			return tok[1 : len(tok)-1], true
		}
	}
	return tok, false
}

func applyAnyString(el *element.Element, tokens []string, idx int) (bool, int, Value) {
	if idx >= len(tokens) {
		return false, idx, Null()
	}
	_, quoted := stripQuotes(tokens[idx])
	if el.EffectiveFlags.Has(element.FlagQuotedOnly) && !quoted {
		return false, idx, Null()
	}
	if el.EffectiveFlags.Has(element.FlagUnquotedOnly) && quoted {
		return false, idx, Null()
	}
	return true, idx + 1, Null()
}

func applyNewline(tokens []string, idx int) (bool, int, Value) {
	if idx >= len(tokens) || tokens[idx] != "\n" {
		return false, idx, Null()
	}
	return true, idx + 1, Null()
}

func applyStringLiteral(el *element.Element, tokens []string, idx int) (bool, int, Value) {
	if idx >= len(tokens) {
		return false, idx, Null()
	}
	tok := tokens[idx]
	stripped, quoted := stripQuotes(tok)

	ok := quoteGate(el, quoted)
	compare := tok
	if el.EffectiveFlags.Has(element.FlagQuotedOnly) {
		compare = stripped
	}
	if ok {
		if el.EffectiveFlags.Has(element.FlagCaseSensitive) {
			ok = compare == el.Literal
		} else {
			ok = strings.EqualFold(compare, el.Literal)
		}
	}
	return finish(el, ok, idx)
}

func applyRegexString(el *element.Element, tokens []string, idx int) (bool, int, Value) {
	if idx >= len(tokens) {
		return false, idx, Null()
	}
	tok := tokens[idx]
	stripped, quoted := stripQuotes(tok)

	ok := quoteGate(el, quoted)
	compare := tok
	if el.EffectiveFlags.Has(element.FlagQuotedOnly) {
		compare = stripped
	}
	if ok {
		ok = el.Regex.MatchString(compare)
	}
	return finish(el, ok, idx)
}

func quoteGate(el *element.Element, quoted bool) bool {
	if el.EffectiveFlags.Has(element.FlagQuotedOnly) && !quoted {
		return false
	}
	if el.EffectiveFlags.Has(element.FlagUnquotedOnly) && quoted {
		return false
	}
	return true
}

func finish(el *element.Element, ok bool, idx int) (bool, int, Value) {
	if el.EffectiveFlags.Has(element.FlagNegate) {
		ok = !ok
	}
	if !ok {
		return false, idx, Null()
	}
	return true, idx + 1, Null()
}

// applyChildren threads idx across a sequence of children the way a
// Grammar's body does, without any name-wrapping of the result — shared
// by Grammar, ZeroOrOne, each body/delimiter iteration of
// ZeroOrMore/OneOrMore, and IteratorDelimiter.
func applyChildren(children []*element.Element, tokens []string, idx int) (bool, int, map[string]Value) {
	cur := idx
	local := map[string]Value{}
	for _, child := range children {
		matched, next, capture := Apply(child, tokens, cur)
		if !matched {
			return false, idx, nil
		}
		cur = next
		mergeInto(local, capture)
	}
	return true, cur, local
}

// mergeInto folds a child's capture into the parent's local mapping; only
// Map-kind captures contribute, later keys overwrite earlier ones
// (spec.md §9).
func mergeInto(local map[string]Value, capture Value) {
	if capture.Kind != ValueMap {
		return
	}
	for k, v := range capture.Map {
		local[k] = v
	}
}

// wrapNamed returns {name: Map(local)} when name is non-empty, or
// Map(local) itself when name is empty (the root Grammar), per
// spec.md §4.4.
func wrapNamed(name string, local map[string]Value) Value {
	if name == "" {
		return Map(local)
	}
	return Map(map[string]Value{name: Map(local)})
}

func applyGrammar(el *element.Element, tokens []string, idx int) (bool, int, Value) {
	matched, next, local := applyChildren(el.Children, tokens, idx)
	if !matched {
		return false, idx, Null()
	}
	return true, next, wrapNamed(el.Name, local)
}

func applyNamedElement(el *element.Element, tokens []string, idx int) (bool, int, Value) {
	if len(el.Children) != 1 {
		return false, idx, Null()
	}
	matched, next, _ := Apply(el.Children[0], tokens, idx)
	if !matched {
		return false, idx, Null()
	}
	return true, next, Map(map[string]Value{el.Name: Str(tokens[idx])})
}

func applyZeroOrOne(el *element.Element, tokens []string, idx int) (bool, int, Value) {
	if len(el.Children) == 0 {
		return true, idx, Null()
	}
	if idx >= len(tokens) {
		return true, idx, Null()
	}
	matched, next, local := applyChildren(el.Children, tokens, idx)
	if !matched {
		return true, idx, Null()
	}
	if el.Name != "" && len(local) > 0 {
		return true, next, Map(map[string]Value{el.Name: Map(local)})
	}
	return true, next, Map(local)
}

// applyRepeat implements both ZeroOrMore and OneOrMore (spec.md §4.4):
// body iterations alternate with an optional delimiter, a non-advancing
// body iteration is recorded once and then stops the loop (the fixpoint
// guard spec.md §5 relies on for termination), and a delimiter capture
// from iteration k folds into the list entry for iteration k-1.
func applyRepeat(el *element.Element, tokens []string, idx int, requireOne bool) (bool, int, Value) {
	cur := idx
	var list []map[string]Value

	for {
		if len(list) > 0 && el.Delimiter != nil {
			dmatched, dnext, dlocal := applyChildren(el.Delimiter.Children, tokens, cur)
			if !dmatched {
				break
			}
			if len(dlocal) > 0 {
				for k, v := range dlocal {
					list[len(list)-1][k] = v
				}
			}
			cur = dnext
		}

		bmatched, bnext, blocal := applyChildren(el.Children, tokens, cur)
		if !bmatched {
			break
		}
		list = append(list, blocal)
		if bnext == cur {
			break
		}
		cur = bnext
	}

	if requireOne && len(list) == 0 {
		return false, idx, Null()
	}

	values := make([]Value, len(list))
	for i, m := range list {
		values[i] = Map(m)
	}
	return true, cur, listResult(el.Name, values)
}

func listResult(name string, values []Value) Value {
	if name == "" {
		return List(values)
	}
	return Map(map[string]Value{name: List(values)})
}

func applyOneOfSet(el *element.Element, tokens []string, idx int) (bool, int, Value) {
	for _, alt := range el.Children {
		if matched, next, capture := Apply(alt, tokens, idx); matched {
			return true, next, capture
		}
	}
	return false, idx, Null()
}
