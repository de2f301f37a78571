package css

import (
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// legacyPseudoElements are the single-colon spellings that still denote
// pseudo-elements and therefore count like elements for specificity.
var legacyPseudoElements = map[string]bool{
	"before": true, "after": true, "first-line": true, "first-letter": true,
}

// skipGroup returns the index of the token closing the group opened at i
// (a function, paren or bracket), or -1 when the group never closes.
func skipGroup(toks []token, i int) int {
	depth := 0
	for j := i; j < len(toks); j++ {
		switch {
		case opensGroup(toks[j].tt):
			depth++
		case closesGroup(toks[j].tt):
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

func isCombinator(t token) bool {
	return t.tt == css.DelimToken && (t.text == ">" || t.text == "+" || t.text == "~")
}

// validateSelector checks one selector (a single member of a comma list)
// against the permitted token shapes. It reports the error kind and a
// message naming the problem; ok is true for a valid selector.
func validateSelector(toks []token) (ErrorKind, string, bool) {
	toks = trimWS(toks)
	if len(toks) == 0 {
		return ErrInvalidSelector, "empty selector", false
	}
	if isCombinator(toks[0]) {
		return ErrInvalidSelector, "selector starts with combinator " + strings.TrimSpace(toks[0].text), false
	}
	if isCombinator(toks[len(toks)-1]) {
		return ErrInvalidSelector, "selector ends with combinator " + strings.TrimSpace(toks[len(toks)-1].text), false
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.tt {
		case css.WhitespaceToken, css.IdentToken, css.HashToken:
			// descendant space, type selector, #id

		case css.DelimToken:
			switch t.text {
			case ".":
				if i+1 >= len(toks) || toks[i+1].tt != css.IdentToken {
					return ErrInvalidSelectorSyntax, "stray '.' in selector", false
				}
				i++
			case "*", "&", "|":
				// universal, nesting reference, namespace separator
			case ">", "+", "~":
				j := i + 1
				for j < len(toks) && toks[j].isWS() {
					j++
				}
				if j < len(toks) && isCombinator(toks[j]) {
					return ErrInvalidSelectorSyntax, "repeated combinator in selector", false
				}
			default:
				return ErrInvalidSelectorSyntax, "disallowed character '" + t.text + "' in selector", false
			}

		case css.ColonToken:
			// single or double colon pseudo, optionally functional
			j := i + 1
			if j < len(toks) && toks[j].tt == css.ColonToken {
				j++
			}
			if j >= len(toks) {
				return ErrInvalidSelectorSyntax, "dangling ':' in selector", false
			}
			switch toks[j].tt {
			case css.IdentToken:
				i = j
			case css.FunctionToken:
				end := skipGroup(toks, j)
				if end < 0 {
					return ErrInvalidSelectorSyntax, "unbalanced '(' in selector", false
				}
				i = end
			default:
				return ErrInvalidSelectorSyntax, "dangling ':' in selector", false
			}

		case css.LeftBracketToken:
			// attribute selector: contents are free-form (including
			// custom-property-like "--x" tokens) up to the matching bracket
			end := skipGroup(toks, i)
			if end < 0 {
				return ErrInvalidSelectorSyntax, "unbalanced '[' in selector", false
			}
			i = end

		default:
			return ErrInvalidSelectorSyntax, "disallowed token '" + strings.TrimSpace(t.text) + "' in selector", false
		}
	}
	return 0, "", true
}

// specificity computes the integer specificity of a selector token run:
// ID=100, class/attribute/pseudo-class=10, element/pseudo-element=1,
// universal=0, summed across the selector. :not/:is/:has contribute the
// specificity of their arguments, :where contributes nothing.
func specificity(toks []token) int {
	spec := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.tt {
		case css.HashToken:
			spec += 100
		case css.IdentToken:
			spec++
		case css.DelimToken:
			if t.text == "." && i+1 < len(toks) && toks[i+1].tt == css.IdentToken {
				spec += 10
				i++
			}
		case css.LeftBracketToken:
			spec += 10
			if j := skipGroup(toks, i); j >= 0 {
				i = j
			}
		case css.ColonToken:
			j := i + 1
			elem := false
			if j < len(toks) && toks[j].tt == css.ColonToken {
				elem = true
				j++
			}
			if j >= len(toks) {
				return spec
			}
			switch toks[j].tt {
			case css.IdentToken:
				if elem || legacyPseudoElements[strings.ToLower(toks[j].text)] {
					spec++
				} else {
					spec += 10
				}
				i = j
			case css.FunctionToken:
				end := skipGroup(toks, j)
				if end < 0 {
					end = len(toks)
				}
				switch strings.ToLower(strings.TrimSuffix(toks[j].text, "(")) {
				case "not", "is", "has":
					spec += specificity(toks[j+1 : min(end, len(toks))])
				case "where":
					// zero by definition
				default:
					spec += 10
				}
				i = end
			default:
				i = j - 1
			}
		}
	}
	return spec
}

// SelectorSpecificity scores a selector string: ID=100,
// class/attribute/pseudo-class=10, element/pseudo-element=1.
func SelectorSpecificity(selector string) int {
	return specificity(trimWS(tokenize(selector)))
}
