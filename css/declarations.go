package css

import (
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// truncateText shortens long snippets used in error messages.
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// stripImportant detects a trailing "!important" (case-insensitive, optional
// whitespace) and removes it. A "!important" inside a string or function is
// part of a single token run and never matches the trailing pattern.
func stripImportant(toks []token) ([]token, bool) {
	end := len(toks)
	for end > 0 && toks[end-1].isWS() {
		end--
	}
	if end < 2 {
		return toks, false
	}
	last := toks[end-1]
	if last.tt != css.IdentToken || !strings.EqualFold(last.text, "important") {
		return toks, false
	}
	j := end - 2
	for j >= 0 && toks[j].isWS() {
		j--
	}
	if j < 0 || toks[j].tt != css.DelimToken || toks[j].text != "!" {
		return toks, false
	}
	return toks[:j], true
}

// parseDeclaration parses one declaration segment into a property/value/
// important triple. Property names are lowercased; the value text is kept
// verbatim with whitespace runs collapsed.
func parseDeclaration(seg segment) (Declaration, *ParseError) {
	colon := -1
	depth := 0
	for i, t := range seg.toks {
		switch {
		case opensGroup(t.tt):
			depth++
		case closesGroup(t.tt):
			if depth > 0 {
				depth--
			}
		case t.tt == css.ColonToken && depth == 0:
			colon = i
		}
		if colon >= 0 {
			break
		}
	}
	if colon < 0 {
		return Declaration{}, &ParseError{
			Kind:    ErrMalformedDeclaration,
			Line:    seg.line,
			Column:  seg.col,
			Message: "declaration '" + truncateText(rawText(seg.toks), 40) + "' is missing a colon",
		}
	}

	propToks := trimWS(seg.toks[:colon])
	property := rawText(propToks)
	if property == "" || len(propToks) != 1 || strings.ContainsAny(property[:1], ">+~,;") {
		return Declaration{}, &ParseError{
			Kind:    ErrMalformedDeclaration,
			Line:    seg.line,
			Column:  seg.col,
			Message: "invalid property name '" + truncateText(property, 40) + "'",
		}
	}
	switch propToks[0].tt {
	case css.IdentToken, css.CustomPropertyNameToken:
	default:
		return Declaration{}, &ParseError{
			Kind:    ErrMalformedDeclaration,
			Line:    seg.line,
			Column:  seg.col,
			Message: "invalid property name '" + truncateText(property, 40) + "'",
		}
	}
	property = strings.ToLower(property)

	valueToks, important := stripImportant(trimWS(seg.toks[colon+1:]))
	value := rawText(valueToks)
	if value == "" {
		return Declaration{}, &ParseError{
			Kind:    ErrEmptyValue,
			Line:    seg.line,
			Column:  seg.col,
			Message: "property '" + property + "' has an empty value",
		}
	}

	return Declaration{Property: property, Value: value, Important: important}, nil
}

// parseSegments parses declaration segments in order, dropping offenders and
// collecting their problems.
func parseSegments(segs []segment) ([]Declaration, []*ParseError) {
	var decls []Declaration
	var problems []*ParseError
	for _, seg := range segs {
		d, perr := parseDeclaration(seg)
		if perr != nil {
			problems = append(problems, perr)
			continue
		}
		decls = append(decls, d)
	}
	return decls, problems
}

// splitDeclarations splits free-form declaration text on top-level
// semicolons into segments. Semicolons inside strings, url() or any parens
// never split.
func splitDeclarations(text string) []segment {
	toks := tokenize(text)
	var segs []segment
	var cur []token
	depth := 0
	flush := func() {
		if seg, ok := makeSegment(cur); ok {
			segs = append(segs, seg)
		}
		cur = nil
	}
	for _, t := range toks {
		switch {
		case opensGroup(t.tt):
			depth++
		case closesGroup(t.tt):
			if depth > 0 {
				depth--
			}
		case t.tt == css.SemicolonToken && depth == 0:
			flush()
			continue
		}
		cur = append(cur, t)
	}
	flush()
	return segs
}

// ParseDeclarations parses "prop: value; prop2: value2" text into an ordered
// declaration list. The first malformed declaration or empty value is
// returned as a *ParseError.
func ParseDeclarations(text string) ([]Declaration, error) {
	decls, problems := parseSegments(splitDeclarations(text))
	if len(problems) > 0 {
		return decls, problems[0]
	}
	return decls, nil
}
