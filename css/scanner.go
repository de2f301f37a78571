package css

import (
	"strings"
	"unicode/utf8"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// token is one lexed CSS token with its 1-based source position.
type token struct {
	tt   css.TokenType
	text string
	line int
	col  int
}

func (t token) isWS() bool { return t.tt == css.WhitespaceToken }

// tokenize runs the tdewolff CSS lexer over src, tracking line/column per
// token. Comments are replaced by a single space: CSS treats them as
// whitespace, and keeping a whitespace token preserves value boundaries like
// "10px/*c*/20px".
func tokenize(src string) []token {
	lex := css.NewLexer(parse.NewInputString(src))
	var toks []token
	line, col := 1, 1
	for {
		tt, data := lex.Next()
		if tt == css.ErrorToken {
			return toks
		}
		text := string(data)
		t := token{tt: tt, text: text, line: line, col: col}
		if nl := strings.LastIndexByte(text, '\n'); nl >= 0 {
			line += strings.Count(text, "\n")
			col = utf8.RuneCountInString(text[nl+1:]) + 1
		} else {
			col += utf8.RuneCountInString(text)
		}
		if tt == css.CommentToken {
			t.tt = css.WhitespaceToken
			t.text = " "
		}
		toks = append(toks, t)
	}
}

// trimWS drops leading and trailing whitespace tokens.
func trimWS(toks []token) []token {
	start, end := 0, len(toks)
	for start < end && toks[start].isWS() {
		start++
	}
	for end > start && toks[end-1].isWS() {
		end--
	}
	return toks[start:end]
}

// opensGroup reports whether the token increases paren/bracket depth.
// URLToken is already balanced and FunctionToken carries its own "(".
func opensGroup(tt css.TokenType) bool {
	return tt == css.LeftParenthesisToken || tt == css.FunctionToken || tt == css.LeftBracketToken
}

func closesGroup(tt css.TokenType) bool {
	return tt == css.RightParenthesisToken || tt == css.RightBracketToken
}

// segment is one declaration-shaped run of tokens inside a block.
type segment struct {
	toks []token
	line int
	col  int
}

// rawNode is one logical construct found by the block scanner: a qualified
// rule, an at-rule with a block, or an at-rule statement. The parser walks
// this tree to build the rule model.
type rawNode struct {
	at        bool
	statement bool
	name      string // lowercased at-keyword without the "@", empty for qualified rules
	prelude   []token
	decls     []segment
	children  []*rawNode
	line      int
	col       int
}

// blockScanner turns the token stream into a tree of rawNodes, tracking
// brace nesting to find block boundaries. Unbalanced input is recovered by
// closing blocks at EOF; the positions of the offending open braces are
// reported so the parser can surface unclosed_block.
type blockScanner struct {
	toks     []token
	i        int
	unclosed []token
}

// scanBlocks parses src into top-level constructs plus the open-brace tokens
// left unclosed at EOF.
func scanBlocks(src string) ([]*rawNode, []token) {
	s := &blockScanner{toks: tokenize(src)}
	nodes := s.constructs()
	return nodes, s.unclosed
}

func (s *blockScanner) eof() bool   { return s.i >= len(s.toks) }
func (s *blockScanner) peek() token { return s.toks[s.i] }

func (s *blockScanner) skipWS() {
	for !s.eof() && s.toks[s.i].isWS() {
		s.i++
	}
}

// constructs parses a run of constructs until EOF or an unconsumed "}".
func (s *blockScanner) constructs() []*rawNode {
	var nodes []*rawNode
	for {
		s.skipWS()
		if s.eof() {
			return nodes
		}
		switch t := s.peek(); t.tt {
		case css.RightBraceToken:
			return nodes
		case css.SemicolonToken, css.CDOToken, css.CDCToken:
			s.i++
		default:
			if node := s.construct(); node != nil {
				nodes = append(nodes, node)
			}
		}
	}
}

// construct parses one qualified rule or at-rule starting at the current
// token. Stray token runs that form neither (a selector with no block, loose
// tokens ending in ";") yield nil and are skipped.
func (s *blockScanner) construct() *rawNode {
	start := s.peek()
	n := &rawNode{line: start.line, col: start.col}
	if start.tt == css.AtKeywordToken {
		n.at = true
		n.name = strings.ToLower(strings.TrimPrefix(start.text, "@"))
		s.i++
	}

	var prelude []token
	depth := 0
	for !s.eof() {
		t := s.peek()
		switch {
		case opensGroup(t.tt):
			depth++
		case closesGroup(t.tt):
			if depth > 0 {
				depth--
			}
		case t.tt == css.LeftBraceToken && depth == 0:
			s.i++
			n.prelude = trimWS(prelude)
			s.block(n, t)
			return n
		case t.tt == css.SemicolonToken && depth == 0:
			s.i++
			n.prelude = trimWS(prelude)
			n.statement = true
			if !n.at {
				return nil
			}
			return n
		}
		prelude = append(prelude, t)
		s.i++
	}

	// EOF inside a prelude: an at-statement without its ";" is still usable,
	// a dangling selector is not.
	n.prelude = trimWS(prelude)
	if n.at {
		n.statement = true
		return n
	}
	return nil
}

// block parses a brace-delimited body that may mix declarations and nested
// blocks (CSS nesting, @media bodies, keyframe frames).
func (s *blockScanner) block(n *rawNode, open token) {
	for {
		s.skipWS()
		if s.eof() {
			s.unclosed = append(s.unclosed, open)
			return
		}
		switch t := s.peek(); t.tt {
		case css.RightBraceToken:
			s.i++
			return
		case css.SemicolonToken:
			s.i++
		default:
			if s.nextIsBlock() {
				if child := s.construct(); child != nil {
					n.children = append(n.children, child)
				}
			} else if seg, ok := s.declSegment(); ok {
				n.decls = append(n.decls, seg)
			}
		}
	}
}

// nextIsBlock looks ahead from the current position and reports whether a
// "{" occurs at group depth 0 before any ";", "}" or EOF, meaning the
// upcoming construct is a nested block rather than a declaration.
func (s *blockScanner) nextIsBlock() bool {
	depth := 0
	for j := s.i; j < len(s.toks); j++ {
		t := s.toks[j]
		switch {
		case opensGroup(t.tt):
			depth++
		case closesGroup(t.tt):
			if depth > 0 {
				depth--
			}
		case depth == 0:
			switch t.tt {
			case css.LeftBraceToken:
				return true
			case css.SemicolonToken, css.RightBraceToken:
				return false
			}
		}
	}
	return false
}

// declSegment collects one declaration's tokens up to the next top-level
// ";" (consumed) or "}" (left for the caller).
func (s *blockScanner) declSegment() (segment, bool) {
	var toks []token
	depth := 0
	for !s.eof() {
		t := s.peek()
		switch {
		case opensGroup(t.tt):
			depth++
		case closesGroup(t.tt):
			if depth > 0 {
				depth--
			}
		case t.tt == css.SemicolonToken && depth == 0:
			s.i++
			return makeSegment(toks)
		case t.tt == css.RightBraceToken && depth == 0:
			return makeSegment(toks)
		}
		toks = append(toks, t)
		s.i++
	}
	return makeSegment(toks)
}

func makeSegment(toks []token) (segment, bool) {
	toks = trimWS(toks)
	if len(toks) == 0 {
		return segment{}, false
	}
	return segment{toks: toks, line: toks[0].line, col: toks[0].col}, true
}

// rawText joins tokens verbatim, collapsing whitespace runs to one space.
// Used for selector and generic prelude text.
func rawText(toks []token) string {
	var b strings.Builder
	ws := false
	for _, t := range trimWS(toks) {
		if t.isWS() {
			ws = true
			continue
		}
		if ws {
			b.WriteByte(' ')
			ws = false
		}
		b.WriteString(t.text)
	}
	return b.String()
}

// conditionText canonicalizes a media/supports/container condition: single
// spaces between tokens, none after "(", none before ")", ":" or ",", and a
// space after ":". "(min-width:500px)" becomes "(min-width: 500px)".
func conditionText(toks []token) string {
	var b strings.Builder
	prevGlue := true // suppress separator before the first token
	for _, t := range trimWS(toks) {
		if t.isWS() {
			continue
		}
		switch t.tt {
		case css.RightParenthesisToken, css.ColonToken, css.CommaToken:
			// no separator before closing/punctuation tokens
		default:
			if !prevGlue {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.text)
		prevGlue = opensGroup(t.tt)
	}
	return b.String()
}

// splitOnCommas splits a token run on top-level commas. Commas inside
// parens, brackets or functions do not split.
func splitOnCommas(toks []token) [][]token {
	var out [][]token
	var cur []token
	depth := 0
	for _, t := range toks {
		switch {
		case opensGroup(t.tt):
			depth++
		case closesGroup(t.tt):
			if depth > 0 {
				depth--
			}
		case t.tt == css.CommaToken && depth == 0:
			out = append(out, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	return append(out, cur)
}
