package css

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// maxImportDepth bounds @import recursion so that mutually importing
// sources cannot loop forever.
const maxImportDepth = 8

// Parser parses CSS stylesheets into structured rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// parseRun carries the state of a single Parse call.
type parseRun struct {
	p           *Parser
	sheet       *Stylesheet
	opts        Options
	problems    []*ParseError
	importErr   error
	importDepth int
}

// walkCtx is the lexical context a node is parsed under: the resolution
// base for @import targets, the combined media condition, the conditional
// group chain, and the enclosing selector for CSS nesting.
type walkCtx struct {
	base       string
	mediaCond  string
	qualifiers []Qualifier
	parentSel  string
	parentID   int
}

func (c walkCtx) withQualifier(q Qualifier) walkCtx {
	quals := make([]Qualifier, 0, len(c.qualifiers)+1)
	if q.Kind == QualifierMedia {
		// nested media conditions collapse into one combined wrapper
		for _, old := range c.qualifiers {
			if old.Kind != QualifierMedia {
				quals = append(quals, old)
			}
		}
	} else {
		quals = append(quals, c.qualifiers...)
	}
	c.qualifiers = append(quals, q)
	return c
}

// Parse parses CSS text into a Stylesheet under the given options.
//
// In lenient mode (the default) recoverable problems are tolerated, kept in
// document order and exposed via Stylesheet.Problems. With RaiseErrors set,
// the first enabled problem in document order aborts the parse.
func (p *Parser) Parse(src string, opts Options) (*Stylesheet, error) {
	run := &parseRun{p: p, sheet: NewStylesheet(opts), opts: opts}
	p.log.Debug("parsing stylesheet", zap.Int("bytes", len(src)))

	nodes, unclosed := scanBlocks(src)
	nodes = run.captureCharset(nodes)

	ctx := walkCtx{base: opts.base(), parentID: -1}
	for _, n := range nodes {
		run.walk(n, ctx)
	}

	if !opts.FixBraces {
		for _, t := range unclosed {
			run.problem(ErrUnclosedBlock, t.line, t.col, "unclosed block")
		}
	}

	// problems are kept in encounter order, which is document order even
	// across spliced imports whose positions are relative to their own
	// source; a positional sort would interleave those incorrectly
	run.sheet.problems = run.problems
	run.sheet.importErr = run.importErr

	for _, pe := range run.problems {
		if opts.raises(pe.Kind) {
			return nil, pe
		}
	}
	if opts.AbsolutePaths && opts.Rewriter != nil {
		run.sheet.rewriteURIs(opts.base(), opts.Rewriter)
	}
	return run.sheet, nil
}

// ParseBytes is Parse for a byte slice source.
func (p *Parser) ParseBytes(data []byte, opts Options) (*Stylesheet, error) {
	return p.Parse(string(data), opts)
}

func (r *parseRun) problem(kind ErrorKind, line, col int, format string, args ...any) {
	pe := &ParseError{Kind: kind, Line: line, Column: col}
	if len(args) == 0 {
		pe.Message = format
	} else {
		pe.Message = fmt.Sprintf(format, args...)
	}
	r.problems = append(r.problems, pe)
}

// captureCharset records an @charset only when it is the very first
// construct of the root source, per the charset placement rule.
func (r *parseRun) captureCharset(nodes []*rawNode) []*rawNode {
	if r.importDepth > 0 || len(nodes) == 0 {
		return nodes
	}
	n := nodes[0]
	if !n.at || !n.statement || strings.ToLower(n.name) != "charset" {
		return nodes
	}
	toks := trimWS(n.prelude)
	if len(toks) == 1 && toks[0].tt == css.StringToken {
		r.sheet.Charset = unquoteString(toks[0].text)
	}
	return nodes[1:]
}

func unquoteString(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func (r *parseRun) walk(n *rawNode, ctx walkCtx) {
	if n.at {
		r.walkAtRule(n, ctx)
		return
	}
	r.walkStyleRule(n, ctx)
}

func (r *parseRun) walkStyleRule(n *rawNode, ctx walkCtx) {
	members := splitOnCommas(n.prelude)
	sels := make([]string, 0, len(members))
	for _, m := range members {
		sel := combineSelector(ctx.parentSel, trimWS(m))
		if kind, msg, ok := validateSelector(tokenize(sel)); !ok {
			// one invalid member rejects the whole selector list
			r.problem(kind, n.line, n.col, "%s", msg)
			return
		}
		sels = append(sels, sel)
	}

	decls := r.parseDecls(n.decls)
	for i, sel := range sels {
		ds := decls
		if i > 0 {
			// list members must not share declaration storage
			ds = append([]Declaration(nil), decls...)
		}
		id := len(r.sheet.Items)
		rule := &Rule{
			ID:           id,
			Selector:     sel,
			Declarations: ds,
			Specificity:  specificity(tokenize(sel)),
			ParentID:     ctx.parentID,
			MediaQueryID: r.mediaQueryID(ctx),
			Qualifiers:   append([]Qualifier(nil), ctx.qualifiers...),
		}
		r.sheet.Items = append(r.sheet.Items, Item{Rule: rule})

		childCtx := ctx
		childCtx.parentSel = sel
		childCtx.parentID = id
		for _, child := range n.children {
			r.walk(child, childCtx)
		}
	}
}

func (r *parseRun) mediaQueryID(ctx walkCtx) int {
	if ctx.mediaCond == "" {
		return -1
	}
	return r.sheet.ensureMediaQuery(ctx.mediaCond)
}

// combineSelector flattens a nested selector against its parent: "&" is
// substituted textually, a leading combinator keeps the combinator between
// the two, anything else becomes a descendant of the parent.
func combineSelector(parent string, member []token) string {
	if parent == "" {
		return rawText(member)
	}
	if hasAmp(member) {
		var b strings.Builder
		prevWS := false
		for _, t := range member {
			if t.isWS() {
				if !prevWS && b.Len() > 0 {
					b.WriteByte(' ')
				}
				prevWS = true
				continue
			}
			prevWS = false
			if t.tt == css.DelimToken && t.text == "&" {
				b.WriteString(parent)
			} else {
				b.WriteString(t.text)
			}
		}
		return strings.TrimRight(b.String(), " ")
	}
	if len(member) > 0 && isCombinator(member[0]) {
		return parent + " " + member[0].text + " " + rawText(trimWS(member[1:]))
	}
	return parent + " " + rawText(member)
}

func hasAmp(toks []token) bool {
	for _, t := range toks {
		if t.tt == css.DelimToken && t.text == "&" {
			return true
		}
	}
	return false
}

func (r *parseRun) parseDecls(segs []segment) []Declaration {
	decls, probs := parseSegments(segs)
	for _, pe := range probs {
		r.problems = append(r.problems, pe)
	}
	return decls
}

func (r *parseRun) walkAtRule(n *rawNode, ctx walkCtx) {
	name := strings.ToLower(n.name)
	switch {
	case n.statement:
		r.walkAtStatement(n, name, ctx)
	case name == "media":
		r.walkConditional(n, ctx, QualifierMedia)
	case name == "supports":
		r.walkConditional(n, ctx, QualifierSupports)
	case name == "container":
		r.walkConditional(n, ctx, QualifierContainer)
	case name == "scope":
		r.walkConditional(n, ctx, QualifierScope)
	case name == "layer":
		ctx = ctx.withQualifier(Qualifier{Kind: QualifierLayer, Condition: rawText(trimWS(n.prelude))})
		r.walkGroupBody(n, ctx)
	case strings.HasSuffix(name, "keyframes"):
		r.appendAtRule(n, AtKeyframes)
	case name == "font-face":
		r.appendAtRule(n, AtFontFace)
	case name == "page":
		r.appendAtRule(n, AtPage)
	case name == "property":
		r.appendAtRule(n, AtProperty)
	case name == "counter-style":
		r.appendAtRule(n, AtCounterStyle)
	default:
		if r.opts.captured(name) {
			r.appendAtRule(n, AtOther)
		}
	}
}

func (r *parseRun) walkAtStatement(n *rawNode, name string, ctx walkCtx) {
	switch name {
	case "import":
		r.walkImport(n, ctx)
	case "charset":
		// only valid as the first construct of the root source
	default:
		if !r.opts.captured(name) {
			return
		}
		header := "@" + n.name
		if prelude := rawText(trimWS(n.prelude)); prelude != "" {
			header += " " + prelude
		}
		r.sheet.Items = append(r.sheet.Items, Item{AtRule: &AtRule{
			ID:     len(r.sheet.Items),
			Header: header,
			Type:   AtOther,
		}})
	}
}

// walkConditional handles @media/@supports/@container/@scope: the group
// becomes a qualifier on every rule inside, and nested media conditions
// are combined textually.
func (r *parseRun) walkConditional(n *rawNode, ctx walkCtx, kind QualifierKind) {
	cond := conditionText(trimWS(n.prelude))
	if cond == "" && (kind == QualifierMedia || kind == QualifierSupports) {
		r.problem(ErrMalformedAtRule, n.line, n.col, "@%s without a condition", strings.ToLower(n.name))
		return
	}
	if kind == QualifierMedia && ctx.mediaCond != "" {
		cond = ctx.mediaCond + " and " + cond
	}
	ctx = ctx.withQualifier(Qualifier{Kind: kind, Condition: cond})
	if kind == QualifierMedia {
		ctx.mediaCond = cond
	}
	r.walkGroupBody(n, ctx)
}

// walkGroupBody parses the body of a conditional group. Bare declarations
// in a group nested inside a style rule apply to the enclosing selector.
func (r *parseRun) walkGroupBody(n *rawNode, ctx walkCtx) {
	if len(n.decls) > 0 && ctx.parentSel != "" {
		decls := r.parseDecls(n.decls)
		if len(decls) > 0 {
			r.sheet.Items = append(r.sheet.Items, Item{Rule: &Rule{
				ID:           len(r.sheet.Items),
				Selector:     ctx.parentSel,
				Declarations: decls,
				Specificity:  specificity(tokenize(ctx.parentSel)),
				ParentID:     ctx.parentID,
				MediaQueryID: r.mediaQueryID(ctx),
				Qualifiers:   append([]Qualifier(nil), ctx.qualifiers...),
			}})
		}
	}
	for _, child := range n.children {
		r.walk(child, ctx)
	}
}

// appendAtRule keeps a non-group at-rule as an opaque entity. Descriptor
// blocks stay attached to the entity rather than the media context, so a
// @font-face inside @media surfaces at the top level.
func (r *parseRun) appendAtRule(n *rawNode, typ AtRuleType) {
	header := "@" + n.name
	if prelude := rawText(trimWS(n.prelude)); prelude != "" {
		header += " " + prelude
	}
	at := &AtRule{
		ID:           len(r.sheet.Items),
		Header:       header,
		Type:         typ,
		Declarations: r.parseDecls(n.decls),
	}
	for _, child := range n.children {
		if child.at && !child.statement {
			prelude := "@" + child.name
			if p := rawText(trimWS(child.prelude)); p != "" {
				prelude += " " + p
			}
			at.Blocks = append(at.Blocks, AtRuleBlock{
				Prelude:      prelude,
				Declarations: r.parseDecls(child.decls),
			})
			continue
		}
		at.Blocks = append(at.Blocks, AtRuleBlock{
			Prelude:      rawText(trimWS(child.prelude)),
			Declarations: r.parseDecls(child.decls),
		})
	}
	r.sheet.Items = append(r.sheet.Items, Item{AtRule: at})
}

// walkImport resolves an @import statement and splices the imported rules
// in place, carrying the statement's media list as a media qualifier.
// With import handling disabled the statement is dropped. Imports that
// fail to resolve (or exceed the depth limit) are kept as opaque
// statements and reported through Stylesheet.ImportErrors.
func (r *parseRun) walkImport(n *rawNode, ctx walkCtx) {
	toks := trimWS(n.prelude)
	if len(toks) == 0 {
		r.problem(ErrMalformedAtRule, n.line, n.col, "@import without a target")
		return
	}

	var target string
	switch toks[0].tt {
	case css.StringToken:
		target = unquoteString(toks[0].text)
	case css.URLToken:
		target = unquoteString(stripURLWrapper(toks[0].text))
	default:
		r.problem(ErrMalformedAtRule, n.line, n.col, "@import target must be a string or url()")
		return
	}
	mediaToks := trimWS(toks[1:])

	if !r.opts.Import || r.opts.Resolver == nil {
		return
	}
	if r.importDepth >= maxImportDepth {
		r.p.log.Warn("import depth limit reached", zap.String("target", target))
		r.keepImportStatement(n)
		return
	}

	policy := r.opts.ImportPolicy
	if policy == nil {
		policy = &ImportPolicy{}
	}
	data, newBase, err := r.opts.Resolver.Resolve(ctx.base, target, policy)
	if err != nil {
		r.p.log.Warn("import failed", zap.String("target", target), zap.Error(err))
		r.importErr = multierr.Append(r.importErr, err)
		r.keepImportStatement(n)
		return
	}

	subCtx := ctx
	subCtx.base = newBase
	if len(mediaToks) > 0 {
		cond := conditionText(mediaToks)
		if subCtx.mediaCond != "" {
			cond = subCtx.mediaCond + " and " + cond
		}
		subCtx = subCtx.withQualifier(Qualifier{Kind: QualifierMedia, Condition: cond})
		subCtx.mediaCond = cond
	}

	r.importDepth++
	nodes, unclosed := scanBlocks(string(data))
	for _, sub := range nodes {
		r.walk(sub, subCtx)
	}
	if !r.opts.FixBraces {
		for _, t := range unclosed {
			r.problem(ErrUnclosedBlock, n.line, n.col, "unclosed block in imported source %q (line %d)", target, t.line)
		}
	}
	r.importDepth--
}

func (r *parseRun) keepImportStatement(n *rawNode) {
	r.sheet.Items = append(r.sheet.Items, Item{AtRule: &AtRule{
		ID:     len(r.sheet.Items),
		Header: "@import " + rawText(trimWS(n.prelude)),
		Type:   AtOther,
	}})
}

func stripURLWrapper(s string) string {
	if len(s) >= 5 && strings.EqualFold(s[:4], "url(") && s[len(s)-1] == ')' {
		return strings.TrimSpace(s[4 : len(s)-1])
	}
	return s
}
