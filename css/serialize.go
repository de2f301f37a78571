package css

import (
	"fmt"
	"io"
	"strings"
)

// groupNode arranges qualified entities for output: one node per
// conditional wrapper, with items and subgroups interleaved in first
// occurrence order so render(parse(render(x))) == render(x).
type groupNode struct {
	header  string
	entries []groupEntry
	byChild map[string]*groupNode
}

type groupEntry struct {
	item  *Item
	child *groupNode
}

func newGroupNode(header string) *groupNode {
	return &groupNode{header: header, byChild: make(map[string]*groupNode)}
}

func (g *groupNode) insert(chain []Qualifier, it *Item) {
	if len(chain) == 0 {
		g.entries = append(g.entries, groupEntry{item: it})
		return
	}
	h := chain[0].header()
	child := g.byChild[h]
	if child == nil {
		child = newGroupNode(h)
		g.byChild[h] = child
		g.entries = append(g.entries, groupEntry{child: child})
	}
	child.insert(chain[1:], it)
}

// WriteTo writes the stylesheet to w, implementing io.WriterTo. Entities
// keep their ID order; conditional groups are written as wrapper blocks at
// their first occurrence.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	sw := &sheetWriter{w: w}
	if s.Charset != "" {
		sw.printf("@charset \"%s\";\n", cssEscapeDoubleQuoted(s.Charset))
	}
	root := newGroupNode("")
	for i := range s.Items {
		it := &s.Items[i]
		if it.Rule != nil {
			root.insert(it.Rule.Qualifiers, it)
		} else {
			// descriptor at-rules always surface at the top level
			root.insert(nil, it)
		}
	}
	for _, e := range root.entries {
		writeEntry(sw, e, 0)
	}
	return sw.n, sw.err
}

// Render returns the CSS text of the stylesheet.
func (s *Stylesheet) Render() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	return s.Render()
}

// sheetWriter accumulates byte counts and keeps the first write error.
type sheetWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (sw *sheetWriter) printf(format string, args ...any) {
	if sw.err != nil {
		return
	}
	n, err := fmt.Fprintf(sw.w, format, args...)
	sw.n += int64(n)
	sw.err = err
}

func writeEntry(sw *sheetWriter, e groupEntry, depth int) {
	indent := strings.Repeat("  ", depth)
	switch {
	case e.child != nil:
		sw.printf("%s%s {\n", indent, e.child.header)
		for _, sub := range e.child.entries {
			writeEntry(sw, sub, depth+1)
		}
		sw.printf("%s}\n", indent)
	case e.item.Rule != nil:
		writeRule(sw, indent, e.item.Rule)
	case e.item.AtRule != nil:
		writeAtRule(sw, indent, e.item.AtRule)
	}
}

func writeRule(sw *sheetWriter, indent string, r *Rule) {
	sw.printf("%s%s { %s}\n", indent, r.Selector, declBody(r.Declarations))
}

// declBody renders declarations as "p: v; p2: v2; ", empty for none.
func declBody(decls []Declaration) string {
	var sb strings.Builder
	for _, d := range decls {
		sb.WriteString(d.Text())
		sb.WriteString("; ")
	}
	return sb.String()
}

func writeAtRule(sw *sheetWriter, indent string, at *AtRule) {
	if at.Type == AtOther && len(at.Declarations) == 0 && len(at.Blocks) == 0 {
		sw.printf("%s%s;\n", indent, at.Header)
		return
	}
	sw.printf("%s%s { ", indent, at.Header)
	sw.printf("%s", declBody(at.Declarations))
	for _, b := range at.Blocks {
		sw.printf("%s { %s} ", b.Prelude, declBody(b.Declarations))
	}
	sw.printf("}\n")
}
