package css

import (
	"fmt"
	"regexp"
	"strings"
)

// urlRewritePattern matches url() references in CSS values for RewriteURLs.
// Handles: url("path"), url('path'), url(path)
var urlRewritePattern = regexp.MustCompile(`url\s*\(\s*(?:["']([^"']*)["']|([^)"]*))\s*\)`)

// RewriteURLs walks all url() references in the stylesheet and applies fn
// to each. This covers rule declarations and at-rule descriptor values
// (@font-face src and the like). References unchanged by fn keep their
// original quoting; rewritten ones are emitted double-quoted.
func (s *Stylesheet) RewriteURLs(fn func(originalURL string) string) {
	for _, it := range s.Items {
		if it.Rule != nil {
			rewriteDecls(it.Rule.Declarations, fn)
		}
		if it.AtRule != nil {
			rewriteDecls(it.AtRule.Declarations, fn)
			for i := range it.AtRule.Blocks {
				rewriteDecls(it.AtRule.Blocks[i].Declarations, fn)
			}
		}
	}
	s.invalidate()
}

// rewriteURIs applies a URIRewriter against a base, used by the
// absolute-paths option at parse time.
func (s *Stylesheet) rewriteURIs(base string, rw URIRewriter) {
	s.RewriteURLs(func(ref string) string {
		if out, ok := rw.Rewrite(base, ref); ok {
			return out
		}
		return ref
	})
}

func rewriteDecls(decls []Declaration, fn func(string) string) {
	for i := range decls {
		if strings.Contains(decls[i].Value, "url(") {
			decls[i].Value = rewriteURLsInValue(decls[i].Value, fn)
		}
	}
}

// rewriteURLsInValue replaces url() references in a CSS value string.
func rewriteURLsInValue(value string, fn func(string) string) string {
	return urlRewritePattern.ReplaceAllStringFunc(value, func(match string) string {
		sub := urlRewritePattern.FindStringSubmatch(match)
		if sub == nil {
			return match
		}
		originalURL := sub[1]
		if originalURL == "" {
			originalURL = sub[2]
		}
		originalURL = strings.TrimSpace(originalURL)
		newURL := fn(originalURL)
		if newURL == originalURL {
			return match
		}
		return fmt.Sprintf("url(\"%s\")", cssEscapeDoubleQuoted(newURL))
	})
}
