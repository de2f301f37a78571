package cssurl

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Rewriter turns relative url() references into absolute ones against a
// base location. It implements css.URIRewriter.
type Rewriter struct{}

// NewRewriter creates a rewriter with default behavior: data URIs,
// fragment references and already-absolute references are left alone.
func NewRewriter() *Rewriter {
	return &Rewriter{}
}

// Rewrite resolves ref against base. The second return is false when the
// reference should be kept as written.
func (rw *Rewriter) Rewrite(base, ref string) (string, bool) {
	if base == "" || ref == "" {
		return "", false
	}
	if strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "/") {
		return "", false
	}
	if refScheme(ref) != "" {
		return "", false
	}
	switch refScheme(base) {
	case "http", "https":
		u, err := url.Parse(base)
		if err != nil {
			return "", false
		}
		t, err := url.Parse(ref)
		if err != nil {
			return "", false
		}
		return u.ResolveReference(t).String(), true
	case "file":
		return "file://" + path.Join(path.Dir(strings.TrimPrefix(base, "file://")), ref), true
	default:
		abs, err := filepath.Abs(filepath.Join(baseDir(base), filepath.FromSlash(ref)))
		if err != nil {
			return "", false
		}
		return filepath.ToSlash(abs), true
	}
}

func baseDir(base string) string {
	if strings.HasSuffix(base, "/") || strings.HasSuffix(base, string(filepath.Separator)) {
		return base
	}
	if ext := filepath.Ext(base); ext != "" {
		return filepath.Dir(base)
	}
	return base
}
