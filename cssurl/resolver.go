// Package cssurl provides filesystem and HTTP implementations of the
// stylesheet import and URI-rewriting hooks.
package cssurl

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"csskit/css"

	"go.uber.org/zap"
)

// maxImportSize bounds how much of an imported stylesheet is read.
const maxImportSize = 8 << 20

// Resolver fetches @import targets from the local filesystem or over
// HTTP(S), subject to the caller's import policy. It implements
// css.ImportResolver.
type Resolver struct {
	log    *zap.Logger
	client *http.Client
}

// NewResolver creates a resolver with the given logger and an HTTP client
// with a sane timeout. A nil logger disables logging.
func NewResolver(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		log:    log.Named("css-import"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Resolve fetches target relative to base and returns its content along
// with the new base for nested imports.
func (r *Resolver) Resolve(base, target string, policy *css.ImportPolicy) ([]byte, string, error) {
	abs, err := joinRef(base, target)
	if err != nil {
		return nil, "", fmt.Errorf("resolving import %q: %w", target, err)
	}
	scheme := refScheme(abs)
	if policy != nil && !policy.Allows(scheme) {
		return nil, "", fmt.Errorf("import %q: scheme %q not allowed", target, schemeName(scheme))
	}

	switch scheme {
	case "http", "https":
		return r.fetchHTTP(abs)
	case "", "file":
		return r.readFile(strings.TrimPrefix(abs, "file://"))
	default:
		return nil, "", fmt.Errorf("import %q: unsupported scheme %q", target, scheme)
	}
}

func (r *Resolver) fetchHTTP(ref string) ([]byte, string, error) {
	r.log.Debug("fetching import", zap.String("url", ref))
	resp, err := r.client.Get(ref)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %q: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetching %q: unexpected status %s", ref, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImportSize))
	if err != nil {
		return nil, "", fmt.Errorf("reading %q: %w", ref, err)
	}
	return data, ref, nil
}

func (r *Resolver) readFile(name string) ([]byte, string, error) {
	r.log.Debug("reading import", zap.String("path", name))
	f, err := os.Open(name)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImportSize))
	if err != nil {
		return nil, "", fmt.Errorf("reading %q: %w", name, err)
	}
	return data, name, nil
}

// joinRef resolves target against base, which may be a URL or a local
// file path. An empty base leaves relative targets as-is.
func joinRef(base, target string) (string, error) {
	if refScheme(target) != "" {
		return target, nil
	}
	switch refScheme(base) {
	case "http", "https":
		u, err := url.Parse(base)
		if err != nil {
			return "", err
		}
		t, err := url.Parse(target)
		if err != nil {
			return "", err
		}
		return u.ResolveReference(t).String(), nil
	case "file":
		dir := path.Dir(strings.TrimPrefix(base, "file://"))
		return "file://" + path.Join(dir, target), nil
	default:
		if base == "" {
			return target, nil
		}
		dir := base
		if st, err := os.Stat(base); err != nil || !st.IsDir() {
			dir = filepath.Dir(base)
		}
		return filepath.Join(dir, filepath.FromSlash(target)), nil
	}
}

// refScheme returns the lowercase scheme of ref, or "" for scheme-less
// references. Windows drive letters are not schemes.
func refScheme(ref string) string {
	i := strings.Index(ref, "://")
	if i <= 1 {
		return ""
	}
	return strings.ToLower(ref[:i])
}

func schemeName(s string) string {
	if s == "" {
		return "file"
	}
	return s
}
