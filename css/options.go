package css

// ImportPolicy restricts what an import resolver is allowed to fetch.
type ImportPolicy struct {
	// AllowedSchemes lists URI schemes @import may use, e.g. "https", "file".
	AllowedSchemes []string
}

// Allows reports whether the policy permits the given scheme. A "file" scheme
// also covers plain relative paths resolved against a base directory.
func (p *ImportPolicy) Allows(scheme string) bool {
	if p == nil || len(p.AllowedSchemes) == 0 {
		return scheme == "https" || scheme == "file" || scheme == ""
	}
	for _, s := range p.AllowedSchemes {
		if s == scheme || (s == "file" && scheme == "") {
			return true
		}
	}
	return false
}

// ImportResolver fetches the content of an @import target. base is the
// location of the document containing the @import statement; the returned
// newBase becomes the base for imports nested inside the fetched content.
type ImportResolver interface {
	Resolve(base, target string, policy *ImportPolicy) (content []byte, newBase string, err error)
}

// URIRewriter converts a relative url() reference found in a declaration
// value into an absolute one. ok is false when the reference should be left
// untouched.
type URIRewriter interface {
	Rewrite(base, ref string) (abs string, ok bool)
}

// Options controls a single parse pass. The zero value is the lenient
// default: tolerate every parse problem, no imports, no URL rewriting.
type Options struct {
	// BaseURI is the location of the stylesheet, used for @import and url()
	// resolution. BaseDir serves the same purpose for filesystem content;
	// BaseURI wins when both are set.
	BaseURI string
	BaseDir string

	// AbsolutePaths rewrites relative url() references in declaration values
	// through the Rewriter. data: and already-absolute URLs are never touched.
	AbsolutePaths bool

	// Import enables @import resolution through the Resolver. When disabled
	// (the default) @import statements are dropped, not an error.
	Import       bool
	ImportPolicy *ImportPolicy

	// Resolver and Rewriter are the external collaborators for @import and
	// url() handling. Both may be nil, which disables the respective feature.
	Resolver ImportResolver
	Rewriter URIRewriter

	// RaiseErrors turns the first parse problem into an error returned from
	// Parse. RaiseKinds overrides the decision per kind: kinds mapped to
	// false stay tolerated even when RaiseErrors is set, kinds mapped to
	// true are raised even when it is not.
	RaiseErrors bool
	RaiseKinds  map[ErrorKind]bool

	// FixBraces synthesizes missing closing braces at EOF instead of
	// reporting unclosed_block.
	FixBraces bool

	// Capture filters which unrecognized at-rules are kept as opaque
	// entities. Empty keeps them all; otherwise only the listed names
	// (without the "@") survive.
	Capture []string
}

// raises reports whether a problem of the given kind must abort the parse.
func (o *Options) raises(kind ErrorKind) bool {
	if v, ok := o.RaiseKinds[kind]; ok {
		return v
	}
	return o.RaiseErrors
}

// base returns the effective base location for resolution.
func (o *Options) base() string {
	if o.BaseURI != "" {
		return o.BaseURI
	}
	return o.BaseDir
}

// captured reports whether an unrecognized at-rule should be kept as an
// entity.
func (o *Options) captured(name string) bool {
	if len(o.Capture) == 0 {
		return true
	}
	for _, c := range o.Capture {
		if c == name {
			return true
		}
	}
	return false
}
