package css

import (
	"hash/fnv"
	"sort"
	"strings"
)

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
// Backslashes and double quotes are escaped per CSS syntax: \" and \\.
func cssEscapeDoubleQuoted(s string) string {
	// Fast path: nothing to escape.
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Declaration is a single property declaration. Property is lowercased at
// parse time; Value keeps the source text verbatim (UTF-8 included).
// Declarations are immutable once created.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Text returns the declaration in canonical "property: value" form.
func (d Declaration) Text() string {
	if d.Important {
		return d.Property + ": " + d.Value + " !important"
	}
	return d.Property + ": " + d.Value
}

// QualifierKind discriminates conditional group at-rules whose bodies are
// flattened into plain rules.
type QualifierKind int

const (
	QualifierMedia QualifierKind = iota
	QualifierSupports
	QualifierLayer
	QualifierContainer
	QualifierScope
)

// String returns the at-rule keyword for the qualifier kind.
func (k QualifierKind) String() string {
	switch k {
	case QualifierMedia:
		return "@media"
	case QualifierSupports:
		return "@supports"
	case QualifierLayer:
		return "@layer"
	case QualifierContainer:
		return "@container"
	case QualifierScope:
		return "@scope"
	default:
		return "@?"
	}
}

// Qualifier is the condition a flattened conditional group contributed to a
// rule, e.g. {QualifierMedia, "screen and (min-width: 500px)"}.
type Qualifier struct {
	Kind      QualifierKind
	Condition string
}

// header renders the qualifier as an at-rule header.
func (q Qualifier) header() string {
	if q.Condition == "" {
		return q.Kind.String()
	}
	return q.Kind.String() + " " + q.Condition
}

// MediaType is the coarse media-type symbol of a media query: "screen",
// "print", "all" and so on.
type MediaType string

// MediaAll is the implicit media type matching every rule regardless of any
// explicit media condition.
const MediaAll MediaType = "all"

// knownMediaTypes are the recognized coarse media types.
var knownMediaTypes = map[string]bool{
	"all": true, "screen": true, "print": true, "speech": true,
	"tv": true, "projection": true, "handheld": true, "braille": true,
	"embossed": true, "aural": true, "tty": true,
}

// MediaQuery is one distinct media condition seen during parsing. Rules
// reference it by ID; Type is the coarse media type extracted from the
// condition for indexed lookup.
type MediaQuery struct {
	ID        int
	Type      MediaType
	Condition string
}

// Rule is one qualified selector with its declaration block.
//
// IDs are sequential: after every mutation of the owning stylesheet,
// items[i].ID == i. ParentID links a rule produced by flattening a nested
// selector to its ancestor rule and is always < ID; -1 means no parent.
// MediaQueryID is -1 for rules outside any @media.
type Rule struct {
	ID           int
	Selector     string
	Declarations []Declaration
	Specificity  int
	ParentID     int
	MediaQueryID int
	Qualifiers   []Qualifier
}

// DeclarationText returns the declarations as "prop: value; prop2: value2"
// without the surrounding braces.
func (r *Rule) DeclarationText() string {
	parts := make([]string, 0, len(r.Declarations))
	for _, d := range r.Declarations {
		parts = append(parts, d.Text())
	}
	return strings.Join(parts, "; ")
}

// Get returns the last declaration for a property (case-insensitive) in
// source order, which is the one that wins before cascade.
func (r *Rule) Get(property string) (Declaration, bool) {
	property = strings.ToLower(property)
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == property {
			return r.Declarations[i], true
		}
	}
	return Declaration{}, false
}

// expandedSet expands every declaration to longhands and layers them in
// declaration order, returning the effective property set.
func (r *Rule) expandedSet() map[string]Declaration {
	set := make(map[string]Declaration, len(r.Declarations))
	for _, d := range r.Declarations {
		for _, lh := range expandOrSelf(d) {
			set[lh.Property] = lh
		}
	}
	return set
}

// Equal reports structural, shorthand-aware equality: selectors match and
// the declaration sets are equivalent after shorthand expansion. ID,
// qualifiers and the stored specificity do not participate.
func (r *Rule) Equal(other *Rule) bool {
	if other == nil || r.Selector != other.Selector {
		return false
	}
	a, b := r.expandedSet(), other.expandedSet()
	if len(a) != len(b) {
		return false
	}
	for prop, d := range a {
		od, ok := b[prop]
		if !ok || od.Value != d.Value || od.Important != d.Important {
			return false
		}
	}
	return true
}

// Key returns a canonical string consistent with Equal: two rules are Equal
// iff their keys match, so the key is usable directly as a map key for
// uniq-style dedup.
func (r *Rule) Key() string {
	set := r.expandedSet()
	props := make([]string, 0, len(set))
	for p := range set {
		props = append(props, p)
	}
	sort.Strings(props)
	var b strings.Builder
	b.WriteString(r.Selector)
	b.WriteByte('{')
	for _, p := range props {
		b.WriteString(set[p].Text())
		b.WriteByte(';')
	}
	b.WriteByte('}')
	return b.String()
}

// Hash returns a hash consistent with Equal (equal rules hash equally).
func (r *Rule) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(r.Key())) //nolint:errcheck
	return h.Sum64()
}

// mediaQualifier returns the media qualifier of the rule's chain, if any.
func (r *Rule) mediaQualifier() (Qualifier, bool) {
	for _, q := range r.Qualifiers {
		if q.Kind == QualifierMedia {
			return q, true
		}
	}
	return Qualifier{}, false
}

// qualifierKey is the full qualifier-chain key used for render grouping.
func (r *Rule) qualifierKey() string {
	if len(r.Qualifiers) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Qualifiers))
	for _, q := range r.Qualifiers {
		parts = append(parts, q.header())
	}
	return strings.Join(parts, "\x00")
}

// AtRuleType classifies opaque at-rule entities.
type AtRuleType int

const (
	AtFontFace AtRuleType = iota
	AtKeyframes
	AtPage
	AtProperty
	AtCounterStyle
	AtOther
)

// String returns a symbolic name for the at-rule type.
func (t AtRuleType) String() string {
	switch t {
	case AtFontFace:
		return "font_face"
	case AtKeyframes:
		return "keyframes"
	case AtPage:
		return "page"
	case AtProperty:
		return "property"
	case AtCounterStyle:
		return "counter_style"
	default:
		return "other"
	}
}

// AtRuleBlock is one nested block inside an opaque at-rule, such as a
// keyframe frame ("0%", "from", "to") with its declarations.
type AtRuleBlock struct {
	Prelude      string
	Declarations []Declaration
}

// AtRule is an at-rule kept as its own entity because its body is a
// descriptor list or keyframe list, not cascadable selectors. Header is the
// full header text ("@font-face", "@keyframes slide") and doubles as the
// entity's selector for query purposes.
type AtRule struct {
	ID           int
	Header       string
	Type         AtRuleType
	Declarations []Declaration
	Blocks       []AtRuleBlock
}

// Item is the tagged variant stored in the stylesheet's ordered sequence.
// Exactly one of Rule or AtRule is non-nil.
type Item struct {
	Rule   *Rule
	AtRule *AtRule
}

// ID returns the sequential ID of whichever entity the item holds.
func (it Item) ID() int {
	if it.Rule != nil {
		return it.Rule.ID
	}
	if it.AtRule != nil {
		return it.AtRule.ID
	}
	return -1
}

// setID assigns the sequential ID to whichever entity the item holds.
func (it Item) setID(id int) {
	if it.Rule != nil {
		it.Rule.ID = id
	} else if it.AtRule != nil {
		it.AtRule.ID = id
	}
}

// Selector returns the query selector of the item: the rule's selector or
// the at-rule's header text.
func (it Item) Selector() string {
	if it.Rule != nil {
		return it.Rule.Selector
	}
	if it.AtRule != nil {
		return it.AtRule.Header
	}
	return ""
}
