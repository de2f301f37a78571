package css

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/tdewolff/parse/v2/css"
)

// Stylesheet is the in-memory document: an ordered sequence of Rule/AtRule
// entities with sequential IDs, a media index, an optional charset and the
// options it was parsed with.
//
// A stylesheet is not safe for concurrent mutation; callers sharing one
// across goroutines must serialize access externally.
type Stylesheet struct {
	Items        []Item
	MediaQueries []MediaQuery
	Charset      string

	opts      Options
	problems  []*ParseError
	importErr error

	// memoized derived views, invalidated synchronously on every mutation
	// and recomputed lazily on next read
	selectorsCache []string
	mediaIndex     map[MediaType][]int
}

// NewStylesheet returns an empty stylesheet with the given options.
func NewStylesheet(opts Options) *Stylesheet {
	return &Stylesheet{opts: opts}
}

// invalidate drops the memoized derived views. Every mutating operation
// calls it before returning control to the caller.
func (s *Stylesheet) invalidate() {
	s.selectorsCache = nil
	s.mediaIndex = nil
}

// renumber restores the sequential-ID invariant items[i].ID == i.
func (s *Stylesheet) renumber() {
	for i, it := range s.Items {
		it.setID(i)
	}
}

// Rules returns all rule entities in document order.
func (s *Stylesheet) Rules() []*Rule {
	var rules []*Rule
	for _, it := range s.Items {
		if it.Rule != nil {
			rules = append(rules, it.Rule)
		}
	}
	return rules
}

// AtRules returns all opaque at-rule entities in document order.
func (s *Stylesheet) AtRules() []*AtRule {
	var out []*AtRule
	for _, it := range s.Items {
		if it.AtRule != nil {
			out = append(out, it.AtRule)
		}
	}
	return out
}

// Problems returns the parse problems tolerated in lenient mode, in
// document order.
func (s *Stylesheet) Problems() []*ParseError {
	return s.problems
}

// ImportErrors combines resolution failures of @import statements that
// were tolerated during a lenient parse, or nil.
func (s *Stylesheet) ImportErrors() error {
	return s.importErr
}

// ProblemsErr combines all tolerated problems into one error, or nil.
func (s *Stylesheet) ProblemsErr() error {
	var err error
	for _, p := range s.problems {
		err = multierr.Append(err, p)
	}
	return err
}

// Selectors returns the distinct selectors (rules and at-rule headers) in
// first-occurrence order. The result is memoized until the next mutation.
func (s *Stylesheet) Selectors() []string {
	if s.selectorsCache != nil {
		return s.selectorsCache
	}
	seen := make(map[string]bool, len(s.Items))
	sels := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		sel := it.Selector()
		if sel != "" && !seen[sel] {
			seen[sel] = true
			sels = append(sels, sel)
		}
	}
	s.selectorsCache = sels
	return sels
}

// RulesBySelector returns all rules with exactly the given selector text
// (at-rule entities match on their header text and are not included).
func (s *Stylesheet) RulesBySelector(selector string) []*Rule {
	var out []*Rule
	for _, it := range s.Items {
		if it.Rule != nil && it.Rule.Selector == selector {
			out = append(out, it.Rule)
		}
	}
	return out
}

// mediaQueryByID returns the media query referenced by a rule, if any.
func (s *Stylesheet) mediaQueryByID(id int) (MediaQuery, bool) {
	if id < 0 || id >= len(s.MediaQueries) {
		return MediaQuery{}, false
	}
	return s.MediaQueries[id], true
}

// buildMediaIndex computes media type -> ordered rule IDs. Rules without
// explicit media are indexed under MediaAll.
func (s *Stylesheet) buildMediaIndex() map[MediaType][]int {
	if s.mediaIndex != nil {
		return s.mediaIndex
	}
	idx := make(map[MediaType][]int)
	for _, it := range s.Items {
		r := it.Rule
		if r == nil {
			continue
		}
		mt := MediaAll
		if mq, ok := s.mediaQueryByID(r.MediaQueryID); ok {
			mt = mq.Type
		}
		idx[mt] = append(idx[mt], r.ID)
	}
	s.mediaIndex = idx
	return idx
}

// RuleIDsByMediaType returns the ordered rule IDs indexed under the given
// coarse media type. Unlike RulesByMediaType it does not apply the
// ":all matches everything" semantics; it exposes the raw index.
func (s *Stylesheet) RuleIDsByMediaType(mt MediaType) []int {
	return s.buildMediaIndex()[mt]
}

// RulesByMediaType returns rules applicable under the given media type:
// MediaAll matches every rule, and rules with no explicit media (or an
// explicit "all") match every query.
func (s *Stylesheet) RulesByMediaType(mt MediaType) []*Rule {
	var out []*Rule
	for _, it := range s.Items {
		r := it.Rule
		if r == nil {
			continue
		}
		rt := MediaAll
		if mq, ok := s.mediaQueryByID(r.MediaQueryID); ok {
			rt = mq.Type
		}
		if mt == MediaAll || rt == MediaAll || rt == mt {
			out = append(out, r)
		}
	}
	return out
}

// EachSelector yields the positional projection of the document: selector
// text, declaration text, specificity and coarse media type, in document
// order. It is computed on demand from the authoritative item sequence.
func (s *Stylesheet) EachSelector(fn func(selector, declarations string, specificity int, media MediaType)) {
	for _, it := range s.Items {
		r := it.Rule
		if r == nil {
			continue
		}
		mt := MediaAll
		if mq, ok := s.mediaQueryByID(r.MediaQueryID); ok {
			mt = mq.Type
		}
		fn(r.Selector, r.DeclarationText(), r.Specificity, mt)
	}
}

// mediaTypeOf extracts the coarse media type from a condition: the first
// recognized media-type ident, skipping "not"/"only". Feature-only
// conditions fall back to "all".
func mediaTypeOf(condition string) MediaType {
	for _, t := range tokenize(condition) {
		if t.tt != css.IdentToken {
			continue
		}
		name := strings.ToLower(t.text)
		if name == "not" || name == "only" || name == "and" {
			continue
		}
		if knownMediaTypes[name] {
			return MediaType(name)
		}
	}
	return MediaAll
}

// ensureMediaQuery returns the ID of the media query with the given
// combined condition, registering it on first use.
func (s *Stylesheet) ensureMediaQuery(condition string) int {
	for _, mq := range s.MediaQueries {
		if mq.Condition == condition {
			return mq.ID
		}
	}
	id := len(s.MediaQueries)
	s.MediaQueries = append(s.MediaQueries, MediaQuery{
		ID:        id,
		Type:      mediaTypeOf(condition),
		Condition: condition,
	})
	return id
}

// AddRule appends one rule per member of a comma-separated selector list,
// each with its own copy of the parsed declarations. The whole list is
// rejected when any member is invalid.
func (s *Stylesheet) AddRule(selector, declarations string) error {
	members := splitOnCommas(trimWS(tokenize(selector)))
	sels := make([]string, 0, len(members))
	specs := make([]int, 0, len(members))
	for _, m := range members {
		m = trimWS(m)
		if kind, msg, ok := validateSelector(m); !ok {
			return &ParseError{Kind: kind, Line: 1, Column: 1, Message: msg}
		}
		sels = append(sels, rawText(m))
		specs = append(specs, specificity(m))
	}
	decls, err := ParseDeclarations(declarations)
	if err != nil {
		return err
	}
	for i, sel := range sels {
		ds := decls
		if i > 0 {
			ds = append([]Declaration(nil), decls...)
		}
		s.Items = append(s.Items, Item{Rule: &Rule{
			ID:           len(s.Items),
			Selector:     sel,
			Declarations: ds,
			Specificity:  specs[i],
			ParentID:     -1,
			MediaQueryID: -1,
		}})
	}
	s.invalidate()
	return nil
}

// AddBlock parses a CSS fragment with the stylesheet's own options and
// appends its entities, preserving the sequential-ID and parent-linkage
// invariants across the splice.
func (s *Stylesheet) AddBlock(cssText string) error {
	frag, err := NewParser(nil).Parse(cssText, s.opts)
	if err != nil {
		return fmt.Errorf("parsing block: %w", err)
	}
	offset := len(s.Items)
	for _, it := range frag.Items {
		if r := it.Rule; r != nil {
			if r.ParentID >= 0 {
				r.ParentID += offset
			}
			if mq, ok := frag.mediaQueryByID(r.MediaQueryID); ok {
				r.MediaQueryID = s.ensureMediaQuery(mq.Condition)
			} else {
				r.MediaQueryID = -1
			}
		}
		s.Items = append(s.Items, it)
	}
	s.problems = append(s.problems, frag.problems...)
	s.importErr = multierr.Append(s.importErr, frag.importErr)
	s.renumber()
	s.invalidate()
	return nil
}

// removeWhere removes all items the predicate selects, compacting IDs and
// remapping parent links. Children of removed parents lose their link.
func (s *Stylesheet) removeWhere(drop func(Item) bool) int {
	oldToNew := make(map[int]int, len(s.Items))
	kept := s.Items[:0]
	removed := 0
	for _, it := range s.Items {
		if drop(it) {
			removed++
			continue
		}
		oldToNew[it.ID()] = len(kept)
		kept = append(kept, it)
	}
	if removed == 0 {
		return 0
	}
	s.Items = kept
	for _, it := range s.Items {
		if it.Rule != nil && it.Rule.ParentID >= 0 {
			if newID, ok := oldToNew[it.Rule.ParentID]; ok {
				it.Rule.ParentID = newID
			} else {
				it.Rule.ParentID = -1
			}
		}
	}
	s.renumber()
	s.invalidate()
	return removed
}

// RemoveRuleByID removes the entity with the given sequential ID and
// compacts IDs, parent links and the media index.
func (s *Stylesheet) RemoveRuleByID(id int) bool {
	return s.removeWhere(func(it Item) bool { return it.ID() == id }) > 0
}

// RemoveBySelector removes every rule with the given selector text (and
// at-rule entities whose header matches), returning how many were removed.
func (s *Stylesheet) RemoveBySelector(selector string) int {
	return s.removeWhere(func(it Item) bool { return it.Selector() == selector })
}

// DedupRules removes rules that are structurally equal (shorthand-aware,
// per Rule.Equal) to an earlier rule in the same qualifier context.
func (s *Stylesheet) DedupRules() int {
	seen := make(map[string]bool, len(s.Items))
	return s.removeWhere(func(it Item) bool {
		if it.Rule == nil {
			return false
		}
		key := it.Rule.qualifierKey() + "\x00" + it.Rule.Key()
		if seen[key] {
			return true
		}
		seen[key] = true
		return false
	})
}

// Merge applies the cascade in place: rules sharing a qualifier context are
// merged per selector (specificity, importance, source order), keeping the
// first occurrence position of each selector. At-rule entities are kept
// untouched.
func (s *Stylesheet) Merge() {
	groups := make(map[string][]*Rule)
	for _, it := range s.Items {
		if it.Rule != nil {
			k := it.Rule.qualifierKey()
			groups[k] = append(groups[k], it.Rule)
		}
	}

	// merged result per original rule ID, emitted at first occurrence
	mergedByOldID := make(map[int]*Rule)
	emitAt := make(map[int]*Rule)
	for _, group := range groups {
		for _, m := range MergeRules(group) {
			emitAt[m.ID] = m
			for _, r := range group {
				if r.Selector == m.Selector {
					mergedByOldID[r.ID] = m
				}
			}
		}
	}

	items := make([]Item, 0, len(s.Items))
	for _, it := range s.Items {
		if it.AtRule != nil {
			items = append(items, it)
			continue
		}
		if m, ok := emitAt[it.Rule.ID]; ok {
			items = append(items, Item{Rule: m})
		}
	}
	s.Items = items
	s.renumber()

	// parent links now point at pre-merge IDs; remap them onto the merged
	// rule of the old parent, keeping the parents-precede-children invariant
	for _, it := range s.Items {
		r := it.Rule
		if r == nil || r.ParentID < 0 {
			continue
		}
		if p, ok := mergedByOldID[r.ParentID]; ok && p.ID < r.ID {
			r.ParentID = p.ID
		} else {
			r.ParentID = -1
		}
	}
	s.invalidate()
}
