package css

// winner tracks the currently winning declaration for one longhand property
// together with the specificity that installed it.
type winner struct {
	d    Declaration
	spec int
}

// beats decides whether an incoming declaration overwrites the incumbent:
// an important declaration beats any non-important one regardless of
// specificity; at equal importance higher specificity wins; at equal
// specificity the later declaration wins. The caller iterates in source
// order, so "incoming at equal strength" always means "later".
func (w winner) beats(d Declaration, spec int) bool {
	switch {
	case d.Important && !w.d.Important:
		return true
	case !d.Important && w.d.Important:
		return false
	default:
		return spec >= w.spec
	}
}

// MergeDeclarations resolves the cascade across every rule given,
// regardless of selector, and returns the winning declaration per
// property in first-seen order. This is the operation an inliner uses to
// compute the effective style of one element from all rules matching it.
func MergeDeclarations(rules []*Rule) []Declaration {
	props := make(map[string]winner)
	var order []string
	for _, r := range rules {
		for _, d := range r.Declarations {
			for _, lh := range expandOrSelf(d) {
				cur, ok := props[lh.Property]
				if !ok {
					props[lh.Property] = winner{lh, r.Specificity}
					order = append(order, lh.Property)
					continue
				}
				if cur.beats(lh, r.Specificity) {
					props[lh.Property] = winner{lh, r.Specificity}
				}
			}
		}
	}
	decls := make([]Declaration, 0, len(order))
	for _, p := range order {
		decls = append(decls, props[p].d)
	}
	return CollapseShorthands(decls)
}

// MergeRules merges rules that apply in the same media context, producing
// one rule per distinct selector carrying the winning declaration per
// property. Shorthands are expanded before comparison so a longhand from
// one rule can override a component of a shorthand from another, and the
// resolved longhands are re-collapsed into shorthand form for output.
// Output declaration order is first-seen property order; output rule order
// is first occurrence of each selector.
func MergeRules(rules []*Rule) []*Rule {
	var selectors []string
	groups := make(map[string][]*Rule, len(rules))
	for _, r := range rules {
		if _, ok := groups[r.Selector]; !ok {
			selectors = append(selectors, r.Selector)
		}
		groups[r.Selector] = append(groups[r.Selector], r)
	}

	out := make([]*Rule, 0, len(selectors))
	for _, sel := range selectors {
		group := groups[sel]
		props := make(map[string]winner)
		var order []string

		for _, r := range group {
			for _, d := range r.Declarations {
				for _, lh := range expandOrSelf(d) {
					cur, ok := props[lh.Property]
					if !ok {
						props[lh.Property] = winner{lh, r.Specificity}
						order = append(order, lh.Property)
						continue
					}
					if cur.beats(lh, r.Specificity) {
						props[lh.Property] = winner{lh, r.Specificity}
					}
				}
			}
		}

		decls := make([]Declaration, 0, len(order))
		for _, p := range order {
			decls = append(decls, props[p].d)
		}
		first := group[0]
		out = append(out, &Rule{
			ID:           first.ID,
			Selector:     sel,
			Declarations: CollapseShorthands(decls),
			Specificity:  first.Specificity,
			ParentID:     first.ParentID,
			MediaQueryID: first.MediaQueryID,
			Qualifiers:   first.Qualifiers,
		})
	}
	return out
}
