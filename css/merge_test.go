package css_test

import (
	"testing"

	"csskit/css"
)

func mergedColor(t *testing.T, input string) css.Declaration {
	t.Helper()
	sheet := parse(t, input)
	decls := css.MergeDeclarations(sheet.Rules())
	for _, d := range decls {
		if d.Property == "color" {
			return d
		}
	}
	t.Fatalf("no color declaration in merged output: %v", decls)
	return css.Declaration{}
}

func TestMergeDeclarations_LaterWins(t *testing.T) {
	d := mergedColor(t, `.t { color: black; } .t { color: red; }`)
	if d.Value != "red" || d.Important {
		t.Errorf("expected plain red, got %+v", d)
	}
}

func TestMergeDeclarations_SpecificityWins(t *testing.T) {
	d := mergedColor(t, `.t { color: black; } #t { color: red; }`)
	if d.Value != "red" {
		t.Errorf("expected red from the more specific selector, got %+v", d)
	}
}

func TestMergeDeclarations_ImportantBeatsSpecificity(t *testing.T) {
	d := mergedColor(t, `.t { color: black !important; } #t { color: red; }`)
	if d.Value != "black" || !d.Important {
		t.Errorf("expected black !important, got %+v", d)
	}
}

func TestMergeDeclarations_LaterImportantWins(t *testing.T) {
	d := mergedColor(t, `.t { color: red !important; } .t { color: black !important; }`)
	if d.Value != "black" || !d.Important {
		t.Errorf("expected black !important, got %+v", d)
	}
}

func TestMergeDeclarations_ShorthandInteraction(t *testing.T) {
	sheet := parse(t, `.t { margin: 10px; } .t { margin-top: 20px; }`)
	decls := css.MergeDeclarations(sheet.Rules())

	if len(decls) != 1 {
		t.Fatalf("expected the sides re-collapsed into one shorthand, got %v", decls)
	}
	if decls[0].Property != "margin" || decls[0].Value != "20px 10px 10px" {
		t.Errorf("expected margin: 20px 10px 10px, got %+v", decls[0])
	}
}

func TestMergeDeclarations_CollapsesUniformSides(t *testing.T) {
	sheet := parse(t, `.t { margin: 10px 20px; } .t { margin-left: 10px; margin-right: 10px; }`)
	decls := css.MergeDeclarations(sheet.Rules())

	if len(decls) != 1 {
		t.Fatalf("expected a single collapsed declaration, got %v", decls)
	}
	if decls[0].Property != "margin" || decls[0].Value != "10px" {
		t.Errorf("expected margin: 10px, got %+v", decls[0])
	}
}

func TestStylesheet_Merge(t *testing.T) {
	sheet := parse(t, `p { color: red; }
q { quotes: none; }
p { color: blue; margin: 0; }
@media print { p { color: black; } }
@font-face { font-family: X; src: url(x.woff); }`)

	sheet.Merge()

	rules := sheet.Rules()
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules after merge, got %d", len(rules))
	}
	// first-occurrence order within the unqualified group
	if rules[0].Selector != "p" || rules[1].Selector != "q" {
		t.Errorf("unexpected order: '%s', '%s'", rules[0].Selector, rules[1].Selector)
	}
	if d, _ := rules[0].Get("color"); d.Value != "blue" {
		t.Errorf("expected later color to win, got '%s'", d.Value)
	}
	if _, ok := rules[0].Get("margin"); !ok {
		t.Error("expected margin carried into merged rule")
	}
	// the print copy stays apart
	if rules[2].MediaQueryID < 0 {
		t.Error("expected media-qualified rule kept separate")
	}
	if d, _ := rules[2].Get("color"); d.Value != "black" {
		t.Errorf("unexpected print color '%s'", d.Value)
	}
	for i, r := range rules {
		if r.ID != i {
			t.Errorf("rule %d carries ID %d", i, r.ID)
		}
	}
	if len(sheet.AtRules()) != 1 {
		t.Errorf("expected the at-rule untouched, got %d", len(sheet.AtRules()))
	}
}

func TestMergeRules_KeepsDistinctSelectors(t *testing.T) {
	sheet := parse(t, `.a { color: red; } .b { color: blue; } .a { margin: 0; }`)

	merged := css.MergeRules(sheet.Rules())
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged rules, got %d", len(merged))
	}
	if merged[0].Selector != ".a" || merged[1].Selector != ".b" {
		t.Errorf("unexpected selector order: '%s', '%s'", merged[0].Selector, merged[1].Selector)
	}
	if len(merged[0].Declarations) != 2 {
		t.Errorf("expected color and margin on '.a', got %v", merged[0].Declarations)
	}
}
