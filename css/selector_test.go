package css_test

import (
	"testing"

	"csskit/css"
)

func TestSelectorSpecificity(t *testing.T) {
	cases := []struct {
		selector string
		want     int
	}{
		{"*", 0},
		{"a", 1},
		{"::before", 1},
		{":before", 1},
		{"a:hover", 11},
		{".item", 10},
		{"[href]", 10},
		{"#nav", 100},
		{"#nav .item a:hover", 121},
		{"ul li", 2},
		{"ul > li.active", 12},
		{":not(.a)", 10},
		{":is(.a, #b)", 110},
		{":where(.a, #b)", 0},
		{"div:nth-child(2n)", 11},
	}
	for _, c := range cases {
		if got := css.SelectorSpecificity(c.selector); got != c.want {
			t.Errorf("SelectorSpecificity(%q) = %d, want %d", c.selector, got, c.want)
		}
	}
}

func TestSelector_InvalidAtTopLevel(t *testing.T) {
	cases := []struct {
		input string
		kind  css.ErrorKind
	}{
		{"> p { color: red; }", css.ErrInvalidSelector},
		{"50% { color: red; }", css.ErrInvalidSelectorSyntax},
	}
	for _, c := range cases {
		sheet := parse(t, c.input)
		probs := sheet.Problems()
		if len(probs) == 0 {
			t.Errorf("%q: expected a problem", c.input)
			continue
		}
		if probs[0].Kind != c.kind {
			t.Errorf("%q: expected %s, got %s", c.input, c.kind, probs[0].Kind)
		}
	}
}

func TestSelector_AttributeAndPseudo(t *testing.T) {
	sheet := parse(t, `input[type="text"]:focus { outline: none; }`)
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Specificity != 21 {
		t.Errorf("expected specificity 21, got %d", rules[0].Specificity)
	}
}
