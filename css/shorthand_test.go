package css_test

import (
	"errors"
	"strings"
	"testing"

	"csskit/css"
)

func expand(t *testing.T, property, value string) map[string]string {
	t.Helper()
	out, err := css.ExpandShorthand(css.Declaration{Property: property, Value: value})
	if err != nil {
		t.Fatalf("ExpandShorthand(%s: %s) failed: %v", property, value, err)
	}
	if out == nil {
		t.Fatalf("ExpandShorthand(%s: %s) declined to expand", property, value)
	}
	m := make(map[string]string, len(out))
	for _, d := range out {
		m[d.Property] = d.Value
	}
	return m
}

func TestShorthand_IsShorthand(t *testing.T) {
	for _, p := range []string{"margin", "Border", "background", "font", "list-style", "border-top"} {
		if !css.IsShorthand(p) {
			t.Errorf("expected '%s' recognized as shorthand", p)
		}
	}
	for _, p := range []string{"color", "margin-top", "font-size", "border-image"} {
		if css.IsShorthand(p) {
			t.Errorf("'%s' is not a shorthand", p)
		}
	}
}

func TestShorthand_Dimensions(t *testing.T) {
	cases := []struct {
		value      string
		t, r, b, l string
	}{
		{"10px", "10px", "10px", "10px", "10px"},
		{"10px 20px", "10px", "20px", "10px", "20px"},
		{"10px 20px 30px", "10px", "20px", "30px", "20px"},
		{"10px 20px 30px 40px", "10px", "20px", "30px", "40px"},
	}
	for _, c := range cases {
		m := expand(t, "margin", c.value)
		if m["margin-top"] != c.t || m["margin-right"] != c.r ||
			m["margin-bottom"] != c.b || m["margin-left"] != c.l {
			t.Errorf("margin '%s': got %v", c.value, m)
		}
	}
}

func TestShorthand_Border(t *testing.T) {
	m := expand(t, "border", "1px solid red")
	if len(m) != 12 {
		t.Fatalf("expected 12 longhands, got %d: %v", len(m), m)
	}
	if m["border-top-width"] != "1px" || m["border-left-style"] != "solid" || m["border-bottom-color"] != "red" {
		t.Errorf("unexpected border expansion: %v", m)
	}

	m = expand(t, "border-top", "2px dotted")
	if len(m) != 2 || m["border-top-width"] != "2px" || m["border-top-style"] != "dotted" {
		t.Errorf("unexpected border-top expansion: %v", m)
	}
}

func TestShorthand_Background(t *testing.T) {
	m := expand(t, "background", "url(img.png) no-repeat")
	want := map[string]string{
		"background-color":      "transparent",
		"background-image":      "url(img.png)",
		"background-repeat":     "no-repeat",
		"background-attachment": "scroll",
		"background-position":   "0% 0%",
	}
	for p, v := range want {
		if m[p] != v {
			t.Errorf("%s: expected '%s', got '%s'", p, v, m[p])
		}
	}

	m = expand(t, "background", "#fff center/cover")
	if m["background-color"] != "#fff" || m["background-position"] != "center" || m["background-size"] != "cover" {
		t.Errorf("unexpected size expansion: %v", m)
	}
}

func TestShorthand_Font(t *testing.T) {
	m := expand(t, "font", "bold 12px/1.5 Arial, sans-serif")
	want := map[string]string{
		"font-style":   "normal",
		"font-variant": "normal",
		"font-weight":  "bold",
		"font-size":    "12px",
		"line-height":  "1.5",
		"font-family":  "Arial, sans-serif",
	}
	for p, v := range want {
		if m[p] != v {
			t.Errorf("%s: expected '%s', got '%s'", p, v, m[p])
		}
	}

	// numeric weight before the size
	m = expand(t, "font", "100 20px serif")
	if m["font-weight"] != "100" || m["font-size"] != "20px" || m["font-family"] != "serif" {
		t.Errorf("unexpected expansion: %v", m)
	}

	// size without family is not a usable font shorthand
	out, err := css.ExpandShorthand(css.Declaration{Property: "font", Value: "12px"})
	if err != nil || out != nil {
		t.Errorf("expected (nil, nil) for family-less font, got %v, %v", out, err)
	}
}

func TestShorthand_ListStyle(t *testing.T) {
	m := expand(t, "list-style", "square inside")
	if m["list-style-type"] != "square" || m["list-style-position"] != "inside" || m["list-style-image"] != "none" {
		t.Errorf("unexpected expansion: %v", m)
	}
}

func TestShorthand_NonShorthand(t *testing.T) {
	out, err := css.ExpandShorthand(css.Declaration{Property: "color", Value: "red"})
	if err != nil || out != nil {
		t.Errorf("expected (nil, nil), got %v, %v", out, err)
	}
}

func TestShorthand_ValueTooLong(t *testing.T) {
	_, err := css.ExpandShorthand(css.Declaration{Property: "margin", Value: strings.Repeat("a", 5000)})
	if !errors.Is(err, css.ErrValueTooLong) {
		t.Errorf("expected ErrValueTooLong, got %v", err)
	}
}

func TestShorthand_ImportantPropagates(t *testing.T) {
	out, err := css.ExpandShorthand(css.Declaration{Property: "padding", Value: "1em", Important: true})
	if err != nil || len(out) != 4 {
		t.Fatalf("unexpected expansion: %v, %v", out, err)
	}
	for _, d := range out {
		if !d.Important {
			t.Errorf("%s lost the important flag", d.Property)
		}
	}
}

func TestCollapseShorthands_Margin(t *testing.T) {
	decls, err := css.ParseDeclarations("margin-top: 20px; margin-right: 10px; margin-bottom: 10px; margin-left: 10px")
	if err != nil {
		t.Fatal(err)
	}
	out := css.CollapseShorthands(decls)
	if len(out) != 1 || out[0].Property != "margin" || out[0].Value != "20px 10px 10px" {
		t.Errorf("expected margin: 20px 10px 10px, got %v", out)
	}
}

func TestCollapseShorthands_PartialSetStays(t *testing.T) {
	decls, err := css.ParseDeclarations("margin-top: 10px; margin-right: 10px; margin-bottom: 10px")
	if err != nil {
		t.Fatal(err)
	}
	out := css.CollapseShorthands(decls)
	if len(out) != 3 {
		t.Errorf("expected partial side set untouched, got %v", out)
	}
}

func TestCollapseShorthands_MixedImportanceStays(t *testing.T) {
	decls, err := css.ParseDeclarations("margin-top: 10px !important; margin-right: 10px; margin-bottom: 10px; margin-left: 10px")
	if err != nil {
		t.Fatal(err)
	}
	out := css.CollapseShorthands(decls)
	if len(out) != 4 {
		t.Errorf("expected mixed-importance sides untouched, got %v", out)
	}
}

func TestCollapseShorthands_Border(t *testing.T) {
	out := css.CollapseShorthands(expandList(t, "border", "1px solid red"))
	if len(out) != 1 || out[0].Property != "border" || out[0].Value != "1px solid red" {
		t.Errorf("expected border round-trip, got %v", out)
	}
}

func TestCollapseShorthands_Font(t *testing.T) {
	out := css.CollapseShorthands(expandList(t, "font", "bold 12px/1.5 Arial, sans-serif"))
	if len(out) != 1 || out[0].Property != "font" || out[0].Value != "bold 12px/1.5 Arial, sans-serif" {
		t.Errorf("expected font round-trip, got %v", out)
	}
}

func TestCollapseShorthands_Background(t *testing.T) {
	out := css.CollapseShorthands(expandList(t, "background", "url(img.png) no-repeat"))
	if len(out) != 1 || out[0].Property != "background" || out[0].Value != "url(img.png) no-repeat" {
		t.Errorf("expected background round-trip, got %v", out)
	}
}

func expandList(t *testing.T, property, value string) []css.Declaration {
	t.Helper()
	out, err := css.ExpandShorthand(css.Declaration{Property: property, Value: value})
	if err != nil || out == nil {
		t.Fatalf("ExpandShorthand(%s: %s) failed: %v", property, value, err)
	}
	return out
}
