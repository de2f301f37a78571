package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"csskit/css"
)

func parse(t *testing.T, input string) *css.Stylesheet {
	t.Helper()
	sheet, err := css.NewParser(zap.NewNop()).Parse(input, css.Options{})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return sheet
}

func TestParser_ElementSelector(t *testing.T) {
	sheet := parse(t, `p { text-indent: 1em; }`)

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	rule := rules[0]
	if rule.Selector != "p" {
		t.Errorf("expected selector 'p', got '%s'", rule.Selector)
	}
	d, ok := rule.Get("text-indent")
	if !ok {
		t.Fatal("expected text-indent declaration")
	}
	if d.Value != "1em" {
		t.Errorf("expected value '1em', got '%s'", d.Value)
	}
	if rule.Specificity != 1 {
		t.Errorf("expected specificity 1, got %d", rule.Specificity)
	}
}

func TestParser_SelectorListSplits(t *testing.T) {
	sheet := parse(t, `h1, h2, h3 { font-weight: bold; }`)

	rules := sheet.Rules()
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	for i, want := range []string{"h1", "h2", "h3"} {
		if rules[i].Selector != want {
			t.Errorf("rule %d: expected selector '%s', got '%s'", i, want, rules[i].Selector)
		}
		if rules[i].ID != i {
			t.Errorf("rule %d: expected ID %d, got %d", i, i, rules[i].ID)
		}
		if _, ok := rules[i].Get("font-weight"); !ok {
			t.Errorf("rule %d: missing font-weight", i)
		}
	}
}

func TestParser_InvalidMemberRejectsWholeList(t *testing.T) {
	sheet := parse(t, `h1, >, h3 { color: red; } p { color: blue; }`)

	rules := sheet.Rules()
	if len(rules) != 1 || rules[0].Selector != "p" {
		t.Fatalf("expected only the 'p' rule to survive, got %d rules", len(rules))
	}
	if len(sheet.Problems()) == 0 {
		t.Error("expected a problem for the invalid selector list")
	}
}

func TestParser_NestedMediaCombines(t *testing.T) {
	sheet := parse(t, `@media screen { @media (min-width:500px) { a { color: red; } } }`)

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if len(sheet.MediaQueries) != 1 {
		t.Fatalf("expected 1 media query, got %d", len(sheet.MediaQueries))
	}
	mq := sheet.MediaQueries[0]
	if mq.Condition != "screen and (min-width: 500px)" {
		t.Errorf("unexpected combined condition: '%s'", mq.Condition)
	}
	if mq.Type != css.MediaType("screen") {
		t.Errorf("expected coarse type 'screen', got '%s'", mq.Type)
	}
	if got := sheet.RulesByMediaType("screen"); len(got) != 1 {
		t.Errorf("expected rule reachable via 'screen' query, got %d", len(got))
	}
	if got := sheet.RulesByMediaType(css.MediaAll); len(got) != 1 {
		t.Errorf("expected rule reachable via the all query, got %d", len(got))
	}
}

func TestParser_NestingFlattens(t *testing.T) {
	sheet := parse(t, `.card { color: red; & .title { font-weight: bold; } > .badge { color: blue; } }`)

	rules := sheet.Rules()
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	if rules[0].Selector != ".card" || rules[0].ParentID != -1 {
		t.Errorf("parent rule wrong: %q parent %d", rules[0].Selector, rules[0].ParentID)
	}
	if rules[1].Selector != ".card .title" {
		t.Errorf("expected '.card .title', got '%s'", rules[1].Selector)
	}
	if rules[1].ParentID != rules[0].ID {
		t.Errorf("expected parent link to %d, got %d", rules[0].ID, rules[1].ParentID)
	}
	if rules[2].Selector != ".card > .badge" {
		t.Errorf("expected '.card > .badge', got '%s'", rules[2].Selector)
	}
	for i, r := range rules {
		if r.ParentID >= r.ID {
			t.Errorf("rule %d: parent %d does not precede child %d", i, r.ParentID, r.ID)
		}
	}
}

func TestParser_BareDeclarationsInNestedMedia(t *testing.T) {
	sheet := parse(t, `.menu { color: black; @media print { color: gray; } }`)

	rules := sheet.Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[1].Selector != ".menu" {
		t.Errorf("expected nested group to target '.menu', got '%s'", rules[1].Selector)
	}
	if rules[1].MediaQueryID < 0 {
		t.Error("expected nested group rule to carry a media query")
	}
	if d, ok := rules[1].Get("color"); !ok || d.Value != "gray" {
		t.Errorf("expected gray, got %+v", d)
	}
}

func TestParser_Charset(t *testing.T) {
	sheet := parse(t, "@charset \"utf-8\";\np { color: red; }")
	if sheet.Charset != "utf-8" {
		t.Errorf("expected charset 'utf-8', got '%s'", sheet.Charset)
	}

	// anywhere but the very beginning it is not a charset declaration
	sheet = parse(t, "p { color: red; }\n@charset \"utf-8\";")
	if sheet.Charset != "" {
		t.Errorf("expected no charset, got '%s'", sheet.Charset)
	}
}

func TestParser_FontFaceInsideMediaHoisted(t *testing.T) {
	sheet := parse(t, `@media print { @font-face { font-family: Prn; src: url(prn.woff); } }`)

	if len(sheet.Rules()) != 0 {
		t.Fatalf("expected no plain rules, got %d", len(sheet.Rules()))
	}
	ats := sheet.AtRules()
	if len(ats) != 1 {
		t.Fatalf("expected 1 at-rule, got %d", len(ats))
	}
	at := ats[0]
	if at.Type != css.AtFontFace {
		t.Errorf("expected font_face type, got %s", at.Type)
	}
	if len(at.Declarations) != 2 {
		t.Errorf("expected 2 descriptor declarations, got %d", len(at.Declarations))
	}
}

func TestParser_VendorPrefixedKeyframes(t *testing.T) {
	sheet := parse(t, `@-webkit-keyframes spin { from { opacity: 0; } to { opacity: 1; } }`)

	ats := sheet.AtRules()
	if len(ats) != 1 {
		t.Fatalf("expected 1 at-rule, got %d", len(ats))
	}
	at := ats[0]
	if at.Type != css.AtKeyframes {
		t.Errorf("expected keyframes type, got %s", at.Type)
	}
	if at.Header != "@-webkit-keyframes spin" {
		t.Errorf("unexpected header '%s'", at.Header)
	}
	if len(at.Blocks) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(at.Blocks))
	}
	if at.Blocks[0].Prelude != "from" || at.Blocks[1].Prelude != "to" {
		t.Errorf("unexpected frame preludes: '%s', '%s'", at.Blocks[0].Prelude, at.Blocks[1].Prelude)
	}
}

func TestParser_LayerBlockQualifies(t *testing.T) {
	sheet := parse(t, `@layer base { p { color: red; } }`)

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	out := sheet.Render()
	if !strings.Contains(out, "@layer base {") {
		t.Errorf("expected rendered layer wrapper, got:\n%s", out)
	}
}

func TestParser_CustomProperties(t *testing.T) {
	sheet := parse(t, `:root { --brand-color: #ff0000; } a { color: var(--brand-color); }`)

	rules := sheet.Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	d, ok := rules[0].Get("--brand-color")
	if !ok {
		t.Fatal("expected custom property declaration")
	}
	if d.Value != "#ff0000" {
		t.Errorf("expected '#ff0000', got '%s'", d.Value)
	}
}

func TestParser_CommentsAreWhitespace(t *testing.T) {
	sheet := parse(t, `p { margin: 10px/*gap*/20px; /* color: blue; */ }`)

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	d, ok := rules[0].Get("margin")
	if !ok {
		t.Fatal("expected margin declaration")
	}
	if d.Value != "10px 20px" {
		t.Errorf("expected '10px 20px', got '%s'", d.Value)
	}
	if len(rules[0].Declarations) != 1 {
		t.Errorf("commented-out declaration leaked: %d declarations", len(rules[0].Declarations))
	}
}

func TestParser_StringsKeepDelimiters(t *testing.T) {
	sheet := parse(t, `q { quotes: "{" "}"; content: "a;b"; }`)

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if d, _ := rules[0].Get("quotes"); d.Value != `"{" "}"` {
		t.Errorf("unexpected quotes value '%s'", d.Value)
	}
	if d, _ := rules[0].Get("content"); d.Value != `"a;b"` {
		t.Errorf("unexpected content value '%s'", d.Value)
	}
}

func TestParser_StrictEmptyValue(t *testing.T) {
	_, err := css.NewParser(nil).Parse("p { color: ; background: blue; }", css.Options{RaiseErrors: true})
	if err == nil {
		t.Fatal("expected strict mode to raise")
	}
	pe, ok := css.AsParseError(err)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Kind != css.ErrEmptyValue {
		t.Errorf("expected empty_value, got %s", pe.Kind)
	}
	if pe.Line != 1 {
		t.Errorf("expected line 1, got %d", pe.Line)
	}
	if !strings.Contains(pe.Message, "color") {
		t.Errorf("expected message to name the property, got '%s'", pe.Message)
	}
}

func TestParser_LenientCollectsInDocumentOrder(t *testing.T) {
	input := "p { color: }\n.a { margin }\nq { font-size: 10px; }"
	sheet := parse(t, input)

	probs := sheet.Problems()
	if len(probs) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(probs))
	}
	if probs[0].Kind != css.ErrEmptyValue || probs[0].Line != 1 {
		t.Errorf("unexpected first problem: %v", probs[0])
	}
	if probs[1].Kind != css.ErrMalformedDeclaration || probs[1].Line != 2 {
		t.Errorf("unexpected second problem: %v", probs[1])
	}
	if len(sheet.Rules()) != 3 {
		t.Errorf("expected all 3 rules kept, got %d", len(sheet.Rules()))
	}
}

func TestParser_RaiseKindsFilter(t *testing.T) {
	input := "p { color: }"
	opts := css.Options{RaiseKinds: map[css.ErrorKind]bool{css.ErrEmptyValue: true}}
	if _, err := css.NewParser(nil).Parse(input, opts); err == nil {
		t.Error("expected enabled kind to raise without RaiseErrors")
	}

	opts = css.Options{RaiseErrors: true, RaiseKinds: map[css.ErrorKind]bool{css.ErrEmptyValue: false}}
	sheet, err := css.NewParser(nil).Parse(input, opts)
	if err != nil {
		t.Fatalf("expected disabled kind to stay tolerated, got %v", err)
	}
	if len(sheet.Problems()) != 1 {
		t.Errorf("expected the problem to be recorded, got %d", len(sheet.Problems()))
	}
}

func TestParser_UnclosedBlock(t *testing.T) {
	sheet := parse(t, "p { color: red;")
	probs := sheet.Problems()
	if len(probs) != 1 || probs[0].Kind != css.ErrUnclosedBlock {
		t.Fatalf("expected one unclosed_block problem, got %v", probs)
	}
	if d, ok := sheet.Rules()[0].Get("color"); !ok || d.Value != "red" {
		t.Error("expected declarations recovered from the unclosed block")
	}

	sheet, err := css.NewParser(nil).Parse("p { color: red;", css.Options{FixBraces: true, RaiseErrors: true})
	if err != nil {
		t.Fatalf("fix braces should suppress unclosed_block: %v", err)
	}
	if len(sheet.Problems()) != 0 {
		t.Errorf("expected no problems with fix braces, got %d", len(sheet.Problems()))
	}
}

func TestParser_MalformedMedia(t *testing.T) {
	sheet := parse(t, "@media { p { color: red; } }")
	probs := sheet.Problems()
	if len(probs) != 1 || probs[0].Kind != css.ErrMalformedAtRule {
		t.Fatalf("expected malformed_at_rule, got %v", probs)
	}
}

func TestParser_UTF8(t *testing.T) {
	input := ".日本語 { content: \"témoin ß\"; }"
	sheet := parse(t, input)

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Selector != ".日本語" {
		t.Errorf("unexpected selector '%s'", rules[0].Selector)
	}
	if d, _ := rules[0].Get("content"); d.Value != "\"témoin ß\"" {
		t.Errorf("unexpected value '%s'", d.Value)
	}
}

func TestParser_ImportDisabledDropsStatement(t *testing.T) {
	sheet := parse(t, `@import url("base.css") screen;`+"\np { color: red; }")

	if ats := sheet.AtRules(); len(ats) != 0 {
		t.Fatalf("expected the disabled import dropped, got %d at-rules", len(ats))
	}
	rules := sheet.Rules()
	if len(rules) != 1 || rules[0].Selector != "p" {
		t.Fatalf("expected the following rule kept, got %d rules", len(rules))
	}
	if errs := sheet.ImportErrors(); errs != nil {
		t.Errorf("dropping a disabled import is not an error, got %v", errs)
	}
}

func TestParser_SupportsQualifier(t *testing.T) {
	sheet := parse(t, `@supports (display:grid) { main { display: grid; } }`)

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	out := sheet.Render()
	if !strings.Contains(out, "@supports (display: grid) {") {
		t.Errorf("expected canonical supports wrapper, got:\n%s", out)
	}
}

func TestParser_CaptureFilter(t *testing.T) {
	input := `@viewport { width: device-width; } @page { margin: 1cm; } p { color: red; }`

	sheet := parse(t, input)
	if len(sheet.AtRules()) != 2 {
		t.Errorf("expected both at-rules kept by default, got %d", len(sheet.AtRules()))
	}

	sheet, err := css.NewParser(nil).Parse(input, css.Options{Capture: []string{"page"}})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	ats := sheet.AtRules()
	if len(ats) != 1 || ats[0].Type != css.AtPage {
		t.Fatalf("expected only @page captured, got %d at-rules", len(ats))
	}
}
