package cssurl_test

import (
	"testing"

	"go.uber.org/zap"

	"csskit/css"
	"csskit/cssurl"
)

func TestRewriter_SkipCases(t *testing.T) {
	rw := cssurl.NewRewriter()
	for _, ref := range []string{
		"data:image/png;base64,AAAA",
		"#anchor",
		"/already/rooted.png",
		"https://cdn.example.com/x.png",
	} {
		if _, ok := rw.Rewrite("https://example.com/css/main.css", ref); ok {
			t.Errorf("expected %q left untouched", ref)
		}
	}
	if _, ok := rw.Rewrite("", "img.png"); ok {
		t.Error("expected no rewrite without a base")
	}
}

func TestRewriter_HTTPBase(t *testing.T) {
	rw := cssurl.NewRewriter()
	abs, ok := rw.Rewrite("https://example.com/css/main.css", "../img/logo.png")
	if !ok {
		t.Fatal("expected the relative reference rewritten")
	}
	if abs != "https://example.com/img/logo.png" {
		t.Errorf("unexpected result %q", abs)
	}
}

func TestRewriter_FileBase(t *testing.T) {
	rw := cssurl.NewRewriter()
	abs, ok := rw.Rewrite("file:///srv/css/main.css", "img/logo.png")
	if !ok {
		t.Fatal("expected the relative reference rewritten")
	}
	if abs != "file:///srv/css/img/logo.png" {
		t.Errorf("unexpected result %q", abs)
	}
}

func TestRewriter_AbsolutePathsOption(t *testing.T) {
	opts := css.Options{
		BaseURI:       "https://example.com/css/main.css",
		AbsolutePaths: true,
		Rewriter:      cssurl.NewRewriter(),
	}
	sheet, err := css.NewParser(zap.NewNop()).Parse(
		`p { background: url(img.png); content: url("data:image/png;base64,AAAA"); }`, opts)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	r := sheet.Rules()[0]
	if d, _ := r.Get("background"); d.Value != `url("https://example.com/css/img.png")` {
		t.Errorf("unexpected background '%s'", d.Value)
	}
	if d, _ := r.Get("content"); d.Value != `url("data:image/png;base64,AAAA")` {
		t.Errorf("data URI must stay as written, got '%s'", d.Value)
	}
}
