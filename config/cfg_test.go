package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"csskit/config"
	"csskit/css"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "csskit.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfiguration_Defaults(t *testing.T) {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("unexpected version %d", cfg.Version)
	}
	if !cfg.Parser.Imports {
		t.Error("imports should default on")
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" || cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadConfiguration_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
version: 1
parser:
  strict: true
  fix_braces: true
  capture: [page, viewport]
output:
  merge: true
  colors: rgb
`)
	cfg, err := config.LoadConfiguration(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Parser.Strict || !cfg.Parser.FixBraces {
		t.Errorf("parser overrides lost: %+v", cfg.Parser)
	}
	if len(cfg.Parser.Capture) != 2 {
		t.Errorf("unexpected capture list %v", cfg.Parser.Capture)
	}
	if !cfg.Output.Merge || cfg.Output.Colors != "rgb" {
		t.Errorf("output overrides lost: %+v", cfg.Output)
	}
}

func TestLoadConfiguration_RejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "version: 1\nparser:\n  no_such_knob: true\n")
	if _, err := config.LoadConfiguration(path); err == nil {
		t.Error("expected unknown field rejected")
	}
}

func TestLoadConfiguration_RejectsWrongVersion(t *testing.T) {
	path := writeConfig(t, "version: 2\n")
	if _, err := config.LoadConfiguration(path); err == nil {
		t.Error("expected version mismatch rejected")
	}
}

func TestParserConfig_Options(t *testing.T) {
	pc := config.ParserConfig{
		Strict:         true,
		Raise:          []string{"empty_value", "unclosed_block"},
		AllowedSchemes: []string{"https"},
	}
	opts, err := pc.Options(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.RaiseErrors {
		t.Error("strict should map to RaiseErrors")
	}
	if !opts.RaiseKinds[css.ErrEmptyValue] || !opts.RaiseKinds[css.ErrUnclosedBlock] {
		t.Errorf("raise list not mapped: %v", opts.RaiseKinds)
	}
	if opts.ImportPolicy == nil || len(opts.ImportPolicy.AllowedSchemes) != 1 {
		t.Errorf("allowed schemes not mapped: %+v", opts.ImportPolicy)
	}

	pc.Raise = []string{"no_such_kind"}
	if _, err := pc.Options(nil, nil); err == nil {
		t.Error("expected unknown raise kind rejected")
	}
}
