// Package config loads the tool configuration from YAML and prepares the
// logger and parser options from it.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"csskit/css"
)

// cleanFileName strips path separators, platform-reserved characters and
// leading dots from a file name.
func cleanFileName(in string) string {
	out := strings.TrimLeft(strings.Map(func(sym rune) rune {
		if sym == 0 || strings.ContainsRune(invalidNameRunes+string(os.PathSeparator)+string(os.PathListSeparator), sym) {
			return -1
		}
		return sym
	}, in), ".")
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}

type (
	// ParserConfig maps one-to-one onto css.Options.
	ParserConfig struct {
		BaseURI        string   `yaml:"base_uri,omitempty"`
		BaseDir        string   `yaml:"base_dir,omitempty"`
		AbsolutePaths  bool     `yaml:"absolute_paths"`
		Imports        bool     `yaml:"imports"`
		AllowedSchemes []string `yaml:"allowed_schemes,omitempty"`
		Strict         bool     `yaml:"strict"`
		Raise          []string `yaml:"raise,omitempty"`
		FixBraces      bool     `yaml:"fix_braces"`
		Capture        []string `yaml:"capture,omitempty"`
	}

	// OutputConfig controls post-parse processing before rendering.
	OutputConfig struct {
		Merge  bool   `yaml:"merge"`
		Dedup  bool   `yaml:"dedup"`
		Colors string `yaml:"colors,omitempty"`
	}

	Config struct {
		Version int           `yaml:"version"`
		Parser  ParserConfig  `yaml:"parser"`
		Output  OutputConfig  `yaml:"output"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version: 1,
		Parser: ParserConfig{
			Imports: true,
		},
		Logging: LoggingConfig{
			ConsoleLogger: LoggerConfig{Level: "normal"},
			FileLogger:    LoggerConfig{Level: "none", Mode: "append"},
		},
	}
}

// LoadConfiguration reads the configuration from the file at the given
// path on top of the defaults. Unknown fields are rejected.
func LoadConfiguration(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	// we want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported configuration version %d", cfg.Version)
	}
	return cfg, nil
}

// Options converts the parser section into css.Options. Import resolution
// hooks are supplied by the caller since they may need a logger.
func (pc *ParserConfig) Options(resolver css.ImportResolver, rewriter css.URIRewriter) (css.Options, error) {
	opts := css.Options{
		BaseURI:       pc.BaseURI,
		BaseDir:       pc.BaseDir,
		AbsolutePaths: pc.AbsolutePaths,
		Import:        pc.Imports,
		Resolver:      resolver,
		Rewriter:      rewriter,
		RaiseErrors:   pc.Strict,
		FixBraces:     pc.FixBraces,
		Capture:       pc.Capture,
	}
	if len(pc.AllowedSchemes) > 0 {
		opts.ImportPolicy = &css.ImportPolicy{AllowedSchemes: pc.AllowedSchemes}
	}
	if len(pc.Raise) > 0 {
		opts.RaiseErrors = true
		opts.RaiseKinds = make(map[css.ErrorKind]bool, len(pc.Raise))
		for _, name := range pc.Raise {
			kind, err := css.ParseErrorKind(name)
			if err != nil {
				return css.Options{}, fmt.Errorf("parser.raise: %w", err)
			}
			opts.RaiseKinds[kind] = true
		}
	}
	return opts, nil
}
