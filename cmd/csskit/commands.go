package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"csskit/config"
	"csskit/css"
	"csskit/csscolor"
	"csskit/state"
)

func parseSource(env *state.LocalEnv, fname string) (*css.Stylesheet, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("unable to read source '%s': %w", fname, err)
	}

	opts := env.Opts
	if opts.BaseURI == "" && opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(fname)
	}

	sheet, err := css.NewParser(env.Log).ParseBytes(data, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing '%s': %w", fname, err)
	}
	for _, p := range sheet.Problems() {
		env.Log.Warn("Problem in stylesheet", zap.String("source", fname), zap.String("problem", p.Error()))
	}
	if ierr := sheet.ImportErrors(); ierr != nil {
		env.Log.Warn("Some imports were not resolved", zap.String("source", fname), zap.Error(ierr))
	}
	return sheet, nil
}

// outputTarget derives the output file from DESTINATION: a directory gets
// the sanitized source name, empty means stdout.
func outputTarget(dest, source string) string {
	if dest == "" {
		return ""
	}
	if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		return filepath.Join(dest, config.CleanFileName(filepath.Base(source)))
	}
	return dest
}

func writeOutput(env *state.LocalEnv, sheet *css.Stylesheet, dest string) error {
	if dest == "" {
		_, err := sheet.WriteTo(os.Stdout)
		return err
	}
	if !env.Overwrite {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("destination '%s' already exists, use --overwrite", dest)
		}
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("unable to create destination '%s': %w", dest, err)
	}
	_, werr := sheet.WriteTo(f)
	return multierr.Append(werr, f.Close())
}

func applyOutputConfig(env *state.LocalEnv, sheet *css.Stylesheet, colors string, merge, dedup bool) error {
	if merge || env.Cfg.Output.Merge {
		sheet.Merge()
	}
	if dedup || env.Cfg.Output.Dedup {
		sheet.DedupRules()
	}
	if colors == "" {
		colors = env.Cfg.Output.Colors
	}
	if colors != "" {
		target, err := csscolor.ParseNotation(colors)
		if err != nil {
			return err
		}
		csscolor.RewriteStylesheet(sheet, target)
	}
	return nil
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.NArg() < 1 {
		return fmt.Errorf("no source specified")
	}
	source := cmd.Args().Get(0)
	sheet, err := parseSource(env, source)
	if err != nil {
		return err
	}
	if err := applyOutputConfig(env, sheet, cmd.String("colors"), cmd.Bool("merge"), cmd.Bool("dedup")); err != nil {
		return err
	}
	return writeOutput(env, sheet, outputTarget(cmd.Args().Get(1), source))
}

// runMerge concatenates all sources into one document, applies the
// cascade and renders the result.
func runMerge(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.NArg() < 1 {
		return fmt.Errorf("no source specified")
	}

	args := cmd.Args().Slice()
	dest := ""
	if len(args) > 1 && !strings.HasSuffix(args[len(args)-1], ".css") {
		dest = args[len(args)-1]
		args = args[:len(args)-1]
	}

	sheet := css.NewStylesheet(env.Opts)
	for _, fname := range args {
		sub, err := parseSource(env, fname)
		if err != nil {
			return err
		}
		if err := sheet.AddBlock(sub.Render()); err != nil {
			return fmt.Errorf("combining '%s': %w", fname, err)
		}
	}
	sheet.Merge()
	if err := applyOutputConfig(env, sheet, cmd.String("colors"), false, false); err != nil {
		return err
	}
	return writeOutput(env, sheet, outputTarget(dest, args[0]))
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.NArg() < 1 {
		return fmt.Errorf("no source specified")
	}

	var total int
	for _, fname := range cmd.Args().Slice() {
		sheet, err := parseSource(env, fname)
		if err != nil {
			return err
		}
		for _, p := range sheet.Problems() {
			fmt.Fprintf(os.Stdout, "%s: %s\n", fname, p.Error())
			total++
		}
	}
	if total > 0 {
		return fmt.Errorf("found %d problem(s)", total)
	}
	env.Log.Info("No problems found")
	return nil
}
