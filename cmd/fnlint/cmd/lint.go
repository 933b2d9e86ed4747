package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/fnlint/internal/config"
	"github.com/wharflab/fnlint/internal/dialect"
	"github.com/wharflab/fnlint/internal/discovery"
	"github.com/wharflab/fnlint/internal/engine"
	"github.com/wharflab/fnlint/internal/fileval"
	"github.com/wharflab/fnlint/internal/processor"
	"github.com/wharflab/fnlint/internal/reporter"
	"github.com/wharflab/fnlint/internal/rules"
	"github.com/wharflab/fnlint/internal/version"
)

// Exit codes
const (
	ExitSuccess     = 0 // No violations (or below fail-level threshold)
	ExitViolations  = 1 // Violations found at or above fail-level
	ExitConfigError = 2 // Config, rule definition, parse or I/O error
)

func lintCommand() *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "Lint JavaScript files",
		ArgsUsage: "[FILE|DIR|GLOB...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default: auto-discover)",
			},
			&cli.StringFlag{
				Name:    "dialect",
				Aliases: []string{"d"},
				Usage:   "Parser dialect: modern, legacy",
				Sources: cli.EnvVars("FNLINT_DIALECT"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: " + strings.Join(reporter.FormatNames(), ", "),
				Sources: cli.EnvVars("FNLINT_FORMAT", "FNLINT_OUTPUT_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path: stdout, stderr, or file path",
				Sources: cli.EnvVars("FNLINT_OUTPUT_PATH"),
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output",
				Sources: cli.EnvVars("NO_COLOR"),
			},
			&cli.BoolFlag{
				Name:  "hide-source",
				Usage: "Hide source code snippets",
			},
			&cli.StringFlag{
				Name:    "fail-level",
				Usage:   "Minimum severity to cause non-zero exit: error, warning, info, style, none",
				Sources: cli.EnvVars("FNLINT_OUTPUT_FAIL_LEVEL"),
			},
			&cli.StringSliceFlag{
				Name:  "rule",
				Usage: "Run only these rules (name or glob, can be repeated)",
			},
			&cli.StringSliceFlag{
				Name:  "ignore-rule",
				Usage: "Disable these rules (name or glob, can be repeated)",
			},
			&cli.StringSliceFlag{
				Name:    "exclude",
				Usage:   "Glob pattern to exclude files (can be repeated)",
				Sources: cli.EnvVars("FNLINT_EXCLUDE"),
			},
			&cli.BoolFlag{
				Name:    "no-inline-directives",
				Usage:   "Disable processing of fnlint-disable comments",
				Sources: cli.EnvVars("FNLINT_NO_INLINE_DIRECTIVES"),
			},
			&cli.BoolFlag{
				Name:  "warn-unused-directives",
				Usage: "Warn about fnlint-disable comments that suppress nothing",
			},
			&cli.BoolFlag{
				Name:    "fix",
				Usage:   "Apply fixes and rewrite files in place",
				Sources: cli.EnvVars("FNLINT_FIX"),
			},
			&cli.StringSliceFlag{
				Name:  "fix-rule",
				Usage: "Only fix these rules; also enables rules with fix = \"explicit\" (can be repeated)",
			},
		},
		Action: runLint,
	}
}

// runLint is the action handler for the lint command.
func runLint(ctx context.Context, cmd *cli.Command) error {
	reg, defErrs := loadRegistry()

	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		inputs = []string{"."}
	}

	excludes := cmd.StringSlice("exclude")
	if len(excludes) == 0 {
		excludes = discovery.DefaultExcludes()
	}
	files, err := discovery.Discover(inputs, discovery.Options{ExcludePatterns: excludes})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to discover files: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no JavaScript files found in %s\n", strings.Join(inputs, ", "))
		return cli.Exit("", ExitConfigError)
	}

	// One configuration applies to the whole run: the one closest to the
	// first file.
	cfg, err := loadConfig(cmd, files[0].Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	res, err := lintFiles(ctx, files, cfg, reg, fixOptions{
		enabled: cmd.Bool("fix"),
		rules:   cmd.StringSlice("fix-rule"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	for _, fe := range res.fileErrors {
		fmt.Fprintf(os.Stderr, "Error: %v\n", fe)
	}
	if res.fixed > 0 {
		fmt.Fprintf(os.Stderr, "Fixed %d issues in %d files\n", res.fixed, res.filesFixed)
	}

	code, err := writeReport(cmd, cfg, res)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	if len(defErrs) > 0 || len(res.fileErrors) > 0 {
		code = ExitConfigError
	}
	if code != ExitSuccess {
		return cli.Exit("", code)
	}
	return nil
}

// loadConfig loads the configuration for target, applying CLI overrides.
func loadConfig(cmd *cli.Command, target string) (*config.Config, error) {
	cfg, err := config.LoadWithOverrides(target, cmd.String("config"), cliOverrides(cmd))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("rule") {
		cfg.Rules.Include = append(cfg.Rules.Include, cmd.StringSlice("rule")...)
		cfg.Rules.Exclude = append(cfg.Rules.Exclude, "*")
	}
	if cmd.IsSet("ignore-rule") {
		cfg.Rules.Exclude = append(cfg.Rules.Exclude, cmd.StringSlice("ignore-rule")...)
	}
	return cfg, nil
}

// cliOverrides maps flags onto config keys, so they pass the same
// validation as the config file.
func cliOverrides(cmd *cli.Command) map[string]any {
	overrides := map[string]any{}
	output := map[string]any{}
	if cmd.IsSet("dialect") {
		overrides["dialect"] = cmd.String("dialect")
	}
	if cmd.IsSet("format") {
		output["format"] = cmd.String("format")
	}
	if cmd.IsSet("output") {
		output["path"] = cmd.String("output")
	}
	if cmd.Bool("hide-source") {
		output["show-source"] = false
	}
	if cmd.IsSet("fail-level") {
		output["fail-level"] = cmd.String("fail-level")
	}
	if len(output) > 0 {
		overrides["output"] = output
	}

	directives := map[string]any{}
	if cmd.IsSet("no-inline-directives") {
		directives["enabled"] = !cmd.Bool("no-inline-directives")
	}
	if cmd.IsSet("warn-unused-directives") {
		directives["warn-unused"] = cmd.Bool("warn-unused-directives")
	}
	if len(directives) > 0 {
		overrides["inline-directives"] = directives
	}
	return overrides
}

type fixOptions struct {
	enabled bool
	// rules limits fixing to the named rules when non-empty.
	rules []string
}

// lintResults is the aggregated outcome of linting all files.
type lintResults struct {
	violations   []rules.Violation
	sources      map[string][]byte
	filesScanned int
	rulesEnabled int
	// fileErrors are parse errors and rule faults, one per failed file.
	fileErrors []reporter.FileError
	fixed      int
	filesFixed int
	// descriptions maps enabled rule names to their one-line docs.
	descriptions map[string]string
}

// lintFiles runs the whole pipeline: configure rules, lint in parallel,
// post-process, and optionally apply fixes.
func lintFiles(
	ctx context.Context, files []discovery.File, cfg *config.Config, reg *rules.Registry, fixOpts fixOptions,
) (*lintResults, error) {
	parser, err := dialect.Lookup(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	if c, ok := parser.(interface{ Close() }); ok {
		defer c.Close()
	}

	configured, errs := engine.Configure(reg, cfg)
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid rule configuration: %w", errors.Join(errs...))
	}

	res := &lintResults{
		sources:      make(map[string][]byte, len(files)),
		filesScanned: len(files),
		rulesEnabled: len(configured),
		descriptions: make(map[string]string, len(configured)),
	}
	for _, rc := range configured {
		res.descriptions[rc.Rule.Name()] = rc.Rule.Meta().Docs.Description
	}

	inputs := make([]engine.SourceInput, 0, len(files))
	for _, f := range files {
		if err := fileval.ValidateFile(f.Path, cfg.FileValidation.MaxFileSize); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
			}
			res.fileErrors = append(res.fileErrors, reporter.NewFileError(f.Path, err))
			continue
		}
		src, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
		}
		res.sources[f.Path] = src
		inputs = append(inputs, engine.SourceInput{File: f.Path, Source: src, Parser: parser, Rules: configured})
	}

	violations, fileErrors, err := analyze(ctx, inputs, cfg, reg, res.sources)
	if err != nil {
		return nil, err
	}
	res.violations = violations
	res.fileErrors = append(res.fileErrors, fileErrors...)

	if fixOpts.enabled {
		fixed, err := applyFixes(res, cfg, fixOpts.rules)
		if err != nil {
			return nil, err
		}
		if err := relint(ctx, res, fixed, parser, configured, cfg, reg); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// analyze lints inputs and runs the violation processors over the result.
// sources must hold the content of every input.
func analyze(
	ctx context.Context, inputs []engine.SourceInput, cfg *config.Config, reg *rules.Registry, sources map[string][]byte,
) ([]rules.Violation, []reporter.FileError, error) {
	results, err := engine.LintFiles(ctx, inputs, engine.Options{Concurrency: cfg.Concurrency})
	if err != nil {
		return nil, nil, err
	}

	var raw []rules.Violation
	var fileErrors []reporter.FileError
	for _, r := range results {
		if r.ParseError != nil {
			fileErrors = append(fileErrors, reporter.NewFileError(r.File, r.ParseError))
		} else if r.Fault != nil {
			fileErrors = append(fileErrors, reporter.NewFileError(r.File, r.Fault))
		}
		raw = append(raw, r.Violations...)
	}

	chain, inlineFilter := engine.Processors(reg)
	procCtx := processor.NewContext(cfg, sources)
	violations := chain.Process(raw, procCtx)

	// Diagnostics about the directives themselves skip the filters.
	if extra := inlineFilter.AdditionalViolations(); len(extra) > 0 {
		extra = processor.NewPathNormalization().Process(extra, procCtx)
		extra = processor.NewSnippetAttachment().Process(extra, procCtx)
		violations = reporter.SortViolations(append(violations, extra...))
	}
	return violations, fileErrors, nil
}

// relint replaces the violations of rewritten files with those of their
// new content, so reported positions and snippets match the files on disk.
func relint(
	ctx context.Context, res *lintResults, fixed []string,
	parser dialect.Parser, configured []engine.RuleConfig, cfg *config.Config, reg *rules.Registry,
) error {
	if len(fixed) == 0 {
		return nil
	}
	inputs := make([]engine.SourceInput, 0, len(fixed))
	sources := make(map[string][]byte, len(fixed))
	for _, path := range fixed {
		sources[path] = res.sources[path]
		inputs = append(inputs, engine.SourceInput{File: path, Source: res.sources[path], Parser: parser, Rules: configured})
	}
	violations, fileErrors, err := analyze(ctx, inputs, cfg, reg, sources)
	if err != nil {
		return err
	}

	kept := res.violations[:0]
	for _, v := range res.violations {
		if _, rewritten := sources[filepath.FromSlash(v.Location.File)]; !rewritten {
			kept = append(kept, v)
		}
	}
	res.violations = reporter.SortViolations(append(kept, violations...))

	keptErrors := res.fileErrors[:0]
	for _, fe := range res.fileErrors {
		if _, rewritten := sources[fe.File]; !rewritten {
			keptErrors = append(keptErrors, fe)
		}
	}
	res.fileErrors = append(keptErrors, fileErrors...)
	return nil
}

// applyFixes rewrites each file with its applicable fixes, drops the
// violations that were fixed, and returns the paths it rewrote.
func applyFixes(res *lintResults, cfg *config.Config, only []string) ([]string, error) {
	byFile := make(map[string][]rules.Violation)
	var files []string
	for _, v := range res.violations {
		if _, ok := byFile[v.Location.File]; !ok {
			files = append(files, v.Location.File)
		}
		byFile[v.Location.File] = append(byFile[v.Location.File], v)
	}

	var remaining []rules.Violation
	var rewritten []string
	for _, file := range files {
		violations := byFile[file]
		path := filepath.FromSlash(file)
		src, ok := res.sources[path]
		if !ok {
			remaining = append(remaining, violations...)
			continue
		}

		candidates := violations
		if len(only) > 0 {
			candidates = nil
			for _, v := range violations {
				if slices.Contains(only, v.Rule) {
					candidates = append(candidates, v)
				} else {
					remaining = append(remaining, v)
				}
			}
		}

		fr := engine.ApplyFixes(src, candidates, cfg, only)
		remaining = append(remaining, fr.Remaining...)
		if len(fr.Fixed) == 0 {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, fr.Output, info.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		res.sources[path] = fr.Output
		res.fixed += len(fr.Fixed)
		res.filesFixed++
		rewritten = append(rewritten, path)
	}

	res.violations = reporter.SortViolations(remaining)
	return rewritten, nil
}

// writeReport formats the results and returns the exit code they call for.
func writeReport(cmd *cli.Command, cfg *config.Config, res *lintResults) (int, error) {
	format, err := reporter.ParseFormat(cfg.Output.Format)
	if err != nil {
		return ExitConfigError, err
	}

	writer, closeWriter, err := reporter.GetWriter(cfg.Output.Path)
	if err != nil {
		return ExitConfigError, err
	}
	defer func() {
		if err := closeWriter(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output: %v\n", err)
		}
	}()

	opts := reporter.DefaultOptions()
	opts.Format = format
	opts.Writer = writer
	opts.ShowSource = cfg.Output.ShowSource
	opts.ToolVersion = version.RawVersion()
	opts.RuleDescriptions = res.descriptions
	if (cmd.IsSet("no-color") && cmd.Bool("no-color")) || !isTerminal(writer) {
		noColor := false
		opts.Color = &noColor
	}

	rep, err := reporter.New(opts)
	if err != nil {
		return ExitConfigError, err
	}

	metadata := reporter.ReportMetadata{
		FilesScanned: res.filesScanned,
		RulesEnabled: res.rulesEnabled,
		FileErrors:   res.fileErrors,
	}
	if err := rep.Report(res.violations, res.sources, metadata); err != nil {
		return ExitConfigError, fmt.Errorf("failed to write output: %w", err)
	}

	return determineExitCode(res.violations, cfg.Output.FailLevel)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// determineExitCode maps the reported violations onto an exit code.
func determineExitCode(violations []rules.Violation, failLevel string) (int, error) {
	if failLevel == "none" {
		return ExitSuccess, nil
	}
	threshold, err := rules.ParseSeverity(failLevel)
	if err != nil || threshold == rules.SeverityOff {
		return ExitConfigError, fmt.Errorf("invalid fail-level %q", failLevel)
	}
	for _, v := range violations {
		if v.Severity.IsAtLeast(threshold) {
			return ExitViolations, nil
		}
	}
	return ExitSuccess, nil
}
