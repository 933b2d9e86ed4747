package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/fnlint/internal/config"
	"github.com/wharflab/fnlint/internal/discovery"
	"github.com/wharflab/fnlint/internal/fileval"
	"github.com/wharflab/fnlint/internal/rules"
	"github.com/wharflab/fnlint/internal/rules/all"
)

func testRegistry(t *testing.T) *rules.Registry {
	t.Helper()
	reg := rules.NewRegistry()
	require.Empty(t, all.Load(reg))
	return reg
}

func writeSource(t *testing.T, dir, name, content string) discovery.File {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return discovery.File{Path: path, ConfigRoot: dir}
}

type ruleLine struct {
	Rule string
	Line int
}

func ruleLines(vs []rules.Violation) []ruleLine {
	out := make([]ruleLine, 0, len(vs))
	for _, v := range vs {
		out = append(out, ruleLine{v.Rule, v.Location.Start.Line})
	}
	return out
}

func TestLintFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.js", "let a = 1;\nconst b = this;\n")
	b := writeSource(t, dir, "b.js", "const sum = [1, 2].reduce((x, y) => x + y, 0);\nwhile (sum) {}\n")

	res, err := lintFiles(context.Background(), []discovery.File{a, b}, config.Default(), testRegistry(t), fixOptions{})
	require.NoError(t, err)

	assert.Equal(t, []ruleLine{
		{"no-let", 1},
		{"no-this-expression", 2},
		{"no-loop-statement", 2},
	}, ruleLines(res.violations))
	assert.Equal(t, 2, res.filesScanned)
	assert.Equal(t, 3, res.rulesEnabled, "no-expression-statement is off by default")
	assert.Empty(t, res.fileErrors)
	assert.Equal(t, "let a = 1;", res.violations[0].SourceCode)
	assert.Equal(t, "Disallow mutable variables.", res.descriptions["no-let"])
}

func TestLintFilesFix(t *testing.T) {
	dir := t.TempDir()
	f := writeSource(t, dir, "a.js", "let a = 1;\nconst b = this;\nlet c;\n")

	res, err := lintFiles(context.Background(), []discovery.File{f}, config.Default(), testRegistry(t), fixOptions{enabled: true})
	require.NoError(t, err)

	got, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "const a = 1;\nconst b = this;\nlet c;\n", string(got))
	assert.Equal(t, 1, res.fixed)
	assert.Equal(t, 1, res.filesFixed)
	assert.Equal(t, []ruleLine{
		{"no-this-expression", 2},
		{"no-let", 3},
	}, ruleLines(res.violations))
}

func TestLintFilesFixReportsPositionsInFixedSource(t *testing.T) {
	dir := t.TempDir()
	f := writeSource(t, dir, "a.js", "let a = 1; const b = this;\n")

	res, err := lintFiles(context.Background(), []discovery.File{f}, config.Default(), testRegistry(t), fixOptions{enabled: true})
	require.NoError(t, err)

	got, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	require.Equal(t, "const a = 1; const b = this;\n", string(got))

	require.Len(t, res.violations, 1)
	v := res.violations[0]
	assert.Equal(t, "no-this-expression", v.Rule)
	assert.Equal(t, 1, v.Location.Start.Line)
	assert.Equal(t, strings.Index(string(got), "this"), v.Location.Start.Column)
	assert.Equal(t, "const a = 1; const b = this;", v.SourceCode)
}

func TestLintFilesFixOnlySelectedRules(t *testing.T) {
	dir := t.TempDir()
	f := writeSource(t, dir, "a.js", "let a = 1;\n")

	res, err := lintFiles(context.Background(), []discovery.File{f}, config.Default(), testRegistry(t),
		fixOptions{enabled: true, rules: []string{"no-this-expression"}})
	require.NoError(t, err)

	got, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "let a = 1;\n", string(got))
	assert.Zero(t, res.fixed)
	assert.Len(t, res.violations, 1)
}

func TestLintFilesFixModeNever(t *testing.T) {
	dir := t.TempDir()
	f := writeSource(t, dir, "a.js", "let a = 1;\n")
	cfg := config.Default()
	cfg.Rules.Set("no-let", config.RuleConfig{Fix: config.FixModeNever})

	res, err := lintFiles(context.Background(), []discovery.File{f}, cfg, testRegistry(t), fixOptions{enabled: true})
	require.NoError(t, err)
	assert.Zero(t, res.fixed)
	assert.Len(t, res.violations, 1)
}

func TestLintFilesInlineDirectives(t *testing.T) {
	dir := t.TempDir()
	f := writeSource(t, dir, "a.js", "// fnlint-disable-next-line no-let\nlet a = 1;\nlet b = 2;\n")

	res, err := lintFiles(context.Background(), []discovery.File{f}, config.Default(), testRegistry(t), fixOptions{})
	require.NoError(t, err)
	assert.Equal(t, []ruleLine{{"no-let", 3}}, ruleLines(res.violations))

	cfg := config.Default()
	cfg.InlineDirectives.Enabled = false
	res, err = lintFiles(context.Background(), []discovery.File{f}, cfg, testRegistry(t), fixOptions{})
	require.NoError(t, err)
	assert.Len(t, res.violations, 2)
}

func TestLintFilesParseErrors(t *testing.T) {
	dir := t.TempDir()
	broken := writeSource(t, dir, "broken.js", "var = ;\n")
	modern := writeSource(t, dir, "modern.js", "let a = 1;\n")
	ok := writeSource(t, dir, "ok.js", "var a = this;\n")

	cfg := config.Default()
	cfg.Dialect = "legacy"
	res, err := lintFiles(context.Background(), []discovery.File{broken, modern, ok}, cfg, testRegistry(t), fixOptions{})
	require.NoError(t, err)

	assert.Len(t, res.fileErrors, 2, "legacy rejects let as well as the syntax error")
	assert.Equal(t, []ruleLine{{"no-this-expression", 1}}, ruleLines(res.violations))
}

func TestLintFilesValidation(t *testing.T) {
	dir := t.TempDir()
	big := writeSource(t, dir, "bundle.js", "let a = 1; let b = 2; let c = 3;\n")
	small := writeSource(t, dir, "small.js", "let a;\n")

	cfg := config.Default()
	cfg.FileValidation.MaxFileSize = 16
	res, err := lintFiles(context.Background(), []discovery.File{big, small}, cfg, testRegistry(t), fixOptions{})
	require.NoError(t, err)

	require.Len(t, res.fileErrors, 1)
	var tooLarge *fileval.FileTooLargeError
	assert.ErrorAs(t, res.fileErrors[0], &tooLarge)
	assert.Equal(t, []ruleLine{{"no-let", 1}}, ruleLines(res.violations))
}

func TestLintFilesConfigErrors(t *testing.T) {
	dir := t.TempDir()
	f := writeSource(t, dir, "a.js", "let a = 1;\n")

	t.Run("unknown dialect", func(t *testing.T) {
		cfg := config.Default()
		cfg.Dialect = "es2099"
		_, err := lintFiles(context.Background(), []discovery.File{f}, cfg, testRegistry(t), fixOptions{})
		assert.ErrorContains(t, err, `unknown dialect "es2099"`)
	})

	t.Run("invalid rule options", func(t *testing.T) {
		cfg := config.Default()
		cfg.Rules.Set("no-let", config.RuleConfig{Options: map[string]any{"allowLocalMutation": "sometimes"}})
		_, err := lintFiles(context.Background(), []discovery.File{f}, cfg, testRegistry(t), fixOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, rules.ErrInvalidOptions)
	})

	t.Run("malformed ignore pattern", func(t *testing.T) {
		cfg := config.Default()
		cfg.Rules.Set("no-let", config.RuleConfig{Options: map[string]any{"ignorePattern": "[mutable"}})
		_, err := lintFiles(context.Background(), []discovery.File{f}, cfg, testRegistry(t), fixOptions{})
		require.ErrorIs(t, err, rules.ErrInvalidOptions)
		assert.ErrorContains(t, err, `invalid ignorePattern "[mutable"`)
	})

	t.Run("missing file", func(t *testing.T) {
		missing := discovery.File{Path: filepath.Join(dir, "missing.js")}
		_, err := lintFiles(context.Background(), []discovery.File{missing}, config.Default(), testRegistry(t), fixOptions{})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestDetermineExitCode(t *testing.T) {
	warning := []rules.Violation{
		rules.NewViolation(rules.NewLineLocation("a.js", 1), "no-this-expression", "unexpected", "m", rules.SeverityWarning),
	}

	tests := []struct {
		name       string
		violations []rules.Violation
		failLevel  string
		want       int
		wantErr    bool
	}{
		{"clean", nil, "style", ExitSuccess, false},
		{"warning at style", warning, "style", ExitViolations, false},
		{"warning at warning", warning, "warning", ExitViolations, false},
		{"warning below error", warning, "error", ExitSuccess, false},
		{"none", warning, "none", ExitSuccess, false},
		{"invalid", nil, "loud", ExitConfigError, true},
		{"off is not a level", nil, "off", ExitConfigError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := determineExitCode(tt.violations, tt.failLevel)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil, "error: %v", err)
		})
	}
}

// runApp runs the CLI with args and returns its exit code.
func runApp(t *testing.T, args ...string) int {
	t.Helper()
	app := NewApp()
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}
	err := app.Run(context.Background(), append([]string{"fnlint"}, args...))
	if err == nil {
		return ExitSuccess
	}
	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr), "unexpected error: %v", err)
	return exitErr.ExitCode()
}

func TestLintCommand(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "app.js", "let count = 0;\nconst self = this;\n")
	out := filepath.Join(dir, "report.json")

	code := runApp(t, "lint", "--format", "json", "--output", out, dir)
	assert.Equal(t, ExitViolations, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var report struct {
		Summary struct {
			Total   int `json:"total"`
			Fixable int `json:"fixable"`
		} `json:"summary"`
		FilesScanned int `json:"files_scanned"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 2, report.Summary.Total)
	assert.Equal(t, 1, report.Summary.Fixable)
	assert.Equal(t, 1, report.FilesScanned)
}

func TestLintCommandRuleSelection(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "app.js", "let count = 0;\n")
	out := filepath.Join(dir, "report.json")

	code := runApp(t, "lint", "--format", "json", "--output", out, "--rule", "no-this-*", dir)
	assert.Equal(t, ExitSuccess, code)

	code = runApp(t, "lint", "--format", "json", "--output", out, "--fail-level", "none", dir)
	assert.Equal(t, ExitSuccess, code)
}

func TestLintCommandErrors(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.txt")

	assert.Equal(t, ExitConfigError, runApp(t, "lint", "--output", out, dir), "no files")

	writeSource(t, dir, "app.js", "var = ;\n")
	assert.Equal(t, ExitConfigError, runApp(t, "lint", "--output", out, dir), "parse error")
	assert.Equal(t, ExitConfigError, runApp(t, "lint", "--output", out, "--format", "yaml", dir), "bad format")
}
