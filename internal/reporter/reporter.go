// Package reporter provides output formatters for lint results.
//
// The package supports multiple output formats:
//   - text: Human-readable terminal output with colors and syntax highlighting
//   - json: Machine-readable JSON output
//   - sarif: Static Analysis Results Interchange Format for CI/CD integration
//   - github-actions: Native GitHub Actions workflow annotations
//   - markdown: Concise markdown tables
package reporter

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/wharflab/fnlint/internal/rules"
)

// ReportMetadata contains contextual information about the lint run.
type ReportMetadata struct {
	// FilesScanned is the total number of files that were scanned.
	FilesScanned int
	// RulesEnabled is the total number of rules that were active (not "off").
	RulesEnabled int
	// FileErrors lists the files that could not be fully linted, one
	// entry per file.
	FileErrors []FileError
}

// Reporter formats and outputs lint violations.
type Reporter interface {
	// Report writes violations to the configured output.
	// The metadata parameter provides context like files scanned and rules enabled.
	Report(violations []rules.Violation, sources map[string][]byte, metadata ReportMetadata) error
}

// SortViolations returns a copy of violations sorted by file, position, rule
// and message id for stable output.
func SortViolations(violations []rules.Violation) []rules.Violation {
	sorted := slices.Clone(violations)
	slices.SortStableFunc(sorted, rules.CompareViolations)
	return sorted
}

// Format represents an output format type.
type Format string

const (
	// FormatText is human-readable terminal output.
	FormatText Format = "text"
	// FormatJSON is machine-readable JSON output.
	FormatJSON Format = "json"
	// FormatSARIF is Static Analysis Results Interchange Format.
	FormatSARIF Format = "sarif"
	// FormatGitHubActions is GitHub Actions workflow command output.
	FormatGitHubActions Format = "github-actions"
	// FormatMarkdown is concise markdown tables.
	FormatMarkdown Format = "markdown"
)

// formatEntry describes one output format: the names --format accepts for
// it and how to build its reporter.
type formatEntry struct {
	format  Format
	aliases []string
	build   func(Options) Reporter
}

// formats is ordered as listed in error messages.
var formats = []formatEntry{
	{format: FormatText, aliases: []string{""}, build: newTextReporter},
	{format: FormatJSON, build: func(o Options) Reporter { return NewJSONReporter(o.Writer) }},
	{format: FormatSARIF, build: func(o Options) Reporter {
		return NewSARIFReporter(o.Writer, o.ToolName, o.ToolVersion, o.ToolURI).WithRuleDescriptions(o.RuleDescriptions)
	}},
	{format: FormatGitHubActions, aliases: []string{"github"}, build: func(o Options) Reporter {
		return NewGitHubActionsReporter(o.Writer)
	}},
	{format: FormatMarkdown, aliases: []string{"md"}, build: func(o Options) Reporter { return NewMarkdownReporter(o.Writer) }},
}

func lookupFormat(name string) (formatEntry, bool) {
	for _, e := range formats {
		if string(e.format) == name || slices.Contains(e.aliases, name) {
			return e, true
		}
	}
	return formatEntry{}, false
}

// FormatNames returns the canonical format names.
func FormatNames() []string {
	names := make([]string, len(formats))
	for i, e := range formats {
		names[i] = string(e.format)
	}
	return names
}

// ParseFormat parses a format name or alias. Names are case sensitive.
func ParseFormat(s string) (Format, error) {
	e, ok := lookupFormat(s)
	if !ok {
		return "", fmt.Errorf("unknown format: %q (valid: %s)", s, strings.Join(FormatNames(), ", "))
	}
	return e.format, nil
}

// Options configures reporter creation.
type Options struct {
	// Format specifies the output format.
	Format Format

	// Writer is the output destination.
	Writer io.Writer

	// Color enables/disables colored output (text format only).
	// nil means auto-detect.
	Color *bool

	// ShowSource enables source code snippets (text format only).
	ShowSource bool

	// ToolVersion is included in SARIF output.
	ToolVersion string

	// ToolName is the tool name for SARIF output.
	ToolName string

	// ToolURI is the tool information URI for SARIF output.
	ToolURI string

	// RuleDescriptions maps rule names to their one-line descriptions
	// (SARIF rule metadata).
	RuleDescriptions map[string]string
}

// DefaultOptions returns sensible defaults for reporter options.
func DefaultOptions() Options {
	return Options{
		Format:      FormatText,
		Writer:      os.Stdout,
		Color:       nil, // auto-detect
		ShowSource:  true,
		ToolName:    defaultToolName,
		ToolURI:     defaultToolURI,
		ToolVersion: "dev",
	}
}

// New creates a reporter based on the format specified in options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	e, ok := lookupFormat(string(opts.Format))
	if !ok {
		return nil, fmt.Errorf("unknown format: %q", opts.Format)
	}
	return e.build(opts), nil
}

func newTextReporter(opts Options) Reporter {
	return &textReporterAdapter{
		reporter: NewTextReporter(TextOptions{
			Color: opts.Color,
			// Highlight when color is auto-detected (nil) or explicitly enabled
			SyntaxHighlight: opts.Color == nil || *opts.Color,
			ShowSource:      opts.ShowSource,
		}),
		writer: opts.Writer,
	}
}

// textReporterAdapter adapts TextReporter to the Reporter interface.
type textReporterAdapter struct {
	reporter *TextReporter
	writer   io.Writer
}

// Report implements Reporter.
func (a *textReporterAdapter) Report(violations []rules.Violation, sources map[string][]byte, metadata ReportMetadata) error {
	if err := a.reporter.Print(a.writer, violations, sources); err != nil {
		return err
	}
	return a.reporter.PrintSummary(a.writer, violations, metadata)
}

// GetWriter returns an io.Writer for the given output path.
// Supports "stdout", "stderr", or file paths.
func GetWriter(path string) (io.Writer, func() error, error) {
	switch path {
	case "stdout", "":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		return f, f.Close, nil
	}
}
