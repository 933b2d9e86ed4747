// Package engine is the host that runs rules over JavaScript files.
//
// The pipeline: parse with a dialect → pre-order walk → Rule.Visit for every
// rule handling the node type → one rules.Violation per finding. Callers run
// [LintSource] for a single file or [LintFiles] for many in parallel, then
// apply their own processor chain (see [Processors]) to the results.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/dialect"
	"github.com/wharflab/fnlint/internal/rules"
	"github.com/wharflab/fnlint/internal/sourcemap"
)

// ErrNoParser is returned by LintSource when the input names no dialect.
var ErrNoParser = errors.New("no dialect parser")

// RuleConfig is one rule as configured for a run.
type RuleConfig struct {
	Rule *rules.Rule
	// Options are resolved with Rule.ResolveOptions; the zero value means
	// the rule's defaults.
	Options rules.Options
	// Severity is reported on every violation of the rule.
	Severity rules.Severity
}

// SourceInput configures a single invocation of [LintSource].
type SourceInput struct {
	// File is used for violation locations.
	File string
	// Source is the file content.
	Source []byte
	// Parser is the dialect the file is parsed with.
	Parser dialect.Parser
	// Rules are run in order; their violations are sorted afterwards.
	Rules []RuleConfig
}

// FileResult contains the outcome of linting one file.
type FileResult struct {
	File   string
	Source []byte

	// Violations are sorted by position, then rule name.
	Violations []rules.Violation

	// ParseError is set when the dialect rejected the file; no rules ran.
	ParseError error

	// Fault is set when a rule could not process the file: a
	// *rules.TraversalFault, or an *rules.InvalidRuleDefinitionError raised
	// at report time. Violations found before the fault are kept.
	Fault error
}

// Failed reports whether the file could not be fully linted.
func (r *FileResult) Failed() bool {
	return r.ParseError != nil || r.Fault != nil
}

// LintSource parses and lints one file.
// The returned error is reserved for invalid input; problems with the file
// itself are reported in the FileResult.
func LintSource(in SourceInput) (*FileResult, error) {
	if in.Parser == nil {
		return nil, fmt.Errorf("lint %s: %w", in.File, ErrNoParser)
	}
	res := &FileResult{File: in.File, Source: in.Source}

	root, err := in.Parser.Parse(in.File, in.Source)
	if err != nil {
		res.ParseError = err
		return res, nil
	}

	byType := indexRules(in.Rules)
	sm := sourcemap.New(in.Source)
	info := dialect.Describe(in.Parser)

	ast.Walk(root, func(n *ast.Node) bool {
		if res.Fault != nil {
			return false
		}
		for _, rc := range byType[n.Type] {
			rep, err := rc.Rule.Visit(n, rules.Input{
				File:    in.File,
				Source:  in.Source,
				Dialect: info,
				Options: rc.Options,
			})
			if err != nil {
				log.Printf("engine: %s: %v", in.File, err)
				res.Fault = err
				return false
			}
			for _, f := range rep.Findings {
				res.Violations = append(res.Violations, violation(in.File, sm, rc, f))
			}
		}
		return true
	})

	slices.SortStableFunc(res.Violations, rules.CompareViolations)
	return res, nil
}

// indexRules groups rules by the node types they handle, keeping their order.
func indexRules(rcs []RuleConfig) map[ast.NodeType][]RuleConfig {
	byType := make(map[ast.NodeType][]RuleConfig)
	for _, rc := range rcs {
		if rc.Rule == nil || rc.Severity == rules.SeverityOff {
			continue
		}
		for _, t := range rc.Rule.NodeTypes() {
			byType[t] = append(byType[t], rc)
		}
	}
	return byType
}

func violation(file string, sm *sourcemap.SourceMap, rc RuleConfig, f rules.Finding) rules.Violation {
	startLine, startCol := sm.Position(f.Node.Range.Start)
	endLine, endCol := sm.Position(f.Node.Range.End)
	loc := rules.NewRangeLocation(file, startLine+1, startCol, endLine+1, endCol)

	v := rules.NewViolation(loc, rc.Rule.Name(), f.MessageID, f.Message, rc.Severity)
	if url := rc.Rule.Meta().Docs.URL; url != "" {
		v = v.WithDocURL(url)
	}
	if f.Fix != nil {
		v = v.WithFix(f.Fix)
	}
	return v
}

// Options configures [LintFiles].
type Options struct {
	// Concurrency limits how many files are linted at once.
	// Zero or less means no limit.
	Concurrency int
}

// LintFiles lints inputs in parallel. Results are in input order. The first
// invalid input or a cancelled context stops the run.
func LintFiles(ctx context.Context, inputs []SourceInput, opts Options) ([]*FileResult, error) {
	results := make([]*FileResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := LintSource(in)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
