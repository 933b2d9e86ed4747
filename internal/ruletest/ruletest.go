// Package ruletest runs a rule over a fixture set under both dialects and
// checks each dialect's diagnostics against the fixture's expectations.
//
// Fixtures not marked dialect-specific must produce the same diagnostics
// under both dialects; a difference is reported as a divergence, which is
// how rules whose tree-shape assumptions only hold for one parser are
// caught.
package ruletest

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/dialect"
	"github.com/wharflab/fnlint/internal/dialect/legacy"
	"github.com/wharflab/fnlint/internal/dialect/modern"
	"github.com/wharflab/fnlint/internal/engine"
	"github.com/wharflab/fnlint/internal/fix"
	"github.com/wharflab/fnlint/internal/rules"
)

// fixtureFile is the file name fixtures are linted as.
const fixtureFile = "fixture.js"

// Expect is the expected outcome of one fixture under one dialect.
type Expect struct {
	// Messages are the expected message ids, in report order. Empty means
	// the code must be accepted without diagnostics.
	Messages []string
	// ParseError means the dialect must reject the source. No rule runs,
	// which is a different outcome from zero diagnostics.
	ParseError bool
	// Output, when set, is the source after applying every proposed fix.
	Output *string
}

// Valid expects no diagnostics.
func Valid() *Expect {
	return &Expect{}
}

// Invalid expects the given message ids, in order.
func Invalid(messageIDs ...string) *Expect {
	return &Expect{Messages: messageIDs}
}

// Unparsable expects the dialect to reject the source.
func Unparsable() *Expect {
	return &Expect{ParseError: true}
}

// Fixed sets the expected output after fixes.
func (e *Expect) Fixed(output string) *Expect {
	e.Output = &output
	return e
}

// Fixture is a source sample and its expected outcome.
type Fixture struct {
	Name string
	Code string
	// Options are raw rule options, resolved freshly for every run.
	Options map[string]any

	// Want applies to both dialects.
	Want *Expect
	// Permissive and Restricted override Want for one dialect. Setting
	// either marks the fixture dialect-specific. A dialect left with no
	// expectation does not run the fixture.
	Permissive *Expect
	Restricted *Expect
}

// DialectSpecific reports whether the fixture declares per-dialect
// expectations.
func (f Fixture) DialectSpecific() bool {
	return f.Permissive != nil || f.Restricted != nil
}

func (f Fixture) expect(level dialect.Level) *Expect {
	switch {
	case level == dialect.Permissive && f.Permissive != nil:
		return f.Permissive
	case level == dialect.Restricted && f.Restricted != nil:
		return f.Restricted
	}
	return f.Want
}

func (f Fixture) label(i int) string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("#%d", i)
}

// Dialects holds the two parsers fixtures run under. A nil parser is
// skipped.
type Dialects struct {
	Permissive dialect.Parser
	Restricted dialect.Parser
}

// DefaultDialects returns the tree-sitter and otto-backed parsers.
func DefaultDialects() Dialects {
	return Dialects{Permissive: modern.New(), Restricted: legacy.New()}
}

type side struct {
	level  dialect.Level
	parser dialect.Parser
}

// sides returns the configured dialects, permissive first.
func (d Dialects) sides() []side {
	var out []side
	if d.Permissive != nil {
		out = append(out, side{dialect.Permissive, d.Permissive})
	}
	if d.Restricted != nil {
		out = append(out, side{dialect.Restricted, d.Restricted})
	}
	return out
}

// FailureKind classifies harness failures.
type FailureKind int

const (
	// KindDefinition is a mismatch between the rule and its fixtures,
	// found before anything runs.
	KindDefinition FailureKind = iota
	// KindOptions is a fixture whose options the rule rejects.
	KindOptions
	// KindExpectation is a dialect outcome that differs from the fixture.
	KindExpectation
	// KindDivergence is a fixture the two dialects disagree on.
	KindDivergence
	// KindFault is a rule that could not process the fixture.
	KindFault
)

func (k FailureKind) String() string {
	switch k {
	case KindDefinition:
		return "definition"
	case KindOptions:
		return "options"
	case KindExpectation:
		return "expectation"
	case KindDivergence:
		return "divergence"
	case KindFault:
		return "fault"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Failure is one problem found by Run.
type Failure struct {
	Kind    FailureKind
	Fixture string
	// Dialect is empty for failures that are not about one dialect.
	Dialect string
	Message string
}

func (f Failure) String() string {
	var b strings.Builder
	b.WriteString(f.Kind.String())
	if f.Fixture != "" {
		fmt.Fprintf(&b, ": fixture %q", f.Fixture)
	}
	if f.Dialect != "" {
		fmt.Fprintf(&b, " [%s]", f.Dialect)
	}
	b.WriteString(": ")
	b.WriteString(f.Message)
	return b.String()
}

// Outcome is what one fixture produced under one dialect.
type Outcome struct {
	Fixture string
	Dialect string
	// ParseError is set when the dialect rejected the source.
	ParseError error
	// Fault is set when the rule could not process the source.
	Fault      error
	MessageIDs []string
	// Output is the source after applying every proposed fix.
	Output string
}

func (o Outcome) summary() string {
	switch {
	case o.ParseError != nil:
		return "parse error"
	case o.Fault != nil:
		return "fault"
	case len(o.MessageIDs) == 0:
		return "no diagnostics"
	default:
		return fmt.Sprintf("%d diagnostics %v", len(o.MessageIDs), o.MessageIDs)
	}
}

// Report collects the outcomes and failures of Run.
type Report struct {
	Rule     string
	Outcomes []Outcome
	Failures []Failure
}

// Failed reports whether any failure was recorded.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

func (r *Report) fail(kind FailureKind, fixture, dialectName, format string, args ...any) {
	r.Failures = append(r.Failures, Failure{
		Kind:    kind,
		Fixture: fixture,
		Dialect: dialectName,
		Message: fmt.Sprintf(format, args...),
	})
}

// Run runs rule over fixtures under each dialect, sequentially and in
// declaration order.
func Run(ruleName string, rule *rules.Rule, fixtures []Fixture, d Dialects) *Report {
	rep := &Report{Rule: ruleName}
	checkDefinition(rep, rule, fixtures, d)
	if rep.Failed() {
		return rep
	}

	for i, fx := range fixtures {
		name := fx.label(i)
		var outcomes []Outcome
		for _, s := range d.sides() {
			want := fx.expect(s.level)
			if want == nil {
				continue
			}
			out, ok := runFixture(rep, name, rule, fx, s.parser)
			if !ok {
				continue
			}
			rep.Outcomes = append(rep.Outcomes, out)
			outcomes = append(outcomes, out)
			check(rep, out, want)
		}
		if !fx.DialectSpecific() && len(outcomes) == 2 {
			diverge(rep, name, outcomes[0], outcomes[1])
		}
	}
	return rep
}

// RunAcrossDialects runs Run and reports every failure on tb.
func RunAcrossDialects(tb testing.TB, ruleName string, rule *rules.Rule, fixtures []Fixture, d Dialects) *Report {
	tb.Helper()
	rep := Run(ruleName, rule, fixtures, d)
	for _, f := range rep.Failures {
		tb.Errorf("%s: %s", ruleName, f)
	}
	return rep
}

func checkDefinition(rep *Report, rule *rules.Rule, fixtures []Fixture, d Dialects) {
	if rule == nil {
		rep.fail(KindDefinition, "", "", "rule is nil")
		return
	}
	if rule.Name() != rep.Rule {
		rep.fail(KindDefinition, "", "", "rule is named %q, not %q", rule.Name(), rep.Rule)
	}
	if d.Permissive == nil && d.Restricted == nil {
		rep.fail(KindDefinition, "", "", "no dialects")
	}

	messages := rule.Meta().Messages
	for i, fx := range fixtures {
		name := fx.label(i)
		if fx.Want == nil && !fx.DialectSpecific() {
			rep.fail(KindDefinition, name, "", "fixture has no expectation")
		}
		for _, want := range []*Expect{fx.Want, fx.Permissive, fx.Restricted} {
			if want == nil {
				continue
			}
			if want.ParseError && (len(want.Messages) > 0 || want.Output != nil) {
				rep.fail(KindDefinition, name, "", "a parse error expectation cannot carry messages or output")
			}
			for _, id := range want.Messages {
				if _, ok := messages[id]; !ok {
					rep.fail(KindDefinition, name, "", "unknown message id %q", id)
				}
			}
		}
	}
}

// runFixture lints one fixture with freshly resolved options.
func runFixture(rep *Report, name string, rule *rules.Rule, fx Fixture, p dialect.Parser) (Outcome, bool) {
	opts, err := rule.ResolveOptions(fx.Options)
	if err != nil {
		rep.fail(KindOptions, name, p.Name(), "%v", err)
		return Outcome{}, false
	}

	src := []byte(fx.Code)
	res, err := engine.LintSource(engine.SourceInput{
		File:   fixtureFile,
		Source: src,
		Parser: p,
		Rules:  []engine.RuleConfig{{Rule: rule, Options: opts, Severity: rules.SeverityError}},
	})
	if err != nil {
		rep.fail(KindFault, name, p.Name(), "%v", err)
		return Outcome{}, false
	}

	out := Outcome{
		Fixture:    name,
		Dialect:    p.Name(),
		ParseError: res.ParseError,
		Fault:      res.Fault,
		Output:     fx.Code,
	}
	fixes := make([]*fix.Fix, 0, len(res.Violations))
	for _, v := range res.Violations {
		out.MessageIDs = append(out.MessageIDs, v.MessageID)
		fixes = append(fixes, v.Fix)
	}
	if len(fixes) > 0 {
		out.Output = string(fix.Apply(src, fixes).Output)
	}
	return out, true
}

func check(rep *Report, out Outcome, want *Expect) {
	switch {
	case out.Fault != nil:
		rep.fail(KindFault, out.Fixture, out.Dialect, "%v", out.Fault)
		return
	case want.ParseError && out.ParseError == nil:
		rep.fail(KindExpectation, out.Fixture, out.Dialect, "want parse error, got %s", out.summary())
		return
	case want.ParseError:
		return
	case out.ParseError != nil:
		rep.fail(KindExpectation, out.Fixture, out.Dialect, "unexpected parse error: %v", out.ParseError)
		return
	}

	if !slices.Equal(out.MessageIDs, want.Messages) {
		rep.fail(KindExpectation, out.Fixture, out.Dialect, "want %d diagnostics %v, got %d %v",
			len(want.Messages), want.Messages, len(out.MessageIDs), out.MessageIDs)
	}
	if want.Output != nil && out.Output != *want.Output {
		rep.fail(KindExpectation, out.Fixture, out.Dialect, "fixed output differs:\n%s", Diff(*want.Output, out.Output))
	}
}

// diverge compares the outcomes of a fixture shared by both dialects.
func diverge(rep *Report, name string, a, b Outcome) {
	same := (a.ParseError == nil) == (b.ParseError == nil) &&
		(a.Fault == nil) == (b.Fault == nil) &&
		slices.Equal(a.MessageIDs, b.MessageIDs)
	if same {
		return
	}
	rep.fail(KindDivergence, name, "", "%s reported %s, %s reported %s",
		a.Dialect, a.summary(), b.Dialect, b.summary())
}

// Parse parses code with p, failing tb on error.
func Parse(tb testing.TB, p dialect.Parser, code string) *ast.Node {
	tb.Helper()
	root, err := p.Parse(fixtureFile, []byte(code))
	if err != nil {
		tb.Fatalf("parse with %s: %v", p.Name(), err)
	}
	return root
}

// Visit runs rule over every node of root, in the engine's walk order,
// with options resolved from opts. It fails tb on any rule error.
func Visit(tb testing.TB, rule *rules.Rule, root *ast.Node, src string, opts map[string]any) []rules.Finding {
	tb.Helper()
	resolved, err := rule.ResolveOptions(opts)
	if err != nil {
		tb.Fatalf("resolve options: %v", err)
	}

	var findings []rules.Finding
	var visitErr error
	ast.Walk(root, func(n *ast.Node) bool {
		if visitErr != nil {
			return false
		}
		rep, err := rule.Visit(n, rules.Input{File: fixtureFile, Source: []byte(src), Options: resolved})
		if err != nil {
			visitErr = err
			return false
		}
		findings = append(findings, rep.Findings...)
		return true
	})
	if visitErr != nil {
		tb.Fatalf("visit: %v", visitErr)
	}
	return findings
}
