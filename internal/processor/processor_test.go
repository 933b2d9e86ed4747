package processor

import (
	"testing"

	"github.com/wharflab/fnlint/internal/config"
	"github.com/wharflab/fnlint/internal/directive"
	"github.com/wharflab/fnlint/internal/rules"
)

func violationAt(file string, line int, rule string) rules.Violation {
	return rules.NewViolation(rules.NewLineLocation(file, line), rule, "generic", "msg", rules.SeverityWarning)
}

func TestChain(t *testing.T) {
	violations := []rules.Violation{
		violationAt("a.js", 1, "no-let"),
		violationAt("b.js", 2, "no-this-expression"),
	}

	// Chain that filters out all violations
	chain := NewChain(&mockProcessor{name: "filter-all", filter: func(v rules.Violation) bool { return false }})
	ctx := NewContext(config.Default(), nil)

	result := chain.Process(violations, ctx)
	if len(result) != 0 {
		t.Errorf("expected 0 violations, got %d", len(result))
	}
}

func TestDeduplication(t *testing.T) {
	at := func(line, col int, rule string) rules.Violation {
		return rules.NewViolation(rules.NewRangeLocation("a.js", line, col, line, col+4), rule, "generic", "msg", rules.SeverityWarning)
	}
	violations := []rules.Violation{
		at(1, 0, "no-this-expression"),
		at(1, 0, "no-this-expression"), // duplicate
		at(1, 9, "no-this-expression"), // same line, different column
		at(2, 0, "no-this-expression"), // different line
		at(1, 0, "no-let"),             // different rule
	}

	result := NewDeduplication().Process(violations, NewContext(config.Default(), nil))
	if len(result) != 4 {
		t.Errorf("expected 4 unique violations, got %d", len(result))
	}
}

func TestSorting(t *testing.T) {
	violations := []rules.Violation{
		violationAt("b.js", 2, "no-let"),
		violationAt("a.js", 1, "no-let"),
		violationAt("b.js", 1, "no-let"),
	}

	result := NewSorting().Process(violations, NewContext(config.Default(), nil))
	if len(result) != 3 {
		t.Fatalf("expected 3 violations, got %d", len(result))
	}
	if result[0].Location.File != "a.js" {
		t.Errorf("first violation should be in a.js, got %s", result[0].Location.File)
	}
	if result[1].Location.File != "b.js" || result[1].Location.Start.Line != 1 {
		t.Errorf("second violation should be b.js:1, got %s:%d", result[1].Location.File, result[1].Location.Start.Line)
	}
	if result[2].Location.File != "b.js" || result[2].Location.Start.Line != 2 {
		t.Errorf("third violation should be b.js:2, got %s:%d", result[2].Location.File, result[2].Location.Start.Line)
	}
}

func TestEnableFilter(t *testing.T) {
	off := violationAt("a.js", 3, "no-let")
	off.Severity = rules.SeverityOff
	violations := []rules.Violation{
		violationAt("a.js", 1, "no-loop-statement"),
		violationAt("a.js", 2, "no-this-expression"),
		off,
		violationAt("a.js", 4, "no-expression-statement"),
	}

	cfg := config.Default()
	cfg.Rules.Exclude = []string{"no-loop-*"}
	cfg.Rules.Set("no-expression-statement", config.RuleConfig{Severity: "off"})

	result := NewEnableFilter().Process(violations, NewContext(cfg, nil))
	if len(result) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(result))
	}
	if result[0].Rule != "no-this-expression" {
		t.Errorf("expected no-this-expression, got %s", result[0].Rule)
	}
}

func TestPathExclusionFilter(t *testing.T) {
	violations := []rules.Violation{
		violationAt("src/main.js", 1, "no-let"),
		violationAt("test/main.test.js", 1, "no-let"),
		violationAt("vendor/lib.js", 1, "no-let"),
		violationAt("vendor/lib.js", 1, "no-this-expression"),
	}

	cfg := config.Default()
	cfg.Rules.Set("no-let", config.RuleConfig{
		Exclude: config.ExcludeConfig{Paths: []string{"test/**", "vendor/**"}},
	})

	result := NewPathExclusionFilter().Process(violations, NewContext(cfg, nil))
	if len(result) != 2 {
		t.Fatalf("expected 2 violations (test and vendor excluded for no-let), got %d", len(result))
	}
	if result[0].Location.File != "src/main.js" {
		t.Errorf("expected src/main.js, got %s", result[0].Location.File)
	}
}

func TestInlineDirectiveFilter(t *testing.T) {
	source := []byte("// fnlint-disable-next-line no-let\nlet a = 1;\nlet b = 2; // fnlint-disable-line no-this-expression\n// fnlint-disable-next-line no-such-rule\nvar c;\n")
	violations := []rules.Violation{
		violationAt("a.js", 2, "no-let"),
		violationAt("a.js", 3, "no-let"),
	}

	cfg := config.Default()
	cfg.InlineDirectives.WarnUnused = true
	known := func(rule string) bool { return rule == "no-let" || rule == "no-this-expression" }

	p := NewInlineDirectiveFilter(directive.RuleValidator(known))
	result := p.Process(violations, NewContext(cfg, map[string][]byte{"a.js": source}))

	if len(result) != 1 || result[0].Line() != 3 {
		t.Fatalf("expected only the line 3 violation to remain, got %v", result)
	}

	extra := p.AdditionalViolations()
	if len(extra) != 2 {
		t.Fatalf("expected 2 directive diagnostics, got %d: %v", len(extra), extra)
	}
	rulesSeen := map[string]int{}
	for _, v := range extra {
		rulesSeen[v.Rule] = v.Line()
	}
	if rulesSeen[InvalidDirectiveRule] != 4 {
		t.Errorf("expected invalid directive on line 4, got %v", rulesSeen)
	}
	if rulesSeen[UnusedDirectiveRule] != 3 {
		t.Errorf("expected unused directive on line 3, got %v", rulesSeen)
	}
}

func TestInlineDirectiveFilter_Disabled(t *testing.T) {
	source := []byte("// fnlint-disable-next-line\nlet a = 1;\n")
	violations := []rules.Violation{violationAt("a.js", 2, "no-let")}

	cfg := config.Default()
	cfg.InlineDirectives.Enabled = false

	p := NewInlineDirectiveFilter(nil)
	result := p.Process(violations, NewContext(cfg, map[string][]byte{"a.js": source}))
	if len(result) != 1 {
		t.Errorf("expected directives to be ignored, got %d violations", len(result))
	}
}

type mockProcessor struct {
	name   string
	filter func(rules.Violation) bool
}

func (m *mockProcessor) Name() string { return m.name }

func (m *mockProcessor) Process(violations []rules.Violation, _ *Context) []rules.Violation {
	return filterViolations(violations, m.filter)
}
