package processor

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/wharflab/fnlint/internal/directive"
	"github.com/wharflab/fnlint/internal/rules"
)

// Names of the pseudo-rules reporting problems with directives themselves.
const (
	UnusedDirectiveRule  = "unused-directive"
	InvalidDirectiveRule = "invalid-directive"
)

// InlineDirectiveFilter applies `// fnlint-disable...` comments.
//
// Directives are parsed per file from Context.FileSources. Problems with
// the directives (malformed comments, unknown rule names and, when
// configured, directives that suppressed nothing) are collected and returned
// by AdditionalViolations after Process has run.
type InlineDirectiveFilter struct {
	validator directive.RuleValidator

	mu         sync.Mutex
	additional []rules.Violation
}

// NewInlineDirectiveFilter creates an inline directive filter. A nil
// validator accepts every rule name.
func NewInlineDirectiveFilter(validator directive.RuleValidator) *InlineDirectiveFilter {
	return &InlineDirectiveFilter{validator: validator}
}

// Name returns the processor's identifier.
func (p *InlineDirectiveFilter) Name() string {
	return "inline-directive-filter"
}

// Process removes violations suppressed by directives.
func (p *InlineDirectiveFilter) Process(violations []rules.Violation, ctx *Context) []rules.Violation {
	if ctx.Config != nil && !ctx.Config.InlineDirectives.Enabled {
		return violations
	}

	byFile := make(map[string][]rules.Violation)
	for _, v := range violations {
		byFile[v.Location.File] = append(byFile[v.Location.File], v)
	}
	for file := range ctx.FileSources {
		if _, ok := byFile[file]; !ok {
			byFile[file] = nil
		}
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	slices.Sort(files)

	warnUnused := ctx.Config != nil && ctx.Config.InlineDirectives.WarnUnused
	result := make([]rules.Violation, 0, len(violations))
	for _, file := range files {
		sm := ctx.GetSourceMap(file)
		if sm == nil {
			result = append(result, byFile[file]...)
			continue
		}

		parsed := directive.Parse(sm, p.validator)
		filtered := directive.Filter(byFile[file], parsed.Directives)
		result = append(result, filtered.Violations...)

		for _, e := range parsed.Errors {
			p.add(rules.NewViolation(
				rules.NewLineLocation(file, e.Line+1), InvalidDirectiveRule, "invalid",
				fmt.Sprintf("Invalid directive: %s", e.Message), rules.SeverityWarning,
			).WithSourceCode(e.RawText))
		}
		if warnUnused {
			for _, d := range filtered.UnusedDirectives {
				p.add(rules.NewViolation(
					rules.NewLineLocation(file, d.Line+1), UnusedDirectiveRule, "unused",
					unusedMessage(d), rules.SeverityWarning,
				).WithSourceCode(d.RawText))
			}
		}
	}
	return result
}

func unusedMessage(d directive.Directive) string {
	if len(d.Rules) == 0 {
		return "Unused fnlint-disable directive (no problems were reported)."
	}
	return fmt.Sprintf("Unused fnlint-disable directive (no problems were reported from %s).", strings.Join(d.Rules, ", "))
}

func (p *InlineDirectiveFilter) add(v rules.Violation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.additional = append(p.additional, v)
}

// AdditionalViolations returns the diagnostics about directives collected
// by Process.
func (p *InlineDirectiveFilter) AdditionalViolations() []rules.Violation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.additional)
}
