package processor

import (
	"github.com/wharflab/fnlint/internal/rules"
)

// EnableFilter removes violations for disabled rules.
// Filters out violations with severity="off" and respects Include/Exclude
// patterns from config. The engine does not run disabled rules; this keeps
// violations from other sources (e.g. directive diagnostics) in line.
type EnableFilter struct{}

// NewEnableFilter creates a new enable filter processor.
func NewEnableFilter() *EnableFilter {
	return &EnableFilter{}
}

// Name returns the processor's identifier.
func (p *EnableFilter) Name() string {
	return "enable-filter"
}

// Process filters out violations for disabled rules.
func (p *EnableFilter) Process(violations []rules.Violation, ctx *Context) []rules.Violation {
	return filterViolations(violations, func(v rules.Violation) bool {
		if v.Severity == rules.SeverityOff {
			return false
		}

		if cfg := ctx.ConfigForFile(v.Location.File); cfg != nil {
			if enabled := cfg.Rules.IsEnabled(v.Rule); enabled != nil {
				return *enabled
			}
			if cfg.Rules.IsOff(v.Rule) {
				return false
			}
		}

		return true
	})
}
