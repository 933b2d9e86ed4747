package processor

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/wharflab/fnlint/internal/rules"
)

// PathExclusionFilter removes violations based on per-rule path exclusions.
// Uses config.Rules.GetExcludePaths() to get exclusion patterns for each rule.
type PathExclusionFilter struct{}

// NewPathExclusionFilter creates a new path exclusion filter processor.
func NewPathExclusionFilter() *PathExclusionFilter {
	return &PathExclusionFilter{}
}

// Name returns the processor's identifier.
func (p *PathExclusionFilter) Name() string {
	return "path-exclusion-filter"
}

// Process filters out violations for files that match exclusion patterns.
func (p *PathExclusionFilter) Process(violations []rules.Violation, ctx *Context) []rules.Violation {
	return filterViolations(violations, func(v rules.Violation) bool {
		cfg := ctx.ConfigForFile(v.Location.File)
		if cfg == nil {
			return true
		}
		for _, pattern := range cfg.Rules.GetExcludePaths(v.Rule) {
			matched, err := doublestar.Match(pattern, v.Location.File)
			if err != nil {
				// Invalid pattern - skip this check
				continue
			}
			if matched {
				return false
			}
		}
		return true
	})
}
