package engine

import (
	"slices"

	"github.com/wharflab/fnlint/internal/config"
	"github.com/wharflab/fnlint/internal/fix"
	"github.com/wharflab/fnlint/internal/rules"
)

// FixResult is the outcome of ApplyFixes for one file.
type FixResult struct {
	// Output is the rewritten source.
	Output []byte
	// Fixed holds the violations whose fixes were applied.
	Fixed []rules.Violation
	// Remaining holds the other violations: without a fix, held back by the
	// rule's fix mode, or conflicting with an earlier fix.
	Remaining []rules.Violation
}

// ApplyFixes applies the fixes attached to the violations of one file.
//
// A rule's fix mode (config.RuleConfig.Fix) decides whether its fixes are
// eligible: "never" keeps them back, "explicit" requires the rule to be
// named in explicit, "always" (the default) applies them. Overlapping fixes
// are resolved by fix.Apply: the first by position wins and the others stay
// in Remaining.
func ApplyFixes(src []byte, violations []rules.Violation, cfg *config.Config, explicit []string) FixResult {
	var (
		fixes []*fix.Fix
		owner []int
		res   FixResult
	)
	for i, v := range violations {
		if v.Fix == nil || !fixAllowed(v.Rule, cfg, explicit) {
			continue
		}
		fixes = append(fixes, v.Fix)
		owner = append(owner, i)
	}

	applied := fix.Apply(src, fixes)
	res.Output = applied.Output

	fixed := make(map[int]bool, len(applied.Applied))
	for _, i := range applied.Applied {
		fixed[owner[i]] = true
	}
	for i, v := range violations {
		if fixed[i] {
			res.Fixed = append(res.Fixed, v)
		} else {
			res.Remaining = append(res.Remaining, v)
		}
	}
	return res
}

func fixAllowed(rule string, cfg *config.Config, explicit []string) bool {
	mode := config.FixModeAlways
	if cfg != nil {
		mode = cfg.Rules.GetFixMode(rule)
	}
	switch mode {
	case config.FixModeNever:
		return false
	case config.FixModeExplicit:
		return slices.Contains(explicit, rule)
	default:
		return true
	}
}
