package config

import (
	"maps"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FixMode controls when auto-fixes are applied for a rule.
type FixMode string

const (
	// FixModeNever disables fixes even with --fix.
	FixModeNever FixMode = "never"

	// FixModeExplicit requires --fix-rule to apply.
	FixModeExplicit FixMode = "explicit"

	// FixModeAlways applies with --fix (default).
	FixModeAlways FixMode = "always"
)

// RuleConfig represents per-rule configuration.
// Can be specified in TOML as:
//
//	[rules.no-let]
//	severity = "warning"
//	fix = "always"
//	# Rule-specific options are flattened at this level
//	allowLocalMutation = true
//	ignorePattern = ["^mutable"]
//
// or, for severity only, as a shorthand:
//
//	[rules]
//	no-this-expression = "off"
type RuleConfig struct {
	// Severity overrides the rule's recommended severity.
	// Use "off" to disable the rule.
	Severity string `json:"severity,omitempty" koanf:"severity"`

	// Fix controls when auto-fixes are applied for this rule.
	Fix FixMode `json:"fix,omitempty" koanf:"fix"`

	// Exclude contains path patterns where this rule should not run.
	Exclude ExcludeConfig `json:"exclude" koanf:"exclude"`

	// Options contains rule-specific configuration options.
	Options map[string]any `json:"-" koanf:",remain"`
}

// ExcludeConfig defines file exclusion patterns for a rule.
type ExcludeConfig struct {
	// Paths contains glob patterns for files to exclude.
	Paths []string `json:"paths,omitempty" koanf:"paths"`
}

// RulesConfig contains rule selection and per-rule configuration.
//
// Example TOML:
//
//	[rules]
//	include = ["no-*"]              # Enable rules by glob
//	exclude = ["no-loop-statement"] # Disable specific rules
//
//	[rules.no-let]
//	severity = "error"
//	allowLocalMutation = true
type RulesConfig struct {
	// Include explicitly enables rules.
	Include []string `json:"include,omitempty" koanf:"include"`

	// Exclude explicitly disables rules.
	Exclude []string `json:"exclude,omitempty" koanf:"exclude"`

	// PerRule holds the [rules.<name>] tables, keyed by rule name.
	PerRule map[string]RuleConfig `json:"-" koanf:"-"`
}

// reservedRuleKeys are the [rules] keys that are not rule names.
var reservedRuleKeys = map[string]bool{"include": true, "exclude": true}

// Get returns the configuration for a specific rule.
// Returns nil if no configuration exists for the rule.
func (rc *RulesConfig) Get(rule string) *RuleConfig {
	if rc == nil {
		return nil
	}
	if cfg, ok := rc.PerRule[rule]; ok {
		return &cfg
	}
	return nil
}

// Set stores configuration for a rule.
func (rc *RulesConfig) Set(rule string, cfg RuleConfig) {
	if rc.PerRule == nil {
		rc.PerRule = make(map[string]RuleConfig)
	}
	rc.PerRule[rule] = cfg
}

// Names returns the names of the rules with a [rules.<name>] table, sorted.
func (rc *RulesConfig) Names() []string {
	if rc == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(rc.PerRule))
}

// IsEnabled checks if a rule is enabled based on Include/Exclude patterns.
// Returns nil if no configuration specifies enabled/disabled (use rule default).
// Include takes precedence over Exclude.
func (rc *RulesConfig) IsEnabled(rule string) *bool {
	if rc == nil {
		return nil
	}

	if matchesAnyPattern(rule, rc.Include) {
		return boolPtr(true)
	}

	if matchesAnyPattern(rule, rc.Exclude) {
		return boolPtr(false)
	}

	return nil
}

// matchesAnyPattern checks if rule matches any pattern in the list.
// Patterns are exact names or globs such as "no-*" or "*".
func matchesAnyPattern(rule string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == rule {
			return true
		}
		if ok, err := doublestar.Match(pattern, rule); err == nil && ok {
			return true
		}
	}
	return false
}

// GetSeverity returns the severity override for a rule.
// Returns empty string if no override is configured.
func (rc *RulesConfig) GetSeverity(rule string) string {
	if cfg := rc.Get(rule); cfg != nil {
		return cfg.Severity
	}
	return ""
}

// IsOff reports whether the rule's severity override turns it off.
func (rc *RulesConfig) IsOff(rule string) bool {
	switch strings.ToLower(strings.TrimSpace(rc.GetSeverity(rule))) {
	case "off", "0":
		return true
	default:
		return false
	}
}

// GetFixMode returns the fix mode for a rule.
// Returns FixModeAlways (default) if no override is configured.
func (rc *RulesConfig) GetFixMode(rule string) FixMode {
	if cfg := rc.Get(rule); cfg != nil && cfg.Fix != "" {
		return cfg.Fix
	}
	return FixModeAlways
}

// GetExcludePaths returns the exclusion patterns for a rule.
func (rc *RulesConfig) GetExcludePaths(rule string) []string {
	if cfg := rc.Get(rule); cfg != nil {
		return slices.Clone(cfg.Exclude.Paths)
	}
	return nil
}

// GetOptions returns rule-specific options.
// Returns nil if no options are configured.
// Returns a shallow copy to prevent mutation of internal state.
func (rc *RulesConfig) GetOptions(rule string) map[string]any {
	if cfg := rc.Get(rule); cfg != nil && len(cfg.Options) > 0 {
		return maps.Clone(cfg.Options)
	}
	return nil
}

// normalizeRuleShorthand rewrites `rule = "severity"` entries into their
// table form in-place.
func normalizeRuleShorthand(raw map[string]any) {
	rulesRaw, ok := raw["rules"].(map[string]any)
	if !ok {
		return
	}
	for name, value := range rulesRaw {
		if reservedRuleKeys[name] {
			continue
		}
		if sev, ok := value.(string); ok {
			rulesRaw[name] = map[string]any{"severity": sev}
		}
	}
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}
