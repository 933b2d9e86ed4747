package engine

import (
	"fmt"

	"github.com/wharflab/fnlint/internal/config"
	"github.com/wharflab/fnlint/internal/rules"
	"github.com/wharflab/fnlint/internal/schema"
)

// Configure returns the rules of reg that are enabled for cfg, in name
// order, with their severity and options resolved. A rule whose configured
// severity or options are invalid is left out and its error returned; the
// other rules are still configured.
func Configure(reg *rules.Registry, cfg *config.Config) ([]RuleConfig, []error) {
	var (
		out  []RuleConfig
		errs []error
	)
	for _, rule := range reg.All() {
		name := rule.Name()
		if !isRuleEnabled(name, rule.Meta().Docs.Recommended, cfg) {
			continue
		}

		sev, err := severityFor(rule, cfg)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		var raw map[string]any
		if cfg != nil {
			raw = cfg.Rules.GetOptions(name)
		}
		opts, err := rule.ResolveOptions(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		out = append(out, RuleConfig{Rule: rule, Options: opts, Severity: sev})
	}
	return out, errs
}

// ConfigSchema returns the JSON Schema of a config file that knows the
// options of every rule in reg.
func ConfigSchema(reg *rules.Registry) (schema.Fragment, error) {
	options := make(map[string]schema.Fragment)
	for _, rule := range reg.All() {
		options[rule.Name()] = rule.Meta().Schema
	}
	return config.FileSchema(options)
}

// EnabledRuleNames returns the names of the rules that are active for the
// given config, sorted.
func EnabledRuleNames(reg *rules.Registry, cfg *config.Config) []string {
	var names []string
	for _, rule := range reg.All() {
		if isRuleEnabled(rule.Name(), rule.Meta().Docs.Recommended, cfg) {
			names = append(names, rule.Name())
		}
	}
	return names
}

// isRuleEnabled checks if a rule is effectively enabled based on config.
func isRuleEnabled(name string, defaultSeverity rules.Severity, cfg *config.Config) bool {
	if cfg == nil {
		return defaultSeverity != rules.SeverityOff
	}

	// Explicit include/exclude patterns win.
	if enabled := cfg.Rules.IsEnabled(name); enabled != nil {
		return *enabled
	}

	// Respect explicit severity overrides (on/off).
	if cfg.Rules.GetSeverity(name) != "" {
		return !cfg.Rules.IsOff(name)
	}

	// An "off" rule is auto-enabled by having config options.
	if defaultSeverity == rules.SeverityOff {
		ruleConfig := cfg.Rules.Get(name)
		return ruleConfig != nil && len(ruleConfig.Options) > 0
	}

	return true
}

// severityFor returns the severity violations of rule are reported with.
func severityFor(rule *rules.Rule, cfg *config.Config) (rules.Severity, error) {
	recommended := rule.Meta().Docs.Recommended
	if cfg == nil {
		return recommended, nil
	}
	if override := cfg.Rules.GetSeverity(rule.Name()); override != "" {
		sev, err := rules.ParseSeverity(override)
		if err != nil {
			return 0, fmt.Errorf("rule %q: %w", rule.Name(), err)
		}
		if sev != rules.SeverityOff {
			return sev, nil
		}
	}
	// Enabled despite a recommended "off": by include pattern or options.
	if recommended == rules.SeverityOff {
		return rules.SeverityWarning, nil
	}
	return recommended, nil
}
