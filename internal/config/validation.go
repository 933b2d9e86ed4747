package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/wharflab/fnlint/internal/rules/configutil"
	"github.com/wharflab/fnlint/internal/schema"
)

// Values accepted by the enumerated settings.
var (
	outputFormats = []string{"text", "json", "sarif", "github-actions", "markdown"}
	severities    = []string{"off", "error", "warning", "warn", "info", "style", "0", "1", "2"}
	failLevels    = []string{"error", "warning", "info", "style", "none"}
	fixModes      = []string{string(FixModeNever), string(FixModeExplicit), string(FixModeAlways)}
)

// ruleEntrySchema describes one [rules.<name>] table. Rule options share
// the table, so unknown keys are left for the rule's own schema.
func ruleEntrySchema() schema.Fragment {
	return schema.Fragment{
		"type": "object",
		"properties": map[string]any{
			"severity": map[string]any(schema.Enum(severities...)),
			"fix":      map[string]any(schema.Enum(fixModes...)),
			"exclude": map[string]any(schema.Object(map[string]schema.Fragment{
				"paths": schema.StringOrStrings(),
			})),
		},
	}
}

// rootFragment describes a config file after shorthand normalization.
// Rule tables missing from ruleTables are checked against ruleEntrySchema
// only, unless closed rejects them.
func rootFragment(ruleTables map[string]schema.Fragment, closed bool) schema.Fragment {
	ruleProps := map[string]any{
		"include": map[string]any(schema.StringOrStrings()),
		"exclude": map[string]any(schema.StringOrStrings()),
	}
	for name, table := range ruleTables {
		ruleProps[name] = map[string]any(table)
	}
	rulesSchema := schema.Fragment{
		"type":                 "object",
		"properties":           ruleProps,
		"additionalProperties": map[string]any(ruleEntrySchema()),
	}
	if closed {
		rulesSchema["additionalProperties"] = false
	}

	return schema.Object(map[string]schema.Fragment{
		"dialect":     schema.String(),
		"concurrency": {"type": "integer", "minimum": 0},
		"rules":       rulesSchema,
		"output": schema.Object(map[string]schema.Fragment{
			"format":      schema.Enum(outputFormats...),
			"path":        schema.String(),
			"show-source": schema.Boolean(),
			"fail-level":  schema.Enum(failLevels...),
		}),
		"inline-directives": schema.Object(map[string]schema.Fragment{
			"enabled":     schema.Boolean(),
			"warn-unused": schema.Boolean(),
		}),
		"file-validation": schema.Object(map[string]schema.Fragment{
			"max-file-size": {"type": "integer", "minimum": 0},
		}),
	})
}

var rootSchema = sync.OnceValues(func() (*schema.Compiled, error) {
	return schema.Compile(rootFragment(nil, false))
})

// FileSchema returns the JSON Schema of a config file as editors see it:
// every known rule gets a property that accepts either a severity or a
// table whose option keys come from ruleOptions, and unknown rule names are
// rejected.
func FileSchema(ruleOptions map[string]schema.Fragment) (schema.Fragment, error) {
	tables := make(map[string]schema.Fragment, len(ruleOptions))
	for name, opts := range ruleOptions {
		table, err := schema.Merge(ruleEntrySchema(), opts)
		if err != nil {
			return nil, fmt.Errorf("rules.%s: %w", name, err)
		}
		table["additionalProperties"] = false
		tables[name] = schema.Fragment{
			"oneOf": []any{map[string]any(schema.Enum(severities...)), map[string]any(table)},
		}
	}

	root := rootFragment(tables, true)
	root["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	root["title"] = "fnlint configuration"
	return root, nil
}

// validateFile checks a config file's own contents, before merging.
func validateFile(configPath string, raw map[string]any) error {
	compiled, err := rootSchema()
	if err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	if err := compiled.Validate(raw); err != nil {
		return fmt.Errorf("%s: %w", configPath, err)
	}
	return nil
}

// decodeConfig decodes the merged configuration. Rule tables are decoded
// one by one since their names are not known ahead of time.
func decodeConfig(raw map[string]any) (*Config, error) {
	normalizeRuleShorthand(raw)

	cfg := &Config{}
	if err := configutil.Decode(raw, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if rulesRaw, ok := raw["rules"].(map[string]any); ok {
		for name, entry := range rulesRaw {
			if reservedRuleKeys[name] {
				continue
			}
			table, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("rules.%s: expected a table or a severity, got %T", name, entry)
			}
			var rc RuleConfig
			if err := configutil.Decode(table, &rc); err != nil {
				return nil, fmt.Errorf("rules.%s: %w", name, err)
			}
			coerceBooleans(rc.Options)
			cfg.Rules.Set(name, rc)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that environment variables and overrides
// can set after the config file has been validated.
func (c *Config) Validate() error {
	var errs []error
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	if c.FileValidation.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("file-validation.max-file-size must not be negative, got %d", c.FileValidation.MaxFileSize))
	}
	if !oneOf(c.Output.Format, outputFormats) {
		errs = append(errs, fmt.Errorf("output.format %q is not one of %s", c.Output.Format, strings.Join(outputFormats, ", ")))
	}
	if !oneOf(c.Output.FailLevel, failLevels) {
		errs = append(errs, fmt.Errorf("output.fail-level %q is not one of %s", c.Output.FailLevel, strings.Join(failLevels, ", ")))
	}
	for _, name := range c.Rules.Names() {
		rc := c.Rules.PerRule[name]
		if rc.Severity != "" && !oneOf(strings.ToLower(rc.Severity), severities) {
			errs = append(errs, fmt.Errorf("rules.%s.severity %q is not one of %s", name, rc.Severity, strings.Join(severities, ", ")))
		}
		if rc.Fix != "" && !oneOf(string(rc.Fix), fixModes) {
			errs = append(errs, fmt.Errorf("rules.%s.fix %q is not one of %s", name, rc.Fix, strings.Join(fixModes, ", ")))
		}
	}
	return errors.Join(errs...)
}

// coerceBooleans turns "true" and "false" strings, as environment
// variables deliver them, into booleans.
func coerceBooleans(opts map[string]any) {
	for key, v := range opts {
		if s, ok := v.(string); ok {
			switch strings.ToLower(s) {
			case "true":
				opts[key] = true
			case "false":
				opts[key] = false
			}
		}
	}
}

func oneOf(v string, allowed []string) bool {
	return slices.Contains(allowed, v)
}
