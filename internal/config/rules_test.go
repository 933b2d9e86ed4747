package config

import "testing"

func TestRulesConfigIsEnabled(t *testing.T) {
	rc := &RulesConfig{
		Include: []string{"no-let"},
		Exclude: []string{"no-*"},
	}

	tests := []struct {
		rule string
		want *bool
	}{
		{"no-let", boolPtr(true)},
		{"no-this-expression", boolPtr(false)},
		{"prefer-const", nil},
	}
	for _, tt := range tests {
		got := rc.IsEnabled(tt.rule)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("IsEnabled(%q) = %v, want nil", tt.rule, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("IsEnabled(%q) = %v, want %v", tt.rule, got, *tt.want)
		}
	}

	var nilRC *RulesConfig
	if nilRC.IsEnabled("no-let") != nil {
		t.Error("nil RulesConfig should not decide")
	}
}

func TestRulesConfigAccessors(t *testing.T) {
	var rc RulesConfig
	rc.Set("no-let", RuleConfig{
		Severity: "warning",
		Exclude:  ExcludeConfig{Paths: []string{"dist/**"}},
		Options:  map[string]any{"allowLocalMutation": true},
	})

	if got := rc.GetSeverity("no-let"); got != "warning" {
		t.Errorf("GetSeverity = %q", got)
	}
	if got := rc.GetSeverity("missing"); got != "" {
		t.Errorf("GetSeverity(missing) = %q, want empty", got)
	}
	if got := rc.GetFixMode("no-let"); got != FixModeAlways {
		t.Errorf("GetFixMode = %q, want default %q", got, FixModeAlways)
	}

	opts := rc.GetOptions("no-let")
	opts["allowLocalMutation"] = false
	if rc.GetOptions("no-let")["allowLocalMutation"] != true {
		t.Error("GetOptions must return a copy")
	}
	if rc.GetOptions("missing") != nil {
		t.Error("GetOptions(missing) should be nil")
	}

	if names := rc.Names(); len(names) != 1 || names[0] != "no-let" {
		t.Errorf("Names() = %v", names)
	}
}

func TestNormalizeRuleShorthand(t *testing.T) {
	raw := map[string]any{
		"rules": map[string]any{
			"include": "no-*",
			"no-let":  "error",
			"no-this-expression": map[string]any{
				"severity": "off",
			},
		},
	}
	normalizeRuleShorthand(raw)

	rules := raw["rules"].(map[string]any)
	if rules["include"] != "no-*" {
		t.Errorf("include rewritten: %v", rules["include"])
	}
	entry, ok := rules["no-let"].(map[string]any)
	if !ok || entry["severity"] != "error" {
		t.Errorf("no-let = %v, want severity table", rules["no-let"])
	}
}

func TestRulesConfigIsOff(t *testing.T) {
	var rc RulesConfig
	rc.Set("no-let", RuleConfig{Severity: "off"})
	rc.Set("no-this-expression", RuleConfig{Severity: "0"})
	rc.Set("no-loop-statement", RuleConfig{Severity: "warning"})

	for rule, want := range map[string]bool{
		"no-let":                  true,
		"no-this-expression":      true,
		"no-loop-statement":       false,
		"no-expression-statement": false,
	} {
		if got := rc.IsOff(rule); got != want {
			t.Errorf("IsOff(%q) = %v, want %v", rule, got, want)
		}
	}
}
