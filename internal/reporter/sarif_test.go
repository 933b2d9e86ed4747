package reporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/wharflab/fnlint/internal/rules"
)

func decodeSARIF(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Failed to parse SARIF output: %v\nOutput: %s", err, buf.String())
	}
	runs, ok := out["runs"].([]any)
	if !ok || len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %v", out["runs"])
	}
	run, ok := runs[0].(map[string]any)
	if !ok {
		t.Fatalf("Expected run to be map, got %T", runs[0])
	}
	return run
}

func TestSARIFReporter(t *testing.T) {
	violations := []rules.Violation{
		rules.NewViolation(rules.NewRangeLocation("src/b.js", 10, 4, 10, 8), "no-this-expression", "unexpected",
			"Unexpected this, use functions not classes.", rules.SeverityWarning),
		letViolation().WithSourceCode("let count = 0;"),
	}

	var buf bytes.Buffer
	reporter := NewSARIFReporter(&buf, "fnlint", "1.0.0", "").
		WithRuleDescriptions(map[string]string{"no-let": "Disallow mutable variables."})
	if err := reporter.Report(violations, nil, ReportMetadata{}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	var top map[string]any
	if err := json.Unmarshal(buf.Bytes(), &top); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if top["version"] != "2.1.0" {
		t.Errorf("Expected SARIF version 2.1.0, got %v", top["version"])
	}

	run := decodeSARIF(t, &buf)
	driver := run["tool"].(map[string]any)["driver"].(map[string]any)
	if driver["name"] != "fnlint" {
		t.Errorf("driver name = %v", driver["name"])
	}
	if driver["version"] != "1.0.0" {
		t.Errorf("driver version = %v", driver["version"])
	}
	if driver["informationUri"] != defaultToolURI {
		t.Errorf("informationUri = %v, want default", driver["informationUri"])
	}

	ruleDefs := driver["rules"].([]any)
	if len(ruleDefs) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(ruleDefs))
	}
	noLet := ruleDefs[0].(map[string]any)
	if noLet["id"] != "no-let" {
		t.Errorf("rules not sorted by id: first is %v", noLet["id"])
	}
	if desc := noLet["shortDescription"].(map[string]any)["text"]; desc != "Disallow mutable variables." {
		t.Errorf("shortDescription = %v", desc)
	}
	if noLet["helpUri"] == nil {
		t.Error("expected helpUri from DocURL")
	}
	if _, ok := ruleDefs[1].(map[string]any)["shortDescription"]; ok {
		t.Error("rule without description should have no shortDescription")
	}

	results := run["results"].([]any)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	first := results[0].(map[string]any)
	if first["ruleId"] != "no-let" || first["level"] != "error" {
		t.Errorf("first result = %v", first)
	}
	loc := first["locations"].([]any)[0].(map[string]any)["physicalLocation"].(map[string]any)
	region := loc["region"].(map[string]any)
	if region["startLine"] != float64(2) || region["startColumn"] != float64(1) || region["endColumn"] != float64(14) {
		t.Errorf("region = %v", region)
	}
	if region["snippet"].(map[string]any)["text"] != "let count = 0;" {
		t.Errorf("snippet = %v", region["snippet"])
	}
	if results[1].(map[string]any)["level"] != "warning" {
		t.Errorf("second level = %v", results[1].(map[string]any)["level"])
	}
}

func TestSARIFReporter_FileLevel(t *testing.T) {
	v := rules.NewViolation(rules.NewFileLocation("broken.js"), "parse", "error", "Unexpected token", rules.SeverityError)

	var buf bytes.Buffer
	if err := NewSARIFReporter(&buf, "", "", "").Report([]rules.Violation{v}, nil, ReportMetadata{}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	run := decodeSARIF(t, &buf)
	result := run["results"].([]any)[0].(map[string]any)
	phys := result["locations"].([]any)[0].(map[string]any)["physicalLocation"].(map[string]any)
	if _, ok := phys["region"]; ok {
		t.Error("file-level result should have no region")
	}
	if phys["artifactLocation"].(map[string]any)["uri"] != "broken.js" {
		t.Errorf("artifactLocation = %v", phys["artifactLocation"])
	}
	driver := run["tool"].(map[string]any)["driver"].(map[string]any)
	if driver["name"] != defaultToolName {
		t.Errorf("driver name = %v, want default", driver["name"])
	}
}

func TestSeverityToSARIFLevel(t *testing.T) {
	tests := []struct {
		severity rules.Severity
		want     string
	}{
		{rules.SeverityError, "error"},
		{rules.SeverityWarning, "warning"},
		{rules.SeverityInfo, "note"},
		{rules.SeverityStyle, "note"},
		{rules.SeverityOff, "note"},
	}
	for _, tt := range tests {
		if got := severityToSARIFLevel(tt.severity); got != tt.want {
			t.Errorf("severityToSARIFLevel(%v) = %q, want %q", tt.severity, got, tt.want)
		}
	}
}
