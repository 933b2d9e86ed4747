package directive

import (
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/wharflab/fnlint/internal/sourcemap"
)

// directivePattern matches a comment body such as
// "fnlint-disable-next-line no-let, no-this-expression -- reason".
var directivePattern = regexp.MustCompile(`(?is)^fnlint-(disable-next-line|disable-line|disable|enable)(?:\s+(.*))?$`)

// RuleValidator is a function that checks if a rule name is known.
// Returns true if the rule exists in the registry.
type RuleValidator func(string) bool

// Parse extracts all inline directives from a SourceMap.
// If validator is non-nil, unknown rule names generate parse errors.
func Parse(sm *sourcemap.SourceMap, validator RuleValidator) *ParseResult {
	result := &ParseResult{}
	// Indexes into result.Directives of fnlint-disable ranges still open.
	var open []int

	for _, comment := range sm.Comments() {
		if !comment.IsDirective {
			continue
		}

		matches := directivePattern.FindStringSubmatch(comment.Body())
		if matches == nil {
			result.Errors = append(result.Errors, ParseError{
				Line:    comment.Line,
				Message: "unknown directive",
				RawText: comment.Text,
			})
			continue
		}

		kind := strings.ToLower(matches[1])
		ruleList, reason, _ := strings.Cut(matches[2], "--")
		ruleNames := parseRuleList(ruleList)
		if !validateRules(comment, ruleNames, validator, result) {
			continue
		}

		d := Directive{
			Rules:   ruleNames,
			Line:    comment.Line,
			RawText: comment.Text,
			Reason:  strings.TrimSpace(reason),
		}

		switch kind {
		case "disable-next-line":
			if comment.Line != comment.EndLine {
				result.Errors = append(result.Errors, ParseError{
					Line:    comment.Line,
					Message: "fnlint-disable-next-line comment must be on a single line",
					RawText: comment.Text,
				})
				continue
			}
			d.Type = TypeNextLine
			d.AppliesTo = nextCodeLineRange(comment.EndLine, sm)
		case "disable-line":
			if comment.Line != comment.EndLine {
				result.Errors = append(result.Errors, ParseError{
					Line:    comment.Line,
					Message: "fnlint-disable-line comment must be on a single line",
					RawText: comment.Text,
				})
				continue
			}
			d.Type = TypeSameLine
			d.AppliesTo = LineRange{Start: comment.Line, End: comment.Line}
		case "disable":
			d.Type = TypeRange
			d.AppliesTo = LineRange{Start: comment.Line, End: math.MaxInt}
			open = append(open, len(result.Directives))
		case "enable":
			var closed bool
			open, closed = closeRanges(result.Directives, open, ruleNames, comment.Line)
			if !closed {
				result.Errors = append(result.Errors, ParseError{
					Line:    comment.Line,
					Message: "fnlint-enable without a matching fnlint-disable",
					RawText: comment.Text,
				})
			}
			continue
		}
		result.Directives = append(result.Directives, d)
	}

	return result
}

// closeRanges ends the open ranges an fnlint-enable for ruleNames covers:
// all of them when ruleNames is empty, otherwise those whose rules it lists.
func closeRanges(directives []Directive, open []int, ruleNames []string, line int) ([]int, bool) {
	closed := false
	still := open[:0]
	for _, i := range open {
		d := &directives[i]
		covers := len(ruleNames) == 0 ||
			(len(d.Rules) > 0 && !slices.ContainsFunc(d.Rules, func(r string) bool {
				return !slices.Contains(ruleNames, r)
			}))
		if covers {
			d.AppliesTo.End = line
			closed = true
			continue
		}
		still = append(still, i)
	}
	return still, closed
}

// validateRules reports unknown rule names; it returns false when the
// directive should be dropped.
func validateRules(comment sourcemap.Comment, ruleNames []string, validator RuleValidator, result *ParseResult) bool {
	if validator == nil {
		return true
	}
	var unknownRules []string
	for _, rule := range ruleNames {
		if strings.ContainsAny(rule, "*?[{") {
			continue
		}
		if !validator(rule) {
			unknownRules = append(unknownRules, rule)
		}
	}
	if len(unknownRules) == 0 {
		return true
	}
	result.Errors = append(result.Errors, ParseError{
		Line:    comment.Line,
		Message: "unknown rule name(s): " + strings.Join(unknownRules, ", "),
		RawText: comment.Text,
	})
	return len(unknownRules) < len(ruleNames)
}

// parseRuleList parses a comma-separated list of rule names.
// An empty list means all rules.
func parseRuleList(s string) []string {
	var ruleNames []string
	for part := range strings.SplitSeq(s, ",") {
		if rule := strings.TrimSpace(part); rule != "" {
			ruleNames = append(ruleNames, rule)
		}
	}
	return ruleNames
}

// nextCodeLineRange finds the range for the next line with code.
// If there is none (directive at end of file), returns an empty range
// that won't match any line.
func nextCodeLineRange(directiveLine int, sm *sourcemap.SourceMap) LineRange {
	lineCount := sm.LineCount()

	for i := directiveLine + 1; i < lineCount; i++ {
		line := strings.TrimSpace(sm.Line(i))
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		return LineRange{Start: i, End: i}
	}

	return LineRange{Start: -1, End: -1}
}
