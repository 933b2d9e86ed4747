// Package directive provides inline suppression directives for linting.
//
// Directives are JavaScript comments:
//
//	// fnlint-disable-next-line no-let, no-this-expression
//	let x = this.y;
//
//	let y = 1; // fnlint-disable-line no-let -- counter
//
//	/* fnlint-disable no-loop-statement */
//	for (;;) {}
//	/* fnlint-enable no-loop-statement */
//
// A directive without rule names applies to every rule. Text after " -- "
// is the reason for the suppression.
package directive

import (
	"math"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// DirectiveType indicates the scope of a directive.
type DirectiveType int

const (
	// TypeNextLine affects only the next line with code.
	TypeNextLine DirectiveType = iota
	// TypeSameLine affects the line the comment is on.
	TypeSameLine
	// TypeRange affects lines from the comment to the matching
	// fnlint-enable, or to the end of the file.
	TypeRange
)

// String returns a human-readable name for the directive type.
func (t DirectiveType) String() string {
	switch t {
	case TypeNextLine:
		return "next-line"
	case TypeSameLine:
		return "line"
	case TypeRange:
		return "range"
	default:
		return "unknown"
	}
}

// LineRange represents a range of lines affected by a directive.
// Line numbers are 0-based to match SourceMap conventions.
type LineRange struct {
	// Start is the 0-based line number (inclusive).
	Start int
	// End is the 0-based line number (inclusive).
	// For ranges open until the end of the file, this is math.MaxInt.
	End int
}

// Contains returns true if the given 0-based line is within the range.
func (r LineRange) Contains(line int) bool {
	return line >= r.Start && line <= r.End
}

// GlobalRange returns a LineRange that covers the entire file.
func GlobalRange() LineRange {
	return LineRange{Start: 0, End: math.MaxInt}
}

// Directive represents a parsed inline suppression directive.
type Directive struct {
	// Type indicates the directive's scope.
	Type DirectiveType

	// Rules contains the rule names (or globs) to suppress.
	// An empty slice means all rules.
	Rules []string

	// Line is the 0-based line number where the directive appears.
	Line int

	// AppliesTo is the range of lines affected by this directive.
	AppliesTo LineRange

	// Used is set to true when this directive suppresses at least one violation.
	// Used for unused directive detection.
	Used bool

	// RawText is the original comment text (for error messages).
	RawText string

	// Reason is an optional explanation for why the rule is being suppressed,
	// written after " -- ".
	Reason string
}

// SuppressesRule returns true if this directive suppresses the given rule.
func (d *Directive) SuppressesRule(rule string) bool {
	if len(d.Rules) == 0 {
		return true
	}
	return slices.ContainsFunc(d.Rules, func(pattern string) bool {
		return matchesRule(pattern, rule)
	})
}

// matchesRule checks if a directive rule pattern matches a rule name.
// Patterns are exact names or globs such as "no-*".
func matchesRule(pattern, rule string) bool {
	if pattern == rule {
		return true
	}
	ok, err := doublestar.Match(pattern, rule)
	return err == nil && ok
}

// SuppressesLine returns true if this directive suppresses violations on the given line.
// Line is 0-based.
func (d *Directive) SuppressesLine(line int) bool {
	return d.AppliesTo.Contains(line)
}

// ParseResult contains all directives parsed from a file plus any errors.
type ParseResult struct {
	// Directives contains successfully parsed directives.
	Directives []Directive

	// Errors contains parse errors for malformed directives.
	Errors []ParseError
}

// ParseError represents an error parsing a directive.
type ParseError struct {
	// Line is the 0-based line number where the error occurred.
	Line int

	// Message describes what went wrong.
	Message string

	// RawText is the original comment text.
	RawText string
}
