package rules

import (
	"cmp"

	"github.com/wharflab/fnlint/internal/fix"
)

// Violation is one diagnostic as the host reports it: a resolved descriptor
// placed at a file location with the configured severity.
type Violation struct {
	// Location specifies where the violation occurred.
	Location Location `json:"location"`

	// Rule is the name of the rule that reported it (e.g. "no-let").
	Rule string `json:"rule"`

	// MessageID is the key into the rule's message table.
	MessageID string `json:"messageId"`

	// Message is the rendered message.
	Message string `json:"message"`

	// Severity indicates how critical this violation is.
	Severity Severity `json:"severity"`

	// DocURL links to documentation about this rule (optional).
	DocURL string `json:"docUrl,omitempty"`

	// SourceCode is the source line(s) where the violation occurred (optional).
	// Populated by the host; rules don't set this.
	SourceCode string `json:"sourceCode,omitempty"`

	// Fix is the correction proposed by the rule, if any.
	// Edits are byte ranges into the original file.
	Fix *fix.Fix `json:"fix,omitempty"`
}

// NewViolation creates a new violation with the minimum required fields.
func NewViolation(loc Location, rule, messageID, message string, severity Severity) Violation {
	return Violation{
		Location:  loc,
		Rule:      rule,
		MessageID: messageID,
		Message:   message,
		Severity:  severity,
	}
}

// WithDocURL adds a documentation URL to the violation.
func (v Violation) WithDocURL(url string) Violation {
	v.DocURL = url
	return v
}

// WithSourceCode adds source code snippet to the violation.
func (v Violation) WithSourceCode(code string) Violation {
	v.SourceCode = code
	return v
}

// WithFix attaches a proposed fix to the violation.
func (v Violation) WithFix(f *fix.Fix) Violation {
	v.Fix = f
	return v
}

// File returns the file path from the location.
func (v Violation) File() string {
	return v.Location.File
}

// Line returns the 1-based starting line.
func (v Violation) Line() int {
	return v.Location.Start.Line
}

// CompareViolations orders violations by file, position, rule name and
// message id, for use with slices.SortFunc.
func CompareViolations(a, b Violation) int {
	return cmp.Or(
		cmp.Compare(a.Location.File, b.Location.File),
		cmp.Compare(a.Location.Start.Line, b.Location.Start.Line),
		cmp.Compare(a.Location.Start.Column, b.Location.Start.Column),
		cmp.Compare(a.Rule, b.Rule),
		cmp.Compare(a.MessageID, b.MessageID),
	)
}
