package reporter

import (
	"errors"

	"github.com/wharflab/fnlint/internal/dialect"
	"github.com/wharflab/fnlint/internal/rules"
)

// FileErrorKind classifies why a file produced no or partial results.
type FileErrorKind string

const (
	// FileErrorParse means the dialect rejected the source; no rule ran.
	FileErrorParse FileErrorKind = "parse"
	// FileErrorFault means a rule failed while visiting the tree.
	FileErrorFault FileErrorKind = "fault"
	// FileErrorInvalid means the file was rejected before parsing.
	FileErrorInvalid FileErrorKind = "invalid"
)

// FileError is a tooling problem with one file, as opposed to a finding
// in its code.
type FileError struct {
	File string        `json:"file"`
	Kind FileErrorKind `json:"kind"`
	// Rule names the failing rule for faults.
	Rule string `json:"rule,omitempty"`
	// Line (1-based) and Column (0-based) locate parse errors when the
	// dialect reports a position.
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`

	Err error `json:"-"`
}

// NewFileError classifies err, which prevented file from being linted.
func NewFileError(file string, err error) FileError {
	fe := FileError{File: file, Kind: FileErrorInvalid, Message: err.Error(), Err: err}

	var (
		parseErr *dialect.ParseError
		fault    *rules.TraversalFault
		badRule  *rules.InvalidRuleDefinitionError
	)
	switch {
	case errors.As(err, &parseErr):
		fe.Kind = FileErrorParse
		fe.Line, fe.Column = parseErr.Line, parseErr.Column
		fe.Message = parseErr.Dialect + " parse error: " + parseErr.Message
	case errors.As(err, &fault):
		fe.Kind = FileErrorFault
		fe.Rule = fault.Rule
	case errors.As(err, &badRule):
		fe.Kind = FileErrorFault
		fe.Rule = badRule.Rule
	}
	return fe
}

// Error formats the problem with the file path first.
// Parse errors already carry the path and position.
func (e FileError) Error() string {
	if e.Kind == FileErrorParse && e.Err != nil {
		return e.Err.Error()
	}
	return e.File + ": " + e.Message
}

func (e FileError) Unwrap() error {
	return e.Err
}
