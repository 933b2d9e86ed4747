package rules

import (
	"errors"
	"fmt"

	"github.com/wharflab/fnlint/internal/ast"
)

var (
	// ErrInvalidRuleDefinition is matched by every *InvalidRuleDefinitionError.
	ErrInvalidRuleDefinition = errors.New("invalid rule definition")

	// ErrTraversalFault is matched by every *TraversalFault.
	ErrTraversalFault = errors.New("traversal fault")
)

// InvalidRuleDefinitionError reports a rule-authoring mistake. Raised while
// constructing a rule, or on first report for mistakes that cannot be seen
// earlier (an unknown message id, an inconsistent fix). It aborts loading
// of that one rule.
type InvalidRuleDefinitionError struct {
	Rule   string
	Reason string
	Err    error
}

func (e *InvalidRuleDefinitionError) Error() string {
	msg := fmt.Sprintf("rule %q: %s", e.Rule, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidRuleDefinitionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidRuleDefinition}
	}
	return []error{ErrInvalidRuleDefinition, e.Err}
}

func invalid(rule string, err error, format string, args ...any) *InvalidRuleDefinitionError {
	return &InvalidRuleDefinitionError{Rule: rule, Reason: fmt.Sprintf(format, args...), Err: err}
}

// TraversalFault reports that a handler hit a node it could not make sense
// of: a tree shape it relied on was not there. It is a tooling error scoped
// to the file being linted, not a lint finding.
type TraversalFault struct {
	Rule     string
	NodeType ast.NodeType
	Range    ast.Range
	Err      error
}

func (e *TraversalFault) Error() string {
	return fmt.Sprintf("rule %q failed on %s at [%d,%d): %v",
		e.Rule, e.NodeType, e.Range.Start, e.Range.End, e.Err)
}

func (e *TraversalFault) Unwrap() []error {
	return []error{ErrTraversalFault, e.Err}
}

// failure is the panic value raised by Fail.
type failure struct {
	node *ast.Node
	err  error
}

// Fail aborts the current handler with a traversal fault. Handlers call it
// when the tree is missing something they rely on; never for ordinary
// policy violations, which are reported as descriptors.
func Fail(node *ast.Node, format string, args ...any) {
	panic(failure{node: node, err: fmt.Errorf(format, args...)})
}

// recovered converts a handler panic into a fault located at the node Fail
// was given, or at visited when the panic came from elsewhere.
func recovered(rule string, visited *ast.Node, p any) *TraversalFault {
	at := visited
	var err error
	switch v := p.(type) {
	case failure:
		if v.node != nil {
			at = v.node
		}
		err = v.err
	case error:
		err = fmt.Errorf("panic: %w", v)
	default:
		err = fmt.Errorf("panic: %v", v)
	}
	return &TraversalFault{Rule: rule, NodeType: at.Type, Range: at.Range, Err: err}
}
