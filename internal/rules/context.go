package rules

import (
	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/dialect"
	"github.com/wharflab/fnlint/internal/fix"
)

// Context is the read-only view a handler gets of the file being linted.
// It is built fresh for every handler call and passed by value.
type Context[O any] struct {
	// File is the path of the file being linted.
	File string
	// Source is the original source text. Handlers must not modify it.
	Source []byte
	// Dialect describes the parser the tree came from.
	Dialect dialect.Info
	// Options are the rule's resolved options for this file.
	Options O
}

// Report returns a result carrying descriptors, with the context passed
// through unchanged.
func (c Context[O]) Report(descriptors ...Descriptor) Result[O] {
	return Result[O]{Context: c, Descriptors: descriptors}
}

// Pass returns a result with no descriptors.
func (c Context[O]) Pass() Result[O] {
	return Result[O]{Context: c}
}

// Text returns the source covered by node.
func (c Context[O]) Text(node *ast.Node) string {
	return node.Text(c.Source)
}

// Descriptor is one reported violation.
type Descriptor struct {
	// Node is the offending node. When nil, the visited node is used.
	Node *ast.Node
	// MessageID must be a key of the rule's Meta.Messages.
	MessageID string
	// Data fills {{ name }} placeholders of the message template.
	Data map[string]string
	// Fix optionally proposes a correction. Only rules with Meta.Fixable
	// set may propose fixes, and edits must not overlap.
	Fix *fix.Fix
}

// Result is what a handler returns.
type Result[O any] struct {
	Context     Context[O]
	Descriptors []Descriptor
}

// Handler inspects one node. It must be pure: no retained references to
// node or ctx, no I/O. Violations are reported as descriptors; Fail is for
// tree shapes the handler cannot cope with.
type Handler[O any] func(node *ast.Node, ctx Context[O]) Result[O]

// Handlers maps node types to handlers.
type Handlers[O any] map[ast.NodeType]Handler[O]

// Options are a rule's resolved options, opaque to hosts. Obtain them from
// Rule.ResolveOptions or Rule.DefaultOptions. The zero value means
// "use the rule's defaults".
type Options struct {
	rule  string
	value any
}

// Rule returns the name of the rule the options were resolved for.
func (o Options) Rule() string {
	return o.rule
}

// Value returns the typed options value.
func (o Options) Value() any {
	return o.value
}

// Input is what a host passes to Rule.Visit for one node.
type Input struct {
	File    string
	Source  []byte
	Dialect dialect.Info
	Options Options
}

// Finding is a descriptor whose message has been resolved.
type Finding struct {
	Descriptor
	Message string
}

// Report is the outcome of one Rule.Visit call.
type Report struct {
	Rule     string
	Findings []Finding
}
