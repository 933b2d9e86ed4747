// Package ast defines the dialect-neutral JavaScript syntax tree that rules inspect.
//
// Parsers for each dialect (see internal/dialect) map their native trees onto
// this model so a single rule definition runs unmodified against all of them.
// Only the node types rules dispatch on are modelled; grammar nodes without a
// counterpart are flattened into their parent by the dialect adapters.
package ast

// Range is a half-open byte range [Start, End) into the original source.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Overlaps reports whether r and other share at least one byte.
// Two empty ranges at the same offset (two insertions) also overlap,
// since their relative order would be ambiguous.
func (r Range) Overlaps(other Range) bool {
	if r.Len() == 0 && other.Len() == 0 {
		return r.Start == other.Start
	}
	return r.Start < other.End && other.Start < r.End
}

// Valid reports whether the range is well formed for a source of n bytes.
func (r Range) Valid(n int) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= n
}

// Node is a single syntax tree node.
//
// Nodes are built once by a dialect adapter and are read-only afterwards;
// rules must never modify them.
type Node struct {
	// Type is the node's tag.
	Type NodeType

	// Range locates the node in the source.
	Range Range

	// Kind refines the node type: "var", "let" or "const" for
	// VariableDeclaration, "prefix" or "postfix" for UpdateExpression.
	Kind string

	// Operator is the operator text for assignment, update, unary and
	// binary expressions (e.g. "=", "+=", "++", "typeof", "===").
	Operator string

	// Name is the identifier text for Identifier nodes.
	Name string

	// Children are the node's direct children in source order.
	Children []*Node

	parent *Node
}

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Text returns the slice of src covered by the node.
func (n *Node) Text(src []byte) string {
	if n == nil || !n.Range.Valid(len(src)) {
		return ""
	}
	return string(src[n.Range.Start:n.Range.End])
}

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// ChildrenOf returns the direct children of the given type.
func (n *Node) ChildrenOf(t NodeType) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// Ancestor returns the closest enclosing node whose type is one of types.
func (n *Node) Ancestor(types ...NodeType) *Node {
	for p := n.parent; p != nil; p = p.parent {
		for _, t := range types {
			if p.Type == t {
				return p
			}
		}
	}
	return nil
}

// New creates a detached node.
func New(t NodeType, start, end int) *Node {
	return &Node{Type: t, Range: Range{Start: start, End: end}}
}

// Append attaches children to n, setting their parent link.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
	return n
}
