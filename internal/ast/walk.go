package ast

// Walk traverses the tree rooted at node depth-first in source order and
// calls fn for each node before its children. If fn returns false the
// node's children are skipped; traversal continues with its siblings.
func Walk(node *Node, fn func(n *Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for _, c := range node.Children {
		Walk(c, fn)
	}
}

// Collect returns every node of the given types in pre-order.
func Collect(root *Node, types ...NodeType) []*Node {
	var out []*Node
	Walk(root, func(n *Node) bool {
		for _, t := range types {
			if n.Type == t {
				out = append(out, n)
				break
			}
		}
		return true
	})
	return out
}

// Count returns the number of nodes in the tree.
func Count(root *Node) int {
	total := 0
	Walk(root, func(*Node) bool {
		total++
		return true
	})
	return total
}

// Shape renders the node types of the tree as a compact s-expression,
// e.g. "(Program (VariableDeclaration:let (VariableDeclarator Identifier Literal)))".
// It ignores ranges and is used to compare trees produced by different dialects.
func Shape(root *Node) string {
	if root == nil {
		return ""
	}
	buf := make([]byte, 0, 64)
	return string(appendShape(buf, root))
}

func appendShape(buf []byte, n *Node) []byte {
	label := n.Type.String()
	if n.Kind != "" {
		label += ":" + n.Kind
	}
	if len(n.Children) == 0 {
		return append(buf, label...)
	}
	buf = append(buf, '(')
	buf = append(buf, label...)
	for _, c := range n.Children {
		buf = append(buf, ' ')
		buf = appendShape(buf, c)
	}
	return append(buf, ')')
}
