package legacy

import (
	"bytes"
	"reflect"
	"slices"

	oast "github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/token"

	"github.com/wharflab/fnlint/internal/ast"
)

// frame is an open AST node and the otto node that opened it. A single
// otto node may open two frames (a synthesized declaration and its
// declarator); they are popped together.
type frame struct {
	src  oast.Node
	node *ast.Node
	semi bool // the node's range extends over a trailing ';'
}

// builder maps an otto program onto package ast with oast.Walk. otto
// reports some positions loosely (statement ends, for-loop starts), so
// ranges are widened over their children on exit.
type builder struct {
	src  []byte
	base int

	stack []frame
	// skip holds identifiers with no AST counterpart: property names
	// after '.', and labels.
	skip map[*oast.Identifier]bool
}

func newBuilder(src []byte, base int) *builder {
	return &builder{src: src, base: base, skip: map[*oast.Identifier]bool{}}
}

func (b *builder) program(p *oast.Program) *ast.Node {
	root := ast.New(ast.Program, 0, len(b.src))
	b.stack = []frame{{src: p, node: root}}
	for _, stmt := range p.Body {
		oast.Walk(b, stmt)
	}
	b.finish(root, false)
	return root
}

func (b *builder) pos(i int) int {
	return i - b.base
}

func (b *builder) top() *ast.Node {
	return b.stack[len(b.stack)-1].node
}

// open attaches n to the current node and makes it current.
func (b *builder) open(src oast.Node, n *ast.Node, semi bool) oast.Visitor {
	b.top().Append(n)
	b.stack = append(b.stack, frame{src: src, node: n, semi: semi})
	return b
}

// leaf attaches n to the current node without descending.
func (b *builder) leaf(n *ast.Node) oast.Visitor {
	b.top().Append(n)
	return nil
}

// Enter implements oast.Visitor.
func (b *builder) Enter(n oast.Node) oast.Visitor {
	if isNil(n) {
		return nil
	}

	switch n := n.(type) {
	case *oast.VariableStatement:
		decl := ast.New(ast.VariableDeclaration, b.pos(int(n.Var)), b.pos(int(n.Var))+len("var"))
		decl.Kind = "var"
		return b.open(n, decl, true)

	case *oast.SequenceExpression:
		// A for-loop initializer of the form `var a = 1, b = 2`.
		if len(n.Sequence) > 0 {
			if first, ok := n.Sequence[0].(*oast.VariableExpression); ok {
				return b.open(n, b.varKeyword(first), true)
			}
		}
		return b

	case *oast.VariableExpression:
		if b.top().Type != ast.VariableDeclaration {
			// for (var x in y)
			b.open(n, b.varKeyword(n), false)
		}
		start := b.pos(int(n.Idx))
		declarator := ast.New(ast.VariableDeclarator, start, start+len(n.Name))
		id := ast.New(ast.Identifier, start, start+len(n.Name))
		id.Name = n.Name
		declarator.Append(id)
		return b.open(n, declarator, false)

	case *oast.FunctionStatement:
		return b.open(n, ast.New(ast.FunctionDeclaration, b.pos(int(n.Function.Function)), b.pos(int(n.Function.Body.Idx1()))), false)

	case *oast.FunctionLiteral:
		if parent, ok := b.stack[len(b.stack)-1].src.(*oast.FunctionStatement); ok && parent.Function == n {
			return b
		}
		return b.open(n, ast.New(ast.FunctionExpression, b.pos(int(n.Function)), b.pos(int(n.Body.Idx1()))), false)

	case *oast.ExpressionStatement:
		return b.open(n, b.unset(ast.ExpressionStatement), true)

	case *oast.BlockStatement:
		return b.open(n, ast.New(ast.BlockStatement, b.pos(int(n.LeftBrace)), b.pos(int(n.RightBrace))+1), false)

	case *oast.ReturnStatement:
		return b.open(n, ast.New(ast.ReturnStatement, b.pos(int(n.Return)), b.pos(int(n.Return))+len("return")), true)

	case *oast.ThrowStatement:
		return b.open(n, ast.New(ast.ThrowStatement, b.pos(int(n.Throw)), b.pos(int(n.Throw))+len("throw")), true)

	case *oast.IfStatement:
		return b.open(n, ast.New(ast.IfStatement, b.pos(int(n.If)), b.pos(int(n.If))+len("if")), false)

	case *oast.ForStatement:
		// otto leaves For unset; the keyword is found on exit.
		return b.open(n, b.unset(ast.ForStatement), false)

	case *oast.ForInStatement:
		return b.open(n, b.unset(ast.ForInStatement), false)

	case *oast.WhileStatement:
		return b.open(n, ast.New(ast.WhileStatement, b.pos(int(n.While)), b.pos(int(n.While))+len("while")), false)

	case *oast.DoWhileStatement:
		return b.open(n, ast.New(ast.DoWhileStatement, b.pos(int(n.Do)), b.pos(int(n.Do))+len("do")), true)

	case *oast.AssignExpression:
		assign := b.unset(ast.AssignmentExpression)
		assign.Operator = "="
		if n.Operator != token.ASSIGN {
			assign.Operator = n.Operator.String() + "="
		}
		return b.open(n, assign, false)

	case *oast.UnaryExpression:
		return b.open(n, b.unary(n), false)

	case *oast.BinaryExpression:
		bin := b.unset(ast.BinaryExpression)
		bin.Operator = n.Operator.String()
		return b.open(n, bin, false)

	case *oast.CallExpression:
		call := b.unset(ast.CallExpression)
		call.Range.End = b.pos(int(n.RightParenthesis)) + 1
		return b.open(n, call, false)

	case *oast.NewExpression:
		end := b.pos(int(n.New)) + len("new")
		if n.RightParenthesis > 0 {
			end = b.pos(int(n.RightParenthesis)) + 1
		}
		return b.open(n, ast.New(ast.NewExpression, b.pos(int(n.New)), end), false)

	case *oast.DotExpression:
		b.skip[n.Identifier] = true
		member := b.unset(ast.MemberExpression)
		member.Range.End = b.pos(int(n.Identifier.Idx1()))
		return b.open(n, member, false)

	case *oast.BracketExpression:
		member := b.unset(ast.MemberExpression)
		member.Range.End = b.pos(int(n.RightBracket)) + 1
		return b.open(n, member, false)

	case *oast.LabelledStatement:
		b.skip[n.Label] = true
		return b

	case *oast.BranchStatement:
		return nil

	case *oast.ThisExpression:
		return b.leaf(b.span(ast.ThisExpression, int(n.Idx), len("this")))

	case *oast.Identifier:
		if b.skip[n] {
			return nil
		}
		id := b.span(ast.Identifier, int(n.Idx), len(n.Name))
		id.Name = n.Name
		return b.leaf(id)

	case *oast.StringLiteral:
		return b.leaf(b.span(ast.Literal, int(n.Idx), len(n.Literal)))
	case *oast.NumberLiteral:
		return b.leaf(b.span(ast.Literal, int(n.Idx), len(n.Literal)))
	case *oast.BooleanLiteral:
		return b.leaf(b.span(ast.Literal, int(n.Idx), len(n.Literal)))
	case *oast.NullLiteral:
		return b.leaf(b.span(ast.Literal, int(n.Idx), len("null")))
	case *oast.RegExpLiteral:
		return b.leaf(b.span(ast.Literal, int(n.Idx), len(n.Literal)))

	case *oast.ObjectLiteral:
		return b.open(n, ast.New(ast.ObjectExpression, b.pos(int(n.LeftBrace)), b.pos(int(n.RightBrace))+1), false)

	case *oast.ArrayLiteral:
		return b.open(n, ast.New(ast.ArrayExpression, b.pos(int(n.LeftBracket)), b.pos(int(n.RightBracket))+1), false)
	}

	// No counterpart: children attach to the current node.
	return b
}

// Exit implements oast.Visitor.
func (b *builder) Exit(n oast.Node) {
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].src == n {
		f := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]
		b.finish(f.node, f.semi)
		if f.node.Type == ast.ForStatement || f.node.Type == ast.ForInStatement {
			f.node.Range.Start = b.keyword(f.node.Range.Start, "for")
		}
	}
}

// finish puts children in source order and widens n to cover them.
func (b *builder) finish(n *ast.Node, semi bool) {
	slices.SortStableFunc(n.Children, func(x, y *ast.Node) int {
		return x.Range.Start - y.Range.Start
	})
	for _, c := range n.Children {
		if n.Range.Start < 0 || c.Range.Start < n.Range.Start {
			n.Range.Start = c.Range.Start
		}
		if c.Range.End > n.Range.End {
			n.Range.End = c.Range.End
		}
	}
	if n.Range.Start < 0 {
		n.Range.Start = max(n.Range.End, 0)
	}
	if n.Range.End < n.Range.Start {
		n.Range.End = n.Range.Start
	}
	if n.Type == ast.DoWhileStatement {
		n.Range.End = b.past(n.Range.End, ')')
	}
	if semi {
		n.Range.End = b.past(n.Range.End, ';')
	}
}

func (b *builder) unary(n *oast.UnaryExpression) *ast.Node {
	op := n.Operator.String()
	if n.Operator != token.INCREMENT && n.Operator != token.DECREMENT {
		u := ast.New(ast.UnaryExpression, b.pos(int(n.Idx)), b.pos(int(n.Idx))+len(op))
		u.Operator = op
		return u
	}

	update := ast.New(ast.UpdateExpression, b.pos(int(n.Idx)), b.pos(int(n.Idx))+len(op))
	update.Operator = op
	update.Kind = "prefix"
	if n.Postfix {
		update.Kind = "postfix"
	}
	return update
}

// varKeyword synthesizes the declaration otto folds into its declarators,
// starting at the `var` keyword before the first one.
func (b *builder) varKeyword(first *oast.VariableExpression) *ast.Node {
	at := b.pos(int(first.Idx))
	start := b.keyword(at, "var")
	decl := ast.New(ast.VariableDeclaration, start, at)
	decl.Kind = "var"
	return decl
}

// keyword returns the offset of the last kw before at, or at.
func (b *builder) keyword(at int, kw string) int {
	if at > len(b.src) {
		at = len(b.src)
	}
	if i := bytes.LastIndex(b.src[:max(at, 0)], []byte(kw)); i >= 0 {
		return i
	}
	return at
}

// past returns the offset after c when only blanks separate it from end.
func (b *builder) past(end int, c byte) int {
	i := end
	for i < len(b.src) && (b.src[i] == ' ' || b.src[i] == '\t') {
		i++
	}
	if i < len(b.src) && b.src[i] == c {
		return i + 1
	}
	return end
}

func (b *builder) span(t ast.NodeType, idx, length int) *ast.Node {
	start := b.pos(idx)
	return ast.New(t, start, start+length)
}

// unset returns a node whose range comes entirely from its children.
func (b *builder) unset(t ast.NodeType) *ast.Node {
	return ast.New(t, -1, -1)
}

// isNil reports typed nil pointers, which oast.Walk passes to Enter for
// absent optional children such as an anonymous function's name.
func isNil(n oast.Node) bool {
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
