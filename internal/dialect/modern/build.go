package modern

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/wharflab/fnlint/internal/ast"
)

// kinds maps tree-sitter node kinds onto AST node types. Named kinds not
// listed here are flattened: their mapped descendants attach to the nearest
// mapped ancestor.
var kinds = map[string]ast.NodeType{
	"program":                               ast.Program,
	"lexical_declaration":                   ast.VariableDeclaration,
	"variable_declaration":                  ast.VariableDeclaration,
	"variable_declarator":                   ast.VariableDeclarator,
	"function_declaration":                  ast.FunctionDeclaration,
	"generator_function_declaration":        ast.FunctionDeclaration,
	"function_expression":                   ast.FunctionExpression,
	"function":                              ast.FunctionExpression,
	"generator_function":                    ast.FunctionExpression,
	"method_definition":                     ast.FunctionExpression,
	"arrow_function":                        ast.ArrowFunctionExpression,
	"class_declaration":                     ast.ClassDeclaration,
	"expression_statement":                  ast.ExpressionStatement,
	"statement_block":                       ast.BlockStatement,
	"return_statement":                      ast.ReturnStatement,
	"if_statement":                          ast.IfStatement,
	"for_statement":                         ast.ForStatement,
	"for_in_statement":                      ast.ForInStatement,
	"while_statement":                       ast.WhileStatement,
	"do_statement":                          ast.DoWhileStatement,
	"throw_statement":                       ast.ThrowStatement,
	"assignment_expression":                 ast.AssignmentExpression,
	"augmented_assignment_expression":       ast.AssignmentExpression,
	"update_expression":                     ast.UpdateExpression,
	"unary_expression":                      ast.UnaryExpression,
	"binary_expression":                     ast.BinaryExpression,
	"call_expression":                       ast.CallExpression,
	"new_expression":                        ast.NewExpression,
	"member_expression":                     ast.MemberExpression,
	"subscript_expression":                  ast.MemberExpression,
	"this":                                  ast.ThisExpression,
	"identifier":                            ast.Identifier,
	"shorthand_property_identifier":         ast.Identifier,
	"shorthand_property_identifier_pattern": ast.Identifier,
	"undefined":                             ast.Identifier,
	"string":                                ast.Literal,
	"template_string":                       ast.Literal,
	"number":                                ast.Literal,
	"regex":                                 ast.Literal,
	"true":                                  ast.Literal,
	"false":                                 ast.Literal,
	"null":                                  ast.Literal,
	"object":                                ast.ObjectExpression,
	"array":                                 ast.ArrayExpression,
	"object_pattern":                        ast.ObjectExpression,
	"array_pattern":                         ast.ArrayExpression,
}

// skipped kinds contribute nothing, not even their descendants.
var skipped = map[string]bool{
	"comment":             true,
	"property_identifier": true,
	"hash_bang_line":      true,
}

type builder struct {
	src []byte
}

func (b *builder) program(root *sitter.Node) *ast.Node {
	prog := ast.New(ast.Program, int(root.StartByte()), int(root.EndByte()))
	b.children(root, prog)
	return prog
}

// children maps the named children of ts onto parent.
func (b *builder) children(ts *sitter.Node, parent *ast.Node) {
	for i := range ts.NamedChildCount() {
		child := ts.NamedChild(i)
		if child == nil {
			continue
		}
		b.node(child, parent)
	}
}

func (b *builder) node(ts *sitter.Node, parent *ast.Node) {
	kind := ts.Kind()
	if skipped[kind] {
		return
	}
	if kind == "pair" {
		// Keys are names, not expressions.
		if v := ts.ChildByFieldName("value"); v != nil {
			b.node(v, parent)
		}
		return
	}
	t, mapped := kinds[kind]
	if !mapped {
		b.children(ts, parent)
		return
	}

	n := ast.New(t, int(ts.StartByte()), int(ts.EndByte()))
	switch kind {
	case "lexical_declaration":
		n.Kind = b.fieldText(ts, "kind")
	case "variable_declaration":
		n.Kind = "var"
	case "for_in_statement":
		b.forIn(ts, n)
		parent.Append(n)
		return
	case "for_statement":
		b.forLoop(ts, n)
		parent.Append(n)
		return
	case "assignment_expression":
		n.Operator = "="
	case "augmented_assignment_expression", "unary_expression", "binary_expression":
		n.Operator = b.fieldText(ts, "operator")
	case "update_expression":
		b.update(ts, n)
	case "identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern", "undefined":
		n.Name = ts.Utf8Text(b.src)
	}
	b.children(ts, n)
	parent.Append(n)
}

// forIn maps `for (<kind> <left> in|of <right>) body`. The loop head's
// declaration has no node of its own in the grammar; it is synthesized so
// the tree matches the shape of `for (var x in y)` everywhere else.
func (b *builder) forIn(ts *sitter.Node, n *ast.Node) {
	if b.fieldText(ts, "operator") == "of" {
		n.Type = ast.ForOfStatement
	}

	left := ts.ChildByFieldName("left")
	if kind := ts.ChildByFieldName("kind"); kind != nil && left != nil {
		decl := ast.New(ast.VariableDeclaration, int(kind.StartByte()), int(left.EndByte()))
		decl.Kind = kind.Utf8Text(b.src)
		declarator := ast.New(ast.VariableDeclarator, int(left.StartByte()), int(left.EndByte()))
		b.node(left, declarator)
		decl.Append(declarator)
		n.Append(decl)
	} else if left != nil {
		b.node(left, n)
	}

	for _, field := range []string{"right", "body"} {
		if c := ts.ChildByFieldName(field); c != nil {
			b.node(c, n)
		}
	}
}

// forLoop maps `for (init; test; update) body`. The grammar wraps an
// expression initializer and the test in expression_statement nodes; they
// are loop clauses, not statements, so only their contents are kept.
func (b *builder) forLoop(ts *sitter.Node, n *ast.Node) {
	for _, field := range []string{"initializer", "condition"} {
		c := ts.ChildByFieldName(field)
		switch {
		case c == nil:
		case c.Kind() == "expression_statement":
			b.children(c, n)
		default:
			b.node(c, n)
		}
	}
	for _, field := range []string{"increment", "body"} {
		if c := ts.ChildByFieldName(field); c != nil {
			b.node(c, n)
		}
	}
}

func (b *builder) update(ts *sitter.Node, n *ast.Node) {
	op := ts.ChildByFieldName("operator")
	if op == nil {
		return
	}
	n.Operator = op.Utf8Text(b.src)
	n.Kind = "postfix"
	if op.StartByte() == ts.StartByte() {
		n.Kind = "prefix"
	}
}

func (b *builder) fieldText(ts *sitter.Node, field string) string {
	if c := ts.ChildByFieldName(field); c != nil {
		return c.Utf8Text(b.src)
	}
	return ""
}
