package legacy

import (
	"errors"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/dialect"
)

func TestParseShapes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"var x = 1;", "(Program (VariableDeclaration:var (VariableDeclarator Identifier Literal)))"},
		{"var a, b = 2;", "(Program (VariableDeclaration:var (VariableDeclarator Identifier) (VariableDeclarator Identifier Literal)))"},
		{"function f(a, b) { return this; }", "(Program (FunctionDeclaration Identifier Identifier Identifier (BlockStatement (ReturnStatement ThisExpression))))"},
		{"a.b.c = 1;", "(Program (ExpressionStatement (AssignmentExpression (MemberExpression (MemberExpression Identifier)) Literal)))"},
		{"--i; i--;", "(Program (ExpressionStatement (UpdateExpression:prefix Identifier)) (ExpressionStatement (UpdateExpression:postfix Identifier)))"},
		{"for (var i = 0, j = 1; ; ) {}", "(Program (ForStatement (VariableDeclaration:var (VariableDeclarator Identifier Literal) (VariableDeclarator Identifier Literal)) BlockStatement))"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			root, err := New().Parse("test.js", []byte(tc.src))
			require.NoError(t, err)
			assert.Equal(t, tc.want, ast.Shape(root))
		})
	}
}

func TestParseOperators(t *testing.T) {
	root, err := New().Parse("test.js", []byte("x >>>= 2; y = !z; i++;"))
	require.NoError(t, err)

	var ops []string
	ast.Walk(root, func(n *ast.Node) bool {
		if n.Operator != "" {
			ops = append(ops, n.Operator)
		}
		return true
	})
	assert.Equal(t, []string{">>>=", "=", "!", "++"}, ops)
}

func TestParseRanges(t *testing.T) {
	src := []byte("for (var k in o) {\n  o[k]++;\n}\ndo { k--; } while (k);\n")
	root, err := New().Parse("test.js", src)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)

	forIn := root.Children[0]
	assert.Equal(t, ast.ForInStatement, forIn.Type)
	assert.Equal(t, "for (var k in o) {\n  o[k]++;\n}", forIn.Text(src))
	assert.Equal(t, "var k", forIn.Children[0].Text(src))

	update := ast.Collect(forIn, ast.UpdateExpression)
	require.Len(t, update, 1)
	assert.Equal(t, "o[k]++", update[0].Text(src))

	assert.Equal(t, "do { k--; } while (k);", root.Children[1].Text(src))
}

func TestGateRejectsNewerSyntax(t *testing.T) {
	_, err := New().Parse("mod.js", []byte("var ok = 1;\nlet x = 1;\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dialect.ErrParse))

	var perr *dialect.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, Name, perr.Dialect)
	assert.Equal(t, "mod.js", perr.File)
	assert.Equal(t, 2, perr.Line)
}

func TestSyntaxError(t *testing.T) {
	_, err := New().Parse("bad.js", []byte("var a = 1;\nvar = ;\n"))
	require.Error(t, err)

	var perr *dialect.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Error(), "bad.js:2:")
}

func TestWithTarget(t *testing.T) {
	p := New(WithTarget(api.ES2015))
	assert.Equal(t, api.ES2015, p.target)

	// otto still rejects what the gate lets through.
	_, err := p.Parse("test.js", []byte("let x = 1;"))
	assert.True(t, errors.Is(err, dialect.ErrParse))
}

func TestParserInfo(t *testing.T) {
	info := dialect.Describe(New())
	assert.Equal(t, dialect.Info{Name: "legacy", Level: dialect.Restricted}, info)
}
