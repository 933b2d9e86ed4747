package rules

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/dialect"
	"github.com/wharflab/fnlint/internal/fix"
	"github.com/wharflab/fnlint/internal/schema"
)

type testOptions struct {
	AllowLocalMutation bool     `koanf:"allowLocalMutation" json:"allowLocalMutation"`
	IgnorePattern      []string `koanf:"ignorePattern"      json:"ignorePattern,omitempty"`
}

func testMeta() Meta {
	return Meta{
		Type: TypeSuggestion,
		Docs: Docs{
			Description: "Disallow mutable variables.",
			Category:    "Best Practices",
			Recommended: SeverityError,
		},
		Messages: map[string]string{
			"generic": "Unexpected let, use const instead.",
			"named":   "Unexpected let for {{ name }}.",
		},
		Fixable: FixableCode,
		Schema: schema.Object(map[string]schema.Fragment{
			"allowLocalMutation": schema.Boolean(),
			"ignorePattern":      schema.StringOrStrings(),
		}),
	}
}

func letHandler(node *ast.Node, ctx Context[testOptions]) Result[testOptions] {
	if node.Kind != "let" {
		return ctx.Pass()
	}
	return ctx.Report(Descriptor{
		MessageID: "generic",
		Fix:       fix.New("Use const", fix.Replace(ast.Range{Start: node.Range.Start, End: node.Range.Start + 3}, "const")),
	})
}

func newLetRule(t *testing.T) *Rule {
	t.Helper()
	r, err := New("no-let", testMeta(), testOptions{}, Handlers[testOptions]{
		ast.VariableDeclaration: letHandler,
	})
	require.NoError(t, err)
	return r
}

// declaration builds the tree of `<kind> x = 1;`.
func declaration(kind string) (*ast.Node, []byte) {
	src := []byte(kind + " x = 1;")
	n := len(kind)
	decl := ast.New(ast.VariableDeclaration, 0, len(src))
	decl.Kind = kind
	declarator := ast.New(ast.VariableDeclarator, n+1, n+6)
	id := ast.New(ast.Identifier, n+1, n+2)
	id.Name = "x"
	declarator.Append(id, ast.New(ast.Literal, n+5, n+6))
	decl.Append(declarator)
	ast.New(ast.Program, 0, len(src)).Append(decl)
	return decl, src
}

func TestNew_Accessors(t *testing.T) {
	r := newLetRule(t)

	assert.Equal(t, "no-let", r.Name())
	assert.Equal(t, []ast.NodeType{ast.VariableDeclaration}, r.NodeTypes())
	assert.True(t, r.Handles(ast.VariableDeclaration))
	assert.False(t, r.Handles(ast.ThisExpression))
	assert.Equal(t, testOptions{}, r.DefaultOptions().Value())
	assert.Equal(t, "no-let", r.DefaultOptions().Rule())

	meta := r.Meta()
	assert.Equal(t, "Disallow mutable variables.", meta.Docs.Description)
	meta.Messages["generic"] = "changed"
	meta.Schema["type"] = "string"
	assert.Equal(t, "Unexpected let, use const instead.", r.Meta().Messages["generic"], "Meta returns a copy")
	assert.Equal(t, "object", r.Meta().Schema["type"])
}

func TestNew_InvalidDefinitions(t *testing.T) {
	valid := Handlers[testOptions]{ast.VariableDeclaration: letHandler}

	tests := []struct {
		name     string
		rule     string
		meta     func(m *Meta)
		defaults testOptions
		handlers Handlers[testOptions]
		reason   string
	}{
		{name: "empty name", rule: " ", handlers: valid, reason: "empty rule name"},
		{name: "bad type", meta: func(m *Meta) { m.Type = "opinion" }, handlers: valid, reason: "meta.type"},
		{name: "bad fixable", meta: func(m *Meta) { m.Fixable = "always" }, handlers: valid, reason: "meta.fixable"},
		{name: "no description", meta: func(m *Meta) { m.Docs.Description = "" }, handlers: valid, reason: "description"},
		{name: "bad recommended", meta: func(m *Meta) { m.Docs.Recommended = Severity(42) }, handlers: valid, reason: "recommended"},
		{name: "no messages", meta: func(m *Meta) { m.Messages = nil }, handlers: valid, reason: "meta.messages is empty"},
		{name: "empty message id", meta: func(m *Meta) { m.Messages[""] = "x" }, handlers: valid, reason: "empty message id"},
		{name: "empty template", meta: func(m *Meta) { m.Messages["generic"] = "  " }, handlers: valid, reason: `message "generic"`},
		{name: "malformed template", meta: func(m *Meta) { m.Messages["named"] = "oops {{ name" }, handlers: valid, reason: `message "named"`},
		{name: "missing schema", meta: func(m *Meta) { m.Schema = nil }, handlers: valid, reason: "meta.schema is missing"},
		{
			name:     "schema does not compile",
			meta:     func(m *Meta) { m.Schema = schema.Fragment{"properties": "nope"} },
			handlers: valid,
			reason:   "does not compile",
		},
		{
			name:     "defaults violate schema",
			meta:     func(m *Meta) { m.Schema = schema.Object(map[string]schema.Fragment{"allowLocalMutation": schema.Boolean()}) },
			defaults: testOptions{IgnorePattern: []string{"x"}},
			handlers: valid,
			reason:   "default options violate",
		},
		{name: "no handlers", handlers: Handlers[testOptions]{}, reason: "no handlers"},
		{name: "unknown node type", handlers: Handlers[testOptions]{ast.Unknown: letHandler}, reason: "unknown node type"},
		{name: "out of range node type", handlers: Handlers[testOptions]{ast.NodeType(200): letHandler}, reason: "unknown node type"},
		{name: "nil handler", handlers: Handlers[testOptions]{ast.VariableDeclaration: nil}, reason: "nil handler"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			meta := testMeta()
			if tc.meta != nil {
				tc.meta(&meta)
			}
			name := tc.rule
			if name == "" {
				name = "no-let"
			}
			r, err := New(name, meta, tc.defaults, tc.handlers)
			require.Error(t, err)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, ErrInvalidRuleDefinition)

			var def *InvalidRuleDefinitionError
			require.ErrorAs(t, err, &def)
			assert.Contains(t, def.Error(), tc.reason)
		})
	}
}

func TestNew_DefaultsMustSatisfyEnum(t *testing.T) {
	type modeOptions struct {
		Mode string `koanf:"mode" json:"mode"`
	}
	meta := testMeta()
	meta.Schema = schema.Object(map[string]schema.Fragment{"mode": schema.Enum("strict", "loose")}, "mode")
	handlers := Handlers[modeOptions]{
		ast.ThisExpression: func(_ *ast.Node, ctx Context[modeOptions]) Result[modeOptions] { return ctx.Pass() },
	}

	for _, bad := range []string{"", "medium", "STRICT"} {
		_, err := New("mode-rule", meta, modeOptions{Mode: bad}, handlers)
		assert.ErrorIs(t, err, ErrInvalidRuleDefinition, "mode %q", bad)
	}
	_, err := New("mode-rule", meta, modeOptions{Mode: "strict"}, handlers)
	assert.NoError(t, err)
}

// limitOptions carries a constraint its schema cannot express.
type limitOptions struct {
	Min int `koanf:"min" json:"min"`
	Max int `koanf:"max" json:"max"`
}

func (o limitOptions) Validate() error {
	if o.Min > o.Max {
		return errors.New("min exceeds max")
	}
	return nil
}

func TestOptionsValidator(t *testing.T) {
	meta := testMeta()
	meta.Schema = schema.Object(map[string]schema.Fragment{
		"min": {"type": "integer"},
		"max": {"type": "integer"},
	})
	handlers := Handlers[limitOptions]{
		ast.ThisExpression: func(_ *ast.Node, ctx Context[limitOptions]) Result[limitOptions] { return ctx.Pass() },
	}

	_, err := New("limits", meta, limitOptions{Min: 2, Max: 1}, handlers)
	require.ErrorIs(t, err, ErrInvalidRuleDefinition)
	assert.ErrorContains(t, err, "min exceeds max")

	r, err := New("limits", meta, limitOptions{Max: 10}, handlers)
	require.NoError(t, err)

	opts, err := r.ResolveOptions(map[string]any{"min": 3})
	require.NoError(t, err)
	assert.Equal(t, limitOptions{Min: 3, Max: 10}, opts.Value())

	_, err = r.ResolveOptions(map[string]any{"min": 11})
	require.ErrorIs(t, err, ErrInvalidOptions)
	assert.ErrorContains(t, err, "min exceeds max")
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNew("", testMeta(), testOptions{}, Handlers[testOptions]{})
	})
}

func TestMergeSchema(t *testing.T) {
	merged, err := MergeSchema("r",
		schema.Object(map[string]schema.Fragment{"a": schema.Boolean()}),
		schema.Object(map[string]schema.Fragment{"b": schema.String()}),
	)
	require.NoError(t, err)
	assert.Len(t, merged["properties"], 2)

	_, err = MergeSchema("r",
		schema.Object(map[string]schema.Fragment{"a": schema.Boolean()}),
		schema.Object(map[string]schema.Fragment{"a": schema.String()}),
	)
	assert.ErrorIs(t, err, ErrInvalidRuleDefinition)
	assert.ErrorIs(t, err, schema.ErrConflict)
}

func TestVisit_LetAndConst(t *testing.T) {
	r := newLetRule(t)

	node, src := declaration("let")
	rep, err := r.Visit(node, Input{File: "a.js", Source: src})
	require.NoError(t, err)
	require.Len(t, rep.Findings, 1)
	assert.Equal(t, "no-let", rep.Rule)
	assert.Equal(t, "generic", rep.Findings[0].MessageID)
	assert.Equal(t, "Unexpected let, use const instead.", rep.Findings[0].Message)
	assert.Same(t, node, rep.Findings[0].Node, "descriptor without node reports the visited node")

	node, src = declaration("const")
	rep, err = r.Visit(node, Input{File: "a.js", Source: src})
	require.NoError(t, err)
	assert.Empty(t, rep.Findings)
}

func TestVisit_NoHandlerIsNoOp(t *testing.T) {
	r := newLetRule(t)
	rep, err := r.Visit(ast.New(ast.ThisExpression, 0, 4), Input{Source: []byte("this")})
	require.NoError(t, err)
	assert.Empty(t, rep.Findings)

	rep, err = r.Visit(nil, Input{})
	require.NoError(t, err)
	assert.Empty(t, rep.Findings)
}

func TestVisit_Idempotent(t *testing.T) {
	r := newLetRule(t)
	node, src := declaration("let")
	in := Input{File: "a.js", Source: src, Dialect: dialect.Info{Name: "modern"}}

	first, err := r.Visit(node, in)
	require.NoError(t, err)
	second, err := r.Visit(node, in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVisit_ConcurrentUse(t *testing.T) {
	r := newLetRule(t)
	node, src := declaration("let")

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rep, err := r.Visit(node, Input{Source: src})
			if err == nil && len(rep.Findings) != 1 {
				err = errors.New("unexpected findings")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestVisit_ContextCarriesInput(t *testing.T) {
	var got Context[testOptions]
	r := MustNew("spy", testMeta(), testOptions{}, Handlers[testOptions]{
		ast.Identifier: func(_ *ast.Node, ctx Context[testOptions]) Result[testOptions] {
			got = ctx
			return ctx.Pass()
		},
	})
	opts, err := r.ResolveOptions(map[string]any{"allowLocalMutation": true})
	require.NoError(t, err)

	info := dialect.Info{Name: "legacy", Level: dialect.Restricted}
	_, err = r.Visit(ast.New(ast.Identifier, 0, 1), Input{File: "b.js", Source: []byte("x"), Dialect: info, Options: opts})
	require.NoError(t, err)
	assert.Equal(t, "b.js", got.File)
	assert.Equal(t, info, got.Dialect)
	assert.True(t, got.Options.AllowLocalMutation)
}

func TestVisit_MessageData(t *testing.T) {
	r := MustNew("named", testMeta(), testOptions{}, Handlers[testOptions]{
		ast.Identifier: func(node *ast.Node, ctx Context[testOptions]) Result[testOptions] {
			return ctx.Report(Descriptor{MessageID: "named", Data: map[string]string{"name": ctx.Text(node)}})
		},
	})
	rep, err := r.Visit(ast.New(ast.Identifier, 0, 3), Input{Source: []byte("foo")})
	require.NoError(t, err)
	require.Len(t, rep.Findings, 1)
	assert.Equal(t, "Unexpected let for foo.", rep.Findings[0].Message)
}

func TestVisit_DefinitionErrorsAtReportTime(t *testing.T) {
	report := func(d Descriptor) Handler[testOptions] {
		return func(_ *ast.Node, ctx Context[testOptions]) Result[testOptions] {
			return ctx.Report(d)
		}
	}
	notFixable := testMeta()
	notFixable.Fixable = NotFixable

	tests := []struct {
		name    string
		meta    Meta
		handler Handler[testOptions]
		reason  string
	}{
		{"unknown message id", testMeta(), report(Descriptor{MessageID: "missing"}), `unknown message id "missing"`},
		{
			"fix on non-fixable rule", notFixable,
			report(Descriptor{MessageID: "generic", Fix: fix.New("x", fix.Insert(0, "x"))}),
			"meta.fixable is not set",
		},
		{
			"fix out of range", testMeta(),
			report(Descriptor{MessageID: "generic", Fix: fix.New("x", fix.Replace(ast.Range{Start: 0, End: 50}, ""))}),
			"inconsistent fix",
		},
		{
			"overlapping edits", testMeta(),
			report(Descriptor{MessageID: "generic", Fix: fix.New("x",
				fix.Replace(ast.Range{Start: 0, End: 2}, "a"),
				fix.Replace(ast.Range{Start: 1, End: 3}, "b"))}),
			"inconsistent fix",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := MustNew("broken", tc.meta, testOptions{}, Handlers[testOptions]{ast.Identifier: tc.handler})
			rep, err := r.Visit(ast.New(ast.Identifier, 0, 3), Input{Source: []byte("foo")})
			require.ErrorIs(t, err, ErrInvalidRuleDefinition)
			assert.Contains(t, err.Error(), tc.reason)
			assert.Empty(t, rep.Findings)
		})
	}
}

func TestVisit_TraversalFaults(t *testing.T) {
	child := ast.New(ast.Identifier, 4, 5)
	parent := ast.New(ast.VariableDeclarator, 4, 9).Append(child)

	tests := []struct {
		name    string
		handler Handler[testOptions]
		at      ast.NodeType
		message string
	}{
		{
			name: "Fail",
			handler: func(node *ast.Node, _ Context[testOptions]) Result[testOptions] {
				Fail(node.Child(0), "expected an initializer")
				return Result[testOptions]{}
			},
			at:      ast.Identifier,
			message: "expected an initializer",
		},
		{
			name: "nil dereference",
			handler: func(node *ast.Node, ctx Context[testOptions]) Result[testOptions] {
				_ = node.Child(3).Type
				return ctx.Pass()
			},
			at:      ast.VariableDeclarator,
			message: "panic",
		},
		{
			name: "panic with value",
			handler: func(*ast.Node, Context[testOptions]) Result[testOptions] {
				panic("unsupported")
			},
			at:      ast.VariableDeclarator,
			message: "panic: unsupported",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := MustNew("faulty", testMeta(), testOptions{}, Handlers[testOptions]{ast.VariableDeclarator: tc.handler})
			_, err := r.Visit(parent, Input{Source: []byte("let x = 1;")})
			require.ErrorIs(t, err, ErrTraversalFault)

			var fault *TraversalFault
			require.ErrorAs(t, err, &fault)
			assert.Equal(t, "faulty", fault.Rule)
			assert.Equal(t, tc.at, fault.NodeType)
			assert.Contains(t, fault.Error(), tc.message)
		})
	}
}

func TestVisit_ForeignOptions(t *testing.T) {
	r := newLetRule(t)
	other := MustNew("other", testMeta(), testOptions{}, Handlers[testOptions]{ast.Identifier: letHandler})

	node, src := declaration("let")
	_, err := r.Visit(node, Input{Source: src, Options: other.DefaultOptions()})
	assert.ErrorIs(t, err, ErrTraversalFault)
}

func TestResolveOptions(t *testing.T) {
	r := newLetRule(t)

	opts, err := r.ResolveOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, r.DefaultOptions(), opts)

	opts, err = r.ResolveOptions(map[string]any{"ignorePattern": "^mutable"})
	require.NoError(t, err)
	assert.Equal(t, testOptions{IgnorePattern: []string{"^mutable"}}, opts.Value())

	opts, err = r.ResolveOptions(map[string]any{"allowLocalMutation": true, "ignorePattern": []any{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, testOptions{AllowLocalMutation: true, IgnorePattern: []string{"a", "b"}}, opts.Value())

	for _, bad := range []map[string]any{
		{"allowLocalMutation": "yes"},
		{"ignorePattern": 7},
		{"unknownOption": true},
	} {
		_, err := r.ResolveOptions(bad)
		assert.ErrorIs(t, err, ErrInvalidOptions, "%v", bad)
	}
}

func TestFormatMessage(t *testing.T) {
	data := map[string]string{"name": "x", "kind": "let"}
	assert.Equal(t, "Unexpected let for x.", FormatMessage("Unexpected {{kind}} for {{ name }}.", data))
	assert.Equal(t, "keep {{ other }}", FormatMessage("keep {{ other }}", data))
	assert.Equal(t, "no data {{ name }}", FormatMessage("no data {{ name }}", nil))
	assert.Equal(t, []string{"kind", "name"}, Placeholders("{{kind}} and {{ name }}"))
}
