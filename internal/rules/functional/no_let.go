package functional

import (
	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/fix"
	"github.com/wharflab/fnlint/internal/rules"
	"github.com/wharflab/fnlint/internal/rules/options"
)

// NoLetName is the name of the no-let rule.
const NoLetName = "no-let"

// NoLetOptions configures no-let.
type NoLetOptions struct {
	// AllowLocalMutation allows let inside functions.
	AllowLocalMutation bool `koanf:"allowLocalMutation" json:"allowLocalMutation"`

	// IgnorePattern leaves declarations alone when every declared name
	// matches one of the patterns.
	IgnorePattern []string `koanf:"ignorePattern" json:"ignorePattern,omitempty"`
}

// Validate rejects malformed ignore patterns.
func (o NoLetOptions) Validate() error {
	return options.ValidatePatterns(o.IgnorePattern)
}

// NewNoLetRule builds no-let, which flags `let` declarations.
func NewNoLetRule() (*rules.Rule, error) {
	optionSchema, err := rules.MergeSchema(NoLetName, options.AllowLocalMutationSchema, options.IgnorePatternSchema)
	if err != nil {
		return nil, err
	}
	return rules.New(NoLetName, rules.Meta{
		Type: rules.TypeSuggestion,
		Docs: rules.Docs{
			Description: "Disallow mutable variables.",
			Category:    "Best Practices",
			Recommended: rules.SeverityError,
			URL:         docURL(NoLetName),
		},
		Messages: map[string]string{
			"generic": "Unexpected let, use const instead.",
		},
		Fixable: rules.FixableCode,
		Schema:  optionSchema,
	}, NoLetOptions{}, rules.Handlers[NoLetOptions]{
		ast.VariableDeclaration: checkLet,
	})
}

func checkLet(node *ast.Node, ctx rules.Context[NoLetOptions]) rules.Result[NoLetOptions] {
	if node.Kind != "let" ||
		options.LocalMutationAllowed(ctx.Options.AllowLocalMutation, node) ||
		options.ShouldIgnore(ctx.Options.IgnorePattern, options.DeclaredNames(node)...) {
		return ctx.Pass()
	}
	return ctx.Report(rules.Descriptor{
		MessageID: "generic",
		Fix:       letToConst(node, ctx.Source),
	})
}

// letToConst rewrites the keyword of decl. Only declarations where every
// binding is initialized and never written again qualify, and never a loop
// head: `const` there would reject the loop's own updates.
func letToConst(decl *ast.Node, src []byte) *fix.Fix {
	if p := decl.Parent(); p == nil || p.Type.IsLoop() {
		return nil
	}
	declarators := decl.ChildrenOf(ast.VariableDeclarator)
	if len(declarators) == 0 {
		return nil
	}
	bound := make(map[string]bool)
	for _, d := range declarators {
		// The binding is the first child; anything after it is the initializer.
		if len(d.Children) < 2 {
			return nil
		}
		for _, name := range bindingNames(d.Child(0)) {
			bound[name] = true
		}
	}
	if writesAny(enclosingScope(decl), bound) {
		return nil
	}

	kw := ast.Range{Start: decl.Range.Start, End: decl.Range.Start + len("let")}
	if !kw.Valid(len(src)) || string(src[kw.Start:kw.End]) != "let" {
		return nil
	}
	return fix.New("Replace let with const", fix.Replace(kw, "const"))
}

// enclosingScope returns the nearest function or program around node. A
// block-scoped binding cannot be referenced outside it.
func enclosingScope(node *ast.Node) *ast.Node {
	scope := node
	for p := node.Parent(); p != nil; p = p.Parent() {
		scope = p
		if p.Type.IsFunction() || p.Type == ast.Program {
			break
		}
	}
	return scope
}

// bindingNames returns the identifiers a binding or assignment target
// names. Member expressions write a property, not a binding, and name
// nothing.
func bindingNames(target *ast.Node) []string {
	switch {
	case target == nil:
		return nil
	case target.Type == ast.Identifier:
		return []string{target.Name}
	case target.Type == ast.ObjectExpression || target.Type == ast.ArrayExpression:
		var names []string
		for _, c := range target.Children {
			names = append(names, bindingNames(c)...)
		}
		return names
	case target.Type == ast.AssignmentExpression:
		// A default value in a pattern: `[a = 1] = xs`.
		return bindingNames(target.Child(0))
	default:
		return nil
	}
}

// writesAny reports whether any node under scope, nested closures
// included, assigns to one of names. Shadowing is ignored, so a write to
// an inner binding of the same name also counts.
func writesAny(scope *ast.Node, names map[string]bool) bool {
	found := false
	ast.Walk(scope, func(n *ast.Node) bool {
		if found {
			return false
		}
		var target *ast.Node
		switch n.Type {
		case ast.AssignmentExpression, ast.UpdateExpression:
			target = n.Child(0)
		case ast.ForInStatement, ast.ForOfStatement:
			if head := n.Child(0); head != nil && head.Type != ast.VariableDeclaration {
				target = head
			}
		}
		for _, name := range bindingNames(target) {
			if names[name] {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
