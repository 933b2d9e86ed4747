package functional

import (
	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/rules"
	"github.com/wharflab/fnlint/internal/schema"
)

// NoThisExpressionName is the name of the no-this-expression rule.
const NoThisExpressionName = "no-this-expression"

// NewNoThisExpressionRule builds no-this-expression.
func NewNoThisExpressionRule() (*rules.Rule, error) {
	return rules.New(NoThisExpressionName, rules.Meta{
		Type: rules.TypeSuggestion,
		Docs: rules.Docs{
			Description: "Disallow this access.",
			Category:    "No Object-Orientation",
			Recommended: rules.SeverityError,
			URL:         docURL(NoThisExpressionName),
		},
		Messages: map[string]string{
			"generic": "Unexpected this, use functions not classes.",
		},
		Schema: schema.Object(nil),
	}, struct{}{}, rules.Handlers[struct{}]{
		ast.ThisExpression: func(_ *ast.Node, ctx rules.Context[struct{}]) rules.Result[struct{}] {
			return ctx.Report(rules.Descriptor{MessageID: "generic"})
		},
	})
}
