package functional

import (
	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/rules"
	"github.com/wharflab/fnlint/internal/schema"
)

// NoLoopStatementName is the name of the no-loop-statement rule.
const NoLoopStatementName = "no-loop-statement"

// NewNoLoopStatementRule builds no-loop-statement, which flags every kind
// of loop.
func NewNoLoopStatementRule() (*rules.Rule, error) {
	handlers := rules.Handlers[struct{}]{}
	for _, t := range ast.NodeTypes() {
		if t.IsLoop() {
			handlers[t] = reportLoop
		}
	}
	return rules.New(NoLoopStatementName, rules.Meta{
		Type: rules.TypeSuggestion,
		Docs: rules.Docs{
			Description: "Disallow imperative loops.",
			Category:    "No Statements",
			Recommended: rules.SeverityError,
			URL:         docURL(NoLoopStatementName),
		},
		Messages: map[string]string{
			"generic": "Unexpected loop, use map or reduce instead.",
		},
		Schema: schema.Object(nil),
	}, struct{}{}, handlers)
}

func reportLoop(_ *ast.Node, ctx rules.Context[struct{}]) rules.Result[struct{}] {
	return ctx.Report(rules.Descriptor{MessageID: "generic"})
}
