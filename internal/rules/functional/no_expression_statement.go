package functional

import (
	"bytes"

	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/rules"
	"github.com/wharflab/fnlint/internal/rules/options"
)

// NoExpressionStatementName is the name of the no-expression-statement rule.
const NoExpressionStatementName = "no-expression-statement"

// NoExpressionStatementOptions configures no-expression-statement.
type NoExpressionStatementOptions struct {
	// IgnorePattern leaves statements alone whose source text matches one
	// of the patterns, e.g. "^console\\.".
	IgnorePattern []string `koanf:"ignorePattern" json:"ignorePattern,omitempty"`
}

// Validate rejects malformed ignore patterns.
func (o NoExpressionStatementOptions) Validate() error {
	return options.ValidatePatterns(o.IgnorePattern)
}

// NewNoExpressionStatementRule builds no-expression-statement, which flags
// statements that exist only for their side effects.
func NewNoExpressionStatementRule() (*rules.Rule, error) {
	optionSchema, err := rules.MergeSchema(NoExpressionStatementName, options.IgnorePatternSchema)
	if err != nil {
		return nil, err
	}
	return rules.New(NoExpressionStatementName, rules.Meta{
		Type: rules.TypeSuggestion,
		Docs: rules.Docs{
			Description: "Disallow expression statements.",
			Category:    "No Statements",
			Recommended: rules.SeverityOff,
			URL:         docURL(NoExpressionStatementName),
		},
		Messages: map[string]string{
			"generic": "Using expressions to cause side-effects not allowed.",
		},
		Schema: optionSchema,
	}, NoExpressionStatementOptions{}, rules.Handlers[NoExpressionStatementOptions]{
		ast.ExpressionStatement: checkExpressionStatement,
	})
}

func checkExpressionStatement(
	node *ast.Node,
	ctx rules.Context[NoExpressionStatementOptions],
) rules.Result[NoExpressionStatementOptions] {
	if inDirectivePrologue(node, ctx.Source) || options.Matches(ctx.Options.IgnorePattern, ctx.Text(node)) {
		return ctx.Pass()
	}
	return ctx.Report(rules.Descriptor{MessageID: "generic"})
}

// inDirectivePrologue reports whether stmt is part of the run of string
// literal statements ("use strict") opening a program or function body.
func inDirectivePrologue(stmt *ast.Node, src []byte) bool {
	body := stmt.Parent()
	if body == nil {
		return false
	}
	switch {
	case body.Type == ast.Program:
	case body.Type == ast.BlockStatement && body.Parent() != nil && body.Parent().Type.IsFunction():
	default:
		return false
	}

	for _, sibling := range body.Children {
		if !isStringStatement(sibling, src) {
			return false
		}
		if sibling == stmt {
			return true
		}
	}
	return false
}

// isStringStatement reports whether n is a bare string literal statement.
// A parenthesized string is an ordinary expression, not a directive.
func isStringStatement(n *ast.Node, src []byte) bool {
	if n.Type != ast.ExpressionStatement || len(n.Children) != 1 {
		return false
	}
	lit := n.Children[0]
	if lit.Type != ast.Literal || lit.Range.Len() < 2 || !lit.Range.Valid(len(src)) {
		return false
	}
	q := src[lit.Range.Start]
	if q != '"' && q != '\'' {
		return false
	}
	next := skipSpace(src, lit.Range.End)
	return next >= len(src) || src[next] != ')'
}

// skipSpace returns the offset of the first byte at or after i that is
// neither whitespace nor inside a comment.
func skipSpace(src []byte, i int) int {
	for i < len(src) {
		switch {
		case src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r':
			i++
		case bytes.HasPrefix(src[i:], []byte("//")):
			end := bytes.IndexByte(src[i:], '\n')
			if end < 0 {
				return len(src)
			}
			i += end + 1
		case bytes.HasPrefix(src[i:], []byte("/*")):
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return len(src)
			}
			i += 2 + end + 2
		default:
			return i
		}
	}
	return i
}
