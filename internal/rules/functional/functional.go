// Package functional implements the rules that steer JavaScript towards a
// functional style: no mutable bindings, no loops, no `this`, and no
// statements evaluated only for their side effects.
package functional

import "github.com/wharflab/fnlint/internal/rules"

const docBase = "https://github.com/wharflab/fnlint/blob/main/docs/rules/"

// Builders returns a builder for every rule in the package.
func Builders() []rules.Builder {
	return []rules.Builder{
		NewNoExpressionStatementRule,
		NewNoLetRule,
		NewNoLoopStatementRule,
		NewNoThisExpressionRule,
	}
}

func docURL(name string) string {
	return docBase + name + ".md"
}
