package functional

import (
	"testing"

	"github.com/wharflab/fnlint/internal/ruletest"
)

func TestNoThisExpression(t *testing.T) {
	rule := mustBuild(t, NewNoThisExpressionRule)

	ruletest.RunAcrossDialects(t, NoThisExpressionName, rule, []ruletest.Fixture{
		{Name: "no this", Code: "var a = b.c;", Want: ruletest.Valid()},
		{Name: "alias", Code: "var self = this;", Want: ruletest.Invalid("generic")},
		{Name: "member", Code: "function f() { return this.x; }", Want: ruletest.Invalid("generic")},
		{Name: "assignment", Code: "this.a = this.b;", Want: ruletest.Invalid("generic", "generic")},
		{
			Name:       "class method",
			Code:       "class A { m() { return this.x; } }",
			Permissive: ruletest.Invalid("generic"),
			Restricted: ruletest.Unparsable(),
		},
		{
			Name:       "arrow",
			Code:       "var f = () => this;",
			Permissive: ruletest.Invalid("generic"),
			Restricted: ruletest.Unparsable(),
		},
	}, ruletest.DefaultDialects())
}
