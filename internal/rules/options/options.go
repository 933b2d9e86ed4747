// Package options holds the option families shared by several rules: their
// schema fragments and the checks rules run against them.
//
// A rule's option schema is the merge of the fragments it supports, e.g.
//
//	rules.MergeSchema(name, options.AllowLocalMutationSchema, options.IgnorePatternSchema)
package options

import (
	"fmt"
	"sync"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/schema"
)

// AllowLocalMutationSchema is the fragment of the "allowLocalMutation"
// option: when true, mutation inside a function body is allowed.
var AllowLocalMutationSchema = schema.Object(map[string]schema.Fragment{
	"allowLocalMutation": schema.Boolean(),
})

// IgnorePatternSchema is the fragment of the "ignorePattern" option: one
// regular expression or a list of them naming things the rule leaves alone.
var IgnorePatternSchema = schema.Object(map[string]schema.Fragment{
	"ignorePattern": schema.StringOrStrings(),
})

// InLocalScope reports whether node sits inside a function.
func InLocalScope(node *ast.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Type.IsFunction() {
			return true
		}
	}
	return false
}

// LocalMutationAllowed reports whether a mutation at node is permitted by
// the allowLocalMutation option.
func LocalMutationAllowed(allow bool, node *ast.Node) bool {
	return allow && InLocalScope(node)
}

// matchTimeout bounds a single match, so a pathological pattern cannot
// stall linting.
const matchTimeout = 100 * time.Millisecond

// compiled caches patterns by source text. Values are *regexp2.Regexp or
// the compile error.
var compiled sync.Map

func compile(pattern string) (*regexp2.Regexp, error) {
	if v, ok := compiled.Load(pattern); ok {
		if err, isErr := v.(error); isErr {
			return nil, err
		}
		return v.(*regexp2.Regexp), nil
	}
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		err = fmt.Errorf("invalid ignorePattern %q: %w", pattern, err)
		compiled.Store(pattern, err)
		return nil, err
	}
	re.MatchTimeout = matchTimeout
	compiled.Store(pattern, re)
	return re, nil
}

// Matches reports whether text matches any of the patterns. Patterns are
// ECMAScript regular expressions and match anywhere in text unless
// anchored, e.g. "^mutable" or "^(tmp|acc)$". Malformed patterns and
// matches that time out never match.
func Matches(patterns []string, text string) bool {
	for _, p := range patterns {
		re, err := compile(p)
		if err != nil {
			continue
		}
		if ok, err := re.MatchString(text); err == nil && ok {
			return true
		}
	}
	return false
}

// ShouldIgnore reports whether every one of names matches the ignore
// patterns. With no patterns or no names nothing is ignored.
func ShouldIgnore(patterns []string, names ...string) bool {
	if len(patterns) == 0 || len(names) == 0 {
		return false
	}
	for _, n := range names {
		if !Matches(patterns, n) {
			return false
		}
	}
	return true
}

// ValidatePatterns returns the first malformed pattern's error.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := compile(p); err != nil {
			return err
		}
	}
	return nil
}

// DeclaredNames returns the identifiers a VariableDeclaration binds, in
// order. Destructuring patterns are not modelled and contribute nothing.
func DeclaredNames(decl *ast.Node) []string {
	var names []string
	for _, d := range decl.ChildrenOf(ast.VariableDeclarator) {
		if id := d.Child(0); id != nil && id.Type == ast.Identifier {
			names = append(names, id.Name)
		}
	}
	return names
}
