package rules

import (
	"maps"

	"github.com/wharflab/fnlint/internal/schema"
)

// Type classifies what a rule is about.
type Type string

const (
	// TypeProblem rules find code that is likely wrong.
	TypeProblem Type = "problem"
	// TypeSuggestion rules suggest a better way of writing code.
	TypeSuggestion Type = "suggestion"
	// TypeLayout rules care about formatting only.
	TypeLayout Type = "layout"
)

// Fixable declares which kind of fixes a rule may propose.
type Fixable string

const (
	// NotFixable rules never propose fixes.
	NotFixable Fixable = ""
	// FixableCode rules may change code.
	FixableCode Fixable = "code"
	// FixableWhitespace rules only change whitespace.
	FixableWhitespace Fixable = "whitespace"
)

// Docs is the documentation part of a rule's metadata.
type Docs struct {
	// Description is a one-line summary of what the rule disallows.
	Description string `json:"description"`
	// Category groups related rules (e.g. "Best Practices").
	Category string `json:"category,omitempty"`
	// Recommended is the severity in the recommended configuration;
	// SeverityOff keeps the rule out of it.
	Recommended Severity `json:"recommended"`
	// URL links to detailed documentation (optional).
	URL string `json:"url,omitempty"`
}

// Meta is the static description of a rule that hosts list, document and
// configure.
type Meta struct {
	Type Type `json:"type"`
	Docs Docs `json:"docs"`
	// Messages maps message ids to templates. Templates may reference
	// descriptor data as {{ name }}.
	Messages map[string]string `json:"messages"`
	Fixable  Fixable           `json:"fixable,omitempty"`
	// Schema is the JSON Schema of the rule's options, usually assembled
	// with schema.Merge from reusable fragments.
	Schema schema.Fragment `json:"schema"`
}

func (m Meta) clone() Meta {
	m.Messages = maps.Clone(m.Messages)
	m.Schema = m.Schema.Clone()
	return m
}
