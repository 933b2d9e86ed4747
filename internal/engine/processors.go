package engine

import (
	"github.com/wharflab/fnlint/internal/processor"
	"github.com/wharflab/fnlint/internal/rules"
)

// Processors returns the standard processor chain and the inline directive
// filter (the caller needs it for [processor.InlineDirectiveFilter.AdditionalViolations]).
// Directive rule names are checked against reg.
func Processors(reg *rules.Registry) (*processor.Chain, *processor.InlineDirectiveFilter) {
	inlineFilter := processor.NewInlineDirectiveFilter(reg.Has)
	chain := processor.NewChain(
		processor.NewPathNormalization(),   // Normalize paths for cross-platform consistency
		processor.NewEnableFilter(),        // Filter rules with severity="off"
		processor.NewPathExclusionFilter(), // Apply per-rule path exclusions
		inlineFilter,                       // Apply inline disable directives
		processor.NewDeduplication(),       // Remove duplicate violations
		processor.NewSorting(),             // Stable output ordering
		processor.NewSnippetAttachment(),   // Attach source code snippets
	)
	return chain, inlineFilter
}
