package processor

import (
	"path/filepath"

	"github.com/wharflab/fnlint/internal/rules"
	"github.com/wharflab/fnlint/internal/sourcemap"
)

// PathNormalization rewrites violation paths with forward slashes so output
// is identical across platforms. Sources stay keyed by native path;
// [Context.GetSourceMap] accepts either form.
type PathNormalization struct{}

// NewPathNormalization creates a new path normalization processor.
func NewPathNormalization() *PathNormalization {
	return &PathNormalization{}
}

// Name returns the processor's identifier.
func (p *PathNormalization) Name() string {
	return "path-normalization"
}

// Process normalizes all file paths to use forward slashes.
func (p *PathNormalization) Process(violations []rules.Violation, _ *Context) []rules.Violation {
	return transformViolations(violations, func(v rules.Violation) rules.Violation {
		v.Location.File = filepath.ToSlash(v.Location.File)
		return v
	})
}

// SnippetAttachment fills SourceCode with the full lines a violation spans,
// so reporters can show context without the source map.
type SnippetAttachment struct{}

// NewSnippetAttachment creates a new snippet attachment processor.
func NewSnippetAttachment() *SnippetAttachment {
	return &SnippetAttachment{}
}

// Name returns the processor's identifier.
func (p *SnippetAttachment) Name() string {
	return "snippet-attachment"
}

// Process attaches source code snippets to violations. Violations that
// already carry one, file-level violations and unknown files are left alone.
func (p *SnippetAttachment) Process(violations []rules.Violation, ctx *Context) []rules.Violation {
	return transformViolations(violations, func(v rules.Violation) rules.Violation {
		if v.SourceCode != "" || v.Location.IsFileLevel() {
			return v
		}
		if sm := ctx.GetSourceMap(v.Location.File); sm != nil {
			v.SourceCode = extractSnippet(sm, v.Location)
		}
		return v
	})
}

// extractSnippet maps loc to a byte range and returns the lines covering
// it. A range ending at column 0 of a later line does not include that line.
func extractSnippet(sm *sourcemap.SourceMap, loc rules.Location) string {
	start := sm.Offset(loc.Start.Line-1, loc.Start.Column)
	if start < 0 {
		return ""
	}
	if loc.IsPointLocation() {
		return sm.RangeSnippet(start, start)
	}
	end := sm.Offset(loc.End.Line-1, loc.End.Column)
	if end < 0 {
		end = len(sm.Source())
	}
	return sm.RangeSnippet(start, max(start, end))
}
