// Package sourcemap provides line-based access to source text: byte offset
// to line/column conversion for diagnostics, and snippet extraction.
package sourcemap

import (
	"bytes"
	"sort"
	"strings"
)

// SourceMap provides efficient access to source code by line.
// It precomputes line boundaries for fast position lookups.
//
// All line numbers are 0-based; columns are 0-based byte offsets within
// the line.
type SourceMap struct {
	// source is the raw source content.
	source []byte

	// lines are the individual lines (without line endings).
	lines []string

	// lineOffsets[i] is the byte offset where line i starts in source.
	lineOffsets []int
}

// New creates a SourceMap from source content.
// Lines are split on \n (handles both \n and \r\n).
func New(source []byte) *SourceMap {
	rawLines := bytes.Split(source, []byte{'\n'})
	lines := make([]string, len(rawLines))
	lineOffsets := make([]int, len(rawLines))

	offset := 0
	for i, line := range rawLines {
		lineOffsets[i] = offset
		lines[i] = strings.TrimSuffix(string(line), "\r")
		offset += len(line) + 1
	}

	return &SourceMap{
		source:      source,
		lines:       lines,
		lineOffsets: lineOffsets,
	}
}

// Lines returns all lines (without line endings).
// The returned slice should not be modified.
func (sm *SourceMap) Lines() []string {
	return sm.lines
}

// LineCount returns the total number of lines.
func (sm *SourceMap) LineCount() int {
	return len(sm.lines)
}

// Line returns the text of a specific line (0-based).
// Returns empty string if line is out of range.
func (sm *SourceMap) Line(line int) string {
	if line < 0 || line >= len(sm.lines) {
		return ""
	}
	return sm.lines[line]
}

// LineOffset returns the byte offset where a line starts (0-based).
// Returns -1 if line is out of range.
func (sm *SourceMap) LineOffset(line int) int {
	if line < 0 || line >= len(sm.lineOffsets) {
		return -1
	}
	return sm.lineOffsets[line]
}

// Position converts a byte offset into a 0-based line and column.
// Offsets are clamped to the source.
func (sm *SourceMap) Position(offset int) (line, column int) {
	offset = max(0, min(offset, len(sm.source)))
	line = sort.Search(len(sm.lineOffsets), func(i int) bool {
		return sm.lineOffsets[i] > offset
	}) - 1
	return line, offset - sm.lineOffsets[line]
}

// Offset converts a 0-based line and column back into a byte offset.
// Returns -1 if the line is out of range; the column is clamped to the line.
func (sm *SourceMap) Offset(line, column int) int {
	start := sm.LineOffset(line)
	if start < 0 {
		return -1
	}
	return start + max(0, min(column, len(sm.lines[line])))
}

// Snippet extracts a range of lines as a single string.
// Both startLine and endLine are 0-based and inclusive.
// Returns empty string if range is invalid.
//
// Example:
//
//	sm.Snippet(2, 4) // Returns lines 2, 3, and 4 joined with newlines
func (sm *SourceMap) Snippet(startLine, endLine int) string {
	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(sm.lines) {
		endLine = len(sm.lines) - 1
	}
	if startLine > endLine || startLine >= len(sm.lines) {
		return ""
	}

	return strings.Join(sm.lines[startLine:endLine+1], "\n")
}

// SnippetAround extracts context lines around a target line.
// The before/after counts are clamped to available lines.
func (sm *SourceMap) SnippetAround(line, before, after int) string {
	return sm.Snippet(line-before, line+after)
}

// RangeSnippet returns the full lines covering the byte range [start, end).
func (sm *SourceMap) RangeSnippet(start, end int) string {
	first, _ := sm.Position(start)
	last, _ := sm.Position(max(start, end-1))
	return sm.Snippet(first, last)
}

// Source returns the raw source content.
// The returned slice should not be modified.
func (sm *SourceMap) Source() []byte {
	return sm.source
}
