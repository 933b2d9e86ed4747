// Package fix describes automatic corrections proposed by rules.
//
// A Fix is a list of byte-range replacements against the original source.
// Rules only describe fixes; applying them is the host's job. Apply exists
// for tests and simple hosts that rewrite a single file in one pass.
package fix

import (
	"errors"
	"fmt"

	"github.com/wharflab/fnlint/internal/ast"
)

// ErrInvalidFix is returned by Validate for a fix that is not self-consistent.
var ErrInvalidFix = errors.New("invalid fix")

// Edit replaces the bytes in Range with Text.
// An empty range inserts; an empty Text deletes.
type Edit struct {
	Range ast.Range `json:"range"`
	Text  string    `json:"text"`
}

// Fix is one correction: all of its edits are applied together or not at all.
type Fix struct {
	// Description explains what the fix does (optional).
	Description string `json:"description,omitempty"`
	// Edits are relative to the original source and must not overlap.
	Edits []Edit `json:"edits"`
}

// New builds a fix from edits.
func New(description string, edits ...Edit) *Fix {
	return &Fix{Description: description, Edits: edits}
}

// Replace replaces r with text.
func Replace(r ast.Range, text string) Edit {
	return Edit{Range: r, Text: text}
}

// ReplaceNode replaces the source of n with text.
func ReplaceNode(n *ast.Node, text string) Edit {
	return Edit{Range: n.Range, Text: text}
}

// Insert inserts text at offset.
func Insert(offset int, text string) Edit {
	return Edit{Range: ast.Range{Start: offset, End: offset}, Text: text}
}

// Remove deletes r.
func Remove(r ast.Range) Edit {
	return Edit{Range: r}
}

// Validate checks that f can be applied to a source of size bytes:
// it has at least one edit, every edit lies within the source, and no two
// edits overlap. A nil fix is valid.
func Validate(f *Fix, size int) error {
	if f == nil {
		return nil
	}
	if len(f.Edits) == 0 {
		return fmt.Errorf("%w: no edits", ErrInvalidFix)
	}
	for i, e := range f.Edits {
		if !e.Range.Valid(size) {
			return fmt.Errorf("%w: edit %d range [%d,%d) outside source of %d bytes",
				ErrInvalidFix, i, e.Range.Start, e.Range.End, size)
		}
	}
	for i := range f.Edits {
		for j := i + 1; j < len(f.Edits); j++ {
			if editsOverlap(f.Edits[i], f.Edits[j]) {
				return fmt.Errorf("%w: edits %d and %d overlap", ErrInvalidFix, i, j)
			}
		}
	}
	return nil
}
