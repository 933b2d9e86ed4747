package fix

import "sort"

// editsOverlap checks if two edits overlap in their ranges.
// Overlapping edits cannot both be applied safely.
func editsOverlap(a, b Edit) bool {
	return a.Range.Overlaps(b.Range)
}

// fixesOverlap reports whether any edit of a overlaps any edit of b.
func fixesOverlap(a, b *Fix) bool {
	for _, ea := range a.Edits {
		for _, eb := range b.Edits {
			if editsOverlap(ea, eb) {
				return true
			}
		}
	}
	return false
}

// compareEdits returns true if edit a comes before edit b in the file.
func compareEdits(a, b Edit) bool {
	if a.Range.Start != b.Range.Start {
		return a.Range.Start < b.Range.Start
	}
	return a.Range.End < b.Range.End
}

// Conflict names two fixes, by index, whose edits overlap.
type Conflict struct {
	A, B int
}

// Conflicts returns every pair of fixes that overlap, ordered by index.
// It does not decide which fix should win; nil fixes are ignored.
func Conflicts(fixes []*Fix) []Conflict {
	var out []Conflict
	for i := range fixes {
		if fixes[i] == nil {
			continue
		}
		for j := i + 1; j < len(fixes); j++ {
			if fixes[j] != nil && fixesOverlap(fixes[i], fixes[j]) {
				out = append(out, Conflict{A: i, B: j})
			}
		}
	}
	return out
}

// start returns the offset of the earliest edit of f.
func start(f *Fix) int {
	edits := append([]Edit(nil), f.Edits...)
	sort.Slice(edits, func(i, j int) bool { return compareEdits(edits[i], edits[j]) })
	return edits[0].Range.Start
}
