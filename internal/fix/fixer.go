package fix

import (
	"sort"
)

// Result is the outcome of Apply.
type Result struct {
	// Output is the rewritten source.
	Output []byte
	// Applied and Skipped hold indexes into the fixes passed to Apply.
	Applied []int
	Skipped []int
}

// Apply applies fixes to src in one pass.
//
// Fixes are considered in order of their first edit (ties by index). A fix
// that is invalid, or that overlaps a fix already accepted, is skipped as a
// whole. Nil fixes are ignored and appear in neither list.
func Apply(src []byte, fixes []*Fix) Result {
	order := make([]int, 0, len(fixes))
	for i, f := range fixes {
		if f != nil {
			order = append(order, i)
		}
	}

	var res Result
	accepted := make([]*Fix, 0, len(order))
	valid := order[:0]
	for _, i := range order {
		if Validate(fixes[i], len(src)) != nil {
			res.Skipped = append(res.Skipped, i)
			continue
		}
		valid = append(valid, i)
	}
	sort.SliceStable(valid, func(a, b int) bool {
		return start(fixes[valid[a]]) < start(fixes[valid[b]])
	})

	var edits []Edit
	for _, i := range valid {
		f := fixes[i]
		conflict := false
		for _, other := range accepted {
			if fixesOverlap(f, other) {
				conflict = true
				break
			}
		}
		if conflict {
			res.Skipped = append(res.Skipped, i)
			continue
		}
		accepted = append(accepted, f)
		res.Applied = append(res.Applied, i)
		edits = append(edits, f.Edits...)
	}
	sort.Ints(res.Applied)
	sort.Ints(res.Skipped)

	// Later positions first, so earlier offsets stay valid.
	sort.SliceStable(edits, func(i, j int) bool {
		return compareEdits(edits[j], edits[i])
	})

	out := append([]byte(nil), src...)
	for _, e := range edits {
		out = applyEdit(out, e)
	}
	res.Output = out
	return res
}

func applyEdit(content []byte, e Edit) []byte {
	out := make([]byte, 0, len(content)-e.Range.Len()+len(e.Text))
	out = append(out, content[:e.Range.Start]...)
	out = append(out, e.Text...)
	return append(out, content[e.Range.End:]...)
}
