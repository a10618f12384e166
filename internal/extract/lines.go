package extract

import (
	"math"
	"slices"
	"sort"
)

// groupLines orders fragments top-to-bottom (descending y) and splits them
// into lines. A fragment starts a new line when its y differs from the first
// fragment of the current line by more than tol; comparing against the first
// fragment keeps slow baseline drift from chaining lines together. Each line
// is then ordered left-to-right. Sorting is stable, so fragments at the same
// position keep content-stream order.
func groupLines(frags []pdfFragment, tol float64) [][]pdfFragment {
	if len(frags) == 0 {
		return nil
	}
	sorted := slices.Clone(frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].y != sorted[j].y {
			return sorted[i].y > sorted[j].y
		}
		return sorted[i].x < sorted[j].x
	})

	var lines [][]pdfFragment
	cur := []pdfFragment{sorted[0]}
	refY := sorted[0].y
	for _, f := range sorted[1:] {
		if math.Abs(f.y-refY) > tol {
			lines = append(lines, cur)
			cur = []pdfFragment{f}
			refY = f.y
			continue
		}
		cur = append(cur, f)
	}
	lines = append(lines, cur)

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].x < line[j].x })
	}
	return lines
}
