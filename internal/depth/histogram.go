// Package depth accumulates per-pixel-column HSP coverage and converts it
// into the stacked-dot scale drawn above the query line.
package depth

import "sort"

// DotsPerScaleStep is the depth range one dot stands for before the scale
// grows: a max depth below this draws one dot per HSP.
const DotsPerScaleStep = 10

// Histogram counts, per pixel column, how many HSPs cover it.
// It is owned by a single rendering pass and is not safe for concurrent use.
type Histogram struct {
	counts map[int]int
	max    int
}

// New returns an empty histogram.
func New() *Histogram {
	return &Histogram{counts: make(map[int]int)}
}

// Add counts one HSP spanning columns x1 through x2 inclusive.
func (h *Histogram) Add(x1, x2 int) {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		h.counts[x]++
		if h.counts[x] > h.max {
			h.max = h.counts[x]
		}
	}
}

// Depth returns the coverage of a column.
func (h *Histogram) Depth(col int) int {
	return h.counts[col]
}

// Len returns the number of covered columns.
func (h *Histogram) Len() int {
	return len(h.counts)
}

// Columns returns the covered columns in ascending order.
func (h *Histogram) Columns() []int {
	cols := make([]int, 0, len(h.counts))
	for c := range h.counts {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	return cols
}

// MaxDepth returns the largest column count, or 0 for an empty histogram.
func (h *Histogram) MaxDepth() int {
	return h.max
}

// DotScale returns how many HSPs one stacked dot represents.
func (h *Histogram) DotScale() int {
	return h.max/DotsPerScaleStep + 1
}

// Level returns the number of dots drawn for a column.
func (h *Histogram) Level(col int) int {
	return h.counts[col]/h.DotScale() + 1
}
