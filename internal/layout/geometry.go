package layout

import "math"

// Geometry is the pixel size of a diagram canvas.
type Geometry struct {
	Width  int
	Height int
}

// ComputeSize derives the canvas size from the number of hits and distinct
// subjects. Height is clamped to [MinHeight, MaxHeight]; counts large enough
// to overflow saturate at MaxHeight.
func ComputeSize(cfg Config, hitCount, subjectCount int) Geometry {
	limit := int64(cfg.MaxHeight)
	h := int64(cfg.HeaderHeight) + int64(cfg.FooterHeight) +
		rowsHeight(cfg.HSPRowSpacing, hitCount, limit) +
		rowsHeight(cfg.SubjectRowSpacing, subjectCount, limit)

	return Geometry{
		Width:  cfg.Width(),
		Height: int(clamp(h, int64(cfg.MinHeight), limit)),
	}
}

// rowsHeight returns spacing*n, or limit+1 when the product would exceed
// limit. Negative counts take no space.
func rowsHeight(spacing, n int, limit int64) int64 {
	if spacing <= 0 || n <= 0 {
		return 0
	}
	if int64(n) > limit/int64(spacing) {
		return limit + 1
	}
	return int64(spacing) * int64(n)
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mapper converts query coordinates to horizontal pixel positions.
type Mapper struct {
	min   int
	ratio float64
	left  int
}

// NewMapper builds a mapper for the query range [min, max]. An empty range
// (max < min) yields a degenerate mapper that places every coordinate on the
// left margin.
func NewMapper(cfg Config, min, max int) *Mapper {
	m := &Mapper{min: min, left: cfg.LeftMargin}
	if max >= min {
		m.ratio = float64(cfg.BodyWidth) / float64(max-min+1)
	}
	return m
}

// Ratio returns pixels per query residue.
func (m *Mapper) Ratio() float64 {
	return m.ratio
}

// ToPixelX maps a query coordinate to a canvas x position.
func (m *Mapper) ToPixelX(coord int) int {
	return int(math.Round(float64(coord-m.min)*m.ratio)) + m.left
}
