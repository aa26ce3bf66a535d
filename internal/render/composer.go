package render

import (
	"fmt"
	"image"
	"strconv"

	"go.uber.org/zap"

	"github.com/inodb/blast-imager/internal/depth"
	"github.com/inodb/blast-imager/internal/fmt6"
	"github.com/inodb/blast-imager/internal/layout"
	"github.com/inodb/blast-imager/internal/palette"
)

// Horizontal pixels assumed per character when placing coordinate labels
// to the left of a bar.
const charWidth = 5

// CanvasFactory creates a blank canvas of the given size.
type CanvasFactory func(g layout.Geometry) (Canvas, error)

// Result summarizes what a composition drew.
type Result struct {
	Geometry layout.Geometry
	Subjects int
	HSPs     int
	MaxDepth int
	DotScale int
	// Clamped counts HSPs whose identity fell outside the palette range.
	Clamped int
}

// Composer lays out an AlignmentSet and emits its draw calls.
type Composer struct {
	layout    layout.Config
	palette   palette.Palette
	newCanvas CanvasFactory
	logger    *zap.Logger
}

// NewComposer creates a composer with the given layout and palette that
// renders to PNG raster canvases.
func NewComposer(cfg layout.Config, p palette.Palette) *Composer {
	return &Composer{
		layout:  cfg,
		palette: p,
		newCanvas: func(g layout.Geometry) (Canvas, error) {
			return NewRasterCanvas(g.Width, g.Height, palette.Background)
		},
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and debug messages.
func (c *Composer) SetLogger(l *zap.Logger) {
	c.logger = l
}

// SetCanvasFactory replaces the canvas backend.
func (c *Composer) SetCanvasFactory(f CanvasFactory) {
	c.newCanvas = f
}

// Size returns the canvas geometry for a set.
func (c *Composer) Size(set *fmt6.AlignmentSet) layout.Geometry {
	return layout.ComputeSize(c.layout, set.HitCount(), set.SubjectCount())
}

// Render draws set onto a new canvas and saves it to path.
func (c *Composer) Render(set *fmt6.AlignmentSet, path string) (*Result, error) {
	g := c.Size(set)
	cv, err := c.newCanvas(g)
	if err != nil {
		return nil, fmt.Errorf("create canvas: %w", err)
	}

	res := c.Compose(set, cv)

	if err := cv.Save(path); err != nil {
		return nil, fmt.Errorf("save diagram: %w", err)
	}
	return res, nil
}

// Compose emits the header, identity legend, alignment rows and depth
// dots for set onto cv, in that order.
func (c *Composer) Compose(set *fmt6.AlignmentSet, cv Canvas) *Result {
	cfg := c.layout
	res := &Result{Geometry: c.Size(set)}

	qmin, qmax, ok := set.Bounds()
	if !ok {
		qmin, qmax = 0, -1
	}
	mapper := layout.NewMapper(cfg, qmin, qmax)

	c.drawHeader(cv, set.QueryID, qmin, qmax, ok)
	c.drawLegend(cv)

	hist := depth.New()
	v := 0
	for _, sid := range set.Subjects() {
		v += cfg.SubjectRowSpacing
		cv.DrawText(image.Pt(10, cfg.HeaderHeight+v+9), truncate(sid, cfg.LabelMaxChars), Small, palette.Black)
		res.Subjects++

		for _, h := range set.HSPs(sid) {
			v += cfg.HSPRowSpacing
			if c.drawHSP(cv, mapper, hist, h, cfg.HeaderHeight+v) {
				res.Clamped++
			}
			res.HSPs++
		}
	}

	res.MaxDepth = hist.MaxDepth()
	res.DotScale = hist.DotScale()
	c.drawDepth(cv, hist)

	c.logger.Debug("composed diagram",
		zap.String("query", set.QueryID),
		zap.Int("width", res.Geometry.Width),
		zap.Int("height", res.Geometry.Height),
		zap.Int("subjects", res.Subjects),
		zap.Int("hsps", res.HSPs),
		zap.Int("max_depth", res.MaxDepth))

	return res
}

func (c *Composer) drawHeader(cv Canvas, queryID string, qmin, qmax int, hasBounds bool) {
	cfg := c.layout
	if queryID != "" {
		cv.DrawText(image.Pt(5, cfg.HeaderHeight-8), truncate(queryID, cfg.LabelMaxChars), MediumBold, palette.Black)
	}
	cv.DrawLine(
		image.Pt(cfg.LeftMargin, cfg.HeaderHeight),
		image.Pt(cfg.LeftMargin+cfg.BodyWidth, cfg.HeaderHeight),
		palette.Black)

	if !hasBounds {
		return
	}
	cv.DrawText(image.Pt(cfg.LeftMargin, cfg.HeaderHeight-20), strconv.Itoa(qmin), Small, palette.Black)
	cv.DrawText(image.Pt(cfg.LeftMargin+cfg.BodyWidth, cfg.HeaderHeight-20), strconv.Itoa(qmax), Small, palette.Black)
}

// legendX returns the left edge of the legend swatch for an identity value.
func (c *Composer) legendX(pident float64) int {
	return c.layout.LeftMargin + c.layout.BodyWidth/2 + int(pident)*2
}

func (c *Composer) drawLegend(cv Canvas) {
	last := palette.LegendValues[len(palette.LegendValues)-1]
	cv.DrawText(image.Pt(c.legendX(last)+20, 5), "% Identity", Small, palette.Black)

	for _, p := range palette.LegendValues {
		x := c.legendX(p)
		cv.FillRect(image.Pt(x, 5), image.Pt(x+10, 15), c.palette.ColorFor(p))
		cv.DrawText(image.Pt(x, 17), strconv.Itoa(int(p)), Tiny, palette.Black)
	}
}

// drawHSP draws one alignment bar at row y and reports whether its identity
// had to be clamped into the palette.
func (c *Composer) drawHSP(cv Canvas, m *layout.Mapper, hist *depth.Histogram, h *fmt6.Hit, y int) bool {
	x1 := m.ToPixelX(h.QueryStart)
	x2 := m.ToPixelX(h.QueryEnd)
	hist.Add(x1, x2)

	_, clamped := c.palette.Index(h.PercentIdentity)
	if clamped {
		c.logger.Warn("percent identity outside palette range, clamping",
			zap.String("subject", h.SubjectID),
			zap.Int("line", h.Line),
			zap.Float64("pident", h.PercentIdentity))
	}

	cv.FillRect(image.Pt(x1, y+1), image.Pt(x2, y+1+c.layout.BarThickness), c.palette.ColorFor(h.PercentIdentity))

	qs := strconv.Itoa(h.QueryStart)
	ss := strconv.Itoa(h.SubjectStart)
	cv.DrawText(image.Pt(x1-charWidth*len(qs), y-5), qs, Tiny, palette.Black)
	cv.DrawText(image.Pt(x2+2, y-5), strconv.Itoa(h.QueryEnd), Tiny, palette.Black)
	cv.DrawText(image.Pt(x1-charWidth*len(ss)+1, y+2), ss, Tiny, palette.Black)
	cv.DrawText(image.Pt(x2+2, y+2), strconv.Itoa(h.SubjectEnd)+" "+h.Strand().Symbol(), Tiny, palette.Black)

	return clamped
}

// drawDepth stacks one-pixel dots per covered column starting at the query
// line and moving toward the alignment rows.
func (c *Composer) drawDepth(cv Canvas, hist *depth.Histogram) {
	if hist.Len() == 0 {
		return
	}
	cfg := c.layout
	cv.DrawText(image.Pt(cfg.LeftMargin+cfg.BodyWidth+2, cfg.HeaderHeight+2),
		strconv.Itoa(hist.DotScale())+"/line", Tiny, palette.Black)

	for _, col := range hist.Columns() {
		for j := 0; j < hist.Level(col); j++ {
			p := image.Pt(col, cfg.HeaderHeight+j*cfg.DotStep)
			cv.DrawLine(p, p, palette.Black)
		}
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
