// Package palette maps percent identity to a fixed set of diagram colors.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	plotpalette "gonum.org/v1/plot/palette"
)

// Size is the number of identity buckets.
const Size = 9

var (
	// Black marks 100% identity and is used for all text and lines.
	Black = color.RGBA{0, 0, 0, 255}
	// Background is the canvas fill color. It is not an identity bucket.
	Background = color.RGBA{255, 255, 255, 255}
)

var defaultColors = [Size]color.RGBA{
	Black,
	{196, 0, 255, 255},
	{0, 0, 255, 255},
	{0, 255, 255, 255},
	{0, 255, 0, 255},
	{255, 255, 0, 255},
	{255, 196, 0, 255},
	{255, 0, 0, 255},
	{128, 128, 128, 255},
}

// LegendValues are the synthetic identities shown in the color key.
var LegendValues = []float64{20, 30, 40, 50, 60, 70, 80, 90, 100}

// Palette is an ordered identity color table. Index 0 is 100% identity;
// indexes 1 to 8 cover descending 10% bands.
type Palette struct {
	colors [Size]color.RGBA
}

var _ plotpalette.Palette = Palette{}

// Default returns the standard palette.
func Default() Palette {
	return Palette{colors: defaultColors}
}

// New returns a palette with the given colors.
func New(colors [Size]color.RGBA) Palette {
	return Palette{colors: colors}
}

// FromPalette builds an identity palette from the first Size colors of a
// gonum plot palette. Index 0 takes p's first color.
func FromPalette(p plotpalette.Palette) (Palette, error) {
	cs := p.Colors()
	if len(cs) < Size {
		return Palette{}, fmt.Errorf("palette has %d colors, need %d", len(cs), Size)
	}
	var colors [Size]color.RGBA
	for i := range colors {
		colors[i] = color.RGBAModel.Convert(cs[i]).(color.RGBA)
	}
	return Palette{colors: colors}, nil
}

// named lists the palettes selectable by name.
var named = map[string]func() (Palette, error){
	"default": func() (Palette, error) { return Default(), nil },
	"heat":    func() (Palette, error) { return FromPalette(plotpalette.Heat(Size, 1)) },
}

// Named returns the palette registered under name. An empty name is the
// default palette.
func Named(name string) (Palette, error) {
	if name == "" {
		name = "default"
	}
	f, ok := named[name]
	if !ok {
		return Palette{}, fmt.Errorf("unknown palette %q (choose from %v)", name, Names())
	}
	return f()
}

// Names returns the selectable palette names, sorted.
func Names() []string {
	out := make([]string, 0, len(named))
	for n := range named {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Index returns the bucket for a percent identity. Values outside the
// expected domain are clamped to the nearest bucket and clamped is true.
func (p Palette) Index(pident float64) (idx int, clamped bool) {
	if pident >= 100 {
		return 0, false
	}
	if math.IsNaN(pident) {
		return Size - 1, true
	}

	raw := math.Floor((109 - pident) / 10)
	switch {
	case raw < 0:
		return 0, true
	case raw > Size-1:
		return Size - 1, true
	}
	return int(raw), false
}

// ColorFor returns the color of the bucket pident falls into.
func (p Palette) ColorFor(pident float64) color.RGBA {
	idx, _ := p.Index(pident)
	return p.colors[idx]
}

// At returns the color at bucket i.
func (p Palette) At(i int) color.RGBA {
	return p.colors[i]
}

// Colors returns the bucket colors in index order.
func (p Palette) Colors() []color.Color {
	out := make([]color.Color, Size)
	for i, c := range p.colors {
		out[i] = c
	}
	return out
}
