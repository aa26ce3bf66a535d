// Package render composes an alignment diagram and draws it onto a Canvas.
package render

import (
	"image"
	"image/color"
)

// FontSize selects one of the three text sizes a diagram uses.
type FontSize int

const (
	// Tiny is used for HSP coordinates and legend numbers.
	Tiny FontSize = iota
	// Small is used for subject ids and the query range.
	Small
	// MediumBold is used for the query id.
	MediumBold
)

func (s FontSize) String() string {
	switch s {
	case Tiny:
		return "tiny"
	case Small:
		return "small"
	case MediumBold:
		return "medium-bold"
	}
	return "unknown"
}

// Canvas is the drawing surface a Composer emits to. Rectangles include
// both corner points; text positions are the top-left corner of the text.
type Canvas interface {
	DrawLine(p1, p2 image.Point, c color.Color)
	FillRect(p1, p2 image.Point, c color.Color)
	DrawText(pos image.Point, text string, size FontSize, c color.Color)
	Save(path string) error
}
