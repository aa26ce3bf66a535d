package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
)

// Point sizes of the three text classes.
var fontSizes = map[FontSize]float64{
	Tiny:       8,
	Small:      10,
	MediumBold: 12,
}

// RasterCanvas draws into an in-memory RGBA image through a gg context and
// saves it as PNG. Shapes land on whole pixels so bars, rules and depth dots
// stay crisp.
type RasterCanvas struct {
	img   *image.RGBA
	dc    *gg.Context
	faces map[FontSize]font.Face
}

// NewRasterCanvas returns a w x h canvas filled with bg.
func NewRasterCanvas(w, h int, bg color.Color) (*RasterCanvas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}

	faces, err := loadFaces()
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(img)
	dc.SetColor(bg)
	dc.Clear()

	return &RasterCanvas{img: img, dc: dc, faces: faces}, nil
}

func loadFaces() (map[FontSize]font.Face, error) {
	regular, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse mono font: %w", err)
	}
	bold, err := opentype.Parse(gomonobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse mono bold font: %w", err)
	}

	faces := make(map[FontSize]font.Face, len(fontSizes))
	for size, pt := range fontSizes {
		f := regular
		if size == MediumBold {
			f = bold
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    pt,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s face: %w", size, err)
		}
		faces[size] = face
	}
	return faces, nil
}

// Image returns the underlying image.
func (rc *RasterCanvas) Image() *image.RGBA {
	return rc.img
}

// DrawLine draws a one-pixel line from p1 to p2. Horizontal and vertical
// lines, including single dots, cover exactly the pixels between the end
// points; other lines are stroked through pixel centers.
func (rc *RasterCanvas) DrawLine(p1, p2 image.Point, c color.Color) {
	if p1.X == p2.X || p1.Y == p2.Y {
		rc.FillRect(p1, p2, c)
		return
	}
	rc.dc.SetColor(c)
	rc.dc.SetLineWidth(1)
	rc.dc.SetLineCapSquare()
	rc.dc.DrawLine(float64(p1.X)+0.5, float64(p1.Y)+0.5, float64(p2.X)+0.5, float64(p2.Y)+0.5)
	rc.dc.Stroke()
}

// FillRect fills the rectangle spanned by p1 and p2, both corners included.
func (rc *RasterCanvas) FillRect(p1, p2 image.Point, c color.Color) {
	r := image.Rect(p1.X, p1.Y, p2.X, p2.Y).Canon()
	rc.dc.SetColor(c)
	rc.dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()+1), float64(r.Dy()+1))
	rc.dc.Fill()
}

// DrawText draws text with its top-left corner at pos.
func (rc *RasterCanvas) DrawText(pos image.Point, text string, size FontSize, c color.Color) {
	face, ok := rc.faces[size]
	if !ok {
		face = rc.faces[Small]
	}
	rc.dc.SetFontFace(face)
	rc.dc.SetColor(c)
	rc.dc.DrawString(text, float64(pos.X), float64(pos.Y+face.Metrics().Ascent.Ceil()))
}

// Encode writes the image as PNG.
func (rc *RasterCanvas) Encode(w io.Writer) error {
	return rc.dc.EncodePNG(w)
}

// Save writes the image as a PNG file, creating parent directories.
func (rc *RasterCanvas) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := rc.dc.SavePNG(path); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	return nil
}
