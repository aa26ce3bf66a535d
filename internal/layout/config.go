// Package layout holds the diagram's fixed geometry: margins, row spacing,
// canvas sizing and the query-coordinate to pixel mapping.
package layout

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the set of layout constants a diagram is drawn with.
type Config struct {
	LeftMargin        int `toml:"left_margin"`
	BodyWidth         int `toml:"body_width"`
	RightMargin       int `toml:"right_margin"`
	HeaderHeight      int `toml:"header_height"`
	FooterHeight      int `toml:"footer_height"`
	HSPRowSpacing     int `toml:"hsp_row_spacing"`
	SubjectRowSpacing int `toml:"subject_row_spacing"`
	BarThickness      int `toml:"bar_thickness"`
	DotStep           int `toml:"dot_step"`
	MinHeight         int `toml:"min_height"`
	MaxHeight         int `toml:"max_height"`
	LabelMaxChars     int `toml:"label_max_chars"`
}

// DefaultConfig returns the standard layout.
func DefaultConfig() Config {
	return Config{
		LeftMargin:        150,
		BodyWidth:         550,
		RightMargin:       50,
		HeaderHeight:      40,
		FooterHeight:      20,
		HSPRowSpacing:     14,
		SubjectRowSpacing: 18,
		BarThickness:      3,
		DotStep:           2,
		MinHeight:         100,
		MaxHeight:         4000,
		LabelMaxChars:     18,
	}
}

// LoadConfig decodes a TOML layout over the defaults. Keys missing from the
// file keep their default values.
func LoadConfig(r io.Reader) (Config, error) {
	conf := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(&conf); err != nil {
		return Config{}, fmt.Errorf("decode layout: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

// LoadConfigFile reads a TOML layout file.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open layout file: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// Validate rejects layouts that cannot produce a drawable canvas.
func (c Config) Validate() error {
	if c.BodyWidth <= 0 {
		return fmt.Errorf("layout: body_width must be positive, got %d", c.BodyWidth)
	}
	if c.LeftMargin < 0 || c.RightMargin < 0 || c.HeaderHeight < 0 || c.FooterHeight < 0 {
		return fmt.Errorf("layout: margins must not be negative")
	}
	if c.HSPRowSpacing < 0 || c.SubjectRowSpacing < 0 || c.BarThickness < 0 || c.DotStep < 0 {
		return fmt.Errorf("layout: spacings must not be negative")
	}
	if c.MinHeight <= 0 || c.MaxHeight < c.MinHeight {
		return fmt.Errorf("layout: invalid height range [%d, %d]", c.MinHeight, c.MaxHeight)
	}
	if c.LabelMaxChars <= 0 {
		return fmt.Errorf("layout: label_max_chars must be positive, got %d", c.LabelMaxChars)
	}
	return nil
}

// Width returns the canvas width, which does not depend on the data.
func (c Config) Width() int {
	return c.LeftMargin + c.BodyWidth + c.RightMargin
}
