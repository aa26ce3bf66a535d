package layout

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSize(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		hits     int
		subjects int
		want     int
	}{
		{"empty clamps to floor", 0, 0, 100},
		{"small set clamps to floor", 1, 1, 100},
		{"unclamped", 10, 3, 40 + 20 + 140 + 54},
		{"clamps to ceiling", 1000, 10, 4000},
		{"huge counts", math.MaxInt32, math.MaxInt32, 4000},
		{"negative counts", -5, -5, 100},
		{"max int hits", math.MaxInt, 0, 4000},
		{"max int subjects", 0, math.MaxInt, 4000},
		{"max int both", math.MaxInt, math.MaxInt, 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := ComputeSize(cfg, tt.hits, tt.subjects)
			assert.Equal(t, tt.want, g.Height)
			assert.Equal(t, 750, g.Width)
			assert.GreaterOrEqual(t, g.Height, cfg.MinHeight)
			assert.LessOrEqual(t, g.Height, cfg.MaxHeight)
		})
	}
}

func TestComputeSize_LargeSpacing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HSPRowSpacing = math.MaxInt32
	assert.Equal(t, cfg.MaxHeight, ComputeSize(cfg, math.MaxInt32, 0).Height)
	assert.Equal(t, cfg.MinHeight, ComputeSize(cfg, 0, 0).Height)
}

func TestMapper_ToPixelX(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMapper(cfg, 10, 60)

	assert.InDelta(t, 550.0/51.0, m.Ratio(), 1e-12)
	assert.Equal(t, 150, m.ToPixelX(10))
	assert.Equal(t, 150+int(math.Round(50*550.0/51.0)), m.ToPixelX(60))
	assert.Equal(t, 150+11, m.ToPixelX(11))
}

func TestMapper_Monotonic(t *testing.T) {
	cfg := DefaultConfig()
	ranges := [][2]int{{1, 1}, {1, 2}, {10, 60}, {1, 100000}, {500, 777}}

	for _, r := range ranges {
		m := NewMapper(cfg, r[0], r[1])
		prev := m.ToPixelX(r[0])
		for c := r[0]; c <= r[1]; c += 1 + (r[1]-r[0])/1000 {
			x := m.ToPixelX(c)
			assert.GreaterOrEqual(t, x, prev, "range %v coord %d", r, c)
			prev = x
		}
		assert.LessOrEqual(t, m.ToPixelX(r[1]), cfg.LeftMargin+cfg.BodyWidth)
	}
}

func TestMapper_Degenerate(t *testing.T) {
	cfg := DefaultConfig()

	// a single-point range still has a denominator of one
	m := NewMapper(cfg, 42, 42)
	assert.Equal(t, 550.0, m.Ratio())
	assert.Equal(t, 150, m.ToPixelX(42))

	// an empty range maps everything onto the left margin
	m = NewMapper(cfg, 0, -1)
	assert.Equal(t, 0.0, m.Ratio())
	assert.Equal(t, 150, m.ToPixelX(12345))
}

func TestLoadConfig(t *testing.T) {
	conf, err := LoadConfig(strings.NewReader("body_width = 800\nleft_margin = 200\n"))
	require.NoError(t, err)

	assert.Equal(t, 800, conf.BodyWidth)
	assert.Equal(t, 200, conf.LeftMargin)
	assert.Equal(t, 50, conf.RightMargin)
	assert.Equal(t, 1050, conf.Width())
	assert.Equal(t, 14, conf.HSPRowSpacing)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad toml", "body_width = "},
		{"zero body", "body_width = 0"},
		{"inverted heights", "min_height = 500\nmax_height = 100"},
		{"negative spacing", "hsp_row_spacing = -1"},
		{"zero label", "label_max_chars = 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_height = 2000\n"), 0o644))

	conf, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2000, conf.MaxHeight)
	assert.Equal(t, 2000, ComputeSize(conf, 500, 0).Height)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDefaultConfig_Valid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Equal(t, 750, DefaultConfig().Width())
}
