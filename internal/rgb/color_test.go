package rgb_test

import (
	"image/color"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/arcaluminis-lowlevel/internal/rgb"
)

var TestRGBIsExpectedColor = []struct {
	W      uint8
	R      uint8
	G      uint8
	B      uint8
	Expect Color
}{
	{0x00, 0x20, 0x10, 0x00, 0x00201000},
	{0xFF, 0x11, 0x22, 0x33, 0xFF112233},
	{0x00, 0x2A, 0x44, 0x34, 0x002A4434},
	{0xAB, 0x3B, 0x88, 0x35, 0xAB3B8835},
}

func TestColorsRGB(t *testing.T) {
	for k, v := range TestRGBIsExpectedColor {
		t.Run("Given RGB"+strconv.Itoa(k), func(t *testing.T) {
			col := RGB(v.R, v.G, v.B).WithW(v.W)
			assert.Equal(t, v.Expect, col)
			assert.Equal(t, v.R, col.R())
			assert.Equal(t, v.G, col.G())
			assert.Equal(t, v.B, col.B())
			assert.Equal(t, v.W, col.W())
		})
	}
}

func TestColorSettersLeaveOtherChannels(t *testing.T) {
	col := Color(0x87650000).WithG(0x43).WithB(0x21)
	assert.Equal(t, Color(0x87654321), col)
	assert.Equal(t, Color(0x87FF4321), col.WithR(0xFF))
}

func TestColorNRGBA(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x00, B: 0x10, A: 255}, Color(0xAA100010).NRGBA())
}

func TestColorScale(t *testing.T) {
	c := RGB(0xFF, 0x80, 0x20)
	assert.Equal(t, c, c.Scale(255), "full brightness is identity")
	assert.Equal(t, RGB(0x7F, 0x40, 0x10), c.Scale(127))
	assert.Equal(t, RGB(0, 0, 0), c.Scale(0))
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "#200010", Color(0x200010).String())
}

func TestPaletteLookup(t *testing.T) {
	p := DefaultPalette
	require.Equal(t, 8, p.Len())

	assert.Equal(t, Color(0x000020), p.At(5, 0))
	assert.Equal(t, p[7], p.At(5, 10))
	assert.Equal(t, Color(0x200010), p.At(5, 10))

	for i := 0; i < 16; i++ {
		assert.Equal(t, p[(i+1000)%8], p.At(i, 1000), "led %d", i)
	}
}

func TestPaletteOffsetWraps(t *testing.T) {
	p := DefaultPalette
	const top = ^uint64(0)
	// top % 8 == 7, so LED 1 at top wraps around to palette[0].
	assert.Equal(t, p[7], p.At(0, top))
	assert.Equal(t, p[0], p.At(1, top))
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette(DefaultPalette.Hex())
	require.NoError(t, err)
	assert.Equal(t, DefaultPalette, p)

	p, err = ParsePalette([]string{"ff0000", " #00ff00 "})
	require.NoError(t, err)
	assert.Equal(t, Palette{0xFF0000, 0x00FF00}, p)
}

func TestParsePaletteRejects(t *testing.T) {
	_, err := ParsePalette(nil)
	assert.Error(t, err)

	_, err = ParsePalette([]string{"#200000", "#zz0000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "palette[1]")
}
