package rgb

import (
	"fmt"
	"image/color"
)

const (
	WhiteOffset uint8 = 0x18
	RedOffset   uint8 = 0x10
	GreenOffset uint8 = 0x08
	BlueOffset  uint8 = 0x0
)

// Color is one LED word as the ws2811 library stores it: 0xWWRRGGBB.
// Wire byte order is decided by the strip type, not by this layout.
type Color uint32

func RGB(r, g, b uint8) Color {
	var c Color
	c = setcolor(c, r, RedOffset)
	c = setcolor(c, g, GreenOffset)
	return setcolor(c, b, BlueOffset)
}

func setcolor(c Color, n uint8, off uint8) Color {
	val := Color(n) << off
	mask := Color(0xFF) << off
	return (c & (^mask)) | val
}

func getcolor(c Color, off uint8) uint8 {
	mask := Color(0xFF) << off
	return uint8((c & mask) >> off)
}

func (c Color) R() uint8 { return getcolor(c, RedOffset) }
func (c Color) G() uint8 { return getcolor(c, GreenOffset) }
func (c Color) B() uint8 { return getcolor(c, BlueOffset) }
func (c Color) W() uint8 { return getcolor(c, WhiteOffset) }

func (c Color) WithR(r uint8) Color { return setcolor(c, r, RedOffset) }
func (c Color) WithG(g uint8) Color { return setcolor(c, g, GreenOffset) }
func (c Color) WithB(b uint8) Color { return setcolor(c, b, BlueOffset) }
func (c Color) WithW(w uint8) Color { return setcolor(c, w, WhiteOffset) }

// NRGBA drops the white channel; it has no place in an RGB image.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: 255}
}

// Scale applies the library's brightness rule, (c * (brightness+1)) >> 8, to
// each channel.
func (c Color) Scale(brightness uint8) Color {
	s := func(v uint8) uint8 { return uint8((uint16(v) * (uint16(brightness) + 1)) >> 8) }
	return RGB(s(c.R()), s(c.G()), s(c.B())).WithW(s(c.W()))
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R(), c.G(), c.B())
}
