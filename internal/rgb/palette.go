package rgb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered, fixed set of colors cycled along the strip.
type Palette []Color

// DefaultPalette is the eight dim colors the animation rotates through.
var DefaultPalette = Palette{
	0x200000, // red
	0x201000, // orange
	0x202000, // yellow
	0x002000, // green
	0x002020, // lightblue
	0x000020, // blue
	0x100010, // purple
	0x200010, // pink
}

// At picks the color for LED i at the given animation offset. The modulo is
// taken before the lookup, so offset may wrap freely.
func (p Palette) At(i int, offset uint64) Color {
	n := uint64(len(p))
	return p[(uint64(i)%n+offset%n)%n]
}

func (p Palette) Len() int { return len(p) }

// Hex renders the palette back into the form ParsePalette accepts.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.String()
	}
	return out
}

// ParsePalette parses "#rrggbb" or "rrggbb" entries.
func ParsePalette(hex []string) (Palette, error) {
	if len(hex) == 0 {
		return nil, errors.New("palette is empty")
	}
	out := make(Palette, 0, len(hex))
	for i, h := range hex {
		h = strings.TrimSpace(h)
		if !strings.HasPrefix(h, "#") {
			h = "#" + h
		}
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette[%d] %q: %w", i, hex[i], err)
		}
		r, g, b := c.RGB255()
		out = append(out, RGB(r, g, b))
	}
	return out, nil
}
