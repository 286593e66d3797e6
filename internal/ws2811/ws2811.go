// Package ws2811 is the low-level surface of the native ws2811 LED library:
// an opaque handle that is configured, initialized, given an LED buffer,
// rendered and finally torn down.
//
// Several backends implement the same surface. PWM drives libws2811 through
// cgo, SPI and Console draw through periph.io, and Sim keeps everything in
// memory.
package ws2811

import (
	"fmt"
	"strings"

	"github.com/coreman2200/arcaluminis-lowlevel/internal/rgb"
)

// Params are the scalar settings of a handle. They are fixed before Init.
type Params struct {
	Count      int
	FreqHz     int
	DMA        int
	GPIO       int
	Invert     bool
	Brightness uint8
	StripType  StripType
}

// Driver creates handles and LED buffers for one backend.
type Driver interface {
	Name() string
	NewHandle() Handle
	NewBuffer(count int) Buffer
}

// Handle is the per-strip driver state (ws2811_t).
type Handle interface {
	Configure(p Params)
	Init() Status
	// SetLEDs attaches b; from then on Fini owns and releases it.
	SetLEDs(b Buffer)
	Render() Status
	Fini()
	Delete()
}

// Buffer is an LED data array (ws2811_led_t[count]).
type Buffer interface {
	Len() int
	SetItem(i int, c rgb.Color)
	// Free releases a buffer that was never attached. It is a no-op once the
	// buffer belongs to a handle.
	Free()
}

// StripType selects the channel shifts, i.e. the wire byte order, and matches
// the library's WS2811_STRIP_* constants.
type StripType int

const (
	StripRGB StripType = 0x00100800
	StripRBG StripType = 0x00100008
	StripGRB StripType = 0x00081000
	StripGBR StripType = 0x00080010
	StripBRG StripType = 0x00001008
	StripBGR StripType = 0x00000810
)

var stripNames = map[StripType]string{
	StripRGB: "RGB",
	StripRBG: "RBG",
	StripGRB: "GRB",
	StripGBR: "GBR",
	StripBRG: "BRG",
	StripBGR: "BGR",
}

func (s StripType) String() string {
	if n, ok := stripNames[s]; ok {
		return n
	}
	return fmt.Sprintf("StripType(%#08x)", int(s))
}

// ParseStripType accepts a color order such as "GRB", case-insensitively.
func ParseStripType(name string) (StripType, error) {
	up := strings.ToUpper(strings.TrimSpace(name))
	for st, n := range stripNames {
		if n == up {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown strip type %q", name)
}
