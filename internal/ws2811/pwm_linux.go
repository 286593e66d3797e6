//go:build linux && cgo && rpi

package ws2811

/*
#cgo LDFLAGS: -lws2811
#include <stdlib.h>
#include <stdint.h>
#include <ws2811/ws2811.h>
*/
import "C"
import (
	"unsafe"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-lowlevel/internal/rgb"
)

type pwmDriver struct{}

// PWM drives the strip through libws2811 (PWM/PCM + DMA on a Raspberry Pi).
// It needs libws2811 installed and is only compiled with `-tags rpi`.
func PWM() Driver { return pwmDriver{} }

func (pwmDriver) Name() string { return "pwm" }

func (pwmDriver) NewHandle() Handle {
	dev := (*C.ws2811_t)(C.calloc(1, C.size_t(unsafe.Sizeof(C.ws2811_t{}))))
	return &pwmHandle{dev: dev}
}

func (pwmDriver) NewBuffer(count int) Buffer {
	if count < 0 {
		count = 0
	}
	p := (*C.ws2811_led_t)(C.calloc(C.size_t(count)+1, C.size_t(unsafe.Sizeof(C.ws2811_led_t(0)))))
	return &pwmBuffer{p: p, n: count}
}

type pwmBuffer struct {
	p        *C.ws2811_led_t
	n        int
	attached bool
}

func (b *pwmBuffer) Len() int { return b.n }

func (b *pwmBuffer) SetItem(i int, c rgb.Color) {
	unsafe.Slice(b.p, b.n)[i] = C.ws2811_led_t(c)
}

func (b *pwmBuffer) Free() {
	if b.attached || b.p == nil {
		return
	}
	C.free(unsafe.Pointer(b.p))
	b.p = nil
}

type pwmHandle struct {
	dev *C.ws2811_t
}

func (h *pwmHandle) Configure(p Params) {
	if h.dev == nil {
		return
	}
	h.dev.freq = C.uint32_t(p.FreqHz)
	h.dev.dmanum = C.int(p.DMA)
	// Channel 1 stays zeroed, which the library reads as unused.
	ch := &h.dev.channel[0]
	ch.gpionum = C.int(p.GPIO)
	ch.count = C.int(p.Count)
	ch.invert = 0
	if p.Invert {
		ch.invert = 1
	}
	ch.brightness = C.uint8_t(p.Brightness)
	ch.strip_type = C.int(p.StripType)
}

func (h *pwmHandle) Init() Status {
	if h.dev == nil {
		return ErrorOutOfMemory
	}
	st := Status(C.ws2811_init(h.dev))
	if st != Success {
		log.Debug().Int("status", int(st)).Str("library", libraryText(st)).Msg("ws2811_init")
	}
	return st
}

// SetLEDs swaps the buffer ws2811_init allocated for b; ws2811_fini frees
// whichever buffer is attached.
func (h *pwmHandle) SetLEDs(b Buffer) {
	pb, ok := b.(*pwmBuffer)
	if !ok || h.dev == nil {
		return
	}
	ch := &h.dev.channel[0]
	if ch.leds != nil && ch.leds != pb.p {
		C.free(unsafe.Pointer(ch.leds))
	}
	ch.leds = pb.p
	pb.attached = true
}

func (h *pwmHandle) Render() Status {
	if h.dev == nil {
		return ErrorGeneric
	}
	return Status(C.ws2811_render(h.dev))
}

func (h *pwmHandle) Fini() {
	if h.dev != nil {
		C.ws2811_fini(h.dev)
	}
}

func (h *pwmHandle) Delete() {
	if h.dev != nil {
		C.free(unsafe.Pointer(h.dev))
		h.dev = nil
	}
}

// libraryText is the library's own message for st.
func libraryText(st Status) string {
	return C.GoString(C.ws2811_get_return_t_str(C.ws2811_return_t(st)))
}
