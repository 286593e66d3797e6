package ws2811

import "github.com/coreman2200/arcaluminis-lowlevel/internal/rgb"

// memBuffer backs the pure-Go drivers.
type memBuffer struct {
	leds     []rgb.Color
	attached bool
	freed    bool
}

func newMemBuffer(count int) *memBuffer {
	if count < 0 {
		count = 0
	}
	return &memBuffer{leds: make([]rgb.Color, count)}
}

func (b *memBuffer) Len() int { return len(b.leds) }

func (b *memBuffer) SetItem(i int, c rgb.Color) { b.leds[i] = c }

func (b *memBuffer) Free() {
	if b.attached {
		return
	}
	b.freed = true
	b.leds = nil
}

// release is what Fini does to an attached buffer.
func (b *memBuffer) release() {
	b.freed = true
	b.leds = nil
}
