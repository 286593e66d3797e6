package ws2811

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-lowlevel/internal/rgb"
)

// Sim is an in-memory driver for headless runs and tests. It records every
// call made through its handles and buffers, and can be told to fail.
type Sim struct {
	// InitStatus is returned by every Init.
	InitStatus Status
	// RenderFailAt makes the n-th Render (1-based) return RenderStatus.
	// Zero never fails.
	RenderFailAt int
	RenderStatus Status

	mu      sync.Mutex
	calls   []string
	renders int
	frames  uint64
	last    []rgb.Color
}

func NewSim() *Sim {
	return &Sim{RenderStatus: ErrorGeneric}
}

func (s *Sim) Name() string { return "sim" }

func (s *Sim) NewHandle() Handle {
	s.record("new_handle")
	return &simHandle{sim: s}
}

func (s *Sim) NewBuffer(count int) Buffer {
	s.record("new_buffer")
	return &simBuffer{memBuffer: newMemBuffer(count), sim: s}
}

// Calls returns the recorded call names in order.
func (s *Sim) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Count returns how many times call was made.
func (s *Sim) Count(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	return n
}

// Frames is the number of successful renders.
func (s *Sim) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Last returns the most recently rendered frame, after brightness.
func (s *Sim) Last() []rgb.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rgb.Color(nil), s.last...)
}

func (s *Sim) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

type simBuffer struct {
	*memBuffer
	sim *Sim
}

func (b *simBuffer) Free() {
	if b.attached || b.freed {
		return
	}
	b.sim.record("free")
	b.memBuffer.Free()
}

type simHandle struct {
	sim    *Sim
	p      Params
	inited bool
	buf    *simBuffer
}

func (h *simHandle) Configure(p Params) {
	h.sim.record("configure")
	h.p = p
}

func (h *simHandle) Init() Status {
	h.sim.record("init")
	if st := h.sim.InitStatus; st != Success {
		return st
	}
	h.inited = true
	return Success
}

func (h *simHandle) SetLEDs(b Buffer) {
	h.sim.record("attach")
	sb, ok := b.(*simBuffer)
	if !ok {
		log.Error().Msg("sim: foreign buffer attached")
		return
	}
	if h.buf != nil && h.buf != sb {
		h.buf.release()
	}
	sb.attached = true
	h.buf = sb
}

func (h *simHandle) Render() Status {
	h.sim.record("render")

	s := h.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders++
	if !h.inited || h.buf == nil {
		return ErrorGeneric
	}
	if s.RenderFailAt > 0 && s.renders == s.RenderFailAt {
		return s.RenderStatus
	}

	s.frames++
	if len(s.last) != len(h.buf.leds) {
		s.last = make([]rgb.Color, len(h.buf.leds))
	}
	var r, g, b float64
	for i, c := range h.buf.leds {
		c = c.Scale(h.p.Brightness)
		s.last[i] = c
		r += float64(c.R())
		g += float64(c.G())
		b += float64(c.B())
	}
	n := float64(len(s.last))
	if n == 0 {
		n = 1
	}
	ev := log.Debug().Uint64("frame", s.frames).
		Str("avg", rgb.RGB(uint8(r/n), uint8(g/n), uint8(b/n)).String())
	if len(s.last) > 0 {
		ev = ev.Stringer("first", s.last[0])
	}
	ev.Msg("sim render")
	return Success
}

func (h *simHandle) Fini() {
	h.sim.record("fini")
	if h.buf != nil {
		h.buf.release()
		h.buf = nil
	}
	h.inited = false
}

func (h *simHandle) Delete() {
	h.sim.record("delete")
}
