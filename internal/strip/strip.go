// Package strip owns one initialized ws2811 handle and its LED buffer, and
// guarantees the handle is finalized and deleted exactly once.
package strip

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-lowlevel/internal/rgb"
	"github.com/coreman2200/arcaluminis-lowlevel/internal/ws2811"
)

type State int

const (
	Uninitialized State = iota
	Initialized
	Rendering
	Finalized
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Rendering:
		return "rendering"
	case Finalized:
		return "finalized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// InitError reports a nonzero status from the driver's init.
type InitError struct {
	Status ws2811.Status
}

func (e *InitError) Error() string {
	return fmt.Sprintf("ws2811_init failed with code %d (%s)", int(e.Status), e.Status.String())
}

func (e *InitError) Unwrap() error { return e.Status }

// RenderError reports a nonzero status from render. Frame is the 1-based
// render attempt that failed.
type RenderError struct {
	Status ws2811.Status
	Frame  uint64
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("ws2811_render failed with code %d (%s) on frame %d", int(e.Status), e.Status.String(), e.Frame)
}

func (e *RenderError) Unwrap() error { return e.Status }

var ErrClosed = errors.New("strip: closed")

type Strip struct {
	driver string
	h      ws2811.Handle
	buf    ws2811.Buffer
	leds   []rgb.Color
	state  State
	frames uint64
}

// Open creates, configures and initializes a handle for p, then attaches a
// fresh buffer of p.Count LEDs. If init fails the unattached buffer is freed
// and the handle deleted before the *InitError is returned; finalize is never
// called on a handle that did not initialize.
func Open(drv ws2811.Driver, p ws2811.Params) (*Strip, error) {
	if p.Count <= 0 {
		return nil, fmt.Errorf("strip: invalid LED count %d", p.Count)
	}
	h := drv.NewHandle()
	h.Configure(p)
	buf := drv.NewBuffer(p.Count)

	if st := h.Init(); st != ws2811.Success {
		buf.Free()
		h.Delete()
		log.Error().Str("driver", drv.Name()).Int("status", int(st)).Stringer("reason", st).Msg("init failed")
		return nil, &InitError{Status: st}
	}
	// Attach after init; init resets the LEDs.
	h.SetLEDs(buf)

	log.Info().
		Str("driver", drv.Name()).
		Int("count", p.Count).
		Int("freq_hz", p.FreqHz).
		Int("dma", p.DMA).
		Int("gpio", p.GPIO).
		Bool("invert", p.Invert).
		Stringer("strip_type", p.StripType).
		Msg("strip initialized")

	return &Strip{
		driver: drv.Name(),
		h:      h,
		buf:    buf,
		leds:   make([]rgb.Color, p.Count),
		state:  Initialized,
	}, nil
}

// Use opens a strip, runs fn and closes the strip on every way out of fn,
// panics included, before fn's error is returned.
func Use(drv ws2811.Driver, p ws2811.Params, fn func(s *Strip) error) error {
	s, err := Open(drv, p)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func (s *Strip) Driver() string { return s.driver }

func (s *Strip) Len() int { return len(s.leds) }

func (s *Strip) State() State { return s.state }

// Frames counts successful renders.
func (s *Strip) Frames() uint64 { return s.frames }

// Set writes LED i. i must be in [0, Len()).
func (s *Strip) Set(i int, c rgb.Color) {
	s.leds[i] = c
	if s.state != Finalized {
		s.buf.SetItem(i, c)
	}
}

// LEDs returns a copy of the colors last written.
func (s *Strip) LEDs() []rgb.Color {
	return append([]rgb.Color(nil), s.leds...)
}

// Render sends the buffer to the hardware.
func (s *Strip) Render() error {
	if s.state == Finalized {
		return ErrClosed
	}
	s.state = Rendering
	if st := s.h.Render(); st != ws2811.Success {
		return &RenderError{Status: st, Frame: s.frames + 1}
	}
	s.frames++
	return nil
}

// Close finalizes then deletes the handle. Only the first call does anything.
func (s *Strip) Close() error {
	if s.state == Finalized {
		return nil
	}
	prev := s.state
	s.state = Finalized
	s.h.Fini()
	s.h.Delete()
	log.Info().Str("driver", s.driver).Uint64("frames", s.frames).Stringer("from", prev).Msg("strip finalized")
	return nil
}
