// Package anim runs the rotating-palette animation on a strip.
package anim

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-lowlevel/internal/rgb"
	"github.com/coreman2200/arcaluminis-lowlevel/internal/strip"
)

const DefaultInterval = 250 * time.Millisecond

// Frame is what an Observer sees after each successful render.
type Frame struct {
	Seq    uint64
	Offset uint64
	LEDs   []rgb.Color
	Time   time.Time
}

type Observer interface {
	Observe(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) Observe(f Frame) { fn(f) }

// Looper walks the palette along the strip, one step per tick.
type Looper struct {
	strip    *strip.Strip
	palette  rgb.Palette
	interval time.Duration
	offset   uint64
	seq      uint64
	observer Observer
}

func New(s *strip.Strip, p rgb.Palette, interval time.Duration) *Looper {
	if len(p) == 0 {
		p = rgb.DefaultPalette
	}
	if interval < 0 {
		interval = DefaultInterval
	}
	return &Looper{strip: s, palette: p, interval: interval}
}

// WithObserver registers o to receive every rendered frame.
func (l *Looper) WithObserver(o Observer) *Looper {
	l.observer = o
	return l
}

// Offset is the offset the next frame will be painted with.
func (l *Looper) Offset() uint64 { return l.offset }

// Fill writes the palette, shifted by offset, into dst.
func Fill(dst []rgb.Color, p rgb.Palette, offset uint64) {
	for i := range dst {
		dst[i] = p.At(i, offset)
	}
}

func (l *Looper) paint() {
	for i := 0; i < l.strip.Len(); i++ {
		l.strip.Set(i, l.palette.At(i, l.offset))
	}
}

// Run paints, renders, sleeps and advances the offset until ctx is done or a
// render fails. A cancelled context is a clean stop and returns nil; a render
// failure is returned as-is and is never retried.
func (l *Looper) Run(ctx context.Context) error {
	log.Info().
		Int("count", l.strip.Len()).
		Int("palette", l.palette.Len()).
		Dur("interval", l.interval).
		Msg("animation started")

	timer := time.NewTimer(l.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			log.Info().Uint64("frames", l.seq).Msg("animation stopped")
			return nil
		}

		l.paint()
		if err := l.strip.Render(); err != nil {
			log.Error().Err(err).Uint64("offset", l.offset).Msg("render failed")
			return err
		}
		l.seq++
		if l.observer != nil {
			l.observer.Observe(Frame{Seq: l.seq, Offset: l.offset, LEDs: l.strip.LEDs(), Time: time.Now()})
		}
		log.Trace().Uint64("frame", l.seq).Uint64("offset", l.offset).Msg("tick")

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(l.interval)
		select {
		case <-ctx.Done():
			log.Info().Uint64("frames", l.seq).Msg("animation stopped")
			return nil
		case <-timer.C:
		}

		l.offset++
	}
}
