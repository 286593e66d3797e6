package ws2811

import (
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"
)

// OpenFunc connects a drawer sized for p.Count pixels. closer releases
// whatever port sits behind the drawer and may be nil.
type OpenFunc func(p Params) (d display.Drawer, closer func() error, err error)

// Periph renders a handle's buffer through a periph.io display.Drawer.
type Periph struct {
	name        string
	open        OpenFunc
	openFailure Status
	drawFailure Status
}

func NewPeriph(name string, open OpenFunc, openFailure, drawFailure Status) *Periph {
	return &Periph{name: name, open: open, openFailure: openFailure, drawFailure: drawFailure}
}

// SPI drives NRZ LEDs from the SPI MOSI line with periph's nrzled encoder.
// An empty dev picks the first port available.
func SPI(dev string) *Periph {
	return NewPeriph("spi", func(p Params) (display.Drawer, func() error, error) {
		if _, err := host.Init(); err != nil {
			return nil, nil, fmt.Errorf("periph host init: %w", err)
		}
		port, err := spireg.Open(dev)
		if err != nil {
			return nil, nil, fmt.Errorf("open spi port %q: %w", dev, err)
		}
		d, err := OpenNRZ(port, p)
		if err != nil {
			_ = port.Close()
			return nil, nil, err
		}
		return d, port.Close, nil
	}, ErrorSPISetup, ErrorSPITransfer)
}

// nrzSPIFreq is the only clock nrzled accepts: each LED bit becomes three
// SPI bits, just over 3x an 800kHz signal.
const nrzSPIFreq = 2500 * physic.KiloHertz

// OpenNRZ wraps port in an nrzled strip of p.Count RGB pixels.
func OpenNRZ(port spi.Port, p Params) (*nrzled.Dev, error) {
	d, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: p.Count,
		Channels:  3,
		Freq:      nrzSPIFreq,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return d, nil
}

// Console prints the strip as a row of ANSI colored blocks.
func Console() *Periph {
	return NewPeriph("console", func(p Params) (display.Drawer, func() error, error) {
		return screen.New(p.Count), nil, nil
	}, ErrorGeneric, ErrorGeneric)
}

func (d *Periph) Name() string { return d.name }

func (d *Periph) NewHandle() Handle { return &periphHandle{drv: d} }

func (d *Periph) NewBuffer(count int) Buffer { return newMemBuffer(count) }

type periphHandle struct {
	drv    *Periph
	p      Params
	drawer display.Drawer
	closer func() error
	buf    *memBuffer
	img    *image.NRGBA
}

func (h *periphHandle) Configure(p Params) { h.p = p }

func (h *periphHandle) Init() Status {
	if h.p.Count <= 0 {
		return ErrorGeneric
	}
	d, closer, err := h.drv.open(h.p)
	if err != nil {
		log.Warn().Err(err).Str("driver", h.drv.name).Msg("open failed")
		return h.drv.openFailure
	}
	if h.p.Invert {
		log.Warn().Str("driver", h.drv.name).Msg("invert is not supported; ignored")
	}
	if h.p.FreqHz != 0 && h.p.FreqHz != 800000 {
		log.Warn().Str("driver", h.drv.name).Int("freq_hz", h.p.FreqHz).Msg("only 800kHz strips are supported; freq_hz ignored")
	}
	h.drawer = d
	h.closer = closer
	h.buf = newMemBuffer(h.p.Count)
	h.buf.attached = true
	h.img = image.NewNRGBA(image.Rect(0, 0, h.p.Count, 1))
	log.Debug().Str("driver", h.drv.name).Stringer("drawer", d).Int("count", h.p.Count).Msg("drawer ready")
	return Success
}

func (h *periphHandle) SetLEDs(b Buffer) {
	mb, ok := b.(*memBuffer)
	if !ok {
		log.Error().Str("driver", h.drv.name).Msg("foreign buffer attached")
		return
	}
	if h.buf != nil && h.buf != mb {
		h.buf.release()
	}
	mb.attached = true
	h.buf = mb
}

func (h *periphHandle) Render() Status {
	if h.drawer == nil || h.buf == nil {
		return ErrorGeneric
	}
	n := h.buf.Len()
	if w := h.img.Bounds().Dx(); n > w {
		n = w
	}
	for i := 0; i < n; i++ {
		h.img.SetNRGBA(i, 0, h.buf.leds[i].Scale(h.p.Brightness).NRGBA())
	}
	if err := h.drawer.Draw(h.drawer.Bounds(), h.img, image.Point{}); err != nil {
		log.Warn().Err(err).Str("driver", h.drv.name).Msg("draw failed")
		return h.drv.drawFailure
	}
	return Success
}

func (h *periphHandle) Fini() {
	if h.drawer != nil {
		if err := h.drawer.Halt(); err != nil {
			log.Warn().Err(err).Str("driver", h.drv.name).Msg("halt failed")
		}
		h.drawer = nil
	}
	if h.closer != nil {
		if err := h.closer(); err != nil {
			log.Warn().Err(err).Str("driver", h.drv.name).Msg("close failed")
		}
		h.closer = nil
	}
	if h.buf != nil {
		h.buf.release()
		h.buf = nil
	}
}

func (h *periphHandle) Delete() {
	h.img = nil
}
