//go:build !(linux && cgo && rpi)

package ws2811

import "github.com/rs/zerolog/log"

type pwmDriver struct{}

// PWM is only available on linux with cgo and the rpi build tag; build on the
// Pi with `go build -tags rpi`. Elsewhere every handle fails Init with
// ErrorHWNotSupported.
func PWM() Driver { return pwmDriver{} }

func (pwmDriver) Name() string { return "pwm" }

func (pwmDriver) NewHandle() Handle { return pwmHandle{} }

func (pwmDriver) NewBuffer(count int) Buffer { return newMemBuffer(count) }

type pwmHandle struct{}

func (pwmHandle) Configure(p Params) {}

func (pwmHandle) Init() Status {
	log.Warn().Str("driver", "pwm").Msg("libws2811 binding not compiled in; rebuild with -tags rpi")
	return ErrorHWNotSupported
}

func (pwmHandle) SetLEDs(b Buffer) {}
func (pwmHandle) Render() Status { return ErrorHWNotSupported }
func (pwmHandle) Fini() {}
func (pwmHandle) Delete() {}
