//go:build !(linux && cgo && rpi)

package ws2811_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"

	. "github.com/coreman2200/arcaluminis-lowlevel/internal/ws2811"
)

func TestPWMUnavailable(t *testing.T) {
	var logs bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&logs)
	defer func() { log.Logger = prev }()

	drv := PWM()
	assert.Equal(t, "pwm", drv.Name())

	h := drv.NewHandle()
	h.Configure(Params{Count: 16, FreqHz: 800000, DMA: 5, GPIO: 18, Brightness: 255, StripType: StripGRB})
	b := drv.NewBuffer(16)
	assert.Equal(t, 16, b.Len())
	assert.Equal(t, ErrorHWNotSupported, h.Init())
	assert.Contains(t, logs.String(), "-tags rpi")
	b.Free()
	h.Delete()
}
