package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-lowlevel/internal/rgb"
	"github.com/coreman2200/arcaluminis-lowlevel/internal/ws2811"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, ws2811.Params{
		Count:      16,
		FreqHz:     800000,
		DMA:        5,
		GPIO:       18,
		Invert:     false,
		Brightness: 255,
		StripType:  ws2811.StripGRB,
	}, c.Params())
	assert.Equal(t, 250*time.Millisecond, c.Interval())
	assert.Equal(t, rgb.DefaultPalette, c.ColorPalette())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
driver: sim
count: 60
gpio: 12
invert: true
strip_type: rgb
palette: ["#ff0000", "00ff00"]
spi:
  dev: /dev/spidev0.0
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "sim", c.Driver)
	assert.Equal(t, 60, c.Count)
	assert.Equal(t, 12, c.GPIO)
	assert.True(t, c.Invert)
	assert.Equal(t, ws2811.StripRGB, c.Params().StripType)
	assert.Equal(t, rgb.Palette{0xFF0000, 0x00FF00}, c.ColorPalette())
	assert.Equal(t, "/dev/spidev0.0", c.SPI.Dev)

	// untouched keys keep their defaults
	assert.Equal(t, 800000, c.FreqHz)
	assert.Equal(t, 5, c.DMA)
	assert.Equal(t, 250, c.IntervalMs)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("count: [1"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.Driver = "console"
	c.Monitor = ":8080"
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	c := &Config{
		Driver:     "dmx",
		Count:      0,
		FreqHz:     1000,
		DMA:        15,
		GPIO:       -1,
		Brightness: 300,
		StripType:  "XYZ",
		IntervalMs: 0,
		Palette:    []string{"nope"},
	}
	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"driver", "count", "freq_hz", "dma", "gpio", "brightness", "strip type", "interval_ms", "palette[0]"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateSPIOnlyAt800kHz(t *testing.T) {
	c := Default()
	c.FreqHz = 400000
	require.NoError(t, c.Validate(), "pwm handles 400kHz strips")

	c.Driver = "spi"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spi driver only clocks 800kHz")

	c.FreqHz = 800000
	assert.NoError(t, c.Validate())
}
