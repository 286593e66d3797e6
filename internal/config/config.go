package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/arcaluminis-lowlevel/internal/rgb"
	"github.com/coreman2200/arcaluminis-lowlevel/internal/ws2811"
)

type SPI struct {
	Dev string `yaml:"dev"` // e.g. /dev/spidev0.0; empty picks the first port
}

type Config struct {
	Driver     string   `yaml:"driver"` // "pwm" | "spi" | "console" | "sim"
	Count      int      `yaml:"count"`
	FreqHz     int      `yaml:"freq_hz"`
	DMA        int      `yaml:"dma"`
	GPIO       int      `yaml:"gpio"` // BCM number; must support PWM for the pwm driver
	Invert     bool     `yaml:"invert"`
	Brightness int      `yaml:"brightness"`
	StripType  string   `yaml:"strip_type"`
	IntervalMs int      `yaml:"interval_ms"`
	Palette    []string `yaml:"palette,omitempty"`

	SPI     SPI    `yaml:"spi,omitempty"`
	Monitor string `yaml:"monitor,omitempty"` // listen address, e.g. ":8080"
}

var Drivers = []string{"pwm", "spi", "console", "sim"}

// Default drives 16 LEDs at 800kHz on GPIO 18,
// DMA channel 5, not inverted.
func Default() *Config {
	return &Config{
		Driver:     "pwm",
		Count:      16,
		FreqHz:     800000,
		DMA:        5,
		GPIO:       18,
		Invert:     false,
		Brightness: 255,
		StripType:  "GRB",
		IntervalMs: 250,
		Palette:    rgb.DefaultPalette.Hex(),
	}
}

// Load reads path over the defaults; keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if !knownDriver(c.Driver) {
		errs = append(errs, fmt.Errorf("driver %q: want one of %v", c.Driver, Drivers))
	}
	if c.Count <= 0 {
		errs = append(errs, fmt.Errorf("count %d: must be positive", c.Count))
	}
	if c.FreqHz != 800000 && c.FreqHz != 400000 {
		errs = append(errs, fmt.Errorf("freq_hz %d: must be 800000 or 400000", c.FreqHz))
	} else if c.FreqHz != 800000 && c.Driver == "spi" {
		errs = append(errs, fmt.Errorf("freq_hz %d: the spi driver only clocks 800kHz strips", c.FreqHz))
	}
	if c.DMA < 0 || c.DMA > 14 {
		errs = append(errs, fmt.Errorf("dma %d: must be 0-14", c.DMA))
	}
	if c.GPIO < 0 {
		errs = append(errs, fmt.Errorf("gpio %d: must not be negative", c.GPIO))
	}
	if c.Brightness < 0 || c.Brightness > 255 {
		errs = append(errs, fmt.Errorf("brightness %d: must be 0-255", c.Brightness))
	}
	if _, err := ws2811.ParseStripType(c.StripType); err != nil {
		errs = append(errs, err)
	}
	if c.IntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("interval_ms %d: must be positive", c.IntervalMs))
	}
	if _, err := rgb.ParsePalette(c.Palette); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Params converts the config to driver parameters. Call Validate first.
func (c *Config) Params() ws2811.Params {
	st, err := ws2811.ParseStripType(c.StripType)
	if err != nil {
		st = ws2811.StripGRB
	}
	return ws2811.Params{
		Count:      c.Count,
		FreqHz:     c.FreqHz,
		DMA:        c.DMA,
		GPIO:       c.GPIO,
		Invert:     c.Invert,
		Brightness: uint8(c.Brightness),
		StripType:  st,
	}
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// ColorPalette returns the parsed palette, falling back to the default one.
func (c *Config) ColorPalette() rgb.Palette {
	p, err := rgb.ParsePalette(c.Palette)
	if err != nil {
		return rgb.DefaultPalette
	}
	return p
}

func knownDriver(name string) bool {
	for _, d := range Drivers {
		if d == name {
			return true
		}
	}
	return false
}
