package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-lowlevel/internal/anim"
	"github.com/coreman2200/arcaluminis-lowlevel/internal/config"
	"github.com/coreman2200/arcaluminis-lowlevel/internal/monitor"
	"github.com/coreman2200/arcaluminis-lowlevel/internal/strip"
	"github.com/coreman2200/arcaluminis-lowlevel/internal/ws2811"
)

const defaultConfigPath = "config.yaml"

func main() {
	cfg, opts, err := loadConfig(os.Args[1:])

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if opts.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}

	if opts.writeConfig != "" {
		if err := config.Save(opts.writeConfig, cfg); err != nil {
			log.Fatal().Err(err).Str("path", opts.writeConfig).Msg("write config failed")
		}
		log.Info().Str("path", opts.writeConfig).Msg("effective config written")
		return
	}

	ctx, cancel := trapSignals(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, selectDriver(cfg)); err != nil {
		ev := log.Fatal().Err(err)
		var st ws2811.Status
		if errors.As(err, &st) {
			ev = ev.Int("status", int(st))
		}
		ev.Msg("exiting")
	}
}

// trapSignals cancels the returned context on the first of sigs, then hands
// the signals back to the runtime so a second one kills a stuck teardown.
func trapSignals(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	go func() {
		select {
		case s := <-ch:
			signal.Stop(ch)
			log.Info().Str("signal", s.String()).Msg("shutting down")
			cancel()
		case <-ctx.Done():
			signal.Stop(ch)
		}
	}()
	return ctx, cancel
}

type options struct {
	verbose     bool
	writeConfig string
}

// loadConfig layers defaults, the yaml file and explicitly set flags, in that
// order, and validates the result.
func loadConfig(args []string) (*config.Config, options, error) {
	d := config.Default()
	fset := flag.NewFlagSet("lowlevel", flag.ContinueOnError)
	var (
		configPath = fset.String("config", defaultConfigPath, "path to config.yaml")
		driver     = fset.String("driver", d.Driver, "driver: pwm | spi | console | sim")
		count      = fset.Int("count", d.Count, "number of LEDs")
		freq       = fset.Int("freq", d.FreqHz, "signal frequency in Hz (800000 or 400000)")
		dma        = fset.Int("dma", d.DMA, "DMA channel")
		gpio       = fset.Int("gpio", d.GPIO, "data pin (BCM number)")
		invert     = fset.Bool("invert", d.Invert, "invert the output signal")
		brightness = fset.Int("brightness", d.Brightness, "global brightness 0..255")
		stripType  = fset.String("strip-type", d.StripType, "LED color order (e.g. GRB, RGB)")
		interval   = fset.Int("interval-ms", d.IntervalMs, "milliseconds between frames")
		spiDev     = fset.String("spi-dev", d.SPI.Dev, "SPI device for the spi driver; empty picks the first")
		addr       = fset.String("monitor", d.Monitor, "monitor listen address (e.g. :8080); empty disables")
		verbose    = fset.Bool("v", false, "debug logging")
		writePath  = fset.String("write-config", "", "write the effective config to this path and exit")
	)
	if err := fset.Parse(args); err != nil {
		return nil, options{}, err
	}
	opts := options{verbose: *verbose, writeConfig: *writePath}

	set := map[string]bool{}
	fset.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := d
	if c, err := config.Load(*configPath); err == nil {
		cfg = c
	} else if set["config"] || !errors.Is(err, fs.ErrNotExist) {
		return nil, opts, fmt.Errorf("load config: %w", err)
	}

	for name := range set {
		switch name {
		case "driver":
			cfg.Driver = *driver
		case "count":
			cfg.Count = *count
		case "freq":
			cfg.FreqHz = *freq
		case "dma":
			cfg.DMA = *dma
		case "gpio":
			cfg.GPIO = *gpio
		case "invert":
			cfg.Invert = *invert
		case "brightness":
			cfg.Brightness = *brightness
		case "strip-type":
			cfg.StripType = *stripType
		case "interval-ms":
			cfg.IntervalMs = *interval
		case "spi-dev":
			cfg.SPI.Dev = *spiDev
		case "monitor":
			cfg.Monitor = *addr
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

func selectDriver(cfg *config.Config) ws2811.Driver {
	switch cfg.Driver {
	case "spi":
		return ws2811.SPI(cfg.SPI.Dev)
	case "console":
		return ws2811.Console()
	case "sim":
		return ws2811.NewSim()
	}
	return ws2811.PWM()
}

// run owns the strip for the whole animation. It returns only after the
// strip has been torn down.
func run(ctx context.Context, cfg *config.Config, drv ws2811.Driver) error {
	var hub *monitor.Hub
	if cfg.Monitor != "" {
		hub = monitor.NewHub(drv.Name(), cfg.Count)
		srv := &http.Server{
			Addr:         cfg.Monitor,
			Handler:      hub.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.Monitor).Str("driver", drv.Name()).Msg("monitor starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("monitor stopped")
			}
		}()
		defer srv.Close()
	}

	err := strip.Use(drv, cfg.Params(), func(s *strip.Strip) error {
		l := anim.New(s, cfg.ColorPalette(), cfg.Interval())
		if hub != nil {
			hub.Push(monitor.Ready(s))
			l.WithObserver(hub)
		}
		return l.Run(ctx)
	})
	if err != nil && hub != nil {
		var ie *strip.InitError
		if errors.As(err, &ie) {
			hub.Push(monitor.InitFailed(err))
		} else {
			hub.Push(monitor.RenderFailed(err))
		}
	}
	return err
}
