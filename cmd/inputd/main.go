// SPDX-License-Identifier: Unlicense OR MIT

// Command inputd routes the events of evdev input devices to the
// surfaces of a configured scene and logs the deliveries.
//
// Usage:
//
//	inputd [-config file] [-record file | -replay file] [-dump-config]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cotsog/mir/internal/config"
	"github.com/cotsog/mir/io/evdev"
	"github.com/cotsog/mir/io/trace"
)

var (
	configPath = flag.String("config", "", "configuration `file` (default $XDG_CONFIG_HOME/inputd/config.toml if present)")
	recordPath = flag.String("record", "", "record dispatched events to `file`")
	replayPath = flag.String("replay", "", "dispatch the events of a recorded `file` instead of reading devices")
	dumpConfig = flag.Bool("dump-config", false, "print the effective configuration and exit")
)

func main() {
	flag.Parse()
	if err := mainErr(); err != nil {
		fmt.Fprintf(os.Stderr, "inputd: %v\n", err)
		os.Exit(1)
	}
}

func mainErr() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *dumpConfig {
		return cfg.Write(os.Stdout)
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := newDaemon(cfg, logger)
	defer d.close()
	if *recordPath != "" {
		f, err := os.Create(*recordPath)
		if err != nil {
			return err
		}
		defer f.Close()
		d.record = trace.NewEncoder(f)
	}

	var sources []source
	if *replayPath != "" {
		f, err := os.Open(*replayPath)
		if err != nil {
			return err
		}
		defer f.Close()
		sources = append(sources, replay{r: f})
	} else {
		devs, err := openDevices(cfg, logger)
		if err != nil {
			return err
		}
		defer closeDevices(devs)
		for _, dev := range devs {
			sources = append(sources, dev)
		}
	}
	if len(sources) == 0 {
		return errors.New("no input devices configured; use -replay or add [[device]] entries")
	}
	return d.run(ctx, sources)
}

func loadConfig() (config.Config, error) {
	path := *configPath
	if path == "" {
		path = config.DefaultPath()
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func openDevices(cfg config.Config, logger *slog.Logger) ([]*evdev.Device, error) {
	opts := evdev.Options{Screen: image.Pt(cfg.Screen.Width, cfg.Screen.Height)}
	var devs []*evdev.Device
	for _, c := range cfg.Devices {
		opts.Grab = c.Grab
		dev, err := evdev.Open(c.Path, c.DeviceID(), opts)
		if err != nil {
			closeDevices(devs)
			return nil, err
		}
		logger.Info("device opened", "device", c.DeviceID(), "path", c.Path, "name", dev.Name(), "grab", c.Grab)
		devs = append(devs, dev)
	}
	return devs, nil
}

func closeDevices(devs []*evdev.Device) {
	for _, dev := range devs {
		dev.Close()
	}
}
