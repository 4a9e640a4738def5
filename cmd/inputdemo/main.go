// SPDX-License-Identifier: Unlicense OR MIT

// Command inputdemo shows input routing in a terminal. The configured
// surfaces are drawn as boxes; the terminal mouse drives pointer
// device 1 and the keyboard drives key device 0.
//
// Tab moves the keyboard focus to the next surface, Ctrl-R resets the
// mouse device and Esc quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/cotsog/mir/internal/config"
)

var (
	configPath = flag.String("config", "", "configuration `file`")
	logPath    = flag.String("log", "", "write the router log to `file`")
)

func main() {
	flag.Parse()
	if err := mainErr(); err != nil {
		fmt.Fprintf(os.Stderr, "inputdemo: %v\n", err)
		os.Exit(1)
	}
}

func mainErr() error {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return err
		}
	}
	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	h := newHost(screen, cfg, logger)
	defer h.close()
	h.run()
	if !h.quit {
		return errors.New("terminal closed")
	}
	return nil
}
