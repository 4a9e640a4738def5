// SPDX-License-Identifier: Unlicense OR MIT

// Package config loads the configuration of the input tools: the
// screen, the surfaces of the scene and the evdev devices to read.
package config

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/image/colornames"

	"github.com/cotsog/mir/io/event"
	"github.com/cotsog/mir/scene"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the contents of a configuration file.
type Config struct {
	LogLevel string `toml:"log_level"`
	// Focus names the surface focused at startup.
	Focus  string `toml:"focus"`
	Screen Screen `toml:"screen"`
	// Surfaces are listed bottom to top.
	Surfaces []Surface `toml:"surface"`
	Devices  []Device  `toml:"device"`
}

type Screen struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type Surface struct {
	Name string `toml:"name"`
	// Rect is x, y, width and height.
	Rect  []int  `toml:"rect"`
	Color string `toml:"color"`
}

type Device struct {
	ID   int32  `toml:"id"`
	Path string `toml:"path"`
	Grab bool   `toml:"grab"`
}

const configFile = "config.toml"

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Focus:    "editor",
		Screen:   Screen{Width: 1920, Height: 1080},
		Surfaces: []Surface{
			{Name: "panel", Rect: []int{0, 0, 1920, 40}, Color: "slategray"},
			{Name: "editor", Rect: []int{80, 120, 960, 720}, Color: "steelblue"},
			{Name: "terminal", Rect: []int{880, 480, 960, 540}, Color: "darkolivegreen"},
		},
	}
}

// DefaultPath returns the configuration file location under the XDG
// configuration directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "inputd", configFile)
}

// Load reads and validates the configuration file at path. Settings
// missing from the file keep their defaults; a file without surfaces
// gets the default scene.
func Load(path string) (Config, error) {
	def := Default()
	c := Config{
		LogLevel: def.LogLevel,
		Screen:   def.Screen,
	}
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	if !md.IsDefined("surface") {
		c.Surfaces = def.Surfaces
		if !md.IsDefined("focus") {
			c.Focus = def.Focus
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return nil
}

// WriteFile writes c to path, creating the parent directory.
func (c *Config) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Validate checks that surface names and device ids are unique,
// rectangles are non-empty, colors are known and the focus names a
// surface.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...))
	}
	if _, err := c.Level(); err != nil {
		invalid("log_level %q", c.LogLevel)
	}
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		invalid("screen size %dx%d", c.Screen.Width, c.Screen.Height)
	}
	names := make(map[string]bool)
	for i, s := range c.Surfaces {
		switch {
		case s.Name == "":
			invalid("surface %d has no name", i)
		case names[s.Name]:
			invalid("duplicate surface %q", s.Name)
		}
		names[s.Name] = true
		if len(s.Rect) != 4 {
			invalid("surface %q: rect must be [x, y, width, height]", s.Name)
		} else if s.Bounds().Empty() {
			invalid("surface %q: empty rect", s.Name)
		}
		if _, err := s.RGBA(); err != nil {
			invalid("surface %q: unknown color %q", s.Name, s.Color)
		}
	}
	if c.Focus != "" && !names[c.Focus] {
		invalid("focus %q is not a surface", c.Focus)
	}
	ids := make(map[int32]bool)
	for _, d := range c.Devices {
		if ids[d.ID] {
			invalid("duplicate device id %d", d.ID)
		}
		ids[d.ID] = true
		if d.Path == "" {
			invalid("device %d has no path", d.ID)
		}
	}
	return errors.Join(errs...)
}

// Level parses the log level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

// ScreenRect returns the screen area.
func (c *Config) ScreenRect() image.Rectangle {
	return image.Rect(0, 0, c.Screen.Width, c.Screen.Height)
}

// Bounds returns the surface area in screen coordinates.
func (s Surface) Bounds() image.Rectangle {
	if len(s.Rect) != 4 {
		return image.Rectangle{}
	}
	x, y, w, h := s.Rect[0], s.Rect[1], s.Rect[2], s.Rect[3]
	return image.Rect(x, y, x+w, y+h)
}

// RGBA resolves the surface color name. An empty name is gray.
func (s Surface) RGBA() (color.RGBA, error) {
	name := s.Color
	if name == "" {
		name = "gray"
	}
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: unknown color %q", ErrInvalid, s.Color)
	}
	return c, nil
}

// DeviceID returns the router id of the device.
func (d Device) DeviceID() event.DeviceID {
	return event.DeviceID(d.ID)
}

// Scene builds a scene of the configured surfaces, bottom to top.
// Events consumed by a surface are passed to onEvent.
func (c *Config) Scene(onEvent func(s *scene.Rect, e event.Event)) (*scene.List, []*scene.Rect) {
	l := new(scene.List)
	rects := make([]*scene.Rect, len(c.Surfaces))
	for i, s := range c.Surfaces {
		r := &scene.Rect{Name: s.Name, Area: s.Bounds()}
		if onEvent != nil {
			r.OnEvent = func(e event.Event) { onEvent(r, e) }
		}
		rects[i] = r
		l.Add(r)
	}
	return l, rects
}

// Surface returns the surface with the given name.
func (c *Config) Surface(name string) (Surface, bool) {
	for _, s := range c.Surfaces {
		if s.Name == name {
			return s, true
		}
	}
	return Surface{}, false
}
