// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/gesture"
	"github.com/cotsog/mir/internal/config"
	"github.com/cotsog/mir/io/device"
	"github.com/cotsog/mir/io/event"
	"github.com/cotsog/mir/io/router"
	"github.com/cotsog/mir/scene"
)

// host draws the scene in a terminal and feeds the terminal input to
// a router.
type host struct {
	screen tcell.Screen
	logger *slog.Logger
	size   image.Point
	scene  *scene.List
	rects  []*scene.Rect
	styles []tcell.Style
	router *router.Router
	mouse  mouseState
	focus  int
	start  time.Time

	// last is the last event consumed by each surface.
	last    map[*scene.Rect]event.Event
	clicks  map[*scene.Rect]*gesture.Click
	clicked map[*scene.Rect]gesture.ClickEvent
	verdict string
	dropped router.Reason
	quit    bool
}

func newHost(s tcell.Screen, cfg config.Config, logger *slog.Logger) *host {
	h := &host{
		screen:  s,
		logger:  logger,
		size:    image.Pt(cfg.Screen.Width, cfg.Screen.Height),
		focus:   -1,
		start:   time.Now(),
		last:    make(map[*scene.Rect]event.Event),
		clicks:  make(map[*scene.Rect]*gesture.Click),
		clicked: make(map[*scene.Rect]gesture.ClickEvent),
	}
	h.scene, h.rects = cfg.Scene(func(r *scene.Rect, e event.Event) {
		h.last[r] = e
		h.click(r, e)
		logger.Debug("deliver", "surface", r.Name, "event", e)
	})
	for _, s := range cfg.Surfaces {
		c, err := s.RGBA()
		if err != nil {
			// Validated by config.Load.
			c = color.RGBA{A: 0xff}
		}
		h.styles = append(h.styles, surfaceStyle(c))
	}
	h.router = router.New(h.scene,
		router.WithLogger(logger),
		router.WithDropHook(func(e event.Event, why router.Reason) {
			h.dropped = why
		}),
	)
	for i, r := range h.rects {
		if r.Name == cfg.Focus {
			h.setFocus(i)
		}
	}
	h.router.Start()
	return h
}

func surfaceStyle(c color.RGBA) tcell.Style {
	fg := tcell.ColorWhite
	// Rec. 601 luma.
	if 299*int(c.R)+587*int(c.G)+114*int(c.B) > 128*1000 {
		fg = tcell.ColorBlack
	}
	return tcell.StyleDefault.
		Background(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))).
		Foreground(fg)
}

func (h *host) close() {
	h.router.Stop()
	h.router.Close()
}

func (h *host) run() {
	for !h.quit {
		h.draw()
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		h.handle(ev)
	}
}

func (h *host) now() time.Duration {
	return time.Since(h.start)
}

func (h *host) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		h.screen.Sync()
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape:
			h.quit = true
		case ev.Key() == tcell.KeyTab:
			h.setFocus(h.focus + 1)
		case isCtrlR(ev):
			h.mouse.reset()
			h.dispatch(device.Event{Device: mouseID, Time: h.now(), Action: device.Reset})
		default:
			for _, e := range keyEvents(ev, h.now()) {
				h.dispatch(e)
			}
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		for _, e := range h.mouse.events(ev, h.toScene(x, y), h.now()) {
			h.dispatch(e)
		}
	}
}

// click feeds e to the click recognizer of r.
func (h *host) click(r *scene.Rect, e event.Event) {
	c := h.clicks[r]
	if c == nil {
		c = new(gesture.Click)
		h.clicks[r] = c
	}
	if ce, ok := c.Update(r.Bounds().Size(), e); ok {
		h.clicked[r] = ce
	}
}

func (h *host) setFocus(i int) {
	if len(h.rects) == 0 {
		return
	}
	h.focus = i % len(h.rects)
	h.router.SetFocus(h.rects[h.focus])
}

func (h *host) dispatch(e event.Event) {
	if h.router.Dispatch(e) {
		h.verdict = "delivered"
	} else {
		h.verdict = "dropped: " + h.dropped.String()
	}
}

// cells returns the terminal area used by the scene. The last row
// holds the status line.
func (h *host) cells() image.Point {
	w, ht := h.screen.Size()
	if ht > 1 {
		ht--
	}
	return image.Pt(w, ht)
}

// toScene maps the center of a terminal cell to scene coordinates.
func (h *host) toScene(x, y int) f32.Point {
	c := h.cells()
	if c.X == 0 || c.Y == 0 {
		return f32.Point{}
	}
	return f32.Pt(
		(float32(x)+.5)*float32(h.size.X)/float32(c.X),
		(float32(y)+.5)*float32(h.size.Y)/float32(c.Y),
	)
}

// topAt returns the index of the topmost surface at p, or -1.
func (h *host) topAt(p f32.Point) int {
	top := -1
	for i, r := range h.rects {
		if r.Contains(p) {
			top = i
		}
	}
	return top
}

func (h *host) draw() {
	h.screen.Clear()
	c := h.cells()
	owner := make([][]int, c.Y)
	for y := range owner {
		owner[y] = make([]int, c.X)
		for x := range owner[y] {
			top := h.topAt(h.toScene(x, y))
			owner[y][x] = top
			if top >= 0 {
				h.screen.SetContent(x, y, ' ', nil, h.styles[top])
			}
		}
	}
	for i, r := range h.rects {
		x0, y0, ok := h.origin(owner, i)
		if !ok {
			continue
		}
		title := r.Name
		if i == h.focus {
			title = "*" + title
		}
		h.label(owner, i, x0, y0, title)
		if e, ok := h.last[r]; ok {
			h.label(owner, i, x0, y0+1, fmt.Sprint(e))
		}
		if ce, ok := h.clicked[r]; ok {
			h.label(owner, i, x0, y0+2, fmt.Sprintf("%v x%d", ce.Type, ce.NumClicks))
		}
	}
	h.status(c.Y)
	h.screen.Show()
}

// origin returns the first visible cell of surface i.
func (h *host) origin(owner [][]int, i int) (int, int, bool) {
	for y := range owner {
		for x := range owner[y] {
			if owner[y][x] == i {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

// label writes s from (x, y) on the cells owned by surface i.
func (h *host) label(owner [][]int, i, x, y int, s string) {
	if y >= len(owner) {
		return
	}
	for _, r := range s {
		if x >= len(owner[y]) || owner[y][x] != i {
			return
		}
		h.screen.SetContent(x, y, r, nil, h.styles[i])
		x++
	}
}

func (h *host) status(y int) {
	line := fmt.Sprintf("Tab: focus  Ctrl-R: reset mouse  Esc: quit | %s", h.verdict)
	if st, ok := h.router.Pointer(mouseID); ok {
		line += fmt.Sprintf(" | hover=%v owner=%v gesture=%v", name(st.Hover), name(st.Owner), st.Gesture)
	}
	w, _ := h.screen.Size()
	x := 0
	for _, r := range line {
		if x >= w {
			break
		}
		h.screen.SetContent(x, y, r, nil, tcell.StyleDefault.Reverse(true))
		x++
	}
}

func name(s scene.Surface) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprint(s)
}
