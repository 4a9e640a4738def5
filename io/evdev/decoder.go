// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux
// +build linux

package evdev

import (
	"image"
	"time"

	input "github.com/gvalkov/golang-evdev"

	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/device"
	"github.com/cotsog/mir/io/event"
	"github.com/cotsog/mir/io/key"
	"github.com/cotsog/mir/io/pointer"
	"github.com/cotsog/mir/io/touch"
)

const (
	maxSlots         = 64
	wheelScrollLines = 1
)

// Decoder translates the input events of one device into router
// events.
type Decoder struct {
	id     event.DeviceID
	screen f32.Rectangle
	abs    map[uint16]AbsInfo

	// dropped is set between SYN_DROPPED and the next SYN_REPORT.
	dropped bool
	mods    key.Modifiers
	modKeys map[uint16]bool

	// Pending state of the current frame.
	keys    []key.Event
	buttons pointer.Buttons
	// held is the button mask at the start of the frame.
	held     pointer.Buttons
	presses  []pointer.Event
	position f32.Point
	moved    bool
	scroll   f32.Point

	slot  int
	slots [maxSlots]slot
}

// contact is the state of one tracked touch contact.
type contact struct {
	// id is the tracking id, or -1.
	id       int32
	x, y     int32
	pressure int32
	major    int32
	minor    int32
	// fresh is set for a contact that began in the current frame.
	fresh bool
}

type slot struct {
	contact
	changed bool
	// ended holds the contacts of the slot lifted in the current
	// frame, as they were when lifted.
	ended []contact
}

// NewDecoder returns a Decoder for the device with the given id.
func NewDecoder(id event.DeviceID, opts Options) *Decoder {
	d := &Decoder{
		id:      id,
		screen:  f32.FRect(image.Rectangle{Max: opts.Screen}),
		abs:     make(map[uint16]AbsInfo),
		modKeys: make(map[uint16]bool),
	}
	for i := range d.slots {
		d.slots[i].id = -1
	}
	return d
}

// SetAbs sets the range of an absolute axis. Axes without a range are
// not scaled.
func (d *Decoder) SetAbs(code uint16, info AbsInfo) {
	d.abs[code] = info
}

// DecodeAll decodes a batch of events as returned by a device read.
// Frames may span batches.
func (d *Decoder) DecodeAll(evs []input.InputEvent, emit func(e event.Event)) {
	for _, ev := range evs {
		d.Decode(ev, emit)
	}
}

// Decode processes a single input event.
func (d *Decoder) Decode(ev input.InputEvent, emit func(e event.Event)) {
	if ev.Type == input.EV_SYN {
		t := time.Duration(ev.Time.Nano())
		switch ev.Code {
		case input.SYN_REPORT:
			if d.dropped {
				d.dropped = false
				return
			}
			d.flush(t, emit)
		case input.SYN_DROPPED:
			d.reset()
			d.dropped = true
			emit(device.Event{Device: d.id, Time: t, Action: device.Reset})
		}
		return
	}
	if d.dropped {
		return
	}
	switch ev.Type {
	case input.EV_KEY:
		d.decodeKey(ev)
	case input.EV_REL:
		d.decodeRel(ev)
	case input.EV_ABS:
		d.decodeAbs(ev)
	}
}

func (d *Decoder) decodeKey(ev input.InputEvent) {
	var state key.State
	switch ev.Value {
	case 0:
		state = key.Release
	case 1:
		state = key.Press
	default:
		// Autorepeat.
		return
	}
	if b, ok := mouseButton(ev.Code); ok {
		kind := pointer.Release
		if state == key.Press {
			d.buttons |= b
			kind = pointer.Press
		} else {
			d.buttons &^= b
		}
		d.presses = append(d.presses, pointer.Event{
			Kind:    kind,
			Device:  d.id,
			Buttons: d.buttons,
		})
		return
	}
	// Joystick, digitizer and touch buttons are not keys.
	if ev.Code >= input.BTN_MISC && (ev.Code < input.KEY_OK || ev.Code >= input.BTN_TRIGGER_HAPPY) {
		return
	}
	d.updateModifiers(ev.Code, state == key.Press)
	d.keys = append(d.keys, key.Event{
		Device:    d.id,
		State:     state,
		Code:      key.Code(ev.Code),
		Modifiers: d.mods,
	})
}

func mouseButton(code uint16) (pointer.Buttons, bool) {
	switch code {
	case input.BTN_LEFT:
		return pointer.ButtonPrimary, true
	case input.BTN_RIGHT:
		return pointer.ButtonSecondary, true
	case input.BTN_MIDDLE:
		return pointer.ButtonTertiary, true
	case input.BTN_SIDE:
		return pointer.ButtonBack, true
	case input.BTN_EXTRA:
		return pointer.ButtonForward, true
	}
	return 0, false
}

func modifierFor(code uint16) key.Modifiers {
	switch code {
	case input.KEY_LEFTCTRL, input.KEY_RIGHTCTRL:
		return key.ModCtrl
	case input.KEY_LEFTSHIFT, input.KEY_RIGHTSHIFT:
		return key.ModShift
	case input.KEY_LEFTALT, input.KEY_RIGHTALT:
		return key.ModAlt
	case input.KEY_LEFTMETA, input.KEY_RIGHTMETA:
		return key.ModSuper
	}
	return 0
}

func (d *Decoder) updateModifiers(code uint16, down bool) {
	m := modifierFor(code)
	if m == 0 {
		return
	}
	if down {
		d.modKeys[code] = true
	} else {
		delete(d.modKeys, code)
	}
	d.mods = 0
	for c := range d.modKeys {
		d.mods |= modifierFor(c)
	}
}

func (d *Decoder) decodeRel(ev input.InputEvent) {
	v := float32(ev.Value)
	switch ev.Code {
	case input.REL_X:
		d.position.X += v
		d.moved = true
	case input.REL_Y:
		d.position.Y += v
		d.moved = true
	case input.REL_WHEEL:
		d.scroll.Y -= v * wheelScrollLines
		d.moved = true
	case input.REL_HWHEEL:
		d.scroll.X += v * wheelScrollLines
		d.moved = true
	}
}

func (d *Decoder) decodeAbs(ev input.InputEvent) {
	s := &d.slots[d.slot]
	switch ev.Code {
	case input.ABS_X:
		d.position.X = d.scale(input.ABS_X, ev.Value, d.screen.Dx())
		d.moved = true
	case input.ABS_Y:
		d.position.Y = d.scale(input.ABS_Y, ev.Value, d.screen.Dy())
		d.moved = true
	case input.ABS_MT_SLOT:
		if ev.Value >= 0 && ev.Value < maxSlots {
			d.slot = int(ev.Value)
		}
	case input.ABS_MT_TRACKING_ID:
		if s.id == ev.Value {
			return
		}
		if s.id >= 0 {
			s.ended = append(s.ended, s.contact)
		}
		s.id = ev.Value
		s.fresh = ev.Value >= 0
		s.changed = false
	case input.ABS_MT_POSITION_X:
		s.x = ev.Value
		s.changed = true
	case input.ABS_MT_POSITION_Y:
		s.y = ev.Value
		s.changed = true
	case input.ABS_MT_PRESSURE:
		s.pressure = ev.Value
		s.changed = true
	case input.ABS_MT_TOUCH_MAJOR:
		s.major = ev.Value
		s.changed = true
	case input.ABS_MT_TOUCH_MINOR:
		s.minor = ev.Value
		s.changed = true
	}
}

// scale maps v from the range of axis code onto [0, size).
func (d *Decoder) scale(code uint16, v int32, size float32) float32 {
	info, ok := d.abs[code]
	if !ok {
		return float32(v)
	}
	if info.Max <= info.Min {
		return 0
	}
	return float32(v-info.Min) * size / float32(info.Max-info.Min+1)
}

// normalize maps v from the range of axis code onto [0, 1].
func (d *Decoder) normalize(code uint16, v int32) float32 {
	info, ok := d.abs[code]
	if !ok {
		return float32(v)
	}
	if info.Max <= info.Min {
		return 0
	}
	return float32(v-info.Min) / float32(info.Max-info.Min)
}

func (d *Decoder) flush(t time.Duration, emit func(e event.Event)) {
	for _, e := range d.keys {
		e.Time = t
		emit(e)
	}
	d.keys = d.keys[:0]

	if d.moved {
		d.position = d.screen.Clamp(d.position)
		// The motion is reported with the buttons held before any
		// press or release of the same frame.
		emit(pointer.Event{
			Kind:     pointer.Move,
			Device:   d.id,
			Time:     t,
			Buttons:  d.held,
			Position: d.position,
			Scroll:   d.scroll,
		})
		d.moved = false
		d.scroll = f32.Point{}
	}
	for _, e := range d.presses {
		e.Time = t
		e.Position = d.position
		emit(e)
	}
	d.presses = d.presses[:0]
	d.held = d.buttons

	for i := range d.slots {
		s := &d.slots[i]
		for _, c := range s.ended {
			// A contact both placed and lifted within the frame is
			// a tap.
			if c.fresh {
				emit(d.touchEvent(c, touch.Down, t))
			}
			emit(d.touchEvent(c, touch.Up, t))
		}
		s.ended = s.ended[:0]
		switch {
		case s.id < 0:
		case s.fresh:
			emit(d.touchEvent(s.contact, touch.Down, t))
		case s.changed:
			emit(d.touchEvent(s.contact, touch.Change, t))
		}
		s.fresh, s.changed = false, false
	}
}

func (d *Decoder) touchEvent(c contact, a touch.Action, t time.Duration) touch.Event {
	return touch.Event{
		Device: d.id,
		Time:   t,
		ID:     touch.ID(c.id),
		Action: a,
		Tool:   touch.ToolFinger,
		Position: f32.Pt(
			d.scale(input.ABS_MT_POSITION_X, c.x, d.screen.Dx()),
			d.scale(input.ABS_MT_POSITION_Y, c.y, d.screen.Dy()),
		),
		Pressure:   d.normalize(input.ABS_MT_PRESSURE, c.pressure),
		TouchMajor: float32(c.major),
		TouchMinor: float32(c.minor),
		Size:       float32(c.major+c.minor) / 2,
	}
}

// reset forgets the device state after the kernel dropped events.
func (d *Decoder) reset() {
	d.keys = d.keys[:0]
	d.presses = d.presses[:0]
	d.buttons = 0
	d.held = 0
	d.moved = false
	d.scroll = f32.Point{}
	d.mods = 0
	for c := range d.modKeys {
		delete(d.modKeys, c)
	}
	for i := range d.slots {
		d.slots[i] = slot{contact: contact{id: -1}}
	}
}
