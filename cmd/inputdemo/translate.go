// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/event"
	"github.com/cotsog/mir/io/key"
	"github.com/cotsog/mir/io/pointer"
)

const (
	keyboardID event.DeviceID = 0
	mouseID    event.DeviceID = 1
)

// runeLimit is past the last Unicode code point. Key codes of runes
// are the runes themselves; other keys are offset by runeLimit.
const runeLimit = 0x110000

var mouseButtons = []struct {
	term tcell.ButtonMask
	btn  pointer.Buttons
}{
	{tcell.Button1, pointer.ButtonPrimary},
	{tcell.Button2, pointer.ButtonSecondary},
	{tcell.Button3, pointer.ButtonTertiary},
	{tcell.Button4, pointer.ButtonBack},
	{tcell.Button5, pointer.ButtonForward},
}

func modifiers(m tcell.ModMask) key.Modifiers {
	var mods key.Modifiers
	if m&tcell.ModShift != 0 {
		mods |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		mods |= key.ModSuper
	}
	return mods
}

func keyCode(ev *tcell.EventKey) key.Code {
	if ev.Key() == tcell.KeyRune {
		return key.Code(ev.Rune())
	}
	return key.Code(runeLimit + uint32(ev.Key()))
}

// keyEvents returns the press and release of the keyboard key of ev.
// Terminals report no key releases, so every key is released at once.
func keyEvents(ev *tcell.EventKey, t time.Duration) []key.Event {
	e := key.Event{
		Device:    keyboardID,
		Time:      t,
		State:     key.Press,
		Code:      keyCode(ev),
		Modifiers: modifiers(ev.Modifiers()),
	}
	release := e
	release.State = key.Release
	return []key.Event{e, release}
}

func isCtrlR(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlR {
		return true
	}
	return ev.Modifiers()&tcell.ModCtrl != 0 && (ev.Rune() == 'r' || ev.Rune() == 'R')
}

// mouseState turns the button masks of terminal mouse reports into
// pointer transitions.
type mouseState struct {
	buttons  pointer.Buttons
	position f32.Point
	known    bool
}

// events returns the pointer events for a mouse report at pos: a Move
// if the pointer moved or scrolled, followed by a Press or Release for
// every button that changed.
func (m *mouseState) events(ev *tcell.EventMouse, pos f32.Point, t time.Duration) []pointer.Event {
	mods := modifiers(ev.Modifiers())
	mask := ev.Buttons()
	var scroll f32.Point
	if mask&tcell.WheelUp != 0 {
		scroll.Y--
	}
	if mask&tcell.WheelDown != 0 {
		scroll.Y++
	}
	if mask&tcell.WheelLeft != 0 {
		scroll.X--
	}
	if mask&tcell.WheelRight != 0 {
		scroll.X++
	}
	var out []pointer.Event
	if !m.known || pos != m.position || scroll != (f32.Point{}) {
		out = append(out, pointer.Event{
			Kind:      pointer.Move,
			Device:    mouseID,
			Time:      t,
			Buttons:   m.buttons,
			Position:  pos,
			Scroll:    scroll,
			Modifiers: mods,
		})
	}
	m.position = pos
	m.known = true
	for _, b := range mouseButtons {
		down := mask&b.term != 0
		var kind pointer.Kind
		switch {
		case down && m.buttons&b.btn == 0:
			m.buttons |= b.btn
			kind = pointer.Press
		case !down && m.buttons&b.btn != 0:
			m.buttons &^= b.btn
			kind = pointer.Release
		default:
			continue
		}
		out = append(out, pointer.Event{
			Kind:      kind,
			Device:    mouseID,
			Time:      t,
			Buttons:   m.buttons,
			Position:  pos,
			Modifiers: mods,
		})
	}
	return out
}

// reset forgets the pressed buttons.
func (m *mouseState) reset() {
	m.buttons = 0
}
