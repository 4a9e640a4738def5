// SPDX-License-Identifier: Unlicense OR MIT

// Package pointer implements mouse and other relative or absolute
// pointer device events.
package pointer

import (
	"fmt"
	"strings"
	"time"

	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/event"
	"github.com/cotsog/mir/io/key"
)

// Event is a pointer event.
type Event struct {
	Kind Kind
	// Device is the pointer device that generated the event.
	Device event.DeviceID
	// Time is when the event was received. The
	// timestamp is relative to an undefined base.
	Time time.Duration
	// Buttons are the set of pressed mouse buttons for this event,
	// after the Press or Release it reports.
	Buttons Buttons
	// Position is the coordinates of the event. Events entering a
	// router carry global coordinates; events delivered to a surface
	// are relative to the top left corner of the surface bounds.
	Position f32.Point
	// Scroll is the scroll amount, if any.
	Scroll f32.Point
	// Modifiers is the set of active modifiers when
	// the event was generated.
	Modifiers key.Modifiers
}

// Kind of an Event.
type Kind uint

// Buttons is a set of mouse buttons
type Buttons uint8

const (
	// Press of a pointer button.
	Press Kind = 1 << iota
	// Release of a pointer button.
	Release
	// Move of a pointer.
	Move
	// Pointer enters a surface. Enter events are never produced by
	// devices; routers synthesize them.
	Enter
	// Pointer leaves a surface. Like Enter, it is synthesized.
	Leave
)

const (
	// ButtonPrimary is the primary button, usually the left button for a
	// right-handed user.
	ButtonPrimary Buttons = 1 << iota
	// ButtonSecondary is the secondary button, usually the right button for a
	// right-handed user.
	ButtonSecondary
	// ButtonTertiary is the tertiary button, usually the middle button.
	ButtonTertiary
	// ButtonBack is the side button that navigates backwards.
	ButtonBack
	// ButtonForward is the side button that navigates forwards.
	ButtonForward
)

func (Event) ImplementsEvent() {}

func (e Event) String() string {
	s := fmt.Sprintf("pointer.Event{%v %s %v", e.Device, e.Kind, e.Position)
	if e.Buttons != 0 {
		s += " " + e.Buttons.String()
	}
	if e.Scroll != (f32.Point{}) {
		s += " scroll=" + e.Scroll.String()
	}
	return s + "}"
}

func (t Kind) String() string {
	var buf strings.Builder
	for tt := Kind(1); tt > 0 && tt <= Leave; tt <<= 1 {
		if t&tt > 0 {
			if buf.Len() > 0 {
				buf.WriteByte('|')
			}
			buf.WriteString((t & tt).string())
		}
	}
	return buf.String()
}

func (t Kind) string() string {
	switch t {
	case Press:
		return "Press"
	case Release:
		return "Release"
	case Move:
		return "Move"
	case Enter:
		return "Enter"
	case Leave:
		return "Leave"
	default:
		panic("unknown Type")
	}
}

// Contain reports whether the set b contains
// all of the buttons.
func (b Buttons) Contain(buttons Buttons) bool {
	return b&buttons == buttons
}

func (b Buttons) String() string {
	var strs []string
	if b.Contain(ButtonPrimary) {
		strs = append(strs, "ButtonPrimary")
	}
	if b.Contain(ButtonSecondary) {
		strs = append(strs, "ButtonSecondary")
	}
	if b.Contain(ButtonTertiary) {
		strs = append(strs, "ButtonTertiary")
	}
	if b.Contain(ButtonBack) {
		strs = append(strs, "ButtonBack")
	}
	if b.Contain(ButtonForward) {
		strs = append(strs, "ButtonForward")
	}
	return strings.Join(strs, "|")
}
