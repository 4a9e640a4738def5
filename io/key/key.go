// SPDX-License-Identifier: Unlicense OR MIT

// Package key implements keyboard events.
package key

import (
	"fmt"
	"strings"
	"time"

	"github.com/cotsog/mir/io/event"
)

// An Event is generated when a key is pressed or released.
type Event struct {
	// Device is the keyboard that generated the event.
	Device event.DeviceID
	// Time is when the event was received. The
	// timestamp is relative to an undefined base.
	Time time.Duration
	// State is the state of the key when the event was fired.
	State State
	// Code is the hardware scan code of the key.
	Code Code
	// Modifiers is the set of active modifiers when the key was pressed.
	Modifiers Modifiers
}

// Code is a hardware scan code. Codes are device specific; the
// router only compares them for equality.
type Code uint32

// State is the state of a key during an event.
type State uint8

const (
	// Press is the state of a pressed key.
	Press State = iota
	// Release is the state of a key that has been released.
	Release
)

// Modifiers
type Modifiers uint32

const (
	// ModCtrl is the ctrl modifier key.
	ModCtrl Modifiers = 1 << iota
	// ModCommand is the command modifier key
	// found on Apple keyboards.
	ModCommand
	// ModShift is the shift modifier key.
	ModShift
	// ModAlt is the alt modifier key, or the option
	// key on Apple keyboards.
	ModAlt
	// ModSuper is the "logo" modifier key, often
	// represented by a Windows logo.
	ModSuper
)

// Contain reports whether m contains all modifiers
// in m2.
func (m Modifiers) Contain(m2 Modifiers) bool {
	return m&m2 == m2
}

func (Event) ImplementsEvent() {}

func (e Event) String() string {
	s := fmt.Sprintf("key.Event{%v %s code=%d", e.Device, e.State, e.Code)
	if e.Modifiers != 0 {
		s += " mods=" + e.Modifiers.String()
	}
	return s + "}"
}

func (m Modifiers) String() string {
	var strs []string
	if m.Contain(ModCtrl) {
		strs = append(strs, "Ctrl")
	}
	if m.Contain(ModCommand) {
		strs = append(strs, "⌘")
	}
	if m.Contain(ModShift) {
		strs = append(strs, "Shift")
	}
	if m.Contain(ModAlt) {
		strs = append(strs, "Alt")
	}
	if m.Contain(ModSuper) {
		strs = append(strs, "Super")
	}
	return strings.Join(strs, "-")
}

func (s State) String() string {
	switch s {
	case Press:
		return "Press"
	case Release:
		return "Release"
	default:
		panic("invalid State")
	}
}
