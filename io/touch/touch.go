// SPDX-License-Identifier: Unlicense OR MIT

// Package touch implements touch screen and touch pad contact events.
package touch

import (
	"fmt"
	"time"

	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/event"
	"github.com/cotsog/mir/io/key"
)

// Event reports a change of a single contact.
type Event struct {
	// Device is the touch device that generated the event.
	Device event.DeviceID
	// Time is when the event was received. The
	// timestamp is relative to an undefined base.
	Time time.Duration
	// ID identifies the contact from Down to Up. IDs are
	// only unique per device and are reused after Up.
	ID     ID
	Action Action
	Tool   Tool
	// Position is in global coordinates when entering a router
	// and surface local coordinates when delivered.
	Position f32.Point
	// Pressure, TouchMajor, TouchMinor and Size are normalized
	// contact measurements in the range [0, 1].
	Pressure   float32
	TouchMajor float32
	TouchMinor float32
	Size       float32
	Modifiers  key.Modifiers
}

// ID is a contact identifier.
type ID int32

// Action is the kind of contact change.
type Action uint8

// Tool is the kind of object touching the device.
type Tool uint8

const (
	// Down starts a contact.
	Down Action = iota
	// Change reports motion or measurement changes of a contact.
	Change
	// Up ends a contact.
	Up
)

const (
	ToolUnknown Tool = iota
	ToolFinger
	ToolStylus
)

func (Event) ImplementsEvent() {}

func (e Event) String() string {
	return fmt.Sprintf("touch.Event{%v %s id=%d %v}", e.Device, e.Action, e.ID, e.Position)
}

func (a Action) String() string {
	switch a {
	case Down:
		return "Down"
	case Change:
		return "Change"
	case Up:
		return "Up"
	default:
		panic("invalid Action")
	}
}

func (t Tool) String() string {
	switch t {
	case ToolUnknown:
		return "Unknown"
	case ToolFinger:
		return "Finger"
	case ToolStylus:
		return "Stylus"
	default:
		panic("invalid Tool")
	}
}
