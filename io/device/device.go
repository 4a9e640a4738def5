// SPDX-License-Identifier: Unlicense OR MIT

// Package device implements input device configuration events.
package device

import (
	"fmt"
	"time"

	"github.com/cotsog/mir/io/event"
)

// Event reports a change to an input device as a whole.
type Event struct {
	Device event.DeviceID
	// Time is when the event was received. The
	// timestamp is relative to an undefined base.
	Time   time.Duration
	Action Action
}

// Action is the kind of device change.
type Action uint8

const (
	// Added is sent when a device is plugged in.
	Added Action = iota
	// Configured is sent when device settings change.
	Configured
	// Reset means all state previously reported by the device,
	// pressed keys and buttons as well as active contacts, must be
	// considered released. No release events follow.
	Reset
	// Removed is sent when a device is unplugged. It implies Reset.
	Removed
)

func (Event) ImplementsEvent() {}

func (e Event) String() string {
	return fmt.Sprintf("device.Event{%v %s}", e.Device, e.Action)
}

func (a Action) String() string {
	switch a {
	case Added:
		return "Added"
	case Configured:
		return "Configured"
	case Reset:
		return "Reset"
	case Removed:
		return "Removed"
	default:
		panic("invalid Action")
	}
}
