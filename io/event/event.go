// SPDX-License-Identifier: Unlicense OR MIT

// Package event contains types for event handling.
package event

import "strconv"

// DeviceID identifies the input device an event originates from.
// All per-device state in a router is keyed by it.
type DeviceID int32

// Event is the marker interface for input events. The set of
// implementations is closed: key.Event, pointer.Event, touch.Event
// and device.Event.
type Event interface {
	ImplementsEvent()
}

func (d DeviceID) String() string {
	return "dev" + strconv.Itoa(int(d))
}
