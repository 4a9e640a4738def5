// SPDX-License-Identifier: Unlicense OR MIT

/*
Package evdev reads Linux evdev input devices and translates their
event streams into router events.

Events are accumulated until a SYN_REPORT closes the frame, and the
router events of the frame are emitted together. A SYN_DROPPED event
means the kernel buffer overflowed: the decoder emits a device reset
and discards events up to the next SYN_REPORT.

Devices and the Decoder are only available on Linux.
*/
package evdev

import (
	"errors"
	"image"
)

// AbsInfo is the range of an absolute axis, as reported by the
// EVIOCGABS ioctl.
type AbsInfo struct {
	Value      int32
	Min        int32
	Max        int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// Options configure a Decoder and the Device reading it.
type Options struct {
	// Screen is the size of the screen that absolute axes are scaled
	// to and relative motion is clamped to.
	Screen image.Point
	// Grab makes Open grab the device so that no other client
	// receives its events.
	Grab bool
}

// ErrClosed is returned when reading from a closed Device.
var ErrClosed = errors.New("evdev: device closed")
