// SPDX-License-Identifier: Unlicense OR MIT

//go:build !linux
// +build !linux

package evdev

import (
	"context"
	"errors"

	"github.com/cotsog/mir/io/event"
)

// Device is an open evdev device node. Devices are only supported on
// Linux.
type Device struct{}

func Open(path string, id event.DeviceID, opts Options) (*Device, error) {
	return nil, errors.New("evdev: not supported on this platform")
}

func (d *Device) Name() string { return "" }

func (d *Device) Path() string { return "" }

func (d *Device) Run(ctx context.Context, emit func(e event.Event)) error {
	return ErrClosed
}

func (d *Device) Close() error {
	return ErrClosed
}
