// SPDX-License-Identifier: Unlicense OR MIT

package evdev

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"unsafe"

	input "github.com/gvalkov/golang-evdev"
	syscall "golang.org/x/sys/unix"

	"github.com/cotsog/mir/io/event"
)

// Device is an open evdev device node.
type Device struct {
	path    string
	dev     *input.InputDevice
	dec     *Decoder
	fd      int
	grabbed bool

	mu     sync.Mutex
	closed bool
}

// pollTimeout bounds how long Run waits before checking for
// cancellation, in milliseconds.
const pollTimeout = 100

// evioCGAbs is EVIOCGABS(abs), the _IOR('E', 0x40 + abs, struct
// input_absinfo) request.
func evioCGAbs(code uint16) uint {
	const (
		iocRead      = 2
		iocTypeShift = 8
		iocSizeShift = 16
		iocDirShift  = 30
	)
	size := uint(unsafe.Sizeof(AbsInfo{}))
	return iocRead<<iocDirShift | 'E'<<iocTypeShift | (0x40 + uint(code)) | size<<iocSizeShift
}

// Open opens the evdev node at path for the device with the given id.
// The ranges of the absolute axes the device reports are queried for
// scaling.
func Open(path string, id event.DeviceID, opts Options) (*Device, error) {
	dev, err := input.Open(path)
	if err != nil {
		return nil, fmt.Errorf("evdev: open %s: %w", path, err)
	}
	d := &Device{
		path: path,
		dev:  dev,
		fd:   int(dev.File.Fd()),
		dec:  NewDecoder(id, opts),
	}
	for typ, codes := range dev.Capabilities {
		if typ.Type != input.EV_ABS {
			continue
		}
		for _, c := range codes {
			if info, err := absInfo(d.fd, uint16(c.Code)); err == nil {
				d.dec.SetAbs(uint16(c.Code), info)
			}
		}
	}
	if opts.Grab {
		if err := dev.Grab(); err != nil {
			dev.File.Close()
			return nil, fmt.Errorf("evdev: grab %s: %w", path, err)
		}
		d.grabbed = true
	}
	return d, nil
}

func absInfo(fd int, code uint16) (AbsInfo, error) {
	var info AbsInfo
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(evioCGAbs(code)), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return AbsInfo{}, errno
	}
	return info, nil
}

// Name returns the name the device reports for itself.
func (d *Device) Name() string {
	return d.dev.Name
}

// Path returns the path the device was opened with.
func (d *Device) Path() string {
	return d.path
}

// Run reads the device until ctx is done or the device is closed or
// fails, calling emit for every decoded event. Run returns ctx.Err()
// on cancellation and ErrClosed after Close.
func (d *Device) Run(ctx context.Context, emit func(e event.Event)) error {
	if err := d.check(); err != nil {
		return err
	}
	pollfds := []syscall.PollFd{
		{Fd: int32(d.fd), Events: syscall.POLLIN | syscall.POLLERR},
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		pollfds[0].Revents = 0
		if _, err := syscall.Poll(pollfds, pollTimeout); err != nil && err != syscall.EINTR {
			return fmt.Errorf("evdev: %s: poll: %w", d.path, err)
		}
		revents := pollfds[0].Revents
		if revents&syscall.POLLIN == 0 {
			if err := d.check(); err != nil {
				return err
			}
			if revents&(syscall.POLLERR|syscall.POLLHUP|syscall.POLLNVAL) != 0 {
				return fmt.Errorf("evdev: %s: device gone", d.path)
			}
			continue
		}
		evs, err := d.read()
		switch {
		case errors.Is(err, ErrClosed):
			return err
		case errors.Is(err, syscall.EINTR), errors.Is(err, syscall.EAGAIN):
			continue
		case errors.Is(err, io.EOF), errors.Is(err, syscall.ENODEV):
			return fmt.Errorf("evdev: %s: device gone", d.path)
		case err != nil:
			return fmt.Errorf("evdev: %s: read: %w", d.path, err)
		}
		d.dec.DecodeAll(evs, emit)
	}
}

func (d *Device) check() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	return nil
}

// read reads a batch of events. It is only called after poll reported
// the device readable, so the read does not block and may hold the
// lock.
func (d *Device) read() ([]input.InputEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	return d.dev.Read()
}

// Close closes the device. A concurrent Run returns ErrClosed within
// the poll timeout.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	if d.grabbed {
		d.dev.Release()
	}
	if err := d.dev.File.Close(); err != nil {
		return fmt.Errorf("evdev: close %s: %w", d.path, err)
	}
	return nil
}
