// SPDX-License-Identifier: Unlicense OR MIT

package router

import (
	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/event"
	"github.com/cotsog/mir/io/key"
	"github.com/cotsog/mir/io/pointer"
	"github.com/cotsog/mir/io/touch"
	"github.com/cotsog/mir/scene"
)

// surfaceRef is a weak reference to a surface: the surface together
// with the membership generation it had when the reference was taken.
// A stale reference is only compared, never called.
type surfaceRef struct {
	s   scene.Surface
	gen uint64
}

// tracker holds the per-device input state. It performs no I/O and
// never calls into surfaces.
type tracker struct {
	devices map[event.DeviceID]*deviceState
}

type deviceState struct {
	keys    map[key.Code]struct{}
	pointer pointerState
	touches map[touch.ID]surfaceRef
}

type pointerState struct {
	buttons  pointer.Buttons
	position f32.Point
	// owner is set for the duration of a gesture.
	owner surfaceRef
	// hover is the surface that last received Enter.
	hover surfaceRef
}

func (r surfaceRef) valid() bool {
	return r.s != nil
}

func (t *tracker) device(id event.DeviceID) *deviceState {
	if t.devices == nil {
		t.devices = make(map[event.DeviceID]*deviceState)
	}
	d, ok := t.devices[id]
	if !ok {
		d = new(deviceState)
		t.devices[id] = d
	}
	return d
}

func (t *tracker) lookup(id event.DeviceID) (*deviceState, bool) {
	d, ok := t.devices[id]
	return d, ok
}

// keyDown records code as down and reports whether it was up before.
func (t *tracker) keyDown(id event.DeviceID, code key.Code) bool {
	d := t.device(id)
	if _, down := d.keys[code]; down {
		return false
	}
	if d.keys == nil {
		d.keys = make(map[key.Code]struct{})
	}
	d.keys[code] = struct{}{}
	return true
}

// keyUp records code as up and reports whether it was down before.
func (t *tracker) keyUp(id event.DeviceID, code key.Code) bool {
	d, ok := t.lookup(id)
	if !ok {
		return false
	}
	if _, down := d.keys[code]; !down {
		return false
	}
	delete(d.keys, code)
	return true
}

// clearKeys forgets every pressed key of every device.
func (t *tracker) clearKeys() {
	for _, d := range t.devices {
		d.keys = nil
	}
}

// reset forgets all state of a device.
func (t *tracker) reset(id event.DeviceID) {
	delete(t.devices, id)
}

// forget forgets all state of all devices.
func (t *tracker) forget() {
	t.devices = nil
}

func (t *tracker) pointer(id event.DeviceID) *pointerState {
	return &t.device(id).pointer
}

// gesture records the buttons and position of e and returns the owner
// of the gesture e belongs to. A press outside a gesture begins one
// owned by the result of hit, if valid. Inside a gesture the recorded
// owner is returned without calling hit, even if it is stale.
func (t *tracker) gesture(e pointer.Event, hit func() surfaceRef) (owner surfaceRef, began bool) {
	p := t.pointer(e.Device)
	p.buttons = e.Buttons
	p.position = e.Position
	if p.owner.valid() {
		return p.owner, false
	}
	if e.Kind != pointer.Press {
		return surfaceRef{}, false
	}
	owner = hit()
	p.owner = owner
	return owner, owner.valid()
}

// endGestureIfIdle releases the gesture owner once all buttons are up,
// and reports whether it did.
func (t *tracker) endGestureIfIdle(id event.DeviceID) bool {
	d, ok := t.lookup(id)
	if !ok {
		return false
	}
	p := &d.pointer
	if p.buttons != 0 || !p.owner.valid() {
		return false
	}
	p.owner = surfaceRef{}
	return true
}

func (t *tracker) bindTouch(id event.DeviceID, tid touch.ID, s surfaceRef) {
	d := t.device(id)
	if d.touches == nil {
		d.touches = make(map[touch.ID]surfaceRef)
	}
	d.touches[tid] = s
}

func (t *tracker) lookupTouch(id event.DeviceID, tid touch.ID) (surfaceRef, bool) {
	d, ok := t.lookup(id)
	if !ok {
		return surfaceRef{}, false
	}
	s, ok := d.touches[tid]
	return s, ok
}

func (t *tracker) releaseTouch(id event.DeviceID, tid touch.ID) {
	if d, ok := t.lookup(id); ok {
		delete(d.touches, tid)
	}
}
