// SPDX-License-Identifier: Unlicense OR MIT

/*
Package router routes input events from devices to the surfaces of a
scene.

A Router receives key, pointer, touch and device events one at a time
through Dispatch and delivers each to at most one surface:

  - key events go to the focus surface set with SetFocus, provided the
    press and release of every key are consistent per device;
  - pointer events go to the topmost surface under the pointer, except
    during a gesture (a button held down) when they go to the surface
    that received the first press. Enter and Leave events are
    synthesized when the surface under the pointer changes;
  - touch events go to the surface under the contact when it went down,
    for the whole life of the contact;
  - device resets forget all state of the device without delivering
    anything.

The router observes scene membership and keeps only weak references to
surfaces. Events for a surface that has been removed are dropped.
*/
package router

import (
	"log/slog"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/device"
	"github.com/cotsog/mir/io/event"
	"github.com/cotsog/mir/io/key"
	"github.com/cotsog/mir/io/pointer"
	"github.com/cotsog/mir/io/touch"
	"github.com/cotsog/mir/scene"
)

// Router dispatches input events to scene surfaces. Its methods are
// safe for concurrent use, but Dispatch processes events strictly in
// call order and callers are expected to feed it from a single
// goroutine. Surfaces are called with the router locked; Consume must
// not call back into the router or modify the scene.
type Router struct {
	mu     sync.Mutex
	scene  scene.Scene
	logger *slog.Logger
	onDrop func(e event.Event, why Reason)

	started   bool
	observing bool
	// live maps every scene member to its membership generation.
	live  map[scene.Surface]uint64
	gen   uint64
	focus surfaceRef
	state tracker
}

// Option configures a Router.
type Option func(r *Router)

// PointerState is a snapshot of the state of a pointer device.
type PointerState struct {
	Buttons  pointer.Buttons
	Position f32.Point
	// Hover is the surface the pointer is over, or nil.
	Hover scene.Surface
	// Owner is the surface owning the current gesture, or nil.
	Owner scene.Surface
	// Gesture reports whether a gesture is in progress. Owner is nil
	// during a gesture whose surface was removed.
	Gesture bool
}

var _ scene.Observer = (*Router)(nil)

// WithLogger sets the logger for the router. Dropped events are logged
// at debug level. By default the router logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDropHook calls f for every dropped event. It is called with the
// router locked.
func WithDropHook(f func(e event.Event, why Reason)) Option {
	return func(r *Router) {
		r.onDrop = f
	}
}

// New creates a stopped Router and attaches it as the observer of s.
func New(s scene.Scene, opts ...Option) *Router {
	r := &Router{
		scene:     s,
		logger:    newNopLogger(),
		live:      make(map[scene.Surface]uint64),
		observing: true,
	}
	for _, o := range opts {
		o(r)
	}
	s.AddObserver(r)
	return r
}

// Start enables dispatching.
func (r *Router) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = true
	r.logger.Info("input router started")
}

// Stop disables dispatching and forgets the state of every device.
// Focus and scene membership are kept.
func (r *Router) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = false
	r.state.forget()
	r.logger.Info("input router stopped")
}

// Close detaches the router from its scene. Close must be called at
// most once.
func (r *Router) Close() {
	r.scene.RemoveObserver(r)
}

// SetFocus sets the surface receiving key events. A nil s clears the
// focus. Changing the focus forgets all pressed keys, so that a key
// pressed while one surface was focused is never released to another.
// A surface that is not a member of the scene makes the focus inert.
func (r *Router) SetFocus(s scene.Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ref surfaceRef
	if s != nil {
		ref = surfaceRef{s: s, gen: r.live[s]}
	}
	if ref == r.focus {
		return
	}
	r.state.clearKeys()
	r.focus = ref
}

// Focus returns the focused surface, if any and still in the scene.
func (r *Router) Focus() (scene.Surface, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.alive(r.focus) {
		return nil, false
	}
	return r.focus.s, true
}

// Pointer returns the state of a pointer device. The result is false if
// the router holds no state for the device.
func (r *Router) Pointer(id event.DeviceID) (PointerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.state.lookup(id)
	if !ok {
		return PointerState{}, false
	}
	p := d.pointer
	st := PointerState{
		Buttons:  p.buttons,
		Position: p.position,
		Gesture:  p.owner.valid(),
	}
	if r.alive(p.hover) {
		st.Hover = p.hover.s
	}
	if r.alive(p.owner) {
		st.Owner = p.owner.s
	}
	return st, true
}

// Devices returns the ids of the devices with state, in increasing
// order.
func (r *Router) Devices() []event.DeviceID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := maps.Keys(r.state.devices)
	slices.Sort(ids)
	return ids
}

// Dispatch routes e and reports whether it was delivered to a surface.
// Synthesized Enter and Leave events count as deliveries.
func (r *Router) Dispatch(e event.Event) bool {
	if e == nil {
		panic("router: nil event")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return r.drop(e, Stopped)
	}
	switch e := e.(type) {
	case key.Event:
		return r.dispatchKey(e)
	case pointer.Event:
		return r.dispatchPointer(e)
	case touch.Event:
		return r.dispatchTouch(e)
	case device.Event:
		return r.dispatchDevice(e)
	default:
		return r.drop(e, Unsupported)
	}
}

func (r *Router) dispatchDevice(e device.Event) bool {
	switch e.Action {
	case device.Reset, device.Removed:
		r.state.reset(e.Device)
	case device.Added, device.Configured:
	default:
		return r.drop(e, Unsupported)
	}
	if r.debugEnabled() {
		r.logger.Debug("device", "device", e.Device, "action", e.Action)
	}
	return true
}

// SurfaceAdded implements scene.Observer.
func (r *Router) SurfaceAdded(s scene.Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.track(s)
}

// SurfaceExists implements scene.Observer.
func (r *Router) SurfaceExists(s scene.Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.track(s)
}

// SurfaceRemoved implements scene.Observer. References to s held in
// device state are left in place and detected as stale when used.
func (r *Router) SurfaceRemoved(s scene.Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, s)
	if r.debugEnabled() {
		r.logger.Debug("surface removed", "surface", s)
	}
}

// EndObservation implements scene.Observer. Every surface reference
// held by the router becomes stale.
func (r *Router) EndObservation() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.observing {
		panic("router: observation already ended")
	}
	r.observing = false
	r.live = make(map[scene.Surface]uint64)
	r.logger.Info("input router detached from scene")
}

func (r *Router) track(s scene.Surface) {
	r.gen++
	r.live[s] = r.gen
	if r.debugEnabled() {
		r.logger.Debug("surface added", "surface", s, "gen", r.gen)
	}
}

// alive reports whether ref refers to a current scene member.
func (r *Router) alive(ref surfaceRef) bool {
	if !ref.valid() {
		return false
	}
	gen, ok := r.live[ref.s]
	return ok && gen == ref.gen
}

// hitTest returns the topmost live surface containing p: the last
// match in scene iteration order.
func (r *Router) hitTest(p f32.Point) surfaceRef {
	var top surfaceRef
	r.scene.ForEach(func(s scene.Surface) {
		gen, ok := r.live[s]
		if ok && s.Contains(p) {
			top = surfaceRef{s: s, gen: gen}
		}
	})
	return top
}

// origin returns the global position of the surface local origin.
func origin(ref surfaceRef) f32.Point {
	return f32.FPt(ref.s.Bounds().Min)
}

func (r *Router) drop(e event.Event, why Reason) bool {
	if r.debugEnabled() {
		r.logger.Debug("input dropped", "reason", why, "event", e)
	}
	if r.onDrop != nil {
		r.onDrop(e, why)
	}
	return false
}
