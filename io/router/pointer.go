// SPDX-License-Identifier: Unlicense OR MIT

package router

import (
	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/pointer"
)

func (r *Router) dispatchPointer(e pointer.Event) bool {
	if e.Kind&(pointer.Enter|pointer.Leave) != 0 {
		// Crossing events are synthesized, never accepted from a
		// device.
		return r.drop(e, Unsupported)
	}
	p := r.state.pointer(e.Device)
	if !p.owner.valid() {
		return r.dispatchHover(p, e)
	}
	// Inside a gesture the owner receives everything, wherever the
	// pointer is.
	owner, _ := r.state.gesture(e, nil)
	ended := r.state.endGestureIfIdle(e.Device)
	if !r.alive(owner) {
		// The hover target is re-resolved by the next event.
		return r.drop(e, StaleOwner)
	}
	r.deliverPointer(owner, e)
	if ended {
		r.updateHover(p, e, r.hitTest(e.Position))
	}
	return true
}

// dispatchHover routes e outside a gesture, to the topmost surface
// under the pointer.
func (r *Router) dispatchHover(p *pointerState, e pointer.Event) bool {
	var target surfaceRef
	if e.Kind != pointer.Release {
		target = r.hitTest(e.Position)
	}
	r.state.gesture(e, func() surfaceRef { return target })
	if e.Kind == pointer.Release {
		// The matching press was never delivered.
		return r.drop(e, NoTarget)
	}
	crossed := r.updateHover(p, e, target)
	if !target.valid() {
		if crossed {
			return true
		}
		return r.drop(e, NoTarget)
	}
	r.deliverPointer(target, e)
	return true
}

// updateHover makes target the hover surface of p, sending Leave to
// the previous hover surface if it is still alive and Enter to target.
// It reports whether any event was delivered.
func (r *Router) updateHover(p *pointerState, e pointer.Event, target surfaceRef) bool {
	if p.hover == target {
		return false
	}
	prev := p.hover
	p.hover = target
	e.Scroll = f32.Point{}
	sent := false
	if r.alive(prev) {
		e.Kind = pointer.Leave
		r.deliverPointer(prev, e)
		sent = true
	}
	if target.valid() {
		e.Kind = pointer.Enter
		r.deliverPointer(target, e)
		sent = true
	}
	return sent
}

func (r *Router) deliverPointer(to surfaceRef, e pointer.Event) {
	e.Position = e.Position.Sub(origin(to))
	to.s.Consume(e)
}
