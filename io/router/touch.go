// SPDX-License-Identifier: Unlicense OR MIT

package router

import (
	"github.com/cotsog/mir/io/touch"
)

func (r *Router) dispatchTouch(e touch.Event) bool {
	switch e.Action {
	case touch.Down:
		target := r.hitTest(e.Position)
		if !target.valid() {
			r.state.releaseTouch(e.Device, e.ID)
			return r.drop(e, NoTarget)
		}
		r.state.bindTouch(e.Device, e.ID, target)
		r.deliverTouch(target, e)
		return true
	case touch.Change, touch.Up:
		owner, ok := r.state.lookupTouch(e.Device, e.ID)
		if !ok {
			return r.drop(e, UnknownTouch)
		}
		alive := r.alive(owner)
		if e.Action == touch.Up || !alive {
			r.state.releaseTouch(e.Device, e.ID)
		}
		if !alive {
			return r.drop(e, StaleTouch)
		}
		r.deliverTouch(owner, e)
		return true
	default:
		return r.drop(e, Unsupported)
	}
}

func (r *Router) deliverTouch(to surfaceRef, e touch.Event) {
	e.Position = e.Position.Sub(origin(to))
	to.s.Consume(e)
}
