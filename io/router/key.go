// SPDX-License-Identifier: Unlicense OR MIT

package router

import (
	"github.com/cotsog/mir/io/key"
)

// dispatchKey delivers e to the focus. The key state is updated even
// when there is no focus to deliver to.
func (r *Router) dispatchKey(e key.Event) bool {
	switch e.State {
	case key.Press:
		if !r.state.keyDown(e.Device, e.Code) {
			return r.drop(e, DuplicateKey)
		}
	case key.Release:
		if !r.state.keyUp(e.Device, e.Code) {
			return r.drop(e, InconsistentKey)
		}
	default:
		return r.drop(e, Unsupported)
	}
	if !r.alive(r.focus) {
		return r.drop(e, NoFocus)
	}
	r.focus.s.Consume(e)
	return true
}
