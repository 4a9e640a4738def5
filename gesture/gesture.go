// SPDX-License-Identifier: Unlicense OR MIT

/*
Package gesture implements common pointer gestures.

Gestures accept the pointer events a surface receives from a router
and detect higher level actions such as clicks.
*/
package gesture

import (
	"image"
	"time"

	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/event"
	"github.com/cotsog/mir/io/key"
	"github.com/cotsog/mir/io/pointer"
)

// The duration is somewhat arbitrary.
const doubleClickDuration = 200 * time.Millisecond

// Click detects click gestures in the form
// of ClickEvents.
type Click struct {
	// clickedAt is the timestamp at which
	// the last click occurred.
	clickedAt time.Duration
	// clicks is incremented if successive clicks
	// are performed within a fixed duration.
	clicks int
	// state tracks the gesture state.
	state ClickState
}

type ClickState uint8

// ClickEvent represent a click action, either a
// TypePress for the beginning of a click or a
// TypeClick for a completed click.
type ClickEvent struct {
	Type      ClickType
	Position  f32.Point
	Modifiers key.Modifiers
	// NumClicks records successive clicks occurring
	// within a short duration of each other.
	NumClicks int
}

type ClickType uint8

const (
	// StateNormal is the default click state.
	StateNormal ClickState = iota
	// StateFocused is reported when a pointer
	// is hovering over the handler.
	StateFocused
	// StatePressed is then a pointer is pressed.
	StatePressed
)

const (
	// TypePress is reported for the first pointer
	// press.
	TypePress ClickType = iota
	// TypeClick is reported when a click action
	// is complete.
	TypeClick
	// TypeCancel is reported when the gesture is
	// cancelled.
	TypeCancel
)

// State reports the click state.
func (c *Click) State() ClickState {
	return c.state
}

// Update processes an event delivered to a surface of the given size
// and returns the resulting click event, if any. Positions are
// relative to the surface, as a router delivers them.
func (c *Click) Update(size image.Point, evt event.Event) (ClickEvent, bool) {
	e, ok := evt.(pointer.Event)
	if !ok {
		return ClickEvent{}, false
	}
	area := f32.Rectangle{Max: f32.FPt(size)}
	switch e.Kind {
	case pointer.Enter:
		if c.state < StateFocused {
			c.state = StateFocused
		}
	case pointer.Leave:
		wasPressed := c.state == StatePressed
		c.state = StateNormal
		if wasPressed {
			return ClickEvent{Type: TypeCancel}, true
		}
	case pointer.Press:
		if c.state == StatePressed || e.Buttons != pointer.ButtonPrimary || !e.Position.In(area) {
			break
		}
		c.state = StatePressed
		if e.Time-c.clickedAt < doubleClickDuration {
			c.clicks++
		} else {
			c.clicks = 1
		}
		c.clickedAt = e.Time
		return ClickEvent{Type: TypePress, Position: e.Position, Modifiers: e.Modifiers, NumClicks: c.clicks}, true
	case pointer.Release:
		if c.state != StatePressed || e.Buttons != 0 {
			break
		}
		if !e.Position.In(area) {
			// The router ends the gesture with a Leave.
			c.state = StateNormal
			return ClickEvent{Type: TypeCancel}, true
		}
		c.state = StateFocused
		return ClickEvent{Type: TypeClick, Position: e.Position, Modifiers: e.Modifiers, NumClicks: c.clicks}, true
	}
	return ClickEvent{}, false
}

func (ct ClickType) String() string {
	switch ct {
	case TypePress:
		return "TypePress"
	case TypeClick:
		return "TypeClick"
	case TypeCancel:
		return "TypeCancel"
	default:
		panic("invalid ClickType")
	}
}

func (cs ClickState) String() string {
	switch cs {
	case StateNormal:
		return "StateNormal"
	case StateFocused:
		return "StateFocused"
	case StatePressed:
		return "StatePressed"
	default:
		panic("invalid ClickState")
	}
}
