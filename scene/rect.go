// SPDX-License-Identifier: Unlicense OR MIT

package scene

import (
	"image"

	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/event"
)

// Rect is a rectangular Surface that hands every consumed event to a
// callback.
type Rect struct {
	Name    string
	Area    image.Rectangle
	OnEvent func(e event.Event)
}

func (r *Rect) Contains(p f32.Point) bool {
	return p.In(f32.FRect(r.Area))
}

func (r *Rect) Bounds() image.Rectangle {
	return r.Area
}

func (r *Rect) Consume(e event.Event) {
	if r.OnEvent != nil {
		r.OnEvent(e)
	}
}

func (r *Rect) String() string {
	if r.Name != "" {
		return r.Name
	}
	return "rect" + r.Area.String()
}
