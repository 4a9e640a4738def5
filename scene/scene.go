// SPDX-License-Identifier: Unlicense OR MIT

/*
Package scene defines the surface registry seen by input routing.

A Scene owns its surfaces and reports membership changes to a single
Observer. Consumers such as an input router only observe the scene and
query surface geometry; they never own surfaces.

Iteration order is stacking order: ForEach visits surfaces from the
bottom to the top, so the last surface visited that contains a point is
the topmost one at that point.
*/
package scene

import (
	"image"

	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/event"
)

// Surface is an input target. Implementations must be comparable,
// typically pointers, because observers track them by identity.
type Surface interface {
	// Contains reports whether p, in global coordinates, is inside the
	// input area of the surface.
	Contains(p f32.Point) bool
	// Bounds returns the input bounds in global coordinates.
	Bounds() image.Rectangle
	// Consume delivers an event whose positions are relative to
	// Bounds().Min. It must not block.
	Consume(e event.Event)
}

// Observer receives scene membership notifications.
type Observer interface {
	SurfaceAdded(s Surface)
	SurfaceRemoved(s Surface)
	// SurfaceExists is called for every member of the scene when the
	// observer is attached.
	SurfaceExists(s Surface)
	// EndObservation is the last call an observer receives.
	EndObservation()
}

// Scene is an observable, ordered collection of surfaces.
type Scene interface {
	// ForEach calls f for every surface, bottom to top.
	ForEach(f func(s Surface))
	// AddObserver attaches o and replays the current membership as
	// SurfaceExists calls. At most one observer may be attached.
	AddObserver(o Observer)
	// RemoveObserver detaches o after calling its EndObservation.
	RemoveObserver(o Observer)
}
