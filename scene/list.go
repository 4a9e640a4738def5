// SPDX-License-Identifier: Unlicense OR MIT

package scene

import (
	"sync"

	"golang.org/x/exp/slices"
)

// List is a Scene backed by a stacking-ordered slice. It is safe for
// concurrent use. Observer notifications are made without holding the
// list lock, so an observer may call ForEach from its callbacks.
// Membership changes are serialized with their notifications, so the
// observer sees them in the order they were made.
type List struct {
	// notify is held from a membership change until its notification
	// returns. It is acquired before mu.
	notify   sync.Mutex
	mu       sync.Mutex
	surfaces []Surface
	observer Observer
}

var _ Scene = (*List)(nil)

// Add places s on top of the stack.
func (l *List) Add(s Surface) {
	l.notify.Lock()
	defer l.notify.Unlock()
	l.mu.Lock()
	l.surfaces = append(l.surfaces, s)
	o := l.observer
	l.mu.Unlock()
	if o != nil {
		o.SurfaceAdded(s)
	}
}

// Remove removes s and reports whether it was a member.
func (l *List) Remove(s Surface) bool {
	l.notify.Lock()
	defer l.notify.Unlock()
	l.mu.Lock()
	idx := slices.Index(l.surfaces, s)
	if idx == -1 {
		l.mu.Unlock()
		return false
	}
	l.surfaces = slices.Delete(l.surfaces, idx, idx+1)
	o := l.observer
	l.mu.Unlock()
	if o != nil {
		o.SurfaceRemoved(s)
	}
	return true
}

// Raise moves s to the top of the stack. Stacking changes are not
// membership changes and are not reported to the observer.
func (l *List) Raise(s Surface) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := slices.Index(l.surfaces, s)
	if idx == -1 {
		return false
	}
	l.surfaces = append(slices.Delete(l.surfaces, idx, idx+1), s)
	return true
}

// Len returns the number of surfaces.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.surfaces)
}

// ForEach calls f for every surface, bottom to top. The list is locked
// for the duration; f must not modify it.
func (l *List) ForEach(f func(s Surface)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.surfaces {
		f(s)
	}
}

// AddObserver panics if an observer is already attached.
func (l *List) AddObserver(o Observer) {
	l.notify.Lock()
	defer l.notify.Unlock()
	l.mu.Lock()
	if l.observer != nil {
		l.mu.Unlock()
		panic("scene: observer already attached")
	}
	l.observer = o
	existing := slices.Clone(l.surfaces)
	l.mu.Unlock()
	for _, s := range existing {
		o.SurfaceExists(s)
	}
}

// RemoveObserver panics if o is not the attached observer.
func (l *List) RemoveObserver(o Observer) {
	l.notify.Lock()
	defer l.notify.Unlock()
	l.mu.Lock()
	if l.observer == nil || l.observer != o {
		l.mu.Unlock()
		panic("scene: observer not attached")
	}
	l.observer = nil
	l.mu.Unlock()
	o.EndObservation()
}
