// SPDX-License-Identifier: Unlicense OR MIT

package scene

import (
	"image"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/event"
)

type observerLog struct {
	calls []string
}

func (o *observerLog) SurfaceAdded(s Surface)   { o.record("added", s) }
func (o *observerLog) SurfaceRemoved(s Surface) { o.record("removed", s) }
func (o *observerLog) SurfaceExists(s Surface)  { o.record("exists", s) }
func (o *observerLog) EndObservation()          { o.calls = append(o.calls, "end") }

func (o *observerLog) record(what string, s Surface) {
	o.calls = append(o.calls, what+" "+s.(*Rect).Name)
}

func names(l *List) []string {
	var n []string
	l.ForEach(func(s Surface) {
		n = append(n, s.(*Rect).Name)
	})
	return n
}

func TestListObserver(t *testing.T) {
	var l List
	a := &Rect{Name: "a"}
	b := &Rect{Name: "b"}
	c := &Rect{Name: "c"}
	l.Add(a)
	l.Add(b)

	o := new(observerLog)
	l.AddObserver(o)
	l.Add(c)
	if !l.Remove(a) {
		t.Error("Remove(a) = false")
	}
	if l.Remove(a) {
		t.Error("second Remove(a) = true")
	}
	l.RemoveObserver(o)
	l.Remove(b)

	want := []string{"exists a", "exists b", "added c", "removed a", "end"}
	if !reflect.DeepEqual(o.calls, want) {
		t.Errorf("observer calls %v, want %v", o.calls, want)
	}
	if got, want := names(&l), []string{"c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("surfaces %v, want %v", got, want)
	}
}

func TestListSingleObserver(t *testing.T) {
	var l List
	l.AddObserver(new(observerLog))
	defer func() {
		if recover() == nil {
			t.Error("second AddObserver did not panic")
		}
	}()
	l.AddObserver(new(observerLog))
}

func TestListRemoveUnknownObserver(t *testing.T) {
	var l List
	l.AddObserver(new(observerLog))
	defer func() {
		if recover() == nil {
			t.Error("RemoveObserver of a stranger did not panic")
		}
	}()
	l.RemoveObserver(new(observerLog))
}

func TestListRaise(t *testing.T) {
	var l List
	a := &Rect{Name: "a"}
	b := &Rect{Name: "b"}
	c := &Rect{Name: "c"}
	l.Add(a)
	l.Add(b)
	l.Add(c)
	o := new(observerLog)
	l.AddObserver(o)
	o.calls = nil

	if !l.Raise(a) {
		t.Fatal("Raise(a) = false")
	}
	if got, want := names(&l), []string{"b", "c", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order after Raise %v, want %v", got, want)
	}
	if len(o.calls) != 0 {
		t.Errorf("Raise notified the observer: %v", o.calls)
	}
	if l.Raise(&Rect{Name: "x"}) {
		t.Error("Raise of a stranger = true")
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d", l.Len())
	}
}

func TestRect(t *testing.T) {
	var got []event.Event
	r := &Rect{Area: image.Rect(10, 10, 20, 20), OnEvent: func(e event.Event) {
		got = append(got, e)
	}}
	if !r.Contains(f32.Pt(10, 19.5)) {
		t.Error("top-left edge not contained")
	}
	if r.Contains(f32.Pt(20, 15)) {
		t.Error("right edge contained")
	}
	if s := r.String(); s != "rect(10,10)-(20,20)" {
		t.Errorf("String() = %q", s)
	}
	r.Consume(nil)
	if len(got) != 1 {
		t.Errorf("%d events consumed", len(got))
	}
}

// gatedObserver blocks in its first SurfaceExists until released.
type gatedObserver struct {
	mu      sync.Mutex
	calls   []string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (o *gatedObserver) SurfaceAdded(s Surface)   { o.record("added", s) }
func (o *gatedObserver) SurfaceRemoved(s Surface) { o.record("removed", s) }
func (o *gatedObserver) EndObservation()          {}

func (o *gatedObserver) SurfaceExists(s Surface) {
	o.once.Do(func() {
		close(o.entered)
		<-o.release
	})
	o.record("exists", s)
}

func (o *gatedObserver) record(what string, s Surface) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, what+" "+s.(*Rect).Name)
}

func TestListNotificationOrder(t *testing.T) {
	var l List
	a := &Rect{Name: "a"}
	l.Add(a)

	o := &gatedObserver{entered: make(chan struct{}), release: make(chan struct{})}
	attached := make(chan struct{})
	go func() {
		l.AddObserver(o)
		close(attached)
	}()
	<-o.entered
	removed := make(chan bool)
	go func() {
		removed <- l.Remove(a)
	}()
	select {
	case <-removed:
		t.Fatal("Remove completed during the observer replay")
	case <-time.After(20 * time.Millisecond):
	}
	close(o.release)
	<-attached
	if !<-removed {
		t.Error("Remove(a) = false")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if want := []string{"exists a", "removed a"}; !reflect.DeepEqual(o.calls, want) {
		t.Errorf("observer calls %v, want %v", o.calls, want)
	}
}
