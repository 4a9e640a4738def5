// SPDX-License-Identifier: Unlicense OR MIT

package router

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/device"
	"github.com/cotsog/mir/io/event"
	"github.com/cotsog/mir/io/key"
	"github.com/cotsog/mir/io/pointer"
	"github.com/cotsog/mir/io/touch"
	"github.com/cotsog/mir/scene"
)

func TestDispatchWhileStopped(t *testing.T) {
	f := newFixture(t)
	s := f.add("s", image.Rect(0, 0, 5, 5))
	f.router.SetFocus(s)

	var ptr fakePointer
	if f.dispatch(ptr.moveTo(1, 1)) {
		t.Error("pointer event delivered while stopped")
	}
	if f.dispatch(fakeKeyboard{}.press(7)) {
		t.Error("key event delivered while stopped")
	}
	if f.dispatch(deviceReset(0)) {
		t.Error("device event accepted while stopped")
	}
	f.assertLog()
	f.assertDrops(Stopped, Stopped, Stopped)

	f.router.Start()
	if !f.dispatch(fakeKeyboard{}.press(7)) {
		t.Error("key event dropped after Start")
	}
	f.assertLog("s:KeyPress(7)")
}

func TestStopForgetsDeviceState(t *testing.T) {
	f := newFixture(t)
	f.add("s", image.Rect(0, 0, 5, 5))
	f.add("another", image.Rect(5, 5, 10, 10))
	f.router.Start()

	var ptr fakePointer
	f.mustDispatch(ptr.press(0, 0, pointer.ButtonPrimary))
	f.assertLog("s:Enter(0,0)", "s:Press(0,0)")

	f.router.Stop()
	f.router.Start()
	// The gesture on s is gone; the pointer is routed by position.
	f.mustDispatch(ptr.moveTo(6, 6))
	f.assertLog("another:Enter(1,1)", "another:Move(1,1)")
}

func TestSurfacesExistingBeforeRouter(t *testing.T) {
	var l scene.List
	rec := new(recorder)
	s := &testSurface{name: "s", area: image.Rect(0, 0, 5, 5), rec: rec}
	l.Add(s)

	r := New(&l)
	defer r.Close()
	r.Start()
	var ptr fakePointer
	if !r.Dispatch(ptr.moveTo(2, 3)) {
		t.Fatal("event for pre-existing surface dropped")
	}
	assertLog(t, rec, "s:Enter(2,3)", "s:Move(2,3)")
}

func TestUnsupportedEvent(t *testing.T) {
	f := newFixture(t)
	f.router.Start()
	if f.dispatch(customEvent{}) {
		t.Error("unsupported event delivered")
	}
	f.assertDrops(Unsupported)
}

func TestNilEventPanics(t *testing.T) {
	f := newFixture(t)
	f.router.Start()
	defer func() {
		if recover() == nil {
			t.Error("Dispatch(nil) did not panic")
		}
	}()
	f.router.Dispatch(nil)
}

func TestDeviceConfigurationAccepted(t *testing.T) {
	f := newFixture(t)
	f.router.Start()
	for _, a := range []device.Action{device.Added, device.Configured, device.Reset, device.Removed} {
		if !f.dispatch(device.Event{Device: 3, Action: a}) {
			t.Errorf("device %v event dropped", a)
		}
	}
	f.assertLog()
}

func TestDeviceRemovedForgetsState(t *testing.T) {
	f := newFixture(t)
	f.add("s", image.Rect(0, 0, 5, 5))
	f.router.Start()

	ptr := fakePointer{id: 2}
	f.mustDispatch(ptr.press(1, 1, pointer.ButtonPrimary))
	if _, ok := f.router.Pointer(2); !ok {
		t.Fatal("no state for pointer after press")
	}
	f.mustDispatch(device.Event{Device: 2, Action: device.Removed})
	if _, ok := f.router.Pointer(2); ok {
		t.Error("pointer state survived device removal")
	}
	f.assertLog("s:Enter(1,1)", "s:Press(1,1)")
}

func TestSingleObserver(t *testing.T) {
	f := newFixture(t)
	defer func() {
		if recover() == nil {
			t.Error("second router on the same scene did not panic")
		}
	}()
	New(f.scene)
}

func TestCloseMakesSurfacesStale(t *testing.T) {
	var l scene.List
	rec := new(recorder)
	s := &testSurface{name: "s", area: image.Rect(0, 0, 5, 5), rec: rec}
	l.Add(s)
	r := New(&l)
	r.Start()
	r.SetFocus(s)
	r.Close()

	if r.Dispatch(fakeKeyboard{}.press(1)) {
		t.Error("key delivered after Close")
	}
	var ptr fakePointer
	if r.Dispatch(ptr.moveTo(1, 1)) {
		t.Error("pointer delivered after Close")
	}
	assertLog(t, rec)

	// The scene accepts a new observer.
	r2 := New(&l)
	r2.Close()
}

func TestEndObservationTwicePanics(t *testing.T) {
	var l scene.List
	r := New(&l)
	r.Close()
	defer func() {
		if recover() == nil {
			t.Error("second EndObservation did not panic")
		}
	}()
	r.EndObservation()
}

func TestReaddedSurfaceIsNewIdentity(t *testing.T) {
	f := newFixture(t)
	s := f.add("s", image.Rect(0, 0, 5, 5))
	f.router.Start()

	var ptr fakePointer
	f.mustDispatch(ptr.press(1, 1, pointer.ButtonPrimary))
	f.assertLog("s:Enter(1,1)", "s:Press(1,1)")

	f.remove(s)
	f.scene.Add(s)
	// The gesture belongs to the surface as it was before removal.
	if f.dispatch(ptr.moveTo(2, 2)) {
		t.Error("gesture continued on re-added surface")
	}
	if f.dispatch(ptr.release(2, 2, pointer.ButtonPrimary)) {
		t.Error("release delivered to re-added surface")
	}
	f.mustDispatch(ptr.moveTo(3, 3))
	f.assertLog("s:Enter(3,3)", "s:Move(3,3)")
}

func TestDevices(t *testing.T) {
	f := newFixture(t)
	f.add("s", image.Rect(0, 0, 5, 5))
	f.router.Start()
	for _, id := range []event.DeviceID{7, 2, 5} {
		p := fakePointer{id: id}
		f.dispatch(p.moveTo(1, 1))
	}
	if got, want := f.router.Devices(), []event.DeviceID{2, 5, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("Devices() = %v, want %v", got, want)
	}
	f.dispatch(deviceReset(5))
	if got, want := f.router.Devices(), []event.DeviceID{2, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("Devices() after reset = %v, want %v", got, want)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	var sc scene.List
	r := New(&sc, WithLogger(l))
	defer r.Close()
	r.Start()
	r.Dispatch(fakeKeyboard{}.press(9))
	if out := buf.String(); !strings.Contains(out, "reason=NoFocus") {
		t.Errorf("drop not logged:\n%s", out)
	}
}

func TestDefaultLoggerSilent(t *testing.T) {
	var sc scene.List
	r := New(&sc)
	defer r.Close()
	if r.debugEnabled() {
		t.Error("default logger enabled at debug level")
	}
}

type customEvent struct{}

func (customEvent) ImplementsEvent() {}

// recorder collects the events consumed by a set of surfaces, in
// delivery order.
type recorder struct {
	log []string
}

type testSurface struct {
	name   string
	area   image.Rectangle
	rec    *recorder
	events []event.Event
}

func (s *testSurface) Contains(p f32.Point) bool {
	return p.In(f32.FRect(s.area))
}

func (s *testSurface) Bounds() image.Rectangle {
	return s.area
}

func (s *testSurface) Consume(e event.Event) {
	s.events = append(s.events, e)
	s.rec.log = append(s.rec.log, s.name+":"+describe(e))
}

func (s *testSurface) String() string {
	return s.name
}

type fixture struct {
	t      *testing.T
	scene  *scene.List
	router *Router
	rec    *recorder
	drops  []Reason
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{t: t, scene: new(scene.List), rec: new(recorder)}
	f.router = New(f.scene, WithDropHook(func(e event.Event, why Reason) {
		f.drops = append(f.drops, why)
	}))
	t.Cleanup(f.router.Stop)
	return f
}

// add places a new surface on top of the scene.
func (f *fixture) add(name string, area image.Rectangle) *testSurface {
	s := &testSurface{name: name, area: area, rec: f.rec}
	f.scene.Add(s)
	return s
}

func (f *fixture) remove(s *testSurface) {
	if !f.scene.Remove(s) {
		f.t.Fatalf("surface %s not in scene", s.name)
	}
}

func (f *fixture) dispatch(e event.Event) bool {
	return f.router.Dispatch(e)
}

func (f *fixture) mustDispatch(e event.Event) {
	f.t.Helper()
	if !f.router.Dispatch(e) {
		f.t.Fatalf("%v was dropped", e)
	}
}

// assertLog checks the deliveries since the previous call.
func (f *fixture) assertLog(want ...string) {
	f.t.Helper()
	assertLog(f.t, f.rec, want...)
}

// assertDrops checks the drop reasons since the previous call.
func (f *fixture) assertDrops(want ...Reason) {
	f.t.Helper()
	got := f.drops
	f.drops = nil
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		f.t.Errorf("expected drops %v, got %v", want, got)
	}
}

func assertLog(t *testing.T, rec *recorder, want ...string) {
	t.Helper()
	got := rec.log
	rec.log = nil
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected deliveries\n\t%s\ngot\n\t%s", strings.Join(want, " "), strings.Join(got, " "))
	}
}

// describe formats e compactly, for example "Enter(1,0)" or
// "KeyPress(7)".
func describe(e event.Event) string {
	switch e := e.(type) {
	case key.Event:
		return fmt.Sprintf("Key%s(%d)", e.State, e.Code)
	case pointer.Event:
		return e.Kind.String() + e.Position.String()
	case touch.Event:
		return "Touch" + e.Action.String() + e.Position.String()
	default:
		return fmt.Sprintf("%T", e)
	}
}

type fakeKeyboard struct {
	id event.DeviceID
}

func (k fakeKeyboard) press(code key.Code) key.Event {
	return key.Event{Device: k.id, State: key.Press, Code: code, Modifiers: key.ModAlt}
}

func (k fakeKeyboard) release(code key.Code) key.Event {
	return key.Event{Device: k.id, State: key.Release, Code: code, Modifiers: key.ModAlt}
}

// fakePointer tracks its button mask like a real device.
type fakePointer struct {
	id      event.DeviceID
	buttons pointer.Buttons
}

func (p *fakePointer) moveTo(x, y float32) pointer.Event {
	return pointer.Event{Kind: pointer.Move, Device: p.id, Buttons: p.buttons, Position: f32.Pt(x, y)}
}

func (p *fakePointer) press(x, y float32, b pointer.Buttons) pointer.Event {
	p.buttons |= b
	return pointer.Event{Kind: pointer.Press, Device: p.id, Buttons: p.buttons, Position: f32.Pt(x, y)}
}

func (p *fakePointer) release(x, y float32, b pointer.Buttons) pointer.Event {
	p.buttons &^= b
	return pointer.Event{Kind: pointer.Release, Device: p.id, Buttons: p.buttons, Position: f32.Pt(x, y)}
}

type fakeToucher struct {
	id event.DeviceID
}

func (t fakeToucher) touchAt(tid touch.ID, x, y float32) touch.Event {
	return touch.Event{Device: t.id, ID: tid, Action: touch.Down, Tool: touch.ToolFinger, Position: f32.Pt(x, y), Pressure: 1, TouchMajor: 1, TouchMinor: 1, Size: 1}
}

func (t fakeToucher) moveTo(tid touch.ID, x, y float32) touch.Event {
	return touch.Event{Device: t.id, ID: tid, Action: touch.Change, Tool: touch.ToolFinger, Position: f32.Pt(x, y), Pressure: 1, TouchMajor: 1, TouchMinor: 1, Size: 1}
}

func (t fakeToucher) releaseAt(tid touch.ID, x, y float32) touch.Event {
	return touch.Event{Device: t.id, ID: tid, Action: touch.Up, Tool: touch.ToolFinger, Position: f32.Pt(x, y)}
}

func deviceReset(id event.DeviceID) device.Event {
	return device.Event{Device: id, Action: device.Reset, Time: 1}
}
