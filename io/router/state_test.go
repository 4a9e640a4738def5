// SPDX-License-Identifier: Unlicense OR MIT

package router

import (
	"image"
	"testing"

	"github.com/cotsog/mir/f32"
	"github.com/cotsog/mir/io/pointer"
)

func TestTrackerKeys(t *testing.T) {
	var tr tracker
	if tr.keyUp(1, 30) {
		t.Error("release of unknown device accepted")
	}
	if !tr.keyDown(1, 30) {
		t.Error("first press rejected")
	}
	if tr.keyDown(1, 30) {
		t.Error("duplicate press accepted")
	}
	if !tr.keyDown(2, 30) {
		t.Error("press on another device rejected")
	}
	if !tr.keyUp(1, 30) {
		t.Error("release rejected")
	}
	if tr.keyUp(1, 30) {
		t.Error("duplicate release accepted")
	}
	tr.clearKeys()
	if tr.keyUp(2, 30) {
		t.Error("release accepted after clearKeys")
	}
}

func TestTrackerReset(t *testing.T) {
	var tr tracker
	s := surfaceRef{s: &testSurface{name: "s"}, gen: 1}
	tr.keyDown(1, 30)
	tr.bindTouch(1, 0, s)
	tr.pointer(1).hover = s
	tr.keyDown(2, 30)

	tr.reset(1)
	if _, ok := tr.lookup(1); ok {
		t.Error("device state survived reset")
	}
	if _, ok := tr.lookupTouch(1, 0); ok {
		t.Error("touch binding survived reset")
	}
	if !tr.keyUp(2, 30) {
		t.Error("reset affected another device")
	}
	tr.forget()
	if len(tr.devices) != 0 {
		t.Errorf("%d devices after forget", len(tr.devices))
	}
}

func TestTrackerGesture(t *testing.T) {
	var tr tracker
	s := surfaceRef{s: &testSurface{name: "s", area: image.Rect(0, 0, 1, 1)}, gen: 1}
	hits := 0
	hit := func() surfaceRef {
		hits++
		return s
	}

	move := pointer.Event{Kind: pointer.Move, Position: f32.Pt(1, 2)}
	if owner, began := tr.gesture(move, hit); owner.valid() || began {
		t.Error("move began a gesture")
	}
	if hits != 0 {
		t.Error("hit called for a move")
	}
	press := pointer.Event{Kind: pointer.Press, Buttons: pointer.ButtonPrimary, Position: f32.Pt(3, 4)}
	if owner, began := tr.gesture(press, hit); owner != s || !began {
		t.Errorf("press: owner %v began %v", owner, began)
	}
	press.Buttons |= pointer.ButtonSecondary
	if owner, began := tr.gesture(press, hit); owner != s || began {
		t.Errorf("second press: owner %v began %v", owner, began)
	}
	if hits != 1 {
		t.Errorf("hit called %d times, want 1", hits)
	}
	if tr.endGestureIfIdle(0) {
		t.Error("gesture ended with buttons down")
	}
	p := tr.pointer(0)
	if p.buttons != pointer.ButtonPrimary|pointer.ButtonSecondary || p.position != f32.Pt(3, 4) {
		t.Errorf("recorded buttons %v position %v", p.buttons, p.position)
	}

	release := pointer.Event{Kind: pointer.Release, Position: f32.Pt(5, 6)}
	tr.gesture(release, hit)
	if !tr.endGestureIfIdle(0) {
		t.Error("gesture not ended with all buttons up")
	}
	if tr.endGestureIfIdle(0) {
		t.Error("gesture ended twice")
	}
	if tr.endGestureIfIdle(9) {
		t.Error("gesture ended for unknown device")
	}
}

func TestTrackerPressWithoutTarget(t *testing.T) {
	var tr tracker
	press := pointer.Event{Kind: pointer.Press, Buttons: pointer.ButtonPrimary}
	owner, began := tr.gesture(press, func() surfaceRef { return surfaceRef{} })
	if owner.valid() || began {
		t.Error("gesture began without a target")
	}
	if tr.pointer(0).owner.valid() {
		t.Error("owner recorded without a target")
	}
}

func TestTrackerTouches(t *testing.T) {
	var tr tracker
	a := surfaceRef{s: &testSurface{name: "a"}, gen: 1}
	b := surfaceRef{s: &testSurface{name: "b"}, gen: 2}
	tr.bindTouch(1, 0, a)
	tr.bindTouch(1, 1, b)
	if s, ok := tr.lookupTouch(1, 1); !ok || s != b {
		t.Errorf("lookupTouch(1, 1) = %v, %v", s, ok)
	}
	tr.bindTouch(1, 1, a)
	if s, _ := tr.lookupTouch(1, 1); s != a {
		t.Errorf("rebinding kept %v", s)
	}
	tr.releaseTouch(1, 0)
	if _, ok := tr.lookupTouch(1, 0); ok {
		t.Error("released touch still bound")
	}
	if _, ok := tr.lookupTouch(2, 0); ok {
		t.Error("touch bound on unknown device")
	}
	tr.releaseTouch(2, 0)
}

func TestSurfaceRefIdentity(t *testing.T) {
	s := &testSurface{name: "s"}
	if (surfaceRef{}).valid() {
		t.Error("zero ref is valid")
	}
	if (surfaceRef{s: s, gen: 1}) == (surfaceRef{s: s, gen: 2}) {
		t.Error("refs of different generations are equal")
	}
}
