// SPDX-License-Identifier: Unlicense OR MIT

package router

// Reason explains why Dispatch dropped an event.
type Reason uint8

const (
	// Stopped means the router was not started.
	Stopped Reason = iota
	// NoFocus means a key event had no live focus surface.
	NoFocus
	// DuplicateKey is a press of a key already down.
	DuplicateKey
	// InconsistentKey is a release of a key not down.
	InconsistentKey
	// NoTarget means no surface contained the position, or a
	// release arrived for a press that was never delivered.
	NoTarget
	// StaleOwner means the surface owning a pointer gesture was
	// removed.
	StaleOwner
	// UnknownTouch is a touch change or up without a prior down.
	UnknownTouch
	// StaleTouch means the surface bound to a touch was removed.
	StaleTouch
	// Unsupported is an event type or action the router does not
	// route.
	Unsupported
)

func (r Reason) String() string {
	switch r {
	case Stopped:
		return "Stopped"
	case NoFocus:
		return "NoFocus"
	case DuplicateKey:
		return "DuplicateKey"
	case InconsistentKey:
		return "InconsistentKey"
	case NoTarget:
		return "NoTarget"
	case StaleOwner:
		return "StaleOwner"
	case UnknownTouch:
		return "UnknownTouch"
	case StaleTouch:
		return "StaleTouch"
	case Unsupported:
		return "Unsupported"
	default:
		panic("invalid Reason")
	}
}
