// SPDX-License-Identifier: Unlicense OR MIT

/*
Package trace records and replays input event streams.

A trace is a sequence of JSON objects, one per line. Each object names
the event type and carries the event fields:

	{"type":"key","event":{"Device":0,"Time":0,"State":0,"Code":30,"Modifiers":0}}

Positions are in global coordinates, as the events were dispatched.
*/
package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cotsog/mir/io/device"
	"github.com/cotsog/mir/io/event"
	"github.com/cotsog/mir/io/key"
	"github.com/cotsog/mir/io/pointer"
	"github.com/cotsog/mir/io/touch"
)

// ErrUnknownType is returned for events that have no trace encoding.
var ErrUnknownType = errors.New("trace: unknown event type")

const (
	typeKey     = "key"
	typePointer = "pointer"
	typeTouch   = "touch"
	typeDevice  = "device"
)

type record struct {
	Type  string          `json:"type"`
	Event json.RawMessage `json:"event"`
}

// Encoder writes events to a trace.
type Encoder struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// Decoder reads events from a trace.
type Decoder struct {
	dec  *json.Decoder
	line int
}

// NewEncoder returns an Encoder writing to w. Call Flush to write
// buffered events.
func NewEncoder(w io.Writer) *Encoder {
	bw := bufio.NewWriter(w)
	return &Encoder{w: bw, enc: json.NewEncoder(bw)}
}

// Encode appends e to the trace.
func (e *Encoder) Encode(ev event.Event) error {
	var typ string
	switch ev.(type) {
	case key.Event:
		typ = typeKey
	case pointer.Event:
		typ = typePointer
	case touch.Event:
		typ = typeTouch
	case device.Event:
		typ = typeDevice
	default:
		return fmt.Errorf("trace: encode %T: %w", ev, ErrUnknownType)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("trace: encode %s event: %w", typ, err)
	}
	return e.enc.Encode(record{Type: typ, Event: data})
}

// Flush writes buffered events to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Decode returns the next event of the trace, or io.EOF at its end.
func (d *Decoder) Decode() (event.Event, error) {
	var r record
	if err := d.dec.Decode(&r); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("trace: record %d: %w", d.line+1, err)
	}
	d.line++
	var (
		ev  event.Event
		err error
	)
	switch r.Type {
	case typeKey:
		var e key.Event
		err = json.Unmarshal(r.Event, &e)
		ev = e
	case typePointer:
		var e pointer.Event
		err = json.Unmarshal(r.Event, &e)
		ev = e
	case typeTouch:
		var e touch.Event
		err = json.Unmarshal(r.Event, &e)
		ev = e
	case typeDevice:
		var e device.Event
		err = json.Unmarshal(r.Event, &e)
		ev = e
	default:
		return nil, fmt.Errorf("trace: record %d: %q: %w", d.line, r.Type, ErrUnknownType)
	}
	if err != nil {
		return nil, fmt.Errorf("trace: record %d: %w", d.line, err)
	}
	return ev, nil
}

// ReadAll decodes the remaining events of a trace.
func (d *Decoder) ReadAll() ([]event.Event, error) {
	var events []event.Event
	for {
		e, err := d.Decode()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, e)
	}
}
