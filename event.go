// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

// Event is the unit of communication on the bus.
// Type is the sole dispatch key; Payload is opaque to the scheduler.
type Event struct {
	Type    string
	Payload map[string]any
}

// NewEvent returns an Event with the given type and payload.
func NewEvent(typ string, payload map[string]any) Event {
	return Event{Type: typ, Payload: payload}
}

// Sink is the single downstream destination for emitted events.
// Dispatch reports whether the event was consumed.
type Sink interface {
	Dispatch(ev Event) bool
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ev Event) bool

// Dispatch calls f(ev).
func (f SinkFunc) Dispatch(ev Event) bool {
	return f(ev)
}
