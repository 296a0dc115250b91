// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"maps"
)

// Session is a versioned snapshot of flat state fields.
// A Session is treated as immutable: reducers return a new pointer when
// they change anything and the same pointer otherwise, so hosts may use
// pointer equality for change detection. The maps inside Fields are not
// copied deeply.
type Session struct {
	Fields map[string]any `json:"fields"`
	Tick   uint64         `json:"tick"`
}

// Get returns the field stored under key.
func (s *Session) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.Fields[key]
	return v, ok
}

// Reducer is a pure state-update function.
type Reducer func(state *Session, ev Event) *Session

// NewSessionReducer returns a Reducer for events of type eventType.
// A nil state stands for initial with Tick 0. A matching event produces
// a new Session with the payload merged over the old fields and Tick
// incremented by one; any other event returns state unchanged.
func NewSessionReducer(eventType string, initial map[string]any) Reducer {
	init := &Session{Fields: maps.Clone(initial), Tick: 0}
	if init.Fields == nil {
		init.Fields = make(map[string]any)
	}
	return func(state *Session, ev Event) *Session {
		if state == nil {
			state = init
		}
		if ev.Type != eventType {
			return state
		}
		fields := make(map[string]any, len(state.Fields)+len(ev.Payload))
		maps.Copy(fields, state.Fields)
		maps.Copy(fields, ev.Payload)
		return &Session{Fields: fields, Tick: state.Tick + 1}
	}
}
