// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Await declares interest in keys and suspends until one arrives.
func Await(keys ...string) kont.Eff[Event] {
	return kont.Perform(Request{Keys: keys})
}

// AwaitBind waits for one of keys and passes the event to f.
// Fuses Perform(Request{Keys: keys}) + Bind.
func AwaitBind[B any](keys []string, f func(Event) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Request{Keys: keys}), f)
}

// EmitThen emits ev and then continues with next.
// Fuses Perform(Emit{Event: ev}) + Then.
func EmitThen[B any](ev Event, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Emit{Event: ev}), next)
}

// DeferThen registers fn as a finalizer and continues with next.
func DeferThen[B any](fn func(Exit), next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Defer{Fn: fn}), next)
}

// Done ends a routine.
func Done() kont.Eff[struct{}] {
	return kont.Pure(struct{}{})
}
