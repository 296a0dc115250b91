// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Request is the effect operation for declaring interest.
// Perform(Request{Keys: ks}) replaces the task's wait-set with ks and
// suspends until an event whose type is in ks is delivered.
// The routine resumes with the delivered Event.
type Request struct {
	kont.Phantom[Event]
	Keys []string
}

// DispatchTask handles Request on the task.
// Never resumes inline: the task suspends with the new wait-set.
func (r Request) DispatchTask(t *Task, _ Event) (kont.Resumed, bool) {
	t.setWaitSet(r.Keys)
	return nil, false
}

// Emit is the effect operation for producing an output event.
// Perform(Emit{Event: ev}) forwards ev to the task's sink, then
// resumes the routine with the input of the current cycle.
type Emit struct {
	kont.Phantom[Event]
	Event Event
}

// DispatchTask handles Emit on the task.
// The sink may re-enter the router synchronously before this returns.
func (e Emit) DispatchTask(t *Task, input Event) (kont.Resumed, bool) {
	t.forward(e.Event)
	return input, true
}

// Exit describes how a task ended.
// Stopped is false on natural completion; Reason carries the value
// passed to Stop.
type Exit struct {
	Stopped bool
	Reason  any
}

// Defer is the effect operation for registering a finalizer.
// Finalizers run in LIFO order when the task completes or is stopped.
type Defer struct {
	kont.Phantom[struct{}]
	Fn func(Exit)
}

// DispatchTask handles Defer on the task. Never suspends.
func (d Defer) DispatchTask(t *Task, _ Event) (kont.Resumed, bool) {
	if d.Fn != nil {
		t.finalizers = append(t.finalizers, d.Fn)
	}
	return struct{}{}, true
}
