// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"slices"
	"strconv"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/kont"
	"github.com/rs/zerolog"
)

// Serial identifies one task construction. Serials grow across the
// process, so a service restarted under the same name logs a new one.
type Serial uint32

func (s Serial) String() string { return "#" + strconv.FormatUint(uint64(s), 10) }

var serials atomix.Uint32

// taskDispatcher is the structural interface for task effects.
// DispatchTask returns (resumeValue, true) to continue the resumption
// cycle, or (nil, false) to suspend the task.
type taskDispatcher interface {
	DispatchTask(t *Task, input Event) (kont.Resumed, bool)
}

// Task wraps one cooperative routine with a suspend/resume state machine.
//
// A Task is idle until Start, waiting while its routine is suspended on a
// [Request], and terminated once the routine completes or Stop is called.
// Task is not safe for concurrent use.
type Task struct {
	name    string
	serial  Serial
	routine kont.Expr[struct{}]
	susp    *kont.Suspension[struct{}]
	sink    Sink
	log     zerolog.Logger

	active  bool
	entered bool
	waitSet map[string]struct{}

	pending    Event
	hasPending bool

	finalizers []func(Exit)
}

// TaskOption configures a Task.
type TaskOption func(*Task)

// TaskLogger sets the logger used for task diagnostics.
func TaskLogger(l zerolog.Logger) TaskOption {
	return func(t *Task) { t.log = l }
}

// NewTask creates an idle task running routine and forwarding every
// emitted event to sink. A nil sink is allowed; emitted events are then
// dropped with a warning.
func NewTask(name string, routine kont.Expr[struct{}], sink Sink, opts ...TaskOption) *Task {
	t := &Task{
		name:    name,
		serial:  Serial(serials.Add(1)),
		routine: routine,
		sink:    sink,
		log:     defaultLogger(),
	}
	for _, o := range opts {
		o(t)
	}
	t.log = t.log.With().Str("task", name).Stringer("serial", t.serial).Logger()
	return t
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Serial returns the serial number assigned at construction.
func (t *Task) Serial() Serial { return t.serial }

// Active reports whether the task has started and not yet terminated.
func (t *Task) Active() bool { return t.active }

// WaitSet returns the event types the task currently accepts, sorted.
func (t *Task) WaitSet() []string {
	keys := make([]string, 0, len(t.waitSet))
	for k := range t.waitSet {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Waits reports whether typ is in the wait-set of an active task.
func (t *Task) Waits(typ string) bool {
	if !t.active {
		return false
	}
	_, ok := t.waitSet[typ]
	return ok
}

// Pending returns the output buffered by the current resumption cycle.
// The second result is false once the routine has moved past it.
func (t *Task) Pending() (Event, bool) {
	return t.pending, t.hasPending
}

// Start activates the task and runs its first resumption cycle with seed.
// Start is a no-op on an active task.
func (t *Task) Start(seed Event) {
	if t.active || t.routine.Frame == nil {
		return
	}
	t.active = true
	t.entered = true
	done := false
	defer t.release(&done)
	t.clearPending()
	_, susp := kont.StepExpr(t.routine)
	t.routine = kont.Expr[struct{}]{}
	t.cycle(seed, susp)
	done = true
}

// Deliver offers ev to the task.
// It returns false, leaving the task untouched, when the task is inactive
// or ev.Type is not in its wait-set. Otherwise the task runs one
// resumption cycle with ev and Deliver returns true; the caller observes
// termination through Active.
//
// Deliver panics with a *ReentrancyError if the task is already inside
// its own resumption cycle. The task that was inside its cycle is then
// aborted as the panic unwinds through it.
func (t *Task) Deliver(ev Event) bool {
	if !t.Waits(ev.Type) {
		return false
	}
	if t.entered {
		panic(&ReentrancyError{Task: t.name, EventType: ev.Type})
	}
	t.entered = true
	done := false
	defer t.release(&done)
	t.clearPending()
	_, next := t.susp.Resume(ev)
	t.cycle(ev, next)
	done = true
	return true
}

// Stop forces the routine to terminate. Finalizers registered with
// [Defer] observe Exit{Stopped: true, Reason: reason}.
// Stop is a no-op on an inactive task.
func (t *Task) Stop(reason any) {
	if !t.active {
		return
	}
	t.active = false
	t.waitSet = nil
	t.dropSuspension()
	t.log.Debug().Interface("reason", reason).Msg("task stopped")
	t.finish(Exit{Stopped: true, Reason: reason})
}

// dropSuspension discards the held suspension, if any.
func (t *Task) dropSuspension() {
	if t.susp != nil {
		t.susp.Discard()
		t.susp = nil
	}
}

// release closes a resumption cycle. A cycle that did not reach its end
// is unwinding a panic: the task is aborted with the panic value as the
// stop reason and the panic continues.
func (t *Task) release(done *bool) {
	t.entered = false
	if *done {
		return
	}
	p := recover()
	t.abort(p)
	if p != nil {
		panic(p)
	}
}

// abort terminates a task whose cycle was cut short. The wait-set and
// suspension belong to the interrupted cycle and must not be resumed.
func (t *Task) abort(reason any) {
	if !t.active {
		return
	}
	t.active = false
	t.waitSet = nil
	t.dropSuspension()
	t.log.Warn().Interface("reason", reason).Msg("task aborted")
	t.finish(Exit{Stopped: true, Reason: reason})
}

func (t *Task) clearPending() {
	t.pending = Event{}
	t.hasPending = false
}

// setWaitSet replaces the wait-set wholesale.
func (t *Task) setWaitSet(keys []string) {
	ws := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		ws[k] = struct{}{}
	}
	t.waitSet = ws
}

// forward buffers ev as the pending output and hands it to the sink.
func (t *Task) forward(ev Event) {
	t.pending = ev
	t.hasPending = true
	if t.sink == nil {
		t.log.Warn().Str("event", ev.Type).Msg("emit before sink configured, event dropped")
		return
	}
	t.sink.Dispatch(ev)
}

// finish runs finalizers in LIFO order.
func (t *Task) finish(exit Exit) {
	fs := t.finalizers
	t.finalizers = nil
	for i := len(fs) - 1; i >= 0; i-- {
		fs[i](exit)
	}
}
