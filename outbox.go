// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// DefaultOutboxCapacity is the queue capacity used when NewOutbox is
// given a non-positive capacity.
const DefaultOutboxCapacity = 64

// Outbox is a Sink that queues events instead of dispatching them.
//
// Routed through an Outbox, a task's outputs are not re-dispatched from
// inside its resumption cycle; the host drains them afterwards with Flush,
// turning recursive re-entry into an iterative loop.
//
// The queue is a bounded single-producer single-consumer lfq queue:
// Dispatch, Offer and Send must be called from one goroutine, and Poll
// and Flush from one goroutine, which may be the same.
type Outbox struct {
	q       lfq.SPSC[Event]
	slot    Event
	dropped atomix.Uint64
}

// NewOutbox creates an Outbox holding up to capacity events.
func NewOutbox(capacity int) *Outbox {
	if capacity <= 0 {
		capacity = DefaultOutboxCapacity
	}
	o := &Outbox{}
	o.q.Init(capacity)
	return o
}

// Dispatch queues ev and reports false: a queued event is not consumed.
// A full queue drops ev and counts it in Dropped.
func (o *Outbox) Dispatch(ev Event) bool {
	if err := o.Offer(ev); err != nil {
		o.dropped.Add(1)
	}
	return false
}

// Offer queues ev without blocking.
// Returns iox.ErrWouldBlock when the queue is full.
func (o *Outbox) Offer(ev Event) error {
	o.slot = ev
	err := o.q.Enqueue(&o.slot)
	o.slot = Event{}
	return err
}

// Send queues ev, waiting with iox.Backoff while the queue is full.
// Only useful when another goroutine drains the Outbox.
func (o *Outbox) Send(ev Event) {
	var bo iox.Backoff
	for {
		if err := o.Offer(ev); err == nil {
			return
		}
		bo.Wait()
	}
}

// Poll dequeues the oldest event without blocking.
// Returns iox.ErrWouldBlock when the queue is empty.
func (o *Outbox) Poll() (Event, error) {
	return o.q.Dequeue()
}

// Flush dispatches queued events to sink until the queue is empty,
// including events queued while flushing, and returns how many it
// dispatched.
func (o *Outbox) Flush(sink Sink) int {
	n := 0
	for {
		ev, err := o.Poll()
		if err != nil {
			return n
		}
		sink.Dispatch(ev)
		n++
	}
}

// Dropped returns how many events Dispatch discarded on a full queue.
func (o *Outbox) Dropped() uint64 {
	return o.dropped.Load()
}
