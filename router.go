// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"slices"

	"code.hybscloud.com/kont"
	"github.com/rs/zerolog"
)

// Entry is a one-shot handler run before any task sees an event.
// Returning true consumes the event.
type Entry func(state any, ev Event) bool

// Router is the registry of entries and services sharing one sink.
//
// Events reach Dispatch from the host. An entry registered for the event
// type runs first and may consume it; otherwise the event goes to the
// first live task, in start order, whose wait-set holds the type. At most
// one task receives a given event.
//
// A Router is not safe for concurrent use, except for Stats.
type Router struct {
	entries   map[string]Entry
	factories map[string]ExprFactory
	names     []string // factory registration order
	live      map[string]*Task
	order     []string // live start order
	sink      Sink
	state     func() any
	log       zerolog.Logger
	stats     counters
}

// Option configures a Router.
type Option func(*Router)

// WithSink sets the dispatch sink.
func WithSink(s Sink) Option {
	return func(r *Router) { r.sink = s }
}

// WithLogger sets the logger for router and task diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Router) { r.log = l }
}

// WithState sets the function supplying host state to entries and
// services.
func WithState(f func() any) Option {
	return func(r *Router) { r.state = f }
}

// New creates a Router.
func New(opts ...Option) *Router {
	r := &Router{
		entries:   make(map[string]Entry),
		factories: make(map[string]ExprFactory),
		live:      make(map[string]*Task),
		log:       defaultLogger(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// SetSink sets the dispatch sink. Hosts that install the router as
// their own middleware configure the sink after construction.
func (r *Router) SetSink(s Sink) { r.sink = s }

// SetState sets the host state function.
func (r *Router) SetState(f func() any) { r.state = f }

// Stats returns a snapshot of the router counters.
func (r *Router) Stats() Stats { return r.stats.snapshot() }

// SetEntry registers e for events of type typ. A later registration
// replaces an earlier one with a warning.
func (r *Router) SetEntry(typ string, e Entry) {
	if _, ok := r.entries[typ]; ok {
		r.warn().Str("entry", typ).Msg("possible unexpected entry overwrite")
	}
	r.entries[typ] = e
}

// SetService registers a Cont-world factory under name.
func (r *Router) SetService(name string, f Factory) {
	r.SetServiceExpr(name, func(ctx *Context) kont.Expr[struct{}] {
		return Reify(f(ctx))
	})
}

// SetServiceExpr registers an Expr-world factory under name. A later
// registration replaces an earlier one with a warning.
func (r *Router) SetServiceExpr(name string, f ExprFactory) {
	if _, ok := r.factories[name]; ok {
		r.warn().Str("task", name).Msg("possible unexpected service overwrite")
	} else {
		r.names = append(r.names, name)
	}
	r.factories[name] = f
}

// Start starts the service registered under name.
// It refuses, with a warning, an unknown name or a name already live.
// A service whose routine ends during its first cycle is not kept.
func (r *Router) Start(name string) {
	f, ok := r.factories[name]
	if !ok {
		r.warn().Str("task", name).Msg("service not found")
		return
	}
	if _, ok := r.live[name]; ok {
		r.warn().Str("task", name).Msg("service already started")
		return
	}
	if r.sink == nil {
		r.warn().Str("task", name).Msg("service started before sink configured")
	}
	ctx := &Context{name: name, router: r}
	t := NewTask(name, f(ctx), r.sinkRef(), TaskLogger(r.log))
	t.Start(Event{})
	if !t.Active() {
		r.warn().Str("task", name).Msg("service failed to start")
		return
	}
	if _, ok := r.live[name]; ok {
		// Started again from inside its own first cycle.
		t.Stop(nil)
		r.warn().Str("task", name).Msg("service already started")
		return
	}
	r.live[name] = t
	r.order = append(r.order, name)
	r.stats.started.Add(1)
}

// StartAll starts, in registration order, every service that is not live.
func (r *Router) StartAll() {
	for _, name := range slices.Clone(r.names) {
		if _, ok := r.live[name]; !ok {
			r.Start(name)
		}
	}
}

// Stop stops the live service name, passing reason to its finalizers.
// Stop is a no-op when name is not live.
func (r *Router) Stop(name string, reason any) {
	t, ok := r.live[name]
	if !ok {
		return
	}
	r.remove(name, t)
	t.Stop(reason)
}

// Close stops every live service, most recently started first, with
// reason ErrClosed.
func (r *Router) Close() {
	names := slices.Clone(r.order)
	for i := len(names) - 1; i >= 0; i-- {
		r.Stop(names[i], ErrClosed)
	}
}

// Live returns the live task registered under name.
func (r *Router) Live(name string) (*Task, bool) {
	t, ok := r.live[name]
	return t, ok
}

// Names returns the live service names in start order.
func (r *Router) Names() []string {
	return slices.Clone(r.order)
}

// Dispatch routes ev and reports whether it was consumed.
//
// Dispatch panics with a *ReentrancyError when ev would resume a task
// that is still inside its own resumption cycle; see [Router.TryDispatch].
//
// A panic raised while routing unwinds through Dispatch after every task
// it interrupted has been aborted and removed from the live table.
func (r *Router) Dispatch(ev Event) bool {
	r.stats.dispatched.Add(1)
	done := false
	defer func() {
		if !done {
			r.stats.faulted.Add(1)
			r.sweep()
		}
	}()
	consumed := r.route(ev)
	done = true
	return consumed
}

func (r *Router) route(ev Event) bool {
	if r.sink == nil {
		r.warn().Str("event", ev.Type).Msg("caught event before sink configured")
	}

	if e, ok := r.entries[ev.Type]; ok {
		if e(r.hostState(), ev) {
			r.stats.blocked.Add(1)
			return true
		}
	}

	for _, name := range slices.Clone(r.order) {
		t, ok := r.live[name]
		if !ok || !t.Deliver(ev) {
			continue
		}
		r.stats.delivered.Add(1)
		if !t.Active() {
			r.remove(name, t)
		}
		return true
	}

	r.stats.unhandled.Add(1)
	return false
}

// TryDispatch is Dispatch with a re-entrancy fault returned as an error
// matching ErrReentrant instead of a panic.
func (r *Router) TryDispatch(ev Event) (consumed bool, err error) {
	return TryDispatch(r, ev)
}

// Middleware returns a Sink that routes events through r and passes
// those r does not consume on to next.
func (r *Router) Middleware(next Sink) Sink {
	return SinkFunc(func(ev Event) bool {
		if r.Dispatch(ev) {
			return true
		}
		if next == nil {
			return false
		}
		return next.Dispatch(ev)
	})
}

// sinkRef lets tasks see a sink configured after they start.
func (r *Router) sinkRef() Sink {
	return SinkFunc(func(ev Event) bool {
		if r.sink == nil {
			r.warn().Str("event", ev.Type).Msg("emit before sink configured, event dropped")
			return false
		}
		return r.sink.Dispatch(ev)
	})
}

// sweep removes live tasks that were aborted by an unwinding panic.
func (r *Router) sweep() {
	for _, name := range slices.Clone(r.order) {
		if t := r.live[name]; !t.Active() {
			r.remove(name, t)
		}
	}
}

func (r *Router) hostState() any {
	if r.state == nil {
		return nil
	}
	return r.state()
}

// remove drops t from the live table if it is still the task live
// under name.
func (r *Router) remove(name string, t *Task) {
	if cur, ok := r.live[name]; !ok || cur != t {
		return
	}
	delete(r.live, name)
	if i := slices.Index(r.order, name); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	r.stats.finished.Add(1)
	r.log.Debug().Str("task", name).Msg("service removed")
}

func (r *Router) warn() *zerolog.Event {
	r.stats.warnings.Add(1)
	return r.log.Warn()
}
