// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scenario

import (
	"fmt"
	"maps"

	"code.hybscloud.com/csp"
	"code.hybscloud.com/kont"
)

// ExitFunc observes a service ending.
type ExitFunc func(service string, exit csp.Exit)

// Build registers the scenario's services and entries on r. Entries emit
// into sink. onExit, when non-nil, is registered as every service's
// finalizer. Build does not start anything.
func Build(r *csp.Router, sc *Scenario, sink csp.Sink, onExit ExitFunc) {
	for _, svc := range sc.Services {
		r.SetService(svc.Name, serviceFactory(svc, onExit))
	}
	for _, e := range sc.Entries {
		r.SetEntry(e.Type, entry(r, e, sink))
	}
}

// Autostart starts the autostarting services in declaration order.
func Autostart(r *csp.Router, sc *Scenario) {
	for _, svc := range sc.Services {
		if svc.Autostarts() {
			r.Start(svc.Name)
		}
	}
}

func serviceFactory(svc ServiceSpec, onExit ExitFunc) csp.Factory {
	return func(ctx *csp.Context) kont.Eff[struct{}] {
		p := &program{ctx: ctx, steps: svc.Steps, loop: svc.Loop}
		if onExit == nil {
			return p.at(0, csp.Event{})
		}
		fin := ctx.Defer(func(e csp.Exit) { onExit(svc.Name, e) })
		return kont.Then(fin, p.at(0, csp.Event{}))
	}
}

// program compiles service steps into a routine lazily, one step at a
// time, so looping services stay finite.
type program struct {
	ctx   *csp.Context
	steps []Step
	loop  bool
}

// at returns the routine starting at step i; last is the most recently
// awaited event.
func (p *program) at(i int, last csp.Event) kont.Eff[struct{}] {
	if i == len(p.steps) {
		if p.loop {
			i = 0
		} else {
			return csp.Done()
		}
	}
	st := p.steps[i]
	switch {
	case len(st.Await) > 0:
		return kont.Bind(p.ctx.Await(st.Await...), func(ev csp.Event) kont.Eff[struct{}] {
			return p.at(i+1, ev)
		})
	case st.Emit != nil:
		return kont.Bind(p.ctx.Emit(st.Emit.event(last)), func(csp.Event) kont.Eff[struct{}] {
			return p.at(i+1, last)
		})
	case st.Start != "":
		return kont.Bind(kont.Pure(st.Start), func(name string) kont.Eff[struct{}] {
			p.ctx.Start(name)
			return p.at(i+1, last)
		})
	case st.Stop != "":
		return kont.Bind(kont.Pure(st.Stop), func(name string) kont.Eff[struct{}] {
			p.ctx.Stop(name, fmt.Sprintf("stopped by %s", p.ctx.Name()))
			return p.at(i+1, last)
		})
	default:
		return csp.Done()
	}
}

func entry(r *csp.Router, e EntrySpec, sink csp.Sink) csp.Entry {
	return func(state any, ev csp.Event) bool {
		if e.When != nil && !e.When.match(state) {
			return false
		}
		if e.Start != "" {
			r.Start(e.Start)
		}
		if e.Stop != "" {
			r.Stop(e.Stop, fmt.Sprintf("stopped by entry %s", e.Type))
		}
		if e.Emit != nil {
			sink.Dispatch(e.Emit.event(ev))
		}
		return e.Block
	}
}

// event builds the event to emit; input supplies forwarded fields.
func (s *EventSpec) event(input csp.Event) csp.Event {
	var payload map[string]any
	if s.Forward && len(input.Payload) > 0 {
		payload = maps.Clone(input.Payload)
	}
	if len(s.Payload) > 0 {
		if payload == nil {
			payload = make(map[string]any, len(s.Payload))
		}
		maps.Copy(payload, s.Payload)
	}
	return csp.NewEvent(s.Type, payload)
}

func (c *Condition) match(state any) bool {
	tables, ok := state.(map[string]*csp.Session)
	if !ok {
		return false
	}
	v, _ := tables[c.Slice].Get(c.Field)
	return fmt.Sprint(v) == fmt.Sprint(c.Equals)
}
