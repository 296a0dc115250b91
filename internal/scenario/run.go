// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scenario

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"code.hybscloud.com/csp"
	"code.hybscloud.com/csp/internal/host"
)

// Delivery modes.
const (
	// ModeDirect dispatches outputs from inside the emitting cycle.
	ModeDirect = "direct"
	// ModeDeferred queues outputs in a csp.Outbox and flushes them after
	// each flow step.
	ModeDeferred = "deferred"
)

// Options tunes a run. The zero value runs in direct mode with a UUIDv7
// token and the global logger.
type Options struct {
	Mode           string
	OutboxCapacity int
	// FlowToken is used when the scenario has none.
	FlowToken string
	Tokens    TokenGenerator
	Logger    *zerolog.Logger
}

func (o Options) token(sc *Scenario) string {
	switch {
	case sc.FlowToken != "":
		return sc.FlowToken
	case o.FlowToken != "":
		return o.FlowToken
	case o.Tokens != nil:
		return o.Tokens.Generate()
	default:
		return UUIDv7Generator{}.Generate()
	}
}

type runner struct {
	res    *Result
	store  *host.Store
	router *csp.Router
	outbox *csp.Outbox
}

// Run executes sc against a fresh router and store.
// Failed expectations and re-entrancy faults are reported in the Result;
// the error return is reserved for an unknown mode or a cancelled ctx.
func Run(ctx context.Context, sc *Scenario, opts Options) (*Result, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeDirect
	}
	if mode != ModeDirect && mode != ModeDeferred {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	logger := log.Logger.With().Str("component", "scenario").Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	token := opts.token(sc)
	logger = logger.With().Str("scenario", sc.Name).Str("token", token).Logger()
	h := &runner{res: newResult(sc.Name, token, mode)}

	h.router = csp.New(csp.WithLogger(logger))
	storeOpts := []host.Option{host.WithMiddleware(h.router.Middleware), host.WithLogger(logger)}
	for _, s := range sc.Sessions {
		storeOpts = append(storeOpts, host.WithReducer(s.Name, csp.NewSessionReducer(s.Event, s.Initial)))
	}
	h.store = host.NewStore(storeOpts...)
	h.store.Subscribe(h.reduced)

	var out csp.Sink = h.store
	if mode == ModeDeferred {
		h.outbox = csp.NewOutbox(opts.OutboxCapacity)
		out = h.outbox
	}
	emit := csp.SinkFunc(func(ev csp.Event) bool {
		h.res.add(KindEmit, ev.Type, describe(ev))
		return out.Dispatch(ev)
	})
	h.router.SetSink(emit)
	h.router.SetState(func() any { return h.store.State() })

	Build(h.router, sc, emit, func(name string, e csp.Exit) {
		h.res.add(KindExit, "", exitDetail(name, e))
	})
	Autostart(h.router, sc)
	logger.Info().Int("steps", len(sc.Flow)).Msg("scenario started")

	for i, step := range sc.Flow {
		if err := ctx.Err(); err != nil {
			h.router.Close()
			return nil, fmt.Errorf("scenario interrupted at flow[%d]: %w", i, err)
		}
		ev := step.Event.event(csp.Event{})
		consumed := h.dispatch(KindDispatch, ev)
		h.flush()
		h.check(i, ev, consumed, step.Expect)
	}

	h.router.Close()
	h.res.Stats = h.router.Stats()
	h.res.State = h.store.State()
	if h.outbox != nil {
		h.res.Dropped = h.outbox.Dropped()
	}
	logger.Info().Bool("pass", h.res.Pass).Int("errors", len(h.res.Errors)).Msg("scenario finished")
	return h.res, nil
}

// dispatch sends ev to the store and records the outcome on a trace
// line of the given kind.
func (h *runner) dispatch(kind string, ev csp.Event) bool {
	idx := h.res.add(kind, ev.Type, "")
	consumed, err := csp.TryDispatch(h.store, ev)
	if err != nil {
		h.res.Trace[idx].Detail = "faulted"
		h.res.add(KindFault, ev.Type, err.Error())
		h.res.AddError("%s %s: %v", kind, ev.Type, err)
		return false
	}
	h.res.Trace[idx].Detail = "passed"
	if consumed {
		h.res.Trace[idx].Detail = "consumed"
	}
	return consumed
}

// flush relays queued outputs until the outbox is empty.
func (h *runner) flush() {
	if h.outbox == nil {
		return
	}
	h.outbox.Flush(csp.SinkFunc(func(ev csp.Event) bool {
		return h.dispatch(KindRelay, ev)
	}))
}

func (h *runner) reduced(ev csp.Event, changed []string) {
	for _, name := range changed {
		h.res.add(KindReduce, ev.Type, fmt.Sprintf("%s tick=%d", name, h.store.Slice(name).Tick))
	}
}

func (h *runner) check(i int, ev csp.Event, consumed bool, want *Expect) {
	if want == nil {
		return
	}
	if want.Consumed != nil && *want.Consumed != consumed {
		h.res.AddError("flow[%d] %s: consumed %v, want %v", i, ev.Type, consumed, *want.Consumed)
	}
	if want.Live != nil {
		if live := h.router.Names(); !slices.Equal(live, want.Live) {
			h.res.AddError("flow[%d] %s: live %v, want %v", i, ev.Type, live, want.Live)
		}
	}
}
