// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package host is a small redux-like store used to host a csp router.
//
// Events dispatched to the Store pass through its middleware chain; those
// no middleware consumes are folded into per-slice Session snapshots by
// the registered reducers and then shown to subscribers.
package host

import (
	"maps"
	"slices"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"code.hybscloud.com/csp"
)

// Middleware wraps the next sink in the chain.
type Middleware func(next csp.Sink) csp.Sink

// Listener observes an event after reduction. changed lists the state
// slices whose snapshot changed, in registration order.
type Listener func(ev csp.Event, changed []string)

// Store holds reducer state. A Store is not safe for concurrent use.
type Store struct {
	reducers  map[string]csp.Reducer
	order     []string
	state     map[string]*csp.Session
	chain     csp.Sink
	listeners []Listener
	log       zerolog.Logger
}

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	reducers    map[string]csp.Reducer
	order       []string
	middlewares []Middleware
	log         *zerolog.Logger
}

// WithReducer registers r for the state slice name.
func WithReducer(name string, r csp.Reducer) Option {
	return func(c *storeConfig) {
		if _, ok := c.reducers[name]; !ok {
			c.order = append(c.order, name)
		}
		c.reducers[name] = r
	}
}

// WithMiddleware appends m to the chain. The first middleware added sees
// events first.
func WithMiddleware(m Middleware) Option {
	return func(c *storeConfig) { c.middlewares = append(c.middlewares, m) }
}

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *storeConfig) { c.log = &l }
}

// NewStore creates a Store and runs every reducer once with a nil state
// to obtain the initial snapshots.
func NewStore(opts ...Option) *Store {
	c := &storeConfig{reducers: make(map[string]csp.Reducer)}
	for _, o := range opts {
		o(c)
	}
	s := &Store{
		reducers: c.reducers,
		order:    c.order,
		state:    make(map[string]*csp.Session, len(c.order)),
		log:      log.Logger.With().Str("component", "host").Logger(),
	}
	if c.log != nil {
		s.log = *c.log
	}
	for _, name := range s.order {
		s.state[name] = s.reducers[name](nil, csp.Event{})
	}

	var chain csp.Sink = csp.SinkFunc(s.reduce)
	for _, m := range slices.Backward(c.middlewares) {
		chain = m(chain)
	}
	s.chain = chain
	return s
}

// Dispatch sends ev through the middleware chain and reports whether a
// middleware consumed it. Unconsumed events are reduced.
func (s *Store) Dispatch(ev csp.Event) bool {
	return s.chain.Dispatch(ev)
}

// State returns a copy of the slice table. The snapshots themselves are
// shared and must not be modified.
func (s *Store) State() map[string]*csp.Session {
	return maps.Clone(s.state)
}

// Slice returns the snapshot for name.
func (s *Store) Slice(name string) *csp.Session {
	return s.state[name]
}

// Subscribe registers fn to observe every reduced event.
func (s *Store) Subscribe(fn Listener) {
	s.listeners = append(s.listeners, fn)
}

func (s *Store) reduce(ev csp.Event) bool {
	var changed []string
	for _, name := range s.order {
		prev := s.state[name]
		next := s.reducers[name](prev, ev)
		if next != prev {
			s.state[name] = next
			changed = append(changed, name)
		}
	}
	if len(changed) > 0 {
		s.log.Debug().Str("event", ev.Type).Strs("slices", changed).Msg("state reduced")
	}
	for _, fn := range s.listeners {
		fn(ev, changed)
	}
	return false
}
