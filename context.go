// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Factory builds a Cont-world routine for a named service.
type Factory func(ctx *Context) kont.Eff[struct{}]

// ExprFactory builds an Expr-world routine for a named service.
type ExprFactory func(ctx *Context) kont.Expr[struct{}]

// Context is handed to a factory when its service starts.
// Await and Emit are the service's request and response operations;
// the remaining methods are the router bindings a service may call
// from its own code.
type Context struct {
	name   string
	router *Router
}

// Name returns the service name.
func (c *Context) Name() string { return c.name }

// Router returns the router that owns the service.
func (c *Context) Router() *Router { return c.router }

// State returns the host state, or nil when the router has none.
func (c *Context) State() any { return c.router.hostState() }

// Await declares interest in keys and suspends until one arrives.
func (c *Context) Await(keys ...string) kont.Eff[Event] {
	return Await(keys...)
}

// Emit forwards ev to the dispatch sink and resumes with the input
// of the current resumption cycle.
func (c *Context) Emit(ev Event) kont.Eff[Event] {
	return kont.Perform(Emit{Event: ev})
}

// Defer registers fn to run when the service ends.
func (c *Context) Defer(fn func(Exit)) kont.Eff[struct{}] {
	return kont.Perform(Defer{Fn: fn})
}

// SetEntry registers an entry on the owning router.
func (c *Context) SetEntry(typ string, e Entry) { c.router.SetEntry(typ, e) }

// SetService registers a factory on the owning router.
func (c *Context) SetService(name string, f Factory) { c.router.SetService(name, f) }

// Start starts another service on the owning router.
func (c *Context) Start(name string) { c.router.Start(name) }

// StartAll starts every registered service that is not live.
func (c *Context) StartAll() { c.router.StartAll() }

// Stop stops a live service on the owning router.
func (c *Context) Stop(name string, reason any) { c.router.Stop(name, reason) }
