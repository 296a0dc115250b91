// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package csp provides a lite communicating-sequential-processes scheduler
// on algebraic effects from [code.hybscloud.com/kont].
//
// Services are long-lived cooperative routines sharing one event bus.
// A service declares which event types it waits for, suspends, and on
// resumption may emit any number of events before it declares interest
// again. Emitted events go to a single dispatch sink, usually the host's
// own dispatch entry point, which feeds them back into the [Router].
//
// # Architecture
//
//   - Effects: [Request] (declare interest and suspend), [Emit] (respond) and [Defer] (finalizer) are kont operations dispatched by structural assertion.
//   - Task: [Task] steps its routine one effect at a time via [kont.StepExpr], draining emissions until the next request.
//   - Router: [Router] runs an [Entry] first, then offers the event to at most one live task.
//   - Re-entrancy: resuming a task from inside its own cycle panics with [*ReentrancyError]; [TryDispatch] returns it as an error. Tasks cut short by the panic are aborted and leave the live table.
//   - Deferred delivery: [Outbox] queues emitted events in a lock-free SPSC queue from [code.hybscloud.com/lfq] for iterative draining.
//
// # API Topologies
//
//   - Cont-world: [Await], [AwaitBind], [EmitThen], [DeferThen], [Done], [Loop], [Forever].
//   - Expr-world: [ExprAwait], [ExprAwaitBind], [ExprEmitThen], [ExprDeferThen], [ExprDone], [ExprLoop]. Bridge via [Reify] and [Reflect].
//   - Registration: [Router.SetEntry], [Router.SetService], [Router.SetServiceExpr].
//   - Lifecycle: [Router.Start], [Router.StartAll], [Router.Stop], [Router.Close].
//   - Routing: [Router.Dispatch], [Router.Middleware].
//   - State: [NewSessionReducer] for versioned snapshots.
//   - Standalone: [Exec], [ExecExpr] run one routine without a router. [Router.Stats] snapshots the counters.
//
// # Example
//
//	r := csp.New()
//	r.SetSink(r)
//	r.SetService("login", func(ctx *csp.Context) kont.Eff[struct{}] {
//		return csp.AwaitBind([]string{"LOGIN_REQUEST"}, func(csp.Event) kont.Eff[struct{}] {
//			return csp.EmitThen(csp.Event{Type: "LOGIN_OK"},
//				csp.AwaitBind([]string{"LOGOUT"}, func(csp.Event) kont.Eff[struct{}] {
//					return csp.Done()
//				}),
//			)
//		})
//	})
//	r.StartAll()
//	r.Dispatch(csp.Event{Type: "LOGIN_REQUEST"}) // true
package csp
