// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// ExprAwait is the Expr-world counterpart of [Await].
func ExprAwait(keys ...string) kont.Expr[Event] {
	return kont.ExprPerform(Request{Keys: keys})
}

// ExprAwaitBind waits for one of keys and passes the event to f.
func ExprAwaitBind[B any](keys []string, f func(Event) kont.Expr[B]) kont.Expr[B] {
	return kont.ExprBind(kont.ExprPerform(Request{Keys: keys}), f)
}

// ExprEmitThen emits ev and then continues with next.
func ExprEmitThen[B any](ev Event, next kont.Expr[B]) kont.Expr[B] {
	return kont.ExprThen(kont.ExprPerform(Emit{Event: ev}), next)
}

// ExprDeferThen registers fn as a finalizer and continues with next.
func ExprDeferThen[B any](fn func(Exit), next kont.Expr[B]) kont.Expr[B] {
	return kont.ExprThen(kont.ExprPerform(Defer{Fn: fn}), next)
}

// ExprDone ends a routine.
func ExprDone() kont.Expr[struct{}] {
	return kont.ExprReturn(struct{}{})
}
