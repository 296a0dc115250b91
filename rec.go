// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Loop builds a recurring routine (Cont-world).
// step returns Left(nextState) to run again or Right to finish.
// Each round must reach a Request or the task spins inside one cycle.
func Loop[S any](initial S, step func(S) kont.Eff[kont.Either[S, struct{}]]) kont.Eff[struct{}] {
	return kont.Bind(step(initial), func(e kont.Either[S, struct{}]) kont.Eff[struct{}] {
		if left, ok := e.GetLeft(); ok {
			return Loop(left, step)
		}
		return Done()
	})
}

// Forever repeats body until the task is stopped.
func Forever(body func() kont.Eff[struct{}]) kont.Eff[struct{}] {
	return kont.Bind(body(), func(struct{}) kont.Eff[struct{}] {
		return Forever(body)
	})
}

// ExprLoop builds a recurring routine (Expr-world).
// step returns Left(nextState) to run again or Right to finish.
func ExprLoop[S any](initial S, step func(S) kont.Expr[kont.Either[S, struct{}]]) kont.Expr[struct{}] {
	return kont.ExprBind(step(initial), func(e kont.Either[S, struct{}]) kont.Expr[struct{}] {
		if left, ok := e.GetLeft(); ok {
			return ExprLoop(left, step)
		}
		return ExprDone()
	})
}

// Reify lowers a Cont-world routine to the Expr form that tasks step.
// Routers reify every service on start; hosts call it to hand a routine
// to [NewTask].
func Reify[A any](m kont.Eff[A]) kont.Expr[A] { return kont.Reify(m) }

// Reflect lifts an Expr-world fragment back into Cont-world so it can be
// sequenced with [AwaitBind], [EmitThen] or [Loop].
func Reflect[A any](m kont.Expr[A]) kont.Eff[A] { return kont.Reflect(m) }
