// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Exec runs routine as a standalone task named name, without a router.
// The task is started with a zero seed and then offered each event in
// order; events outside its wait-set are ignored. Exec returns the task
// for inspection.
func Exec(name string, routine kont.Eff[struct{}], sink Sink, events ...Event) *Task {
	return ExecExpr(name, Reify(routine), sink, events...)
}

// ExecExpr is the Expr-world counterpart of [Exec].
func ExecExpr(name string, routine kont.Expr[struct{}], sink Sink, events ...Event) *Task {
	t := NewTask(name, routine, sink)
	t.Start(Event{})
	for _, ev := range events {
		if !t.Active() {
			break
		}
		t.Deliver(ev)
	}
	return t
}
