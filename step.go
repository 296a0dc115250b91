// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// cycle drains one resumption of the routine, starting from susp.
//
// Every Emit is forwarded to the sink and the routine is resumed with the
// cycle input, so any number of outputs may precede the next Request.
// The cycle ends when the routine suspends on a Request, completes, or
// the task is stopped from inside one of its own emissions.
func (t *Task) cycle(input Event, susp *kont.Suspension[struct{}]) {
	for susp != nil {
		t.susp = susp
		if !t.active {
			t.dropSuspension()
			return
		}
		op, ok := susp.Op().(taskDispatcher)
		if !ok {
			panic("csp: unhandled effect in task")
		}
		v, resume := op.DispatchTask(t, input)
		if !resume {
			return
		}
		if !t.active {
			// Stopped from inside its own emission.
			t.dropSuspension()
			return
		}
		t.clearPending()
		_, susp = susp.Resume(v)
	}
	t.susp = nil
	if !t.active {
		return
	}
	t.active = false
	t.waitSet = nil
	t.log.Debug().Msg("task completed")
	t.finish(Exit{})
}
