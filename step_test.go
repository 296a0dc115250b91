// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"bytes"
	"strings"
	"testing"

	"code.hybscloud.com/csp"
	"code.hybscloud.com/kont"
)

func TestDeliverOutsideWaitSet(t *testing.T) {
	rec := &recorder{}
	task := csp.Exec("t", csp.AwaitBind(keys("A"), func(csp.Event) kont.Eff[struct{}] {
		return csp.EmitThen(csp.Event{Type: "OUT"}, csp.Done())
	}), rec)

	if !task.Active() {
		t.Fatal("task not active after start")
	}
	if task.Deliver(csp.Event{Type: "B"}) {
		t.Fatal("deliver outside wait-set accepted")
	}
	if got := task.WaitSet(); !equalStrings(got, keys("A")) {
		t.Fatalf("wait-set got %v, want [A]", got)
	}
	if len(rec.events) != 0 {
		t.Fatalf("sink got %v, want nothing", rec.types())
	}
	if !task.Active() {
		t.Fatal("rejected deliver changed activity")
	}

	if !task.Deliver(csp.Event{Type: "A"}) {
		t.Fatal("deliver inside wait-set rejected")
	}
	if task.Active() {
		t.Fatal("task active after routine completed")
	}
	if got := task.WaitSet(); len(got) != 0 {
		t.Fatalf("wait-set after completion got %v, want empty", got)
	}
	if got := rec.types(); !equalStrings(got, keys("OUT")) {
		t.Fatalf("sink got %v, want [OUT]", got)
	}
}

func TestWaitSetReplacedWholesale(t *testing.T) {
	task := csp.Exec("t", csp.AwaitBind(keys("A", "B"), func(csp.Event) kont.Eff[struct{}] {
		return csp.AwaitBind(keys("C"), func(csp.Event) kont.Eff[struct{}] {
			return csp.Done()
		})
	}), nil)

	if got := task.WaitSet(); !equalStrings(got, keys("A", "B")) {
		t.Fatalf("wait-set got %v, want [A B]", got)
	}
	task.Deliver(csp.Event{Type: "B"})
	if got := task.WaitSet(); !equalStrings(got, keys("C")) {
		t.Fatalf("wait-set got %v, want [C]", got)
	}
	if task.Deliver(csp.Event{Type: "A"}) {
		t.Fatal("old key still accepted after new request")
	}
}

func TestEmitsForwardedInOrderBeforeReturn(t *testing.T) {
	rec := &recorder{}
	routine := csp.AwaitBind(keys("GO"), func(csp.Event) kont.Eff[struct{}] {
		return csp.EmitThen(csp.Event{Type: "E1"},
			csp.EmitThen(csp.Event{Type: "E2"},
				csp.EmitThen(csp.Event{Type: "E3"},
					csp.AwaitBind(keys("NEXT"), func(csp.Event) kont.Eff[struct{}] {
						return csp.Done()
					}),
				),
			),
		)
	})
	task := csp.Exec("t", routine, rec, csp.Event{Type: "GO"})

	if got := rec.types(); !equalStrings(got, keys("E1", "E2", "E3")) {
		t.Fatalf("sink got %v, want [E1 E2 E3]", got)
	}
	if got := task.WaitSet(); !equalStrings(got, keys("NEXT")) {
		t.Fatalf("wait-set got %v, want [NEXT]", got)
	}
	if _, ok := task.Pending(); ok {
		t.Fatal("pending output left after suspension")
	}
}

func TestEmitResumesWithCycleInput(t *testing.T) {
	var seen []string
	routine := csp.AwaitBind(keys("GO"), func(csp.Event) kont.Eff[struct{}] {
		return kont.Bind(kont.Perform(csp.Emit{Event: csp.Event{Type: "OUT"}}), func(in csp.Event) kont.Eff[struct{}] {
			seen = append(seen, in.Type)
			return csp.Done()
		})
	})
	csp.Exec("t", routine, &recorder{}, csp.Event{Type: "GO", Payload: map[string]any{"n": 1}})

	if !equalStrings(seen, keys("GO")) {
		t.Fatalf("emit resumed with %v, want [GO]", seen)
	}
}

func TestStartEmitsBeforeFirstRequest(t *testing.T) {
	rec := &recorder{}
	routine := csp.EmitThen(csp.Event{Type: "READY"},
		csp.AwaitBind(keys("A"), func(csp.Event) kont.Eff[struct{}] {
			return csp.Done()
		}),
	)
	task := csp.NewTask("t", csp.Reify(routine), rec)
	task.Start(csp.Event{})
	task.Start(csp.Event{})

	if got := rec.types(); !equalStrings(got, keys("READY")) {
		t.Fatalf("sink got %v, want one READY", got)
	}
	if !task.Waits("A") {
		t.Fatal("task not waiting on A")
	}
}

func TestStopIdempotent(t *testing.T) {
	var exits []csp.Exit
	routine := csp.DeferThen(func(e csp.Exit) { exits = append(exits, e) },
		csp.AwaitBind(keys("X"), func(csp.Event) kont.Eff[struct{}] {
			return csp.Done()
		}),
	)
	task := csp.Exec("t", routine, nil)

	task.Stop("bye")
	if task.Active() {
		t.Fatal("task active after stop")
	}
	if got := task.WaitSet(); len(got) != 0 {
		t.Fatalf("wait-set after stop got %v, want empty", got)
	}
	task.Stop("again")
	if len(exits) != 1 {
		t.Fatalf("finalizer ran %d times, want 1", len(exits))
	}
	if !exits[0].Stopped || exits[0].Reason != "bye" {
		t.Fatalf("exit got %+v, want stopped with reason bye", exits[0])
	}
	if task.Deliver(csp.Event{Type: "X"}) {
		t.Fatal("stopped task accepted an event")
	}
}

func TestFinalizersOnCompletion(t *testing.T) {
	var order []string
	routine := csp.DeferThen(func(e csp.Exit) {
		if e.Stopped {
			t.Errorf("natural completion reported as stopped")
		}
		order = append(order, "outer")
	}, csp.DeferThen(func(csp.Exit) { order = append(order, "inner") },
		csp.AwaitBind(keys("END"), func(csp.Event) kont.Eff[struct{}] {
			return csp.Done()
		}),
	))
	task := csp.Exec("t", routine, nil, csp.Event{Type: "END"})

	if task.Active() {
		t.Fatal("task active after completion")
	}
	if !equalStrings(order, keys("inner", "outer")) {
		t.Fatalf("finalizer order got %v, want [inner outer]", order)
	}
}

func TestEmitWithoutSinkDropped(t *testing.T) {
	var buf bytes.Buffer
	routine := csp.AwaitBind(keys("GO"), func(csp.Event) kont.Eff[struct{}] {
		return csp.EmitThen(csp.Event{Type: "LOST"},
			csp.AwaitBind(keys("NEXT"), func(csp.Event) kont.Eff[struct{}] {
				return csp.Done()
			}),
		)
	})
	task := csp.NewTask("t", csp.Reify(routine), nil, csp.TaskLogger(bufLogger(&buf)))
	task.Start(csp.Event{})
	task.Deliver(csp.Event{Type: "GO"})

	if !task.Waits("NEXT") {
		t.Fatal("task did not reach its next request")
	}
	if !strings.Contains(buf.String(), "event dropped") {
		t.Fatalf("missing drop diagnostic in %q", buf.String())
	}
}

func TestExecStopsAtCompletion(t *testing.T) {
	n := 0
	routine := csp.AwaitBind(keys("A"), func(csp.Event) kont.Eff[struct{}] {
		n++
		return csp.Done()
	})
	task := csp.Exec("t", routine, nil, csp.Event{Type: "A"}, csp.Event{Type: "A"})

	if task.Active() {
		t.Fatal("task active after completion")
	}
	if n != 1 {
		t.Fatalf("routine resumed %d times, want 1", n)
	}
}

func TestTaskSerialMonotonic(t *testing.T) {
	a := csp.NewTask("a", csp.ExprDone(), nil)
	b := csp.NewTask("b", csp.ExprDone(), nil)
	if a.Serial() >= b.Serial() {
		t.Fatalf("serials not increasing: %d >= %d", a.Serial(), b.Serial())
	}
	if got := b.Serial().String(); !strings.HasPrefix(got, "#") || got == "#0" {
		t.Fatalf("serial string got %q", got)
	}
}

func TestUnhandledEffectPanics(t *testing.T) {
	type bogus struct{ kont.Phantom[int] }

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for unhandled effect")
		}
		msg, ok := r.(string)
		if !ok || msg != "csp: unhandled effect in task" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	csp.Exec("t", kont.Then(kont.Perform(bogus{}), csp.Done()), nil)
}

func TestPanicAbortsTask(t *testing.T) {
	var exit csp.Exit
	routine := csp.DeferThen(func(e csp.Exit) { exit = e },
		csp.AwaitBind(keys("X"), func(csp.Event) kont.Eff[struct{}] {
			panic("boom")
		}),
	)
	task := csp.NewTask("t", csp.Reify(routine), nil, csp.TaskLogger(bufLogger(&bytes.Buffer{})))
	task.Start(csp.Event{})

	func() {
		defer func() {
			if p := recover(); p != "boom" {
				t.Fatalf("recovered %v, want boom", p)
			}
		}()
		task.Deliver(csp.Event{Type: "X"})
	}()

	if task.Active() || len(task.WaitSet()) != 0 {
		t.Fatal("task still active after its routine panicked")
	}
	if !exit.Stopped || exit.Reason != "boom" {
		t.Fatalf("exit got %+v", exit)
	}
	if task.Deliver(csp.Event{Type: "X"}) {
		t.Fatal("aborted task accepted X")
	}
}
