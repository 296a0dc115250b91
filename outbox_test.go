// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"testing"

	"code.hybscloud.com/csp"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

func TestOutboxPollEmpty(t *testing.T) {
	o := csp.NewOutbox(4)
	if _, err := o.Poll(); !iox.IsWouldBlock(err) {
		t.Fatalf("Poll on empty got %v, want ErrWouldBlock", err)
	}
}

func TestOutboxFIFO(t *testing.T) {
	o := csp.NewOutbox(4)
	for _, typ := range []string{"A", "B", "C"} {
		if o.Dispatch(csp.Event{Type: typ}) {
			t.Fatal("queued event reported consumed")
		}
	}
	rec := &recorder{}
	if n := o.Flush(rec); n != 3 {
		t.Fatalf("flushed %d, want 3", n)
	}
	if got := rec.types(); !equalStrings(got, keys("A", "B", "C")) {
		t.Fatalf("flush order got %v", got)
	}
}

func TestOutboxFullDrops(t *testing.T) {
	o := csp.NewOutbox(4)
	accepted := 0
	for i := 0; i < 16; i++ {
		if err := o.Offer(csp.Event{Type: "X"}); err == nil {
			accepted++
		} else if !iox.IsWouldBlock(err) {
			t.Fatalf("Offer got %v, want ErrWouldBlock", err)
		}
	}
	if accepted == 0 || accepted == 16 {
		t.Fatalf("accepted %d of 16 with capacity 4", accepted)
	}
	o.Dispatch(csp.Event{Type: "X"})
	if o.Dropped() != 1 {
		t.Fatalf("dropped got %d, want 1", o.Dropped())
	}
}

// TestOutboxDeferredRelay relays between two services through an Outbox.
// With a direct sink, B_DONE would arrive while A is still inside the
// cycle that emitted B_REQ, before A requests it.
func TestOutboxDeferredRelay(t *testing.T) {
	o := csp.NewOutbox(8)
	r := csp.New(csp.WithSink(o), quiet())
	var doneA bool
	r.SetService("a", func(*csp.Context) kont.Eff[struct{}] {
		return csp.AwaitBind(keys("START"), func(csp.Event) kont.Eff[struct{}] {
			return csp.EmitThen(csp.Event{Type: "B_REQ"},
				csp.AwaitBind(keys("B_DONE"), func(csp.Event) kont.Eff[struct{}] {
					doneA = true
					return csp.Done()
				}),
			)
		})
	})
	r.SetService("b", func(*csp.Context) kont.Eff[struct{}] {
		return csp.AwaitBind(keys("B_REQ"), func(csp.Event) kont.Eff[struct{}] {
			return csp.EmitThen(csp.Event{Type: "B_DONE"}, csp.Done())
		})
	})
	r.StartAll()

	r.Dispatch(csp.Event{Type: "START"})
	if n := o.Flush(r); n != 2 {
		t.Fatalf("flushed %d, want 2", n)
	}
	if !doneA {
		t.Fatal("a never received B_DONE")
	}
	if len(r.Names()) != 0 {
		t.Fatalf("live after relay: %v", r.Names())
	}
}

func TestOutboxSendAcrossGoroutines(t *testing.T) {
	skipRace(t)
	o := csp.NewOutbox(4)
	const n = 64
	go func() {
		for i := 0; i < n; i++ {
			o.Send(csp.Event{Type: "X", Payload: map[string]any{"i": i}})
		}
	}()

	var bo iox.Backoff
	for i := 0; i < n; {
		ev, err := o.Poll()
		if err != nil {
			bo.Wait()
			continue
		}
		bo.Reset()
		if ev.Payload["i"] != i {
			t.Fatalf("event %d got %v", i, ev.Payload["i"])
		}
		i++
	}
}
