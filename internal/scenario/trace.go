// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scenario

import (
	"fmt"
	"io"

	"code.hybscloud.com/csp"
)

// Trace entry kinds.
const (
	KindDispatch = "dispatch" // flow event sent to the host
	KindRelay    = "relay"    // queued output flushed to the host
	KindEmit     = "emit"     // output of a service or entry
	KindReduce   = "reduce"   // session slice changed
	KindExit     = "exit"     // service ended
	KindFault    = "fault"    // re-entrant delivery
)

// TraceEvent is one trace line.
type TraceEvent struct {
	Seq    int    `json:"seq"`
	Kind   string `json:"kind"`
	Event  string `json:"event,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of a run.
type Result struct {
	Scenario string                  `json:"scenario"`
	Token    string                  `json:"token"`
	Mode     string                  `json:"mode"`
	Pass     bool                    `json:"pass"`
	Trace    []TraceEvent            `json:"trace"`
	Errors   []string                `json:"errors,omitempty"`
	State    map[string]*csp.Session `json:"state,omitempty"`
	Stats    csp.Stats               `json:"stats"`
	Dropped  uint64                  `json:"dropped,omitempty"`
}

func newResult(name, token, mode string) *Result {
	return &Result{
		Scenario: name,
		Token:    token,
		Mode:     mode,
		Pass:     true,
		Trace:    []TraceEvent{},
	}
}

// AddError records a failed expectation and marks the result failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// add appends a trace line and returns its index.
func (r *Result) add(kind, event, detail string) int {
	r.Trace = append(r.Trace, TraceEvent{Seq: len(r.Trace) + 1, Kind: kind, Event: event, Detail: detail})
	return len(r.Trace) - 1
}

// Render writes the result in the line format used by cspctl and the
// golden files.
func Render(w io.Writer, r *Result) error {
	if _, err := fmt.Fprintf(w, "scenario %s\ntoken %s\nmode %s\n", r.Scenario, r.Token, r.Mode); err != nil {
		return err
	}
	for _, e := range r.Trace {
		line := fmt.Sprintf("%03d %s", e.Seq, e.Kind)
		if e.Event != "" {
			line += " " + e.Event
		}
		if e.Detail != "" {
			line += " " + e.Detail
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	s := r.Stats
	if _, err := fmt.Fprintf(w, "stats dispatched=%d blocked=%d delivered=%d unhandled=%d faulted=%d started=%d finished=%d warnings=%d\n",
		s.Dispatched, s.EntryBlocked, s.Delivered, s.Unhandled, s.Faulted, s.Started, s.Finished, s.Warnings); err != nil {
		return err
	}
	for _, msg := range r.Errors {
		if _, err := fmt.Fprintf(w, "error %s\n", msg); err != nil {
			return err
		}
	}
	status := "pass"
	if !r.Pass {
		status = "fail"
	}
	_, err := fmt.Fprintf(w, "result %s\n", status)
	return err
}

func describe(ev csp.Event) string {
	if len(ev.Payload) == 0 {
		return ""
	}
	return fmt.Sprint(ev.Payload)
}

func exitDetail(service string, e csp.Exit) string {
	if !e.Stopped {
		return service + " completed"
	}
	if e.Reason == nil {
		return service + " stopped"
	}
	return fmt.Sprintf("%s stopped: %v", service, e.Reason)
}
