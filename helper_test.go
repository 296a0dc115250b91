// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"bytes"

	"code.hybscloud.com/csp"
	"github.com/rs/zerolog"
)

// recorder is a Sink that records every event it sees and optionally
// forwards it.
type recorder struct {
	events []csp.Event
	next   csp.Sink
}

func (r *recorder) Dispatch(ev csp.Event) bool {
	r.events = append(r.events, ev)
	if r.next == nil {
		return false
	}
	return r.next.Dispatch(ev)
}

func (r *recorder) types() []string {
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

// bufLogger returns a logger writing JSON lines into buf.
func bufLogger(buf *bytes.Buffer) zerolog.Logger {
	return zerolog.New(buf).Level(zerolog.DebugLevel)
}

func keys(k ...string) []string { return k }

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
