// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import "code.hybscloud.com/atomix"

// Stats is a snapshot of router counters.
type Stats struct {
	Dispatched   uint64 `json:"dispatched"`    // events passed to Dispatch
	EntryBlocked uint64 `json:"entry_blocked"` // events consumed by an entry
	Delivered    uint64 `json:"delivered"`     // events consumed by a task
	Unhandled    uint64 `json:"unhandled"`     // events neither entry nor task consumed
	Faulted      uint64 `json:"faulted"`       // events whose routing unwound by panic
	Started      uint64 `json:"started"`       // tasks registered live
	Finished     uint64 `json:"finished"`      // tasks removed after completing or stopping
	Warnings     uint64 `json:"warnings"`      // non-fatal diagnostics
}

// counters holds the live router counters. Atomic so that a monitoring
// goroutine may call Router.Stats while the router works.
type counters struct {
	dispatched atomix.Uint64
	blocked    atomix.Uint64
	delivered  atomix.Uint64
	unhandled  atomix.Uint64
	faulted    atomix.Uint64
	started    atomix.Uint64
	finished   atomix.Uint64
	warnings   atomix.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Dispatched:   c.dispatched.Load(),
		EntryBlocked: c.blocked.Load(),
		Delivered:    c.delivered.Load(),
		Unhandled:    c.unhandled.Load(),
		Faulted:      c.faulted.Load(),
		Started:      c.started.Load(),
		Finished:     c.finished.Load(),
		Warnings:     c.warnings.Load(),
	}
}
