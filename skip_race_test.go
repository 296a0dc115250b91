// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package csp_test

import "testing"

// skipRace skips Outbox tests whose producer and consumer run on
// different goroutines. The queue publishes a slot with a release store
// on its index, which the race detector does not model.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("race detector cannot see Outbox slot publication")
}
