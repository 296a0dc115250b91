// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"errors"
	"fmt"
)

// ErrReentrant is matched by every [ReentrancyError].
var ErrReentrant = errors.New("csp: re-entrant delivery")

// ErrClosed is the stop reason passed to tasks when their router closes.
var ErrClosed = errors.New("csp: router closed")

// ReentrancyError reports an event delivered to a task that is already
// inside its own resumption cycle. It is raised by panic: the embedding
// logic routed a task's output back into the same task before the task
// suspended again.
type ReentrancyError struct {
	Task      string
	EventType string
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("csp: re-entrant delivery to task %q, event %q", e.Task, e.EventType)
}

// Unwrap returns ErrReentrant.
func (e *ReentrancyError) Unwrap() error {
	return ErrReentrant
}

// TryDispatch dispatches ev to s and returns a re-entrancy fault raised
// anywhere below it as an error matching ErrReentrant. Any other panic is
// propagated.
func TryDispatch(s Sink, ev Event) (consumed bool, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		re, ok := r.(*ReentrancyError)
		if !ok {
			panic(r)
		}
		consumed, err = false, re
	}()
	return s.Dispatch(ev), nil
}
