// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger derives the scheduler logger from the process-wide
// zerolog logger at construction time.
func defaultLogger() zerolog.Logger {
	return log.Logger.With().Str("component", "csp").Logger()
}
