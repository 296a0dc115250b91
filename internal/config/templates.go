// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
)

// Template returns the annotated default configuration file.
func Template() string {
	return template
}

// WriteTemplate writes Template to path. An existing file is kept unless
// overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const template = `# cspctl configuration

# trace | debug | info | warn | error | off
log_level = "info"

# direct: task outputs are dispatched from inside the emitting cycle.
# deferred: task outputs are queued and flushed after each flow event.
mode = "direct"

# queue size for deferred mode
outbox_capacity = 64

# fixed run token for reproducible traces; empty draws a UUIDv7
flow_token = ""
`
