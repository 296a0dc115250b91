// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cspctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ModeDirect, cfg.Mode)
	assert.Equal(t, DefaultOutboxCapacity, cfg.OutboxCapacity)
}

func TestLoadValues(t *testing.T) {
	cfg, err := Load(writeFile(t, `
log_level = "debug"
mode = "deferred"
outbox_capacity = 8
flow_token = "run-1"
`))
	require.NoError(t, err)
	assert.Equal(t, Config{LogLevel: "debug", Mode: ModeDeferred, OutboxCapacity: 8, FlowToken: "run-1"}, cfg)
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"mode":     `mode = "eager"`,
		"level":    `log_level = "loud"`,
		"capacity": `outbox_capacity = -1`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestOutboxCapacityBounds(t *testing.T) {
	cfg, err := Load(writeFile(t, `outbox_capacity = 0`))
	require.NoError(t, err)
	assert.Equal(t, DefaultOutboxCapacity, cfg.OutboxCapacity)

	err = Validate(Config{LogLevel: "info", Mode: ModeDirect, OutboxCapacity: -1})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config load failed")

	_, err = Load(writeFile(t, "mode = "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config parse failed")
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cspctl.toml")
	require.NoError(t, WriteTemplate(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	err = WriteTemplate(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, WriteTemplate(path, true))
}
