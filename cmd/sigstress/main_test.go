package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Passes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-sync", "2", "-async", "2",
		"-emitters", "3", "-emits", "60",
		"-work", "0s", "-move", "-log-level", "error",
	}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var report map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.EqualValues(t, 60, report["emits"])
	assert.EqualValues(t, 120, report["sync_calls"])
	assert.EqualValues(t, 120, report["async_calls"])
	assert.Equal(t, true, report["moved"])
}

func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stress.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[signal]
sync_handlers = 1
async_handlers = 1

[load]
emitters = 2
emits = 10
work = "0s"

[logging]
level = "disabled"
`), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-c", path, "-emits", "12"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var report map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.EqualValues(t, 12, report["emits"], "flags override the file")
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus"}},
		{"invalid config", []string{"-emitters", "0"}},
		{"missing file", []string{"-c", "/does/not/exist.toml"}},
		{"clone and move", []string{"-clone", "-move"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, exitUsage, run(tt.args, &stdout, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitOK, run([]string{"-version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "sigstress dev")
}
