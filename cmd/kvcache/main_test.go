package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/kvcache"
)

const testConfig = `
cache:
  name: cli
  store: memory
  pool:
    min: 1
    max: 2
log:
  level: error
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kvcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", path}, args...))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestPing(t *testing.T) {
	out, err := execute(t, "ping")
	require.NoError(t, err)
	assert.Equal(t, "PONG\n", out)
}

func TestSet(t *testing.T) {
	out, err := execute(t, "set", "k", "v", "--ttl", "30")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)
}

func TestSetSkippedTTL(t *testing.T) {
	for _, ttl := range []string{"0", "-5", "soon"} {
		out, err := execute(t, "set", "k", "v", "--ttl", ttl)
		require.NoError(t, err, ttl)
		assert.Contains(t, out, "skipped", ttl)
	}
}

func TestGetMissing(t *testing.T) {
	_, err := execute(t, "get", "nope")
	require.ErrorIs(t, err, errNotFound)
}

func TestKeysEmpty(t *testing.T) {
	out, err := execute(t, "keys")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStatusWarm(t *testing.T) {
	out, err := execute(t, "status", "--warm")
	require.NoError(t, err)

	var st kvcache.Status
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, kvcache.Status{Name: "cli", Size: 1, Available: 1}, st)
}

func TestNameOverride(t *testing.T) {
	out, err := execute(t, "--name", "other", "status")
	require.NoError(t, err)
	assert.Contains(t, out, `"Name": "other"`)
}

func TestArgs(t *testing.T) {
	_, err := execute(t, "get")
	require.Error(t, err)
	_, err = execute(t, "flush", "extra")
	require.Error(t, err)
}
