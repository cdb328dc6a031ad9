package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerConfig(t *testing.T) {
	t.Run("creates folder and default files", func(t *testing.T) {
		configDir := filepath.Join(t.TempDir(), "sbox")

		serverConfig, err := NewServerConfig(configDir, false)
		require.NoError(t, err)

		assert.FileExists(t, filepath.Join(configDir, "param.yaml"))
		assert.FileExists(t, filepath.Join(configDir, "state.yaml"))
		assert.Equal(t, int64(8080), serverConfig.ApiParam.Port)
		assert.Equal(t, "sbox", serverConfig.PlaylistParam.Name)
		assert.True(t, serverConfig.QueueParam.EnforceFairness)
		assert.Equal(t, LedgerBackendYaml, serverConfig.LedgerParam.Backend)
		assert.Equal(t, filepath.Join(configDir, "users.yaml"), serverConfig.GetCompleteLedgerFilename())
		assert.Equal(t, 0, serverConfig.Cursor())
	})

	t.Run("reads existing param file and fills defaults", func(t *testing.T) {
		configDir := t.TempDir()
		param := "api:\n  port: 9000\n  admins: [bob]\nledger:\n  backend: sqlite\n"
		require.NoError(t, os.WriteFile(filepath.Join(configDir, "param.yaml"), []byte(param), 0660))

		serverConfig, err := NewServerConfig(configDir, true)
		require.NoError(t, err)

		assert.Equal(t, int64(9000), serverConfig.ApiParam.Port)
		assert.True(t, serverConfig.ApiParam.IsAdmin("bob"))
		assert.False(t, serverConfig.ApiParam.IsAdmin("alice"))
		assert.Equal(t, filepath.Join(configDir, "users.db"), serverConfig.GetCompleteLedgerFilename())
		assert.Equal(t, int64(10), serverConfig.SpotifyParam.Timeout)
		assert.Equal(t, "http", serverConfig.AnnounceParam.Proto)
	})

	t.Run("rejects unknown ledger backend", func(t *testing.T) {
		configDir := t.TempDir()
		param := "ledger:\n  backend: redis\n"
		require.NoError(t, os.WriteFile(filepath.Join(configDir, "param.yaml"), []byte(param), 0660))

		_, err := NewServerConfig(configDir, false)
		assert.ErrorContains(t, err, "unknown ledger backend")
	})

	t.Run("rejects malformed param file", func(t *testing.T) {
		configDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(configDir, "param.yaml"), []byte("api: [\n"), 0660))

		_, err := NewServerConfig(configDir, false)
		assert.Error(t, err)
	})
}

func TestServerStateWriteThrough(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "state.yaml")

	state, err := NewServerState(filename)
	require.NoError(t, err)

	require.NoError(t, state.SetPlaylistId("37i9dQZF1DXcBWIGoYBM5M"))
	require.NoError(t, state.SetBaseOffset(3))
	require.NoError(t, state.SetCursor(4))

	reloaded, err := NewServerState(filename)
	require.NoError(t, err)
	assert.Equal(t, "37i9dQZF1DXcBWIGoYBM5M", reloaded.PlaylistId())
	assert.Equal(t, 3, reloaded.BaseOffset())
	assert.Equal(t, 4, reloaded.Cursor())
}

func TestServerStateReplacesFileWithoutLeftovers(t *testing.T) {
	configDir := t.TempDir()
	filename := filepath.Join(configDir, "state.yaml")

	state, err := NewServerState(filename)
	require.NoError(t, err)
	for cursor := 1; cursor <= 3; cursor++ {
		require.NoError(t, state.SetCursor(cursor))
	}

	entries, err := os.ReadDir(configDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.yaml", entries[0].Name())

	reloaded, err := NewServerState(filename)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Cursor())
}
