package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w3f-grants-archive/storage-hub/internal/config/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

func TestProvider_Defaults(t *testing.T) {
	p := NewProvider(nil)

	assert.Equal(t, "info", p.GetLog().Level)
	assert.Equal(t, filemanager.BackendBadger, p.GetFileManager().Backend)
	assert.True(t, p.GetEvent().Enabled)
	assert.True(t, p.GetNodeCache().Enabled)
	assert.False(t, p.GetBadger().InMemory)
}

func TestLoadAppConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"data_dir": "/var/lib/storagehub",
		"log": {"level": "debug"},
		"storage": {"compress_values": true},
		"file_manager": {"backend": "memory"},
		"event": {"enabled": false}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	appConfig, err := LoadAppConfig(path)
	require.NoError(t, err)
	p := NewProvider(appConfig)

	assert.Equal(t, "debug", p.GetLog().Level)
	assert.Equal(t, filemanager.BackendMemory, p.GetFileManager().Backend)
	assert.False(t, p.GetEvent().Enabled)
	assert.True(t, p.GetBadger().CompressValues)
	assert.Equal(t, filepath.Join("/var/lib/storagehub", "badger"), p.GetBadger().Path, "data_dir 应作为存储根目录")
}

func TestLoadAppConfig_Errors(t *testing.T) {
	_, err := LoadAppConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0600))
	_, err = LoadAppConfig(path)
	assert.Error(t, err)

	empty, err := LoadAppConfig("")
	require.NoError(t, err)
	assert.Equal(t, &types.AppConfig{}, empty)
}
