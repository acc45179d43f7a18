package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(filepath.Join(root, "missing.json"), root)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Project.Root)
	assert.Equal(t, "Assets", cfg.Project.AssetsDir)
	assert.Equal(t, filepath.Join(root, StateDir, "db"), cfg.Database.Path)
	assert.Equal(t, 500*time.Millisecond, time.Duration(cfg.Watch.Debounce))
}

func TestLoad_File(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "assetgraph.json")
	data := `{
		"server": {"host": "0.0.0.0", "port": 9000},
		"project": {"assets_dir": "Content", "system_suffixes": [".cfg"]},
		"watch": {"debounce": "2s"},
		"log_level": "debug"
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path, root)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "Content", cfg.Project.AssetsDir)
	assert.Equal(t, []string{".cfg"}, cfg.Project.SystemSuffixes)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.Watch.Debounce))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, root, cfg.Project.Root)
}

func TestLoad_EnvOverrides(t *testing.T) {
	root := t.TempDir()
	t.Setenv("ASSETGRAPH_PORT", ":7001")
	t.Setenv("ASSETGRAPH_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(root, "none.json"), root)
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_BadPort(t *testing.T) {
	root := t.TempDir()
	t.Setenv("ASSETGRAPH_PORT", "not-a-port")

	_, err := Load(filepath.Join(root, "none.json"), root)
	assert.Error(t, err)
}

func TestProjectConfig_Rules(t *testing.T) {
	cfg := Default(t.TempDir())
	rules := cfg.Project.Rules()

	assert.True(t, rules.HiddenIsSystem)
	assert.True(t, rules.IsSystemAsset("Assets/graph.config"))

	off := false
	cfg.Project.HiddenIsSystem = &off
	assert.False(t, cfg.Project.Rules().IsSystemAsset("Assets/.hidden"))
}
