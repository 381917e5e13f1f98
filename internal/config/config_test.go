package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	svc := NewConfigService()
	cfg := &Config{
		Version:    1,
		LibraryDir: "/srv/samples",
		Extensions: []string{".wav", ".flac"},
		IgnoreDirs: []string{".git"},
		UISettings: UISettings{ShowTags: true, WatchLibrary: false},
	}

	require.NoError(t, svc.SaveToPath(cfg, path))

	loaded, err := svc.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.LibraryDir, loaded.LibraryDir)
	assert.Equal(t, cfg.Extensions, loaded.Extensions)
	assert.Equal(t, cfg.IgnoreDirs, loaded.IgnoreDirs)
	assert.True(t, loaded.UISettings.ShowTags)
	assert.False(t, loaded.UISettings.WatchLibrary)
}

func TestLoadFromPathMissingFile(t *testing.T) {
	svc := NewConfigService()
	_, err := svc.LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadFromPathFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 1\nlibrary_dir = \"/tmp/x\"\n"), 0644))

	svc := NewConfigService()
	cfg, err := svc.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", cfg.LibraryDir)
	assert.NotEmpty(t, cfg.Extensions, "extensions should fall back to defaults")
	assert.NotEmpty(t, cfg.IgnoreDirs)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1, cfg.Version)
	assert.NotEmpty(t, cfg.LibraryDir)
	assert.Contains(t, cfg.Extensions, ".wav")
	assert.True(t, cfg.UISettings.WatchLibrary)
}
