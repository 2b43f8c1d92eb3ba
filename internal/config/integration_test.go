package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalConfig(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	cfg := GetGlobalConfig()
	assert.NotNil(t, cfg)
	assert.Equal(t, DefaultKeeps, cfg.Engine.Keeps)

	// Subsequent calls return the same instance
	cfg2 := GetGlobalConfig()
	assert.Same(t, cfg, cfg2)

	ResetGlobalConfigForTest()
	cfg3 := GetGlobalConfig()
	assert.NotSame(t, cfg, cfg3)
}

func TestSetGlobalConfig(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	custom := New()
	custom.Logging.Level = "debug"
	SetGlobalConfig(custom)

	assert.Same(t, custom, GetGlobalConfig())
	assert.Equal(t, "debug", GetLoggingConfig().Level)

	// the returned section is a copy
	section := GetLoggingConfig()
	section.Level = "error"
	assert.Equal(t, "debug", GetGlobalConfig().Logging.Level)
}

func TestEnsureConfigDir(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv(EnvHome, "")
	t.Setenv("HOME", tmpHome)
	t.Setenv("USERPROFILE", tmpHome) // Windows uses USERPROFILE

	require.NoError(t, EnsureConfigDir())

	stat, err := os.Stat(filepath.Join(tmpHome, ".dakko"))
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func TestEnsureLogDir(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, EnsureLogDir(""))
	require.NoError(t, EnsureLogDir(filepath.Join(tmpDir, "logs", "subdir", "test.log")))

	stat, err := os.Stat(filepath.Join(tmpDir, "logs", "subdir"))
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func TestEnsureLogDirError(t *testing.T) {
	// A regular file cannot be used as a directory.
	tmpFile := filepath.Join(t.TempDir(), "test-file")
	require.NoError(t, os.WriteFile(tmpFile, nil, 0o600))

	err := EnsureLogDir(filepath.Join(tmpFile, "subdir", "test.log"))
	assert.Error(t, err)
}

func TestGetConfigDir(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv(EnvHome, home)

		dir, err := GetConfigDir()
		require.NoError(t, err)
		assert.Equal(t, home, dir)
	})

	t.Run("home directory", func(t *testing.T) {
		tmpHome := t.TempDir()
		t.Setenv(EnvHome, "")
		t.Setenv("HOME", tmpHome)
		t.Setenv("USERPROFILE", tmpHome)

		dir, err := GetConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tmpHome, ".dakko"), dir)
	})
}

func TestGetTraceDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)

	dir, err := GetTraceDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "traces"), dir)
}
