package appdirs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePortable(t *testing.T) {
	paths, err := resolve(resolveDeps{
		goos:       "linux",
		getenv:     func(key string) string { return "true" },
		executable: func() (string, error) { return filepath.Join("/opt", "vidprep", "vidprep"), nil },
	})
	require.NoError(t, err)

	assert.True(t, paths.Portable)
	assert.Equal(t, filepath.Join("/opt", "vidprep", "data", "config"), paths.ConfigDir)
	assert.Equal(t, filepath.Join("/opt", "vidprep", "data", "logs"), paths.LogDir)
}

func TestResolveWindows(t *testing.T) {
	paths, err := resolve(resolveDeps{
		goos:          "windows",
		getenv:        func(string) string { return "" },
		userConfigDir: func() (string, error) { return filepath.Join("C:", "Users", "u", "AppData", "Roaming"), nil },
		userCacheDir:  func() (string, error) { return filepath.Join("C:", "Users", "u", "AppData", "Local"), nil },
	})
	require.NoError(t, err)

	assert.False(t, paths.Portable)
	assert.Contains(t, paths.ConfigDir, appName)
	assert.Equal(t, filepath.Join(paths.ConfigDir, configFileName), paths.ConfigFile)
}

func TestResolveWindowsEmptyConfigDir(t *testing.T) {
	_, err := resolve(resolveDeps{
		goos:          "windows",
		getenv:        func(string) string { return "" },
		userConfigDir: func() (string, error) { return "  ", nil },
		userCacheDir:  func() (string, error) { return "cache", nil },
	})
	assert.Error(t, err)
}

func TestDefaultNonWindowsPaths(t *testing.T) {
	paths, err := resolve(resolveDeps{
		goos:   "linux",
		getenv: func(string) string { return "" },
	})
	require.NoError(t, err)
	assert.Equal(t, "config", paths.ConfigDir)
	assert.Equal(t, filepath.Join("cache", dbFileName), DBPathFor(paths))
}

func TestDBPathForEmptyCacheDir(t *testing.T) {
	assert.Equal(t, filepath.Join("cache", dbFileName), DBPathFor(Paths{}))
}
