package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/party/resolver"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.InPlace())
	assert.True(t, cfg.Build.Recurse)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, resolver.Warn, cfg.Resolve.Escape)
	assert.Equal(t, []string{".es6"}, cfg.SourceExtensions(), "in-place builds never rescan their outputs")

	cfg.Build.Output = "out"
	assert.Equal(t, []string{".es6", ".js"}, cfg.SourceExtensions())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	writeFile(t, path, `
[build]
output = "dist"
source_maps = true
jobs = 3

[resolve]
escape = "reject"

[cache]
enabled = false
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "dist", cfg.Build.Output)
	assert.True(t, cfg.Build.SourceMaps)
	assert.Equal(t, 3, cfg.Build.Jobs)
	assert.Equal(t, resolver.Reject, cfg.Resolve.Escape)
	assert.False(t, cfg.Cache.Enabled)

	// Unset keys keep their defaults.
	assert.True(t, cfg.Build.Recurse)
	assert.Equal(t, []string{".es6", ".js"}, cfg.Build.Extensions)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[build\n", "failed to parse TOML"},
		{"unknown key", "[build]\noutptu = 'x'\n", "unknown key build.outptu"},
		{"bad policy", "[resolve]\nescape = 'maybe'\n", "maybe"},
		{"negative jobs", "[build]\njobs = -1\n", "build.jobs"},
		{"extension without dot", "[build]\nextensions = ['es6']\n", "must start with a dot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFile)
			writeFile(t, path, tt.content)
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFile), "[build]\noutput = 'lib'\n")
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, ok, err := FindConfig(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, ConfigFile), path)

	cfg, err := LoadProjectConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, "lib", cfg.Build.Output)
}
