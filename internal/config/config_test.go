package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// No explicit path and no config file present: defaults apply.
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Ruleset)
	assert.Equal(t, DefaultExtensions, cfg.Extensions)
	assert.Equal(t, DefaultExcludeDirs, cfg.ExcludeDirs)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.False(t, cfg.FailOnUnmapped)
}

func TestLoadMissingExplicitPathErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uimorph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ruleset: ./rules/bootstrap-antd.yaml
workers: 8
extensions: [".tsx", ".jsx"]
fail_on_unmapped: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./rules/bootstrap-antd.yaml", cfg.Ruleset)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, []string{".tsx", ".jsx"}, cfg.Extensions)
	assert.True(t, cfg.FailOnUnmapped)
	assert.Equal(t, DefaultExcludeDirs, cfg.ExcludeDirs)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero workers", "workers: 0\n"},
		{"empty extensions", "extensions: []\n"},
		{"extension without dot", "extensions: [tsx]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "uimorph.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
