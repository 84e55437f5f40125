package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefault()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1024, cfg.BlockSize)
	assert.Equal(t, "nop", cfg.Strategy)
	assert.Equal(t, "Copy of ", cfg.CopyPrefix)
	assert.True(t, cfg.DryRun, "defaults must never delete")
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, GetDefault(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("block_size: 4096\nstrategy: keep-first\nmin_file_size: 1KB\nworkers: 8\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.BlockSize)
	assert.Equal(t, "keep-first", cfg.Strategy)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, int64(1024), cfg.MinFileSizeBytes())
	// Untouched fields keep their defaults
	assert.Equal(t, "Copy of ", cfg.CopyPrefix)
	assert.True(t, cfg.DryRun)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("block_size: [not a number"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero block size", func(c *Config) { c.BlockSize = 0 }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"negative root depth", func(c *Config) { c.MinRootDepth = -1 }, true},
		{"empty copy prefix", func(c *Config) { c.CopyPrefix = "" }, true},
		{"bad min size", func(c *Config) { c.MinFileSize = "a lot" }, true},
		{"negative min size", func(c *Config) { c.MinFileSize = "-1KB" }, true},
		{"good min size", func(c *Config) { c.MinFileSize = "10MB" }, false},
		{"bad exclude pattern", func(c *Config) { c.ExcludePatterns = []string{"[unclosed"} }, true},
		{"good exclude pattern", func(c *Config) { c.ExcludePatterns = []string{"*.tmp"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefault()
	cfg.Strategy = "keep-first"
	cfg.Workers = 2
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestMinFileSizeBytesUnset(t *testing.T) {
	cfg := GetDefault()
	cfg.MinFileSize = ""
	assert.Equal(t, int64(0), cfg.MinFileSizeBytes())
}
