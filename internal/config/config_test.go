package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(50*1024*1024), cfg.MaxRequestBodySize)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.False(t, cfg.IncludeClone)
	assert.False(t, cfg.AzureEnabled())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DETECTOR_PARALLELISM", "4")
	t.Setenv("ENABLE_CLONE_DETECTION", "true")
	t.Setenv("ANALYSIS_TIMEOUT", "90s")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.True(t, cfg.IncludeClone)
	assert.Equal(t, 90*time.Second, cfg.AnalysisTimeout)
}

func TestLoadFromEnvRejectsInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := LoadFromEnv()
	require.Error(t, err)
}

func TestLoadFromEnvRejectsBadParallelism(t *testing.T) {
	t.Setenv("DETECTOR_PARALLELISM", "0")
	_, err := LoadFromEnv()
	require.Error(t, err)
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " 127.0.0.1 ", Port: " 8080 "}
	assert.Equal(t, "127.0.0.1:8080", cfg.ServerAddress())
}

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
name: strict
tile_size: 32
clone_threshold: 0.95
ela_quality: 85
enable_clone: true
`)

	profile, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "strict", profile.Name)
	assert.True(t, profile.EnableClone)

	params := profile.Params()
	assert.Equal(t, 32, params.TileSize)
	assert.Equal(t, 0.95, params.CloneThreshold)
	assert.Equal(t, 85, params.ELAQuality)
	// Unset fields fall back to battery defaults.
	assert.Equal(t, 21, params.DCWindow)
	assert.Equal(t, 99.5, params.PeakPercentile)
}

func TestLoadProfileRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative tile", "tile_size: -1"},
		{"threshold above one", "clone_threshold: 1.5"},
		{"quality above hundred", "ela_quality: 150"},
		{"even dc window", "dc_window: 20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProfile(t, tt.content)
			_, err := LoadProfile(path)
			require.Error(t, err)
		})
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
