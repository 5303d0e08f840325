package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/exiftable/internal/collector"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exiftable.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(StoreEnv, "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "ja", cfg.Locale)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, collector.DefaultExtensions, cfg.Extensions)
	assert.Equal(t, "text", cfg.Format)
	assert.Empty(t, cfg.Store)
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv(StoreEnv, "")

	path := writeConfig(t, `locale: en
workers: 8
extensions: [JPG, .heic]
skipUnreadable: true
store: sqlite://photos.db
format: markdown
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, []string{".jpg", ".heic"}, cfg.Extensions)
	assert.True(t, cfg.SkipUnreadable)
	assert.Equal(t, "sqlite://photos.db", cfg.Store)
	assert.Equal(t, "markdown", cfg.Format)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv(StoreEnv, "csv:///tmp/exif.csv")

	path := writeConfig(t, "store: sqlite://photos.db\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "csv:///tmp/exif.csv", cfg.Store)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv(StoreEnv, "")

	tests := []struct {
		name    string
		content string
	}{
		{"unknown locale", "locale: fr\n"},
		{"negative workers", "workers: -1\n"},
		{"unknown format", "format: json\n"},
		{"empty extension", "extensions: ['']\n"},
		{"unsupported store", "store: redis://localhost\n"},
		{"malformed yaml", "locale: [ja\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadConfig_InvalidEnvWithoutFile(t *testing.T) {
	t.Setenv(StoreEnv, "redis://localhost")

	cfg, err := LoadConfig("")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid config: "), "unexpected error: %v", err)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/path/that/does/not/exist/exiftable.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
