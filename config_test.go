package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"), zap.NewNop())
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qrform.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed"), 0644))

	assert.Equal(t, DefaultConfig(), LoadConfig(path, zap.NewNop()))
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qrform.yaml")
	yml := "address: 10.1.2.3\nport: 8080\nlive_feed: true\ndark_color: \"#112233\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg := LoadConfig(path, zap.NewNop())
	assert.Equal(t, "10.1.2.3", cfg.Address)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.LiveFeed)
	assert.Equal(t, "#112233", cfg.DarkColor)
	assert.Equal(t, defaultLightColor, cfg.LightColor)
	assert.Equal(t, defaultStorePath, cfg.StorePath)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qrform.yaml")
	want := DefaultConfig()
	want.Port = 9000
	want.WatchTemplate = true

	require.NoError(t, SaveConfig(path, want))
	assert.Equal(t, want, LoadConfig(path, zap.NewNop()))
}

func TestConfigURLs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Address = "192.168.1.10"

	assert.Equal(t, "http://192.168.1.10:4000", cfg.BaseURL())
	assert.Equal(t, "http://192.168.1.10:4000/submit", cfg.SubmitURL())
	assert.Equal(t, ":4000", cfg.ListenAddr())
	assert.Equal(t, filepath.Join("public", "form.html"), cfg.TemplatePath())
	assert.Equal(t, filepath.Join("public", "form-qr.png"), cfg.QRPath())
}
