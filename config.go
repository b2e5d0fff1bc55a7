package main

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile   = "qrform.yaml"
	defaultPort         = 4000
	defaultStorePath    = "submissions.json"
	defaultPublicDir    = "public"
	defaultTemplateFile = "form.html"
	defaultQRFile       = "form-qr.png"
	defaultQRSize       = 512
	defaultDarkColor    = "#000000"
	defaultLightColor   = "#ffffff"
)

// Config is the resolved runtime configuration. It is built once before the
// server starts and is not modified afterwards.
type Config struct {
	Address       string `yaml:"address,omitempty"`
	Port          int    `yaml:"port"`
	StorePath     string `yaml:"store"`
	PublicDir     string `yaml:"public_dir"`
	TemplateFile  string `yaml:"template"`
	QRFile        string `yaml:"qr_file"`
	QRSize        int    `yaml:"qr_size"`
	DarkColor     string `yaml:"dark_color"`
	LightColor    string `yaml:"light_color"`
	LiveFeed      bool   `yaml:"live_feed"`
	WatchTemplate bool   `yaml:"watch_template"`
}

// DefaultConfig returns the configuration used when no file or flag says otherwise.
func DefaultConfig() Config {
	return Config{
		Port:         defaultPort,
		StorePath:    defaultStorePath,
		PublicDir:    defaultPublicDir,
		TemplateFile: defaultTemplateFile,
		QRFile:       defaultQRFile,
		QRSize:       defaultQRSize,
		DarkColor:    defaultDarkColor,
		LightColor:   defaultLightColor,
	}
}

// LoadConfig reads the YAML config at path on top of the defaults.
// A missing file is not an error; a malformed one is logged and ignored.
func LoadConfig(path string, logger *zap.Logger) Config {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("config file unreadable, using defaults", zap.String("path", path), zap.Error(err))
		}
		return cfg
	}

	var fromFile Config
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		logger.Warn("config file parse error, using defaults", zap.String("path", path), zap.Error(err))
		return cfg
	}
	cfg.merge(fromFile)
	logger.Info("loaded config", zap.String("path", path))
	return cfg
}

// merge copies the non-zero fields of other into c.
func (c *Config) merge(other Config) {
	if other.Address != "" {
		c.Address = other.Address
	}
	if other.Port != 0 {
		c.Port = other.Port
	}
	if other.StorePath != "" {
		c.StorePath = other.StorePath
	}
	if other.PublicDir != "" {
		c.PublicDir = other.PublicDir
	}
	if other.TemplateFile != "" {
		c.TemplateFile = other.TemplateFile
	}
	if other.QRFile != "" {
		c.QRFile = other.QRFile
	}
	if other.QRSize != 0 {
		c.QRSize = other.QRSize
	}
	if other.DarkColor != "" {
		c.DarkColor = other.DarkColor
	}
	if other.LightColor != "" {
		c.LightColor = other.LightColor
	}
	c.LiveFeed = c.LiveFeed || other.LiveFeed
	c.WatchTemplate = c.WatchTemplate || other.WatchTemplate
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// BaseURL is the externally reachable root of the form server.
func (c Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Address, c.Port)
}

// SubmitURL is the absolute submission target embedded in the form.
func (c Config) SubmitURL() string {
	return c.BaseURL() + submitPath
}

// ListenAddr is the address the HTTP server binds. The port is opened on all
// interfaces so that a custom address (NAT, hostname) still works.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) TemplatePath() string {
	return filepath.Join(c.PublicDir, c.TemplateFile)
}

func (c Config) QRPath() string {
	return filepath.Join(c.PublicDir, c.QRFile)
}

// Colors parses the configured dark and light QR colors.
func (c Config) Colors() (dark, light color.Color, err error) {
	dark, err = ParseHexColor(c.DarkColor)
	if err != nil {
		return nil, nil, fmt.Errorf("dark color: %w", err)
	}
	light, err = ParseHexColor(c.LightColor)
	if err != nil {
		return nil, nil, fmt.Errorf("light color: %w", err)
	}
	return dark, light, nil
}
