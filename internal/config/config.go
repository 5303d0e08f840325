// Package config loads the optional YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"

	"github.com/tordrt/exiftable/internal/collector"
	"github.com/tordrt/exiftable/internal/store"
	"github.com/tordrt/exiftable/internal/transform"
)

// StoreEnv overrides the store URL from the file
const StoreEnv = "EXIFTABLE_STORE"

// Config holds the settings shared by every command. Zero values mean "use the default".
type Config struct {
	Locale         string   `yaml:"locale" validate:"omitempty,oneof=ja en"`
	Workers        int      `yaml:"workers" validate:"min=0,max=256"`
	Extensions     []string `yaml:"extensions" validate:"dive,required"`
	SkipUnreadable bool     `yaml:"skipUnreadable"`
	Store          string   `yaml:"store"`
	Format         string   `yaml:"format" validate:"omitempty,oneof=text markdown csv"`
}

// DefaultConfig returns the settings used without a config file
func DefaultConfig() *Config {
	return &Config{
		Locale:     transform.LocaleJA,
		Extensions: append([]string(nil), collector.DefaultExtensions...),
		Format:     "text",
	}
}

// LoadConfig reads path over the defaults. An empty path only applies defaults and
// environment overrides.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	config.applyEnvOverrides()
	config.normalize()

	if err := config.Validate(); err != nil {
		if path == "" {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv(StoreEnv); url != "" {
		c.Store = url
	}
}

// normalize lower-cases extensions and adds the leading dot
func (c *Config) normalize() {
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
}

// Validate checks struct tags and the store URL scheme
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("field %s failed %q validation (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return err
	}

	if c.Store != "" {
		if _, _, err := store.ParseURL(c.Store); err != nil {
			return err
		}
	}
	return nil
}
