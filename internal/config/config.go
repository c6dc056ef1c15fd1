// Package config provides configuration types, defaults and loading for the
// geosynth command line.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/internal/fsutil"
	"github.com/geomagical/geosynth/internal/log"
	"github.com/geomagical/geosynth/remote"
)

// EnvPrefix prefixes environment overrides, e.g. GEOSYNTH_VARIANT.
const EnvPrefix = "GEOSYNTH"

// Config holds the settings shared by the download and inspection commands.
type Config struct {
	DatasetPath       string `mapstructure:"dataset_path" yaml:"dataset_path"`
	Variant           string `mapstructure:"variant" yaml:"variant"`
	DownloadRoot      string `mapstructure:"download_root" yaml:"download_root"` // remote bucket URL
	Force             bool   `mapstructure:"force" yaml:"force"`
	Cleanup           bool   `mapstructure:"cleanup" yaml:"cleanup"`
	BundleCompression string `mapstructure:"bundle_compression" yaml:"bundle_compression"` // none, zstd, s2, lz4, deflate
	LogLevel          string `mapstructure:"log_level" yaml:"log_level"`                   // debug, info, warn, error
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DatasetPath:       fsutil.DefaultDatasetDir,
		Variant:           format.VariantDemo.String(),
		DownloadRoot:      remote.DefaultBaseURL,
		Cleanup:           true,
		BundleCompression: "deflate",
		LogLevel:          "warn",
	}
}

// Validate checks every enumerated field.
func (c Config) Validate() error {
	if _, err := format.ParseVariant(c.Variant); err != nil {
		return err
	}
	if _, err := format.ParseCompression(c.BundleCompression); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}
	if strings.TrimSpace(c.DownloadRoot) == "" {
		return fmt.Errorf("%w: download_root is empty", errs.ErrInvalidConfig)
	}

	return nil
}

// DefaultPath returns ~/.config/geosynth/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "geosynth", "config.yaml")
}

// NewViper returns a viper instance seeded with Defaults and bound to the
// GEOSYNTH_ environment.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("dataset_path", d.DatasetPath)
	v.SetDefault("variant", d.Variant)
	v.SetDefault("download_root", d.DownloadRoot)
	v.SetDefault("force", d.Force)
	v.SetDefault("cleanup", d.Cleanup)
	v.SetDefault("bundle_compression", d.BundleCompression)
	v.SetDefault("log_level", d.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	return v
}

// Load reads path, or the default config file when path is empty, into v
// and returns the validated result. A missing default file is not an
// error; a missing explicit file is.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("%w: reading config: %w", errs.ErrInvalidConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	log.Debug(log.CatConfig, "loaded config", "file", v.ConfigFileUsed(), "variant", cfg.Variant)

	return cfg, nil
}

// YAML renders the configuration as a config file.
func (c Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	_ = enc.Close()

	return buf.Bytes(), nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is left untouched.
func WriteDefault(path string) error {
	if fsutil.Exists(path) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := Defaults().YAML()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
