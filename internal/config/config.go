// Package config loads export configuration from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/matsen/jats/internal/citeproc"
	"github.com/matsen/jats/internal/jats"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "jats"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// Environment variables read by Load.
const (
	EnvConfig       = "JATS_CONFIG"
	EnvVersion      = "JATS_VERSION"
	EnvCSLStyle     = "JATS_CSL_STYLE"
	EnvCSLLocale    = "JATS_CSL_LOCALE"
	EnvLogLevel     = "JATS_LOG_LEVEL"
	EnvBibliography = "JATS_BIBLIOGRAPHY"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the export configuration stored in
// ~/.config/jats/config.yml.
type Config struct {
	Version      string        `yaml:"version,omitempty" json:"version,omitempty" validate:"omitempty,oneof=1.1 1.2"`
	CSL          CSL           `yaml:"csl,omitempty" json:"csl"`
	Journal      *jats.Journal `yaml:"journal,omitempty" json:"journal,omitempty"`
	References   string        `yaml:"references,omitempty" json:"references,omitempty" validate:"omitempty,oneof=structured formatted"`
	IDs          string        `yaml:"ids,omitempty" json:"ids,omitempty" validate:"omitempty,oneof=sequential uuid"`
	LogLevel     string        `yaml:"log_level,omitempty" json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Bibliography string        `yaml:"bibliography,omitempty" json:"bibliography,omitempty"`
}

// CSL selects the citation style and locale.
type CSL struct {
	Style  string `yaml:"style,omitempty" json:"style,omitempty"`
	Locale string `yaml:"locale,omitempty" json:"locale,omitempty"`
}

// DefaultPath returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/jats/config.yml.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Path resolves the config file location: an explicit path wins, then
// JATS_CONFIG, then DefaultPath.
func Path(explicit string) string {
	if explicit != "" {
		return ExpandTilde(explicit)
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return ExpandTilde(env)
	}
	return DefaultPath()
}

// Load reads the configuration file, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.applyEnv()
	if cfg.Bibliography != "" {
		cfg.Bibliography = ExpandTilde(cfg.Bibliography)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	for _, o := range []struct {
		env   string
		field *string
	}{
		{EnvVersion, &c.Version},
		{EnvCSLStyle, &c.CSL.Style},
		{EnvCSLLocale, &c.CSL.Locale},
		{EnvLogLevel, &c.LogLevel},
		{EnvBibliography, &c.Bibliography},
	} {
		if v := os.Getenv(o.env); v != "" {
			*o.field = v
		}
	}
}

// Validate checks enum fields, journal ISSNs, the citation style and the
// locale.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.CSL.Style != "" && !slices.Contains(citeproc.Styles(), c.CSL.Style) {
		return fmt.Errorf("%w: unknown csl style %q (available: %s)",
			ErrInvalidConfig, c.CSL.Style, strings.Join(citeproc.Styles(), ", "))
	}
	if c.CSL.Locale != "" {
		if _, err := language.Parse(c.CSL.Locale); err != nil {
			return fmt.Errorf("%w: csl locale %q: %v", ErrInvalidConfig, c.CSL.Locale, err)
		}
	}
	return nil
}

// ExportOptions converts the configuration into exporter options.
func (c *Config) ExportOptions() jats.Options {
	return jats.Options{
		Version:    c.Version,
		Journal:    c.Journal,
		CSL:        jats.CSLOptions{Style: c.CSL.Style, Locale: c.CSL.Locale},
		References: jats.ReferenceMode(c.References),
	}
}

// IDGenerator returns the configured id generator constructor.
func (c *Config) IDGenerator() func() jats.IDGenerator {
	if c.IDs == "uuid" {
		return jats.UUIDIDs
	}
	return jats.SequentialIDs
}

// ExpandTilde expands a leading ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
