// Package config loads the optional protocrate.yaml project file. Everything
// in it can also be set on the command line; flags win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name looked up in the working directory
// when --config is not given.
const DefaultFile = "protocrate.yaml"

// Config is the top-level structure parsed from protocrate.yaml.
type Config struct {
	// Package contains the identity written into the crate manifest.
	Package PackageConfig `yaml:"package"`
	// Manifest contains manifest emission settings.
	Manifest ManifestConfig `yaml:"manifest"`
	// Gen contains code generation settings.
	Gen GenConfig `yaml:"gen"`
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// PackageConfig is the crate identity.
type PackageConfig struct {
	// Name is the crate name.
	Name string `yaml:"name"`
	// Version is the crate version (semver).
	Version string `yaml:"version"`
	// Authors is the crate author list.
	Authors []string `yaml:"authors"`
}

// ManifestConfig controls how Cargo.toml is produced.
type ManifestConfig struct {
	// Template is a path to a manifest template with _PKG_NAME_,
	// _PKG_AUTHORS_ and _PKG_VERSION_ placeholders. When empty the
	// manifest is synthesized from the package identity and the pinned
	// runtime dependency versions.
	Template string `yaml:"template"`
}

// GenConfig controls the code generation process.
type GenConfig struct {
	// DisableRustfmt skips the formatting pass over emitted files.
	DisableRustfmt bool `yaml:"disable_rustfmt"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level"`
	// Path is the log file path. Empty logs to stdout.
	Path string `yaml:"path"`
}

// Load reads and parses the config file at path. When path is empty the
// default file is tried and its absence is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyDefaults fills in values that may be omitted.
func ApplyDefaults(cfg *Config) {
	if cfg.Package.Version == "" {
		cfg.Package.Version = "0.1.0"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

var (
	nameRe    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	versionRe = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+(?:[-+][0-9A-Za-z.-]+)?$`)
)

// Validate checks the effective configuration after flags are merged in.
func Validate(cfg *Config) error {
	if cfg.Package.Name == "" {
		return fmt.Errorf("package name is required (--pkg-name or package.name in %s)", DefaultFile)
	}
	if !nameRe.MatchString(cfg.Package.Name) {
		return fmt.Errorf("invalid package name %q (must only contain alphanumeric characters, underscores, and hyphens, and start with a letter)", cfg.Package.Name)
	}
	if !versionRe.MatchString(cfg.Package.Version) {
		return fmt.Errorf("invalid package version %q (expected semver, e.g. 0.1.0)", cfg.Package.Version)
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (allowed: debug, info, warn, error)", cfg.Logging.Level)
	}
	return nil
}
