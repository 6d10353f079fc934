package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protocrate.yaml")
	content := `
package:
  name: telemetry-protos
  version: 1.2.3
  authors:
    - Platform Team <platform@example.com>
manifest:
  template: cargo.tmpl
gen:
  disable_rustfmt: true
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "telemetry-protos", cfg.Package.Name)
	assert.Equal(t, "1.2.3", cfg.Package.Version)
	assert.Equal(t, []string{"Platform Team <platform@example.com>"}, cfg.Package.Authors)
	assert.Equal(t, "cargo.tmpl", cfg.Manifest.Template)
	assert.True(t, cfg.Gen.DisableRustfmt)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_DefaultFileMissing(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Package.Name)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, "0.1.0", cfg.Package.Version)
	assert.Equal(t, "info", cfg.Logging.Level)

	cfg = &Config{Package: PackageConfig{Version: "2.0.0"}}
	ApplyDefaults(cfg)
	assert.Equal(t, "2.0.0", cfg.Package.Version)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantError string
	}{
		{
			name: "valid",
			cfg: Config{
				Package: PackageConfig{Name: "my-protos", Version: "0.1.0"},
				Logging: LoggingConfig{Level: "info"},
			},
		},
		{
			name: "missing name",
			cfg: Config{
				Package: PackageConfig{Version: "0.1.0"},
				Logging: LoggingConfig{Level: "info"},
			},
			wantError: "package name is required",
		},
		{
			name: "name with space",
			cfg: Config{
				Package: PackageConfig{Name: "my protos", Version: "0.1.0"},
				Logging: LoggingConfig{Level: "info"},
			},
			wantError: "invalid package name",
		},
		{
			name: "name starting with digit",
			cfg: Config{
				Package: PackageConfig{Name: "1protos", Version: "0.1.0"},
				Logging: LoggingConfig{Level: "info"},
			},
			wantError: "invalid package name",
		},
		{
			name: "bad version",
			cfg: Config{
				Package: PackageConfig{Name: "p", Version: "one.two"},
				Logging: LoggingConfig{Level: "info"},
			},
			wantError: "invalid package version",
		},
		{
			name: "prerelease version",
			cfg: Config{
				Package: PackageConfig{Name: "p", Version: "0.1.0-alpha.1"},
				Logging: LoggingConfig{Level: "info"},
			},
		},
		{
			name: "bad log level",
			cfg: Config{
				Package: PackageConfig{Name: "p", Version: "0.1.0"},
				Logging: LoggingConfig{Level: "verbose"},
			},
			wantError: "invalid logging level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}
