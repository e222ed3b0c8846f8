package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "surf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, EngineChromium, cfg.Browser.Engine)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
	assert.Equal(t, 720, cfg.Browser.ViewportHeight)
	assert.Equal(t, 30000.0, cfg.Browser.TimeoutMS)
	assert.Equal(t, ModeDirect, cfg.Bridge.Mode)
	assert.Equal(t, 120, cfg.Bridge.CLITimeoutSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
browser:
  engine: firefox
  headless: false
  timeout_ms: 15000
bridge:
  mode: cli
  cli_path: /usr/local/bin/playwright-cli
  cli_timeout_seconds: 60
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EngineFirefox, cfg.Browser.Engine)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 15000.0, cfg.Browser.TimeoutMS)
	assert.Equal(t, ModeCLI, cfg.Bridge.Mode)
	assert.Equal(t, "/usr/local/bin/playwright-cli", cfg.Bridge.CLIPath)
	assert.Equal(t, 60, cfg.Bridge.CLITimeoutSeconds)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset fields keep their defaults.
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
}

func TestLoadExpandsEnvReferences(t *testing.T) {
	t.Setenv("SURF_TEST_ENGINE", "webkit")
	path := writeConfig(t, `
browser:
  engine: ${SURF_TEST_ENGINE}
bridge:
  cli_path: ${SURF_TEST_UNSET_VAR:-/opt/driver}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EngineWebKit, cfg.Browser.Engine)
	assert.Equal(t, "/opt/driver", cfg.Bridge.CLIPath)
}

func TestEnvOverridesBeatFile(t *testing.T) {
	t.Setenv("PLAYWRIGHT_BROWSER", "firefox")
	t.Setenv("PLAYWRIGHT_HEADLESS", "false")
	t.Setenv("PLAYWRIGHT_CLI_PATH", "/env/driver")

	path := writeConfig(t, `
browser:
  engine: chromium
  headless: true
bridge:
  cli_path: /file/driver
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EngineFirefox, cfg.Browser.Engine)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "/env/driver", cfg.Bridge.CLIPath)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown engine",
			mutate:  func(c *Config) { c.Browser.Engine = "netscape" },
			wantErr: "browser.engine",
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Bridge.Mode = "hybrid" },
			wantErr: "bridge.mode",
		},
		{
			name:    "cli mode without driver path",
			mutate:  func(c *Config) { c.Bridge.Mode = ModeCLI },
			wantErr: "cli_path",
		},
		{
			name:    "zero cli timeout",
			mutate:  func(c *Config) { c.Bridge.CLITimeoutSeconds = 0 },
			wantErr: "cli_timeout_seconds",
		},
		{
			name:    "zero viewport",
			mutate:  func(c *Config) { c.Browser.ViewportWidth = 0 },
			wantErr: "viewport",
		},
		{
			name:    "zero page timeout",
			mutate:  func(c *Config) { c.Browser.TimeoutMS = 0 },
			wantErr: "timeout_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "browser: [not: a: mapping")
	_, err := Load(path)
	assert.Error(t, err)
}
