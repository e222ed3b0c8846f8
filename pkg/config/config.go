// Package config loads and validates the surf server configuration.
//
// Configuration is a single YAML document. Values may reference environment
// variables with ${VAR} or ${VAR:-default} syntax; references are expanded
// before the document is unmarshaled. A handful of environment variables
// override the file for compatibility with existing deployments:
// PLAYWRIGHT_BROWSER, PLAYWRIGHT_HEADLESS, and PLAYWRIGHT_CLI_PATH.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported browser engine families.
const (
	EngineChromium = "chromium"
	EngineFirefox  = "firefox"
	EngineWebKit   = "webkit"
)

// Execution modes for the bridge.
const (
	ModeDirect = "direct"
	ModeCLI    = "cli"
)

// Config is the root configuration document.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Bridge  BridgeConfig  `yaml:"bridge"`
	Logging LoggingConfig `yaml:"logging"`
}

// BrowserConfig controls the direct backend's per-call sessions.
type BrowserConfig struct {
	// Engine is the default engine family when a call does not name one.
	Engine string `yaml:"engine"`

	// Headless is the default headless flag when a call does not set one.
	Headless bool `yaml:"headless"`

	// ViewportWidth and ViewportHeight size each session's browsing context.
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`

	// TimeoutMS is the default page operation timeout in milliseconds.
	TimeoutMS float64 `yaml:"timeout_ms"`
}

// BridgeConfig selects the execution backend and configures the CLI driver.
type BridgeConfig struct {
	// Mode is "direct" or "cli".
	Mode string `yaml:"mode"`

	// CLIPath is the path to the external driver binary used in cli mode.
	CLIPath string `yaml:"cli_path"`

	// CLITimeoutSeconds bounds each driver subprocess invocation.
	CLITimeoutSeconds int `yaml:"cli_timeout_seconds"`
}

// LoggingConfig controls the diagnostic side channel.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// File, if set, receives a copy of every log line in addition to stderr.
	File string `yaml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			Engine:         EngineChromium,
			Headless:       true,
			ViewportWidth:  1280,
			ViewportHeight: 720,
			TimeoutMS:      30000,
		},
		Bridge: BridgeConfig{
			Mode:              ModeDirect,
			CLITimeoutSeconds: 120,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration file at path, expands environment references,
// unmarshals it over the defaults, and applies environment overrides.
// An empty path or a missing file yields the defaults (still subject to
// environment overrides).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			expanded := expandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envRefPattern matches ${VAR} and ${VAR:-default} references.
var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandEnv replaces ${VAR} and ${VAR:-default} references with environment
// values. An unset variable without a default expands to the empty string.
func expandEnv(s string) string {
	return envRefPattern.ReplaceAllStringFunc(s, func(ref string) string {
		groups := envRefPattern.FindStringSubmatch(ref)
		name, fallback := groups[1], groups[3]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return fallback
	})
}

// applyEnvOverrides applies the compatibility environment variables on top
// of whatever the file set.
func (c *Config) applyEnvOverrides() {
	if engine := os.Getenv("PLAYWRIGHT_BROWSER"); engine != "" {
		c.Browser.Engine = engine
	}
	if headless := os.Getenv("PLAYWRIGHT_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.EqualFold(headless, "true")
	}
	if cliPath := os.Getenv("PLAYWRIGHT_CLI_PATH"); cliPath != "" {
		c.Bridge.CLIPath = cliPath
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	switch c.Browser.Engine {
	case EngineChromium, EngineFirefox, EngineWebKit:
	default:
		return fmt.Errorf("invalid browser.engine %q (must be %s, %s, or %s)",
			c.Browser.Engine, EngineChromium, EngineFirefox, EngineWebKit)
	}

	switch c.Bridge.Mode {
	case ModeDirect, ModeCLI:
	default:
		return fmt.Errorf("invalid bridge.mode %q (must be %s or %s)", c.Bridge.Mode, ModeDirect, ModeCLI)
	}

	if c.Bridge.Mode == ModeCLI && c.Bridge.CLIPath == "" {
		return fmt.Errorf("bridge.cli_path is required in cli mode (or set PLAYWRIGHT_CLI_PATH)")
	}

	if c.Bridge.CLITimeoutSeconds <= 0 {
		return fmt.Errorf("bridge.cli_timeout_seconds must be positive, got %d", c.Bridge.CLITimeoutSeconds)
	}

	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("browser viewport dimensions must be positive, got %dx%d",
			c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}

	if c.Browser.TimeoutMS <= 0 {
		return fmt.Errorf("browser.timeout_ms must be positive, got %v", c.Browser.TimeoutMS)
	}

	return nil
}
