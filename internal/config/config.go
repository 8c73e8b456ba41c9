package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tnunamak/copilotmeter/internal/credentials"
)

// TokenEnv overrides the token key of the settings file.
const TokenEnv = "COPILOTMETER_TOKEN"

const (
	DefaultRefreshIntervalSec = 300
	DefaultProbeTimeoutSec    = 5
	DefaultHTTPTimeoutSec     = 10
)

// Config holds copilotmeter settings.
type Config struct {
	Token              string        `yaml:"token,omitempty"`                // manual override, lowest priority
	RefreshIntervalSec *int          `yaml:"refresh_interval_sec,omitempty"` // 0 disables periodic refresh
	ProbeTimeoutSec    int           `yaml:"probe_timeout_sec,omitempty"`
	HTTPTimeoutSec     int           `yaml:"http_timeout_sec,omitempty"`
	GHCommand          string        `yaml:"gh_command,omitempty"`
	APIURL             string        `yaml:"api_url,omitempty"`
	Log                LogConfig     `yaml:"log"`
	Metrics            MetricsConfig `yaml:"metrics"`
	Paths              PathsConfig   `yaml:"paths"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error (default: warn)
	Format string `yaml:"format,omitempty"` // console, json (default: console)
}

// MetricsConfig holds the optional local HTTP listener used by watch.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"` // e.g. 127.0.0.1:9464; empty disables
}

// PathsConfig overrides credential file locations. Empty keeps the default.
type PathsConfig struct {
	GHHosts      string `yaml:"gh_hosts,omitempty"`
	CopilotHosts string `yaml:"copilot_hosts,omitempty"`
	CopilotApps  string `yaml:"copilot_apps,omitempty"`
	CopilotOAuth string `yaml:"copilot_oauth,omitempty"`
}

// DefaultPath returns $XDG_CONFIG_HOME/copilotmeter/config.yaml, falling back
// to ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".copilotmeter", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "copilotmeter", "config.yaml")
}

// Load reads the settings file at path. A missing file yields defaults.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if tok := os.Getenv(TokenEnv); tok != "" {
		cfg.Token = tok
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	c.Token = strings.TrimSpace(c.Token)
	if c.RefreshIntervalSec == nil {
		v := DefaultRefreshIntervalSec
		c.RefreshIntervalSec = &v
	}
	if c.ProbeTimeoutSec <= 0 {
		c.ProbeTimeoutSec = DefaultProbeTimeoutSec
	}
	if c.HTTPTimeoutSec <= 0 {
		c.HTTPTimeoutSec = DefaultHTTPTimeoutSec
	}
	if c.GHCommand == "" {
		c.GHCommand = "gh"
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.RefreshIntervalSec != nil && *c.RefreshIntervalSec < 0 {
		return fmt.Errorf("refresh_interval_sec must be >= 0, got %d", *c.RefreshIntervalSec)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be \"console\" or \"json\", got %q", c.Log.Format)
	}
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("api_url must be an absolute http(s) URL, got %q", c.APIURL)
		}
	}
	return nil
}

// RefreshInterval is the periodic refresh interval; 0 means disabled.
func (c Config) RefreshInterval() time.Duration {
	if c.RefreshIntervalSec == nil {
		return DefaultRefreshIntervalSec * time.Second
	}
	return time.Duration(*c.RefreshIntervalSec) * time.Second
}

func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSec) * time.Second
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// CredentialPaths applies path overrides on top of the environment defaults.
func (c Config) CredentialPaths() credentials.Paths {
	p := credentials.DefaultPaths()
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&p.GHHostsYAML, c.Paths.GHHosts)
	override(&p.CopilotHosts, c.Paths.CopilotHosts)
	override(&p.CopilotApps, c.Paths.CopilotApps)
	override(&p.CopilotOAuth, c.Paths.CopilotOAuth)
	return p
}

// ProbeOptions builds the credential probe settings. token supplies the
// manual token on every resolve; nil falls back to the token loaded into c.
func (c Config) ProbeOptions(token func() string) credentials.Options {
	if token == nil {
		loaded := c.Token
		token = func() string { return loaded }
	}
	return credentials.Options{
		Paths:        c.CredentialPaths(),
		ManualToken:  token,
		GHCommand:    c.GHCommand,
		ProbeTimeout: c.ProbeTimeout(),
	}
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
