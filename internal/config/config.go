// Package config loads runwasm settings from an optional YAML file, dotenv
// files and the process environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	dberrors "git.home.luguber.info/inful/runwasm/internal/foundation/errors"
)

const (
	// DefaultFile is the config file looked up in the working directory.
	DefaultFile = "runwasm.yaml"

	DefaultToolchain = "cargo"
	DefaultBindgen   = "wasm-bindgen"
	DefaultHost      = "localhost"
	DefaultPort      = 8000
	DefaultDebounce  = 300 * time.Millisecond
)

// Config holds file-level settings. Zero values are replaced by defaults on load.
type Config struct {
	Toolchain string       `yaml:"toolchain,omitempty"`
	Bindgen   string       `yaml:"bindgen,omitempty"`
	CSS       string       `yaml:"css,omitempty"`      // stylesheet text inlined into the host page
	Template  string       `yaml:"template,omitempty"` // path to a custom host page template
	Server    ServerConfig `yaml:"server"`
	Watch     WatchConfig  `yaml:"watch"`
}

// ServerConfig configures the development server.
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Metrics    bool   `yaml:"metrics"`
	LiveReload bool   `yaml:"live_reload"`
}

// WatchConfig configures source watching.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns a config populated with defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates the YAML file at path. Environment references in the
// file are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dberrors.ConfigError("configuration file not found: " + path).Build()
		}
		return nil, dberrors.WrapError(err, dberrors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Build()
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load but returns defaults when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes YAML config data.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, dberrors.WrapError(err, dberrors.CategoryConfig, "failed to parse config").Build()
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Toolchain == "" {
		c.Toolchain = DefaultToolchain
	}
	if c.Bindgen == "" {
		c.Bindgen = DefaultBindgen
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = DefaultDebounce
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return dberrors.ConfigError("server.port must be between 1 and 65535").
			WithContext("port", c.Server.Port).
			Build()
	}
	if c.Watch.Debounce < 0 {
		return dberrors.ConfigError("watch.debounce must not be negative").
			WithContext("debounce", c.Watch.Debounce.String()).
			Build()
	}
	return nil
}

// ApplyEnv overrides file values with environment values that are set.
func (c *Config) ApplyEnv(env Env) {
	if env.Cargo != "" {
		c.Toolchain = env.Cargo
	}
	if env.Bindgen != "" {
		c.Bindgen = env.Bindgen
	}
}

// Init writes a sample configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return dberrors.ConfigError("configuration file already exists: " + path + " (use --force to overwrite)").Build()
	}

	sample := Default()
	sample.CSS = "body { margin: 0; background: #111; }"
	sample.Server.LiveReload = true

	data, err := yaml.Marshal(sample)
	if err != nil {
		return dberrors.InternalError("failed to marshal config").WithCause(err).Build()
	}
	data = append([]byte(sampleHeader), data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return dberrors.FileSystemError("failed to write config file").WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}

const sampleHeader = `# runwasm configuration
# Values may reference environment variables, e.g. toolchain: ${HOME}/.cargo/bin/cargo
# Command line flags override these settings.
`
