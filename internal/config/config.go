// Package config loads hostenv configuration.
//
// Configuration comes from a single YAML file chosen by the --config flag,
// else HOSTENV_CONFIG, else the default path under the XDG config directory
// when that file exists. Environment variables are applied on top of the
// file, and command-line flags on top of those.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mbrock/hostenv/internal/dirs"
	"github.com/mbrock/hostenv/internal/environment"
)

// Source names understood by the platform layer.
const (
	SourceOverride = "override"
	SourceMobile   = "mobile"
	SourceSystemd  = "systemd"
	SourceSysfs    = "sysfs"
	SourceSysctl   = "sysctl"
	SourceCPUID    = "cpuid"
)

// DefaultSources is the probe order when none is configured. The operator
// override comes first; cheap local markers before D-Bus; CPUID last.
var DefaultSources = []string{
	SourceOverride,
	SourceMobile,
	SourceSystemd,
	SourceSysfs,
	SourceSysctl,
	SourceCPUID,
}

const (
	DefaultTitle          = "Devbox iOS Example"
	DefaultListen         = "127.0.0.1:8484"
	DefaultSystemdTimeout = 2 * time.Second
)

// Config is the complete hostenv configuration.
type Config struct {
	// Override forces the host signal: simulated, physical or auto.
	Override string `yaml:"override"`

	// Sources lists the signal sources to consult, in order.
	Sources []string `yaml:"sources"`

	// SystemdTimeout bounds the D-Bus query to systemd.
	SystemdTimeout time.Duration `yaml:"systemd_timeout"`

	// Title is shown above the environment label.
	Title string `yaml:"title"`

	// Listen is the TCP address for `hostenv serve`.
	Listen string `yaml:"listen"`

	// Socket, when set, makes `hostenv serve` listen on a unix socket.
	Socket string `yaml:"socket"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Target is stderr, journal or auto.
	Target string `yaml:"target"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Override:       "auto",
		Sources:        slices.Clone(DefaultSources),
		SystemdTimeout: DefaultSystemdTimeout,
		Title:          DefaultTitle,
		Listen:         DefaultListen,
		Log: LogConfig{
			Level:  "info",
			Target: "auto",
		},
	}
}

// Path resolves which config file to read. An empty result means none.
func Path(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if v := os.Getenv("HOSTENV_CONFIG"); v != "" {
		return v
	}
	if _, err := os.Stat(dirs.ConfigFile()); err == nil {
		return dirs.ConfigFile()
	}
	return ""
}

// Load is Read followed by Validate.
func Load(flagPath string) (Config, error) {
	cfg, err := Read(flagPath)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read reads the config file (if any) and applies environment overrides
// without validating, so callers can layer flags on top first. A path
// named explicitly must exist.
func Read(flagPath string) (Config, error) {
	cfg := Default()

	if path := Path(flagPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv layers HOSTENV_* environment variables over cfg.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv("HOSTENV_SIMULATOR"); ok {
		c.Override = v
	}
	if v := os.Getenv("HOSTENV_SOURCES"); v != "" {
		c.Sources = SplitList(v)
	}
	if v := os.Getenv("HOSTENV_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("HOSTENV_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HOSTENV_LOG_TARGET"); v != "" {
		c.Log.Target = v
	}
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error

	if _, ok := environment.ParseSignal(c.Override); !ok {
		errs = append(errs, fmt.Errorf("override %q: want simulated, physical or auto", c.Override))
	}
	if len(c.Sources) == 0 {
		errs = append(errs, errors.New("sources: at least one source required"))
	}
	for _, name := range c.Sources {
		if !slices.Contains(DefaultSources, name) {
			errs = append(errs, fmt.Errorf("sources: unknown source %q", name))
		}
	}
	if c.SystemdTimeout <= 0 {
		errs = append(errs, fmt.Errorf("systemd_timeout: must be positive, got %s", c.SystemdTimeout))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level))
	}
	switch c.Log.Target {
	case "auto", "stderr", "journal":
	default:
		errs = append(errs, fmt.Errorf("log.target %q: want auto, stderr or journal", c.Log.Target))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SplitList splits a comma-separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
