package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nissyi-gh/flowboard/internal/overdue"
	"github.com/nissyi-gh/flowboard/internal/store"
	"gopkg.in/yaml.v3"
)

type Config struct {
	OverdueInterval  Duration `yaml:"overdue_interval"`
	SweepPolicy      string   `yaml:"sweep_policy"`
	TransitionPolicy string   `yaml:"transition_policy"`
	WebEnabled       bool     `yaml:"web_enabled"`
	WebAddr          string   `yaml:"web_addr"`
	LogFile          string   `yaml:"log_file,omitempty"`
	ImportFile       string   `yaml:"import_file,omitempty"`
}

// Duration reads and writes time.Duration values such as "24h".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

func Default() Config {
	return Config{
		OverdueInterval:  Duration{overdue.DefaultInterval},
		SweepPolicy:      "pending",
		TransitionPolicy: "permissive",
		WebAddr:          ":8080",
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/flowboard/config.yaml,
// falling back to ~/.config.
func DefaultConfigPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "flowboard", "config.yaml"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads the config file. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks the policy names and the sweep interval.
func (c Config) Validate() error {
	if c.OverdueInterval.Duration <= 0 {
		return fmt.Errorf("overdue_interval must be positive, got %s", c.OverdueInterval)
	}
	if _, err := store.ParseSweepPolicy(c.SweepPolicy); err != nil {
		return fmt.Errorf("sweep_policy: %w", err)
	}
	if _, err := store.ParsePolicy(c.TransitionPolicy); err != nil {
		return fmt.Errorf("transition_policy: %w", err)
	}
	return nil
}

// StoreOptions turns the policy settings into store options.
func (c Config) StoreOptions() ([]store.Option, error) {
	sweep, err := store.ParseSweepPolicy(c.SweepPolicy)
	if err != nil {
		return nil, err
	}
	policy, err := store.ParsePolicy(c.TransitionPolicy)
	if err != nil {
		return nil, err
	}
	return []store.Option{store.WithSweep(sweep), store.WithPolicy(policy)}, nil
}
