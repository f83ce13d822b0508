package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CLI holds the operator CLI settings.
type CLI struct {
	// Server is the gRPC address of the onboarding server.
	Server string `yaml:"server"`
	// CAFile trusts an extra CA when dialing with TLS.
	CAFile string `yaml:"ca_file,omitempty"`
	// Insecure dials without TLS.
	Insecure bool `yaml:"insecure"`
	// Timeout bounds each RPC.
	Timeout time.Duration `yaml:"timeout"`
	// Quiet is the autosave debounce used by `form edit`.
	Quiet time.Duration `yaml:"quiet"`
	// PublicURL is the base of printed share links.
	PublicURL string `yaml:"public_url"`
}

// DefaultCLI returns the settings used when no file exists.
func DefaultCLI() CLI {
	return CLI{
		Server:    "localhost:9090",
		Insecure:  true,
		Timeout:   10 * time.Second,
		Quiet:     time.Second,
		PublicURL: "http://localhost:8080",
	}
}

// DefaultCLIPath returns $XDG_CONFIG_HOME/onboarding/config.yaml (or the OS equivalent).
func DefaultCLIPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "onboarding.yaml"
	}
	return filepath.Join(dir, "onboarding", "config.yaml")
}

// LoadCLI reads path over the defaults. A missing file yields the defaults.
func LoadCLI(path string) (CLI, error) {
	c := DefaultCLI()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return CLI{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return CLI{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path, creating the directory.
func (c CLI) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
