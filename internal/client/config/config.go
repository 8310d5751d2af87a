package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the PadiPay client.
//
// Fields:
//   - APIBaseURL: base URL of the backend API.
//   - DataDir: directory holding the settings database, the secure store and
//     the device secret.
//   - RequestTimeout: per-request deadline for backend calls.
//   - SessionProbeTimeout: bound on the cold-start profile probe.
type Config struct {
	APIBaseURL          string
	DataDir             string
	RequestTimeout      time.Duration
	SessionProbeTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://api.padipay.ng"
	c.DataDir = defaultDataDir()
	c.RequestTimeout = 15 * time.Second
	c.SessionProbeTimeout = 5 * time.Second
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".padipay"
	}
	return filepath.Join(home, ".padipay")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
