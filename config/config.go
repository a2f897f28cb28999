// Package config provides configuration loading for gembrowse using TOML,
// with GEMBROWSE_* environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"gembrowse/logging"
)

// Display settings
type Display struct {
	ASCII  bool `toml:"ascii"`
	Colour bool `toml:"colour"`
}

// Fetch settings
type Fetch struct {
	TimeoutSeconds int `toml:"timeout_seconds" split_words:"true"`
	MaxRedirects   int `toml:"max_redirects" split_words:"true"`
	MaxBodyMiB     int `toml:"max_body_mib" envconfig:"MAX_BODY_MIB"`
}

// Cache settings
type Cache struct {
	TTLMinutes   int `toml:"ttl_minutes" split_words:"true"`
	SweepMinutes int `toml:"sweep_minutes" split_words:"true"`
}

// Trust settings
type Trust struct {
	Policy string `toml:"policy"`
}

// Log settings
type Log struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// Download settings
type Download struct {
	Dir string `toml:"dir"`
}

// Config is the main configuration struct
type Config struct {
	Home string `toml:"home"`
	Mode string `toml:"mode"` // "raw" or "canonical"

	Display  Display  `toml:"display"`
	Fetch    Fetch    `toml:"fetch"`
	Cache    Cache    `toml:"cache"`
	Trust    Trust    `toml:"trust"`
	Log      Log      `toml:"log"`
	Download Download `toml:"download"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Home: "internal://home",
		Mode: "raw",
		Display: Display{
			ASCII:  false,
			Colour: true,
		},
		Fetch: Fetch{
			TimeoutSeconds: 10,
			MaxRedirects:   5,
			MaxBodyMiB:     32,
		},
		Cache: Cache{
			TTLMinutes:   0, // session lifetime
			SweepMinutes: 1,
		},
		Trust: Trust{
			Policy: "accept-all",
		},
		Log: Log{
			Path:  logging.DefaultPath(),
			Level: "info",
		},
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gembrowse"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads configuration, layering the file at path and then any
// GEMBROWSE_* environment variables over the defaults. An empty path means
// ConfigPath; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, nil // Return defaults if we can't determine path
		}
		path = p
	}

	// Keys absent from the file keep their default values.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	if err := envconfig.Process("gembrowse", cfg); err != nil {
		return nil, fmt.Errorf("reading environment overrides: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Mode {
	case "raw", "canonical":
	default:
		return fmt.Errorf("unknown input mode %q", cfg.Mode)
	}
	switch cfg.Trust.Policy {
	case "tofu", "accept-all":
	default:
		return fmt.Errorf("unknown trust policy %q", cfg.Trust.Policy)
	}
	return nil
}

// DefaultTOML returns the default configuration as a TOML string.
// Used for --init-config to generate a user config file.
func DefaultTOML() string {
	return `# gembrowse configuration
# Save to ~/.config/gembrowse/config.toml and customize
# Only include settings you want to change from defaults
# Environment variables with a GEMBROWSE_ prefix override any of these,
# e.g. GEMBROWSE_HOME, GEMBROWSE_LOG_LEVEL

home = "internal://home"      # Start page: any URL, or an internal page
mode = "raw"                  # Input mode: "raw" or "canonical"

# Display settings
[display]
ascii = false                 # Draw the page gutter with "|" instead of "│"
colour = true                 # Styled pages; false prints plain text

# Network settings
[fetch]
timeout_seconds = 10          # Per-request network timeout
max_redirects = 5             # Redirects followed before giving up
max_body_mib = 32             # Largest response body accepted

# Page cache settings
[cache]
ttl_minutes = 0               # Page lifetime; 0 keeps pages for the session
sweep_minutes = 1             # How often expired pages are swept

# Certificate trust settings
[trust]
policy = "accept-all"         # Accept any server certificate; "tofu" pins first-seen ones

# Log settings
[log]
level = "info"                # "debug", "info", "warn" or "error"
# path = "/home/you/.cache/gembrowse/gembrowse.log"   # Empty disables logging

# Download settings
[download]
# dir = "/home/you/Downloads"  # Where saved pages land; empty uses ~/Downloads
`
}

// FormatError formats a configuration error for user display.
func FormatError(err error) string {
	return fmt.Sprintf("Configuration error:\n\n%s", err.Error())
}
