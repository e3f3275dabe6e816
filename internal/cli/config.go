package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// appName names the per-user config and cache directories.
const appName = "erdograph"

// Config holds the user-level defaults loaded from
// ~/.config/erdograph/config.toml. Command-line flags override every
// field. A missing config file yields the defaults unchanged.
type Config struct {
	// Seed is the default generator seed.
	Seed int64 `toml:"seed"`

	// Format is the default plot format: "svg" or "png".
	Format string `toml:"format"`

	// Cache selects the artifact cache backend: "file", "redis", or
	// "off".
	Cache string `toml:"cache"`

	// RedisAddr is the Redis address used when Cache is "redis".
	RedisAddr string `toml:"redis_addr"`

	// Listen is the default HTTP address for the serve command.
	Listen string `toml:"listen"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() Config {
	return Config{
		Seed:      42,
		Format:    "svg",
		Cache:     "file",
		RedisAddr: "localhost:6379",
		Listen:    "localhost:8080",
	}
}

// configPath returns the config file location under the user config dir.
func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// loadConfig reads the config file, filling any unset field with its
// default. A missing file is not an error; a malformed one is.
func loadConfig() (Config, error) {
	cfg := defaultConfig()

	path, err := configPath()
	if err != nil {
		return cfg, nil // no config dir on this platform; use defaults
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Format {
	case "svg", "png":
	default:
		return fmt.Errorf("invalid format %q (must be 'svg' or 'png')", c.Format)
	}
	switch c.Cache {
	case "file", "redis", "off":
	default:
		return fmt.Errorf("invalid cache backend %q (must be 'file', 'redis', or 'off')", c.Cache)
	}
	return nil
}
