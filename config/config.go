package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blang/semver"
	"github.com/spf13/viper"
)

// Load loads the configuration from file. A missing config file is not an
// error unless an explicit path was given: the launcher must work with zero
// configuration, the way the shell scripts it replaces did.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".botstrap"))
		}

		// Check /etc
		v.AddConfigPath("/etc/botstrap/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		if configPath != "" {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		// No config file anywhere: run on defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Launcher defaults
	v.SetDefault("launcher.entrypoint", "main.py")
	v.SetDefault("launcher.working_dir", ".")
	v.SetDefault("launcher.manifest", "requirements.txt")
	v.SetDefault("launcher.env_file", ".env")
	v.SetDefault("launcher.python_range", ">=3.9.0 <3.13.0")

	// Bot defaults
	v.SetDefault("bot.token_var", "BOT_TOKEN")

	// qBittorrent defaults
	v.SetDefault("qbittorrent.host", "http://localhost:8080")

	// Cleanup defaults
	v.SetDefault("cleanup.roots", []string{"temp", "downloads"})
	v.SetDefault("cleanup.rule", "age_hours > 48")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Launcher.Entrypoint == "" {
		return fmt.Errorf("launcher.entrypoint is required")
	}

	if cfg.Launcher.Manifest == "" {
		return fmt.Errorf("launcher.manifest is required")
	}

	if cfg.Bot.TokenVar == "" {
		return fmt.Errorf("bot.token_var is required")
	}

	if cfg.Launcher.PythonRange != "" {
		if _, err := semver.ParseRange(cfg.Launcher.PythonRange); err != nil {
			return fmt.Errorf("invalid launcher.python_range %q: %w", cfg.Launcher.PythonRange, err)
		}
	}

	if cfg.Cleanup.MaxUsageBytes < 0 {
		return fmt.Errorf("cleanup.max_usage_bytes must not be negative")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
