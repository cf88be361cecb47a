package config

// Config represents the complete configuration structure
type Config struct {
	Launcher    LauncherConfig    `mapstructure:"launcher"`
	Bot         BotConfig         `mapstructure:"bot"`
	Qbittorrent QbittorrentConfig `mapstructure:"qbittorrent"`
	Cleanup     CleanupConfig     `mapstructure:"cleanup"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// LauncherConfig describes how the bot process is prepared and started
type LauncherConfig struct {
	Entrypoint  string `mapstructure:"entrypoint"`
	WorkingDir  string `mapstructure:"working_dir"`
	Interpreter string `mapstructure:"interpreter"`
	Manifest    string `mapstructure:"manifest"`
	EnvFile     string `mapstructure:"env_file"`
	SkipInstall bool   `mapstructure:"skip_install"`
	PythonRange string `mapstructure:"python_range"`
}

// BotConfig describes the credential contract of the bot process
type BotConfig struct {
	TokenVar     string `mapstructure:"token_var"`
	RequireToken bool   `mapstructure:"require_token"`
}

// QbittorrentConfig holds qBittorrent Web UI connection details for the
// doctor reachability probe
type QbittorrentConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CleanupConfig controls the temp directory sweeper
type CleanupConfig struct {
	Roots         []string `mapstructure:"roots"`
	Rule          string   `mapstructure:"rule"`
	MaxUsageBytes int64    `mapstructure:"max_usage_bytes"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
