package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/ftpot/pkg/honeypot/store"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyShutdownTimeoutDefaults(cfg)
	applyDatabaseDefaults(&cfg.Database)
	applyFTPDefaults(&cfg.FTP)
	applyLoginDefaults(&cfg.Login)
	applyFilesDefaults(&cfg.Files)
	applyHoneynetDefaults(&cfg.Honeynet)
	applyHousekeeperDefaults(&cfg.Housekeeper)
	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyShutdownTimeoutDefaults sets shutdown timeout defaults.
func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyDatabaseDefaults sets honeypot database defaults.
func applyDatabaseDefaults(cfg *store.Config) {
	cfg.ApplyDefaults()
}

// applyFTPDefaults sets FTP front-end defaults.
func applyFTPDefaults(cfg *FTPConfig) {
	if cfg.Port == 0 {
		cfg.Port = 2121
	}
	if cfg.WelcomeMessage == "" {
		cfg.WelcomeMessage = "(vsFTPd 3.0.3)"
	}
	if cfg.HelpMessage == "" {
		cfg.HelpMessage = "Please login with USER and PASS."
	}
	if cfg.MaxConcurrentUsers == 0 {
		cfg.MaxConcurrentUsers = 25
	}
}

// applyLoginDefaults sets login policy defaults.
func applyLoginDefaults(cfg *LoginConfig) {
	if cfg.TriesBeforeSuccess == 0 {
		cfg.TriesBeforeSuccess = 7
	}
}

// applyFilesDefaults sets file management defaults.
func applyFilesDefaults(cfg *FilesConfig) {
	// UploadReal and CanBeDownloaded default to false
	// No need to set, zero value is false

	if cfg.UploadLimit == 0 {
		cfg.UploadLimit = 10
	}
	if cfg.SizeLimitGB == 0 {
		cfg.SizeLimitGB = 10
	}
	if cfg.BaseSavePath == "" {
		cfg.BaseSavePath = filepath.Join(getDataDir(), "uploads")
	}
	if cfg.DefaultFilesPath == "" {
		cfg.DefaultFilesPath = filepath.Join(getDataDir(), "default_files")
	}
}

// applyHoneynetDefaults sets event collector defaults.
func applyHoneynetDefaults(cfg *HoneynetConfig) {
	if cfg.ID == 0 {
		cfg.ID = 1
	}
	// VerifyTLS defaults to false, collectors commonly run self-signed
	// No need to set, zero value is false
}

// applyHousekeeperDefaults sets background maintenance defaults.
func applyHousekeeperDefaults(cfg *HousekeeperConfig) {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.RetentionPeriod == 0 {
		cfg.RetentionPeriod = 7 * 24 * time.Hour
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false (opt-in for metrics)
	// Port defaults to 9090 if metrics are enabled
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// getDataDir returns the directory for honeypot state (uploads, decoys).
func getDataDir() string {
	return filepath.Join(getConfigDir(), "data")
}

// GetDefaultConfig returns a fully defaulted configuration.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Logging: LoggingConfig{},
		Database: store.Config{
			Type: store.DatabaseTypeSQLite, // Default to SQLite for single-node
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
