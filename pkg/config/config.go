package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/ftpot/internal/logger"
	"github.com/marmos91/ftpot/pkg/honeypot/store"
)

// Config represents the ftpot configuration.
//
// This structure captures all static configuration of the honeypot:
//   - Logging configuration
//   - FTP front-end settings (port, banner, concurrency cap)
//   - Login policy (attempt threshold)
//   - File management (upload limits, decoy seeds, on-disk storage)
//   - Honeynet event collector and VirusTotal enrichment
//   - Database connection (SQLite or PostgreSQL)
//   - Housekeeper schedule
//   - Metrics server
//
// Configuration sources (in order of precedence):
//  1. Environment variables (FTPOT_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Database configures the honeypot database (SQLite or PostgreSQL).
	// This is the persistent store for attackers, credentials, and uploads.
	Database store.Config `mapstructure:"database" yaml:"database"`

	// FTP contains the FTP front-end configuration
	FTP FTPConfig `mapstructure:"ftp" yaml:"ftp"`

	// Login contains the graduated login policy configuration
	Login LoginConfig `mapstructure:"login" yaml:"login"`

	// Files contains upload and decoy file management configuration
	Files FilesConfig `mapstructure:"files" yaml:"files"`

	// Honeynet contains the central event collector configuration
	Honeynet HoneynetConfig `mapstructure:"honeynet" yaml:"honeynet"`

	// VirusTotal contains the hash enrichment configuration
	VirusTotal VirusTotalConfig `mapstructure:"virustotal" yaml:"virustotal"`

	// Housekeeper contains the background maintenance schedule
	Housekeeper HousekeeperConfig `mapstructure:"housekeeper" yaml:"housekeeper"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// FTPConfig contains the FTP front-end configuration.
type FTPConfig struct {
	// Port is the TCP port the control channel listens on
	// Default: 2121
	Port int `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`

	// WelcomeMessage is sent as the 220 banner on connect
	WelcomeMessage string `mapstructure:"welcome_message" yaml:"welcome_message"`

	// HelpMessage is sent in response to HELP
	HelpMessage string `mapstructure:"help_message" yaml:"help_message"`

	// MaxConcurrentUsers caps parallel sessions; further connections are
	// turned away with a 421 reply
	// Default: 25
	MaxConcurrentUsers int `mapstructure:"max_concurrent_users" validate:"min=1" yaml:"max_concurrent_users"`
}

// LoginConfig contains the graduated login policy configuration.
type LoginConfig struct {
	// TriesBeforeSuccess is the number of PASS attempts an attacker needs
	// before a login is accepted
	// Default: 7
	TriesBeforeSuccess int `mapstructure:"tries_before_success" validate:"min=1" yaml:"tries_before_success"`
}

// FilesConfig contains upload and decoy file management configuration.
type FilesConfig struct {
	// UploadReal keeps uploaded file contents on disk when true. When false
	// only metadata is recorded and the blob is discarded after hashing.
	// Default: false
	UploadReal bool `mapstructure:"upload_real" yaml:"upload_real"`

	// CanBeDownloaded allows attackers to RETR their own uploads back
	// Default: false
	CanBeDownloaded bool `mapstructure:"can_be_downloaded" yaml:"can_be_downloaded"`

	// UploadLimit is the maximum number of uploads per attacker
	// Default: 10
	UploadLimit int `mapstructure:"upload_limit" validate:"min=1" yaml:"upload_limit"`

	// SizeLimitGB is the maximum size of a single upload in gigabytes
	// Default: 10
	SizeLimitGB int `mapstructure:"size_limit_gb" validate:"min=1" yaml:"size_limit_gb"`

	// BaseSavePath is the directory uploads are written under, one
	// subdirectory per attacker
	BaseSavePath string `mapstructure:"base_save_path" validate:"required" yaml:"base_save_path"`

	// DefaultFilesPath is the directory holding the decoy files that seed
	// a fresh deception filesystem
	DefaultFilesPath string `mapstructure:"default_files_path" yaml:"default_files_path"`
}

// HoneynetConfig contains the central event collector configuration.
type HoneynetConfig struct {
	// ID identifies this honeypot instance in emitted events
	// Default: 1
	ID int `mapstructure:"id" validate:"min=1" yaml:"id"`

	// Token authenticates events against the collector
	Token string `mapstructure:"token" yaml:"token"`

	// URL is the collector endpoint events are POSTed to. Empty disables
	// event emission.
	URL string `mapstructure:"url" yaml:"url"`

	// VerifyTLS enables TLS certificate verification towards the collector.
	// Collectors in the field commonly run self-signed, so verification is
	// off unless explicitly enabled.
	// Default: false
	VerifyTLS bool `mapstructure:"verify_tls" yaml:"verify_tls"`
}

// VirusTotalConfig contains the hash enrichment configuration.
type VirusTotalConfig struct {
	// Token is the VirusTotal API key. Empty disables enrichment.
	Token string `mapstructure:"token" yaml:"token"`

	// HashURL is the lookup endpoint; the file hash is appended verbatim
	HashURL string `mapstructure:"hash_url" yaml:"hash_url"`

	// ResultURL is the base of the public result link stored per file
	ResultURL string `mapstructure:"result_url" yaml:"result_url"`
}

// HousekeeperConfig contains the background maintenance schedule.
type HousekeeperConfig struct {
	// Interval is the pause between maintenance runs
	// Default: 5m
	Interval time.Duration `mapstructure:"interval" validate:"required,gt=0" yaml:"interval"`

	// RetentionPeriod is how long inactive attackers are kept before the
	// stale purge removes them
	// Default: 168h (7 days)
	RetentionPeriod time.Duration `mapstructure:"retention_period" validate:"required,gt=0" yaml:"retention_period"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (FTPOT_*)
//  2. Configuration file
//  3. Default values
//
// A missing or unparseable config file is never fatal: the honeypot must
// come up even with a broken config, so parse failures log a warning and
// fall back to the documented defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Configure viper
	setupViper(v, configPath)

	// Read configuration file if it exists
	configFileFound, err := readConfigFile(v)
	if err != nil {
		logger.Warn("Failed to parse config file, falling back to defaults", "error", err)
		return GetDefaultConfig(), nil
	}

	// If no config file was found, use defaults
	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	// Unmarshal into config struct with custom decode hooks
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		logger.Warn("Failed to decode config file, falling back to defaults", "error", err)
		return GetDefaultConfig(), nil
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
// The configuration is saved in YAML format using proper yaml tags.
func SaveConfig(cfg *Config, path string) error {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use yaml.Marshal directly to respect yaml tags
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file with restricted permissions (0600 = owner read/write only).
	// This is important because config files carry collector and VT tokens.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Set up environment variable support
	// Environment variables use FTPOT_ prefix and underscores
	// Example: FTPOT_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("FTPOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Configure config file search
	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/ftpot/config.yaml
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		// Check if error is "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Also check for os.PathError when explicit config file doesn't exist
		if os.IsNotExist(err) {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Other errors are problems
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to time.Duration
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse duration string like "30s", "5m", "1h"
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	// Check XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ftpot")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, use current directory as last resort
		return "."
	}

	return filepath.Join(home, ".config", "ftpot")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
