package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/ftpot/internal/logger"
	"github.com/marmos91/ftpot/pkg/adapter/ftp"
	"github.com/marmos91/ftpot/pkg/config"
	"github.com/marmos91/ftpot/pkg/honeynet"
	"github.com/marmos91/ftpot/pkg/honeypot/files"
	"github.com/marmos91/ftpot/pkg/honeypot/store"
	"github.com/marmos91/ftpot/pkg/housekeeper"
	"github.com/marmos91/ftpot/pkg/login"
	"github.com/marmos91/ftpot/pkg/metrics"
	"github.com/marmos91/ftpot/pkg/metrics/prometheus"
	"github.com/marmos91/ftpot/pkg/virustotal"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ftpot honeypot",
	Long: `Start the ftpot honeypot with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/ftpot/config.yaml.

Examples:
  # Start with default config location
  ftpot start

  # Start with custom config file
  ftpot start --config /etc/ftpot/config.yaml

  # Start with environment variable overrides
  FTPOT_LOGGING_LEVEL=DEBUG ftpot start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))

	// Initialize metrics FIRST so the honeypot components pick up a live
	// collector instead of the no-op one
	var metricsServer *prometheus.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = prometheus.NewServer(cfg.Metrics.Port)
		metricsServer.Start()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}
	ftpMetrics := metrics.NewFTPMetrics()

	// Initialize the honeypot database
	db, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Store close error", "error", err)
		}
	}()
	logger.Info("Database initialized", "type", cfg.Database.Type)

	// File management (uploads, decoy seeds, synthesized downloads)
	fileManager := files.NewManager(cfg.Files)
	logger.Info("File manager initialized",
		"base_path", cfg.Files.BaseSavePath,
		"upload_real", cfg.Files.UploadReal,
		"upload_limit", cfg.Files.UploadLimit)

	// External integrations
	events := honeynet.NewClient(cfg.Honeynet, ftpMetrics)
	if events.Enabled() {
		logger.Info("Honeynet collector enabled", "url", cfg.Honeynet.URL)
	} else {
		logger.Info("Honeynet collector disabled")
	}

	scanner := virustotal.NewClient(cfg.VirusTotal, ftpMetrics)
	if scanner.Enabled() {
		logger.Info("VirusTotal enrichment enabled")
	} else {
		logger.Info("VirusTotal enrichment disabled")
	}

	// Graduated login policy
	loginService := login.NewService(db, fileManager, cfg.Login.TriesBeforeSuccess, ftpMetrics)
	logger.Info("Login policy configured", "tries_before_success", cfg.Login.TriesBeforeSuccess)

	// Background maintenance: VirusTotal enrichment and stale attacker purge
	keeper := housekeeper.New(db, scanner, events, fileManager, cfg.Housekeeper, cfg.Files.UploadReal)
	go keeper.Run(ctx)

	// FTP front-end
	adapter := ftp.New(cfg.FTP, cfg.Files, ftp.Deps{
		Store:   db,
		Login:   loginService,
		Files:   fileManager,
		Events:  events,
		Metrics: ftpMetrics,
	})

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- adapter.Serve(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Honeypot is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
	}

	// Wait for in-flight sessions to drain
	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stopCancel()
	if err := adapter.Stop(stopCtx); err != nil {
		logger.Error("Session drain error", "error", err)
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			logger.Error("Metrics server shutdown error", "error", err)
		}
	}

	logger.Info("Honeypot stopped gracefully")
	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
