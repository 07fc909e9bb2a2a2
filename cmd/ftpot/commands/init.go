package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/ftpot/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample ftpot configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/ftpot/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  ftpot init

  # Initialize with custom path
  ftpot init --config /etc/ftpot/config.yaml

  # Force overwrite existing config
  ftpot init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, err := config.InitConfig(GetConfigFile(), initForce)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the honeypot with: ftpot start")
	fmt.Printf("  3. Or specify custom config: ftpot start --config %s\n", configPath)

	return nil
}
