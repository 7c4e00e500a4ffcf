package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/config"
)

// newConfigCmd creates the config command tree
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long:  `Manage configuration settings for videoproc.`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())

	return configCmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [DATABASE_URL]",
		Short: "Initialize configuration file",
		Long:  `Create a new configuration file with commented defaults for every pipeline setting.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var databaseURL string
			if len(args) > 0 {
				databaseURL = args[0]
			}

			if err := config.InitConfig(databaseURL); err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			configPath, err := config.GetConfigPath()
			if err != nil {
				return err
			}

			fmt.Printf("✅ Configuration file created: %s\n", configPath)
			fmt.Println("Edit it to point at your origin store, cache store and API keys.")
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Print the configuration file location and its contents.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := config.GetConfigPath()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(configPath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("configuration file not found: %s (run 'videoproc config init')", configPath)
				}
				return err
			}

			fmt.Printf("# %s\n\n", configPath)
			fmt.Print(string(data))
			return nil
		},
	}
}
