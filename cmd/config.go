package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/iksnae/ragchat/internal"
	"github.com/spf13/cobra"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Long: `Print the configuration after applying the config file, RAGCHAT_*
environment variables and command line flags. The license key is masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		shown := *cfg
		if shown.LicenseKey != "" {
			shown.LicenseKey = "********"
		}
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(shown)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = internal.DefaultConfigPath()
		}

		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}

		cfg := internal.DefaultConfig()
		if apiURL != "" {
			cfg.APIURL = apiURL
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := internal.SaveConfig(cfg, path); err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Wrote %s", path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")
}
