package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Manage the license key sent to the backend",
}

var licenseSetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the license key",
	Long: `Store the license key used for every backend request.

When no key is given as an argument it is read from standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := ""
		if len(args) == 1 {
			raw = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read license key: %w", err)
			}
			raw = line
		}

		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		return shell.SetLicense(raw)
	},
}

var licenseClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored license key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		shell.ClearLicense()
		return nil
	},
}

var licenseStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a license key is configured",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		out := cmd.OutOrStdout()
		if shell.LicensePresent() {
			fmt.Fprintln(out, successStyle.Render("✅ License key configured"))
			return nil
		}
		fmt.Fprintln(out, warningStyle.Render("⚠️  No license key configured"))
		fmt.Fprintln(out, idStyle.Render("Run `ragchat license set <key>` or set RAGCHAT_LICENSE_KEY."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(licenseCmd)
	licenseCmd.AddCommand(licenseSetCmd, licenseClearCmd, licenseStatusCmd)
}
