package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/ragchat/internal"
	"github.com/iksnae/ragchat/internal/api"
	"github.com/spf13/cobra"
)

var (
	healthDetails bool
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:     "health",
	Aliases: []string{"healthcheck"},
	Short:   "Check that the backend and local storage are reachable",
	Long: `Check the health of ragchat by verifying:
  • Local storage can be opened
  • A license key is configured
  • The backend answers GET /health

Use --details to print the backend URL and response.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 ragchat Health Check"))
		fmt.Fprintln(out)

		fmt.Fprintln(out, infoStyle.Render("Step 1: Opening local storage..."))
		shell, cleanup, err := openShell()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open local storage:"), err)
			return err
		}
		defer cleanup()
		sessions := shell.Sessions()
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Local storage available (%d session(s))", len(sessions))))
		if healthDetails {
			fmt.Fprintf(out, "   Backend URL: %s\n", resolvedAPIURL)
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking license key..."))
		licensed := shell.LicensePresent()
		if licensed {
			fmt.Fprintln(out, successStyle.Render("✅ License key configured"))
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  No license key configured"))
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, infoStyle.Render("Step 3: Contacting backend..."))
		var health *api.HealthResponse
		err = internal.ShowProgress(cmd.Context(), "Checking "+resolvedAPIURL, func(ctx context.Context) error {
			var herr error
			health, herr = shell.Health(ctx)
			return herr
		})
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Backend unreachable"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Backend status: %s", health.Status)))
		if healthDetails {
			if health.Message != "" {
				fmt.Fprintf(out, "   Message: %s\n", health.Message)
			}
			if health.Timestamp != "" {
				fmt.Fprintf(out, "   Server time: %s\n", health.Timestamp)
			}
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		if licensed {
			fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
			return nil
		}
		fmt.Fprintln(out, warningStyle.Render("⚠️  Backend reachable but no license key is set"))
		fmt.Fprintln(out, "   Run `ragchat license set <key>` before asking questions")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().BoolVar(&healthDetails, "details", false, "Show detailed diagnostic information")
}
