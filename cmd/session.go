package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/ragchat/internal"
	"github.com/spf13/cobra"
)

var (
	sessionDeletePurge bool

	settingsModel       string
	settingsTemperature float64
	settingsSearchType  string
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sessions"},
	Short:   "Manage chat sessions",
	Long: `Create, inspect and manage local chat sessions.

Session ids may be abbreviated to any unique prefix, as printed by
'ragchat session list'.`,
}

var sessionNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Start a new session and make it active",
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		created := shell.NewSession(strings.Join(args, " "))
		internal.PrintSuccess(fmt.Sprintf("Created session %q (%s)", created.Name, created.ID))
		return nil
	},
}

var sessionUseCmd = &cobra.Command{
	Use:   "use <session-id>",
	Short: "Make a session active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		session, err := shell.SelectSession(args[0])
		if err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Active session: %s (%s)", session.Name, shortID(session.ID)))
		return nil
	},
}

var sessionRenameCmd = &cobra.Command{
	Use:   "rename <session-id> <name>",
	Short: "Rename a session",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		session, err := shell.ResolveSession(args[0])
		if err != nil {
			return err
		}
		updated, err := shell.RenameSession(session.ID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Renamed session %s to %q", shortID(updated.ID), updated.Name))
		return nil
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:     "delete <session-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a session",
	Long: `Delete a local session.

With --purge-documents the backend documents uploaded into the session are
deleted first. If that fails the session is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		session, err := shell.ResolveSession(args[0])
		if err != nil {
			return err
		}
		if err := shell.DeleteSession(cmd.Context(), session.ID, sessionDeletePurge); err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Deleted session %q", session.Name))
		return nil
	},
}

var sessionSettingsCmd = &cobra.Command{
	Use:   "settings [session-id]",
	Short: "Show or change a session's model settings",
	Long: `Show or change the model, temperature and search type of a session.

Without flags the current settings are printed. The active session is used
when no id is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		ref := ""
		if len(args) == 1 {
			ref = args[0]
		}
		session, err := shell.ResolveSession(ref)
		if err != nil {
			return err
		}

		var patch internal.SettingsPatch
		if cmd.Flags().Changed("model") {
			patch.Model = &settingsModel
		}
		if cmd.Flags().Changed("temperature") {
			patch.Temperature = &settingsTemperature
		}
		if cmd.Flags().Changed("search-type") {
			st := internal.SearchType(strings.ToLower(settingsSearchType))
			patch.SearchType = &st
		}

		if !patch.IsEmpty() {
			session, err = shell.UpdateSettings(session.ID, patch)
			if err != nil {
				return err
			}
			internal.PrintSuccess(fmt.Sprintf("Updated settings of %s", shortID(session.ID)))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(session.Name))
		fmt.Fprintf(out, "  Model:       %s\n", session.Settings.Model)
		fmt.Fprintf(out, "  Temperature: %.2f\n", session.Settings.Temperature)
		fmt.Fprintf(out, "  Search type: %s\n", session.Settings.SearchType)
		return nil
	},
}

var sessionStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics across all sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		stats := shell.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("📊 Session statistics"))
		fmt.Fprintf(out, "  Sessions:              %s\n", countStyle.Render(fmt.Sprint(stats.TotalSessions)))
		fmt.Fprintf(out, "  Messages:              %s\n", countStyle.Render(fmt.Sprint(stats.TotalMessages)))
		fmt.Fprintf(out, "  Messages per session:  %.2f\n", stats.AverageMessagesPerChat)
		if stats.OldestSession != nil {
			fmt.Fprintf(out, "  Oldest session:        %s\n", dateStyle.Render(stats.OldestSession.Local().Format("2006-01-02 15:04")))
		}
		if stats.NewestSession != nil {
			fmt.Fprintf(out, "  Newest session:        %s\n", dateStyle.Render(stats.NewestSession.Local().Format("2006-01-02 15:04")))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionNewCmd, sessionUseCmd, sessionRenameCmd, sessionDeleteCmd, sessionSettingsCmd, sessionStatsCmd)

	sessionDeleteCmd.Flags().BoolVar(&sessionDeletePurge, "purge-documents", false, "Also delete the session's documents on the backend")

	sessionSettingsCmd.Flags().StringVar(&settingsModel, "model", "", "Model name")
	sessionSettingsCmd.Flags().Float64Var(&settingsTemperature, "temperature", 0, "Sampling temperature between 0 and 1")
	sessionSettingsCmd.Flags().StringVar(&settingsSearchType, "search-type", "", "Search type: hybrid, semantic or keyword")
}
