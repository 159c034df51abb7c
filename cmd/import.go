package cmd

import (
	"fmt"

	"github.com/iksnae/ragchat/internal"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all sessions with a JSON export",
	Long: `Replace every local session with the sessions in a file written by
'ragchat export --format json'.

The whole file is validated first. If any record is invalid nothing is
changed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		count, err := shell.ImportSessions(args[0])
		if err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Imported %d session(s) from %s", count, args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
