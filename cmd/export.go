package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/ragchat/internal"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all sessions to a file",
	Long: `Export every local session to a single timestamped file.

Formats: json (default), jsonl, md, yaml. Only json exports can be read back
with 'ragchat import'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		count := len(shell.Sessions())
		var path string
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Exporting %d session(s) to %s", count, outputDir), func(ctx context.Context) error {
			var eerr error
			path, eerr = shell.ExportSessions(outputDir, format)
			return eerr
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d session(s) written to %s", count, path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "json", "Export format (json, jsonl, md, yaml)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", ".", "Output directory")
}
