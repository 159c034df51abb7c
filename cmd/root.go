package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/iksnae/ragchat/internal"
	"github.com/iksnae/ragchat/internal/app"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	dataDir    string
	apiURL     string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Chat with your documents through a RAG backend",
	Long: `ragchat is a command line client for a retrieval-augmented generation backend.

Conversations are kept locally as sessions. Each question is sent with the
full transcript of its session, and the backend answers from the documents
you uploaded.

Quick Start:
  ragchat license set <key>           # Store your license key
  ragchat docs upload notes.pdf       # Upload a document
  ragchat ask "What do my notes say?" # Ask a question
  ragchat session list                # List conversations
  ragchat export --format md          # Export as Markdown

Configuration is read from ~/.ragchat/config.toml and RAGCHAT_* environment
variables.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		internal.PrintError(fmt.Sprintf("Error: %v", err))
		if hint := app.HintFor(err, resolvedAPIURL); hint != "" {
			internal.PrintHint(hint)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.ragchat/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding local sessions and the license key")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
