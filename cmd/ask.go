package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/ragchat/internal"
	"github.com/iksnae/ragchat/internal/app"
	"github.com/spf13/cobra"
)

var (
	askSession   string
	askNew       bool
	askDocuments []string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question in the active session",
	Long: `Send a question to the backend together with the transcript of the active
session and print the answer.

A session is started when none is active. The question is read from standard
input when no argument is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read question: %w", err)
			}
			question = string(data)
		}
		question = strings.TrimSpace(question)

		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		var opts []app.SendOption
		switch {
		case askNew:
			opts = append(opts, app.InNewSession())
		case askSession != "":
			opts = append(opts, app.InSession(askSession))
		}

		var reply internal.ChatMessage
		err = internal.ShowProgress(cmd.Context(), "Thinking...", func(ctx context.Context) error {
			var serr error
			reply, serr = shell.SendMessage(ctx, question, askDocuments, opts...)
			return serr
		})
		if err != nil {
			return err
		}

		displayMessage(cmd.OutOrStdout(), 0, reply, 0)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "Session to ask in (id or unique prefix)")
	askCmd.Flags().BoolVar(&askNew, "new", false, "Start a new session for this question")
	askCmd.Flags().StringArrayVarP(&askDocuments, "doc", "d", nil, "Restrict retrieval to this document (repeatable)")
}
