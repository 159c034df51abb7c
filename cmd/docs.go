package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/iksnae/ragchat/internal"
	"github.com/iksnae/ragchat/internal/api"
	"github.com/spf13/cobra"
)

var (
	docsListSession   string
	docsDeleteFile    string
	docsDeleteSession string
)

var docsCmd = &cobra.Command{
	Use:     "docs",
	Aliases: []string{"documents"},
	Short:   "Manage documents on the backend",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		var list *api.DocumentList
		err = internal.ShowProgress(cmd.Context(), "Fetching documents", func(ctx context.Context) error {
			var lerr error
			list, lerr = shell.ListDocuments(ctx)
			return lerr
		})
		if err != nil {
			return err
		}

		files := list.Files
		if docsListSession != "" {
			session, err := shell.ResolveSession(docsListSession)
			if err != nil {
				return err
			}
			files = list.FilesForSession(session.ID)
		}
		displayDocuments(cmd.OutOrStdout(), files, list.TotalDocuments)
		return nil
	},
}

func displayDocuments(out io.Writer, files []api.DocumentFile, totalChunks int) {
	if len(files) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📄 No documents found"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📄 %d file(s), %d chunk(s) in total", len(files), totalChunks)))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("File")+"\t"+titleStyle.Render("Chunks")+"\t"+titleStyle.Render("Type")+"\t"+titleStyle.Render("Uploaded")+"\t"+titleStyle.Render("Sessions")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))
	for _, f := range files {
		sessions := make([]string, 0, len(f.Sessions))
		for _, id := range f.Sessions {
			sessions = append(sessions, shortID(id))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			internal.TruncateRunes(f.FileName, 40),
			countStyle.Render(strconv.Itoa(f.TotalChunks)),
			dateStyle.Render(f.ContentType),
			dateStyle.Render(f.UploadedAt),
			idStyle.Render(strings.Join(sessions, ", ")))
	}
	_ = w.Flush()
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload documents into the active session",
	Long: `Upload one or more files to the backend. The files are linked to the active
session, if any.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		for _, path := range args {
			var resp *api.UploadResponse
			err := internal.ShowProgress(cmd.Context(), "Uploading "+path, func(ctx context.Context) error {
				var uerr error
				resp, uerr = shell.UploadDocument(ctx, path)
				return uerr
			})
			if err != nil {
				return err
			}
			msg := resp.Message
			if msg == "" {
				msg = fmt.Sprintf("Uploaded %s", path)
			}
			internal.PrintSuccess(fmt.Sprintf("%s (%d chunk(s) processed)", msg, resp.DocumentsProcessed))
		}
		return nil
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete documents by file name or by session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (docsDeleteFile == "") == (docsDeleteSession == "") {
			return internal.NewValidationError("flags", "exactly one of --file or --session is required")
		}

		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		var resp *api.DeleteResponse
		if docsDeleteFile != "" {
			err = internal.ShowProgress(cmd.Context(), "Deleting "+docsDeleteFile, func(ctx context.Context) error {
				var derr error
				resp, derr = shell.DeleteFileDocuments(ctx, docsDeleteFile)
				return derr
			})
		} else {
			session, rerr := shell.ResolveSession(docsDeleteSession)
			if rerr != nil {
				return rerr
			}
			err = internal.ShowProgress(cmd.Context(), "Deleting documents of "+shortID(session.ID), func(ctx context.Context) error {
				var derr error
				resp, derr = shell.DeleteSessionDocuments(ctx, session.ID)
				return derr
			})
		}
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Deleted %d document chunk(s)", resp.Count()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsListCmd, docsUploadCmd, docsDeleteCmd)

	docsListCmd.Flags().StringVarP(&docsListSession, "session", "s", "", "Only show documents linked to this session")
	docsDeleteCmd.Flags().StringVar(&docsDeleteFile, "file", "", "Delete every document with this file name")
	docsDeleteCmd.Flags().StringVarP(&docsDeleteSession, "session", "s", "", "Delete every document linked to this session")
}
