package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/ragchat/internal"
	"github.com/spf13/cobra"
)

var sessionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List sessions",
	Long:    `List all local chat sessions, most recently created first.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, cleanup, err := openShell()
		if err != nil {
			return err
		}
		defer cleanup()

		activeID := ""
		if cur := shell.Current(); cur != nil {
			activeID = cur.ID
		}
		displaySessions(cmd.OutOrStdout(), shell.Sessions(), activeID, time.Now())
		return nil
	},
}

func displaySessions(out io.Writer, sessions []internal.ChatSession, activeID string, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📋 No sessions found"))
		fmt.Fprintln(out, idStyle.Render("💡 Tip: Start one with `ragchat session new` or just `ragchat ask`"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d session(s)", len(sessions))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, " \t"+titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Updated")+"\t"+titleStyle.Render("Last message")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, session := range sessions {
		marker := " "
		if session.ID == activeID {
			marker = activeStyle.Render("*")
		}

		name := session.Name
		if name == "" {
			name = "Untitled"
		}
		name = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Render(internal.TruncateRunes(name, 40))

		msgCount := countStyle.Render(strconv.Itoa(len(session.Messages)))
		updated := dateStyle.Render(formatRelative(session.UpdatedAt, now))
		preview := dateStyle.Render(session.Preview(40))

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n", marker, idStyle.Render(shortID(session.ID)), name, msgCount, updated, preview)
	}

	_ = w.Flush()
	fmt.Fprintln(out)
	fmt.Fprintln(out, idStyle.Render("💡 Tip: Use the ID (e.g., ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(shortID(sessions[0].ID))+
		idStyle.Render(") with `ragchat session show <id>`"))
}

func init() {
	sessionCmd.AddCommand(sessionListCmd)
}
