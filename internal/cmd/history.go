package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sixhats/internal/archive"
	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/export"
	"github.com/Iron-Ham/sixhats/internal/util"
)

func registerHistoryCmd(parent *cobra.Command, g *globalOptions) {
	var (
		limit  int
		format string
	)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List archived sessions",
		Long: `List sessions stored in the archive, newest first.

Sessions are archived when archive.enabled is set or a command runs with
--archive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := g.openArchive()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sessions, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "table":
				if len(sessions) == 0 {
					fmt.Fprintln(out, "No archived sessions.")
					return nil
				}
				return writeSessionTable(out, sessions)
			case "json":
				if sessions == nil {
					sessions = []archive.Summary{}
				}
				return export.WriteJSON(out, sessions)
			default:
				return errors.NewInvalidInputError("unsupported format").WithField("format").WithValue(format)
			}
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of sessions to list (0 for all)")
	historyCmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json")

	var showFormat string
	showCmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print an archived session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(showFormat)
			if err != nil {
				return err
			}
			store, err := g.openArchive()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			res, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return export.Write(cmd.OutOrStdout(), res, f)
		},
	}
	showCmd.Flags().StringVarP(&showFormat, "format", "f", string(export.FormatJSON), "output format: json, yaml, markdown")

	deleteCmd := &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Remove a session from the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := g.openArchive()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
			return nil
		},
	}

	historyCmd.AddCommand(showCmd, deleteCmd)
	parent.AddCommand(historyCmd)
}

func writeSessionTable(w io.Writer, sessions []archive.Summary) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Started", "Mode", "Status", "Messages", "Topic"})
	for _, s := range sessions {
		mode := "batch"
		if s.DialogMode {
			mode = "dialog"
		}
		t.AppendRow(table.Row{
			s.ID,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			mode,
			string(s.Status),
			s.Messages,
			util.Preview(s.Topic, 40),
		})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
