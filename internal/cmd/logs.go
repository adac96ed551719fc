package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/logging"
)

type logsOptions struct {
	sessionID string
	hat       string
	tail      int
	follow    bool
	level     string
	since     string
	grep      string
}

func registerLogsCmd(parent *cobra.Command, g *globalOptions) {
	opts := &logsOptions{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View the debug log",
		Long: `View and filter the sixhats debug log.

Examples:
  # Show the last 50 entries
  sixhats logs

  # Show everything one session logged
  sixhats logs -s 3f1c... -n 0

  # Only the red hat's warnings and errors from the last hour
  sixhats logs --hat red --level warn --since 1h

  # Follow new entries as they are written
  sixhats logs -f`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.sessionID, "session", "s", "", "only entries for this session ID")
	cmd.Flags().StringVar(&opts.hat, "hat", "", "only entries for this hat")
	cmd.Flags().IntVarP(&opts.tail, "tail", "n", 50, "number of entries to show (0 for all)")
	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "follow log output (like tail -f)")
	cmd.Flags().StringVar(&opts.level, "level", "", "minimum level (debug/info/warn/error)")
	cmd.Flags().StringVar(&opts.since, "since", "", "only entries newer than this duration (e.g. 1h, 30m)")
	cmd.Flags().StringVar(&opts.grep, "grep", "", "only entries whose message contains this text")

	parent.AddCommand(cmd)
}

func (o *logsOptions) filter(now time.Time) (logging.Filter, error) {
	f := logging.Filter{
		SessionID: o.sessionID,
		Hat:       o.hat,
		Contains:  o.grep,
	}
	if o.level != "" {
		f.Level = logging.ParseLevel(o.level)
	}
	if o.since != "" {
		d, err := time.ParseDuration(o.since)
		if err != nil {
			return logging.Filter{}, errors.NewInvalidInputError("invalid duration").
				WithField("since").
				WithValue(o.since).
				WithCause(err)
		}
		f.Since = now.Add(-d)
	}
	return f, nil
}

func runLogs(cmd *cobra.Command, g *globalOptions, opts *logsOptions) error {
	out := cmd.OutOrStdout()
	dir := g.cfg.Logging.ResolveDir()

	filter, err := opts.filter(time.Now())
	if err != nil {
		return err
	}

	if opts.follow {
		return followLogs(cmd, filepath.Join(dir, logging.FileName), filter)
	}

	entries, err := logging.ReadEntries(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(out, "No logs found in %s\n", dir)
			return nil
		}
		return err
	}

	entries = filter.Apply(entries)
	if opts.tail > 0 && len(entries) > opts.tail {
		entries = entries[len(entries)-opts.tail:]
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No matching log entries found.")
		return nil
	}
	return logging.WriteText(out, entries)
}

// followLogs prints entries appended to the log file until the command's
// context is cancelled.
func followLogs(cmd *cobra.Command, logPath string, filter logging.Filter) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(cmd.ErrOrStderr(), "Following logs... (Ctrl+C to stop)\n\n")

	ctx := cmd.Context()
	reader := bufio.NewReader(file)
	var partial strings.Builder
	for {
		chunk, err := reader.ReadString('\n')
		partial.WriteString(chunk)
		if err == io.EOF {
			// No new data, wait briefly and try again
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("error reading log file: %w", err)
		}

		line := partial.String()
		partial.Reset()
		entries, err := logging.ParseEntries(strings.NewReader(line))
		if err != nil {
			continue
		}
		if err := logging.WriteText(out, filter.Apply(entries)); err != nil {
			return err
		}
	}
}
