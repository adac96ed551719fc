package cmd

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/event"
	"github.com/Iron-Ham/sixhats/internal/export"
	"github.com/Iron-Ham/sixhats/internal/watch"
)

type watchOptions struct {
	file       string
	hats       string
	dialogMode bool
	format     string
	debounce   time.Duration
	archive    bool
	quiet      bool
}

func registerWatchCmd(parent *cobra.Command, g *globalOptions) {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the analysis whenever a topic file is saved",
		Long: `Watch a file whose content is the topic. The analysis runs once at start
and again every time the file is saved, printing each result to stdout.
Blank files are ignored. Stop with Ctrl-C.`,
		Args:        inputArgs(cobra.NoArgs),
		Annotations: map[string]string{payloadAnnotation: "json"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "topic file to watch")
	cmd.Flags().StringVar(&opts.hats, "hats", "", "hat order as a JSON array (default from config)")
	cmd.Flags().BoolVar(&opts.dialogMode, "dialog-mode", true, "run in dialog mode (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(export.FormatJSON), "output format: json, yaml, markdown")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "quiet period before a save triggers a run")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "store every session in the archive")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not render panels to stderr")
	_ = cmd.MarkFlagRequired("file")

	parent.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, g *globalOptions, opts *watchOptions) error {
	stdout := cmd.OutOrStdout()

	hats := g.cfg.Dialogue.DefaultOrder
	if opts.hats != "" {
		var err error
		if hats, err = parseHatsJSON(opts.hats); err != nil {
			return writeInputError(stdout, err)
		}
	}
	dialogMode := g.cfg.Dialogue.DialogMode
	if cmd.Flags().Changed("dialog-mode") {
		dialogMode = opts.dialogMode
	}
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return writeInputError(stdout, err)
	}

	rt, err := g.newRuntime(opts.archive)
	if err != nil {
		return writeInputError(stdout, err)
	}
	defer rt.Close()

	logger := rt.logger.WithComponent("watch")
	w, err := watch.New(opts.file,
		watch.WithDebounce(opts.debounce),
		watch.WithInitialRun(true),
		watch.WithLogger(logger),
	)
	if err != nil {
		return writeInputError(stdout, err)
	}

	bus := event.NewBus(event.WithLogger(logger))
	if console := rt.console(cmd.ErrOrStderr()); console != nil && !opts.quiet {
		console.Attach(bus, "")
	}

	return w.Run(cmd.Context(), func(ctx context.Context, topic string) {
		id := uuid.NewString()
		res, err := rt.orch.Analyze(ctx, dialogue.Request{
			SessionID:  id,
			Topic:      topic,
			Hats:       hats,
			DialogMode: dialogMode,
			Sink:       event.NewBusSink(bus, id),
		})
		if err != nil {
			// Input errors here come from the hat order, which cannot change
			// between saves; report and keep watching.
			if errors.IsInputError(err) {
				_ = writeInputError(stdout, err)
				return
			}
			logger.Error("analysis failed", "error", err.Error())
			return
		}
		rt.save(ctx, res)
		if err := export.Write(stdout, res, format); err != nil {
			logger.Error("write result failed", "error", err.Error())
		}
	})
}
