package cmd

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/event"
	"github.com/Iron-Ham/sixhats/internal/export"
	"github.com/Iron-Ham/sixhats/internal/hat"
	"github.com/Iron-Ham/sixhats/internal/tui"
)

type analyzeOptions struct {
	topic      string
	hats       string
	dialogMode bool
	format     string
	tui        bool
	archive    bool
	quiet      bool
}

func registerAnalyzeCmd(parent *cobra.Command, g *globalOptions) {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [topic] [hats-json]",
		Short: "Run one Six Thinking Hats session",
		Long: `Run one session: every hat in the order answers the topic, and the
result is printed to stdout.

The hat order is a JSON array of hat names. Repeats are allowed. When it is
omitted, dialogue.default_order from the configuration is used.

Output is {"status", "conversation"} in dialog mode and
{"<hat>": {"analysis", "hat_color"}} in batch mode (--dialog-mode=false).
Panels describing the session are written to stderr while it runs.

Exit codes: 0 success, 1 the completion service failed part-way (the partial
conversation is still printed), 2 invalid input.

Examples:
  sixhats analyze --topic "Should we adopt a four-day week?"
  sixhats analyze "Pricing change" '["white","black","yellow"]'
  sixhats analyze -t "Office move" --dialog-mode=false --format yaml`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 2 {
				return errors.NewInvalidInputError("expected at most two arguments: topic and hats JSON").
					WithField("args").
					WithValue(len(args))
			}
			return nil
		},
		Annotations: map[string]string{payloadAnnotation: "json"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, g, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.topic, "topic", "t", "", "topic to analyze")
	cmd.Flags().StringVar(&opts.hats, "hats", "", `hat order as a JSON array, e.g. '["white","red"]'`)
	cmd.Flags().BoolVar(&opts.dialogMode, "dialog-mode", true, "link each message to the previous one and share context (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(export.FormatJSON), "output format: json, yaml, markdown")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show a live terminal view instead of panels")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "store the session in the archive")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not render panels to stderr")

	parent.AddCommand(cmd)
}

func runAnalyze(cmd *cobra.Command, g *globalOptions, opts *analyzeOptions, args []string) error {
	stdout := cmd.OutOrStdout()

	req, format, err := opts.request(cmd, g, args)
	if err != nil {
		return writeInputError(stdout, err)
	}

	rt, err := g.newRuntime(opts.archive)
	if err != nil {
		return writeInputError(stdout, err)
	}
	defer rt.Close()

	req.SessionID = uuid.NewString()
	bus := event.NewBus(event.WithLogger(rt.logger))
	req.Sink = event.NewBusSink(bus, req.SessionID)

	var res *dialogue.Result
	if opts.tui {
		res, err = runWithTUI(cmd, rt, bus, req)
	} else {
		if console := rt.console(cmd.ErrOrStderr()); console != nil && !opts.quiet {
			console.Attach(bus, req.SessionID)
		}
		res, err = rt.orch.Analyze(cmd.Context(), req)
	}
	if err != nil {
		if errors.IsInputError(err) {
			return writeInputError(stdout, err)
		}
		return err
	}

	rt.save(cmd.Context(), res)

	if err := export.Write(stdout, res, format); err != nil {
		return err
	}
	if !res.OK() {
		return &exitError{code: exitFailure, err: res.Err}
	}
	return nil
}

// request resolves flags and positional arguments into a session request.
func (o *analyzeOptions) request(cmd *cobra.Command, g *globalOptions, args []string) (dialogue.Request, export.Format, error) {
	topic := o.topic
	if len(args) > 0 {
		if topic != "" && topic != args[0] {
			return dialogue.Request{}, "", errors.NewInvalidInputError("topic given both as --topic and as an argument").
				WithField("topic")
		}
		topic = args[0]
	}
	if strings.TrimSpace(topic) == "" {
		return dialogue.Request{}, "", errors.NewInvalidInputError("a topic is required").WithField("topic")
	}

	rawHats := o.hats
	if len(args) > 1 {
		if rawHats != "" {
			return dialogue.Request{}, "", errors.NewInvalidInputError("hats given both as --hats and as an argument").
				WithField("hats")
		}
		rawHats = args[1]
	}
	hats := g.cfg.Dialogue.DefaultOrder
	if rawHats != "" {
		parsed, err := parseHatsJSON(rawHats)
		if err != nil {
			return dialogue.Request{}, "", err
		}
		hats = parsed
	}

	dialogMode := g.cfg.Dialogue.DialogMode
	if cmd.Flags().Changed("dialog-mode") {
		dialogMode = o.dialogMode
	}

	format, err := export.ParseFormat(o.format)
	if err != nil {
		return dialogue.Request{}, "", err
	}

	return dialogue.Request{Topic: topic, Hats: hats, DialogMode: dialogMode}, format, nil
}

// parseHatsJSON decodes a JSON array of hat names. Names are not validated
// here; the orchestrator reports unknown hats.
func parseHatsJSON(raw string) ([]string, error) {
	var hats []string
	if err := json.Unmarshal([]byte(raw), &hats); err != nil || hats == nil {
		return nil, errors.NewInvalidInputError("hats must be a JSON array of strings").
			WithField("hats").
			WithValue(raw)
	}
	return hats, nil
}

func runWithTUI(cmd *cobra.Command, rt *runtime, bus *event.Bus, req dialogue.Request) (*dialogue.Result, error) {
	stderr := cmd.ErrOrStderr()
	if !isTerminal(stderr) {
		return nil, errors.NewInvalidInputError("--tui needs stderr to be a terminal").WithField("tui")
	}
	order, err := hat.ParseOrder(req.Hats)
	if err != nil {
		return nil, err
	}

	app := tui.New(bus, req.SessionID, req.Topic, order, tui.WithOutput(stderr))
	return app.Run(cmd.Context(), func(ctx context.Context) (*dialogue.Result, error) {
		return rt.orch.Analyze(ctx, req)
	})
}

// writeInputError prints the error payload for a fatal input error and
// returns the matching exit error. Other errors pass through unchanged.
func writeInputError(w io.Writer, err error) error {
	if !errors.IsInputError(err) {
		return err
	}
	payload := &dialogue.Result{
		Status:       dialogue.StatusError,
		Conversation: []hat.Message{},
		Error:        err.Error(),
	}
	if werr := export.WriteJSON(w, payload); werr != nil {
		return werr
	}
	return &exitError{code: exitInputError, err: err}
}
