package cmd

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/export"
)

type batchOptions struct {
	topicsFile string
	hats       string
	dialogMode bool
	parallel   int
	archive    bool
}

func registerBatchCmd(parent *cobra.Command, g *globalOptions) {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze several topics in parallel",
		Long: `Analyze every topic in a file, one topic per line. Blank lines and lines
starting with # are skipped. "-" reads topics from stdin.

Sessions run concurrently (batch.max_parallel at a time), each with its own
hat histories. The output is a JSON array with one payload per topic, in file
order. The exit code is 1 if any session failed.`,
		Args:        inputArgs(cobra.NoArgs),
		Annotations: map[string]string{payloadAnnotation: "json"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.topicsFile, "topics-file", "", "file with one topic per line (- for stdin)")
	cmd.Flags().StringVar(&opts.hats, "hats", "", "hat order as a JSON array (default from config)")
	cmd.Flags().BoolVar(&opts.dialogMode, "dialog-mode", true, "run sessions in dialog mode (default from config)")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", 0, "sessions to run at once (default batch.max_parallel)")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "store every session in the archive")
	_ = cmd.MarkFlagRequired("topics-file")

	parent.AddCommand(cmd)
}

func runBatch(cmd *cobra.Command, g *globalOptions, opts *batchOptions) error {
	stdout := cmd.OutOrStdout()

	topics, err := readTopics(cmd.InOrStdin(), opts.topicsFile)
	if err != nil {
		return writeInputError(stdout, err)
	}

	hats := g.cfg.Dialogue.DefaultOrder
	if opts.hats != "" {
		if hats, err = parseHatsJSON(opts.hats); err != nil {
			return writeInputError(stdout, err)
		}
	}
	dialogMode := g.cfg.Dialogue.DialogMode
	if cmd.Flags().Changed("dialog-mode") {
		dialogMode = opts.dialogMode
	}
	parallel := g.cfg.Batch.MaxParallel
	if opts.parallel > 0 {
		parallel = opts.parallel
	}

	rt, err := g.newRuntime(opts.archive)
	if err != nil {
		return writeInputError(stdout, err)
	}
	defer rt.Close()

	reqs := make([]dialogue.Request, len(topics))
	for i, topic := range topics {
		reqs[i] = dialogue.Request{Topic: topic, Hats: hats, DialogMode: dialogMode}
	}

	rt.logger.Info("batch started", "topics", len(topics), "parallel", parallel)
	results, err := rt.orch.RunMany(cmd.Context(), reqs, parallel)
	if err != nil {
		return writeInputError(stdout, err)
	}

	payloads := make([]any, len(results))
	failed := 0
	for i, res := range results {
		rt.save(cmd.Context(), res)
		payloads[i] = export.Payload(res)
		if !res.OK() {
			failed++
		}
	}

	if err := export.WriteJSON(stdout, payloads); err != nil {
		return err
	}
	if failed > 0 {
		return &exitError{code: exitFailure, err: errors.New("one or more sessions failed")}
	}
	return nil
}

// readTopics reads one topic per line from path, or from stdin for "-".
func readTopics(stdin io.Reader, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.NewInvalidInputError("cannot open topics file").
				WithField("topics-file").
				WithCause(err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var topics []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		topics = append(topics, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewInvalidInputError("cannot read topics").WithField("topics-file").WithCause(err)
	}
	if len(topics) == 0 {
		return nil, errors.NewInvalidInputError("no topics found").WithField("topics-file").WithValue(path)
	}
	return topics, nil
}
