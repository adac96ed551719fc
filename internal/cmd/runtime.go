package cmd

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/Iron-Ham/sixhats/internal/archive"
	"github.com/Iron-Ham/sixhats/internal/completion"
	"github.com/Iron-Ham/sixhats/internal/config"
	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/hat"
	"github.com/Iron-Ham/sixhats/internal/logging"
	"github.com/Iron-Ham/sixhats/internal/render"
)

// runtime is the resolved process-wide state a command runs with. Only the
// completion client handle reaches the orchestrator; credentials and log
// destinations stay here.
type runtime struct {
	cfg      *config.Config
	logger   *logging.Logger
	personas hat.Personas
	orch     *dialogue.Orchestrator
	archive  *archive.Store
}

// newLogger opens the configured log file, or discards logs when logging is
// disabled.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLogger(cfg.Logging.ResolveDir(), logging.ParseLevel(cfg.Logging.Level), logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// newRuntime builds the orchestrator from configuration. The archive is
// opened when openArchive is set or archiving is enabled in configuration.
func (g *globalOptions) newRuntime(openArchive bool) (*runtime, error) {
	cfg := g.cfg

	personas, err := hat.LoadPersonas(cfg.Dialogue.PersonasFile)
	if err != nil {
		return nil, err
	}

	client, err := completion.New(completion.Settings{
		Provider:  cfg.Completion.Provider,
		Model:     cfg.Completion.Model,
		MaxTokens: cfg.Completion.MaxTokens,
		Timeout:   cfg.Completion.Timeout(),
		BaseURL:   cfg.Completion.BaseURL,
		APIKey:    cfg.Completion.APIKey,
	})
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:      cfg,
		logger:   logger,
		personas: personas,
		orch: dialogue.New(client,
			dialogue.WithPersonas(personas),
			dialogue.WithLogger(logger),
			dialogue.WithContextWindow(cfg.Dialogue.ContextWindow),
		),
	}

	if openArchive || cfg.Archive.Enabled {
		store, err := archive.Open(cfg.Archive.ResolvePath())
		if err != nil {
			_ = logger.Close()
			return nil, err
		}
		rt.archive = store
	}
	return rt, nil
}

// openArchive opens the archive without building a completion client, for
// commands that only read past sessions.
func (g *globalOptions) openArchive() (*archive.Store, error) {
	return archive.Open(g.cfg.Archive.ResolvePath())
}

// Close releases the archive and log file.
func (rt *runtime) Close() {
	if rt.archive != nil {
		_ = rt.archive.Close()
	}
	_ = rt.logger.Close()
}

// save archives res when an archive is open. Failures are logged; the
// session result is still printed.
func (rt *runtime) save(ctx context.Context, res *dialogue.Result) {
	if rt.archive == nil {
		return
	}
	// The session already ran; an interrupt must not lose it.
	if err := rt.archive.Save(context.WithoutCancel(ctx), res); err != nil {
		rt.logger.WithSession(res.SessionID).Warn("archive save failed", "error", err.Error())
	}
}

// console builds the stderr presentation sink, or nil when rendering is off.
func (rt *runtime) console(w io.Writer) *render.Console {
	if !rt.cfg.Render.Enabled {
		return nil
	}
	return render.NewConsole(w,
		render.WithWidth(renderWidth(rt.cfg.Render.Width, w)),
		render.WithMarkdown(rt.cfg.Render.Markdown),
		render.WithPreview(rt.cfg.Render.SummaryPreview),
		render.WithPersonas(rt.personas),
		render.WithLogger(rt.logger),
	)
}

// renderWidth returns the configured width, else the terminal width of w,
// else 0 so the console applies its default.
func renderWidth(configured int, w io.Writer) int {
	if configured > 0 {
		return configured
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			return width
		}
	}
	return 0
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
