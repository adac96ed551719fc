package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sixhats/internal/event"
	"github.com/Iron-Ham/sixhats/internal/web"
)

func registerServeCmd(parent *cobra.Command, g *globalOptions) {
	var (
		addr    string
		archive bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and live event stream",
		Long: `Start an HTTP server for running and inspecting sessions.

Endpoints:
  POST /api/analyze          run a session: {"topic", "hats", "dialog_mode"}
  GET  /api/sessions         list sessions (archived ones when archiving is on)
  GET  /api/sessions/{id}    one session transcript
  GET  /api/dialogue-data    reply tree of the latest successful session
  GET  /api/events           websocket stream of session events (?session=<id>)
  GET  /healthz              liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.newRuntime(archive)
			if err != nil {
				return err
			}
			defer rt.Close()

			if addr == "" {
				addr = rt.cfg.Web.Addr
			}

			logger := rt.logger.WithComponent("web")
			bus := event.NewBus(event.WithLogger(logger))
			opts := []web.Option{
				web.WithLogger(logger),
				web.WithDefaults(rt.cfg.Dialogue.DefaultOrder, rt.cfg.Dialogue.DialogMode),
			}
			if rt.archive != nil {
				opts = append(opts, web.WithArchive(rt.archive))
			}

			srv := web.NewServer(rt.orch, bus, opts...)
			fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s\n", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default web.addr)")
	cmd.Flags().BoolVar(&archive, "archive", false, "store every session in the archive")
	parent.AddCommand(cmd)
}
