package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sixhats/internal/mcp"
)

func registerMCPCmd(parent *cobra.Command, g *globalOptions) {
	var archive bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server over stdio",
		Long: `Start an MCP server over stdin/stdout exposing two tools:

  analyze_topic   run a session on a topic
  list_hats       list the six hats

Logs go to the log file, never to stdout, which carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.newRuntime(archive)
			if err != nil {
				return err
			}
			defer rt.Close()

			opts := []mcp.Option{
				mcp.WithLogger(rt.logger.WithComponent("mcp")),
				mcp.WithDefaults(rt.cfg.Dialogue.DefaultOrder, rt.cfg.Dialogue.DialogMode),
			}
			if rt.archive != nil {
				opts = append(opts, mcp.WithRecorder(rt.archive))
			}
			return mcp.NewServer(rt.orch, Version, opts...).Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&archive, "archive", false, "store every session in the archive")
	parent.AddCommand(cmd)
}
