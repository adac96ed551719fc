package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/export"
	"github.com/Iron-Ham/sixhats/internal/hat"
)

func registerHatsCmd(parent *cobra.Command, g *globalOptions) {
	var format string

	cmd := &cobra.Command{
		Use:   "hats",
		Short: "List the six hats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			personas, err := hat.LoadPersonas(g.cfg.Dialogue.PersonasFile)
			if err != nil {
				return err
			}
			list := make([]hat.Persona, 0, len(hat.DefaultOrder))
			for _, id := range hat.DefaultOrder {
				p, _ := personas.Get(id)
				list = append(list, p)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "table":
				_, err = fmt.Fprintln(out, export.HatTable(list, export.ASCII))
			case "markdown", "md":
				_, err = fmt.Fprintln(out, export.HatTable(list, export.Markdown))
			case "json":
				err = export.WriteJSON(out, list)
			default:
				err = errors.NewInvalidInputError("unsupported format").WithField("format").WithValue(format)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, markdown, json")
	parent.AddCommand(cmd)
}
