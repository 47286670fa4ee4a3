package commands

import (
	"fmt"

	"StrokeCollector/internal/collector"
	"StrokeCollector/internal/export"

	"github.com/spf13/cobra"
)

func newExportCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "export <archive> <out.pdf>",
		Short: "Render every canvas of an archive as a PDF page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			s, err := collector.ReadArchive(cmd.Context(), args[0], collector.WithLogger(logger))
			if err != nil {
				return err
			}
			if err := export.PDFFile(args[1], s.Canvases()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d pages to %s\n", s.Len(), args[1])
			return nil
		},
	}
}
