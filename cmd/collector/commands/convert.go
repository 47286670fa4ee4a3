package commands

import (
	"fmt"

	"StrokeCollector/internal/collector"

	"github.com/spf13/cobra"
)

func newConvertCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <src> <dst>",
		Short: "Rewrite an archive as a zip or a directory",
		Long: `Convert loads the archive at src and saves it to dst. A dst ending in .srz
is written as a zip file, anything else as a directory of stroke files.`,
		Args: cobra.ExactArgs(2),
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
			if err := s.SaveAs(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[1])
			return nil
		},
	}
}
