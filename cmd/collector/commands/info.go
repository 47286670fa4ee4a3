package commands

import (
	"fmt"

	"StrokeCollector/internal/archive"
	"StrokeCollector/internal/collector"

	"github.com/spf13/cobra"
)

func newInfoCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "info <archive>",
		Short: "Show the canvases and strokes in an archive",
		Args:  cobra.ExactArgs(1),
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
			r, err := archive.Open(args[0])
			if err != nil {
				return err
			}
			format := r.Format()
			r.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Archive: %s (%s)\n", args[0], format)
			fmt.Fprintf(out, "Session: %s\n", s.ID())
			for i, c := range s.Canvases() {
				points := 0
				for _, st := range c.Strokes() {
					points += st.Len()
				}
				fmt.Fprintf(out, "Canvas %d: %d strokes, %d points, bbox %s\n", i, c.Len(), points, c.BBox())
			}
			return nil
		},
	}
}
