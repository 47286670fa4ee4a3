package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StrokeCollector/internal/net"

	"github.com/spf13/cobra"
)

func newFetchCommand(g *globals) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "fetch [host:port] <dest.srz>",
		Short: "Download an archive shared on the local network",
		Long: `Fetch downloads a shared archive to dest. Without an address it looks for
shares over mDNS and fetches from the first one that answers.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			dest := args[len(args)-1]
			var addr string
			if len(args) == 2 {
				addr = args[0]
			} else {
				peers, err := net.Browse(timeout)
				if err != nil {
					return err
				}
				if len(peers) == 0 {
					return errors.New("no shares found on the local network")
				}
				for _, p := range peers {
					fmt.Fprintf(cmd.OutOrStdout(), "Found %q at %s\n", p.Name, p.Addr)
				}
				addr = peers[0].Addr
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			hello, err := net.Fetch(ctx, addr, dest, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %q (%d bytes) to %s\n", hello.Name, hello.Size, dest)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "browse-timeout", 3*time.Second, "how long to wait for mDNS answers")
	return cmd
}
