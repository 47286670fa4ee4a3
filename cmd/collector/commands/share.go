package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"StrokeCollector/internal/net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newShareCommand(g *globals) *cobra.Command {
	var port int
	var name string
	cmd := &cobra.Command{
		Use:   "share <archive.srz>",
		Short: "Serve an archive to collectors on the local network",
		Long: `Share serves the archive over a websocket and advertises it over mDNS until
interrupted. The file is re-read for every peer, so saving over it from the
collector window shares the new strokes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if !cmd.Flags().Changed("port") {
				port = cfg.Share.Port
			}
			if !cmd.Flags().Changed("name") {
				name = cfg.Share.Name
			}

			srv, err := net.NewServer(args[0], name, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mdnsServer, err := net.Advertise(srv.Name(), port)
			if err != nil {
				logger.Warn("mDNS advertising unavailable", zap.Error(err))
			} else {
				defer mdnsServer.Shutdown()
			}

			if ip, err := net.GetOutgoingIP(); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Sharing %s as %q at %s:%d\n", args[0], srv.Name(), ip, port)
			}
			return srv.ListenAndServe(ctx, port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8888, "port to listen on")
	cmd.Flags().StringVar(&name, "name", "", "share name (defaults to the archive name)")
	return cmd
}
