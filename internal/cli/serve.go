package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorview/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve floors, viewer sessions and the live patch stream over HTTP",
		Long: `Serve the HTTP API.

Clients create a viewer session per floor, feed it pointer input and viewport
sizes, and receive rendered frames and navigation intents. Light patches
posted to /api/v1/floors/{id}/patches are relayed over the configured
transport to every session and WebSocket stream of that floor.`,
		Example: `  floorview serve
  floorview serve --addr :9090 --transport redis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	src, err := c.openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	transport, err := c.openTransport(ctx, cfg)
	if err != nil {
		return err
	}
	defer transport.Close()

	return server.New(cfg, src, transport, c.Logger).Run(ctx)
}
