package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan/realtime"
)

type publishOptions struct {
	on  bool
	off bool
}

func (c *CLI) publishCommand() *cobra.Command {
	var opts publishOptions

	cmd := &cobra.Command{
		Use:   "publish <floor-id> <room-id>",
		Short: "Switch a room light on or off for every live viewer",
		Long: `Publish a light patch on a floor's realtime channel.

Viewers of the floor apply it as soon as it arrives. The memory transport only
reaches viewers in this process, so use redis or mqtt to reach others.`,
		Example: `  floorview publish ground kitchen --on --transport redis
  floorview publish ground hall --off --transport mqtt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.on == opts.off {
				return fmt.Errorf("exactly one of --on or --off is required")
			}
			return c.runPublish(cmd.Context(), cmd, args[0], realtime.LightPatch(args[1], opts.on))
		},
	}
	cmd.Flags().BoolVar(&opts.on, "on", false, "switch the light on")
	cmd.Flags().BoolVar(&opts.off, "off", false, "switch the light off")
	return cmd
}

func (c *CLI) runPublish(ctx context.Context, cmd *cobra.Command, floorID string, p realtime.Patch) error {
	if err := errors.ValidateFloorID(floorID); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	t, err := c.openTransport(ctx, cfg)
	if err != nil {
		return err
	}
	defer t.Close()

	pub, ok := t.(realtime.Publisher)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "transport %q cannot publish", cfg.Realtime.Transport)
	}
	if cfg.Realtime.Transport == realtime.TransportMemory {
		c.Logger.Warn("memory transport only reaches viewers in this process")
	}
	if err := pub.Publish(ctx, floorID, p); err != nil {
		return err
	}

	state := "off"
	if *p.LightOn {
		state = "on"
	}
	printer{w: cmd.OutOrStdout()}.success("%s/%s light %s", floorID, p.RoomID, state)
	return nil
}
