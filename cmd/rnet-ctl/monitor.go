package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rnetctl/rnet-go/pkg/rio"
	"github.com/rnetctl/rnet-go/pkg/transport"
)

// defaultWatchZones is the zone count watched over RIO when no table is
// cached yet.
const defaultWatchZones = 6

func monitorCmd(f *globalFlags) *cobra.Command {
	var zones int

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print every message from the system",
		Long: `Connect to the system and print every decoded message until interrupted.
The connection is re-established with exponential backoff when it drops.

Over RIO the system and the zones of the configured controller are watched
so the controller pushes changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, system, err := f.settings()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, system, cmd.OutOrStdout(), nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.conn.Kind() == transport.TextStream {
				a.onConnect = func() { a.watch(system.Controller, zones) }
			}
			return a.run(cmd.Context(), true, func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			})
		},
	}

	cmd.Flags().IntVar(&zones, "zones", 0, "Zones to watch over RIO (default: cached zone count)")
	return cmd
}

// watch subscribes to system and zone changes.
func (a *app) watch(controller, zones int) {
	if zones == 0 {
		zones = defaultWatchZones
		if t := a.names[controller]; t != nil && t.ZoneCount > 0 {
			zones = t.ZoneCount
		}
	}

	cmds := []string{rio.WatchSystem(true)}
	for z := 1; z <= zones; z++ {
		cmds = append(cmds, rio.Watch(rio.ZoneAddress(controller, z).String(), true))
	}
	for _, c := range cmds {
		if err := a.conn.SendLine(c); err != nil {
			a.logger.Warn("watch", "command", c, "error", err)
			return
		}
	}
	a.logger.Debug("watching", "controller", controller, "zones", zones)
}
