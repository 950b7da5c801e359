package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rnetctl/rnet-go/pkg/rnet"
	"github.com/rnetctl/rnet-go/pkg/transport"
)

func discoverCmd(f *globalFlags) *cobra.Command {
	var (
		controller int
		refresh    bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Fetch zone and source names",
		Long: `Request the zone and source tables of a controller and store them in the
cache. Over RIO every controller of the system is discovered.

A cached table younger than cache_max_age is printed without contacting the
system unless --refresh is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, system, err := f.settings()
			if err != nil {
				return err
			}
			if controller == 0 {
				controller = system.Controller
			}
			out := cmd.OutOrStdout()

			a, err := newApp(cfg, system, out, transport.HandlerFuncs{})
			if err != nil {
				return err
			}
			defer a.Close()

			if !refresh {
				if t, ok := a.cached(controller); ok {
					fmt.Fprint(out, formatTable(t))
					return nil
				}
			}

			return a.run(cmd.Context(), false, func(ctx context.Context) error {
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				tables, err := a.discover(ctx, controller)
				if err != nil {
					return err
				}
				for _, t := range tables {
					if err := a.remember(t); err != nil {
						a.logger.Warn("save cache", "error", err)
					}
					fmt.Fprint(out, formatTable(t))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&controller, "controller", 0, "Controller to query (default: configured controller)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cache")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up after this long")
	return cmd
}

// discover fetches the controller's table, or every table over RIO.
func (a *app) discover(ctx context.Context, controller int) ([]*rnet.ZoneSourceTable, error) {
	if a.conn.Kind() != transport.TextStream {
		t, err := a.conn.RequestConfig(ctx, controller)
		if err != nil {
			return nil, err
		}
		return []*rnet.ZoneSourceTable{t}, nil
	}

	sys, err := a.conn.Discover(ctx)
	if err != nil {
		return nil, err
	}
	var tables []*rnet.ZoneSourceTable
	for _, c := range sys.Controllers {
		if t, ok := sys.Table(c.Controller); ok {
			tables = append(tables, t)
		}
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: %d", transport.ErrNoController, controller)
	}
	return tables, nil
}
