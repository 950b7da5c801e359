package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

func sendCmd(f *globalFlags) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "send <command> [args...]",
		Short: "Send one command",
		Long:  "Send one command and print what the system answers within --wait.\n\n" + usage(),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, system, err := f.settings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			a, err := newApp(cfg, system, out, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			act, err := parseCommand(a.conn.Kind(), args)
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), false, func(ctx context.Context) error {
				if err := a.execute(ctx, act, out); err != nil {
					return err
				}
				select {
				case <-time.After(wait):
				case <-ctx.Done():
				}
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 500*time.Millisecond, "How long to print responses after sending")
	return cmd
}

// execute performs an encoded command. Query results are written to out.
func (a *app) execute(ctx context.Context, act action, out io.Writer) error {
	switch {
	case act.frame != nil:
		return a.conn.Send(act.frame)
	case act.query != nil:
		l, err := a.conn.Get(ctx, act.query.path, act.query.attr)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, a.names.formatLine(l))
		return nil
	default:
		return a.conn.SendLine(act.line)
	}
}
