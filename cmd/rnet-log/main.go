// Command rnet-log views and analyzes Russound protocol capture files.
//
// Captures are written by rnet-ctl with the --capture flag or the capture
// config key.
//
// Usage:
//
//	rnet-log <command> [flags] <file.rlog>
//
// Commands:
//
//	view     View a capture in human-readable format
//	export   Export a capture to JSONL or CSV
//	filter   Filter a capture and write a new one
//	stats    Show statistics about a capture
//
// Examples:
//
//	# View only decoded RNET messages
//	rnet-log view --layer codec den.rlog
//
//	# View only volume changes
//	rnet-log view --kind ZONE_VOLUME den.rlog
//
//	# Export to CSV
//	rnet-log export --format csv -o den.csv den.rlog
//
//	# Keep the inbound RIO lines of one hour
//	rnet-log filter --protocol rio --direction in \
//	    --time-start 2026-03-01T10:00:00Z --time-end 2026-03-01T11:00:00Z \
//	    -o morning.rlog den.rlog
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rnetctl/rnet-go/cmd/rnet-log/commands"
)

// addFilterFlags binds the shared filter flags.
func addFilterFlags(cmd *cobra.Command, o *commands.FilterOptions) {
	fl := cmd.Flags()
	fl.StringVar(&o.Layer, "layer", "", "Filter by layer (transport, codec, client)")
	fl.StringVar(&o.Direction, "direction", "", "Filter by direction (in, out)")
	fl.StringVar(&o.Category, "category", "", "Filter by category (message, state, error)")
	fl.StringVar(&o.Protocol, "protocol", "", "Filter by protocol (rnet, rio)")
	fl.StringVar(&o.Kind, "kind", "", "Filter by message kind, e.g. ZONE_VOLUME")
	fl.StringVar(&o.Attribute, "attribute", "", "Filter by RIO attribute, e.g. volume")
	fl.StringVar(&o.ConnID, "conn-id", "", "Filter by connection ID")
	fl.StringVar(&o.TimeStart, "time-start", "", "Start time (RFC3339)")
	fl.StringVar(&o.TimeEnd, "time-end", "", "End time (RFC3339, exclusive)")
}

func viewCmd() *cobra.Command {
	var opts commands.FilterOptions
	cmd := &cobra.Command{
		Use:   "view [flags] <file.rlog>",
		Short: "View a capture in human-readable format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.Build()
			if err != nil {
				return err
			}
			return commands.RunView(args[0], filter, cmd.OutOrStdout())
		},
	}
	addFilterFlags(cmd, &opts)
	return cmd
}

func exportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export [flags] <file.rlog>",
		Short: "Export a capture to JSONL or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunExport(args[0], format, output)
		},
	}
	cmd.Flags().StringVar(&format, "format", "jsonl", "Output format (jsonl, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func filterCmd() *cobra.Command {
	var (
		opts   commands.FilterOptions
		output string
	)
	cmd := &cobra.Command{
		Use:   "filter [flags] -o <out.rlog> <file.rlog>",
		Short: "Filter a capture and write a new one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := commands.RunFilter(args[0], output, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Filtered %d events to %s\n", n, output)
			return nil
		},
	}
	addFilterFlags(cmd, &opts)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (required)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file.rlog>",
		Short: "Show statistics about a capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunStats(args[0], cmd.OutOrStdout())
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:           "rnet-log",
		Short:         "Russound protocol capture analyzer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(viewCmd(), exportCmd(), filterCmd(), statsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
