// Command rnet-ctl monitors and controls Russound audio systems over the
// binary RNET protocol (TCP serial bridge or UDP broadcast) or the RIO text
// protocol.
//
// Usage:
//
//	rnet-ctl [flags] <command>
//
// Commands:
//
//	monitor     Print every message from the system, reconnecting on loss
//	discover    Fetch and cache zone and source names
//	send        Send one command, e.g. "send volume 1 2 30"
//	shell       Interactive command prompt
//	version     Print version information
//
// Examples:
//
//	# Watch a serial bridge
//	rnet-ctl --host 192.168.1.50 --port 4999 monitor
//
//	# Switch zone 3 of controller 1 to source 2 over RIO
//	rnet-ctl --host mca66.local --protocol RIO send source 1 3 2
//
//	# Use the second system of a config file and record a capture
//	rnet-ctl --config rnet.yaml --system 2 --capture den.rlog monitor
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags override the config file.
type globalFlags struct {
	configPath string
	system     int

	host       string
	port       int
	nwprotocol string
	protocol   string

	logLevel    string
	logFile     string
	capture     string
	metricsAddr string
	cache       string
}

// settings loads the config file, applies flag overrides and returns the
// selected system.
func (f *globalFlags) settings() (*Config, *ControllerConfig, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, nil, err
	}

	// --host alone is enough to describe a system.
	if len(cfg.Controllers) == 0 && f.host != "" {
		cfg.Controllers = append(cfg.Controllers, ControllerConfig{})
	}
	if f.system >= 1 && f.system <= len(cfg.Controllers) {
		c := &cfg.Controllers[f.system-1]
		if f.host != "" {
			c.IPAddr = f.host
		}
		if f.port != 0 {
			c.Port = &f.port
		}
		if f.nwprotocol != "" {
			c.NWProtocol = f.nwprotocol
		}
		if f.protocol != "" {
			c.Protocol = f.protocol
		}
	}

	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{f.logLevel, &cfg.LogLevel},
		{f.logFile, &cfg.LogFile},
		{f.capture, &cfg.Capture},
		{f.metricsAddr, &cfg.MetricsAddr},
		{f.cache, &cfg.Cache},
	} {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	system, err := cfg.System(f.system)
	if err != nil {
		return nil, nil, err
	}
	return cfg, system, nil
}

func rootCmd() *cobra.Command {
	f := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "rnet-ctl",
		Short: "Monitor and control Russound audio systems",
		Long: `rnet-ctl talks to Russound multi-zone controllers.

Binary RNET is spoken over a TCP serial bridge or UDP broadcast. RIO is the
line-based text protocol of newer controllers on TCP port 9621. Zone and
source names fetched with "discover" are cached and used for display.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "Configuration file path")
	pf.IntVar(&f.system, "system", 1, "System entry of the config file to use")
	pf.StringVar(&f.host, "host", "", "Controller address (overrides ip_addr)")
	pf.IntVar(&f.port, "port", 0, "Controller port (overrides port)")
	pf.StringVar(&f.nwprotocol, "nwprotocol", "", "Network protocol: TCP or UDP")
	pf.StringVar(&f.protocol, "protocol", "", "Russound protocol: RNET or RIO")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&f.logFile, "log-file", "", "Write logs to a rotated file instead of stderr")
	pf.StringVar(&f.capture, "capture", "", "Record protocol traffic to an .rlog file")
	pf.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	pf.StringVar(&f.cache, "cache", "", "Zone and source name cache file")

	cmd.AddCommand(
		monitorCmd(f),
		discoverCmd(f),
		sendCmd(f),
		shellCmd(f),
		versionCmd(),
	)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
