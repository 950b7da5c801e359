package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rnetctl/rnet-go/pkg/transport"
)

// Config is the rnet-ctl configuration file.
//
//	controllers:
//	  - ip_addr: 192.168.92.38
//	    port: 5000
//	    nwprotocol: TCP
//	    protocol: RNET
//	log_level: info
//	capture: /var/log/rnet/den.rlog
type Config struct {
	Controllers []ControllerConfig `yaml:"controllers"`

	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
	Capture     string `yaml:"capture"`
	MetricsAddr string `yaml:"metrics_addr"`

	// Cache is the JSON file holding discovered zone and source tables.
	Cache       string        `yaml:"cache"`
	CacheMaxAge time.Duration `yaml:"cache_max_age"`
}

// ControllerConfig is one Russound system. The controllers are numbered in
// file order starting at 1.
type ControllerConfig struct {
	IPAddr     string `yaml:"ip_addr"`
	Port       *int   `yaml:"port"`
	NWProtocol string `yaml:"nwprotocol"`
	Protocol   string `yaml:"protocol"`

	// LocalAddr is the UDP bind address. Defaults to 0.0.0.0:<port>.
	LocalAddr string `yaml:"local_addr"`

	// Controller is the controller number commands address by default.
	Controller int `yaml:"controller"`

	VerifyChecksum *bool `yaml:"verify_checksum"`
}

// Network and controller protocols.
const (
	NetworkTCP   = "TCP"
	NetworkUDP   = "UDP"
	ProtocolRNET = "RNET"
	ProtocolRIO  = "RIO"
)

// Validation errors. The messages are the operator-facing notices.
var (
	ErrNetworkProtocol  = errors.New(`Network protocol invalid, please use "TCP" or "UDP"`)
	ErrRussoundProtocol = errors.New(`Russound protocol invalid, please use "RNET" or "RIO"`)
	ErrIPAddress        = errors.New("Please configure the IP address")
	ErrPort             = errors.New("Please configure the port number")
	ErrTextOverUDP      = errors.New(`RIO requires network protocol "TCP"`)
	ErrNoControllers    = errors.New("no controller configured")
	ErrLogLevel         = errors.New(`log level invalid, please use "debug", "info", "warn" or "error"`)
)

// defaultConfig is used when no file is given.
func defaultConfig() *Config {
	return &Config{LogLevel: "info", Cache: defaultCachePath(), CacheMaxAge: 24 * time.Hour}
}

// defaultCachePath is rnet-ctl/tables.json in the user cache directory, or
// empty when there is none.
func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "rnet-ctl", "tables.json")
}

// loadConfig reads a YAML config. An empty path returns the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Relative file paths are relative to the config file.
	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.LogFile, &cfg.Capture, &cfg.Cache} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return cfg, nil
}

// applyDefaults fills unset controller fields: TCP, RNET and port 5000, or
// 9621 for RIO.
func (c *ControllerConfig) applyDefaults() {
	if c.NWProtocol == "" {
		c.NWProtocol = NetworkTCP
	}
	if c.Protocol == "" {
		c.Protocol = ProtocolRNET
	}
	c.NWProtocol = strings.ToUpper(c.NWProtocol)
	c.Protocol = strings.ToUpper(c.Protocol)
	if c.Port == nil {
		port := transport.DefaultDatagramPort
		if c.Protocol == ProtocolRIO {
			port = transport.DefaultTextPort
		}
		c.Port = &port
	}
	if c.Controller == 0 {
		c.Controller = 1
	}
}

// Validate reports every problem with the controller entry.
func (c *ControllerConfig) Validate() error {
	var errs []error
	if c.NWProtocol != NetworkTCP && c.NWProtocol != NetworkUDP {
		errs = append(errs, ErrNetworkProtocol)
	}
	if c.Protocol != ProtocolRNET && c.Protocol != ProtocolRIO {
		errs = append(errs, ErrRussoundProtocol)
	}
	if c.Protocol == ProtocolRIO && c.NWProtocol == NetworkUDP {
		errs = append(errs, ErrTextOverUDP)
	}
	if c.IPAddr == "" {
		errs = append(errs, ErrIPAddress)
	}
	if c.Port == nil || *c.Port <= 0 || *c.Port > 65535 {
		errs = append(errs, ErrPort)
	}
	if c.Controller < 1 || c.Controller > 127 {
		errs = append(errs, fmt.Errorf("controller %d out of range 1..127", c.Controller))
	}
	return errors.Join(errs...)
}

// Kind maps the network and controller protocol to a transport kind.
func (c *ControllerConfig) Kind() transport.Kind {
	switch {
	case c.Protocol == ProtocolRIO:
		return transport.TextStream
	case c.NWProtocol == NetworkUDP:
		return transport.BinaryDatagram
	default:
		return transport.BinaryStream
	}
}

// Transport builds the transport config.
func (c *ControllerConfig) Transport() transport.Config {
	tc := transport.DefaultConfig(c.Kind())
	tc.Host = c.IPAddr
	tc.Port = *c.Port
	tc.LocalAddr = c.LocalAddr
	if c.VerifyChecksum != nil {
		tc.VerifyChecksum = *c.VerifyChecksum
	}
	return tc
}

// Validate checks the global settings and every controller.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Controllers) == 0 {
		errs = append(errs, ErrNoControllers)
	}
	for i := range c.Controllers {
		c.Controllers[i].applyDefaults()
		if err := c.Controllers[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("controller %d: %w", i+1, err))
		}
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// System returns the nth configured system, 1-based.
func (c *Config) System(n int) (*ControllerConfig, error) {
	if n < 1 || n > len(c.Controllers) {
		return nil, fmt.Errorf("system %d not configured (have %d)", n, len(c.Controllers))
	}
	return &c.Controllers[n-1], nil
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, ErrLogLevel
	}
	return level, nil
}
