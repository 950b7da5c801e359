package transport

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/rnetctl/rnet-go/pkg/log"
	"github.com/rnetctl/rnet-go/pkg/metrics"
	"github.com/rnetctl/rnet-go/pkg/rnet"
)

// Kind selects the transport and protocol of a connection.
type Kind uint8

const (
	// BinaryStream carries RNET frames over TCP.
	BinaryStream Kind = iota

	// BinaryDatagram carries RNET frames over UDP, one frame per packet.
	BinaryDatagram

	// TextStream carries RIO lines over TCP.
	TextStream
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case BinaryStream:
		return "BINARY_STREAM"
	case BinaryDatagram:
		return "BINARY_DATAGRAM"
	case TextStream:
		return "TEXT_STREAM"
	default:
		return "UNKNOWN"
	}
}

// Binary reports whether the kind carries RNET frames.
func (k Kind) Binary() bool {
	return k == BinaryStream || k == BinaryDatagram
}

func (k Kind) protocol() log.Protocol {
	if k == TextStream {
		return log.ProtocolRIO
	}
	return log.ProtocolRNET
}

// Default ports.
const (
	DefaultDatagramPort = 5000
	DefaultTextPort     = 9621
)

// Config configures a Conn.
type Config struct {
	Kind Kind

	// Host and Port address the controller. For BinaryDatagram this is the
	// destination of sent packets, usually a broadcast address.
	Host string
	Port int

	// LocalAddr is the UDP address BinaryDatagram binds. Empty means all
	// interfaces on Port.
	LocalAddr string

	// VerifyChecksum drops RNET frames whose checksum does not match.
	VerifyChecksum bool

	// AutoAck answers every received Set-Data frame with a handshake.
	AutoAck bool

	// CountOrder is passed to the config reassembler.
	CountOrder rnet.CountOrder

	DialTimeout  time.Duration
	WriteTimeout time.Duration

	// ResponseTimeout bounds synchronous RIO requests (default 60s).
	ResponseTimeout time.Duration

	// ProtocolLogger receives capture events. Nil disables capture.
	ProtocolLogger log.Logger

	// Metrics is optional.
	Metrics *metrics.Metrics

	// Logger is the operational logger. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration for a transport kind.
func DefaultConfig(kind Kind) Config {
	cfg := Config{
		Kind:            kind,
		VerifyChecksum:  true,
		AutoAck:         true,
		DialTimeout:     10 * time.Second,
		WriteTimeout:    5 * time.Second,
		ResponseTimeout: 60 * time.Second,
	}
	switch kind {
	case BinaryDatagram:
		cfg.Port = DefaultDatagramPort
	case TextStream:
		cfg.Port = DefaultTextPort
	}
	return cfg
}

// Address returns host:port.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) localAddress() string {
	if c.LocalAddr != "" {
		return c.LocalAddr
	}
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(c.Port))
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Kind > TextStream {
		return fmt.Errorf("%w: kind %d", ErrInvalidConfig, c.Kind)
	}
	if c.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	}
	if c.LocalAddr != "" {
		if _, _, err := net.SplitHostPort(c.LocalAddr); err != nil {
			return fmt.Errorf("%w: local address: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
