package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rnetctl/rnet-go/pkg/log"
	"github.com/rnetctl/rnet-go/pkg/metrics"
	"github.com/rnetctl/rnet-go/pkg/rio"
	"github.com/rnetctl/rnet-go/pkg/rnet"
)

const readBufferSize = 4096

// Conn owns one controller transport. It runs the receive loop, decodes
// frames or lines and dispatches them to the Handler. It does not reconnect
// by itself: after connection loss the owner may call Connect again.
type Conn struct {
	id      string
	cfg     Config
	handler Handler
	logger  *slog.Logger
	plog    log.Logger
	metrics *metrics.Metrics

	// rio is set for TextStream connections.
	rio *rio.Client

	state     atomic.Int32
	closed    atomic.Bool
	closeOnce sync.Once

	mu   sync.RWMutex
	sess *session
	done chan struct{}

	writeMu sync.Mutex

	// reassembler is only fed from the receive goroutine, with packets from
	// cfgController.
	cfgMu         sync.Mutex
	reassembler   *rnet.Reassembler
	cfgController int
}

// session is one established socket and its receive loop.
type session struct {
	stream net.Conn
	packet net.PacketConn
	remote net.Addr
	local  map[string]bool
	done   chan struct{}
}

func (s *session) write(data []byte, timeout time.Duration) error {
	if s.stream != nil {
		if timeout > 0 {
			_ = s.stream.SetWriteDeadline(time.Now().Add(timeout))
			defer s.stream.SetWriteDeadline(time.Time{})
		}
		_, err := s.stream.Write(data)
		return err
	}
	if timeout > 0 {
		_ = s.packet.SetWriteDeadline(time.Now().Add(timeout))
		defer s.packet.SetWriteDeadline(time.Time{})
	}
	_, err := s.packet.WriteTo(data, s.remote)
	return err
}

func (s *session) close() error {
	if s.stream != nil {
		return s.stream.Close()
	}
	return s.packet.Close()
}

// New creates a connection in the Disconnected state. h may be nil.
func New(cfg Config, h Handler) *Conn {
	if h == nil {
		h = HandlerFuncs{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Conn{
		id:      uuid.NewString(),
		cfg:     cfg,
		handler: h,
		plog:    log.OrNoop(cfg.ProtocolLogger),
		metrics: cfg.Metrics,
	}
	c.logger = cfg.Logger.With(
		slog.String("conn_id", c.id),
		slog.String("kind", cfg.Kind.String()),
		slog.String("remote", cfg.Address()),
	)
	if cfg.Kind == TextStream {
		c.rio = rio.NewClient(rio.SenderFunc(c.SendLine), rio.ClientConfig{
			Timeout:  cfg.ResponseTimeout,
			Logger:   c.logger,
			OnResult: c.observeRequest,
		})
	}
	c.state.Store(int32(StateDisconnected))
	return c
}

// ID returns the connection ID used in capture events.
func (c *Conn) ID() string {
	return c.id
}

// Kind returns the transport kind.
func (c *Conn) Kind() Kind {
	return c.cfg.Kind
}

// State returns the current state.
func (c *Conn) State() State {
	return State(c.state.Load())
}

// RemoteAddr returns the configured controller address.
func (c *Conn) RemoteAddr() string {
	return c.cfg.Address()
}

// LocalAddr returns the local socket address, or nil when not connected.
func (c *Conn) LocalAddr() net.Addr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.sess == nil:
		return nil
	case c.sess.stream != nil:
		return c.sess.stream.LocalAddr()
	default:
		return c.sess.packet.LocalAddr()
	}
}

// Done returns a channel closed when the current session's receive loop
// exits. Before the first Connect it is already closed.
func (c *Conn) Done() <-chan struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.done
}

// RIO returns the text protocol client, or nil for binary connections.
func (c *Conn) RIO() *rio.Client {
	return c.rio
}

// Connect opens the transport and starts the receive loop.
func (c *Conn) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	if !c.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return ErrAlreadyConnected
	}
	c.notifyStateChange(StateDisconnected, StateConnecting, "")

	s, err := c.open(ctx)
	if err != nil {
		c.transition(StateConnecting, StateDisconnected, err.Error())
		return err
	}

	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		_ = s.close()
		if c.state.CompareAndSwap(int32(StateConnecting), int32(StateDisconnected)) {
			c.notifyStateChange(StateConnecting, StateDisconnected, "closed")
		}
		return ErrConnectionClosed
	}
	c.sess = s
	c.done = s.done
	c.mu.Unlock()

	c.transition(StateConnecting, StateConnected, "")
	go c.receive(s)
	return nil
}

func (c *Conn) open(ctx context.Context) (*session, error) {
	addr := c.cfg.Address()
	s := &session{done: make(chan struct{})}

	if c.cfg.Kind != BinaryDatagram {
		d := net.Dialer{Timeout: c.cfg.DialTimeout}
		nc, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		s.stream = nc
		return s, nil
	}

	remote, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	var lc net.ListenConfig
	pc, err := lc.ListenPacket(ctx, "udp4", c.cfg.localAddress())
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", c.cfg.localAddress(), err)
	}
	s.packet = pc
	s.remote = remote
	s.local = localEndpoints(pc.LocalAddr())
	return s, nil
}

// localEndpoints lists the addresses our own broadcasts arrive from.
func localEndpoints(bound net.Addr) map[string]bool {
	udp, ok := bound.(*net.UDPAddr)
	if !ok {
		return nil
	}
	own := map[string]bool{}
	ips := []net.IP{udp.IP}
	if addrs, err := net.InterfaceAddrs(); err == nil {
		for _, a := range addrs {
			if ipn, ok := a.(*net.IPNet); ok {
				ips = append(ips, ipn.IP)
			}
		}
	}
	for _, ip := range ips {
		own[(&net.UDPAddr{IP: ip, Port: udp.Port}).String()] = true
	}
	return own
}

// Close shuts the transport down and waits for the receive loop to exit.
// Close is idempotent. It must not be called from a Handler callback.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		c.mu.Lock()
		s := c.sess
		done := c.done
		c.sess = nil
		c.mu.Unlock()

		if c.rio != nil {
			c.rio.Close(ErrConnectionClosed)
		}
		if s != nil {
			err = s.close()
		}
		if done != nil {
			<-done
		}
		if old := c.State(); old != StateDisconnected {
			c.transition(old, StateDisconnected, "closed")
		}
	})
	return err
}

// write sends raw bytes on the current session.
func (c *Conn) write(data []byte) error {
	if c.State() != StateConnected {
		return ErrNotConnected
	}
	c.mu.RLock()
	s := c.sess
	c.mu.RUnlock()
	if s == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := s.write(data, c.cfg.WriteTimeout); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (c *Conn) receive(s *session) {
	defer close(s.done)

	var err error
	switch c.cfg.Kind {
	case BinaryStream:
		err = c.receiveStream(s)
	case BinaryDatagram:
		err = c.receiveDatagram(s)
	case TextStream:
		err = c.receiveText(s)
	}
	c.lost(s, err)
}

// lost handles the end of a receive loop that was not caused by Close.
func (c *Conn) lost(s *session, cause error) {
	c.mu.Lock()
	current := c.sess == s
	if current {
		c.sess = nil
	}
	c.mu.Unlock()
	if !current || c.closed.Load() {
		return
	}
	_ = s.close()

	c.transition(StateConnected, StateDisconnected, cause.Error())
	if c.rio != nil {
		c.rio.Close(ErrConnectionLost)
	}
	if c.cfg.Kind == BinaryStream {
		c.handler.OnMessage(rnet.LostConnectionMessage())
	}
	c.reportError(log.LayerTransport, fmt.Errorf("%w: %w", ErrConnectionLost, cause))
}

func (c *Conn) transition(oldState, newState State, reason string) {
	c.state.Store(int32(newState))
	c.notifyStateChange(oldState, newState, reason)
}

func (c *Conn) notifyStateChange(oldState, newState State, reason string) {
	c.metrics.ObserveState(newState.String(), newState == StateConnected)
	c.capture(log.Event{
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState.String(),
			NewState: newState.String(),
			Reason:   reason,
		},
	})
	attrs := []any{slog.String("state", newState.String())}
	if reason != "" {
		attrs = append(attrs, slog.String("reason", reason))
	}
	c.logger.Info("connection state", attrs...)
	c.handler.OnStateChange(oldState, newState)
}

func (c *Conn) reportError(layer log.Layer, err error) {
	c.capture(log.Event{
		Category: log.CategoryError,
		Layer:    layer,
		Error:    &log.ErrorEventData{Layer: layer, Message: err.Error()},
	})
	c.logger.Warn("protocol error", slog.String("layer", layer.String()), slog.Any("error", err))
	c.handler.OnError(err)
}

func (c *Conn) capture(e log.Event) {
	e.Timestamp = time.Now()
	e.ConnectionID = c.id
	e.Protocol = c.cfg.Kind.protocol()
	e.RemoteAddr = c.cfg.Address()
	c.plog.Log(e)
}
