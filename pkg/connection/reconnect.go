package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rnetctl/rnet-go/pkg/metrics"
	"github.com/rnetctl/rnet-go/pkg/transport"
)

// ErrRetriesExhausted is returned by Run after MaxAttempts failed connects
// in a row.
var ErrRetriesExhausted = errors.New("reconnect attempts exhausted")

// DefaultConnectTimeout bounds a single connect attempt.
const DefaultConnectTimeout = 30 * time.Second

// State is the supervisor state.
type State uint8

const (
	StateIdle State = iota
	StateConnecting
	StateConnected

	// StateWaiting indicates a backoff delay before the next attempt.
	StateWaiting

	StateStopped
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateWaiting:
		return "WAITING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Conn is the connection a Supervisor keeps open. *transport.Conn
// implements it.
type Conn interface {
	Connect(ctx context.Context) error
	Done() <-chan struct{}
}

var _ Conn = (*transport.Conn)(nil)

// Config configures a Supervisor.
type Config struct {
	Backoff BackoffConfig

	// MaxAttempts is the number of failed connects in a row after which Run
	// gives up. Zero retries forever.
	MaxAttempts int

	// ConnectTimeout bounds each attempt. Defaults to DefaultConnectTimeout.
	ConnectTimeout time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// OnConnected is called after every successful connect. reconnect is
	// false for the first one.
	OnConnected func(reconnect bool)

	// OnReconnecting is called before each backoff delay.
	OnReconnecting func(attempt int, delay time.Duration)

	OnStateChange func(oldState, newState State)
}

// Supervisor connects a Conn and reconnects it with exponential backoff
// whenever its receive loop ends. The transport itself never retries.
type Supervisor struct {
	conn    Conn
	cfg     Config
	backoff *Backoff
	logger  *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewSupervisor creates a supervisor for conn.
func NewSupervisor(conn Conn, cfg Config) *Supervisor {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Supervisor{
		conn:    conn,
		cfg:     cfg,
		backoff: NewBackoffWithConfig(cfg.Backoff),
		logger:  cfg.Logger,
	}
}

// State returns the current state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Attempts returns the number of failed attempts since the last connect.
func (s *Supervisor) Attempts() int {
	return s.backoff.Attempts()
}

// Run keeps the connection up until ctx is done, the connection is closed or
// MaxAttempts is reached. It does not close the connection on return.
func (s *Supervisor) Run(ctx context.Context) error {
	everConnected := false
	for {
		s.setState(StateConnecting)
		actx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		err := s.conn.Connect(actx)
		cancel()

		switch {
		case err == nil:
			if everConnected {
				s.cfg.Metrics.ObserveReconnect()
			}
			s.backoff.Reset()
			s.setState(StateConnected)
			if s.cfg.OnConnected != nil {
				s.cfg.OnConnected(everConnected)
			}
			everConnected = true

			select {
			case <-ctx.Done():
				return s.stop(ctx.Err())
			case <-s.conn.Done():
			}
			s.logger.Warn("connection lost, reconnecting")

		case ctx.Err() != nil:
			return s.stop(ctx.Err())

		case errors.Is(err, transport.ErrConnectionClosed),
			errors.Is(err, transport.ErrInvalidConfig):
			return s.stop(err)

		default:
			s.logger.Warn("connect failed",
				slog.Int("attempt", s.backoff.Attempts()+1),
				slog.Any("error", err))
			if s.cfg.MaxAttempts > 0 && s.backoff.Attempts()+1 >= s.cfg.MaxAttempts {
				return s.stop(fmt.Errorf("%w after %d attempts: %w",
					ErrRetriesExhausted, s.cfg.MaxAttempts, err))
			}
		}

		delay := s.backoff.Next()
		if s.cfg.OnReconnecting != nil {
			s.cfg.OnReconnecting(s.backoff.Attempts(), delay)
		}
		s.setState(StateWaiting)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return s.stop(ctx.Err())
		case <-t.C:
		}
	}
}

func (s *Supervisor) stop(err error) error {
	s.setState(StateStopped)
	return err
}

func (s *Supervisor) setState(newState State) {
	s.mu.Lock()
	oldState := s.state
	s.state = newState
	s.mu.Unlock()

	if oldState != newState && s.cfg.OnStateChange != nil {
		s.cfg.OnStateChange(oldState, newState)
	}
}
