package connection

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rnetctl/rnet-go/pkg/metrics"
	"github.com/rnetctl/rnet-go/pkg/transport"
)

func TestBackoff(t *testing.T) {
	t.Run("DefaultSequence", func(t *testing.T) {
		b := NewBackoff()

		expected := []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			16 * time.Second,
			32 * time.Second,
			60 * time.Second,
			60 * time.Second,
		}
		for i, exp := range expected {
			base := b.Current()
			_ = b.Next()
			if base != exp {
				t.Errorf("Attempt %d: base = %v, want %v", i, base, exp)
			}
		}
	})

	t.Run("Jitter", func(t *testing.T) {
		upper := time.Duration(float64(InitialBackoff) * (1 + JitterFactor))

		distinct := map[time.Duration]bool{}
		for i := 0; i < 20; i++ {
			s := NewBackoff().Next()
			if s < InitialBackoff || s > upper {
				t.Errorf("Sample %d: %v out of range [%v, %v]", i, s, InitialBackoff, upper)
			}
			distinct[s] = true
		}
		if len(distinct) == 1 {
			t.Error("all jittered samples are identical")
		}
	})

	t.Run("Reset", func(t *testing.T) {
		b := NewBackoff()
		for i := 0; i < 5; i++ {
			b.Next()
		}
		if b.Current() <= InitialBackoff {
			t.Error("backoff did not increase")
		}

		b.Reset()
		if b.Current() != InitialBackoff {
			t.Errorf("Current() = %v after reset, want %v", b.Current(), InitialBackoff)
		}
		if b.Attempts() != 0 {
			t.Errorf("Attempts() = %d after reset, want 0", b.Attempts())
		}
	})

	t.Run("CustomConfigWithoutJitter", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{
			Initial: 100 * time.Millisecond,
			Max:     500 * time.Millisecond,
			Jitter:  -1,
		})

		expected := []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
			500 * time.Millisecond,
			500 * time.Millisecond,
		}
		for i, exp := range expected {
			if got := b.Next(); got != exp {
				t.Errorf("Attempt %d: got %v, want %v", i, got, exp)
			}
		}
		if b.Attempts() != len(expected) {
			t.Errorf("Attempts() = %d, want %d", b.Attempts(), len(expected))
		}
	})

	t.Run("MaxBelowInitial", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{Initial: time.Second, Max: time.Millisecond, Jitter: -1})
		if got := b.Next(); got != time.Second {
			t.Errorf("Next() = %v, want 1s", got)
		}
	})
}

// fakeConn fails the first failures connects and then succeeds. Each
// successful connect gets a fresh done channel that drop closes.
type fakeConn struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
	done     chan struct{}
}

func (f *fakeConn) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return f.err
	}
	f.done = make(chan struct{})
	return nil
}

func (f *fakeConn) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

func (f *fakeConn) drop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	close(f.done)
}

func (f *fakeConn) connectCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func fastConfig() Config {
	return Config{Backoff: BackoffConfig{Initial: time.Millisecond, Max: 4 * time.Millisecond, Jitter: -1}}
}

func TestSupervisorReconnects(t *testing.T) {
	fc := &fakeConn{failures: 2, err: errors.New("refused")}
	reg := prometheus.NewRegistry()

	connected := make(chan bool, 4)
	var attempts []int
	cfg := fastConfig()
	cfg.Metrics = metrics.New(metrics.WithRegistry(reg))
	cfg.OnConnected = func(reconnect bool) { connected <- reconnect }
	cfg.OnReconnecting = func(attempt int, delay time.Duration) { attempts = append(attempts, attempt) }
	s := NewSupervisor(fc, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	select {
	case reconnect := <-connected:
		if reconnect {
			t.Error("first connect reported as reconnect")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor never connected")
	}
	if fc.connectCalls() != 3 {
		t.Errorf("connect calls = %d, want 3", fc.connectCalls())
	}
	if s.State() != StateConnected {
		t.Errorf("State() = %v, want CONNECTED", s.State())
	}
	if s.Attempts() != 0 {
		t.Errorf("Attempts() = %d after connect, want 0", s.Attempts())
	}

	fc.drop()
	select {
	case reconnect := <-connected:
		if !reconnect {
			t.Error("second connect not reported as reconnect")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not reconnect")
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if s.State() != StateStopped {
		t.Errorf("State() = %v, want STOPPED", s.State())
	}

	want := []int{1, 2, 1}
	if len(attempts) != len(want) {
		t.Fatalf("attempts = %v, want %v", attempts, want)
	}
	for i := range want {
		if attempts[i] != want[i] {
			t.Errorf("attempts = %v, want %v", attempts, want)
		}
	}
	expected := `
# HELP rnet_connection_reconnects_total Successful reconnects after connection loss.
# TYPE rnet_connection_reconnects_total counter
rnet_connection_reconnects_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "rnet_connection_reconnects_total"); err != nil {
		t.Error(err)
	}
}

func TestSupervisorMaxAttempts(t *testing.T) {
	refused := errors.New("refused")
	fc := &fakeConn{failures: 10, err: refused}
	cfg := fastConfig()
	cfg.MaxAttempts = 3

	err := NewSupervisor(fc, cfg).Run(context.Background())
	if !errors.Is(err, ErrRetriesExhausted) || !errors.Is(err, refused) {
		t.Errorf("Run() = %v, want ErrRetriesExhausted wrapping the cause", err)
	}
	if fc.connectCalls() != 3 {
		t.Errorf("connect calls = %d, want 3", fc.connectCalls())
	}
}

func TestSupervisorPermanentErrors(t *testing.T) {
	for _, perm := range []error{transport.ErrConnectionClosed, transport.ErrInvalidConfig} {
		t.Run(perm.Error(), func(t *testing.T) {
			fc := &fakeConn{failures: 1, err: perm}
			err := NewSupervisor(fc, fastConfig()).Run(context.Background())
			if !errors.Is(err, perm) {
				t.Errorf("Run() = %v, want %v", err, perm)
			}
			if fc.connectCalls() != 1 {
				t.Errorf("connect calls = %d, want 1", fc.connectCalls())
			}
		})
	}
}

func TestSupervisorStateChanges(t *testing.T) {
	fc := &fakeConn{failures: 1, err: errors.New("refused")}
	var mu sync.Mutex
	var states []State

	cfg := fastConfig()
	cfg.OnStateChange = func(_, newState State) {
		mu.Lock()
		states = append(states, newState)
		mu.Unlock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	cfg.OnConnected = func(bool) { cancel() }

	if err := NewSupervisor(fc, cfg).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []State{StateConnecting, StateWaiting, StateConnecting, StateConnected, StateStopped}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("states = %v, want %v", states, want)
			break
		}
	}
}

func TestSupervisorTransport(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 4)
	go func() {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			accepted <- nc
		}
	}()

	tcfg := transport.DefaultConfig(transport.BinaryStream)
	tcfg.Host = "127.0.0.1"
	tcfg.Port = ln.Addr().(*net.TCPAddr).Port
	conn := transport.New(tcfg, nil)
	defer conn.Close()

	connected := make(chan bool, 4)
	cfg := fastConfig()
	cfg.OnConnected = func(reconnect bool) { connected <- reconnect }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- NewSupervisor(conn, cfg).Run(ctx) }()

	next := func() net.Conn {
		select {
		case <-connected:
		case <-time.After(2 * time.Second):
			t.Fatal("no connect")
		}
		select {
		case nc := <-accepted:
			return nc
		case <-time.After(2 * time.Second):
			t.Fatal("no accept")
			return nil
		}
	}

	first := next()
	first.Close()
	second := next()
	defer second.Close()

	if conn.State() != transport.StateConnected {
		t.Errorf("State() = %v, want CONNECTED", conn.State())
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v", err)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "IDLE"},
		{StateConnecting, "CONNECTING"},
		{StateConnected, "CONNECTED"},
		{StateWaiting, "WAITING"},
		{StateStopped, "STOPPED"},
		{State(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
