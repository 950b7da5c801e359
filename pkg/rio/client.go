package rio

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultResponseTimeout bounds a synchronous GET.
const DefaultResponseTimeout = 60 * time.Second

// Sender writes one command line to the controller.
type Sender interface {
	SendLine(cmd string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(cmd string) error

// SendLine calls f.
func (f SenderFunc) SendLine(cmd string) error {
	return f(cmd)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// Timeout bounds Get when the context has no earlier deadline.
	// Zero means DefaultResponseTimeout.
	Timeout time.Duration

	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger

	// OnResult, if set, is called when a Get finishes.
	OnResult func(key string, elapsed time.Duration, err error)
}

// Client issues synchronous requests over a text connection. Lines received
// on the connection must be passed to HandleLine.
type Client struct {
	sender   Sender
	pending  *PendingTable
	timeout  time.Duration
	logger   *slog.Logger
	onResult func(string, time.Duration, error)
}

// NewClient creates a client sending through s.
func NewClient(s Sender, cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultResponseTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		sender:   s,
		pending:  NewPendingTable(),
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
		onResult: cfg.OnResult,
	}
}

// Pending returns the number of outstanding requests.
func (c *Client) Pending() int {
	return c.pending.Len()
}

// Send writes a command without waiting for a response.
func (c *Client) Send(cmd string) error {
	return c.sender.SendLine(cmd)
}

// Get issues GET path.attr and waits for the response. It returns
// ErrRequestTimeout when no response arrives in time and an error wrapping
// ErrErrorResponse when the controller answers with E.
func (c *Client) Get(ctx context.Context, path string, attr Attr) (Line, error) {
	key := path + "." + string(attr)
	start := time.Now()
	line, err := c.get(ctx, key, path, attr)
	if c.onResult != nil {
		c.onResult(key, time.Since(start), err)
	}
	return line, err
}

func (c *Client) get(ctx context.Context, key, path string, attr Attr) (Line, error) {
	p := c.pending.Begin(key)

	if err := c.sender.SendLine(Get(path, attr)); err != nil {
		c.pending.Cancel(p)
		return Line{}, err
	}
	c.logger.Debug("rio request", slog.String("key", key))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	line, err := p.Wait(ctx)
	if err != nil {
		c.pending.Cancel(p)
		if errors.Is(err, context.DeadlineExceeded) {
			return Line{}, ErrRequestTimeout
		}
		return Line{}, err
	}
	return line, nil
}

// GetValue is Get returning only the value.
func (c *Client) GetValue(ctx context.Context, path string, attr Attr) (string, error) {
	line, err := c.Get(ctx, path, attr)
	if err != nil {
		return "", err
	}
	return line.Value, nil
}

// HandleLine offers an inbound line to the outstanding requests and reports
// whether it completed one.
func (c *Client) HandleLine(l Line) bool {
	resolved := c.pending.Resolve(l)
	if !resolved && l.Tag == TagError {
		c.logger.Warn("rio error without request", slog.String("message", l.Value))
	}
	return resolved
}

// Close fails every outstanding request with err, or ErrClientClosed if err
// is nil.
func (c *Client) Close(err error) {
	if err == nil {
		err = ErrClientClosed
	}
	c.pending.FailAll(err)
}
