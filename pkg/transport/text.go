package transport

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rnetctl/rnet-go/pkg/log"
	"github.com/rnetctl/rnet-go/pkg/metrics"
	"github.com/rnetctl/rnet-go/pkg/rio"
)

// SendLine writes one RIO command. The line terminator is added.
func (c *Conn) SendLine(cmd string) error {
	if c.cfg.Kind != TextStream {
		return ErrWrongProtocol
	}
	line := rio.Terminate(cmd)
	if err := c.write([]byte(line)); err != nil {
		return err
	}
	c.metrics.ObserveLine("out", "CMD", len(line))
	c.capture(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerTransport,
		Line:      log.CommandEvent(cmd),
	})
	return nil
}

// Get issues a synchronous GET. See rio.Client.Get.
func (c *Conn) Get(ctx context.Context, path string, attr rio.Attr) (rio.Line, error) {
	if c.rio == nil {
		return rio.Line{}, ErrWrongProtocol
	}
	return c.rio.Get(ctx, path, attr)
}

// Discover enumerates controllers, zones and sources over RIO.
func (c *Conn) Discover(ctx context.Context) (*rio.System, error) {
	if c.rio == nil {
		return nil, ErrWrongProtocol
	}
	c.discoveryState("IDLE", "RUNNING", "")
	sys, err := rio.Discover(ctx, c.rio)
	if err != nil {
		c.discoveryState("RUNNING", "FAILED", err.Error())
		return nil, err
	}
	c.discoveryState("RUNNING", "COMPLETE", "")
	return sys, nil
}

func (c *Conn) discoveryState(oldState, newState, reason string) {
	c.capture(log.Event{
		Category: log.CategoryState,
		Layer:    log.LayerClient,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityDiscovery,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (c *Conn) observeRequest(key string, elapsed time.Duration, err error) {
	result := metrics.ResultOK
	switch {
	case errors.Is(err, rio.ErrRequestTimeout):
		result = metrics.ResultTimeout
		c.capture(log.Event{
			Category: log.CategoryError,
			Layer:    log.LayerClient,
			Error:    &log.ErrorEventData{Layer: log.LayerClient, Message: err.Error(), Context: key},
		})
	case err != nil:
		result = metrics.ResultError
	}
	c.metrics.ObserveRequest(result, elapsed)
}

func (c *Conn) receiveText(s *session) error {
	splitter := rio.NewLineSplitter()
	buf := make([]byte, readBufferSize)
	for {
		n, err := s.stream.Read(buf)
		if n > 0 {
			lines, lerr := splitter.Feed(buf[:n])
			if lerr != nil {
				c.metrics.ObserveDecodeError("rio")
				c.reportError(log.LayerTransport, lerr)
			}
			for _, raw := range lines {
				c.handleLine(raw)
			}
		}
		if err != nil {
			return err
		}
	}
}

// handleLine offers the line to pending requests first. Lines that answer a
// request are still dispatched when they carry zone or source state.
func (c *Conn) handleLine(raw string) {
	line, err := rio.ParseLine(raw)
	if err != nil {
		c.metrics.ObserveDecodeError("rio")
		c.capture(log.Event{Layer: log.LayerTransport, Line: &log.LineEvent{Raw: raw}})
		c.reportError(log.LayerCodec, err)
		return
	}
	c.metrics.ObserveLine("in", line.Tag.String(), len(raw))
	c.capture(log.Event{Layer: log.LayerTransport, Line: log.NewLineEvent(line)})

	resolved := c.rio.HandleLine(line)
	if !resolved || line.IsStateUpdate() {
		c.handler.OnLine(line)
	} else {
		c.logger.Debug("rio response", slog.String("key", line.Key()))
	}
}
