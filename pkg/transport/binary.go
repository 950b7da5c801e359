package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rnetctl/rnet-go/pkg/log"
	"github.com/rnetctl/rnet-go/pkg/rnet"
)

// Send writes one complete RNET frame, as produced by the rnet builders.
func (c *Conn) Send(frame []byte) error {
	if !c.cfg.Kind.Binary() {
		return ErrWrongProtocol
	}
	if err := c.write(frame); err != nil {
		return err
	}

	c.metrics.ObserveFrame("out", len(frame))
	c.capture(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerTransport,
		Frame:     log.NewFrameEvent(frame),
	})
	if msg, err := rnet.Decode(frame); err == nil {
		c.capture(log.Event{
			Direction: log.DirectionOut,
			Layer:     log.LayerCodec,
			Message:   log.NewMessageEvent(msg),
		})
	}
	return nil
}

func (c *Conn) receiveStream(s *session) error {
	fr := rnet.NewFrameReader(s.stream)
	fr.OnDrop = func(err error) {
		c.metrics.ObserveDecodeError("rnet")
		c.reportError(log.LayerTransport, err)
	}
	for {
		f, err := fr.ReadFrame()
		if err != nil {
			return err
		}
		c.handleFrame(f)
	}
}

// receiveDatagram handles one frame per packet. Partial frames never carry
// over into the next packet.
func (c *Conn) receiveDatagram(s *session) error {
	framer := rnet.NewFramer()
	buf := make([]byte, readBufferSize)
	for {
		n, from, err := s.packet.ReadFrom(buf)
		if n > 0 && !s.local[from.String()] {
			framer.Reset()
			frames, ferr := framer.Feed(buf[:n])
			if ferr == nil && framer.State() == rnet.FramerInFrame {
				ferr = fmt.Errorf("%w: datagram from %s ends inside a frame", rnet.ErrMalformedFrame, from)
			}
			if ferr != nil {
				c.metrics.ObserveDecodeError("rnet")
				c.reportError(log.LayerTransport, ferr)
			}
			for _, f := range frames {
				c.handleFrame(f)
			}
		}
		if err != nil {
			return err
		}
	}
}

func (c *Conn) handleFrame(f rnet.Frame) {
	c.metrics.ObserveFrame("in", len(f.Raw))

	csErr := rnet.VerifyChecksum(f)
	ok := csErr == nil
	fe := log.NewFrameEvent(f.Raw)
	fe.ChecksumOK = &ok
	c.capture(log.Event{Layer: log.LayerTransport, Frame: fe})

	if csErr != nil {
		c.metrics.ObserveChecksumError()
		if c.cfg.VerifyChecksum {
			c.reportError(log.LayerCodec, csErr)
			return
		}
		c.logger.Debug("accepting frame with bad checksum", slog.Any("error", csErr))
	}

	msg, err := rnet.DecodeFrame(f)
	if err != nil {
		c.metrics.ObserveDecodeError("rnet")
		c.reportError(log.LayerCodec, err)
	} else {
		c.metrics.ObserveMessage(msg.Kind.String())
		c.capture(log.Event{Layer: log.LayerCodec, Message: log.NewMessageEvent(msg)})

		c.feedConfig(msg)
		c.handler.OnMessage(msg)
	}

	// Every Set-Data frame is acknowledged, decodable or not.
	if h, full := f.Header(); full && c.cfg.AutoAck && h.MessageType == rnet.TypeSetData {
		c.acknowledge(h.SourceController)
	}
}

// acknowledge answers a Set-Data frame. The handshake goes to the controller
// that sent it; frames from an out-of-range controller are acknowledged to
// controller 1.
func (c *Conn) acknowledge(source byte) {
	controller := int(source) + 1
	if controller > 127 {
		controller = 1
	}
	frame, err := rnet.Acknowledge(controller)
	if err == nil {
		err = c.Send(frame)
	}
	if err != nil && !errors.Is(err, ErrNotConnected) {
		c.reportError(log.LayerTransport, fmt.Errorf("acknowledge: %w", err))
	}
}

func (c *Conn) feedConfig(msg *rnet.Message) {
	if msg.Kind != rnet.KindControllerConfig {
		return
	}
	c.cfgMu.Lock()
	r, want := c.reassembler, c.cfgController
	c.cfgMu.Unlock()
	if r == nil {
		c.logger.Debug("config packet without request")
		return
	}
	if from := int(msg.SourceController) + 1; from != want {
		c.logger.Debug("config packet from other controller",
			slog.Int("controller", from), slog.Int("requested", want))
		return
	}
	if _, err := r.FeedMessage(msg); err != nil {
		c.reportError(log.LayerCodec, err)
	}
}

// RequestConfig reads the zone and source table of a controller. Over RNET it
// requests the controller config and waits for the packets to reassemble;
// over RIO it runs Discover. It blocks until the table is complete or ctx is
// done.
func (c *Conn) RequestConfig(ctx context.Context, controller int) (*rnet.ZoneSourceTable, error) {
	if c.cfg.Kind == TextStream {
		sys, err := c.Discover(ctx)
		if err != nil {
			return nil, err
		}
		table, ok := sys.Table(controller)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrNoController, controller)
		}
		return table, nil
	}

	frame, err := rnet.RequestConfig(controller)
	if err != nil {
		return nil, err
	}

	r := rnet.NewReassembler()
	r.Order = c.cfg.CountOrder
	c.cfgMu.Lock()
	c.reassembler = r
	c.cfgController = controller
	c.cfgMu.Unlock()
	defer func() {
		c.cfgMu.Lock()
		if c.reassembler == r {
			c.reassembler = nil
		}
		c.cfgMu.Unlock()
	}()

	c.configState("IDLE", "REQUESTED", "")
	if err := c.Send(frame); err != nil {
		return nil, err
	}

	select {
	case <-r.Done():
		table := r.Table()
		c.configState("REQUESTED", "READY", "")
		c.logger.Info("controller config ready",
			slog.Int("controller", table.Controller),
			slog.Int("zones", table.ZoneCount),
			slog.Int("sources", table.SourceCount))
		return table, nil
	case <-ctx.Done():
		c.configState("REQUESTED", "IDLE", ctx.Err().Error())
		return nil, fmt.Errorf("controller %d config: %w", controller, ctx.Err())
	}
}

func (c *Conn) configState(oldState, newState, reason string) {
	c.capture(log.Event{
		Category: log.CategoryState,
		Layer:    log.LayerClient,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConfig,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}
