package transport

import (
	"github.com/rnetctl/rnet-go/pkg/rio"
	"github.com/rnetctl/rnet-go/pkg/rnet"
)

// Handler receives connection events. All methods are called from the
// receive goroutine except OnStateChange, which is also called from Connect
// and Close. Implementations must not block.
type Handler interface {
	// OnMessage is called for every decoded RNET message.
	OnMessage(msg *rnet.Message)

	// OnLine is called for every RIO line that is not the answer to a
	// synchronous request. State updates are always delivered.
	OnLine(line rio.Line)

	// OnStateChange is called on every state transition.
	OnStateChange(oldState, newState State)

	// OnError is called for non-fatal errors and for connection loss.
	OnError(err error)
}

// HandlerFuncs adapts functions to Handler. Nil fields are skipped.
type HandlerFuncs struct {
	Message     func(msg *rnet.Message)
	Line        func(line rio.Line)
	StateChange func(oldState, newState State)
	Error       func(err error)
}

func (h HandlerFuncs) OnMessage(msg *rnet.Message) {
	if h.Message != nil {
		h.Message(msg)
	}
}

func (h HandlerFuncs) OnLine(line rio.Line) {
	if h.Line != nil {
		h.Line(line)
	}
}

func (h HandlerFuncs) OnStateChange(oldState, newState State) {
	if h.StateChange != nil {
		h.StateChange(oldState, newState)
	}
}

func (h HandlerFuncs) OnError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}

var _ Handler = HandlerFuncs{}
