package transport

import "errors"

// State is the connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Connection errors.
var (
	ErrInvalidConfig    = errors.New("invalid transport config")
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrConnectionClosed = errors.New("connection closed")

	// ErrConnectionLost is reported through Handler.OnError when the peer
	// goes away or the socket fails.
	ErrConnectionLost = errors.New("connection lost")

	// ErrNoController indicates a discovery that did not find the
	// requested controller.
	ErrNoController = errors.New("controller not found")

	// ErrWrongProtocol indicates a binary operation on a text connection or
	// the other way round.
	ErrWrongProtocol = errors.New("operation not supported by transport kind")
)
