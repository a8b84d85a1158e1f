package channel

import (
	"context"
	"errors"
)

// Status is the connection state of a channel.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// ErrNotConnected is returned by Emit when the channel has no live
// connection to hand the event to.
var ErrNotConnected = errors.New("channel not connected")

// Channel is a bidirectional, ordering-preserving event transport between
// the client and the game server. Implementations deliver inbound events on
// Events in the order they arrived; transport-level connectivity changes are
// delivered in-stream as EventConnected / EventDisconnected so consumers see
// a single ordered stream.
type Channel interface {
	// Connect establishes the transport. It returns once the connection is
	// up or the context is done.
	Connect(ctx context.Context) error

	// Emit sends an event to the server. It fails fast with ErrNotConnected
	// when the transport is down.
	Emit(typ EventType, payload any) error

	// Events returns the inbound event stream. The channel is closed when
	// the transport shuts down for good.
	Events() <-chan Event

	// Status reports the current connection state.
	Status() Status

	// Close tears the transport down and releases its goroutines.
	Close() error
}
