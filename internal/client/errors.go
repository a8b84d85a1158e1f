package client

import "errors"

// Local precondition failures, reported before anything touches the channel.
var (
	ErrNotConnected = errors.New("not connected to server")
	ErrNoActiveGame = errors.New("no active game")
)

// ErrorKind classifies an entry in the synchronizer's error slot.
type ErrorKind string

const (
	// KindConnectivity covers intents attempted without a live channel and
	// channel-level disconnects.
	KindConnectivity ErrorKind = "connectivity"
	// KindValidation covers server-rejected moves.
	KindValidation ErrorKind = "validation"
	// KindNotFound covers a server report that the room does not exist.
	KindNotFound ErrorKind = "not_found"
	// KindServer covers other server-reported errors.
	KindServer ErrorKind = "server"
)

// SyncError is the single observable error slot's content: a taxonomy kind
// plus a human-readable message.
type SyncError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	return e.Message
}
