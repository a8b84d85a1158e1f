package channel

import (
	"encoding/json"
	"fmt"

	"chessroom/internal/game"
)

// EventType names a message exchanged over the channel.
type EventType string

// Outbound (client -> server) event types.
const (
	EventJoin             EventType = "join"
	EventMove             EventType = "move"
	EventOfferDraw        EventType = "offer_draw"
	EventAcceptDraw       EventType = "accept_draw"
	EventResign           EventType = "resign"
	EventRequestTimerSync EventType = "request_timer_sync"
)

// Inbound (server -> client) event types.
const (
	EventGameJoined         EventType = "game_joined"
	EventGameUpdated        EventType = "game_updated"
	EventGameStarted        EventType = "game_started"
	EventGameResumed        EventType = "game_resumed"
	EventGameEnded          EventType = "game_ended"
	EventMoveMade           EventType = "move_made"
	EventMoveError          EventType = "move_error"
	EventTimerSync          EventType = "timer_sync"
	EventDrawOffered        EventType = "draw_offered"
	EventErrorMessage       EventType = "error_message"
	EventPlayerDisconnected EventType = "player_disconnected"
	EventPlayerReconnected  EventType = "player_reconnected"
	EventSpectatorJoined    EventType = "spectator_joined"
	EventSpectatorLeft      EventType = "spectator_left"
)

// Transport-level event types, synthesized locally by the channel
// implementation rather than sent by the server.
const (
	EventConnected    EventType = "connect"
	EventDisconnected EventType = "disconnect"
)

// Event is the tagged-union envelope carried on the wire. Data holds the
// event-specific payload and is decoded per Type by the consumer.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent wraps a payload into an envelope, marshaling it into Data.
func NewEvent(typ EventType, payload any) (Event, error) {
	if payload == nil {
		return Event{Type: typ}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Event{Type: typ, Data: data}, nil
}

// JoinPayload asks the server to seat the client in a room. An empty RoomID
// requests a fresh room.
type JoinPayload struct {
	GuestID    string `json:"guestId"`
	RoomID     string `json:"roomId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
}

// MovePayload submits a candidate move for the given room.
type MovePayload struct {
	RoomID string          `json:"roomId"`
	Move   game.MoveIntent `json:"move"`
}

// RoomPayload addresses an intent (draw offer/accept, resign, timer sync)
// to a room.
type RoomPayload struct {
	RoomID string `json:"roomId"`
}

// GameJoinedPayload seats the client: a full snapshot plus the viewer's role.
type GameJoinedPayload struct {
	RoomID      string    `json:"roomId"`
	Game        game.Game `json:"game"`
	PlayerColor game.Role `json:"playerColor,omitempty"`
	IsSpectator bool      `json:"isSpectator,omitempty"`
	Reconnected bool      `json:"reconnected,omitempty"`
}

// MoveMadePayload confirms a move together with the resulting snapshot.
type MoveMadePayload struct {
	Move game.Move `json:"move"`
	Game game.Game `json:"game"`
}

// GameEndedPayload reports the final verdict together with the snapshot.
type GameEndedPayload struct {
	Result game.Result    `json:"result"`
	Reason game.EndReason `json:"reason"`
	Game   game.Game      `json:"game"`
}

// GamePayload wraps events whose payload is just a snapshot.
type GamePayload struct {
	Game game.Game `json:"game"`
}

// ErrorPayload carries a human-readable server error.
type ErrorPayload struct {
	Error string `json:"error"`
}

// TimerSyncPayload is the one partial-update payload: authoritative clock
// values plus side-to-move, without a full snapshot.
type TimerSyncPayload struct {
	WhiteTime       int64     `json:"whiteTime"`
	BlackTime       int64     `json:"blackTime"`
	Turn            game.Role `json:"turn"`
	ServerTimestamp int64     `json:"serverTimestamp"`
	IsPaused        bool      `json:"isPaused"`
}

// PlayerPresencePayload names a player whose connection state changed.
type PlayerPresencePayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// SpectatorJoinedPayload names a spectator who joined the room.
type SpectatorJoinedPayload struct {
	SpectatorName string `json:"spectatorName"`
}

// Decode unmarshals the envelope's payload into out.
func (e Event) Decode(out any) error {
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
