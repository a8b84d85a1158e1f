package client

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"chessroom/internal/channel"
	"chessroom/internal/game"
)

// Synchronizer is the single source of truth for the authoritative Game on
// the client. It merges the inbound event stream into one snapshot, owns the
// observable error slot, and gates all outbound intents on connectivity.
//
// Consistency rules: every snapshot-bearing event replaces the Game
// wholesale; timer_sync is the one permitted partial merge (clock values and
// side-to-move only), because timer ticks arrive far more often than full
// snapshots and a wholesale replace could race a newer snapshot already in
// flight. The client never declares a game result on its own; status and
// result only ever come from the server.
//
// All mutation happens on the Run goroutine, in channel-delivery order.
// Published snapshots are never mutated afterwards, so readers may hold
// them without copying.
type Synchronizer struct {
	ch channel.Channel

	// navigateAway is the external navigation collaborator, invoked when the
	// server reports the room does not exist.
	navigateAway func(roomID string)
	// onNotice receives presence and lifecycle notices that carry no
	// snapshot (player disconnected, spectator joined, game resumed, ...).
	onNotice func(notice string)

	mu          sync.RWMutex
	game        *game.Game
	playerColor game.Role
	isSpectator bool
	connected   bool
	lastErr     *SyncError

	subsMu sync.Mutex
	subs   []chan struct{}
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithNavigateAway installs the redirect collaborator for game-not-found.
func WithNavigateAway(fn func(roomID string)) Option {
	return func(s *Synchronizer) { s.navigateAway = fn }
}

// WithNotices installs a receiver for notification-only events.
func WithNotices(fn func(notice string)) Option {
	return func(s *Synchronizer) { s.onNotice = fn }
}

// New builds a Synchronizer over a channel.
func New(ch channel.Channel, opts ...Option) *Synchronizer {
	s := &Synchronizer{ch: ch}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run consumes the inbound event stream until the context ends or the
// channel closes. All state mutation happens here, one event at a time.
func (s *Synchronizer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-s.ch.Events():
			if !ok {
				log.Info().Msg("event stream closed, synchronizer stopping")
				return nil
			}
			s.handle(ev)
		}
	}
}

// --- intents ---

// Join asks the server to seat the client. An empty roomID requests a new
// room. Fails fast without touching the channel when disconnected.
func (s *Synchronizer) Join(guestID, roomID, playerName string) error {
	if !s.Connected() {
		s.setError(&SyncError{Kind: KindConnectivity, Message: "Not connected to server"})
		return ErrNotConnected
	}
	return s.ch.Emit(channel.EventJoin, channel.JoinPayload{
		GuestID:    guestID,
		RoomID:     roomID,
		PlayerName: playerName,
	})
}

// SubmitMove emits a move intent for the current room. It never mutates the
// snapshot optimistically; the board changes only when the server confirms.
func (s *Synchronizer) SubmitMove(intent game.MoveIntent) error {
	roomID, err := s.roomForIntent("Cannot make move")
	if err != nil {
		return err
	}
	return s.ch.Emit(channel.EventMove, channel.MovePayload{RoomID: roomID, Move: intent})
}

// OfferDraw emits a draw offer for the current room.
func (s *Synchronizer) OfferDraw() error {
	return s.roomIntent(channel.EventOfferDraw, "Cannot offer draw")
}

// AcceptDraw accepts a pending draw offer.
func (s *Synchronizer) AcceptDraw() error {
	return s.roomIntent(channel.EventAcceptDraw, "Cannot accept draw")
}

// Resign resigns the game.
func (s *Synchronizer) Resign() error {
	return s.roomIntent(channel.EventResign, "Cannot resign")
}

// RequestTimerSync asks the server for authoritative clock values. Unlike
// the other intents it does not surface precondition failures; the resync
// loop calls it on a cadence and a dropped request is corrected by the next.
func (s *Synchronizer) RequestTimerSync() error {
	s.mu.RLock()
	g, connected := s.game, s.connected
	s.mu.RUnlock()
	if !connected {
		return ErrNotConnected
	}
	if g == nil {
		return ErrNoActiveGame
	}
	return s.ch.Emit(channel.EventRequestTimerSync, channel.RoomPayload{RoomID: g.RoomID})
}

// ClearError empties the error slot. No side effects.
func (s *Synchronizer) ClearError() {
	s.setError(nil)
}

func (s *Synchronizer) roomIntent(typ channel.EventType, context string) error {
	roomID, err := s.roomForIntent(context)
	if err != nil {
		return err
	}
	return s.ch.Emit(typ, channel.RoomPayload{RoomID: roomID})
}

func (s *Synchronizer) roomForIntent(context string) (string, error) {
	s.mu.RLock()
	g, connected := s.game, s.connected
	s.mu.RUnlock()

	if !connected {
		s.setError(&SyncError{Kind: KindConnectivity, Message: context + ": not connected"})
		return "", ErrNotConnected
	}
	if g == nil {
		s.setError(&SyncError{Kind: KindConnectivity, Message: context + ": no game"})
		return "", ErrNoActiveGame
	}
	return g.RoomID, nil
}

// --- reads ---

// Game returns the authoritative snapshot, nil before the first join.
// Snapshots are immutable once published; callers must not modify them.
func (s *Synchronizer) Game() *game.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game
}

// PlayerColor returns the seat assigned at join time.
func (s *Synchronizer) PlayerColor() game.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerColor
}

// IsSpectator reports whether the viewer is watching rather than playing.
func (s *Synchronizer) IsSpectator() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSpectator
}

// Connected reports whether the channel currently has a live connection.
func (s *Synchronizer) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Err returns the current content of the error slot, nil when clear.
func (s *Synchronizer) Err() *SyncError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Subscribe returns a channel that receives a signal after every state
// change. Delivery is best-effort with a one-slot buffer; a slow observer
// coalesces signals rather than blocking the event loop.
func (s *Synchronizer) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subsMu.Lock()
	s.subs = append(s.subs, ch)
	s.subsMu.Unlock()
	return ch
}

// --- inbound dispatch ---

func (s *Synchronizer) handle(ev channel.Event) {
	switch ev.Type {
	case channel.EventGameJoined:
		var p channel.GameJoinedPayload
		if err := ev.Decode(&p); err != nil {
			s.decodeFailure(ev, err)
			return
		}
		s.mu.Lock()
		s.game = &p.Game
		s.playerColor = p.PlayerColor
		s.isSpectator = p.IsSpectator
		s.lastErr = nil
		s.mu.Unlock()
		log.Info().
			Str("room_id", p.RoomID).
			Str("color", string(p.PlayerColor)).
			Bool("spectator", p.IsSpectator).
			Bool("reconnected", p.Reconnected).
			Msg("joined game")

	case channel.EventGameUpdated:
		var g game.Game
		if err := ev.Decode(&g); err != nil {
			s.decodeFailure(ev, err)
			return
		}
		s.replaceGame(&g)

	case channel.EventMoveMade:
		var p channel.MoveMadePayload
		if err := ev.Decode(&p); err != nil {
			s.decodeFailure(ev, err)
			return
		}
		s.replaceGame(&p.Game)
		log.Debug().
			Str("san", p.Move.SAN).
			Int("total_moves", p.Game.Metadata.TotalMoves).
			Msg("move confirmed")

	case channel.EventGameEnded:
		var p channel.GameEndedPayload
		if err := ev.Decode(&p); err != nil {
			s.decodeFailure(ev, err)
			return
		}
		s.replaceGame(&p.Game)
		log.Info().
			Str("result", string(p.Result)).
			Str("reason", string(p.Reason)).
			Msg("game ended")

	case channel.EventDrawOffered:
		var p channel.GamePayload
		if err := ev.Decode(&p); err != nil {
			s.decodeFailure(ev, err)
			return
		}
		s.replaceGame(&p.Game)

	case channel.EventMoveError:
		var p channel.ErrorPayload
		if err := ev.Decode(&p); err != nil {
			s.decodeFailure(ev, err)
			return
		}
		s.setError(&SyncError{Kind: KindValidation, Message: p.Error})

	case channel.EventErrorMessage:
		var p channel.ErrorPayload
		if err := ev.Decode(&p); err != nil {
			s.decodeFailure(ev, err)
			return
		}
		s.serverError(p.Error)

	case channel.EventTimerSync:
		var p channel.TimerSyncPayload
		if err := ev.Decode(&p); err != nil {
			s.decodeFailure(ev, err)
			return
		}
		s.mergeTimers(p)

	case channel.EventConnected:
		s.mu.Lock()
		s.connected = true
		if s.lastErr != nil && s.lastErr.Kind == KindConnectivity {
			s.lastErr = nil
		}
		s.mu.Unlock()

	case channel.EventDisconnected:
		s.mu.Lock()
		s.connected = false
		s.lastErr = &SyncError{Kind: KindConnectivity, Message: "Connection lost"}
		s.mu.Unlock()

	case channel.EventGameStarted:
		s.notice("Game started")
	case channel.EventGameResumed:
		s.notice("Game resumed")

	case channel.EventPlayerDisconnected:
		var p channel.PlayerPresencePayload
		if err := ev.Decode(&p); err == nil {
			s.notice(p.PlayerName + " disconnected")
		}
	case channel.EventPlayerReconnected:
		var p channel.PlayerPresencePayload
		if err := ev.Decode(&p); err == nil {
			s.notice(p.PlayerName + " reconnected")
		}
	case channel.EventSpectatorJoined:
		var p channel.SpectatorJoinedPayload
		if err := ev.Decode(&p); err == nil {
			s.notice(p.SpectatorName + " is watching")
		}
	case channel.EventSpectatorLeft:
		s.notice("A spectator left")

	default:
		log.Debug().Str("event_type", string(ev.Type)).Msg("ignoring unknown event")
		return
	}

	s.publish()
}

// replaceGame swaps in a new authoritative snapshot wholesale.
func (s *Synchronizer) replaceGame(g *game.Game) {
	s.mu.Lock()
	s.game = g
	s.mu.Unlock()
}

// mergeTimers is the one permitted partial merge: only the timer block and
// side-to-move change, the move log and status stay untouched. A fresh
// snapshot struct is published so earlier snapshots stay immutable.
func (s *Synchronizer) mergeTimers(p channel.TimerSyncPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil || s.game.Timers == nil {
		return
	}

	next := *s.game
	timers := *s.game.Timers
	timers.WhiteTime = p.WhiteTime
	timers.BlackTime = p.BlackTime
	timers.ServerTimestamp = p.ServerTimestamp
	timers.IsPaused = p.IsPaused
	next.Timers = &timers
	next.Turn = p.Turn
	s.game = &next
}

// serverError routes a generic server error into the slot, recognizing the
// room-not-found case that hands off to the navigation collaborator.
func (s *Synchronizer) serverError(msg string) {
	if strings.Contains(strings.ToLower(msg), "not found") {
		s.setError(&SyncError{Kind: KindNotFound, Message: msg})
		if s.navigateAway != nil {
			s.mu.RLock()
			roomID := ""
			if s.game != nil {
				roomID = s.game.RoomID
			}
			s.mu.RUnlock()
			s.navigateAway(roomID)
		}
		return
	}
	s.setError(&SyncError{Kind: KindServer, Message: msg})
}

// decodeFailure surfaces a payload the server sent that we could not read.
// Nothing is swallowed silently at this boundary.
func (s *Synchronizer) decodeFailure(ev channel.Event, err error) {
	log.Error().Err(err).Str("event_type", string(ev.Type)).Msg("failed to decode event payload")
	s.setError(&SyncError{Kind: KindServer, Message: "Malformed " + string(ev.Type) + " event"})
	s.publish()
}

func (s *Synchronizer) setError(e *SyncError) {
	s.mu.Lock()
	s.lastErr = e
	s.mu.Unlock()
	s.publish()
}

func (s *Synchronizer) notice(msg string) {
	log.Info().Msg(msg)
	if s.onNotice != nil {
		s.onNotice(msg)
	}
}

// publish signals observers without ever blocking on a slow one.
func (s *Synchronizer) publish() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
