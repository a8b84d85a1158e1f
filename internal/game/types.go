package game

import "time"

// Status is the lifecycle state of a game as reported by the server.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Result is the outcome of a game.
type Result string

const (
	ResultWhiteWins Result = "white_wins"
	ResultBlackWins Result = "black_wins"
	ResultDraw      Result = "draw"
	ResultOngoing   Result = "ongoing"
)

// EndReason explains how a completed game ended.
type EndReason string

const (
	EndCheckmate            EndReason = "checkmate"
	EndResignation          EndReason = "resignation"
	EndTimeout              EndReason = "timeout"
	EndStalemate            EndReason = "stalemate"
	EndInsufficientMaterial EndReason = "insufficient_material"
	EndThreefoldRepetition  EndReason = "threefold_repetition"
	EndFiftyMoveRule        EndReason = "fifty_move_rule"
	EndDrawByAgreement      EndReason = "draw_by_agreement"
	EndAbandonment          EndReason = "abandonment"
)

// Role identifies which seat a participant occupies.
type Role string

const (
	RoleWhite     Role = "w"
	RoleBlack     Role = "b"
	RoleSpectator Role = "s"
)

// Opponent returns the other playing side. Spectator maps to itself.
func (r Role) Opponent() Role {
	switch r {
	case RoleWhite:
		return RoleBlack
	case RoleBlack:
		return RoleWhite
	default:
		return r
	}
}

// Player is one seat in a game room.
type Player struct {
	GuestID     string `json:"guestId"`
	Name        string `json:"name"`
	Color       Role   `json:"color"`
	IsConnected bool   `json:"isConnected"`
}

// Move is one entry in the authoritative move log.
// Captured carries the captured piece letter when the move was a capture.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	SAN       string `json:"san,omitempty"`
	Captured  string `json:"captured,omitempty"`
}

// UCI returns the move in long algebraic (UCI) form, e.g. "e2e4" or "e7e8q".
func (m Move) UCI() string {
	return m.From + m.To + m.Promotion
}

// IsCapture reports whether the move took a piece.
func (m Move) IsCapture() bool {
	return m.Captured != ""
}

// MoveIntent is a move the local player wants to submit. Promotion is the
// piece letter ("q", "r", "b", "n") or empty for non-promoting moves.
type MoveIntent struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// Timers is the server-authoritative clock block. Remaining times are
// milliseconds; ServerTimestamp is the server's wall clock (Unix millis)
// at the moment the values were valid.
type Timers struct {
	WhiteTime       int64 `json:"whiteTime"`
	BlackTime       int64 `json:"blackTime"`
	Increment       int64 `json:"increment"`
	LastMoveTime    int64 `json:"lastMoveTime,omitempty"`
	ServerTimestamp int64 `json:"serverTimestamp,omitempty"`
	IsPaused        bool  `json:"isPaused,omitempty"`
	PausedAt        int64 `json:"pausedAt,omitempty"`
}

// Metadata carries room bookkeeping supplied by the server.
type Metadata struct {
	CreatedAt  time.Time  `json:"createdAt"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
	TotalMoves int        `json:"totalMoves"`
}

// DrawOffer records a pending draw offer.
type DrawOffer struct {
	OfferedBy Role      `json:"offeredBy"`
	Timestamp time.Time `json:"timestamp"`
}

// Game is the authoritative snapshot as last received from the server.
// The synchronizer replaces it wholesale on every snapshot-bearing event;
// nothing client-side ever derives status or result from position data.
type Game struct {
	RoomID         string     `json:"roomId"`
	Status         Status     `json:"status"`
	Result         Result     `json:"result"`
	EndReason      EndReason  `json:"endReason,omitempty"`
	Players        []Player   `json:"players"`
	SpectatorCount int        `json:"spectatorCount"`
	Turn           Role       `json:"turn"`
	FEN            string     `json:"fen"`
	Moves          []Move     `json:"moves"`
	Timers         *Timers    `json:"timers,omitempty"`
	Metadata       Metadata   `json:"metadata"`
	DrawOffer      *DrawOffer `json:"drawOffer,omitempty"`
}

// LatestIndex returns the index of the last move in the log, -1 when the
// game is still at the starting position.
func (g *Game) LatestIndex() int {
	return len(g.Moves) - 1
}

// PlayerByColor returns the player seated on the given side, if any.
func (g *Game) PlayerByColor(color Role) *Player {
	for i := range g.Players {
		if g.Players[i].Color == color {
			return &g.Players[i]
		}
	}
	return nil
}

// PlayerByID returns the player with the given guest id, if any.
func (g *Game) PlayerByID(guestID string) *Player {
	for i := range g.Players {
		if g.Players[i].GuestID == guestID {
			return &g.Players[i]
		}
	}
	return nil
}
