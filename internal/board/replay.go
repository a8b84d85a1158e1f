package board

import (
	"github.com/corentings/chess/v2"
	"github.com/rs/zerolog/log"

	"chessroom/internal/game"
)

// Replay reconstructs the position after applying moves[0..index] through
// the rule engine. index -1 yields the starting position; an index past the
// end of the log is clamped to the final position.
//
// The move log comes from the server and should always replay cleanly. If a
// move fails anyway, Replay falls back to the position before the failing
// move and logs the discrepancy; it never panics the interaction surface.
func Replay(moves []game.Move, index int) *chess.Game {
	g := chess.NewGame()
	if index < 0 {
		return g
	}
	if index > len(moves)-1 {
		index = len(moves) - 1
	}
	for i := 0; i <= index; i++ {
		if err := g.PushNotationMove(moves[i].UCI(), chess.UCINotation{}, nil); err != nil {
			log.Warn().
				Err(err).
				Int("move_index", i).
				Str("move", moves[i].UCI()).
				Msg("move log inconsistent with rule engine, keeping last consistent position")
			return g
		}
	}
	return g
}

// LastMoveSquares returns the origin and destination of the move at index in
// the log, for highlighting the most recent move of a displayed position.
func LastMoveSquares(moves []game.Move, index int) (from, to string, ok bool) {
	if index < 0 || index >= len(moves) {
		return "", "", false
	}
	return moves[index].From, moves[index].To, true
}
