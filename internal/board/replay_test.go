package board

import (
	"testing"

	"github.com/corentings/chess/v2"

	"chessroom/internal/game"
)

func sampleMoves() []game.Move {
	return []game.Move{
		{From: "e2", To: "e4", SAN: "e4"},
		{From: "e7", To: "e5", SAN: "e5"},
		{From: "g1", To: "f3", SAN: "Nf3"},
		{From: "b8", To: "c6", SAN: "Nc6"},
	}
}

// applyDirect plays the log straight into a fresh engine game, giving the
// reference position the replayer must reproduce.
func applyDirect(t *testing.T, moves []game.Move, upto int) *chess.Game {
	t.Helper()
	g := chess.NewGame()
	for i := 0; i <= upto && i < len(moves); i++ {
		if err := g.PushNotationMove(moves[i].UCI(), chess.UCINotation{}, nil); err != nil {
			t.Fatalf("reference move %d (%s) rejected: %v", i, moves[i].UCI(), err)
		}
	}
	return g
}

func TestReplayStartingPosition(t *testing.T) {
	got := Replay(sampleMoves(), -1)
	want := chess.NewGame()
	if got.Position().String() != want.Position().String() {
		t.Fatalf("index -1 should give the starting position, got %s", got.Position().String())
	}
}

func TestReplayRoundTrip(t *testing.T) {
	moves := sampleMoves()
	got := Replay(moves, len(moves)-1)
	want := applyDirect(t, moves, len(moves)-1)
	if got.Position().String() != want.Position().String() {
		t.Fatalf("full replay FEN mismatch:\n got %s\nwant %s",
			got.Position().String(), want.Position().String())
	}
}

func TestReplayIncrementalConsistency(t *testing.T) {
	moves := sampleMoves()
	for i := -1; i < len(moves)-1; i++ {
		stepped := Replay(moves, i)
		if err := stepped.PushNotationMove(moves[i+1].UCI(), chess.UCINotation{}, nil); err != nil {
			t.Fatalf("move %d (%s) rejected after replay to %d: %v", i+1, moves[i+1].UCI(), i, err)
		}
		direct := Replay(moves, i+1)
		if stepped.Position().String() != direct.Position().String() {
			t.Fatalf("replay(%d)+move != replay(%d):\n got %s\nwant %s",
				i, i+1, stepped.Position().String(), direct.Position().String())
		}
	}
}

func TestReplayClampsPastEnd(t *testing.T) {
	moves := sampleMoves()
	got := Replay(moves, 99)
	want := Replay(moves, len(moves)-1)
	if got.Position().String() != want.Position().String() {
		t.Fatalf("index past end should clamp to final position")
	}
}

func TestReplayFallsBackOnInconsistentLog(t *testing.T) {
	moves := []game.Move{
		{From: "e2", To: "e4"},
		{From: "e2", To: "e4"}, // impossible: square already vacated
		{From: "g1", To: "f3"},
	}
	got := Replay(moves, 2)
	want := applyDirect(t, moves, 0)
	if got.Position().String() != want.Position().String() {
		t.Fatalf("expected fallback to last consistent position:\n got %s\nwant %s",
			got.Position().String(), want.Position().String())
	}
}

func TestLastMoveSquares(t *testing.T) {
	moves := sampleMoves()
	from, to, ok := LastMoveSquares(moves, 1)
	if !ok || from != "e7" || to != "e5" {
		t.Fatalf("got %s->%s ok=%v, want e7->e5", from, to, ok)
	}
	if _, _, ok := LastMoveSquares(moves, -1); ok {
		t.Fatalf("starting position has no last move")
	}
	if _, _, ok := LastMoveSquares(moves, len(moves)); ok {
		t.Fatalf("out-of-range index has no last move")
	}
}

func TestParseSquare(t *testing.T) {
	sq, ok := ParseSquare("e2")
	if !ok {
		t.Fatalf("e2 should parse")
	}
	if sq.String() != "e2" {
		t.Fatalf("round trip gave %s", sq.String())
	}
	for _, bad := range []string{"", "e", "i1", "a9", "e22"} {
		if _, ok := ParseSquare(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
	}
}
