package board

import (
	"testing"

	"chessroom/internal/game"
	"chessroom/internal/sound"
)

type fakeView struct {
	game      *game.Game
	color     game.Role
	spectator bool
}

func (v *fakeView) Game() *game.Game       { return v.game }
func (v *fakeView) PlayerColor() game.Role { return v.color }
func (v *fakeView) IsSpectator() bool      { return v.spectator }

type recorder struct {
	intents []game.MoveIntent
	cues    []sound.Cue
}

func (r *recorder) submit(m game.MoveIntent) error {
	r.intents = append(r.intents, m)
	return nil
}

func (r *recorder) Play(cue sound.Cue) {
	r.cues = append(r.cues, cue)
}

func activeGame(moves ...game.Move) *game.Game {
	turn := game.RoleWhite
	if len(moves)%2 == 1 {
		turn = game.RoleBlack
	}
	return &game.Game{
		RoomID:   "room-1",
		Status:   game.StatusActive,
		Turn:     turn,
		Moves:    moves,
		Metadata: game.Metadata{TotalMoves: len(moves)},
	}
}

func newTestController(view *fakeView) (*Controller, *recorder) {
	rec := &recorder{}
	return NewController(view, rec.submit, rec), rec
}

func TestClickOpponentPieceWhileIdleDoesNothing(t *testing.T) {
	view := &fakeView{game: activeGame(), color: game.RoleWhite}
	c, rec := newTestController(view)

	c.ClickSquare("e7") // black pawn, white to move
	if c.Origin() != "" {
		t.Fatalf("opponent piece must not become the origin")
	}
	if len(rec.intents) != 0 {
		t.Fatalf("no move should be submitted")
	}
}

func TestClickOwnPieceSelectsAndComputesTargets(t *testing.T) {
	view := &fakeView{game: activeGame(), color: game.RoleWhite}
	c, _ := newTestController(view)

	c.ClickSquare("e2")
	if c.Origin() != "e2" {
		t.Fatalf("origin = %q, want e2", c.Origin())
	}
	styles := c.Styles()
	if styles["e3"] != DecorMoveTarget || styles["e4"] != DecorMoveTarget {
		t.Fatalf("pawn pushes should be move targets, got %v", styles)
	}
	if styles["e2"] != DecorSelected {
		t.Fatalf("origin should be styled selected")
	}
}

func TestClickLegalTargetSubmitsExactlyOneMove(t *testing.T) {
	view := &fakeView{game: activeGame(), color: game.RoleWhite}
	c, rec := newTestController(view)

	c.ClickSquare("e2")
	c.ClickSquare("e4")
	if len(rec.intents) != 1 {
		t.Fatalf("want exactly one submission, got %d", len(rec.intents))
	}
	if m := rec.intents[0]; m.From != "e2" || m.To != "e4" || m.Promotion != "" {
		t.Fatalf("unexpected intent: %+v", m)
	}
	if c.Origin() != "" {
		t.Fatalf("selection must clear after submitting")
	}
}

func TestClickIllegalTargetClearsWithoutSubmitting(t *testing.T) {
	view := &fakeView{game: activeGame(), color: game.RoleWhite}
	c, rec := newTestController(view)

	c.ClickSquare("e2")
	c.ClickSquare("e5") // not reachable
	if len(rec.intents) != 0 {
		t.Fatalf("illegal target must not submit")
	}
	if c.Origin() != "" {
		t.Fatalf("selection should return to idle")
	}
}

func TestClickAnotherOwnPieceReselects(t *testing.T) {
	view := &fakeView{game: activeGame(), color: game.RoleWhite}
	c, rec := newTestController(view)

	c.ClickSquare("e2")
	c.ClickSquare("d2")
	if c.Origin() != "d2" {
		t.Fatalf("origin = %q, want d2", c.Origin())
	}
	if len(rec.intents) != 0 {
		t.Fatalf("reselect must not submit")
	}
}

func TestCaptureTargetsAreMarked(t *testing.T) {
	moves := []game.Move{
		{From: "e2", To: "e4"},
		{From: "d7", To: "d5"},
	}
	view := &fakeView{game: activeGame(moves...), color: game.RoleWhite}
	c, _ := newTestController(view)

	c.ClickSquare("e4")
	styles := c.Styles()
	if styles["d5"] != DecorCaptureTarget {
		t.Fatalf("d5 should be a capture target, got %v", styles["d5"])
	}
	if styles["e5"] != DecorMoveTarget {
		t.Fatalf("e5 should be a plain move target, got %v", styles["e5"])
	}
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	moves := []game.Move{
		{From: "a2", To: "a4"},
		{From: "b7", To: "b5"},
		{From: "a4", To: "b5"},
		{From: "h7", To: "h6"},
		{From: "b5", To: "b6"},
		{From: "h6", To: "h5"},
		{From: "b6", To: "a7"},
		{From: "h5", To: "h4"},
	}
	view := &fakeView{game: activeGame(moves...), color: game.RoleWhite}
	c, rec := newTestController(view)

	c.ClickSquare("a7")
	c.ClickSquare("b8")
	if len(rec.intents) != 1 {
		t.Fatalf("promotion capture should submit, got %d intents", len(rec.intents))
	}
	if rec.intents[0].Promotion != "q" {
		t.Fatalf("promotion = %q, want q", rec.intents[0].Promotion)
	}
}

func TestGateClosedWhileBrowsingHistory(t *testing.T) {
	moves := []game.Move{
		{From: "e2", To: "e4"},
		{From: "e7", To: "e5"},
	}
	view := &fakeView{game: activeGame(moves...), color: game.RoleWhite}
	c, rec := newTestController(view)

	c.ShowStart()
	if c.CanInteract() {
		t.Fatalf("gate must close while browsing history")
	}
	c.ClickSquare("e2")
	if c.Origin() != "" || len(rec.intents) != 0 {
		t.Fatalf("interaction while browsing must be a no-op")
	}

	c.ShowLatest()
	if !c.CanInteract() {
		t.Fatalf("gate should reopen at the latest index")
	}
}

func TestGateClosedForSpectator(t *testing.T) {
	view := &fakeView{game: activeGame(), color: game.RoleSpectator, spectator: true}
	c, rec := newTestController(view)

	if c.CanInteract() {
		t.Fatalf("spectators must not interact")
	}
	c.ClickSquare("e2")
	if c.Origin() != "" || len(rec.intents) != 0 {
		t.Fatalf("spectator click must be a no-op")
	}
}

func TestGateClosedWhenGameNotActive(t *testing.T) {
	g := activeGame()
	g.Status = game.StatusWaiting
	view := &fakeView{game: g, color: game.RoleWhite}
	c, _ := newTestController(view)

	if c.CanInteract() {
		t.Fatalf("gate must stay closed before the game starts")
	}
}

func TestDragFlow(t *testing.T) {
	view := &fakeView{game: activeGame(), color: game.RoleWhite}
	c, rec := newTestController(view)

	if !c.DragBegin("e2") {
		t.Fatalf("drag on own piece should be accepted")
	}
	if c.DragBegin("e7") {
		t.Fatalf("drag on opponent piece should be rejected")
	}
	if !c.Drop("e2", "e4") {
		t.Fatalf("drop on legal target should succeed")
	}
	if len(rec.intents) != 1 {
		t.Fatalf("drop should submit one move")
	}

	c.DragBegin("d2")
	c.DragEnd()
	if c.Origin() != "" {
		t.Fatalf("drag end must always clear selection")
	}
}

func TestDropOutOfTurnRejected(t *testing.T) {
	view := &fakeView{game: activeGame(), color: game.RoleBlack}
	c, rec := newTestController(view)

	if c.Drop("e2", "e4") {
		t.Fatalf("drop out of turn must fail")
	}
	if len(rec.intents) != 0 {
		t.Fatalf("nothing should be submitted out of turn")
	}
}

func TestRightClickTogglesAnnotation(t *testing.T) {
	view := &fakeView{game: activeGame(), color: game.RoleWhite}
	c, _ := newTestController(view)

	c.RightClick("e4")
	if c.Styles()["e4"] != DecorAnnotation {
		t.Fatalf("first right click should mark the square")
	}
	c.RightClick("e4")
	if _, ok := c.Styles()["e4"]; ok {
		t.Fatalf("second right click should clear the mark")
	}
}

func TestAnnotatedSquareIgnoredByLeftClick(t *testing.T) {
	view := &fakeView{game: activeGame(), color: game.RoleWhite}
	c, _ := newTestController(view)

	c.RightClick("e2")
	c.ClickSquare("e2")
	if c.Origin() != "" {
		t.Fatalf("annotated square should not be selectable")
	}
}

func TestLastMoveHighlight(t *testing.T) {
	moves := []game.Move{
		{From: "e2", To: "e4"},
		{From: "e7", To: "e5"},
	}
	view := &fakeView{game: activeGame(moves...), color: game.RoleWhite}
	c, _ := newTestController(view)

	styles := c.Styles()
	if styles["e7"] != DecorLastMove || styles["e5"] != DecorLastMove {
		t.Fatalf("latest move squares should carry the last-move decoration, got %v", styles)
	}

	c.ShowIndex(0)
	styles = c.Styles()
	if styles["e2"] != DecorLastMove || styles["e4"] != DecorLastMove {
		t.Fatalf("displayed index should drive the highlight, got %v", styles)
	}
}

func TestRoomChangeResetsInteractionState(t *testing.T) {
	view := &fakeView{game: activeGame(), color: game.RoleWhite}
	c, _ := newTestController(view)

	c.ClickSquare("e2")
	c.RightClick("h8")

	next := activeGame()
	next.RoomID = "room-2"
	view.game = next

	styles := c.Styles()
	if len(styles) != 0 {
		t.Fatalf("new room must start with clean interaction state, got %v", styles)
	}
	if c.Origin() != "" {
		t.Fatalf("selection must not survive a room change")
	}
}

func TestHistoryNavigationBounds(t *testing.T) {
	moves := []game.Move{
		{From: "e2", To: "e4"},
		{From: "e7", To: "e5"},
	}
	view := &fakeView{game: activeGame(moves...), color: game.RoleWhite}
	c, _ := newTestController(view)

	c.StepBack()
	c.StepBack()
	c.StepBack() // already at the start; must clamp
	if got := c.DisplayedIndex(); got != -1 {
		t.Fatalf("DisplayedIndex = %d, want -1", got)
	}
	c.StepForward()
	c.StepForward()
	if c.ViewingHistory() {
		t.Fatalf("stepping to the end should resume following the live game")
	}
}

func TestMoveCues(t *testing.T) {
	moves := []game.Move{
		{From: "e2", To: "e4"},
		{From: "d7", To: "d5"},
	}
	view := &fakeView{game: activeGame(moves...), color: game.RoleWhite}
	c, rec := newTestController(view)

	c.ClickSquare("e4")
	c.ClickSquare("d5")
	if len(rec.cues) != 1 || rec.cues[0] != sound.CueCapture {
		t.Fatalf("capture should play the capture cue, got %v", rec.cues)
	}
}
