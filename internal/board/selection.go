package board

import (
	"github.com/corentings/chess/v2"
	"github.com/rs/zerolog/log"

	"chessroom/internal/game"
	"chessroom/internal/sound"
)

// GameView is the read-only window onto the synchronizer state the
// controller needs. The controller never mutates anything behind it.
type GameView interface {
	Game() *game.Game
	PlayerColor() game.Role
	IsSpectator() bool
}

// CuePlayer receives sound cues for interactions. Optional.
type CuePlayer interface {
	Play(cue sound.Cue)
}

// Controller is the interactive-selection state machine: it owns the
// transient interaction state (selected origin, legal targets, annotations,
// displayed move index) and turns square clicks and drag gestures into move
// submissions. It holds no authority over the game itself; every submission
// goes through the injected submit function and only a server event changes
// the position.
//
// The controller is single-owner state driven from the UI event loop; it is
// not safe for concurrent use.
type Controller struct {
	view   GameView
	submit func(game.MoveIntent) error
	cues   CuePlayer

	origin      string
	options     map[string]Decoration
	annotations map[string]struct{}

	// History browsing. When browsing is false the displayed index follows
	// the authoritative latest move.
	browsing bool
	index    int

	roomID string
}

// NewController builds a selection controller. cues may be nil.
func NewController(view GameView, submit func(game.MoveIntent) error, cues CuePlayer) *Controller {
	return &Controller{
		view:        view,
		submit:      submit,
		cues:        cues,
		options:     make(map[string]Decoration),
		annotations: make(map[string]struct{}),
	}
}

// DisplayedIndex returns the index of the last move shown on the board,
// -1 for the starting position.
func (c *Controller) DisplayedIndex() int {
	g := c.view.Game()
	if g == nil {
		return -1
	}
	if !c.browsing {
		return g.LatestIndex()
	}
	return c.index
}

// ViewingHistory reports whether the displayed index trails the
// authoritative latest index.
func (c *Controller) ViewingHistory() bool {
	g := c.view.Game()
	if g == nil {
		return false
	}
	return c.DisplayedIndex() < g.LatestIndex()
}

// CanInteract is the interaction gate: pieces may be picked up only when the
// viewer is a seated player, the game is running, and the board shows the
// latest position. Browsing history closes the gate so a move can never be
// submitted against a stale displayed position.
func (c *Controller) CanInteract() bool {
	c.syncRoom()
	g := c.view.Game()
	if g == nil {
		return false
	}
	return g.Status == game.StatusActive && !c.view.IsSpectator() && !c.ViewingHistory()
}

// IsPlayerTurn reports whether it is the viewer's turn at the displayed
// position.
func (c *Controller) IsPlayerTurn() bool {
	g := c.view.Game()
	if g == nil || c.view.IsSpectator() || c.ViewingHistory() {
		return false
	}
	return g.Turn == c.view.PlayerColor()
}

// ClickSquare handles a left click: select an own piece, submit a move to a
// legal target, reselect another own piece, or clear the selection.
func (c *Controller) ClickSquare(sq string) {
	if !c.CanInteract() || !c.IsPlayerTurn() {
		return
	}
	if _, marked := c.annotations[sq]; marked {
		return
	}

	pos := c.displayed()

	if c.origin == "" {
		c.trySelect(pos, sq)
		return
	}

	if c.attemptMove(pos, c.origin, sq) {
		return
	}
	if !c.trySelect(pos, sq) {
		c.ClearSelection()
	}
}

// RightClick toggles a free-form annotation marker on the square. It never
// touches move selection.
func (c *Controller) RightClick(sq string) {
	c.syncRoom()
	if _, ok := c.annotations[sq]; ok {
		delete(c.annotations, sq)
		return
	}
	c.annotations[sq] = struct{}{}
}

// DragBegin reports whether a drag starting on sq may proceed, selecting the
// square when it may.
func (c *Controller) DragBegin(sq string) bool {
	if !c.CanInteract() || !c.IsPlayerTurn() {
		return false
	}
	return c.trySelect(c.displayed(), sq)
}

// Drop handles releasing a dragged piece on a target square. Returns whether
// a move was submitted.
func (c *Controller) Drop(from, to string) bool {
	if !c.CanInteract() || !c.IsPlayerTurn() {
		c.ClearSelection()
		return false
	}
	return c.attemptMove(c.displayed(), from, to)
}

// DragEnd clears the selection regardless of drop outcome.
func (c *Controller) DragEnd() {
	c.ClearSelection()
}

// ShowIndex displays the position after moves[0..index]; -1 shows the start.
// Navigating to the latest index resumes following new moves.
func (c *Controller) ShowIndex(index int) {
	g := c.view.Game()
	if g == nil {
		return
	}
	latest := g.LatestIndex()
	if index >= latest {
		c.browsing = false
		c.index = latest
	} else {
		if index < -1 {
			index = -1
		}
		c.browsing = true
		c.index = index
	}
	c.ClearSelection()
}

// StepBack shows one move earlier.
func (c *Controller) StepBack() { c.ShowIndex(c.DisplayedIndex() - 1) }

// StepForward shows one move later.
func (c *Controller) StepForward() { c.ShowIndex(c.DisplayedIndex() + 1) }

// ShowStart shows the starting position.
func (c *Controller) ShowStart() { c.ShowIndex(-1) }

// ShowLatest returns to the live position.
func (c *Controller) ShowLatest() {
	g := c.view.Game()
	if g == nil {
		return
	}
	c.ShowIndex(g.LatestIndex())
}

// Styles resolves the square decorations for the current interaction state.
func (c *Controller) Styles() map[string]Decoration {
	c.syncRoom()
	g := c.view.Game()
	var moves []game.Move
	if g != nil {
		moves = g.Moves
	}
	return ResolveStyles(moves, c.DisplayedIndex(), c.origin, c.options, c.annotations)
}

// Origin returns the currently selected origin square, empty when idle.
func (c *Controller) Origin() string {
	return c.origin
}

// ClearSelection drops the selected origin and its computed targets.
// Annotations survive; they are cleared only on room change or ResetMarks.
func (c *Controller) ClearSelection() {
	c.origin = ""
	c.options = make(map[string]Decoration)
}

// ResetMarks clears the selection and all annotations.
func (c *Controller) ResetMarks() {
	c.ClearSelection()
	c.annotations = make(map[string]struct{})
}

// syncRoom drops all interaction state when the room changed underneath us,
// so markers from a previous game never bleed into the next one.
func (c *Controller) syncRoom() {
	g := c.view.Game()
	if g == nil {
		return
	}
	if g.RoomID != c.roomID {
		c.roomID = g.RoomID
		c.browsing = false
		c.index = -1
		c.ResetMarks()
	}
}

func (c *Controller) displayed() *chess.Game {
	g := c.view.Game()
	if g == nil {
		return Replay(nil, -1)
	}
	return Replay(g.Moves, c.DisplayedIndex())
}

// trySelect selects sq as origin when it holds a piece of the side to move,
// computing its legal targets. Returns whether a selection was made.
func (c *Controller) trySelect(pos *chess.Game, sq string) bool {
	g := c.view.Game()
	if g == nil {
		return false
	}

	square, ok := ParseSquare(sq)
	if !ok {
		return false
	}
	piece := pos.Position().Board().Piece(square)
	if piece == chess.NoPiece || piece.Color().String() != string(g.Turn) {
		return false
	}

	c.origin = sq
	c.options = make(map[string]Decoration)
	for _, m := range pos.ValidMoves() {
		if m.S1() != square {
			continue
		}
		if m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant) {
			c.options[m.S2().String()] = DecorCaptureTarget
		} else {
			c.options[m.S2().String()] = DecorMoveTarget
		}
	}
	return true
}

// attemptMove submits from->to when the rule engine lists it as legal.
// Promotions default to queen; the client never prompts for a piece.
func (c *Controller) attemptMove(pos *chess.Game, from, to string) bool {
	fromSq, okFrom := ParseSquare(from)
	toSq, okTo := ParseSquare(to)
	if !okFrom || !okTo {
		return false
	}

	var found bool
	var promotes bool
	var tags []chess.MoveTag
	for _, m := range pos.ValidMoves() {
		if m.S1() != fromSq || m.S2() != toSq {
			continue
		}
		found = true
		promotes = m.Promo() != chess.NoPieceType
		for _, tag := range []chess.MoveTag{chess.Capture, chess.EnPassant, chess.Check} {
			if m.HasTag(tag) {
				tags = append(tags, tag)
			}
		}
		break
	}
	if !found {
		return false
	}

	intent := game.MoveIntent{From: from, To: to}
	if promotes {
		intent.Promotion = "q"
	}

	if err := c.submit(intent); err != nil {
		log.Warn().Err(err).Str("from", from).Str("to", to).Msg("move submission refused")
		c.ClearSelection()
		return false
	}

	c.playMoveCue(from, to, tags)
	c.ClearSelection()
	return true
}

func (c *Controller) playMoveCue(from, to string, tags []chess.MoveTag) {
	if c.cues == nil {
		return
	}
	var captured, check bool
	for _, tag := range tags {
		switch tag {
		case chess.Capture, chess.EnPassant:
			captured = true
		case chess.Check:
			check = true
		}
	}
	move := game.Move{From: from, To: to}
	if captured {
		move.Captured = "x"
	}
	c.cues.Play(sound.ForMove(move, check))
}
