package board

import "chessroom/internal/game"

// Decoration names a visual treatment for a board square. The presentation
// layer maps these to whatever styling it uses.
type Decoration string

const (
	DecorSelected      Decoration = "selected"
	DecorMoveTarget    Decoration = "move-target"
	DecorCaptureTarget Decoration = "capture-target"
	DecorLastMove      Decoration = "last-move"
	DecorAnnotation    Decoration = "annotation"
)

// ResolveStyles computes the decoration for every square that needs one at
// the displayed position: the last-move highlight pair, then the current
// selection with its legal targets, then user annotations. Later layers win
// when a square appears in more than one.
func ResolveStyles(
	moves []game.Move,
	displayedIndex int,
	origin string,
	options map[string]Decoration,
	annotations map[string]struct{},
) map[string]Decoration {
	styles := make(map[string]Decoration)

	if from, to, ok := LastMoveSquares(moves, displayedIndex); ok {
		styles[from] = DecorLastMove
		styles[to] = DecorLastMove
	}

	for sq, decor := range options {
		styles[sq] = decor
	}
	if origin != "" {
		styles[origin] = DecorSelected
	}

	for sq := range annotations {
		styles[sq] = DecorAnnotation
	}

	return styles
}
